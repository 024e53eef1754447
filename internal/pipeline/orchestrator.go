package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"storyforge/internal/artifact"
	"storyforge/internal/assembly"
	"storyforge/internal/completeness"
	"storyforge/internal/config"
	"storyforge/internal/generate"
	"storyforge/internal/logging"
	"storyforge/internal/services"
	"storyforge/internal/store"
)

const (
	stageScenes   = "scenes"
	stageEntities = "entities"
	stageImages   = "images"
	stageAudio    = "audio"
)

// Collaborators bundles the generative services the stages call. Nil
// members degrade that stage to placeholder output instead of failing.
type Collaborators struct {
	Scenes   generate.SceneWriter
	Entities generate.EntityExtractor
	Images   generate.Illustrator
	Speech   generate.SpeechSynthesizer
}

// Result reports the outcome of one pipeline pass.
type Result struct {
	Changed bool
	Report  completeness.Report
}

// Orchestrator owns artifact processing. One instance serves the whole
// daemon; passes over the same artifact are serialized by a per-ID lock.
type Orchestrator struct {
	cfg       *config.Config
	store     *store.Store
	validator *completeness.Validator
	collab    Collaborators
	assembler *assembly.Assembler
	logger    *slog.Logger
	pool      *ants.Pool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New constructs an orchestrator with a bounded per-scene worker pool.
func New(cfg *config.Config, st *store.Store, collab Collaborators, assembler *assembly.Assembler, logger *slog.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	workers := cfg.Workflow.SceneWorkers
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create scene worker pool: %w", err)
	}
	return &Orchestrator{
		cfg:       cfg,
		store:     st,
		validator: completeness.New(cfg.Audio.SizeFloor),
		collab:    collab,
		assembler: assembler,
		logger:    logger,
		pool:      pool,
		locks:     make(map[string]*sync.Mutex),
	}, nil
}

// Close releases the worker pool.
func (o *Orchestrator) Close() {
	o.pool.Release()
}

// Validator exposes the orchestrator's validator for trigger-layer
// classification.
func (o *Orchestrator) Validator() *completeness.Validator {
	return o.validator
}

// Process runs one pipeline pass over the artifact: validate, regenerate
// whatever is invalid (scenes, then entities, then images, then audio),
// persisting after every stage, then re-validate. Persistence failures
// abort the pass; collaborator failures degrade to recorded error fields
// and the pass continues.
func (o *Orchestrator) Process(ctx context.Context, id string) (Result, error) {
	unlock := o.acquire(id)
	defer unlock()

	requestID := uuid.NewString()
	ctx = services.WithRequestID(services.WithArtifactID(ctx, id), requestID)
	log := logging.WithContext(ctx, o.logger)

	a, err := o.store.GetByID(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("load artifact %s: %w", id, err)
	}
	if a == nil {
		return Result{}, fmt.Errorf("artifact %s: %w", id, services.ErrNotFound)
	}

	force := a.ForceRegenerate
	if force {
		log.Info("force regeneration requested, all stages will run")
	}

	res := Result{}
	scenesRan := false

	report := o.validator.Validate(a)
	if force || report.NeedsScenes() {
		o.runScenes(ctx, log, a)
		if err := o.store.SaveScenes(ctx, a); err != nil {
			return res, fmt.Errorf("persist scenes: %w", err)
		}
		res.Changed = true
		scenesRan = true
	}

	report = o.validator.Validate(a)
	if force || report.NeedsEntities() {
		o.runEntities(ctx, log, a, flaggedScenes(report.Entities, a, force))
		if err := o.store.SaveScenes(ctx, a); err != nil {
			return res, fmt.Errorf("persist entities: %w", err)
		}
		res.Changed = true
	}

	report = o.validator.Validate(a)
	if force || report.NeedsImages() {
		o.runImages(ctx, log, a, flaggedScenes(report.Images, a, force))
		if err := o.store.SaveScenes(ctx, a); err != nil {
			return res, fmt.Errorf("persist images: %w", err)
		}
		res.Changed = true
	}

	report = o.validator.Validate(a)
	if force || scenesRan || report.NeedsAudio() {
		o.runAudio(ctx, log, a)
		if err := o.store.SaveAudio(ctx, a); err != nil {
			return res, fmt.Errorf("persist audio: %w", err)
		}
		res.Changed = true
	}

	if force {
		a.ForceRegenerate = false
		if err := o.store.SetForceRegenerate(ctx, id, false); err != nil {
			return res, fmt.Errorf("clear force flag: %w", err)
		}
		res.Changed = true
	}

	res.Report = o.validator.Validate(a)
	log.Info("pipeline pass finished",
		logging.Bool("changed", res.Changed),
		logging.Bool("playable", res.Report.Playable()),
		logging.String("audio_status", string(res.Report.Audio.Status)))

	return res, nil
}

func (o *Orchestrator) acquire(id string) func() {
	o.mu.Lock()
	lock := o.locks[id]
	if lock == nil {
		lock = &sync.Mutex{}
		o.locks[id] = lock
	}
	o.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// flaggedScenes resolves which scene numbers a per-scene stage must touch.
func flaggedScenes(stage completeness.StageReport, a *artifact.Artifact, force bool) map[int]bool {
	flagged := make(map[int]bool)
	if force {
		for _, scene := range a.Scenes {
			flagged[scene.SceneNumber] = true
		}
		return flagged
	}
	for _, problem := range stage.Problems {
		if problem.SceneNumber > 0 {
			flagged[problem.SceneNumber] = true
		}
	}
	return flagged
}
