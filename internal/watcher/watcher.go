package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"storyforge/internal/config"
	"storyforge/internal/logging"
	"storyforge/internal/notifications"
	"storyforge/internal/pipeline"
	"storyforge/internal/store"
)

// importedSuffix marks intake files that have already been consumed.
const importedSuffix = ".imported"

// Processor runs one pipeline pass for an artifact.
type Processor interface {
	Process(ctx context.Context, id string) (pipeline.Result, error)
}

// Watcher imports intake submissions and triggers pipeline passes.
type Watcher struct {
	cfg      *config.Config
	store    *store.Store
	proc     Processor
	notifier notifications.Service
	logger   *slog.Logger
	client   *http.Client
	settle   time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	wg     sync.WaitGroup
}

// New constructs an intake watcher.
func New(cfg *config.Config, st *store.Store, proc Processor, notifier notifications.Service, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	settle := time.Duration(cfg.Workflow.IntakeSettleSeconds) * time.Second
	return &Watcher{
		cfg:      cfg,
		store:    st,
		proc:     proc,
		notifier: notifier,
		logger:   logger,
		client:   &http.Client{Timeout: 30 * time.Second},
		settle:   settle,
		timers:   make(map[string]*time.Timer),
	}
}

// Run watches the intake directory until the context is canceled. Files
// are imported only after no write has been seen for the settle delay, so
// a slow writer never gets half a submission imported.
func (w *Watcher) Run(ctx context.Context) error {
	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer notify.Close()

	if err := notify.Add(w.cfg.Paths.IntakeDir); err != nil {
		return fmt.Errorf("watch intake dir: %w", err)
	}
	w.logger.Info("intake watcher started", logging.String("dir", w.cfg.Paths.IntakeDir))

	// Catch submissions that arrived while nothing was watching.
	w.ScanOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.drainTimers()
			w.wg.Wait()
			return ctx.Err()
		case event, ok := <-notify.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				w.schedule(ctx, event.Name)
			}
		case err, ok := <-notify.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("intake watch error", logging.Error(err))
		}
	}
}

// ScanOnce imports every pending submission already on disk.
func (w *Watcher) ScanOnce(ctx context.Context) {
	entries, err := os.ReadDir(w.cfg.Paths.IntakeDir)
	if err != nil {
		w.logger.Warn("intake scan failed", logging.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.cfg.Paths.IntakeDir, entry.Name())
		if !isSubmission(path) {
			continue
		}
		w.importFile(ctx, path)
	}
}

func isSubmission(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// schedule arms (or re-arms) the settle timer for one intake file.
func (w *Watcher) schedule(ctx context.Context, path string) {
	if !isSubmission(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.settle)
		return
	}
	// The waitgroup entry is claimed before the timer is armed so a
	// firing callback can never race a Wait at counter zero.
	w.wg.Add(1)
	w.timers[path] = time.AfterFunc(w.settle, func() {
		defer w.wg.Done()
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		w.importFile(ctx, path)
	})
}

func (w *Watcher) drainTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.timers {
		// Stop reporting true means the callback never runs, so its
		// waitgroup entry is released here instead.
		if timer.Stop() {
			w.wg.Done()
		}
		delete(w.timers, path)
	}
}

// importFile consumes one submission: parse, create the artifact, rename
// the file out of the watch set, then run a pipeline pass.
func (w *Watcher) importFile(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn("read submission failed", logging.String("path", path), logging.Error(err))
		}
		return
	}

	sub, err := ParseSubmission(data)
	if err != nil {
		w.logger.Error("invalid submission", logging.String("path", path), logging.Error(err))
		w.markConsumed(path)
		return
	}

	a := sub.ToArtifact(ctx, w.client)
	if err := w.store.Create(ctx, a); err != nil {
		w.logger.Error("import failed", logging.String("path", path), logging.Error(err))
		return
	}
	w.markConsumed(path)

	w.logger.Info("submission imported",
		logging.String(logging.FieldArtifactID, a.ID),
		logging.String("title", a.Title),
		logging.Int("characters", len(a.Characters)))
	if err := w.notifier.NotifyArtifactImported(ctx, a.Title); err != nil {
		w.logger.Warn("import notification failed", logging.Error(err))
	}

	res, err := w.proc.Process(ctx, a.ID)
	if err != nil {
		w.logger.Error("pipeline pass failed",
			logging.String(logging.FieldArtifactID, a.ID),
			logging.Error(err))
		if notifyErr := w.notifier.NotifyStageError(ctx, a.Title, "pipeline", err); notifyErr != nil {
			w.logger.Warn("error notification failed", logging.Error(notifyErr))
		}
		return
	}
	if res.Report.Playable() {
		duration := 0.0
		if fetched, fetchErr := w.store.GetByID(ctx, a.ID); fetchErr == nil && fetched != nil && fetched.Audio != nil {
			duration = fetched.Audio.DurationSeconds
		}
		if err := w.notifier.NotifyArtifactPlayable(ctx, a.Title, duration); err != nil {
			w.logger.Warn("playable notification failed", logging.Error(err))
		}
	}
}

// markConsumed renames the intake file so it never re-imports.
func (w *Watcher) markConsumed(path string) {
	if err := os.Rename(path, path+importedSuffix); err != nil {
		w.logger.Warn("rename consumed submission failed",
			logging.String("path", path),
			logging.Error(err))
	}
}
