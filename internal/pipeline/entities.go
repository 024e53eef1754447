package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"storyforge/internal/artifact"
	"storyforge/internal/logging"
	"storyforge/internal/services"
)

// runEntities reruns entity extraction for exactly the flagged scenes.
// Extraction is scene-local, so flagged scenes run with bounded
// parallelism while untouched scenes keep their prior results byte for
// byte. A collaborator failure is recorded on the scene as an
// error-carrying result, never left absent, so the next validation pass
// sees a retryable error instead of pristine-missing.
func (o *Orchestrator) runEntities(ctx context.Context, log *slog.Logger, a *artifact.Artifact, flagged map[int]bool) {
	ctx = services.WithStage(ctx, stageEntities)
	names := a.CharacterNames()

	var wg sync.WaitGroup
	for i := range a.Scenes {
		scene := &a.Scenes[i]
		if !flagged[scene.SceneNumber] {
			continue
		}
		wg.Add(1)
		job := func() {
			defer wg.Done()
			scene.Entities = o.extractSceneEntities(ctx, scene, names)
		}
		if err := o.pool.Submit(job); err != nil {
			job()
		}
	}
	wg.Wait()

	a.StageTimes.Entities = time.Now().UTC()
	log.Info("entity extraction completed", logging.Int("scenes_regenerated", len(flagged)))
}

func (o *Orchestrator) extractSceneEntities(ctx context.Context, scene *artifact.Scene, knownNames []string) *artifact.EntityResult {
	// SourceLength is always the recomputed content length, whatever the
	// collaborator claims.
	result := &artifact.EntityResult{SourceLength: len(scene.Content)}
	if o.collab.Entities == nil {
		result.Error = "entity collaborator unavailable"
		return result
	}

	extracted, err := o.collab.Entities.ExtractEntities(ctx, scene.Content, scene.Title, knownNames)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	for _, e := range extracted.Entities {
		if strings.TrimSpace(e.Text) == "" {
			continue
		}
		start := clampOffset(e.StartOffset, len(scene.Content))
		end := clampOffset(e.EndOffset, len(scene.Content))
		if end < start {
			end = start
		}
		result.Entities = append(result.Entities, artifact.Entity{
			Text:        e.Text,
			Category:    normalizeCategory(e.Category),
			StartOffset: start,
			EndOffset:   end,
			Description: e.Description,
		})
	}
	result.TotalCount = len(result.Entities)
	return result
}

func clampOffset(offset, max int) int {
	if offset < 0 {
		return 0
	}
	if offset > max {
		return max
	}
	return offset
}

func normalizeCategory(category string) artifact.EntityCategory {
	normalized := artifact.EntityCategory(strings.ToUpper(strings.TrimSpace(category)))
	for _, known := range artifact.Categories() {
		if normalized == known {
			return known
		}
	}
	return artifact.CategoryConcept
}
