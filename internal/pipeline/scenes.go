package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"storyforge/internal/artifact"
	"storyforge/internal/logging"
	"storyforge/internal/services"
)

// runScenes replaces the entire scene set from the original submission
// inputs. Scene content is generated as one coherent pass, so a single
// flagged scene still rebuilds the whole set; partial edits would break
// narrative continuity. Collaborator failure degrades to one placeholder
// scene carrying the error, which the validator keeps flagging until a
// later pass succeeds.
func (o *Orchestrator) runScenes(ctx context.Context, log *slog.Logger, a *artifact.Artifact) {
	ctx = services.WithStage(ctx, stageScenes)

	scenes, summary, err := o.generateSceneSet(ctx, a)
	if err != nil {
		log.Error("scene generation failed", logging.String(logging.FieldStage, stageScenes), logging.Error(err))
		scenes = []artifact.Scene{{
			SceneNumber: 1,
			Title:       "Story generation failed",
			Content:     "Story generation failed: " + err.Error(),
		}}
		summary = ""
	}

	a.Scenes = scenes
	a.Summary = summary
	a.RecountWords()
	a.StageTimes.Scenes = time.Now().UTC()

	log.Info("scene set regenerated",
		logging.Int("scenes", len(a.Scenes)),
		logging.Int("word_count", a.WordCount))
}

func (o *Orchestrator) generateSceneSet(ctx context.Context, a *artifact.Artifact) ([]artifact.Scene, string, error) {
	if o.collab.Scenes == nil {
		return nil, "", errors.New("scene collaborator unavailable")
	}
	set, err := o.collab.Scenes.GenerateScenes(ctx, a.CharacterNames(), a.Outline)
	if err != nil {
		return nil, "", err
	}

	ordered := set.Scenes
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	// Model-claimed numbering is discarded; scene numbers are always the
	// contiguous 1..N sequence.
	scenes := make([]artifact.Scene, 0, len(ordered))
	for i, gs := range ordered {
		scenes = append(scenes, artifact.Scene{
			SceneNumber: i + 1,
			Title:       strings.TrimSpace(gs.Title),
			Content:     strings.TrimSpace(gs.Content),
		})
	}
	return scenes, strings.TrimSpace(set.Summary), nil
}
