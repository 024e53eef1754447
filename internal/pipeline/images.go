package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storyforge/internal/artifact"
	"storyforge/internal/generate"
	"storyforge/internal/logging"
	"storyforge/internal/services"
)

// imageVariants is how many independent illustrations each scene gets: a
// wide establishing shot and a character-focused shot, giving playback two
// transition frames per scene.
const imageVariants = 2

// runImages rerenders illustrations for exactly the flagged scenes. The
// two variants are independent; one failing never blocks the other, and
// each records its own payload or error.
func (o *Orchestrator) runImages(ctx context.Context, log *slog.Logger, a *artifact.Artifact, flagged map[int]bool) {
	ctx = services.WithStage(ctx, stageImages)
	names := a.CharacterNames()
	references := characterPhotos(a)

	var wg sync.WaitGroup
	for i := range a.Scenes {
		scene := &a.Scenes[i]
		if !flagged[scene.SceneNumber] {
			continue
		}
		wg.Add(1)
		job := func() {
			defer wg.Done()
			results := make([]artifact.ImageResult, 0, imageVariants)
			for variant := 1; variant <= imageVariants; variant++ {
				results = append(results, o.renderVariant(ctx, *scene, variant, names, references))
			}
			scene.Images = results
		}
		if err := o.pool.Submit(job); err != nil {
			job()
		}
	}
	wg.Wait()

	a.StageTimes.Images = time.Now().UTC()
	log.Info("image generation completed", logging.Int("scenes_regenerated", len(flagged)))
}

func (o *Orchestrator) renderVariant(ctx context.Context, scene artifact.Scene, variant int, names []string, references [][]byte) artifact.ImageResult {
	prompt := generate.ImagePrompt(scene, variant, names)
	result := artifact.ImageResult{Variant: variant, Prompt: prompt}

	if o.collab.Images == nil || !o.cfg.Gemini.ImagesEnabled {
		result.Data, result.MIMEType = generate.FallbackImage()
		result.Fallback = true
		result.GeneratedAt = time.Now().UTC()
		return result
	}

	img, err := o.collab.Images.GenerateImage(ctx, prompt, references)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Data = img.Data
	result.MIMEType = img.MIMEType
	result.GeneratedAt = time.Now().UTC()
	return result
}

// characterPhotos collects submitted reference photos so generated scenes
// keep character appearances consistent.
func characterPhotos(a *artifact.Artifact) [][]byte {
	var photos [][]byte
	for _, c := range a.Characters {
		if c.Photo != nil && c.Photo.Error == "" && len(c.Photo.Data) > 0 {
			photos = append(photos, c.Photo.Data)
		}
	}
	return photos
}
