package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"storyforge/internal/artifact"
	"storyforge/internal/assembly"
	"storyforge/internal/logging"
	"storyforge/internal/services"
)

const (
	// Placeholder narration assumes a 150 words-per-minute reading pace.
	placeholderWordsPerMinute = 150.0
	placeholderMinSeconds     = 30.0
	placeholderMaxSeconds     = 90.0
)

// runAudio rebuilds the whole narration track. Audio is one continuous
// file spanning all scenes, so it always operates on the full artifact:
// one fragment per scene, synthesized or silent placeholder, merged by the
// assembler. Any failure degrades to an error-carrying audio record; the
// pass never aborts here.
func (o *Orchestrator) runAudio(ctx context.Context, log *slog.Logger, a *artifact.Artifact) {
	ctx = services.WithStage(ctx, stageAudio)

	fragments := make([]artifact.Fragment, 0, len(a.Scenes))
	for i, scene := range a.Scenes {
		fragments = append(fragments, o.sceneFragment(ctx, log, i, scene))
	}

	audio, err := o.assembler.Assemble(ctx, a.ID, fragments)
	if err != nil {
		log.Error("narration assembly failed", logging.String(logging.FieldStage, stageAudio), logging.Error(err))
		a.Audio = &artifact.Audio{Error: err.Error(), GeneratedAt: time.Now().UTC()}
	} else {
		a.Audio = audio
	}
	a.StageTimes.Audio = time.Now().UTC()
}

func (o *Orchestrator) sceneFragment(ctx context.Context, log *slog.Logger, index int, scene artifact.Scene) artifact.Fragment {
	if o.collab.Speech == nil || !o.cfg.Gemini.SpeechEnabled {
		return assembly.PlaceholderFragment(index, speakingDuration(scene.Content))
	}

	chunks, err := o.collab.Speech.Synthesize(ctx, scene.Content)
	if err != nil {
		log.Warn("speech synthesis failed, using placeholder",
			logging.Int(logging.FieldSceneNumber, scene.SceneNumber),
			logging.Error(err))
		return assembly.PlaceholderFragment(index, speakingDuration(scene.Content))
	}

	converted := make([]assembly.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		converted = append(converted, assembly.Chunk{Data: chunk.Data, MIMEType: chunk.MIMEType})
	}
	frag, err := assembly.BuildFragment(index, converted)
	if err != nil {
		log.Warn("fragment normalization failed, using placeholder",
			logging.Int(logging.FieldSceneNumber, scene.SceneNumber),
			logging.Error(err))
		return assembly.PlaceholderFragment(index, speakingDuration(scene.Content))
	}
	return frag
}

// speakingDuration sizes a placeholder fragment from the scene's word
// count at a normal narration pace, clamped to keep degraded tracks
// reasonable when content is missing or enormous.
func speakingDuration(content string) float64 {
	words := len(strings.Fields(content))
	seconds := float64(words) / placeholderWordsPerMinute * 60.0
	if seconds < placeholderMinSeconds {
		return placeholderMinSeconds
	}
	if seconds > placeholderMaxSeconds {
		return placeholderMaxSeconds
	}
	return seconds
}
