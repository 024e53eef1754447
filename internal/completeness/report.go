package completeness

import "storyforge/internal/artifact"

// Problem flags one scene that fails a stage's validity rules.
type Problem struct {
	SceneNumber int
	Title       string
	Reason      string
}

// StageReport summarizes one generation stage across all scenes.
type StageReport struct {
	Valid      bool
	ValidCount int
	Problems   []Problem
}

// AudioReport classifies the narration stage.
type AudioReport struct {
	Status artifact.AudioStatus
	Reason string
}

// Report is the validator's verdict on one artifact.
type Report struct {
	Scenes   StageReport
	Entities StageReport
	Images   StageReport
	Audio    AudioReport
}

// Playable reports whether every stage is fully valid. Placeholder audio
// keeps playback working in a degraded mode but does not count.
func (r Report) Playable() bool {
	return r.Scenes.Valid && r.Entities.Valid && r.Images.Valid && r.Audio.Status == artifact.AudioComplete
}

// NeedsProcessing reports whether any stage would run on the next pass.
func (r Report) NeedsProcessing() bool {
	return !r.Playable()
}

// NeedsScenes reports whether the scene set must be regenerated wholesale.
func (r Report) NeedsScenes() bool {
	return !r.Scenes.Valid
}

// NeedsEntities reports whether any scene's entity extraction must rerun.
func (r Report) NeedsEntities() bool {
	return !r.Entities.Valid
}

// NeedsImages reports whether any scene's image generation must rerun.
func (r Report) NeedsImages() bool {
	return !r.Images.Valid
}

// NeedsAudio reports whether the narration track must be reassembled.
func (r Report) NeedsAudio() bool {
	return r.Audio.Status.NeedsRegeneration()
}
