package completeness

import (
	"fmt"
	"os"

	"storyforge/internal/artifact"
)

// Validator applies the stage validity rules against a configured audio
// size floor.
type Validator struct {
	sizeFloor int64
}

// New returns a validator. A floor <= 0 falls back to the package default.
func New(sizeFloor int64) *Validator {
	if sizeFloor <= 0 {
		sizeFloor = artifact.AudioSizeFloor
	}
	return &Validator{sizeFloor: sizeFloor}
}

// Validate inspects the artifact and produces a per-stage report.
func (v *Validator) Validate(a *artifact.Artifact) Report {
	if a == nil {
		return Report{Audio: AudioReport{Status: artifact.AudioMissing, Reason: "no artifact"}}
	}
	return Report{
		Scenes:   validateScenes(a),
		Entities: validateEntities(a),
		Images:   validateImages(a),
		Audio:    v.validateAudio(a),
	}
}

func validateScenes(a *artifact.Artifact) StageReport {
	report := StageReport{}
	if len(a.Scenes) == 0 {
		return report
	}
	if len(a.Scenes) != artifact.SceneCount {
		report.Problems = append(report.Problems, Problem{
			Reason: fmt.Sprintf("scene count is %d, want %d", len(a.Scenes), artifact.SceneCount),
		})
	}
	for _, scene := range a.Scenes {
		if scene.ContentEmpty() {
			report.Problems = append(report.Problems, Problem{
				SceneNumber: scene.SceneNumber,
				Title:       scene.Title,
				Reason:      fmt.Sprintf("content below %d characters", artifact.MinSceneContent),
			})
			continue
		}
		report.ValidCount++
	}
	report.Valid = len(report.Problems) == 0
	return report
}

func validateEntities(a *artifact.Artifact) StageReport {
	report := StageReport{}
	if len(a.Scenes) == 0 {
		return report
	}
	for _, scene := range a.Scenes {
		result := scene.Entities
		switch {
		case result == nil:
			report.Problems = append(report.Problems, problem(scene, "entity extraction missing"))
		case result.Error != "":
			report.Problems = append(report.Problems, problem(scene, "entity extraction failed: "+result.Error))
		case len(result.Entities) == 0:
			report.Problems = append(report.Problems, problem(scene, "entity extraction returned no entities"))
		default:
			report.ValidCount += result.TotalCount
		}
	}
	report.Valid = len(report.Problems) == 0
	return report
}

func validateImages(a *artifact.Artifact) StageReport {
	report := StageReport{}
	if len(a.Scenes) == 0 {
		return report
	}
	for _, scene := range a.Scenes {
		if len(scene.Images) == 0 {
			report.Problems = append(report.Problems, problem(scene, "no images generated"))
			continue
		}
		valid := 0
		for _, img := range scene.Images {
			if img.Error == "" && len(img.Data) > 0 {
				valid++
			}
		}
		if valid == 0 {
			report.Problems = append(report.Problems, problem(scene, "every image variant errored"))
			continue
		}
		report.ValidCount += valid
	}
	report.Valid = len(report.Problems) == 0
	return report
}

func (v *Validator) validateAudio(a *artifact.Artifact) AudioReport {
	audio := a.Audio
	switch {
	case audio == nil:
		return AudioReport{Status: artifact.AudioMissing, Reason: "no audio record"}
	case audio.Error != "":
		return AudioReport{Status: artifact.AudioError, Reason: audio.Error}
	case audio.Path == "":
		return AudioReport{Status: artifact.AudioEmpty, Reason: "audio record has no file path"}
	}

	info, err := os.Stat(audio.Path)
	if err != nil {
		return AudioReport{Status: artifact.AudioFileAbsent, Reason: fmt.Sprintf("stat %s: %v", audio.Path, err)}
	}
	if info.Size() < v.sizeFloor {
		return AudioReport{
			Status: artifact.AudioIncomplete,
			Reason: fmt.Sprintf("file is %d bytes, floor is %d", info.Size(), v.sizeFloor),
		}
	}
	if audio.Placeholder {
		return AudioReport{Status: artifact.AudioPlaceholder, Reason: "track assembled from placeholder fragments"}
	}
	return AudioReport{Status: artifact.AudioComplete}
}

func problem(scene artifact.Scene, reason string) Problem {
	return Problem{SceneNumber: scene.SceneNumber, Title: scene.Title, Reason: reason}
}
