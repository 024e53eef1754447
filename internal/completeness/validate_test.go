package completeness_test

import (
	"path/filepath"
	"testing"

	"storyforge/internal/artifact"
	"storyforge/internal/completeness"
	"storyforge/internal/testsupport"
)

const testSizeFloor = 50 * 1024

func completeArtifact(t *testing.T) *artifact.Artifact {
	t.Helper()

	audioPath := filepath.Join(t.TempDir(), "narration.mp3")
	testsupport.WriteFile(t, audioPath, testSizeFloor+1)

	return &artifact.Artifact{
		ID:     "artifact-1",
		Title:  "Complete",
		Scenes: testsupport.CompleteScenes(),
		Audio: &artifact.Audio{
			Path:            audioPath,
			MIMEType:        "audio/mpeg",
			DurationSeconds: 600,
			SegmentCount:    artifact.SceneCount,
			SizeBytes:       testSizeFloor + 1,
		},
	}
}

func TestValidateCompleteArtifactIsPlayable(t *testing.T) {
	v := completeness.New(testSizeFloor)
	report := v.Validate(completeArtifact(t))

	if !report.Scenes.Valid || !report.Entities.Valid || !report.Images.Valid {
		t.Fatalf("expected all text stages valid: %#v", report)
	}
	if report.Audio.Status != artifact.AudioComplete {
		t.Fatalf("expected complete audio, got %s (%s)", report.Audio.Status, report.Audio.Reason)
	}
	if !report.Playable() {
		t.Fatal("expected playable artifact")
	}
	if report.NeedsProcessing() {
		t.Fatal("playable artifact should not need processing")
	}
}

func TestValidateFlagsAllEmptyScenes(t *testing.T) {
	a := completeArtifact(t)
	for i := range a.Scenes {
		a.Scenes[i].Content = ""
	}

	report := completeness.New(testSizeFloor).Validate(a)
	if report.Scenes.Valid {
		t.Fatal("expected scenes stage invalid")
	}
	if len(report.Scenes.Problems) != artifact.SceneCount {
		t.Fatalf("expected %d flagged scenes, got %d", artifact.SceneCount, len(report.Scenes.Problems))
	}
	if !report.NeedsScenes() {
		t.Fatal("expected scene regeneration to be required")
	}
}

func TestValidateFlagsShortSceneContent(t *testing.T) {
	a := completeArtifact(t)
	a.Scenes[3].Content = "brief"

	report := completeness.New(testSizeFloor).Validate(a)
	if report.Scenes.Valid {
		t.Fatal("expected scenes stage invalid")
	}
	if len(report.Scenes.Problems) != 1 || report.Scenes.Problems[0].SceneNumber != 4 {
		t.Fatalf("unexpected problems: %#v", report.Scenes.Problems)
	}
	if report.Scenes.ValidCount != artifact.SceneCount-1 {
		t.Fatalf("expected %d valid scenes, got %d", artifact.SceneCount-1, report.Scenes.ValidCount)
	}
}

func TestValidateFlagsWrongSceneCount(t *testing.T) {
	a := completeArtifact(t)
	a.Scenes = a.Scenes[:1]

	report := completeness.New(testSizeFloor).Validate(a)
	if report.Scenes.Valid {
		t.Fatal("expected scenes stage invalid with a short scene list")
	}
}

func TestValidateMissingSceneList(t *testing.T) {
	a := completeArtifact(t)
	a.Scenes = nil

	report := completeness.New(testSizeFloor).Validate(a)
	if report.Scenes.Valid || report.Entities.Valid || report.Images.Valid {
		t.Fatalf("expected all scene-backed stages invalid: %#v", report)
	}
}

func TestValidateEntityProblems(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*artifact.Scene)
	}{
		{"missing result", func(s *artifact.Scene) { s.Entities = nil }},
		{"recorded error", func(s *artifact.Scene) {
			s.Entities = &artifact.EntityResult{Error: "timeout"}
		}},
		{"empty entity list", func(s *artifact.Scene) {
			s.Entities = &artifact.EntityResult{SourceLength: len(s.Content)}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := completeArtifact(t)
			tc.mutate(&a.Scenes[6])

			report := completeness.New(testSizeFloor).Validate(a)
			if report.Entities.Valid {
				t.Fatal("expected entities stage invalid")
			}
			if len(report.Entities.Problems) != 1 || report.Entities.Problems[0].SceneNumber != 7 {
				t.Fatalf("unexpected problems: %#v", report.Entities.Problems)
			}
		})
	}
}

func TestValidateEntityCountSkipsFlaggedScenes(t *testing.T) {
	a := completeArtifact(t)
	a.Scenes[0].Entities.TotalCount = 5
	a.Scenes[1].Entities = &artifact.EntityResult{Error: "timeout", TotalCount: 99}

	report := completeness.New(testSizeFloor).Validate(a)
	want := 5 + (artifact.SceneCount - 2)
	if report.Entities.ValidCount != want {
		t.Fatalf("expected valid count %d, got %d", want, report.Entities.ValidCount)
	}
}

func TestValidateImagesRequireOneGoodVariant(t *testing.T) {
	a := completeArtifact(t)
	a.Scenes[2].Images = []artifact.ImageResult{
		{Variant: 1, Error: "quota exceeded"},
		{Variant: 2, Error: "quota exceeded"},
	}
	a.Scenes[5].Images = nil

	report := completeness.New(testSizeFloor).Validate(a)
	if report.Images.Valid {
		t.Fatal("expected images stage invalid")
	}
	if len(report.Images.Problems) != 2 {
		t.Fatalf("expected 2 flagged scenes, got %#v", report.Images.Problems)
	}
	if report.Images.ValidCount != artifact.SceneCount-2 {
		t.Fatalf("expected %d valid images, got %d", artifact.SceneCount-2, report.Images.ValidCount)
	}
}

func TestValidateImagesOneFailedVariantStillValid(t *testing.T) {
	a := completeArtifact(t)
	a.Scenes[2].Images = append(a.Scenes[2].Images, artifact.ImageResult{Variant: 2, Error: "quota exceeded"})

	report := completeness.New(testSizeFloor).Validate(a)
	if !report.Images.Valid {
		t.Fatalf("expected images stage valid: %#v", report.Images.Problems)
	}
}

func TestValidateAudioClassification(t *testing.T) {
	goodPath := filepath.Join(t.TempDir(), "good.mp3")
	testsupport.WriteFile(t, goodPath, testSizeFloor+1)
	smallPath := filepath.Join(t.TempDir(), "small.mp3")
	testsupport.WriteFile(t, smallPath, testSizeFloor-10*1024)

	cases := []struct {
		name  string
		audio *artifact.Audio
		want  artifact.AudioStatus
	}{
		{"missing record", nil, artifact.AudioMissing},
		{"recorded error", &artifact.Audio{Error: "assembly produced undersized output"}, artifact.AudioError},
		{"no path", &artifact.Audio{MIMEType: "audio/mpeg"}, artifact.AudioEmpty},
		{"file gone", &artifact.Audio{Path: filepath.Join(t.TempDir(), "gone.mp3")}, artifact.AudioFileAbsent},
		{"undersized", &artifact.Audio{Path: smallPath}, artifact.AudioIncomplete},
		{"placeholder", &artifact.Audio{Path: goodPath, Placeholder: true}, artifact.AudioPlaceholder},
		{"complete", &artifact.Audio{Path: goodPath}, artifact.AudioComplete},
	}

	v := completeness.New(testSizeFloor)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := completeArtifact(t)
			a.Audio = tc.audio

			report := v.Validate(a)
			if report.Audio.Status != tc.want {
				t.Fatalf("expected %s, got %s (%s)", tc.want, report.Audio.Status, report.Audio.Reason)
			}
			if tc.want != artifact.AudioComplete && !report.NeedsAudio() {
				t.Fatalf("status %s should require regeneration", report.Audio.Status)
			}
		})
	}
}

func TestPlaceholderAudioIsNotPlayable(t *testing.T) {
	a := completeArtifact(t)
	a.Audio.Placeholder = true

	report := completeness.New(testSizeFloor).Validate(a)
	if report.Playable() {
		t.Fatal("placeholder audio must not count as playable")
	}
	if !report.NeedsAudio() {
		t.Fatal("placeholder audio must be regenerated")
	}
}
