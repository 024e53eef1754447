package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"storyforge/internal/artifact"
	"storyforge/internal/completeness"
	"storyforge/internal/pipeline"
	"storyforge/internal/testsupport"
)

type fakeProcessor struct {
	ids    []string
	result pipeline.Result
	err    error
}

func (f *fakeProcessor) Process(_ context.Context, id string) (pipeline.Result, error) {
	f.ids = append(f.ids, id)
	return f.result, f.err
}

func playableResult() pipeline.Result {
	return pipeline.Result{
		Changed: true,
		Report: completeness.Report{
			Scenes:   completeness.StageReport{Valid: true},
			Entities: completeness.StageReport{Valid: true},
			Images:   completeness.StageReport{Valid: true},
			Audio:    completeness.AudioReport{Status: artifact.AudioComplete},
		},
	}
}

func TestSweepRepairsIncompleteArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	proc := &fakeProcessor{result: playableResult()}
	d, err := New(cfg, st, proc, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Fresh artifacts have no scenes, so both need a pass.
	first := testsupport.NewArtifact(t, st, "First")
	second := testsupport.NewArtifact(t, st, "Second")

	summary, err := d.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if summary.Total != 2 {
		t.Fatalf("total = %d, want 2", summary.Total)
	}
	if summary.Repaired != 2 {
		t.Fatalf("repaired = %d, want 2", summary.Repaired)
	}
	if summary.Playable != 2 {
		t.Fatalf("playable = %d, want 2", summary.Playable)
	}
	if len(proc.ids) != 2 {
		t.Fatalf("processor calls = %v", proc.ids)
	}
	seen := map[string]bool{proc.ids[0]: true, proc.ids[1]: true}
	if !seen[first.ID] || !seen[second.ID] {
		t.Fatalf("processed %v, want %s and %s", proc.ids, first.ID, second.ID)
	}
}

func TestSweepSkipsCompleteArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAudioSizeFloor(1024))
	st := testsupport.MustOpenStore(t, cfg)
	proc := &fakeProcessor{result: playableResult()}
	d, err := New(cfg, st, proc, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	a := testsupport.NewArtifact(t, st, "Complete")
	a.Scenes = testsupport.CompleteScenes()
	a.RecountWords()
	if err := st.SaveScenes(context.Background(), a); err != nil {
		t.Fatalf("SaveScenes: %v", err)
	}
	audioPath := filepath.Join(cfg.Paths.MediaDir, a.ID+".mp3")
	testsupport.WriteFile(t, audioPath, cfg.Audio.SizeFloor+1)
	a.Audio = testsupport.CompleteAudio(t, audioPath)
	if err := st.SaveAudio(context.Background(), a); err != nil {
		t.Fatalf("SaveAudio: %v", err)
	}

	summary, err := d.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if summary.Repaired != 0 {
		t.Fatalf("repaired = %d, want 0", summary.Repaired)
	}
	if summary.AlreadyComplete != 1 {
		t.Fatalf("already complete = %d, want 1", summary.AlreadyComplete)
	}
	if summary.Playable != 1 {
		t.Fatalf("playable = %d, want 1", summary.Playable)
	}
	if len(proc.ids) != 0 {
		t.Fatalf("complete artifact should not be processed, got %v", proc.ids)
	}
}

func TestSweepHonorsForceFlag(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	proc := &fakeProcessor{result: playableResult()}
	d, err := New(cfg, st, proc, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	a := testsupport.NewArtifact(t, st, "Forced")
	a.Scenes = testsupport.CompleteScenes()
	a.RecountWords()
	if err := st.SaveScenes(context.Background(), a); err != nil {
		t.Fatalf("SaveScenes: %v", err)
	}
	audioPath := filepath.Join(cfg.Paths.MediaDir, a.ID+".mp3")
	testsupport.WriteFile(t, audioPath, cfg.Audio.SizeFloor+1)
	a.Audio = testsupport.CompleteAudio(t, audioPath)
	if err := st.SaveAudio(context.Background(), a); err != nil {
		t.Fatalf("SaveAudio: %v", err)
	}
	if err := st.SetForceRegenerate(context.Background(), a.ID, true); err != nil {
		t.Fatalf("SetForceRegenerate: %v", err)
	}

	summary, err := d.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if summary.Repaired != 1 {
		t.Fatalf("repaired = %d, want 1", summary.Repaired)
	}
	if len(proc.ids) != 1 || proc.ids[0] != a.ID {
		t.Fatalf("processor calls = %v", proc.ids)
	}
}

func TestStartStopReleasesLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	d, err := New(cfg, st, &fakeProcessor{}, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !d.Running() {
		t.Fatal("daemon should report running")
	}
	if _, err := os.Stat(d.LockPath()); err != nil {
		t.Fatalf("lock file missing: %v", err)
	}
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("second Start should fail while running")
	}
	d.Stop()
	if d.Running() {
		t.Fatal("daemon should report stopped")
	}

	// Lock must be reacquirable after a clean stop.
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	d.Stop()
}
