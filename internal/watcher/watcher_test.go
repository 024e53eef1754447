package watcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

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

type recordingNotifier struct {
	imported []string
	playable []string
	errors   []string
}

func (r *recordingNotifier) NotifyArtifactImported(_ context.Context, title string) error {
	r.imported = append(r.imported, title)
	return nil
}

func (r *recordingNotifier) NotifyArtifactPlayable(_ context.Context, title string, _ float64) error {
	r.playable = append(r.playable, title)
	return nil
}

func (r *recordingNotifier) NotifyStageError(_ context.Context, title, _ string, _ error) error {
	r.errors = append(r.errors, title)
	return nil
}

func (r *recordingNotifier) NotifySweepCompleted(context.Context, int, int, int, time.Duration) error {
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

func writeSubmission(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write submission: %v", err)
	}
	return path
}

func TestParseSubmission(t *testing.T) {
	sub, err := ParseSubmission([]byte(`{
		"title": "  The Lantern Road  ",
		"outline": "A courier crosses the mountains.",
		"characters": [
			{"name": "Mira"},
			{"name": "   "},
			{"name": "Tobin", "photo_url": "https://example.test/tobin.png"}
		]
	}`))
	if err != nil {
		t.Fatalf("ParseSubmission: %v", err)
	}
	if sub.Title != "The Lantern Road" {
		t.Fatalf("title = %q", sub.Title)
	}
	if len(sub.Characters) != 2 {
		t.Fatalf("characters = %d, want 2 after filtering blanks", len(sub.Characters))
	}
	if sub.Characters[1].PhotoURL == "" {
		t.Fatal("photo URL dropped")
	}
}

func TestParseSubmissionRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"not json":      `{"title":`,
		"missing title": `{"outline": "no title here"}`,
		"blank title":   `{"title": "   "}`,
	}
	for name, body := range cases {
		if _, err := ParseSubmission([]byte(body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestToArtifactDownloadsPhotos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	sub := &Submission{
		Title: "Harbor Lights",
		Characters: []SubmissionCharacter{
			{Name: "Mira", PhotoURL: srv.URL + "/mira.jpg"},
			{Name: "Tobin", PhotoURL: srv.URL + "/missing.png"},
			{Name: "Extra"},
		},
	}
	a := sub.ToArtifact(context.Background(), srv.Client())

	if a.Characters[0].Photo == nil || string(a.Characters[0].Photo.Data) != "jpeg-bytes" {
		t.Fatalf("photo not downloaded: %+v", a.Characters[0].Photo)
	}
	if a.Characters[0].Photo.MIMEType != "image/jpeg" {
		t.Fatalf("mime = %q", a.Characters[0].Photo.MIMEType)
	}
	if a.Characters[1].Photo == nil || a.Characters[1].Photo.Error == "" {
		t.Fatal("failed download should record an error")
	}
	if a.Characters[2].Photo != nil {
		t.Fatal("character without URL should have no photo")
	}
}

func TestImportFileCreatesArtifact(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	proc := &fakeProcessor{}
	notifier := &recordingNotifier{}
	w := New(cfg, st, proc, notifier, nil)

	path := writeSubmission(t, cfg.Paths.IntakeDir, "story.json",
		`{"title": "Harbor Lights", "outline": "A keeper and a storm."}`)
	w.importFile(context.Background(), path)

	ids, err := st.ListIDs(context.Background())
	if err != nil {
		t.Fatalf("ListIDs: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("artifacts = %d, want 1", len(ids))
	}
	if len(proc.ids) != 1 || proc.ids[0] != ids[0] {
		t.Fatalf("processor calls = %v, want [%s]", proc.ids, ids[0])
	}
	if len(notifier.imported) != 1 || notifier.imported[0] != "Harbor Lights" {
		t.Fatalf("imported notifications = %v", notifier.imported)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("submission file should be renamed after import")
	}
	if _, err := os.Stat(path + importedSuffix); err != nil {
		t.Fatalf("imported marker missing: %v", err)
	}
}

func TestImportFileInvalidSubmissionConsumed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	proc := &fakeProcessor{}
	w := New(cfg, st, proc, &recordingNotifier{}, nil)

	path := writeSubmission(t, cfg.Paths.IntakeDir, "broken.json", `{"outline": "no title"}`)
	w.importFile(context.Background(), path)

	ids, err := st.ListIDs(context.Background())
	if err != nil {
		t.Fatalf("ListIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatal("invalid submission must not create an artifact")
	}
	if len(proc.ids) != 0 {
		t.Fatal("invalid submission must not trigger processing")
	}
	if _, err := os.Stat(path + importedSuffix); err != nil {
		t.Fatalf("invalid submission should still be renamed: %v", err)
	}
}

func TestImportFileNotifiesPlayable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	notifier := &recordingNotifier{}
	proc := &fakeProcessor{result: pipeline.Result{
		Changed: true,
		Report: completeness.Report{
			Scenes:   completeness.StageReport{Valid: true},
			Entities: completeness.StageReport{Valid: true},
			Images:   completeness.StageReport{Valid: true},
			Audio:    completeness.AudioReport{Status: artifact.AudioComplete},
		},
	}}
	w := New(cfg, st, proc, notifier, nil)

	path := writeSubmission(t, cfg.Paths.IntakeDir, "done.json", `{"title": "Harbor Lights"}`)
	w.importFile(context.Background(), path)

	if len(notifier.playable) != 1 {
		t.Fatalf("playable notifications = %v, want one", notifier.playable)
	}
}

func TestDrainReleasesPendingTimers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	proc := &fakeProcessor{}
	w := New(cfg, st, proc, &recordingNotifier{}, nil)
	w.settle = time.Hour

	path := writeSubmission(t, cfg.Paths.IntakeDir, "slow.json", `{"title": "Stalled"}`)
	w.schedule(context.Background(), path)
	w.drainTimers()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after draining a pending timer")
	}
	if len(proc.ids) != 0 {
		t.Fatal("drained timer must not import")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("submission should remain pending: %v", err)
	}

	// A rescheduled file still imports once the timer fires.
	w.settle = time.Millisecond
	w.schedule(context.Background(), path)
	fired := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(fired)
	}()
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("settle timer never fired")
	}
	if len(proc.ids) != 1 {
		t.Fatalf("processor calls = %v, want one import", proc.ids)
	}
}

func TestScanOnceImportsPending(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	proc := &fakeProcessor{}
	w := New(cfg, st, proc, &recordingNotifier{}, nil)

	writeSubmission(t, cfg.Paths.IntakeDir, "one.json", `{"title": "First"}`)
	writeSubmission(t, cfg.Paths.IntakeDir, "two.json", `{"title": "Second"}`)
	writeSubmission(t, cfg.Paths.IntakeDir, "notes.txt", `ignored`)
	writeSubmission(t, cfg.Paths.IntakeDir, "old.json.imported", `{"title": "Old"}`)

	w.ScanOnce(context.Background())

	ids, err := st.ListIDs(context.Background())
	if err != nil {
		t.Fatalf("ListIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("artifacts = %d, want 2", len(ids))
	}
}
