package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storyforge/internal/config"
	"storyforge/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyArtifactImported(context.Background(), "Example"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title    string
	message  string
	tags     string
	priority string
}

func newCaptureServer(t *testing.T) (*httptest.Server, *[]captured) {
	t.Helper()

	var requests []captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, captured{
			title:    r.Header.Get("Title"),
			message:  string(body),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func newNtfyService(t *testing.T, endpoint string) notifications.Service {
	t.Helper()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = endpoint
	return notifications.NewService(&cfg)
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	server, requests := newCaptureServer(t)
	svc := newNtfyService(t, server.URL)
	ctx := context.Background()

	if err := svc.NotifyArtifactImported(ctx, "The Glasswood Heir"); err != nil {
		t.Fatalf("NotifyArtifactImported failed: %v", err)
	}
	if err := svc.NotifyArtifactPlayable(ctx, "The Glasswood Heir", 600); err != nil {
		t.Fatalf("NotifyArtifactPlayable failed: %v", err)
	}
	if err := svc.NotifyStageError(ctx, "The Glasswood Heir", "audio", errors.New("undersized output")); err != nil {
		t.Fatalf("NotifyStageError failed: %v", err)
	}
	if err := svc.NotifySweepCompleted(ctx, 12, 3, 11, 42*time.Second); err != nil {
		t.Fatalf("NotifySweepCompleted failed: %v", err)
	}

	got := *requests
	if len(got) != 4 {
		t.Fatalf("expected 4 requests, got %d", len(got))
	}
	if got[0].title != "StoryForge - Imported" || got[0].message != "New story imported: The Glasswood Heir" {
		t.Fatalf("unexpected import notification: %#v", got[0])
	}
	if got[1].priority != "high" || got[1].message != "Ready to play: The Glasswood Heir (10m0s narration)" {
		t.Fatalf("unexpected playable notification: %#v", got[1])
	}
	if got[2].tags != "storyforge,error,alert" {
		t.Fatalf("unexpected error tags: %#v", got[2])
	}
	if got[3].message != "Reconciliation sweep: 12 stories checked, 3 repaired, 11 playable in 42s" {
		t.Fatalf("unexpected sweep message: %#v", got[3])
	}
}

func TestNtfyServiceHonorsEventToggles(t *testing.T) {
	server, requests := newCaptureServer(t)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Imported = false
	cfg.Notifications.Sweep = false
	svc := notifications.NewService(&cfg)

	ctx := context.Background()
	if err := svc.NotifyArtifactImported(ctx, "Muted"); err != nil {
		t.Fatalf("NotifyArtifactImported failed: %v", err)
	}
	if err := svc.NotifySweepCompleted(ctx, 1, 0, 1, time.Second); err != nil {
		t.Fatalf("NotifySweepCompleted failed: %v", err)
	}
	if err := svc.NotifyArtifactPlayable(ctx, "Audible", 60); err != nil {
		t.Fatalf("NotifyArtifactPlayable failed: %v", err)
	}

	if len(*requests) != 1 {
		t.Fatalf("expected only the playable notification, got %d requests", len(*requests))
	}
}

func TestNtfyServiceSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	svc := newNtfyService(t, server.URL)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error from failing ntfy endpoint")
	}
}
