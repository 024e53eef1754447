package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storyforge/internal/config"
)

const userAgent = "StoryForge-Go/0.1.0"

// Service defines the notification surface exposed to the daemon.
type Service interface {
	NotifyArtifactImported(ctx context.Context, title string) error
	NotifyArtifactPlayable(ctx context.Context, title string, durationSeconds float64) error
	NotifyStageError(ctx context.Context, title, stage string, err error) error
	NotifySweepCompleted(ctx context.Context, total, repaired, playable int, duration time.Duration) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled:  cfg.Notifications,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  config.Notifications
}

func (n *ntfyService) NotifyArtifactImported(ctx context.Context, title string) error {
	if !n.enabled.Imported {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "StoryForge - Imported",
		message: fmt.Sprintf("New story imported: %s", title),
		tags:    []string{"storyforge", "intake", "imported"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyArtifactPlayable(ctx context.Context, title string, durationSeconds float64) error {
	if !n.enabled.Playable {
		return nil
	}
	title = strings.TrimSpace(title)
	duration := time.Duration(durationSeconds * float64(time.Second)).Round(time.Second)
	data := payload{
		title:    "StoryForge - Ready",
		message:  fmt.Sprintf("Ready to play: %s (%s narration)", title, duration),
		tags:     []string{"storyforge", "pipeline", "playable"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyStageError(ctx context.Context, title, stage string, err error) error {
	if !n.enabled.Errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Stage failed")
	if stage = strings.TrimSpace(stage); stage != "" {
		builder.WriteString(" (")
		builder.WriteString(stage)
		builder.WriteString(")")
	}
	if title = strings.TrimSpace(title); title != "" {
		builder.WriteString(" for ")
		builder.WriteString(title)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "StoryForge - Error",
		message:  builder.String(),
		tags:     []string{"storyforge", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySweepCompleted(ctx context.Context, total, repaired, playable int, duration time.Duration) error {
	if !n.enabled.Sweep {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	data := payload{
		title: "StoryForge - Sweep Complete",
		message: fmt.Sprintf("Reconciliation sweep: %d stories checked, %d repaired, %d playable in %s",
			total, repaired, playable, durationText),
		tags: []string{"storyforge", "sweep", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "StoryForge - Test",
		message:  "Notification system test",
		tags:     []string{"storyforge", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyArtifactImported(context.Context, string) error                 { return nil }
func (noopService) NotifyArtifactPlayable(context.Context, string, float64) error        { return nil }
func (noopService) NotifyStageError(context.Context, string, string, error) error        { return nil }
func (noopService) NotifySweepCompleted(context.Context, int, int, int, time.Duration) error {
	return nil
}
func (noopService) TestNotification(context.Context) error { return nil }
