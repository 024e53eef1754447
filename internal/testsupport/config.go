package testsupport

import (
	"path/filepath"
	"testing"

	"storyforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Gemini.APIKey = "test"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.IntakeDir = filepath.Join(base, "intake")
	cfg.Paths.MediaDir = filepath.Join(base, "media")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithSceneWorkers caps per-scene parallelism on the test config.
func WithSceneWorkers(workers int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.SceneWorkers = workers
	}
}

// WithAudioSizeFloor overrides the minimum byte size for a playable track.
func WithAudioSizeFloor(floor int64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Audio.SizeFloor = floor
	}
}
