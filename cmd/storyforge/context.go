package main

import (
	"context"
	"strings"
	"sync"

	"storyforge/internal/assembly"
	"storyforge/internal/completeness"
	"storyforge/internal/config"
	"storyforge/internal/generate"
	"storyforge/internal/logging"
	"storyforge/internal/pipeline"
	"storyforge/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) withStore(fn func(*config.Config, *store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(cfg, st)
}

// withOrchestrator wires a full in-process pipeline. CLI passes share the
// SQLite store with a running daemon; WAL mode and the busy timeout keep
// concurrent writers safe.
func (c *commandContext) withOrchestrator(ctx context.Context, fn func(*config.Config, *store.Store, *pipeline.Orchestrator) error) error {
	return c.withStore(func(cfg *config.Config, st *store.Store) error {
		client, err := generate.NewClient(ctx, cfg.Gemini, logging.NewNop())
		if err != nil {
			return err
		}
		assembler := assembly.New(
			assembly.NewFFmpegEncoder(cfg.Audio),
			assembly.NewFFprobeProber(cfg.Audio),
			cfg,
			logging.NewNop(),
		)
		orch, err := pipeline.New(cfg, st, pipeline.Collaborators{
			Scenes:   client,
			Entities: client,
			Images:   client,
			Speech:   client,
		}, assembler, logging.NewNop())
		if err != nil {
			return err
		}
		defer orch.Close()
		return fn(cfg, st, orch)
	})
}

func (c *commandContext) validator() (*completeness.Validator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return completeness.New(cfg.Audio.SizeFloor), nil
}
