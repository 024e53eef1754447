// Command storyforged runs the story generation daemon: it watches the
// intake directory for submissions, reconciles the library at startup, and
// repairs incomplete artifacts.
package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"storyforge/internal/assembly"
	"storyforge/internal/config"
	"storyforge/internal/daemon"
	"storyforge/internal/deps"
	"storyforge/internal/generate"
	"storyforge/internal/logging"
	"storyforge/internal/notifications"
	"storyforge/internal/pipeline"
	"storyforge/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	statuses := deps.Check(deps.Narration(cfg.Audio))
	for _, status := range statuses {
		if status.Available || !status.Optional {
			continue
		}
		logger.Warn("optional dependency missing",
			logging.String("name", status.Name),
			logging.String("detail", status.Detail))
	}
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		logger.Error("required dependencies missing",
			logging.String("names", strings.Join(missing, ", ")))
		return
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open artifact store", logging.Error(err))
		return
	}

	client, err := generate.NewClient(ctx, cfg.Gemini, logging.NewComponentLogger(logger, "generate"))
	if err != nil {
		logger.Error("init generation client", logging.Error(err))
		st.Close()
		return
	}

	assembler := assembly.New(
		assembly.NewFFmpegEncoder(cfg.Audio),
		assembly.NewFFprobeProber(cfg.Audio),
		cfg,
		logging.NewComponentLogger(logger, "assembly"),
	)

	orch, err := pipeline.New(cfg, st, pipeline.Collaborators{
		Scenes:   client,
		Entities: client,
		Images:   client,
		Speech:   client,
	}, assembler, logging.NewComponentLogger(logger, "pipeline"))
	if err != nil {
		logger.Error("create orchestrator", logging.Error(err))
		st.Close()
		return
	}
	defer orch.Close()

	notifier := notifications.NewService(cfg)
	d, err := daemon.New(cfg, st, orch, notifier, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		st.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("storyforged shutting down")
	d.Stop()
}
