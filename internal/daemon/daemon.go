package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"storyforge/internal/completeness"
	"storyforge/internal/config"
	"storyforge/internal/logging"
	"storyforge/internal/notifications"
	"storyforge/internal/store"
	"storyforge/internal/watcher"
)

// Daemon coordinates the background services and enforces single-instance execution.
type Daemon struct {
	cfg       *config.Config
	store     *store.Store
	proc      watcher.Processor
	notifier  notifications.Service
	validator *completeness.Validator
	watcher   *watcher.Watcher
	logger    *slog.Logger

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	done    sync.WaitGroup
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, proc watcher.Processor, notifier notifications.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || proc == nil {
		return nil, errors.New("daemon requires config, store, and processor")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "storyforged.lock")
	return &Daemon{
		cfg:       cfg,
		store:     st,
		proc:      proc,
		notifier:  notifier,
		validator: completeness.New(cfg.Audio.SizeFloor),
		watcher:   watcher.New(cfg, st, proc, notifier, logger),
		logger:    logger,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock, runs the startup reconciliation sweep,
// then launches the intake watcher.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another storyforge daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("storyforge daemon started", logging.String("lock", d.lockPath))

	d.done.Add(1)
	go func() {
		defer d.done.Done()

		summary, err := d.Sweep(runCtx)
		if err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("reconciliation sweep failed", logging.Error(err))
		} else if err == nil {
			d.reportSweep(runCtx, summary)
		}

		if err := d.watcher.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("intake watcher stopped", logging.Error(err))
		}
	}()
	return nil
}

// Stop halts background processing and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.done.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("storyforge daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether background processing is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LockPath returns the instance lock file location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

func (d *Daemon) reportSweep(ctx context.Context, summary SweepSummary) {
	d.logger.Info("reconciliation sweep finished",
		logging.Group("summary",
			logging.Int("total", summary.Total),
			logging.Int("already_complete", summary.AlreadyComplete),
			logging.Int("repaired", summary.Repaired),
			logging.Int("playable", summary.Playable)),
		logging.Duration("elapsed", summary.Elapsed))
	if summary.Total == 0 {
		return
	}
	if err := d.notifier.NotifySweepCompleted(ctx, summary.Total, summary.Repaired, summary.Playable, summary.Elapsed); err != nil {
		d.logger.Warn("sweep notification failed", logging.Error(err))
	}
}
