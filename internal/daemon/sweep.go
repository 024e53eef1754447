package daemon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storyforge/internal/logging"
	"storyforge/internal/services"
)

// SweepSummary describes one reconciliation pass over the library.
// Playable counts artifacts playable after the sweep; AlreadyComplete
// counts those that needed nothing.
type SweepSummary struct {
	Total           int
	AlreadyComplete int
	Repaired        int
	Playable        int
	Elapsed         time.Duration
}

// Sweep validates every stored artifact and runs a pipeline pass for each
// one that is incomplete or flagged for forced regeneration. Complete
// artifacts are skipped, so a sweep over a healthy library touches nothing.
func (d *Daemon) Sweep(ctx context.Context) (SweepSummary, error) {
	start := time.Now()
	var summary SweepSummary

	ids, err := d.store.ListIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("list artifacts: %w", err)
	}
	summary.Total = len(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		a, err := d.store.GetByID(ctx, id)
		if err != nil {
			return summary, fmt.Errorf("load artifact %s: %w", id, err)
		}
		if a == nil {
			continue
		}

		report := d.validator.Validate(a)
		if !report.NeedsProcessing() && !a.ForceRegenerate {
			summary.AlreadyComplete++
			summary.Playable++
			continue
		}

		summary.Repaired++
		res, err := d.proc.Process(ctx, id)
		if err != nil {
			// Deleted between listing and processing.
			if errors.Is(err, services.ErrNotFound) {
				continue
			}
			if services.IsFatal(err) {
				return summary, fmt.Errorf("sweep pass for %s: %w", id, err)
			}
			d.logger.Error("sweep pass failed",
				logging.String(logging.FieldArtifactID, id),
				logging.Error(err))
			if notifyErr := d.notifier.NotifyStageError(ctx, a.Title, "pipeline", err); notifyErr != nil {
				d.logger.Warn("error notification failed", logging.Error(notifyErr))
			}
			continue
		}
		if res.Report.Playable() {
			summary.Playable++
			duration := 0.0
			if repaired, fetchErr := d.store.GetByID(ctx, id); fetchErr == nil && repaired != nil && repaired.Audio != nil {
				duration = repaired.Audio.DurationSeconds
			}
			if notifyErr := d.notifier.NotifyArtifactPlayable(ctx, a.Title, duration); notifyErr != nil {
				d.logger.Warn("playable notification failed", logging.Error(notifyErr))
			}
		}
	}

	summary.Elapsed = time.Since(start)
	return summary, nil
}
