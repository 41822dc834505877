// Package retention runs the scheduled auto-archive job. On each cron tick
// it archives unpinned chats whose creation time has fallen past the
// configured period.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"nebula/pkg/config"
	"nebula/pkg/logger"
	"nebula/pkg/store"
)

const defaultPeriod = 90 * 24 * time.Hour

// Start starts the archive scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, cfg config.RetentionConfig) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Info("retention_disabled")
		return func() {}, nil
	}

	// map empty cron to default daily @02:00
	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = "0 2 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("retention_invalid_cron", "cron", cfg.Cron)
		return nil, fmt.Errorf("invalid retention cron expression: %s", cfg.Cron)
	}

	period := defaultPeriod
	if cfg.Period != "" {
		p, err := time.ParseDuration(cfg.Period)
		if err != nil {
			logger.Error("retention_invalid_period", "period", cfg.Period, "error", err)
			return nil, fmt.Errorf("invalid retention period: %s", cfg.Period)
		}
		period = p
	}

	logger.Info("retention_enabled", "cron", cronExpr, "period", period.String())
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr, period)
	return cancel, nil
}

// runScheduler uses gronx to compute the next tick for the configured cron
// expression and sleeps until that time.
func runScheduler(ctx context.Context, cronExpr string, period time.Duration) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("retention_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			RunOnce(period)
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		}
	}
}

// RunOnce archives chats older than the period. Exposed so admin tooling
// and tests can trigger a run without waiting for the cron tick.
func RunOnce(period time.Duration) {
	cutoff := time.Now().UTC().Add(-period)
	n, err := store.ArchiveOlderThan(cutoff)
	if err != nil {
		logger.Error("retention_run_error", "error", err)
		return
	}
	logger.Info("retention_run_complete", "archived", n, "cutoff", cutoff.Format(time.RFC3339))
}
