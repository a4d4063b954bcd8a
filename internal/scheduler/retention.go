package scheduler

import (
	"context"
	"time"

	"cargotrack_backend/platform/logger"
)

const defaultRetentionInterval = 6 * time.Hour

// RetentionStore prunes old bookkeeping rows. Satisfied by the orders
// repository.
type RetentionStore interface {
	CleanupOld(ctx context.Context, olderThan time.Time) (int64, error)
}

// RetentionCleanup periodically removes old run records and processed-sheet
// markers. The tracking ledger is never touched.
type RetentionCleanup struct {
	store    RetentionStore
	log      *logger.Logger
	interval time.Duration
	maxAge   time.Duration
}

func NewRetentionCleanup(store RetentionStore, maxAge time.Duration, log *logger.Logger) *RetentionCleanup {
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}
	return &RetentionCleanup{
		store:    store,
		log:      log,
		interval: defaultRetentionInterval,
		maxAge:   maxAge,
	}
}

// Run blocks until ctx is done, cleaning on a fixed interval.
func (c *RetentionCleanup) Run(ctx context.Context) {
	if c == nil || c.store == nil {
		return
	}

	c.runOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runOnce(ctx)
		}
	}
}

func (c *RetentionCleanup) runOnce(ctx context.Context) {
	deleted, err := c.store.CleanupOld(ctx, time.Now().UTC().Add(-c.maxAge))
	if err != nil {
		c.log.Warn("retention cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		c.log.Info("retention cleanup deleted old records", "deleted", deleted)
	}
}
