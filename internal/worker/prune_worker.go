package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hexlight/portal-notifier/internal/store"
)

// PruneWorker periodically deletes delivery-log rows older than the
// retention window. The trail exists for support debugging, not audit, so
// losing old rows is fine and keeps the table from growing unbounded.
type PruneWorker struct {
	deliveries store.DeliveryRepository
	interval   time.Duration
	retention  time.Duration
	logger     *zap.Logger
}

func NewPruneWorker(
	deliveries store.DeliveryRepository,
	interval time.Duration,
	retention time.Duration,
	logger *zap.Logger,
) *PruneWorker {
	return &PruneWorker{deliveries: deliveries, interval: interval, retention: retention, logger: logger}
}

// Run ticks every interval and prunes expired rows.
// Stops cleanly when ctx is cancelled.
func (pw *PruneWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	pw.logger.Info("prune worker started",
		zap.Duration("interval", pw.interval),
		zap.Duration("retention", pw.retention),
	)

	for {
		select {
		case <-ctx.Done():
			pw.logger.Info("prune worker stopping")
			return
		case <-ticker.C:
			pw.prune(ctx)
		}
	}
}

func (pw *PruneWorker) prune(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-pw.retention)
	removed, err := pw.deliveries.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		pw.logger.Error("prune error", zap.Error(err))
		return
	}
	if removed > 0 {
		pw.logger.Info("pruned old deliveries", zap.Int64("count", removed))
	}
}
