package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cardtrack/internal/ledger/models"
	"cardtrack/internal/watch/metrics"
)

//go:generate mockgen -source=notifier.go -destination=mocks/notifier.go -package=mocks Notifier

// OperationReader is the read-only slice of the ledger the watcher needs.
// It runs without locks against a possibly stale snapshot; the high-water
// mark makes that safe.
type OperationReader interface {
	MatchingAfter(ctx context.Context, target string, afterID int64) ([]models.Operation, error)
	MaxMatchingID(ctx context.Context, target string) (int64, error)
}

// Watcher polls the operation ledger for entries whose offload status
// matches the target and emits one notification per new entry. The
// high-water mark advances per item, so a crash mid-batch re-notifies only
// the unsent remainder: at-least-once, never at-most-once.
type Watcher struct {
	ops      OperationReader
	notifier Notifier
	target   string
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics

	lastNotifiedID int64
}

func New(ops OperationReader, notifier Notifier, target string, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *Watcher {
	return &Watcher{
		ops:      ops,
		notifier: notifier,
		target:   target,
		interval: interval,
		logger:   logger,
		metrics:  m,
	}
}

// Init seeds the high-water mark with the highest already-matching ID so
// only entries appended after startup fire. An unreadable store here is
// fatal: the caller should exit with a diagnostic.
func (w *Watcher) Init(ctx context.Context) error {
	maxID, err := w.ops.MaxMatchingID(ctx, w.target)
	if err != nil {
		return fmt.Errorf("seed watcher high-water mark: %w", err)
	}
	w.lastNotifiedID = maxID
	w.logger.InfoContext(ctx, "watcher initialized",
		"target", w.target,
		"last_notified_id", maxID,
	)
	return nil
}

// Run polls until the context is canceled. Mid-run store and transport
// failures are logged and retried next cycle; nothing short of cancellation
// stops the loop.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.Poll(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll executes one cycle: fetch new matches, notify each in ID order, and
// advance the high-water mark per delivered item. A delivery failure stops
// the batch without advancing past the failed entry, so it is retried.
func (w *Watcher) Poll(ctx context.Context) {
	w.metrics.RecordPoll()

	ops, err := w.ops.MatchingAfter(ctx, w.target, w.lastNotifiedID)
	if err != nil {
		w.metrics.RecordPollFailure()
		w.logger.ErrorContext(ctx, "ledger poll failed", "error", err.Error())
		return
	}

	for _, op := range ops {
		if err := w.notifier.Notify(ctx, op); err != nil {
			w.metrics.RecordSendFailure()
			w.logger.ErrorContext(ctx, "notification failed",
				"operation_id", op.ID,
				"card", op.CardName,
				"error", err.Error(),
			)
			return
		}
		w.lastNotifiedID = op.ID
		w.metrics.RecordSent()
		w.logger.InfoContext(ctx, "notification sent",
			"operation_id", op.ID,
			"card", op.CardName,
			"actor", op.Actor,
		)
	}
}

// LastNotifiedID exposes the high-water mark for tests and diagnostics.
func (w *Watcher) LastNotifiedID() int64 {
	return w.lastNotifiedID
}
