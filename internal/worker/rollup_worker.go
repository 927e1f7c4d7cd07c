// Package worker maintains the monthly_rollups read model. Rollups are
// recomputed from the full transaction snapshot rather than patched
// incrementally, so a lost or duplicated event can never corrupt them.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/engine"
	"finboard/internal/storage"
)

// RollupStore is the slice of storage the worker needs.
type RollupStore interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	ReplaceRollups(ctx context.Context, rollups []storage.MonthlyRollup) error
}

// RollupWorker refreshes the persisted monthly rollups whenever the
// transaction set changes, and periodically as a backup for lost messages.
type RollupWorker struct {
	store RollupStore
}

func NewRollupWorker(store RollupStore) *RollupWorker {
	return &RollupWorker{store: store}
}

// HandleTransactionEvent processes one transaction-changed message. The
// event payload only triggers the refresh; the rollup always derives from
// the current snapshot.
func (w *RollupWorker) HandleTransactionEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"id", msg.ID,
		"action", string(msg.Action))

	return w.Refresh(ctx)
}

// Refresh recomputes all twelve month slots and overwrites the read model.
func (w *RollupWorker) Refresh(ctx context.Context) error {
	txs, err := w.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot for rollup: %w", err)
	}

	buckets := engine.MonthlySeries(txs)
	rollups := make([]storage.MonthlyRollup, len(buckets))
	for i, b := range buckets {
		rollups[i] = storage.MonthlyRollup{
			Month:            i + 1,
			IncomeCents:      b.IncomeCents,
			ExpenseCents:     b.ExpenseCents,
			BalanceCents:     b.BalanceCents,
			TransactionCount: b.TransactionCount,
		}
	}

	if err := w.store.ReplaceRollups(ctx, rollups); err != nil {
		return fmt.Errorf("persist rollups: %w", err)
	}

	slog.InfoContext(ctx, "Monthly rollups refreshed", "transactions", len(txs))
	return nil
}

// RunPeriodicRefresh refreshes on a ticker until the context is cancelled.
// This is the backstop for events lost while the broker or worker was down.
func (w *RollupWorker) RunPeriodicRefresh(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping periodic rollup refresh", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.Refresh(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic rollup refresh failed", "error", err)
			}
		}
	}
}
