package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"catatan/internal/amqp"
	ports "catatan/internal/ledger"
	"catatan/internal/storage"
)

// SyncWorker mirrors locally saved expenses to the Google Sheets ledger.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	ledger    ports.ExpenseAppender
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, ledger ports.ExpenseAppender, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		ledger:    ledger,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single expense sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ExpenseSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	rec, err := w.storage.GetExpense(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}
	if rec.Synced {
		slog.InfoContext(ctx, "Expense already synced, skipping", "id", msg.ID)
		return nil
	}

	if err := w.syncExpense(ctx, rec); err != nil {
		return fmt.Errorf("sync expense: %w", err)
	}
	return nil
}

// ProcessPendingExpenses syncs expenses that have no successful mirror yet.
// This is the backup path for lost AMQP messages.
func (w *SyncWorker) ProcessPendingExpenses(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck drains the pending backlog accumulated during downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize*5)
}

// RunPeriodic runs the pending scan at the given interval until the context ends.
func (w *SyncWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPendingExpenses(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending expense scan failed", "error", err)
			}
		}
	}
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) error {
	pending, err := w.storage.GetPendingSyncExpenses(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending expenses", "count", len(pending))

	successCount := 0
	for _, p := range pending {
		rec, err := w.storage.GetExpense(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get expense", "id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			continue
		}
		if err := w.syncExpense(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to sync expense", "id", p.ID, "error", err)
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Pending sync completed",
		"total", len(pending),
		"synced", successCount)
	return nil
}

func (w *SyncWorker) syncExpense(ctx context.Context, rec storage.ExpenseRecord) error {
	ref, err := w.ledger.Append(ctx, rec.Expense)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, rec.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", rec.ID, "error", markErr)
		}
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, rec.ID); err != nil {
		// The mirror succeeded; only the local flag update failed.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", rec.ID, "error", err)
	}

	slog.InfoContext(ctx, "Synced expense",
		"id", rec.ID,
		"row_ref", ref,
		"description", rec.Expense.Description,
		"amount", rec.Expense.Amount.Rupiah)
	return nil
}
