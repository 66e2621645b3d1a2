package worker

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"catatan/internal/amqp"
	"catatan/internal/core"
	"catatan/internal/storage"
)

type fakeAppender struct {
	mu       sync.Mutex
	appended []core.Expense
	err      error
}

func (f *fakeAppender) Append(_ context.Context, e core.Expense) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.appended = append(f.appended, e)
	return "Catatan!A2:G2", nil
}

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func insertExpense(t *testing.T, repo *storage.SQLiteRepository) int64 {
	t.Helper()
	id, err := repo.Insert(context.Background(), core.Expense{
		Date:        time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		Description: "Nasi goreng",
		Amount:      core.Money{Rupiah: 15000},
		Category:    "Food & Dining",
		Source:      core.SourceText,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	return id
}

func TestHandleSyncMessage(t *testing.T) {
	repo := newTestRepo(t)
	appender := &fakeAppender{}
	w := NewSyncWorker(repo, appender, 10)
	ctx := context.Background()

	id := insertExpense(t, repo)

	if err := w.HandleSyncMessage(ctx, amqp.NewExpenseSyncMessage(id, 1)); err != nil {
		t.Fatalf("HandleSyncMessage failed: %v", err)
	}
	if len(appender.appended) != 1 {
		t.Fatalf("expected 1 append, got %d", len(appender.appended))
	}

	rec, err := repo.GetExpense(ctx, id)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if !rec.Synced {
		t.Fatal("expected expense marked synced")
	}

	// Re-delivering the same message must not append twice.
	if err := w.HandleSyncMessage(ctx, amqp.NewExpenseSyncMessage(id, 1)); err != nil {
		t.Fatalf("HandleSyncMessage redelivery failed: %v", err)
	}
	if len(appender.appended) != 1 {
		t.Fatalf("expected idempotent redelivery, got %d appends", len(appender.appended))
	}
}

func TestHandleSyncMessageUnknownID(t *testing.T) {
	repo := newTestRepo(t)
	w := NewSyncWorker(repo, &fakeAppender{}, 10)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewExpenseSyncMessage(9999, 1)); err == nil {
		t.Fatal("expected error for unknown expense ID")
	}
}

func TestHandleSyncMessageAppendFailure(t *testing.T) {
	repo := newTestRepo(t)
	appender := &fakeAppender{err: errors.New("sheets unavailable")}
	w := NewSyncWorker(repo, appender, 10)
	ctx := context.Background()

	id := insertExpense(t, repo)

	if err := w.HandleSyncMessage(ctx, amqp.NewExpenseSyncMessage(id, 1)); err == nil {
		t.Fatal("expected error when append fails")
	}

	rec, err := repo.GetExpense(ctx, id)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if !rec.SyncError {
		t.Fatal("expected sync_error flag after append failure")
	}
}

func TestProcessPendingExpenses(t *testing.T) {
	repo := newTestRepo(t)
	appender := &fakeAppender{}
	w := NewSyncWorker(repo, appender, 10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		insertExpense(t, repo)
	}

	if err := w.ProcessPendingExpenses(ctx); err != nil {
		t.Fatalf("ProcessPendingExpenses failed: %v", err)
	}
	if len(appender.appended) != 3 {
		t.Fatalf("expected 3 appends, got %d", len(appender.appended))
	}

	pending, err := repo.GetPendingSyncExpenses(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncExpenses failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending after scan, got %d", len(pending))
	}
}

func TestStartupSyncCheckEmpty(t *testing.T) {
	repo := newTestRepo(t)
	w := NewSyncWorker(repo, &fakeAppender{}, 10)
	if err := w.StartupSyncCheck(context.Background()); err != nil {
		t.Fatalf("StartupSyncCheck on empty db failed: %v", err)
	}
}
