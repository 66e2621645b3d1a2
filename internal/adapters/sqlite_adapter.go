package adapters

import (
	"context"
	"time"

	"catatan/internal/core"
	ports "catatan/internal/ledger"
	"catatan/internal/services"
	"catatan/internal/storage"
)

// SQLiteAdapter exposes the SQLite-backed service through the ledger ports so
// the bot works unchanged against the local-first backend.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.ExpenseService
}

var (
	_ ports.ExpenseAppender = (*SQLiteAdapter)(nil)
	_ ports.MonthReader     = (*SQLiteAdapter)(nil)
)

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.ExpenseService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// Append implements ledger.ExpenseAppender.
func (a *SQLiteAdapter) Append(ctx context.Context, e core.Expense) (string, error) {
	return a.service.CreateExpense(ctx, e)
}

// ListMonth implements ledger.MonthReader.
func (a *SQLiteAdapter) ListMonth(ctx context.Context, year int, month time.Month) ([]core.Expense, error) {
	return a.storage.ListMonth(ctx, year, month)
}
