package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"catatan/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

// ExpenseRecord is an expense row together with its database bookkeeping.
type ExpenseRecord struct {
	ID        int64
	Expense   core.Expense
	Synced    bool
	SyncError bool
	CreatedAt time.Time
}

// PendingSyncExpense is the minimal payload for sync queue messages.
type PendingSyncExpense struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Insert stores the expense and returns its row ID.
func (r *SQLiteRepository) Insert(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (date, description, amount, category, location, source, input_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Date.Format(dateLayout), e.Description, e.Amount.Rupiah,
		e.Category, e.Location, string(e.Source), e.InputBy)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"description", e.Description,
		"amount", e.Amount.Rupiah,
		"category", e.Category)

	return id, nil
}

// ListMonth returns the expenses recorded in the given month ordered by date.
func (r *SQLiteRepository) ListMonth(ctx context.Context, year int, month time.Month) ([]core.Expense, error) {
	prefix := fmt.Sprintf("%04d-%02d-%%", year, int(month))
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, description, amount, category, location, source, input_by
		 FROM expenses WHERE date LIKE ? ORDER BY date, id`, prefix)
	if err != nil {
		return nil, fmt.Errorf("query month expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var dateStr string
		var e core.Expense
		var source string
		if err := rows.Scan(&dateStr, &e.Description, &e.Amount.Rupiah,
			&e.Category, &e.Location, &source, &e.InputBy); err != nil {
			return nil, fmt.Errorf("scan expense row: %w", err)
		}
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			continue
		}
		e.Date = date
		e.Source = core.Source(source)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense rows: %w", err)
	}
	return out, nil
}

// GetExpense retrieves a single expense by ID.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (ExpenseRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, date, description, amount, category, location, source, input_by,
		        synced, sync_error, created_at
		 FROM expenses WHERE id = ?`, id)

	var rec ExpenseRecord
	var dateStr, source string
	if err := row.Scan(&rec.ID, &dateStr, &rec.Expense.Description, &rec.Expense.Amount.Rupiah,
		&rec.Expense.Category, &rec.Expense.Location, &source, &rec.Expense.InputBy,
		&rec.Synced, &rec.SyncError, &rec.CreatedAt); err != nil {
		return ExpenseRecord{}, fmt.Errorf("get expense by id: %w", err)
	}
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return ExpenseRecord{}, fmt.Errorf("parse stored date %q: %w", dateStr, err)
	}
	rec.Expense.Date = date
	rec.Expense.Source = core.Source(source)
	return rec, nil
}

// GetPendingSyncExpenses returns expenses that still need mirroring to the sheet.
func (r *SQLiteRepository) GetPendingSyncExpenses(ctx context.Context, limit int) ([]PendingSyncExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version, created_at FROM expenses
		 WHERE synced = 0 AND sync_error = 0
		 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync expenses: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncExpense
	for rows.Next() {
		var p PendingSyncExpense
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sync row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending sync rows: %w", err)
	}
	return out, nil
}

// MarkSynced marks an expense as successfully mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET synced = 1, sync_error = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}
	slog.InfoContext(ctx, "Expense marked as synced", "id", id)
	return nil
}

// MarkSyncError flags an expense so the worker stops retrying it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark expense sync error: %w", err)
	}
	slog.WarnContext(ctx, "Expense marked with sync error", "id", id)
	return nil
}
