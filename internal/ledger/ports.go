package ledger

import (
	"context"
	"time"

	"catatan/internal/core"
)

// Ports for outbound expense stores.
type (
	ExpenseAppender interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}

	// MonthReader returns all expenses recorded in the given month.
	MonthReader interface {
		ListMonth(ctx context.Context, year int, month time.Month) ([]core.Expense, error)
	}

	// Ledger combines the operations the bot needs from a backend.
	Ledger interface {
		ExpenseAppender
		MonthReader
	}
)
