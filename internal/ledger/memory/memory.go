package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"catatan/internal/core"
	ports "catatan/internal/ledger"
)

// Store is an in-memory ledger for tests and local runs.
type Store struct {
	mu    sync.Mutex
	items []core.Expense
}

var (
	_ ports.ExpenseAppender = (*Store)(nil)
	_ ports.MonthReader     = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// Append stores the expense and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// ListMonth returns the stored expenses for the given month in insertion order.
func (s *Store) ListMonth(_ context.Context, year int, month time.Month) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.items {
		if core.SameMonth(e.Date, year, month) {
			out = append(out, e)
		}
	}
	return out, nil
}
