package core

import (
	"errors"
	"strings"
	"time"
)

const (
	SourceText  Source = "text"
	SourcePhoto Source = "photo"
)

// MaxAmount caps a single expense at 100 million rupiah. Anything above is
// almost certainly a mis-parsed reference number from a receipt.
const MaxAmount int64 = 100_000_000

type (
	// Source records how an expense entered the system.
	Source string

	// Money is a whole-rupiah amount. Rupiah has no fractional unit in
	// day-to-day use, so an int64 of whole rupiah is exact.
	Money struct {
		Rupiah int64
	}

	// Expense is one ledger row. Records are append-only; nothing in the
	// system mutates or deletes them once written.
	Expense struct {
		Date        time.Time
		Description string
		Amount      Money
		Category    string
		Location    string
		Source      Source
		InputBy     string
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidSource    = errors.New("invalid source")
)

func (m Money) Validate() error {
	if m.Rupiah <= 0 || m.Rupiah > MaxAmount {
		return ErrInvalidAmount
	}
	return nil
}

func (s Source) Validate() error {
	switch s {
	case SourceText, SourcePhoto:
		return nil
	}
	return ErrInvalidSource
}

func (e Expense) Validate() error {
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return e.Source.Validate()
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
