package memory

import (
	"context"
	"testing"
	"time"

	"catatan/internal/core"
)

func sample(day int, amount int64) core.Expense {
	return core.Expense{
		Date:        time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
		Description: "Test expense",
		Amount:      core.Money{Rupiah: amount},
		Category:    "Others",
		Source:      core.SourceText,
	}
}

func TestStoreAppendAndListMonth(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Append(ctx, sample(1, 10000))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if ref != "mem:1" {
		t.Fatalf("unexpected row ref %q", ref)
	}
	if _, err := s.Append(ctx, sample(15, 20000)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	out, err := s.ListMonth(ctx, 2025, time.March)
	if err != nil {
		t.Fatalf("ListMonth failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(out))
	}

	out, err = s.ListMonth(ctx, 2025, time.April)
	if err != nil {
		t.Fatalf("ListMonth failed: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty month, got %d", len(out))
	}
}

func TestStoreRejectsInvalid(t *testing.T) {
	s := New()
	e := sample(1, 0)
	if _, err := s.Append(context.Background(), e); err == nil {
		t.Fatal("expected validation error for zero amount")
	}
}
