package charts

import (
	"bytes"
	"testing"
	"time"

	"catatan/internal/core"
)

func TestRenderMonthSummary(t *testing.T) {
	sum := core.MonthSummary{
		Year:  2025,
		Month: time.March,
		Total: core.Money{Rupiah: 60000},
		Count: 3,
		ByCategory: []core.CategoryAmount{
			{Name: "Food & Dining", Amount: core.Money{Rupiah: 40000}},
			{Name: "Transportation", Amount: core.Money{Rupiah: 20000}},
		},
	}

	png, err := RenderMonthSummary(sum)
	if err != nil {
		t.Fatalf("RenderMonthSummary failed: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("expected non-empty PNG bytes")
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG, starts with %x", png[:4])
	}
}

func TestRenderMonthSummaryEmpty(t *testing.T) {
	png, err := RenderMonthSummary(core.MonthSummary{Year: 2025, Month: time.March})
	if err != nil {
		t.Fatalf("RenderMonthSummary failed: %v", err)
	}
	if png != nil {
		t.Fatal("expected nil bytes for empty summary")
	}
}

func TestShortLabel(t *testing.T) {
	cases := []struct{ in, out string }{
		{"Entertainment & Recreation", "Entertainment"},
		{"Food & Dining", "Food"},
		{"Others", "Others"},
	}
	for _, tc := range cases {
		if got := shortLabel(tc.in); got != tc.out {
			t.Fatalf("shortLabel(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
