package google

import (
	"strconv"
	"strings"
	"time"

	"catatan/internal/core"
)

const dateLayout = "2006-01-02"

// expenseRow flattens an expense into the sheet column order:
// Date, Description, Amount, Category, Location, Source, InputBy.
func expenseRow(e core.Expense) []any {
	return []any{
		e.Date.Format(dateLayout),
		e.Description,
		e.Amount.Rupiah,
		e.Category,
		e.Location,
		string(e.Source),
		e.InputBy,
	}
}

// parseRow converts one sheet row back into an expense. Header rows and rows
// with an unparseable date or amount are rejected.
func parseRow(cols []string) (core.Expense, bool) {
	if len(cols) < 4 {
		return core.Expense{}, false
	}
	date, err := time.Parse(dateLayout, cols[0])
	if err != nil {
		return core.Expense{}, false
	}
	amount, ok := parseAmountCell(cols[2])
	if !ok {
		return core.Expense{}, false
	}
	e := core.Expense{
		Date:        date,
		Description: cols[1],
		Amount:      core.Money{Rupiah: amount},
		Category:    safeGet(cols, 3),
		Location:    safeGet(cols, 4),
		Source:      core.Source(safeGet(cols, 5)),
		InputBy:     safeGet(cols, 6),
	}
	if e.Source.Validate() != nil {
		e.Source = core.SourceText
	}
	if strings.TrimSpace(e.Description) == "" && e.Amount.Rupiah == 0 {
		return core.Expense{}, false
	}
	return e, true
}

// parseAmountCell accepts plain integers plus spreadsheet formattings such as
// "25.000", "25,000" or "25000.0".
func parseAmountCell(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	stripped := strings.NewReplacer(".", "", ",", "").Replace(s)
	if n, err := strconv.ParseInt(stripped, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return int64(f + 0.5), true
	}
	return 0, false
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
