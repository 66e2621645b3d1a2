package core

import "time"

type (
	// CategoryAmount is one row of a monthly breakdown.
	CategoryAmount struct {
		Name   string
		Amount Money
	}

	// MonthSummary aggregates the expenses of a single calendar month.
	MonthSummary struct {
		Year       int
		Month      time.Month
		Total      Money
		Count      int
		ByCategory []CategoryAmount
	}
)

// BuildMonthSummary aggregates only expenses dated in the given year and
// month; records from other months are ignored, not an error. Category order
// follows first appearance.
func BuildMonthSummary(expenses []Expense, year int, month time.Month) MonthSummary {
	sum := MonthSummary{Year: year, Month: month}
	byCat := map[string]int64{}
	var order []string

	for _, e := range expenses {
		if !SameMonth(e.Date, year, month) {
			continue
		}
		sum.Total.Rupiah += e.Amount.Rupiah
		sum.Count++
		if _, seen := byCat[e.Category]; !seen {
			order = append(order, e.Category)
		}
		byCat[e.Category] += e.Amount.Rupiah
	}

	for _, name := range order {
		sum.ByCategory = append(sum.ByCategory, CategoryAmount{
			Name:   name,
			Amount: Money{Rupiah: byCat[name]},
		})
	}
	return sum
}
