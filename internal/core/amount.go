// Package core holds the expense domain: amounts, dates, categories and the
// deterministic parsing rules used when the language model is unavailable.
package core

import (
	"regexp"
	"strconv"
	"strings"
)

// Indonesian shorthand amount patterns, in priority order. "25ribu"/"25rb"
// and "25k" mean 25000, "2jt"/"2juta" means 2000000. Grouped digits like
// "25.000" or "25,000" are plain rupiah.
var amountPatterns = []struct {
	re   *regexp.Regexp
	mult int64
}{
	{regexp.MustCompile(`(\d+)\s*(?:ribu|rb)\b`), 1000},
	{regexp.MustCompile(`(\d+)\s*k\b`), 1000},
	{regexp.MustCompile(`(\d+)\s*(?:jt|juta)\b`), 1_000_000},
	{regexp.MustCompile(`(\d{1,3}(?:[.,]\d{3})+)\b`), 1},
	{regexp.MustCompile(`(\d+)`), 1},
}

// ParseAmount extracts a rupiah amount from free text using the shorthand
// conventions above. Returns ErrInvalidAmount when no usable number is found
// or the result falls outside (0, MaxAmount].
func ParseAmount(text string) (int64, error) {
	lower := strings.ToLower(text)
	for _, p := range amountPatterns {
		m := p.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		digits := strings.NewReplacer(".", "", ",", "").Replace(m[1])
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			continue
		}
		amount := n * p.mult
		if amount <= 0 || amount > MaxAmount {
			return 0, ErrInvalidAmount
		}
		return amount, nil
	}
	return 0, ErrInvalidAmount
}

// FormatRupiah renders an amount as "Rp 25,000".
func FormatRupiah(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := strconv.FormatInt(amount, 10)
	var b strings.Builder
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}
