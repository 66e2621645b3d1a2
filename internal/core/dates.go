package core

import (
	"strings"
	"time"
)

var relativeDays = map[string]int{
	"kemarin dulu": -2,
	"lusa kemarin": -2,
	"kemarin":      -1,
	"kmrn":         -1,
	"yesterday":    -1,
	"hari ini":     0,
	"today":        0,
	"tadi":         0,
	"barusan":      0,
	"besok":        1,
	"tomorrow":     1,
}

// Listed longest-first so "kemarin dulu" wins over "kemarin".
var relativeOrder = []string{
	"kemarin dulu", "lusa kemarin", "hari ini",
	"kemarin", "kmrn", "yesterday", "today", "tadi", "barusan",
	"besok", "tomorrow",
}

var weekdayNames = map[string]time.Weekday{
	"senin":     time.Monday,
	"selasa":    time.Tuesday,
	"rabu":      time.Wednesday,
	"kamis":     time.Thursday,
	"jumat":     time.Friday,
	"sabtu":     time.Saturday,
	"minggu":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ResolveDate maps Indonesian (and English) relative-date words in text to a
// concrete date against ref: "kemarin" is yesterday, "bayar listrik senin"
// the most recent Monday, and so on. Text with no date words resolves to ref
// itself. The result is truncated to midnight.
func ResolveDate(text string, ref time.Time) time.Time {
	lower := strings.ToLower(text)

	for _, word := range relativeOrder {
		if strings.Contains(lower, word) {
			return DateOnly(ref.AddDate(0, 0, relativeDays[word]))
		}
	}

	for name, wd := range weekdayNames {
		if !containsWord(lower, name) {
			continue
		}
		back := (int(ref.Weekday()) - int(wd) + 7) % 7
		return DateOnly(ref.AddDate(0, 0, -back))
	}

	return DateOnly(ref)
}

// containsWord reports whether s contains w bounded by non-letters, so
// "minggu" in "minggu lalu" matches but "senin" in "seninan" does not.
func containsWord(s, w string) bool {
	for i := 0; i+len(w) <= len(s); i++ {
		if s[i:i+len(w)] != w {
			continue
		}
		beforeOK := i == 0 || !isLetter(s[i-1])
		afterOK := i+len(w) == len(s) || !isLetter(s[i+len(w)])
		if beforeOK && afterOK {
			return true
		}
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// SameMonth reports whether t falls in the given year and month.
func SameMonth(t time.Time, year int, month time.Month) bool {
	return t.Year() == year && t.Month() == month
}
