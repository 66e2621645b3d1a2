package core

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxInputLength       = 500
	maxDescriptionLength = 100
)

var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bdi\s+([^0-9]+?)(?:\s+\d|$)`),
	regexp.MustCompile(`\bke\s+([^0-9]+?)(?:\s+\d|$)`),
	regexp.MustCompile(`\bdari\s+([^0-9]+?)(?:\s+\d|$)`),
	regexp.MustCompile(`@\s*([^0-9\s]+)`),
}

// SanitizeInput strips characters with no business in an expense message
// (angle brackets, quotes, semicolons, control characters) and caps length.
func SanitizeInput(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '\'', ';':
			return -1
		}
		if r < 32 && r != '\t' && r != '\n' {
			return -1
		}
		return r
	}, text)
	cleaned = truncateRunes(cleaned, maxInputLength)
	return strings.TrimSpace(cleaned)
}

// CleanDescription normalizes whitespace, capitalizes the first letter and
// truncates to the ledger's description budget.
func CleanDescription(text string) string {
	if strings.TrimSpace(text) == "" {
		return "Unknown expense"
	}
	cleaned := capitalize(strings.Join(strings.Fields(text), " "))
	if len(cleaned) > maxDescriptionLength {
		cleaned = truncateRunes(cleaned, maxDescriptionLength-3) + "..."
	}
	return cleaned
}

// ExtractLocation pulls a merchant or place name out of free text using the
// Indonesian prepositions di/ke/dari and the @mention form. Returns "Unknown"
// when nothing matches.
func ExtractLocation(text string) string {
	lower := strings.ToLower(text)
	for _, re := range locationPatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		loc := strings.TrimSpace(m[1])
		if loc == "" {
			continue
		}
		return titleCase(loc)
	}
	return "Unknown"
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// capitalize upper-cases the first rune. Byte-slicing would mangle a
// multibyte first rune.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// truncateRunes caps s at max bytes without splitting a rune: the cut backs
// up to the nearest rune boundary.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
