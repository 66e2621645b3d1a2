package core

import "strings"

// FallbackCategory is used when nothing else matches. It is always the last
// entry of the default set and must exist in any configured set.
const FallbackCategory = "Others"

// DefaultCategories is the category set used when none is configured.
func DefaultCategories() []string {
	return []string{
		"Food & Dining",
		"Transportation",
		"Shopping & Retail",
		"Personal Care & Beauty",
		"Utilities & Bills",
		"Health & Medical",
		"Entertainment & Recreation",
		FallbackCategory,
	}
}

// Keyword hints per category, used by the fallback parser when the language
// model is unavailable. Mostly Indonesian merchant and activity words.
var categoryKeywords = map[string][]string{
	"Food & Dining": {
		"makan", "food", "nasi", "ayam", "sate", "warteg", "resto", "cafe",
		"kfc", "mcd", "pizza", "bakery", "goreng", "sop", "bakso", "gofood",
	},
	"Transportation": {
		"bensin", "grab", "gojek", "ojek", "bus", "taxi", "motor", "mobil",
		"pertamina", "shell", "spbu", "parkir", "tol",
	},
	"Shopping & Retail": {
		"beli", "belanja", "shop", "mall", "alfamart", "indomaret", "toko",
		"hypermart", "carrefour", "supermarket",
	},
	"Personal Care & Beauty": {
		"salon", "potong rambut", "spa", "massage", "kosmetik", "pijet",
		"barbershop", "facial",
	},
	"Utilities & Bills": {
		"listrik", "air", "internet", "pulsa", "token", "pln", "telkom",
		"indihome", "wifi", "iuran", "tagihan",
	},
	"Health & Medical": {
		"dokter", "obat", "sakit", "rumah sakit", "apotek", "klinik",
		"hospital", "periksa",
	},
	"Entertainment & Recreation": {
		"bioskop", "film", "game", "nonton", "karaoke", "gym", "fitness",
		"cinema", "netflix", "spotify",
	},
}

// MatchCategory scores each available category by keyword hits against the
// message text and location, returning the best match or the last available
// category when nothing scores.
func MatchCategory(text, location string, available []string) string {
	combined := strings.ToLower(text + " " + location)

	best := ""
	bestScore := 0
	for _, cat := range available {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(combined, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = cat
		}
	}
	if best != "" {
		return best
	}
	if len(available) > 0 {
		return available[len(available)-1]
	}
	return FallbackCategory
}

// NormalizeCategory maps a model-produced label onto the configured set,
// case-insensitively. Unknown labels fall through to keyword matching so a
// creative model answer still lands in a real category.
func NormalizeCategory(raw string, available []string) string {
	raw = strings.TrimSpace(raw)
	for _, cat := range available {
		if strings.EqualFold(cat, raw) {
			return cat
		}
	}
	return MatchCategory(raw, "", available)
}
