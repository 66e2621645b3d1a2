package core

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeInput(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"beli telur 50ribu", "beli telur 50ribu"},
		{`<script>alert("x")</script> makan 10k`, "scriptalert(x)/script makan 10k"},
		{"bayar; drop table", "bayar drop table"},
		{"  spasi  ", "spasi"},
	}
	for _, tc := range cases {
		if got := SanitizeInput(tc.in); got != tc.out {
			t.Fatalf("SanitizeInput(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}

	long := strings.Repeat("a", 600)
	if got := SanitizeInput(long); len(got) != maxInputLength {
		t.Fatalf("expected input capped at %d, got %d", maxInputLength, len(got))
	}
}

// Truncation must never split a multibyte rune; invalid UTF-8 in a reply is
// rejected by the Telegram API.
func TestSanitizeInputTruncatesOnRuneBoundary(t *testing.T) {
	in := strings.Repeat("a", maxInputLength-1) + "é" + strings.Repeat("b", 10)
	got := SanitizeInput(in)
	if !utf8.ValidString(got) {
		t.Fatalf("expected valid UTF-8 after truncation, got %q", got)
	}
	if len(got) > maxInputLength {
		t.Fatalf("expected at most %d bytes, got %d", maxInputLength, len(got))
	}
	if !strings.HasSuffix(got, "a") {
		t.Fatalf("expected the split rune dropped entirely, got %q", got)
	}
}

func TestCleanDescription(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"ayam   goreng", "Ayam goreng"},
		{"", "Unknown expense"},
		{"   ", "Unknown expense"},
		{"bensin", "Bensin"},
	}
	for _, tc := range cases {
		if got := CleanDescription(tc.in); got != tc.out {
			t.Fatalf("CleanDescription(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}

	long := strings.Repeat("x", 150)
	got := CleanDescription(long)
	if len(got) != maxDescriptionLength {
		t.Fatalf("expected description capped at %d, got %d", maxDescriptionLength, len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
}

func TestCleanDescriptionTruncatesOnRuneBoundary(t *testing.T) {
	in := strings.Repeat("a", maxDescriptionLength-4) + "é" + strings.Repeat("b", 10)
	got := CleanDescription(in)
	if !utf8.ValidString(got) {
		t.Fatalf("expected valid UTF-8 after truncation, got %q", got)
	}
	if len(got) > maxDescriptionLength {
		t.Fatalf("expected at most %d bytes, got %d", maxDescriptionLength, len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
}

func TestCleanDescriptionMultibyteFirstRune(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"és teler 10k", "És teler 10k"},
		{"🍜 ramen 45k", "🍜 ramen 45k"},
	}
	for _, tc := range cases {
		if got := CleanDescription(tc.in); got != tc.out {
			t.Fatalf("CleanDescription(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestExtractLocation(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"beli sayur di pasar 15ribu", "Pasar"},
		{"ke salon johny 40 ribu", "Salon Johny"},
		{"nasi goreng dari warteg sebelah 12k", "Warteg Sebelah"},
		{"kopi @tokokopi 18k", "Tokokopi"},
		{"bayar listrik 150000", "Unknown"},
	}
	for _, tc := range cases {
		if got := ExtractLocation(tc.in); got != tc.out {
			t.Fatalf("ExtractLocation(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
