package util

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TruncateString truncates a string to maxRunes characters (rune-based, not byte-based)
// If truncated, appends "..." to the result
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// Normalize performs basic string normalization (lowercase + trim)
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeQuery turns user input into a catalog slug: "Mr. Mime" -> "mr-mime".
func NormalizeQuery(s string) string {
	s = Normalize(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "♀", "-f")
	s = strings.ReplaceAll(s, "♂", "-m")
	return strings.Join(strings.Fields(s), "-")
}

// DisplayName converts a catalog slug into a title-cased label:
// "special-attack" -> "Special Attack".
func DisplayName(slug string) string {
	// Casers keep state between calls, so each call gets its own.
	return cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
}

// Contains checks if a string slice contains a specific item
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
