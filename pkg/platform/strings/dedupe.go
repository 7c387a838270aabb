// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
	"unicode/utf8"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
//	// Returns: []string{"foo", "bar"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// ClampRunes trims s and cuts it to at most max runes.
func ClampRunes(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:max]))
}

// SplitCSV splits a comma-separated list, trims and dedupes the entries, then
// keeps at most maxItems entries each clamped to maxLen runes.
//
// Example:
//
//	SplitCSV("go, rust,,go", 30, 100)
//	// Returns: []string{"go", "rust"}
func SplitCSV(csv string, maxItems, maxLen int) []string {
	items := DedupeAndTrim(strings.Split(csv, ","))
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if c := ClampRunes(it, maxLen); c != "" {
			out = append(out, c)
		}
	}
	return out
}
