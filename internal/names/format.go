// Package names holds the naming rules shared by games and nicknames:
// canonical formatting, uniqueness resolution and game name generation.
package names

import (
	"strings"
	"unicode"
)

// Format normalizes a raw display name into its canonical identity key:
// lowercased, with everything except letters, digits, underscore, hyphen
// and whitespace stripped. Returns "" for empty input. Idempotent.
func Format(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
			return r
		case r == '_' || r == '-':
			return r
		default:
			return -1
		}
	}, strings.ToLower(raw))
}

// Unique formats raw and reports whether the canonical form is usable:
// non-empty and not already present in taken. Collisions are
// case-insensitive because both sides are canonical.
func Unique(raw string, taken map[string]struct{}) (string, bool) {
	formatted := Format(raw)
	if formatted == "" {
		return "", false
	}
	if _, exists := taken[formatted]; exists {
		return "", false
	}
	return formatted, true
}
