package utils

import (
	"strings"
	"unicode"
)

// MaxSlugLength matches the width of the group slug column.
const MaxSlugLength = 50

// Slugify lowercases s, keeps letters, digits, underscores and hyphens, and
// collapses runs of whitespace and hyphens into one hyphen.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			pendingDash = true
		}
	}
	slug := []rune(b.String())
	if len(slug) > MaxSlugLength {
		slug = slug[:MaxSlugLength]
	}
	return strings.Trim(string(slug), "-")
}

// ValidSlug reports whether s only holds letters, digits, underscores and hyphens.
func ValidSlug(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-') {
			return false
		}
	}
	return true
}
