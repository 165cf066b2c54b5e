package core

import (
	"strings"
	"unicode"
)

// NormalizeName folds case and whitespace so that "Python", "python " and
// " PYTHON" share one identity. Internal runs of whitespace collapse to a
// single space.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	space := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// DedupeNames normalizes names and drops empties and repeats, keeping the
// first display form seen for each normalized name.
func DedupeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		key := NormalizeName(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(name))
	}
	return out
}
