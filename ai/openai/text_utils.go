package openai

import (
	"strings"
	"unicode"
)

// scrubText drops control characters other than newlines and tabs, and trims
// surrounding whitespace.
func scrubText(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
