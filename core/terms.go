package core

import (
	"strings"
	"unicode"
)

// termSynonyms maps common abbreviations to the form skills are usually stored under.
var termSynonyms = map[string]string{
	"js":       "javascript",
	"py":       "python",
	"ts":       "typescript",
	"react":    "reactjs",
	"vue":      "vuejs",
	"ml":       "machine learning",
	"ai":       "artificial intelligence",
	"db":       "database",
	"postgres": "postgresql",
	"node":     "nodejs",
	"aws":      "amazon web services",
	"frontend": "front-end",
	"backend":  "back-end",
}

// Synonym returns the expansion of an abbreviated term, if it has one.
func Synonym(term string) (string, bool) {
	s, ok := termSynonyms[term]
	return s, ok
}

// Tokenize lowercases text and splits it into terms. '+' and '#' are kept so
// c++ and c# survive, as are dots and hyphens inside a term (node.js,
// front-end). Leading and trailing dots and hyphens are dropped.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#' && r != '.' && r != '-'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.Trim(f, ".-"); f != "" {
			out = append(out, f)
		}
	}
	return out
}
