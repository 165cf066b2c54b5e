package ats

import (
	"strings"
	"unicode"

	"github.com/poiesic/talentgraph/core"
)

// DefaultStopWords are English function words and job-posting filler that
// never count as keywords.
var DefaultStopWords = []string{
	"the", "a", "an", "be", "is", "are", "was", "were", "to", "of", "and", "or",
	"in", "that", "have", "has", "it", "for", "not", "on", "with", "as", "you",
	"do", "at", "this", "but", "by", "from", "we", "our", "your", "will", "who",
	"can", "should", "would", "into", "across", "their", "they", "them", "all",
	"any", "such", "etc", "e.g", "i.e", "using", "use", "plus", "well",
	"looking", "seeking", "experience", "experienced", "required", "requirements",
	"require", "preferred", "years", "year", "strong", "knowledge", "ability",
	"skills", "skill", "candidate", "candidates", "role", "job", "position",
	"team", "work", "working", "must", "nice", "good", "great", "excellent",
	"understanding", "familiarity", "familiar", "proficiency", "proficient",
	"including", "responsibilities", "join", "help", "build", "minimum",
}

// stopSet builds a lookup of case-folded stop words.
func stopSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = true
	}
	return set
}

// extractKeywords returns the significant terms of text in first-seen order.
// Stop words, bare numbers and single characters other than common language
// names are dropped.
func extractKeywords(text string, stop map[string]bool) []string {
	tokens := core.Tokenize(text)
	seen := make(map[string]bool, len(tokens))
	keywords := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if stop[t] || seen[t] || !significant(t) {
			continue
		}
		seen[t] = true
		keywords = append(keywords, t)
	}
	return keywords
}

func significant(token string) bool {
	if len([]rune(token)) == 1 {
		return token == "c" || token == "r"
	}
	for _, r := range token {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// variants returns the forms under which term may appear: as is, without
// inner punctuation, without a plural 's' and expanded through the synonym
// table.
func variants(term string) []string {
	out := []string{term}
	add := func(v string) {
		if v == "" {
			return
		}
		for _, existing := range out {
			if existing == v {
				return
			}
		}
		out = append(out, v)
	}
	bare := stripPunctuation(term)
	add(bare)
	add(singular(term))
	add(singular(bare))
	if syn, ok := core.Synonym(term); ok {
		add(syn)
	}
	if syn, ok := core.Synonym(bare); ok {
		add(syn)
	}
	return out
}

// stripPunctuation drops dots and hyphens: node.js becomes nodejs.
func stripPunctuation(term string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || r == '-' {
			return -1
		}
		return r
	}, term)
}

// singular strips one trailing 's' from words longer than three letters that
// do not end in "ss".
func singular(term string) string {
	if len(term) > 3 && strings.HasSuffix(term, "s") && !strings.HasSuffix(term, "ss") {
		return term[:len(term)-1]
	}
	return ""
}

// termSet indexes every variant of the words and word pairs in text.
func termSet(text string) map[string]bool {
	tokens := core.Tokenize(text)
	set := make(map[string]bool, len(tokens)*2)
	for i, t := range tokens {
		for _, v := range variants(t) {
			set[v] = true
		}
		if i+1 < len(tokens) {
			set[t+" "+tokens[i+1]] = true
		}
	}
	return set
}

// containsAny reports whether any variant of keyword is in set.
func containsAny(set map[string]bool, keyword string) bool {
	for _, v := range variants(keyword) {
		if set[v] {
			return true
		}
	}
	return false
}
