package ingestion

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the target segment length in characters.
	DefaultChunkSize = 800
	// DefaultChunkOverlap is the number of trailing characters of a segment
	// repeated at the start of the next one.
	DefaultChunkOverlap = 0
)

// Chunker splits document text into segments deterministically: the same text
// always yields the same segments.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker producing segments of at most size characters
// before overlap is added.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, ErrInvalidChunkSize
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk splits text into segments.
//
// Paragraphs (separated by blank lines) are packed greedily into segments.
// A paragraph longer than the size is split on whitespace, and a single word
// longer than the size is cut. Whitespace inside a paragraph collapses to
// single spaces.
func (c *Chunker) Chunk(text string) []string {
	var pieces []string
	for _, para := range paragraphs(text) {
		if runeLen(para) <= c.size {
			pieces = append(pieces, para)
			continue
		}
		pieces = append(pieces, c.splitWords(para)...)
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0
	for _, piece := range pieces {
		n := runeLen(piece)
		if currentLen > 0 && currentLen+2+n > c.size {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteString("\n\n")
			currentLen += 2
		}
		current.WriteString(piece)
		currentLen += n
	}
	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}

	if c.overlap == 0 || len(chunks) < 2 {
		return chunks
	}
	out := make([]string, len(chunks))
	out[0] = chunks[0]
	for i := 1; i < len(chunks); i++ {
		out[i] = tail(chunks[i-1], c.overlap) + " " + chunks[i]
	}
	return out
}

// paragraphs returns the whitespace-collapsed, non-empty paragraphs of text.
func paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	var lines []string
	flush := func() {
		if p := strings.Join(strings.Fields(strings.Join(lines, " ")), " "); p != "" {
			out = append(out, p)
		}
		lines = lines[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		lines = append(lines, line)
	}
	flush()
	return out
}

func (c *Chunker) splitWords(para string) []string {
	var out []string
	var current strings.Builder
	currentLen := 0
	for _, word := range strings.Fields(para) {
		for runeLen(word) > c.size {
			if currentLen > 0 {
				out = append(out, current.String())
				current.Reset()
				currentLen = 0
			}
			head, rest := cutRunes(word, c.size)
			out = append(out, head)
			word = rest
		}
		n := runeLen(word)
		if n == 0 {
			continue
		}
		if currentLen > 0 && currentLen+1+n > c.size {
			out = append(out, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(word)
		currentLen += n
	}
	if currentLen > 0 {
		out = append(out, current.String())
	}
	return out
}

// tail returns roughly the last n characters of s, starting at a word boundary
// when one exists inside that window.
func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	t := string(runes[len(runes)-n:])
	if i := strings.IndexAny(t, " \n"); i >= 0 && i < len(t)-1 {
		t = t[i+1:]
	}
	return strings.TrimSpace(t)
}

func cutRunes(s string, n int) (string, string) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
