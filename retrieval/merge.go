package retrieval

import (
	"strings"
	"unicode/utf8"

	"github.com/poiesic/talentgraph/core"
)

const blockSeparator = "\n\n"

// block is one unit of merged context. candidate is zero for blocks not tied
// to a single candidate.
type block struct {
	candidate core.ID
	text      string
}

// mergeBlocks joins blocks in priority order and drops blocks from the end
// until the result fits in maxChars characters. When even the first block is
// too long it is cut to maxChars.
func mergeBlocks(blocks []block, maxChars int) (string, []block) {
	if len(blocks) == 0 {
		return "", nil
	}

	total := 0
	n := 0
	for i, b := range blocks {
		size := utf8.RuneCountInString(b.text)
		if i > 0 {
			size += len(blockSeparator)
		}
		if total+size > maxChars {
			break
		}
		total += size
		n++
	}

	if n == 0 {
		first := blocks[0]
		first.text = truncateRunes(first.text, maxChars)
		return first.text, []block{first}
	}

	kept := blocks[:n]
	texts := make([]string, n)
	for i, b := range kept {
		texts[i] = b.text
	}
	return strings.Join(texts, blockSeparator), kept
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
