package chunktree

import (
	"strings"
	"unicode/utf8"
)

// Summary holds the aggregated metrics of a span of text. Every node caches
// the summary of its subtree; an internal node's summary is the fold of its
// children's summaries.
type Summary struct {
	// Bytes is the UTF-8 byte count.
	Bytes int
	// Chars is the code point count.
	Chars int
	// Lines is the number of '\n' bytes.
	Lines int
}

// Add combines two summaries.
func (s Summary) Add(other Summary) Summary {
	return Summary{
		Bytes: s.Bytes + other.Bytes,
		Chars: s.Chars + other.Chars,
		Lines: s.Lines + other.Lines,
	}
}

// Summarize computes the summary of s.
func Summarize(s string) Summary {
	return Summary{
		Bytes: len(s),
		Chars: utf8.RuneCountInString(s),
		Lines: strings.Count(s, "\n"),
	}
}
