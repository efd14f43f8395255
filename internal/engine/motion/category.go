// Package motion computes cursor destinations over a text buffer: code
// point steps, word boundaries, line and document edges, and vertical
// moves that honour a preferred column.
package motion

import "unicode"

// Category classifies code points for word motion.
type Category uint8

const (
	// Word covers letters, digits and underscore.
	Word Category = iota
	// Punct covers punctuation and symbols.
	Punct
	// Whitespace covers spaces, tabs and line breaks.
	Whitespace
	// Other covers everything else (control characters, marks).
	Other
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case Word:
		return "word"
	case Punct:
		return "punct"
	case Whitespace:
		return "whitespace"
	default:
		return "other"
	}
}

// Classify returns the category of r.
func Classify(r rune) Category {
	switch {
	case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		return Word
	case unicode.IsSpace(r):
		return Whitespace
	case unicode.IsPunct(r) || unicode.IsSymbol(r):
		return Punct
	default:
		return Other
	}
}
