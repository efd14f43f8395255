package engine

import "strings"

// LineEnding specifies the line ending style of a document.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
)

// String returns the status bar name of the line ending.
func (le LineEnding) String() string {
	if le == LineEndingCRLF {
		return "CRLF"
	}
	return "LF"
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	if le == LineEndingCRLF {
		return "\r\n"
	}
	return "\n"
}

// DetectLineEnding returns the dominant line ending of s. Text without line
// breaks is LF.
func DetectLineEnding(s string) LineEnding {
	crlf := strings.Count(s, "\r\n")
	lf := strings.Count(s, "\n") - crlf
	if crlf > lf {
		return LineEndingCRLF
	}
	return LineEndingLF
}

// NormalizeLF converts CRLF sequences to LF.
func NormalizeLF(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// Denormalize converts LF line breaks to the given style. Existing CRLF
// sequences are left alone.
func Denormalize(s string, le LineEnding) string {
	if le != LineEndingCRLF {
		return s
	}
	return strings.ReplaceAll(NormalizeLF(s), "\n", "\r\n")
}
