package core

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Measure decides how many columns a rune of buffer text occupies.
type Measure uint8

const (
	// MeasureCodePoint counts every code point as one column.
	MeasureCodePoint Measure = iota
	// MeasureWide uses the terminal display width: East Asian wide runes
	// take two columns and combining marks none.
	MeasureWide
)

// RuneWidth returns the columns r occupies. Tabs are handled by the caller.
func (m Measure) RuneWidth(r rune) int {
	if m == MeasureWide {
		return runewidth.RuneWidth(r)
	}
	return 1
}

// String returns the configuration name of the measure.
func (m Measure) String() string {
	if m == MeasureWide {
		return "wide"
	}
	return "codepoint"
}

// StringWidth returns the display width of s measured in grapheme clusters.
func StringWidth(s string) int {
	return uniseg.StringWidth(s)
}

// Truncate shortens s to at most width columns without splitting a
// grapheme cluster. When s is cut, tail is appended within the width.
func Truncate(s string, width int, tail string) string {
	if width <= 0 {
		return ""
	}
	if StringWidth(s) <= width {
		return s
	}
	tw := StringWidth(tail)
	if tw > width {
		tail, tw = "", 0
	}

	var sb strings.Builder
	used := 0
	state := -1
	rest := s
	for rest != "" {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if used+w > width-tw {
			break
		}
		sb.WriteString(cluster)
		used += w
	}
	sb.WriteString(tail)
	return sb.String()
}

// PadRight pads s with spaces to width columns.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// PutString writes s at (x, y) one grapheme cluster per cell group and
// returns the x after the last written cell. Writing stops before limit.
func PutString(sink Sink, x, y int, s string, style Style, limit int) int {
	state := -1
	rest := s
	for rest != "" {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if w <= 0 {
			continue
		}
		if x+w > limit {
			break
		}
		runes := []rune(cluster)
		sink.SetContent(x, y, runes[0], runes[1:], style)
		for i := 1; i < w; i++ {
			sink.SetContent(x+i, y, 0, nil, style)
		}
		x += w
	}
	return x
}
