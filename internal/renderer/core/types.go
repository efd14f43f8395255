// Package core provides the cell, style and colour types shared by the
// viewport, the editor screen composition and the terminal back-ends.
package core

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Attribute is a set of text attribute flags.
type Attribute uint16

// Text attribute flags.
const (
	AttrNone Attribute = 0
	AttrBold Attribute = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrReverse
)

// Has reports whether a includes attr.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// With adds attr.
func (a Attribute) With(attr Attribute) Attribute {
	return a | attr
}

// Color is a 24-bit colour, a palette index or the terminal default.
type Color struct {
	R, G, B uint8
	// Indexed colours keep the palette index in R.
	Indexed bool
	Default bool
}

// ColorDefault leaves the terminal colour unchanged.
var ColorDefault = Color{Default: true}

// ColorFromRGB returns a 24-bit colour.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromIndex returns palette colour index.
func ColorFromIndex(index uint8) Color {
	return Color{R: index, Indexed: true}
}

// ColorFromHex parses "#rrggbb" or "#rgb".
func ColorFromHex(hex string) (Color, error) {
	if len(hex) > 0 && hex[0] != '#' {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// ColorFromColorful converts a go-colorful colour, clamping out of gamut
// values.
func ColorFromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// Colorful returns the colour for blending. ok is false for default and
// palette colours.
func (c Color) Colorful() (colorful.Color, bool) {
	if c.Default || c.Indexed {
		return colorful.Color{}, false
	}
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}, true
}

// IsDefault reports whether c is the terminal default.
func (c Color) IsDefault() bool {
	return c.Default
}

// String formats c as "#RRGGBB", "idx(n)" or "default".
func (c Color) String() string {
	if c.Default {
		return "default"
	}
	if c.Indexed {
		return fmt.Sprintf("idx(%d)", c.R)
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Style is the colours and attributes of a cell.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle uses the terminal colours and no attributes.
func DefaultStyle() Style {
	return Style{
		Foreground: ColorDefault,
		Background: ColorDefault,
	}
}

func (s Style) WithForeground(fg Color) Style {
	s.Foreground = fg
	return s
}

func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

func (s Style) Bold() Style {
	s.Attributes |= AttrBold
	return s
}

func (s Style) Reverse() Style {
	s.Attributes |= AttrReverse
	return s
}

// Merge layers other on top of s. Default colours in other let the colours
// of s show through; attributes accumulate.
func (s Style) Merge(other Style) Style {
	result := s
	if !other.Foreground.IsDefault() {
		result.Foreground = other.Foreground
	}
	if !other.Background.IsDefault() {
		result.Background = other.Background
	}
	result.Attributes |= other.Attributes
	return result
}

// Cell is one screen position. A zero Rune is the trailing half of a wide
// character.
type Cell struct {
	Rune  rune
	Style Style
}

// EmptyCell returns a blank cell with default style.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Style: DefaultStyle()}
}

// Span styles the half-open column range [Start, End) of a line. Columns
// are code point indexes within the line.
type Span struct {
	Start int
	End   int
	Style Style
}

// Contains reports whether col falls inside the span.
func (s Span) Contains(col int) bool {
	return col >= s.Start && col < s.End
}
