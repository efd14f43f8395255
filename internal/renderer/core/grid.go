package core

import "strings"

// Sink receives rendered cells. The terminal back-ends and Grid implement
// it. Writes outside the sink are ignored.
type Sink interface {
	SetContent(x, y int, mainc rune, combc []rune, style Style)
	Size() (width, height int)
}

// Grid is an in-memory Sink. The Null back-end and tests render into it.
type Grid struct {
	width  int
	height int
	cells  []gridCell
}

type gridCell struct {
	Cell
	combc []rune
}

// NewGrid creates a blank grid.
func NewGrid(width, height int) *Grid {
	g := &Grid{}
	g.Resize(width, height)
	return g
}

// Resize discards the contents and changes the dimensions.
func (g *Grid) Resize(width, height int) {
	g.width = max(width, 0)
	g.height = max(height, 0)
	g.cells = make([]gridCell, g.width*g.height)
	g.Clear()
}

// Clear blanks every cell.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = gridCell{Cell: EmptyCell()}
	}
}

// Size returns the grid dimensions.
func (g *Grid) Size() (int, int) {
	return g.width, g.height
}

// SetContent stores one cell. A zero rune marks the trailing half of a wide
// character.
func (g *Grid) SetContent(x, y int, mainc rune, combc []rune, style Style) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return
	}
	c := &g.cells[y*g.width+x]
	c.Rune = mainc
	c.Style = style
	c.combc = append(c.combc[:0], combc...)
}

// Cell returns the cell at (x, y), or a blank cell when out of range.
func (g *Grid) Cell(x, y int) Cell {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return EmptyCell()
	}
	return g.cells[y*g.width+x].Cell
}

// Row returns the text of row y with trailing blanks removed.
func (g *Grid) Row(y int) string {
	if y < 0 || y >= g.height {
		return ""
	}
	var sb strings.Builder
	for _, c := range g.cells[y*g.width : (y+1)*g.width] {
		if c.Rune == 0 {
			continue
		}
		sb.WriteRune(c.Rune)
		for _, r := range c.combc {
			sb.WriteRune(r)
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// Text returns every row joined with newlines.
func (g *Grid) Text() string {
	rows := make([]string, g.height)
	for y := range rows {
		rows[y] = g.Row(y)
	}
	return strings.Join(rows, "\n")
}

// Fill writes r with style over the rectangle.
func Fill(s Sink, x, y, width, height int, r rune, style Style) {
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			s.SetContent(col, row, r, nil, style)
		}
	}
}
