// Package viewport projects a document onto a rectangle of terminal cells.
//
// The viewport owns the scroll position and the geometry of the text area:
// a gutter of line numbers followed by the text columns. Positions are
// buffer byte offsets; the viewport turns them into visual columns (tabs
// expanded) and screen coordinates.
package viewport

import (
	"strconv"

	"github.com/dshills/quill/internal/engine/chunktree"
	"github.com/dshills/quill/internal/engine/cursor"
	"github.com/dshills/quill/internal/renderer/core"
)

// DefaultTabWidth is the tab stop distance when none is configured.
const DefaultTabWidth = 4

// gutterSeparator follows the line numbers.
const gutterSeparator = " │ "

// Margins is the context kept around the cursor when scrolling.
type Margins struct {
	Rows int // Lines to keep above and below the cursor
	Cols int // Columns to keep left and right of the cursor
}

// DefaultMargins returns the default scroll margins.
func DefaultMargins() Margins {
	return Margins{Rows: 3, Cols: 5}
}

// Viewport is the visible portion of one document.
type Viewport struct {
	// Size of the text area in screen cells, gutter included.
	Width  int
	Height int
	// OriginY is the screen row of the first text row.
	OriginY int

	// First visible line and visual column.
	TopLine int
	LeftCol int

	TabWidth int
	SoftWrap bool
	// HorizontalScroll lets EnsureVisible move LeftCol. When off the
	// cursor may sit past the right edge.
	HorizontalScroll bool
	Margins          Margins
	Measure          core.Measure
}

// New creates a viewport with default settings.
func New(width, height int) *Viewport {
	v := &Viewport{
		TabWidth: DefaultTabWidth,
		Margins:  DefaultMargins(),
	}
	v.Resize(width, height)
	return v
}

// Resize updates the viewport size.
// Width and height are clamped to a minimum of 1 to prevent underflow.
func (v *Viewport) Resize(width, height int) {
	v.Width = max(width, 1)
	v.Height = max(height, 1)
}

// GutterWidth returns the width of the line number gutter for a document
// with lineCount lines: at least four digits plus the separator.
func GutterWidth(lineCount int) int {
	digits := len(strconv.Itoa(max(lineCount, 1)))
	return max(4, digits) + len([]rune(gutterSeparator))
}

// TextWidth returns the number of text columns right of the gutter.
func (v *Viewport) TextWidth(buf chunktree.Snapshot) int {
	return max(v.Width-GutterWidth(buf.LineCount()), 1)
}

func (v *Viewport) tabWidth() int {
	if v.TabWidth <= 0 {
		return DefaultTabWidth
	}
	return v.TabWidth
}

// advance returns the visual column after r placed at col.
func (v *Viewport) advance(col int, r rune) int {
	if r == '\t' {
		tw := v.tabWidth()
		return col + tw - col%tw
	}
	return col + v.Measure.RuneWidth(r)
}

// width returns the visual width of a line prefix.
func (v *Viewport) width(text string) int {
	col := 0
	for _, r := range text {
		col = v.advance(col, r)
	}
	return col
}

// VisualColumn returns the visual column of pos within its line.
func (v *Viewport) VisualColumn(buf chunktree.Snapshot, pos int) int {
	line, _, err := buf.PositionToLineCol(pos)
	if err != nil {
		return 0
	}
	return v.width(buf.Text(buf.LineStart(line), pos))
}

// rowsFor returns the screen rows line occupies.
func (v *Viewport) rowsFor(buf chunktree.Snapshot, line int) int {
	if !v.SoftWrap {
		return 1
	}
	return v.width(buf.LineText(line))/v.TextWidth(buf) + 1
}

// rowOf returns the text row, relative to TopLine, of visual column col on
// line. Lines above TopLine yield a negative row.
func (v *Viewport) rowOf(buf chunktree.Snapshot, line, col int) int {
	if !v.SoftWrap {
		return line - v.TopLine
	}
	if line < v.TopLine {
		return -1
	}
	row := 0
	for l := v.TopLine; l < line; l++ {
		row += v.rowsFor(buf, l)
		if row >= v.Height {
			return row
		}
	}
	return row + col/v.TextWidth(buf)
}

// ScreenPosition returns the screen cell of pos. x is never clamped to the
// viewport width; ok is false only when pos is outside the visible rows or
// not a valid position.
func (v *Viewport) ScreenPosition(buf chunktree.Snapshot, pos int) (x, y int, ok bool) {
	line, _, err := buf.PositionToLineCol(pos)
	if err != nil {
		return 0, 0, false
	}
	col := v.VisualColumn(buf, pos)
	row := v.rowOf(buf, line, col)
	if row < 0 || row >= v.Height {
		return 0, 0, false
	}
	gutter := GutterWidth(buf.LineCount())
	if v.SoftWrap {
		x = gutter + col%v.TextWidth(buf)
	} else {
		x = gutter + col - v.LeftCol
	}
	return x, v.OriginY + row, true
}

// CursorScreenPosition returns the screen cell of a cursor's position.
func (v *Viewport) CursorScreenPosition(buf chunktree.Snapshot, c cursor.Cursor) (x, y int, ok bool) {
	return v.ScreenPosition(buf, c.Position)
}

// EnsureVisible scrolls minimally so pos sits inside the margins. It
// returns true if the viewport moved.
func (v *Viewport) EnsureVisible(buf chunktree.Snapshot, pos int) bool {
	line, _, err := buf.PositionToLineCol(pos)
	if err != nil {
		return false
	}
	top, left := v.TopLine, v.LeftCol
	col := v.VisualColumn(buf, pos)

	margin := min(v.Margins.Rows, (v.Height-1)/2)
	if line < v.TopLine+margin {
		v.TopLine = max(line-margin, 0)
	}
	for v.TopLine < line && v.rowOf(buf, line, col) > v.Height-1-margin {
		v.TopLine++
	}
	v.clampTop(buf)

	if v.SoftWrap {
		v.LeftCol = 0
	} else if v.HorizontalScroll {
		tw := v.TextWidth(buf)
		cm := min(v.Margins.Cols, (tw-1)/2)
		if col < v.LeftCol+cm {
			v.LeftCol = max(col-cm, 0)
		} else if col > v.LeftCol+tw-1-cm {
			v.LeftCol = col - tw + 1 + cm
		}
	}
	return top != v.TopLine || left != v.LeftCol
}

// ScrollBy moves TopLine by delta lines, keeping it inside the document.
func (v *Viewport) ScrollBy(buf chunktree.Snapshot, delta int) {
	v.TopLine += delta
	v.clampTop(buf)
}

func (v *Viewport) clampTop(buf chunktree.Snapshot) {
	v.TopLine = min(max(v.TopLine, 0), buf.LineCount()-1)
}

// VisibleLines returns the first line and one past the last line that
// have at least one row on screen.
func (v *Viewport) VisibleLines(buf chunktree.Snapshot) (first, end int) {
	first = v.TopLine
	end = first
	rows := 0
	for end < buf.LineCount() && rows < v.Height {
		rows += v.rowsFor(buf, end)
		end++
	}
	return first, end
}
