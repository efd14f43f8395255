package viewport

import (
	"fmt"

	"github.com/dshills/quill/internal/engine"
	"github.com/dshills/quill/internal/engine/chunktree"
	"github.com/dshills/quill/internal/engine/cursor"
	"github.com/dshills/quill/internal/renderer/core"
	"github.com/dshills/quill/internal/renderer/style"
)

// RenderOptions supplies the collaborators of RenderCells.
type RenderOptions struct {
	// Theme styles every cell. Nil means style.Plain.
	Theme *style.Theme
	// Highlights returns the syntax spans of a line. Nil disables syntax
	// colouring.
	Highlights func(line int) []core.Span
}

// lineRender carries the per-line state of RenderCells.
type lineRender struct {
	v      *Viewport
	sink   core.Sink
	theme  *style.Theme
	gutter int
	tw     int
	base   int // text row of the line's first row
}

// RenderCells draws the visible part of s into sink: the gutter, the text
// with tabs expanded, selections, secondary cursors and syntax colours.
// Rows past the end of the document show a "~" marker. The primary cursor
// is not drawn; the caller positions the terminal cursor with
// CursorScreenPosition.
func (v *Viewport) RenderCells(s *engine.State, sink core.Sink, opts RenderOptions) {
	theme := opts.Theme
	if theme == nil {
		theme = style.Plain()
	}
	buf := s.Snapshot()
	cursors := s.Cursors.All()
	primary := s.Cursors.Primary()
	primaryLine, _, _ := buf.PositionToLineCol(primary.Position)

	lr := lineRender{
		v:      v,
		sink:   sink,
		theme:  theme,
		gutter: GutterWidth(buf.LineCount()),
		tw:     v.TextWidth(buf),
	}

	row := 0
	line := v.TopLine
	for row < v.Height {
		y := v.OriginY + row
		if line >= buf.LineCount() {
			core.Fill(sink, 0, y, v.Width, 1, ' ', theme.Text)
			sink.SetContent(0, y, '~', nil, theme.EmptyLine)
			row++
			continue
		}

		rows := v.rowsFor(buf, line)
		gutterStyle := theme.Gutter
		if line == primaryLine {
			gutterStyle = theme.GutterCurrent
		}
		for r := 0; r < rows && row+r < v.Height; r++ {
			core.Fill(sink, 0, y+r, v.Width, 1, ' ', theme.Text)
			label := ""
			if r == 0 {
				label = fmt.Sprintf("%*d", lr.gutter-len([]rune(gutterSeparator)), line+1)
			}
			label = core.PadRight(label, lr.gutter-len([]rune(gutterSeparator))) + gutterSeparator
			core.PutString(sink, 0, y+r, label, gutterStyle, min(lr.gutter, v.Width))
		}

		var spans []core.Span
		if opts.Highlights != nil {
			spans = opts.Highlights(line)
		}
		lr.base = row
		lr.drawLine(buf, line, spans, cursorsOn(buf, cursors, primary.ID, line))

		row += rows
		line++
	}
}

// marks are the selections and secondary cursors touching one line.
type marks struct {
	selections [][2]int
	secondary  []int
}

func cursorsOn(buf chunktree.Snapshot, cursors []cursor.Cursor, primary cursor.ID, line int) marks {
	start, end := buf.LineStart(line), buf.LineEnd(line)
	next := buf.Len()
	if line+1 < buf.LineCount() {
		next = buf.LineStart(line + 1)
	}
	var m marks
	for _, c := range cursors {
		if c.HasSelection() {
			s, e := c.Selection()
			if s < next && e > start {
				m.selections = append(m.selections, [2]int{s, e})
			}
		}
		if c.ID != primary && c.Position >= start && c.Position <= end {
			m.secondary = append(m.secondary, c.Position)
		}
	}
	return m
}

func (m marks) selected(pos int) bool {
	for _, sel := range m.selections {
		if pos >= sel[0] && pos < sel[1] {
			return true
		}
	}
	return false
}

func (m marks) cursorAt(pos int) bool {
	for _, p := range m.secondary {
		if p == pos {
			return true
		}
	}
	return false
}

// put draws one cell at visual column col of the current line.
func (lr *lineRender) put(col int, r rune, st core.Style) {
	v := lr.v
	row, x := 0, lr.gutter+col-v.LeftCol
	if v.SoftWrap {
		row, x = col/lr.tw, lr.gutter+col%lr.tw
	}
	row += lr.base
	if row < 0 || row >= v.Height || x < lr.gutter || x >= v.Width {
		return
	}
	lr.sink.SetContent(x, v.OriginY+row, r, nil, st)
}

func (lr *lineRender) drawLine(buf chunktree.Snapshot, line int, spans []core.Span, m marks) {
	theme := lr.theme
	start := buf.LineStart(line)
	text := buf.LineText(line)

	col, ci, si := 0, 0, 0
	for i, r := range text {
		pos := start + i
		st := theme.Text
		for si < len(spans) && spans[si].End <= ci {
			si++
		}
		if si < len(spans) && spans[si].Contains(ci) {
			st = spans[si].Style
		}
		if m.selected(pos) {
			st = st.Merge(theme.Selection)
		}
		if m.cursorAt(pos) {
			st = st.Merge(theme.SecondaryCursor)
		}

		next := lr.v.advance(col, r)
		switch {
		case r == '\t':
			for c := col; c < next; c++ {
				lr.put(c, ' ', st)
			}
		case next > col:
			lr.put(col, r, st)
			for c := col + 1; c < next; c++ {
				lr.put(c, 0, st)
			}
		}
		col = next
		ci++
	}

	// The line end cell shows a secondary cursor or a selected newline.
	end := start + len(text)
	switch {
	case m.cursorAt(end):
		lr.put(col, ' ', theme.Text.Merge(theme.SecondaryCursor))
	case m.selected(end) && line+1 < buf.LineCount():
		lr.put(col, ' ', theme.Text.Merge(theme.Selection))
	}
}
