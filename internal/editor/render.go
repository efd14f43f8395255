package editor

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/quill/internal/engine"
	"github.com/dshills/quill/internal/renderer/core"
	"github.com/dshills/quill/internal/renderer/highlight"
	"github.com/dshills/quill/internal/renderer/viewport"
)

// maxSuggestions bounds the command names shown after the prompt input.
const maxSuggestions = 5

// Render draws the whole screen into sink and returns where the terminal
// cursor belongs. x is -1 when the cursor should be hidden.
//
// Row 0 holds the tabs, the last row the status bar or the prompt, and the
// rows in between the active document or the help page.
func (e *Editor) Render(sink core.Sink) (cx, cy int) {
	if w, h := sink.Size(); w != e.width || h != e.height {
		e.Resize(w, h)
	}
	d := e.current()

	e.renderTabs(sink)
	if e.help {
		e.renderHelp(sink)
	} else {
		e.renderText(sink, d)
	}
	if e.prompt != nil {
		return e.renderPrompt(sink)
	}
	e.renderStatus(sink, d.state)
	if e.help {
		return -1, -1
	}

	x, y, ok := d.view.CursorScreenPosition(d.state.Snapshot(), d.state.Cursors.Primary())
	if !ok || x >= e.width {
		return -1, -1
	}
	return x, y
}

func (e *Editor) renderTabs(sink core.Sink) {
	core.Fill(sink, 0, 0, e.width, 1, ' ', e.theme.TabBar)
	x := 0
	for i, d := range e.docs {
		if x >= e.width {
			break
		}
		label := " " + d.state.Name()
		if d.state.Dirty {
			label += " [+]"
		}
		label += " "
		st := e.theme.TabBar
		if i == e.active {
			st = e.theme.TabActive
		}
		x = core.PutString(sink, x, 0, core.Truncate(label, e.width-x, "…"), st, e.width)
	}
}

func (e *Editor) renderText(sink core.Sink, d *document) {
	s := d.state
	buf := s.Snapshot()
	_, end := d.view.VisibleLines(buf)
	d.highlight.Update(buf.Text(0, buf.LineStart(end)))
	d.view.RenderCells(s, sink, viewport.RenderOptions{
		Theme:      e.theme,
		Highlights: d.highlight.HighlightsForLine,
	})
}

func (e *Editor) renderHelp(sink core.Sink) {
	lines := e.helpLines()
	for r := 0; r < e.height-chromeRows; r++ {
		y := 1 + r
		core.Fill(sink, 0, y, e.width, 1, ' ', e.theme.Help)
		i := e.helpScroll + r
		if i >= len(lines) {
			continue
		}
		st := e.theme.Help
		if lines[i].heading {
			st = e.theme.HelpHeading
		}
		core.PutString(sink, 1, y, lines[i].text, st, e.width)
	}
}

// StatusLine returns the left part of the status bar for s.
func StatusLine(s *engine.State) string {
	var sb strings.Builder
	sb.WriteString(" ")
	sb.WriteString(s.Name())
	if s.Dirty {
		sb.WriteString(" [+]")
	}
	sb.WriteString(" | ")
	sb.WriteString(DisplayLanguage(s.Language))

	line, col, err := s.Snapshot().PositionToLineCol(s.Cursors.Primary().Position)
	if err == nil {
		fmt.Fprintf(&sb, " | Ln %d, Col %d", line+1, col+1)
	}
	if n := s.Cursors.Count(); n > 1 {
		fmt.Fprintf(&sb, " | %d cursors", n)
	}
	return sb.String()
}

// DisplayLanguage returns the human name of a language: the chroma lexer
// name when there is one, otherwise the title-cased identifier.
func DisplayLanguage(lang string) string {
	if l := highlight.Lexer(lang); l != nil {
		return l.Config().Name
	}
	return cases.Title(language.English).String(lang)
}

func (e *Editor) renderStatus(sink core.Sink, s *engine.State) {
	y := e.height - 1
	st := e.theme.StatusBar
	core.Fill(sink, 0, y, e.width, 1, ' ', st)
	x := core.PutString(sink, 0, y, core.Truncate(StatusLine(s), e.width, "…"), st, e.width)

	if e.status == "" {
		return
	}
	room := e.width - x - 2
	if room <= 0 {
		return
	}
	msg := core.Truncate(e.status, room, "…")
	core.PutString(sink, e.width-core.StringWidth(msg)-1, y, msg, st, e.width)
}

func (e *Editor) renderPrompt(sink core.Sink) (int, int) {
	y := e.height - 1
	p := e.prompt
	core.Fill(sink, 0, y, e.width, 1, ' ', e.theme.Prompt)
	x := core.PutString(sink, 0, y, p.label+" "+string(p.input), e.theme.Prompt, e.width)

	if sugg := e.suggestions(); len(sugg) > 0 {
		names := make([]string, 0, maxSuggestions)
		for _, c := range sugg[:min(len(sugg), maxSuggestions)] {
			names = append(names, c.Name)
		}
		core.PutString(sink, x+2, y, strings.Join(names, "  "), e.theme.StatusBar, e.width)
	}
	return min(x, e.width-1), y
}
