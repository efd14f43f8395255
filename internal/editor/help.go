package editor

import (
	"fmt"
	"strings"
)

// helpLine is one row of the help page.
type helpLine struct {
	text    string
	heading bool
}

// keyColumn is the width of the key column on the help page.
const keyColumn = 18

// helpLines builds the help page from the Normal keymap.
func (e *Editor) helpLines() []helpLine {
	lines := []helpLine{
		{text: "KEYBOARD SHORTCUTS", heading: true},
		{},
	}
	for _, cat := range e.keymaps.Help() {
		lines = append(lines, helpLine{text: cat.Name, heading: true})
		for _, b := range cat.Bindings {
			lines = append(lines, helpLine{text: fmt.Sprintf("  %-*s %s", keyColumn, b.Keys, b.Describe())})
		}
		lines = append(lines, helpLine{})
	}
	lines = append(lines, helpLine{text: "Esc or F1 closes this page. Up/Down and PageUp/PageDown scroll."})
	return lines
}

// HelpText returns the help page as plain text.
func (e *Editor) HelpText() string {
	var sb strings.Builder
	for _, l := range e.helpLines() {
		sb.WriteString(l.text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// HelpVisible reports whether the help page is shown.
func (e *Editor) HelpVisible() bool {
	return e.help
}

// HelpScroll returns the first help line on screen.
func (e *Editor) HelpScroll() int {
	return e.helpScroll
}

// ToggleHelp shows or hides the help page. Both reset its scroll.
func (e *Editor) ToggleHelp() {
	e.help = !e.help
	e.helpScroll = 0
}

// ScrollHelp moves the help page by delta lines, keeping the last line on
// screen.
func (e *Editor) ScrollHelp(delta int) {
	e.helpScroll += delta
	e.clampHelpScroll()
}

func (e *Editor) clampHelpScroll() {
	rows := e.height - chromeRows
	limit := max(len(e.helpLines())-rows, 0)
	e.helpScroll = min(max(e.helpScroll, 0), limit)
}
