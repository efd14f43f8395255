// Package style derives the editor colour theme from a chroma style.
//
// Syntax token colours come straight from the chroma style. Editor chrome
// (gutter, selection, tab bar, status bar) has no chroma equivalent, so it
// is blended from the style's foreground and background in Lab space.
package style

import (
	"sort"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/quill/internal/renderer/core"
)

// DefaultTheme is the chroma style used when none is configured.
const DefaultTheme = "monokai"

// Theme holds the resolved styles for every part of the screen.
type Theme struct {
	Name string

	Text            core.Style
	Gutter          core.Style
	GutterCurrent   core.Style
	EmptyLine       core.Style
	Selection       core.Style
	SecondaryCursor core.Style
	TabBar          core.Style
	TabActive       core.Style
	StatusBar       core.Style
	StatusMessage   core.Style
	Help            core.Style
	HelpHeading     core.Style
	Prompt          core.Style

	chroma *chroma.Style

	mu     sync.Mutex
	tokens map[chroma.TokenType]core.Style
}

// Load builds the theme for a chroma style name. Unknown names fall back to
// chroma's fallback style.
func Load(name string) *Theme {
	cs := styles.Get(name)
	return fromChroma(cs)
}

// Names lists the available theme names.
func Names() []string {
	names := styles.Names()
	sort.Strings(names)
	return names
}

// Plain is a theme that only uses the terminal's default colours. The
// Null back-end and tests use it.
func Plain() *Theme {
	def := core.DefaultStyle()
	return &Theme{
		Name:            "plain",
		Text:            def,
		Gutter:          def,
		GutterCurrent:   def.Bold(),
		EmptyLine:       def,
		Selection:       def.Reverse(),
		SecondaryCursor: def.Reverse(),
		TabBar:          def,
		TabActive:       def.Reverse(),
		StatusBar:       def.Reverse(),
		StatusMessage:   def,
		Help:            def,
		HelpHeading:     def.Bold(),
		Prompt:          def,
		tokens:          make(map[chroma.TokenType]core.Style),
	}
}

func fromChroma(cs *chroma.Style) *Theme {
	bgEntry := cs.Get(chroma.Background)
	fg := colourOr(bgEntry.Colour, "#d0d0d0")
	bg := colourOr(bgEntry.Background, "#1e1e1e")

	text := core.Style{Foreground: core.ColorFromColorful(fg), Background: core.ColorFromColorful(bg)}
	blend := func(t float64) core.Color {
		return core.ColorFromColorful(bg.BlendLab(fg, t))
	}

	t := &Theme{
		Name:   cs.Name,
		Text:   text,
		chroma: cs,
		tokens: make(map[chroma.TokenType]core.Style),
	}
	t.Gutter = text.WithForeground(blend(0.4))
	t.GutterCurrent = text.WithForeground(blend(0.8)).Bold()
	t.EmptyLine = text.WithForeground(blend(0.3))
	t.Selection = core.Style{Background: blend(0.25), Foreground: core.ColorDefault}
	t.SecondaryCursor = core.Style{Foreground: text.Background, Background: blend(0.7)}
	t.TabBar = core.Style{Foreground: blend(0.6), Background: blend(0.1)}
	t.TabActive = core.Style{Foreground: text.Foreground, Background: text.Background}.Bold()
	t.StatusBar = core.Style{Foreground: text.Foreground, Background: blend(0.18)}
	t.StatusMessage = text.WithForeground(blend(0.85))
	t.Help = text
	t.HelpHeading = text.WithForeground(t.TokenStyle(chroma.Keyword).Foreground).Bold()
	t.Prompt = t.StatusBar.Bold()
	return t
}

// TokenStyle returns the style for a chroma token type layered over the
// text style.
func (t *Theme) TokenStyle(tt chroma.TokenType) core.Style {
	if t.chroma == nil {
		return t.Text
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.tokens[tt]; ok {
		return s
	}

	entry := t.chroma.Get(tt)
	s := core.Style{Foreground: core.ColorDefault, Background: core.ColorDefault}
	if entry.Colour.IsSet() {
		s.Foreground = fromChromaColour(entry.Colour)
	}
	if entry.Bold == chroma.Yes {
		s.Attributes |= core.AttrBold
	}
	if entry.Italic == chroma.Yes {
		s.Attributes |= core.AttrItalic
	}
	if entry.Underline == chroma.Yes {
		s.Attributes |= core.AttrUnderline
	}
	s = t.Text.Merge(s)
	t.tokens[tt] = s
	return s
}

func fromChromaColour(c chroma.Colour) core.Color {
	return core.ColorFromRGB(c.Red(), c.Green(), c.Blue())
}

func colourOr(c chroma.Colour, fallback string) colorful.Color {
	if c.IsSet() {
		return colorful.Color{
			R: float64(c.Red()) / 255,
			G: float64(c.Green()) / 255,
			B: float64(c.Blue()) / 255,
		}
	}
	out, _ := colorful.Hex(fallback)
	return out
}
