// Package highlight turns buffer text into styled column spans using chroma
// lexers.
package highlight

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/dshills/quill/internal/renderer/core"
	"github.com/dshills/quill/internal/renderer/style"
)

// Token is a run of one token type on one line. Start and End are code
// point columns.
type Token struct {
	Start int
	End   int
	Type  chroma.TokenType
}

// Provider tokenises a document and serves per-line spans to the viewport.
// Tokenising restarts from the beginning of the document whenever the text
// changes, so multi-line constructs such as block comments stay correct.
type Provider struct {
	mu sync.Mutex

	language string
	lexer    chroma.Lexer
	theme    *style.Theme

	// text is the input of the last tokenisation
	text  string
	lines [][]Token
	valid bool
}

// NewProvider creates a provider for a language name. Languages without a
// chroma lexer produce no spans.
func NewProvider(language string, theme *style.Theme) *Provider {
	if theme == nil {
		theme = style.Plain()
	}
	p := &Provider{theme: theme}
	p.SetLanguage(language)
	return p
}

// Lexer returns the chroma lexer for a language name, or nil.
func Lexer(language string) chroma.Lexer {
	switch language {
	case "", "text", "plaintext":
		return nil
	}
	l := lexers.Get(language)
	if l == nil {
		return nil
	}
	return chroma.Coalesce(l)
}

// Language returns the language the provider tokenises.
func (p *Provider) Language() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.language
}

// SetLanguage switches the lexer and drops cached tokens.
func (p *Provider) SetLanguage(language string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lexer != nil && p.language == language {
		return
	}
	p.language = language
	p.lexer = Lexer(language)
	p.valid = false
	p.lines = nil
}

// SetTheme sets the theme used by HighlightsForLine.
func (p *Provider) SetTheme(theme *style.Theme) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.theme = theme
}

// Update tokenises text if it differs from the last call. The text is
// usually the document up to the last visible line.
func (p *Provider) Update(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lexer == nil || (p.valid && p.text == text) {
		return
	}
	p.text = text
	p.lines = tokenise(p.lexer, text)
	p.valid = true
}

// Tokens returns the tokens of a line from the last Update.
func (p *Provider) Tokens(line int) []Token {
	p.mu.Lock()
	defer p.mu.Unlock()
	if line < 0 || line >= len(p.lines) {
		return nil
	}
	return p.lines[line]
}

// HighlightsForLine returns the styled spans of a line.
func (p *Provider) HighlightsForLine(line int) []core.Span {
	p.mu.Lock()
	defer p.mu.Unlock()
	if line < 0 || line >= len(p.lines) {
		return nil
	}
	toks := p.lines[line]
	spans := make([]core.Span, 0, len(toks))
	for _, tok := range toks {
		spans = append(spans, core.Span{
			Start: tok.Start,
			End:   tok.End,
			Style: p.theme.TokenStyle(tok.Type),
		})
	}
	return spans
}

// tokenise splits the chroma token stream at newlines. A lexer error leaves
// the document unhighlighted.
func tokenise(lexer chroma.Lexer, text string) [][]Token {
	it, err := lexer.Tokenise(nil, text)
	if err != nil {
		return nil
	}

	lines := [][]Token{nil}
	col := 0
	for _, tok := range it.Tokens() {
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, nil)
				col = 0
			}
			part = strings.TrimSuffix(part, "\r")
			n := utf8.RuneCountInString(part)
			if n == 0 {
				continue
			}
			if tok.Type != chroma.Text && tok.Type != chroma.TextWhitespace {
				last := len(lines) - 1
				lines[last] = append(lines[last], Token{Start: col, End: col + n, Type: tok.Type})
			}
			col += n
		}
	}
	return lines
}
