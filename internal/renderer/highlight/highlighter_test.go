package highlight

import (
	"testing"

	"github.com/alecthomas/chroma/v2"

	"github.com/dshills/quill/internal/renderer/style"
)

const goSource = "package main\n// hi\nfunc f() {}\n"

func TestProviderTokens(t *testing.T) {
	p := NewProvider("go", style.Load(style.DefaultTheme))
	p.Update(goSource)

	tests := []struct {
		line     int
		start    int
		end      int
		category chroma.TokenType
	}{
		{0, 0, 7, chroma.Keyword},
		{1, 0, 5, chroma.Comment},
		{2, 0, 4, chroma.Keyword},
	}
	for _, tt := range tests {
		toks := p.Tokens(tt.line)
		if len(toks) == 0 {
			t.Fatalf("line %d: no tokens", tt.line)
		}
		tok := toks[0]
		if tok.Start != tt.start || tok.End != tt.end {
			t.Errorf("line %d: first token %d..%d, want %d..%d", tt.line, tok.Start, tok.End, tt.start, tt.end)
		}
		if !tok.Type.InCategory(tt.category) {
			t.Errorf("line %d: token type %v not in %v", tt.line, tok.Type, tt.category)
		}
	}
}

func TestHighlightsForLine(t *testing.T) {
	th := style.Load(style.DefaultTheme)
	p := NewProvider("go", th)
	p.Update(goSource)

	spans := p.HighlightsForLine(0)
	if len(spans) == 0 {
		t.Fatal("expected spans for line 0")
	}
	if spans[0].Style != th.TokenStyle(p.Tokens(0)[0].Type) {
		t.Error("span style should come from the theme")
	}
	if p.HighlightsForLine(99) != nil {
		t.Error("out of range line should have no spans")
	}
}

func TestMultibyteColumns(t *testing.T) {
	p := NewProvider("go", nil)
	p.Update("x := \"héllo\"\n")

	var str *Token
	for i, tok := range p.Tokens(0) {
		if tok.Type.InCategory(chroma.LiteralString) {
			str = &p.Tokens(0)[i]
			break
		}
	}
	if str == nil {
		t.Fatal("no string token")
	}
	if str.Start != 5 || str.End != 12 {
		t.Errorf("string token %d..%d, want 5..12", str.Start, str.End)
	}
}

func TestNoLexer(t *testing.T) {
	for _, lang := range []string{"text", "", "no-such-language"} {
		p := NewProvider(lang, nil)
		p.Update("package main\n")
		if spans := p.HighlightsForLine(0); spans != nil {
			t.Errorf("%q: spans = %v, want none", lang, spans)
		}
	}
}

func TestSetLanguageResets(t *testing.T) {
	p := NewProvider("go", nil)
	p.Update(goSource)
	p.SetLanguage("text")
	if p.Tokens(0) != nil {
		t.Error("tokens should be dropped when the language changes")
	}
	if p.Language() != "text" {
		t.Errorf("Language() = %q", p.Language())
	}
}
