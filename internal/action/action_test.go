package action

import (
	"slices"
	"testing"

	"github.com/dshills/quill/internal/engine"
	"github.com/dshills/quill/internal/engine/cursor"
	"github.com/dshills/quill/internal/engine/event"
)

func newState(t *testing.T, text string, opts ...engine.Option) *engine.State {
	t.Helper()
	s, err := engine.NewState(append([]engine.Option{engine.WithText(text)}, opts...)...)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return s
}

// do translates and commits a, failing the test on error.
func do(t *testing.T, s *engine.State, ctx Context, a Action) []event.Event {
	t.Helper()
	events := Translate(a, s, ctx)
	if _, err := s.Commit(events, HintFor(a, s)); err != nil {
		t.Fatalf("commit %v: %v", a, err)
	}
	if err := s.CheckInvariants(); err != nil {
		t.Fatalf("after %v: %v", a, err)
	}
	return events
}

func typeText(t *testing.T, s *engine.State, ctx Context, text string) {
	t.Helper()
	for _, r := range text {
		do(t, s, ctx, Char(r))
	}
}

func positions(s *engine.State) []int {
	var out []int
	for _, c := range s.Cursors.All() {
		out = append(out, c.Position)
	}
	return out
}

func place(s *engine.State, pos ...int) {
	s.Cursors.Map(func(c cursor.Cursor) cursor.Cursor { return c.MoveTo(pos[0]) })
	for _, p := range pos[1:] {
		s.Cursors.Add(p, cursor.NoAnchor)
	}
}

func TestKindNames(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range Kinds() {
		name := k.String()
		if name == "" || seen[name] {
			t.Fatalf("kind %d has empty or duplicate name %q", k, name)
		}
		seen[name] = true
		if k.Description() == "" {
			t.Errorf("%s has no description", name)
		}
		got, ok := Parse(name)
		if !ok || got != k {
			t.Errorf("Parse(%q) = %v, %v", name, got, ok)
		}
	}
	if _, ok := Parse("editor.nope"); ok {
		t.Error("Parse accepted an unknown name")
	}
	if Copy.Description() != "Copy" || DeleteBackward.Description() != "Delete backward" {
		t.Errorf("descriptions: %q, %q", Copy.Description(), DeleteBackward.Description())
	}
}

func TestMultiCursorInsert(t *testing.T) {
	s := newState(t, "aaa\nbbb\nccc\nddd")
	place(s, 0, 4, 8, 12)
	ctx := DefaultContext()

	do(t, s, ctx, Char('X'))
	if got := s.Text(); got != "Xaaa\nXbbb\nXccc\nXddd" {
		t.Fatalf("text = %q", got)
	}
	if got, want := positions(s), []int{1, 6, 11, 16}; !slices.Equal(got, want) {
		t.Fatalf("positions = %v, want %v", got, want)
	}

	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := s.Text(); got != "aaa\nbbb\nccc\nddd" {
		t.Fatalf("text after undo = %q", got)
	}
	if got, want := positions(s), []int{0, 4, 8, 12}; !slices.Equal(got, want) {
		t.Fatalf("positions after undo = %v, want %v", got, want)
	}
}

func TestEventsDescend(t *testing.T) {
	s := newState(t, "aaa\nbbb")
	place(s, 0, 4)
	events := Translate(Char('X'), s, DefaultContext())
	if len(events) != 2 {
		t.Fatalf("got %d events", len(events))
	}
	first, second := events[0].(event.Insert), events[1].(event.Insert)
	if first.At != 4 || second.At != 0 {
		t.Errorf("insert order = %d, %d; want 4, 0", first.At, second.At)
	}
}

func TestTypingUndoRedo(t *testing.T) {
	s := newState(t, "")
	ctx := DefaultContext()
	typeText(t, s, ctx, "Hello")

	if len(s.Log.Past()) != 1 {
		t.Fatalf("groups = %d, want 1", len(s.Log.Past()))
	}
	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if s.Text() != "" || s.Cursors.Primary().Position != 0 {
		t.Fatalf("after undo: %q at %d", s.Text(), s.Cursors.Primary().Position)
	}
	if err := s.Redo(); err != nil {
		t.Fatal(err)
	}
	if s.Text() != "Hello" || s.Cursors.Primary().Position != 5 {
		t.Fatalf("after redo: %q at %d", s.Text(), s.Cursors.Primary().Position)
	}
}

func TestInsertInMiddle(t *testing.T) {
	s := newState(t, "Hello World")
	place(s, 6)
	typeText(t, s, DefaultContext(), "Beautiful ")
	if got := s.Text(); got != "Hello Beautiful World" {
		t.Fatalf("text = %q", got)
	}
	if got := s.Cursors.Primary().Position; got != 16 {
		t.Fatalf("position = %d, want 16", got)
	}
}

func TestTypeThenBackspace(t *testing.T) {
	s := newState(t, "Start End")
	place(s, 6)
	ctx := DefaultContext()
	do(t, s, ctx, Char('X'))
	do(t, s, ctx, New(DeleteBackward))
	if s.Text() != "Start End" || s.Cursors.Primary().Position != 6 {
		t.Fatalf("got %q at %d", s.Text(), s.Cursors.Primary().Position)
	}
}

func TestWordMotion(t *testing.T) {
	s := newState(t, "foo.bar")
	ctx := DefaultContext()
	for _, want := range []int{3, 4, 7, 7} {
		do(t, s, ctx, New(MoveWordRight))
		if got := s.Cursors.Primary().Position; got != want {
			t.Fatalf("position = %d, want %d", got, want)
		}
	}
	for _, want := range []int{4, 3, 0} {
		do(t, s, ctx, New(MoveWordLeft))
		if got := s.Cursors.Primary().Position; got != want {
			t.Fatalf("position = %d, want %d", got, want)
		}
	}
	if len(s.Log.Past()) != 0 {
		t.Error("motion was recorded in history")
	}
}

func TestMotionUnchangedEmitsNothing(t *testing.T) {
	s := newState(t, "abc")
	if events := Translate(New(MoveLeft), s, DefaultContext()); events != nil {
		t.Errorf("MoveLeft at 0 = %v, want nil", events)
	}
	if events := Translate(New(MoveUp), s, DefaultContext()); events != nil {
		t.Errorf("MoveUp on first line = %v, want nil", events)
	}
}

func TestAutoClose(t *testing.T) {
	tests := []struct {
		name     string
		language string
		enabled  bool
		want     string
		pos      int
	}{
		{"code", "rust", true, `""`, 1},
		{"text", engine.PlainText, true, `"`, 1},
		{"disabled", "go", false, `"`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, "", engine.WithLanguage(tt.language))
			ctx := DefaultContext()
			ctx.AutoClose = tt.enabled
			do(t, s, ctx, Char('"'))
			if s.Text() != tt.want || s.Cursors.Primary().Position != tt.pos {
				t.Errorf("got %q at %d, want %q at %d",
					s.Text(), s.Cursors.Primary().Position, tt.want, tt.pos)
			}
		})
	}
}

func TestSelectionReplace(t *testing.T) {
	s := newState(t, "hello world")
	ctx := DefaultContext()
	for range 5 {
		do(t, s, ctx, New(SelectRight))
	}
	if start, end := s.Cursors.Primary().Selection(); start != 0 || end != 5 {
		t.Fatalf("selection = %d..%d", start, end)
	}
	do(t, s, ctx, Char('J'))
	if s.Text() != "J world" || s.Cursors.Primary().Position != 1 {
		t.Fatalf("got %q at %d", s.Text(), s.Cursors.Primary().Position)
	}
	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if s.Text() != "hello world" {
		t.Fatalf("after undo %q", s.Text())
	}
	if start, end := s.Cursors.Primary().Selection(); start != 0 || end != 5 {
		t.Fatalf("selection after undo = %d..%d", start, end)
	}
}

func TestDeletes(t *testing.T) {
	tests := []struct {
		name string
		text string
		at   []int
		kind Kind
		want string
		pos  []int
	}{
		{"backspace", "abc", []int{2}, DeleteBackward, "ac", []int{1}},
		{"backspace at start", "abc", []int{0}, DeleteBackward, "abc", []int{0}},
		{"delete", "abc", []int{1}, DeleteForward, "ac", []int{1}},
		{"delete at end", "abc", []int{3}, DeleteForward, "abc", []int{3}},
		{"backspace multi", "ab\ncd\nef", []int{2, 5, 8}, DeleteBackward, "a\nc\ne", []int{1, 3, 5}},
		{"backspace crlf", "a\r\nb", []int{3}, DeleteBackward, "ab", []int{1}},
		{"delete crlf", "a\r\nb", []int{1}, DeleteForward, "ab", []int{1}},
		{"backspace multibyte", "aé", []int{3}, DeleteBackward, "a", []int{1}},
		{"word backward", "foo bar", []int{7}, DeleteWordBackward, "foo ", []int{4}},
		{"word forward", "foo bar", []int{0}, DeleteWordForward, " bar", []int{0}},
		{"word ranges clipped", "abcde", []int{3, 5}, DeleteWordBackward, "", []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, tt.text)
			place(s, tt.at...)
			do(t, s, DefaultContext(), New(tt.kind))
			if s.Text() != tt.want {
				t.Errorf("text = %q, want %q", s.Text(), tt.want)
			}
			if got := positions(s); !slices.Equal(got, tt.pos) {
				t.Errorf("positions = %v, want %v", got, tt.pos)
			}
		})
	}
}

func TestNewlineAutoIndent(t *testing.T) {
	s := newState(t, "  foo")
	place(s, 5)
	do(t, s, DefaultContext(), New(InsertNewline))
	if s.Text() != "  foo\n  " || s.Cursors.Primary().Position != 8 {
		t.Fatalf("got %q at %d", s.Text(), s.Cursors.Primary().Position)
	}

	s = newState(t, "  foo")
	place(s, 5)
	ctx := DefaultContext()
	ctx.AutoIndent = false
	do(t, s, ctx, New(InsertNewline))
	if s.Text() != "  foo\n" {
		t.Fatalf("got %q", s.Text())
	}
}

func TestNewlineCRLF(t *testing.T) {
	s := newState(t, "a\r\nb")
	place(s, 1)
	ctx := DefaultContext()
	ctx.AutoIndent = false
	do(t, s, ctx, New(InsertNewline))
	if s.Text() != "a\r\n\r\nb" {
		t.Fatalf("got %q", s.Text())
	}
}

func TestPaste(t *testing.T) {
	s := newState(t, "a\nb\nc")
	place(s, 1, 3, 5)
	ctx := DefaultContext()
	ctx.Clipboard = "1\n2\n3"
	do(t, s, ctx, New(Paste))
	if s.Text() != "a1\nb2\nc3" {
		t.Fatalf("distributed paste = %q", s.Text())
	}

	s = newState(t, "a\nb")
	place(s, 1, 3)
	ctx.Clipboard = "xy"
	do(t, s, ctx, New(Paste))
	if s.Text() != "axy\nbxy" {
		t.Fatalf("paste = %q", s.Text())
	}

	ctx.Clipboard = ""
	if events := Translate(New(Paste), s, ctx); events != nil {
		t.Errorf("empty paste = %v", events)
	}
}

func TestCut(t *testing.T) {
	s := newState(t, "hello world")
	ctx := DefaultContext()
	if events := Translate(New(Cut), s, ctx); events != nil {
		t.Fatalf("cut without selection = %v", events)
	}
	do(t, s, ctx, New(SelectWordRight))
	do(t, s, ctx, New(Cut))
	if s.Text() != " world" {
		t.Fatalf("text = %q", s.Text())
	}
}

func TestSelectAll(t *testing.T) {
	s := newState(t, "abc\ndef")
	place(s, 1, 5)
	do(t, s, DefaultContext(), New(SelectAll))
	if s.Cursors.Count() != 1 {
		t.Fatalf("count = %d", s.Cursors.Count())
	}
	if start, end := s.Cursors.Primary().Selection(); start != 0 || end != 7 {
		t.Fatalf("selection = %d..%d", start, end)
	}
}

func TestAddCursorNextMatch(t *testing.T) {
	s := newState(t, "foo bar foo")
	ctx := DefaultContext()
	do(t, s, ctx, New(AddCursorNextMatch))
	if start, end := s.Cursors.Primary().Selection(); start != 0 || end != 3 {
		t.Fatalf("word selection = %d..%d", start, end)
	}
	do(t, s, ctx, New(AddCursorNextMatch))
	if s.Cursors.Count() != 2 {
		t.Fatalf("count = %d", s.Cursors.Count())
	}
	if start, end := s.Cursors.Primary().Selection(); start != 8 || end != 11 {
		t.Fatalf("primary = %d..%d", start, end)
	}
	do(t, s, ctx, Char('x'))
	if s.Text() != "x bar x" {
		t.Fatalf("text = %q", s.Text())
	}
}

func TestAddCursorBelowAndEscape(t *testing.T) {
	s := newState(t, "abc\nabc\nabc")
	place(s, 1)
	ctx := DefaultContext()
	do(t, s, ctx, New(AddCursorBelow))
	do(t, s, ctx, New(AddCursorBelow))
	if got, want := positions(s), []int{1, 5, 9}; !slices.Equal(got, want) {
		t.Fatalf("positions = %v, want %v", got, want)
	}
	do(t, s, ctx, New(RemoveSecondaryCursors))
	if got := positions(s); !slices.Equal(got, []int{9}) {
		t.Fatalf("after escape = %v", got)
	}
}

func TestVerticalPreferredColumn(t *testing.T) {
	s := newState(t, "abcdef\nab\nabcdef")
	place(s, 5)
	ctx := DefaultContext()
	do(t, s, ctx, New(MoveDown))
	if got := s.Cursors.Primary().Position; got != 9 {
		t.Fatalf("down = %d, want 9", got)
	}
	do(t, s, ctx, New(MoveDown))
	if got := s.Cursors.Primary().Position; got != 15 {
		t.Fatalf("down again = %d, want 15", got)
	}
	do(t, s, ctx, New(MoveLeft))
	if got := s.Cursors.Primary().PreferredColumn; got != cursor.NoColumn {
		t.Fatalf("preferred column after left = %d", got)
	}
}

func TestLineAndDocumentMotion(t *testing.T) {
	s := newState(t, "one\ntwo")
	place(s, 5)
	ctx := DefaultContext()
	steps := []struct {
		kind Kind
		want int
	}{
		{MoveLineStart, 4},
		{MoveLineEnd, 7},
		{MoveDocumentStart, 0},
		{MoveDocumentEnd, 7},
		{MovePageUp, 3},
	}
	for _, st := range steps {
		do(t, s, ctx, New(st.kind))
		if got := s.Cursors.Primary().Position; got != st.want {
			t.Fatalf("%s: position = %d, want %d", st.kind, got, st.want)
		}
	}
}

func TestCRLFStaysPaired(t *testing.T) {
	tests := []struct {
		name    string
		at      int
		actions []Action
		want    string
		pos     int
	}{
		{"right then backspace", 2, []Action{New(MoveRight), New(DeleteBackward)}, "abcd", 2},
		{"left then delete", 4, []Action{New(MoveLeft), New(DeleteForward)}, "abcd", 2},
		{"word right then type", 2, []Action{New(MoveWordRight), Char('X')}, "ab\r\nXcd", 5},
		{"word left then type", 4, []Action{New(MoveWordLeft), Char('X')}, "abX\r\ncd", 3},
		{"select right", 2, []Action{New(SelectRight), New(DeleteBackward)}, "abcd", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, "ab\r\ncd")
			place(s, tt.at)
			for _, a := range tt.actions {
				do(t, s, DefaultContext(), a)
			}
			if s.Text() != tt.want {
				t.Errorf("text = %q, want %q", s.Text(), tt.want)
			}
			if got := s.Cursors.Primary().Position; got != tt.pos {
				t.Errorf("cursor = %d, want %d", got, tt.pos)
			}
		})
	}

	s := newState(t, "ab\r\ncd")
	if events := Translate(Action{Kind: SetCursors, Cursors: []cursor.Cursor{cursor.New(0, 3)}}, s, DefaultContext()); events != nil {
		t.Errorf("cursor inside CRLF accepted: %v", events)
	}
}

func TestForwardDeleteInverse(t *testing.T) {
	for _, k := range []Kind{DeleteForward, DeleteWordForward} {
		t.Run(k.String(), func(t *testing.T) {
			s := newState(t, "abc def")
			place(s, 0)
			before := s.Cursors.Snapshot()

			events := do(t, s, DefaultContext(), New(k))
			if len(events) != 1 {
				t.Fatalf("events = %v", events)
			}
			if d, ok := events[0].(event.Delete); !ok || !d.Forward {
				t.Fatalf("event = %#v, want a forward delete", events[0])
			}
			for _, e := range event.InvertAll(events) {
				if err := s.Apply(e); err != nil {
					t.Fatal(err)
				}
			}
			if s.Text() != "abc def" || !s.Cursors.Snapshot().Equal(before) {
				t.Errorf("after inverse: %q, cursors %+v", s.Text(), s.Cursors.Snapshot())
			}
		})
	}
}

func TestPluginOperations(t *testing.T) {
	s := newState(t, "héllo")
	ctx := DefaultContext()

	if events := Translate(Action{Kind: InsertAt, Start: 2, Text: "x"}, s, ctx); events != nil {
		t.Errorf("insert inside a code point = %v", events)
	}
	if events := Translate(Action{Kind: DeleteRange, Start: 3, End: 99}, s, ctx); events != nil {
		t.Errorf("delete out of range = %v", events)
	}

	do(t, s, ctx, Action{Kind: InsertAt, Start: 6, Text: "!"})
	if s.Text() != "héllo!" {
		t.Fatalf("text = %q", s.Text())
	}
	do(t, s, ctx, Action{Kind: DeleteRange, Start: 0, End: 3})
	if s.Text() != "llo!" {
		t.Fatalf("text = %q", s.Text())
	}

	sel := cursor.New(0, 2)
	sel.Anchor = 0
	do(t, s, ctx, Action{Kind: SetCursors, Cursors: []cursor.Cursor{cursor.New(0, 4), sel}})
	if s.Cursors.Count() != 2 || s.Cursors.Primary().Position != 4 {
		t.Fatalf("cursors = %v", s.Cursors)
	}
	if events := Translate(Action{Kind: SetCursors, Cursors: []cursor.Cursor{cursor.New(0, 9)}}, s, ctx); events != nil {
		t.Errorf("out of range cursors = %v", events)
	}
}

func TestEditorHandledKindsYieldNothing(t *testing.T) {
	s := newState(t, "abc")
	for _, k := range []Kind{Copy, Undo, Redo, Save, Quit, ShowHelp, ScrollDown, None} {
		if events := Translate(New(k), s, DefaultContext()); events != nil {
			t.Errorf("%s = %v, want nil", k, events)
		}
	}
}

func TestHintFor(t *testing.T) {
	s := newState(t, "a\nb")
	place(s, 3)
	if h := HintFor(Char('x'), s); h.Kind != event.HintTyping || h.Line != 1 {
		t.Errorf("typing hint = %+v", h)
	}
	if h := HintFor(New(DeleteBackward), s); h.Kind != event.HintBackspace {
		t.Errorf("backspace hint = %+v", h)
	}
	if h := HintFor(New(MoveLeft), s); h.Kind != event.HintNone {
		t.Errorf("motion hint = %+v", h)
	}
}
