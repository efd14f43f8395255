package engine

import (
	"errors"
	"math/rand"
	"reflect"
	"slices"
	"strings"
	"testing"
	"testing/quick"
	"time"

	"github.com/dshills/quill/internal/engine/chunktree"
	"github.com/dshills/quill/internal/engine/cursor"
	"github.com/dshills/quill/internal/engine/event"
)

func newState(t *testing.T, text string, opts ...Option) *State {
	t.Helper()
	opts = append([]Option{WithText(text), WithChunkTarget(8)}, opts...)
	s, err := NewState(opts...)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return s
}

func TestNewStateDefaults(t *testing.T) {
	s := newState(t, "")
	if s.Name() != ScratchName {
		t.Errorf("Name() = %q, want %q", s.Name(), ScratchName)
	}
	if s.Language != PlainText {
		t.Errorf("Language = %q, want %q", s.Language, PlainText)
	}
	if s.Dirty {
		t.Error("new state should be clean")
	}
	if s.Cursors.Count() != 1 || s.Cursors.Primary().Position != 0 {
		t.Errorf("cursors = %v", s.Cursors)
	}
	if s.ID == newState(t, "").ID {
		t.Error("state ids should be unique")
	}

	named := newState(t, "", WithPath("/tmp/dir/main.go"), WithLanguage("go"))
	if named.Name() != "main.go" || named.Language != "go" {
		t.Errorf("named state = %q (%s)", named.Name(), named.Language)
	}

	if _, err := NewState(WithText("\xff")); !errors.Is(err, chunktree.ErrInvalidEncoding) {
		t.Errorf("invalid text: %v", err)
	}
}

func TestLineEndings(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		normalize bool
		want      LineEnding
		newline   string
		buffer    string
	}{
		{"lf", "a\nb\n", false, LineEndingLF, "\n", "a\nb\n"},
		{"crlf kept", "a\r\nb\r\n", false, LineEndingCRLF, "\r\n", "a\r\nb\r\n"},
		{"crlf normalized", "a\r\nb\r\n", true, LineEndingCRLF, "\n", "a\nb\n"},
		{"no breaks", "abc", true, LineEndingLF, "\n", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, tt.text, WithNormalizedLineEndings(tt.normalize))
			if s.LineEnding != tt.want {
				t.Errorf("LineEnding = %v, want %v", s.LineEnding, tt.want)
			}
			if s.Newline() != tt.newline {
				t.Errorf("Newline() = %q, want %q", s.Newline(), tt.newline)
			}
			if s.Text() != tt.buffer {
				t.Errorf("buffer = %q, want %q", s.Text(), tt.buffer)
			}
			if s.SaveText() != tt.text {
				t.Errorf("SaveText() = %q, want %q", s.SaveText(), tt.text)
			}
		})
	}
}

func TestApplyDeleteMismatch(t *testing.T) {
	s := newState(t, "hello")
	err := s.Apply(event.Delete{Start: 0, End: 2, Removed: "xx"})
	if !errors.Is(err, ErrEventMismatch) {
		t.Fatalf("expected ErrEventMismatch, got %v", err)
	}
	if s.Text() != "hello" {
		t.Errorf("buffer changed to %q", s.Text())
	}
}

func TestApplyAllIsAtomic(t *testing.T) {
	s := newState(t, "hello")
	before := s.Cursors.Snapshot()
	err := s.ApplyAll([]event.Event{
		event.Insert{At: 5, Text: "!"},
		event.Insert{At: 0, Text: ">"},
		event.Delete{Start: 40, End: 41, Removed: "x"},
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if s.Text() != "hello" {
		t.Errorf("buffer = %q, want it unchanged", s.Text())
	}
	if !s.Cursors.Snapshot().Equal(before) {
		t.Errorf("cursors changed: %v", s.Cursors)
	}
}

func TestMultiCursorInsertAndUndo(t *testing.T) {
	s := newState(t, "aaa\nbbb\nccc\nddd")
	for _, p := range []int{4, 8, 12} {
		s.Cursors.Add(p, cursor.NoAnchor)
	}
	var events []event.Event
	for _, c := range slices.Backward(s.Cursors.All()) {
		events = append(events, event.Insert{At: c.Position, Text: "X", Author: c.ID})
	}
	if _, err := s.Commit(events, event.Hint{}); err != nil {
		t.Fatal(err)
	}
	if got, want := s.Text(), "Xaaa\nXbbb\nXccc\nXddd"; got != want {
		t.Errorf("buffer = %q, want %q", got, want)
	}
	if got, want := s.Cursors.Snapshot().Positions(), []int{1, 6, 11, 16}; !slices.Equal(got, want) {
		t.Errorf("positions = %v, want %v", got, want)
	}
	if !s.Dirty {
		t.Error("state should be dirty")
	}

	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if got, want := s.Text(), "aaa\nbbb\nccc\nddd"; got != want {
		t.Errorf("after undo buffer = %q, want %q", got, want)
	}
	if got, want := s.Cursors.Snapshot().Positions(), []int{0, 4, 8, 12}; !slices.Equal(got, want) {
		t.Errorf("after undo positions = %v, want %v", got, want)
	}
	if s.Dirty {
		t.Error("undo back to the opened text should be clean")
	}
}

func TestUndoRedoTyping(t *testing.T) {
	s := newState(t, "")
	for _, ch := range "Hello" {
		p := s.Cursors.Primary()
		ev := event.Insert{At: p.Position, Text: string(ch), Author: p.ID}
		if _, err := s.Commit([]event.Event{ev}, event.Hint{Kind: event.HintTyping}); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(s.Log.Past()); n != 1 {
		t.Fatalf("past has %d groups, want 1", n)
	}
	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if s.Text() != "" || s.Cursors.Primary().Position != 0 {
		t.Errorf("after undo: %q at %d", s.Text(), s.Cursors.Primary().Position)
	}
	if err := s.Redo(); err != nil {
		t.Fatal(err)
	}
	if s.Text() != "Hello" || s.Cursors.Primary().Position != 5 {
		t.Errorf("after redo: %q at %d", s.Text(), s.Cursors.Primary().Position)
	}
	if err := s.Redo(); !errors.Is(err, event.ErrEmptyHistory) {
		t.Errorf("extra redo: %v", err)
	}
}

func TestMovementNotRecorded(t *testing.T) {
	s := newState(t, "abc")
	before := s.Cursors.Snapshot()
	moved := s.Cursors.Clone()
	moved.Map(func(c cursor.Cursor) cursor.Cursor { return c.MoveTo(2) })
	g, err := s.Commit([]event.Event{event.CursorSetReplace{Before: before, After: moved.Snapshot()}}, event.Hint{})
	if err != nil {
		t.Fatal(err)
	}
	if g != nil || s.Log.CanUndo() {
		t.Error("motion should not be undoable")
	}
	if s.Cursors.Primary().Position != 2 || s.Dirty {
		t.Errorf("cursor = %d, dirty = %v", s.Cursors.Primary().Position, s.Dirty)
	}
}

func TestMarkSaved(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s := newState(t, "", WithClock(func() time.Time { return now }))
	s.Commit([]event.Event{event.Insert{At: 0, Text: "a"}}, event.Hint{Kind: event.HintTyping})
	if !s.Dirty || !s.LastChange.Equal(now) {
		t.Fatalf("dirty = %v, last change = %v", s.Dirty, s.LastChange)
	}
	s.MarkSaved(now)
	if s.Dirty {
		t.Fatal("MarkSaved should clear dirty")
	}
	s.Commit([]event.Event{event.Insert{At: 1, Text: "b"}}, event.Hint{Kind: event.HintTyping})
	if n := len(s.Log.Past()); n != 2 {
		t.Errorf("typing after save should start a new group, past = %d", n)
	}
	s.Undo()
	if s.Dirty {
		t.Error("undo to the saved point should be clean")
	}
	s.Undo()
	if !s.Dirty {
		t.Error("undo past the saved point should be dirty")
	}
}

// roundTrip is a generated text with one event to apply and invert.
type roundTrip struct {
	text   string
	cursor int
	ev     event.Event
}

func (roundTrip) Generate(r *rand.Rand, size int) reflect.Value {
	const alphabet = "ab \n.é世"
	var b strings.Builder
	for range r.Intn(size + 8) {
		rs := []rune(alphabet)
		b.WriteRune(rs[r.Intn(len(rs))])
	}
	text := b.String()
	bounds := []int{}
	for i := range text {
		bounds = append(bounds, i)
	}
	bounds = append(bounds, len(text))
	pick := func() int { return bounds[r.Intn(len(bounds))] }

	rt := roundTrip{text: text, cursor: pick()}
	if r.Intn(2) == 0 || len(text) == 0 {
		rt.ev = event.Insert{At: pick(), Text: "xé\n"[:1+r.Intn(2)*2], Author: 0}
	} else {
		s, e := pick(), pick()
		if s > e {
			s, e = e, s
		}
		// A cursor at the start of the range deleted it forward.
		rt.ev = event.Delete{Start: s, End: e, Removed: text[s:e], Author: 0, Forward: rt.cursor == s}
	}
	return reflect.ValueOf(rt)
}

func TestInvertRoundTrip(t *testing.T) {
	check := func(rt roundTrip) bool {
		if d, ok := rt.ev.(event.Delete); ok && rt.cursor > d.Start && rt.cursor < d.End {
			// A cursor inside a deleted range cannot be recovered by the
			// event alone; groups restore it from their snapshot.
			return true
		}
		s, err := NewState(WithText(rt.text), WithChunkTarget(8))
		if err != nil {
			return false
		}
		s.Cursors.Map(func(c cursor.Cursor) cursor.Cursor { return c.MoveTo(rt.cursor) })
		before := s.Cursors.Snapshot()

		if err := s.Apply(rt.ev); err != nil {
			t.Logf("apply %v: %v", rt.ev, err)
			return false
		}
		if err := s.Apply(rt.ev.Invert()); err != nil {
			t.Logf("apply inverse of %v: %v", rt.ev, err)
			return false
		}
		return s.Text() == rt.text && s.Cursors.Snapshot().Equal(before) && s.CheckInvariants() == nil
	}
	if err := quick.Check(check, &quick.Config{MaxCount: 500}); err != nil {
		t.Error(err)
	}
}

func TestInvertDeleteDirection(t *testing.T) {
	tests := []struct {
		name   string
		cursor int
		ev     event.Delete
	}{
		{"forward", 0, event.Delete{Start: 0, End: 1, Removed: "a", Author: 0, Forward: true}},
		{"forward crlf", 1, event.Delete{Start: 1, End: 3, Removed: "\r\n", Author: 0, Forward: true}},
		{"backward", 1, event.Delete{Start: 0, End: 1, Removed: "a", Author: 0}},
		{"backward crlf", 3, event.Delete{Start: 1, End: 3, Removed: "\r\n", Author: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, "a\r\nbc")
			s.Cursors.Map(func(c cursor.Cursor) cursor.Cursor { return c.MoveTo(tt.cursor) })
			before := s.Cursors.Snapshot()

			if err := s.Apply(tt.ev); err != nil {
				t.Fatal(err)
			}
			if err := s.Apply(tt.ev.Invert()); err != nil {
				t.Fatal(err)
			}
			if s.Text() != "a\r\nbc" {
				t.Errorf("text = %q", s.Text())
			}
			if got := s.Cursors.Primary().Position; got != tt.cursor {
				t.Errorf("cursor = %d, want %d", got, tt.cursor)
			}
			if !s.Cursors.Snapshot().Equal(before) {
				t.Errorf("cursor set changed: %+v", s.Cursors.Snapshot())
			}
		})
	}
}

func TestUndoRedoIdentity(t *testing.T) {
	check := func(seed int64) bool {
		r := rand.New(rand.NewSource(seed))
		s, _ := NewState(WithText("the quick brown fox\njumps over\nthe lazy dog"), WithChunkTarget(8))
		for range 5 {
			s.Cursors.Add(r.Intn(s.Buffer.Len()+1), cursor.NoAnchor)
		}
		initial, initialCursors := s.Text(), s.Cursors.Snapshot()

		steps := 1 + r.Intn(20)
		for range steps {
			n := s.Buffer.Len()
			var ev event.Event
			if n == 0 || r.Intn(3) > 0 {
				ev = event.Insert{At: r.Intn(n + 1), Text: "xy"[:1+r.Intn(2)], Author: cursor.NoAuthor}
			} else {
				start := r.Intn(n)
				end := min(n, start+1+r.Intn(4))
				ev = event.Delete{Start: start, End: end, Removed: s.Buffer.Text(start, end), Author: cursor.NoAuthor}
			}
			if _, err := s.Commit([]event.Event{ev}, event.Hint{}); err != nil {
				t.Logf("commit %v: %v", ev, err)
				return false
			}
			if s.CheckInvariants() != nil {
				return false
			}
		}
		final, finalCursors := s.Text(), s.Cursors.Snapshot()

		for s.Log.CanUndo() {
			if s.Undo() != nil {
				return false
			}
		}
		if s.Text() != initial || !s.Cursors.Snapshot().Equal(initialCursors) {
			return false
		}
		for s.Log.CanRedo() {
			if s.Redo() != nil {
				return false
			}
		}
		return s.Text() == final && s.Cursors.Snapshot().Equal(finalCursors)
	}
	if err := quick.Check(check, &quick.Config{MaxCount: 200}); err != nil {
		t.Error(err)
	}
}
