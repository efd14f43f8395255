// Package event defines the semantic edit events of a document and the log
// that groups them for undo and redo.
//
// # Events
//
// Every event carries the data needed to build its inverse without reading
// the buffer:
//   - Insert: text placed at an offset
//   - Delete: a removed range together with the removed bytes
//   - CursorMove: one cursor moved between two offsets
//   - CursorSetReplace: the whole cursor set before and after a change
//
// # Groups
//
// One user action produces one Group. Undo inverts the events of the newest
// group in reverse order; redo re-applies them in order. Consecutive typing
// by a single cursor coalesces into one group.
package event

import (
	"fmt"
	"unicode/utf8"

	"github.com/dshills/quill/internal/engine/cursor"
)

// Kind identifies an event variant.
type Kind uint8

const (
	KindInsert Kind = iota + 1
	KindDelete
	KindCursorMove
	KindCursorSetReplace
)

func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindDelete:
		return "delete"
	case KindCursorMove:
		return "cursor-move"
	case KindCursorSetReplace:
		return "cursor-set-replace"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Event is a semantic change to a document.
type Event interface {
	Kind() Kind
	// Invert returns the event that undoes this one.
	Invert() Event
	isEvent()
}

// Insert places Text at byte offset At. Author is the cursor that typed it,
// or cursor.NoAuthor. The author ends up after the text unless Behind is
// set, which leaves it in front, as when a forward deletion is undone.
type Insert struct {
	At     int
	Text   string
	Author cursor.ID
	Behind bool
}

func (Insert) Kind() Kind { return KindInsert }
func (Insert) isEvent()   {}

// Invert returns the deletion of the inserted text.
func (e Insert) Invert() Event {
	return Delete{Start: e.At, End: e.At + len(e.Text), Removed: e.Text, Author: e.Author, Forward: e.Behind}
}

// End returns the offset just past the inserted text.
func (e Insert) End() int {
	return e.At + len(e.Text)
}

func (e Insert) String() string {
	return fmt.Sprintf("Insert(%d, %q)", e.At, e.Text)
}

// Delete removes [Start, End). Removed holds the bytes that were there.
// Forward marks a deletion toward the end of the buffer, made by an author
// sitting at Start.
type Delete struct {
	Start   int
	End     int
	Removed string
	Author  cursor.ID
	Forward bool
}

func (Delete) Kind() Kind { return KindDelete }
func (Delete) isEvent()   {}

// Invert returns the insertion of the removed text.
func (e Delete) Invert() Event {
	return Insert{At: e.Start, Text: e.Removed, Author: e.Author, Behind: e.Forward}
}

func (e Delete) String() string {
	return fmt.Sprintf("Delete(%d..%d, %q)", e.Start, e.End, e.Removed)
}

// CursorMove records one cursor moving. It is informational; groups restore
// cursor placement from their snapshots.
type CursorMove struct {
	ID   cursor.ID
	From int
	To   int
}

func (CursorMove) Kind() Kind { return KindCursorMove }
func (CursorMove) isEvent()   {}

// Invert swaps the endpoints of the move.
func (e CursorMove) Invert() Event {
	return CursorMove{ID: e.ID, From: e.To, To: e.From}
}

// CursorSetReplace swaps the whole cursor set.
type CursorSetReplace struct {
	Before cursor.Snapshot
	After  cursor.Snapshot
}

func (CursorSetReplace) Kind() Kind { return KindCursorSetReplace }
func (CursorSetReplace) isEvent()   {}

// Invert swaps Before and After.
func (e CursorSetReplace) Invert() Event {
	return CursorSetReplace{Before: e.After, After: e.Before}
}

// IsEdit reports whether e changes buffer text.
func IsEdit(e Event) bool {
	switch e.Kind() {
	case KindInsert, KindDelete:
		return true
	}
	return false
}

// HasEdits reports whether any event changes buffer text.
func HasEdits(events []Event) bool {
	for _, e := range events {
		if IsEdit(e) {
			return true
		}
	}
	return false
}

// Delta returns the change in buffer length caused by e.
func Delta(e Event) int {
	switch e := e.(type) {
	case Insert:
		return len(e.Text)
	case Delete:
		return -(e.End - e.Start)
	}
	return 0
}

// InvertAll returns the inverses of events in reverse order.
func InvertAll(events []Event) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		out[len(events)-1-i] = e.Invert()
	}
	return out
}

// singleRune returns the only code point of s.
func singleRune(s string) (rune, bool) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError {
		return 0, false
	}
	return r, true
}
