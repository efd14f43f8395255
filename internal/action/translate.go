package action

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dshills/quill/internal/engine"
	"github.com/dshills/quill/internal/engine/chunktree"
	"github.com/dshills/quill/internal/engine/cursor"
	"github.com/dshills/quill/internal/engine/event"
	"github.com/dshills/quill/internal/engine/motion"
)

// DefaultPageLines is the page size used when the context does not set one.
const DefaultPageLines = 20

// Context carries the settings and editor state a translation depends on.
type Context struct {
	TabWidth   int
	PageLines  int
	AutoIndent bool
	AutoClose  bool
	// Clipboard is the text Paste inserts.
	Clipboard string
}

// DefaultContext returns the context used when no configuration applies.
func DefaultContext() Context {
	return Context{
		TabWidth:   4,
		PageLines:  DefaultPageLines,
		AutoIndent: true,
		AutoClose:  true,
	}
}

// closers maps opening characters to the character auto-close inserts.
var closers = map[rune]rune{
	'"':  '"',
	'\'': '\'',
	'(':  ')',
	'[':  ']',
	'{':  '}',
}

// Translate returns the events implementing a on s. The state is not
// changed. Actions handled outside the engine (clipboard reads, history,
// files, application control) and actions that cannot apply yield nil.
func Translate(a Action, s *engine.State, ctx Context) []event.Event {
	buf := s.Snapshot()
	cursors := s.Cursors.All()

	switch a.Kind {
	case InsertChar:
		if a.Char == '\n' {
			return insertNewline(s, buf, cursors, ctx)
		}
		if a.Char == utf8.RuneError || a.Char < 0 {
			return nil
		}
		if closer, ok := closers[a.Char]; ok && ctx.AutoClose && s.Language != engine.PlainText {
			return insertPair(buf, cursors, a.Char, closer)
		}
		return replaceEach(buf, cursors, constant(string(a.Char)))

	case InsertText:
		if a.Text == "" || !utf8.ValidString(a.Text) {
			return nil
		}
		return replaceEach(buf, cursors, constant(a.Text))

	case InsertNewline:
		return insertNewline(s, buf, cursors, ctx)

	case InsertTab:
		return replaceEach(buf, cursors, constant("\t"))

	case DeleteBackward:
		return deleteEach(buf, cursors, func(pos int) int { return motion.Left(buf, pos) }, true)
	case DeleteForward:
		return deleteEach(buf, cursors, func(pos int) int { return motion.Right(buf, pos) }, false)
	case DeleteWordBackward:
		return deleteEach(buf, cursors, func(pos int) int { return motion.WordLeft(buf, pos) }, true)
	case DeleteWordForward:
		return deleteEach(buf, cursors, func(pos int) int { return motion.WordRight(buf, pos) }, false)

	case Cut:
		return cutSelections(buf, cursors)

	case Paste:
		return paste(buf, cursors, ctx.Clipboard)

	case MoveLeft, MoveRight, MoveWordLeft, MoveWordRight,
		MoveLineStart, MoveLineEnd, MoveDocumentStart, MoveDocumentEnd,
		SelectLeft, SelectRight, SelectWordLeft, SelectWordRight,
		SelectLineStart, SelectLineEnd:
		return replaceCursors(s, func(set *cursor.Set) {
			set.Map(func(c cursor.Cursor) cursor.Cursor {
				return horizontal(a.Kind, buf, c)
			})
		})

	case MoveUp, MoveDown, MovePageUp, MovePageDown, SelectUp, SelectDown:
		delta, extend := verticalDelta(a.Kind, ctx)
		return replaceCursors(s, func(set *cursor.Set) {
			set.Map(func(c cursor.Cursor) cursor.Cursor {
				pos, pref := motion.Vertical(buf, c.Position, c.PreferredColumn, delta)
				if pos == c.Position && (extend || !c.HasSelection()) {
					return c
				}
				if extend {
					c = c.Extend(pos)
				} else {
					c = c.MoveTo(pos)
				}
				c.PreferredColumn = pref
				return c
			})
		})

	case SelectAll:
		if buf.Len() == 0 {
			return nil
		}
		return replaceCursors(s, func(set *cursor.Set) {
			set.RemoveSecondary()
			p := set.Primary()
			p.Anchor, p.Position, p.PreferredColumn = 0, buf.Len(), cursor.NoColumn
			// The primary always exists in its own set.
			_ = set.Update(p)
		})

	case AddCursorNextMatch:
		return replaceCursors(s, func(set *cursor.Set) { set.AddAtNextMatch(buf) })
	case AddCursorAbove:
		return replaceCursors(s, func(set *cursor.Set) { set.AddAbove(buf) })
	case AddCursorBelow:
		return replaceCursors(s, func(set *cursor.Set) { set.AddBelow(buf) })

	case RemoveSecondaryCursors:
		return replaceCursors(s, func(set *cursor.Set) {
			if set.IsMulti() {
				set.RemoveSecondary()
				return
			}
			set.Map(cursor.Cursor.ClearSelection)
		})

	case InsertAt:
		if a.Text == "" || !utf8.ValidString(a.Text) || !validOffset(buf, a.Start) {
			return nil
		}
		return []event.Event{event.Insert{At: a.Start, Text: a.Text, Author: cursor.NoAuthor}}

	case DeleteRange:
		if a.Start >= a.End || !validOffset(buf, a.Start) || !validOffset(buf, a.End) {
			return nil
		}
		return []event.Event{event.Delete{
			Start:   a.Start,
			End:     a.End,
			Removed: buf.Text(a.Start, a.End),
			Author:  cursor.NoAuthor,
		}}

	case SetCursors:
		return setCursors(s, buf, a.Cursors)
	}
	return nil
}

// HintFor tells the event log how the batch for a may coalesce.
func HintFor(a Action, s *engine.State) event.Hint {
	var kind event.HintKind
	switch a.Kind {
	case InsertChar:
		if a.Char == '\n' {
			return event.Hint{}
		}
		kind = event.HintTyping
	case DeleteBackward:
		kind = event.HintBackspace
	default:
		return event.Hint{}
	}
	line, _, err := s.Snapshot().PositionToLineCol(s.Cursors.Primary().Position)
	if err != nil {
		return event.Hint{}
	}
	return event.Hint{Kind: kind, Line: line}
}

// edit replaces [start, end) with text on behalf of one cursor.
type edit struct {
	start, end int
	text       string
	author     cursor.ID
	// forward marks a deletion made by a bare cursor at start.
	forward bool
}

func constant(text string) func(cursor.Cursor) string {
	return func(cursor.Cursor) string { return text }
}

// replaceEach replaces every cursor's selection, or inserts at every bare
// cursor, with the text returned for it.
func replaceEach(buf chunktree.Snapshot, cursors []cursor.Cursor, text func(cursor.Cursor) string) []event.Event {
	edits := make([]edit, 0, len(cursors))
	for _, c := range cursors {
		start, end := c.Selection()
		edits = append(edits, edit{start: start, end: end, text: text(c), author: c.ID})
	}
	return emit(buf, edits)
}

// emit turns edits sorted by start into events in descending position
// order, so each event's offsets stay valid while earlier ones apply.
// Ranges that overlap a preceding edit are clipped to its end.
func emit(buf chunktree.Snapshot, edits []edit) []event.Event {
	prevEnd := 0
	kept := edits[:0:0]
	for _, e := range edits {
		e.start = max(e.start, prevEnd)
		if e.end < e.start {
			e.end = e.start
		}
		if e.start == e.end && e.text == "" {
			continue
		}
		kept = append(kept, e)
		prevEnd = e.end
	}

	var events []event.Event
	for _, e := range slices.Backward(kept) {
		if e.end > e.start {
			events = append(events, event.Delete{
				Start:   e.start,
				End:     e.end,
				Removed: buf.Text(e.start, e.end),
				Author:  e.author,
				Forward: e.forward,
			})
		}
		if e.text != "" {
			events = append(events, event.Insert{At: e.start, Text: e.text, Author: e.author})
		}
	}
	return events
}

// insertNewline breaks the line at every cursor, copying the leading
// whitespace of the line when auto-indent is on.
func insertNewline(s *engine.State, buf chunktree.Snapshot, cursors []cursor.Cursor, ctx Context) []event.Event {
	nl := s.Newline()
	return replaceEach(buf, cursors, func(c cursor.Cursor) string {
		if !ctx.AutoIndent {
			return nl
		}
		return nl + indentBefore(buf, c.Start())
	})
}

// indentBefore returns the leading whitespace of the line holding pos,
// limited to the text before pos.
func indentBefore(buf chunktree.Snapshot, pos int) string {
	start := motion.LineStart(buf, pos)
	prefix := buf.Text(start, pos)
	n := len(prefix) - len(strings.TrimLeft(prefix, " \t"))
	return prefix[:n]
}

// insertPair inserts open and close at every cursor and leaves each cursor
// between them. The closing half has no author so the cursor stays put.
func insertPair(buf chunktree.Snapshot, cursors []cursor.Cursor, open, close rune) []event.Event {
	var events []event.Event
	for _, c := range slices.Backward(cursors) {
		start, end := c.Selection()
		if end > start {
			events = append(events, event.Delete{
				Start:   start,
				End:     end,
				Removed: buf.Text(start, end),
				Author:  c.ID,
			})
		}
		o := string(open)
		events = append(events,
			event.Insert{At: start, Text: o, Author: c.ID},
			event.Insert{At: start + len(o), Text: string(close), Author: cursor.NoAuthor},
		)
	}
	return events
}

// deleteEach deletes every selection, and for bare cursors the range
// between the cursor and target(position).
func deleteEach(buf chunktree.Snapshot, cursors []cursor.Cursor, target func(int) int, backward bool) []event.Event {
	edits := make([]edit, 0, len(cursors))
	for _, c := range cursors {
		start, end := c.Selection()
		forward := false
		if start == end {
			if backward {
				start = target(c.Position)
			} else {
				end = target(c.Position)
				forward = true
			}
		}
		if start < end {
			edits = append(edits, edit{start: start, end: end, author: c.ID, forward: forward})
		}
	}
	return emit(buf, edits)
}

func cutSelections(buf chunktree.Snapshot, cursors []cursor.Cursor) []event.Event {
	edits := make([]edit, 0, len(cursors))
	for _, c := range cursors {
		if c.HasSelection() {
			start, end := c.Selection()
			edits = append(edits, edit{start: start, end: end, author: c.ID})
		}
	}
	return emit(buf, edits)
}

// paste inserts text at every cursor. When there are several cursors and
// the text has exactly one line per cursor, each cursor gets its own line.
func paste(buf chunktree.Snapshot, cursors []cursor.Cursor, text string) []event.Event {
	if text == "" || !utf8.ValidString(text) {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(cursors) > 1 && len(lines) == len(cursors) {
		edits := make([]edit, 0, len(cursors))
		for i, c := range cursors {
			start, end := c.Selection()
			edits = append(edits, edit{start: start, end: end, text: lines[i], author: c.ID})
		}
		return emit(buf, edits)
	}
	return replaceEach(buf, cursors, constant(text))
}

// horizontal applies a motion or selection kind that moves along a line.
func horizontal(k Kind, buf chunktree.Snapshot, c cursor.Cursor) cursor.Cursor {
	c.PreferredColumn = cursor.NoColumn
	switch k {
	case MoveLeft:
		if c.HasSelection() {
			return c.MoveTo(c.Start())
		}
		return c.MoveTo(motion.Left(buf, c.Position))
	case MoveRight:
		if c.HasSelection() {
			return c.MoveTo(c.End())
		}
		return c.MoveTo(motion.Right(buf, c.Position))
	case MoveWordLeft:
		return c.MoveTo(motion.WordLeft(buf, c.Position))
	case MoveWordRight:
		return c.MoveTo(motion.WordRight(buf, c.Position))
	case MoveLineStart:
		return c.MoveTo(motion.LineStart(buf, c.Position))
	case MoveLineEnd:
		return c.MoveTo(motion.LineEnd(buf, c.Position))
	case MoveDocumentStart:
		return c.MoveTo(motion.DocumentStart(buf))
	case MoveDocumentEnd:
		return c.MoveTo(motion.DocumentEnd(buf))
	case SelectLeft:
		return c.Extend(motion.Left(buf, c.Position))
	case SelectRight:
		return c.Extend(motion.Right(buf, c.Position))
	case SelectWordLeft:
		return c.Extend(motion.WordLeft(buf, c.Position))
	case SelectWordRight:
		return c.Extend(motion.WordRight(buf, c.Position))
	case SelectLineStart:
		return c.Extend(motion.LineStart(buf, c.Position))
	case SelectLineEnd:
		return c.Extend(motion.LineEnd(buf, c.Position))
	}
	return c
}

func verticalDelta(k Kind, ctx Context) (delta int, extend bool) {
	page := ctx.PageLines
	if page <= 0 {
		page = DefaultPageLines
	}
	switch k {
	case MoveUp:
		return -1, false
	case MoveDown:
		return 1, false
	case MovePageUp:
		return -page, false
	case MovePageDown:
		return page, false
	case SelectUp:
		return -1, true
	case SelectDown:
		return 1, true
	}
	return 0, false
}

// replaceCursors runs mutate on a copy of the cursor set and returns one
// CursorSetReplace, or nil when the set did not change.
func replaceCursors(s *engine.State, mutate func(*cursor.Set)) []event.Event {
	before := s.Cursors.Snapshot()
	next := s.Cursors.Clone()
	mutate(next)
	after := next.Snapshot()
	if after.Equal(before) {
		return nil
	}
	return []event.Event{event.CursorSetReplace{Before: before, After: after}}
}

// setCursors replaces the cursor set with the given cursors, the first
// becoming primary. Any cursor outside the buffer, off a code point boundary
// or inside a "\r\n" pair rejects the whole request.
func setCursors(s *engine.State, buf chunktree.Snapshot, cs []cursor.Cursor) []event.Event {
	if len(cs) == 0 {
		return nil
	}
	for _, c := range cs {
		if !validOffset(buf, c.Position) {
			return nil
		}
		if c.Anchor != cursor.NoAnchor && !validOffset(buf, c.Anchor) {
			return nil
		}
	}
	return replaceCursors(s, func(set *cursor.Set) {
		set.RemoveSecondary()
		p := set.Primary()
		p.Position, p.Anchor, p.PreferredColumn = cs[0].Position, cs[0].Anchor, cursor.NoColumn
		if p.Anchor == p.Position {
			p.Anchor = cursor.NoAnchor
		}
		_ = set.Update(p)
		for _, c := range cs[1:] {
			anchor := c.Anchor
			if anchor == cursor.NoAnchor {
				anchor = c.Position
			}
			set.Add(c.Position, anchor)
		}
	})
}

func validOffset(buf chunktree.Snapshot, pos int) bool {
	return buf.IsBoundary(pos) && !motion.SplitsCRLF(buf, pos)
}
