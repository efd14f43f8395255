package event

import (
	"errors"
	"time"
	"unicode"

	"github.com/dshills/quill/internal/engine/cursor"
)

// ErrEmptyHistory is returned by Undo and Redo when there is nothing to do.
var ErrEmptyHistory = errors.New("empty history")

const (
	// DefaultLimit is the default number of groups kept in the past stack.
	DefaultLimit = 1000
	// MaxCoalesce is the largest number of characters merged into one
	// typing group.
	MaxCoalesce = 64
)

// Group is the unit of undo: all events caused by one user action.
type Group struct {
	ID     uint64
	Events []Event
	Before cursor.Snapshot
	After  cursor.Snapshot
	Time   time.Time
}

// HintKind tells the log how a batch may coalesce with the previous group.
type HintKind uint8

const (
	HintNone HintKind = iota
	HintTyping
	HintBackspace
)

// Hint describes the action that produced a batch.
type Hint struct {
	Kind HintKind
	// Line is the line of the primary cursor before the action.
	Line int
}

// Log holds the past and future stacks of groups.
// Log is not safe for concurrent use.
type Log struct {
	past   []*Group
	future []*Group
	nextID uint64
	limit  int
	now    func() time.Time

	// coalescing state for the newest group in past
	open  bool
	hint  Hint
	chars int
	last  rune
}

// LogOption configures a Log.
type LogOption func(*Log)

// WithLimit bounds the number of groups in the past stack. The oldest
// groups are dropped first. Values below one select DefaultLimit.
func WithLimit(n int) LogOption {
	return func(l *Log) {
		if n > 0 {
			l.limit = n
		}
	}
}

// WithClock sets the time source used to stamp groups.
func WithClock(now func() time.Time) LogOption {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLog creates an empty log.
func NewLog(opts ...LogOption) *Log {
	l := &Log{limit: DefaultLimit, now: time.Now, nextID: 1}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends a batch as a new group and clears the future stack.
// Batches without text edits are not recorded; they end coalescing and
// Record returns nil. When hint allows it and the batch continues the
// newest group, it is merged into that group, which is returned.
func (l *Log) Record(events []Event, before, after cursor.Snapshot, hint Hint) *Group {
	if !HasEdits(events) {
		l.BreakCoalescing()
		return nil
	}
	l.future = nil

	if r, ok := l.coalesces(events, before, after, hint); ok {
		g := l.past[len(l.past)-1]
		g.Events = append(g.Events, events...)
		g.After = after
		g.Time = l.now()
		l.chars++
		l.last = r
		return g
	}

	g := &Group{
		ID:     l.nextID,
		Events: append([]Event(nil), events...),
		Before: before,
		After:  after,
		Time:   l.now(),
	}
	l.nextID++
	l.past = append(l.past, g)
	if len(l.past) > l.limit {
		excess := len(l.past) - l.limit
		clear(l.past[:excess])
		l.past = l.past[excess:]
	}

	l.open = false
	if r, ok := coalescable(events, before, after, hint); ok {
		l.open = true
		l.hint = hint
		l.chars = 1
		l.last = r
	}
	return g
}

// coalescable reports whether a batch may start or extend a typing group,
// returning its single code point.
func coalescable(events []Event, before, after cursor.Snapshot, hint Hint) (rune, bool) {
	if hint.Kind == HintNone || len(events) != 1 {
		return 0, false
	}
	if len(before.Cursors) != 1 || len(after.Cursors) != 1 {
		return 0, false
	}
	if before.Cursors[0].HasSelection() {
		return 0, false
	}
	switch e := events[0].(type) {
	case Insert:
		if hint.Kind == HintTyping && e.Text != "\n" {
			return singleRune(e.Text)
		}
	case Delete:
		if hint.Kind == HintBackspace {
			return singleRune(e.Removed)
		}
	}
	return 0, false
}

func (l *Log) coalesces(events []Event, before, after cursor.Snapshot, hint Hint) (rune, bool) {
	if !l.open || len(l.past) == 0 || hint != l.hint || l.chars >= MaxCoalesce {
		return 0, false
	}
	r, ok := coalescable(events, before, after, hint)
	if !ok {
		return 0, false
	}
	g := l.past[len(l.past)-1]
	if !before.Equal(g.After) {
		return 0, false
	}
	switch e := events[0].(type) {
	case Insert:
		prev, ok := g.Events[len(g.Events)-1].(Insert)
		if !ok || prev.End() != e.At {
			return 0, false
		}
		// A word starts after whitespace.
		if unicode.IsSpace(l.last) && !unicode.IsSpace(r) {
			return 0, false
		}
	case Delete:
		prev, ok := g.Events[len(g.Events)-1].(Delete)
		if !ok || e.End != prev.Start {
			return 0, false
		}
	}
	return r, true
}

// BreakCoalescing ensures the next recorded batch starts a new group.
func (l *Log) BreakCoalescing() {
	l.open = false
}

// Undo moves the newest group from past to future and returns it. The
// caller applies InvertAll(g.Events) and restores g.Before.
func (l *Log) Undo() (*Group, error) {
	if len(l.past) == 0 {
		return nil, ErrEmptyHistory
	}
	g := l.past[len(l.past)-1]
	l.past = l.past[:len(l.past)-1]
	l.future = append(l.future, g)
	l.open = false
	return g, nil
}

// Redo moves the newest group from future back to past and returns it. The
// caller re-applies g.Events and restores g.After.
func (l *Log) Redo() (*Group, error) {
	if len(l.future) == 0 {
		return nil, ErrEmptyHistory
	}
	g := l.future[len(l.future)-1]
	l.future = l.future[:len(l.future)-1]
	l.past = append(l.past, g)
	l.open = false
	return g, nil
}

// CanUndo reports whether Undo has a group to return.
func (l *Log) CanUndo() bool { return len(l.past) > 0 }

// CanRedo reports whether Redo has a group to return.
func (l *Log) CanRedo() bool { return len(l.future) > 0 }

// Past returns the past groups, oldest first.
func (l *Log) Past() []*Group { return l.past }

// Future returns the future groups, the next redo last.
func (l *Log) Future() []*Group { return l.future }

// Clear drops all history.
func (l *Log) Clear() {
	l.past = nil
	l.future = nil
	l.open = false
}
