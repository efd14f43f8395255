// Package engine binds a text buffer, a cursor set and an event log into a
// document State.
//
// Every change to a State is an event. Apply executes one event against the
// buffer and the cursors; Commit executes a batch produced for one user
// action and records it as an undo group. Undo and Redo replay groups from
// the log and restore the cursor placement recorded with them.
//
// A State is owned by a single goroutine. Readers on other goroutines may
// use Snapshot, which never changes once taken.
package engine

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/quill/internal/engine/chunktree"
	"github.com/dshills/quill/internal/engine/cursor"
	"github.com/dshills/quill/internal/engine/event"
)

// State is an open document.
type State struct {
	// ID is the opaque handle plugins use to address the document.
	ID uuid.UUID

	Buffer  *chunktree.Tree
	Cursors *cursor.Set
	Log     *event.Log

	Language string
	Path     string

	// Dirty reports unsaved changes.
	Dirty bool
	// ModTime is the file modification time when opened or last saved.
	ModTime time.Time
	// LastChange is when the buffer last changed.
	LastChange time.Time

	// LineEnding is the style the file is written with.
	LineEnding LineEnding
	// Normalized reports that CRLF was converted to LF in the buffer.
	Normalized bool

	now      func() time.Time
	savedTop uint64
}

// NewState creates a document. It fails only when the initial text is not
// valid UTF-8.
func NewState(opts ...Option) (*State, error) {
	cfg := stateConfig{
		language:      PlainText,
		now:           time.Now,
		mergeTouching: true,
		historyLimit:  DefaultHistoryLimit,
		chunkTarget:   chunktree.DefaultChunkTarget,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	le := DetectLineEnding(cfg.text)
	if cfg.lineEnding != nil {
		le = *cfg.lineEnding
	}
	text := cfg.text
	normalized := false
	if cfg.normalize && le == LineEndingCRLF {
		text = NormalizeLF(text)
		normalized = true
	}

	buf, err := chunktree.FromString(text, chunktree.WithChunkTarget(cfg.chunkTarget))
	if err != nil {
		return nil, fmt.Errorf("new state: %w", err)
	}

	return &State{
		ID:         uuid.New(),
		Buffer:     buf,
		Cursors:    cursor.NewSet(0, cursor.WithMergeTouching(cfg.mergeTouching)),
		Log:        event.NewLog(event.WithLimit(cfg.historyLimit), event.WithClock(cfg.now)),
		Language:   cfg.language,
		Path:       cfg.path,
		ModTime:    cfg.modTime,
		LineEnding: le,
		Normalized: normalized,
		now:        cfg.now,
	}, nil
}

// Name returns the base name of the path, or ScratchName.
func (s *State) Name() string {
	if s.Path == "" {
		return ScratchName
	}
	return filepath.Base(s.Path)
}

// Newline returns the text inserted for a line break.
func (s *State) Newline() string {
	if s.Normalized {
		return "\n"
	}
	return s.LineEnding.Sequence()
}

// Snapshot returns an immutable view of the buffer.
func (s *State) Snapshot() chunktree.Snapshot {
	return s.Buffer.Snapshot()
}

// Text returns the whole buffer.
func (s *State) Text() string {
	return s.Buffer.String()
}

// SaveText returns the text to write to disk, restoring CRLF line endings
// when they were normalized on load.
func (s *State) SaveText() string {
	if s.Normalized {
		return Denormalize(s.Buffer.String(), s.LineEnding)
	}
	return s.Buffer.String()
}

// Now returns the current time of the state's clock.
func (s *State) Now() time.Time {
	return s.now()
}

// Apply executes one event against the buffer and the cursors. On error the
// state is unchanged.
func (s *State) Apply(ev event.Event) error {
	switch e := ev.(type) {
	case event.Insert:
		if err := s.Buffer.Insert(e.At, e.Text); err != nil {
			return fmt.Errorf("apply insert at %d: %w", e.At, err)
		}
		author := e.Author
		if e.Behind {
			author = cursor.NoAuthor
		}
		s.Cursors.ApplyEdit(cursor.InsertEdit(e.At, len(e.Text), author))

	case event.Delete:
		if e.Start < 0 || e.End > s.Buffer.Len() || e.Start > e.End {
			return fmt.Errorf("apply delete %d..%d: %w", e.Start, e.End, chunktree.ErrOutOfBounds)
		}
		if got := s.Buffer.Text(e.Start, e.End); got != e.Removed {
			return fmt.Errorf("apply delete %d..%d: have %q, want %q: %w",
				e.Start, e.End, got, e.Removed, ErrEventMismatch)
		}
		if _, err := s.Buffer.Delete(e.Start, e.End); err != nil {
			return fmt.Errorf("apply delete %d..%d: %w", e.Start, e.End, err)
		}
		s.Cursors.ApplyEdit(cursor.DeleteEdit(e.Start, e.End, e.Author))

	case event.CursorMove:
		c, ok := s.Cursors.Get(e.ID)
		if !ok {
			return fmt.Errorf("apply cursor move: %w", cursor.ErrCursorNotFound)
		}
		if err := s.Cursors.Update(c.MoveTo(min(max(e.To, 0), s.Buffer.Len()))); err != nil {
			return err
		}

	case event.CursorSetReplace:
		if e.After.IsZero() {
			return fmt.Errorf("apply cursor set replace: empty set: %w", ErrUnsupportedEvent)
		}
		s.Cursors.Restore(e.After)
		s.clampCursors()

	default:
		return fmt.Errorf("apply %T: %w", ev, ErrUnsupportedEvent)
	}
	return nil
}

// clampCursors keeps restored cursors inside the buffer.
func (s *State) clampCursors() {
	n := s.Buffer.Len()
	s.Cursors.Map(func(c cursor.Cursor) cursor.Cursor {
		return c.Clamp(n)
	})
}

// ApplyAll executes events in order. If one fails, the events already
// applied are reverted and the cursors restored, so the batch is atomic.
func (s *State) ApplyAll(events []event.Event) error {
	before := s.Cursors.Snapshot()
	for i, ev := range events {
		if err := s.Apply(ev); err != nil {
			for _, done := range event.InvertAll(events[:i]) {
				// Inverses of successfully applied events cannot fail.
				_ = s.Apply(done)
			}
			s.Cursors.Restore(before)
			return err
		}
	}
	return nil
}

// Commit applies the events of one user action and records them as an undo
// group. Batches that only move cursors are applied but not recorded. The
// returned group is nil for such batches.
func (s *State) Commit(events []event.Event, hint event.Hint) (*event.Group, error) {
	if len(events) == 0 {
		return nil, nil
	}
	before := s.Cursors.Snapshot()
	if err := s.ApplyAll(events); err != nil {
		return nil, err
	}
	g := s.Log.Record(events, before, s.Cursors.Snapshot(), hint)
	if event.HasEdits(events) {
		s.touch()
	}
	return g, nil
}

// Undo reverts the newest group and restores the cursors recorded before
// it. It returns event.ErrEmptyHistory when there is nothing to undo.
func (s *State) Undo() error {
	g, err := s.Log.Undo()
	if err != nil {
		return err
	}
	if err := s.ApplyAll(event.InvertAll(g.Events)); err != nil {
		s.Log.Redo()
		return fmt.Errorf("undo group %d: %w", g.ID, err)
	}
	s.Cursors.Restore(g.Before)
	s.touch()
	return nil
}

// Redo re-applies the newest undone group and restores the cursors recorded
// after it. It returns event.ErrEmptyHistory when there is nothing to redo.
func (s *State) Redo() error {
	g, err := s.Log.Redo()
	if err != nil {
		return err
	}
	if err := s.ApplyAll(g.Events); err != nil {
		s.Log.Undo()
		return fmt.Errorf("redo group %d: %w", g.ID, err)
	}
	s.Cursors.Restore(g.After)
	s.touch()
	return nil
}

// MarkSaved clears the dirty flag and remembers the history position, so
// undoing back to it leaves the document clean.
func (s *State) MarkSaved(modTime time.Time) {
	s.ModTime = modTime
	s.savedTop = s.top()
	s.Log.BreakCoalescing()
	s.Dirty = false
}

func (s *State) touch() {
	s.LastChange = s.now()
	s.Dirty = s.top() != s.savedTop
}

func (s *State) top() uint64 {
	past := s.Log.Past()
	if len(past) == 0 {
		return 0
	}
	return past[len(past)-1].ID
}

// CheckInvariants verifies the buffer and cursor invariants.
func (s *State) CheckInvariants() error {
	if err := s.Buffer.CheckInvariants(); err != nil {
		return fmt.Errorf("buffer: %w", err)
	}
	if err := s.Cursors.CheckInvariants(s.Buffer.Len()); err != nil {
		return fmt.Errorf("cursors: %w", err)
	}
	return nil
}
