package cursor

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// ErrCursorNotFound is returned when a cursor ID is not in the set.
var ErrCursorNotFound = errors.New("cursor not found")

// Set is an ordered collection of cursors with a designated primary.
// A Set always holds at least one cursor.
type Set struct {
	cursors       []Cursor
	primary       int
	nextID        ID
	mergeTouching bool
}

// Option configures a Set.
type Option func(*Set)

// WithMergeTouching controls whether selections that share an edge fuse
// during normalization. The default is true.
func WithMergeTouching(merge bool) Option {
	return func(s *Set) {
		s.mergeTouching = merge
	}
}

// NewSet creates a set with one bare cursor at pos.
func NewSet(pos int, opts ...Option) *Set {
	s := &Set{mergeTouching: true}
	for _, opt := range opts {
		opt(s)
	}
	s.cursors = []Cursor{New(s.allocID(), pos)}
	return s
}

func (s *Set) allocID() ID {
	id := s.nextID
	s.nextID++
	return id
}

// MergeTouching reports whether touching selections fuse.
func (s *Set) MergeTouching() bool {
	return s.mergeTouching
}

// Primary returns the primary cursor.
func (s *Set) Primary() Cursor {
	return s.cursors[s.primary]
}

// PrimaryIndex returns the index of the primary cursor in sorted order.
func (s *Set) PrimaryIndex() int {
	return s.primary
}

// All returns a copy of the cursors in sorted order.
func (s *Set) All() []Cursor {
	return slices.Clone(s.cursors)
}

// Count returns the number of cursors.
func (s *Set) Count() int {
	return len(s.cursors)
}

// IsMulti reports whether more than one cursor exists.
func (s *Set) IsMulti() bool {
	return len(s.cursors) > 1
}

// Get returns the cursor with the given ID.
func (s *Set) Get(id ID) (Cursor, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.cursors[i], true
	}
	return Cursor{}, false
}

func (s *Set) indexOf(id ID) int {
	for i, c := range s.cursors {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// SetPrimary makes the cursor with the given ID primary.
func (s *Set) SetPrimary(id ID) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("set primary %d: %w", id, ErrCursorNotFound)
	}
	s.primary = i
	return nil
}

// RemoveSecondary keeps only the primary cursor.
func (s *Set) RemoveSecondary() {
	s.cursors = []Cursor{s.cursors[s.primary]}
	s.primary = 0
}

// Add inserts a cursor at pos with the given anchor (NoAnchor for none),
// normalizes, and returns the new cursor's ID. The ID may already have been
// merged into a neighbour when the new cursor overlapped it.
func (s *Set) Add(pos, anchor int) ID {
	c := New(s.allocID(), pos)
	if anchor != pos {
		c.Anchor = anchor
	}
	s.cursors = append(s.cursors, c)
	s.Normalize()
	return c.ID
}

// AddPrimary is like Add but makes the new cursor primary. When the new
// cursor merges into others the merged cursor becomes primary.
func (s *Set) AddPrimary(c Cursor) ID {
	c.ID = s.allocID()
	if c.Anchor == c.Position {
		c.Anchor = NoAnchor
	}
	s.cursors = append(s.cursors, c)
	s.primary = len(s.cursors) - 1
	s.Normalize()
	return c.ID
}

// Update replaces the cursor with the same ID and normalizes.
func (s *Set) Update(c Cursor) error {
	i := s.indexOf(c.ID)
	if i < 0 {
		return fmt.Errorf("update cursor %d: %w", c.ID, ErrCursorNotFound)
	}
	s.cursors[i] = c
	s.Normalize()
	return nil
}

// Map replaces every cursor by fn(cursor) and normalizes. fn must not change
// IDs.
func (s *Set) Map(fn func(Cursor) Cursor) {
	for i, c := range s.cursors {
		id := c.ID
		c = fn(c)
		c.ID = id
		s.cursors[i] = c
	}
	s.Normalize()
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	c := *s
	c.cursors = slices.Clone(s.cursors)
	return &c
}

// Normalize sorts cursors by selection start, drops anchors equal to their
// position and merges overlapping cursors. The primary cursor keeps its
// identity; when it is merged the union takes its ID. Normalize is
// idempotent.
func (s *Set) Normalize() {
	primaryID := s.cursors[s.primary].ID
	for i, c := range s.cursors {
		if c.Anchor == c.Position {
			s.cursors[i].Anchor = NoAnchor
		}
	}

	sort.SliceStable(s.cursors, func(i, j int) bool {
		a, b := s.cursors[i], s.cursors[j]
		if a.Start() != b.Start() {
			return a.Start() < b.Start()
		}
		return a.End() < b.End()
	})

	merged := s.cursors[:1]
	for _, c := range s.cursors[1:] {
		last := &merged[len(merged)-1]
		if !overlaps(*last, c, s.mergeTouching) {
			merged = append(merged, c)
			continue
		}
		if c.ID == primaryID {
			*last = c.union(*last)
		} else {
			*last = last.union(c)
		}
	}
	s.cursors = merged

	s.primary = 0
	if i := s.indexOf(primaryID); i >= 0 {
		s.primary = i
	}
}

// CheckInvariants verifies that the set is non-empty, sorted,
// non-overlapping, that anchors differ from positions, that IDs are unique
// and that all offsets lie within [0, length]. A negative length skips the
// bounds check.
func (s *Set) CheckInvariants(length int) error {
	if len(s.cursors) == 0 {
		return fmt.Errorf("empty cursor set")
	}
	if s.primary < 0 || s.primary >= len(s.cursors) {
		return fmt.Errorf("primary index %d out of range [0, %d)", s.primary, len(s.cursors))
	}
	seen := make(map[ID]bool, len(s.cursors))
	for i, c := range s.cursors {
		if seen[c.ID] {
			return fmt.Errorf("duplicate cursor id %d", c.ID)
		}
		seen[c.ID] = true
		if c.ID >= s.nextID {
			return fmt.Errorf("cursor id %d not below next id %d", c.ID, s.nextID)
		}
		if c.Anchor == c.Position {
			return fmt.Errorf("cursor %v has anchor equal to position", c)
		}
		if c.Position < 0 || (length >= 0 && c.End() > length) || c.Start() < 0 {
			return fmt.Errorf("cursor %v outside [0, %d]", c, length)
		}
		if i > 0 {
			prev := s.cursors[i-1]
			if prev.Start() > c.Start() {
				return fmt.Errorf("cursors %v and %v out of order", prev, c)
			}
			if overlaps(prev, c, s.mergeTouching) {
				return fmt.Errorf("cursors %v and %v overlap", prev, c)
			}
		}
	}
	return nil
}

func (s *Set) String() string {
	return fmt.Sprintf("%v primary=%d", s.cursors, s.primary)
}
