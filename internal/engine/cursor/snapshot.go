package cursor

import "slices"

// Snapshot is an immutable copy of a Set. Event groups record snapshots so
// undo can restore cursor placement exactly.
type Snapshot struct {
	Cursors []Cursor `json:"cursors"`
	Primary int      `json:"primary"`
	NextID  ID       `json:"next_id"`
}

// Snapshot captures the current state of the set.
func (s *Set) Snapshot() Snapshot {
	return Snapshot{
		Cursors: slices.Clone(s.cursors),
		Primary: s.primary,
		NextID:  s.nextID,
	}
}

// Restore replaces the set's cursors with a snapshot. The merge policy of
// the set is unchanged. Empty snapshots are ignored.
func (s *Set) Restore(snap Snapshot) {
	if len(snap.Cursors) == 0 {
		return
	}
	s.cursors = slices.Clone(snap.Cursors)
	s.primary = min(max(snap.Primary, 0), len(s.cursors)-1)
	s.nextID = max(snap.NextID, s.nextID)
}

// Equal reports whether two snapshots hold the same cursors and primary.
func (s Snapshot) Equal(other Snapshot) bool {
	return s.Primary == other.Primary && slices.Equal(s.Cursors, other.Cursors)
}

// IsZero reports whether the snapshot holds no cursors.
func (s Snapshot) IsZero() bool {
	return len(s.Cursors) == 0
}

// Positions returns the cursor positions in order.
func (s Snapshot) Positions() []int {
	out := make([]int, len(s.Cursors))
	for i, c := range s.Cursors {
		out[i] = c.Position
	}
	return out
}

// PrimaryCursor returns the primary cursor of the snapshot.
func (s Snapshot) PrimaryCursor() Cursor {
	if len(s.Cursors) == 0 {
		return New(0, 0)
	}
	return s.Cursors[min(max(s.Primary, 0), len(s.Cursors)-1)]
}
