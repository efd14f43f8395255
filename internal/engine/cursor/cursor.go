package cursor

import "fmt"

// ID identifies a cursor for the lifetime of its set.
type ID int

const (
	// NoAnchor marks a cursor without a selection.
	NoAnchor = -1
	// NoColumn marks a cursor without a remembered vertical column.
	NoColumn = -1
)

// Cursor is an insertion point with an optional selection.
// Position is where typing occurs; Anchor is where the selection started.
type Cursor struct {
	ID              ID  `json:"id"`
	Position        int `json:"position"`
	Anchor          int `json:"anchor"`
	PreferredColumn int `json:"preferred_column"`
}

// New returns a bare cursor at pos.
func New(id ID, pos int) Cursor {
	return Cursor{ID: id, Position: pos, Anchor: NoAnchor, PreferredColumn: NoColumn}
}

// HasSelection reports whether the cursor selects a non-empty range.
func (c Cursor) HasSelection() bool {
	return c.Anchor != NoAnchor && c.Anchor != c.Position
}

// Start returns the lower bound of the selection, or the position.
func (c Cursor) Start() int {
	if c.HasSelection() && c.Anchor < c.Position {
		return c.Anchor
	}
	return c.Position
}

// End returns the upper bound of the selection, or the position.
func (c Cursor) End() int {
	if c.HasSelection() && c.Anchor > c.Position {
		return c.Anchor
	}
	return c.Position
}

// Selection returns the selected range. It is empty for a bare cursor.
func (c Cursor) Selection() (start, end int) {
	return c.Start(), c.End()
}

// IsForward reports whether the position is at or after the anchor.
func (c Cursor) IsForward() bool {
	return !c.HasSelection() || c.Position > c.Anchor
}

// MoveTo returns the cursor at pos without a selection.
func (c Cursor) MoveTo(pos int) Cursor {
	c.Position = pos
	c.Anchor = NoAnchor
	return c
}

// Extend returns the cursor at pos, keeping the current anchor or anchoring
// the selection at the old position when there was none.
func (c Cursor) Extend(pos int) Cursor {
	if c.Anchor == NoAnchor {
		c.Anchor = c.Position
	}
	c.Position = pos
	if c.Anchor == c.Position {
		c.Anchor = NoAnchor
	}
	return c
}

// ClearSelection drops the anchor.
func (c Cursor) ClearSelection() Cursor {
	c.Anchor = NoAnchor
	return c
}

// Clamp limits the position and anchor to [0, n].
func (c Cursor) Clamp(n int) Cursor {
	c.Position = min(max(c.Position, 0), n)
	if c.Anchor != NoAnchor {
		c.Anchor = min(max(c.Anchor, 0), n)
		if c.Anchor == c.Position {
			c.Anchor = NoAnchor
		}
	}
	return c
}

func (c Cursor) String() string {
	if !c.HasSelection() {
		return fmt.Sprintf("#%d@%d", c.ID, c.Position)
	}
	if c.IsForward() {
		return fmt.Sprintf("#%d[%d->%d]", c.ID, c.Anchor, c.Position)
	}
	return fmt.Sprintf("#%d[%d<-%d]", c.ID, c.Position, c.Anchor)
}

// overlaps reports whether two cursors in start order must be merged.
// Overlapping ranges always merge, as do coincident bare cursors and a bare
// cursor sitting on the edge of a selection. Touching selections merge only
// when touching is set.
func overlaps(a, b Cursor, touching bool) bool {
	if b.Start() < a.End() {
		return true
	}
	if b.Start() > a.End() {
		return false
	}
	if !a.HasSelection() || !b.HasSelection() {
		return true
	}
	return touching
}

// union merges other into c. c keeps its ID, its direction and its
// preferred column.
func (c Cursor) union(other Cursor) Cursor {
	start := min(c.Start(), other.Start())
	end := max(c.End(), other.End())
	if start == end {
		c.Position = start
		c.Anchor = NoAnchor
		return c
	}
	if !c.HasSelection() && other.HasSelection() && !other.IsForward() {
		c.Position, c.Anchor = start, end
		return c
	}
	if c.IsForward() {
		c.Anchor, c.Position = start, end
	} else {
		c.Position, c.Anchor = start, end
	}
	return c
}
