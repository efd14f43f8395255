package cursor

import (
	"github.com/dshills/quill/internal/engine/chunktree"
	"github.com/dshills/quill/internal/engine/motion"
)

// AddAtNextMatch adds a cursor selecting the next occurrence of the primary
// selection and makes it primary. The search runs forward from the end of
// the primary selection and wraps at the end of the buffer; occurrences
// that coincide with or overlap an existing selection are skipped.
//
// When the primary has no selection, the word under it is selected instead
// and no cursor is added. It returns false when nothing changed.
func (s *Set) AddAtNextMatch(buf chunktree.Snapshot) bool {
	p := s.Primary()
	if !p.HasSelection() {
		start, end, ok := motion.WordAt(buf, p.Position)
		if !ok || start == end {
			return false
		}
		p.Anchor, p.Position = start, end
		p.PreferredColumn = NoColumn
		s.cursors[s.primary] = p
		s.Normalize()
		return true
	}

	start, end := p.Selection()
	needle := buf.Text(start, end)
	n := len(needle)

	from, wrapped := end, false
	for {
		pos, ok := buf.SearchForward(from, needle)
		if wrapped && (!ok || pos >= end) {
			return false
		}
		if !ok {
			wrapped, from = true, 0
			continue
		}
		if !s.occupied(pos, pos+n) {
			c := New(0, pos+n)
			c.Anchor = pos
			s.AddPrimary(c)
			return true
		}
		from = pos + 1
	}
}

// occupied reports whether [start, end) meets any existing selection or
// cursor.
func (s *Set) occupied(start, end int) bool {
	for _, c := range s.cursors {
		cs, ce := c.Selection()
		if cs == ce {
			if cs >= start && cs <= end {
				return true
			}
			continue
		}
		if cs < end && start < ce {
			return true
		}
	}
	return false
}

// AddAbove adds a bare cursor on the line above the primary and makes it
// primary. It returns false on the first line.
func (s *Set) AddAbove(buf chunktree.Snapshot) bool {
	return s.addVertical(buf, -1)
}

// AddBelow adds a bare cursor on the line below the primary and makes it
// primary. It returns false on the last line.
func (s *Set) AddBelow(buf chunktree.Snapshot) bool {
	return s.addVertical(buf, 1)
}

func (s *Set) addVertical(buf chunktree.Snapshot, delta int) bool {
	p := s.Primary()
	line, col, err := buf.PositionToLineCol(p.Position)
	if err != nil {
		return false
	}
	target := line + delta
	if target < 0 || target >= buf.LineCount() {
		return false
	}
	preferred := p.PreferredColumn
	if preferred == NoColumn {
		preferred = col
	}
	c := New(0, buf.ClampLineCol(target, preferred))
	c.PreferredColumn = preferred
	s.AddPrimary(c)
	return true
}
