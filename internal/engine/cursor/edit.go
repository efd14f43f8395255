package cursor

import "fmt"

// EditKind distinguishes insertions from deletions.
type EditKind uint8

const (
	EditInsert EditKind = iota
	EditDelete
)

// Edit describes a text change for the purpose of moving cursors.
// An insertion places Length bytes at Start; a deletion removes
// [Start, End). Author is the cursor that caused the edit, or NoAuthor.
type Edit struct {
	Kind   EditKind
	Start  int
	End    int
	Length int
	Author ID
}

// NoAuthor marks edits that no cursor authored, such as plugin edits.
const NoAuthor ID = -1

// InsertEdit describes n bytes inserted at pos by author.
func InsertEdit(pos, n int, author ID) Edit {
	return Edit{Kind: EditInsert, Start: pos, End: pos, Length: n, Author: author}
}

// DeleteEdit describes the removal of [start, end) by author.
func DeleteEdit(start, end int, author ID) Edit {
	return Edit{Kind: EditDelete, Start: start, End: end, Length: end - start, Author: author}
}

func (e Edit) String() string {
	if e.Kind == EditInsert {
		return fmt.Sprintf("insert(%d,+%d by #%d)", e.Start, e.Length, e.Author)
	}
	return fmt.Sprintf("delete(%d..%d by #%d)", e.Start, e.End, e.Author)
}

// TransformOffset maps an offset across an edit. sticky reports whether an
// offset equal to an insertion point moves to the end of the inserted text.
func TransformOffset(x int, e Edit, sticky bool) int {
	switch e.Kind {
	case EditInsert:
		if x > e.Start || (x == e.Start && sticky) {
			return x + e.Length
		}
		return x
	default:
		if x >= e.End {
			return x - (e.End - e.Start)
		}
		if x > e.Start {
			return e.Start
		}
		return x
	}
}

// ApplyEdit shifts every cursor across the edit and normalizes. Offsets
// strictly after an insertion point shift by its length; offsets at the
// insertion point shift only for the author cursor. Offsets inside a
// deleted range collapse to its start. The author forgets its preferred
// column.
func (s *Set) ApplyEdit(e Edit) {
	for i, c := range s.cursors {
		author := c.ID == e.Author
		c.Position = TransformOffset(c.Position, e, author)
		if c.Anchor != NoAnchor {
			c.Anchor = TransformOffset(c.Anchor, e, author)
			if c.Anchor == c.Position {
				c.Anchor = NoAnchor
			}
		}
		if author {
			c.PreferredColumn = NoColumn
		}
		s.cursors[i] = c
	}
	s.Normalize()
}
