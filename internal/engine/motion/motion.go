package motion

import "github.com/dshills/quill/internal/engine/chunktree"

// Left returns the code point boundary before pos. A "\r\n" pair is one
// step.
func Left(t chunktree.Snapshot, pos int) int {
	prev := t.PrevBoundary(pos)
	if SplitsCRLF(t, prev) {
		prev--
	}
	return prev
}

// Right returns the code point boundary after pos. A "\r\n" pair is one
// step.
func Right(t chunktree.Snapshot, pos int) int {
	next := t.NextBoundary(pos)
	if SplitsCRLF(t, next) {
		next++
	}
	return next
}

// SplitsCRLF reports whether pos sits between the "\r" and "\n" of a line
// break, where no cursor may rest.
func SplitsCRLF(t chunktree.Snapshot, pos int) bool {
	if pos <= 0 || pos >= t.Len() {
		return false
	}
	before, err := t.ByteAt(pos - 1)
	if err != nil || before != '\r' {
		return false
	}
	after, err := t.ByteAt(pos)
	return err == nil && after == '\n'
}

// WordRight returns the end of the run of same-category code points that
// starts at pos. A line break forms a run of its own, so word motion never
// crosses a line in one step.
//
// Over "foo.bar", repeated calls from 0 yield 3, 4 and 7.
func WordRight(t chunktree.Snapshot, pos int) int {
	n := t.Len()
	if pos >= n {
		return n
	}
	r, size := t.RuneAt(pos)
	if r == '\n' || SplitsCRLF(t, pos+size) {
		return Right(t, pos)
	}
	cat := Classify(r)
	pos += size
	for pos < n {
		r, size = t.RuneAt(pos)
		if size == 0 || r == '\n' || Classify(r) != cat || SplitsCRLF(t, pos+size) {
			break
		}
		pos += size
	}
	return pos
}

// WordLeft returns the start of the run of same-category code points that
// ends at pos.
func WordLeft(t chunktree.Snapshot, pos int) int {
	if pos <= 0 {
		return 0
	}
	r, size := t.RuneBefore(pos)
	if r == '\n' {
		return Left(t, pos)
	}
	cat := Classify(r)
	pos -= size
	for pos > 0 {
		r, size = t.RuneBefore(pos)
		if size == 0 || r == '\n' || Classify(r) != cat {
			break
		}
		pos -= size
	}
	return pos
}

// WordAt returns the word run under pos, or the one ending at pos when pos
// sits just after a word. ok is false when neither touches a word.
func WordAt(t chunktree.Snapshot, pos int) (start, end int, ok bool) {
	if r, size := t.RuneAt(pos); size > 0 && Classify(r) == Word {
		return WordLeft(t, pos+size), WordRight(t, pos), true
	}
	if r, size := t.RuneBefore(pos); size > 0 && Classify(r) == Word {
		return WordLeft(t, pos), pos, true
	}
	return pos, pos, false
}

// LineStart returns the first position of the line containing pos.
func LineStart(t chunktree.Snapshot, pos int) int {
	line, _, err := t.PositionToLineCol(pos)
	if err != nil {
		return pos
	}
	return t.LineStart(line)
}

// LineEnd returns the end of the content of the line containing pos.
func LineEnd(t chunktree.Snapshot, pos int) int {
	line, _, err := t.PositionToLineCol(pos)
	if err != nil {
		return pos
	}
	return t.LineEnd(line)
}

// DocumentStart returns the first position of the buffer.
func DocumentStart(chunktree.Snapshot) int {
	return 0
}

// DocumentEnd returns the last position of the buffer.
func DocumentEnd(t chunktree.Snapshot) int {
	return t.Len()
}

// Vertical moves pos by delta lines. The column used on the target line is
// preferred when it is not negative, otherwise the current column; it is
// clamped to shorter lines. The column to remember for the next vertical
// move is returned alongside the new position. Moving past the first or
// last line stops there; when pos is already on that line it is returned
// unchanged.
func Vertical(t chunktree.Snapshot, pos, preferred, delta int) (int, int) {
	line, col, err := t.PositionToLineCol(pos)
	if err != nil {
		return pos, preferred
	}
	if preferred < 0 {
		preferred = col
	}
	target := min(max(line+delta, 0), t.LineCount()-1)
	if target == line {
		return pos, preferred
	}
	return t.ClampLineCol(target, preferred), preferred
}

// Column returns the code point column of pos within its line.
func Column(t chunktree.Snapshot, pos int) int {
	_, col, err := t.PositionToLineCol(pos)
	if err != nil {
		return 0
	}
	return col
}
