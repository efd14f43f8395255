package chunktree

import "fmt"

// PositionToLineCol converts a byte offset into a 0-based line and a
// code point column.
func (s view) PositionToLineCol(pos int) (line, col int, err error) {
	if pos < 0 || pos > s.Len() {
		return 0, 0, fmt.Errorf("position %d (len %d): %w", pos, s.Len(), ErrOutOfBounds)
	}
	if !s.isBoundary(pos) {
		return 0, 0, fmt.Errorf("position %d: %w", pos, ErrInvalidBoundary)
	}
	if s.root == nil {
		return 0, 0, nil
	}
	line = s.root.linesBefore(pos)
	start := s.LineStart(line)
	col = s.root.charsBefore(pos) - s.root.charsBefore(start)
	return line, col, nil
}

// LineColToPosition converts a line and code point column into a byte
// offset. The column may equal the line length (end of line) but not
// exceed it.
func (s view) LineColToPosition(line, col int) (int, error) {
	if line < 0 || line >= s.LineCount() {
		return 0, fmt.Errorf("line %d (lines %d): %w", line, s.LineCount(), ErrOutOfBounds)
	}
	if col < 0 || col > s.LineLen(line) {
		return 0, fmt.Errorf("line %d column %d: %w", line, col, ErrOutOfBounds)
	}
	if s.root == nil {
		return 0, nil
	}
	start := s.LineStart(line)
	return s.root.offsetOfChar(s.root.charsBefore(start) + col), nil
}

// ClampLineCol is LineColToPosition with the line clamped to the buffer
// and the column clamped to the line end.
func (s view) ClampLineCol(line, col int) int {
	line = min(max(line, 0), s.LineCount()-1)
	col = min(max(col, 0), s.LineLen(line))
	pos, err := s.LineColToPosition(line, col)
	if err != nil {
		return s.LineEnd(line)
	}
	return pos
}

// LineStart returns the byte offset of the first byte of line. Lines past
// the end map to Len.
func (s view) LineStart(line int) int {
	if line <= 0 || s.root == nil {
		return 0
	}
	if line >= s.LineCount() {
		return s.Len()
	}
	return s.root.offsetAfterNewline(line)
}

// LineEnd returns the byte offset of the end of line's content, before
// its "\n" or "\r\n" terminator.
func (s view) LineEnd(line int) int {
	if line < 0 {
		return 0
	}
	if line >= s.LineCount()-1 {
		return s.Len()
	}
	end := s.LineStart(line+1) - 1
	if end > s.LineStart(line) {
		if b, err := s.ByteAt(end - 1); err == nil && b == '\r' {
			end--
		}
	}
	return end
}

// LineLen returns the number of code points in line's content.
func (s view) LineLen(line int) int {
	if s.root == nil || line < 0 || line >= s.LineCount() {
		return 0
	}
	return s.root.charsBefore(s.LineEnd(line)) - s.root.charsBefore(s.LineStart(line))
}

// LineText returns the content of line without its terminator.
func (s view) LineText(line int) string {
	if line < 0 || line >= s.LineCount() {
		return ""
	}
	return s.Text(s.LineStart(line), s.LineEnd(line))
}
