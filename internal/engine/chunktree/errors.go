package chunktree

import "errors"

var (
	// ErrOutOfBounds is returned when a position, range, line or column
	// lies outside the buffer.
	ErrOutOfBounds = errors.New("position out of bounds")

	// ErrInvalidBoundary is returned when a position splits a UTF-8
	// encoded code point.
	ErrInvalidBoundary = errors.New("position is not on a code point boundary")

	// ErrInvalidEncoding is returned when inserted or loaded text is not
	// valid UTF-8.
	ErrInvalidEncoding = errors.New("text is not valid UTF-8")
)
