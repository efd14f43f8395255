package engine

import "errors"

// Errors returned by state operations.
var (
	// ErrEventMismatch indicates a delete event whose recorded text does
	// not match the buffer, so it could not be inverted later.
	ErrEventMismatch = errors.New("event does not match buffer")

	// ErrUnsupportedEvent indicates an event variant the state cannot apply.
	ErrUnsupportedEvent = errors.New("unsupported event")
)
