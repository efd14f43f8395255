package fileio

import (
	"errors"
	"fmt"
)

// Errors returned by file operations.
var (
	// ErrInvalidEncoding indicates file content that is not valid UTF-8.
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")

	// ErrNoPath indicates a save of a document that has no file path.
	ErrNoPath = errors.New("document has no path")

	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrWatcherClosed indicates the watcher has been closed.
	ErrWatcherClosed = errors.New("watcher closed")
)

// PathError represents an error associated with a file path.
type PathError struct {
	Op   string // Operation that failed (open, save, watch)
	Path string // File path
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}
