package lua

import "errors"

// Errors for plugin execution.
var (
	// ErrHostClosed is returned when operating on a closed host.
	ErrHostClosed = errors.New("plugin host is closed")

	// ErrExecutionTimeout is returned when plugin code runs longer than
	// the host timeout without calling into the editor.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrDuplicatePlugin is returned when two plugins share a name.
	ErrDuplicatePlugin = errors.New("plugin already loaded")
)
