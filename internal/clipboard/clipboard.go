// Package clipboard stores text copied by the editor, either in memory or
// in the operating system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrUnavailable indicates the system clipboard cannot be used, for
// example because no clipboard utility is installed.
var ErrUnavailable = errors.New("system clipboard unavailable")

// Clipboard holds one string.
type Clipboard interface {
	Get() (string, error)
	Set(text string) error
}

// Memory is a process-local clipboard. The zero value is ready to use.
type Memory struct {
	mu   sync.Mutex
	text string
}

// NewMemory returns an empty in-memory clipboard.
func NewMemory() *Memory {
	return &Memory{}
}

// Get returns the stored text.
func (m *Memory) Get() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

// Set replaces the stored text.
func (m *Memory) Set(text string) error {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	return nil
}

// System uses the operating system clipboard and keeps a memory copy so
// that text copied inside the editor is still available when the OS
// clipboard fails.
type System struct {
	local Memory
}

// NewSystem returns the OS clipboard, or ErrUnavailable when this platform
// has no supported clipboard.
func NewSystem() (*System, error) {
	if clipboard.Unsupported {
		return nil, ErrUnavailable
	}
	return &System{}, nil
}

// Get reads the OS clipboard, falling back to the last text set here.
func (s *System) Get() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		local, _ := s.local.Get()
		return local, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return text, nil
}

// Set writes the OS clipboard. The text is kept locally even when the
// write fails.
func (s *System) Set(text string) error {
	s.local.Set(text)
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Default returns the system clipboard when useSystem is set and it is
// available, otherwise a memory clipboard.
func Default(useSystem bool) Clipboard {
	if useSystem {
		if s, err := NewSystem(); err == nil {
			return s
		}
	}
	return NewMemory()
}
