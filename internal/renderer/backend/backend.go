// Package backend provides the terminal abstraction the application draws
// to and reads input from.
package backend

import (
	"sync"
	"time"

	"github.com/dshills/quill/internal/input/key"
	"github.com/dshills/quill/internal/renderer/core"
)

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
	EventPaste
)

// Event represents a terminal event.
type Event struct {
	Type EventType

	// Key is set for EventKey.
	Key key.Event

	// Width and Height are set for EventResize.
	Width, Height int

	// Paste holds the text of a bracketed paste.
	Paste string
}

// Backend is a terminal: a cell sink plus an input source.
type Backend interface {
	core.Sink

	// Init prepares the terminal. Shutdown restores it and is safe to call
	// more than once.
	Init() error
	Shutdown()

	Clear()
	Show()
	ShowCursor(x, y int)
	HideCursor()

	// PollEvent waits up to timeout for input. ok is false when the
	// deadline passed without an event.
	PollEvent(timeout time.Duration) (ev Event, ok bool)
}

// NullBackend is an in-memory backend for testing and headless runs.
type NullBackend struct {
	mu sync.Mutex

	grid   *core.Grid
	events []Event
	shown  int

	cursorX, cursorY int
	cursorVisible    bool
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{grid: core.NewGrid(width, height)}
}

func (b *NullBackend) Init() error { return nil }
func (b *NullBackend) Shutdown()   {}

func (b *NullBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.grid.Size()
}

func (b *NullBackend) SetContent(x, y int, mainc rune, combc []rune, style core.Style) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.grid.SetContent(x, y, mainc, combc, style)
}

func (b *NullBackend) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.grid.Clear()
}

func (b *NullBackend) Show() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shown++
}

func (b *NullBackend) ShowCursor(x, y int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursorX, b.cursorY, b.cursorVisible = x, y, true
}

func (b *NullBackend) HideCursor() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursorVisible = false
}

// PollEvent returns the next posted event. It never waits: an empty queue
// reports no event at once.
func (b *NullBackend) PollEvent(time.Duration) (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return Event{}, false
	}
	ev := b.events[0]
	b.events = b.events[1:]
	return ev, true
}

// PostEvent queues an event for PollEvent.
func (b *NullBackend) PostEvent(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

// PostKeys queues key events parsed from names such as "Ctrl+S". Invalid
// names are skipped.
func (b *NullBackend) PostKeys(names ...string) {
	for _, name := range names {
		ev, err := key.Parse(name)
		if err != nil {
			continue
		}
		b.PostEvent(Event{Type: EventKey, Key: ev})
	}
}

// Resize changes the size and queues a resize event.
func (b *NullBackend) Resize(width, height int) {
	b.mu.Lock()
	b.grid.Resize(width, height)
	b.mu.Unlock()
	b.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}

// Row returns the text of screen row y.
func (b *NullBackend) Row(y int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.grid.Row(y)
}

// Text returns the whole screen.
func (b *NullBackend) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.grid.Text()
}

// Cell returns the cell at (x, y).
func (b *NullBackend) Cell(x, y int) core.Cell {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.grid.Cell(x, y)
}

// CursorPosition returns the terminal cursor.
func (b *NullBackend) CursorPosition() (x, y int, visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursorX, b.cursorY, b.cursorVisible
}

// Frames returns how many times Show was called.
func (b *NullBackend) Frames() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shown
}
