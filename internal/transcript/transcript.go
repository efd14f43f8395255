// Package transcript records an editing session as JSON lines.
//
// Every line is one record:
//
//	{"t":"2026-01-02T15:04:05.123456789Z","kind":"key","data":{"key":"Ctrl+S"}}
//	{"t":"...","kind":"event","data":{"state":"<uuid>","event":{"type":"insert","at":0,"text":"a","author":1}}}
//	{"t":"...","kind":"save","data":{"state":"<uuid>","path":"/tmp/a.txt"}}
//
// Event records use the JSON form of engine events. Read decodes a
// transcript and Replay feeds one document's events back in order.
package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/sjson"

	"github.com/dshills/quill/internal/engine/event"
	"github.com/dshills/quill/internal/input/key"
)

// Record kinds.
const (
	KindKey   = "key"
	KindEvent = "event"
	KindSave  = "save"
)

// Writer appends records to an io.Writer. It is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	now    func() time.Time
	err    error
}

// Option configures a Writer.
type Option func(*Writer)

// WithClock sets the time source for record stamps.
func WithClock(now func() time.Time) Option {
	return func(t *Writer) {
		if now != nil {
			t.now = now
		}
	}
}

// New writes records to w.
func New(w io.Writer, opts ...Option) *Writer {
	t := &Writer{w: w, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Create truncates or creates the file at path and writes records to it.
func Create(path string, opts ...Option) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	t := New(f, opts...)
	t.closer = f
	return t, nil
}

// Key records a key press.
func (t *Writer) Key(ev key.Event) error {
	data, _ := sjson.SetBytes([]byte(`{}`), "key", ev.String())
	return t.write(KindKey, data)
}

// Event records one applied event of a document.
func (t *Writer) Event(state uuid.UUID, ev event.Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	data, _ := sjson.SetBytes([]byte(`{}`), "state", state.String())
	data, err = sjson.SetRawBytes(data, "event", raw)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return t.write(KindEvent, data)
}

// Events records a batch of events in order.
func (t *Writer) Events(state uuid.UUID, events []event.Event) error {
	for _, ev := range events {
		if err := t.Event(state, ev); err != nil {
			return err
		}
	}
	return nil
}

// Save records that a document was written to path.
func (t *Writer) Save(state uuid.UUID, path string) error {
	data, _ := sjson.SetBytes([]byte(`{}`), "state", state.String())
	data, _ = sjson.SetBytes(data, "path", path)
	return t.write(KindSave, data)
}

func (t *Writer) write(kind string, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}

	line, _ := sjson.SetBytes([]byte(`{}`), "t", t.now().UTC().Format(time.RFC3339Nano))
	line, _ = sjson.SetBytes(line, "kind", kind)
	line, err := sjson.SetRawBytes(line, "data", data)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	line = append(line, '\n')
	if _, err := t.w.Write(line); err != nil {
		// The first write error sticks; later records are dropped.
		t.err = fmt.Errorf("write transcript: %w", err)
		return t.err
	}
	return nil
}

// Close closes the underlying file when the Writer owns one.
func (t *Writer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closer == nil {
		return nil
	}
	err := t.closer.Close()
	t.closer = nil
	if t.err == nil {
		t.err = os.ErrClosed
	}
	return err
}
