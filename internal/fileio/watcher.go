package fileio

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op describes a change to a watched file.
type Op uint8

const (
	OpWrite Op = 1 << iota
	OpCreate
	OpRemove
	OpRename
)

// Has reports whether op includes other.
func (op Op) Has(other Op) bool {
	return op&other != 0
}

// Change is a modification of a watched file by any process.
type Change struct {
	Path string
	Op   Op
	Time time.Time
}

// Watcher reports changes to individual files. It watches the containing
// directories, so files replaced by rename are still seen.
type Watcher struct {
	mu sync.Mutex

	fsw *fsnotify.Watcher

	// files maps absolute file paths to watch counts.
	files map[string]int
	// dirs maps directories to the number of watched files inside.
	dirs map[string]int

	changes chan Change
	errors  chan error

	closed  bool
	closeCh chan struct{}
	done    sync.WaitGroup
}

// NewWatcher starts a watcher. Changes are buffered up to bufSize; further
// changes are dropped until the consumer catches up.
func NewWatcher(bufSize int) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if bufSize <= 0 {
		bufSize = 64
	}
	w := &Watcher{
		fsw:     fsw,
		files:   make(map[string]int),
		dirs:    make(map[string]int),
		changes: make(chan Change, bufSize),
		errors:  make(chan error, 8),
		closeCh: make(chan struct{}),
	}
	w.done.Add(1)
	go w.loop()
	return w, nil
}

// Add starts watching path. Adding the same path again increments its
// watch count.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &PathError{Op: "watch", Path: path, Err: err}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}

	if w.files[abs] > 0 {
		w.files[abs]++
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return &PathError{Op: "watch", Path: path, Err: err}
		}
	}
	w.dirs[dir]++
	w.files[abs] = 1
	return nil
}

// Remove decrements the watch count of path and stops watching it at zero.
func (w *Watcher) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &PathError{Op: "unwatch", Path: path, Err: err}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}

	n := w.files[abs]
	switch {
	case n == 0:
		return nil
	case n > 1:
		w.files[abs]--
		return nil
	}
	delete(w.files, abs)

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] > 0 {
		return nil
	}
	delete(w.dirs, dir)
	if err := w.fsw.Remove(dir); err != nil {
		return &PathError{Op: "unwatch", Path: path, Err: err}
	}
	return nil
}

// Watching reports whether path is watched.
func (w *Watcher) Watching(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[abs] > 0
}

// Changes returns the change channel. It is closed by Close.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Errors returns the error channel. It is closed by Close.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.done.Wait()
	close(w.changes)
	close(w.errors)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	defer w.done.Done()
	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	op := convertOp(ev.Op)
	if op == 0 {
		return
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}
	w.mu.Lock()
	watched := w.files[abs] > 0
	w.mu.Unlock()
	if !watched {
		return
	}

	select {
	case w.changes <- Change{Path: abs, Op: op, Time: time.Now()}:
	default:
	}
}

func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
