package fileio

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitChange(t *testing.T, w *Watcher, path string) Change {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case c := <-w.Changes():
			if c.Path == path {
				return c
			}
		case <-timeout:
			t.Fatalf("no change reported for %s", path)
		}
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	other := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(16)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Add(path); err != nil {
		t.Fatal(err)
	}
	if !w.Watching(path) || w.Watching(other) {
		t.Fatal("Watching mismatch")
	}

	// Unwatched siblings are filtered out.
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := waitChange(t, w, path)
	if c.Op == 0 {
		t.Error("empty op")
	}
}

func TestWatcherSeesRenameSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher(16)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Add(path); err != nil {
		t.Fatal(err)
	}

	if _, err := Save(path, "two"); err != nil {
		t.Fatal(err)
	}
	waitChange(t, w, path)
}

func TestWatcherRefCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	w, err := NewWatcher(0)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		t.Fatal(err)
	}
	if err := w.Add(path); err != nil {
		t.Fatal(err)
	}
	if err := w.Remove(path); err != nil {
		t.Fatal(err)
	}
	if !w.Watching(path) {
		t.Error("one reference remains")
	}
	if err := w.Remove(path); err != nil {
		t.Fatal(err)
	}
	if w.Watching(path) {
		t.Error("should no longer watch")
	}
}

func TestWatcherClose(t *testing.T) {
	w, err := NewWatcher(1)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
	if err := w.Add("x"); err != ErrWatcherClosed {
		t.Errorf("Add after close = %v", err)
	}
	if _, ok := <-w.Changes(); ok {
		t.Error("changes channel should be closed")
	}
}
