// Package fileio reads and writes documents, detects their language and
// watches open files for changes made by other programs.
package fileio

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dshills/quill/internal/engine"
)

// DefaultFileMode is the permission of newly created files.
const DefaultFileMode fs.FileMode = 0o644

// File is the content and metadata of a file read from disk.
type File struct {
	// Path is absolute.
	Path     string
	Text     string
	ModTime  time.Time
	Mode     fs.FileMode
	Language string
}

// Load reads path and validates it as UTF-8.
func Load(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &PathError{Op: "open", Path: path, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &PathError{Op: "open", Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &PathError{Op: "open", Path: path, Err: ErrIsDirectory}
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, &PathError{Op: "open", Path: path, Err: err}
	}
	if !utf8.Valid(content) {
		return nil, &PathError{Op: "open", Path: path, Err: ErrInvalidEncoding}
	}

	text := string(content)
	return &File{
		Path:     abs,
		Text:     text,
		ModTime:  info.ModTime(),
		Mode:     info.Mode().Perm(),
		Language: DetectLanguage(abs, firstLine(text)),
	}, nil
}

// OpenState loads path into a new document. A path that does not exist
// yields an empty document bound to it, created on first save.
func OpenState(path string, opts ...engine.Option) (*engine.State, error) {
	f, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			return nil, &PathError{Op: "open", Path: path, Err: absErr}
		}
		base := []engine.Option{
			engine.WithPath(abs),
			engine.WithLanguage(DetectLanguage(abs, "")),
		}
		return engine.NewState(append(base, opts...)...)
	}
	if err != nil {
		return nil, err
	}

	base := []engine.Option{
		engine.WithText(f.Text),
		engine.WithPath(f.Path),
		engine.WithLanguage(f.Language),
		engine.WithModTime(f.ModTime),
	}
	s, err := engine.NewState(append(base, opts...)...)
	if err != nil {
		return nil, &PathError{Op: "open", Path: path, Err: err}
	}
	return s, nil
}

// Save writes text to path through a temporary file in the same directory
// followed by a rename, so readers never see a partial file. An existing
// file keeps its permissions. The new modification time is returned.
func Save(path, text string) (time.Time, error) {
	mode := DefaultFileMode
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return time.Time{}, &PathError{Op: "save", Path: path, Err: ErrIsDirectory}
		}
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return time.Time{}, &PathError{Op: "save", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	fail := func(err error) (time.Time, error) {
		tmp.Close()
		os.Remove(tmpName)
		return time.Time{}, &PathError{Op: "save", Path: path, Err: err}
	}

	if _, err := tmp.WriteString(text); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return time.Time{}, &PathError{Op: "save", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return time.Time{}, &PathError{Op: "save", Path: path, Err: err}
	}

	info, err := os.Stat(path)
	if err != nil {
		// Saved, but the mod time is unknown.
		return time.Now(), nil
	}
	return info.ModTime(), nil
}

// SaveState writes the document to its path and marks it saved. On failure
// the document stays dirty.
func SaveState(s *engine.State) error {
	if s.Path == "" {
		return ErrNoPath
	}
	modTime, err := Save(s.Path, s.SaveText())
	if err != nil {
		return err
	}
	s.MarkSaved(modTime)
	return nil
}

// ModTime returns the modification time of path, or the zero time when it
// cannot be read.
func ModTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSuffix(line, "\r")
}
