package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/quill/internal/fileio"
)

// Save writes the document at index i to its path. A document without a
// path opens the "Save as:" prompt instead. A failed write leaves the
// document dirty and reports the error in the status bar.
func (e *Editor) Save(i int) error {
	if i < 0 || i >= len(e.docs) {
		return fmt.Errorf("save %d: %w", i, ErrNoState)
	}
	d := e.docs[i]
	if d.state.Path == "" {
		return e.openPrompt(promptSaveAs, "Save as:", "", d)
	}
	return e.write(d)
}

// SaveAs binds the document at index i to path, detects its language from
// the new name and writes it. On failure the previous path and language
// are restored.
func (e *Editor) SaveAs(i int, path string) error {
	if i < 0 || i >= len(e.docs) {
		return fmt.Errorf("save %d: %w", i, ErrNoState)
	}
	if strings.TrimSpace(path) == "" {
		return fileio.ErrNoPath
	}
	d := e.docs[i]
	s := d.state
	oldPath, oldLang := s.Path, s.Language

	s.Path = e.resolve(path)
	e.setLanguage(d, fileio.DetectLanguage(s.Path, s.Snapshot().LineText(0)))
	if err := e.write(d); err != nil {
		s.Path = oldPath
		e.setLanguage(d, oldLang)
		return err
	}
	return nil
}

func (e *Editor) setLanguage(d *document, lang string) {
	d.state.Language = lang
	d.highlight.SetLanguage(lang)
	e.configureView(d)
}

func (e *Editor) write(d *document) error {
	s := d.state
	if err := fileio.SaveState(s); err != nil {
		e.setStatus("Save failed: %v", err)
		e.log.Error("save %s: %v", s.Path, err)
		return err
	}
	if e.record != nil {
		if err := e.record.Save(s.ID, s.Path); err != nil {
			e.log.Warn("transcript: %v", err)
		}
	}
	e.setStatus("Saved %s", s.Name())
	e.log.Info("saved %s", s.Path)
	return nil
}

// AutoSavePersistentBuffers saves every document that has a path, has
// unsaved changes and has not changed for the configured interval. It
// returns how many were saved; failures are joined into the error.
func (e *Editor) AutoSavePersistentBuffers() (int, error) {
	interval := e.cfg.AutoSaveInterval()
	now := e.now()
	saved := 0
	var errs []error
	for _, d := range e.docs {
		s := d.state
		if s.Path == "" || !s.Dirty || now.Sub(s.LastChange) < interval {
			continue
		}
		if err := e.write(d); err != nil {
			errs = append(errs, err)
			continue
		}
		saved++
	}
	if saved > 0 {
		e.log.Debug("auto-saved %d buffers", saved)
	}
	return saved, errors.Join(errs...)
}

// NoteExternalChange reports in the status bar that the file behind an
// open document changed on disk. It returns false when no open document
// has that path or the change is one of our own saves.
func (e *Editor) NoteExternalChange(path string) bool {
	abs := e.resolve(path)
	for _, d := range e.docs {
		s := d.state
		if s.Path != abs {
			continue
		}
		mod := fileio.ModTime(abs)
		switch {
		case mod.IsZero():
			e.setStatus("%s was removed on disk", s.Name())
		case !mod.After(s.ModTime):
			return false
		case s.Dirty:
			e.setStatus("%s changed on disk; you have unsaved changes", s.Name())
		default:
			e.setStatus("%s changed on disk", s.Name())
		}
		e.log.Info("external change: %s", abs)
		return true
	}
	return false
}
