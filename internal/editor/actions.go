package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/quill/internal/action"
	"github.com/dshills/quill/internal/engine"
	"github.com/dshills/quill/internal/engine/event"
	"github.com/dshills/quill/internal/input/key"
	"github.com/dshills/quill/internal/input/keymap"
	"github.com/dshills/quill/internal/plugin"
)

// helpPage is the scroll step of PageUp and PageDown on the help page.
const helpPage = 10

// HandleKey dispatches a key press. An open prompt takes every key; the
// help page has its own keymap; otherwise the Normal keymap applies.
func (e *Editor) HandleKey(ev key.Event) error {
	if e.record != nil {
		if err := e.record.Key(ev); err != nil {
			e.log.Warn("transcript: %v", err)
		}
	}
	if e.prompt != nil {
		return e.promptKey(ev)
	}

	if e.help {
		a, ok := e.keymaps.Lookup(keymap.ContextHelp, ev)
		if !ok {
			return nil
		}
		switch a.Kind {
		case action.ScrollUp:
			e.ScrollHelp(-1)
		case action.ScrollDown:
			e.ScrollHelp(1)
		case action.MovePageUp:
			e.ScrollHelp(-helpPage)
		case action.MovePageDown:
			e.ScrollHelp(helpPage)
		default:
			return e.ApplyAction(a)
		}
		return nil
	}

	a, ok := e.keymaps.Lookup(keymap.ContextNormal, ev)
	if !ok {
		return nil
	}
	e.status = ""
	return e.ApplyAction(a)
}

// ApplyAction performs a on the active document. Editor-level actions
// (clipboard, history, files, application control) are handled here; the
// rest are translated into events and committed.
func (e *Editor) ApplyAction(a action.Action) error {
	d := e.current()
	switch a.Kind {
	case action.None:
		return nil
	case action.Copy:
		e.copySelections(d)
		return nil
	case action.Cut:
		e.copySelections(d)
	case action.Paste:
		a.Text = e.pasteText()
	case action.Undo:
		return e.Undo()
	case action.Redo:
		return e.Redo()
	case action.Save:
		return e.Save(e.active)
	case action.SaveAs:
		if a.Path != "" {
			return e.SaveAs(e.active, a.Path)
		}
		return e.openPrompt(promptSaveAs, "Save as:", d.state.Path, d)
	case action.Open:
		if a.Path != "" {
			return e.Open(a.Path)
		}
		return e.openPrompt(promptOpen, "Open:", "", d)
	case action.NewBuffer:
		return e.NewScratch()
	case action.CloseBuffer:
		return e.Close(e.active)
	case action.NextBuffer:
		e.Next()
		return nil
	case action.PrevBuffer:
		e.Prev()
		return nil
	case action.Quit:
		e.quit = true
		return nil
	case action.ShowHelp:
		e.ToggleHelp()
		return nil
	case action.CommandPalette:
		return e.openPrompt(promptCommand, "Command:", "", d)
	case action.ScrollUp, action.ScrollDown:
		if e.help {
			e.ScrollHelp(scrollDelta(a.Kind))
			return nil
		}
		d.view.ScrollBy(d.state.Snapshot(), scrollDelta(a.Kind))
		return nil
	}
	_, err := e.apply(d, a)
	return err
}

func scrollDelta(k action.Kind) int {
	if k == action.ScrollUp {
		return -1
	}
	return 1
}

// apply translates a against d and commits the events. It reports whether
// the action produced any events.
func (e *Editor) apply(d *document, a action.Action) (bool, error) {
	s := d.state
	events := action.Translate(a, s, e.actionContext(d, a))
	if len(events) == 0 {
		return false, nil
	}
	if _, err := s.Commit(events, action.HintFor(a, s)); err != nil {
		e.log.Error("apply %s: %v", a, err)
		return false, fmt.Errorf("apply %s: %w", a, err)
	}
	e.recordEvents(s, events)
	d.view.EnsureVisible(s.Snapshot(), s.Cursors.Primary().Position)
	return true, nil
}

func (e *Editor) actionContext(d *document, a action.Action) action.Context {
	ed := e.cfg.Editor
	return action.Context{
		TabWidth:   d.view.TabWidth,
		PageLines:  max(d.view.Height-1, 1),
		AutoIndent: ed.AutoIndent,
		AutoClose:  ed.AutoClosePairs,
		Clipboard:  a.Text,
	}
}

func (e *Editor) recordEvents(s *engine.State, events []event.Event) {
	if e.record == nil {
		return
	}
	if err := e.record.Events(s.ID, events); err != nil {
		e.log.Warn("transcript: %v", err)
	}
}

// Undo reverts the newest change group of the active document.
func (e *Editor) Undo() error {
	d := e.current()
	s := d.state
	past := s.Log.Past()
	if len(past) == 0 {
		e.status = "Nothing to undo"
		return nil
	}
	g := past[len(past)-1]
	if err := s.Undo(); err != nil {
		if errors.Is(err, event.ErrEmptyHistory) {
			return nil
		}
		e.log.Error("undo: %v", err)
		return err
	}
	e.recordEvents(s, event.InvertAll(g.Events))
	d.view.EnsureVisible(s.Snapshot(), s.Cursors.Primary().Position)
	return nil
}

// Redo re-applies the newest undone group of the active document.
func (e *Editor) Redo() error {
	d := e.current()
	s := d.state
	future := s.Log.Future()
	if len(future) == 0 {
		e.status = "Nothing to redo"
		return nil
	}
	g := future[len(future)-1]
	if err := s.Redo(); err != nil {
		if errors.Is(err, event.ErrEmptyHistory) {
			return nil
		}
		e.log.Error("redo: %v", err)
		return err
	}
	e.recordEvents(s, g.Events)
	d.view.EnsureVisible(s.Snapshot(), s.Cursors.Primary().Position)
	return nil
}

// copySelections puts the selected text of every cursor on the clipboard,
// one selection per line. Without any selection the clipboard is kept.
func (e *Editor) copySelections(d *document) {
	buf := d.state.Snapshot()
	var parts []string
	for _, c := range d.state.Cursors.All() {
		if c.HasSelection() {
			start, end := c.Selection()
			parts = append(parts, buf.Text(start, end))
		}
	}
	if len(parts) == 0 {
		return
	}
	e.setClipboard(strings.Join(parts, "\n"))
}

func (e *Editor) setClipboard(text string) {
	e.clipText = text
	if e.clip == nil {
		return
	}
	if err := e.clip.Set(text); err != nil {
		e.log.Warn("clipboard: %v", err)
	}
}

// pasteText returns the clipboard back-end contents, falling back to the
// editor's own copy.
func (e *Editor) pasteText() string {
	if e.clip != nil {
		text, err := e.clip.Get()
		if err == nil && text != "" {
			return text
		}
		if err != nil {
			e.log.Debug("clipboard: %v", err)
		}
	}
	return e.clipText
}

// registerBuiltins offers every argument-free action in the command
// prompt.
func (e *Editor) registerBuiltins() error {
	for _, k := range action.Kinds() {
		switch k {
		case action.InsertChar, action.InsertText, action.InsertAt,
			action.DeleteRange, action.SetCursors, action.CommandPalette:
			continue
		}
		err := e.commands.Register(plugin.Command{
			Name:        k.String(),
			Description: k.Description(),
			Source:      plugin.SourceBuiltin,
			Run: func() error {
				return e.ApplyAction(action.New(k))
			},
		})
		if err != nil {
			return fmt.Errorf("register %s: %w", k, err)
		}
	}
	return nil
}
