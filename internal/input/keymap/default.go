package keymap

import (
	"github.com/dshills/quill/internal/action"
)

// NormalBindings returns the default bindings used while editing.
func NormalBindings() []Binding {
	return []Binding{
		// File
		{Keys: "Ctrl+S", Action: action.Save},
		{Keys: "Alt+S", Action: action.SaveAs},
		{Keys: "Ctrl+O", Action: action.Open},
		{Keys: "Ctrl+N", Action: action.NewBuffer},
		{Keys: "Ctrl+W", Action: action.CloseBuffer},
		{Keys: "Alt+Right", Action: action.NextBuffer},
		{Keys: "Alt+Left", Action: action.PrevBuffer},
		{Keys: "Ctrl+Q", Action: action.Quit},

		// Editing
		{Keys: "Enter", Action: action.InsertNewline},
		{Keys: "Tab", Action: action.InsertTab},
		{Keys: "Backspace", Action: action.DeleteBackward},
		{Keys: "Delete", Action: action.DeleteForward},
		{Keys: "Ctrl+Backspace", Action: action.DeleteWordBackward},
		{Keys: "Ctrl+Delete", Action: action.DeleteWordForward},

		// Clipboard
		{Keys: "Ctrl+C", Action: action.Copy},
		{Keys: "Ctrl+X", Action: action.Cut},
		{Keys: "Ctrl+V", Action: action.Paste},

		// History
		{Keys: "Ctrl+Z", Action: action.Undo},
		{Keys: "Ctrl+Y", Action: action.Redo},

		// Movement
		{Keys: "Left", Action: action.MoveLeft},
		{Keys: "Right", Action: action.MoveRight},
		{Keys: "Up", Action: action.MoveUp},
		{Keys: "Down", Action: action.MoveDown},
		{Keys: "Ctrl+Left", Action: action.MoveWordLeft},
		{Keys: "Ctrl+Right", Action: action.MoveWordRight},
		{Keys: "Home", Action: action.MoveLineStart},
		{Keys: "End", Action: action.MoveLineEnd},
		{Keys: "Ctrl+Home", Action: action.MoveDocumentStart},
		{Keys: "Ctrl+End", Action: action.MoveDocumentEnd},
		{Keys: "PageUp", Action: action.MovePageUp},
		{Keys: "PageDown", Action: action.MovePageDown},

		// Selection
		{Keys: "Shift+Left", Action: action.SelectLeft},
		{Keys: "Shift+Right", Action: action.SelectRight},
		{Keys: "Shift+Up", Action: action.SelectUp},
		{Keys: "Shift+Down", Action: action.SelectDown},
		{Keys: "Ctrl+Shift+Left", Action: action.SelectWordLeft},
		{Keys: "Ctrl+Shift+Right", Action: action.SelectWordRight},
		{Keys: "Shift+Home", Action: action.SelectLineStart},
		{Keys: "Shift+End", Action: action.SelectLineEnd},
		{Keys: "Ctrl+A", Action: action.SelectAll},

		// Multi-cursor
		{Keys: "Ctrl+D", Action: action.AddCursorNextMatch},
		{Keys: "Ctrl+Alt+Up", Action: action.AddCursorAbove},
		{Keys: "Ctrl+Alt+Down", Action: action.AddCursorBelow},
		{Keys: "Esc", Action: action.RemoveSecondaryCursors},

		// View
		{Keys: "Ctrl+Up", Action: action.ScrollUp},
		{Keys: "Ctrl+Down", Action: action.ScrollDown},

		// Application
		{Keys: "Ctrl+H", Action: action.ShowHelp, Description: "Help"},
		{Keys: "F1", Action: action.ShowHelp, Description: "Help"},
		{Keys: "Ctrl+P", Action: action.CommandPalette},
	}
}

// HelpBindings returns the bindings active while the help page is shown.
func HelpBindings() []Binding {
	return []Binding{
		{Keys: "Esc", Action: action.ShowHelp, Description: "Close help"},
		{Keys: "Ctrl+H", Action: action.ShowHelp, Description: "Close help"},
		{Keys: "F1", Action: action.ShowHelp, Description: "Close help"},
		{Keys: "Up", Action: action.ScrollUp},
		{Keys: "Down", Action: action.ScrollDown},
		{Keys: "PageUp", Action: action.MovePageUp, Description: "Scroll up a page"},
		{Keys: "PageDown", Action: action.MovePageDown, Description: "Scroll down a page"},
		{Keys: "Ctrl+Q", Action: action.Quit},
	}
}

// Default returns a registry holding the default keymaps.
func Default() *Registry {
	r := NewRegistry()
	// The default tables are fixed; a parse failure is a programming error.
	normal, err := New("default-normal", ContextNormal, NormalBindings())
	if err != nil {
		panic(err)
	}
	help, err := New("default-help", ContextHelp, HelpBindings())
	if err != nil {
		panic(err)
	}
	r.Register(normal)
	r.Register(help)
	return r
}
