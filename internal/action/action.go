// Package action defines user intents and translates them into event
// batches.
//
// An Action is what a key press, a command palette entry or a plugin call
// asks for. Translate turns one Action into the ordered list of events that
// implements it on every cursor of a document. It is a total function: an
// action that cannot apply yields no events.
package action

import (
	"fmt"

	"github.com/dshills/quill/internal/engine/cursor"
)

// Kind identifies an action.
type Kind uint16

const (
	None Kind = iota

	// Editing
	InsertChar
	InsertText
	InsertNewline
	InsertTab
	DeleteBackward
	DeleteForward
	DeleteWordBackward
	DeleteWordForward

	// Movement
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
	MoveWordLeft
	MoveWordRight
	MoveLineStart
	MoveLineEnd
	MoveDocumentStart
	MoveDocumentEnd
	MovePageUp
	MovePageDown

	// Selection
	SelectLeft
	SelectRight
	SelectUp
	SelectDown
	SelectWordLeft
	SelectWordRight
	SelectLineStart
	SelectLineEnd
	SelectAll

	// Multiple cursors
	AddCursorNextMatch
	AddCursorAbove
	AddCursorBelow
	RemoveSecondaryCursors

	// Clipboard
	Copy
	Cut
	Paste

	// History
	Undo
	Redo

	// View
	ScrollUp
	ScrollDown

	// Files and buffers
	Save
	SaveAs
	Open
	NewBuffer
	CloseBuffer
	NextBuffer
	PrevBuffer

	// Application
	Quit
	ShowHelp
	CommandPalette

	// Plugin operations
	InsertAt
	DeleteRange
	SetCursors

	kindCount
)

type kindInfo struct {
	name        string
	description string
	category    string
}

var kinds = [kindCount]kindInfo{
	None: {"none", "Do nothing", ""},

	InsertChar:         {"editor.insertChar", "Insert character", "Editing"},
	InsertText:         {"editor.insertText", "Insert text", "Editing"},
	InsertNewline:      {"editor.insertNewline", "Insert newline", "Editing"},
	InsertTab:          {"editor.insertTab", "Insert tab", "Editing"},
	DeleteBackward:     {"editor.deleteBackward", "Delete backward", "Editing"},
	DeleteForward:      {"editor.deleteForward", "Delete forward", "Editing"},
	DeleteWordBackward: {"editor.deleteWordBackward", "Delete word backward", "Editing"},
	DeleteWordForward:  {"editor.deleteWordForward", "Delete word forward", "Editing"},

	MoveLeft:          {"cursor.moveLeft", "Move left", "Movement"},
	MoveRight:         {"cursor.moveRight", "Move right", "Movement"},
	MoveUp:            {"cursor.moveUp", "Move up", "Movement"},
	MoveDown:          {"cursor.moveDown", "Move down", "Movement"},
	MoveWordLeft:      {"cursor.wordLeft", "Move word left", "Movement"},
	MoveWordRight:     {"cursor.wordRight", "Move word right", "Movement"},
	MoveLineStart:     {"cursor.lineStart", "Move to line start", "Movement"},
	MoveLineEnd:       {"cursor.lineEnd", "Move to line end", "Movement"},
	MoveDocumentStart: {"cursor.documentStart", "Move to document start", "Movement"},
	MoveDocumentEnd:   {"cursor.documentEnd", "Move to document end", "Movement"},
	MovePageUp:        {"cursor.pageUp", "Page up", "Movement"},
	MovePageDown:      {"cursor.pageDown", "Page down", "Movement"},

	SelectLeft:      {"selection.left", "Select left", "Selection"},
	SelectRight:     {"selection.right", "Select right", "Selection"},
	SelectUp:        {"selection.up", "Select up", "Selection"},
	SelectDown:      {"selection.down", "Select down", "Selection"},
	SelectWordLeft:  {"selection.wordLeft", "Select word left", "Selection"},
	SelectWordRight: {"selection.wordRight", "Select word right", "Selection"},
	SelectLineStart: {"selection.lineStart", "Select to line start", "Selection"},
	SelectLineEnd:   {"selection.lineEnd", "Select to line end", "Selection"},
	SelectAll:       {"selection.all", "Select all", "Selection"},

	AddCursorNextMatch:     {"multicursor.nextMatch", "Add cursor at next match", "Multi-cursor"},
	AddCursorAbove:         {"multicursor.above", "Add cursor above", "Multi-cursor"},
	AddCursorBelow:         {"multicursor.below", "Add cursor below", "Multi-cursor"},
	RemoveSecondaryCursors: {"multicursor.removeSecondary", "Remove secondary cursors", "Multi-cursor"},

	Copy:  {"clipboard.copy", "Copy", "Clipboard"},
	Cut:   {"clipboard.cut", "Cut", "Clipboard"},
	Paste: {"clipboard.paste", "Paste", "Clipboard"},

	Undo: {"history.undo", "Undo", "History"},
	Redo: {"history.redo", "Redo", "History"},

	ScrollUp:   {"view.scrollUp", "Scroll up", "View"},
	ScrollDown: {"view.scrollDown", "Scroll down", "View"},

	Save:        {"file.save", "Save", "File"},
	SaveAs:      {"file.saveAs", "Save as", "File"},
	Open:        {"file.open", "Open file", "File"},
	NewBuffer:   {"buffer.new", "New buffer", "File"},
	CloseBuffer: {"buffer.close", "Close buffer", "File"},
	NextBuffer:  {"buffer.next", "Next buffer", "File"},
	PrevBuffer:  {"buffer.previous", "Previous buffer", "File"},

	Quit:           {"app.quit", "Quit", "Application"},
	ShowHelp:       {"app.help", "Toggle help", "Application"},
	CommandPalette: {"app.commandPalette", "Command palette", "Application"},

	InsertAt:    {"plugin.insertText", "Insert text at position", "Plugin"},
	DeleteRange: {"plugin.deleteRange", "Delete range", "Plugin"},
	SetCursors:  {"plugin.setCursors", "Set cursors", "Plugin"},
}

var byName = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k, info := range kinds {
		m[info.name] = Kind(k)
	}
	return m
}()

// String returns the dotted action name, such as "cursor.moveLeft".
func (k Kind) String() string {
	if k < kindCount {
		return kinds[k].name
	}
	return fmt.Sprintf("Kind(%d)", uint16(k))
}

// Description returns the human readable description used by help and the
// command palette.
func (k Kind) Description() string {
	if k < kindCount {
		return kinds[k].description
	}
	return ""
}

// Category groups kinds on the help page.
func (k Kind) Category() string {
	if k < kindCount {
		return kinds[k].category
	}
	return ""
}

// Parse returns the kind with the given dotted name.
func Parse(name string) (Kind, bool) {
	k, ok := byName[name]
	return k, ok
}

// Kinds returns every kind except None in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := None + 1; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Action is a user intent. Only the fields relevant to Kind are used:
// Char for InsertChar, Text for InsertText and InsertAt, Start and End for
// InsertAt and DeleteRange, Cursors for SetCursors, Path for Open and
// SaveAs.
type Action struct {
	Kind    Kind
	Char    rune
	Text    string
	Start   int
	End     int
	Cursors []cursor.Cursor
	Path    string
}

// New returns an action without arguments.
func New(k Kind) Action {
	return Action{Kind: k}
}

// Char returns an InsertChar action.
func Char(r rune) Action {
	return Action{Kind: InsertChar, Char: r}
}

// Text returns an InsertText action.
func Text(s string) Action {
	return Action{Kind: InsertText, Text: s}
}

func (a Action) String() string {
	switch a.Kind {
	case InsertChar:
		return fmt.Sprintf("%s(%q)", a.Kind, a.Char)
	case InsertText:
		return fmt.Sprintf("%s(%q)", a.Kind, a.Text)
	case InsertAt:
		return fmt.Sprintf("%s(%d, %q)", a.Kind, a.Start, a.Text)
	case DeleteRange:
		return fmt.Sprintf("%s(%d..%d)", a.Kind, a.Start, a.End)
	case Open, SaveAs:
		return fmt.Sprintf("%s(%s)", a.Kind, a.Path)
	}
	return a.Kind.String()
}

// IsEdit reports whether the action changes buffer text.
func (a Action) IsEdit() bool {
	switch a.Kind {
	case InsertChar, InsertText, InsertNewline, InsertTab,
		DeleteBackward, DeleteForward, DeleteWordBackward, DeleteWordForward,
		Cut, Paste, InsertAt, DeleteRange:
		return true
	}
	return false
}
