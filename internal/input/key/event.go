package key

import (
	"fmt"
	"unicode"
)

// Event represents a single key press.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: mods}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(key Key, mods Modifier) Event {
	return Event{Key: key, Modifiers: mods}
}

// Ctrl returns the event for Ctrl plus a character.
func Ctrl(r rune) Event {
	return NewRuneEvent(r, ModCtrl).Normalize()
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar reports whether the event types a printable character: a rune
// without Ctrl, Alt or Meta.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune) &&
		e.Modifiers&(ModCtrl|ModAlt|ModMeta) == 0
}

// Normalize folds the different ways terminals report a key into the form
// bindings are written in.
func (e Event) Normalize() Event {
	if e.Key != KeyRune {
		e.Rune = 0
		return e
	}
	switch r := e.Rune; {
	case r == '\t':
		return NewSpecialEvent(KeyTab, e.Modifiers)
	case r == '\r' || r == '\n':
		return NewSpecialEvent(KeyEnter, e.Modifiers)
	case r == 0x1b:
		return NewSpecialEvent(KeyEscape, e.Modifiers)
	case r == 0x08 || r == 0x7f:
		// Terminals send either byte for Backspace.
		return NewSpecialEvent(KeyBackspace, e.Modifiers)
	case r >= 0x01 && r <= 0x1a:
		e.Rune = 'a' + r - 1
		e.Modifiers = e.Modifiers.With(ModCtrl)
		return e
	}
	if e.Modifiers&(ModCtrl|ModAlt|ModMeta) != 0 {
		e.Rune = unicode.ToLower(e.Rune)
		return e
	}
	// Shift is already part of a printable character.
	e.Modifiers = e.Modifiers.Without(ModShift)
	return e
}

// String returns the canonical name, such as "Ctrl+D", "Shift+Left", "x"
// or "Space".
func (e Event) String() string {
	var name string
	switch e.Key {
	case KeyRune:
		switch {
		case e.Rune == ' ':
			name = "Space"
		case e.Rune == '+' && e.Modifiers != ModNone:
			name = "Plus"
		case e.Modifiers&(ModCtrl|ModAlt|ModMeta) != 0:
			name = string(unicode.ToUpper(e.Rune))
		default:
			name = string(e.Rune)
		}
	default:
		name = e.Key.String()
	}
	if mods := e.Modifiers.String(); mods != "" {
		return mods + "+" + name
	}
	return name
}

// GoString implements fmt.GoStringer for debugging.
func (e Event) GoString() string {
	return fmt.Sprintf("key.Event{Key: %s, Rune: %q, Modifiers: %s}",
		e.Key, e.Rune, e.Modifiers)
}
