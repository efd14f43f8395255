package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse reads a key name such as "a", "Enter", "Ctrl+S" or
// "Ctrl+Shift+Left" into a normalized Event. Modifier and key names are
// case-insensitive; "Space" and "Plus" name the ' ' and '+' characters.
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	var mods Modifier
	keyPart := spec
	if i := strings.LastIndex(spec, "+"); i > 0 && i < len(spec)-1 {
		for _, p := range strings.Split(spec[:i], "+") {
			mod := ModifierFromName(p)
			if mod == ModNone {
				return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
			}
			mods = mods.With(mod)
		}
		keyPart = spec[i+1:]
	}

	switch strings.ToLower(keyPart) {
	case "space":
		return NewRuneEvent(' ', mods).Normalize(), nil
	case "plus":
		return NewRuneEvent('+', mods).Normalize(), nil
	}
	if k := KeyFromName(keyPart); k != KeyNone {
		return NewSpecialEvent(k, mods), nil
	}
	if r, size := utf8.DecodeRuneInString(keyPart); r != utf8.RuneError && size == len(keyPart) {
		return NewRuneEvent(r, mods).Normalize(), nil
	}
	return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Event {
	e, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return e
}
