// Package key defines keyboard events and their names.
//
//   - Key identifies a special key, or KeyRune for characters
//   - Modifier is a bit set of Shift, Ctrl, Alt and Meta
//   - Event is one key press
//
// Events have a canonical name such as "Ctrl+D", "Shift+Left" or "x",
// used by the keymap, the help page and the event transcript. Parse reads
// the same names back.
//
// Terminals report some keys in several ways. Normalize folds them into one
// form: control characters become a letter with ModCtrl, Shift is dropped
// from printable characters, and letters carrying Ctrl or Alt are lower
// case.
package key
