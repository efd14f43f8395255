// Package keymap maps key events to actions.
//
// A Keymap is a flat table of bindings for one input context. The editor
// looks keys up in the keymap of its current context: Normal while
// editing, Help while the help page is shown. Keys without a binding that
// type a printable character become InsertChar in the Normal context.
//
// Bindings are written with key names such as "Ctrl+D" or "Shift+Left"
// (see package key). Their descriptions and categories feed the help page.
//
// # Usage
//
//	reg := keymap.Default()
//	if a, ok := reg.Lookup(keymap.ContextNormal, ev); ok {
//	    editor.ApplyAction(a)
//	}
package keymap
