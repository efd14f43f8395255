// Package editor is the façade the application drives: a list of open
// documents, the shared clipboard, the help page, the one-line prompt and
// the screen composition.
//
// Every change to a document goes through ApplyAction, which translates the
// action into events, commits them to the active State, records them in the
// transcript and scrolls the primary cursor into view. Key presses, command
// prompt entries and plugin requests all end up there.
//
// An Editor is owned by one goroutine, the application's main loop. Plugin
// requests reach it through plugin.Bridge.Drain on that goroutine.
package editor
