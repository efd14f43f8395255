// Package plugin connects plugins to the editor.
//
// Plugins run on their own goroutines and never touch editor state
// directly. They submit Requests to a Bridge; the editor drains the bridge
// on its main loop, turns each request into one action, and replies with a
// Response. Requests and responses have a JSON form so that any plugin
// runtime can speak the protocol:
//
//	{"id": 7, "op": "insert-text", "state": "<uuid>", "params": {"at": 0, "text": "hi"}}
//	{"id": 7, "ok": true, "result": {}}
//	{"id": 8, "ok": false, "error": "invalid params: at must be >= 0"}
//
// The operations are insert-text, delete-range, read-text, set-cursors,
// open-file, show-prompt and register-command. An empty state addresses
// the active document.
//
// The package also holds the command Registry that backs the command
// prompt. Built-in editor commands and plugin commands share it.
package plugin
