// Package lua hosts Lua plugins on gopher-lua.
//
// Each plugin gets its own sandboxed interpreter with the base, table,
// string and math libraries. File, OS and debug access is not available,
// and require only resolves the "quill" module. All interpreters run on one
// host goroutine because gopher-lua states are not goroutine-safe.
//
// The quill module exposes the bridge operations:
//
//	quill.insert_text(at, text [, state])
//	quill.delete_range(start, end [, state])
//	quill.read_text([start [, end [, state]]]) -> string
//	quill.set_cursors({{position = 1}, {position = 9, anchor = 4}} [, state])
//	quill.open_file(path) -> state
//	quill.prompt(label [, initial]) -> answer or nil when cancelled
//	quill.register_command(name, description, handler)
//	quill.log(message)
//
// Failed operations raise Lua errors, so plugins can use pcall.
package lua
