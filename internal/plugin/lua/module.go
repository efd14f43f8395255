package lua

import (
	"errors"

	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/quill/internal/engine/cursor"
	"github.com/dshills/quill/internal/logging"
	"github.com/dshills/quill/internal/plugin"
)

// module builds the quill table for plugin p.
func (h *Host) module(p *Plugin, log *logging.Logger) *lua.LTable {
	L := p.L
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"insert_text": func(L *lua.LState) int {
			req := &plugin.Request{
				Op:    plugin.OpInsertText,
				At:    L.CheckInt(1),
				Text:  L.CheckString(2),
				State: optState(L, 3),
			}
			h.submit(L, p, req)
			return 0
		},
		"delete_range": func(L *lua.LState) int {
			req := &plugin.Request{
				Op:    plugin.OpDeleteRange,
				Start: L.CheckInt(1),
				End:   L.CheckInt(2),
				State: optState(L, 3),
			}
			h.submit(L, p, req)
			return 0
		},
		"read_text": func(L *lua.LState) int {
			req := &plugin.Request{
				Op:    plugin.OpReadText,
				Start: L.OptInt(1, 0),
				End:   L.OptInt(2, -1),
				State: optState(L, 3),
			}
			resp := h.submit(L, p, req)
			L.Push(lua.LString(resp.Text))
			return 1
		},
		"set_cursors": func(L *lua.LState) int {
			list := L.CheckTable(1)
			req := &plugin.Request{Op: plugin.OpSetCursors, State: optState(L, 2)}
			for i := 1; i <= list.Len(); i++ {
				item, ok := list.RawGetInt(i).(*lua.LTable)
				if !ok {
					L.ArgError(1, "cursors must be tables")
					return 0
				}
				pos, ok := item.RawGetString("position").(lua.LNumber)
				if !ok {
					L.ArgError(1, "cursor position must be a number")
					return 0
				}
				c := cursor.New(0, int(pos))
				if anchor, ok := item.RawGetString("anchor").(lua.LNumber); ok {
					c.Anchor = int(anchor)
				}
				req.Cursors = append(req.Cursors, c)
			}
			h.submit(L, p, req)
			return 0
		},
		"open_file": func(L *lua.LState) int {
			req := &plugin.Request{Op: plugin.OpOpenFile, Path: L.CheckString(1)}
			resp := h.submit(L, p, req)
			L.Push(lua.LString(resp.State.String()))
			return 1
		},
		"prompt": func(L *lua.LState) int {
			req := &plugin.Request{
				Op:      plugin.OpShowPrompt,
				Label:   L.CheckString(1),
				Initial: L.OptString(2, ""),
			}
			resp, cancelled := h.trySubmit(L, p, req)
			if cancelled {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(lua.LString(resp.Text))
			return 1
		},
		"register_command": func(L *lua.LState) int {
			name := L.CheckString(1)
			desc := L.OptString(2, "")
			fn := L.CheckFunction(3)
			p.handlers.RawSetString(name, fn)

			req := &plugin.Request{
				Op: plugin.OpRegisterCommand,
				Command: plugin.Command{
					Name:        name,
					Description: desc,
					Source:      p.Name,
					Run: func() error {
						return h.post(func() { h.runCommand(p, name) })
					},
				},
			}
			h.submit(L, p, req)
			return 0
		},
		"log": func(L *lua.LState) int {
			log.Info("%s", L.CheckString(1))
			return 0
		},
	})
}

// submit sends req through the bridge and raises a Lua error on failure.
func (h *Host) submit(L *lua.LState, p *Plugin, req *plugin.Request) plugin.Response {
	resp, err := h.send(p, req)
	if err != nil {
		L.RaiseError("%s: %v", req.Op, err)
	}
	return resp
}

// trySubmit is submit for operations the user may cancel.
func (h *Host) trySubmit(L *lua.LState, p *Plugin, req *plugin.Request) (plugin.Response, bool) {
	resp, err := h.send(p, req)
	if errors.Is(err, plugin.ErrCancelled) {
		return resp, true
	}
	if err != nil {
		L.RaiseError("%s: %v", req.Op, err)
	}
	return resp, false
}

// send waits for the editor with the execution clock stopped.
func (h *Host) send(p *Plugin, req *plugin.Request) (plugin.Response, error) {
	req.Source = p.Name
	if p.exec != nil {
		p.exec.pause()
		defer p.exec.resume()
	}
	resp, err := h.bridge.Submit(h.ctx, req)
	if err != nil {
		return resp, err
	}
	return resp, resp.Err
}

// optState reads an optional state id argument.
func optState(L *lua.LState, n int) uuid.UUID {
	s := L.OptString(n, "")
	if s == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		L.ArgError(n, "invalid state id")
	}
	return id
}
