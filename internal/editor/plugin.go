package editor

import (
	"fmt"

	"github.com/dshills/quill/internal/action"
	"github.com/dshills/quill/internal/plugin"
)

// HandlePluginRequest executes one plugin request. It is the plugin.Handler
// the main loop passes to Bridge.Drain. Edits become a single action on the
// addressed document; show-prompt stays pending until the user answers.
func (e *Editor) HandlePluginRequest(req *plugin.Request) plugin.Response {
	switch req.Op {
	case plugin.OpOpenFile:
		if err := e.Open(req.Path); err != nil {
			return plugin.Fail(req, err)
		}
		return plugin.Response{State: e.Active().ID}

	case plugin.OpShowPrompt:
		if err := e.openPrompt(promptPlugin, req.Label, req.Initial, e.current()); err != nil {
			return plugin.Fail(req, fmt.Errorf("%w: %v", plugin.ErrCancelled, err))
		}
		e.prompt.req = req
		return plugin.Response{Pending: true}

	case plugin.OpRegisterCommand:
		cmd := req.Command
		if cmd.Source == "" {
			cmd.Source = req.Source
		}
		if err := e.commands.Register(cmd); err != nil {
			return plugin.Fail(req, err)
		}
		return plugin.Response{}
	}

	i := e.indexOf(req.State)
	if i < 0 {
		return plugin.Fail(req, plugin.ErrCancelled)
	}
	d := e.docs[i]
	buf := d.state.Snapshot()

	var a action.Action
	switch req.Op {
	case plugin.OpReadText:
		end := req.End
		if end == -1 {
			end = buf.Len()
		}
		if end > buf.Len() || !buf.IsBoundary(req.Start) || !buf.IsBoundary(end) {
			return plugin.Fail(req, fmt.Errorf("%w: range %d..%d outside buffer of %d bytes", plugin.ErrInvalidParams, req.Start, end, buf.Len()))
		}
		return plugin.Response{Text: buf.Text(req.Start, end), State: d.state.ID}
	case plugin.OpInsertText:
		a = action.Action{Kind: action.InsertAt, Start: req.At, Text: req.Text}
	case plugin.OpDeleteRange:
		if req.Start == req.End {
			return plugin.Response{State: d.state.ID}
		}
		a = action.Action{Kind: action.DeleteRange, Start: req.Start, End: req.End}
	case plugin.OpSetCursors:
		a = action.Action{Kind: action.SetCursors, Cursors: req.Cursors}
	default:
		return plugin.Fail(req, fmt.Errorf("%w: %q", plugin.ErrUnknownOp, req.Op))
	}

	applied, err := e.apply(d, a)
	if err != nil {
		return plugin.Fail(req, err)
	}
	if !applied && !e.unchanged(d, a) {
		return plugin.Fail(req, fmt.Errorf("%w: %s does not fit the buffer", plugin.ErrInvalidParams, a))
	}
	return plugin.Response{State: d.state.ID}
}

// unchanged reports whether a yielded no events because the document
// already matches it, rather than because its arguments are out of range.
func (e *Editor) unchanged(d *document, a action.Action) bool {
	if a.Kind != action.SetCursors {
		return false
	}
	buf := d.state.Snapshot()
	for _, c := range a.Cursors {
		if !buf.IsBoundary(c.Position) {
			return false
		}
	}
	return true
}
