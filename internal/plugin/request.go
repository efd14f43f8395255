package plugin

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/quill/internal/engine/cursor"
)

// Op names a bridge operation.
type Op string

// Bridge operations.
const (
	OpInsertText      Op = "insert-text"
	OpDeleteRange     Op = "delete-range"
	OpReadText        Op = "read-text"
	OpSetCursors      Op = "set-cursors"
	OpOpenFile        Op = "open-file"
	OpShowPrompt      Op = "show-prompt"
	OpRegisterCommand Op = "register-command"
)

// Ops lists every supported operation.
func Ops() []Op {
	return []Op{
		OpInsertText, OpDeleteRange, OpReadText, OpSetCursors,
		OpOpenFile, OpShowPrompt, OpRegisterCommand,
	}
}

// Valid reports whether op is supported.
func (op Op) Valid() bool {
	for _, o := range Ops() {
		if o == op {
			return true
		}
	}
	return false
}

// Request is one plugin call. Only the fields used by Op are set.
type Request struct {
	ID uint64
	Op Op
	// State addresses a document. uuid.Nil means the active document.
	State uuid.UUID
	// Source names the plugin that sent the request.
	Source string

	// insert-text
	At   int
	Text string
	// delete-range and read-text. read-text with End == -1 reads to the
	// end of the buffer.
	Start int
	End   int
	// set-cursors
	Cursors []cursor.Cursor
	// open-file
	Path string
	// show-prompt
	Label   string
	Initial string
	// register-command
	Command Command

	once  sync.Once
	reply chan Response
}

// Response answers a Request.
type Response struct {
	ID uint64
	// Err is nil on success.
	Err error
	// Text is the result of read-text and show-prompt.
	Text string
	// State identifies the document opened by open-file.
	State uuid.UUID
	// Pending means the answer is not known yet. The handler keeps the
	// request and calls Reply later, as show-prompt does once the user
	// answers.
	Pending bool
}

// OK reports whether the request succeeded.
func (r Response) OK() bool {
	return r.Err == nil
}

// Fail returns an error response for req.
func Fail(req *Request, err error) Response {
	return Response{ID: req.ID, Err: err}
}

// Reply delivers the response to the submitter. Only the first reply is
// delivered.
func (r *Request) Reply(resp Response) {
	r.once.Do(func() {
		resp.ID = r.ID
		if r.reply != nil {
			r.reply <- resp
		}
	})
}

// Validate checks the parameters of the request.
func (r *Request) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
	}
	switch r.Op {
	case OpInsertText:
		if r.At < 0 {
			return bad("at must be >= 0")
		}
		if r.Text == "" {
			return bad("text must not be empty")
		}
	case OpDeleteRange:
		if r.Start < 0 || r.End < r.Start {
			return bad("need 0 <= start <= end, got %d..%d", r.Start, r.End)
		}
	case OpReadText:
		if r.Start < 0 || (r.End != -1 && r.End < r.Start) {
			return bad("need 0 <= start <= end, got %d..%d", r.Start, r.End)
		}
	case OpSetCursors:
		if len(r.Cursors) == 0 {
			return bad("cursors must not be empty")
		}
		for i, c := range r.Cursors {
			if c.Position < 0 || (c.Anchor != cursor.NoAnchor && c.Anchor < 0) {
				return bad("cursor %d out of range", i)
			}
		}
	case OpOpenFile:
		if strings.TrimSpace(r.Path) == "" {
			return bad("path must not be empty")
		}
	case OpShowPrompt:
		if r.Label == "" {
			return bad("label must not be empty")
		}
	case OpRegisterCommand:
		if strings.TrimSpace(r.Command.Name) == "" {
			return bad("command name must not be empty")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, r.Op)
	}
	return nil
}

// ParseRequest decodes and validates the JSON form of a request.
func ParseRequest(data []byte) (*Request, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformedRequest
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, ErrMalformedRequest
	}

	req := &Request{
		ID:     doc.Get("id").Uint(),
		Op:     Op(doc.Get("op").String()),
		Source: doc.Get("source").String(),
		End:    -1,
	}
	if !req.Op.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, req.Op)
	}
	if s := doc.Get("state").String(); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: state: %v", ErrInvalidParams, err)
		}
		req.State = id
	}

	p := doc.Get("params")
	var err error
	switch req.Op {
	case OpInsertText:
		if req.At, err = intParam(p, "at", true); err != nil {
			return nil, err
		}
		if req.Text, err = stringParam(p, "text", true); err != nil {
			return nil, err
		}
	case OpDeleteRange, OpReadText:
		required := req.Op == OpDeleteRange
		if req.Start, err = intParam(p, "start", required); err != nil {
			return nil, err
		}
		if p.Get("end").Exists() || required {
			if req.End, err = intParam(p, "end", true); err != nil {
				return nil, err
			}
		}
	case OpSetCursors:
		list := p.Get("cursors")
		if !list.IsArray() {
			return nil, fmt.Errorf("%w: cursors must be an array", ErrInvalidParams)
		}
		for _, item := range list.Array() {
			pos, err := intParam(item, "position", true)
			if err != nil {
				return nil, err
			}
			c := cursor.New(0, pos)
			if item.Get("anchor").Exists() {
				if c.Anchor, err = intParam(item, "anchor", true); err != nil {
					return nil, err
				}
			}
			req.Cursors = append(req.Cursors, c)
		}
	case OpOpenFile:
		if req.Path, err = stringParam(p, "path", true); err != nil {
			return nil, err
		}
	case OpShowPrompt:
		if req.Label, err = stringParam(p, "label", true); err != nil {
			return nil, err
		}
		if req.Initial, err = stringParam(p, "initial", false); err != nil {
			return nil, err
		}
	case OpRegisterCommand:
		if req.Command.Name, err = stringParam(p, "name", true); err != nil {
			return nil, err
		}
		if req.Command.Description, err = stringParam(p, "description", false); err != nil {
			return nil, err
		}
		req.Command.Source = req.Source
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func intParam(obj gjson.Result, name string, required bool) (int, error) {
	v := obj.Get(name)
	if !v.Exists() {
		if required {
			return 0, fmt.Errorf("%w: %s is required", ErrInvalidParams, name)
		}
		return 0, nil
	}
	if v.Type != gjson.Number || v.Float() != float64(v.Int()) {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidParams, name)
	}
	return int(v.Int()), nil
}

func stringParam(obj gjson.Result, name string, required bool) (string, error) {
	v := obj.Get(name)
	if !v.Exists() {
		if required {
			return "", fmt.Errorf("%w: %s is required", ErrInvalidParams, name)
		}
		return "", nil
	}
	if v.Type != gjson.String {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidParams, name)
	}
	return v.String(), nil
}

// JSON encodes the response.
func (r Response) JSON() []byte {
	out := []byte(`{}`)
	out, _ = sjson.SetBytes(out, "id", r.ID)
	out, _ = sjson.SetBytes(out, "ok", r.OK())
	if r.Err != nil {
		out, _ = sjson.SetBytes(out, "error", r.Err.Error())
		out, _ = sjson.SetBytes(out, "code", errorCode(r.Err))
		return out
	}
	out, _ = sjson.SetRawBytes(out, "result", []byte(`{}`))
	if r.Text != "" {
		out, _ = sjson.SetBytes(out, "result.text", r.Text)
	}
	if r.State != uuid.Nil {
		out, _ = sjson.SetBytes(out, "result.state", r.State.String())
	}
	return out
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnknownOp):
		return "unknown-op"
	case errors.Is(err, ErrInvalidParams):
		return "invalid-params"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.Is(err, ErrMalformedRequest):
		return "malformed"
	}
	return "failed"
}
