package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/quill/internal/engine/cursor"
	"github.com/dshills/quill/internal/plugin"
)

type result struct {
	resp plugin.Response
	err  error
}

// submit sends req from another goroutine, as a plugin would.
func submit(b *plugin.Bridge, req *plugin.Request) <-chan result {
	ch := make(chan result, 1)
	go func() {
		resp, err := b.Submit(context.Background(), req)
		ch <- result{resp, err}
	}()
	return ch
}

// wait drains the bridge on the test goroutine until the answer arrives.
func wait(t *testing.T, e *Editor, b *plugin.Bridge, ch <-chan result) plugin.Response {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		b.Drain(e.HandlePluginRequest)
		select {
		case r := <-ch:
			if r.err != nil {
				t.Fatalf("submit: %v", r.err)
			}
			return r.resp
		case <-deadline:
			t.Fatal("no response")
		case <-time.After(time.Millisecond):
		}
	}
}

func call(t *testing.T, e *Editor, b *plugin.Bridge, req *plugin.Request) plugin.Response {
	t.Helper()
	return wait(t, e, b, submit(b, req))
}

func TestPluginEdits(t *testing.T) {
	b := plugin.NewBridge(8)
	defer b.Close()
	e := newTestEditor(t, WithBridge(b))
	typeText(t, e, "world")

	resp := call(t, e, b, &plugin.Request{Op: plugin.OpInsertText, At: 0, Text: "hello "})
	if !resp.OK() {
		t.Fatal(resp.Err)
	}
	if resp.State != e.Active().ID {
		t.Errorf("state = %v", resp.State)
	}

	resp = call(t, e, b, &plugin.Request{Op: plugin.OpReadText, End: -1})
	if resp.Text != "hello world" {
		t.Errorf("read = %q", resp.Text)
	}
	resp = call(t, e, b, &plugin.Request{Op: plugin.OpReadText, Start: 6, End: 8})
	if resp.Text != "wo" {
		t.Errorf("read 6..8 = %q", resp.Text)
	}

	resp = call(t, e, b, &plugin.Request{Op: plugin.OpDeleteRange, Start: 0, End: 6})
	if !resp.OK() || e.Active().Text() != "world" {
		t.Errorf("delete: %v, text %q", resp.Err, e.Active().Text())
	}

	resp = call(t, e, b, &plugin.Request{Op: plugin.OpSetCursors, Cursors: []cursor.Cursor{
		cursor.New(0, 0), cursor.New(0, 5),
	}})
	if !resp.OK() || e.Active().Cursors.Count() != 2 {
		t.Errorf("set-cursors: %v, %d cursors", resp.Err, e.Active().Cursors.Count())
	}

	// A plugin edit is one undo step.
	if err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := e.Active().Text(); got != "hello world" {
		t.Errorf("after undo = %q", got)
	}
}

func TestPluginInvalidRange(t *testing.T) {
	b := plugin.NewBridge(8)
	defer b.Close()
	e := newTestEditor(t, WithBridge(b))
	typeText(t, e, "abc")

	for _, req := range []*plugin.Request{
		{Op: plugin.OpInsertText, At: 10, Text: "x"},
		{Op: plugin.OpDeleteRange, Start: 1, End: 9},
		{Op: plugin.OpReadText, Start: 2, End: 9},
		{Op: plugin.OpSetCursors, Cursors: []cursor.Cursor{cursor.New(0, 7)}},
	} {
		resp := call(t, e, b, req)
		if !errors.Is(resp.Err, plugin.ErrInvalidParams) {
			t.Errorf("%s: err = %v, want ErrInvalidParams", req.Op, resp.Err)
		}
	}
	if got := e.Active().Text(); got != "abc" {
		t.Errorf("text = %q", got)
	}
}

func TestPluginUnknownState(t *testing.T) {
	b := plugin.NewBridge(8)
	defer b.Close()
	e := newTestEditor(t, WithBridge(b))

	resp := call(t, e, b, &plugin.Request{Op: plugin.OpReadText, End: -1, State: uuid.New()})
	if !errors.Is(resp.Err, plugin.ErrCancelled) {
		t.Errorf("err = %v, want ErrCancelled", resp.Err)
	}
}

func TestPluginOpenFile(t *testing.T) {
	b := plugin.NewBridge(8)
	defer b.Close()
	dir := t.TempDir()
	path := writeFile(t, dir, "x.go", "package x\n")
	e := newTestEditor(t, WithBridge(b))

	resp := call(t, e, b, &plugin.Request{Op: plugin.OpOpenFile, Path: path})
	if !resp.OK() {
		t.Fatal(resp.Err)
	}
	if e.Active().Path != path || resp.State != e.Active().ID {
		t.Errorf("active = %q, state %v", e.Active().Path, resp.State)
	}

	// Requests addressed to a closed document are cancelled.
	id := resp.State
	if err := e.Close(e.ActiveIndex()); err != nil {
		t.Fatal(err)
	}
	resp = call(t, e, b, &plugin.Request{Op: plugin.OpInsertText, State: id, Text: "x"})
	if !errors.Is(resp.Err, plugin.ErrCancelled) {
		t.Errorf("err = %v, want ErrCancelled", resp.Err)
	}
	if e.Active().Path == path {
		t.Error("closed document still active")
	}
}

func TestPluginPrompt(t *testing.T) {
	b := plugin.NewBridge(8)
	defer b.Close()
	e := newTestEditor(t, WithBridge(b))

	ch := submit(b, &plugin.Request{Op: plugin.OpShowPrompt, Label: "Name:", Initial: "ab"})
	for {
		b.Drain(e.HandlePluginRequest)
		if _, _, ok := e.Prompt(); ok {
			break
		}
		time.Sleep(time.Millisecond)
	}
	label, input, _ := e.Prompt()
	if label != "Name:" || input != "ab" {
		t.Errorf("prompt = %q %q", label, input)
	}
	typeText(t, e, "c")
	press(t, e, "Enter")
	if resp := wait(t, e, b, ch); resp.Text != "abc" {
		t.Errorf("answer = %q, %v", resp.Text, resp.Err)
	}

	ch = submit(b, &plugin.Request{Op: plugin.OpShowPrompt, Label: "Again:"})
	for {
		b.Drain(e.HandlePluginRequest)
		if _, _, ok := e.Prompt(); ok {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if err := e.CancelPrompt(); !errors.Is(err, ErrCancelledPrompt) {
		t.Errorf("CancelPrompt = %v", err)
	}
	if resp := wait(t, e, b, ch); !errors.Is(resp.Err, plugin.ErrCancelled) {
		t.Errorf("cancelled answer = %v", resp.Err)
	}
}

func TestPluginPromptBusy(t *testing.T) {
	b := plugin.NewBridge(8)
	defer b.Close()
	e := newTestEditor(t, WithBridge(b))
	press(t, e, "Ctrl+P")

	resp := call(t, e, b, &plugin.Request{Op: plugin.OpShowPrompt, Label: "Name:"})
	if !errors.Is(resp.Err, plugin.ErrCancelled) {
		t.Errorf("err = %v, want ErrCancelled", resp.Err)
	}
	if label, _, _ := e.Prompt(); label != "Command:" {
		t.Errorf("the open prompt was replaced by %q", label)
	}
}

func TestPluginRegisterCommand(t *testing.T) {
	b := plugin.NewBridge(8)
	defer b.Close()
	reg := plugin.NewRegistry()
	e := newTestEditor(t, WithBridge(b), WithCommands(reg))

	ran := 0
	resp := call(t, e, b, &plugin.Request{
		Op:     plugin.OpRegisterCommand,
		Source: "greeter",
		Command: plugin.Command{
			Name: "greet",
			Run:  func() error { ran++; return nil },
		},
	})
	if !resp.OK() {
		t.Fatal(resp.Err)
	}
	cmd, ok := reg.Get("greet")
	if !ok || cmd.Source != "greeter" {
		t.Fatalf("command = %+v, %v", cmd, ok)
	}

	press(t, e, "Ctrl+P")
	typeText(t, e, "greet")
	press(t, e, "Enter")
	if ran != 1 {
		t.Errorf("ran = %d", ran)
	}

	resp = call(t, e, b, &plugin.Request{
		Op:      plugin.OpRegisterCommand,
		Source:  "other",
		Command: plugin.Command{Name: "buffer.new"},
	})
	if !errors.Is(resp.Err, plugin.ErrCommandExists) {
		t.Errorf("err = %v, want ErrCommandExists", resp.Err)
	}
}
