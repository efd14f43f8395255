package editor

import (
	"fmt"
	"strings"

	"github.com/dshills/quill/internal/input/key"
	"github.com/dshills/quill/internal/plugin"
)

type promptKind uint8

const (
	promptSaveAs promptKind = iota
	promptOpen
	promptCommand
	promptPlugin
)

// prompt is the one-line input shown in place of the status bar.
type prompt struct {
	kind   promptKind
	label  string
	input  []rune
	target *document
	// req is the plugin request answered by a promptPlugin prompt.
	req *plugin.Request
}

func (e *Editor) openPrompt(kind promptKind, label, initial string, target *document) error {
	if e.prompt != nil {
		return ErrPromptBusy
	}
	e.prompt = &prompt{
		kind:   kind,
		label:  label,
		input:  []rune(initial),
		target: target,
	}
	return nil
}

// Prompt returns the label and input of the open prompt.
func (e *Editor) Prompt() (label, input string, ok bool) {
	if e.prompt == nil {
		return "", "", false
	}
	return e.prompt.label, string(e.prompt.input), true
}

func (e *Editor) promptKey(ev key.Event) error {
	p := e.prompt
	ev = ev.Normalize()
	switch {
	case ev.Key == key.KeyEscape:
		return e.CancelPrompt()
	case ev.Key == key.KeyEnter:
		return e.SubmitPrompt()
	case ev.Key == key.KeyBackspace:
		if len(p.input) > 0 {
			p.input = p.input[:len(p.input)-1]
		}
	case ev.Key == key.KeyTab:
		if p.kind == promptCommand {
			if s := e.commands.Suggestions(string(p.input)); len(s) > 0 {
				p.input = []rune(s[0].Name)
			}
		}
	case ev.IsChar():
		p.input = append(p.input, ev.Rune)
	}
	return nil
}

// CancelPrompt closes the open prompt without acting on it.
func (e *Editor) CancelPrompt() error {
	if e.prompt == nil {
		return nil
	}
	e.cancelPrompt()
	e.status = "Cancelled"
	return ErrCancelledPrompt
}

func (e *Editor) cancelPrompt() {
	p := e.prompt
	e.prompt = nil
	if p.req != nil {
		e.answer(p.req, plugin.Fail(p.req, plugin.ErrCancelled))
	}
}

// SubmitPrompt closes the open prompt and acts on its input. An empty file
// name or command counts as a cancel.
func (e *Editor) SubmitPrompt() error {
	p := e.prompt
	if p == nil {
		return nil
	}
	e.prompt = nil
	if p.kind == promptPlugin {
		e.answer(p.req, plugin.Response{Text: string(p.input)})
		return nil
	}

	text := strings.TrimSpace(string(p.input))
	if text == "" {
		e.status = "Cancelled"
		return ErrCancelledPrompt
	}
	switch p.kind {
	case promptSaveAs:
		i := e.indexOfDoc(p.target)
		if i < 0 {
			return fmt.Errorf("save as: %w", ErrNoState)
		}
		return e.SaveAs(i, text)
	case promptOpen:
		return e.Open(text)
	case promptCommand:
		return e.RunCommand(text)
	}
	return nil
}

func (e *Editor) indexOfDoc(d *document) int {
	for i, o := range e.docs {
		if o == d {
			return i
		}
	}
	return -1
}

// RunCommand runs a command by name. A name that is the prefix of exactly
// one command runs that command.
func (e *Editor) RunCommand(name string) error {
	cmd, ok := e.commands.Get(name)
	if !ok {
		matches := e.commands.Suggestions(name)
		if len(matches) != 1 {
			e.setStatus("Unknown command: %s", name)
			return fmt.Errorf("%w: %q", plugin.ErrCommandNotFound, name)
		}
		cmd = matches[0]
	}
	if cmd.Run == nil {
		return nil
	}
	if err := cmd.Run(); err != nil {
		e.setStatus("%s: %v", cmd.Name, err)
		e.log.Warn("command %s (%s): %v", cmd.Name, cmd.Source, err)
		return err
	}
	return nil
}

// suggestions returns the commands matching the command prompt input.
func (e *Editor) suggestions() []plugin.Command {
	if e.prompt == nil || e.prompt.kind != promptCommand {
		return nil
	}
	return e.commands.Suggestions(string(e.prompt.input))
}

// answer delivers the response to a deferred plugin request.
func (e *Editor) answer(req *plugin.Request, resp plugin.Response) {
	if e.bridge != nil {
		e.bridge.Resolve(req, resp)
		return
	}
	req.Reply(resp)
}
