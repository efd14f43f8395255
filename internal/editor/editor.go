package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/quill/internal/clipboard"
	"github.com/dshills/quill/internal/config"
	"github.com/dshills/quill/internal/engine"
	"github.com/dshills/quill/internal/fileio"
	"github.com/dshills/quill/internal/input/keymap"
	"github.com/dshills/quill/internal/logging"
	"github.com/dshills/quill/internal/plugin"
	"github.com/dshills/quill/internal/renderer/core"
	"github.com/dshills/quill/internal/renderer/highlight"
	"github.com/dshills/quill/internal/renderer/style"
	"github.com/dshills/quill/internal/renderer/viewport"
	"github.com/dshills/quill/internal/transcript"
)

// Screen rows taken by the tab bar and the status bar.
const chromeRows = 2

// document is an open State with its view.
type document struct {
	state     *engine.State
	view      *viewport.Viewport
	highlight *highlight.Provider
}

// Editor holds the open documents and the application state around them.
type Editor struct {
	cfg      *config.Config
	log      *logging.Logger
	now      func() time.Time
	workDir  string
	theme    *style.Theme
	keymaps  *keymap.Registry
	commands *plugin.Registry
	bridge   *plugin.Bridge
	record   *transcript.Writer

	// clip mirrors clipText to the system clipboard when configured.
	clip     clipboard.Clipboard
	clipText string

	docs   []*document
	active int

	width  int
	height int

	quit       bool
	help       bool
	helpScroll int
	prompt     *prompt
	status     string
}

// Option configures an Editor.
type Option func(*Editor)

// WithClipboard sets the clipboard back-end. By default the system
// clipboard is used when the configuration asks for it.
func WithClipboard(c clipboard.Clipboard) Option {
	return func(e *Editor) {
		e.clip = c
	}
}

// WithClock sets the time source for change stamps and auto-save.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithTranscript records key presses, events and saves.
func WithTranscript(w *transcript.Writer) Option {
	return func(e *Editor) {
		e.record = w
	}
}

// WithWorkDir sets the directory relative paths are resolved against.
func WithWorkDir(dir string) Option {
	return func(e *Editor) {
		e.workDir = dir
	}
}

// WithBridge connects the plugin bridge, so closing a document cancels the
// requests addressed to it and plugin prompts can be answered.
func WithBridge(b *plugin.Bridge) Option {
	return func(e *Editor) {
		e.bridge = b
	}
}

// WithCommands shares a command registry with the plugin host.
func WithCommands(r *plugin.Registry) Option {
	return func(e *Editor) {
		if r != nil {
			e.commands = r
		}
	}
}

// WithTheme overrides the theme named by the configuration.
func WithTheme(t *style.Theme) Option {
	return func(e *Editor) {
		e.theme = t
	}
}

// New creates an editor for a screen of width by height cells holding one
// empty scratch document.
func New(cfg *config.Config, width, height int, opts ...Option) (*Editor, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Editor{
		cfg:      cfg,
		log:      logging.Nop(),
		now:      time.Now,
		keymaps:  keymap.Default(),
		commands: plugin.NewRegistry(),
		width:    max(width, 1),
		height:   max(height, chromeRows+1),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithComponent("editor")

	if err := e.keymaps.Override(cfg.Keys); err != nil {
		return nil, fmt.Errorf("key bindings: %w", err)
	}
	if e.theme == nil {
		e.theme = style.Load(cfg.Editor.Theme)
	}
	if e.clip == nil {
		e.clip = clipboard.Default(cfg.Editor.SystemClipboard)
	}
	if e.workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			e.workDir = wd
		}
	}
	if err := e.registerBuiltins(); err != nil {
		return nil, err
	}
	if err := e.NewScratch(); err != nil {
		return nil, err
	}
	return e, nil
}

// stateOptions returns the engine options derived from the configuration.
func (e *Editor) stateOptions() []engine.Option {
	ed := e.cfg.Editor
	return []engine.Option{
		engine.WithClock(e.now),
		engine.WithMergeTouching(ed.MultiCursorMergeTouching),
		engine.WithHistoryLimit(ed.HistoryLimit),
		engine.WithNormalizedLineEndings(ed.NormalizeLineEndings),
	}
}

func (e *Editor) newDocument(s *engine.State) *document {
	d := &document{
		state:     s,
		view:      viewport.New(e.width, e.height-chromeRows),
		highlight: highlight.NewProvider(s.Language, e.theme),
	}
	d.view.OriginY = 1
	e.configureView(d)
	return d
}

// configureView applies the settings that depend on the configuration and
// the document language.
func (e *Editor) configureView(d *document) {
	ed := e.cfg.Editor
	d.view.TabWidth = e.cfg.TabWidthFor(d.state.Language)
	d.view.SoftWrap = ed.SoftWrap
	d.view.HorizontalScroll = ed.HorizontalScroll
	d.view.Measure = core.MeasureCodePoint
	if ed.WideRunes {
		d.view.Measure = core.MeasureWide
	}
}

// NewScratch opens an empty document without a path and makes it active.
func (e *Editor) NewScratch() error {
	s, err := engine.NewState(e.stateOptions()...)
	if err != nil {
		return fmt.Errorf("new scratch: %w", err)
	}
	e.docs = append(e.docs, e.newDocument(s))
	e.active = len(e.docs) - 1
	return nil
}

// Open makes the document for path active, loading it if it is not open
// yet. A path that does not exist yields an empty document that is created
// on the first save. A pristine scratch document is replaced.
func (e *Editor) Open(path string) error {
	if path == "" {
		return fileio.ErrNoPath
	}
	abs := e.resolve(path)
	for i, d := range e.docs {
		if d.state.Path == abs {
			e.active = i
			return nil
		}
	}

	s, err := fileio.OpenState(abs, e.stateOptions()...)
	if err != nil {
		e.setStatus("Cannot open %s: %v", path, err)
		return err
	}
	d := e.newDocument(s)
	if len(e.docs) == 1 && e.pristine(e.docs[0]) {
		e.dropState(e.docs[0].state.ID)
		e.docs[0] = d
		e.active = 0
	} else {
		e.docs = append(e.docs, d)
		e.active = len(e.docs) - 1
	}
	e.log.Info("opened %s (%s, %s)", abs, s.Language, s.LineEnding)
	return nil
}

func (e *Editor) pristine(d *document) bool {
	s := d.state
	return s.Path == "" && !s.Dirty && s.Buffer.Len() == 0 && !s.Log.CanUndo()
}

// resolve turns path into a clean absolute path.
func (e *Editor) resolve(path string) string {
	if !filepath.IsAbs(path) && e.workDir != "" {
		path = filepath.Join(e.workDir, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Close closes the document at index i. Closing the last document leaves
// an empty scratch document.
func (e *Editor) Close(i int) error {
	if i < 0 || i >= len(e.docs) {
		return fmt.Errorf("close %d: %w", i, ErrNoState)
	}
	d := e.docs[i]
	e.dropState(d.state.ID)
	if e.prompt != nil && e.prompt.target == d {
		e.cancelPrompt()
	}
	e.docs = append(e.docs[:i], e.docs[i+1:]...)
	if len(e.docs) == 0 {
		return e.NewScratch()
	}
	if i < e.active || e.active >= len(e.docs) {
		e.active = max(e.active-1, 0)
	}
	return nil
}

func (e *Editor) dropState(id uuid.UUID) {
	if e.bridge == nil {
		return
	}
	if n := e.bridge.CancelState(id); n > 0 {
		e.log.Debug("cancelled %d plugin requests for %s", n, id)
	}
}

// SwitchTo makes the document at index i active.
func (e *Editor) SwitchTo(i int) error {
	if i < 0 || i >= len(e.docs) {
		return fmt.Errorf("switch to %d: %w", i, ErrNoState)
	}
	e.active = i
	return nil
}

// Next activates the following document, wrapping around.
func (e *Editor) Next() {
	e.active = (e.active + 1) % len(e.docs)
}

// Prev activates the preceding document, wrapping around.
func (e *Editor) Prev() {
	e.active = (e.active + len(e.docs) - 1) % len(e.docs)
}

// Active returns the active document.
func (e *Editor) Active() *engine.State {
	return e.docs[e.active].state
}

// ActiveIndex returns the index of the active document.
func (e *Editor) ActiveIndex() int {
	return e.active
}

// States returns the open documents in tab order.
func (e *Editor) States() []*engine.State {
	out := make([]*engine.State, len(e.docs))
	for i, d := range e.docs {
		out[i] = d.state
	}
	return out
}

// indexOf returns the index of the document with the given id. uuid.Nil
// means the active document.
func (e *Editor) indexOf(id uuid.UUID) int {
	if id == uuid.Nil {
		return e.active
	}
	for i, d := range e.docs {
		if d.state.ID == id {
			return i
		}
	}
	return -1
}

func (e *Editor) current() *document {
	return e.docs[e.active]
}

// Resize changes the screen size.
func (e *Editor) Resize(width, height int) {
	e.width = max(width, 1)
	e.height = max(height, chromeRows+1)
	for _, d := range e.docs {
		d.view.Resize(e.width, e.height-chromeRows)
	}
	e.clampHelpScroll()
}

// ShouldQuit reports whether Quit was requested.
func (e *Editor) ShouldQuit() bool {
	return e.quit
}

// Status returns the status bar message.
func (e *Editor) Status() string {
	return e.status
}

// SetStatus replaces the status bar message.
func (e *Editor) SetStatus(msg string) {
	e.status = msg
}

func (e *Editor) setStatus(format string, args ...any) {
	e.status = fmt.Sprintf(format, args...)
}

// Commands returns the command registry used by the command prompt.
func (e *Editor) Commands() *plugin.Registry {
	return e.commands
}

// Clipboard returns the editor clipboard text.
func (e *Editor) Clipboard() string {
	return e.clipText
}
