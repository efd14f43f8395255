// Package app wires the editor to its collaborators (configuration, logging,
// the terminal, the plugin host, the file watcher and the event transcript)
// and runs the main event loop.
package app

import (
	"errors"
	"io"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/quill/internal/action"
	"github.com/dshills/quill/internal/config"
	"github.com/dshills/quill/internal/editor"
	"github.com/dshills/quill/internal/fileio"
	"github.com/dshills/quill/internal/logging"
	"github.com/dshills/quill/internal/plugin"
	"github.com/dshills/quill/internal/plugin/lua"
	"github.com/dshills/quill/internal/renderer/backend"
	"github.com/dshills/quill/internal/transcript"
)

const (
	// PollInterval bounds how long the loop waits for input before it
	// services plugins, the watcher and auto-save.
	PollInterval = 100 * time.Millisecond

	// autoSaveCheck is how often the loop looks for buffers to auto-save.
	autoSaveCheck = time.Second

	// Initial screen size; the first render adopts the backend's size.
	defaultWidth  = 80
	defaultHeight = 24

	watcherBuffer = 64
)

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty loads the default file
	// when it exists.
	ConfigPath string

	// EventLogPath, when set, records keys, edit events and saves as JSON
	// lines.
	EventLogPath string

	// File is opened on startup.
	File string

	// WorkDir resolves relative paths. Empty means the process directory.
	WorkDir string

	// Now is the clock for edit times and auto-save. Nil means time.Now.
	Now func() time.Time
}

// Application is the central coordinator. It owns every component and the
// single-goroutine loop that drives them.
type Application struct {
	mu sync.Mutex

	opts Options
	cfg  *config.Config

	log       *logging.Logger
	logCloser io.Closer

	editor   *editor.Editor
	backend  backend.Backend
	bridge   *plugin.Bridge
	commands *plugin.Registry
	host     *lua.Host
	watcher  *fileio.Watcher
	record   *transcript.Writer

	// watched holds the document paths registered with the watcher.
	watched map[string]bool

	lastAutoSave time.Time
	now          func() time.Time

	running atomic.Bool
	quit    atomic.Bool
	closed  bool
}

// New creates an Application with the given options. On failure every
// component created so far is released.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		log:     logging.Nop(),
		watched: make(map[string]bool),
		now:     time.Now,
	}
	if opts.Now != nil {
		app.now = opts.Now
	}
	if err := app.bootstrap(); err != nil {
		app.Shutdown()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	cfg, err := config.Load(app.opts.ConfigPath)
	if err != nil {
		return NewOperationError("load", "config", err)
	}
	app.cfg = cfg

	if cfg.Log.File != "" {
		l, closer, err := logging.OpenFile(cfg.Log.File, cfg.LogLevel(), "quill")
		if err != nil {
			return NewOperationError("open", cfg.Log.File, err).WithContext("log")
		}
		app.log, app.logCloser = l, closer
	}

	if app.opts.EventLogPath != "" {
		w, err := transcript.Create(app.opts.EventLogPath)
		if err != nil {
			return NewOperationError("open", app.opts.EventLogPath, err).WithContext("event log")
		}
		app.record = w
	}

	app.bridge = plugin.NewBridge(plugin.DefaultQueueSize)
	app.commands = plugin.NewRegistry()

	edOpts := []editor.Option{
		editor.WithLogger(app.log),
		editor.WithBridge(app.bridge),
		editor.WithCommands(app.commands),
		editor.WithClock(app.now),
	}
	if app.record != nil {
		edOpts = append(edOpts, editor.WithTranscript(app.record))
	}
	if app.opts.WorkDir != "" {
		edOpts = append(edOpts, editor.WithWorkDir(app.opts.WorkDir))
	}
	ed, err := editor.New(cfg, defaultWidth, defaultHeight, edOpts...)
	if err != nil {
		return NewOperationError("create", "editor", err)
	}
	app.editor = ed

	if app.opts.File != "" {
		if err := ed.Open(app.opts.File); err != nil {
			return NewOperationError("open", app.opts.File, err)
		}
	}

	// A missing watcher only costs external change notices.
	if w, err := fileio.NewWatcher(watcherBuffer); err != nil {
		app.log.Warn("file watcher unavailable: %v", err)
	} else {
		app.watcher = w
		app.syncWatches()
	}

	if cfg.Plugins.Enabled {
		app.host = lua.NewHost(app.bridge, app.commands, lua.WithLogger(app.log))
		dir := cfg.PluginDir()
		names, err := app.host.LoadDir(dir)
		if err != nil {
			app.log.Error("load plugins from %s: %v", dir, err)
		} else if len(names) > 0 {
			app.log.Info("loading %d plugins from %s", len(names), dir)
		}
	}

	app.log.Info("started with %d documents", len(ed.States()))
	return nil
}

// SetBackend sets the terminal backend.
// Must be called before Run().
func (app *Application) SetBackend(b backend.Backend) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running.Load() {
		return ErrAlreadyRunning
	}
	app.backend = b
	return nil
}

// Editor returns the editor façade.
func (app *Application) Editor() *editor.Editor {
	return app.editor
}

// Config returns the loaded configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Commands returns the command registry shared by the editor and plugins.
func (app *Application) Commands() *plugin.Registry {
	return app.commands
}

// Quit asks the loop to stop after the current iteration. It is safe to
// call from any goroutine, such as a signal handler.
func (app *Application) Quit() {
	app.quit.Store(true)
}

// Run initializes the backend and runs the main loop until the editor or
// Quit asks to stop. A panic inside the loop is recovered: the terminal is
// restored first and the panic is returned as a *RecoveredPanicError.
func (app *Application) Run() (err error) {
	if app.backend == nil {
		return ErrNoBackend
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.backend.Init(); err != nil {
		return NewOperationError("init", "terminal", err)
	}
	defer app.backend.Shutdown()

	defer func() {
		if r := recover(); r != nil {
			perr := NewRecoveredPanicError(r, string(debug.Stack()))
			app.log.Error("%v", perr)
			err = perr
		}
	}()

	return app.eventLoop()
}

// eventLoop is the main application loop.
func (app *Application) eventLoop() error {
	for !app.done() {
		app.render()
		ev, ok := app.backend.PollEvent(PollInterval)
		if ok {
			app.handleBackendEvent(ev)
		}
		app.service()
	}
	app.log.Info("quit")
	return nil
}

func (app *Application) done() bool {
	return app.quit.Load() || app.editor.ShouldQuit()
}

// service runs the work that does not depend on input: plugin requests,
// external file changes and auto-save.
func (app *Application) service() {
	app.bridge.Drain(app.editor.HandlePluginRequest)
	app.syncWatches()
	app.drainWatcher()
	app.autoSave()
}

// handleBackendEvent processes a backend event and routes it appropriately.
func (app *Application) handleBackendEvent(ev backend.Event) {
	var err error
	switch ev.Type {
	case backend.EventKey:
		err = app.editor.HandleKey(ev.Key)
	case backend.EventPaste:
		err = app.editor.ApplyAction(action.Text(ev.Paste))
	case backend.EventResize:
		app.editor.Resize(ev.Width, ev.Height)
	}
	if err != nil && !errors.Is(err, editor.ErrCancelledPrompt) {
		app.log.Warn("%v", err)
	}
}

// render draws a frame and places the terminal cursor.
func (app *Application) render() {
	cx, cy := app.editor.Render(app.backend)
	if cx < 0 {
		app.backend.HideCursor()
	} else {
		app.backend.ShowCursor(cx, cy)
	}
	app.backend.Show()
}

// syncWatches makes the watcher follow the open documents' paths.
func (app *Application) syncWatches() {
	if app.watcher == nil {
		return
	}
	open := make(map[string]bool)
	for _, s := range app.editor.States() {
		if s.Path != "" {
			open[s.Path] = true
		}
	}
	for path := range open {
		if app.watched[path] {
			continue
		}
		app.watched[path] = true
		if err := app.watcher.Add(path); err != nil {
			app.log.Debug("watch %s: %v", path, err)
		}
	}
	for path := range app.watched {
		if open[path] {
			continue
		}
		delete(app.watched, path)
		if err := app.watcher.Remove(path); err != nil {
			app.log.Debug("unwatch %s: %v", path, err)
		}
	}
}

// drainWatcher reports every pending external change without blocking.
func (app *Application) drainWatcher() {
	if app.watcher == nil {
		return
	}
	for {
		select {
		case c := <-app.watcher.Changes():
			app.editor.NoteExternalChange(c.Path)
		case err := <-app.watcher.Errors():
			app.log.Warn("file watcher: %v", err)
		default:
			return
		}
	}
}

func (app *Application) autoSave() {
	if !app.cfg.Editor.AutoSaveEnabled {
		return
	}
	now := app.now()
	if now.Sub(app.lastAutoSave) < autoSaveCheck {
		return
	}
	app.lastAutoSave = now
	if _, err := app.editor.AutoSavePersistentBuffers(); err != nil {
		app.log.Error("auto-save: %v", err)
	}
}

// Shutdown releases every component in reverse initialization order and
// returns the joined close errors. It is safe to call more than once.
func (app *Application) Shutdown() error {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.closed {
		return nil
	}
	app.closed = true

	var errs []error
	if app.bridge != nil {
		app.bridge.Close()
	}
	if app.host != nil {
		if err := app.host.Close(); err != nil {
			errs = append(errs, NewOperationError("close", "plugin host", err))
		}
	}
	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil {
			errs = append(errs, NewOperationError("close", "file watcher", err))
		}
	}
	if app.record != nil {
		if err := app.record.Close(); err != nil {
			errs = append(errs, NewOperationError("close", app.opts.EventLogPath, err))
		}
	}
	app.log.Info("shutdown")
	if app.logCloser != nil {
		if err := app.logCloser.Close(); err != nil {
			errs = append(errs, NewOperationError("close", app.cfg.Log.File, err))
		}
	}
	return errors.Join(errs...)
}
