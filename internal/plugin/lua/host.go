package lua

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/quill/internal/logging"
	"github.com/dshills/quill/internal/plugin"
)

// Default host limits.
const (
	DefaultTimeout   = 5 * time.Second
	DefaultQueueSize = 32
)

// Plugin is one loaded script.
type Plugin struct {
	Name string
	Path string
	// Err is the load error, if any.
	Err error

	L        *lua.LState
	handlers *lua.LTable
	exec     *execution
}

// Host owns the plugin interpreters and the goroutine that runs them.
type Host struct {
	bridge   *plugin.Bridge
	commands *plugin.Registry
	log      *logging.Logger
	timeout  time.Duration

	jobs chan func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	plugins map[string]*Plugin
	closed  bool
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger for plugin output and errors.
func WithLogger(l *logging.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.log = l
		}
	}
}

// WithTimeout bounds how long plugin code may run between calls into the
// editor.
func WithTimeout(d time.Duration) Option {
	return func(h *Host) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// NewHost creates a host and starts its goroutine. Plugins talk to the
// editor through bridge and add prompt commands to commands.
func NewHost(bridge *plugin.Bridge, commands *plugin.Registry, opts ...Option) *Host {
	h := &Host{
		bridge:   bridge,
		commands: commands,
		log:      logging.Nop(),
		timeout:  DefaultTimeout,
		jobs:     make(chan func(), DefaultQueueSize),
		plugins:  make(map[string]*Plugin),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.WithComponent("plugin")
	h.ctx, h.cancel = context.WithCancel(context.Background())

	h.wg.Add(1)
	go h.run()
	return h
}

func (h *Host) run() {
	defer h.wg.Done()
	for {
		select {
		case <-h.ctx.Done():
			return
		case job := <-h.jobs:
			job()
		}
	}
}

// post queues fn for the host goroutine without waiting for it.
func (h *Host) post(fn func()) error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return ErrHostClosed
	}
	select {
	case h.jobs <- fn:
		return nil
	case <-h.ctx.Done():
		return ErrHostClosed
	}
}

// Sync waits until every job queued before the call has run. It must not
// be called from the editor loop while plugins wait on the bridge.
func (h *Host) Sync(ctx context.Context) error {
	done := make(chan struct{})
	if err := h.post(func() { close(done) }); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.ctx.Done():
		return ErrHostClosed
	}
}

// Discover lists the plugins in dir: every *.lua file and every
// subdirectory with an init.lua. The names are sorted. A missing directory
// has no plugins.
func Discover(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read plugin dir: %w", err)
	}

	found := make(map[string]string)
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if e.IsDir() {
			entry := filepath.Join(dir, name, "init.lua")
			if _, err := os.Stat(entry); err == nil {
				found[name] = entry
			}
			continue
		}
		if strings.HasSuffix(name, ".lua") {
			found[strings.TrimSuffix(name, ".lua")] = filepath.Join(dir, name)
		}
	}
	return found, nil
}

// LoadDir queues every plugin found in dir for loading and returns their
// names. Loading happens on the host goroutine; failures are logged and
// recorded in Plugin.Err.
func (h *Host) LoadDir(dir string) ([]string, error) {
	found, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := found[name]
		code, err := os.ReadFile(path)
		if err != nil {
			h.log.Warn("read plugin %s: %v", path, err)
			continue
		}
		if err := h.Load(name, path, string(code)); err != nil {
			return names, err
		}
	}
	return names, nil
}

// Load queues a plugin for loading from source code. path is only used in
// messages.
func (h *Host) Load(name, path, code string) error {
	h.mu.Lock()
	if _, ok := h.plugins[name]; ok {
		h.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, name)
	}
	p := &Plugin{Name: name, Path: path}
	h.plugins[name] = p
	h.mu.Unlock()

	return h.post(func() {
		p.Err = h.start(p, code)
		if p.Err != nil {
			h.log.WithField("plugin", name).Error("load failed: %v", p.Err)
			return
		}
		h.log.WithField("plugin", name).Info("loaded")
	})
}

// start creates the interpreter of p and runs its top level code. It runs
// on the host goroutine.
func (h *Host) start(p *Plugin, code string) error {
	L := newSandboxedState()
	p.L = L
	p.handlers = L.NewTable()

	log := h.log.WithField("plugin", p.Name)
	mod := h.module(p, log)
	L.SetGlobal(moduleName, mod)
	installRequire(L, mod)
	installPrint(L, log)

	fn, err := L.LoadString(code)
	if err != nil {
		return fmt.Errorf("%s: %w", p.Name, err)
	}
	return h.call(p, fn)
}

// call runs fn under the execution timeout with panic recovery.
func (h *Host) call(p *Plugin, fn *lua.LFunction, args ...lua.LValue) (err error) {
	exec := newExecution(h.ctx, h.timeout)
	p.exec = exec
	p.L.SetContext(exec.ctx)
	defer func() {
		exec.stop()
		p.L.RemoveContext()
		p.exec = nil
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	p.L.Push(fn)
	for _, a := range args {
		p.L.Push(a)
	}
	if err := p.L.PCall(len(args), 0, nil); err != nil {
		if exec.timedOut() {
			return fmt.Errorf("%s: %w", p.Name, ErrExecutionTimeout)
		}
		return err
	}
	return nil
}

// runCommand calls the Lua handler registered under name.
func (h *Host) runCommand(p *Plugin, name string) {
	fn, ok := p.handlers.RawGetString(name).(*lua.LFunction)
	if !ok {
		return
	}
	if err := h.call(p, fn); err != nil {
		h.log.WithField("plugin", p.Name).Error("command %s: %v", name, err)
	}
}

// Plugin returns a loaded plugin by name.
func (h *Host) Plugin(name string) (*Plugin, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.plugins[name]
	return p, ok
}

// Names returns the names of all plugins, sorted.
func (h *Host) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.plugins))
	for name := range h.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close stops the host goroutine and releases the interpreters. Plugin
// commands are removed from the registry.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	h.cancel()
	h.wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	for name, p := range h.plugins {
		h.commands.RemoveSource(name)
		if p.L != nil {
			p.L.Close()
		}
	}
	return nil
}

// execution is the timeout watchdog of one Lua call. The clock stops while
// the plugin waits for the editor.
type execution struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	timer   *time.Timer

	mu    sync.Mutex
	fired bool
}

func newExecution(parent context.Context, timeout time.Duration) *execution {
	e := &execution{timeout: timeout}
	e.ctx, e.cancel = context.WithCancel(parent)
	e.timer = time.AfterFunc(timeout, func() {
		e.mu.Lock()
		e.fired = true
		e.mu.Unlock()
		e.cancel()
	})
	return e
}

func (e *execution) pause() {
	e.timer.Stop()
}

func (e *execution) resume() {
	if !e.timedOut() {
		e.timer.Reset(e.timeout)
	}
}

func (e *execution) timedOut() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fired
}

func (e *execution) stop() {
	e.timer.Stop()
	e.cancel()
}
