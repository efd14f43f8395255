package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/quill/internal/config"
	"github.com/dshills/quill/internal/engine"
	"github.com/dshills/quill/internal/engine/event"
	"github.com/dshills/quill/internal/input/key"
	"github.com/dshills/quill/internal/renderer/backend"
	"github.com/dshills/quill/internal/transcript"
)

const noPlugins = "[plugins]\nenabled = false\n"

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestApp(t *testing.T, opts Options) (*Application, *backend.NullBackend) {
	t.Helper()
	if opts.ConfigPath == "" {
		opts.ConfigPath = writeConfig(t, t.TempDir(), noPlugins)
	}
	if opts.WorkDir == "" {
		opts.WorkDir = t.TempDir()
	}
	app, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { app.Shutdown() })

	b := backend.NewNullBackend(40, 10)
	if err := app.SetBackend(b); err != nil {
		t.Fatal(err)
	}
	return app, b
}

func typeKeys(b *backend.NullBackend, s string) {
	for _, r := range s {
		b.PostEvent(backend.Event{Type: backend.EventKey, Key: key.NewRuneEvent(r, key.ModNone)})
	}
}

// step runs one loop iteration without waiting for input.
func step(app *Application) {
	if ev, ok := app.backend.PollEvent(0); ok {
		app.handleBackendEvent(ev)
	}
	app.service()
}

// stepUntil steps until cond holds or two seconds pass.
func stepUntil(t *testing.T, app *Application, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		step(app)
		time.Sleep(time.Millisecond)
	}
}

func TestRunTypeSaveQuit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	app, b := newTestApp(t, Options{File: path})

	typeKeys(b, "hi")
	b.PostKeys("Ctrl+S", "Ctrl+Q")
	if err := app.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hi" {
		t.Errorf("saved %q, want %q", data, "hi")
	}
	if b.Frames() == 0 {
		t.Error("nothing was rendered")
	}
	if !strings.Contains(b.Row(0), "note.txt") {
		t.Errorf("tab bar = %q", b.Row(0))
	}
}

func TestRunPasteAndResize(t *testing.T) {
	app, b := newTestApp(t, Options{})

	b.PostEvent(backend.Event{Type: backend.EventPaste, Paste: "a\nb"})
	b.Resize(50, 6)
	b.PostKeys("Ctrl+Q")
	if err := app.Run(); err != nil {
		t.Fatal(err)
	}
	if got := app.Editor().Active().Text(); got != "a\nb" {
		t.Errorf("text = %q", got)
	}
	if got := b.Row(5); !strings.Contains(got, "Ln 2, Col 2") {
		t.Errorf("status after resize = %q", got)
	}
}

func TestRunQuitFromAnotherGoroutine(t *testing.T) {
	app, _ := newTestApp(t, Options{})
	go app.Quit()

	errc := make(chan error, 1)
	go func() { errc <- app.Run() }()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
}

func TestRunWithoutBackend(t *testing.T) {
	app, err := New(Options{ConfigPath: writeConfig(t, t.TempDir(), noPlugins)})
	if err != nil {
		t.Fatal(err)
	}
	defer app.Shutdown()
	if err := app.Run(); !errors.Is(err, ErrNoBackend) {
		t.Errorf("Run = %v, want ErrNoBackend", err)
	}
}

type panicBackend struct {
	*backend.NullBackend
	shutdowns int
}

func (p *panicBackend) PollEvent(time.Duration) (backend.Event, bool) {
	panic("boom")
}

func (p *panicBackend) Shutdown() { p.shutdowns++ }

func TestRunRecoversPanic(t *testing.T) {
	app, _ := newTestApp(t, Options{})
	pb := &panicBackend{NullBackend: backend.NewNullBackend(40, 10)}
	if err := app.SetBackend(pb); err != nil {
		t.Fatal(err)
	}

	err := app.Run()
	var perr *RecoveredPanicError
	if !errors.As(err, &perr) {
		t.Fatalf("Run = %v, want a recovered panic", err)
	}
	if perr.Value != "boom" || perr.Stack == "" {
		t.Errorf("panic = %v, stack %d bytes", perr.Value, len(perr.Stack))
	}
	if pb.shutdowns != 1 {
		t.Errorf("terminal restored %d times, want 1", pb.shutdowns)
	}
}

func TestNewMissingConfig(t *testing.T) {
	_, err := New(Options{ConfigPath: filepath.Join(t.TempDir(), "missing.toml")})
	if !errors.Is(err, config.ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
	var oerr *OperationError
	if !errors.As(err, &oerr) || oerr.Op != "load" {
		t.Errorf("err = %#v, want a load OperationError", err)
	}
}

func TestNewInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 'x'}, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := New(Options{ConfigPath: writeConfig(t, dir, noPlugins), File: path})
	var oerr *OperationError
	if !errors.As(err, &oerr) || oerr.Op != "open" || oerr.Target != path {
		t.Errorf("err = %v, want an open OperationError for %s", err, path)
	}
}

func TestEventLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "events.jsonl")
	app, b := newTestApp(t, Options{EventLogPath: logPath})

	typeKeys(b, "a")
	b.PostKeys("Ctrl+Q")
	if err := app.Run(); err != nil {
		t.Fatal(err)
	}
	if err := app.Shutdown(); err != nil {
		t.Fatal(err)
	}

	records, err := transcript.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	var kinds []string
	for _, rec := range records {
		kinds = append(kinds, rec.Kind)
	}
	want := []string{"key", "event", "key"}
	if strings.Join(kinds, ",") != strings.Join(want, ",") {
		t.Errorf("kinds = %v, want %v", kinds, want)
	}

	// The recorded events rebuild the document from scratch.
	doc := app.Editor().Active()
	replayed, err := engine.NewState()
	if err != nil {
		t.Fatal(err)
	}
	if err := transcript.Replay(records, doc.ID, func(ev event.Event) error {
		return replayed.Apply(ev)
	}); err != nil {
		t.Fatal(err)
	}
	if replayed.Text() != doc.Text() {
		t.Errorf("replayed %q, want %q", replayed.Text(), doc.Text())
	}
}

func TestAutoSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "auto.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := noPlugins + "[editor]\nauto_save_enabled = true\nauto_save_interval_secs = 30\n"

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	app, b := newTestApp(t, Options{
		ConfigPath: writeConfig(t, dir, cfg),
		File:       path,
		Now:        func() time.Time { return now },
	})

	typeKeys(b, "y")
	step(app)
	now = now.Add(10 * time.Second)
	step(app)
	if data, _ := os.ReadFile(path); string(data) != "x" {
		t.Fatalf("saved too early: %q", data)
	}

	now = now.Add(30 * time.Second)
	step(app)
	if data, _ := os.ReadFile(path); string(data) != "yx" {
		t.Errorf("after the interval file = %q, want %q", data, "yx")
	}
	if app.Editor().Active().Dirty {
		t.Error("document still dirty after auto-save")
	}
}

func TestExternalChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watched.txt")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	app, _ := newTestApp(t, Options{File: path})
	if app.watcher == nil {
		t.Skip("file watcher unavailable")
	}
	step(app)

	if err := os.WriteFile(path, []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	stepUntil(t, app, "change notice", func() bool {
		return strings.Contains(app.Editor().Status(), "changed on disk")
	})
	if got := app.Editor().Active().Text(); got != "one" {
		t.Errorf("buffer reloaded: %q", got)
	}
}

func TestPluginCommand(t *testing.T) {
	dir := t.TempDir()
	plugins := filepath.Join(dir, "plugins")
	if err := os.MkdirAll(plugins, 0o755); err != nil {
		t.Fatal(err)
	}
	code := `quill.register_command("greet", "Insert a greeting", function()
	quill.insert_text(0, "hey ")
end)
`
	if err := os.WriteFile(filepath.Join(plugins, "greet.lua"), []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := "[plugins]\nenabled = true\ndir = \"" + plugins + "\"\n"
	app, b := newTestApp(t, Options{ConfigPath: writeConfig(t, dir, cfg)})

	stepUntil(t, app, "command registration", func() bool {
		_, ok := app.Commands().Get("greet")
		return ok
	})

	typeKeys(b, "you")
	b.PostKeys("Ctrl+P")
	typeKeys(b, "greet")
	b.PostKeys("Enter")
	stepUntil(t, app, "plugin edit", func() bool {
		return app.Editor().Active().Text() == "hey you"
	})

	if err := app.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if _, ok := app.Commands().Get("greet"); ok {
		t.Error("plugin command survived shutdown")
	}
}
