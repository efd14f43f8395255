// Package main is the entry point for the quill editor.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/quill/internal/app"
	"github.com/dshills/quill/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// errVersion stops argument parsing after the version was printed.
var errVersion = errors.New("version requested")

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := parseArgs(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case errors.Is(err, flag.ErrHelp), errors.Is(err, errVersion):
		return exitOK
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: quill must run in a terminal")
		return exitFailure
	}

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return exitFailure
	}

	// Ensure cleanup on all exit paths
	defer application.Shutdown()

	t, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return exitFailure
	}
	if err := application.SetBackend(t); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to set backend: %v\n", err)
		return exitFailure
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		if _, ok := <-signals; ok {
			application.Quit()
		}
	}()

	// Run restores the terminal before returning, so the error is visible.
	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailure
	}
	if err := application.Shutdown(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailure
	}
	return exitOK
}

// parseArgs parses the command line. It returns flag.ErrHelp after printing
// usage for -h and errVersion after printing the version.
func parseArgs(args []string, stdout, stderr io.Writer) (app.Options, error) {
	var opts app.Options
	var showVersion bool

	fs := flag.NewFlagSet("quill", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.EventLogPath, "event-log", "", "Record keys, edits and saves as JSON lines to `path`")
	fs.BoolVar(&showVersion, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "quill - a multi-cursor terminal text editor\n\n")
		fmt.Fprintf(stderr, "Usage: quill [options] [file]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  quill                         Open with an empty buffer\n")
		fmt.Fprintf(stderr, "  quill main.go                 Open a file\n")
		fmt.Fprintf(stderr, "  quill --event-log ev.jsonl    Record the session\n")
		fmt.Fprintf(stderr, "  quill -- -notes.txt           Open a file whose name starts with -\n")
	}

	// Flags may follow the file, so parsing resumes after each positional
	// argument until "--" or the end.
	var files []string
	for {
		if err := fs.Parse(args); err != nil {
			return opts, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			break
		}
		if len(args) > len(rest) && args[len(args)-len(rest)-1] == "--" {
			files = append(files, rest...)
			break
		}
		files = append(files, rest[0])
		args = rest[1:]
	}
	if showVersion {
		fmt.Fprintf(stdout, "quill %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, errVersion
	}

	switch len(files) {
	case 0:
	case 1:
		opts.File = files[0]
	default:
		fs.Usage()
		return opts, fmt.Errorf("expected at most one file, got %d", len(files))
	}
	return opts, nil
}
