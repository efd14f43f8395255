package app

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAlreadyRunning is returned by Run and SetBackend while the loop
	// runs.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNoBackend is returned by Run before SetBackend.
	ErrNoBackend = errors.New("no terminal backend")
)

// OperationError names the step of starting or stopping quill that failed:
// loading the config, opening the log, the event log or the FILE argument,
// initializing the terminal, or closing one of them on shutdown.
//
// It formats as "op target (context): err", omitting empty parts, for
// example "open ev.jsonl (event log): permission denied".
type OperationError struct {
	Op      string // load, open, init, create or close
	Target  string // a path, or a component such as "config" or "terminal"
	Context string // what Target is when a path alone is ambiguous
	Err     error
}

// NewOperationError wraps err as the failure of op on target.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

// WithContext sets Context and returns e. A nil e stays nil.
func (e *OperationError) WithContext(ctx string) *OperationError {
	if e != nil {
		e.Context = ctx
	}
	return e
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Target != "" {
		b.WriteByte(' ')
		b.WriteString(e.Target)
	}
	if e.Context != "" {
		fmt.Fprintf(&b, " (%s)", e.Context)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches only the same *OperationError; anything else is left to the
// wrapped error through Unwrap.
func (e *OperationError) Is(target error) bool {
	t, ok := target.(*OperationError)
	return ok && e == t
}

// RecoveredPanicError is what Run returns when the loop panics. The stack is
// part of Error, so it is meant for the log and for stderr once the terminal
// is restored.
type RecoveredPanicError struct {
	Value any
	Stack string
}

// NewRecoveredPanicError records a recovered value and the stack it was
// raised on.
func NewRecoveredPanicError(value any, stack string) *RecoveredPanicError {
	return &RecoveredPanicError{Value: value, Stack: stack}
}

func (e *RecoveredPanicError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("panic: %v", e.Value)
	if e.Stack == "" {
		return msg
	}
	return msg + "\n" + e.Stack
}
