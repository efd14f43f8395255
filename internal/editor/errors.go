package editor

import "errors"

var (
	// ErrNoState is returned for a document index or id that is not open.
	ErrNoState = errors.New("no such document")

	// ErrCancelledPrompt is returned when the user dismisses a prompt.
	ErrCancelledPrompt = errors.New("prompt cancelled")

	// ErrPromptBusy is returned when a prompt is requested while another
	// one is open.
	ErrPromptBusy = errors.New("a prompt is already open")
)
