package plugin

import "errors"

// Bridge and registry errors.
var (
	// ErrUnknownOp is returned for a request whose op is not supported.
	ErrUnknownOp = errors.New("unknown operation")

	// ErrInvalidParams is returned when request parameters fail validation.
	ErrInvalidParams = errors.New("invalid params")

	// ErrCancelled is returned for requests whose target document closed
	// or whose bridge shut down before they ran.
	ErrCancelled = errors.New("request cancelled")

	// ErrMalformedRequest is returned for input that is not a JSON object.
	ErrMalformedRequest = errors.New("malformed request")

	// ErrCommandExists is returned when another source already registered
	// a command name.
	ErrCommandExists = errors.New("command already registered")

	// ErrCommandNotFound is returned when running an unknown command.
	ErrCommandNotFound = errors.New("command not found")
)
