package search

import (
	"fmt"

	errors "github.com/Laisky/errors/v2"
)

// ValidationError reports an upload that was rejected before any network
// call was made.
type ValidationError struct {
	Reason string
	Err    error
}

// ErrNoFile is the cause of the *ValidationError returned when a submit is
// attempted without a selected file. Match it with errors.Is.
var ErrNoFile = errors.New("no file selected")

func errNoFile() *ValidationError {
	return &ValidationError{Err: ErrNoFile}
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	if e == nil {
		return "invalid upload: <nil>"
	}
	if e.Reason == "" && e.Err != nil {
		return "invalid upload: " + e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid upload: %s: %v", e.Reason, e.Err)
	}
	return "invalid upload: " + e.Reason
}

// Unwrap returns the underlying cause, if any.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AsValidation extracts a *ValidationError from the error chain.
func AsValidation(err error) (*ValidationError, bool) {
	if err == nil {
		return nil, false
	}
	var typed *ValidationError
	if errors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}

// TransportError reports a network failure, a non-2xx status, or an
// undecodable response from the backend. It never carries partial results.
type TransportError struct {
	Op         string // "submit image" or "list items"
	Endpoint   string // method and path, e.g. "POST /upload/"
	StatusCode int    // zero when no response was received
	RequestID  string
	Err        error
}

// Error returns the error message.
func (e *TransportError) Error() string {
	if e == nil {
		return "transport error: <nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s: %s failed", e.Op, e.Endpoint)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AsTransport extracts a *TransportError from the error chain.
func AsTransport(err error) (*TransportError, bool) {
	if err == nil {
		return nil, false
	}
	var typed *TransportError
	if errors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}

// IsTransport reports whether the error chain contains a *TransportError.
func IsTransport(err error) bool {
	_, ok := AsTransport(err)
	return ok
}
