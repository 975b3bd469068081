// Package common defines shared constants and sentinel errors used across
// the storage core and the REST layer of ArchDrive. Callers should use
// errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Store-level errors.
	ErrorNotFound  = errors.New("not found")
	ErrorTransport = errors.New("transport failure")

	// Validation errors (empty names, malformed folders, oversized payloads).
	ErrorInvalidInput = errors.New("invalid input")

	// Upload retry outcomes.
	ErrorUploadExhausted = errors.New("upload attempts exhausted")
	ErrorUploadAborted   = errors.New("upload aborted")
)

// UploadError is returned by the upload executor when a put could not be
// completed. Kind is ErrorUploadExhausted or ErrorUploadAborted; Err is the
// last underlying cause.
type UploadError struct {
	Kind     error
	Attempts int
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%v after %d attempt(s): %v", e.Kind, e.Attempts, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *UploadError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// InvalidInput wraps a message as an ErrorInvalidInput.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrorInvalidInput, fmt.Sprintf(format, args...))
}
