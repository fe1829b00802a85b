package editor

import (
	"errors"
	"fmt"
)

// Editor errors.
var (
	// ErrTargetNotFound is returned when the target element is missing.
	ErrTargetNotFound = errors.New("target element not found")

	// ErrTargetDetached is returned when the target has no parent to host
	// the editor scaffold.
	ErrTargetDetached = errors.New("target element is not attached")

	// ErrNotInitialized is returned by operations that need a live editor.
	ErrNotInitialized = errors.New("editor not initialized")

	// ErrDestroyed is returned by Init on an editor that was destroyed.
	ErrDestroyed = errors.New("editor destroyed")

	// ErrNilDocument is returned when no document is supplied.
	ErrNilDocument = errors.New("editor requires a document")
)

// InitError reports the Init stage that failed.
type InitError struct {
	Stage string
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("editor init: %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}
