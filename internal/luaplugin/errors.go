package luaplugin

import "errors"

var (
	// ErrInvalidScript is returned when a script does not return a valid
	// plugin table.
	ErrInvalidScript = errors.New("invalid lua plugin script")

	// ErrStateClosed is returned when calling into a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a call runs past its deadline.
	ErrExecutionTimeout = errors.New("lua execution timeout")
)
