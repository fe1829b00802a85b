package command

import "errors"

// Sentinel errors for command execution.
var (
	// ErrUnsupportedCommand is returned for a command name the executor
	// does not implement.
	ErrUnsupportedCommand = errors.New("unsupported command")

	// ErrNoSelection is returned when there is no valid range inside the
	// editable root.
	ErrNoSelection = errors.New("no selection inside the editable region")

	// ErrInvalidValue is returned when a command's value argument is
	// missing or malformed.
	ErrInvalidValue = errors.New("invalid command value")

	// ErrNotInTable is returned by table commands when the selection is not
	// inside a table cell.
	ErrNotInTable = errors.New("selection is not inside a table")
)
