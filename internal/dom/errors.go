package dom

import "errors"

// Sentinel errors for the dom package.
var (
	// ErrInvalidSelector is returned when a selector cannot be parsed.
	ErrInvalidSelector = errors.New("invalid selector")

	// ErrNotElement is returned when an element node is required.
	ErrNotElement = errors.New("node is not an element")

	// ErrNilNode is returned when a nil node is passed.
	ErrNilNode = errors.New("node is nil")
)
