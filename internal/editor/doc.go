// Package editor implements the rich-text editor controller.
//
// An Editor turns a target element of a dom.Document into an editing
// surface: it builds the wrapper, toolbar and editable region after the
// target, forwards native events from the editable region to its event
// bus, mounts plugins through a plugin.Registry and owns the undo history.
//
// Native events are dispatched on the goroutine that drives the document;
// Editor methods must be called from that goroutine. Content is the one
// exception and may be called from anywhere.
package editor
