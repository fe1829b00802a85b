// Package history provides bounded undo/redo over serialised editor content.
//
// Snapshots are full content strings. A History listens to the editor bus
// and records the previous content whenever the content differs from the
// last one it saw:
//
//   - on editor.keyup and editor.change, immediately;
//   - on editor.paste, after PasteDelay so the paste has settled.
//
// Undo and Redo swap content through the Source and suspend recording for
// SuppressWindow so the swap itself is not captured as a new edit:
//
//	h := history.New(ed, bus, history.WithMaxSize(100))
//	defer h.Close()
//
//	if err := h.Undo(); errors.Is(err, history.ErrNothingToUndo) {
//		// nothing recorded yet
//	}
//
// Deferred work runs through a schedule.Scheduler and is cancelled by Close.
package history
