package editor

import (
	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/event"
)

// Content returns the markup of the editable region.
func (e *Editor) Content() string {
	if e.editable == nil {
		return ""
	}
	var s string
	e.doc.Read(func() {
		s = dom.InnerHTML(e.editable)
	})
	return s
}

// SetContent replaces the markup of the editable region and mirrors it
// to the target. It does not emit editor.change. A selection inside the
// editable region collapses to its start.
func (e *Editor) SetContent(markup string) error {
	if e.editable == nil {
		return ErrNotInitialized
	}
	err := e.doc.Write(func() error {
		sel := e.doc.Selection()
		r, had := sel.Range()
		inside := had && r.Within(e.editable)
		if err := dom.SetInnerHTML(e.editable, markup); err != nil {
			return err
		}
		if inside {
			sel.Collapse(e.editable, 0)
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.updateOriginal()
	return nil
}

// updateOriginal mirrors the current content into the target element.
func (e *Editor) updateOriginal() {
	content := e.Content()
	err := e.doc.Write(func() error {
		if dom.IsFormField(e.target) {
			dom.SetValue(e.target, content)
			return nil
		}
		return dom.SetInnerHTML(e.target, content)
	})
	if err != nil {
		e.logger.Error("update target element", err)
	}
}

// Focus focuses the editable region.
func (e *Editor) Focus() {
	if e.editable != nil {
		e.doc.Focus(e.editable)
	}
}

// Blur removes focus from the editable region.
func (e *Editor) Blur() {
	if e.editable != nil {
		e.doc.Blur(e.editable)
	}
}

// HasFocus reports whether the editable region is focused.
func (e *Editor) HasFocus() bool {
	return e.editable != nil && e.doc.HasFocus(e.editable)
}

// PlaceCaretAtEnd focuses the editor and collapses the selection to the
// end of its content.
func (e *Editor) PlaceCaretAtEnd() {
	if e.editable == nil {
		return
	}
	e.Focus()
	e.doc.Selection().Collapse(e.editable, dom.MaxOffset(e.editable))
}

// EnsureFocusAndRange focuses the editor and moves the caret to the end
// of the content when the selection is missing, stale or outside the
// editable region.
func (e *Editor) EnsureFocusAndRange() {
	if e.editable == nil {
		return
	}
	r, ok := e.doc.Selection().Range()
	if !ok || !r.Valid() || !r.Within(e.editable) {
		e.PlaceCaretAtEnd()
	}
	e.Focus()
}

// ExecCommand applies a rich-text command at the selection, then emits
// editor.change with the new content and editor.selectionchange.
func (e *Editor) ExecCommand(name, value string) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	e.EnsureFocusAndRange()
	if err := e.doc.Write(func() error {
		return e.exec.Apply(name, value)
	}); err != nil {
		e.logger.Debug("command failed", "command", name, "error", err.Error())
		return err
	}
	e.updateOriginal()
	e.bus.Emit(event.TopicChange, e.Content())
	e.bus.Emit(event.TopicSelectionChange)
	return nil
}

// QueryCommandState reports whether a command is active at the selection.
func (e *Editor) QueryCommandState(name string) bool {
	if e.exec == nil {
		return false
	}
	var on bool
	e.doc.Read(func() {
		on = e.exec.QueryState(name)
	})
	return on
}

// QueryCommandValue returns a command's value at the selection.
func (e *Editor) QueryCommandValue(name string) string {
	if e.exec == nil {
		return ""
	}
	var v string
	e.doc.Read(func() {
		v = e.exec.QueryValue(name)
	})
	return v
}

// QueryCommandSupported reports whether the executor implements name.
func (e *Editor) QueryCommandSupported(name string) bool {
	return e.exec != nil && e.exec.Supports(name)
}
