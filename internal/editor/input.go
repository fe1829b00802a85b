package editor

import (
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/command"
	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/key"
)

// The methods in this file stand in for a user at a keyboard: they
// dispatch native events at the editable region and then perform the
// default action a browser would, unless a listener prevented it.

// PressKey dispatches keydown, performs the key's default editing action
// and dispatches keyup. Printable keys without Ctrl, Alt or Meta insert
// their text; Backspace and Delete remove a grapheme. Editing actions are
// followed by an input event.
func (e *Editor) PressKey(k *key.Event) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	e.EnsureFocusAndRange()

	down := dom.NewKeyEvent(dom.EventKeydown, k)
	var err error
	if e.doc.Dispatch(e.editable, down) {
		if name, value, ok := defaultAction(k); ok {
			err = e.applyNative(name, value)
		}
	}
	e.doc.Dispatch(e.editable, dom.NewKeyEvent(dom.EventKeyup, k))
	return err
}

// TypeText presses one key per grapheme cluster of s.
func (e *Editor) TypeText(s string) error {
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		if err := e.PressKey(key.NewEvent(g.Str(), 0)); err != nil {
			return err
		}
	}
	return nil
}

// Paste dispatches a paste event carrying text and inserts the text
// unless a listener prevented it.
func (e *Editor) Paste(text string) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	e.EnsureFocusAndRange()

	ev := dom.NewEvent(dom.EventPaste)
	ev.Text = text
	if !e.doc.Dispatch(e.editable, ev) || text == "" {
		return nil
	}
	return e.applyNative(command.InsertText, text)
}

// Select places the selection on the first occurrence of text inside the
// editable region and reports whether it was found.
func (e *Editor) Select(text string) bool {
	if e.editable == nil || text == "" {
		return false
	}
	var found dom.Range
	var ok bool
	dom.Walk(e.editable, func(n *html.Node) bool {
		if ok {
			return false
		}
		if dom.IsText(n) {
			if i := strings.Index(n.Data, text); i >= 0 {
				found, ok = dom.Span(n, i, n, i+len(text)), true
				return false
			}
		}
		return true
	})
	if ok {
		e.doc.Selection().SetRange(found)
	}
	return ok
}

// ClickToolbar clicks the toolbar button for action and reports whether
// one was found.
func (e *Editor) ClickToolbar(action string) bool {
	if e.toolbar == nil {
		return false
	}
	btn, err := dom.QueryIn(e.toolbar, `button[data-action="`+action+`"]`)
	if err != nil || btn == nil {
		return false
	}
	e.doc.Click(btn)
	return true
}

// applyNative applies a command the way the host's own editing does: the
// change is announced through an input event rather than by the command.
func (e *Editor) applyNative(name, value string) error {
	if err := e.doc.Write(func() error {
		return e.exec.Apply(name, value)
	}); err != nil {
		return err
	}
	e.doc.Dispatch(e.editable, dom.NewEvent(dom.EventInput))
	return nil
}

func defaultAction(k *key.Event) (name, value string, ok bool) {
	if k == nil || k.Modifiers.HasCtrl() || k.Modifiers.HasAlt() || k.Modifiers.HasMeta() {
		return "", "", false
	}
	switch {
	case k.Is("Backspace"):
		return command.Delete, "", true
	case k.Is("Delete"):
		return command.ForwardDelete, "", true
	case uniseg.GraphemeClusterCount(k.Key) == 1:
		return command.InsertText, k.Key, true
	}
	return "", "", false
}
