package editor

import (
	"fmt"

	"github.com/dshills/asteronote/internal/command"
	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/event"
	"github.com/dshills/asteronote/internal/plugin"
)

func (e *Editor) handleInput(*dom.Event) {
	e.updateOriginal()
	content := e.Content()
	e.callback("onChange", func() {
		if e.opts.Callbacks.OnChange != nil {
			e.opts.Callbacks.OnChange(content)
		}
	})
	e.bus.Emit(event.TopicChange, content)
}

func (e *Editor) handleFocus(*dom.Event) {
	dom.AddClass(e.wrapper, "asteronote-focused")
	e.callback("onFocus", func() {
		if e.opts.Callbacks.OnFocus != nil {
			e.opts.Callbacks.OnFocus()
		}
	})
	e.bus.Emit(event.TopicFocus)
}

func (e *Editor) handleBlur(*dom.Event) {
	dom.RemoveClass(e.wrapper, "asteronote-focused")
	e.updateOriginal()
	e.callback("onBlur", func() {
		if e.opts.Callbacks.OnBlur != nil {
			e.opts.Callbacks.OnBlur()
		}
	})
	e.bus.Emit(event.TopicBlur)
}

func (e *Editor) handleKeydown(ev *dom.Event) {
	e.callback("onKeydown", func() {
		if e.opts.Callbacks.OnKeydown != nil {
			e.opts.Callbacks.OnKeydown(ev)
		}
	})
	e.bus.Emit(event.TopicKeydown, ev)
	if e.opts.Shortcuts {
		e.handleShortcuts(ev)
	}
}

func (e *Editor) handleKeyup(ev *dom.Event) {
	e.bus.Emit(event.TopicKeyup, ev)
}

func (e *Editor) handleMouseup(ev *dom.Event) {
	e.bus.Emit(event.TopicMouseup, ev)
}

func (e *Editor) handlePaste(ev *dom.Event) {
	e.callback("onPaste", func() {
		if e.opts.Callbacks.OnPaste != nil {
			e.opts.Callbacks.OnPaste(ev)
		}
	})
	e.bus.Emit(event.TopicPaste, ev)
}

// handleShortcuts offers a key event to the mounted plugins in mount
// order and stops at the first one that handles it. Unhandled Tab inserts
// a tab character.
func (e *Editor) handleShortcuts(ev *dom.Event) {
	if ev.DefaultPrevented() || ev.Key == nil {
		return
	}
	for _, name := range e.order {
		if e.offerShortcut(e.plugins[name], ev) {
			return
		}
	}

	if ev.Key.Is("Tab") && !ev.Key.Modifiers.HasShift() {
		ev.PreventDefault()
		if err := e.ExecCommand(command.InsertText, "\t"); err != nil {
			e.logger.Warn("insert tab", "error", err.Error())
		}
	}
}

// offerShortcut runs p's shortcut handling, isolating panics.
func (e *Editor) offerShortcut(p plugin.Plugin, ev *dom.Event) (handled bool) {
	if p == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("shortcut handler panicked", fmt.Errorf("%v", r), "plugin", p.InstanceName())
			handled = true
		}
	}()
	return p.HandleShortcut(ev)
}

// handleSelectionChange forwards document selection changes whose anchor
// lies in this editor's editable region.
func (e *Editor) handleSelectionChange(*dom.Event) {
	anchor := e.doc.Selection().AnchorNode()
	if anchor == nil || !dom.Contains(e.editable, anchor) {
		return
	}
	e.bus.Emit(event.TopicSelectionChange)
}
