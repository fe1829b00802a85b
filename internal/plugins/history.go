package plugins

import (
	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/event"
	"github.com/dshills/asteronote/internal/history"
	"github.com/dshills/asteronote/internal/plugin"
)

// historyStep describes one direction through the undo history.
type historyStep struct {
	class     string
	icon      string
	tooltip   string
	shortcuts []string
	apply     func(h *history.History) error
	available func(h *history.History) bool
}

// HistoryPlugin exposes undo or redo as a button and shortcuts. The
// button is disabled whenever the step is not available.
type HistoryPlugin struct {
	*plugin.Base
	step historyStep
}

// Undo returns the undo class. Ctrl+Z.
func Undo() plugin.Class {
	return historyClass(historyStep{
		class:     NameUndo,
		icon:      `<i class="ri-arrow-go-back-line"></i>`,
		tooltip:   "Undo (Ctrl+Z)",
		shortcuts: []string{"Ctrl+Z"},
		apply:     (*history.History).Undo,
		available: (*history.History).CanUndo,
	})
}

// Redo returns the redo class. Ctrl+Y and Ctrl+Shift+Z.
func Redo() plugin.Class {
	return historyClass(historyStep{
		class:     NameRedo,
		icon:      `<i class="ri-arrow-go-forward-line"></i>`,
		tooltip:   "Redo (Ctrl+Y)",
		shortcuts: []string{"Ctrl+Y", "Ctrl+Shift+Z"},
		apply:     (*history.History).Redo,
		available: (*history.History).CanRedo,
	})
}

func historyClass(step historyStep) plugin.Class {
	return newClass(step.class, func(base *plugin.Base) plugin.Plugin {
		return &HistoryPlugin{Base: base, step: step}
	})
}

// Init adds the button and shortcuts and keeps the button's disabled
// state current.
func (p *HistoryPlugin) Init() error {
	run := func(*dom.Event) {
		if err := p.Execute(); err != nil {
			p.Logger().Debug(p.step.class+" failed", "error", err.Error())
		}
	}
	if _, err := p.AddButton(plugin.Button{
		Name:     p.step.class,
		Icon:     p.step.icon,
		Tooltip:  p.step.tooltip,
		Callback: run,
	}); err != nil {
		return err
	}
	for _, combo := range p.step.shortcuts {
		if err := p.AddShortcut(combo, run); err != nil {
			return err
		}
	}
	for _, topic := range []string{event.TopicChange, event.TopicKeyup} {
		if _, err := p.On(topic, func(...any) error {
			p.UpdateButtonState()
			return nil
		}); err != nil {
			return err
		}
	}
	p.UpdateButtonState()
	return nil
}

// Available reports whether the step can run.
func (p *HistoryPlugin) Available() bool {
	h := p.Host().History()
	return h != nil && p.step.available(h)
}

// Execute runs the step. On success it emits plugin.<class>.executed and
// editor.change.
func (p *HistoryPlugin) Execute() error {
	h := p.Host().History()
	if h == nil {
		return history.ErrClosed
	}
	if err := p.step.apply(h); err != nil {
		return err
	}
	p.UpdateButtonState()
	p.EmitEvent("executed")
	p.Host().Emit(event.TopicChange, p.Host().Content())
	return nil
}

// UpdateButtonState disables the button when the step is unavailable.
func (p *HistoryPlugin) UpdateButtonState() {
	p.SetButtonDisabled(p.step.class, !p.Available())
}
