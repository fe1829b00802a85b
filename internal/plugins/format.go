package plugins

import (
	"github.com/dshills/asteronote/internal/command"
	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/event"
	"github.com/dshills/asteronote/internal/plugin"
)

// formatSpec describes an inline format toggle.
type formatSpec struct {
	class    string
	button   string
	icon     string
	tooltip  string
	command  string
	shortcut string
	value    string
}

// Format toggles one inline format at the selection and keeps its button's
// active state in sync with the caret.
type Format struct {
	*plugin.Base
	spec formatSpec
}

func formatClass(spec formatSpec) plugin.Class {
	return newClass(spec.class, func(base *plugin.Base) plugin.Plugin {
		return &Format{Base: base, spec: spec}
	})
}

// Bold toggles <b>. Ctrl+B.
func Bold() plugin.Class {
	return formatClass(formatSpec{
		class:    NameBold,
		button:   "bold",
		icon:     `<i class="ri-bold"></i>`,
		tooltip:  "Bold (Ctrl+B)",
		command:  command.Bold,
		shortcut: "Ctrl+B",
	})
}

// Italic toggles <i>. Ctrl+I.
func Italic() plugin.Class {
	return formatClass(formatSpec{
		class:    NameItalic,
		button:   "italic",
		icon:     `<i class="ri-italic"></i>`,
		tooltip:  "Italic (Ctrl+I)",
		command:  command.Italic,
		shortcut: "Ctrl+I",
	})
}

// Underline toggles <u>. Ctrl+U.
func Underline() plugin.Class {
	return formatClass(formatSpec{
		class:    NameUnderline,
		button:   "underline",
		icon:     `<i class="ri-underline"></i>`,
		tooltip:  "Underline (Ctrl+U)",
		command:  command.Underline,
		shortcut: "Ctrl+U",
	})
}

// Strikethrough toggles <s>. Ctrl+Shift+S.
func Strikethrough() plugin.Class {
	return formatClass(formatSpec{
		class:    NameStrikethrough,
		button:   "strikethrough",
		icon:     `<i class="ri-strikethrough"></i>`,
		tooltip:  "Strikethrough (Ctrl+Shift+S)",
		command:  command.StrikeThrough,
		shortcut: "Ctrl+Shift+S",
	})
}

// Subscript toggles <sub>. Ctrl+=.
func Subscript() plugin.Class {
	return formatClass(formatSpec{
		class:    NameSubscript,
		button:   "subscript",
		icon:     `<i class="ri-subscript-2"></i>`,
		tooltip:  "Subscript (Ctrl+=)",
		command:  command.Subscript,
		shortcut: "Ctrl+=",
	})
}

// Superscript toggles <sup>. Ctrl+Shift+=.
func Superscript() plugin.Class {
	return formatClass(formatSpec{
		class:    NameSuperscript,
		button:   "superscript",
		icon:     `<i class="ri-superscript-2"></i>`,
		tooltip:  "Superscript (Ctrl+Shift+=)",
		command:  command.Superscript,
		shortcut: "Ctrl+Shift+=",
	})
}

// Code toggles inline <code>. It has no shortcut.
func Code() plugin.Class {
	return formatClass(formatSpec{
		class:   NameCode,
		button:  "code",
		icon:    `<i class="ri-code-line"></i>`,
		tooltip: "Inline Code",
		command: command.Code,
	})
}

// Highlight toggles <mark> with the default colour. Ctrl+H.
func Highlight() plugin.Class {
	return HighlightColor("")
}

// HighlightColor toggles <mark> with a background colour. Any CSS hex
// colour is accepted; an empty colour leaves the mark unstyled.
func HighlightColor(color string) plugin.Class {
	return formatClass(formatSpec{
		class:    NameHighlight,
		button:   "highlight",
		icon:     `<i class="ri-mark-pen-line"></i>`,
		tooltip:  "Highlight (Ctrl+H)",
		command:  command.Highlight,
		shortcut: "Ctrl+H",
		value:    color,
	})
}

// Init adds the button, the shortcut and the state sync.
func (p *Format) Init() error {
	run := func(*dom.Event) { p.run() }
	if _, err := p.AddButton(plugin.Button{
		Name:     p.spec.button,
		Icon:     p.spec.icon,
		Tooltip:  p.spec.tooltip,
		Callback: run,
	}); err != nil {
		return err
	}
	if p.spec.shortcut != "" {
		if err := p.AddShortcut(p.spec.shortcut, run); err != nil {
			return err
		}
	}
	if err := watchSelection(p.Base, p.UpdateButtonState); err != nil {
		return err
	}
	p.UpdateButtonState()
	return nil
}

func (p *Format) run() {
	if err := p.Toggle(); err != nil {
		p.Logger().Debug("toggle failed", "command", p.spec.command, "error", err.Error())
	}
}

// Toggle applies or removes the format, refreshes the button and emits
// plugin.<class>.toggled with the resulting state.
func (p *Format) Toggle() error {
	if err := p.ExecCommand(p.spec.command, p.spec.value); err != nil {
		return err
	}
	p.UpdateButtonState()
	p.EmitEvent(event.PluginToggled, p.IsActive())
	return nil
}

// IsActive reports whether the format covers the selection.
func (p *Format) IsActive() bool {
	return p.QueryState(p.spec.command)
}

// UpdateButtonState mirrors IsActive onto the button.
func (p *Format) UpdateButtonState() {
	p.SetButtonActive(p.spec.button, p.IsActive())
}
