package plugins

import (
	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/event"
	"github.com/dshills/asteronote/internal/plugin"
)

// CodeView class names.
const (
	CodeViewClass      = "asteronote-code-view"
	CodeViewInputClass = "asteronote-code-view-input"
)

// buttonOwner is implemented by plugins built on plugin.Base.
type buttonOwner interface {
	ButtonNames() []string
	SetButtonDisabled(name string, disabled bool)
}

// CodeViewPlugin swaps the editable region for a raw HTML source view.
// While the source view is open every other plugin is disabled and its
// buttons are greyed out.
type CodeViewPlugin struct {
	*plugin.Base

	active    bool
	container *html.Node
	preview   *html.Node
	input     *html.Node
	listener  dom.ListenerID
	disabled  []plugin.Plugin
}

// CodeView returns the code view class.
func CodeView() plugin.Class {
	return newClass(NameCodeView, func(base *plugin.Base) plugin.Plugin {
		return &CodeViewPlugin{Base: base}
	})
}

// Init adds the button.
func (p *CodeViewPlugin) Init() error {
	_, err := p.AddButton(plugin.Button{
		Name:    "codeview",
		Icon:    `<i class="ri-code-s-slash-line"></i>`,
		Tooltip: "Code View",
		Callback: func(*dom.Event) {
			if err := p.Toggle(); err != nil {
				p.Logger().Warn("code view toggle failed", "error", err.Error())
			}
		},
	})
	return err
}

// Destroy closes the source view before releasing the plugin.
func (p *CodeViewPlugin) Destroy() error {
	var err error
	if p.active {
		err = p.Deactivate()
	}
	if berr := p.Base.Destroy(); err == nil {
		err = berr
	}
	return err
}

// IsActive reports whether the source view is open.
func (p *CodeViewPlugin) IsActive() bool { return p.active }

// Toggle opens or closes the source view.
func (p *CodeViewPlugin) Toggle() error {
	if p.active {
		return p.Deactivate()
	}
	return p.Activate()
}

// Activate opens the source view over the current content and emits
// plugin.codeview.toggled with true.
func (p *CodeViewPlugin) Activate() error {
	if p.active {
		return nil
	}
	host := p.Host()
	editable := host.Editable()
	if editable == nil {
		return nil
	}
	source := host.Content()

	container := dom.NewElement("div")
	dom.AddClass(container, CodeViewClass)
	pre := dom.NewElement("pre")
	dom.AddClass(pre, "language-html")
	preview := dom.NewElement("code")
	dom.AddClass(preview, "language-html")
	dom.SetTextContent(preview, source)
	pre.AppendChild(preview)
	input := dom.NewElement("textarea")
	dom.AddClass(input, CodeViewInputClass)
	dom.SetAttr(input, "spellcheck", "false")
	dom.SetValue(input, source)
	container.AppendChild(pre)
	container.AppendChild(input)

	if err := host.Document().Write(func() error {
		dom.InsertBefore(editable, container)
		dom.SetStyle(editable, "display", "none")
		return nil
	}); err != nil {
		return err
	}

	p.container, p.preview, p.input = container, preview, input
	p.listener = host.Document().AddEventListener(input, dom.EventInput, func(*dom.Event) {
		dom.SetTextContent(p.preview, dom.Value(p.input))
	})
	p.active = true
	p.disableOthers()
	p.SetButtonActive("codeview", true)

	p.EmitEvent(event.PluginToggled, true)
	host.Emit(event.TopicSelectionChange)
	return nil
}

// Source returns the text of the source view, or "" when it is closed.
func (p *CodeViewPlugin) Source() string {
	if !p.active {
		return ""
	}
	return dom.Value(p.input)
}

// SetSource replaces the text of the open source view as if typed.
func (p *CodeViewPlugin) SetSource(src string) {
	if !p.active {
		return
	}
	dom.SetValue(p.input, src)
	p.Host().Document().Dispatch(p.input, dom.NewEvent(dom.EventInput))
}

// Deactivate writes the source view back into the editable region,
// closes it and emits plugin.codeview.toggled with false followed by
// editor.change.
func (p *CodeViewPlugin) Deactivate() error {
	if !p.active {
		return nil
	}
	host := p.Host()
	source := dom.Value(p.input)

	host.Document().RemoveEventListener(p.listener)
	container, editable := p.container, host.Editable()
	if err := host.Document().Write(func() error {
		dom.Remove(container)
		dom.SetStyle(editable, "display", "")
		return nil
	}); err != nil {
		return err
	}
	p.container, p.preview, p.input = nil, nil, nil
	p.active = false
	p.enableOthers()
	p.SetButtonActive("codeview", false)

	err := host.SetContent(source)
	p.EmitEvent(event.PluginToggled, false)
	host.Emit(event.TopicChange, host.Content())
	host.Focus()
	return err
}

func (p *CodeViewPlugin) disableOthers() {
	host := p.Host()
	for _, name := range host.PluginNames() {
		other := host.Plugin(name)
		if other == nil || name == p.InstanceName() {
			continue
		}
		en, ok := other.(plugin.Enabler)
		if !ok || !en.IsEnabled() {
			continue
		}
		en.Disable()
		setButtonsDisabled(other, true)
		p.disabled = append(p.disabled, other)
	}
}

func (p *CodeViewPlugin) enableOthers() {
	for _, other := range p.disabled {
		if plugin.StateOf(other) == plugin.StateDestroyed {
			continue
		}
		other.(plugin.Enabler).Enable()
		setButtonsDisabled(other, false)
	}
	p.disabled = nil
}

func setButtonsDisabled(pl plugin.Plugin, disabled bool) {
	owner, ok := pl.(buttonOwner)
	if !ok {
		return
	}
	for _, name := range owner.ButtonNames() {
		owner.SetButtonDisabled(name, disabled)
	}
}
