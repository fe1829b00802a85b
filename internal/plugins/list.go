package plugins

import (
	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/command"
	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/event"
	"github.com/dshills/asteronote/internal/plugin"
)

// List types.
const (
	ListUnordered = "ul"
	ListOrdered   = "ol"
)

// ListPlugin toggles bulleted and numbered lists. Inside a list item Tab
// indents and Shift+Tab outdents; Backspace at the start of an item
// outdents it, lifting a top-level item out of the list.
type ListPlugin struct {
	*plugin.Base
}

// List returns the list class.
func List() plugin.Class {
	return newClass(NameList, func(base *plugin.Base) plugin.Plugin {
		return &ListPlugin{Base: base}
	})
}

// Init adds the ul and ol buttons, the keyboard handling and the state
// sync.
func (p *ListPlugin) Init() error {
	buttons := []plugin.Button{
		{
			Name:     ListUnordered,
			Icon:     `<i class="ri-list-unordered"></i>`,
			Tooltip:  "Bulleted List",
			Callback: func(*dom.Event) { p.run(ListUnordered) },
		},
		{
			Name:     ListOrdered,
			Icon:     `<i class="ri-list-ordered"></i>`,
			Tooltip:  "Numbered List",
			Callback: func(*dom.Event) { p.run(ListOrdered) },
		},
	}
	for _, b := range buttons {
		if _, err := p.AddButton(b); err != nil {
			return err
		}
	}
	if _, err := p.On(event.TopicKeydown, p.handleKeydown); err != nil {
		return err
	}
	if err := watchSelection(p.Base, p.UpdateButtonState); err != nil {
		return err
	}
	p.UpdateButtonState()
	return nil
}

func (p *ListPlugin) run(kind string) {
	if err := p.Toggle(kind); err != nil {
		p.Logger().Debug("list toggle failed", "type", kind, "error", err.Error())
	}
}

// Current returns the type of the list holding the caret, or "".
func (p *ListPlugin) Current() string {
	switch {
	case p.QueryState(command.InsertUnorderedList):
		return ListUnordered
	case p.QueryState(command.InsertOrderedList):
		return ListOrdered
	}
	return ""
}

// Toggle applies a list of the given kind to the selected blocks. Applying
// the kind already in place removes the list; applying the other kind
// converts it and also emits plugin.list.type-changed.
func (p *ListPlugin) Toggle(kind string) error {
	cmd, topic := command.InsertUnorderedList, "unordered-list-toggled"
	if kind == ListOrdered {
		cmd, topic = command.InsertOrderedList, "ordered-list-toggled"
	} else {
		kind = ListUnordered
	}

	before := p.Current()
	if err := p.ExecCommand(cmd, ""); err != nil {
		return err
	}
	after := p.Current()
	p.UpdateButtonState()
	p.EmitEvent(topic, after == kind)
	if before != "" && after != "" && before != after {
		p.EmitEvent("type-changed", after)
	}
	return nil
}

// UpdateButtonState marks the button of the current list type active.
func (p *ListPlugin) UpdateButtonState() {
	cur := p.Current()
	p.SetButtonActive(ListUnordered, cur == ListUnordered)
	p.SetButtonActive(ListOrdered, cur == ListOrdered)
}

func (p *ListPlugin) handleKeydown(args ...any) error {
	if len(args) == 0 || !p.IsEnabled() {
		return nil
	}
	ev, ok := args[0].(*dom.Event)
	if !ok || ev.Key == nil || ev.DefaultPrevented() {
		return nil
	}
	mods := ev.Key.Modifiers
	if mods.HasCtrl() || mods.HasAlt() || mods.HasMeta() {
		return nil
	}

	switch {
	case ev.Key.Is("Tab"):
		if p.caretItem() == nil {
			return nil
		}
		ev.PreventDefault()
		if mods.HasShift() {
			return p.outdent()
		}
		if err := p.ExecCommand(command.Indent, ""); err != nil {
			return err
		}
		p.EmitEvent("indented")
	case ev.Key.Is("Backspace") && !mods.HasShift():
		if !p.caretAtItemStart() {
			return nil
		}
		ev.PreventDefault()
		return p.outdent()
	}
	return nil
}

func (p *ListPlugin) outdent() error {
	if err := p.ExecCommand(command.Outdent, ""); err != nil {
		return err
	}
	p.UpdateButtonState()
	p.EmitEvent("outdented")
	return nil
}

// caretItem returns the list item holding the selection start, or nil.
func (p *ListPlugin) caretItem() *html.Node {
	r, ok := p.SaveRange()
	if !ok {
		return nil
	}
	var li *html.Node
	p.Host().Document().Read(func() {
		li = dom.ClosestTag(r.StartContainer, p.Host().Editable(), "li")
	})
	return li
}

// caretAtItemStart reports whether a collapsed caret has no text before
// it inside its list item.
func (p *ListPlugin) caretAtItemStart() bool {
	r, ok := p.SaveRange()
	if !ok || !r.Collapsed() {
		return false
	}
	li := p.caretItem()
	if li == nil {
		return false
	}
	var before string
	p.Host().Document().Read(func() {
		before = dom.RangeText(dom.Span(li, 0, r.StartContainer, r.StartOffset))
	})
	return before == ""
}
