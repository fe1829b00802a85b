package plugin

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/event"
)

// Button configures a toolbar button.
type Button struct {
	Name      string
	Icon      string // markup placed inside the button
	Tooltip   string
	ClassName string
	Callback  func(ev *dom.Event)
}

type button struct {
	cfg      Button
	element  *html.Node
	listener dom.ListenerID
}

// AddButton registers a toolbar button and appends its element to the
// toolbar slot configured for its name, or the toolbar itself. Adding a
// name twice replaces the earlier button. The element is nil while the
// host has no toolbar.
//
// A click prevents the default action, makes sure the selection sits in
// the editable region, runs the callback if the plugin is enabled and
// then emits editor.selectionchange.
func (b *Base) AddButton(cfg Button) (*html.Node, error) {
	if strings.TrimSpace(cfg.Name) == "" || cfg.Callback == nil {
		return nil, ErrInvalidButton
	}
	b.RemoveButton(cfg.Name)

	entry := &button{cfg: cfg}
	container := b.host.ToolbarSlot(cfg.Name)
	if container == nil {
		container = b.host.Toolbar()
	}
	if container != nil {
		el, err := b.buttonElement(cfg)
		if err != nil {
			return nil, err
		}
		container.AppendChild(el)
		entry.element = el
		entry.listener = b.host.Document().AddEventListener(el, dom.EventClick, b.clickHandler(cfg.Callback))
	}

	b.mu.Lock()
	b.buttons[cfg.Name] = entry
	b.buttonOrder = append(b.buttonOrder, cfg.Name)
	b.mu.Unlock()
	return entry.element, nil
}

func (b *Base) buttonElement(cfg Button) (*html.Node, error) {
	el := dom.NewElement("button")
	dom.SetAttr(el, "type", "button")
	dom.AddClass(el, "btn", "asteronote-btn", "asteronote-btn-"+cfg.Name)
	dom.AddClass(el, strings.Fields(cfg.ClassName)...)
	dom.SetAttr(el, "data-plugin", b.class)
	dom.SetAttr(el, "data-action", cfg.Name)
	if cfg.Tooltip != "" {
		dom.SetAttr(el, "title", cfg.Tooltip)
		dom.SetAttr(el, "aria-label", cfg.Tooltip)
	}
	if cfg.Icon != "" {
		if err := dom.SetInnerHTML(el, cfg.Icon); err != nil {
			return nil, fmt.Errorf("button %q icon: %w", cfg.Name, err)
		}
	}
	return el, nil
}

func (b *Base) clickHandler(fn func(ev *dom.Event)) dom.Listener {
	return func(ev *dom.Event) {
		ev.PreventDefault()
		b.host.EnsureFocusAndRange()
		if !b.live() {
			return
		}
		fn(ev)
		b.host.Emit(event.TopicSelectionChange)
	}
}

// RemoveButton unregisters a button and detaches its element.
func (b *Base) RemoveButton(name string) bool {
	b.mu.Lock()
	entry, ok := b.buttons[name]
	if ok {
		delete(b.buttons, name)
		for i, n := range b.buttonOrder {
			if n == name {
				b.buttonOrder = append(b.buttonOrder[:i], b.buttonOrder[i+1:]...)
				break
			}
		}
	}
	b.mu.Unlock()
	if !ok {
		return false
	}

	if entry.element != nil {
		b.host.Document().RemoveEventListener(entry.listener)
		dom.Remove(entry.element)
	}
	return true
}

// Button returns the element of a registered button, or nil.
func (b *Base) Button(name string) *html.Node {
	b.mu.Lock()
	defer b.mu.Unlock()
	if entry, ok := b.buttons[name]; ok {
		return entry.element
	}
	return nil
}

// ButtonNames returns registered button names in registration order.
func (b *Base) ButtonNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.buttonOrder...)
}

// SetButtonActive marks a button as reflecting an active state.
func (b *Base) SetButtonActive(name string, active bool) {
	el := b.Button(name)
	if el == nil {
		return
	}
	dom.ToggleClass(el, "active", active)
	dom.SetAttr(el, "aria-pressed", fmt.Sprint(active))
}

// SetButtonDisabled greys a button out.
func (b *Base) SetButtonDisabled(name string, disabled bool) {
	el := b.Button(name)
	if el == nil {
		return
	}
	dom.ToggleClass(el, "disabled", disabled)
	if disabled {
		dom.SetAttr(el, "disabled", "true")
	} else {
		dom.RemoveAttr(el, "disabled")
	}
}
