package plugins

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/command"
	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/event"
	"github.com/dshills/asteronote/internal/plugin"
)

// RemoveFormatPlugin strips inline formatting from the selection. With a
// collapsed caret it strips presentational attributes (class, style and
// data-*) from every element in the editable region instead.
type RemoveFormatPlugin struct {
	*plugin.Base
}

// RemoveFormat returns the remove-format class. Ctrl+\.
func RemoveFormat() plugin.Class {
	return newClass(NameRemoveFormat, func(base *plugin.Base) plugin.Plugin {
		return &RemoveFormatPlugin{Base: base}
	})
}

// Init adds the button and shortcut.
func (p *RemoveFormatPlugin) Init() error {
	run := func(*dom.Event) {
		if err := p.Remove(); err != nil {
			p.Logger().Debug("remove format failed", "error", err.Error())
		}
	}
	if _, err := p.AddButton(plugin.Button{
		Name:     "removeFormat",
		Icon:     `<i class="ri-format-clear"></i>`,
		Tooltip:  `Remove Format (Ctrl+\)`,
		Callback: run,
	}); err != nil {
		return err
	}
	return p.AddShortcut(`Ctrl+\`, run)
}

// Remove clears formatting and emits plugin.removeFormat.removed.
func (p *RemoveFormatPlugin) Remove() error {
	r, ok := p.SaveRange()
	if ok && !r.Collapsed() {
		if err := p.ExecCommand(command.RemoveFormat, ""); err != nil {
			return err
		}
		p.EmitEvent("removed")
		return nil
	}

	host := p.Host()
	editable := host.Editable()
	if editable == nil {
		return nil
	}
	if err := host.Document().Write(func() error {
		stripAttributes(editable)
		return nil
	}); err != nil {
		return err
	}
	host.Focus()
	p.EmitEvent("removed")
	host.Emit(event.TopicChange, host.Content())
	return nil
}

// stripAttributes removes class, style and data-* attributes from every
// element below root. root itself is left alone.
func stripAttributes(root *html.Node) {
	dom.Walk(root, func(n *html.Node) bool {
		if n == root || n.Type != html.ElementNode {
			return true
		}
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			if a.Key == "class" || a.Key == "style" || strings.HasPrefix(a.Key, "data-") {
				continue
			}
			kept = append(kept, a)
		}
		n.Attr = kept
		return true
	})
}
