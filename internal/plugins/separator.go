package plugins

import (
	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/plugin"
)

// SeparatorPlugin draws a vertical divider in the toolbar. It is commonly
// mounted several times.
type SeparatorPlugin struct {
	*plugin.Base
	el *html.Node
}

// Separator returns the separator class.
func Separator() plugin.Class {
	return newClass(NameSeparator, func(base *plugin.Base) plugin.Plugin {
		return &SeparatorPlugin{Base: base}
	})
}

// Init appends the divider to the toolbar.
func (p *SeparatorPlugin) Init() error {
	toolbar := p.Host().Toolbar()
	if toolbar == nil {
		return nil
	}
	el := dom.NewElement("span")
	dom.AddClass(el, "divider-vertical", "my-1")
	dom.SetAttr(el, "role", "separator")
	dom.SetAttr(el, "aria-orientation", "vertical")
	dom.SetAttr(el, "data-plugin", p.InstanceName())
	toolbar.AppendChild(el)
	p.el = el
	return nil
}

// Element returns the divider, or nil.
func (p *SeparatorPlugin) Element() *html.Node { return p.el }

// Destroy removes the divider.
func (p *SeparatorPlugin) Destroy() error {
	if p.el != nil {
		dom.Remove(p.el)
		p.el = nil
	}
	return p.Base.Destroy()
}
