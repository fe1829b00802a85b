// Package plugins provides the stock editor plugins.
//
// Every plugin embeds *plugin.Base and is exposed as a plugin.Class
// constructor. Catalog maps toolbar action names to those classes so a
// toolbar configuration can be turned into a plugin list.
//
// Plugins report what they did on the bus under plugin.<class>.<event>.
// Event arguments are positional: toggled carries the new active state,
// link inserted carries the URL and text, video inserted carries the URL
// and provider, heading-changed carries the level and align carries the
// alignment value.
package plugins

import (
	"sort"

	"github.com/dshills/asteronote/internal/event"
	"github.com/dshills/asteronote/internal/plugin"
)

// Class names.
const (
	NameBold           = "bold"
	NameItalic         = "italic"
	NameUnderline      = "underline"
	NameStrikethrough  = "strikethrough"
	NameSubscript      = "subscript"
	NameSuperscript    = "superscript"
	NameCode           = "code"
	NameHighlight      = "highlight"
	NameRemoveFormat   = "removeFormat"
	NameHeading        = "heading"
	NameBlockquote     = "blockquote"
	NameAlign          = "align"
	NameHorizontalRule = "horizontalRule"
	NameList           = "list"
	NameLink           = "link"
	NameTable          = "table"
	NameVideo          = "video"
	NameCodeView       = "codeview"
	NameUndo           = "undo"
	NameRedo           = "redo"
	NameSeparator      = "separator"
)

// Catalog returns the stock classes keyed by toolbar action name. A few
// actions are aliases: "hr" for horizontalRule, "ul" and "ol" for list
// and "createLink" for link.
func Catalog() map[string]plugin.Class {
	c := map[string]plugin.Class{
		NameBold:           Bold(),
		NameItalic:         Italic(),
		NameUnderline:      Underline(),
		NameStrikethrough:  Strikethrough(),
		NameSubscript:      Subscript(),
		NameSuperscript:    Superscript(),
		NameCode:           Code(),
		NameHighlight:      Highlight(),
		NameRemoveFormat:   RemoveFormat(),
		NameHeading:        Heading(),
		NameBlockquote:     Blockquote(),
		NameAlign:          Align(),
		NameHorizontalRule: HorizontalRule(),
		NameList:           List(),
		NameLink:           Link(nil),
		NameTable:          Table(),
		NameVideo:          Video(nil),
		NameCodeView:       CodeView(),
		NameUndo:           Undo(),
		NameRedo:           Redo(),
		NameSeparator:      Separator(),
	}
	c["hr"] = c[NameHorizontalRule]
	c["ul"] = c[NameList]
	c["ol"] = c[NameList]
	c["createLink"] = c[NameLink]
	return c
}

// Actions returns the catalog's action names, sorted.
func Actions() []string {
	c := Catalog()
	out := make([]string, 0, len(c))
	for name := range c {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// selectionTopics are the bus topics after which toolbar state is
// re-queried.
var selectionTopics = []string{
	event.TopicKeyup,
	event.TopicMouseup,
	event.TopicSelectionChange,
}

// newClass builds a dependency-free class whose instances are created by
// build over a fresh Base.
func newClass(name string, build func(base *plugin.Base) plugin.Plugin, deps ...string) plugin.Class {
	return plugin.Class{
		Name:         name,
		Dependencies: deps,
		New: func(host plugin.Host, instance string) (plugin.Plugin, error) {
			base, err := plugin.NewBase(host, name, instance)
			if err != nil {
				return nil, err
			}
			return build(base), nil
		},
	}
}

// watchSelection calls fn after every selection-affecting bus topic.
func watchSelection(b *plugin.Base, fn func()) error {
	for _, topic := range selectionTopics {
		if _, err := b.On(topic, func(...any) error {
			fn()
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}
