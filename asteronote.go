// Package asteronote is a pluggable rich-text editor for headless HTML
// documents.
//
// New wires an editor.Editor with the stock plugins from the toolbar
// configuration:
//
//	doc, _ := dom.Parse(`<textarea id="body"></textarea>`)
//	ed, err := asteronote.NewFromSelector(doc, "#body", asteronote.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	if err := ed.Init(); err != nil {
//		return err
//	}
//	defer ed.Destroy()
//
// Options.Plugins takes precedence over the toolbar. Leave it nil to have
// the plugin list derived from Options.Toolbar.
package asteronote

import (
	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/editor"
	"github.com/dshills/asteronote/internal/plugin"
	"github.com/dshills/asteronote/internal/plugins"
)

// Re-exported editor types.
type (
	Editor  = editor.Editor
	Options = editor.Options
	Option  = editor.Option
)

// DefaultToolbar is the stock toolbar layout.
var DefaultToolbar = []string{
	plugins.NameHeading, plugins.NameSeparator,
	plugins.NameBold, plugins.NameItalic, plugins.NameUnderline, plugins.NameStrikethrough,
	plugins.NameHighlight, plugins.NameCode, plugins.NameSeparator,
	plugins.NameRemoveFormat, plugins.NameSeparator,
	plugins.NameList, plugins.NameSeparator,
	plugins.NameLink,
}

// DefaultOptions returns editor.DefaultOptions with the stock toolbar.
func DefaultOptions() Options {
	opts := editor.DefaultOptions()
	opts.Toolbar = append([]string(nil), DefaultToolbar...)
	return opts
}

// FlattenToolbar turns a grouped toolbar layout into a flat action list.
func FlattenToolbar(items []any) []string {
	return editor.FlattenToolbar(items)
}

// PluginsForToolbar maps toolbar actions to the stock plugin classes.
// An action repeated on the toolbar yields one class per occurrence, so
// each gets its own instance. Aliases of a class that is already present,
// such as ol after ul, are folded into it. Actions with no stock plugin
// are returned in unknown.
func PluginsForToolbar(actions []string) (classes []plugin.Class, unknown []string) {
	catalog := plugins.Catalog()
	have := make(map[string]bool)
	listed := make(map[string]bool)
	for _, action := range actions {
		c, ok := catalog[action]
		if !ok {
			unknown = append(unknown, action)
			continue
		}
		repeat := listed[action]
		listed[action] = true
		if have[c.Name] && !repeat {
			continue
		}
		have[c.Name] = true
		classes = append(classes, c)
	}
	return classes, unknown
}

// New creates an editor on target. When opts.Plugins is nil the plugin
// list is derived from opts.Toolbar; unknown actions are logged and left
// as empty toolbar slots.
func New(doc *dom.Document, target *html.Node, opts Options, options ...Option) (*Editor, error) {
	var unknown []string
	if opts.Plugins == nil {
		opts.Plugins, unknown = PluginsForToolbar(opts.Toolbar)
	}
	ed, err := editor.New(doc, target, opts, options...)
	if err != nil {
		return nil, err
	}
	for _, action := range unknown {
		ed.Logger().Warn("no plugin for toolbar action", "action", action)
	}
	return ed, nil
}

// NewFromSelector creates an editor on the first element matching
// selector.
func NewFromSelector(doc *dom.Document, selector string, opts Options, options ...Option) (*Editor, error) {
	if doc == nil {
		return nil, editor.ErrNilDocument
	}
	target := doc.Query(selector)
	if target == nil {
		return nil, editor.ErrTargetNotFound
	}
	return New(doc, target, opts, options...)
}

// InitAll creates and initialises an editor for every element matching
// selector, deriving plugins from the toolbar as New does.
func InitAll(doc *dom.Document, selector string, opts Options, options ...Option) ([]*Editor, error) {
	if opts.Plugins == nil {
		opts.Plugins, _ = PluginsForToolbar(opts.Toolbar)
	}
	return editor.InitAll(doc, selector, opts, options...)
}
