package editor

import (
	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/command"
	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/event"
	"github.com/dshills/asteronote/internal/history"
	"github.com/dshills/asteronote/internal/key"
	"github.com/dshills/asteronote/internal/logging"
	"github.com/dshills/asteronote/internal/plugin"
)

// Editor is the controller for one editing surface.
type Editor struct {
	id     string
	doc    *dom.Document
	target *html.Node
	opts   Options

	logger      *logging.Logger
	clock       clock.Clock
	platform    key.Platform
	newExecutor ExecutorFactory

	bus      *event.Emitter
	registry *plugin.Registry
	history  *history.History
	exec     command.Executor

	// Scaffold
	wrapper  *html.Node
	toolbar  *html.Node
	editable *html.Node
	actions  []string
	slots    map[string]*html.Node

	// Native listeners attached by Init.
	listeners []dom.ListenerID

	// Mounted plugin instances by instance name, plus mount order.
	plugins map[string]plugin.Plugin
	order   []string
	counts  map[string]int

	targetDisplay string
	initialized   bool
	destroyed     bool
}

// New creates an editor over target. The scaffold is built by Init.
func New(doc *dom.Document, target *html.Node, opts Options, options ...Option) (*Editor, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if target == nil {
		return nil, ErrTargetNotFound
	}

	e := &Editor{
		id:       uuid.NewString(),
		doc:      doc,
		target:   target,
		opts:     opts,
		logger:   logging.Nop(),
		platform: key.CurrentPlatform(),
		plugins:  make(map[string]plugin.Plugin),
		counts:   make(map[string]int),
		slots:    make(map[string]*html.Node),
	}
	e.opts.Toolbar = append([]string(nil), opts.Toolbar...)
	e.opts.Plugins = append([]plugin.Class(nil), opts.Plugins...)
	for _, opt := range options {
		opt(e)
	}
	if e.clock == nil {
		e.clock = clock.New()
	}
	e.logger = e.logger.WithComponent("editor").WithField("editor", e.id)
	if e.newExecutor == nil {
		log := e.logger.WithComponent("command")
		e.newExecutor = func(doc *dom.Document, editable *html.Node) command.Executor {
			return command.NewDocumentExecutor(doc, editable, command.WithLogger(log))
		}
	}

	e.bus = event.New(event.WithLogger(e.logger.WithComponent("bus")))
	e.registry = plugin.NewRegistry(plugin.WithLogger(e.logger.WithComponent("plugins")))
	return e, nil
}

// NewFromSelector creates an editor over the first element matching
// selector.
func NewFromSelector(doc *dom.Document, selector string, opts Options, options ...Option) (*Editor, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	target := doc.Query(selector)
	if target == nil {
		return nil, ErrTargetNotFound
	}
	return New(doc, target, opts, options...)
}

// ID returns the editor's unique id.
func (e *Editor) ID() string { return e.id }

// Target returns the element the editor was created over.
func (e *Editor) Target() *html.Node { return e.target }

// Wrapper returns the scaffold root, or nil before Init.
func (e *Editor) Wrapper() *html.Node { return e.wrapper }

// Document returns the document the editor lives in.
func (e *Editor) Document() *dom.Document { return e.doc }

// Editable returns the editable region, or nil before Init.
func (e *Editor) Editable() *html.Node { return e.editable }

// Toolbar returns the toolbar container, or nil before Init.
func (e *Editor) Toolbar() *html.Node { return e.toolbar }

// ToolbarSlot returns the container for a configured toolbar action, or
// nil if the action is not on the toolbar.
func (e *Editor) ToolbarSlot(action string) *html.Node {
	return e.slots[action]
}

// ToolbarActions returns the configured toolbar actions in order.
func (e *Editor) ToolbarActions() []string {
	return append([]string(nil), e.opts.Toolbar...)
}

// Options returns a copy of the editor's options.
func (e *Editor) Options() Options {
	o := e.opts
	o.Toolbar = append([]string(nil), e.opts.Toolbar...)
	o.Plugins = append([]plugin.Class(nil), e.opts.Plugins...)
	return o
}

// IsInitialized reports whether Init has completed and Destroy has not run.
func (e *Editor) IsInitialized() bool { return e.initialized }

// Logger returns the editor's logger.
func (e *Editor) Logger() *logging.Logger { return e.logger }

// Platform returns the shortcut platform.
func (e *Editor) Platform() key.Platform { return e.platform }

// History returns the undo history, or nil before Init or when disabled.
func (e *Editor) History() *history.History { return e.history }

// Registry returns the plugin registry.
func (e *Editor) Registry() *plugin.Registry { return e.registry }

// Bus returns the editor's event bus.
func (e *Editor) Bus() *event.Emitter { return e.bus }

// On subscribes fn to topic on the editor bus.
func (e *Editor) On(topic string, fn event.Handler) (event.Subscription, error) {
	return e.bus.On(topic, fn)
}

// Once subscribes fn for a single emission.
func (e *Editor) Once(topic string, fn event.Handler) (event.Subscription, error) {
	return e.bus.Once(topic, fn)
}

// Off removes a subscription.
func (e *Editor) Off(sub event.Subscription) bool {
	return e.bus.Off(sub)
}

// Emit publishes topic on the editor bus.
func (e *Editor) Emit(topic string, args ...any) bool {
	return e.bus.Emit(topic, args...)
}

var _ plugin.Host = (*Editor)(nil)
