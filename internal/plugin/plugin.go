package plugin

import (
	"fmt"
	"runtime/debug"
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/event"
	"github.com/dshills/asteronote/internal/history"
	"github.com/dshills/asteronote/internal/key"
	"github.com/dshills/asteronote/internal/logging"
)

// Plugin is a mounted plugin instance.
type Plugin interface {
	// Name returns the class name.
	Name() string

	// InstanceName returns the unique name this instance is mounted under.
	InstanceName() string

	// Init sets the plugin up. It is called once.
	Init() error

	// Destroy releases everything Init registered.
	Destroy() error

	// HandleShortcut runs the shortcut matching ev, if any, and reports
	// whether it consumed the event.
	HandleShortcut(ev *dom.Event) bool
}

// Enabler is implemented by plugins with an enabled gate.
type Enabler interface {
	Enable()
	Disable()
	IsEnabled() bool
}

// Class describes a plugin type.
type Class struct {
	// Name identifies the class in the registry and in event topics.
	Name string

	// Dependencies name classes that must be initialised first.
	Dependencies []string

	// New constructs an instance mounted under instance.
	New func(host Host, instance string) (Plugin, error)
}

// Validate checks that the class can be registered.
func (c Class) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: class has no name", ErrInvalidPlugin)
	}
	if c.New == nil {
		return fmt.Errorf("%w: class %q has no constructor", ErrInvalidPlugin, c.Name)
	}
	for _, dep := range c.Dependencies {
		if strings.TrimSpace(dep) == "" {
			return fmt.Errorf("%w: class %q has an empty dependency", ErrInvalidPlugin, c.Name)
		}
	}
	return nil
}

// Host is what the editor exposes to its plugins.
type Host interface {
	// Bus access.
	On(topic string, fn event.Handler) (event.Subscription, error)
	Off(sub event.Subscription) bool
	Emit(topic string, args ...any) bool

	// Document returns the document the editor lives in.
	Document() *dom.Document
	// Editable returns the editable region, or nil before Init.
	Editable() *html.Node
	// Toolbar returns the toolbar container, or nil before Init.
	Toolbar() *html.Node
	// ToolbarSlot returns the container configured for action, or nil.
	ToolbarSlot(action string) *html.Node

	Content() string
	SetContent(html string) error

	// ExecCommand makes sure the selection is usable, applies the command
	// and announces the change and a selection refresh.
	ExecCommand(name, value string) error
	QueryCommandState(name string) bool
	QueryCommandValue(name string) string

	Focus()
	PlaceCaretAtEnd()
	EnsureFocusAndRange()

	// History returns the undo history, or nil when disabled.
	History() *history.History

	// Plugin returns a mounted instance by instance name.
	Plugin(name string) Plugin
	// PluginNames returns mounted instance names in mount order.
	PluginNames() []string

	Logger() *logging.Logger
	Platform() key.Platform
}

// lifecycle is implemented by *Base and promoted to embedding plugins.
type lifecycle interface {
	State() State
	setState(State)
}

// StateOf returns p's lifecycle state. Plugins not built on Base report
// StateConstructed.
func StateOf(p Plugin) State {
	if lc, ok := p.(lifecycle); ok {
		return lc.State()
	}
	return StateConstructed
}

// Start initialises p. Starting an initialised instance is a no-op; a
// destroyed one cannot be started again. A panic in Init is returned as an
// error.
func Start(p Plugin) (err error) {
	if p == nil {
		return fmt.Errorf("%w: nil instance", ErrInvalidPlugin)
	}
	lc, tracked := p.(lifecycle)
	if tracked {
		switch lc.State() {
		case StateInitialized:
			return nil
		case StateDestroyed:
			return fmt.Errorf("plugin %q: %w", p.InstanceName(), ErrPluginDestroyed)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin %q: init panic: %v\n%s", p.InstanceName(), r, debug.Stack())
		}
	}()
	if err := p.Init(); err != nil {
		return fmt.Errorf("plugin %q: %w", p.InstanceName(), err)
	}
	if tracked {
		lc.setState(StateInitialized)
	}
	return nil
}

// Stop destroys p. Stopping a destroyed instance is a no-op. A panic in
// Destroy is returned as an error and the instance still counts as
// destroyed.
func Stop(p Plugin) (err error) {
	if p == nil {
		return nil
	}
	lc, tracked := p.(lifecycle)
	if tracked && lc.State() == StateDestroyed {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin %q: destroy panic: %v", p.InstanceName(), r)
		}
		if tracked {
			lc.setState(StateDestroyed)
		}
	}()
	if err := p.Destroy(); err != nil {
		return fmt.Errorf("plugin %q: %w", p.InstanceName(), err)
	}
	return nil
}
