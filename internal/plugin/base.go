package plugin

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dshills/asteronote/internal/event"
	"github.com/dshills/asteronote/internal/logging"
)

// Base implements the capability set shared by every plugin. Embed *Base
// and override Init; plugins that override Destroy must call Base.Destroy.
type Base struct {
	mu sync.Mutex

	host     Host
	class    string
	instance string
	logger   *logging.Logger

	state   State
	enabled bool

	buttons     map[string]*button
	buttonOrder []string
	shortcuts   map[string]ShortcutFunc
	subs        []event.Subscription
}

// NewBase creates the base for an instance of class mounted under
// instance. An empty instance name defaults to the class name.
func NewBase(host Host, class, instance string) (*Base, error) {
	if host == nil {
		return nil, ErrNilHost
	}
	if strings.TrimSpace(class) == "" {
		return nil, fmt.Errorf("%w: empty class name", ErrInvalidPlugin)
	}
	if instance == "" {
		instance = class
	}
	return &Base{
		host:      host,
		class:     class,
		instance:  instance,
		logger:    host.Logger().WithField("plugin", instance),
		enabled:   true,
		buttons:   make(map[string]*button),
		shortcuts: make(map[string]ShortcutFunc),
	}, nil
}

// Host returns the editor the plugin is mounted on.
func (b *Base) Host() Host { return b.host }

// Name returns the class name.
func (b *Base) Name() string { return b.class }

// InstanceName returns the name the instance is mounted under.
func (b *Base) InstanceName() string { return b.instance }

// Logger returns the plugin's logger.
func (b *Base) Logger() *logging.Logger { return b.logger }

// State returns the lifecycle state.
func (b *Base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Base) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

// Init must be overridden.
func (b *Base) Init() error {
	return ErrInitNotImplemented
}

// Destroy unregisters every button, shortcut and bus subscription the
// instance registered.
func (b *Base) Destroy() error {
	for _, name := range b.ButtonNames() {
		b.RemoveButton(name)
	}

	b.mu.Lock()
	b.shortcuts = make(map[string]ShortcutFunc)
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	for _, sub := range subs {
		b.host.Off(sub)
	}
	return nil
}

// Enable opens the enabled gate and emits plugin.<class>.enabled with the
// instance name.
func (b *Base) Enable() {
	b.mu.Lock()
	b.enabled = true
	b.mu.Unlock()
	b.host.Emit(event.PluginTopic(b.class, event.PluginEnabled), b.instance)
}

// Disable closes the enabled gate and emits plugin.<class>.disabled with
// the instance name.
// Buttons stay in place; their callbacks and the plugin's shortcuts stop
// running.
func (b *Base) Disable() {
	b.mu.Lock()
	b.enabled = false
	b.mu.Unlock()
	b.host.Emit(event.PluginTopic(b.class, event.PluginDisabled), b.instance)
}

// IsEnabled reports whether the enabled gate is open.
func (b *Base) IsEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

// live reports whether callbacks may run.
func (b *Base) live() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled && b.state != StateDestroyed
}

// On subscribes fn to topic for the lifetime of the instance.
func (b *Base) On(topic string, fn event.Handler) (event.Subscription, error) {
	sub, err := b.host.On(topic, fn)
	if err != nil {
		return sub, err
	}
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub, nil
}

// Off removes a subscription made with On.
func (b *Base) Off(sub event.Subscription) bool {
	b.mu.Lock()
	for i, s := range b.subs {
		if s.ID() == sub.ID() {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			break
		}
	}
	b.mu.Unlock()
	return b.host.Off(sub)
}

// EmitEvent emits plugin.<class>.<name>.
func (b *Base) EmitEvent(name string, args ...any) bool {
	return b.host.Emit(event.PluginTopic(b.class, name), args...)
}

// ExecCommand runs a rich-text command through the host.
func (b *Base) ExecCommand(name, value string) error {
	if b.State() == StateDestroyed {
		return fmt.Errorf("plugin %q: %w", b.instance, ErrPluginDestroyed)
	}
	return b.host.ExecCommand(name, value)
}

// QueryState reports whether the command is active at the selection.
func (b *Base) QueryState(name string) bool {
	return b.host.QueryCommandState(name)
}

// QueryValue returns the command's value at the selection.
func (b *Base) QueryValue(name string) string {
	return b.host.QueryCommandValue(name)
}
