package plugin

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dshills/asteronote/internal/logging"
)

// Registry stores plugin classes and manages the instances it creates.
type Registry struct {
	mu sync.Mutex

	// Registered classes by name, plus registration order.
	classes map[string]Class
	order   []string

	// Live instances by instance name, plus initialisation order.
	instances map[string]Plugin
	initOrder []string

	logger *logging.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the registry's logger.
func WithLogger(l *logging.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		classes:   make(map[string]Class),
		instances: make(map[string]Plugin),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a class. Registering a name twice logs a warning and keeps
// the first class.
func (r *Registry) Register(c Class) error {
	if err := c.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.classes[c.Name]; exists {
		r.logger.Warn("plugin already registered", "plugin", c.Name)
		return nil
	}
	c.Dependencies = append([]string(nil), c.Dependencies...)
	r.classes[c.Name] = c
	r.order = append(r.order, c.Name)
	return nil
}

// Get returns the class registered under name.
func (r *Registry) Get(name string) (Class, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classes[name]
	return c, ok
}

// Has reports whether a class is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns registered class names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// ResolveLoadOrder returns names plus their transitive dependencies in an
// order where every dependency precedes its dependents. Unrelated plugins
// keep the order of a depth-first walk over names.
func (r *Registry) ResolveLoadOrder(names []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveLocked(names)
}

func (r *Registry) resolveLocked(names []string) ([]string, error) {
	var (
		resolved []string
		done     = make(map[string]bool)
		visiting = make(map[string]bool)
		path     []string
	)

	var visit func(name, dependent string) error
	visit = func(name, dependent string) error {
		if done[name] {
			return nil
		}
		if visiting[name] {
			cycle := append(cycleFrom(path, name), name)
			return fmt.Errorf("%w: %s", ErrCyclicDependency, strings.Join(cycle, " -> "))
		}
		c, ok := r.classes[name]
		if !ok {
			if dependent == "" {
				return fmt.Errorf("%w: %q", ErrPluginNotFound, name)
			}
			return fmt.Errorf("%w: %q required by %q", ErrDependencyNotFound, name, dependent)
		}

		visiting[name] = true
		path = append(path, name)
		for _, dep := range c.Dependencies {
			if err := visit(dep, name); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		delete(visiting, name)

		done[name] = true
		resolved = append(resolved, name)
		return nil
	}

	for _, name := range names {
		if err := visit(name, ""); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// cycleFrom returns the tail of path starting at name.
func cycleFrom(path []string, name string) []string {
	for i, p := range path {
		if p == name {
			return append([]string(nil), path[i:]...)
		}
	}
	return append([]string(nil), path...)
}

// InitializePlugins creates and initialises the named classes and their
// dependencies in load order. An empty list means every registered class.
// Classes that already have a live instance are skipped. The first failure
// is logged and returned; instances initialised before it stay live.
// The returned slice holds the instances for the resolved names in load
// order, including ones that were already live.
func (r *Registry) InitializePlugins(host Host, names []string) ([]Plugin, error) {
	if host == nil {
		return nil, ErrNilHost
	}

	r.mu.Lock()
	if len(names) == 0 {
		names = append([]string(nil), r.order...)
	}
	ordered, err := r.resolveLocked(names)
	r.mu.Unlock()
	if err != nil {
		r.logger.Error("resolve plugin load order", err)
		return nil, err
	}

	for _, name := range ordered {
		if r.IsInitialized(name) {
			continue
		}
		c, _ := r.Get(name)

		p, err := c.New(host, name)
		if err == nil && p == nil {
			err = fmt.Errorf("%w: constructor for %q returned nil", ErrInvalidPlugin, name)
		}
		if err == nil {
			err = Start(p)
		}
		if err != nil {
			if p != nil {
				_ = Stop(p)
			}
			err = fmt.Errorf("initialize plugin %q: %w", name, err)
			r.logger.Error("plugin initialization failed", err, "plugin", name)
			return nil, err
		}

		r.mu.Lock()
		r.instances[name] = p
		r.initOrder = append(r.initOrder, name)
		r.mu.Unlock()
		r.logger.Debug("plugin initialized", "plugin", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Plugin, 0, len(ordered))
	for _, name := range ordered {
		if p, ok := r.instances[name]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Track adopts an instance created outside InitializePlugins so that
// DestroyAll tears it down in order with the rest.
func (r *Registry) Track(p Plugin) error {
	if p == nil {
		return fmt.Errorf("%w: nil instance", ErrInvalidPlugin)
	}
	name := p.InstanceName()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.instances[name]; exists {
		return fmt.Errorf("%w: instance %q already tracked", ErrInvalidPlugin, name)
	}
	r.instances[name] = p
	r.initOrder = append(r.initOrder, name)
	return nil
}

// Untrack stops following the instance mounted under name and reports
// whether it was tracked. The instance itself is left as it is.
func (r *Registry) Untrack(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.instances[name]; !ok {
		return false
	}
	delete(r.instances, name)
	r.initOrder = slices.DeleteFunc(r.initOrder, func(n string) bool { return n == name })
	return true
}

// DestroyAll destroys every live instance in reverse initialisation order.
// Failures are logged and teardown continues; the joined errors are
// returned for reporting only.
func (r *Registry) DestroyAll() error {
	r.mu.Lock()
	names := make([]string, len(r.initOrder))
	for i, name := range r.initOrder {
		names[len(r.initOrder)-1-i] = name
	}
	instances := r.instances
	r.instances = make(map[string]Plugin)
	r.initOrder = nil
	r.mu.Unlock()

	var errs []error
	for _, name := range names {
		if err := Stop(instances[name]); err != nil {
			r.logger.Error("plugin destroy failed", err, "plugin", name)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Instance returns the live instance mounted under name, or nil.
func (r *Registry) Instance(name string) Plugin {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.instances[name]
}

// IsInitialized reports whether name has a live instance.
func (r *Registry) IsInitialized(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.instances[name]
	return ok
}

// Initialized returns live instance names in initialisation order.
func (r *Registry) Initialized() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.initOrder...)
}
