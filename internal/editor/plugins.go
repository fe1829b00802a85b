package editor

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/dshills/asteronote/internal/plugin"
)

// mountPlugins registers the distinct classes, checks their dependency
// graph and mounts one instance per list entry in list order.
// Dependencies that are not in the list are mounted first, in load order.
func (e *Editor) mountPlugins(classes []plugin.Class) error {
	var names []string
	listed := make(map[string]bool)
	for _, c := range classes {
		if err := e.registry.Register(c); err != nil {
			return err
		}
		if !listed[c.Name] {
			listed[c.Name] = true
			names = append(names, c.Name)
		}
	}

	ordered, err := e.registry.ResolveLoadOrder(names)
	if err != nil {
		return err
	}
	for _, name := range ordered {
		if listed[name] || e.counts[name] > 0 {
			continue
		}
		c, _ := e.registry.Get(name)
		if err := e.mount(c); err != nil {
			return err
		}
	}

	for _, c := range classes {
		// Mount through the registered class so a duplicate registration
		// with a different constructor cannot slip in.
		rc, _ := e.registry.Get(c.Name)
		if err := e.mount(rc); err != nil {
			return err
		}
	}
	e.logger.Debug("plugins mounted", "count", len(e.order))
	return nil
}

// mount creates, initialises and tracks one instance of c.
func (e *Editor) mount(c plugin.Class) error {
	instance := e.instanceName(c.Name)

	p, err := c.New(e, instance)
	if err == nil && p == nil {
		err = fmt.Errorf("%w: constructor for %q returned nil", plugin.ErrInvalidPlugin, c.Name)
	}
	if err == nil {
		err = plugin.Start(p)
	}
	if err == nil {
		err = e.registry.Track(p)
	}
	if err != nil {
		if p != nil {
			_ = plugin.Stop(p)
		}
		err = fmt.Errorf("mount plugin %q: %w", instance, err)
		e.logger.Error("plugin mount failed", err, "plugin", instance)
		return err
	}

	e.counts[c.Name]++
	e.plugins[instance] = p
	e.order = append(e.order, instance)
	return nil
}

// instanceName returns name for the first instance of a class and
// name_1, name_2 for later ones.
func (e *Editor) instanceName(name string) string {
	n := e.counts[name]
	for {
		candidate := name
		if n > 0 {
			candidate = name + "_" + strconv.Itoa(n)
		}
		if _, taken := e.plugins[candidate]; !taken {
			return candidate
		}
		n++
	}
}

// RegisterPlugin registers and mounts a class on a live editor. A class
// that already has a mounted instance is left alone.
func (e *Editor) RegisterPlugin(c plugin.Class) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	if err := e.registry.Register(c); err != nil {
		return err
	}
	if e.counts[c.Name] > 0 {
		return nil
	}
	return e.mountPlugins([]plugin.Class{c})
}

// UnregisterPlugin destroys the instance mounted under instance and
// removes it from the editor. Other instances of the same class stay
// mounted.
func (e *Editor) UnregisterPlugin(instance string) error {
	p, ok := e.plugins[instance]
	if !ok {
		return fmt.Errorf("%w: instance %q", plugin.ErrPluginNotFound, instance)
	}
	e.registry.Untrack(instance)
	delete(e.plugins, instance)
	e.order = slices.DeleteFunc(e.order, func(n string) bool { return n == instance })
	if e.counts[p.Name()] > 0 {
		e.counts[p.Name()]--
	}
	if err := plugin.Stop(p); err != nil {
		e.logger.Error("plugin destroy failed", err, "plugin", instance)
		return err
	}
	e.logger.Debug("plugin unregistered", "plugin", instance)
	return nil
}

// Plugin returns the instance mounted under name, or nil.
func (e *Editor) Plugin(name string) plugin.Plugin {
	return e.plugins[name]
}

// HasPlugin reports whether an instance is mounted under name.
func (e *Editor) HasPlugin(name string) bool {
	_, ok := e.plugins[name]
	return ok
}

// PluginNames returns mounted instance names in mount order.
func (e *Editor) PluginNames() []string {
	return append([]string(nil), e.order...)
}
