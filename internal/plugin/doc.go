// Package plugin provides the plugin registry and the base every editor
// plugin builds on.
//
// A plugin type is described by a Class: an explicit name, the names of the
// plugins it depends on and a constructor. The Registry stores classes,
// resolves a dependency-respecting initialisation order and tears instances
// down in reverse order:
//
//	reg := plugin.NewRegistry(plugin.WithLogger(log))
//	_ = reg.Register(plugins.BoldClass)
//	instances, err := reg.InitializePlugins(host, []string{"bold"})
//
// # Base
//
// Concrete plugins embed *Base, which carries the capability set the editor
// relies on:
//
//   - lifecycle: Init (must be overridden), Destroy (unregisters buttons,
//     shortcuts and bus subscriptions);
//   - toolbar buttons whose click handler makes sure the selection sits in
//     the editable region, runs the callback only while the plugin is
//     enabled and then announces a selection refresh;
//   - keyboard shortcuts in canonical "Ctrl+Shift+Alt+KEY" form;
//   - selection capture and restore;
//   - guarded command execution through the Host.
//
// # Lifecycle
//
// Instances move constructed → initialized → destroyed. Destroyed is
// terminal. Start and Stop drive the transitions; the Registry and the
// editor use them instead of calling Init and Destroy directly.
package plugin
