package plugin

import "errors"

// Plugin system errors.
var (
	// ErrInvalidPlugin is returned when a class or instance fails validation.
	ErrInvalidPlugin = errors.New("invalid plugin")

	// ErrNilHost is returned when a plugin is constructed without a host.
	ErrNilHost = errors.New("plugin requires a host")

	// ErrPluginNotFound is returned when a requested plugin is not registered.
	ErrPluginNotFound = errors.New("plugin not registered")

	// ErrDependencyNotFound is returned when a required dependency is missing.
	ErrDependencyNotFound = errors.New("plugin dependency not found")

	// ErrCyclicDependency is returned when plugins have circular dependencies.
	ErrCyclicDependency = errors.New("cyclic plugin dependency detected")

	// ErrInitNotImplemented is returned by Base.Init; concrete plugins must
	// provide their own Init.
	ErrInitNotImplemented = errors.New("plugin must implement Init")

	// ErrInvalidButton is returned when a button has no name or callback.
	ErrInvalidButton = errors.New("button must have a name and callback")

	// ErrPluginDestroyed is returned when a destroyed plugin is used.
	ErrPluginDestroyed = errors.New("plugin is destroyed")
)

// ErrInvalidShortcut is returned when a shortcut has no handler.
var ErrInvalidShortcut = errors.New("shortcut must have a handler")
