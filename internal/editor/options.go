package editor

import (
	"github.com/benbjohnson/clock"
	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/command"
	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/key"
	"github.com/dshills/asteronote/internal/logging"
	"github.com/dshills/asteronote/internal/plugin"
)

// Defaults.
const (
	DefaultHeight      = 300
	DefaultPlaceholder = "Type something..."
	DefaultTabSize     = 4
	DefaultSelector    = "[data-asteronote]"
)

// DefaultToolbar is the toolbar used when none is configured.
var DefaultToolbar = []string{
	"bold", "italic", "underline", "strikethrough",
	"removeFormat",
	"list",
	"link",
}

// Options configures an editor. Start from DefaultOptions.
type Options struct {
	// Height, MinHeight and MaxHeight are pixel sizes of the editable
	// region. Zero leaves the dimension unset.
	Height    int
	MinHeight int
	MaxHeight int

	// Focus focuses the editor at the end of Init.
	Focus bool

	// Toolbar is the ordered list of toolbar actions. Use FlattenToolbar
	// for the legacy grouped layout.
	Toolbar []string

	// Placeholder is exposed as data-placeholder on the editable region.
	Placeholder string

	// Shortcuts enables keyboard shortcut dispatch.
	Shortcuts bool

	TabSize int

	Callbacks Callbacks

	// Plugins are mounted during Init in list order. Repeated classes
	// get instance names name, name_1, name_2 and so on.
	Plugins []plugin.Class

	// HistorySize caps the undo stack. Zero uses the history default; a
	// negative value disables history.
	HistorySize int
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Height:      DefaultHeight,
		Toolbar:     append([]string(nil), DefaultToolbar...),
		Placeholder: DefaultPlaceholder,
		Shortcuts:   true,
		TabSize:     DefaultTabSize,
	}
}

// Callbacks are lifecycle hooks. A panicking callback is logged and
// otherwise ignored.
type Callbacks struct {
	OnInit    func()
	OnChange  func(content string)
	OnFocus   func()
	OnBlur    func()
	OnKeydown func(ev *dom.Event)
	OnPaste   func(ev *dom.Event)
	OnDestroy func()
}

// ExecutorFactory builds the command executor for an editable region.
type ExecutorFactory func(doc *dom.Document, editable *html.Node) command.Executor

// Option configures construction-time collaborators.
type Option func(*Editor)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the clock used by history timers.
func WithClock(clk clock.Clock) Option {
	return func(e *Editor) {
		e.clock = clk
	}
}

// WithPlatform sets the platform used to read the primary shortcut
// modifier.
func WithPlatform(p key.Platform) Option {
	return func(e *Editor) {
		e.platform = p
	}
}

// WithExecutorFactory replaces the command executor.
func WithExecutorFactory(f ExecutorFactory) Option {
	return func(e *Editor) {
		if f != nil {
			e.newExecutor = f
		}
	}
}

// WithID sets the editor id instead of a generated one.
func WithID(id string) Option {
	return func(e *Editor) {
		if id != "" {
			e.id = id
		}
	}
}
