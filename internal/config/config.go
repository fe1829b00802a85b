package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/dshills/asteronote/internal/editor"
	"github.com/dshills/asteronote/internal/history"
	"github.com/dshills/asteronote/internal/key"
	"github.com/dshills/asteronote/internal/logging"
)

// Config is the full editor configuration.
type Config struct {
	Editor  EditorConfig  `toml:"editor" yaml:"editor"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Log     LogConfig     `toml:"log" yaml:"log"`
	Plugins PluginsConfig `toml:"plugins" yaml:"plugins"`
}

// EditorConfig holds the editor options.
type EditorConfig struct {
	Height      int      `toml:"height" yaml:"height"`
	MinHeight   int      `toml:"min_height" yaml:"min_height"`
	MaxHeight   int      `toml:"max_height" yaml:"max_height"`
	Focus       bool     `toml:"focus" yaml:"focus"`
	Toolbar     []string `toml:"toolbar" yaml:"toolbar"`
	Placeholder string   `toml:"placeholder" yaml:"placeholder"`
	Shortcuts   bool     `toml:"shortcuts" yaml:"shortcuts"`
	TabSize     int      `toml:"tab_size" yaml:"tab_size"`

	// Platform is "mac", "other" or empty for the running system.
	Platform string `toml:"platform" yaml:"platform"`
}

// HistoryConfig controls the undo history.
type HistoryConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
	Size    int  `toml:"size" yaml:"size"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is debug, info, warn, error or off.
	Level string `toml:"level" yaml:"level"`
	// Format is json or console.
	Format string `toml:"format" yaml:"format"`
}

// PluginsConfig selects extra and excluded plugins.
type PluginsConfig struct {
	// Scripts are Lua plugin files, relative to the config file.
	Scripts []string `toml:"scripts" yaml:"scripts"`
	// Disabled toolbar actions are dropped from the toolbar.
	Disabled []string `toml:"disabled" yaml:"disabled"`
}

// Log formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	opts := editor.DefaultOptions()
	return &Config{
		Editor: EditorConfig{
			Height:      opts.Height,
			Toolbar:     opts.Toolbar,
			Placeholder: opts.Placeholder,
			Shortcuts:   opts.Shortcuts,
			TabSize:     opts.TabSize,
		},
		History: HistoryConfig{
			Enabled: true,
			Size:    history.DefaultMaxSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: FormatJSON,
		},
	}
}

// Validate checks every setting and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, field, reason string) {
		if !ok {
			errs = append(errs, &FieldError{Field: field, Reason: reason})
		}
	}

	e := c.Editor
	check(e.Height >= 0, "editor.height", "must not be negative")
	check(e.MinHeight >= 0, "editor.min_height", "must not be negative")
	check(e.MaxHeight >= 0, "editor.max_height", "must not be negative")
	check(e.MaxHeight == 0 || e.MinHeight <= e.MaxHeight, "editor.max_height", "must not be below min_height")
	check(e.TabSize >= 0, "editor.tab_size", "must not be negative")
	switch strings.ToLower(e.Platform) {
	case "", "mac", "other":
	default:
		check(false, "editor.platform", fmt.Sprintf("unknown platform %q", e.Platform))
	}
	for i, action := range e.Toolbar {
		check(strings.TrimSpace(action) != "", fmt.Sprintf("editor.toolbar[%d]", i), "must not be empty")
	}

	check(!c.History.Enabled || c.History.Size > 0, "history.size", "must be positive")

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error", "off", "none", "disabled":
	default:
		check(false, "log.level", fmt.Sprintf("unknown level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "", FormatJSON, FormatConsole:
	default:
		check(false, "log.format", fmt.Sprintf("unknown format %q", c.Log.Format))
	}

	for i, s := range c.Plugins.Scripts {
		check(strings.HasSuffix(s, ".lua"), fmt.Sprintf("plugins.scripts[%d]", i), "must be a .lua file")
	}
	return errors.Join(errs...)
}

// Toolbar returns the configured toolbar without disabled actions.
func (c *Config) Toolbar() []string {
	out := make([]string, 0, len(c.Editor.Toolbar))
	for _, action := range c.Editor.Toolbar {
		if !slices.Contains(c.Plugins.Disabled, action) {
			out = append(out, action)
		}
	}
	return out
}

// Options converts the configuration to editor options. Plugins are left
// nil so the caller can derive them from the toolbar.
func (c *Config) Options() editor.Options {
	opts := editor.DefaultOptions()
	opts.Height = c.Editor.Height
	opts.MinHeight = c.Editor.MinHeight
	opts.MaxHeight = c.Editor.MaxHeight
	opts.Focus = c.Editor.Focus
	opts.Toolbar = c.Toolbar()
	opts.Placeholder = c.Editor.Placeholder
	opts.Shortcuts = c.Editor.Shortcuts
	opts.TabSize = c.Editor.TabSize
	opts.HistorySize = c.History.Size
	if !c.History.Enabled {
		opts.HistorySize = -1
	}
	return opts
}

// Platform returns the configured keyboard platform.
func (c *Config) Platform() key.Platform {
	switch strings.ToLower(c.Editor.Platform) {
	case "mac":
		return key.PlatformMac
	case "other":
		return key.PlatformOther
	}
	return key.CurrentPlatform()
}

// Logger builds the logger described by the log section.
func (c *Config) Logger() *logging.Logger {
	return logging.New(logging.Config{
		Level:   logging.ParseLevel(c.Log.Level),
		Output:  os.Stderr,
		Console: c.Log.Format == FormatConsole,
	})
}
