package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"

	"github.com/dshills/asteronote"
	"github.com/dshills/asteronote/internal/config"
	"github.com/dshills/asteronote/internal/content"
	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/editor"
	"github.com/dshills/asteronote/internal/history"
	"github.com/dshills/asteronote/internal/logging"
	"github.com/dshills/asteronote/internal/luaplugin"
	"github.com/dshills/asteronote/internal/plugin"
	"github.com/dshills/asteronote/internal/plugins"
)

// targetID is the id of the textarea the headless editor mounts on.
const targetID = "asteronote"

// setup loads the configuration and builds the logger for a command.
func (g *globalFlags) setup(cmd *cobra.Command) (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, g.logger(cmd, cfg), nil
}

func (g *globalFlags) logger(cmd *cobra.Command, cfg *config.Config) *logging.Logger {
	level := cfg.Log.Level
	if g.logLevel != "" {
		level = g.logLevel
	}
	return logging.New(logging.Config{
		Level:   logging.ParseLevel(level),
		Output:  cmd.ErrOrStderr(),
		Console: cfg.Log.Format == config.FormatConsole,
	})
}

// pluginClasses returns the toolbar's stock plugins followed by the
// configured Lua plugins. Stock plugins a script depends on are added when
// the toolbar does not already provide them.
func pluginClasses(cfg *config.Config, log *logging.Logger) ([]plugin.Class, error) {
	classes, unknown := asteronote.PluginsForToolbar(cfg.Toolbar())
	for _, action := range unknown {
		log.Warn("no plugin for toolbar action", "action", action)
	}

	have := make(map[string]bool, len(classes))
	for _, c := range classes {
		have[c.Name] = true
	}
	catalog := plugins.Catalog()

	var scripts []plugin.Class
	for _, path := range cfg.Plugins.Scripts {
		c, err := luaplugin.LoadFile(path)
		if err != nil {
			return nil, err
		}
		if slices.Contains(cfg.Plugins.Disabled, c.Name) {
			log.Debug("script plugin disabled", "plugin", c.Name)
			continue
		}
		for _, dep := range c.Dependencies {
			if have[dep] {
				continue
			}
			if dc, ok := catalog[dep]; ok {
				classes = append(classes, dc)
				have[dep] = true
			}
		}
		have[c.Name] = true
		scripts = append(scripts, c)
	}
	return append(classes, scripts...), nil
}

// session is a headless editor driven by a mock clock. Deferred work such
// as paste snapshots and the history suppression window runs when the
// session settles.
type session struct {
	ed  *editor.Editor
	clk *clock.Mock
}

// settle runs every timer due within the history windows.
func (s *session) settle() {
	s.clk.Add(history.PasteDelay + history.SuppressWindow)
}

// close writes the content back to the target and tears the editor down.
func (s *session) close() error {
	return s.ed.Destroy()
}

// newSession mounts an initialised editor on a detached textarea holding
// markup.
func newSession(cfg *config.Config, log *logging.Logger, markup string) (*session, error) {
	classes, err := pluginClasses(cfg, log)
	if err != nil {
		return nil, err
	}
	doc, err := dom.Parse(`<textarea id="` + targetID + `"></textarea>`)
	if err != nil {
		return nil, err
	}
	if err := doc.Write(func() error {
		dom.SetValue(doc.ElementByID(targetID), markup)
		return nil
	}); err != nil {
		return nil, err
	}

	opts := cfg.Options()
	opts.Plugins = classes
	clk := clock.NewMock()
	ed, err := asteronote.NewFromSelector(doc, "#"+targetID, opts,
		editor.WithLogger(log),
		editor.WithPlatform(cfg.Platform()),
		editor.WithClock(clk),
	)
	if err != nil {
		return nil, err
	}
	if err := ed.Init(); err != nil {
		return nil, err
	}
	return &session{ed: ed, clk: clk}, nil
}

// readInput reads path, or stdin when path is empty or "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// isMarkdownPath reports whether path has a Markdown extension.
func isMarkdownPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// loadMarkup reads input and converts it from Markdown when asked to or
// when the file extension says so. Markup is trimmed of surrounding
// whitespace.
func loadMarkup(cmd *cobra.Command, path string, markdown bool) (string, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return "", err
	}
	if markdown || isMarkdownPath(path) {
		return content.FromMarkdown(data)
	}
	return strings.TrimSpace(string(data)), nil
}
