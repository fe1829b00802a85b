package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/dshills/asteronote/internal/key"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	opts := cfg.Options()
	if !opts.Shortcuts || opts.Height != 300 || opts.HistorySize != 100 {
		t.Errorf("Options() = %+v", opts)
	}
	if opts.Plugins != nil {
		t.Error("Options() should leave Plugins nil")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
		check  func(t *testing.T, c *Config)
	}{
		{
			name:   "toml",
			format: TOML,
			data: `
[editor]
height = 400
toolbar = ["bold", "link"]
placeholder = "Write"
platform = "mac"

[history]
size = 20

[log]
level = "debug"
format = "console"
`,
			check: func(t *testing.T, c *Config) {
				if c.Editor.Height != 400 || c.Editor.Placeholder != "Write" {
					t.Errorf("editor = %+v", c.Editor)
				}
				if strings.Join(c.Editor.Toolbar, ",") != "bold,link" {
					t.Errorf("toolbar = %v", c.Editor.Toolbar)
				}
				if c.History.Size != 20 || !c.History.Enabled {
					t.Errorf("history = %+v", c.History)
				}
				if c.Platform() != key.PlatformMac {
					t.Errorf("Platform() = %v", c.Platform())
				}
				if !c.Editor.Shortcuts {
					t.Error("unset shortcuts lost its default")
				}
			},
		},
		{
			name:   "yaml",
			format: YAML,
			data: `
editor:
  toolbar: [heading, separator, bold]
  tab_size: 2
history:
  enabled: false
plugins:
  disabled: [separator]
`,
			check: func(t *testing.T, c *Config) {
				if c.Editor.TabSize != 2 {
					t.Errorf("tab_size = %d", c.Editor.TabSize)
				}
				opts := c.Options()
				if opts.HistorySize != -1 {
					t.Errorf("HistorySize = %d, want -1", opts.HistorySize)
				}
				if strings.Join(opts.Toolbar, ",") != "heading,bold" {
					t.Errorf("Toolbar = %v", opts.Toolbar)
				}
			},
		},
		{
			name:   "empty yaml",
			format: YAML,
			data:   "",
			check: func(t *testing.T, c *Config) {
				if c.Editor.Height != Default().Editor.Height {
					t.Errorf("height = %d", c.Editor.Height)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		data    string
		wantErr error
		field   string
	}{
		{"bad toml", TOML, "[editor\nheight=", nil, ""},
		{"unknown toml key", TOML, "[editor]\ncolour = 1", nil, ""},
		{"unknown yaml key", YAML, "editor:\n  colour: 1", nil, ""},
		{"negative height", TOML, "[editor]\nheight = -1", ErrInvalidConfig, "editor.height"},
		{"bad platform", YAML, "editor:\n  platform: amiga", ErrInvalidConfig, "editor.platform"},
		{"bad level", TOML, "[log]\nlevel = \"loud\"", ErrInvalidConfig, "log.level"},
		{"zero history", TOML, "[history]\nsize = 0", ErrInvalidConfig, "history.size"},
		{"script extension", TOML, "[plugins]\nscripts = [\"a.py\"]", ErrInvalidConfig, "plugins.scripts[0]"},
		{"min above max", TOML, "[editor]\nmin_height = 300\nmax_height = 100", ErrInvalidConfig, "editor.max_height"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			if err == nil {
				t.Fatal("Parse succeeded")
			}
			if tt.wantErr == nil {
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Errorf("error %v is not a ParseError", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error %v does not wrap %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestLoadFS(t *testing.T) {
	fsys := FS(fstest.MapFS{
		"conf/editor.toml": {Data: []byte("[plugins]\nscripts = [\"lua/count.lua\", \"/abs/x.lua\"]\n")},
		"conf/bad.yml":     {Data: []byte("editor: [")},
		"conf/editor.json": {Data: []byte("{}")},
	})

	cfg, err := LoadFS(fsys, "conf/editor.toml")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join("conf", "lua", "count.lua"), "/abs/x.lua"}
	if strings.Join(cfg.Plugins.Scripts, ",") != strings.Join(want, ",") {
		t.Errorf("Scripts = %v, want %v", cfg.Plugins.Scripts, want)
	}

	_, err = LoadFS(fsys, "conf/bad.yml")
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Path != "conf/bad.yml" {
		t.Errorf("LoadFS(bad.yml) = %v", err)
	}

	if _, err := LoadFS(fsys, "conf/editor.json"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("LoadFS(json) = %v", err)
	}
	if _, err := LoadFS(fsys, "conf/missing.toml"); err == nil {
		t.Error("LoadFS(missing) succeeded")
	}

	cfg, err = LoadFS(fsys, "")
	if err != nil || cfg.Editor.Height != Default().Editor.Height {
		t.Errorf("LoadFS(\"\") = %+v, %v", cfg, err)
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "editor.toml")
	if err := os.WriteFile(path, []byte("[editor]\nheight = 100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, WithDebounce(0))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	type result struct {
		cfg *Config
		err error
	}
	results := make(chan result, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(c *Config, err error) { results <- result{c, err} })
	}()

	if err := os.WriteFile(path, []byte("[editor]\nheight = 250\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-results:
			if r.err != nil {
				// A reload can observe a truncated file mid-write.
				continue
			}
			if r.cfg.Editor.Height != 250 {
				continue
			}
			cancel()
			if err := <-done; !errors.Is(err, context.Canceled) {
				t.Errorf("Run() = %v", err)
			}
			return
		case <-deadline:
			cancel()
			t.Fatal("no reload observed")
		}
	}
}

func TestWatcherErrors(t *testing.T) {
	if _, err := NewWatcher("editor.ini"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("NewWatcher(ini) = %v", err)
	}

	dir := t.TempDir()
	w, err := NewWatcher(filepath.Join(dir, "editor.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if err := w.Run(context.Background(), func(*Config, error) {}); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Run after Close = %v", err)
	}
}
