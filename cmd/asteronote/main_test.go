package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const stampScript = `
return {
  name = "stamp",
  dependencies = { "underline" },
  init = function(p)
    p:add_button{ name = "stamp", on_click = function()
      p:set_content(p:content() .. "<p>stamped</p>")
    end }
  end,
}
`

func TestRender(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		input  string
		file   string
		script string
		want   string
	}{
		{"passthrough", "<p>hello world</p>", "", "", "<p>hello world</p>\n"},
		{"shortcut", "<p>hello world</p>", "", "select hello\nkey Ctrl+B\n", "<p><b>hello</b> world</p>\n"},
		{"exec and undo", "<p>hello world</p>", "", "# bold then take it back\nselect hello\nexec bold\nundo\n", "<p>hello world</p>\n"},
		{"undo then redo", "<p>hello world</p>", "", "select world\nexec italic\nundo\nredo\n", "<p>hello <i>world</i></p>\n"},
		{"typing", "<p>ab</p>", "", "select b\ntype cd\n", "<p>acd</p>\n"},
		{"markdown file", "", "notes.md", "", "<h1>Hi</h1><p><strong>x</strong></p>\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"render"}
			if tt.script != "" {
				args = append(args, "--script", writeFile(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".steps", tt.script))
			}
			if tt.file != "" {
				args = append(args, writeFile(t, dir, tt.file, "# Hi\n\n**x**\n"))
			}
			got, err := execute(t, tt.input, args...)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if got != tt.want {
				t.Errorf("render = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderMarkdownFlagAndOutputFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.html")
	stdout, err := execute(t, "- a\n- b\n", "render", "--markdown", "-o", out)
	if err != nil {
		t.Fatal(err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want nothing", stdout)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<ul><li>a</li><li>b</li></ul>\n" {
		t.Errorf("output file = %q", data)
	}
}

func TestRenderWithScriptPlugin(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "stamp.lua", stampScript)
	cfg := writeFile(t, dir, "editor.toml", `
[editor]
toolbar = ["bold"]

[plugins]
scripts = ["stamp.lua"]
`)
	script := writeFile(t, dir, "click.steps", "click stamp\n")

	got, err := execute(t, "<p>x</p>", "render", "-c", cfg, "-s", script)
	if err != nil {
		t.Fatal(err)
	}
	if got != "<p>x</p><p>stamped</p>\n" {
		t.Errorf("render = %q", got)
	}
}

func TestRenderErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.steps", "select hello\nfrobnicate\n")
	missing := writeFile(t, dir, "missing.steps", "select nowhere\n")
	noButton := writeFile(t, dir, "nobutton.steps", "click table\n")

	if _, err := execute(t, "<p>hello</p>", "render", "-s", bad); !errors.Is(err, ErrUnknownStep) {
		t.Errorf("unknown step: %v", err)
	} else if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error does not name the line: %v", err)
	}
	if _, err := execute(t, "<p>hello</p>", "render", "-s", missing); !errors.Is(err, ErrStepFailed) {
		t.Errorf("failed select: %v", err)
	}
	if _, err := execute(t, "<p>hello</p>", "render", "-s", noButton); !errors.Is(err, ErrStepFailed) {
		t.Errorf("missing button: %v", err)
	}
	if _, err := execute(t, "", "render", "--watch"); err == nil {
		t.Error("--watch without --config succeeded")
	}
	if _, err := execute(t, "", "render", "-c", filepath.Join(dir, "nope.toml")); err == nil {
		t.Error("missing config succeeded")
	}
}

func TestParseScript(t *testing.T) {
	steps, err := parseScript(strings.NewReader("\n# comment\nSELECT two words\nexec foreColor #ff0000\nundo\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := []step{
		{line: 3, verb: "select", arg: "two words"},
		{line: 4, verb: "exec", arg: "foreColor #ff0000"},
		{line: 5, verb: "undo"},
	}
	if len(steps) != len(want) {
		t.Fatalf("steps = %+v", steps)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("step %d = %+v, want %+v", i, steps[i], want[i])
		}
	}

	if _, err := parseScript(strings.NewReader("type\n")); err == nil {
		t.Error("type without text parsed")
	}
}

func TestPluginsCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "stamp.lua", stampScript)
	cfg := writeFile(t, dir, "editor.yaml", `
editor:
  toolbar: [bold, italic]
plugins:
  scripts: [stamp.lua]
`)

	out, err := execute(t, "", "plugins", "-c", cfg, "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var report pluginReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got := strings.Join(report.LoadOrder, ","); got != "bold,italic,underline,stamp" {
		t.Errorf("LoadOrder = %s", got)
	}

	var list, stamp *pluginInfo
	for i := range report.Plugins {
		switch report.Plugins[i].Name {
		case "list":
			list = &report.Plugins[i]
		case "stamp":
			stamp = &report.Plugins[i]
		}
	}
	if list == nil || strings.Join(list.Actions, ",") != "list,ol,ul" {
		t.Errorf("list = %+v", list)
	}
	if stamp == nil || !stamp.Script || strings.Join(stamp.Dependencies, ",") != "underline" {
		t.Errorf("stamp = %+v", stamp)
	}

	table, err := execute(t, "", "plugins")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(table, "Load order: ") || !strings.Contains(table, "horizontalRule") {
		t.Errorf("table output:\n%s", table)
	}
	if _, err := execute(t, "", "plugins", "--format", "xml"); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestStatsCommand(t *testing.T) {
	out, err := execute(t, "<p>one two</p><p>three</p>", "stats", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var st struct {
		Words int `json:"words"`
		Lines int `json:"lines"`
	}
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatal(err)
	}
	if st.Words != 3 || st.Lines != 2 {
		t.Errorf("stats = %+v", st)
	}

	out, err = execute(t, "Some *text* here.\n", "stats", "-m")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "words:      3") {
		t.Errorf("stats table:\n%s", out)
	}
}
