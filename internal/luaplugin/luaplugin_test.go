package luaplugin

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/editor"
	"github.com/dshills/asteronote/internal/event"
	"github.com/dshills/asteronote/internal/key"
	"github.com/dshills/asteronote/internal/plugin"
	"github.com/dshills/asteronote/internal/plugins"
)

const counterScript = `
local clicks = 0
return {
  name = "counter",
  dependencies = { "bold" },
  init = function(p)
    p:add_button{ name = "counter", tooltip = "Count", class = "btn-counter", on_click = function(ev)
      clicks = clicks + 1
      p:emit("clicked", clicks, ev.type)
    end }
    p:add_shortcut("Ctrl+Shift+B", function(ev)
      local ok, msg = p:exec("bold")
      p:set_active("counter", p:query_state("bold"))
      p:emit("bolded", ok, ev.key)
    end)
    p:on("editor.change", function(html)
      p:emit("seen", html)
    end)
  end,
  destroy = function(p)
    p:emit("bye", p.name)
  end,
}
`

func newEditor(t *testing.T, content string, classes ...plugin.Class) *editor.Editor {
	t.Helper()
	doc, err := dom.Parse(`<div id="t">` + content + `</div>`)
	if err != nil {
		t.Fatal(err)
	}
	opts := editor.DefaultOptions()
	opts.Plugins = classes
	ed, err := editor.NewFromSelector(doc, "#t", opts,
		editor.WithPlatform(key.PlatformOther),
		editor.WithClock(clock.NewMock()),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := ed.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return ed
}

func TestCompile(t *testing.T) {
	c, err := Compile("counter.lua", counterScript)
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "counter" {
		t.Errorf("Name = %q", c.Name)
	}
	if strings.Join(c.Dependencies, ",") != "bold" {
		t.Errorf("Dependencies = %v", c.Dependencies)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `return {`},
		{"not a table", `return 42`},
		{"no name", `return { init = function(p) end }`},
		{"no init", `return { name = "x" }`},
		{"bad destroy", `return { name = "x", init = function(p) end, destroy = 1 }`},
		{"bad dependencies", `return { name = "x", init = function(p) end, dependencies = { 1 } }`},
		{"runtime error", `error("boom")`},
		{"sandboxed", `local f = loadstring("return 1") return { name = "x", init = function(p) end }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(tt.name, tt.src); !errors.Is(err, ErrInvalidScript) {
				t.Errorf("Compile() = %v, want ErrInvalidScript", err)
			}
		})
	}
}

func TestScriptPlugin(t *testing.T) {
	class, err := Compile("counter.lua", counterScript)
	if err != nil {
		t.Fatal(err)
	}
	ed := newEditor(t, "<p>hello world</p>", class, plugins.Bold())

	if names := ed.PluginNames(); strings.Join(names, ",") != "bold,counter" {
		t.Fatalf("PluginNames() = %v", names)
	}

	var clicked, bolded, seen, bye [][]any
	sub := func(topic string, into *[][]any) {
		_, _ = ed.On(event.PluginTopic("counter", topic), func(args ...any) error {
			*into = append(*into, args)
			return nil
		})
	}
	sub("clicked", &clicked)
	sub("bolded", &bolded)
	sub("seen", &seen)
	sub("bye", &bye)

	if !ed.ClickToolbar("counter") || !ed.ClickToolbar("counter") {
		t.Fatal("counter button missing")
	}
	if len(clicked) != 2 || clicked[1][0] != int64(2) || clicked[1][1] != "click" {
		t.Errorf("clicked = %v", clicked)
	}
	btn := ed.Plugin("counter").(*ScriptPlugin).Button("counter")
	if !dom.HasClass(btn, "btn-counter") {
		t.Error("button class not applied")
	}

	if !ed.Select("hello") {
		t.Fatal("hello not found")
	}
	if err := ed.PressKey(key.NewEvent("B", key.ModCtrl|key.ModShift)); err != nil {
		t.Fatal(err)
	}
	if got := ed.Content(); got != "<p><b>hello</b> world</p>" {
		t.Errorf("Content() = %q", got)
	}
	if len(bolded) != 1 || bolded[0][0] != true || bolded[0][1] != "B" {
		t.Errorf("bolded = %v", bolded)
	}
	if !dom.HasClass(btn, "active") {
		t.Error("set_active did not mark the button")
	}
	if len(seen) == 0 || seen[len(seen)-1][0] != "<p><b>hello</b> world</p>" {
		t.Errorf("seen = %v", seen)
	}

	if err := ed.Destroy(); err != nil {
		t.Fatal(err)
	}
	if len(bye) != 1 || bye[0][0] != "counter" {
		t.Errorf("bye = %v", bye)
	}
}

func TestSetContentAndDisable(t *testing.T) {
	src := `
return {
  name = "resetter",
  init = function(p)
    p:add_button{ name = "reset", on_click = function()
      p:set_content("<p>fresh</p>")
    end }
    p:add_shortcut("Ctrl+Shift+X", function()
      p:disable()
    end)
  end,
}
`
	class, err := Compile("resetter.lua", src)
	if err != nil {
		t.Fatal(err)
	}
	ed := newEditor(t, "<p>old</p>", class)
	defer ed.Destroy()

	var changes []string
	_, _ = ed.On(event.TopicChange, func(args ...any) error {
		changes = append(changes, args[0].(string))
		return nil
	})

	ed.ClickToolbar("reset")
	if got := ed.Content(); got != "<p>fresh</p>" {
		t.Fatalf("Content() = %q", got)
	}
	if len(changes) != 1 {
		t.Errorf("changes = %v", changes)
	}

	p := ed.Plugin("resetter").(*ScriptPlugin)
	if err := ed.PressKey(key.NewEvent("X", key.ModCtrl|key.ModShift)); err != nil {
		t.Fatal(err)
	}
	if p.IsEnabled() {
		t.Fatal("script did not disable itself")
	}
	if err := ed.SetContent("<p>old</p>"); err != nil {
		t.Fatal(err)
	}
	ed.ClickToolbar("reset")
	if got := ed.Content(); got != "<p>old</p>" {
		t.Errorf("disabled plugin ran: %q", got)
	}
}

func TestCallbackErrorsAreIsolated(t *testing.T) {
	src := `
return {
  name = "faulty",
  init = function(p)
    p:add_button{ name = "faulty", on_click = function() error("click failed") end }
    p:on("editor.change", function() error("handler failed") end)
  end,
}
`
	class, err := Compile("faulty.lua", src)
	if err != nil {
		t.Fatal(err)
	}
	ed := newEditor(t, "<p>x</p>", class, plugins.Bold())
	defer ed.Destroy()

	ed.ClickToolbar("faulty")
	if !ed.Select("x") {
		t.Fatal("x not found")
	}
	if err := ed.ExecCommand("bold", ""); err != nil {
		t.Fatalf("ExecCommand: %v", err)
	}
	if got := ed.Content(); got != "<p><b>x</b></p>" {
		t.Errorf("Content() = %q", got)
	}
}

func TestInitErrorFailsMount(t *testing.T) {
	class, err := Compile("broken.lua", `return { name = "broken", init = function(p) error("nope") end }`)
	if err != nil {
		t.Fatal(err)
	}
	doc, _ := dom.Parse(`<div id="t"></div>`)
	opts := editor.DefaultOptions()
	opts.Plugins = []plugin.Class{class}
	ed, err := editor.NewFromSelector(doc, "#t", opts, editor.WithClock(clock.NewMock()))
	if err != nil {
		t.Fatal(err)
	}
	if err := ed.Init(); err == nil || !strings.Contains(err.Error(), "nope") {
		t.Errorf("Init() = %v", err)
	}
}

func TestTimeout(t *testing.T) {
	class, err := Compile("spin.lua", `
return {
  name = "spin",
  init = function(p)
    p:add_button{ name = "spin", on_click = function() while true do end end }
  end,
}
`, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	ed := newEditor(t, "", class)
	defer ed.Destroy()

	start := time.Now()
	ed.ClickToolbar("spin")
	if time.Since(start) > 5*time.Second {
		t.Error("timeout not enforced")
	}

	p := ed.Plugin("spin").(*ScriptPlugin)
	if _, err := p.st.call(p.def.RawGetString("init"), p.handle); err != nil {
		t.Errorf("state unusable after a timeout: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "counter.lua")
	if err := os.WriteFile(path, []byte(counterScript), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "counter" {
		t.Errorf("Name = %q", c.Name)
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.lua")); err == nil {
		t.Error("LoadFile(missing) succeeded")
	}
}
