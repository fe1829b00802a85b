package plugin

import (
	"errors"
	"reflect"
	"testing"

	"golang.org/x/net/html"

	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/event"
	"github.com/dshills/asteronote/internal/history"
	"github.com/dshills/asteronote/internal/key"
	"github.com/dshills/asteronote/internal/logging"
)

type fakeHost struct {
	bus      *event.Emitter
	doc      *dom.Document
	editable *html.Node
	toolbar  *html.Node

	execs   []string
	ensures int
}

func newFakeHost(t *testing.T) *fakeHost {
	t.Helper()
	doc, err := dom.Parse(`<div id="toolbar"></div><div id="ed"><p>hello</p></div>`)
	if err != nil {
		t.Fatal(err)
	}
	return &fakeHost{
		bus:      event.New(),
		doc:      doc,
		editable: doc.ElementByID("ed"),
		toolbar:  doc.ElementByID("toolbar"),
	}
}

func (h *fakeHost) On(topic string, fn event.Handler) (event.Subscription, error) {
	return h.bus.On(topic, fn)
}
func (h *fakeHost) Off(sub event.Subscription) bool     { return h.bus.Off(sub) }
func (h *fakeHost) Emit(topic string, args ...any) bool { return h.bus.Emit(topic, args...) }
func (h *fakeHost) Document() *dom.Document             { return h.doc }
func (h *fakeHost) Editable() *html.Node                { return h.editable }
func (h *fakeHost) Toolbar() *html.Node                 { return h.toolbar }
func (h *fakeHost) ToolbarSlot(string) *html.Node       { return nil }
func (h *fakeHost) Content() string                     { return dom.InnerHTML(h.editable) }
func (h *fakeHost) SetContent(s string) error           { return dom.SetInnerHTML(h.editable, s) }
func (h *fakeHost) QueryCommandState(string) bool       { return false }
func (h *fakeHost) QueryCommandValue(string) string     { return "" }
func (h *fakeHost) Focus()                              {}
func (h *fakeHost) PlaceCaretAtEnd()                    {}
func (h *fakeHost) EnsureFocusAndRange()                { h.ensures++ }
func (h *fakeHost) History() *history.History           { return nil }
func (h *fakeHost) Plugin(string) Plugin                { return nil }
func (h *fakeHost) PluginNames() []string               { return nil }
func (h *fakeHost) Logger() *logging.Logger             { return logging.Nop() }
func (h *fakeHost) Platform() key.Platform              { return key.PlatformOther }
func (h *fakeHost) ExecCommand(name, value string) error {
	h.execs = append(h.execs, name)
	return nil
}

// lifecyclePlugin is a minimal plugin that records lifecycle calls into a shared log.
type lifecyclePlugin struct {
	*Base
	log      *[]string
	initErr  error
	panicky  bool
	destroyE error
}

func (p *lifecyclePlugin) Init() error {
	*p.log = append(*p.log, "init:"+p.InstanceName())
	if p.panicky {
		panic("boom")
	}
	return p.initErr
}

func (p *lifecyclePlugin) Destroy() error {
	*p.log = append(*p.log, "destroy:"+p.InstanceName())
	if err := p.Base.Destroy(); err != nil {
		return err
	}
	return p.destroyE
}

func lifecycleClass(name string, log *[]string, deps ...string) Class {
	return Class{
		Name:         name,
		Dependencies: deps,
		New: func(host Host, instance string) (Plugin, error) {
			base, err := NewBase(host, name, instance)
			if err != nil {
				return nil, err
			}
			return &lifecyclePlugin{Base: base, log: log}, nil
		},
	}
}

func TestResolveLoadOrder(t *testing.T) {
	var log []string
	r := NewRegistry()
	for _, c := range []Class{
		lifecycleClass("a", &log),
		lifecycleClass("b", &log, "a"),
		lifecycleClass("c", &log, "b", "a"),
		lifecycleClass("d", &log),
	} {
		if err := r.Register(c); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		names []string
		want  []string
	}{
		{[]string{"c"}, []string{"a", "b", "c"}},
		{[]string{"d", "c"}, []string{"d", "a", "b", "c"}},
		{[]string{"a", "a"}, []string{"a"}},
		{nil, nil},
	}
	for _, tt := range tests {
		got, err := r.ResolveLoadOrder(tt.names)
		if err != nil {
			t.Fatalf("ResolveLoadOrder(%v): %v", tt.names, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ResolveLoadOrder(%v) = %v, want %v", tt.names, got, tt.want)
		}
	}
}

func TestResolveLoadOrderErrors(t *testing.T) {
	var log []string
	r := NewRegistry()
	_ = r.Register(lifecycleClass("x", &log, "y"))
	_ = r.Register(lifecycleClass("y", &log, "x"))
	_ = r.Register(lifecycleClass("lonely", &log, "ghost"))

	tests := []struct {
		name  string
		names []string
		want  error
	}{
		{"cycle", []string{"x"}, ErrCyclicDependency},
		{"missing dependency", []string{"lonely"}, ErrDependencyNotFound},
		{"missing plugin", []string{"nope"}, ErrPluginNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ResolveLoadOrder(tt.names)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegisterDuplicateKeepsFirst(t *testing.T) {
	var log []string
	r := NewRegistry()
	first := lifecycleClass("a", &log)
	second := lifecycleClass("a", &log, "b")
	if err := r.Register(first); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(second); err != nil {
		t.Fatalf("duplicate register should only warn, got %v", err)
	}
	c, _ := r.Get("a")
	if len(c.Dependencies) != 0 {
		t.Error("duplicate registration replaced the first class")
	}
	if got := r.Names(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Names() = %v", got)
	}
	if err := r.Register(Class{Name: "nil-ctor"}); !errors.Is(err, ErrInvalidPlugin) {
		t.Errorf("class without constructor: err = %v", err)
	}
}

func TestInitializeAndDestroyOrder(t *testing.T) {
	var log []string
	host := newFakeHost(t)
	r := NewRegistry()
	_ = r.Register(lifecycleClass("a", &log))
	_ = r.Register(lifecycleClass("b", &log, "a"))
	_ = r.Register(lifecycleClass("c", &log, "b"))

	got, err := r.InitializePlugins(host, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d instances", len(got))
	}
	for _, p := range got {
		if StateOf(p) != StateInitialized {
			t.Errorf("%s state = %v", p.InstanceName(), StateOf(p))
		}
	}

	// Second call skips live instances.
	if _, err := r.InitializePlugins(host, []string{"c"}); err != nil {
		t.Fatal(err)
	}

	if err := r.DestroyAll(); err != nil {
		t.Fatal(err)
	}
	want := []string{"init:a", "init:b", "init:c", "destroy:c", "destroy:b", "destroy:a"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
	if r.IsInitialized("a") || len(r.Initialized()) != 0 {
		t.Error("DestroyAll left instances behind")
	}
}

func TestInitializeFailure(t *testing.T) {
	var log []string
	host := newFakeHost(t)
	r := NewRegistry()
	_ = r.Register(lifecycleClass("ok", &log))
	_ = r.Register(Class{
		Name:         "bad",
		Dependencies: []string{"ok"},
		New: func(host Host, instance string) (Plugin, error) {
			base, err := NewBase(host, "bad", instance)
			if err != nil {
				return nil, err
			}
			return &lifecyclePlugin{Base: base, log: &log, panicky: true}, nil
		},
	})

	_, err := r.InitializePlugins(host, []string{"bad"})
	if err == nil {
		t.Fatal("expected failure from panicking Init")
	}
	if !r.IsInitialized("ok") {
		t.Error("dependency initialised before the failure should stay live")
	}
	if r.IsInitialized("bad") {
		t.Error("failed instance should not be registered")
	}

	if _, err := r.InitializePlugins(nil, nil); !errors.Is(err, ErrNilHost) {
		t.Errorf("nil host: err = %v", err)
	}
}

func TestUntrack(t *testing.T) {
	host := newFakeHost(t)
	r := NewRegistry()
	for _, name := range []string{"a", "a_1", "a_2"} {
		base, err := NewBase(host, "a", name)
		if err != nil {
			t.Fatal(err)
		}
		if err := r.Track(base); err != nil {
			t.Fatal(err)
		}
	}

	if !r.Untrack("a_1") {
		t.Fatal("Untrack(a_1) = false")
	}
	if r.Untrack("a_1") {
		t.Error("second Untrack(a_1) = true")
	}
	if got, want := r.Initialized(), []string{"a", "a_2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Initialized() = %v, want %v", got, want)
	}
	if r.Instance("a_1") != nil {
		t.Error("Instance(a_1) still returned")
	}
}

func TestDestroyAllIsolatesFailures(t *testing.T) {
	var log []string
	host := newFakeHost(t)
	r := NewRegistry()
	for _, name := range []string{"one", "two", "three"} {
		base, err := NewBase(host, name, "")
		if err != nil {
			t.Fatal(err)
		}
		p := &lifecyclePlugin{Base: base, log: &log}
		if name == "two" {
			p.destroyE = errors.New("stuck")
		}
		if err := Start(p); err != nil {
			t.Fatal(err)
		}
		if err := r.Track(p); err != nil {
			t.Fatal(err)
		}
	}

	err := r.DestroyAll()
	if err == nil {
		t.Fatal("expected joined error")
	}
	want := []string{
		"init:one", "init:two", "init:three",
		"destroy:three", "destroy:two", "destroy:one",
	}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	var log []string
	host := newFakeHost(t)
	base, _ := NewBase(host, "p", "")
	p := &lifecyclePlugin{Base: base, log: &log}

	if StateOf(p) != StateConstructed {
		t.Fatalf("state = %v", StateOf(p))
	}
	if err := Start(p); err != nil {
		t.Fatal(err)
	}
	if err := Start(p); err != nil {
		t.Fatal(err)
	}
	if err := Stop(p); err != nil {
		t.Fatal(err)
	}
	if err := Stop(p); err != nil {
		t.Fatal(err)
	}
	if err := Start(p); !errors.Is(err, ErrPluginDestroyed) {
		t.Errorf("restart: err = %v", err)
	}
	want := []string{"init:p", "destroy:p"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}

	bare, _ := NewBase(host, "bare", "")
	if err := bare.Init(); !errors.Is(err, ErrInitNotImplemented) {
		t.Errorf("Base.Init err = %v", err)
	}
	if _, err := NewBase(nil, "x", ""); !errors.Is(err, ErrNilHost) {
		t.Errorf("nil host err = %v", err)
	}
}

func TestButtons(t *testing.T) {
	host := newFakeHost(t)
	base, _ := NewBase(host, "bold", "bold_1")

	var clicks int
	el, err := base.AddButton(Button{
		Name:      "bold",
		Icon:      "<b>B</b>",
		Tooltip:   "Bold (Ctrl+B)",
		ClassName: "extra",
		Callback:  func(*dom.Event) { clicks++ },
	})
	if err != nil {
		t.Fatal(err)
	}
	if el.Parent != host.toolbar {
		t.Fatal("button not appended to toolbar")
	}
	for _, class := range []string{"btn", "asteronote-btn", "asteronote-btn-bold", "extra"} {
		if !dom.HasClass(el, class) {
			t.Errorf("missing class %q in %q", class, dom.GetAttr(el, "class"))
		}
	}
	attrs := map[string]string{
		"type":        "button",
		"data-plugin": "bold",
		"data-action": "bold",
		"title":       "Bold (Ctrl+B)",
		"aria-label":  "Bold (Ctrl+B)",
	}
	for k, v := range attrs {
		if got := dom.GetAttr(el, k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if dom.InnerHTML(el) != "<b>B</b>" {
		t.Errorf("icon = %q", dom.InnerHTML(el))
	}

	var selChanges int
	_, _ = host.bus.On(event.TopicSelectionChange, func(...any) error {
		selChanges++
		return nil
	})

	host.doc.Click(el)
	if clicks != 1 || selChanges != 1 || host.ensures != 1 {
		t.Errorf("clicks=%d selChanges=%d ensures=%d", clicks, selChanges, host.ensures)
	}

	base.Disable()
	host.doc.Click(el)
	if clicks != 1 {
		t.Error("disabled plugin ran its callback")
	}
	base.Enable()

	base.SetButtonActive("bold", true)
	if !dom.HasClass(el, "active") {
		t.Error("SetButtonActive did not add class")
	}
	base.SetButtonDisabled("bold", true)
	if !dom.HasAttr(el, "disabled") {
		t.Error("SetButtonDisabled did not set attribute")
	}

	if _, err := base.AddButton(Button{Name: "x"}); !errors.Is(err, ErrInvalidButton) {
		t.Errorf("missing callback err = %v", err)
	}

	if err := base.Destroy(); err != nil {
		t.Fatal(err)
	}
	if el.Parent != nil || host.toolbar.FirstChild != nil {
		t.Error("Destroy left the button attached")
	}
	if n := host.doc.ListenerCount(el, dom.EventClick); n != 0 {
		t.Errorf("click listeners after destroy = %d", n)
	}
}

func TestShortcuts(t *testing.T) {
	host := newFakeHost(t)
	base, _ := NewBase(host, "bold", "")

	var hits int
	if err := base.AddShortcut("ctrl+b", func(*dom.Event) { hits++ }); err != nil {
		t.Fatal(err)
	}
	if err := base.AddShortcut("ctrl+b", nil); !errors.Is(err, ErrInvalidShortcut) {
		t.Errorf("nil handler err = %v", err)
	}
	if got := base.Shortcuts(); !reflect.DeepEqual(got, []string{"Ctrl+B"}) {
		t.Errorf("Shortcuts() = %v", got)
	}

	tests := []struct {
		name string
		ev   *key.Event
		want bool
	}{
		{"match", key.NewEvent("b", key.ModCtrl), true},
		{"upper case key", key.NewEvent("B", key.ModCtrl), true},
		{"extra shift", key.NewEvent("b", key.ModCtrl|key.ModShift), false},
		{"no modifier", key.NewEvent("b", 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := dom.NewKeyEvent(dom.EventKeydown, tt.ev)
			if got := base.HandleShortcut(ev); got != tt.want {
				t.Errorf("HandleShortcut = %v, want %v", got, tt.want)
			}
			if ev.DefaultPrevented() != tt.want || ev.PropagationStopped() != tt.want {
				t.Error("matched shortcut must prevent default and stop propagation")
			}
		})
	}
	if hits != 2 {
		t.Errorf("hits = %d, want 2", hits)
	}

	base.Disable()
	if base.HandleShortcut(dom.NewKeyEvent(dom.EventKeydown, key.NewEvent("b", key.ModCtrl))) {
		t.Error("disabled plugin matched a shortcut")
	}
	base.Enable()

	if !base.RemoveShortcut("Ctrl+B") || base.RemoveShortcut("Ctrl+B") {
		t.Error("RemoveShortcut should succeed exactly once")
	}
}

func TestEnableEventsAndSubscriptions(t *testing.T) {
	host := newFakeHost(t)
	base, _ := NewBase(host, "link", "link_1")

	var topics []string
	_, _ = host.bus.OnAny(func(topic string, _ ...any) error {
		topics = append(topics, topic)
		return nil
	})

	base.Disable()
	base.Enable()
	base.EmitEvent("opened", "x")

	want := []string{"plugin.link.disabled", "plugin.link.enabled", "plugin.link.opened"}
	if !reflect.DeepEqual(topics, want) {
		t.Errorf("topics = %v, want %v", topics, want)
	}

	var toggled []any
	for _, ev := range []string{event.PluginEnabled, event.PluginDisabled} {
		_, _ = host.bus.On(event.PluginTopic("link", ev), func(args ...any) error {
			toggled = append(toggled, args...)
			return nil
		})
	}
	other, _ := NewBase(host, "link", "link_2")
	other.Disable()
	base.Enable()
	if want := []any{"link_2", "link_1"}; !reflect.DeepEqual(toggled, want) {
		t.Errorf("enable/disable args = %v, want %v", toggled, want)
	}

	var changes int
	if _, err := base.On(event.TopicChange, func(...any) error {
		changes++
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	host.bus.Emit(event.TopicChange)
	_ = base.Destroy()
	host.bus.Emit(event.TopicChange)
	if changes != 1 {
		t.Errorf("changes = %d; Destroy should drop subscriptions", changes)
	}
}

func TestSelectionHelpers(t *testing.T) {
	host := newFakeHost(t)
	base, _ := NewBase(host, "p", "")
	text := host.editable.FirstChild.FirstChild

	if base.IsSelectionInsideEditor() {
		t.Error("empty selection reported inside editor")
	}
	host.doc.Selection().SetRange(dom.Caret(text, 2))
	if !base.IsSelectionInsideEditor() {
		t.Error("caret in editable not detected")
	}

	saved, ok := base.SaveRange()
	if !ok {
		t.Fatal("SaveRange failed")
	}
	host.doc.Selection().SetRange(dom.Caret(host.toolbar, 0))
	if _, ok := base.SaveRange(); ok {
		t.Error("SaveRange accepted a range outside the editor")
	}
	if !base.RestoreRange(saved) {
		t.Fatal("RestoreRange failed")
	}
	if !base.IsSelectionInsideEditor() {
		t.Error("restored range not inside editor")
	}

	dom.Remove(text)
	if base.RestoreRange(saved) {
		t.Error("RestoreRange accepted a detached node")
	}
}

func TestExecCommandDelegates(t *testing.T) {
	host := newFakeHost(t)
	base, _ := NewBase(host, "p", "")
	if err := base.ExecCommand("bold", ""); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(host.execs, []string{"bold"}) {
		t.Errorf("execs = %v", host.execs)
	}
	base.setState(StateDestroyed)
	if err := base.ExecCommand("bold", ""); !errors.Is(err, ErrPluginDestroyed) {
		t.Errorf("err = %v", err)
	}
}
