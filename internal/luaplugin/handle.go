package luaplugin

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/asteronote/internal/dom"
	"github.com/dshills/asteronote/internal/event"
	"github.com/dshills/asteronote/internal/plugin"
)

// newHandle builds the table passed to the script's init and destroy.
// Every method takes the handle as its first argument so scripts call
// them with the colon syntax.
func (p *ScriptPlugin) newHandle() *lua.LTable {
	L := p.st.L
	h := L.NewTable()
	h.RawSetString("name", lua.LString(p.InstanceName()))
	L.SetFuncs(h, map[string]lua.LGFunction{
		"add_button":   p.luaAddButton,
		"add_shortcut": p.luaAddShortcut,
		"exec":         p.luaExec,
		"query_state":  p.luaQueryState,
		"query_value":  p.luaQueryValue,
		"on":           p.luaOn,
		"emit":         p.luaEmit,
		"content":      p.luaContent,
		"set_content":  p.luaSetContent,
		"set_active":   p.luaSetActive,
		"enable":       p.luaEnable,
		"disable":      p.luaDisable,
		"is_enabled":   p.luaIsEnabled,
		"log":          p.luaLog,
	})
	return h
}

// p:add_button{name=, icon=, tooltip=, class=, on_click=}
func (p *ScriptPlugin) luaAddButton(L *lua.LState) int {
	cfg := L.CheckTable(2)
	onClick := cfg.RawGetString("on_click")
	if onClick.Type() != lua.LTFunction {
		L.ArgError(2, "on_click must be a function")
		return 0
	}
	name := lua.LVAsString(cfg.RawGetString("name"))
	if _, err := p.AddButton(plugin.Button{
		Name:      name,
		Icon:      lua.LVAsString(cfg.RawGetString("icon")),
		Tooltip:   lua.LVAsString(cfg.RawGetString("tooltip")),
		ClassName: lua.LVAsString(cfg.RawGetString("class")),
		Callback: func(ev *dom.Event) {
			_ = p.invoke("button "+name, onClick, ev)
		},
	}); err != nil {
		L.RaiseError("add_button: %v", err)
	}
	return 0
}

// p:add_shortcut(combo, fn)
func (p *ScriptPlugin) luaAddShortcut(L *lua.LState) int {
	combo := L.CheckString(2)
	fn := L.CheckFunction(3)
	if err := p.AddShortcut(combo, func(ev *dom.Event) {
		_ = p.invoke("shortcut "+combo, fn, ev)
	}); err != nil {
		L.RaiseError("add_shortcut: %v", err)
	}
	return 0
}

// p:exec(command, value) returns true, or false and a message.
func (p *ScriptPlugin) luaExec(L *lua.LState) int {
	name := L.CheckString(2)
	value := L.OptString(3, "")
	if err := p.ExecCommand(name, value); err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

func (p *ScriptPlugin) luaQueryState(L *lua.LState) int {
	L.Push(lua.LBool(p.QueryState(L.CheckString(2))))
	return 1
}

func (p *ScriptPlugin) luaQueryValue(L *lua.LState) int {
	L.Push(lua.LString(p.QueryValue(L.CheckString(2))))
	return 1
}

// p:on(topic, fn) subscribes fn; the subscription ends with the plugin.
func (p *ScriptPlugin) luaOn(L *lua.LState) int {
	topic := L.CheckString(2)
	fn := L.CheckFunction(3)
	if _, err := p.On(topic, func(args ...any) error {
		return p.invoke("on "+topic, fn, args...)
	}); err != nil {
		L.RaiseError("on: %v", err)
	}
	return 0
}

// p:emit(event, ...) emits plugin.<name>.<event> with the converted args.
func (p *ScriptPlugin) luaEmit(L *lua.LState) int {
	name := L.CheckString(2)
	args := make([]any, 0, L.GetTop()-2)
	for i := 3; i <= L.GetTop(); i++ {
		args = append(args, toGo(L.Get(i)))
	}
	L.Push(lua.LBool(p.EmitEvent(name, args...)))
	return 1
}

func (p *ScriptPlugin) luaContent(L *lua.LState) int {
	L.Push(lua.LString(p.Host().Content()))
	return 1
}

// p:set_content(html) returns true, or false and a message.
func (p *ScriptPlugin) luaSetContent(L *lua.LState) int {
	markup := L.CheckString(2)
	host := p.Host()
	if err := host.SetContent(markup); err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	host.Emit(event.TopicChange, host.Content())
	L.Push(lua.LTrue)
	return 1
}

func (p *ScriptPlugin) luaSetActive(L *lua.LState) int {
	p.SetButtonActive(L.CheckString(2), L.ToBool(3))
	return 0
}

func (p *ScriptPlugin) luaEnable(*lua.LState) int {
	p.Enable()
	return 0
}

func (p *ScriptPlugin) luaDisable(*lua.LState) int {
	p.Disable()
	return 0
}

func (p *ScriptPlugin) luaIsEnabled(L *lua.LState) int {
	L.Push(lua.LBool(p.IsEnabled()))
	return 1
}

func (p *ScriptPlugin) luaLog(L *lua.LState) int {
	p.Logger().Info(L.CheckString(2), "script", p.chunk)
	return 0
}
