package luaplugin

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/asteronote/internal/dom"
)

// toLua converts a bus argument to a Lua value. Types without a Lua
// counterpart become their fmt representation.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case []string:
		t := L.NewTable()
		for _, s := range val {
			t.Append(lua.LString(s))
		}
		return t
	case []any:
		t := L.NewTable()
		for _, x := range val {
			t.Append(toLua(L, x))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, x := range val {
			t.RawSetString(k, toLua(L, x))
		}
		return t
	case *dom.Event:
		return eventTable(L, val)
	case error:
		return lua.LString(val.Error())
	}
	return lua.LString(fmt.Sprint(v))
}

// eventTable exposes a native event to a script.
func eventTable(L *lua.LState, ev *dom.Event) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("type", lua.LString(ev.Type))
	t.RawSetString("text", lua.LString(ev.Text))
	if ev.Key != nil {
		t.RawSetString("key", lua.LString(ev.Key.Key))
		t.RawSetString("ctrl", lua.LBool(ev.Key.Modifiers.HasCtrl()))
		t.RawSetString("shift", lua.LBool(ev.Key.Modifiers.HasShift()))
		t.RawSetString("alt", lua.LBool(ev.Key.Modifiers.HasAlt()))
		t.RawSetString("meta", lua.LBool(ev.Key.Modifiers.HasMeta()))
	}
	t.RawSetString("prevent_default", L.NewFunction(func(*lua.LState) int {
		ev.PreventDefault()
		return 0
	}))
	return t
}

// toGo converts a Lua value to a Go value. Tables with keys 1..n become
// []any; other tables become map[string]any. Functions become nil.
func toGo(lv lua.LValue) any {
	return toGoVisited(lv, make(map[*lua.LTable]bool))
}

func toGoVisited(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		if n := v.Len(); n > 0 && countKeys(v) == n {
			out := make([]any, n)
			for i := 1; i <= n; i++ {
				out[i-1] = toGoVisited(v.RawGetInt(i), visited)
			}
			return out
		}
		out := make(map[string]any)
		v.ForEach(func(k, x lua.LValue) {
			out[k.String()] = toGoVisited(x, visited)
		})
		return out
	case *lua.LUserData:
		return v.Value
	}
	return nil
}

func countKeys(t *lua.LTable) int {
	n := 0
	t.ForEach(func(lua.LValue, lua.LValue) { n++ })
	return n
}

// stringList reads a Lua array of strings.
func stringList(lv lua.LValue) ([]string, error) {
	switch v := lv.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LString:
		return []string{string(v)}, nil
	case *lua.LTable:
		var out []string
		var err error
		v.ForEach(func(_, x lua.LValue) {
			s, ok := x.(lua.LString)
			if !ok {
				err = fmt.Errorf("%w: expected string, got %s", ErrInvalidScript, x.Type())
				return
			}
			out = append(out, string(s))
		})
		return out, err
	}
	return nil, fmt.Errorf("%w: expected list of strings, got %s", ErrInvalidScript, lv.Type())
}
