package luaplugin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/asteronote/internal/logging"
)

// DefaultTimeout bounds every call from Go into a script.
const DefaultTimeout = time.Second

// unsafeGlobals are removed from the base library.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "loadstring", "require", "module"}

// state wraps one gopher-lua state. gopher-lua states are not safe for
// concurrent use; plugins are driven from the editor's goroutine only.
type state struct {
	L       *lua.LState
	timeout time.Duration
	closed  bool

	// depth counts nested calls; script callbacks can re-enter the state
	// through the bus.
	depth int
}

func newState(timeout time.Duration, log *logging.Logger) *state {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		log.Info(strings.Join(parts, "\t"))
		return 0
	}))
	return &state{L: L, timeout: timeout}
}

// eval compiles and runs src and returns its first result.
func (s *state) eval(chunk, src string) (lua.LValue, error) {
	fn, err := s.L.Load(strings.NewReader(src), chunk)
	if err != nil {
		return nil, err
	}
	ret, err := s.call(fn)
	if err != nil {
		return nil, err
	}
	if len(ret) == 0 {
		return lua.LNil, nil
	}
	return ret[0], nil
}

// call runs fn with args under the call timeout and returns all results.
func (s *state) call(fn lua.LValue, args ...lua.LValue) (ret []lua.LValue, err error) {
	if s.closed {
		return nil, ErrStateClosed
	}
	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: %s is not a function", ErrInvalidScript, fn.Type())
	}

	s.depth++
	defer func() { s.depth-- }()
	if s.timeout > 0 && s.depth == 1 {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
		defer func() {
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %v", ErrExecutionTimeout, err)
			}
		}()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	top := s.L.GetTop()
	s.L.Push(fn)
	for _, a := range args {
		s.L.Push(a)
	}
	if err := s.L.PCall(len(args), lua.MultRet, nil); err != nil {
		s.L.SetTop(top)
		return nil, err
	}
	n := s.L.GetTop() - top
	ret = make([]lua.LValue, n)
	for i := 0; i < n; i++ {
		ret[i] = s.L.Get(top + i + 1)
	}
	s.L.Pop(n)
	return ret, nil
}

func (s *state) close() {
	if s.closed {
		return
	}
	s.L.Close()
	s.closed = true
}
