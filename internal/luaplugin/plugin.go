package luaplugin

import (
	"fmt"
	"os"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/asteronote/internal/logging"
	"github.com/dshills/asteronote/internal/plugin"
)

// Option configures scripted plugin classes.
type Option func(*options)

type options struct {
	timeout time.Duration
}

// WithTimeout bounds each call into the script. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.timeout = d
		}
	}
}

// LoadFile reads a script and compiles it into a plugin class.
func LoadFile(path string, opts ...Option) (plugin.Class, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return plugin.Class{}, fmt.Errorf("read lua plugin: %w", err)
	}
	return Compile(path, string(src), opts...)
}

// Compile evaluates src once to read the plugin's name and dependencies
// and returns a class whose instances each run src in a fresh state.
func Compile(chunk, src string, opts ...Option) (plugin.Class, error) {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	st := newState(o.timeout, logging.Nop())
	defer st.close()
	def, err := definition(st, chunk, src)
	if err != nil {
		return plugin.Class{}, err
	}
	name := lua.LVAsString(def.RawGetString("name"))
	deps, err := stringList(def.RawGetString("dependencies"))
	if err != nil {
		return plugin.Class{}, fmt.Errorf("%s: dependencies: %w", chunk, err)
	}

	return plugin.Class{
		Name:         name,
		Dependencies: deps,
		New: func(host plugin.Host, instance string) (plugin.Plugin, error) {
			base, err := plugin.NewBase(host, name, instance)
			if err != nil {
				return nil, err
			}
			return &ScriptPlugin{Base: base, chunk: chunk, src: src, opts: o}, nil
		},
	}, nil
}

// definition runs src and checks the returned plugin table.
func definition(st *state, chunk, src string) (*lua.LTable, error) {
	ret, err := st.eval(chunk, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidScript, chunk, err)
	}
	def, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: %s must return a table, got %s", ErrInvalidScript, chunk, ret.Type())
	}
	if lua.LVAsString(def.RawGetString("name")) == "" {
		return nil, fmt.Errorf("%w: %s has no name", ErrInvalidScript, chunk)
	}
	if def.RawGetString("init").Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: %s has no init function", ErrInvalidScript, chunk)
	}
	switch def.RawGetString("destroy").Type() {
	case lua.LTNil, lua.LTFunction:
	default:
		return nil, fmt.Errorf("%w: %s destroy must be a function", ErrInvalidScript, chunk)
	}
	return def, nil
}

// ScriptPlugin is a mounted Lua plugin.
type ScriptPlugin struct {
	*plugin.Base

	chunk  string
	src    string
	opts   options
	st     *state
	def    *lua.LTable
	handle *lua.LTable
}

// Init runs the script in a fresh state and calls its init function with
// the plugin handle.
func (p *ScriptPlugin) Init() error {
	p.st = newState(p.opts.timeout, p.Logger())
	def, err := definition(p.st, p.chunk, p.src)
	if err != nil {
		p.st.close()
		return err
	}
	p.def = def
	p.handle = p.newHandle()
	if _, err := p.st.call(def.RawGetString("init"), p.handle); err != nil {
		p.st.close()
		return fmt.Errorf("%s init: %w", p.chunk, err)
	}
	return nil
}

// Destroy calls the script's destroy function, releases the plugin's
// buttons, shortcuts and subscriptions and closes the state.
func (p *ScriptPlugin) Destroy() error {
	var err error
	if p.st != nil && !p.st.closed {
		if fn := p.def.RawGetString("destroy"); fn.Type() == lua.LTFunction {
			if _, cerr := p.st.call(fn, p.handle); cerr != nil {
				err = fmt.Errorf("%s destroy: %w", p.chunk, cerr)
			}
		}
	}
	if berr := p.Base.Destroy(); err == nil {
		err = berr
	}
	if p.st != nil {
		p.st.close()
	}
	return err
}

// invoke calls a script callback, logging failures.
func (p *ScriptPlugin) invoke(what string, fn lua.LValue, args ...any) error {
	if p.st == nil || p.st.closed {
		return ErrStateClosed
	}
	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = toLua(p.st.L, a)
	}
	if _, err := p.st.call(fn, largs...); err != nil {
		p.Logger().Warn("lua callback failed", "callback", what, "error", err.Error())
		return err
	}
	return nil
}
