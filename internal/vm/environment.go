package vm

import (
	"io"
	"os"
	"strings"

	"tukun/internal/trace"
	"tukun/internal/types"
	"tukun/internal/value"
)

// Environment is the state of one execution: the module registry, the
// operand stack shared by every invocation, and the call stack.
//
// An Environment is not safe for concurrent use.
type Environment struct {
	modules  map[string]*RuntimeModule
	stack    Stack[value.Value]
	unwinder Unwinder

	tracer     trace.Tracer
	traceInstr bool
	out        io.Writer
	maxDepth   int
}

// Option configures an Environment.
type Option func(*Environment)

// WithTracer sets the logging handle used by the run loop.
func WithTracer(t trace.Tracer) Option {
	return func(e *Environment) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithOutput sets where natives such as corelib.print write.
func WithOutput(w io.Writer) Option {
	return func(e *Environment) {
		if w != nil {
			e.out = w
		}
	}
}

// WithMaxDepth bounds the number of nested invocations; 0 means the only
// bound is the goroutine stack.
func WithMaxDepth(n int) Option {
	return func(e *Environment) { e.maxDepth = n }
}

func NewEnvironment(opts ...Option) *Environment {
	e := &Environment{
		modules: make(map[string]*RuntimeModule),
		tracer:  trace.Nop,
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.traceInstr = e.tracer.Enabled() && e.tracer.Level().ShouldEmit(trace.ScopeInstr)
	return e
}

func (e *Environment) Tracer() trace.Tracer { return e.tracer }
func (e *Environment) Output() io.Writer    { return e.out }
func (e *Environment) Unwinder() *Unwinder  { return &e.unwinder }

// Backtrace renders the call stack left by the last failed run.
func (e *Environment) Backtrace() string { return e.unwinder.String() }

// AddModule registers m and reports whether its name was new. A module
// with the same name is replaced.
func (e *Environment) AddModule(m *RuntimeModule) bool {
	_, exists := e.modules[m.name]
	e.modules[m.name] = m
	trace.Point(e.tracer, trace.ScopeModule, "register", m.name)
	return !exists
}

func (e *Environment) FindModule(name string) (*RuntimeModule, bool) {
	m, ok := e.modules[name]
	return m, ok
}

// splitName separates "<module>.<local>" at the last dot.
func splitName(name string) (mod, local string, ok bool) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}

// LookupFunction resolves a fully-qualified function name.
func (e *Environment) LookupFunction(name string) (*Callable, bool) {
	mod, local, ok := splitName(name)
	if !ok {
		return nil, false
	}
	m, ok := e.modules[mod]
	if !ok {
		return nil, false
	}
	return m.FindFunction(local)
}

// LookupNamedType resolves a fully-qualified type name.
func (e *Environment) LookupNamedType(name string) (*RuntimeTypeDef, bool) {
	mod, local, ok := splitName(name)
	if !ok {
		return nil, false
	}
	m, ok := e.modules[mod]
	if !ok {
		return nil, false
	}
	return m.FindNamedType(local)
}

func (e *Environment) Push(v value.Value) { e.stack.Push(v) }

func (e *Environment) Pop() (value.Value, bool) { return e.stack.Pop() }

func (e *Environment) Peek() (value.Value, bool) { return e.stack.Peek() }

func (e *Environment) StackLen() int { return e.stack.Len() }

// Stack returns a bottom-up snapshot of the operand stack.
func (e *Environment) Stack() []value.Value { return e.stack.Items() }

// The helpers below are meant for natives. They report failures as *Error
// values carrying the current backtrace.

func (e *Environment) nativeError(d ErrData) *Error {
	return &Error{Data: d, Backtrace: e.unwinder.Frames()}
}

// Fail builds an error with payload d for a native to return.
func (e *Environment) Fail(d ErrData) error { return e.nativeError(d) }

// AccessError converts an Array or Record access failure into an error
// carrying IndexOutOfBounds or InvalidType.
func (e *Environment) AccessError(err error) error {
	return e.nativeError(accessErrData(err))
}

// PopValue pops any value.
func (e *Environment) PopValue() (value.Value, error) {
	v, ok := e.stack.Pop()
	if !ok {
		return value.Value{}, e.nativeError(ErrData{Code: EmptyStack})
	}
	return v, nil
}

// PopInt pops an Integer.
func (e *Environment) PopInt() (uint64, error) {
	v, err := e.PopValue()
	if err != nil {
		return 0, err
	}
	n, ok := v.AsInt()
	if !ok {
		want := types.Integer
		return 0, e.nativeError(ErrData{Code: InvalidType, Actual: v.Type(), Expected: &want})
	}
	return n, nil
}

// PopArray pops an array handle.
func (e *Environment) PopArray() (*value.Array, error) {
	v, err := e.PopValue()
	if err != nil {
		return nil, err
	}
	a, ok := v.AsArray()
	if !ok {
		return nil, e.nativeError(ErrData{Code: InvalidType, Actual: v.Type(), Want: "an array"})
	}
	return a, nil
}
