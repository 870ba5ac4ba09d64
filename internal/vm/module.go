package vm

import (
	"sort"

	"tukun/internal/module"
	"tukun/internal/types"
	"tukun/internal/value"
)

// Native is a function implemented by the host. Call operates directly on
// the environment's operand stack.
type Native interface {
	Name() string
	Call(env *Environment) error
}

// NativeFunc adapts a plain function to Native.
type NativeFunc struct {
	FnName string
	Fn     func(env *Environment) error
}

func (n NativeFunc) Name() string                { return n.FnName }
func (n NativeFunc) Call(env *Environment) error { return n.Fn(env) }

// Callable is a function registered in a RuntimeModule. Exactly one of the
// bytecode body and the native implementation is set.
type Callable struct {
	owner  *RuntimeModule
	name   string
	def    *module.FunctionDef
	native Native
}

var _ value.Callable = (*Callable)(nil)

func (c *Callable) Name() string           { return c.name }
func (c *Callable) FullName() string       { return c.owner.name + "." + c.name }
func (c *Callable) Module() *RuntimeModule { return c.owner }
func (c *Callable) IsNative() bool         { return c.native != nil }

// Def returns the bytecode definition; nil for natives.
func (c *Callable) Def() *module.FunctionDef { return c.def }

// RuntimeTypeDef is a named type registered in a RuntimeModule.
type RuntimeTypeDef struct {
	owner *RuntimeModule
	def   types.TypeDef
}

func (t *RuntimeTypeDef) Name() string       { return t.def.Name }
func (t *RuntimeTypeDef) FullName() string   { return t.owner.name + "." + t.def.Name }
func (t *RuntimeTypeDef) Target() types.Type { return t.def.Target }

// RuntimeModule is the loaded, name-indexed form of a ModuleDef.
type RuntimeModule struct {
	name      string
	functions map[string]*Callable
	types     map[string]*RuntimeTypeDef
	pool      []module.InternValue
}

// NewRuntimeModule returns an empty module, typically filled with natives.
func NewRuntimeModule(name string) *RuntimeModule {
	return &RuntimeModule{
		name:      name,
		functions: make(map[string]*Callable),
		types:     make(map[string]*RuntimeTypeDef),
	}
}

// LoadModule indexes def. Later definitions of a name replace earlier ones.
func LoadModule(def *module.ModuleDef) *RuntimeModule {
	rm := NewRuntimeModule(def.Name)
	for i := range def.Functions {
		rm.AddFunction(def.Functions[i])
	}
	for _, td := range def.NamedTypes {
		rm.AddNamedType(td)
	}
	rm.pool = append(rm.pool, def.InternValues...)
	return rm
}

func (m *RuntimeModule) Name() string { return m.name }

func (m *RuntimeModule) AddFunction(fd module.FunctionDef) *Callable {
	def := fd
	c := &Callable{owner: m, name: fd.Name, def: &def}
	m.functions[fd.Name] = c
	return c
}

func (m *RuntimeModule) AddNative(n Native) *Callable {
	c := &Callable{owner: m, name: n.Name(), native: n}
	m.functions[n.Name()] = c
	return c
}

func (m *RuntimeModule) AddNamedType(td types.TypeDef) *RuntimeTypeDef {
	t := &RuntimeTypeDef{owner: m, def: td}
	m.types[td.Name] = t
	return t
}

// AddInternValue appends to the pool and returns the new index.
func (m *RuntimeModule) AddInternValue(v module.InternValue) int {
	m.pool = append(m.pool, v)
	return len(m.pool) - 1
}

func (m *RuntimeModule) FindFunction(name string) (*Callable, bool) {
	c, ok := m.functions[name]
	return c, ok
}

func (m *RuntimeModule) FindNamedType(name string) (*RuntimeTypeDef, bool) {
	t, ok := m.types[name]
	return t, ok
}

// InternValue returns pool entry idx as a runtime value.
func (m *RuntimeModule) InternValue(idx int) (value.Value, bool) {
	if idx < 0 || idx >= len(m.pool) {
		return value.Value{}, false
	}
	return m.pool[idx].ToValue(), true
}

func (m *RuntimeModule) PoolLen() int { return len(m.pool) }

// Functions returns the local function names, sorted.
func (m *RuntimeModule) Functions() []string {
	return sortedKeys(m.functions)
}

// NamedTypes returns the local type names, sorted.
func (m *RuntimeModule) NamedTypes() []string {
	return sortedKeys(m.types)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
