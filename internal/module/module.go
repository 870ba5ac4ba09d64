// Package module defines ModuleDef, the unit of persistence produced by the
// assembler and consumed by the runner.
package module

import (
	"math"
	"strconv"

	"tukun/internal/bytecode"
	"tukun/internal/types"
	"tukun/internal/value"
)

// InternKind tags an interned constant.
type InternKind uint8

const (
	InternInteger InternKind = iota + 1
	InternFloat
	InternString
)

// InternValue is an immutable constant pool entry.
type InternValue struct {
	Kind  InternKind
	Int   uint64
	Float float64
	Str   string
}

func IntValue(v uint64) InternValue    { return InternValue{Kind: InternInteger, Int: v} }
func FloatValue(v float64) InternValue { return InternValue{Kind: InternFloat, Float: v} }
func StringValue(v string) InternValue { return InternValue{Kind: InternString, Str: v} }

// ToValue converts the constant into the runtime value pushed by PUSH.
func (v InternValue) ToValue() value.Value {
	switch v.Kind {
	case InternFloat:
		return value.Float(v.Float)
	case InternString:
		return value.Str(v.Str)
	default:
		return value.Int(v.Int)
	}
}

func (v InternValue) Equal(o InternValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case InternFloat:
		return math.Float64bits(v.Float) == math.Float64bits(o.Float)
	case InternString:
		return v.Str == o.Str
	default:
		return v.Int == o.Int
	}
}

func (v InternValue) String() string {
	switch v.Kind {
	case InternFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case InternString:
		return strconv.Quote(v.Str)
	default:
		return strconv.FormatUint(v.Int, 10)
	}
}

// FunctionDef is a named bytecode body.
type FunctionDef struct {
	Name string
	Body *bytecode.Bytecode
}

// ModuleDef is an ordered collection of functions, named types and
// interned constants.
type ModuleDef struct {
	Name         string
	Functions    []FunctionDef
	NamedTypes   []types.TypeDef
	InternValues []InternValue
}

// New creates an empty module definition.
func New(name string) *ModuleDef {
	return &ModuleDef{Name: name}
}

func (m *ModuleDef) AddFunction(f FunctionDef) {
	m.Functions = append(m.Functions, f)
}

func (m *ModuleDef) AddNamedType(td types.TypeDef) {
	m.NamedTypes = append(m.NamedTypes, td)
}

// AddInternedValue appends v to the pool and returns its index.
func (m *ModuleDef) AddInternedValue(v InternValue) int {
	m.InternValues = append(m.InternValues, v)
	return len(m.InternValues) - 1
}

// FindFunction returns the function named name.
func (m *ModuleDef) FindFunction(name string) (FunctionDef, bool) {
	for _, f := range m.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return FunctionDef{}, false
}

// RenderedPool renders the pool for listings.
func (m *ModuleDef) RenderedPool() []string {
	out := make([]string, len(m.InternValues))
	for i, v := range m.InternValues {
		out[i] = v.String()
	}
	return out
}

// Equal compares two definitions field by field, preserving order.
func (m *ModuleDef) Equal(o *ModuleDef) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.Name != o.Name || len(m.Functions) != len(o.Functions) ||
		len(m.NamedTypes) != len(o.NamedTypes) || len(m.InternValues) != len(o.InternValues) {
		return false
	}
	for i := range m.Functions {
		if m.Functions[i].Name != o.Functions[i].Name || !m.Functions[i].Body.Equal(o.Functions[i].Body) {
			return false
		}
	}
	for i := range m.NamedTypes {
		if !m.NamedTypes[i].Equal(o.NamedTypes[i]) {
			return false
		}
	}
	for i := range m.InternValues {
		if !m.InternValues[i].Equal(o.InternValues[i]) {
			return false
		}
	}
	return true
}
