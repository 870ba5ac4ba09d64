package asm

import (
	"tukun/internal/bytecode"
	"tukun/internal/module"
	"tukun/internal/source"
	"tukun/internal/types"
)

// DefaultModuleName is used when the source has no @modname attribute.
const DefaultModuleName = "com.tukunc.module"

// Module is a parsed source file.
type Module struct {
	Name       string
	Attributes []Attribute
	Constants  []Constant
	// ConstIndex maps a constant name to the position of its latest
	// definition in Constants.
	ConstIndex map[string]int
	Types      map[string]TypeDecl
	Functions  []*Function
}

// Attribute is an "@name value" line.
type Attribute struct {
	Name  string
	Value string
	Span  source.Span
}

// Constant is a "%const" declaration.
type Constant struct {
	Name  string
	Value module.InternValue
	Span  source.Span
}

// TypeDecl is a named type; built-ins carry an empty span.
type TypeDecl struct {
	Name    string
	Type    types.Type
	Span    source.Span
	Builtin bool
}

type Function struct {
	Name   string
	Span   source.Span
	Blocks []*Block
}

// FindBlock looks a label up.
func (f *Function) FindBlock(label string) (*Block, bool) {
	for _, b := range f.Blocks {
		if b.Label == label {
			return b, true
		}
	}
	return nil, false
}

type Block struct {
	Label  string
	Span   source.Span
	Instrs []Instr
}

// Pseudo marks assembler instructions that expand to something other than
// their own opcode.
type Pseudo uint8

const (
	PseudoNone  Pseudo = iota
	PseudoLPush        // literal push: intern the operand, then PUSH
	PseudoFCall        // PUSH name; FLOOKUP; CALL
)

type Instr struct {
	Mnemonic string
	Op       bytecode.Opcode
	Pseudo   Pseudo
	Operand  Operand
	Span     source.Span
}

type OperandKind uint8

const (
	OperandNone   OperandKind = iota
	OperandIndex              // push 3, toslot 0
	OperandName               // push "five", fcall "m.f"
	OperandLabel              // jump :done
	OperandLiteral            // lpush 7 | 1.25 | "s"
)

type Operand struct {
	Kind    OperandKind
	Index   uint64
	Name    string
	Literal module.InternValue
	Span    source.Span
}

// builtinTypes are declared in every module.
var builtinTypes = map[string]types.Type{
	"integer": types.Integer,
	"logical": types.Logical,
	"string":  types.String,
	"float":   types.Float,
}

func newModule() *Module {
	m := &Module{
		Name:       DefaultModuleName,
		ConstIndex: make(map[string]int),
		Types:      make(map[string]TypeDecl, len(builtinTypes)),
	}
	for name, t := range builtinTypes {
		m.Types[name] = TypeDecl{Name: name, Type: t, Builtin: true}
	}
	return m
}

// AddConstant appends c; a later constant with the same name shadows the
// earlier one for name lookups.
func (m *Module) AddConstant(c Constant) int {
	m.Constants = append(m.Constants, c)
	idx := len(m.Constants) - 1
	m.ConstIndex[c.Name] = idx
	return idx
}

func (m *Module) FindFunction(name string) (*Function, bool) {
	for _, f := range m.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}
