package asm

import (
	"sort"

	"fortio.org/safecast"

	"tukun/internal/builder"
	"tukun/internal/bytecode"
	"tukun/internal/module"
	"tukun/internal/source"
	"tukun/internal/types"
)

// Lower turns a parsed module into a ModuleDef. The constant pool is laid
// out as: user constants in declaration order; one "<module>.<type>" string
// per named type, sorted by type name; one "<module>.<function>" string per
// function in declaration order; then literals interned by lpush while the
// functions are lowered. Named types, built-ins included, are emitted sorted
// by name.
func Lower(m *Module) (*module.ModuleDef, error) {
	def := module.New(m.Name)

	consts := make(map[string]int, len(m.ConstIndex)+len(m.Types)+len(m.Functions))
	for _, c := range m.Constants {
		def.AddInternedValue(c.Value)
	}
	for name, idx := range m.ConstIndex {
		consts[name] = idx
	}

	typeNames := make([]string, 0, len(m.Types))
	for name := range m.Types {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)
	for _, name := range typeNames {
		def.AddNamedType(types.NewTypeDef(name, m.Types[name].Type))
	}
	for _, name := range typeNames {
		full := m.Name + "." + name
		consts[full] = def.AddInternedValue(module.StringValue(full))
	}
	for _, f := range m.Functions {
		full := m.Name + "." + f.Name
		consts[full] = def.AddInternedValue(module.StringValue(full))
	}

	l := lowerer{def: def, consts: consts}
	for _, f := range m.Functions {
		fd, err := l.function(f)
		if err != nil {
			return nil, err
		}
		def.AddFunction(fd)
	}
	return def, nil
}

type lowerer struct {
	def    *module.ModuleDef
	consts map[string]int
}

func (l *lowerer) function(f *Function) (module.FunctionDef, error) {
	b := builder.New(f.Name)
	for _, blk := range f.Blocks {
		b.AppendBlock(blk.Label)
	}
	for _, blk := range f.Blocks {
		target, _ := b.FindBlock(blk.Label)
		for _, in := range blk.Instrs {
			instrs, err := l.instr(b, f, in)
			if err != nil {
				return module.FunctionDef{}, err
			}
			target.Append(instrs...)
		}
	}

	fd, err := b.Generate()
	if err != nil {
		return module.FunctionDef{}, &Error{Kind: LoweringError, Msg: err.Error(), Span: f.Span, Err: err}
	}
	return fd, nil
}

func (l *lowerer) instr(b *builder.Builder, f *Function, in Instr) ([]builder.Instr, error) {
	switch in.Pseudo {
	case PseudoLPush:
		idx := l.def.AddInternedValue(in.Operand.Literal)
		arg, err := operand16(in.Operand.Span, "constant pool index", uint64(idx))
		if err != nil {
			return nil, err
		}
		return []builder.Instr{builder.OpArg(bytecode.PUSH, arg)}, nil

	case PseudoFCall:
		arg, err := l.constRef(in.Operand)
		if err != nil {
			return nil, err
		}
		return []builder.Instr{
			builder.OpArg(bytecode.PUSH, arg),
			builder.Op(bytecode.FLOOKUP),
			builder.Op(bytecode.CALL),
		}, nil
	}

	switch in.Operand.Kind {
	case OperandNone:
		return []builder.Instr{builder.Op(in.Op)}, nil
	case OperandIndex:
		what := "constant pool index"
		if in.Op != bytecode.PUSH {
			what = "slot index"
		}
		arg, err := operand16(in.Operand.Span, what, in.Operand.Index)
		if err != nil {
			return nil, err
		}
		return []builder.Instr{builder.OpArg(in.Op, arg)}, nil
	case OperandName:
		arg, err := l.constRef(in.Operand)
		if err != nil {
			return nil, err
		}
		return []builder.Instr{builder.OpArg(in.Op, arg)}, nil
	case OperandLabel:
		target, ok := b.FindBlock(in.Operand.Name)
		if !ok {
			return nil, loweringErr(in.Operand.Span, "unknown label :%s in %s", in.Operand.Name, f.Name)
		}
		if in.Op == bytecode.JTRUE {
			return []builder.Instr{builder.JumpTrue(target)}, nil
		}
		return []builder.Instr{builder.Jump(target)}, nil
	}
	return nil, loweringErr(in.Span, "cannot lower %s", in.Mnemonic)
}

// constRef resolves a constant name to its pool index.
func (l *lowerer) constRef(op Operand) (uint16, error) {
	idx, ok := l.consts[op.Name]
	if !ok {
		return 0, loweringErr(op.Span, "unknown constant %q", op.Name)
	}
	return operand16(op.Span, "constant pool index", uint64(idx))
}

func operand16(sp source.Span, what string, n uint64) (uint16, error) {
	v, err := safecast.Conv[uint16](n)
	if err != nil {
		return 0, &Error{Kind: LoweringError, Msg: what + " does not fit in 16 bits", Span: sp, Err: err}
	}
	return v, nil
}
