// Package builder lays out named basic blocks into one function body and
// resolves block references in jumps to absolute byte offsets.
package builder

import (
	"fmt"

	"fortio.org/safecast"

	"tukun/internal/bytecode"
	"tukun/internal/module"
)

// Instr is an instruction whose jump target, if any, is still a block.
type Instr struct {
	Op     bytecode.Opcode
	Arg    uint16
	Target *Block
}

// Op builds an operand-less instruction.
func Op(op bytecode.Opcode) Instr { return Instr{Op: op} }

// OpArg builds an instruction with a u16 operand (PUSH, FROMSLOT, TOSLOT).
func OpArg(op bytecode.Opcode, arg uint16) Instr { return Instr{Op: op, Arg: arg} }

func Jump(target *Block) Instr     { return Instr{Op: bytecode.JUMP, Target: target} }
func JumpTrue(target *Block) Instr { return Instr{Op: bytecode.JTRUE, Target: target} }

func (i Instr) Size() int { return i.Op.Size() }

func (i Instr) String() string {
	if i.Target != nil {
		return fmt.Sprintf("%s :%s", i.Op, i.Target.name)
	}
	return bytecode.Instruction{Op: i.Op, Arg: i.Arg}.String()
}

// Block is a named straight-line sequence of instructions.
type Block struct {
	name   string
	owner  *Builder
	instrs []Instr
	offset int
}

func (b *Block) Name() string { return b.name }

// Append adds instructions to the end of the block.
func (b *Block) Append(instrs ...Instr) *Block {
	b.instrs = append(b.instrs, instrs...)
	return b
}

func (b *Block) Instrs() []Instr { return b.instrs }

// Size is the encoded size of the block.
func (b *Block) Size() int {
	n := 0
	for _, i := range b.instrs {
		n += i.Size()
	}
	return n
}

// IsTerminated reports whether the block contains a terminal instruction.
func (b *Block) IsTerminated() bool {
	for _, i := range b.instrs {
		if i.Op.IsTerminal() {
			return true
		}
	}
	return false
}

// Offset is the block's position in the generated body. It is only
// meaningful after Generate.
func (b *Block) Offset() int { return b.offset }

// Builder accumulates the blocks of one function.
type Builder struct {
	name   string
	blocks []*Block
	byName map[string]*Block
}

// New starts a function named name.
func New(name string) *Builder {
	return &Builder{name: name, byName: make(map[string]*Block)}
}

func (b *Builder) Name() string { return b.name }

// AppendBlock declares a block; declaration order is layout order. A name
// that is already declared returns the existing block.
func (b *Builder) AppendBlock(name string) *Block {
	if blk, ok := b.byName[name]; ok {
		return blk
	}
	blk := &Block{name: name, owner: b}
	b.blocks = append(b.blocks, blk)
	b.byName[name] = blk
	return blk
}

// FindBlock looks up a declared block.
func (b *Builder) FindBlock(name string) (*Block, bool) {
	blk, ok := b.byName[name]
	return blk, ok
}

func (b *Builder) Blocks() []*Block { return b.blocks }

// IsTerminated reports whether every block ends control flow.
func (b *Builder) IsTerminated() bool {
	for _, blk := range b.blocks {
		if !blk.IsTerminated() {
			return false
		}
	}
	return true
}

// BlockError reports a jump that cannot be resolved.
type BlockError struct {
	Function string
	Block    string
	Reason   string
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("%s: block %q: %s", e.Function, e.Block, e.Reason)
}

// Generate lays out the blocks and returns the function definition.
func (b *Builder) Generate() (module.FunctionDef, error) {
	offset := 0
	for _, blk := range b.blocks {
		blk.offset = offset
		offset += blk.Size()
	}

	body := bytecode.New()
	for _, blk := range b.blocks {
		for _, in := range blk.instrs {
			ins := bytecode.Instruction{Op: in.Op, Arg: in.Arg}
			if in.Op.IsJump() {
				tgt, err := b.resolve(in.Target)
				if err != nil {
					return module.FunctionDef{}, err
				}
				ins.Arg = tgt
			}
			ins.Encode(body)
		}
	}
	return module.FunctionDef{Name: b.name, Body: body}, nil
}

func (b *Builder) resolve(target *Block) (uint16, error) {
	if target == nil {
		return 0, &BlockError{Function: b.name, Block: "", Reason: "jump without target"}
	}
	if target.owner != b || b.byName[target.name] != target {
		return 0, &BlockError{Function: b.name, Block: target.name, Reason: "not declared in this function"}
	}
	off, err := safecast.Conv[uint16](target.offset)
	if err != nil {
		return 0, &BlockError{Function: b.name, Block: target.name, Reason: fmt.Sprintf("offset %d does not fit in 16 bits", target.offset)}
	}
	return off, nil
}
