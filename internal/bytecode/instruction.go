package bytecode

import (
	"errors"
	"fmt"
)

// ErrTruncated is returned when an operand runs past the end of the body.
var ErrTruncated = errors.New("truncated instruction operand")

// InvalidOpcodeError reports a byte that does not name an instruction.
type InvalidOpcodeError struct {
	Offset int
	Byte   uint8
}

func (e *InvalidOpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode 0x%02X at offset %d", e.Byte, e.Offset)
}

// Instruction is a decoded instruction. Arg is meaningful only for opcodes
// with a u16 operand: the pool index of PUSH, the slot of FROMSLOT/TOSLOT,
// and the absolute byte offset targeted by JUMP/JTRUE.
type Instruction struct {
	Op  Opcode
	Arg uint16
}

func (i Instruction) Size() int { return i.Op.Size() }

// Encode appends the instruction to b.
func (i Instruction) Encode(b *Bytecode) {
	b.WriteU8(uint8(i.Op))
	if i.Op.OperandLen() == 2 {
		b.WriteU16(i.Arg)
	}
}

func (i Instruction) String() string {
	if i.Op.OperandLen() == 0 {
		return i.Op.String()
	}
	return fmt.Sprintf("%s %d", i.Op, i.Arg)
}

// Decode reads the instruction starting at offset and returns it together
// with the offset of the following instruction.
func Decode(b *Bytecode, offset int) (Instruction, int, error) {
	if offset < 0 || offset >= b.Len() {
		return Instruction{}, offset, ErrTruncated
	}
	raw := b.ReadU8(offset)
	op := Opcode(raw)
	if !op.Valid() {
		return Instruction{}, offset, &InvalidOpcodeError{Offset: offset, Byte: raw}
	}
	next := offset + 1
	ins := Instruction{Op: op}
	if op.OperandLen() == 2 {
		if next+2 > b.Len() {
			return Instruction{}, offset, ErrTruncated
		}
		ins.Arg = b.ReadU16(next)
		next += 2
	}
	return ins, next, nil
}

// DecodeAll decodes a whole body.
func DecodeAll(b *Bytecode) ([]Instruction, error) {
	var out []Instruction
	for off := 0; off < b.Len(); {
		ins, next, err := Decode(b, off)
		if err != nil {
			return out, err
		}
		out = append(out, ins)
		off = next
	}
	return out, nil
}
