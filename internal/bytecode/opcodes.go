package bytecode

import (
	"fmt"
	"strings"
)

// Opcode is the one-byte tag of an instruction. Tags are consecutive from
// zero; any byte at or above opMax is not an instruction.
type Opcode uint8

const (
	NOP Opcode = iota
	DUP
	SWAP
	POP
	PUSH
	FLOOKUP
	TLOOKUP
	CALL
	TYPEOF
	FROMSLOT
	TOSLOT
	ADD
	SUB
	EQUAL
	NOT
	AND
	OR
	JUMP
	JTRUE
	RET
	MKARRTYPE
	MKRECTYPE
	NEWARR
	NEWREC
	ARRGET
	ARRSET
	ARRLEN
	RECGET
	RECSET

	opMax
)

// OpInfo describes an opcode for validation and tooling.
type OpInfo struct {
	Name       string
	StackPop   int // -1 when it depends on operand values
	StackPush  int
	OperandLen int
	Terminal   bool
}

var opInfoTable = [opMax]OpInfo{
	NOP:  {"NOP", 0, 0, 0, false},
	DUP:  {"DUP", 1, 2, 0, false},
	SWAP: {"SWAP", 2, 2, 0, false},
	POP:  {"POP", 1, 0, 0, false},
	PUSH: {"PUSH", 0, 1, 2, false},

	FLOOKUP: {"FLOOKUP", 1, 1, 0, false},
	TLOOKUP: {"TLOOKUP", 1, 1, 0, false},
	CALL:    {"CALL", -1, -1, 0, false},
	TYPEOF:  {"TYPEOF", 1, 1, 0, false},

	FROMSLOT: {"FROMSLOT", 0, 1, 2, false},
	TOSLOT:   {"TOSLOT", 1, 0, 2, false},

	ADD:   {"ADD", 2, 1, 0, false},
	SUB:   {"SUB", 2, 1, 0, false},
	EQUAL: {"EQUAL", 2, 1, 0, false},
	NOT:   {"NOT", 1, 1, 0, false},
	AND:   {"AND", 2, 1, 0, false},
	OR:    {"OR", 2, 1, 0, false},

	JUMP:  {"JUMP", 0, 0, 2, true},
	JTRUE: {"JTRUE", 1, 0, 2, true},
	RET:   {"RET", 0, 0, 0, true},

	MKARRTYPE: {"MKARRTYPE", 2, 1, 0, false},
	MKRECTYPE: {"MKRECTYPE", -1, 1, 0, false},
	NEWARR:    {"NEWARR", -1, 1, 0, false},
	NEWREC:    {"NEWREC", -1, 1, 0, false},
	ARRGET:    {"ARRGET", 2, 1, 0, false},
	ARRSET:    {"ARRSET", 3, 1, 0, false},
	ARRLEN:    {"ARRLEN", 1, 1, 0, false},
	RECGET:    {"RECGET", 2, 1, 0, false},
	RECSET:    {"RECSET", 3, 1, 0, false},
}

var opByName = func() map[string]Opcode {
	m := make(map[string]Opcode, opMax)
	for op := NOP; op < opMax; op++ {
		m[strings.ToLower(opInfoTable[op].Name)] = op
	}
	return m
}()

// Valid reports whether op is a known opcode.
func (op Opcode) Valid() bool { return op < opMax }

// Info returns the metadata of op; unknown opcodes get a placeholder name.
func Info(op Opcode) OpInfo {
	if op.Valid() {
		return opInfoTable[op]
	}
	return OpInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", uint8(op))}
}

func (op Opcode) String() string { return Info(op).Name }

// OperandLen is the number of operand bytes following the tag.
func (op Opcode) OperandLen() int { return Info(op).OperandLen }

// Size is the encoded size of an instruction with this opcode.
func (op Opcode) Size() int { return 1 + op.OperandLen() }

// IsTerminal reports whether op ends straight-line control flow.
func (op Opcode) IsTerminal() bool { return Info(op).Terminal }

func (op Opcode) IsJump() bool { return op == JUMP || op == JTRUE }

// ParseOpcode looks up a mnemonic, ignoring case.
func ParseOpcode(name string) (Opcode, bool) {
	op, ok := opByName[strings.ToLower(name)]
	return op, ok
}

// AllOpcodes returns every opcode in tag order.
func AllOpcodes() []Opcode {
	out := make([]Opcode, 0, opMax)
	for op := NOP; op < opMax; op++ {
		out = append(out, op)
	}
	return out
}
