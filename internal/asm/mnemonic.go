package asm

import (
	"strings"

	"tukun/internal/bytecode"
)

type operandRule uint8

const (
	noOperand    operandRule = iota
	indexOrName              // push
	slotIndex                // toslot, fromslot
	labelRef                 // jump, jtrue
	literalValue             // lpush
	constName                // fcall
)

type mnemonic struct {
	op     bytecode.Opcode
	pseudo Pseudo
	rule   operandRule
}

var mnemonics = buildMnemonics()

func buildMnemonics() map[string]mnemonic {
	out := make(map[string]mnemonic)
	for _, op := range bytecode.AllOpcodes() {
		m := mnemonic{op: op}
		switch op {
		case bytecode.PUSH:
			m.rule = indexOrName
		case bytecode.TOSLOT, bytecode.FROMSLOT:
			m.rule = slotIndex
		case bytecode.JUMP, bytecode.JTRUE:
			m.rule = labelRef
		}
		out[strings.ToLower(op.String())] = m
	}
	out["lpush"] = mnemonic{op: bytecode.PUSH, pseudo: PseudoLPush, rule: literalValue}
	out["fcall"] = mnemonic{op: bytecode.CALL, pseudo: PseudoFCall, rule: constName}
	return out
}

// lookupMnemonic is case-insensitive.
func lookupMnemonic(name string) (mnemonic, bool) {
	m, ok := mnemonics[strings.ToLower(name)]
	return m, ok
}
