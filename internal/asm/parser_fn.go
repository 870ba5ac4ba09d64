package asm

import (
	"fmt"
	"strconv"

	"tukun/internal/diag"
	"tukun/internal/token"
)

// parseFunction handles `fn name`; the blocks follow as separate items.
func (p *Parser) parseFunction() bool {
	kw := p.advance()
	name, ok := p.expect(token.Ident, "function name")
	if !ok {
		return false
	}
	if _, dup := p.mod.FindFunction(name.Text); dup {
		p.err(diag.AstDuplicateFn, name.Span, fmt.Sprintf("function %s is already defined", name.Text))
	}
	p.fn = &Function{Name: name.Text, Span: kw.Span.Cover(name.Span)}
	p.block = nil
	p.mod.Functions = append(p.mod.Functions, p.fn)
	return true
}

// parseLabel handles `:label`, which opens a block in the current function.
func (p *Parser) parseLabel() bool {
	colon := p.advance()
	name, ok := p.expect(token.Ident, "block label")
	if !ok {
		return false
	}
	sp := colon.Span.Cover(name.Span)
	if p.fn == nil {
		p.err(diag.SynBlockOutsideFn, sp, fmt.Sprintf("block :%s is not inside a function", name.Text))
		return true
	}
	if _, dup := p.fn.FindBlock(name.Text); dup {
		p.err(diag.AstDuplicateLabel, sp, fmt.Sprintf("label :%s is already defined in %s", name.Text, p.fn.Name))
		return true
	}
	p.block = &Block{Label: name.Text, Span: sp}
	p.fn.Blocks = append(p.fn.Blocks, p.block)
	return true
}

// parseInstr reads one mnemonic and the operand its rule asks for.
func (p *Parser) parseInstr() bool {
	tok := p.advance()
	m, ok := lookupMnemonic(tok.Text)
	if !ok {
		p.err(diag.SynUnknownMnemonic, tok.Span, fmt.Sprintf("unknown instruction %q", tok.Text))
		return false
	}
	if p.block == nil {
		p.err(diag.SynInstrOutsideBlock, tok.Span, fmt.Sprintf("instruction %s is not inside a labelled block", tok.Text))
		return false
	}

	in := Instr{Mnemonic: tok.Text, Op: m.op, Pseudo: m.pseudo, Span: tok.Span}
	operand, ok := p.parseOperand(m.rule, tok)
	if !ok {
		return false
	}
	in.Operand = operand
	in.Span = in.Span.Cover(p.lastSpan)
	p.block.Instrs = append(p.block.Instrs, in)
	return true
}

func (p *Parser) parseOperand(rule operandRule, mn token.Token) (Operand, bool) {
	next := p.lx.Peek()
	missing := func(what string) (Operand, bool) {
		p.err(diag.SynExpectOperand, p.diagSpan(next),
			fmt.Sprintf("%s expects %s, found %s", mn.Text, what, next.Describe()))
		return Operand{}, false
	}

	switch rule {
	case noOperand:
		return Operand{}, true

	case indexOrName:
		switch next.Kind {
		case token.IntLit:
			return p.indexOperand(next)
		case token.StringLit:
			return p.nameOperand(next)
		}
		return missing("a constant index or name")

	case slotIndex:
		if next.Kind != token.IntLit {
			return missing("a slot index")
		}
		return p.indexOperand(next)

	case labelRef:
		if next.Kind != token.Colon {
			return missing("a :label")
		}
		p.advance()
		name, ok := p.expect(token.Ident, "label name")
		if !ok {
			return Operand{}, false
		}
		return Operand{Kind: OperandLabel, Name: name.Text, Span: next.Span.Cover(name.Span)}, true

	case literalValue:
		if !next.IsLiteral() {
			return missing("a literal")
		}
		v, ok := p.parseLiteral()
		return Operand{Kind: OperandLiteral, Literal: v, Span: next.Span}, ok

	case constName:
		if next.Kind != token.StringLit {
			return missing("a quoted function name")
		}
		return p.nameOperand(next)
	}
	return missing("an operand")
}

func (p *Parser) indexOperand(tok token.Token) (Operand, bool) {
	p.advance()
	n, err := strconv.ParseUint(tok.Text, 10, 64)
	if err != nil {
		p.err(diag.AstBadLiteral, tok.Span, fmt.Sprintf("invalid index %s", tok.Text))
		return Operand{}, false
	}
	return Operand{Kind: OperandIndex, Index: n, Span: tok.Span}, true
}

func (p *Parser) nameOperand(tok token.Token) (Operand, bool) {
	s, ok := p.expectString("a quoted name")
	if !ok {
		return Operand{}, false
	}
	return Operand{Kind: OperandName, Name: s, Span: tok.Span}, true
}
