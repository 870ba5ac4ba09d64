package asm

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"tukun/internal/diag"
	"tukun/internal/lexer"
	"tukun/internal/module"
	"tukun/internal/token"
	"tukun/internal/types"
)

// parseAttribute handles `@modname "name"`.
func (p *Parser) parseAttribute() bool {
	at := p.advance()
	name, ok := p.expect(token.Ident, "attribute name")
	if !ok {
		return false
	}
	val, ok := p.expectString("attribute value")
	if !ok {
		return false
	}
	sp := at.Span.Cover(p.lastSpan)
	switch name.Text {
	case "modname":
		p.mod.Name = val
	default:
		p.err(diag.AstUnknownAttribute, name.Span, fmt.Sprintf("unknown attribute @%s", name.Text))
		return true
	}
	p.mod.Attributes = append(p.mod.Attributes, Attribute{Name: name.Text, Value: val, Span: sp})
	return true
}

// parseDirective handles `%const "name" = literal` and
// `%typedef "name" = type`.
func (p *Parser) parseDirective() bool {
	pct := p.advance()
	kw, ok := p.expect(token.Ident, "directive name")
	if !ok {
		return false
	}
	switch kw.Text {
	case "const", "typedef":
	default:
		p.err(diag.SynUnknownDirective, kw.Span, fmt.Sprintf("unknown directive %%%s", kw.Text))
		return false
	}

	nameTok := p.lx.Peek()
	name, ok := p.expectString("a quoted name")
	if !ok {
		return false
	}
	if _, ok := p.expect(token.Assign, "'='"); !ok {
		return false
	}

	if kw.Text == "const" {
		v, ok := p.parseLiteral()
		if !ok {
			return false
		}
		p.mod.AddConstant(Constant{Name: name, Value: v, Span: pct.Span.Cover(p.lastSpan)})
		return true
	}

	t, ok := p.parseType()
	if !ok {
		return false
	}
	if prev, dup := p.mod.Types[name]; dup {
		msg := fmt.Sprintf("type %q is already defined", name)
		if prev.Builtin {
			msg = fmt.Sprintf("type %q is a built-in type", name)
		}
		p.err(diag.AstDuplicateType, nameTok.Span, msg)
		return true
	}
	p.mod.Types[name] = TypeDecl{Name: name, Type: t, Span: pct.Span.Cover(p.lastSpan)}
	return true
}

// parseType reads `"name"`, `array(N, type)` or `record(type, ...)`. Names
// resolve against the types declared so far in this module only.
func (p *Parser) parseType() (types.Type, bool) {
	tok := p.lx.Peek()
	switch {
	case tok.Kind == token.StringLit:
		name, ok := p.expectString("type name")
		if !ok {
			return types.Type{}, false
		}
		decl, found := p.mod.Types[name]
		if !found {
			p.err(diag.AstUndefinedType, tok.Span, fmt.Sprintf("type name %s is undefined", name))
			return types.Type{}, false
		}
		return decl.Type, true

	case tok.Kind == token.Ident && tok.Text == "array":
		p.advance()
		if _, ok := p.expect(token.LParen, "'('"); !ok {
			return types.Type{}, false
		}
		countTok, ok := p.expect(token.IntLit, "element count")
		if !ok {
			return types.Type{}, false
		}
		count, ok := p.parseCount(countTok)
		if !ok {
			return types.Type{}, false
		}
		if _, ok := p.expect(token.Comma, "','"); !ok {
			return types.Type{}, false
		}
		elem, ok := p.parseType()
		if !ok {
			return types.Type{}, false
		}
		if _, ok := p.expect(token.RParen, "')'"); !ok {
			return types.Type{}, false
		}
		return types.NewArray(elem, count), true

	case tok.Kind == token.Ident && tok.Text == "record":
		p.advance()
		if _, ok := p.expect(token.LParen, "'('"); !ok {
			return types.Type{}, false
		}
		var fields []types.Type
		for !p.at(token.RParen) {
			if len(fields) > 0 {
				if _, ok := p.expect(token.Comma, "',' or ')'"); !ok {
					return types.Type{}, false
				}
			}
			f, ok := p.parseType()
			if !ok {
				return types.Type{}, false
			}
			fields = append(fields, f)
		}
		p.advance()
		return types.NewRecord(fields...), true
	}
	p.err(diag.SynUnexpectedToken, p.diagSpan(tok), "expected a type, found "+tok.Describe())
	return types.Type{}, false
}

func (p *Parser) parseCount(tok token.Token) (int, bool) {
	n, err := strconv.ParseUint(tok.Text, 10, 64)
	if err == nil {
		var c int
		if c, err = safecast.Conv[int](n); err == nil {
			return c, true
		}
	}
	p.err(diag.AstBadLiteral, tok.Span, fmt.Sprintf("invalid element count %s", tok.Text))
	return 0, false
}

// parseLiteral reads an integer, float or string literal.
func (p *Parser) parseLiteral() (module.InternValue, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		n, err := strconv.ParseUint(tok.Text, 10, 64)
		if err != nil {
			p.err(diag.AstBadLiteral, tok.Span, fmt.Sprintf("integer literal %s does not fit in 64 unsigned bits", tok.Text))
			return module.InternValue{}, false
		}
		return module.IntValue(n), true
	case token.FloatLit:
		p.advance()
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			p.err(diag.AstBadLiteral, tok.Span, fmt.Sprintf("invalid float literal %s", tok.Text))
			return module.InternValue{}, false
		}
		return module.FloatValue(f), true
	case token.StringLit:
		s, ok := p.expectString("string")
		return module.StringValue(s), ok
	}
	p.err(diag.SynUnexpectedToken, p.diagSpan(tok), "expected a literal, found "+tok.Describe())
	return module.InternValue{}, false
}

func (p *Parser) expectString(what string) (string, bool) {
	tok, ok := p.expect(token.StringLit, what)
	if !ok {
		return "", false
	}
	s, err := lexer.Unquote(tok.Text)
	if err != nil {
		p.err(diag.LexBadEscape, tok.Span, err.Error())
		return "", false
	}
	return s, true
}
