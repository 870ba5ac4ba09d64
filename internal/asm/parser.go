package asm

import (
	"tukun/internal/diag"
	"tukun/internal/lexer"
	"tukun/internal/source"
	"tukun/internal/token"
)

// ParseOptions configures Parse.
type ParseOptions struct {
	// Reporter receives lexical and syntax diagnostics.
	Reporter diag.Reporter
	// MaxErrors stops parsing after that many errors; 0 means no limit.
	MaxErrors int
}

// Parser holds the state for one source file.
type Parser struct {
	lx       *lexer.Lexer
	mod      *Module
	fn       *Function
	block    *Block
	opts     ParseOptions
	errors   int
	lastSpan source.Span
}

// Parse builds the AST of file. Diagnostics go to opts.Reporter; the returned
// module is complete only when no error was reported.
func Parse(file *source.File, opts ParseOptions) *Module {
	p := &Parser{
		lx:   lexer.New(file, lexer.Options{Reporter: opts.Reporter}),
		mod:  newModule(),
		opts: opts,
	}
	p.parseItems()
	return p.mod
}

func (p *Parser) parseItems() {
	for !p.at(token.EOF) && !p.enough() {
		if !p.parseItem() {
			p.resync()
		}
	}
}

// parseItem dispatches on the first token of an item.
func (p *Parser) parseItem() bool {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.At:
		return p.parseAttribute()
	case token.Percent:
		return p.parseDirective()
	case token.Colon:
		return p.parseLabel()
	case token.Ident:
		if tok.Text == "fn" {
			return p.parseFunction()
		}
		return p.parseInstr()
	case token.Invalid:
		// already reported by the lexer
		p.advance()
		p.errors++
		return false
	}
	p.err(diag.SynUnexpectedToken, tok.Span, "unexpected "+tok.Describe())
	p.advance()
	return false
}

func (p *Parser) at(k token.Kind) bool { return p.lx.Peek().Kind == k }

func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF {
		p.lastSpan = tok.Span
	}
	return tok
}

// expect consumes a token of kind k or reports what was found instead.
func (p *Parser) expect(k token.Kind, what string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	tok := p.lx.Peek()
	p.err(diag.SynUnexpectedToken, p.diagSpan(tok), "expected "+what+", found "+tok.Describe())
	return tok, false
}

// diagSpan points just past the last token when the offending one is EOF.
func (p *Parser) diagSpan(tok token.Token) source.Span {
	if tok.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return tok.Span
}

func (p *Parser) err(code diag.Code, sp source.Span, msg string) {
	p.errors++
	if p.opts.MaxErrors > 0 && p.errors > p.opts.MaxErrors {
		return
	}
	diag.ReportError(p.opts.Reporter, code, sp, msg)
}

func (p *Parser) enough() bool {
	return p.opts.MaxErrors > 0 && p.errors >= p.opts.MaxErrors
}

// resync skips to the next token that can start an item.
func (p *Parser) resync() {
	for {
		switch p.lx.Peek().Kind {
		case token.EOF, token.At, token.Percent, token.Colon, token.Ident:
			return
		}
		p.advance()
	}
}
