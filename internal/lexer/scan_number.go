package lexer

import (
	"tukun/internal/diag"
	"tukun/internal/token"
)

// scanNumber accepts [-]digits with an optional fraction and exponent. Range
// checks are left to the parser, which knows what the literal is for.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	lx.cursor.Eat('-')
	lx.digits()

	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '.' && isDec(b1) {
		kind = token.FloatLit
		lx.cursor.Bump()
		lx.digits()
	}

	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		kind = token.FloatLit
		lx.cursor.Bump()
		if b := lx.cursor.Peek(); b == '+' || b == '-' {
			lx.cursor.Bump()
		}
		if !isDec(lx.cursor.Peek()) {
			lx.errLex(diag.LexBadNumber, start, "expected digit after exponent")
			return lx.tokenFrom(token.Invalid, start)
		}
		lx.digits()
	}

	if isIdentContinueByte(lx.cursor.Peek()) {
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		lx.errLex(diag.LexBadNumber, start, "malformed number literal")
		return lx.tokenFrom(token.Invalid, start)
	}
	return lx.tokenFrom(kind, start)
}

func (lx *Lexer) digits() {
	for isDec(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
}
