package lexer

import (
	"tukun/internal/diag"
	"tukun/internal/token"
)

func (lx *Lexer) scanIdent() token.Token {
	start := lx.cursor.Mark()
	r, sz := lx.peekRune()
	if sz == 0 || !isIdentStartRune(r) {
		lx.bumpRune()
		lx.errLex(diag.LexUnknownChar, start, "unexpected character")
		return lx.tokenFrom(token.Invalid, start)
	}
	lx.bumpRune()
	for !lx.cursor.EOF() {
		if b := lx.cursor.Peek(); b < utf8RuneSelf {
			if !isIdentContinueByte(b) {
				break
			}
			lx.cursor.Bump()
			continue
		}
		r, _ := lx.peekRune()
		if !isIdentContinueRune(r) {
			break
		}
		lx.bumpRune()
	}
	return lx.tokenFrom(token.Ident, start)
}
