package lexer

import "tukun/internal/diag"

type Options struct {
	// Reporter receives lexical errors; nil drops them and scanning goes on.
	Reporter diag.Reporter
}

func (lx *Lexer) errLex(code diag.Code, m Mark, msg string) {
	diag.ReportError(lx.opts.Reporter, code, lx.cursor.SpanFrom(m), msg)
}
