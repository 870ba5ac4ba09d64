package token

import "tukun/internal/source"

// Token is one lexeme. Text is the exact source slice covered by Span.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, StringLit:
		return true
	default:
		return false
	}
}

func (t Token) Is(k Kind) bool { return t.Kind == k }

// Describe renders the token for "expected X, found Y" messages.
func (t Token) Describe() string {
	switch t.Kind {
	case EOF, Invalid:
		return t.Kind.String()
	case Ident:
		return "'" + t.Text + "'"
	}
	if t.IsLiteral() {
		return t.Kind.String() + " " + t.Text
	}
	return t.Kind.String()
}
