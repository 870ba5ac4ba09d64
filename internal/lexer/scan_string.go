package lexer

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"

	"tukun/internal/diag"
	"tukun/internal/token"
)

// scanString scans a double-quoted literal on a single line. Token.Text keeps
// the quotes and escapes; use Unquote for the value.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case '"':
			lx.cursor.Bump()
			tok := lx.tokenFrom(token.StringLit, start)
			if _, err := Unquote(tok.Text); err != nil {
				lx.errLex(diag.LexBadEscape, start, err.Error())
				tok.Kind = token.Invalid
			}
			return tok
		case '\\':
			lx.cursor.Bump()
			if lx.cursor.Peek() == '\n' {
				continue
			}
			lx.cursor.Bump()
		case '\n':
			lx.errLex(diag.LexUnterminatedString, start, "newline in string literal")
			return lx.tokenFrom(token.Invalid, start)
		default:
			lx.cursor.Bump()
		}
	}
	lx.errLex(diag.LexUnterminatedString, start, "unterminated string literal")
	return lx.tokenFrom(token.Invalid, start)
}

var errBadEscape = errors.New("invalid escape sequence")

// Unquote strips the quotes of a string literal, resolves the escapes \" \\
// \n \t \r and returns the content in Unicode normalization form C, so two
// visually identical names always intern to the same constant.
func Unquote(text string) (string, error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", errors.New("not a string literal")
	}
	body := text[1 : len(text)-1]
	if !strings.ContainsRune(body, '\\') {
		return norm.NFC.String(body), nil
	}

	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i == len(body) {
			return "", errBadEscape
		}
		switch body[i] {
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		default:
			return "", errBadEscape
		}
	}
	return norm.NFC.String(sb.String()), nil
}
