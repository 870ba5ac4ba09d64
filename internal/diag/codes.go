package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// lexical
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1003
	LexBadEscape          Code = 1004

	// syntax
	SynUnexpectedToken   Code = 2001
	SynExpectOperand     Code = 2002
	SynUnknownMnemonic   Code = 2003
	SynUnknownDirective  Code = 2004
	SynInstrOutsideBlock Code = 2005
	SynBlockOutsideFn    Code = 2006

	// ast generation
	AstUnknownAttribute Code = 3001
	AstUndefinedType    Code = 3002
	AstDuplicateType    Code = 3003
	AstDuplicateFn      Code = 3004
	AstDuplicateLabel   Code = 3005
	AstBadLiteral       Code = 3006
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	LexUnknownChar:        "Unknown character",
	LexUnterminatedString: "Unterminated string literal",
	LexBadNumber:          "Malformed number literal",
	LexBadEscape:          "Invalid escape sequence",
	SynUnexpectedToken:    "Unexpected token",
	SynExpectOperand:      "Missing instruction operand",
	SynUnknownMnemonic:    "Unknown instruction",
	SynUnknownDirective:   "Unknown directive",
	SynInstrOutsideBlock:  "Instruction outside of a block",
	SynBlockOutsideFn:     "Block label outside of a function",
	AstUnknownAttribute:   "Unknown attribute",
	AstUndefinedType:      "Undefined type name",
	AstDuplicateType:      "Duplicate type name",
	AstDuplicateFn:        "Duplicate function",
	AstDuplicateLabel:     "Duplicate block label",
	AstBadLiteral:         "Literal out of range",
}

// String renders the code with its phase prefix, e.g. "LEX1002".
func (c Code) String() string {
	switch {
	case c >= 1000 && c < 2000:
		return fmt.Sprintf("LEX%04d", uint16(c))
	case c >= 2000 && c < 3000:
		return fmt.Sprintf("SYN%04d", uint16(c))
	case c >= 3000 && c < 4000:
		return fmt.Sprintf("AST%04d", uint16(c))
	}
	return fmt.Sprintf("E%04d", uint16(c))
}

func (c Code) Title() string {
	if d, ok := codeDescription[c]; ok {
		return d
	}
	return codeDescription[UnknownCode]
}

// IsSyntax reports whether c comes from the lexer or the parser proper.
func (c Code) IsSyntax() bool { return c >= 1000 && c < 3000 }
