package asm

import (
	"fmt"

	"tukun/internal/source"
)

// ErrorKind classifies assembly failures by pipeline stage.
type ErrorKind uint8

const (
	ParseError ErrorKind = iota + 1
	AstGenerationError
	LoweringError
	SerializationError
)

func (k ErrorKind) String() string {
	switch k {
	case ParseError:
		return "parse error"
	case AstGenerationError:
		return "ast generation error"
	case LoweringError:
		return "lowering error"
	case SerializationError:
		return "serialization error"
	}
	return "assembler error"
}

// Error is the first failure of an assembly. Pos is "path:line:col" when the
// failure has a source location.
type Error struct {
	Kind ErrorKind
	Msg  string
	Span source.Span
	Pos  string
	Err  error
}

func (e *Error) Error() string {
	if e.Pos != "" {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func loweringErr(sp source.Span, format string, args ...any) *Error {
	return &Error{Kind: LoweringError, Msg: fmt.Sprintf(format, args...), Span: sp}
}
