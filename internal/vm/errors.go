package vm

import (
	"fmt"
	"strings"

	"tukun/internal/bytecode"
	"tukun/internal/types"
	"tukun/internal/value"
)

// ErrCode identifies the kind of an execution error.
type ErrCode int

// Stable codes - do not renumber.
const (
	EmptyStack             ErrCode = 1001
	InstructionOutOfBounds ErrCode = 1002
	InvalidBytecode        ErrCode = 1003
	MissingInternValue     ErrCode = 1004
	InvalidOperands        ErrCode = 1005
	MissingFunction        ErrCode = 1006
	MissingType            ErrCode = 1007
	InvalidSlot            ErrCode = 1008
	InvalidType            ErrCode = 1009
	IndexOutOfBounds       ErrCode = 1010
	UnsetSlot              ErrCode = 1011
	NativeFailure          ErrCode = 1012
	CallDepthExceeded      ErrCode = 1013
	Cancelled              ErrCode = 1014
)

var codeNames = map[ErrCode]string{
	EmptyStack:             "EmptyStack",
	InstructionOutOfBounds: "InstructionOutOfBounds",
	InvalidBytecode:        "InvalidBytecode",
	MissingInternValue:     "MissingInternValue",
	InvalidOperands:        "InvalidOperands",
	MissingFunction:        "MissingFunction",
	MissingType:            "MissingType",
	InvalidSlot:            "InvalidSlot",
	InvalidType:            "InvalidType",
	IndexOutOfBounds:       "IndexOutOfBounds",
	UnsetSlot:              "UnsetSlot",
	NativeFailure:          "NativeFailure",
	CallDepthExceeded:      "CallDepthExceeded",
	Cancelled:              "Cancelled",
}

// String returns the code as "VM1001".
func (c ErrCode) String() string { return fmt.Sprintf("VM%d", int(c)) }

// Name returns the symbolic name of the code.
func (c ErrCode) Name() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return c.String()
}

// ErrData is the payload of an execution error. Which fields are set
// depends on Code.
type ErrData struct {
	Code ErrCode

	// InvalidOperands: the instruction and the popped values in pop order.
	Op       bytecode.Opcode
	Operands []value.Value

	// MissingInternValue, InvalidSlot, UnsetSlot, IndexOutOfBounds.
	Index uint64
	Len   int

	// MissingFunction, MissingType, NativeFailure.
	Name string

	// InvalidType. Expected is nil when any value of the Want category
	// would have been accepted.
	Actual   types.Type
	Expected *types.Type
	Want     string

	// InvalidBytecode, NativeFailure.
	Cause error
}

func (d ErrData) Detail() string {
	switch d.Code {
	case EmptyStack:
		return "pop from an empty stack"
	case InstructionOutOfBounds:
		return "instruction pointer past the end of the body"
	case InvalidBytecode:
		return fmt.Sprintf("cannot decode instruction: %v", d.Cause)
	case MissingInternValue:
		return fmt.Sprintf("no interned value at index %d", d.Index)
	case InvalidOperands:
		parts := make([]string, len(d.Operands))
		for i, v := range d.Operands {
			parts[i] = v.String()
		}
		return fmt.Sprintf("invalid operands for %s: [%s]", d.Op, strings.Join(parts, ", "))
	case MissingFunction:
		return fmt.Sprintf("function %s not found", d.Name)
	case MissingType:
		return fmt.Sprintf("type %s not found", d.Name)
	case InvalidSlot:
		return fmt.Sprintf("slot %d written before the slots below it", d.Index)
	case InvalidType:
		return fmt.Sprintf("expected %s, found %s", d.expectation(), d.Actual)
	case IndexOutOfBounds:
		return fmt.Sprintf("index %d out of bounds for length %d", d.Index, d.Len)
	case UnsetSlot:
		return fmt.Sprintf("slot %d read before being written", d.Index)
	case NativeFailure:
		return fmt.Sprintf("native %s failed: %v", d.Name, d.Cause)
	case CallDepthExceeded:
		return fmt.Sprintf("call depth limit %d exceeded", d.Len)
	case Cancelled:
		return fmt.Sprintf("execution cancelled: %v", d.Cause)
	default:
		return "unknown error"
	}
}

func (d ErrData) expectation() string {
	if d.Expected != nil {
		return d.Expected.String()
	}
	if d.Want != "" {
		return d.Want
	}
	return "a type descriptor"
}

// Equal compares two payloads, ignoring Cause.
func (d ErrData) Equal(o ErrData) bool {
	if d.Code != o.Code || d.Op != o.Op || d.Index != o.Index || d.Len != o.Len ||
		d.Name != o.Name || d.Want != o.Want || len(d.Operands) != len(o.Operands) {
		return false
	}
	for i := range d.Operands {
		if !d.Operands[i].Equal(o.Operands[i]) {
			return false
		}
	}
	if d.Code == InvalidType {
		if !d.Actual.Equal(o.Actual) || (d.Expected == nil) != (o.Expected == nil) {
			return false
		}
		if d.Expected != nil && !d.Expected.Equal(*o.Expected) {
			return false
		}
	}
	return true
}

// Error is a failed execution: the payload, the byte offset of the failing
// instruction within its function, and the call stack at the point of
// failure, innermost frame first.
type Error struct {
	Ptr       int
	Data      ErrData
	Backtrace []Frame
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s at %d: %s", e.Data.Code, e.Data.Code.Name(), e.Ptr, e.Data.Detail())
}

func (e *Error) Unwrap() error { return e.Data.Cause }

// Is matches another *Error by code, so errors.Is(err, &vm.Error{Data:
// vm.ErrData{Code: vm.EmptyStack}}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Data.Code == e.Data.Code
}

// Report renders the error followed by its backtrace.
func (e *Error) Report() string {
	var sb strings.Builder
	sb.WriteString(e.Error())
	sb.WriteByte('\n')
	if len(e.Backtrace) > 0 {
		sb.WriteString("backtrace:\n")
		for i, f := range e.Backtrace {
			fmt.Fprintf(&sb, "  %d: %s\n", i, f)
		}
	}
	return sb.String()
}
