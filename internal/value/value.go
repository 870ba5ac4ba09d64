// Package value implements the runtime values manipulated by the VM.
//
// Scalars (integers, logicals, floats, strings, type descriptors) are
// copied with the Value that carries them. Arrays and records are shared:
// a Value holds a pointer, so every copy of the Value aliases the same
// storage and observes mutations made through any of them.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"tukun/internal/types"
)

// Callable is the part of a function reference the value model relies on.
type Callable interface {
	FullName() string
}

// Value is a tagged runtime value.
type Value struct {
	kind types.Kind
	bits uint64
	str  string
	fn   Callable
	arr  *Array
	rec  *Record
	typ  *types.Type
}

func Int(v uint64) Value    { return Value{kind: types.KindInteger, bits: v} }
func Float(v float64) Value { return Value{kind: types.KindFloat, bits: math.Float64bits(v)} }
func Str(v string) Value    { return Value{kind: types.KindString, str: v} }
func Func(c Callable) Value { return Value{kind: types.KindFunction, fn: c} }
func Arr(a *Array) Value    { return Value{kind: types.KindArr, arr: a} }
func Rec(r *Record) Value   { return Value{kind: types.KindRecord, rec: r} }
func TypeOf(t types.Type) Value {
	tt := t
	return Value{kind: types.KindType, typ: &tt}
}

func Bool(v bool) Value {
	var b uint64
	if v {
		b = 1
	}
	return Value{kind: types.KindLogical, bits: b}
}

// Kind reports the variant of v.
func (v Value) Kind() types.Kind { return v.kind }

// IsValid is false for the zero Value.
func (v Value) IsValid() bool { return v.kind != types.KindInvalid }

func (v Value) AsInt() (uint64, bool) {
	return v.bits, v.kind == types.KindInteger
}

func (v Value) AsBool() (bool, bool) {
	return v.bits != 0, v.kind == types.KindLogical
}

func (v Value) AsFloat() (float64, bool) {
	return math.Float64frombits(v.bits), v.kind == types.KindFloat
}

func (v Value) AsString() (string, bool) {
	return v.str, v.kind == types.KindString
}

func (v Value) AsFunc() (Callable, bool) {
	return v.fn, v.kind == types.KindFunction
}

func (v Value) AsArray() (*Array, bool) {
	return v.arr, v.kind == types.KindArr
}

func (v Value) AsRecord() (*Record, bool) {
	return v.rec, v.kind == types.KindRecord
}

// AsType returns the descriptor carried by a type value.
func (v Value) AsType() (types.Type, bool) {
	if v.kind != types.KindType || v.typ == nil {
		return types.Type{}, false
	}
	return *v.typ, true
}

// Type returns the runtime type of v.
func (v Value) Type() types.Type {
	switch v.kind {
	case types.KindInteger:
		return types.Integer
	case types.KindLogical:
		return types.Logical
	case types.KindFloat:
		return types.Float
	case types.KindString:
		return types.String
	case types.KindFunction:
		return types.Function
	case types.KindArr:
		return v.arr.Type()
	case types.KindRecord:
		return v.rec.Type()
	case types.KindType:
		return types.Of(*v.typ)
	default:
		return types.Type{}
	}
}

// Equal compares values structurally. Values of different types are never
// equal. Floats compare by bit pattern, which matches a total order: NaN
// equals an identical NaN and -0 differs from +0.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case types.KindInteger, types.KindLogical, types.KindFloat:
		return v.bits == o.bits
	case types.KindString:
		return v.str == o.str
	case types.KindFunction:
		return fullName(v.fn) == fullName(o.fn)
	case types.KindArr:
		return v.arr.Equal(o.arr)
	case types.KindRecord:
		return v.rec.Equal(o.rec)
	case types.KindType:
		return v.typ.Equal(*o.typ)
	default:
		return true
	}
}

func fullName(c Callable) string {
	if c == nil {
		return ""
	}
	return c.FullName()
}

func (v Value) String() string {
	switch v.kind {
	case types.KindInteger:
		return "Integer(" + strconv.FormatUint(v.bits, 10) + ")"
	case types.KindLogical:
		return "Logical(" + strconv.FormatBool(v.bits != 0) + ")"
	case types.KindFloat:
		return "Float(" + strconv.FormatFloat(math.Float64frombits(v.bits), 'g', -1, 64) + ")"
	case types.KindString:
		return "String(" + strconv.Quote(v.str) + ")"
	case types.KindFunction:
		return "Function(" + fullName(v.fn) + ")"
	case types.KindArr:
		return v.arr.String()
	case types.KindRecord:
		return v.rec.String()
	case types.KindType:
		return "Type(" + v.typ.String() + ")"
	default:
		return "<invalid>"
	}
}

func joinValues(open, close byte, vals []Value) string {
	var sb strings.Builder
	sb.WriteByte(open)
	for i, e := range vals {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteByte(close)
	return sb.String()
}

// TypeMismatchError reports an element whose type differs from the slot it
// is stored into.
type TypeMismatchError struct {
	Index    int
	Expected types.Type
	Actual   types.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("element %d: expected %s, found %s", e.Index, e.Expected, e.Actual)
}

// IndexError reports an out-of-range element access.
type IndexError struct {
	Index uint64
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of bounds for length %d", e.Index, e.Len)
}
