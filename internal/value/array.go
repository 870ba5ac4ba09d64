package value

import (
	"errors"

	"tukun/internal/types"
)

// ErrEmptyArray is returned when an element type cannot be inferred.
var ErrEmptyArray = errors.New("cannot infer the element type of an empty array")

// Array is a fixed-length, homogeneous, shared container.
type Array struct {
	elem   types.Type
	values []Value
}

// NewArray builds an array of elem, checking every value against it.
func NewArray(elem types.Type, values []Value) (*Array, error) {
	for i, v := range values {
		if vt := v.Type(); !vt.Equal(elem) {
			return nil, &TypeMismatchError{Index: i, Expected: elem, Actual: vt}
		}
	}
	vs := make([]Value, len(values))
	copy(vs, values)
	return &Array{elem: elem, values: vs}, nil
}

// InferArray builds an array whose element type is the type of values[0].
func InferArray(values []Value) (*Array, error) {
	if len(values) == 0 {
		return nil, ErrEmptyArray
	}
	return NewArray(values[0].Type(), values)
}

func (a *Array) Len() int               { return len(a.values) }
func (a *Array) ElemType() types.Type   { return a.elem }
func (a *Array) Type() types.Type       { return types.NewArray(a.elem, len(a.values)) }
func (a *Array) Shape() types.ArrayType { return types.ArrayType{Elem: a.elem, Len: len(a.values)} }

// Get returns the element at idx.
func (a *Array) Get(idx uint64) (Value, error) {
	if idx >= uint64(len(a.values)) {
		return Value{}, &IndexError{Index: idx, Len: len(a.values)}
	}
	return a.values[idx], nil
}

// Set replaces the element at idx; v must have the element type.
func (a *Array) Set(idx uint64, v Value) error {
	if idx >= uint64(len(a.values)) {
		return &IndexError{Index: idx, Len: len(a.values)}
	}
	if vt := v.Type(); !vt.Equal(a.elem) {
		return &TypeMismatchError{Index: int(idx), Expected: a.elem, Actual: vt}
	}
	a.values[idx] = v
	return nil
}

// Values returns a copy of the elements.
func (a *Array) Values() []Value {
	out := make([]Value, len(a.values))
	copy(out, a.values)
	return out
}

// Equal compares element types, lengths and elements pairwise.
func (a *Array) Equal(o *Array) bool {
	if a == o {
		return true
	}
	if a == nil || o == nil {
		return false
	}
	if len(a.values) != len(o.values) || !a.elem.Equal(o.elem) {
		return false
	}
	for i := range a.values {
		if !a.values[i].Equal(o.values[i]) {
			return false
		}
	}
	return true
}

func (a *Array) String() string { return joinValues('[', ']', a.values) }
