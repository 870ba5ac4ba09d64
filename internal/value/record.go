package value

import (
	"fmt"

	"tukun/internal/types"
)

// Record is a fixed-arity heterogeneous shared container. Field order acts
// as the field name.
type Record struct {
	fields []types.Type
	values []Value
}

// NewRecord builds a record of shape rt, checking each value against its
// field type.
func NewRecord(rt types.RecordType, values []Value) (*Record, error) {
	if len(values) != len(rt.Fields) {
		return nil, fmt.Errorf("record expects %d fields, got %d", len(rt.Fields), len(values))
	}
	for i, v := range values {
		if vt := v.Type(); !vt.Equal(rt.Fields[i]) {
			return nil, &TypeMismatchError{Index: i, Expected: rt.Fields[i], Actual: vt}
		}
	}
	fs := make([]types.Type, len(rt.Fields))
	copy(fs, rt.Fields)
	vs := make([]Value, len(values))
	copy(vs, values)
	return &Record{fields: fs, values: vs}, nil
}

// InferRecord builds a record whose field types are taken from values.
func InferRecord(values []Value) *Record {
	fs := make([]types.Type, len(values))
	vs := make([]Value, len(values))
	for i, v := range values {
		fs[i] = v.Type()
		vs[i] = v
	}
	return &Record{fields: fs, values: vs}
}

func (r *Record) Len() int                { return len(r.values) }
func (r *Record) Type() types.Type        { return types.NewRecord(r.fields...) }
func (r *Record) Shape() types.RecordType { return types.RecordType{Fields: r.fields} }

func (r *Record) Get(idx uint64) (Value, error) {
	if idx >= uint64(len(r.values)) {
		return Value{}, &IndexError{Index: idx, Len: len(r.values)}
	}
	return r.values[idx], nil
}

// Set replaces field idx; v must have that field's type.
func (r *Record) Set(idx uint64, v Value) error {
	if idx >= uint64(len(r.values)) {
		return &IndexError{Index: idx, Len: len(r.values)}
	}
	if vt := v.Type(); !vt.Equal(r.fields[idx]) {
		return &TypeMismatchError{Index: int(idx), Expected: r.fields[idx], Actual: vt}
	}
	r.values[idx] = v
	return nil
}

func (r *Record) Values() []Value {
	out := make([]Value, len(r.values))
	copy(out, r.values)
	return out
}

func (r *Record) Equal(o *Record) bool {
	if r == o {
		return true
	}
	if r == nil || o == nil || len(r.values) != len(o.values) {
		return false
	}
	for i := range r.values {
		if !r.values[i].Equal(o.values[i]) {
			return false
		}
	}
	return true
}

func (r *Record) String() string { return joinValues('{', '}', r.values) }
