// Package types describes the runtime type descriptors of the VM.
//
// A Type is an immutable value: composites hold their element and field
// descriptors by value (or through a pointer that is never mutated after
// construction), so a Type can be copied and compared freely.
package types

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a Type.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInteger
	KindLogical
	KindString
	KindFloat
	KindFunction
	KindArr
	KindRecord
	KindType
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindLogical:
		return "logical"
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	case KindFunction:
		return "function"
	case KindArr:
		return "array"
	case KindRecord:
		return "record"
	case KindType:
		return "type"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Type is a runtime type descriptor.
//
// Elem is the element type of an array and the described type of a Type
// value; Len is the array length; Fields are the record field types.
type Type struct {
	Kind   Kind   `msgpack:"kind" cbor:"kind"`
	Elem   *Type  `msgpack:"elem,omitempty" cbor:"elem,omitempty"`
	Len    int    `msgpack:"len,omitempty" cbor:"len,omitempty"`
	Fields []Type `msgpack:"fields,omitempty" cbor:"fields,omitempty"`
}

var (
	Integer  = Type{Kind: KindInteger}
	Logical  = Type{Kind: KindLogical}
	String   = Type{Kind: KindString}
	Float    = Type{Kind: KindFloat}
	Function = Type{Kind: KindFunction}
)

// ArrayType is the shape of a fixed-length homogeneous array.
type ArrayType struct {
	Elem Type
	Len  int
}

// RecordType is the ordered field list of a record.
type RecordType struct {
	Fields []Type
}

// NewArray returns the descriptor of an array of length elements of elem.
func NewArray(elem Type, length int) Type {
	e := elem
	return Type{Kind: KindArr, Elem: &e, Len: length}
}

// NewRecord returns the descriptor of a record with the given fields.
func NewRecord(fields ...Type) Type {
	fs := make([]Type, len(fields))
	copy(fs, fields)
	return Type{Kind: KindRecord, Fields: fs}
}

// Of returns the type of a type value describing t.
func Of(t Type) Type {
	inner := t
	return Type{Kind: KindType, Elem: &inner}
}

func (t Type) IsArray() bool  { return t.Kind == KindArr }
func (t Type) IsRecord() bool { return t.Kind == KindRecord }

// Array returns the array shape. ok is false for non-array types.
func (t Type) Array() (ArrayType, bool) {
	if t.Kind != KindArr || t.Elem == nil {
		return ArrayType{}, false
	}
	return ArrayType{Elem: *t.Elem, Len: t.Len}, true
}

// Record returns the record shape. ok is false for non-record types.
func (t Type) Record() (RecordType, bool) {
	if t.Kind != KindRecord {
		return RecordType{}, false
	}
	return RecordType{Fields: t.Fields}, true
}

// Inner returns the type described by a Type value.
func (t Type) Inner() (Type, bool) {
	if t.Kind != KindType || t.Elem == nil {
		return Type{}, false
	}
	return *t.Elem, true
}

// Type returns the composite descriptor for this array shape.
func (a ArrayType) Type() Type { return NewArray(a.Elem, a.Len) }

// Type returns the composite descriptor for this record shape.
func (r RecordType) Type() Type { return NewRecord(r.Fields...) }

// Len reports the number of fields.
func (r RecordType) Len() int { return len(r.Fields) }

// Equal reports structural equality.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindArr:
		if t.Len != o.Len {
			return false
		}
		return elemEqual(t.Elem, o.Elem)
	case KindType:
		return elemEqual(t.Elem, o.Elem)
	case KindRecord:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for i := range t.Fields {
			if !t.Fields[i].Equal(o.Fields[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func elemEqual(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (t Type) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t Type) write(sb *strings.Builder) {
	sb.WriteString("type::")
	switch t.Kind {
	case KindArr:
		fmt.Fprintf(sb, "array[len=%d, t=", t.Len)
		writeElem(sb, t.Elem)
		sb.WriteByte(']')
	case KindRecord:
		sb.WriteString("record[")
		for i, f := range t.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			f.write(sb)
		}
		sb.WriteByte(']')
	case KindType:
		sb.WriteString("type[t=")
		writeElem(sb, t.Elem)
		sb.WriteByte(']')
	default:
		sb.WriteString(t.Kind.String())
	}
}

func writeElem(sb *strings.Builder, e *Type) {
	if e == nil {
		sb.WriteString("?")
		return
	}
	e.write(sb)
}

// TypeDef is a named alias for a type, looked up as <module>.<name>.
type TypeDef struct {
	Name   string `msgpack:"name" cbor:"name"`
	Target Type   `msgpack:"target" cbor:"target"`
}

// NewTypeDef creates a named alias.
func NewTypeDef(name string, target Type) TypeDef {
	return TypeDef{Name: name, Target: target}
}

func (d TypeDef) Equal(o TypeDef) bool {
	return d.Name == o.Name && d.Target.Equal(o.Target)
}
