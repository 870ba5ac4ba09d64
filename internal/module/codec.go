package module

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"

	"tukun/internal/bytecode"
	"tukun/internal/types"
)

// Format selects the wire encoding of a module file.
type Format uint8

const (
	FormatMsgpack Format = iota + 1
	FormatCBOR
)

const (
	magic       = "TKMD"
	wireVersion = 1
	headerLen   = len(magic) + 2
)

var (
	ErrBadMagic   = errors.New("not a tukun module")
	ErrBadVersion = errors.New("unsupported module version")
)

func (f Format) String() string {
	switch f {
	case FormatMsgpack:
		return "msgpack"
	case FormatCBOR:
		return "cbor"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "msgpack", "mp":
		return FormatMsgpack, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return 0, fmt.Errorf("unknown module format %q (expected msgpack|cbor)", s)
	}
}

type wireFunction struct {
	Name string `msgpack:"name" cbor:"name"`
	Body []byte `msgpack:"body" cbor:"body"`
}

// wireIntern carries floats as their IEEE bits so -0 and NaN payloads
// survive both encoders.
type wireIntern struct {
	Kind InternKind `msgpack:"k" cbor:"k"`
	Int  uint64     `msgpack:"i,omitempty" cbor:"i,omitempty"`
	Bits uint64     `msgpack:"f,omitempty" cbor:"f,omitempty"`
	Str  string     `msgpack:"s,omitempty" cbor:"s,omitempty"`
}

type wireModule struct {
	Name         string          `msgpack:"name" cbor:"name"`
	Functions    []wireFunction  `msgpack:"functions" cbor:"functions"`
	NamedTypes   []types.TypeDef `msgpack:"named_types" cbor:"named_types"`
	InternValues []wireIntern    `msgpack:"intern_values" cbor:"intern_values"`
}

func toWire(m *ModuleDef) *wireModule {
	w := &wireModule{
		Name:         m.Name,
		Functions:    make([]wireFunction, len(m.Functions)),
		NamedTypes:   m.NamedTypes,
		InternValues: make([]wireIntern, len(m.InternValues)),
	}
	for i, v := range m.InternValues {
		w.InternValues[i] = wireIntern{Kind: v.Kind, Int: v.Int, Bits: math.Float64bits(v.Float), Str: v.Str}
	}
	for i, f := range m.Functions {
		body := f.Body.Bytes()
		if body == nil {
			body = []byte{}
		}
		w.Functions[i] = wireFunction{Name: f.Name, Body: body}
	}
	return w
}

func fromWire(w *wireModule) *ModuleDef {
	m := &ModuleDef{
		Name:         w.Name,
		Functions:    make([]FunctionDef, len(w.Functions)),
		NamedTypes:   w.NamedTypes,
		InternValues: make([]InternValue, len(w.InternValues)),
	}
	for i, v := range w.InternValues {
		m.InternValues[i] = InternValue{Kind: v.Kind, Int: v.Int, Float: math.Float64frombits(v.Bits), Str: v.Str}
	}
	for i, f := range w.Functions {
		m.Functions[i] = FunctionDef{Name: f.Name, Body: bytecode.FromBytes(f.Body)}
	}
	return m
}

// Encode serializes m behind a header naming the format.
func Encode(m *ModuleDef, format Format) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(magic)
	buf.WriteByte(wireVersion)
	buf.WriteByte(byte(format))

	w := toWire(m)
	switch format {
	case FormatMsgpack:
		enc := msgpack.NewEncoder(&buf)
		if err := enc.Encode(w); err != nil {
			return nil, fmt.Errorf("msgpack encode: %w", err)
		}
	case FormatCBOR:
		em, err := cbor.CanonicalEncOptions().EncMode()
		if err != nil {
			return nil, err
		}
		data, err := em.Marshal(w)
		if err != nil {
			return nil, fmt.Errorf("cbor encode: %w", err)
		}
		buf.Write(data)
	default:
		return nil, fmt.Errorf("unknown module format %d", format)
	}
	return buf.Bytes(), nil
}

// Decode parses a module produced by Encode, whatever its format.
func Decode(data []byte) (*ModuleDef, error) {
	format, err := Sniff(data)
	if err != nil {
		return nil, err
	}
	payload := data[headerLen:]
	var w wireModule
	switch format {
	case FormatMsgpack:
		dec := msgpack.NewDecoder(bytes.NewReader(payload))
		if err := dec.Decode(&w); err != nil {
			return nil, fmt.Errorf("msgpack decode: %w", err)
		}
	case FormatCBOR:
		if err := cbor.Unmarshal(payload, &w); err != nil {
			return nil, fmt.Errorf("cbor decode: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown module format %d", format)
	}
	return fromWire(&w), nil
}

// Sniff validates the header and reports the payload format.
func Sniff(data []byte) (Format, error) {
	if len(data) < headerLen || string(data[:len(magic)]) != magic {
		return 0, ErrBadMagic
	}
	if data[len(magic)] != wireVersion {
		return 0, fmt.Errorf("%w: %d", ErrBadVersion, data[len(magic)])
	}
	return Format(data[len(magic)+1]), nil
}
