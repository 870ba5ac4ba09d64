package module

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"tukun/internal/bytecode"
	"tukun/internal/types"
)

func sampleModule() *ModuleDef {
	m := New("com.example.sample")
	body := bytecode.New()
	bytecode.Instruction{Op: bytecode.PUSH, Arg: 0}.Encode(body)
	bytecode.Instruction{Op: bytecode.PUSH, Arg: 1}.Encode(body)
	bytecode.Instruction{Op: bytecode.ADD}.Encode(body)
	bytecode.Instruction{Op: bytecode.RET}.Encode(body)
	m.AddFunction(FunctionDef{Name: "main", Body: body})
	m.AddFunction(FunctionDef{Name: "empty", Body: bytecode.New()})
	m.AddNamedType(types.NewTypeDef("integer", types.Integer))
	m.AddNamedType(types.NewTypeDef("arrt", types.NewArray(types.Integer, 3)))
	m.AddNamedType(types.NewTypeDef("rec", types.NewRecord(types.Integer, types.Logical, types.String)))
	m.AddNamedType(types.NewTypeDef("meta", types.Of(types.NewArray(types.Float, 2))))
	m.AddInternedValue(IntValue(math.MaxUint64 - 2))
	m.AddInternedValue(IntValue(10))
	m.AddInternedValue(FloatValue(1.25))
	m.AddInternedValue(StringValue("héllo"))
	m.AddInternedValue(FloatValue(math.Copysign(0, -1)))
	m.AddInternedValue(FloatValue(math.NaN()))
	m.AddInternedValue(FloatValue(math.Inf(-1)))
	return m
}

func TestAddInternedValueIndices(t *testing.T) {
	m := New("x")
	for i, v := range []InternValue{IntValue(1), FloatValue(2), StringValue("3")} {
		if idx := m.AddInternedValue(v); idx != i {
			t.Fatalf("index %d, want %d", idx, i)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatMsgpack, FormatCBOR} {
		t.Run(format.String(), func(t *testing.T) {
			m := sampleModule()
			data, err := Encode(m, format)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := Sniff(data)
			if err != nil || got != format {
				t.Fatalf("Sniff: %v %v", got, err)
			}
			back, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !back.Equal(m) {
				t.Fatalf("round trip mismatch:\n%+v\n%+v", m, back)
			}
			negZero := back.InternValues[4].Float
			if negZero != 0 || !math.Signbit(negZero) {
				t.Fatalf("-0 decoded as %v (signbit %v)", negZero, math.Signbit(negZero))
			}
			if nan := back.InternValues[5].Float; math.Float64bits(nan) != math.Float64bits(math.NaN()) {
				t.Fatalf("NaN bits changed: %#x", math.Float64bits(nan))
			}
			again, err := Encode(back, format)
			if err != nil {
				t.Fatalf("re-Encode: %v", err)
			}
			if string(again) != string(data) {
				t.Fatalf("re-encoding is not byte-identical")
			}
		})
	}
}

func TestDecodeRejectsForeignData(t *testing.T) {
	if _, err := Decode([]byte("nope")); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
	if _, err := Decode([]byte{'T', 'K', 'M', 'D', 9, 1}); !errors.Is(err, ErrBadVersion) {
		t.Fatalf("expected ErrBadVersion, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatMsgpack, "msgpack": FormatMsgpack, "CBOR": FormatCBOR}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("json"); err == nil {
		t.Fatalf("json accepted")
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "sample.tkm")
	m := sampleModule()
	if err := WriteFile(path, m, FormatCBOR); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !back.Equal(m) {
		t.Fatalf("file round trip mismatch")
	}
}

func TestInternValueToValue(t *testing.T) {
	if v := StringValue("x").ToValue(); v.String() != `String("x")` {
		t.Fatalf("unexpected %s", v)
	}
	if v := FloatValue(1.5).ToValue(); v.String() != "Float(1.5)" {
		t.Fatalf("unexpected %s", v)
	}
	if v := IntValue(3).ToValue(); v.String() != "Integer(3)" {
		t.Fatalf("unexpected %s", v)
	}
}
