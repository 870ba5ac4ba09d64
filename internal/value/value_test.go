package value_test

import (
	"errors"
	"math"
	"testing"

	"tukun/internal/types"
	"tukun/internal/value"
)

type fn string

func (f fn) FullName() string { return string(f) }

func mustArray(t *testing.T, vals ...value.Value) *value.Array {
	t.Helper()
	a, err := value.InferArray(vals)
	if err != nil {
		t.Fatalf("InferArray: %v", err)
	}
	return a
}

func TestEquality(t *testing.T) {
	nan := math.NaN()
	cases := []struct {
		name string
		a, b value.Value
		want bool
	}{
		{"int vs string", value.Int(0x41), value.Str("A"), false},
		{"int vs float", value.Int(1), value.Float(1), false},
		{"ints", value.Int(7), value.Int(7), true},
		{"logicals", value.Bool(true), value.Bool(false), false},
		{"nan total order", value.Float(nan), value.Float(nan), true},
		{"signed zero", value.Float(0), value.Float(math.Copysign(0, -1)), false},
		{"functions by name", value.Func(fn("a.b")), value.Func(fn("a.b")), true},
		{"different functions", value.Func(fn("a.b")), value.Func(fn("a.c")), false},
		{"types", value.TypeOf(types.Integer), value.TypeOf(types.Integer), true},
		{"type of type", value.TypeOf(types.Of(types.Integer)), value.TypeOf(types.Integer), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Equal(tc.b); got != tc.want {
				t.Fatalf("%s == %s: got %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestTypeValueIsNotItsType(t *testing.T) {
	v := value.TypeOf(types.Integer)
	if v.Type().Equal(types.Integer) {
		t.Fatalf("Type(Integer) must differ from Integer")
	}
	if !v.Type().Equal(types.Of(types.Integer)) {
		t.Fatalf("unexpected type %s", v.Type())
	}
}

func TestArraysCompareByContent(t *testing.T) {
	a := mustArray(t, value.Int(1), value.Int(2))
	b := mustArray(t, value.Int(1), value.Int(2))
	if !value.Arr(a).Equal(value.Arr(b)) {
		t.Fatalf("arrays with equal content differ")
	}
	c := mustArray(t, value.Int(1), value.Int(3))
	if value.Arr(a).Equal(value.Arr(c)) {
		t.Fatalf("arrays with different content compare equal")
	}
}

func TestArrayAliasing(t *testing.T) {
	a := mustArray(t, value.Int(1), value.Int(2))
	v1 := value.Arr(a)
	v2 := v1
	arr, _ := v2.AsArray()
	if err := arr.Set(0, value.Int(9)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _ := v1.AsArray()
	if e, _ := got.Get(0); !e.Equal(value.Int(9)) {
		t.Fatalf("mutation not visible through alias: %s", v1)
	}
}

func TestTypedArrayRejectsMismatch(t *testing.T) {
	_, err := value.NewArray(types.Integer, []value.Value{value.Int(1), value.Str("x")})
	var tm *value.TypeMismatchError
	if !errors.As(err, &tm) {
		t.Fatalf("expected TypeMismatchError, got %v", err)
	}
	if tm.Index != 1 || !tm.Actual.Equal(types.String) {
		t.Fatalf("unexpected mismatch %+v", tm)
	}
}

func TestInferEmptyArray(t *testing.T) {
	if _, err := value.InferArray(nil); !errors.Is(err, value.ErrEmptyArray) {
		t.Fatalf("expected ErrEmptyArray, got %v", err)
	}
}

func TestArrayBounds(t *testing.T) {
	a := mustArray(t, value.Bool(true))
	var ie *value.IndexError
	if _, err := a.Get(1); !errors.As(err, &ie) {
		t.Fatalf("expected IndexError, got %v", err)
	}
	if err := a.Set(0, value.Int(1)); err == nil {
		t.Fatalf("Set accepted a value of the wrong type")
	}
}

func TestRecords(t *testing.T) {
	r := value.InferRecord([]value.Value{value.Int(4), value.Bool(true), value.Str("hi")})
	if !r.Type().Equal(types.NewRecord(types.Integer, types.Logical, types.String)) {
		t.Fatalf("unexpected record type %s", r.Type())
	}
	if err := r.Set(1, value.Bool(false)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := r.Set(1, value.Int(0)); err == nil {
		t.Fatalf("Set accepted a value of the wrong type")
	}
	typed, err := value.NewRecord(r.Shape(), []value.Value{value.Int(4), value.Bool(false), value.Str("hi")})
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	if !value.Rec(typed).Equal(value.Rec(r)) {
		t.Fatalf("records differ: %s vs %s", typed, r)
	}
	if _, err := value.NewRecord(r.Shape(), []value.Value{value.Int(4)}); err == nil {
		t.Fatalf("NewRecord accepted wrong arity")
	}
}

func TestDisplay(t *testing.T) {
	a := mustArray(t, value.Int(1), value.Int(2))
	r := value.InferRecord([]value.Value{value.Float(1.25), value.Str("x")})
	cases := []struct {
		v    value.Value
		want string
	}{
		{value.Int(5), "Integer(5)"},
		{value.Bool(true), "Logical(true)"},
		{value.Float(1.25), "Float(1.25)"},
		{value.Str("hi"), `String("hi")`},
		{value.Func(fn("com.x.main")), "Function(com.x.main)"},
		{value.TypeOf(types.Integer), "Type(type::integer)"},
		{value.Arr(a), "[Integer(1), Integer(2)]"},
		{value.Rec(r), `{Float(1.25), String("x")}`},
	}
	for _, tc := range cases {
		if got := tc.v.String(); got != tc.want {
			t.Fatalf("got %q, want %q", got, tc.want)
		}
	}
}
