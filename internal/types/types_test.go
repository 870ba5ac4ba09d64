package types

import "testing"

func TestTypeEquality(t *testing.T) {
	cases := []struct {
		name string
		a, b Type
		want bool
	}{
		{"same leaf", Integer, Integer, true},
		{"different leaf", Integer, String, false},
		{"type of integer vs integer", Of(Integer), Integer, false},
		{"type of equal", Of(Logical), Of(Logical), true},
		{"nested type", Of(Of(Integer)), Of(Of(Integer)), true},
		{"array equal", NewArray(Integer, 3), NewArray(Integer, 3), true},
		{"array length", NewArray(Integer, 3), NewArray(Integer, 4), false},
		{"array elem", NewArray(Integer, 3), NewArray(Float, 3), false},
		{"record equal", NewRecord(Integer, String), NewRecord(Integer, String), true},
		{"record order", NewRecord(Integer, String), NewRecord(String, Integer), false},
		{"record arity", NewRecord(Integer), NewRecord(Integer, Integer), false},
		{"array vs record", NewArray(Integer, 1), NewRecord(Integer), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Equal(tc.b); got != tc.want {
				t.Fatalf("%s == %s: got %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestTypeString(t *testing.T) {
	cases := []struct {
		t    Type
		want string
	}{
		{Integer, "type::integer"},
		{Float, "type::float"},
		{Function, "type::function"},
		{Of(String), "type::type[t=type::string]"},
		{NewArray(Logical, 2), "type::array[len=2, t=type::logical]"},
		{NewRecord(Integer, String), "type::record[type::integer, type::string]"},
	}
	for _, tc := range cases {
		if got := tc.t.String(); got != tc.want {
			t.Fatalf("got %q, want %q", got, tc.want)
		}
	}
}

func TestShapes(t *testing.T) {
	at, ok := NewArray(Integer, 5).Array()
	if !ok || at.Len != 5 || !at.Elem.Equal(Integer) {
		t.Fatalf("unexpected array shape %+v", at)
	}
	if _, ok := Integer.Array(); ok {
		t.Fatalf("integer is not an array")
	}
	rt, ok := NewRecord(Integer, Logical).Record()
	if !ok || rt.Len() != 2 {
		t.Fatalf("unexpected record shape %+v", rt)
	}
	inner, ok := Of(rt.Type()).Inner()
	if !ok || !inner.Equal(NewRecord(Integer, Logical)) {
		t.Fatalf("unexpected inner %s", inner)
	}
}

func TestNewRecordCopiesFields(t *testing.T) {
	fields := []Type{Integer, String}
	r := NewRecord(fields...)
	fields[0] = Float
	if !r.Fields[0].Equal(Integer) {
		t.Fatalf("record shares caller slice")
	}
}
