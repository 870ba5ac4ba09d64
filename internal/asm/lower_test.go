package asm

import (
	"errors"
	"strings"
	"testing"

	"tukun/internal/bytecode"
	"tukun/internal/module"
	"tukun/internal/observ"
	"tukun/internal/types"
)

func TestLowerPoolLayout(t *testing.T) {
	def, err := Assemble("layout.tka", []byte(`
@modname "m"
%const "a" = 1
%const "b" = "x"
%typedef "zeta" = "integer"
%typedef "alpha" = array(2, "float")
fn second
  :entry
    lpush 9
    ret
fn first
  :entry
    ret
`))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"1", `"x"`,
		`"m.alpha"`, `"m.float"`, `"m.integer"`, `"m.logical"`, `"m.string"`, `"m.zeta"`,
		`"m.second"`, `"m.first"`,
		"9",
	}
	got := def.RenderedPool()
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("pool:\n got %v\nwant %v", got, want)
	}

	var names []string
	for _, td := range def.NamedTypes {
		names = append(names, td.Name)
	}
	if strings.Join(names, ",") != "alpha,float,integer,logical,string,zeta" {
		t.Fatalf("named types = %v", names)
	}
	if !def.NamedTypes[0].Target.Equal(types.NewArray(types.Float, 2)) {
		t.Fatalf("alpha = %s", def.NamedTypes[0].Target)
	}
	if def.Functions[0].Name != "second" || def.Functions[1].Name != "first" {
		t.Fatalf("function order = %s, %s", def.Functions[0].Name, def.Functions[1].Name)
	}
}

func TestLowerEncoding(t *testing.T) {
	def, err := Assemble("enc.tka", []byte(`
@modname "m"
%const "n" = 4
fn main
  :entry
    push "n"
    jump :exit
  :exit
    fcall "m.main"
    ret
`))
	if err != nil {
		t.Fatal(err)
	}
	ins, err := bytecode.DecodeAll(def.Functions[0].Body)
	if err != nil {
		t.Fatal(err)
	}
	want := []bytecode.Instruction{
		{Op: bytecode.PUSH, Arg: 0},
		{Op: bytecode.JUMP, Arg: 6},
		{Op: bytecode.PUSH, Arg: 5},
		{Op: bytecode.FLOOKUP},
		{Op: bytecode.CALL},
		{Op: bytecode.RET},
	}
	if len(ins) != len(want) {
		t.Fatalf("instructions = %v", ins)
	}
	for i := range want {
		if ins[i] != want[i] {
			t.Fatalf("instruction %d = %v, want %v", i, ins[i], want[i])
		}
	}
}

func TestAssembleErrorKinds(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind ErrorKind
		msg  string
	}{
		{"syntax", "fn main\n:entry\npsuh 1\n", ParseError, "psuh"},
		{"undefined type", `%typedef "a" = array(4,"corelib.integer")` + "\n", AstGenerationError, "type name corelib.integer is undefined"},
		{"unknown constant", "fn main\n:entry\npush \"nope\"\nret\n", LoweringError, `unknown constant "nope"`},
		{"unknown label", "fn main\n:entry\njump :nowhere\n", LoweringError, "nowhere"},
		{"index too wide", "fn main\n:entry\npush 70000\nret\n", LoweringError, "16 bits"},
		{"slot too wide", "fn main\n:entry\ntoslot 65536\nret\n", LoweringError, "slot index"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Assemble("bad.tka", []byte(tc.src))
			if !errors.Is(err, &Error{Kind: tc.kind}) {
				t.Fatalf("err = %v, want kind %s", err, tc.kind)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("%q does not mention %q", err.Error(), tc.msg)
			}
		})
	}
}

func TestAssembleErrorPosition(t *testing.T) {
	_, err := Assemble("pos.tka", []byte("fn main\n:entry\n  push \"nope\"\n"))
	var ae *Error
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v", err)
	}
	if ae.Pos != "pos.tka:3:8" {
		t.Fatalf("pos = %q", ae.Pos)
	}
}

func TestAssembleRecordsPhases(t *testing.T) {
	timer := observ.NewTimer()
	def, err := Assemble("ok.tka", []byte("fn main\n:entry\nret\n"), WithTimer(timer))
	if err != nil || def == nil {
		t.Fatalf("assemble: %v", err)
	}
	phases := timer.Phases()
	if len(phases) != 2 || phases[0].Name != "parse" || phases[1].Name != "lower" {
		t.Fatalf("phases = %+v", phases)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	def, err := Assemble("rt.tka", []byte("@modname \"m\"\n%const \"f\" = 1.5\nfn main\n:entry\npush 0\nret\n"))
	if err != nil {
		t.Fatal(err)
	}
	for _, format := range []module.Format{module.FormatMsgpack, module.FormatCBOR} {
		data, err := Serialize(def, format)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		back, err := module.Decode(data)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if !back.Equal(def) {
			t.Fatalf("%s: round trip changed the module", format)
		}
	}
}
