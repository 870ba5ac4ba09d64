package asm_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"tukun/internal/asm"
	"tukun/internal/corelib"
	"tukun/internal/module"
	"tukun/internal/types"
	"tukun/internal/value"
	"tukun/internal/vm"
)

const mainFn = "com.tukunc.testmodule.main"

func runSource(t *testing.T, src string) (*vm.Environment, error) {
	t.Helper()
	def, err := asm.Assemble("test.tka", []byte(src))
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	data, err := asm.Serialize(def, module.FormatMsgpack)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	def, err = module.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	env := vm.NewEnvironment()
	corelib.Register(env)
	env.AddModule(vm.LoadModule(def))
	main, ok := env.LookupFunction(mainFn)
	if !ok {
		t.Fatalf("missing %s", mainFn)
	}
	return env, vm.Run(context.Background(), main, env)
}

// runAndCheckStack compares the top of the stack, topmost value first.
func runAndCheckStack(t *testing.T, src string, want ...value.Value) *vm.Environment {
	t.Helper()
	env, err := runSource(t, src)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, env.Backtrace())
	}
	if env.StackLen() < len(want) {
		t.Fatalf("stack %v shorter than %d", env.Stack(), len(want))
	}
	for i, w := range want {
		got, _ := env.Pop()
		if !got.Equal(w) {
			t.Fatalf("stack[%d] from top = %s, want %s", i, got, w)
		}
	}
	return env
}

func ints(ns ...uint64) []value.Value {
	out := make([]value.Value, len(ns))
	for i, n := range ns {
		out[i] = value.Int(n)
	}
	return out
}

func intArr(t *testing.T, ns ...uint64) value.Value {
	t.Helper()
	a, err := value.NewArray(types.Integer, ints(ns...))
	if err != nil {
		t.Fatal(err)
	}
	return value.Arr(a)
}

func rec(vals ...value.Value) value.Value {
	return value.Rec(value.InferRecord(vals))
}

func TestDefineModule(t *testing.T) {
	env := runAndCheckStack(t, `
@modname "com.tukunc.testmodule"
fn main
  :entry
    ret
`)
	if env.StackLen() != 0 {
		t.Fatalf("stack %v", env.Stack())
	}
}

func TestCallFunctionWithName(t *testing.T) {
	runAndCheckStack(t, `
@modname "com.tukunc.testmodule"
%const "com.tukunc.testmodule.callee" = "com.tukunc.testmodule.callee"
%const "five" = 5
fn callee
  :entry
     push 1
     ret
fn main
  :entry
    push "com.tukunc.testmodule.callee"
    flookup
    call
    ret
`, value.Int(5))
}

func TestFcall(t *testing.T) {
	runAndCheckStack(t, `
@modname "com.tukunc.testmodule"
%const "five" = 5
fn callee
  :entry
     push "five"
     ret
fn main
  :entry
    fcall "com.tukunc.testmodule.callee"
    ret
`, value.Int(5))
}

func TestCallFunctionWithIndex(t *testing.T) {
	runAndCheckStack(t, `
@modname "com.tukunc.testmodule"
%const "name" = "com.tukunc.testmodule.callee"
%const "five" = 5
fn callee
  :entry
     push 1
     ret
fn main
  :entry
    push 0
    flookup
    call
    ret
`, value.Int(5))
}

func TestJumpLabel(t *testing.T) {
	runAndCheckStack(t, `
@modname "com.tukunc.testmodule"
%const "six" = 6
fn main
  :entry
    jump :do
    ret
  :do
    push 0
    ret
`, value.Int(6))
}

func TestJtrue(t *testing.T) {
	runAndCheckStack(t, `
@modname "com.tukunc.testmodule"
%const "six" = 6
%const "seven" = 7
fn main
  :entry
    push "six"
    push "seven"
    equal
    jtrue :fail
    push "six"
    push "six"
    equal
    jtrue :pass
  :fail
    push "six"
    ret
  :pass
    push "seven"
    ret
`, value.Int(7))
}

func TestNamedConstants(t *testing.T) {
	runAndCheckStack(t, `
@modname "com.tukunc.testmodule"
%const "forty_two" = 42
%const "fp" = 1.25
fn main
  :entry
    push "forty_two"
    push "fp"
    ret
`, value.Float(1.25), value.Int(42))
}

func TestLatestConstantWins(t *testing.T) {
	runAndCheckStack(t, `
@modname "com.tukunc.testmodule"
%const "x" = 1
%const "x" = 2
fn main
  :entry
    push "x"
    push 0
    ret
`, value.Int(1), value.Int(2))
}

func TestStackOps(t *testing.T) {
	runAndCheckStack(t, `
@modname "com.tukunc.testmodule"
%const "six" = 6
%const "seven" = 7
%const "three" = 3
fn main
  :entry
    push "six"
    dup
    add
    push "six"
    push "seven"
    push "six"
    pop
    add
    push "six"
    push "three"
    swap
    ret
`, value.Int(6), value.Int(3), value.Int(13), value.Int(12))
}

func TestSlots(t *testing.T) {
	runAndCheckStack(t, `
@modname "com.tukunc.testmodule"
%const "six" = 6
%const "seven" = 7
fn callee
  :entry
    toslot 0
    toslot 1
    fromslot 0
    ret
fn main
  :entry
    push "six"
    push "seven"
    push "six"
    fcall "com.tukunc.testmodule.callee"
    add
    ret
`, value.Int(12))
}

const arrayPrelude = `
@modname "com.tukunc.testmodule"
%const "five" = 5
%const "one" = 1
%const "two" = 2
%const "three" = 3
%const "four" = 4
%const "zero" = 0
%const "six" = 6
`

func TestNewarr(t *testing.T) {
	runAndCheckStack(t, arrayPrelude+`
fn main
  :entry
    push "one"
    push "two"
    push "three"
    push "four"
    push "four"
    typeof
    push "four"
    mkarrtype
    newarr
    ret
`, intArr(t, 1, 2, 3, 4))
}

func TestArrgetArrlen(t *testing.T) {
	runAndCheckStack(t, arrayPrelude+`
fn main
  :entry
    push "one"
    push "two"
    push "three"
    push "four"
    push "four"
    typeof
    push "four"
    mkarrtype
    newarr
    dup
    arrlen
    swap
    push "one"
    arrget
    ret
`, value.Int(2), value.Int(4))
}

func TestArrset(t *testing.T) {
	runAndCheckStack(t, arrayPrelude+`
fn main
  :entry
    push "one"
    push "two"
    push "three"
    push "four"
    push "five"
    push "zero"
    push "six"
    typeof
    push "six"
    mkarrtype
    newarr
    push "one"
    push "five"
    arrset
    dup
    push "one"
    arrget
    ret
`, value.Int(5), intArr(t, 1, 5, 3, 4, 5, 0))
}

func TestArrlenWithCorelib(t *testing.T) {
	runAndCheckStack(t, arrayPrelude+`
%const "integer" = "corelib.integer"
fn main
  :entry
    push "one"
    push "two"
    push "three"
    push "four"
    push "integer"
    tlookup
    push "four"
    mkarrtype
    newarr
    arrlen
    ret
`, value.Int(4))
}

func TestTypeof(t *testing.T) {
	runAndCheckStack(t, `
@modname "com.tukunc.testmodule"
%const "one" = 1
%const "hello" = "hello"
fn main
  :entry
    push "one"
    typeof
    push "hello"
    typeof
    push "one"
    push "one"
    equal
    typeof
    ret
`, value.TypeOf(types.Logical), value.TypeOf(types.String), value.TypeOf(types.Integer))
}

func TestMkrectype(t *testing.T) {
	runAndCheckStack(t, `
@modname "com.tukunc.testmodule"
%const "integer" = "corelib.integer"
%const "logical" = "corelib.logical"
%const "four" = 4
fn main
  :entry
    push "integer"
    tlookup
    push "logical"
    tlookup
    push "integer"
    tlookup
    dup
    push "four"
    mkrectype
    ret
`, value.TypeOf(types.NewRecord(types.Integer, types.Logical, types.Integer, types.Integer)))
}

func TestNewrec(t *testing.T) {
	runAndCheckStack(t, `
@modname "com.tukunc.testmodule"
%const "integer" = "corelib.integer"
%const "string" = "corelib.string"
%const "logical" = "corelib.logical"
%const "three" = 3
%const "four" = 4
%const "hello" = "hi"
fn main
  :entry
    push "four"
    dup
    dup
    equal
    push "hello"
    push "integer"
    tlookup
    push "logical"
    tlookup
    push "string"
    tlookup
    push "three"
    mkrectype
    newrec
    ret
`, rec(value.Int(4), value.Bool(true), value.Str("hi")))
}

const recPrelude = `
@modname "com.tukunc.testmodule"
%typedef "rec" = record("integer", "logical", "string")
%const "three" = 3
%const "four" = 4
%const "hello" = "hi"
%const "one" = 1
fn main
  :entry
    push "three"
    dup
    push "four"
    equal
    push "hello"
    push "com.tukunc.testmodule.rec"
    tlookup
    newrec
`

func TestNewrecFromDecl(t *testing.T) {
	runAndCheckStack(t, recPrelude+"    ret\n", rec(value.Int(3), value.Bool(false), value.Str("hi")))
}

func TestRecget(t *testing.T) {
	runAndCheckStack(t, recPrelude+`
    push "one"
    recget
    ret
`, value.Bool(false))
}

func TestRecset(t *testing.T) {
	runAndCheckStack(t, recPrelude+`
    push "one"
    push "three"
    dup
    equal
    recset
    ret
`, rec(value.Int(3), value.Bool(true), value.Str("hi")))
}

func TestDeclArrtype(t *testing.T) {
	runAndCheckStack(t, `
@modname "com.tukunc.testmodule"
%typedef "arrt" = array(3,"integer")
%typedef "grid" = array(2, "arrt")
fn main
  :entry
    push "com.tukunc.testmodule.arrt"
    tlookup
    push "com.tukunc.testmodule.grid"
    tlookup
    ret
`, value.TypeOf(types.NewArray(types.NewArray(types.Integer, 3), 2)), value.TypeOf(types.NewArray(types.Integer, 3)))
}

func TestComments(t *testing.T) {
	runAndCheckStack(t, `
@modname "com.tukunc.testmodule" # name the module
%typedef "arrt" = array(3,"integer") # a typedef
%const "foo" = 3 # an integer value
fn main # a function
  :entry # a label
    # ret not a statement
    push "foo" # push 3 on the stack
    dup # duplicate
    add
    # add
    ret
    # an empty comment here
`, value.Int(6))
}

func TestSeveralInstructionsPerLine(t *testing.T) {
	runAndCheckStack(t, `
@modname "com.tukunc.testmodule"
%const "five" = 5
%const "four" = 4
fn main
  :entry
    push "five"
    push "five"
    equal not
    push "five" push "four" equal NOT
    ret
`, value.Bool(true), value.Bool(false))
}

func TestIntegerArithmetic(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want uint64
	}{
		{"add", `%const "a" = 3` + "\n" + `%const "b" = 2` + "\n", 5},
		{"add overflow", `%const "a" = 18446744073709551613` + "\n" + `%const "b" = 10` + "\n", 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runAndCheckStack(t, "@modname \"com.tukunc.testmodule\"\n"+tc.src+`
fn main
  :entry
    push "a"
    push "b"
    add
    ret
`, value.Int(tc.want))
		})
	}

	sub := `
@modname "com.tukunc.testmodule"
%const "five" = 5
%const "two" = 2
fn main
  :entry
    push "two"
    push "five"
    sub
    push "five"
    push "two"
    sub
    ret
`
	runAndCheckStack(t, sub, value.Int(3), value.Int(math.MaxUint64-2))
}

func TestLiteralPush(t *testing.T) {
	runAndCheckStack(t, `
@modname "com.tukunc.testmodule"
fn main
  :entry
    lpush 7
    lpush 1.25
    lpush "hello world"
    ret
`, value.Str("hello world"), value.Float(1.25), value.Int(7))
}

func TestLogic(t *testing.T) {
	runAndCheckStack(t, `
@modname "com.tukunc.testmodule"
fn main
  :entry
    lpush 3
    lpush 3
    equal
    dup
    not
    and
    lpush 3
    lpush 3
    equal
    lpush 3
    lpush 2
    equal
    or
    ret
`, value.Bool(true), value.Bool(false))
}

func TestFcallCorelib(t *testing.T) {
	env := runAndCheckStack(t, `
@modname "com.tukunc.testmodule"
%const "corelib.now" = "corelib.now"
fn main
  :entry
    fcall "corelib.now"
    ret
`)
	v, _ := env.Pop()
	if n, ok := v.AsInt(); !ok || n == 0 {
		t.Fatalf("now returned %s", v)
	}
}

func TestErrMismatchAdd(t *testing.T) {
	env, err := runSource(t, `
@modname "com.tukunc.testmodule"
%const "five" = 5
%const "four" = "four"
fn doaddition
  :entry
    dup
    nop
    pop
    add
    ret
fn main
  :entry
    push "five"
    push "four"
    fcall "com.tukunc.testmodule.doaddition"
`)
	var vmErr *vm.Error
	if !errors.As(err, &vmErr) {
		t.Fatalf("expected *vm.Error, got %v", err)
	}
	want := vm.ErrData{Code: vm.InvalidOperands, Op: vmErr.Data.Op, Operands: []value.Value{value.Str("four"), value.Int(5)}}
	if vmErr.Ptr != 3 || !vmErr.Data.Equal(want) || vmErr.Data.Op.String() != "ADD" {
		t.Fatalf("unexpected error %v at %d", vmErr, vmErr.Ptr)
	}
	if bt := env.Backtrace(); bt != "com.tukunc.testmodule.doaddition:3\ncom.tukunc.testmodule.main:10" {
		t.Fatalf("backtrace:\n%s", bt)
	}
}

func TestErrUnwindNotFailing(t *testing.T) {
	env, err := runSource(t, `
@modname "com.tukunc.testmodule"
fn donothing
  :entry
    nop
    nop
    ret
fn fail
  :entry
    pop
    pop
    pop
    ret
fn main
  :entry
    fcall "com.tukunc.testmodule.donothing"
    fcall "com.tukunc.testmodule.fail"
`)
	var vmErr *vm.Error
	if !errors.As(err, &vmErr) || vmErr.Data.Code != vm.EmptyStack || vmErr.Ptr != 0 {
		t.Fatalf("unexpected error %v", err)
	}
	if bt := env.Backtrace(); bt != "com.tukunc.testmodule.fail:0\ncom.tukunc.testmodule.main:9" {
		t.Fatalf("backtrace:\n%s", bt)
	}
}
