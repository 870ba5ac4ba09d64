package vm

import (
	"context"
	"errors"
	"fmt"

	"fortio.org/safecast"

	"tukun/internal/bytecode"
	"tukun/internal/trace"
	"tukun/internal/types"
	"tukun/internal/value"
)

// Run executes fn against env and returns nil or an *Error. The unwinder is
// reset first; after a failure it still holds the frames of the failing
// call chain.
//
// Nested CALLs recurse on the goroutine stack, so the host stack bounds the
// call depth unless WithMaxDepth sets a lower limit.
func Run(ctx context.Context, fn *Callable, env *Environment) error {
	if ctx == nil {
		ctx = context.Background()
	}
	env.unwinder.Reset()
	if err := env.invoke(ctx, fn); err != nil {
		trace.Error(env.tracer, trace.ScopeCall, fn.FullName(), err)
		return err
	}
	return nil
}

func (e *Environment) invoke(ctx context.Context, fn *Callable) *Error {
	if e.maxDepth > 0 && e.unwinder.Len() >= e.maxDepth {
		return &Error{Data: ErrData{Code: CallDepthExceeded, Len: e.maxDepth}, Backtrace: e.unwinder.Frames()}
	}
	e.unwinder.push(fn)
	span := trace.Begin(e.tracer, trace.ScopeCall, fn.FullName(), 0)

	var err *Error
	if fn.native != nil {
		err = e.callNative(fn)
	} else {
		l := loop{env: e, fn: fn, mod: fn.owner, body: fn.def.Body}
		err = l.run(ctx)
	}
	if err != nil {
		span.End(err.Data.Code.Name())
		return err
	}
	span.End("")
	e.unwinder.pop()
	return nil
}

func (e *Environment) callNative(fn *Callable) *Error {
	err := fn.native.Call(e)
	if err == nil {
		return nil
	}
	var vmErr *Error
	if errors.As(err, &vmErr) {
		return vmErr
	}
	return &Error{
		Data:      ErrData{Code: NativeFailure, Name: fn.FullName(), Cause: err},
		Backtrace: e.unwinder.Frames(),
	}
}

// loop is the state of one bytecode invocation. The operand stack belongs
// to the environment; slots are private to the invocation.
type loop struct {
	env   *Environment
	fn    *Callable
	mod   *RuntimeModule
	body  *bytecode.Bytecode
	slots []value.Value
	ip    int
	cur   int
}

func (l *loop) fail(d ErrData) *Error {
	return &Error{Ptr: l.cur, Data: d, Backtrace: l.env.unwinder.Frames()}
}

func (l *loop) push(v value.Value) { l.env.stack.Push(v) }

func (l *loop) pop() (value.Value, *Error) {
	v, ok := l.env.stack.Pop()
	if !ok {
		return value.Value{}, l.fail(ErrData{Code: EmptyStack})
	}
	return v, nil
}

// popInt pops an Integer; seen are values already popped by op, reported
// together with the offending one.
func (l *loop) popInt(op bytecode.Opcode, seen ...value.Value) (uint64, *Error) {
	v, err := l.pop()
	if err != nil {
		return 0, err
	}
	n, ok := v.AsInt()
	if !ok {
		return 0, l.fail(ErrData{Code: InvalidOperands, Op: op, Operands: append(seen, v)})
	}
	return n, nil
}

func (l *loop) popBool(op bytecode.Opcode, seen ...value.Value) (bool, value.Value, *Error) {
	v, err := l.pop()
	if err != nil {
		return false, v, err
	}
	b, ok := v.AsBool()
	if !ok {
		return false, v, l.fail(ErrData{Code: InvalidOperands, Op: op, Operands: append(seen, v)})
	}
	return b, v, nil
}

func (l *loop) popString(op bytecode.Opcode) (string, *Error) {
	v, err := l.pop()
	if err != nil {
		return "", err
	}
	s, ok := v.AsString()
	if !ok {
		return "", l.fail(ErrData{Code: InvalidOperands, Op: op, Operands: []value.Value{v}})
	}
	return s, nil
}

func (l *loop) popType() (types.Type, *Error) {
	v, err := l.pop()
	if err != nil {
		return types.Type{}, err
	}
	t, ok := v.AsType()
	if !ok {
		return types.Type{}, l.fail(ErrData{Code: InvalidType, Actual: v.Type(), Want: "a type descriptor"})
	}
	return t, nil
}

func (l *loop) popArray(op bytecode.Opcode, seen ...value.Value) (*value.Array, *Error) {
	v, err := l.pop()
	if err != nil {
		return nil, err
	}
	a, ok := v.AsArray()
	if !ok {
		return nil, l.fail(ErrData{Code: InvalidOperands, Op: op, Operands: append(seen, v)})
	}
	return a, nil
}

func (l *loop) popRecord(op bytecode.Opcode, seen ...value.Value) (*value.Record, *Error) {
	v, err := l.pop()
	if err != nil {
		return nil, err
	}
	r, ok := v.AsRecord()
	if !ok {
		return nil, l.fail(ErrData{Code: InvalidOperands, Op: op, Operands: append(seen, v)})
	}
	return r, nil
}

// containerError maps an element access failure to the error taxonomy.
func (l *loop) containerError(err error) *Error {
	return l.fail(accessErrData(err))
}

func accessErrData(err error) ErrData {
	var ie *value.IndexError
	if errors.As(err, &ie) {
		return ErrData{Code: IndexOutOfBounds, Index: ie.Index, Len: ie.Len}
	}
	var tm *value.TypeMismatchError
	if errors.As(err, &tm) {
		want := tm.Expected
		return ErrData{Code: InvalidType, Actual: tm.Actual, Expected: &want}
	}
	return ErrData{Code: InvalidOperands, Cause: err}
}

func (l *loop) run(ctx context.Context) *Error {
	for {
		if l.ip >= l.body.Len() {
			l.cur = l.ip
			return l.fail(ErrData{Code: InstructionOutOfBounds})
		}
		l.cur = l.ip
		l.env.unwinder.setIP(l.cur)
		ins, next, derr := bytecode.Decode(l.body, l.ip)
		if derr != nil {
			return l.fail(ErrData{Code: InvalidBytecode, Cause: derr})
		}
		l.ip = next

		if l.env.traceInstr {
			trace.Point(l.env.tracer, trace.ScopeInstr, ins.String(), fmt.Sprintf("%s:%d", l.fn.FullName(), l.cur))
		}

		done, err := l.step(ctx, ins)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// step executes one instruction. done is true after RET.
func (l *loop) step(ctx context.Context, ins bytecode.Instruction) (done bool, err *Error) {
	switch ins.Op {
	case bytecode.NOP:

	case bytecode.POP:
		_, err = l.pop()

	case bytecode.DUP:
		var v value.Value
		if v, err = l.pop(); err == nil {
			l.push(v)
			l.push(v)
		}

	case bytecode.SWAP:
		err = l.swap()

	case bytecode.PUSH:
		v, ok := l.mod.InternValue(int(ins.Arg))
		if !ok {
			return false, l.fail(ErrData{Code: MissingInternValue, Index: uint64(ins.Arg)})
		}
		l.push(v)

	case bytecode.FLOOKUP:
		var name string
		if name, err = l.popString(ins.Op); err != nil {
			return false, err
		}
		c, ok := l.env.LookupFunction(name)
		if !ok {
			return false, l.fail(ErrData{Code: MissingFunction, Name: name})
		}
		l.push(value.Func(c))

	case bytecode.TLOOKUP:
		var name string
		if name, err = l.popString(ins.Op); err != nil {
			return false, err
		}
		td, ok := l.env.LookupNamedType(name)
		if !ok {
			return false, l.fail(ErrData{Code: MissingType, Name: name})
		}
		l.push(value.TypeOf(td.Target()))

	case bytecode.CALL:
		err = l.call(ctx)

	case bytecode.TYPEOF:
		var v value.Value
		if v, err = l.pop(); err == nil {
			l.push(value.TypeOf(v.Type()))
		}

	case bytecode.TOSLOT:
		err = l.toSlot(ins.Arg)

	case bytecode.FROMSLOT:
		if int(ins.Arg) >= len(l.slots) {
			return false, l.fail(ErrData{Code: UnsetSlot, Index: uint64(ins.Arg)})
		}
		l.push(l.slots[ins.Arg])

	case bytecode.ADD, bytecode.SUB:
		err = l.arith(ins.Op)

	case bytecode.EQUAL:
		err = l.equal()

	case bytecode.NOT:
		var b bool
		if b, _, err = l.popBool(ins.Op); err == nil {
			l.push(value.Bool(!b))
		}

	case bytecode.AND, bytecode.OR:
		err = l.logic(ins.Op)

	case bytecode.JUMP:
		l.ip = int(ins.Arg)

	case bytecode.JTRUE:
		var b bool
		if b, _, err = l.popBool(ins.Op); err == nil && b {
			l.ip = int(ins.Arg)
		}

	case bytecode.RET:
		return true, nil

	case bytecode.MKARRTYPE:
		err = l.mkArrType()

	case bytecode.MKRECTYPE:
		err = l.mkRecType()

	case bytecode.NEWARR:
		err = l.newArr()

	case bytecode.NEWREC:
		err = l.newRec()

	case bytecode.ARRGET:
		err = l.arrGet()

	case bytecode.ARRSET:
		err = l.arrSet()

	case bytecode.ARRLEN:
		var a *value.Array
		if a, err = l.popArray(ins.Op); err == nil {
			l.push(value.Int(uint64(a.Len())))
		}

	case bytecode.RECGET:
		err = l.recGet()

	case bytecode.RECSET:
		err = l.recSet()

	default:
		err = l.fail(ErrData{Code: InvalidBytecode, Cause: &bytecode.InvalidOpcodeError{Offset: l.cur, Byte: uint8(ins.Op)}})
	}
	return false, err
}

func (l *loop) swap() *Error {
	x, err := l.pop()
	if err != nil {
		return err
	}
	y, err := l.pop()
	if err != nil {
		return err
	}
	l.push(x)
	l.push(y)
	return nil
}

func (l *loop) call(ctx context.Context) *Error {
	v, err := l.pop()
	if err != nil {
		return err
	}
	fv, _ := v.AsFunc()
	c, ok := fv.(*Callable)
	if !ok || c == nil {
		return l.fail(ErrData{Code: InvalidOperands, Op: bytecode.CALL, Operands: []value.Value{v}})
	}
	if cerr := ctx.Err(); cerr != nil {
		return l.fail(ErrData{Code: Cancelled, Cause: cerr})
	}
	return l.env.invoke(ctx, c)
}

func (l *loop) toSlot(n uint16) *Error {
	v, err := l.pop()
	if err != nil {
		return err
	}
	switch idx := int(n); {
	case idx < len(l.slots):
		l.slots[idx] = v
	case idx == len(l.slots):
		l.slots = append(l.slots, v)
	default:
		return l.fail(ErrData{Code: InvalidSlot, Index: uint64(n)})
	}
	return nil
}

// arith pops x then y and pushes x op y.
// arith pops the right-hand operand first: PUSH a; PUSH b; SUB yields a-b.
func (l *loop) arith(op bytecode.Opcode) *Error {
	x, err := l.pop()
	if err != nil {
		return err
	}
	y, err := l.pop()
	if err != nil {
		return err
	}
	if a, ok := x.AsInt(); ok {
		if b, ok := y.AsInt(); ok {
			if op == bytecode.ADD {
				l.push(value.Int(a + b))
			} else {
				l.push(value.Int(b - a))
			}
			return nil
		}
	}
	if a, ok := x.AsFloat(); ok {
		if b, ok := y.AsFloat(); ok {
			if op == bytecode.ADD {
				l.push(value.Float(a + b))
			} else {
				l.push(value.Float(b - a))
			}
			return nil
		}
	}
	return l.fail(ErrData{Code: InvalidOperands, Op: op, Operands: []value.Value{x, y}})
}

func (l *loop) equal() *Error {
	x, err := l.pop()
	if err != nil {
		return err
	}
	y, err := l.pop()
	if err != nil {
		return err
	}
	l.push(value.Bool(x.Equal(y)))
	return nil
}

func (l *loop) logic(op bytecode.Opcode) *Error {
	a, x, err := l.popBool(op)
	if err != nil {
		return err
	}
	b, _, err := l.popBool(op, x)
	if err != nil {
		return err
	}
	if op == bytecode.AND {
		l.push(value.Bool(a && b))
	} else {
		l.push(value.Bool(a || b))
	}
	return nil
}

// toLen converts a popped Integer into a host length.
func (l *loop) toLen(op bytecode.Opcode, n uint64) (int, *Error) {
	v, err := safecast.Conv[int](n)
	if err != nil {
		return 0, l.fail(ErrData{Code: InvalidOperands, Op: op, Operands: []value.Value{value.Int(n)}, Cause: err})
	}
	return v, nil
}

func (l *loop) mkArrType() *Error {
	n, err := l.popInt(bytecode.MKARRTYPE)
	if err != nil {
		return err
	}
	length, err := l.toLen(bytecode.MKARRTYPE, n)
	if err != nil {
		return err
	}
	elem, err := l.popType()
	if err != nil {
		return err
	}
	l.push(value.TypeOf(types.NewArray(elem, length)))
	return nil
}

func (l *loop) mkRecType() *Error {
	n, err := l.popInt(bytecode.MKRECTYPE)
	if err != nil {
		return err
	}
	count, err := l.toLen(bytecode.MKRECTYPE, n)
	if err != nil {
		return err
	}
	if count > l.env.stack.Len() {
		return l.fail(ErrData{Code: EmptyStack})
	}
	fields := make([]types.Type, count)
	for i := count - 1; i >= 0; i-- {
		if fields[i], err = l.popType(); err != nil {
			return err
		}
	}
	l.push(value.TypeOf(types.NewRecord(fields...)))
	return nil
}

// popElements pops len(want) values; values come off the stack in reverse
// and are stored so the result keeps source order.
func (l *loop) popElements(want []types.Type) ([]value.Value, *Error) {
	vals := make([]value.Value, len(want))
	for i := len(want) - 1; i >= 0; i-- {
		v, err := l.pop()
		if err != nil {
			return nil, err
		}
		if vt := v.Type(); !vt.Equal(want[i]) {
			expected := want[i]
			return nil, l.fail(ErrData{Code: InvalidType, Actual: vt, Expected: &expected})
		}
		vals[i] = v
	}
	return vals, nil
}

func (l *loop) newArr() *Error {
	t, err := l.popType()
	if err != nil {
		return err
	}
	at, ok := t.Array()
	if !ok || at.Len < 0 {
		return l.fail(ErrData{Code: InvalidType, Actual: t, Want: "an array type"})
	}
	if at.Len > l.env.stack.Len() {
		return l.fail(ErrData{Code: EmptyStack})
	}
	want := make([]types.Type, at.Len)
	for i := range want {
		want[i] = at.Elem
	}
	vals, err := l.popElements(want)
	if err != nil {
		return err
	}
	arr, aerr := value.NewArray(at.Elem, vals)
	if aerr != nil {
		return l.containerError(aerr)
	}
	l.push(value.Arr(arr))
	return nil
}

func (l *loop) newRec() *Error {
	t, err := l.popType()
	if err != nil {
		return err
	}
	rt, ok := t.Record()
	if !ok {
		return l.fail(ErrData{Code: InvalidType, Actual: t, Want: "a record type"})
	}
	vals, err := l.popElements(rt.Fields)
	if err != nil {
		return err
	}
	rec, rerr := value.NewRecord(rt, vals)
	if rerr != nil {
		return l.containerError(rerr)
	}
	l.push(value.Rec(rec))
	return nil
}

func (l *loop) arrGet() *Error {
	idx, err := l.popInt(bytecode.ARRGET)
	if err != nil {
		return err
	}
	a, err := l.popArray(bytecode.ARRGET, value.Int(idx))
	if err != nil {
		return err
	}
	v, gerr := a.Get(idx)
	if gerr != nil {
		return l.containerError(gerr)
	}
	l.push(v)
	return nil
}

func (l *loop) arrSet() *Error {
	v, err := l.pop()
	if err != nil {
		return err
	}
	idx, err := l.popInt(bytecode.ARRSET, v)
	if err != nil {
		return err
	}
	a, err := l.popArray(bytecode.ARRSET, v, value.Int(idx))
	if err != nil {
		return err
	}
	if serr := a.Set(idx, v); serr != nil {
		return l.containerError(serr)
	}
	l.push(value.Arr(a))
	return nil
}

func (l *loop) recGet() *Error {
	idx, err := l.popInt(bytecode.RECGET)
	if err != nil {
		return err
	}
	r, err := l.popRecord(bytecode.RECGET, value.Int(idx))
	if err != nil {
		return err
	}
	v, gerr := r.Get(idx)
	if gerr != nil {
		return l.containerError(gerr)
	}
	l.push(v)
	return nil
}

func (l *loop) recSet() *Error {
	v, err := l.pop()
	if err != nil {
		return err
	}
	idx, err := l.popInt(bytecode.RECSET, v)
	if err != nil {
		return err
	}
	r, err := l.popRecord(bytecode.RECSET, v, value.Int(idx))
	if err != nil {
		return err
	}
	if serr := r.Set(idx, v); serr != nil {
		return l.containerError(serr)
	}
	l.push(value.Rec(r))
	return nil
}
