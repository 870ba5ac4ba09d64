package corelib

import (
	"fmt"
	"strconv"

	"tukun/internal/value"
	"tukun/internal/vm"
)

// printValue pops one value and writes its display form on its own line.
func printValue(env *vm.Environment) error {
	v, err := env.PopValue()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(env.Output(), display(v))
	return err
}

// display renders scalars bare; containers and types use their value form.
func display(v value.Value) string {
	if n, ok := v.AsInt(); ok {
		return strconv.FormatUint(n, 10)
	}
	if b, ok := v.AsBool(); ok {
		return strconv.FormatBool(b)
	}
	if f, ok := v.AsFloat(); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if s, ok := v.AsString(); ok {
		return s
	}
	if fn, ok := v.AsFunc(); ok && fn != nil {
		return fn.FullName()
	}
	if t, ok := v.AsType(); ok {
		return t.String()
	}
	return v.String()
}
