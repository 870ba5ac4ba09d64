// Package corelib provides the native "corelib" module: wall-clock time,
// printing, array copying and the named primitive types.
package corelib

import (
	"time"

	"tukun/internal/types"
	"tukun/internal/vm"
)

// ModuleName is the name corelib registers under.
const ModuleName = "corelib"

// Option adjusts the natives built by New.
type Option func(*options)

type options struct {
	clock func() time.Time
}

// WithClock replaces time.Now for corelib.now.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// New builds the corelib runtime module.
func New(opts ...Option) *vm.RuntimeModule {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	rm := vm.NewRuntimeModule(ModuleName)
	rm.AddNative(vm.NativeFunc{FnName: "now", Fn: now(o.clock)})
	rm.AddNative(vm.NativeFunc{FnName: "print", Fn: printValue})
	rm.AddNative(vm.NativeFunc{FnName: "arraycopy", Fn: arrayCopy})

	rm.AddNamedType(types.NewTypeDef("integer", types.Integer))
	rm.AddNamedType(types.NewTypeDef("logical", types.Logical))
	rm.AddNamedType(types.NewTypeDef("string", types.String))
	rm.AddNamedType(types.NewTypeDef("float", types.Float))
	return rm
}

// Register adds corelib to env.
func Register(env *vm.Environment, opts ...Option) {
	env.AddModule(New(opts...))
}
