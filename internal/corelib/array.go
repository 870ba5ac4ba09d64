package corelib

import (
	"math"

	"tukun/internal/value"
	"tukun/internal/vm"
)

// arrayCopy pops len, dst_idx, dst, src_idx and src, copies
// src[src_idx:src_idx+len] over dst[dst_idx:] and pushes dst.
func arrayCopy(env *vm.Environment) error {
	n, err := env.PopInt()
	if err != nil {
		return err
	}
	dstIdx, err := env.PopInt()
	if err != nil {
		return err
	}
	dst, err := env.PopArray()
	if err != nil {
		return err
	}
	srcIdx, err := env.PopInt()
	if err != nil {
		return err
	}
	src, err := env.PopArray()
	if err != nil {
		return err
	}

	if n > 0 && (srcIdx > math.MaxUint64-n || dstIdx > math.MaxUint64-n) {
		return env.Fail(vm.ErrData{Code: vm.IndexOutOfBounds, Index: math.MaxUint64, Len: src.Len()})
	}

	// read everything first so overlapping copies within one array behave
	// like a memmove
	items := make([]value.Value, 0, min(n, uint64(src.Len())))
	for i := uint64(0); i < n; i++ {
		v, gerr := src.Get(srcIdx + i)
		if gerr != nil {
			return env.AccessError(gerr)
		}
		items = append(items, v)
	}
	for i, v := range items {
		if serr := dst.Set(dstIdx+uint64(i), v); serr != nil {
			return env.AccessError(serr)
		}
	}
	env.Push(value.Arr(dst))
	return nil
}
