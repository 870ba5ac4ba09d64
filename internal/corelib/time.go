package corelib

import (
	"time"

	"fortio.org/safecast"

	"tukun/internal/value"
	"tukun/internal/vm"
)

// now pushes milliseconds since the Unix epoch.
func now(clock func() time.Time) func(*vm.Environment) error {
	return func(env *vm.Environment) error {
		ms, err := safecast.Conv[uint64](clock().UnixMilli())
		if err != nil {
			return err
		}
		env.Push(value.Int(ms))
		return nil
	}
}
