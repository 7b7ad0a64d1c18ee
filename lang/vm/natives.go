package vm

import (
	"fmt"
	"math"
	"time"

	"github.com/rox-lang/rox/lang/value"
)

// registerNatives installs the host-provided callables every VM starts with
// (spec.md §4.6): clock(), returning seconds since the Unix epoch, and
// sin(x), a thin wrapper over math.Sin for exercising numeric native calls.
func (vm *VM) registerNatives() {
	vm.defineNative("clock", 0, func(args []value.Value) (value.Value, error) {
		return value.Number(float64(time.Now().UnixNano()) / 1e9), nil
	})
	vm.defineNative("sin", 1, func(args []value.Value) (value.Value, error) {
		n, ok := args[0].(value.Number)
		if !ok {
			return nil, fmt.Errorf("sin() expects a number argument, got %s", args[0].Type())
		}
		return value.Number(math.Sin(float64(n))), nil
	})
}

func (vm *VM) defineNative(name string, arity int, fn value.NativeFn) {
	n := &value.Native{Name: name, Arity: arity, Fn: fn}
	vm.setGlobal(name, n)
}
