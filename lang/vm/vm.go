// Package vm executes the bytecode produced by lang/compiler: a stack-based
// interpreter with a bounded call-frame stack, global variables, and a small
// table of host-provided native functions (spec.md §4.5/§4.6).
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/dolthub/swiss"

	"github.com/rox-lang/rox/lang/bytecode"
	"github.com/rox-lang/rox/lang/compiler"
	"github.com/rox-lang/rox/lang/value"
)

// FramesMax bounds the number of nested function calls a VM will execute
// before reporting a stack overflow (spec.md §4.5).
const FramesMax = 64

// StackMax bounds the operand stack: each frame could in principle use the
// whole of it, so it is sized as a multiple of FramesMax.
const StackMax = FramesMax * 256

// VM executes compiled rox programs. The zero value is not usable; use New.
type VM struct {
	stack  []value.Value
	frames []callFrame

	globals *swiss.Map[string, value.Value]
	// globalOrder records the order globals were first defined in, so
	// DumpGlobals can enumerate the swiss.Map's unordered contents
	// deterministically.
	globalOrder []string

	Stdout io.Writer
}

// New returns a VM ready to interpret source, with its native functions
// already registered as globals.
func New() *VM {
	vm := &VM{
		stack:   make([]value.Value, 0, 256),
		globals: swiss.NewMap[string, value.Value](32),
		Stdout:  os.Stdout,
	}
	vm.registerNatives()
	return vm
}

// Interpret compiles and runs source, returning the value left on the stack
// when the top-level script implicitly returns, or the first compile or
// runtime error encountered.
func (vm *VM) Interpret(source string) (value.Value, error) {
	fn, err := compiler.Compile(source)
	if err != nil {
		return nil, err
	}
	return vm.Run(fn)
}

// Run executes an already-compiled top-level function. It is exposed
// separately from Interpret so callers that persist compiled chunks
// (spec.md §6) can load and run them without re-compiling source.
func (vm *VM) Run(fn *value.ObjFunction) (value.Value, error) {
	if err := vm.push(fn); err != nil {
		return nil, err
	}
	if err := vm.call(fn, 0); err != nil {
		return nil, err
	}
	return vm.run()
}

// push grows the value stack, enforcing the StackMax bound required by
// spec.md §5/§7.
func (vm *VM) push(v value.Value) error {
	if len(vm.stack) >= StackMax {
		return vm.runtimeErrorf("Value stack overflow.")
	}
	vm.stack = append(vm.stack, v)
	return nil
}

func (vm *VM) pop() value.Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[len(vm.stack)-1-distance]
}

// setGlobal stores name/v in the global table, recording a new name in
// globalOrder the first time it is defined.
func (vm *VM) setGlobal(name string, v value.Value) {
	if _, exists := vm.globals.Get(name); !exists {
		vm.globalOrder = append(vm.globalOrder, name)
	}
	vm.globals.Put(name, v)
}

func (vm *VM) frame() *callFrame { return &vm.frames[len(vm.frames)-1] }

// call pushes a new call frame for fn, validating its arity. argCount values
// for the call already sit on top of the stack; the callee itself sits just
// below them, at the new frame's reserved stackBase-1 slot.
func (vm *VM) call(fn *value.ObjFunction, argCount int) error {
	if argCount != fn.Arity {
		return vm.runtimeErrorf("Expected %d arguments but got %d.", fn.Arity, argCount)
	}
	if len(vm.frames) >= FramesMax {
		return vm.runtimeErrorf("Stack overflow.")
	}
	vm.frames = append(vm.frames, callFrame{
		function:  fn,
		stackBase: len(vm.stack) - argCount,
	})
	return nil
}

func (vm *VM) callValue(callee value.Value, argCount int) error {
	switch c := callee.(type) {
	case *value.ObjFunction:
		return vm.call(c, argCount)
	case *value.Native:
		if argCount != c.Arity {
			return vm.runtimeErrorf("Expected %d arguments but got %d.", c.Arity, argCount)
		}
		args := append([]value.Value(nil), vm.stack[len(vm.stack)-argCount:]...)
		result, err := c.Fn(args)
		if err != nil {
			return vm.runtimeErrorf("%s", err)
		}
		vm.stack = vm.stack[:len(vm.stack)-argCount-1] // pop args and the native itself
		return vm.push(result)
	default:
		return vm.runtimeErrorf("Can only call functions.")
	}
}

// run is the bytecode dispatch loop: it interprets the frame on top of the
// frame stack until that top-level call returns.
func (vm *VM) run() (value.Value, error) {
	baseFrameDepth := len(vm.frames) - 1

	for {
		fr := vm.frame()
		op := bytecode.Opcode(fr.readByte())

		switch op {
		case bytecode.CONSTANT:
			idx := fr.readByte()
			if err := vm.push(fr.function.Chunk.Constants[idx]); err != nil {
				return nil, err
			}

		case bytecode.NIL:
			if err := vm.push(value.Nil{}); err != nil {
				return nil, err
			}
		case bytecode.TRUE:
			if err := vm.push(value.Boolean(true)); err != nil {
				return nil, err
			}
		case bytecode.FALSE:
			if err := vm.push(value.Boolean(false)); err != nil {
				return nil, err
			}
		case bytecode.POP:
			vm.pop()

		case bytecode.GET_LOCAL:
			slot := fr.readByte()
			if err := vm.push(vm.stack[fr.stackBase+int(slot)]); err != nil {
				return nil, err
			}
		case bytecode.SET_LOCAL:
			slot := fr.readByte()
			vm.stack[fr.stackBase+int(slot)] = vm.peek(0)

		case bytecode.GET_GLOBAL:
			idx := fr.readByte()
			name := fr.function.Chunk.Constants[idx].String()
			v, ok := vm.globals.Get(name)
			if !ok {
				return nil, vm.runtimeErrorf("Undefined variable '%s'.", name)
			}
			if err := vm.push(v); err != nil {
				return nil, err
			}
		case bytecode.SET_GLOBAL:
			idx := fr.readByte()
			name := fr.function.Chunk.Constants[idx].String()
			if _, ok := vm.globals.Get(name); !ok {
				return nil, vm.runtimeErrorf("Undefined variable '%s'.", name)
			}
			vm.setGlobal(name, vm.peek(0))
		case bytecode.DEFINE_GLOBAL:
			idx := fr.readByte()
			name := fr.function.Chunk.Constants[idx].String()
			vm.setGlobal(name, vm.pop())

		case bytecode.EQUAL:
			b, a := vm.pop(), vm.pop()
			if err := vm.push(value.Boolean(value.Equal(a, b))); err != nil {
				return nil, err
			}
		case bytecode.GREATER:
			if err := vm.numericComparison(func(a, b float64) bool { return a > b }); err != nil {
				return nil, err
			}
		case bytecode.LESS:
			if err := vm.numericComparison(func(a, b float64) bool { return a < b }); err != nil {
				return nil, err
			}

		case bytecode.ADD:
			if err := vm.add(); err != nil {
				return nil, err
			}
		case bytecode.SUBTRACT:
			if err := vm.numericBinary(func(a, b float64) float64 { return a - b }); err != nil {
				return nil, err
			}
		case bytecode.MULTIPLY:
			if err := vm.numericBinary(func(a, b float64) float64 { return a * b }); err != nil {
				return nil, err
			}
		case bytecode.DIVIDE:
			if err := vm.numericBinary(func(a, b float64) float64 { return a / b }); err != nil {
				return nil, err
			}

		case bytecode.NOT:
			if err := vm.push(value.Boolean(!value.Truthy(vm.pop()))); err != nil {
				return nil, err
			}
		case bytecode.NEGATE:
			n, ok := vm.peek(0).(value.Number)
			if !ok {
				return nil, vm.runtimeErrorf("Operand must be a number.")
			}
			vm.pop()
			if err := vm.push(-n); err != nil {
				return nil, err
			}

		case bytecode.PRINT:
			fmt.Fprintln(vm.Stdout, vm.pop().String())

		case bytecode.JUMP:
			offset := fr.readUint16()
			fr.ip += int(offset)
		case bytecode.JUMP_IF_FALSE:
			offset := fr.readUint16()
			if !value.Truthy(vm.peek(0)) {
				fr.ip += int(offset)
			}
		case bytecode.LOOP:
			offset := fr.readUint16()
			fr.ip -= int(offset)

		case bytecode.CALL:
			argCount := int(fr.readByte())
			callee := vm.peek(argCount)
			if err := vm.callValue(callee, argCount); err != nil {
				return nil, err
			}

		case bytecode.RETURN:
			result := vm.pop()
			finished := vm.frames[len(vm.frames)-1]
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == baseFrameDepth {
				return result, nil
			}
			vm.stack = vm.stack[:finished.stackBase-1]
			if err := vm.push(result); err != nil {
				return nil, err
			}

		default:
			return nil, vm.runtimeErrorf("internal error: unimplemented opcode %s", op)
		}
	}
}

func (vm *VM) add() error {
	b, a := vm.peek(0), vm.peek(1)
	switch a := a.(type) {
	case value.Number:
		bn, ok := b.(value.Number)
		if !ok {
			return vm.runtimeErrorf("Operands must be two numbers or two strings.")
		}
		vm.pop()
		vm.pop()
		return vm.push(a + bn)
	case *value.ObjString:
		bs, ok := b.(*value.ObjString)
		if !ok {
			return vm.runtimeErrorf("Operands must be two numbers or two strings.")
		}
		vm.pop()
		vm.pop()
		return vm.push(value.NewString(a.Value + bs.Value))
	default:
		return vm.runtimeErrorf("Operands must be two numbers or two strings.")
	}
}

func (vm *VM) numericBinary(op func(a, b float64) float64) error {
	b, ok1 := vm.peek(0).(value.Number)
	a, ok2 := vm.peek(1).(value.Number)
	if !ok1 || !ok2 {
		return vm.runtimeErrorf("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	return vm.push(value.Number(op(float64(a), float64(b))))
}

func (vm *VM) numericComparison(op func(a, b float64) bool) error {
	b, ok1 := vm.peek(0).(value.Number)
	a, ok2 := vm.peek(1).(value.Number)
	if !ok1 || !ok2 {
		return vm.runtimeErrorf("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	return vm.push(value.Boolean(op(float64(a), float64(b))))
}
