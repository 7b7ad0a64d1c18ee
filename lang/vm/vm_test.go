package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rox-lang/rox/lang/value"
	"github.com/rox-lang/rox/lang/vm"
)

func run(t *testing.T, source string) string {
	t.Helper()
	var out bytes.Buffer
	machine := vm.New()
	machine.Stdout = &out
	_, err := machine.Interpret(source)
	require.NoError(t, err)
	return out.String()
}

// interpret runs source and returns the program result: the value left by
// a top-level return, or nil if the script falls off the end.
func interpret(t *testing.T, source string) value.Value {
	t.Helper()
	machine := vm.New()
	result, err := machine.Interpret(source)
	require.NoError(t, err)
	return result
}

func TestArithmetic(t *testing.T) {
	require.Equal(t, "5\n", run(t, "print 1 + 2 * 3 - 4 / 2;"))
}

func TestFunctionCallsAndReturn(t *testing.T) {
	out := run(t, `
		fun square(x) { return x * x; }
		fun sum(a, b) { return a + b; }
		print sum(square(2), square(3));
	`)
	require.Equal(t, "13\n", out)
}

func TestStringConcatenation(t *testing.T) {
	require.Equal(t, "foobar\n", run(t, `print "foo" + "bar";`))
}

func TestStringPlusNumberIsRuntimeError(t *testing.T) {
	machine := vm.New()
	_, err := machine.Interpret(`print "foo" + 1;`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Operands must be two numbers or two strings")
}

// The recursive sum fib(n) = n<2 ? n : n+fib(n-1) is summation, not the
// Fibonacci sequence: fib(6) = 6+5+4+3+2+1 = 21. This is the program-result
// form of the scenario (a top-level return), not just a printed value.
func TestFibSummation(t *testing.T) {
	result := interpret(t, `
		fun fib(n) {
			if (n < 2) return n;
			else return n + fib(n-1);
		}
		return fib(6);
	`)
	require.Equal(t, value.Number(21), result)
}

func TestNestedCallReturningAFunction(t *testing.T) {
	out := run(t, `
		fun returnArg(arg) {
			return arg;
		}

		fun returnFunCallWithArg(func, arg) {
			return returnArg(func)(arg);
		}

		fun printArg(arg) {
			print arg;
		}

		return returnFunCallWithArg(printArg, "hello world");
	`)
	require.Equal(t, "hello world\n", out)
}

// The following tests exercise the concrete scenarios in spec.md §8
// directly as top-level returns, since that is the form they're written in.

func TestTopLevelReturnArithmetic(t *testing.T) {
	require.Equal(t, value.Number(3), interpret(t, "return 1 + 2;"))
}

func TestTopLevelReturnFromCall(t *testing.T) {
	result := interpret(t, `
		fun sum(a, b) { return a + b; }
		return sum(1, 2);
	`)
	require.Equal(t, value.Number(3), result)
}

func TestTopLevelReturnFromSquare(t *testing.T) {
	result := interpret(t, `
		fun sq(x) { return x * x; }
		return sq(3);
	`)
	require.Equal(t, value.Number(9), result)
}

func TestTopLevelReturnString(t *testing.T) {
	result := interpret(t, `
		var s = "hello";
		return s;
	`)
	require.Equal(t, value.NewString("hello"), result)
}

func TestTopLevelReturnNative(t *testing.T) {
	result := interpret(t, "return sin(1.5709);")
	n, ok := result.(value.Number)
	require.True(t, ok)
	require.InDelta(t, 1.0, float64(n), 1e-4)
}

func TestStackOverflowOnUnboundedRecursion(t *testing.T) {
	machine := vm.New()
	_, err := machine.Interpret(`
		fun a(x) {
			return a(x + 1);
		}
		print a(1);
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Stack overflow")
}

func TestArityMismatch(t *testing.T) {
	machine := vm.New()
	_, err := machine.Interpret(`
		fun needsTwo(a, b) { return a + b; }
		needsTwo(1);
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Expected 2 arguments but got 1")
}

func TestCallingNonCallableIsRuntimeError(t *testing.T) {
	machine := vm.New()
	_, err := machine.Interpret(`
		var notAFunction = 1;
		notAFunction();
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Can only call functions")
}

func TestUndefinedGlobalRead(t *testing.T) {
	machine := vm.New()
	_, err := machine.Interpret(`print undeclared;`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Undefined variable")
}

func TestUndefinedGlobalAssignment(t *testing.T) {
	machine := vm.New()
	_, err := machine.Interpret(`undeclared = 1;`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Undefined variable")
}

func TestNativeSin(t *testing.T) {
	out := run(t, `print sin(0);`)
	require.Equal(t, "0\n", out)
}

func TestNativeClockReturnsNumber(t *testing.T) {
	machine := vm.New()
	var out bytes.Buffer
	machine.Stdout = &out
	_, err := machine.Interpret(`print clock() >= 0;`)
	require.NoError(t, err)
	require.Equal(t, "true\n", out.String())
}

func TestWhileAndForLoops(t *testing.T) {
	out := run(t, `
		var total = 0;
		var i = 0;
		while (i < 5) {
			total = total + i;
			i = i + 1;
		}
		print total;

		var sum = 0;
		for (var j = 0; j < 5; j = j + 1) {
			sum = sum + j;
		}
		print sum;
	`)
	require.Equal(t, "10\n10\n", out)
}

func TestIfElseBranches(t *testing.T) {
	out := run(t, `
		if (1 < 2) { print "yes"; } else { print "no"; }
		if (2 < 1) { print "yes"; } else { print "no"; }
	`)
	require.Equal(t, "yes\nno\n", out)
}

func TestLocalScoping(t *testing.T) {
	out := run(t, `
		var a = "outer";
		{
			var a = "inner";
			print a;
		}
		print a;
	`)
	require.Equal(t, "inner\nouter\n", out)
}

func TestAndOrShortCircuit(t *testing.T) {
	out := run(t, `
		fun loud(v) { print v; return v; }
		print false and loud("not reached");
		print true or loud("not reached either");
	`)
	require.Equal(t, "false\ntrue\n", out)
}

func TestDumpGlobalsSortedByName(t *testing.T) {
	machine := vm.New()
	_, err := machine.Interpret(`
		var zebra = 1;
		var apple = "fruit";
	`)
	require.NoError(t, err)

	var buf bytes.Buffer
	machine.DumpGlobals(&buf)
	require.Equal(t, "apple = fruit\nclock = <native fn clock>\nsin = <native fn sin>\nzebra = 1\n", buf.String())
}
