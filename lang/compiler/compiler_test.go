package compiler_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rox-lang/rox/lang/compiler"
	"github.com/rox-lang/rox/lang/value"
)

func disasm(t *testing.T, fn *value.ObjFunction) string {
	t.Helper()
	var buf bytes.Buffer
	fn.Chunk.Disassemble(&buf, fn.Name)
	return buf.String()
}

func TestCompileArithmeticExpression(t *testing.T) {
	fn, err := compiler.Compile("1 + 2 * 3;")
	require.NoError(t, err)
	out := disasm(t, fn)
	require.Contains(t, out, "OP_MULTIPLY")
	require.Contains(t, out, "OP_ADD")
	require.Contains(t, out, "OP_RETURN")
}

func TestCompileVarAndPrint(t *testing.T) {
	fn, err := compiler.Compile("var a = 1; print a;")
	require.NoError(t, err)
	out := disasm(t, fn)
	require.Contains(t, out, "OP_DEFINE_GLOBAL")
	require.Contains(t, out, "OP_GET_GLOBAL")
	require.Contains(t, out, "OP_PRINT")
}

func TestCompileLocalScope(t *testing.T) {
	fn, err := compiler.Compile("{ var a = 1; var b = 2; print a + b; }")
	require.NoError(t, err)
	out := disasm(t, fn)
	require.Contains(t, out, "OP_GET_LOCAL")
	require.Contains(t, out, "OP_POP") // end-of-scope cleanup
}

func TestCompileFunctionDeclaration(t *testing.T) {
	fn, err := compiler.Compile(`fun add(a, b) { return a + b; } print add(1, 2);`)
	require.NoError(t, err)

	out := disasm(t, fn)
	require.Contains(t, out, "OP_DEFINE_GLOBAL")
	require.Contains(t, out, "OP_CALL")

	var inner *value.ObjFunction
	for _, c := range fn.Chunk.Constants {
		if f, ok := c.(*value.ObjFunction); ok {
			inner = f
		}
	}
	require.NotNil(t, inner, "add's function object should land in the script's constant pool")
	require.Equal(t, 2, inner.Arity)
	innerOut := disasm(t, inner)
	require.Contains(t, innerOut, "OP_GET_LOCAL")
	require.Contains(t, innerOut, "OP_ADD")
	require.Contains(t, innerOut, "OP_RETURN")
}

func TestReadLocalInOwnInitializer(t *testing.T) {
	_, err := compiler.Compile("{ var a = a; }")
	require.Error(t, err)
	require.Contains(t, err.Error(), "own initializer")
}

func TestAssignToNonLvalue(t *testing.T) {
	_, err := compiler.Compile("1 + 2 = 3;")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid assignment target")
}

func TestDuplicateLocalDeclaration(t *testing.T) {
	_, err := compiler.Compile("{ var a = 1; var a = 2; }")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Already a variable")
}

func TestReturnAtScriptLevelCompiles(t *testing.T) {
	fn, err := compiler.Compile("return 1 + 2;")
	require.NoError(t, err)
	require.Contains(t, disasm(t, fn), "OP_RETURN")
}

func TestClosureOverEnclosingLocalIsCompileError(t *testing.T) {
	_, err := compiler.Compile(`
		fun outer() {
			var x = 1;
			fun inner() { print x; }
			inner();
		}
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "close over")
}

func TestIfWhileForCompile(t *testing.T) {
	fn, err := compiler.Compile(`
		var total = 0;
		if (total == 0) { print "zero"; } else { print "nonzero"; }
		while (total < 3) { total = total + 1; }
		for (var i = 0; i < 3; i = i + 1) { print i; }
	`)
	require.NoError(t, err)
	out := disasm(t, fn)
	require.Contains(t, out, "OP_JUMP_IF_FALSE")
	require.Contains(t, out, "OP_JUMP")
	require.Contains(t, out, "OP_LOOP")
}

func TestTooManyParameters(t *testing.T) {
	var params []string
	for i := 0; i < 256; i++ {
		params = append(params, fmt.Sprintf("p%d", i))
	}
	src := fmt.Sprintf("fun f(%s) {}", strings.Join(params, ", "))
	_, err := compiler.Compile(src)
	require.Error(t, err)
	require.Contains(t, err.Error(), "255 parameters")
}

func TestMultipleErrorsAreAllReported(t *testing.T) {
	_, err := compiler.Compile(`
		{ var a = a; }
		1 + 2 = 3;
	`)
	require.Error(t, err)
	el, ok := err.(compiler.ErrorList)
	require.True(t, ok)
	require.GreaterOrEqual(t, len(el), 2)
}

func TestStringAndBooleanLiterals(t *testing.T) {
	fn, err := compiler.Compile(`print "hi"; print true; print false; print nil;`)
	require.NoError(t, err)
	out := disasm(t, fn)
	require.Contains(t, out, "'hi'")
	require.Contains(t, out, "OP_TRUE")
	require.Contains(t, out, "OP_FALSE")
	require.Contains(t, out, "OP_NIL")
}
