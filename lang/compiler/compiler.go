// Package compiler turns rox source text directly into bytecode in a single
// pass: there is no separate AST or name-resolution phase (spec.md §4.4).
// Parsing, scope resolution and code generation are interleaved the way
// Pratt parsers and clox-style compilers traditionally do it.
package compiler

import (
	"fmt"
	"strconv"

	"github.com/rox-lang/rox/lang/bytecode"
	"github.com/rox-lang/rox/lang/scanner"
	"github.com/rox-lang/rox/lang/token"
	"github.com/rox-lang/rox/lang/value"
)

// maxLocals bounds the number of locals live in a single function at once;
// a local's stack slot is encoded as a single byte operand (spec.md §4.2).
const maxLocals = 256

// maxArgs bounds the number of arguments a single call site may pass
// (spec.md §4.6); argument counts are encoded as a single byte operand.
const maxArgs = 255

// FunctionType distinguishes compiling the implicit top-level script from
// compiling a named function body. Both may contain a return with a value;
// in both, the implicit final return yields Nil.
type FunctionType int

const (
	typeScript FunctionType = iota
	typeFunction
)

type local struct {
	name string
	// depth is -1 between a local's declaration and the point where its
	// initializer has fully evaluated; reading it in that window is the
	// "own initializer" error (spec.md §4.4 edge cases).
	depth int
}

// state holds the compiler's per-function bookkeeping: its locals, its
// scope nesting, and the function object code is being emitted into. A
// Compiler keeps a stack of these, one per function currently being
// compiled, chained through enclosing.
type state struct {
	enclosing *state

	function *value.ObjFunction
	fnType   FunctionType

	locals     []local
	scopeDepth int

	// globalNames dedupes the name constants this function's chunk emits
	// for GET_GLOBAL/SET_GLOBAL/DEFINE_GLOBAL, so referencing the same
	// global twice in one function does not grow the constant pool twice.
	globalNames map[string]int
}

// Compiler drives a single Compile call: it pulls tokens from a Scanner one
// at a time and emits bytecode into the state at the top of its function
// stack.
type Compiler struct {
	scanner *scanner.Scanner

	previous token.Token
	current  token.Token

	errs      ErrorList
	panicMode bool

	cs *state
}

// Compile compiles source into a callable top-level function representing
// the whole program (spec.md §4.4: the script itself is an implicit,
// zero-argument function). On a compile error, it returns a non-nil error
// (an ErrorList) and a nil function.
func Compile(source string) (*value.ObjFunction, error) {
	c := &Compiler{scanner: scanner.New([]byte(source))}
	c.pushState(typeScript, "")

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	fn := c.popState()

	if err := c.errs.Err(); err != nil {
		return nil, err
	}
	return fn, nil
}

func (c *Compiler) pushState(fnType FunctionType, name string) {
	c.cs = &state{
		enclosing:   c.cs,
		function:    value.NewFunction(name, 0),
		fnType:      fnType,
		globalNames: make(map[string]int),
	}
}

// popState closes the current function: it emits the implicit trailing
// return and unwinds to the enclosing state.
func (c *Compiler) popState() *value.ObjFunction {
	c.emitReturn()
	fn := c.cs.function
	c.cs = c.cs.enclosing
	return fn
}

// --- token stream -----------------------------------------------------

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.Scan()
		if c.current.Kind != token.ILLEGAL {
			return
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(kind token.Kind) bool { return c.current.Kind == kind }

func (c *Compiler) match(kind token.Kind) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(kind token.Kind, message string) {
	if c.current.Kind == kind {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *Compiler) errorAtCurrent(message string) { c.errorAt(c.current, message) }
func (c *Compiler) error(message string)          { c.errorAt(c.previous, message) }

func (c *Compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.errs.add(tok.Line, message)
}

// synchronize skips tokens until it reaches a point a new statement is
// likely to start, so one mistake does not cascade into a wall of errors.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Kind != token.EOF {
		if c.previous.Kind == token.SEMI {
			return
		}
		switch c.current.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

// --- emission helpers ---------------------------------------------------

func (c *Compiler) chunk() *value.Chunk { return c.cs.function.Chunk }

func (c *Compiler) emitOp(op bytecode.Opcode) { c.chunk().WriteOp(op, c.previous.Line) }

func (c *Compiler) emitOpByte(op bytecode.Opcode, b byte) {
	c.chunk().WriteOpByte(op, b, c.previous.Line)
}

func (c *Compiler) emitJump(op bytecode.Opcode) int {
	return c.chunk().WriteJump(op, c.previous.Line)
}

func (c *Compiler) patchJump(offset int) {
	if err := c.chunk().PatchJump(offset); err != nil {
		c.error(err.Error())
	}
}

func (c *Compiler) emitLoop(loopStart int) {
	if err := c.chunk().WriteLoop(loopStart, c.previous.Line); err != nil {
		c.error(err.Error())
	}
}

func (c *Compiler) emitReturn() {
	c.emitOp(bytecode.NIL)
	c.emitOp(bytecode.RETURN)
}

func (c *Compiler) emitConstant(v value.Value) {
	idx, err := c.chunk().AddConstant(v)
	if err != nil {
		c.error(err.Error())
		return
	}
	c.emitOpByte(bytecode.CONSTANT, byte(idx))
}

// identifierConstant interns name as a string constant in the current
// function's chunk, reusing the index if name was already interned there.
func (c *Compiler) identifierConstant(name string) byte {
	if idx, ok := c.cs.globalNames[name]; ok {
		return byte(idx)
	}
	idx, err := c.chunk().AddConstant(value.NewString(name))
	if err != nil {
		c.error(err.Error())
		return 0
	}
	c.cs.globalNames[name] = idx
	return byte(idx)
}

// --- declarations and statements ---------------------------------------

func (c *Compiler) declaration() {
	switch {
	case c.match(token.FUN):
		c.funDeclaration()
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) funDeclaration() {
	c.consume(token.IDENT, "Expect function name.")
	name := c.previous.Lexeme
	global, isLocal := c.declareOrGlobal(name)
	if isLocal {
		c.markInitialized()
	}
	c.function(name, typeFunction)
	c.defineVariable(global, isLocal)
}

func (c *Compiler) varDeclaration() {
	c.consume(token.IDENT, "Expect variable name.")
	name := c.previous.Lexeme
	global, isLocal := c.declareOrGlobal(name)

	if c.match(token.EQ) {
		c.expression()
	} else {
		c.emitOp(bytecode.NIL)
	}
	c.consume(token.SEMI, "Expect ';' after variable declaration.")
	c.defineVariable(global, isLocal)
}

// declareOrGlobal records name as a new local in the current scope, or (at
// the top level) returns the constant index that will name it as a global.
// The bool result reports which case applied.
func (c *Compiler) declareOrGlobal(name string) (global byte, isLocal bool) {
	if c.cs.scopeDepth == 0 {
		return c.identifierConstant(name), false
	}
	c.addLocal(name)
	return 0, true
}

func (c *Compiler) addLocal(name string) {
	for i := len(c.cs.locals) - 1; i >= 0; i-- {
		l := c.cs.locals[i]
		if l.depth != -1 && l.depth < c.cs.scopeDepth {
			break
		}
		if l.name == name {
			c.error(fmt.Sprintf("Already a variable named %q in this scope.", name))
			return
		}
	}
	if len(c.cs.locals) >= maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.cs.locals = append(c.cs.locals, local{name: name, depth: -1})
}

func (c *Compiler) markInitialized() {
	if c.cs.scopeDepth == 0 {
		return
	}
	c.cs.locals[len(c.cs.locals)-1].depth = c.cs.scopeDepth
}

func (c *Compiler) defineVariable(global byte, isLocal bool) {
	if isLocal {
		c.markInitialized()
		return
	}
	c.emitOpByte(bytecode.DEFINE_GLOBAL, global)
}

func (c *Compiler) function(name string, fnType FunctionType) {
	c.pushState(fnType, name)
	c.beginScope()

	c.consume(token.LPAREN, "Expect '(' after function name.")
	if !c.check(token.RPAREN) {
		for {
			c.cs.function.Arity++
			if c.cs.function.Arity > maxArgs {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			c.consume(token.IDENT, "Expect parameter name.")
			pname := c.previous.Lexeme
			c.addLocal(pname)
			c.markInitialized()
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after parameters.")
	c.consume(token.LBRACE, "Expect '{' before function body.")
	c.block()

	fn := c.popState()
	idx, err := c.chunk().AddConstant(fn)
	if err != nil {
		c.error(err.Error())
		return
	}
	c.emitOpByte(bytecode.CONSTANT, byte(idx))
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

func (c *Compiler) beginScope() { c.cs.scopeDepth++ }

func (c *Compiler) endScope() {
	c.cs.scopeDepth--
	for len(c.cs.locals) > 0 && c.cs.locals[len(c.cs.locals)-1].depth > c.cs.scopeDepth {
		c.emitOp(bytecode.POP)
		c.cs.locals = c.cs.locals[:len(c.cs.locals)-1]
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMI, "Expect ';' after value.")
	c.emitOp(bytecode.PRINT)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMI, "Expect ';' after expression.")
	c.emitOp(bytecode.POP)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LPAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(bytecode.JUMP_IF_FALSE)
	c.emitOp(bytecode.POP)
	c.statement()

	elseJump := c.emitJump(bytecode.JUMP)
	c.patchJump(thenJump)
	c.emitOp(bytecode.POP)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk().Code)
	c.consume(token.LPAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(bytecode.JUMP_IF_FALSE)
	c.emitOp(bytecode.POP)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(bytecode.POP)
}

func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "Expect '(' after 'for'.")

	switch {
	case c.match(token.SEMI):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk().Code)
	exitJump := -1
	if !c.match(token.SEMI) {
		c.expression()
		c.consume(token.SEMI, "Expect ';' after loop condition.")
		exitJump = c.emitJump(bytecode.JUMP_IF_FALSE)
		c.emitOp(bytecode.POP)
	}

	if !c.check(token.RPAREN) {
		bodyJump := c.emitJump(bytecode.JUMP)
		incrementStart := len(c.chunk().Code)
		c.expression()
		c.emitOp(bytecode.POP)
		c.consume(token.RPAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	} else {
		c.consume(token.RPAREN, "Expect ')' after for clauses.")
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(bytecode.POP)
	}
	c.endScope()
}

func (c *Compiler) returnStatement() {
	if c.match(token.SEMI) {
		c.emitReturn()
		return
	}
	c.expression()
	c.consume(token.SEMI, "Expect ';' after return value.")
	c.emitOp(bytecode.RETURN)
}

// --- expressions ---------------------------------------------------------

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	prefix := getRule(c.previous.Kind).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := prec <= precAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.current.Kind).precedence {
		c.advance()
		infix := getRule(c.previous.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQ) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) grouping(bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func (c *Compiler) number(bool) {
	v, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error(fmt.Sprintf("Invalid number literal %q.", c.previous.Lexeme))
		return
	}
	c.emitConstant(value.Number(v))
}

func (c *Compiler) stringLiteral(bool) {
	lexeme := c.previous.Lexeme
	c.emitConstant(value.NewString(lexeme[1 : len(lexeme)-1]))
}

func (c *Compiler) literal(bool) {
	switch c.previous.Kind {
	case token.FALSE:
		c.emitOp(bytecode.FALSE)
	case token.TRUE:
		c.emitOp(bytecode.TRUE)
	case token.NIL:
		c.emitOp(bytecode.NIL)
	}
}

func (c *Compiler) unary(bool) {
	opKind := c.previous.Kind
	c.parsePrecedence(precUnary)
	switch opKind {
	case token.BANG:
		c.emitOp(bytecode.NOT)
	case token.MINUS:
		c.emitOp(bytecode.NEGATE)
	}
}

func (c *Compiler) binary(bool) {
	opKind := c.previous.Kind
	rule := getRule(opKind)
	c.parsePrecedence(rule.precedence + 1)

	switch opKind {
	case token.BANGEQ:
		c.emitOp(bytecode.EQUAL)
		c.emitOp(bytecode.NOT)
	case token.EQEQ:
		c.emitOp(bytecode.EQUAL)
	case token.GT:
		c.emitOp(bytecode.GREATER)
	case token.GTEQ:
		c.emitOp(bytecode.LESS)
		c.emitOp(bytecode.NOT)
	case token.LT:
		c.emitOp(bytecode.LESS)
	case token.LTEQ:
		c.emitOp(bytecode.GREATER)
		c.emitOp(bytecode.NOT)
	case token.PLUS:
		c.emitOp(bytecode.ADD)
	case token.MINUS:
		c.emitOp(bytecode.SUBTRACT)
	case token.STAR:
		c.emitOp(bytecode.MULTIPLY)
	case token.SLASH:
		c.emitOp(bytecode.DIVIDE)
	}
}

func (c *Compiler) and_(bool) {
	endJump := c.emitJump(bytecode.JUMP_IF_FALSE)
	c.emitOp(bytecode.POP)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or_(bool) {
	elseJump := c.emitJump(bytecode.JUMP_IF_FALSE)
	endJump := c.emitJump(bytecode.JUMP)
	c.patchJump(elseJump)
	c.emitOp(bytecode.POP)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) call(bool) {
	argCount := c.argumentList()
	c.emitOpByte(bytecode.CALL, argCount)
}

func (c *Compiler) argumentList() byte {
	var count int
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			count++
			if count > maxArgs {
				c.error("Can't have more than 255 arguments.")
			}
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after arguments.")
	return byte(count)
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous.Lexeme, canAssign)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	if slot, ok := c.resolveLocal(c.cs, name); ok {
		if canAssign && c.match(token.EQ) {
			c.expression()
			c.emitOpByte(bytecode.SET_LOCAL, byte(slot))
		} else {
			c.emitOpByte(bytecode.GET_LOCAL, byte(slot))
		}
		return
	}

	if c.resolvesToEnclosingLocal(name) {
		c.error(fmt.Sprintf("Undefined variable %q: functions cannot close over enclosing locals.", name))
		return
	}

	idx := c.identifierConstant(name)
	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitOpByte(bytecode.SET_GLOBAL, idx)
	} else {
		c.emitOpByte(bytecode.GET_GLOBAL, idx)
	}
}

// resolveLocal looks up name among st's own locals, innermost scope first.
// A local found with depth -1 is still being initialized: referencing it
// there is the "own initializer" error.
func (c *Compiler) resolveLocal(st *state, name string) (slot int, ok bool) {
	for i := len(st.locals) - 1; i >= 0; i-- {
		if st.locals[i].name != name {
			continue
		}
		if st.locals[i].depth == -1 {
			c.error(fmt.Sprintf("Can't read local variable %q in its own initializer.", name))
		}
		return i, true
	}
	return 0, false
}

// resolvesToEnclosingLocal reports whether name is a local of some function
// enclosing the one currently being compiled. This tier has no closures
// (spec.md §9): such a reference is a compile error rather than a captured
// upvalue.
func (c *Compiler) resolvesToEnclosingLocal(name string) bool {
	for st := c.cs.enclosing; st != nil; st = st.enclosing {
		for _, l := range st.locals {
			if l.name == name {
				return true
			}
		}
	}
	return false
}
