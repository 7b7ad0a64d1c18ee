// Package bytecode defines the canonical instruction set executed by the
// virtual machine. It carries no dependency on the value or chunk
// representations so that both the compiler and the runtime can depend on it
// without cycles.
package bytecode

import "fmt"

// An Opcode identifies one virtual-machine instruction. Operand widths are
// fixed per opcode (see OperandWidth) rather than variable-length, matching
// spec.md §4.2/§6: a constant/local/name/argc operand is one byte, a jump
// offset is two bytes.
type Opcode uint8

//nolint:revive
const (
	CONSTANT Opcode = iota // idx:u8    push constants[idx]
	NIL                    //           push Nil
	TRUE                   //           push true
	FALSE                  //           push false
	POP                    //           discard top

	GET_LOCAL  // slot:u8  push locals[slot]
	SET_LOCAL  // slot:u8  overwrite locals[slot] with top (peek, no pop)
	GET_GLOBAL // nameIdx:u8  push globals[constants[nameIdx]]
	SET_GLOBAL // nameIdx:u8  globals[constants[nameIdx]] = peek
	DEFINE_GLOBAL

	EQUAL
	GREATER
	LESS

	ADD
	SUBTRACT
	MULTIPLY
	DIVIDE

	NOT
	NEGATE

	PRINT

	JUMP          // offset:u16  ip += offset
	JUMP_IF_FALSE // offset:u16  if !truthy(peek) { ip += offset }
	LOOP          // offset:u16  ip -= offset

	CALL // argc:u8

	RETURN

	numOpcodes
)

// OperandKind describes how many operand bytes follow an opcode in encoded
// form, and how to interpret them.
type OperandKind int

const (
	NoOperand      OperandKind = iota // opcode alone
	ByteOperand                       // one u8 operand
	JumpOperand                       // one u16 operand (little-endian)
)

var operandKinds = [numOpcodes]OperandKind{
	CONSTANT:      ByteOperand,
	GET_LOCAL:     ByteOperand,
	SET_LOCAL:     ByteOperand,
	GET_GLOBAL:    ByteOperand,
	SET_GLOBAL:    ByteOperand,
	DEFINE_GLOBAL: ByteOperand,
	JUMP:          JumpOperand,
	JUMP_IF_FALSE: JumpOperand,
	LOOP:          JumpOperand,
	CALL:          ByteOperand,
}

// Operand reports how the opcode's operand (if any) is encoded.
func (op Opcode) Operand() OperandKind {
	if op >= numOpcodes {
		return NoOperand
	}
	return operandKinds[op]
}

// Size returns the total number of bytes the opcode occupies once encoded,
// including its operand.
func (op Opcode) Size() int {
	switch op.Operand() {
	case ByteOperand:
		return 2
	case JumpOperand:
		return 3
	default:
		return 1
	}
}

var opcodeNames = [numOpcodes]string{
	CONSTANT:      "OP_CONSTANT",
	NIL:           "OP_NIL",
	TRUE:          "OP_TRUE",
	FALSE:         "OP_FALSE",
	POP:           "OP_POP",
	GET_LOCAL:     "OP_GET_LOCAL",
	SET_LOCAL:     "OP_SET_LOCAL",
	GET_GLOBAL:    "OP_GET_GLOBAL",
	SET_GLOBAL:    "OP_SET_GLOBAL",
	DEFINE_GLOBAL: "OP_DEFINE_GLOBAL",
	EQUAL:         "OP_EQUAL",
	GREATER:       "OP_GREATER",
	LESS:          "OP_LESS",
	ADD:           "OP_ADD",
	SUBTRACT:      "OP_SUBTRACT",
	MULTIPLY:      "OP_MULTIPLY",
	DIVIDE:        "OP_DIVIDE",
	NOT:           "OP_NOT",
	NEGATE:        "OP_NEGATE",
	PRINT:         "OP_PRINT",
	JUMP:          "OP_JUMP",
	JUMP_IF_FALSE: "OP_JUMP_IF_FALSE",
	LOOP:          "OP_LOOP",
	CALL:          "OP_CALL",
	RETURN:        "OP_RETURN",
}

func (op Opcode) String() string {
	if op < numOpcodes {
		return opcodeNames[op]
	}
	return fmt.Sprintf("illegal opcode (%d)", uint8(op))
}
