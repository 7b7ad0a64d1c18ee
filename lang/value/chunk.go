package value

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rox-lang/rox/lang/bytecode"
)

// MaxConstants is the largest number of constants a single Chunk may hold;
// constant indices are encoded as a single byte (spec.md §3/§6).
const MaxConstants = 256

// A Chunk is a compiled function body: its bytecode, the constants its
// instructions reference, and a parallel line table for diagnostics
// (spec.md §3).
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []Value
}

func NewChunk() *Chunk { return &Chunk{} }

// Write appends a single byte (an opcode tag or a raw operand byte) to the
// chunk, recording line as the source line that produced it.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends op with no operand.
func (c *Chunk) WriteOp(op bytecode.Opcode, line int) {
	c.Write(byte(op), line)
}

// WriteOpByte appends op followed by a one-byte operand.
func (c *Chunk) WriteOpByte(op bytecode.Opcode, operand byte, line int) {
	c.Write(byte(op), line)
	c.Write(operand, line)
}

// WriteJump appends op followed by a placeholder two-byte operand and
// returns the offset of the first operand byte, to be patched later by
// PatchJump.
func (c *Chunk) WriteJump(op bytecode.Opcode, line int) int {
	c.Write(byte(op), line)
	c.Write(0xff, line)
	c.Write(0xff, line)
	return len(c.Code) - 2
}

// WriteLoop appends a LOOP instruction jumping back to loopStart.
func (c *Chunk) WriteLoop(loopStart int, line int) error {
	c.Write(byte(bytecode.LOOP), line)
	offset := len(c.Code) - loopStart + 2
	if offset > 0xffff {
		return fmt.Errorf("loop body too large (%d bytes)", offset)
	}
	c.Write(byte(offset), line)
	c.Write(byte(offset>>8), line)
	return nil
}

// PatchJump rewrites the two-byte placeholder operand at offset (as returned
// by WriteJump) with the distance from just after the operand to the current
// end of the chunk.
func (c *Chunk) PatchJump(offset int) error {
	jump := len(c.Code) - offset - 2
	if jump > 0xffff {
		return fmt.Errorf("jump distance too large (%d bytes)", jump)
	}
	c.Code[offset] = byte(jump)
	c.Code[offset+1] = byte(jump >> 8)
	return nil
}

// AddConstant appends v to the constant pool and returns its index. It fails
// if the pool would grow past MaxConstants (spec.md §3).
func (c *Chunk) AddConstant(v Value) (int, error) {
	if len(c.Constants) >= MaxConstants {
		return 0, fmt.Errorf("too many constants in one chunk (max %d)", MaxConstants)
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1, nil
}

func readUint16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }

// Disassemble writes a stable textual form of the chunk's bytecode to w, one
// instruction per line, prefixed by name.
func (c *Chunk) Disassemble(w io.Writer, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = c.disassembleInstruction(w, offset)
	}
}

func (c *Chunk) disassembleInstruction(w io.Writer, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.Lines[offset])
	}

	op := bytecode.Opcode(c.Code[offset])
	switch op.Operand() {
	case bytecode.NoOperand:
		fmt.Fprintf(w, "%s\n", op)
		return offset + 1

	case bytecode.ByteOperand:
		idx := c.Code[offset+1]
		switch op {
		case bytecode.CONSTANT, bytecode.GET_GLOBAL, bytecode.SET_GLOBAL, bytecode.DEFINE_GLOBAL:
			fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, c.Constants[idx])
		default:
			// GET_LOCAL/SET_LOCAL print the opcode's own name: the original
			// source's disassembler swaps these two labels, which spec.md §9
			// calls out as a cosmetic bug to be fixed, not preserved.
			fmt.Fprintf(w, "%-16s %4d\n", op, idx)
		}
		return offset + 2

	case bytecode.JumpOperand:
		jump := readUint16(c.Code[offset+1:])
		sign := 1
		if op == bytecode.LOOP {
			sign = -1
		}
		fmt.Fprintf(w, "%-16s %4d -> %d\n", op, offset, offset+3+sign*int(jump))
		return offset + 3

	default:
		fmt.Fprintf(w, "unknown opcode %d\n", op)
		return offset + 1
	}
}
