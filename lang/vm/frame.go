package vm

import "github.com/rox-lang/rox/lang/value"

// A callFrame records one active function call: the function whose bytecode
// is executing, the instruction pointer into its chunk, and the base index
// into the VM's value stack below which this call's locals and temporaries
// never reach (spec.md §4.5).
type callFrame struct {
	function  *value.ObjFunction
	ip        int
	stackBase int
}

func (f *callFrame) readByte() byte {
	b := f.function.Chunk.Code[f.ip]
	f.ip++
	return b
}

func (f *callFrame) readUint16() uint16 {
	hi := f.function.Chunk.Code[f.ip+1]
	lo := f.function.Chunk.Code[f.ip]
	f.ip += 2
	return uint16(hi)<<8 | uint16(lo)
}

func (f *callFrame) line() int {
	if f.ip == 0 {
		return f.function.Chunk.Lines[0]
	}
	return f.function.Chunk.Lines[f.ip-1]
}
