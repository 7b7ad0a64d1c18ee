package value

import "fmt"

// ObjString is an immutable, shared string object. Equality is defined on
// byte content (see Equal), not identity, even though string objects are
// themselves heap-allocated and reclaimed by the Go runtime's tracing
// garbage collector; no reference counts are kept.
type ObjString struct {
	Value string
}

func NewString(s string) *ObjString { return &ObjString{Value: s} }

func (s *ObjString) String() string { return s.Value }
func (*ObjString) Type() string     { return "string" }

// ObjFunction is a compiled function: its arity, name, and the Chunk holding
// its body's bytecode. Per spec.md §9, closures are not supported at this
// tier: a Function never captures locals from an enclosing function.
type ObjFunction struct {
	Arity int
	Name  string
	Chunk *Chunk
}

func NewFunction(name string, arity int) *ObjFunction {
	return &ObjFunction{Name: name, Arity: arity, Chunk: NewChunk()}
}

func (f *ObjFunction) String() string {
	if f.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}
func (*ObjFunction) Type() string { return "function" }

// NativeFn is the Go function signature backing a Native callable: given the
// arguments (already arity-checked by the VM), it returns a result or a
// runtime error.
type NativeFn func(args []Value) (Value, error)

// Native is a host-provided callable exposed to rox programs as a first-class
// value, per spec.md §4.6.
type Native struct {
	Name  string
	Arity int
	Fn    NativeFn
}

func (n *Native) String() string { return fmt.Sprintf("<native fn %s>", n.Name) }
func (*Native) Type() string     { return "native function" }

var (
	_ Value = (*ObjString)(nil)
	_ Value = (*ObjFunction)(nil)
	_ Value = (*Native)(nil)
)
