// Package value defines the runtime value representation shared by the
// compiler (constant pool entries) and the virtual machine (stack slots,
// globals, call arguments and results).
package value

import (
	"fmt"
	"strconv"
)

// A Value is any value the virtual machine can push on its operand stack:
// Nil, a Boolean, a Number, or an Object reference.
//
// The set of implementations is closed and enumerated here; unlike the
// teacher's Starlark-derived Value, this tier has no user-extensible
// attribute/iteration/metamap protocol (spec.md's data model does not call
// for one).
type Value interface {
	// String returns the value's source-level textual representation, as
	// printed by the print statement.
	String() string

	// Type returns a short, stable name for the value's type, used in runtime
	// error messages.
	Type() string
}

// Nil is the value of the nil literal. There is exactly one Nil value.
type Nil struct{}

func (Nil) String() string { return "nil" }
func (Nil) Type() string   { return "nil" }

// Boolean is true or false.
type Boolean bool

func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (Boolean) Type() string { return "boolean" }

// Number is an IEEE-754 double, the only numeric type in the language.
type Number float64

func (n Number) String() string { return strconv.FormatFloat(float64(n), 'g', -1, 64) }
func (Number) Type() string     { return "number" }

var (
	_ Value = Nil{}
	_ Value = Boolean(false)
	_ Value = Number(0)
)

// Truthy reports whether v is truthy: everything except Nil and Boolean(false)
// is truthy.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case Nil:
		return false
	case Boolean:
		return bool(v)
	default:
		return true
	}
}

// Equal reports whether a and b are equal under the language's equality
// rules: values of different dynamic type are never equal; Numbers compare
// by IEEE-754 ==; Strings compare by byte content; Functions and Natives
// compare by identity.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Boolean:
		bb, ok := b.(Boolean)
		return ok && a == bb
	case Number:
		bb, ok := b.(Number)
		return ok && a == bb
	case *ObjString:
		bb, ok := b.(*ObjString)
		return ok && a.Value == bb.Value
	case *ObjFunction:
		bb, ok := b.(*ObjFunction)
		return ok && a == bb
	case *Native:
		bb, ok := b.(*Native)
		return ok && a == bb
	default:
		panic(fmt.Sprintf("value: unexhausted Equal switch on %T", a))
	}
}
