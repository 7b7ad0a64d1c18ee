package compiler

import (
	"fmt"
	"strings"
)

// A CompileError is a single diagnostic produced while compiling a source
// program: its message and the source line it was reported at (spec.md §7).
type CompileError struct {
	Line    int
	Message string
}

func (e CompileError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ErrorList accumulates the CompileErrors produced by a single Compile call.
// Compilation does not stop at the first error: the compiler enters panic
// mode, synchronizes to the next statement boundary, and keeps going, so
// that a single call can report several independent mistakes (spec.md §4.4).
//
// This plays the same role as the teacher's re-exported go/scanner.ErrorList
// (lang/scanner/scanner.go's `type ErrorList = scanner.ErrorList`), adapted
// to this tier's simpler line-only positions.
type ErrorList []CompileError

func (el *ErrorList) add(line int, message string) {
	*el = append(*el, CompileError{Line: line, Message: message})
}

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	}
	lines := make([]string, len(el))
	for i, e := range el {
		lines[i] = e.Error()
	}
	return fmt.Sprintf("%d compile errors:\n%s", len(el), strings.Join(lines, "\n"))
}

// Err returns el as an error, or nil if el is empty.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}
