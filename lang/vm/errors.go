package vm

import (
	"fmt"
	"strings"
)

// traceEntry names one frame on the call stack at the moment a RuntimeError
// was raised, innermost first.
type traceEntry struct {
	function string
	line     int
}

func (t traceEntry) String() string {
	if t.function == "" {
		return fmt.Sprintf("[line %d] in script", t.line)
	}
	return fmt.Sprintf("[line %d] in %s()", t.line, t.function)
}

// RuntimeError is a single failure raised while running compiled bytecode:
// a message plus the call stack at the point of failure, innermost frame
// first (spec.md §4.5/§7). Unlike compile errors, execution stops at the
// first RuntimeError.
type RuntimeError struct {
	Message string
	Trace   []traceEntry
}

func (e *RuntimeError) Error() string {
	if len(e.Trace) == 0 {
		return e.Message
	}
	lines := make([]string, len(e.Trace))
	for i, t := range e.Trace {
		lines[i] = t.String()
	}
	return fmt.Sprintf("%s\n%s", e.Message, strings.Join(lines, "\n"))
}

func (vm *VM) runtimeErrorf(format string, args ...any) *RuntimeError {
	err := &RuntimeError{Message: fmt.Sprintf(format, args...)}
	for i := len(vm.frames) - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		err.Trace = append(err.Trace, traceEntry{function: fr.function.Name, line: fr.line()})
	}
	return err
}
