package vm

import (
	"fmt"
	"io"
	"sort"

	"golang.org/x/exp/maps"

	"github.com/rox-lang/rox/lang/value"
)

// DumpGlobals writes every currently defined global's name and value to w,
// one per line, sorted by name. The swiss.Map backing the global table does
// not iterate in a stable order, so this takes a snapshot into a plain map
// and sorts its keys before printing (used by the run command's
// -debug-globals flag).
func (vm *VM) DumpGlobals(w io.Writer) {
	snapshot := make(map[string]value.Value, len(vm.globalOrder))
	for _, name := range vm.globalOrder {
		if v, ok := vm.globals.Get(name); ok {
			snapshot[name] = v
		}
	}

	names := maps.Keys(snapshot)
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s = %s\n", name, snapshot[name])
	}
}
