package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/rox-lang/rox/lang/vm"
)

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return RunFiles(ctx, stdio, c.DebugGlobals, args...)
}

// RunFiles compiles and executes each of files in turn on a fresh VM,
// stopping at the first compile or runtime error. If dumpGlobals is set, the
// final value of every global is printed to stdio.Stdout after each file
// finishes running.
func RunFiles(_ context.Context, stdio mainer.Stdio, dumpGlobals bool, files ...string) error {
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s\n", err)
			return err
		}

		machine := vm.New()
		machine.Stdout = stdio.Stdout
		if _, err := machine.Interpret(string(src)); err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			return err
		}

		if dumpGlobals {
			machine.DumpGlobals(stdio.Stdout)
		}
	}
	return nil
}
