package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/rox-lang/rox/lang/compiler"
	"github.com/rox-lang/rox/lang/value"
)

func (c *Cmd) Disassemble(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return DisassembleFiles(ctx, stdio, args...)
}

// DisassembleFiles compiles each of files and prints the bytecode of the
// top-level script and every function nested in it to stdio.Stdout.
func DisassembleFiles(_ context.Context, stdio mainer.Stdio, files ...string) error {
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s\n", err)
			return err
		}

		fn, err := compiler.Compile(string(src))
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			return err
		}

		fmt.Fprintf(stdio.Stdout, "--- %s ---\n", path)
		disassembleFunction(stdio, fn)
	}
	return nil
}

func disassembleFunction(stdio mainer.Stdio, fn *value.ObjFunction) {
	name := fn.Name
	if name == "" {
		name = "<script>"
	}
	fn.Chunk.Disassemble(stdio.Stdout, name)

	for _, c := range fn.Chunk.Constants {
		if nested, ok := c.(*value.ObjFunction); ok {
			disassembleFunction(stdio, nested)
		}
	}
}
