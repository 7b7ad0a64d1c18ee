package maincmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/rox-lang/rox/internal/maincmd"
)

func TestDisassembleFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.rox")
	require.NoError(t, os.WriteFile(path, []byte(`
fun add(a, b) { return a + b; }
print add(1, 2);
`), 0o600))

	var buf, ebuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}

	err := maincmd.DisassembleFiles(context.Background(), stdio, path)
	require.NoError(t, err)
	require.Empty(t, ebuf.String())

	out := buf.String()
	require.Contains(t, out, "<script>")
	require.Contains(t, out, "add")
	require.Contains(t, out, "OP_RETURN")
}

func TestDisassembleFilesReportsCompileError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.rox")
	require.NoError(t, os.WriteFile(path, []byte(`print ;`), 0o600))

	var buf, ebuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}

	err := maincmd.DisassembleFiles(context.Background(), stdio, path)
	require.Error(t, err)
	require.NotEmpty(t, ebuf.String())
}
