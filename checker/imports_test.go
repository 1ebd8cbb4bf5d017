package checker_test

import (
	"fmt"
	"testing"

	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/checker"
	"github.com/amberc/amberc/diag"
	"github.com/amberc/amberc/meta"
	"github.com/amberc/amberc/parser"
	"github.com/stretchr/testify/require"
)

// stubResolver serves imported files from an in-memory map, the way
// checker.Resolver was designed to be stubbed.
type stubResolver struct {
	files map[string]string
}

func (r *stubResolver) Resolve(path string) (*ast.Program, error) {
	src, ok := r.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return parser.Parse(path, src)
}

func checkWithImports(t *testing.T, src string, files map[string]string) (*meta.Metadata, error) {
	t.Helper()
	prog, err := parser.Parse("test.ab", src)
	require.NoError(t, err)
	m := meta.New("test.ab", diag.Flags{})
	c := checker.New(m, &stubResolver{files: files})
	return m, c.CheckProgram(prog)
}

func TestImportSelectedFunction(t *testing.T) {
	files := map[string]string{
		"lib": `
pub fun double(n: Int): Int {
	return n + n
}
`,
	}
	_, err := checkWithImports(t, `
import "lib" as { double }
main {
	echo(double(2))
}
`, files)
	require.NoError(t, err)
}

func TestImportRename(t *testing.T) {
	files := map[string]string{
		"lib": `
pub fun double(n: Int): Int {
	return n + n
}
`,
	}
	_, err := checkWithImports(t, `
import "lib" as { double as twice }
main {
	echo(twice(2))
}
`, files)
	require.NoError(t, err)
}

func TestImportMissingNameRejected(t *testing.T) {
	files := map[string]string{
		"lib": `
pub fun double(n: Int): Int {
	return n + n
}
`,
	}
	_, err := checkWithImports(t, `
import "lib" as { triple }
`, files)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not exported")
}

func TestImportNonPubNotExported(t *testing.T) {
	files := map[string]string{
		"lib": `
fun hidden(n: Int): Int {
	return n
}
pub fun visible(n: Int): Int {
	return n
}
`,
	}
	_, err := checkWithImports(t, `
import "lib" as { hidden }
`, files)
	require.Error(t, err)
}

func TestCircularImportRejected(t *testing.T) {
	files := map[string]string{
		"a": `import "b" as *`,
		"b": `import "a" as *`,
	}
	_, err := checkWithImports(t, `
import "a" as *
`, files)
	require.Error(t, err)
	require.Contains(t, err.Error(), "circular")
}

func TestImportOnlyAtGlobalScope(t *testing.T) {
	files := map[string]string{"lib": `pub fun f() { return 1 }`}
	_, err := checkWithImports(t, `
main {
	import "lib" as *
}
`, files)
	require.Error(t, err)
	require.Contains(t, err.Error(), "global scope")
}

// TestPubImportStarReExports: a
// middle file that `pub import *`s a base file re-exports the base
// file's pub symbols to anyone importing the middle file.
func TestPubImportStarReExports(t *testing.T) {
	files := map[string]string{
		"base": `
pub fun base_fn(n: Int): Int {
	return n
}
`,
		"middle": `pub import "base" as *`,
	}
	_, err := checkWithImports(t, `
import "middle" as { base_fn }
main {
	echo(base_fn(1))
}
`, files)
	require.NoError(t, err)
}
