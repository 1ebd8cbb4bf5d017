package checker_test

import (
	"testing"

	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/checker"
	"github.com/amberc/amberc/diag"
	"github.com/amberc/amberc/meta"
	"github.com/amberc/amberc/parser"
	"github.com/stretchr/testify/require"
)

// check compiles src through the parser and checker with no import
// resolver, returning the Metadata so tests can inspect function
// instances and diagnostics.
func check(t *testing.T, src string) *meta.Metadata {
	t.Helper()
	prog, err := parser.Parse("test.ab", src)
	require.NoError(t, err)
	m := meta.New("test.ab", diag.Flags{})
	c := checker.New(m, nil)
	require.NoError(t, c.CheckProgram(prog))
	return m
}

// parseOnly tokenizes and parses src without typechecking, for tests
// that need to assert a subsequent checkErr call fails.
func parseOnly(t *testing.T, src string) (*ast.Program, error) {
	t.Helper()
	return parser.Parse("test.ab", src)
}

// checkErr typechecks an already-parsed program and returns the error,
// if any, without asserting on it.
func checkErr(t *testing.T, prog *ast.Program) error {
	t.Helper()
	m := meta.New("test.ab", diag.Flags{})
	c := checker.New(m, nil)
	return c.CheckProgram(prog)
}

func TestMonomorphizationSameArgsOneInstance(t *testing.T) {
	src := `
fun identity(x) {
	return x
}
main {
	let a = identity(1)
	let b = identity(2)
}
`
	m := check(t, src)
	// both calls pass Int; exactly one variant should be registered.
	require.Len(t, m.Funcs.Instances(1), 1)
}

func TestMonomorphizationDifferentArgsTwoInstances(t *testing.T) {
	src := `
fun identity(x) {
	return x
}
main {
	let a = identity(1)
	let b = identity("two")
}
`
	m := check(t, src)
	require.Len(t, m.Funcs.Instances(1), 2)
}
