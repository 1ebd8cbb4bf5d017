package parser_test

import (
	"testing"

	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/parser"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse("test.ab", src)
	require.NoError(t, err)
	return prog
}

func TestParseLetAndConst(t *testing.T) {
	prog := parse(t, `
let x = 1
const name = "amber"
let typed: Text | Int = 5
`)
	require.Len(t, prog.Statements, 3)

	v := prog.Statements[0].(*ast.VarInitStmt)
	require.Equal(t, "x", v.Name)
	require.False(t, v.Const)

	c := prog.Statements[1].(*ast.VarInitStmt)
	require.True(t, c.Const)

	d := prog.Statements[2].(*ast.VarInitStmt)
	require.NotNil(t, d.Declared)
	require.Equal(t, "Text | Int", d.Declared.String())
}

func TestParseRangeOperators(t *testing.T) {
	prog := parse(t, `
for i in 0..3 {
	echo(i)
}
for j in 1..=3 {
	echo(j)
}
`)
	excl := prog.Statements[0].(*ast.RangeLoopStmt)
	require.False(t, excl.Inclusive)
	incl := prog.Statements[1].(*ast.RangeLoopStmt)
	require.True(t, incl.Inclusive)
}

func TestParseIteratorLoopWithIndex(t *testing.T) {
	prog := parse(t, `
for item, idx in items {
	echo(item)
}
`)
	loop := prog.Statements[0].(*ast.IteratorLoopStmt)
	require.Equal(t, "item", loop.Var)
	require.Equal(t, "idx", loop.IndexVar)
}

// TestDestructSetVsArrayLiteral exercises the quiet-failure
// alternation: `[a, b] = rhs` parses as a destructuring assignment,
// while a bare `[1, 2]` statement rewinds into an array-literal
// expression statement.
func TestDestructSetVsArrayLiteral(t *testing.T) {
	prog := parse(t, `
[a, b] = pair
[1, 2]
`)
	_, isDestruct := prog.Statements[0].(*ast.DestructSetStmt)
	require.True(t, isDestruct)
	es, isExpr := prog.Statements[1].(*ast.ExprStmt)
	require.True(t, isExpr)
	_, isLit := es.Expression.(*ast.ArrayLit)
	require.True(t, isLit)
}

func TestParseElseIfNests(t *testing.T) {
	prog := parse(t, `
if a {
	echo("a")
} else if b {
	echo("b")
}
`)
	outer := prog.Statements[0].(*ast.IfStmt)
	require.True(t, outer.HasElse)
	require.Len(t, outer.ElseBody, 1)
	_, nested := outer.ElseBody[0].(*ast.IfStmt)
	require.True(t, nested)
}

func TestParseIfChain(t *testing.T) {
	prog := parse(t, `
if {
	a {
		echo("a")
	}
	b {
		echo("b")
	}
	else {
		echo("c")
	}
}
`)
	chain := prog.Statements[0].(*ast.IfChainStmt)
	require.Len(t, chain.Clauses, 2)
	require.True(t, chain.HasElse)
}

func TestParseFailureHandlers(t *testing.T) {
	prog := parse(t, `
rm("/tmp/x")?
mv("/a", "/b") failed {
	echo("nope")
}
trust cp("/a", "/b")
`)
	rm := prog.Statements[0].(*ast.BuiltinCallStmt)
	require.Equal(t, ast.HandlerPropagate, rm.Handler.Kind)

	mv := prog.Statements[1].(*ast.BuiltinCallStmt)
	require.Equal(t, ast.HandlerFailed, mv.Handler.Kind)
	require.Len(t, mv.Handler.Body, 1)

	cp := prog.Statements[2].(*ast.BuiltinCallStmt)
	require.True(t, cp.Modifiers.Trust)
}

func TestParseTextInterpolation(t *testing.T) {
	prog := parse(t, `
let s = "a {x} b"
`)
	v := prog.Statements[0].(*ast.VarInitStmt)
	lit := v.Value.(*ast.TextLit)
	require.Len(t, lit.Chunks, 3)
	require.Equal(t, "a ", lit.Chunks[0].Literal)
	require.NotNil(t, lit.Chunks[1].Interp)
	require.Equal(t, " b", lit.Chunks[2].Literal)
}

func TestParseImportForms(t *testing.T) {
	prog := parse(t, `
import "std/math" as *
pub import "helpers" as { min as smallest, max }
`)
	star := prog.Statements[0].(*ast.ImportStmt)
	require.True(t, star.Star)
	require.Equal(t, "std/math", star.Path)

	sel := prog.Statements[1].(*ast.ImportStmt)
	require.True(t, sel.Public)
	require.Len(t, sel.Items, 2)
	require.Equal(t, "smallest", sel.Items[0].Alias)
}

func TestParseTernary(t *testing.T) {
	prog := parse(t, `
let m = a > b then a else b
`)
	v := prog.Statements[0].(*ast.VarInitStmt)
	tern := v.Value.(*ast.TernaryExpr)
	_, condIsCompare := tern.Condition.(*ast.CompareExpr)
	require.True(t, condIsCompare)
	require.NotNil(t, tern.ThenExpr)
	require.NotNil(t, tern.ElseExpr)
}

func TestNestedArrayTypeRejected(t *testing.T) {
	_, err := parser.Parse("test.ab", `
let x: [[Int]] = []
`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "nested")
}
