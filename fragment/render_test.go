package fragment

import (
	"testing"

	"github.com/amberc/amberc/types"
	"github.com/stretchr/testify/require"
)

func TestVarExprRenders(t *testing.T) {
	scalar := &VarExpr{Name: "x", GlobalID: 3, Type: types.Int(), Render: ReadQuoted}
	require.Equal(t, `"$x__3"`, RenderInline(scalar))

	scalar.Render = ReadUnquoted
	require.Equal(t, `$x__3`, RenderInline(scalar))

	scalar.Render = NameOf
	require.Equal(t, `x__3`, RenderInline(scalar))

	arr := &VarExpr{Name: "items", GlobalID: 1, Type: types.Array(types.Text()), Render: ReadQuoted}
	require.Equal(t, `"${items__1[@]}"`, RenderInline(arr))

	arr.Render = ArrayToString
	require.Equal(t, `"${items__1[*]}"`, RenderInline(arr))
}

func TestVarExprIndexAndSlice(t *testing.T) {
	indexed := &VarExpr{Name: "items", GlobalID: 1, Type: types.Array(types.Text()), Render: ReadQuoted,
		Index: &Raw{Text: "2"}}
	require.Equal(t, `"${items__1[2]}"`, RenderInline(indexed))

	sliced := &VarExpr{Name: "items", GlobalID: 1, Type: types.Array(types.Text()), Render: ReadQuoted,
		Slice: &SliceRange{From: &Raw{Text: "1"}, To: &Raw{Text: "3"}}}
	require.Equal(t, `"${items__1[@]:1:3 - 1}"`, RenderInline(sliced))

	sliced.Slice.Inclusive = true
	require.Equal(t, `"${items__1[@]:1:3 - 1 + 1}"`, RenderInline(sliced))
}

func TestVarExprDefault(t *testing.T) {
	withDefault := &VarExpr{Name: "x", GlobalID: 2, Type: types.Text(), Render: ReadQuoted,
		Default: &Raw{Text: "fallback"}}
	require.Equal(t, `"${x__2:-fallback}"`, RenderInline(withDefault))
}

func TestVarStmtForms(t *testing.T) {
	plain := &VarStmt{Name: "x", GlobalID: 4, Value: &Raw{Text: "1"}}
	require.Equal(t, "x__4=1", RenderInline(plain))

	local := &VarStmt{Name: "x", GlobalID: 4, Local: true, Value: &Raw{Text: "1"}}
	require.Equal(t, "local x__4=1", RenderInline(local))

	ref := &VarStmt{Name: "x", GlobalID: 4, Ref: true, Value: &Raw{Text: "other"}}
	require.Equal(t, "declare -n x__4=other", RenderInline(ref))

	arr := &VarStmt{Name: "xs", GlobalID: 5, IsArray: true, Value: &List{
		Items: []Fragment{&Raw{Text: "1"}, &Raw{Text: "2"}}, Sep: " "}}
	require.Equal(t, "xs__5=(1 2)", RenderInline(arr))
}

// TestLogHeuristic pins the printf-vs-echo dispatch, including the
// leading-dash rule: echo would swallow such values as flags, so they
// route to printf even when the caller meant a literal `--`.
func TestLogHeuristic(t *testing.T) {
	textVar := &Log{Value: &VarExpr{Name: "s", GlobalID: 1, Type: types.Text(), Render: ReadQuoted}}
	require.Contains(t, Render(textVar), "printf '%s\\n'")

	intVar := &Log{Value: &VarExpr{Name: "n", GlobalID: 2, Type: types.Int(), Render: ReadQuoted}}
	require.Contains(t, Render(intVar), "echo ")

	dashLit := &Log{Value: &Raw{Text: "--version", Quoted: true}}
	require.Contains(t, Render(dashLit), "printf '%s\\n'")

	plainLit := &Log{Value: &Raw{Text: "hello", Quoted: true}}
	require.Contains(t, Render(plainLit), "echo ")

	interp := &Log{Value: &Interpolable{Strings: []string{"", ""}, Interps: []Fragment{&Raw{Text: "$x"}},
		Render: RenderStringLiteral}}
	require.Contains(t, Render(interp), "printf '%s\\n'")
}

func TestInterpolableEscapes(t *testing.T) {
	i := &Interpolable{
		Strings: []string{`say "hi" \now`},
		Render:  RenderStringLiteral,
	}
	require.Equal(t, `"say \"hi\" \\now"`, RenderInline(i))
}

// TestInterpolableSplicesInsideQuotes pins the splice rule: an
// interpolated read stays inside the enclosing double quotes as a
// braced expansion, so values containing whitespace do not word-split
// and adjacent literal text cannot extend the variable name.
func TestInterpolableSplicesInsideQuotes(t *testing.T) {
	i := &Interpolable{
		Strings: []string{"a ", "b"},
		Interps: []Fragment{&VarExpr{Name: "x", GlobalID: 1, Type: types.Text(), Render: ReadQuoted}},
		Render:  RenderStringLiteral,
	}
	require.Equal(t, `"a ${x__1}b"`, RenderInline(i))

	arr := &Interpolable{
		Strings: []string{"", ""},
		Interps: []Fragment{&VarExpr{Name: "xs", GlobalID: 2, Type: types.Array(types.Text()), Render: ArrayToString}},
		Render:  RenderStringLiteral,
	}
	require.Equal(t, `"${xs__2[*]}"`, RenderInline(arr))
}

func TestQuotedLiteralEscapesExpansionTriggers(t *testing.T) {
	r := &Raw{Text: "cost: $5 `w`", Quoted: true}
	require.Equal(t, "\"cost: \\$5 \\`w\\`\"", RenderInline(r))
}

func TestArithmeticAndSubprocess(t *testing.T) {
	a := &Arithmetic{Left: &Raw{Text: "1"}, Op: OpAdd, Right: &Raw{Text: "2"}}
	require.Equal(t, "$(( 1 + 2 ))", RenderInline(a))

	s := &Subprocess{Body: &Raw{Text: "pwd"}, Quoted: true}
	require.Equal(t, `"$(pwd)"`, RenderInline(s))
}

func TestBlockIndentation(t *testing.T) {
	b := &Block{Stmts: []Fragment{
		&Raw{Text: "if :; then"},
		&Block{Indent: true, Stmts: []Fragment{&Raw{Text: "echo hi"}}},
		&Raw{Text: "fi"},
	}}
	require.Equal(t, "if :; then\n\techo hi\nfi\n", Render(b))
}

func TestEmptyRendersNothing(t *testing.T) {
	b := &Block{Stmts: []Fragment{&Empty{}, &Raw{Text: "echo hi"}, &Empty{}}}
	require.Equal(t, "echo hi\n", Render(b))
}
