package translate

import (
	"fmt"

	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/fragment"
	"github.com/amberc/amberc/types"
)

// translateExpr is the total expression dispatch.
// Any deferred setup an expression needs (ephemeral flag variables,
// subshell status captures) is pushed onto the translator's queue and
// drained at the enclosing statement boundary.
func (t *Translator) translateExpr(e ast.Expr) fragment.Fragment {
	switch v := e.(type) {
	case *ast.BoolLit:
		if v.Value {
			return &fragment.Raw{Text: "1"}
		}
		return &fragment.Raw{Text: "0"}
	case *ast.IntLit:
		return &fragment.Raw{Text: v.Value}
	case *ast.NumLit:
		return &fragment.Raw{Text: v.Value}
	case *ast.TextLit:
		return t.translateTextLit(v, fragment.RenderStringLiteral)
	case *ast.NullLit:
		return &fragment.Raw{Text: "", Quoted: true}
	case *ast.StatusLit:
		return &fragment.VarExpr{Name: "__status", Render: fragment.ReadUnquoted, Type: types.Int()}
	case *ast.ArrayLit:
		return t.translateArrayLit(v)
	case *ast.VarGetExpr:
		return &fragment.VarExpr{
			Name: v.Name, GlobalID: v.GlobalID, Type: v.ExprType(),
			Render: arrayAwareRender(v.ExprType()),
		}
	case *ast.ParenExpr:
		return t.translateExpr(v.Inner)
	case *ast.ArithBinExpr:
		return t.translateArithBin(v)
	case *ast.LogicBinExpr:
		return t.translateLogicBin(v)
	case *ast.NotExpr:
		return &fragment.Arithmetic{Left: t.translateBool(v.Operand), Op: fragment.OpEq, Right: &fragment.Raw{Text: "0"}}
	case *ast.NegExpr:
		return &fragment.Arithmetic{Left: &fragment.Raw{Text: "0"}, Op: fragment.OpSub, Right: t.translateExpr(v.Operand)}
	case *ast.CompareExpr:
		return t.translateCompare(v)
	case *ast.CastExpr:
		return t.translateCast(v)
	case *ast.IsTestExpr:
		return t.translateIsTest(v)
	case *ast.TernaryExpr:
		return t.translateTernary(v)
	case *ast.FuncInvokeExpr:
		return t.translateFuncInvoke(v)
	case *ast.CommandInvokeExpr:
		return t.translateCommandInvokeExpr(v)
	case *ast.LengthExpr:
		return t.translateLength(v)
	case *ast.NameOfExpr:
		return t.translateNameOf(v)
	case *ast.AccessExpr:
		return t.translateAccess(v)
	case *ast.BuiltinCallExpr:
		return t.translateBuiltinCallExpr(v)
	default:
		panic("translate: unhandled expression variant")
	}
}

// arrayAwareRender picks ReadQuoted for scalars; array-typed reads
// default to ReadQuoted too ("${name[@]}") since that's the safe
// default for splicing into a command/array-assignment context —
// expr.go's few array-to-string-needed call sites use ArrayToString
// explicitly.
func arrayAwareRender(types.Type) fragment.VarExprRender { return fragment.ReadQuoted }

func (t *Translator) translateTextLit(v *ast.TextLit, render fragment.InterpolableRender) fragment.Fragment {
	if len(v.Chunks) == 1 && v.Chunks[0].Interp == nil {
		return &fragment.Raw{Text: v.Chunks[0].Literal, Quoted: true}
	}
	strs := make([]string, 0, len(v.Chunks)+1)
	interps := make([]fragment.Fragment, 0, len(v.Chunks))
	strs = append(strs, "")
	for _, c := range v.Chunks {
		if c.Interp == nil {
			strs[len(strs)-1] += c.Literal
			continue
		}
		interps = append(interps, t.translateInterpOperand(c.Interp))
		strs = append(strs, "")
	}
	return &fragment.Interpolable{Strings: strs, Interps: interps, Render: render}
}

// translateInterpOperand renders an interpolated operand for splicing
// into a quoted string: array-typed operands render space-joined
// rather than NUL-joined to stay a safe, printable splice.
func (t *Translator) translateInterpOperand(e ast.Expr) fragment.Fragment {
	if e.ExprType().Kind == types.KindArray {
		if vg, ok := e.(*ast.VarGetExpr); ok {
			return &fragment.VarExpr{Name: vg.Name, GlobalID: vg.GlobalID, Type: vg.ExprType(), Render: fragment.ArrayToString}
		}
	}
	return t.translateExpr(e)
}

func (t *Translator) translateArrayLit(v *ast.ArrayLit) fragment.Fragment {
	items := make([]fragment.Fragment, len(v.Elements))
	for i, el := range v.Elements {
		items[i] = t.translateExpr(el)
	}
	return &fragment.List{Items: items, Sep: " "}
}

// translateBool translates e as a condition usable inside `$(( ))`:
// Bool-typed expressions translate directly; the checker already
// guarantees e is Bool here (if/while/ternary conditions, `not`
// operands).
func (t *Translator) translateBool(e ast.Expr) fragment.Fragment { return t.translateExpr(e) }

func (t *Translator) translateArithBin(v *ast.ArithBinExpr) fragment.Fragment {
	if v.Op == ast.ArithRange {
		// Range literals normally appear only as a loop source, where
		// translateRangeLoop reads From/To directly; a stray range
		// reaching translate renders seq-style.
		return &fragment.Subprocess{Body: &fragment.List{Sep: " ", Items: []fragment.Fragment{
			&fragment.Raw{Text: "seq"}, t.translateExpr(v.Left), t.translateExpr(v.Right),
		}}}
	}
	op := map[ast.ArithOp]fragment.ArithOp{
		ast.ArithAdd: fragment.OpAdd, ast.ArithSub: fragment.OpSub,
		ast.ArithMul: fragment.OpMul, ast.ArithDiv: fragment.OpDiv, ast.ArithMod: fragment.OpMod,
	}[v.Op]
	return &fragment.Arithmetic{Left: t.translateExpr(v.Left), Right: t.translateExpr(v.Right), Op: op}
}

func (t *Translator) translateLogicBin(v *ast.LogicBinExpr) fragment.Fragment {
	op := fragment.OpAnd
	if v.Op == ast.LogicOr {
		op = fragment.OpOr
	}
	return &fragment.Arithmetic{Left: t.translateBool(v.Left), Right: t.translateBool(v.Right), Op: op}
}

// translateCompare dispatches per operand type: Int/Num/Bool compile
// straight to bash arithmetic; Text and Array need a test-based
// comparison since bash arithmetic only understands numbers.
func (t *Translator) translateCompare(v *ast.CompareExpr) fragment.Fragment {
	left, right := v.Left, v.Right
	kind := left.ExprType().Kind
	if kind == types.KindUnion {
		kind = right.ExprType().Kind
	}
	switch kind {
	case types.KindText:
		return t.translateTextCompare(v)
	case types.KindArray:
		return t.translateArrayCompare(v)
	default:
		op := map[ast.CompareOp]fragment.ArithOp{
			ast.CmpEq: fragment.OpEq, ast.CmpNeq: fragment.OpNeq,
			ast.CmpLt: fragment.OpLt, ast.CmpLe: fragment.OpLe,
			ast.CmpGt: fragment.OpGt, ast.CmpGe: fragment.OpGe,
		}[v.Op]
		return &fragment.Arithmetic{Left: t.translateExpr(left), Right: t.translateExpr(right), Op: op}
	}
}

// textCmpTest renders the `[[ ... ]]` lexical test for op. Bash's
// `[[ ]]` only has native `<`/`>` string ordering (no `<=`/`>=`), so Le
// and Ge compose the strict test with an equality check.
func textCmpTest(op ast.CompareOp, left, right string) string {
	switch op {
	case ast.CmpEq:
		return fmt.Sprintf("[[ %s == %s ]]", left, right)
	case ast.CmpNeq:
		return fmt.Sprintf("[[ %s != %s ]]", left, right)
	case ast.CmpLt:
		return fmt.Sprintf("[[ %s < %s ]]", left, right)
	case ast.CmpGt:
		return fmt.Sprintf("[[ %s > %s ]]", left, right)
	case ast.CmpLe:
		return fmt.Sprintf("[[ %s < %s || %s == %s ]]", left, right, left, right)
	default: // ast.CmpGe
		return fmt.Sprintf("[[ %s > %s || %s == %s ]]", left, right, left, right)
	}
}

// translateTextCompare lowers a Text comparison to a `[[ ... ]]` test
// captured through a subprocess that echoes 0/1, so the result can
// still be spliced into an arithmetic context like any other boolean.
func (t *Translator) translateTextCompare(v *ast.CompareExpr) fragment.Fragment {
	left := fragment.RenderInline(t.translateExpr(v.Left))
	right := fragment.RenderInline(t.translateExpr(v.Right))
	return &fragment.Subprocess{Body: &fragment.Raw{
		Text: textCmpTest(v.Op, left, right) + " && echo 1 || echo 0",
	}}
}

// translateArrayCompare lowers Array equality/inequality (the only
// array comparisons the checker admits, per checkCompare's ordering-
// ops-require-Num/Int gate) to a `diff` over each array rendered one
// element per line, captured the same way as translateTextCompare.
func (t *Translator) translateArrayCompare(v *ast.CompareExpr) fragment.Fragment {
	left := t.freshPinned("__arrcmp_a", v.Left.ExprType(), t.translateExpr(v.Left))
	right := t.freshPinned("__arrcmp_b", v.Right.ExprType(), t.translateExpr(v.Right))
	diff := fmt.Sprintf("diff <(printf '%%s\\n' %s) <(printf '%%s\\n' %s) >/dev/null",
		fragment.RenderInline(&fragment.VarExpr{Name: left.Name, GlobalID: left.GlobalID, Type: v.Left.ExprType(), Render: fragment.ReadQuoted}),
		fragment.RenderInline(&fragment.VarExpr{Name: right.Name, GlobalID: right.GlobalID, Type: v.Right.ExprType(), Render: fragment.ReadQuoted}))
	onMatch, onDiffer := "echo 1", "echo 0"
	if v.Op == ast.CmpNeq {
		onMatch, onDiffer = "echo 0", "echo 1"
	}
	return &fragment.Subprocess{Body: &fragment.Raw{Text: diff + " && " + onMatch + " || " + onDiffer}}
}

func (t *Translator) translateCast(v *ast.CastExpr) fragment.Fragment {
	// Bash is untyped at runtime: a cast only affects how later code
	// reads the value, never the stored text. The checker has already
	// validated the cast is legal, so
	// translate renders the operand unchanged.
	return t.translateExpr(v.Operand)
}

// translateIsTest lowers `expr is Type` to a runtime discriminator.
// Only union-typed operands reach here at runtime (a test against a
// concrete declared type is decided statically and never emits one),
// so this always compiles a regex-based type sniff against the
// operand's text form.
func (t *Translator) translateIsTest(v *ast.IsTestExpr) fragment.Fragment {
	val := &fragment.Raw{Text: fragment.RenderInline(t.translateExpr(v.Operand))}
	var pattern string
	switch v.Target.Kind {
	case types.KindInt:
		pattern = `^-?[0-9]+$`
	case types.KindNum:
		pattern = `^-?[0-9]+(\.[0-9]+)?$`
	case types.KindBool:
		pattern = `^[01]$`
	case types.KindText:
		pattern = `.*`
	default:
		pattern = `.*`
	}
	// the pattern must stay unquoted after =~ — a quoted regex is
	// matched as a literal string by bash.
	test := &fragment.List{Sep: "", Items: []fragment.Fragment{
		&fragment.Raw{Text: "[[ "}, val, &fragment.Raw{Text: " =~ " + pattern + " ]]"},
	}}
	return &fragment.Subprocess{Body: &fragment.List{Sep: " ", Items: []fragment.Fragment{
		test, &fragment.Raw{Text: "&& echo 1 || echo 0"},
	}}}
}

// translateTernary lowers `cond then a else b` to a captured
// `if [ COND != 0 ]; then echo A; else echo B; fi` subshell; a
// statically decided condition translates to the live arm alone. Array
// results are captured through an assignment to a fresh array variable
// and read back as that variable (a bare `$( ... )` cannot be an array
// value in place).
func (t *Translator) translateTernary(v *ast.TernaryExpr) fragment.Fragment {
	if constVal := ast.AnalyzeControlFlow(v.Condition); constVal != nil {
		if *constVal {
			return t.translateExpr(v.ThenExpr)
		}
		return t.translateExpr(v.ElseExpr)
	}
	cond := fragment.RenderInline(t.translateBool(v.Condition))
	then := fragment.RenderInline(t.translateExpr(v.ThenExpr))
	els := fragment.RenderInline(t.translateExpr(v.ElseExpr))
	body := fmt.Sprintf("if [ %s != 0 ]; then echo %s; else echo %s; fi", cond, then, els)
	if v.ExprType().Kind == types.KindArray {
		return t.freshPinned("__ternary", v.ExprType(),
			&fragment.Subprocess{Body: &fragment.Raw{Text: body}})
	}
	return &fragment.Subprocess{Body: &fragment.Raw{Text: body}, Quoted: true}
}

func (t *Translator) translateLength(v *ast.LengthExpr) fragment.Fragment {
	inner := v.Operand
	if vg, ok := inner.(*ast.VarGetExpr); ok {
		if vg.ExprType().Kind == types.KindArray {
			return &fragment.Raw{Text: "${#" + fragment.RenderInline(&fragment.VarExpr{Name: vg.Name, GlobalID: vg.GlobalID, Render: fragment.NameOf}) + "[@]}"}
		}
		return &fragment.Raw{Text: "${#" + fragment.RenderInline(&fragment.VarExpr{Name: vg.Name, GlobalID: vg.GlobalID, Render: fragment.NameOf}) + "}"}
	}
	tmp := t.freshPinned("__len", inner.ExprType(), t.translateExpr(inner))
	tmp.Render = fragment.NameOf
	if inner.ExprType().Kind == types.KindArray {
		return &fragment.Raw{Text: "${#" + fragment.RenderInline(tmp) + "[@]}"}
	}
	return &fragment.Raw{Text: "${#" + fragment.RenderInline(tmp) + "}"}
}

// translateNameOf renders the bare renamed-variable name with no read
// sigil, or the monomorphized function name the checker resolved.
func (t *Translator) translateNameOf(v *ast.NameOfExpr) fragment.Fragment {
	if v.ResolvedFunc != "" {
		return &fragment.Raw{Text: v.ResolvedFunc}
	}
	vg, ok := v.Operand.(*ast.VarGetExpr)
	if !ok {
		return &fragment.Raw{Text: ""}
	}
	return &fragment.VarExpr{Name: vg.Name, GlobalID: vg.GlobalID, Render: fragment.NameOf}
}

func (t *Translator) translateAccess(v *ast.AccessExpr) fragment.Fragment {
	vg, ok := v.Object.(*ast.VarGetExpr)
	if !ok {
		tmp := t.freshTemp("__acc", v.Object.ExprType(), t.translateExpr(v.Object))
		return t.accessOn(tmp, v)
	}
	return t.accessOn(&fragment.VarExpr{Name: vg.Name, GlobalID: vg.GlobalID, Type: vg.ExprType()}, v)
}

func (t *Translator) accessOn(base *fragment.VarExpr, v *ast.AccessExpr) fragment.Fragment {
	out := *base
	out.Render = fragment.ReadQuoted
	if v.IsSlice {
		// open bounds default to the array's edges: `[..n]` starts at
		// 0, `[n..]` runs to the length (exclusive by construction).
		from := fragment.Fragment(&fragment.Raw{Text: "0"})
		if v.SliceFrom != nil {
			from = t.translateExpr(v.SliceFrom)
		}
		to := fragment.Fragment(&fragment.Raw{
			Text: fmt.Sprintf("${#%s[@]}", renderedBare(base.Name, base.GlobalID)),
		})
		inclusive := v.SliceInclusive
		if v.SliceTo != nil {
			to = t.translateExpr(v.SliceTo)
		} else {
			inclusive = false
		}
		out.Slice = &fragment.SliceRange{From: from, To: to, Inclusive: inclusive}
		return &out
	}
	out.Index = t.translateExpr(v.Index)
	return &out
}

// translateCommandText renders a raw-command literal bare: the command
// words must reach the shell unquoted (a `"ls -l"` wrapping would make
// the whole line one word), while interpolations still splice in as
// quoted reads.
func (t *Translator) translateCommandText(e ast.Expr) fragment.Fragment {
	if lit, ok := e.(*ast.TextLit); ok {
		if len(lit.Chunks) == 1 && lit.Chunks[0].Interp == nil {
			return &fragment.Raw{Text: lit.Chunks[0].Literal}
		}
		return t.translateTextLit(lit, fragment.RenderUnquoted)
	}
	return t.translateExpr(e)
}

func (t *Translator) translateCommandInvokeExpr(v *ast.CommandInvokeExpr) fragment.Fragment {
	body := t.withModifiers(v.Modifiers, func() fragment.Fragment {
		return t.translateCommandText(v.Command)
	})
	return &fragment.Subprocess{Body: body, Quoted: true}
}

// withModifiers scopes sudo/silent/suppress/trust for the duration of
// build, OR-ing with any outer value already in effect.
func (t *Translator) withModifiers(m ast.Modifiers, build func() fragment.Fragment) fragment.Fragment {
	sudo, silent, suppress, trust := t.sudo, t.silent, t.suppress, t.trust
	t.sudo = t.sudo || m.Sudo
	t.silent = t.silent || m.Silent
	t.suppress = t.suppress || m.Suppress
	t.trust = t.trust || m.Trust
	defer func() { t.sudo, t.silent, t.suppress, t.trust = sudo, silent, suppress, trust }()
	return build()
}

func (t *Translator) sudoPrefix() string {
	if t.sudo {
		return "sudo "
	}
	return ""
}

func (t *Translator) silentSuffix() string {
	if t.silent {
		return " >/dev/null 2>&1"
	}
	return ""
}

func (t *Translator) suppressSuffix() string {
	if t.suppress {
		return " 2>/dev/null"
	}
	return ""
}
