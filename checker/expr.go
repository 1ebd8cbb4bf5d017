package checker

import (
	"fmt"

	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/diag"
	"github.com/amberc/amberc/meta"
	"github.com/amberc/amberc/types"
)

// checkExpr is the total expression dispatch: every
// expression variant resolves its operand types, fills ExprType via
// ast.SetType, and emits diagnostics on mismatch. No default case
// silently swallows an unrecognized variant.
func (c *Checker) checkExpr(e ast.Expr) error {
	switch ex := e.(type) {
	case *ast.BoolLit:
		ast.SetType(ex, types.Bool())
		return nil
	case *ast.IntLit:
		ast.SetType(ex, types.Int())
		return nil
	case *ast.NumLit:
		ast.SetType(ex, types.Num())
		return nil
	case *ast.TextLit:
		for _, chunk := range ex.Chunks {
			if chunk.Interp != nil {
				if err := c.checkExpr(chunk.Interp); err != nil {
					return err
				}
			}
		}
		ast.SetType(ex, types.Text())
		return nil
	case *ast.NullLit:
		ast.SetType(ex, types.Null())
		return nil
	case *ast.StatusLit:
		ast.SetType(ex, types.Int())
		return nil
	case *ast.ArrayLit:
		return c.checkArrayLit(ex)
	case *ast.VarGetExpr:
		return c.checkVarGet(ex)
	case *ast.ParenExpr:
		if err := c.checkExpr(ex.Inner); err != nil {
			return err
		}
		ast.SetType(ex, ex.Inner.ExprType())
		return nil
	case *ast.ArithBinExpr:
		return c.checkArithBin(ex)
	case *ast.LogicBinExpr:
		return c.checkLogicBin(ex)
	case *ast.NotExpr:
		if err := c.checkExpr(ex.Operand); err != nil {
			return err
		}
		if ex.Operand.ExprType().Kind != types.KindBool {
			return diag.NewLoud(ex.Pos(), "`not` requires a Bool operand, found "+ex.Operand.ExprType().String(), "")
		}
		ast.SetType(ex, types.Bool())
		return nil
	case *ast.NegExpr:
		if err := c.checkExpr(ex.Operand); err != nil {
			return err
		}
		ot := ex.Operand.ExprType()
		if ot.Kind != types.KindInt && ot.Kind != types.KindNum {
			return diag.NewLoud(ex.Pos(), "unary `-` requires a Num/Int operand, found "+ot.String(), "")
		}
		ast.SetType(ex, ot)
		return nil
	case *ast.CompareExpr:
		return c.checkCompare(ex)
	case *ast.CastExpr:
		return c.checkCast(ex)
	case *ast.IsTestExpr:
		if err := c.checkExpr(ex.Operand); err != nil {
			return err
		}
		if _, ok := ex.Operand.(*ast.VarGetExpr); !ok {
			c.Meta.Diags.Warn(false, ex.Pos(), "`is` only narrows a plain variable operand")
		}
		ast.SetType(ex, types.Bool())
		return nil
	case *ast.TernaryExpr:
		return c.checkTernary(ex)
	case *ast.FuncInvokeExpr:
		return c.checkFuncInvoke(ex)
	case *ast.CommandInvokeExpr:
		return c.checkCommandInvoke(ex)
	case *ast.LengthExpr:
		return c.checkLength(ex)
	case *ast.NameOfExpr:
		return c.checkNameOf(ex)
	case *ast.AccessExpr:
		return c.checkAccess(ex)
	case *ast.BuiltinCallExpr:
		return c.checkBuiltinCallExpr(ex)
	default:
		panic(fmt.Sprintf("checker: unhandled expression variant %T", e))
	}
}

// checkNameOf resolves `nameof(x)`: a variable operand yields its
// emitted variable name at translate time; an operand naming a
// function (no variable shadows it) yields the monomorphized name of
// the function's declared-signature variant, which requires every
// parameter to be strictly typed — a generic function has no single
// variant to name.
func (c *Checker) checkNameOf(ex *ast.NameOfExpr) error {
	if vg, ok := ex.Operand.(*ast.VarGetExpr); ok && c.Meta.Scopes.LookupVar(vg.Name) == nil {
		if sig := c.Meta.Scopes.LookupFunc(vg.Name); sig != nil {
			argTypes := make([]types.Type, len(sig.Params))
			for i, p := range sig.Params {
				if !p.Type.IsStrictlyTyped() {
					return diag.NewLoud(ex.Pos(), fmt.Sprintf(
						"cannot take nameof generic function %q: its parameters have no single concrete variant", vg.Name), "")
				}
				argTypes[i] = p.Type
			}
			inst := c.Meta.Funcs.FindInstance(sig.ID, argTypes)
			if inst == nil {
				return diag.NewLoud(ex.Pos(), fmt.Sprintf("function %q has no compiled variant to name", vg.Name), "")
			}
			ex.ResolvedFunc = meta.MonomorphName("", sig.Name, sig.ID, inst.VariantID)
			ast.SetType(ex, types.Text())
			return nil
		}
	}
	if err := c.checkExpr(ex.Operand); err != nil {
		return err
	}
	ast.SetType(ex, types.Text())
	return nil
}

func (c *Checker) checkArrayLit(ex *ast.ArrayLit) error {
	if len(ex.Elements) == 0 {
		ast.SetType(ex, types.Array(types.Generic()))
		return nil
	}
	var elem types.Type
	for i, el := range ex.Elements {
		if err := c.checkExpr(el); err != nil {
			return err
		}
		if i == 0 {
			elem = el.ExprType()
			continue
		}
		if !el.ExprType().Equal(elem) {
			elem = types.Union(elem, el.ExprType())
		}
	}
	ast.SetType(ex, types.Array(elem))
	return nil
}

func (c *Checker) checkVarGet(ex *ast.VarGetExpr) error {
	decl := c.Meta.Scopes.LookupVar(ex.Name)
	if decl == nil {
		return diag.NewLoud(ex.Pos(), fmt.Sprintf("undefined variable %q", ex.Name), "")
	}
	c.Meta.Scopes.MarkUsed(ex.Name)
	ex.GlobalID = decl.GlobalID
	if narrowed, ok := c.Meta.Narrow.Lookup(ex.Name); ok {
		ast.SetType(ex, narrowed)
		return nil
	}
	ast.SetType(ex, decl.Type)
	return nil
}

func (c *Checker) checkArithBin(ex *ast.ArithBinExpr) error {
	if err := c.checkExpr(ex.Left); err != nil {
		return err
	}
	if err := c.checkExpr(ex.Right); err != nil {
		return err
	}
	lt, rt := ex.Left.ExprType(), ex.Right.ExprType()
	if ex.Op == ast.ArithRange {
		if lt.Kind != types.KindInt || rt.Kind != types.KindInt {
			return diag.NewLoud(ex.Pos(), "`..` range bounds must be Int", "")
		}
		ast.SetType(ex, types.Array(types.Int()))
		return nil
	}
	numeric := func(t types.Type) bool { return t.Kind == types.KindInt || t.Kind == types.KindNum }
	if !numeric(lt) || !numeric(rt) {
		return diag.NewLoud(ex.Pos(), fmt.Sprintf("arithmetic operand must be Num/Int, found %s and %s", lt, rt), "")
	}
	if lt.Kind == types.KindInt && rt.Kind == types.KindInt {
		ast.SetType(ex, types.Int())
	} else {
		ast.SetType(ex, types.Num())
	}
	return nil
}

func (c *Checker) checkLogicBin(ex *ast.LogicBinExpr) error {
	if err := c.checkExpr(ex.Left); err != nil {
		return err
	}
	if ex.Left.ExprType().Kind != types.KindBool {
		return diag.NewLoud(ex.Left.Pos(), "logical operand must be Bool, found "+ex.Left.ExprType().String(), "")
	}
	pos, neg := computeFacts(ex.Left)
	facts := neg
	if ex.Op == ast.LogicAnd {
		facts = pos
	}
	if err := c.withNarrowedScope(facts, func() error { return c.checkExpr(ex.Right) }); err != nil {
		return err
	}
	if ex.Right.ExprType().Kind != types.KindBool {
		return diag.NewLoud(ex.Right.Pos(), "logical operand must be Bool, found "+ex.Right.ExprType().String(), "")
	}
	ast.SetType(ex, types.Bool())
	return nil
}

func (c *Checker) checkCompare(ex *ast.CompareExpr) error {
	if err := c.checkExpr(ex.Left); err != nil {
		return err
	}
	if err := c.checkExpr(ex.Right); err != nil {
		return err
	}
	if ex.Op != ast.CmpEq && ex.Op != ast.CmpNeq {
		numeric := func(t types.Type) bool { return t.Kind == types.KindInt || t.Kind == types.KindNum }
		if !numeric(ex.Left.ExprType()) || !numeric(ex.Right.ExprType()) {
			return diag.NewLoud(ex.Pos(), "ordering comparison requires Num/Int operands", "")
		}
	} else if !ex.Left.ExprType().CanIntersect(ex.Right.ExprType()) {
		c.Meta.Diags.Warn(false, ex.Pos(), "comparing unrelated types %s and %s is always %v",
			ex.Left.ExprType(), ex.Right.ExprType(), ex.Op == ast.CmpNeq)
	}
	ast.SetType(ex, types.Bool())
	return nil
}

func (c *Checker) checkCast(ex *ast.CastExpr) error {
	if err := c.checkExpr(ex.Operand); err != nil {
		return err
	}
	src := ex.Operand.ExprType()
	if !src.CanIntersect(ex.Target) && !c.Meta.Flags.AllowAbsurdCast {
		return diag.NewLoud(ex.Pos(), fmt.Sprintf(
			"cast from %s to %s can never succeed; pass --allow-absurd-cast to permit it", src, ex.Target), "")
	}
	ast.SetType(ex, ex.Target)
	return nil
}

func (c *Checker) checkTernary(ex *ast.TernaryExpr) error {
	if err := c.checkExpr(ex.Condition); err != nil {
		return err
	}
	if ex.Condition.ExprType().Kind != types.KindBool {
		return diag.NewLoud(ex.Condition.Pos(), "ternary condition must be Bool", "")
	}
	pos, neg := computeFacts(ex.Condition)

	// A statically decided condition checks only the live arm; the
	// translator elides the dead one.
	if constVal := ast.AnalyzeControlFlow(ex.Condition); constVal != nil {
		arm, facts := ex.ThenExpr, pos
		if !*constVal {
			arm, facts = ex.ElseExpr, neg
		}
		if err := c.withNarrowedScope(facts, func() error { return c.checkExpr(arm) }); err != nil {
			return err
		}
		ast.SetType(ex, arm.ExprType())
		return nil
	}

	if err := c.withNarrowedScope(pos, func() error { return c.checkExpr(ex.ThenExpr) }); err != nil {
		return err
	}
	if err := c.withNarrowedScope(neg, func() error { return c.checkExpr(ex.ElseExpr) }); err != nil {
		return err
	}
	tt, ft := ex.ThenExpr.ExprType(), ex.ElseExpr.ExprType()
	if tt.Equal(ft) {
		ast.SetType(ex, tt)
		return nil
	}
	// A generic array arm adopts the other arm's concrete array type.
	if tt.Kind == types.KindArray && ft.Kind == types.KindArray {
		if tt.Elem.Kind == types.KindGeneric && ft.Elem.Kind != types.KindGeneric {
			ast.SetType(ex, ft)
			return nil
		}
		if tt.Elem.Kind != types.KindGeneric && ft.Elem.Kind == types.KindGeneric {
			ast.SetType(ex, tt)
			return nil
		}
	}
	return diag.NewLoud(ex.Pos(), fmt.Sprintf(
		"ternary arms must have one type, found %s and %s", tt, ft), "")
}

func (c *Checker) checkCommandInvoke(ex *ast.CommandInvokeExpr) error {
	if err := c.checkExpr(ex.Command); err != nil {
		return err
	}
	ast.SetType(ex, types.Text())
	return nil
}

func (c *Checker) checkLength(ex *ast.LengthExpr) error {
	if err := c.checkExpr(ex.Operand); err != nil {
		return err
	}
	ot := ex.Operand.ExprType()
	if ot.Kind != types.KindArray && ot.Kind != types.KindText {
		return diag.NewLoud(ex.Pos(), "len() requires a Text or array operand, found "+ot.String(), "")
	}
	ast.SetType(ex, types.Int())
	return nil
}

func (c *Checker) checkAccess(ex *ast.AccessExpr) error {
	if err := c.checkExpr(ex.Object); err != nil {
		return err
	}
	ot := ex.Object.ExprType()
	if ot.Kind != types.KindArray {
		return diag.NewLoud(ex.Pos(), "indexing/slicing requires an array, found "+ot.String(), "")
	}
	if ex.IsSlice {
		if ex.SliceFrom != nil {
			if err := c.checkExpr(ex.SliceFrom); err != nil {
				return err
			}
			if ex.SliceFrom.ExprType().Kind != types.KindInt {
				return diag.NewLoud(ex.SliceFrom.Pos(), "slice bound must be Int", "")
			}
		}
		if ex.SliceTo != nil {
			if err := c.checkExpr(ex.SliceTo); err != nil {
				return err
			}
			if ex.SliceTo.ExprType().Kind != types.KindInt {
				return diag.NewLoud(ex.SliceTo.Pos(), "slice bound must be Int", "")
			}
		}
		ast.SetType(ex, ot)
		return nil
	}
	if err := c.checkExpr(ex.Index); err != nil {
		return err
	}
	if ex.Index.ExprType().Kind != types.KindInt {
		return diag.NewLoud(ex.Index.Pos(), "array index must be Int", "")
	}
	ast.SetType(ex, *ot.Elem)
	return nil
}
