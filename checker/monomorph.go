package checker

import (
	"fmt"

	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/diag"
	"github.com/amberc/amberc/meta"
	"github.com/amberc/amberc/types"
)

// instantiate drives monomorphization: reuse
// an existing instance for an exact argument-type match, or clone the
// declaration's body, bind parameters to the concrete types, and
// typecheck the clone as a fresh variant. The return type is recorded
// eagerly (declared type, or Generic as a placeholder when inferred)
// before the body is walked so a recursive self-call mid-instantiation
// terminates against the in-progress instance (step 3).
func (c *Checker) instantiate(decl *ast.FuncDeclStmt, sig *meta.FuncSig, argTypes []types.Type, callPos diag.Position) (*meta.FuncInstance, error) {
	if existing := c.Meta.Funcs.FindInstance(decl.ID, argTypes); existing != nil {
		return existing, nil
	}
	if len(argTypes) != len(sig.Params) {
		return nil, diag.NewLoud(callPos, fmt.Sprintf(
			"function %q expects %d argument(s), got %d", sig.Name, len(sig.Params), len(argTypes)), "")
	}

	inst := c.Meta.Funcs.NewInstance(decl.ID, argTypes)
	if sig.HasReturn {
		inst.ReturnType = sig.ReturnType
	} else {
		inst.ReturnType = types.Generic()
	}
	inst.ArgGlobalIDs = make([]int, len(argTypes))
	body := ast.CloneStmts(decl.Body)

	err := c.withScope(func() error {
		wasInFunc := c.Meta.Ctx.InFunc
		c.Meta.Ctx.InFunc = true
		defer func() { c.Meta.Ctx.InFunc = wasInFunc }()

		for i, p := range sig.Params {
			gid := c.Meta.NextGlobalID()
			inst.ArgGlobalIDs[i] = gid
			if err := c.Meta.Scopes.AddVar(&meta.VarDecl{
				Name: p.Name, Type: argTypes[i], GlobalID: gid, Pos: callPos, Used: true, Modified: true,
			}); err != nil {
				return diag.NewLoud(callPos, err.Error(), "")
			}
		}

		ctx := &funcReturnCtx{inferred: types.Generic()}
		if sig.HasReturn {
			t := sig.ReturnType
			ctx.declared = &t
		}
		c.funcReturns = append(c.funcReturns, ctx)
		defer func() { c.funcReturns = c.funcReturns[:len(c.funcReturns)-1] }()

		if err := c.checkStmts(body); err != nil {
			return err
		}
		if !sig.HasReturn {
			if ctx.hasReturn {
				inst.ReturnType = ctx.inferred
			} else {
				inst.ReturnType = types.Null()
			}
		}
		if isGenericValued(inst.ReturnType) {
			c.Meta.Diags.Warn(c.Meta.Flags.AllowGenericReturn, callPos,
				"function %q returns a value of unresolved generic type", sig.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	inst.TypedBody = body
	return inst, nil
}

// isGenericValued reports whether t still carries an unresolved
// Generic after instantiation (a bare Generic or a generic-element
// array), the shape the allow-generic-return flag gates.
func isGenericValued(t types.Type) bool {
	if t.Kind == types.KindGeneric {
		return true
	}
	return t.Kind == types.KindArray && t.Elem.Kind == types.KindGeneric
}

// checkFuncInvoke resolves a call's function signature, typechecks its
// arguments, and drives monomorphization for the resulting argument
// type tuple.
func (c *Checker) checkFuncInvoke(e *ast.FuncInvokeExpr) error {
	sig := c.Meta.Scopes.LookupFunc(e.Name)
	if sig == nil {
		return diag.NewLoud(e.Pos(), fmt.Sprintf("undefined function %q", e.Name), "")
	}
	argTypes := make([]types.Type, len(e.Args))
	for i, a := range e.Args {
		if err := c.checkExpr(a); err != nil {
			return err
		}
		argTypes[i] = a.ExprType()
	}
	decl, ok := c.funcDecls[sig.ID]
	if !ok {
		return diag.NewLoud(e.Pos(), fmt.Sprintf("function %q has no resolvable body for monomorphization", e.Name), "")
	}
	inst, err := c.instantiate(decl, sig, argTypes, e.Pos())
	if err != nil {
		return err
	}
	e.FuncID = decl.ID
	e.VariantID = inst.VariantID
	ast.SetType(e, inst.ReturnType)
	return nil
}
