package checker

import (
	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/diag"
	"github.com/amberc/amberc/meta"
	"github.com/amberc/amberc/types"
)

func (c *Checker) checkFuncDecl(s *ast.FuncDeclStmt) error {
	allGeneric, allConcrete := true, true
	for _, p := range s.Params {
		if p.Type.Kind == types.KindGeneric {
			allConcrete = false
		} else {
			allGeneric = false
		}
	}
	if len(s.Params) > 0 && !allGeneric && !allConcrete {
		return diag.NewLoud(s.Pos(), "function parameters must be all generic or all concrete types, not a mix", "")
	}

	id := c.Meta.Funcs.NextFuncID()
	s.ID = id
	sig := &meta.FuncSig{Name: s.Name, ID: id, Public: s.Public}
	for _, p := range s.Params {
		sig.Params = append(sig.Params, meta.Param{Name: p.Name, Type: p.Type})
	}
	if s.ReturnType != nil {
		sig.ReturnType = *s.ReturnType
		sig.HasReturn = true
	}
	if err := c.Meta.Scopes.AddFunc(sig); err != nil {
		return diag.NewLoud(s.Pos(), err.Error(), "")
	}
	if c.funcDecls == nil {
		c.funcDecls = map[int]*ast.FuncDeclStmt{}
	}
	c.funcDecls[id] = s
	if s.Public {
		c.Meta.Ctx.PubFuncs[s.Name] = true
	}

	if allConcrete {
		argTypes := make([]types.Type, len(s.Params))
		for i, p := range s.Params {
			argTypes[i] = p.Type
		}
		if _, err := c.instantiate(s, sig, argTypes, s.Pos()); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkReturn(s *ast.ReturnStmt) error {
	if len(c.funcReturns) == 0 {
		return diag.NewLoud(s.Pos(), "`return` used outside of a function", "")
	}
	ctx := c.funcReturns[len(c.funcReturns)-1]
	if s.Value == nil {
		ctx.hasReturn = true
		return nil
	}
	if err := c.checkExpr(s.Value); err != nil {
		return err
	}
	ctx.hasReturn = true
	if ctx.declared != nil {
		if !s.Value.ExprType().IsAllowedIn(*ctx.declared) {
			return diag.NewLoud(s.Pos(), "return value "+s.Value.ExprType().String()+" does not match declared return type "+ctx.declared.String(), "")
		}
		return nil
	}
	if ctx.inferred.Kind == types.KindGeneric {
		ctx.inferred = s.Value.ExprType()
	} else if !ctx.inferred.Equal(s.Value.ExprType()) {
		ctx.inferred = types.Union(ctx.inferred, s.Value.ExprType())
	}
	return nil
}

func (c *Checker) checkFail(s *ast.FailStmt) error {
	if s.Value != nil {
		return c.checkExpr(s.Value)
	}
	return nil
}

func (c *Checker) checkMain(s *ast.MainStmt) error {
	return c.withScope(func() error {
		if s.ArgsParam != "" {
			gid := c.Meta.NextGlobalID()
			s.ArgsGlobalID = gid
			if err := c.Meta.Scopes.AddVar(&meta.VarDecl{
				Name: s.ArgsParam, Type: types.Array(types.Text()), GlobalID: gid, Pos: s.Pos(), Used: true, Modified: true,
			}); err != nil {
				return diag.NewLoud(s.Pos(), err.Error(), "")
			}
		}
		return c.checkStmts(s.Body)
	})
}

func (c *Checker) checkTest(s *ast.TestStmt) error {
	c.Meta.TestNames[s.Name] = true
	return c.withScope(func() error { return c.checkStmts(s.Body) })
}
