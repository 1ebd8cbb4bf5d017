package checker

import (
	"fmt"

	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/diag"
	"github.com/amberc/amberc/meta"
	"github.com/amberc/amberc/types"
)

func (c *Checker) checkVarInit(s *ast.VarInitStmt) error {
	if err := c.checkExpr(s.Value); err != nil {
		return err
	}
	declared := s.Value.ExprType()
	if s.Declared != nil {
		if !s.Value.ExprType().IsAllowedIn(*s.Declared) {
			return diag.NewLoud(s.Pos(), fmt.Sprintf(
				"cannot assign %s to a variable declared as %s", s.Value.ExprType(), *s.Declared), "")
		}
		declared = *s.Declared
	}
	if s.Public && !s.Const && !c.Meta.Flags.AllowPublicMutable {
		return diag.NewLoud(s.Pos(), "`pub` on a mutable variable requires --allow-public-mutable", "")
	}
	if c.Meta.Scopes.ShadowsOuter(s.Name) {
		c.Meta.Diags.Warn(!c.Meta.Flags.WarnShadow, s.Pos(), "%q shadows a variable in an outer scope", s.Name)
	}
	gid := c.Meta.NextGlobalID()
	s.GlobalID = gid
	decl := &meta.VarDecl{Name: s.Name, Type: declared, GlobalID: gid, Const: s.Const, Public: s.Public, Pos: s.Pos()}
	if err := c.Meta.Scopes.AddVar(decl); err != nil {
		return diag.NewLoud(s.Pos(), err.Error(), "")
	}
	if s.Public {
		c.Meta.Ctx.PubVars[s.Name] = true
	}
	return nil
}

func (c *Checker) checkDestructInit(s *ast.DestructInitStmt) error {
	if err := c.checkExpr(s.Value); err != nil {
		return err
	}
	vt := s.Value.ExprType()
	if vt.Kind != types.KindArray {
		return diag.NewLoud(s.Pos(), "cannot destructure a non-array value", "")
	}
	if vt.Elem.Kind == types.KindGeneric {
		return diag.NewLoud(s.Pos(), "cannot destructure array because its concrete type is unknown", "")
	}
	s.GlobalIDs = make([]int, len(s.Names))
	for i, name := range s.Names {
		gid := c.Meta.NextGlobalID()
		s.GlobalIDs[i] = gid
		decl := &meta.VarDecl{Name: name, Type: *vt.Elem, GlobalID: gid, Pos: s.Pos()}
		if err := c.Meta.Scopes.AddVar(decl); err != nil {
			return diag.NewLoud(s.Pos(), err.Error(), "")
		}
	}
	return nil
}

func (c *Checker) checkVarSet(s *ast.VarSetStmt) error {
	decl := c.Meta.Scopes.LookupVar(s.Name)
	if decl == nil {
		return diag.NewLoud(s.Pos(), fmt.Sprintf("undefined variable %q", s.Name), "")
	}
	if decl.Const {
		return diag.NewLoud(s.Pos(), fmt.Sprintf("cannot assign to const variable %q", s.Name), "")
	}
	if err := c.checkExpr(s.Value); err != nil {
		return err
	}
	if !s.Value.ExprType().IsAllowedIn(decl.Type) {
		return diag.NewLoud(s.Pos(), fmt.Sprintf(
			"cannot assign %s to variable %q of type %s", s.Value.ExprType(), s.Name, decl.Type), "")
	}
	c.Meta.Scopes.MarkModified(s.Name)
	s.GlobalID = decl.GlobalID
	return nil
}

func (c *Checker) checkDestructSet(s *ast.DestructSetStmt) error {
	if err := c.checkExpr(s.Value); err != nil {
		return err
	}
	vt := s.Value.ExprType()
	if vt.Kind != types.KindArray {
		return diag.NewLoud(s.Pos(), "cannot destructure a non-array value", "")
	}
	s.GlobalIDs = make([]int, len(s.Names))
	for i, name := range s.Names {
		decl := c.Meta.Scopes.LookupVar(name)
		if decl == nil {
			return diag.NewLoud(s.Pos(), fmt.Sprintf("undefined variable %q", name), "")
		}
		// In-place narrowing of a generic-array target to the RHS
		// element type.
		if decl.Type.Kind == types.KindGeneric && vt.Elem.Kind != types.KindGeneric {
			c.Meta.Scopes.UpdateVarType(name, *vt.Elem)
			decl.Type = *vt.Elem
		} else if !vt.Elem.IsAllowedIn(decl.Type) {
			return diag.NewLoud(s.Pos(), fmt.Sprintf(
				"cannot assign %s to variable %q of type %s", *vt.Elem, name, decl.Type), "")
		}
		c.Meta.Scopes.MarkModified(name)
		s.GlobalIDs[i] = decl.GlobalID
	}
	return nil
}

func (c *Checker) checkIndexSet(s *ast.IndexSetStmt) error {
	decl := c.Meta.Scopes.LookupVar(s.Name)
	if decl == nil {
		return diag.NewLoud(s.Pos(), fmt.Sprintf("undefined variable %q", s.Name), "")
	}
	if decl.Type.Kind != types.KindArray {
		return diag.NewLoud(s.Pos(), fmt.Sprintf("cannot index non-array variable %q", s.Name), "")
	}
	if err := c.checkExpr(s.Index); err != nil {
		return err
	}
	if s.Index.ExprType().Kind != types.KindInt {
		return diag.NewLoud(s.Index.Pos(), "array index must be an Int", "")
	}
	if err := c.checkExpr(s.Value); err != nil {
		return err
	}
	if !s.Value.ExprType().IsAllowedIn(*decl.Type.Elem) {
		return diag.NewLoud(s.Pos(), fmt.Sprintf(
			"cannot assign %s into array of %s", s.Value.ExprType(), *decl.Type.Elem), "")
	}
	c.Meta.Scopes.MarkModified(s.Name)
	s.GlobalID = decl.GlobalID
	return nil
}

func (c *Checker) checkArithShorthand(s *ast.ArithShorthandStmt) error {
	decl := c.Meta.Scopes.LookupVar(s.Name)
	if decl == nil {
		return diag.NewLoud(s.Pos(), fmt.Sprintf("undefined variable %q", s.Name), "")
	}
	if decl.Type.Kind != types.KindInt && decl.Type.Kind != types.KindNum {
		return diag.NewLoud(s.Pos(), fmt.Sprintf("arithmetic shorthand requires a Num/Int variable, found %s", decl.Type), "")
	}
	if err := c.checkExpr(s.Value); err != nil {
		return err
	}
	if s.Value.ExprType().Kind != types.KindInt && s.Value.ExprType().Kind != types.KindNum {
		return diag.NewLoud(s.Value.Pos(), fmt.Sprintf("arithmetic shorthand operand must be Num/Int, found %s", s.Value.ExprType()), "")
	}
	c.Meta.Scopes.MarkModified(s.Name)
	s.GlobalID = decl.GlobalID
	return nil
}
