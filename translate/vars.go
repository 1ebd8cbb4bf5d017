package translate

import (
	"fmt"

	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/fragment"
	"github.com/amberc/amberc/types"
)

func (t *Translator) translateVarInit(s *ast.VarInitStmt) fragment.Fragment {
	typ := s.Value.ExprType()
	return &fragment.VarStmt{
		Name: s.Name, Type: typ, GlobalID: s.GlobalID, Value: t.translateExpr(s.Value),
		Local: t.inFunc, IsArray: typ.Kind == types.KindArray,
	}
}

// translateDestructInit lowers `let [a, b] = expr` via one ephemeral
// scratch array holding the source value, then one VarStmt per name
// indexing into it.
func (t *Translator) translateDestructInit(s *ast.DestructInitStmt) fragment.Fragment {
	srcType := s.Value.ExprType()
	scratchGid := t.Meta.NextGlobalID()
	var out []fragment.Fragment
	out = append(out, &fragment.VarStmt{
		Name: "__destruct", GlobalID: scratchGid, Value: t.translateExpr(s.Value),
		Local: t.inFunc, IsArray: true, OptimizeWhenUnused: false,
	})
	elemType := types.Generic()
	if srcType.Kind == types.KindArray {
		elemType = *srcType.Elem
	}
	for i, name := range s.Names {
		out = append(out, &fragment.VarStmt{
			Name: name, GlobalID: s.GlobalIDs[i], Local: t.inFunc, Type: elemType,
			Value: &fragment.VarExpr{
				Name: "__destruct", GlobalID: scratchGid, Render: fragment.ReadQuoted,
				Index: &fragment.Raw{Text: fmt.Sprintf("%d", i)},
			},
		})
	}
	return &fragment.Block{Stmts: out}
}

// translateVarSet never emits `local`: the target is an existing
// binding, and a `local` here would shadow an outer variable instead
// of assigning it.
func (t *Translator) translateVarSet(s *ast.VarSetStmt) fragment.Fragment {
	typ := s.Value.ExprType()
	return &fragment.VarStmt{
		Name: s.Name, Type: typ, GlobalID: s.GlobalID, Value: t.translateExpr(s.Value),
		IsArray: typ.Kind == types.KindArray,
	}
}

// translateDestructSet mirrors translateDestructInit for the
// reassignment form `[a, b] = expr`.
func (t *Translator) translateDestructSet(s *ast.DestructSetStmt) fragment.Fragment {
	scratchGid := t.Meta.NextGlobalID()
	var out []fragment.Fragment
	out = append(out, &fragment.VarStmt{
		Name: "__destruct", GlobalID: scratchGid, Value: t.translateExpr(s.Value),
		Local: t.inFunc, IsArray: true, OptimizeWhenUnused: false,
	})
	for i, name := range s.Names {
		out = append(out, &fragment.VarStmt{
			Name: name, GlobalID: s.GlobalIDs[i],
			Value: &fragment.VarExpr{
				Name: "__destruct", GlobalID: scratchGid, Render: fragment.ReadQuoted,
				Index: &fragment.Raw{Text: fmt.Sprintf("%d", i)},
			},
		})
	}
	return &fragment.Block{Stmts: out}
}

// translateIndexSet lowers `name[index] = expr` to bash's own indexed-
// element assignment syntax (`name[index]=value`), which VarStmt has
// no field for since every other assignment form targets the whole
// variable.
func (t *Translator) translateIndexSet(s *ast.IndexSetStmt) fragment.Fragment {
	name := renderedBare(s.Name, s.GlobalID)
	idx := fragment.RenderInline(t.translateExpr(s.Index))
	val := fragment.RenderInline(t.translateExpr(s.Value))
	return &fragment.Raw{Text: fmt.Sprintf("%s[%s]=%s", name, idx, val)}
}

var shorthandOp = map[ast.ArithShorthandOp]fragment.ArithOp{
	ast.ShorthandAdd: fragment.OpAdd, ast.ShorthandSub: fragment.OpSub,
	ast.ShorthandMul: fragment.OpMul, ast.ShorthandDiv: fragment.OpDiv, ast.ShorthandMod: fragment.OpMod,
}

func (t *Translator) translateArithShorthand(s *ast.ArithShorthandStmt) fragment.Fragment {
	cur := &fragment.VarExpr{Name: s.Name, GlobalID: s.GlobalID, Render: fragment.ReadUnquoted}
	return &fragment.VarStmt{
		Name: s.Name, GlobalID: s.GlobalID,
		Value: &fragment.Arithmetic{Left: cur, Op: shorthandOp[s.Op], Right: t.translateExpr(s.Value)},
	}
}
