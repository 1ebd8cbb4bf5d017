package checker

import "github.com/amberc/amberc/ast"
import "github.com/amberc/amberc/types"

// Facts is a flow-sensitive narrowing fact set: variable name ->
// refined type.
type Facts map[string]types.Type

// computeFacts implements the fact composition rules for a
// boolean-valued condition expression, returning the facts that hold
// in the then-branch (positive) and else-branch (negative).
func computeFacts(e ast.Expr) (pos, neg Facts) {
	switch ex := e.(type) {
	case *ast.IsTestExpr:
		if vg, ok := ex.Operand.(*ast.VarGetExpr); ok {
			pos = Facts{vg.Name: ex.Target}
			declared := ex.Operand.ExprType()
			if excluded, ok := declared.Exclude(ex.Target); ok {
				neg = Facts{vg.Name: excluded}
			}
		}
		return pos, neg
	case *ast.LogicBinExpr:
		ap, an := computeFacts(ex.Left)
		bp, bn := computeFacts(ex.Right)
		if ex.Op == ast.LogicAnd {
			return unionFacts(ap, bp), intersectFacts(an, bn)
		}
		return intersectFacts(ap, bp), unionFacts(an, bn)
	case *ast.NotExpr:
		p, n := computeFacts(ex.Operand)
		return n, p
	case *ast.ParenExpr:
		return computeFacts(ex.Inner)
	default:
		return nil, nil
	}
}

func unionFacts(a, b Facts) Facts {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make(Facts, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func intersectFacts(a, b Facts) Facts {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	var out Facts
	for k, v := range a {
		if ov, ok := b[k]; ok && ov.Equal(v) {
			if out == nil {
				out = Facts{}
			}
			out[k] = v
		}
	}
	return out
}

// withNarrowedScope intersects each fact with the variable's current
// declared type, pushes it, runs fn,
// and pops on every exit path including errors.
func (c *Checker) withNarrowedScope(facts Facts, fn func() error) error {
	if len(facts) == 0 {
		return fn()
	}
	intersected := make(map[string]types.Type, len(facts))
	for name, t := range facts {
		decl := c.Meta.Scopes.LookupVar(name)
		if decl == nil {
			intersected[name] = t
			continue
		}
		intersected[name] = intersectTypes(decl.Type, t)
	}
	return c.Meta.Narrow.WithNarrowedScope(intersected, fn)
}

// intersectTypes narrows declared by fact: the fact wins when it is a
// member (or subset) of the declared type, the declared type wins when
// it is already tighter than the fact, and for a union the common
// members are kept. A disjoint fact still narrows to the fact itself:
// the branch it guards is statically dead (AnalyzeControlFlow returns
// false for it), but the body is still typechecked under the assumed
// fact before it is dropped.
func intersectTypes(declared, fact types.Type) types.Type {
	if fact.IsAllowedIn(declared) {
		return fact
	}
	if declared.IsAllowedIn(fact) {
		return declared
	}
	if declared.Kind == types.KindUnion {
		var common []types.Type
		for _, m := range declared.Variants {
			if m.IsAllowedIn(fact) {
				common = append(common, m)
			}
		}
		if len(common) > 0 {
			return types.Union(common...)
		}
	}
	return fact
}

// AnalyzeControlFlow re-exports the ast-level constant-branch
// predicate so existing checker call sites and tests keep reading the
// same way.
func AnalyzeControlFlow(e ast.Expr) *bool { return ast.AnalyzeControlFlow(e) }
