package translate

import (
	"fmt"
	"strconv"

	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/fragment"
	"github.com/amberc/amberc/types"
)

// boolTest renders e as the `[ COND != 0 ]` condition shape for
// splicing after `if`/`while`/`elif`; conditions compile to a numeric
// 0/1 value.
func (t *Translator) boolTest(e ast.Expr) string {
	return fmt.Sprintf("[ %s != 0 ]", fragment.RenderInline(t.translateBool(e)))
}

type condClause struct {
	cond ast.Expr
	body []ast.Statement
}

// translateClauseChain lowers a condition/body chain plus optional else
// to if/elif/else, eliding arms the checker proved constant: an
// always-false clause disappears, and the first
// always-true clause becomes the chain's final else (dropping every
// later clause and the source else with it). A chain reduced to a
// single unconditional body renders as that body alone, with no if at
// all.
func (t *Translator) translateClauseChain(clauses []condClause, elseBody []ast.Statement, hasElse bool) fragment.Fragment {
	var kept []condClause
	for _, cl := range clauses {
		constVal := ast.AnalyzeControlFlow(cl.cond)
		if constVal != nil && !*constVal {
			continue
		}
		if constVal != nil && *constVal {
			elseBody = cl.body
			hasElse = true
			break
		}
		kept = append(kept, cl)
	}

	if len(kept) == 0 {
		if hasElse {
			return t.translateBlock(elseBody)
		}
		return &fragment.Empty{}
	}

	var out []fragment.Fragment
	for i, cl := range kept {
		kw := "elif"
		if i == 0 {
			kw = "if"
		}
		out = append(out, &fragment.Raw{Text: kw + " " + t.boolTest(cl.cond) + "; then"})
		out = append(out, &fragment.Block{Indent: true, Stmts: []fragment.Fragment{t.translateBlock(cl.body)}})
	}
	if hasElse {
		out = append(out, &fragment.Raw{Text: "else"})
		out = append(out, &fragment.Block{Indent: true, Stmts: []fragment.Fragment{t.translateBlock(elseBody)}})
	}
	out = append(out, &fragment.Raw{Text: "fi"})
	return &fragment.Block{Stmts: out}
}

func (t *Translator) translateIfStmt(s *ast.IfStmt) fragment.Fragment {
	clauses := make([]condClause, 0, 1+len(s.ElsifClauses))
	clauses = append(clauses, condClause{s.Condition, s.Body})
	for _, ei := range s.ElsifClauses {
		clauses = append(clauses, condClause{ei.Condition, ei.Body})
	}
	return t.translateClauseChain(clauses, s.ElseBody, s.HasElse)
}

// translateIfChainStmt lowers the brace-delimited multi-condition form
// through the same clause-chain path as translateIfStmt; the checker
// has already validated narrowing and warned about the dead arms the
// chain drops here.
func (t *Translator) translateIfChainStmt(s *ast.IfChainStmt) fragment.Fragment {
	clauses := make([]condClause, 0, len(s.Clauses))
	for _, cl := range s.Clauses {
		clauses = append(clauses, condClause{cl.Condition, cl.Body})
	}
	return t.translateClauseChain(clauses, s.ElseBody, s.HasElse)
}

// intLitValue extracts a statically known integer bound: a plain IntLit
// or a unary-negated one, possibly parenthesized.
func intLitValue(e ast.Expr) (int, bool) {
	switch v := e.(type) {
	case *ast.IntLit:
		n, err := strconv.Atoi(v.Value)
		return n, err == nil
	case *ast.NegExpr:
		n, ok := intLitValue(v.Operand)
		return -n, ok
	case *ast.ParenExpr:
		return intLitValue(v.Inner)
	}
	return 0, false
}

// translateRangeLoop lowers `for i[, idx] in from..to`.
// With two literal bounds the loop is fully static, choosing </<= or
// >/>= and ++/-- by sign; otherwise the direction is computed into a
// fresh variable and folded into the condition and step. A bound index
// binding extends the init with `, idx=0` and the update with `, idx++`.
func (t *Translator) translateRangeLoop(s *ast.RangeLoopStmt) fragment.Fragment {
	from := fragment.RenderInline(t.translateExpr(s.From))
	to := fragment.RenderInline(t.translateExpr(s.To))
	varName := renderedBare(s.Var, s.VarGlobalID)

	init := fmt.Sprintf("%s=%s", varName, from)
	var cond, step string

	fromVal, fromStatic := intLitValue(s.From)
	toVal, toStatic := intLitValue(s.To)
	if fromStatic && toStatic {
		cmp, inc := "<", varName+"++"
		if fromVal > toVal {
			cmp, inc = ">", varName+"--"
		}
		if s.Inclusive {
			cmp += "="
		}
		cond = fmt.Sprintf("%s %s %s", varName, cmp, to)
		step = inc
	} else {
		// the direction variable is referenced only through raw loop-
		// header text, which the optimizer's reference count cannot see,
		// so it must opt out of dead-store elimination.
		dirGid := t.Meta.NextGlobalID()
		t.push(&fragment.VarStmt{
			Name: "__dir", Type: types.Int(), GlobalID: dirGid, Local: t.inFunc,
			Value: &fragment.Raw{Text: fmt.Sprintf("$(( %s <= %s ? 1 : -1 ))", from, to)},
		})
		dirName := "$" + renderedBare("__dir", dirGid)
		cmp := "<"
		if s.Inclusive {
			cmp = "<="
		}
		cond = fmt.Sprintf("%s*%s %s %s*%s", varName, dirName, cmp, to, dirName)
		step = fmt.Sprintf("%s+=%s", varName, dirName)
	}

	if s.IndexVar != "" {
		idxName := renderedBare(s.IndexVar, s.IdxGlobalID)
		init += ", " + idxName + "=0"
		step += ", " + idxName + "++"
	}

	header := fmt.Sprintf("for (( %s; %s; %s )); do", init, cond, step)
	return &fragment.Block{Stmts: []fragment.Fragment{
		&fragment.Raw{Text: header},
		&fragment.Block{Indent: true, Stmts: []fragment.Fragment{t.translateBlock(s.Body)}},
		&fragment.Raw{Text: "done"},
	}}
}

func renderedBare(name string, gid int) string {
	return fragment.RenderInline(&fragment.VarExpr{Name: name, GlobalID: gid, Render: fragment.NameOf})
}

// translateIteratorLoop lowers `for x[, idx] in array { ... }` to a
// bash `for ((idx=0; ...)); do x=${array[idx]}; ... done` shape, since
// bash's native `for x in "${arr[@]}"` has no clean hook for a parallel
// index binding when IndexVar is requested.
func (t *Translator) translateIteratorLoop(s *ast.IteratorLoopStmt) fragment.Fragment {
	coll := t.translateExpr(s.Collection)
	collVar, isPlainVar := coll.(*fragment.VarExpr)
	if !isPlainVar {
		tmp := t.freshPinned("__iter", s.Collection.ExprType(), coll)
		collVar = tmp
	}
	arrName := renderedBare(collVar.Name, collVar.GlobalID)
	idxName := s.IndexVar
	idxGid := s.IdxGlobalID
	if idxName == "" {
		idxName, idxGid = "__idx", t.Meta.NextGlobalID()
	}
	idxBare := renderedBare(idxName, idxGid)

	header := fmt.Sprintf("for (( %s=0; %s<${#%s[@]}; %s++ )); do", idxBare, idxBare, arrName, idxBare)
	bind := &fragment.VarStmt{
		Name: s.Var, GlobalID: s.VarGlobalID, Local: t.inFunc,
		Value: &fragment.VarExpr{Name: collVar.Name, GlobalID: collVar.GlobalID, Render: fragment.ReadQuoted,
			Index: &fragment.VarExpr{Name: idxName, GlobalID: idxGid, Render: fragment.ReadUnquoted}},
	}

	body := []fragment.Fragment{bind, t.translateBlock(s.Body)}
	return &fragment.Block{Stmts: []fragment.Fragment{
		&fragment.Raw{Text: header},
		&fragment.Block{Indent: true, Stmts: body},
		&fragment.Raw{Text: "done"},
	}}
}

func (t *Translator) translateWhileLoop(s *ast.WhileLoopStmt) fragment.Fragment {
	return &fragment.Block{Stmts: []fragment.Fragment{
		&fragment.Raw{Text: "while " + t.boolTest(s.Condition) + "; do"},
		&fragment.Block{Indent: true, Stmts: []fragment.Fragment{t.translateBlock(s.Body)}},
		&fragment.Raw{Text: "done"},
	}}
}

func (t *Translator) translateInfiniteLoop(s *ast.InfiniteLoopStmt) fragment.Fragment {
	return &fragment.Block{Stmts: []fragment.Fragment{
		&fragment.Raw{Text: "while :; do"},
		&fragment.Block{Indent: true, Stmts: []fragment.Fragment{t.translateBlock(s.Body)}},
		&fragment.Raw{Text: "done"},
	}}
}
