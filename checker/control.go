package checker

import (
	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/diag"
	"github.com/amberc/amberc/meta"
	"github.com/amberc/amberc/types"
)

type clauseInfo struct {
	Condition ast.Expr
	Body      []ast.Statement
}

// checkClauseChain typechecks a chain of (condition, body) clauses plus
// an optional trailing else, in the accumulating-negation style shared
// by IfStmt (condition + elsif*) and IfChainStmt: each subsequent
// condition is checked under the disjunction-of-negatives of every
// prior condition, and constant-branch elimination warns about (but
// still typechecks) any clause or else made unreachable by a prior
// always-true condition.
func (c *Checker) checkClauseChain(clauses []clauseInfo, elseBody []ast.Statement, hasElse bool, elsePos diag.Position) error {
	accumulatedNeg := Facts{}
	decided := false
	for _, cl := range clauses {
		if err := c.withNarrowedScope(accumulatedNeg, func() error {
			if err := c.checkExpr(cl.Condition); err != nil {
				return err
			}
			if cl.Condition.ExprType().Kind != types.KindBool {
				return diag.NewLoud(cl.Condition.Pos(), "condition must be Bool, found "+cl.Condition.ExprType().String(), "")
			}
			return nil
		}); err != nil {
			return err
		}

		if decided {
			c.Meta.Diags.Warn(c.Meta.Flags.AllowDeadCode, cl.Condition.Pos(),
				"unreachable branch: a prior condition is always true")
		}
		constVal := AnalyzeControlFlow(cl.Condition)
		if constVal != nil && !*constVal {
			c.Meta.Diags.Warn(c.Meta.Flags.AllowDeadCode, cl.Condition.Pos(),
				"dead code: this condition is always false")
		}

		pos, neg := computeFacts(cl.Condition)
		bodyFacts := unionFacts(accumulatedNeg, pos)
		if err := c.withScope(func() error {
			return c.withNarrowedScope(bodyFacts, func() error { return c.checkStmts(cl.Body) })
		}); err != nil {
			return err
		}

		if constVal != nil && *constVal {
			decided = true
		}
		accumulatedNeg = unionFacts(accumulatedNeg, neg)
	}

	if hasElse {
		if decided {
			c.Meta.Diags.Warn(c.Meta.Flags.AllowDeadCode, elsePos,
				"unreachable `else`: a prior condition is always true")
		}
		if err := c.withScope(func() error {
			return c.withNarrowedScope(accumulatedNeg, func() error { return c.checkStmts(elseBody) })
		}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkIfStmt(s *ast.IfStmt) error {
	clauses := make([]clauseInfo, 0, 1+len(s.ElsifClauses))
	clauses = append(clauses, clauseInfo{s.Condition, s.Body})
	for _, ec := range s.ElsifClauses {
		clauses = append(clauses, clauseInfo{ec.Condition, ec.Body})
	}
	if s.HasElse && len(s.ElseBody) == 1 {
		if nested, ok := s.ElseBody[0].(*ast.IfStmt); ok {
			c.Meta.Diags.Warn(c.Meta.Flags.AllowNestedIfElse, nested.Pos(),
				"nested if/else; consider an if-chain (`if { cond { } cond { } else { } }`)")
		}
	}
	return c.checkClauseChain(clauses, s.ElseBody, s.HasElse, s.Pos())
}

func (c *Checker) checkIfChainStmt(s *ast.IfChainStmt) error {
	clauses := make([]clauseInfo, 0, len(s.Clauses))
	for _, cl := range s.Clauses {
		clauses = append(clauses, clauseInfo{cl.Condition, cl.Body})
	}
	return c.checkClauseChain(clauses, s.ElseBody, s.HasElse, s.Pos())
}

func (c *Checker) checkRangeLoop(s *ast.RangeLoopStmt) error {
	if err := c.checkExpr(s.From); err != nil {
		return err
	}
	if err := c.checkExpr(s.To); err != nil {
		return err
	}
	if s.From.ExprType().Kind != types.KindInt || s.To.ExprType().Kind != types.KindInt {
		return diag.NewLoud(s.Pos(), "range loop bounds must be Int", "")
	}
	return c.withScope(func() error {
		gid := c.Meta.NextGlobalID()
		s.VarGlobalID = gid
		if err := c.Meta.Scopes.AddVar(&meta.VarDecl{Name: s.Var, Type: types.Int(), GlobalID: gid, Pos: s.Pos(), Used: true, Modified: true}); err != nil {
			return diag.NewLoud(s.Pos(), err.Error(), "")
		}
		if s.IndexVar != "" {
			igid := c.Meta.NextGlobalID()
			s.IdxGlobalID = igid
			if err := c.Meta.Scopes.AddVar(&meta.VarDecl{Name: s.IndexVar, Type: types.Int(), GlobalID: igid, Pos: s.Pos(), Used: true, Modified: true}); err != nil {
				return diag.NewLoud(s.Pos(), err.Error(), "")
			}
		}
		return c.withLoop(func() error { return c.checkStmts(s.Body) })
	})
}

func (c *Checker) checkIteratorLoop(s *ast.IteratorLoopStmt) error {
	if err := c.checkExpr(s.Collection); err != nil {
		return err
	}
	ct := s.Collection.ExprType()
	if ct.Kind != types.KindArray {
		return diag.NewLoud(s.Pos(), "iterator loop requires an array collection, found "+ct.String(), "")
	}
	return c.withScope(func() error {
		gid := c.Meta.NextGlobalID()
		s.VarGlobalID = gid
		if err := c.Meta.Scopes.AddVar(&meta.VarDecl{Name: s.Var, Type: *ct.Elem, GlobalID: gid, Pos: s.Pos(), Used: true, Modified: true}); err != nil {
			return diag.NewLoud(s.Pos(), err.Error(), "")
		}
		if s.IndexVar != "" {
			igid := c.Meta.NextGlobalID()
			s.IdxGlobalID = igid
			if err := c.Meta.Scopes.AddVar(&meta.VarDecl{Name: s.IndexVar, Type: types.Int(), GlobalID: igid, Pos: s.Pos(), Used: true, Modified: true}); err != nil {
				return diag.NewLoud(s.Pos(), err.Error(), "")
			}
		}
		return c.withLoop(func() error { return c.checkStmts(s.Body) })
	})
}

func (c *Checker) checkWhileLoop(s *ast.WhileLoopStmt) error {
	if err := c.checkExpr(s.Condition); err != nil {
		return err
	}
	if s.Condition.ExprType().Kind != types.KindBool {
		return diag.NewLoud(s.Pos(), "while condition must be Bool", "")
	}
	pos, _ := computeFacts(s.Condition)
	return c.withScope(func() error {
		return c.withNarrowedScope(pos, func() error {
			return c.withLoop(func() error { return c.checkStmts(s.Body) })
		})
	})
}

func (c *Checker) checkInfiniteLoop(s *ast.InfiniteLoopStmt) error {
	return c.withScope(func() error {
		return c.withLoop(func() error { return c.checkStmts(s.Body) })
	})
}
