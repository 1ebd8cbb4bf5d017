package ast

// AnalyzeControlFlow is the constant-branch-elimination predicate:
// non-nil true/false when the condition's truth value is statically
// known, nil otherwise. e must already be typechecked (ExprType
// filled). The checker uses it to warn on dead branches; the
// translator uses it to elide them from the emitted script.
func AnalyzeControlFlow(e Expr) *bool {
	switch ex := e.(type) {
	case *BoolLit:
		v := ex.Value
		return &v
	case *LogicBinExpr:
		a := AnalyzeControlFlow(ex.Left)
		b := AnalyzeControlFlow(ex.Right)
		if ex.Op == LogicAnd {
			if a != nil && !*a {
				return boolPtr(false)
			}
			if b != nil && !*b {
				return boolPtr(false)
			}
			if a != nil && b != nil {
				return boolPtr(*a && *b)
			}
			return nil
		}
		if a != nil && *a {
			return boolPtr(true)
		}
		if b != nil && *b {
			return boolPtr(true)
		}
		if a != nil && b != nil {
			return boolPtr(*a || *b)
		}
		return nil
	case *NotExpr:
		a := AnalyzeControlFlow(ex.Operand)
		if a == nil {
			return nil
		}
		return boolPtr(!*a)
	case *IsTestExpr:
		declared := ex.Operand.ExprType()
		if declared.Equal(ex.Target) {
			return boolPtr(true)
		}
		if !declared.CanIntersect(ex.Target) {
			return boolPtr(false)
		}
		return nil
	case *ParenExpr:
		return AnalyzeControlFlow(ex.Inner)
	default:
		return nil
	}
}

func boolPtr(b bool) *bool { return &b }
