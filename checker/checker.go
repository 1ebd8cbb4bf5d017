// Package checker implements the typechecker visitor: identifier
// resolution, flow-sensitive narrowing via `is`, constant-branch
// elimination, monomorphization of generic functions, destructuring,
// imports, and the fallible-builtin failure-handler requirement.
package checker

import (
	"fmt"

	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/diag"
	"github.com/amberc/amberc/meta"
	"github.com/amberc/amberc/types"
)

// Resolver parses an imported file by path into its AST, without
// typechecking it. Typechecking of imports is driven by the same
// Checker instance that requested the import (see imports.go's
// compileImport), so the function cache, import cache, and global id
// counter stay process-wide for the whole compile. Resolver
// is implemented by main.go's importResolver (which calls the
// parser), injected here to avoid a checker->parser import cycle and
// to let tests stub imports trivially.
type Resolver interface {
	Resolve(path string) (*ast.Program, error)
}

// Checker threads a Metadata instance plus per-compile traversal
// state: current function return type (for `return` checks and
// inference), loop depth (for break/continue), and the declaration
// bodies monomorphization re-typechecks per variant.
type Checker struct {
	Meta     *meta.Metadata
	Resolver Resolver

	loopDepth   int
	funcReturns []*funcReturnCtx
	funcDecls   map[int]*ast.FuncDeclStmt

	// fileBaseDepth is the scope-stack depth of the current file's own
	// global scope: 1 for the entry file, deeper for imports, which
	// compile inside a pushed scope layer (see compileImport). The
	// import-only-at-global-scope check compares against this, not
	// against absolute depth 1.
	fileBaseDepth int

	// importedDecls records, per function id, the declaration body of
	// a function pulled in from another file, so a second file that
	// imports the same function by re-export can still monomorphize
	// against its real body.
	importedDecls map[int]*ast.FuncDeclStmt
}

type funcReturnCtx struct {
	declared  *types.Type // nil if inferred
	inferred  types.Type
	hasReturn bool
}

// New returns a Checker over m. resolver may be nil if the program has
// no imports.
func New(m *meta.Metadata, resolver Resolver) *Checker {
	return &Checker{Meta: m, Resolver: resolver}
}

// CheckProgram typechecks every top-level statement of prog in source
// order. A pre-walk rejects duplicate or nested `main` blocks
// before per-statement checking starts: main compiles to a fixed
// function name plus a trailing call, so a second one would clobber
// the first in the emitted script.
func (c *Checker) CheckProgram(prog *ast.Program) error {
	var mains []*ast.MainStmt
	ast.WalkStmts(prog.Statements, func(s ast.Statement) {
		if m, ok := s.(*ast.MainStmt); ok {
			mains = append(mains, m)
		}
	})
	if len(mains) > 1 {
		return diag.NewLoud(mains[1].Pos(), "only one `main` block is allowed per program", "")
	}
	if len(mains) == 1 {
		found := false
		for _, s := range prog.Statements {
			if s == ast.Statement(mains[0]) {
				found = true
				break
			}
		}
		if !found {
			return diag.NewLoud(mains[0].Pos(), "`main` is only allowed at the top level", "")
		}
	}
	return c.checkStmts(prog.Statements)
}

func (c *Checker) checkStmts(stmts []ast.Statement) error {
	for _, s := range stmts {
		if err := c.checkStmt(s); err != nil {
			return err
		}
	}
	return nil
}

// checkStmt is the total statement dispatch: every statement variant is handled explicitly,
// with no default case silently swallowing an unrecognized one.
func (c *Checker) checkStmt(s ast.Statement) error {
	switch st := s.(type) {
	case *ast.VarInitStmt:
		return c.checkVarInit(st)
	case *ast.DestructInitStmt:
		return c.checkDestructInit(st)
	case *ast.VarSetStmt:
		return c.checkVarSet(st)
	case *ast.DestructSetStmt:
		return c.checkDestructSet(st)
	case *ast.IndexSetStmt:
		return c.checkIndexSet(st)
	case *ast.ArithShorthandStmt:
		return c.checkArithShorthand(st)
	case *ast.IfStmt:
		return c.checkIfStmt(st)
	case *ast.IfChainStmt:
		return c.checkIfChainStmt(st)
	case *ast.RangeLoopStmt:
		return c.checkRangeLoop(st)
	case *ast.IteratorLoopStmt:
		return c.checkIteratorLoop(st)
	case *ast.WhileLoopStmt:
		return c.checkWhileLoop(st)
	case *ast.InfiniteLoopStmt:
		return c.checkInfiniteLoop(st)
	case *ast.BreakStmt:
		return c.checkLoopControl(st.Pos(), "break")
	case *ast.ContinueStmt:
		return c.checkLoopControl(st.Pos(), "continue")
	case *ast.FuncDeclStmt:
		return c.checkFuncDecl(st)
	case *ast.ReturnStmt:
		return c.checkReturn(st)
	case *ast.FailStmt:
		return c.checkFail(st)
	case *ast.ImportStmt:
		return c.checkImport(st)
	case *ast.MainStmt:
		return c.checkMain(st)
	case *ast.TestStmt:
		return c.checkTest(st)
	case *ast.BuiltinCallStmt:
		return c.checkBuiltinCallStmt(st)
	case *ast.RawCommandStmt:
		return c.checkRawCommandStmt(st)
	case *ast.ExprStmt:
		return c.checkExpr(st.Expression)
	case *ast.CommentStmt:
		return nil
	case *ast.DocCommentStmt:
		return nil
	default:
		panic(fmt.Sprintf("checker: unhandled statement variant %T", s))
	}
}

func (c *Checker) checkLoopControl(pos diag.Position, kind string) error {
	if c.loopDepth == 0 {
		return diag.NewLoud(pos, fmt.Sprintf("`%s` used outside of a loop", kind), "")
	}
	return nil
}

func (c *Checker) withScope(fn func() error) error {
	c.Meta.Scopes.Push()
	defer func() {
		unused, unmodified := c.Meta.Scopes.UnusedUnmodified()
		for _, v := range unused {
			c.Meta.Diags.Warn(c.Meta.Flags.AllowDeadCode, v.Pos, "variable %q is never used", v.Name)
		}
		for _, v := range unmodified {
			c.Meta.Diags.Warn(c.Meta.Flags.AllowDeadCode, v.Pos, "variable %q is never modified; consider `const`", v.Name)
		}
		c.Meta.Scopes.Pop()
	}()
	return fn()
}

func (c *Checker) withLoop(fn func() error) error {
	c.loopDepth++
	defer func() { c.loopDepth-- }()
	return fn()
}
