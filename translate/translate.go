// Package translate lowers the typed AST into Fragment IR: statement
// and expression translation, the deferred-statement queue that lets
// expression-level side effects hoist above the statement that
// triggered them, control-flow lowering, and the builtin command
// translations.
package translate

import (
	"fmt"

	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/fragment"
	"github.com/amberc/amberc/meta"
	"github.com/amberc/amberc/types"
)

// Translator threads the deferred-statement queue and the scoped
// command-modifier flags through one compile's translate
// pass. Unlike the Checker it does not return errors: by the time a
// node reaches translate, typecheck has already proven it well-formed.
type Translator struct {
	Meta *meta.Metadata

	queue     []fragment.Fragment
	inFunc    bool
	testCount int

	sudo, silent, suppress, trust bool
}

// New returns a Translator over m.
func New(m *meta.Metadata) *Translator { return &Translator{Meta: m} }

func (t *Translator) push(f fragment.Fragment) { t.queue = append(t.queue, f) }

// withStmtQueue runs build (which may call t.push for any expression-
// level setup it needs), then wraps the fragment build returned with
// whatever was deferred during it, draining the queue back to its
// prior depth so an outer caller's own drain doesn't see it twice.
func (t *Translator) withStmtQueue(build func() fragment.Fragment) fragment.Fragment {
	before := len(t.queue)
	body := build()
	deferred := append([]fragment.Fragment(nil), t.queue[before:]...)
	t.queue = t.queue[:before]
	if len(deferred) == 0 {
		return body
	}
	return &fragment.Block{Stmts: append(deferred, body)}
}

// Program translates prog into a single root fragment.
// Function declarations are emitted once per monomorphized variant
// registered in Meta.Funcs; `main` compiles to a function plus a
// trailing call; imports and plain comments/doc-comments at top level
// have no own statement (comments still render).
func (t *Translator) Program(prog *ast.Program) fragment.Fragment {
	var out []fragment.Fragment
	var mainCall fragment.Fragment

	for _, s := range prog.Statements {
		switch st := s.(type) {
		case *ast.FuncDeclStmt:
			out = append(out, t.translateFuncVariants(st)...)
		case *ast.MainStmt:
			fn, call := t.translateMain(st)
			out = append(out, fn)
			mainCall = call
		case *ast.TestStmt:
			if frag := t.translateTest(st); frag != nil {
				out = append(out, frag)
			}
		case *ast.ImportStmt:
			// no runtime representation: imported symbols were copied
			// into the importing file's scope at typecheck time.
		case *ast.CommentStmt:
			out = append(out, &fragment.Comment{Text: st.Text})
		case *ast.DocCommentStmt:
			// doc comments are extracted by package doc, not emitted.
		default:
			out = append(out, t.translateStmt(s))
		}
	}

	if mainCall != nil {
		out = append(out, mainCall)
	}
	if t.Meta.Flags.TestMode {
		out = append(out, &fragment.Raw{Text: `printf "Succeeded\n"`})
	}
	return &fragment.Block{Stmts: out}
}

func (t *Translator) translateBlock(stmts []ast.Statement) *fragment.Block {
	out := make([]fragment.Fragment, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, t.translateStmt(s))
	}
	return &fragment.Block{Stmts: out}
}

// translateStmt is the total statement dispatch, with the deferred
// queue drained at every statement boundary: anything an expression
// pushed while translating statement S renders immediately before S.
func (t *Translator) translateStmt(s ast.Statement) fragment.Fragment {
	return t.withStmtQueue(func() fragment.Fragment { return t.translateStmtInner(s) })
}

func (t *Translator) translateStmtInner(s ast.Statement) fragment.Fragment {
	switch st := s.(type) {
	case *ast.VarInitStmt:
		return t.translateVarInit(st)
	case *ast.DestructInitStmt:
		return t.translateDestructInit(st)
	case *ast.VarSetStmt:
		return t.translateVarSet(st)
	case *ast.DestructSetStmt:
		return t.translateDestructSet(st)
	case *ast.IndexSetStmt:
		return t.translateIndexSet(st)
	case *ast.ArithShorthandStmt:
		return t.translateArithShorthand(st)
	case *ast.IfStmt:
		return t.translateIfStmt(st)
	case *ast.IfChainStmt:
		return t.translateIfChainStmt(st)
	case *ast.RangeLoopStmt:
		return t.translateRangeLoop(st)
	case *ast.IteratorLoopStmt:
		return t.translateIteratorLoop(st)
	case *ast.WhileLoopStmt:
		return t.translateWhileLoop(st)
	case *ast.InfiniteLoopStmt:
		return t.translateInfiniteLoop(st)
	case *ast.BreakStmt:
		return &fragment.Raw{Text: "break"}
	case *ast.ContinueStmt:
		return &fragment.Raw{Text: "continue"}
	case *ast.FuncDeclStmt:
		// A nested function declaration inside a function/loop body:
		// the source grammar only allows fun at any statement position,
		// but monomorphization always instantiates from the top-level
		// FuncCache, so nothing further renders at the nested site.
		return &fragment.Empty{}
	case *ast.ReturnStmt:
		return t.translateReturn(st)
	case *ast.FailStmt:
		return t.translateFail(st)
	case *ast.ImportStmt:
		return &fragment.Empty{}
	case *ast.MainStmt:
		fn, call := t.translateMain(st)
		return &fragment.Block{Stmts: []fragment.Fragment{fn, call}}
	case *ast.TestStmt:
		if frag := t.translateTest(st); frag != nil {
			return frag
		}
		return &fragment.Empty{}
	case *ast.BuiltinCallStmt:
		return t.translateBuiltinCallStmt(st)
	case *ast.RawCommandStmt:
		return t.translateRawCommandStmt(st)
	case *ast.ExprStmt:
		// evaluated for any deferred setup it pushes; the standalone
		// expression value itself is discarded.
		t.translateExpr(st.Expression)
		return &fragment.Empty{}
	case *ast.CommentStmt:
		return &fragment.Comment{Text: st.Text}
	case *ast.DocCommentStmt:
		return &fragment.Empty{}
	default:
		panic(fmt.Sprintf("translate: unhandled statement variant %T", s))
	}
}

func (t *Translator) withFunc(fn func() fragment.Fragment) fragment.Fragment {
	was := t.inFunc
	t.inFunc = true
	defer func() { t.inFunc = was }()
	return fn()
}

// freshTemp allocates a fresh global id and pushes an ephemeral VarStmt
// named prefix__<id> holding value, returning a plain-read VarExpr for
// it. Array-typed values take the `name=( ... )` assignment shape.
func (t *Translator) freshTemp(prefix string, typ types.Type, value fragment.Fragment) *fragment.VarExpr {
	gid := t.Meta.NextGlobalID()
	t.push(&fragment.VarStmt{
		Name: prefix, Type: typ, Value: value, GlobalID: gid,
		Local: t.inFunc, IsArray: typ.Kind == types.KindArray,
		Ephemeral: true, OptimizeWhenUnused: true,
	})
	return &fragment.VarExpr{Name: prefix, Type: typ, GlobalID: gid, Render: fragment.ReadQuoted}
}

// freshPinned is freshTemp without the optimizer opt-in, for temps the
// emitted script references through raw text the optimizer's
// reference count cannot see — removing or inlining them would orphan
// those references.
func (t *Translator) freshPinned(prefix string, typ types.Type, value fragment.Fragment) *fragment.VarExpr {
	gid := t.Meta.NextGlobalID()
	t.push(&fragment.VarStmt{
		Name: prefix, Type: typ, Value: value, GlobalID: gid,
		Local: t.inFunc, IsArray: typ.Kind == types.KindArray,
	})
	return &fragment.VarExpr{Name: prefix, Type: typ, GlobalID: gid, Render: fragment.ReadQuoted}
}
