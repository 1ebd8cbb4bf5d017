package translate

import (
	"fmt"
	"strings"

	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/fragment"
	"github.com/amberc/amberc/meta"
	"github.com/amberc/amberc/types"
)

// translateFuncVariants emits one bash function per monomorph
// registered for decl.ID.
func (t *Translator) translateFuncVariants(decl *ast.FuncDeclStmt) []fragment.Fragment {
	var out []fragment.Fragment
	for _, inst := range t.Meta.Funcs.Instances(decl.ID) {
		out = append(out, t.translateFuncVariant(decl, inst))
	}
	return out
}

func (t *Translator) translateFuncVariant(decl *ast.FuncDeclStmt, inst *meta.FuncInstance) fragment.Fragment {
	name := meta.MonomorphName("", decl.Name, decl.ID, inst.VariantID)
	body, ok := inst.TypedBody.([]ast.Statement)
	if !ok {
		body = decl.Body
	}

	return t.withFunc(func() fragment.Fragment {
		var params []fragment.Fragment
		for i, p := range decl.Params {
			if i >= len(inst.ArgGlobalIDs) {
				break
			}
			params = append(params, &fragment.VarStmt{
				Name: p.Name, GlobalID: inst.ArgGlobalIDs[i], Local: true,
				Value: &fragment.VarExpr{Name: fmt.Sprintf("%d", i+1), Render: fragment.ReadQuoted},
			})
		}
		// reset the shared return slot so a body that falls off the
		// end hands back an empty value, not a stale one.
		if inst.ReturnType.Kind != types.KindNull {
			params = append(params, &fragment.VarStmt{
				Name: "__ret", Type: inst.ReturnType,
				IsArray: inst.ReturnType.Kind == types.KindArray,
				Value:   &fragment.Raw{Text: ""},
			})
		}
		block := t.translateBlock(body)
		stmts := append(append([]fragment.Fragment(nil), params...), block)
		return &fragment.Block{Stmts: []fragment.Fragment{
			&fragment.Raw{Text: name + "() {"},
			&fragment.Block{Indent: true, Stmts: stmts},
			&fragment.Raw{Text: "}"},
		}}
	})
}

// translateFuncInvoke pushes the call itself (`funcname__id_vN "$a"
// "$b"`) onto the deferred queue so it runs as its own statement in
// the current shell — a `$( ... )` capture would lose any global
// mutations the body makes — then copies the callee's `__ret` value
// into a fresh variable and returns a read of that copy. The copy is
// immediate, so a later call clobbering `__ret` cannot race it; when
// the call's value is discarded (a standalone call statement) the
// unused copy is dead-store-eliminated while the queued call line
// survives.
func (t *Translator) translateFuncInvoke(e *ast.FuncInvokeExpr) fragment.Fragment {
	name := meta.MonomorphName("", e.Name, e.FuncID, e.VariantID)
	items := []fragment.Fragment{&fragment.Raw{Text: name}}
	for _, a := range e.Args {
		items = append(items, t.translateExpr(a))
	}
	t.push(&fragment.List{Items: items, Sep: " "})

	ret := e.ExprType()
	isArr := ret.Kind == types.KindArray
	val := fragment.Fragment(&fragment.Raw{Text: `"$__ret"`})
	if isArr {
		val = &fragment.Raw{Text: `"${__ret[@]}"`}
	}
	gid := t.Meta.NextGlobalID()
	copyName := "__ret_" + e.Name
	t.push(&fragment.VarStmt{
		Name: copyName, Type: ret, GlobalID: gid, Value: val,
		Local: t.inFunc, IsArray: isArr, OptimizeWhenUnused: true,
	})
	return &fragment.VarExpr{Name: copyName, Type: ret, GlobalID: gid, Render: fragment.ReadQuoted}
}

// translateMain compiles `main[(args)] { body }` to a `main() { ... }`
// function plus a trailing invocation passing "$@". args[0] is the
// positional-0 value, so the binding splices "$0" ahead of the
// forwarded positionals.
func (t *Translator) translateMain(s *ast.MainStmt) (fn fragment.Fragment, call fragment.Fragment) {
	fn = t.withFunc(func() fragment.Fragment {
		var stmts []fragment.Fragment
		if s.ArgsParam != "" {
			stmts = append(stmts, &fragment.VarStmt{
				Name: s.ArgsParam, GlobalID: s.ArgsGlobalID, Local: true, IsArray: true,
				Value: &fragment.Raw{Text: `"$0" "$@"`},
			})
		}
		stmts = append(stmts, t.translateBlock(s.Body))
		return &fragment.Block{Stmts: []fragment.Fragment{
			&fragment.Raw{Text: "main() {"},
			&fragment.Block{Indent: true, Stmts: stmts},
			&fragment.Raw{Text: "}"},
		}}
	})
	call = &fragment.Raw{Text: `main "$@"`}
	return fn, call
}

// translateTest compiles `test "name" { body }` to its own bash
// function invoked immediately, emitted only in TestMode (a test block
// has no runtime weight in a normal build). When Flags.TestName is
// set, any test whose name doesn't match is short-circuited to
// nothing.
func (t *Translator) translateTest(s *ast.TestStmt) fragment.Fragment {
	if !t.Meta.Flags.TestMode {
		return nil
	}
	if t.Meta.Flags.TestName != "" && !strings.Contains(s.Name, t.Meta.Flags.TestName) {
		return nil
	}
	t.testCount++
	name := fmt.Sprintf("__test_%d", t.testCount)
	return t.withFunc(func() fragment.Fragment {
		body := t.translateBlock(s.Body)
		return &fragment.Block{Stmts: []fragment.Fragment{
			&fragment.Comment{Text: "test: " + s.Name},
			&fragment.Raw{Text: name + "() {"},
			&fragment.Block{Indent: true, Stmts: []fragment.Fragment{body}},
			&fragment.Raw{Text: "}"},
			&fragment.Raw{Text: name},
		}}
	})
}

// translateReturn stores the return value in the shared `__ret`
// variable and returns 0; the call site copies `__ret` out immediately
// (see translateFuncInvoke).
func (t *Translator) translateReturn(s *ast.ReturnStmt) fragment.Fragment {
	if s.Value == nil {
		return &fragment.Raw{Text: "return"}
	}
	typ := s.Value.ExprType()
	set := &fragment.VarStmt{
		Name: "__ret", Type: typ, Value: t.translateExpr(s.Value),
		IsArray: typ.Kind == types.KindArray,
	}
	return &fragment.Block{Stmts: []fragment.Fragment{
		set,
		&fragment.Raw{Text: "return 0"},
	}}
}

// translateFail lowers `fail [expr]` to writing the failure value (if
// any) to stderr and returning a nonzero status; callers observe it
// through `?`/failed{}/succeeded{}/exited{} exactly like any other
// fallible command failure.
func (t *Translator) translateFail(s *ast.FailStmt) fragment.Fragment {
	if s.Value == nil {
		return &fragment.Raw{Text: "return 1"}
	}
	val := fragment.RenderInline(t.translateExpr(s.Value))
	return &fragment.Block{Stmts: []fragment.Fragment{
		&fragment.Raw{Text: fmt.Sprintf("printf '%%s\\n' %s >&2", val)},
		&fragment.Raw{Text: "return 1"},
	}}
}
