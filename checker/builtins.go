package checker

import (
	"fmt"

	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/diag"
	"github.com/amberc/amberc/types"
)

// fallibleBuiltins are the builtins that must be paired with a
// failure handler or the `trust` modifier.
var fallibleBuiltins = map[ast.Builtin]bool{
	ast.BuiltinCp: true,
	ast.BuiltinMv: true,
	ast.BuiltinRm: true,
	ast.BuiltinLs: true,
}

// builtinArg describes one positional argument of a builtin: its
// expected type, with a bool marking an optional trailing argument.
type builtinArg struct {
	Type     types.Type
	Optional bool
}

var builtinSigs = map[ast.Builtin][]builtinArg{
	ast.BuiltinCd:      {{Type: types.Text()}},
	ast.BuiltinCp:      {{Type: types.Text()}, {Type: types.Text()}, {Type: types.Bool(), Optional: true}},
	ast.BuiltinMv:      {{Type: types.Text()}, {Type: types.Text()}},
	ast.BuiltinRm:      {{Type: types.Text()}, {Type: types.Bool(), Optional: true}, {Type: types.Bool(), Optional: true}},
	ast.BuiltinLs:      {{Type: types.Text(), Optional: true}, {Type: types.Bool(), Optional: true}, {Type: types.Bool(), Optional: true}},
	ast.BuiltinTouch:   {{Type: types.Text()}},
	ast.BuiltinEcho:    {{Type: types.Generic()}},
	ast.BuiltinSleep:   {{Type: types.Num()}},
	ast.BuiltinWait:    {{Type: types.Array(types.Int())}},
	ast.BuiltinPid:     nil,
	ast.BuiltinPwd:     nil,
	ast.BuiltinClear:   nil,
	ast.BuiltinDisown:  {{Type: types.Int(), Optional: true}},
	ast.BuiltinExit:    {{Type: types.Int(), Optional: true}},
}

// builtinReturn is the type a builtin produces when used in expression
// position.
var builtinReturn = map[ast.Builtin]types.Type{
	ast.BuiltinPwd:  types.Text(),
	ast.BuiltinPid:  types.Int(),
	ast.BuiltinLs:   types.Array(types.Text()),
	ast.BuiltinWait: types.Null(),
}

func builtinName(b ast.Builtin) string {
	switch b {
	case ast.BuiltinCd:
		return "cd"
	case ast.BuiltinCp:
		return "cp"
	case ast.BuiltinMv:
		return "mv"
	case ast.BuiltinRm:
		return "rm"
	case ast.BuiltinLs:
		return "ls"
	case ast.BuiltinTouch:
		return "touch"
	case ast.BuiltinEcho:
		return "echo"
	case ast.BuiltinSleep:
		return "sleep"
	case ast.BuiltinWait:
		return "wait"
	case ast.BuiltinPid:
		return "pid"
	case ast.BuiltinPwd:
		return "pwd"
	case ast.BuiltinClear:
		return "clear"
	case ast.BuiltinDisown:
		return "disown"
	case ast.BuiltinExit:
		return "exit"
	default:
		return "?"
	}
}

func (c *Checker) checkBuiltinArgs(b ast.Builtin, args []ast.Expr, pos diag.Position) error {
	sig := builtinSigs[b]
	required := 0
	for _, a := range sig {
		if !a.Optional {
			required++
		}
	}
	if len(args) < required || len(args) > len(sig) {
		return diag.NewLoud(pos, fmt.Sprintf("%s() expects between %d and %d argument(s), got %d",
			builtinName(b), required, len(sig), len(args)), "")
	}
	for i, a := range args {
		if err := c.checkExpr(a); err != nil {
			return err
		}
		if !a.ExprType().IsAllowedIn(sig[i].Type) {
			return diag.NewLoud(a.Pos(), fmt.Sprintf("%s() argument %d must be %s, found %s",
				builtinName(b), i+1, sig[i].Type, a.ExprType()), "")
		}
	}
	return nil
}

// checkHandler typechecks a failure handler's body (if it has one) and
// enforces the handler requirement: cp/mv/rm/ls (and raw commands, see
// checkRawCommandStmt) must carry `?`, `failed{}`, `succeeded{}`,
// `exited{}`, or the `trust` modifier.
func (c *Checker) checkHandler(fallible bool, mods ast.Modifiers, h ast.FailureHandler, pos diag.Position, what string) error {
	if !fallible {
		return nil
	}
	if mods.Trust {
		return nil
	}
	if h.Kind == ast.HandlerNone {
		return diag.NewLoud(pos, fmt.Sprintf(
			"%s can fail; add `?`, a `failed`/`succeeded`/`exited` handler, or the `trust` modifier", what), "")
	}
	if len(h.Body) > 0 {
		return c.withScope(func() error { return c.checkStmts(h.Body) })
	}
	return nil
}

func (c *Checker) checkBuiltinCallStmt(s *ast.BuiltinCallStmt) error {
	if s.NoParens {
		c.Meta.Diags.Warn(false, s.Pos(), "calling `%s` without parentheses is deprecated; use `%s()`",
			builtinName(s.Builtin), builtinName(s.Builtin))
	}
	if err := c.checkBuiltinArgs(s.Builtin, s.Args, s.Pos()); err != nil {
		return err
	}
	if s.Builtin == ast.BuiltinLs && s.Modifiers.Silent {
		return diag.NewLoud(s.Pos(), "`silent` is rejected on `ls`: it writes its result to stdout", "")
	}
	return c.checkHandler(fallibleBuiltins[s.Builtin], s.Modifiers, s.Handler, s.Pos(),
		fmt.Sprintf("%s()", builtinName(s.Builtin)))
}

func (c *Checker) checkBuiltinCallExpr(e *ast.BuiltinCallExpr) error {
	if e.NoParens {
		c.Meta.Diags.Warn(false, e.Pos(), "calling `%s` without parentheses is deprecated; use `%s()`",
			builtinName(e.Builtin), builtinName(e.Builtin))
	}
	if err := c.checkBuiltinArgs(e.Builtin, e.Args, e.Pos()); err != nil {
		return err
	}
	if e.Builtin == ast.BuiltinLs && e.Modifiers.Silent {
		return diag.NewLoud(e.Pos(), "`silent` is rejected on `ls`: it writes its result to stdout", "")
	}
	if err := c.checkHandler(fallibleBuiltins[e.Builtin], e.Modifiers, e.Handler, e.Pos(),
		fmt.Sprintf("%s()", builtinName(e.Builtin))); err != nil {
		return err
	}
	ret, ok := builtinReturn[e.Builtin]
	if !ok {
		ret = types.Null()
	}
	ast.SetType(e, ret)
	return nil
}

func (c *Checker) checkRawCommandStmt(s *ast.RawCommandStmt) error {
	if err := c.checkExpr(s.Command); err != nil {
		return err
	}
	return c.checkHandler(true, s.Modifiers, s.Handler, s.Pos(), "this command")
}
