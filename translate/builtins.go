package translate

import (
	"fmt"

	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/fragment"
	"github.com/amberc/amberc/types"
)

// commandLine renders one shell command word list: sudo prefix, the
// command name and its already-translated argument words, then the
// silent/suppress redirection suffixes.
func (t *Translator) commandLine(name string, args ...string) string {
	line := t.sudoPrefix() + name
	for _, a := range args {
		if a == "" {
			continue
		}
		line += " " + a
	}
	return line + t.suppressSuffix() + t.silentSuffix()
}

// emitFallible wraps one command line with the __status capture and
// failure-handler lowering shared by every fallible builtin and raw
// command invocation: the command always runs, its
// status is captured into the shared __status variable, and the
// handler decides what (if anything) runs next. NoProc+Trust skips the
// capture line entirely since nothing downstream can observe it.
func (t *Translator) emitFallible(cmd string, h ast.FailureHandler, fallible bool) fragment.Fragment {
	var out []fragment.Fragment
	out = append(out, &fragment.Raw{Text: cmd})
	if !fallible {
		return &fragment.Block{Stmts: out}
	}
	if t.Meta.Flags.NoProc && t.trust {
		return &fragment.Block{Stmts: out}
	}
	out = append(out, &fragment.Raw{Text: `__status=$?`})
	switch h.Kind {
	case ast.HandlerPropagate:
		// `return` only exists inside a function; a top-level `?`
		// aborts the script instead.
		prop := "return $__status"
		if !t.inFunc {
			prop = "exit $__status"
		}
		out = append(out, &fragment.Block{Stmts: []fragment.Fragment{
			&fragment.Raw{Text: `if [ "$__status" -ne 0 ]; then`},
			&fragment.Block{Indent: true, Stmts: []fragment.Fragment{&fragment.Raw{Text: prop}}},
			&fragment.Raw{Text: "fi"},
		}})
	case ast.HandlerFailed:
		out = append(out, t.wrapHandlerBody(`[ "$__status" -ne 0 ]`, h.Body))
	case ast.HandlerSucceeded:
		out = append(out, t.wrapHandlerBody(`[ "$__status" -eq 0 ]`, h.Body))
	case ast.HandlerExited:
		out = append(out, t.translateBlock(h.Body))
	}
	return &fragment.Block{Stmts: out}
}

func (t *Translator) wrapHandlerBody(cond string, body []ast.Statement) fragment.Fragment {
	return &fragment.Block{Stmts: []fragment.Fragment{
		&fragment.Raw{Text: "if " + cond + "; then"},
		&fragment.Block{Indent: true, Stmts: []fragment.Fragment{t.translateBlock(body)}},
		&fragment.Raw{Text: "fi"},
	}}
}

func (t *Translator) translateBuiltinCallStmt(s *ast.BuiltinCallStmt) fragment.Fragment {
	return t.withModifiers(s.Modifiers, func() fragment.Fragment {
		// echo(v) lowers to Log, which picks echo or printf '%s\n' at
		// render time based on the value's shape.
		if s.Builtin == ast.BuiltinEcho {
			return &fragment.Log{Value: t.translateExpr(s.Args[0])}
		}
		cmd, fallible := t.builtinCommand(s.Builtin, s.Args, nil)
		return t.emitFallible(cmd, s.Handler, fallible)
	})
}

func (t *Translator) translateBuiltinCallExpr(e *ast.BuiltinCallExpr) fragment.Fragment {
	return t.withModifiers(e.Modifiers, func() fragment.Fragment {
		cmd, fallible := t.builtinCommand(e.Builtin, e.Args, nil)
		// Expression-position fallible builtins (ls() bound to a
		// variable) push their statement form into the deferred queue
		// and read the result back out as a temp.
		switch e.Builtin {
		case ast.BuiltinLs:
			gid := t.Meta.NextGlobalID()
			readArr := renderedBare("__ls", gid)
			full := fmt.Sprintf(`IFS=$'\n' read -rd '' -a %s < <(%s && printf '\0')`, readArr, cmd)
			t.push(t.emitFallible(full, e.Handler, fallible))
			return &fragment.VarExpr{Name: "__ls", GlobalID: gid, Type: e.ExprType(), Render: fragment.ReadQuoted}
		case ast.BuiltinPwd:
			// reads "$PWD" into a fresh ephemeral; single-use reads
			// inline straight back to a $PWD read in the optimizer
			// pass. A VarExpr (not a Raw) so the inlined value still
			// renders correctly inside an interpolation splice.
			return t.freshTemp("__pwd", types.Text(),
				&fragment.VarExpr{Name: "PWD", Type: types.Text(), Render: fragment.ReadQuoted})
		case ast.BuiltinPid:
			// captures $! (the last background pid) at statement time so
			// later background jobs can't race the read.
			return t.freshTemp("__pid", types.Int(), &fragment.Raw{Text: "$!"})
		default:
			t.push(t.emitFallible(cmd, e.Handler, fallible))
			return &fragment.Raw{Text: "", Quoted: true}
		}
	})
}

// builtinCommand renders the argv for one builtin. The fallible four
// (cp/mv/rm/ls) carry fixed flag ordering; the rest are plain
// one-word translations.
func (t *Translator) builtinCommand(b ast.Builtin, args []ast.Expr, _ any) (cmd string, fallible bool) {
	w := func(i int) string {
		if i >= len(args) {
			return ""
		}
		return fragment.RenderInline(t.translateExpr(args[i]))
	}
	switch b {
	case ast.BuiltinCd:
		return t.commandLine("cd", w(0)) + " || exit", false
	case ast.BuiltinCp:
		force := ""
		if len(args) > 2 {
			force = fmt.Sprintf(`$( [ $(( %s )) -ne 0 ] && printf -- -f )`, fragment.RenderInline(t.translateBool(args[2])))
		}
		return t.commandLine("cp", "-r", force, w(0), w(1)), true
	case ast.BuiltinMv:
		return t.commandLine("mv", w(0), w(1)), true
	case ast.BuiltinRm:
		flags := ""
		if len(args) > 1 {
			flags += fmt.Sprintf(`$( [ $(( %s )) -ne 0 ] && printf -- -f )`, fragment.RenderInline(t.translateBool(args[1])))
		}
		if len(args) > 2 {
			flags += fmt.Sprintf(` $( [ $(( %s )) -ne 0 ] && printf -- -r )`, fragment.RenderInline(t.translateBool(args[2])))
		}
		return t.commandLine("rm", flags, w(0)), true
	case ast.BuiltinLs:
		flags := "-1"
		if len(args) > 1 {
			flags += fmt.Sprintf(` $( [ $(( %s )) -ne 0 ] && printf -- -A )`, fragment.RenderInline(t.translateBool(args[1])))
		}
		if len(args) > 2 {
			flags += fmt.Sprintf(` $( [ $(( %s )) -ne 0 ] && printf -- -R )`, fragment.RenderInline(t.translateBool(args[2])))
		}
		return t.commandLine("ls", flags, w(0)), true
	case ast.BuiltinTouch:
		return t.commandLine("touch", w(0)), false
	case ast.BuiltinEcho:
		return t.commandLine("echo", w(0)), false
	case ast.BuiltinSleep:
		return t.commandLine("sleep", w(0)), false
	case ast.BuiltinWait:
		return t.commandLine("wait", w(0)), false
	case ast.BuiltinPid:
		return "$BASHPID", false
	case ast.BuiltinPwd:
		return t.commandLine("pwd"), false
	case ast.BuiltinClear:
		return t.commandLine("clear"), false
	case ast.BuiltinDisown:
		return t.commandLine("disown", w(0)), false
	case ast.BuiltinExit:
		code := w(0)
		if code == "" {
			code = "0"
		}
		return t.commandLine("exit", code), false
	default:
		return "", false
	}
}

func (t *Translator) translateRawCommandStmt(s *ast.RawCommandStmt) fragment.Fragment {
	return t.withModifiers(s.Modifiers, func() fragment.Fragment {
		cmd := fragment.RenderInline(t.translateCommandText(s.Command))
		return t.emitFallible(t.sudoPrefix()+cmd+t.suppressSuffix()+t.silentSuffix(), s.Handler, true)
	})
}
