package fragment

import (
	"fmt"
	"strings"

	"github.com/amberc/amberc/types"
)

// Render renders f's full text form, the final step before a script
// is written out. Statement-shaped fragments
// (Block, VarStmt, Log, Comment, Empty) are rendered one per line with
// indentation tracking; everything else is rendered inline and written
// as a single line.
func Render(f Fragment) string {
	w := &shWriter{}
	renderNode(w, f)
	return w.String()
}

// RenderInline renders f as a bare expression fragment, with no
// trailing newline or statement-level line-writing — used by the
// translator to splice one fragment's text into another (e.g. an
// Arithmetic operand, a slice bound, an interpolable chunk).
func RenderInline(f Fragment) string { return renderInline(f) }

func renderNode(w *shWriter, f Fragment) {
	switch v := f.(type) {
	case *Block:
		renderBlockNode(w, v)
	case *VarStmt:
		w.Line("%s", renderVarStmt(v))
	case *Log:
		w.Line("%s", renderLog(v))
	case *Comment:
		w.Line("# %s", v.Text)
	case *Empty, nil:
		// renders nothing — no line, not even a blank one
	default:
		w.Line("%s", renderInline(f))
	}
}

func renderBlockNode(w *shWriter, b *Block) {
	if b.Wrap {
		w.Line("{")
	}
	if b.Wrap || b.Indent {
		w.Indent()
	}
	for _, s := range b.Stmts {
		renderNode(w, s)
	}
	if b.Wrap || b.Indent {
		w.Dedent()
	}
	if b.Wrap {
		w.Line("}")
	}
}

// renderInline renders any fragment as a single splice-able string,
// with no statement-level line breaks (Block becomes `; `-joined).
func renderInline(f Fragment) string {
	switch v := f.(type) {
	case nil:
		return ""
	case *Raw:
		if v.Quoted {
			return quoteLiteral(v.Text)
		}
		return v.Text
	case *Interpolable:
		return renderInterpolable(v)
	case *VarExpr:
		return renderVarExpr(v)
	case *VarStmt:
		return renderVarStmt(v)
	case *Arithmetic:
		return fmt.Sprintf("$(( %s %s %s ))", renderInline(v.Left), arithOpText[v.Op], renderInline(v.Right))
	case *Subprocess:
		body := renderInline(v.Body)
		if v.Quoted {
			return fmt.Sprintf("\"$(%s)\"", body)
		}
		return fmt.Sprintf("$(%s)", body)
	case *List:
		parts := make([]string, len(v.Items))
		for i, it := range v.Items {
			parts[i] = renderInline(it)
		}
		return strings.Join(parts, v.Sep)
	case *Comment:
		return "# " + v.Text
	case *Log:
		return renderLog(v)
	case *Block:
		lines := make([]string, 0, len(v.Stmts))
		for _, s := range v.Stmts {
			if _, ok := s.(*Empty); ok {
				continue
			}
			lines = append(lines, renderInline(s))
		}
		return strings.Join(lines, "; ")
	case *Empty:
		return ""
	default:
		return ""
	}
}

// escapeQuoted escapes text for placement between double quotes:
// backslashes, double quotes, and the shell's expansion triggers
// (`$`, backtick).
func escapeQuoted(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, `"`, `\"`)
	text = strings.ReplaceAll(text, "$", `\$`)
	text = strings.ReplaceAll(text, "`", "\\`")
	return text
}

// quoteLiteral wraps text in "…", escaping per the Interpolable
// StringLiteral render rule.
func quoteLiteral(text string) string {
	return `"` + escapeQuoted(text) + `"`
}

func renderInterpolable(v *Interpolable) string {
	quoted := v.Render == RenderStringLiteral || v.Render == RenderBashDoubleQuoted
	var body strings.Builder
	for i, s := range v.Strings {
		if quoted {
			s = escapeQuoted(s)
		}
		body.WriteString(s)
		if i < len(v.Interps) {
			if quoted {
				body.WriteString(renderForSplice(v.Interps[i]))
			} else {
				body.WriteString(renderInline(v.Interps[i]))
			}
		}
	}
	if v.Render == RenderStringLiteral {
		return `"` + body.String() + `"`
	}
	return body.String()
}

// renderForSplice renders an interpolation operand for placement
// inside an already-double-quoted string: the operand's own outer
// quotes are dropped so its value stays within the enclosing pair
// (a quoted splice would push the expansion outside the quotes and
// word-split it), and a plain scalar read becomes ${name} so adjacent
// literal text cannot extend the variable name.
func renderForSplice(f Fragment) string {
	switch v := f.(type) {
	case *Raw:
		if v.Quoted {
			return escapeQuoted(v.Text)
		}
		return v.Text
	case *VarExpr:
		if v.Render == NameOf {
			return renderVarExpr(v)
		}
		if v.Render == ArrayToString {
			return fmt.Sprintf("${%s[*]}", renderedName(v.Name, v.GlobalID))
		}
		nv := *v
		nv.Render = ReadUnquoted
		out := renderVarExpr(&nv)
		if name := renderedName(v.Name, v.GlobalID); out == "$"+name {
			return "${" + name + "}"
		}
		return out
	case *Subprocess:
		nv := *v
		nv.Quoted = false
		return renderInline(&nv)
	case *Interpolable:
		nv := *v
		nv.Render = RenderBashDoubleQuoted
		return renderInterpolable(&nv)
	default:
		return renderInline(f)
	}
}

func renderedName(name string, globalID int) string {
	if globalID == 0 {
		return name
	}
	return fmt.Sprintf("%s__%d", name, globalID)
}

func quoteIf(body string, quoted bool) string {
	if quoted {
		return `"` + body + `"`
	}
	return body
}

// renderVarExpr implements the VarExpr rendering table.
func renderVarExpr(v *VarExpr) string {
	name := renderedName(v.Name, v.GlobalID)
	if v.Render == NameOf {
		return name
	}
	isArray := v.Type.Kind == types.KindArray

	if v.Slice != nil {
		from := renderInline(v.Slice.From)
		to := renderInline(v.Slice.To)
		length := to + " - " + from
		if v.Slice.Inclusive {
			length += " + 1"
		}
		body := fmt.Sprintf("${%s[@]:%s:%s}", name, from, length)
		return quoteIf(body, v.Render == ReadQuoted)
	}

	if v.Index != nil {
		idx := renderInline(v.Index)
		body := fmt.Sprintf("${%s[%s]}", name, idx)
		return quoteIf(body, v.Render == ReadQuoted)
	}

	if isArray {
		sigil := "@"
		if v.Render == ArrayToString {
			sigil = "*"
		}
		body := fmt.Sprintf("${%s[%s]}", name, sigil)
		return quoteIf(body, v.Render == ReadQuoted || v.Render == ArrayToString)
	}

	if v.Default != nil {
		def := renderInline(v.Default)
		body := fmt.Sprintf("${%s:-%s}", name, def)
		return quoteIf(body, v.Render == ReadQuoted)
	}

	if v.Render == ReadQuoted {
		return fmt.Sprintf("\"$%s\"", name)
	}
	return "$" + name
}

// renderVarStmt implements the VarStmt rendering table.
func renderVarStmt(v *VarStmt) string {
	name := renderedName(v.Name, v.GlobalID)
	prefix := ""
	switch {
	case v.Ref:
		prefix = "declare -n "
	case v.Local:
		prefix = "local "
	}
	val := renderInline(v.Value)
	if v.IsArray {
		return fmt.Sprintf("%s%s=(%s)", prefix, name, val)
	}
	return fmt.Sprintf("%s%s=%s", prefix, name, val)
}

// looksLikePrintf implements the Log builtin's printf-vs-echo
// heuristic: printf is used for anything whose content is not a safe
// static literal for echo — a Text or Text[] variable, any dynamic
// (non-literal) interpolable, or a literal that starts with `-` and so
// would be swallowed as a flag by echo.
func looksLikePrintf(f Fragment) bool {
	switch v := f.(type) {
	case *VarExpr:
		if v.Type.Kind == types.KindText {
			return true
		}
		if v.Type.Kind == types.KindArray && v.Type.Elem != nil && v.Type.Elem.Kind == types.KindText {
			return true
		}
		return false
	case *Interpolable:
		if len(v.Strings) > 0 && (v.Strings[0] == "" || strings.HasPrefix(v.Strings[0], "-")) {
			return true
		}
		return len(v.Interps) > 0
	case *Raw:
		return v.Quoted && (v.Text == "" || strings.HasPrefix(v.Text, "-"))
	default:
		return false
	}
}

func renderLog(l *Log) string {
	val := renderInline(l.Value)
	if looksLikePrintf(l.Value) {
		return fmt.Sprintf("printf '%%s\\n' %s", val)
	}
	return fmt.Sprintf("echo %s", val)
}
