// Package doc extracts documentation attached to function and variable
// declarations: a run of consecutive `///` lines immediately preceding
// a `fun` or `let`/`const`. Blank lines do not break the run (the lexer
// emits no token for them); any other statement in between does.
package doc

import (
	"strings"

	"github.com/amberc/amberc/ast"
)

// Entry is one documented declaration: its name, the doc text (doc
// comment lines joined with newlines, `///` prefix stripped), and
// whether it documents a function or a variable.
type Entry struct {
	Name     string
	Text     string
	IsFunc   bool
	Exported bool
}

// Extract walks prog's top-level statements and attaches any run of
// consecutive DocCommentStmt nodes to the FuncDeclStmt/VarInitStmt that
// immediately follows it, with no statement (not even a blank
// CommentStmt) intervening.
func Extract(prog *ast.Program) []Entry {
	var out []Entry
	var pending []string

	flush := func() { pending = nil }

	for _, s := range prog.Statements {
		switch st := s.(type) {
		case *ast.DocCommentStmt:
			pending = append(pending, strings.TrimPrefix(strings.TrimPrefix(st.Text, "///"), " "))
		case *ast.FuncDeclStmt:
			if len(pending) > 0 {
				out = append(out, Entry{
					Name:     st.Name,
					Text:     strings.Join(pending, "\n"),
					IsFunc:   true,
					Exported: st.Public,
				})
			}
			flush()
		case *ast.VarInitStmt:
			if len(pending) > 0 {
				out = append(out, Entry{
					Name:     st.Name,
					Text:     strings.Join(pending, "\n"),
					IsFunc:   false,
					Exported: st.Public,
				})
			}
			flush()
		default:
			// any other statement breaks adjacency: a pending doc run
			// that isn't immediately followed by a declaration is
			// dropped.
			flush()
		}
	}
	return out
}

// Format renders entries as a flat Markdown document, one section per
// declaration, in source order.
func Format(entries []Entry) string {
	var sb strings.Builder
	sb.WriteString("# Documentation\n\n")
	for _, e := range entries {
		kind := "var"
		if e.IsFunc {
			kind = "fun"
		}
		vis := ""
		if e.Exported {
			vis = "pub "
		}
		sb.WriteString("## " + vis + kind + " " + e.Name + "\n\n")
		if e.Text != "" {
			sb.WriteString(e.Text + "\n\n")
		}
	}
	return sb.String()
}
