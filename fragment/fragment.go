// Package fragment implements the Bash-emission intermediate
// representation: a tagged union of fragment nodes plus a renderer
// with indentation and quoting rules.
package fragment

import "github.com/amberc/amberc/types"

// Fragment is the root interface every IR node implements.
type Fragment interface {
	fragment()
}

// VarExprRender selects how a VarExpr reads its variable.
type VarExprRender int

const (
	// ReadQuoted renders a double-quoted read: "$name" / "${name[@]}".
	ReadQuoted VarExprRender = iota
	// ReadUnquoted renders a bare read: $name — used inside arithmetic
	// and `[[ ]]`/`(( ))` contexts where quoting is unnecessary.
	ReadUnquoted
	// NameOf renders the literal variable name with no sigil at all.
	NameOf
	// ArrayToString renders "${name[*]}" (space-joined) instead of
	// "${name[@]}", for string-interpolation context
	// (ShellCheck SC2145-safe).
	ArrayToString
)

// SliceRange is an inclusive-or-exclusive `[from..to]` bound pair.
type SliceRange struct {
	From, To  Fragment
	Inclusive bool
}

// VarExpr is a read of a variable: name, type, optional
// index (an integer fragment, a slice range, or nothing), optional
// default value, and a render mode.
type VarExpr struct {
	Name     string
	Type     types.Type
	GlobalID int // 0 means unrenamed (no __<id> suffix)
	Index    Fragment    // set for a single-index read
	Slice    *SliceRange // set for a slice read
	Default  Fragment    // set if the read should fall back via ${name:-default}
	Render   VarExprRender
}

func (*VarExpr) fragment() {}

// VarStmt is a variable assignment statement: name, type,
// value, and the local/ref/ephemeral/optimize-when-unused flags the
// optimizer and translator consult.
type VarStmt struct {
	Name     string
	Type     types.Type
	Value    Fragment
	GlobalID int

	Local  bool // `local name=...` inside a function body
	Ref    bool // `declare -n name=...` (by-reference alias)
	IsArray bool // value renders as name=( ... ) rather than name=...

	// Ephemeral marks this VarStmt as an inlining candidate for the
	// optimizer: single-use, pure, autogenerated temp.
	Ephemeral bool
	// OptimizeWhenUnused, if false, keeps this VarStmt even with zero
	// references (destructure scratch arrays rely on this).
	OptimizeWhenUnused bool
}

func (*VarStmt) fragment() {}

// Raw is literal text, optionally double-quoted.
type Raw struct {
	Text   string
	Quoted bool
}

func (*Raw) fragment() {}

// InterpolableRender selects how an Interpolable's surrounding quoting
// renders.
type InterpolableRender int

const (
	// RenderStringLiteral wraps the whole splice in "…", escaping
	// inner double quotes and backslashes.
	RenderStringLiteral InterpolableRender = iota
	// RenderBashDoubleQuoted behaves like RenderStringLiteral but is
	// used where the splice sits inside an already-double-quoted
	// shell construct (no additional wrapping quotes are added).
	RenderBashDoubleQuoted
	// RenderUnquoted leaves the splice bare (e.g. inside `$(( ))`).
	RenderUnquoted
)

// Interpolable is an interleaved string/expression splice: literal
// text chunks (Strings) alternating with expression fragments
// (Interps), len(Strings) == len(Interps)+1.
type Interpolable struct {
	Strings []string
	Interps []Fragment
	Render  InterpolableRender
}

func (*Interpolable) fragment() {}

// ArithOp enumerates the operators `$(( … ))` supports.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNeq
	OpAnd
	OpOr
	OpShl
	OpShr
	OpBitAnd
	OpBitOr
	OpBitXor
)

var arithOpText = map[ArithOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=", OpEq: "==", OpNeq: "!=",
	OpAnd: "&&", OpOr: "||", OpShl: "<<", OpShr: ">>",
	OpBitAnd: "&", OpBitOr: "|", OpBitXor: "^",
}

// Arithmetic is a binary `$(( a OP b ))` expression.
type Arithmetic struct {
	Left, Right Fragment
	Op          ArithOp
}

func (*Arithmetic) fragment() {}

// Subprocess is a `$( … )` command-substitution capture, optionally
// wrapped in double quotes.
type Subprocess struct {
	Body   Fragment
	Quoted bool
}

func (*Subprocess) fragment() {}

// Block is an ordered sequence of fragments, one per line, optionally
// brace-wrapped (`{ ...; }`) and/or indented. Wrap implies Indent;
// control-flow bodies set Indent alone and rely on sibling Raw lines
// (`if ...; then` / `fi`, `for ...; do` / `done`) for their own
// keywords, since Bash spells each compound statement's delimiters
// differently.
type Block struct {
	Stmts  []Fragment
	Wrap   bool
	Indent bool
}

func (*Block) fragment() {}

// List is a sequence of fragments joined by a separator on one line.
type List struct {
	Items []Fragment
	Sep   string
}

func (*List) fragment() {}

// Comment is a literal `# ...` comment line.
type Comment struct {
	Text string
}

func (*Comment) fragment() {}

// Log is an echo-or-printf print statement; the render chooses between
// `echo` and `printf '%s\n'` based on the value's shape.
type Log struct {
	Value Fragment
}

func (*Log) fragment() {}

// Empty renders nothing (a blank line is not emitted for it). Used by
// the translator for statements with no output of their own (such as
// discarded expression statements) and by the optimizer to blank out
// removed VarStmts in place.
type Empty struct{}

func (*Empty) fragment() {}
