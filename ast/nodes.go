// Package ast defines the statement and expression node types that make
// up the source language's abstract syntax tree. Nodes are
// plain tagged structs; the parser fills Position, and the checker
// (package checker) fills Type/GlobalID/VariantID fields in place as it
// walks.
package ast

import (
	"github.com/amberc/amberc/diag"
	"github.com/amberc/amberc/types"
)

// Node is the root interface implemented by every AST node.
type Node interface {
	node()
}

// Statement is implemented by every statement variant. Pos returns
// the statement's source position for diagnostics.
type Statement interface {
	Node
	stmt()
	Pos() diag.Position
}

// Expr is implemented by every expression variant. Each expression
// carries an output Type filled by typecheck, and a source position.
type Expr interface {
	Node
	expr()
	Pos() diag.Position
	// ExprType returns the type typecheck filled in; zero Type before
	// typecheck has run.
	ExprType() types.Type
	setType(types.Type)
}

// SetType fills e's inferred type. Exported free function (rather than
// an interface setter alone) so checker code reads uniformly:
// ast.SetType(e, t).
func SetType(e Expr, t types.Type) { e.setType(t) }

// Base embeds into every statement for shared position bookkeeping.
type Base struct {
	Position diag.Position
}

func (b Base) Pos() diag.Position { return b.Position }

// ExprBase embeds into every expression for shared position + type
// bookkeeping.
type ExprBase struct {
	Position diag.Position
	Type     types.Type
}

func (b ExprBase) Pos() diag.Position        { return b.Position }
func (b ExprBase) ExprType() types.Type      { return b.Type }
func (b *ExprBase) setType(t types.Type)     { b.Type = t }

// Program is the root node: an ordered list of top-level statements.
type Program struct {
	Statements []Statement
	SourceFile string
}

func (p *Program) node() {}

// ---- Statements -----------------------------------------------------

// VarInitStmt is `let`/`const` name [: Type] = expr.
type VarInitStmt struct {
	Base
	Name    string
	Declared *types.Type // nil if untyped (inferred from Value)
	Value   Expr
	Const   bool
	Public  bool
	GlobalID int // filled by checker
}

func (*VarInitStmt) node() {}
func (*VarInitStmt) stmt() {}

// DestructInitStmt is `let [a, b, ...] = expr`.
type DestructInitStmt struct {
	Base
	Names    []string
	Value    Expr
	GlobalIDs []int // filled by checker, one per name
}

func (*DestructInitStmt) node() {}
func (*DestructInitStmt) stmt() {}

// VarSetStmt is `name = expr` (reassignment of an existing binding).
type VarSetStmt struct {
	Base
	Name     string
	Value    Expr
	GlobalID int
}

func (*VarSetStmt) node() {}
func (*VarSetStmt) stmt() {}

// DestructSetStmt is `[a, b] = expr` (reassignment form of destructuring).
type DestructSetStmt struct {
	Base
	Names     []string
	Value     Expr
	GlobalIDs []int
}

func (*DestructSetStmt) node() {}
func (*DestructSetStmt) stmt() {}

// IndexSetStmt is `name[index] = expr`.
type IndexSetStmt struct {
	Base
	Name     string
	Index    Expr
	Value    Expr
	GlobalID int
}

func (*IndexSetStmt) node() {}
func (*IndexSetStmt) stmt() {}

// ArithShorthandOp enumerates the five arithmetic shorthand operators:
// += -= *= /= %=.
type ArithShorthandOp int

const (
	ShorthandAdd ArithShorthandOp = iota
	ShorthandSub
	ShorthandMul
	ShorthandDiv
	ShorthandMod
)

// ArithShorthandStmt is `name OP= expr` for OP in {+,-,*,/,%}.
type ArithShorthandStmt struct {
	Base
	Name     string
	Op       ArithShorthandOp
	Value    Expr
	GlobalID int
}

func (*ArithShorthandStmt) node() {}
func (*ArithShorthandStmt) stmt() {}

// ElsifClause is one elsif branch of an IfStmt.
type ElsifClause struct {
	Condition Expr
	Body      []Statement
}

// IfStmt is the single-condition if/elsif*/else form.
type IfStmt struct {
	Base
	Condition    Expr
	Body         []Statement
	ElsifClauses []ElsifClause
	ElseBody     []Statement
	HasElse      bool
}

func (*IfStmt) node() {}
func (*IfStmt) stmt() {}

// IfChainClause is one `cond { body }` arm of an if-chain.
type IfChainClause struct {
	Condition Expr
	Body      []Statement
}

// IfChainStmt is the brace-delimited multi-condition form:
// `if { c1 {...} c2 {...} else {...} }`.
type IfChainStmt struct {
	Base
	Clauses  []IfChainClause
	ElseBody []Statement
	HasElse  bool
}

func (*IfChainStmt) node() {}
func (*IfChainStmt) stmt() {}

// LoopKind distinguishes the three for-loop forms plus while/infinite.
type LoopKind int

const (
	LoopInfinite LoopKind = iota
	LoopRange
	LoopIterator
	LoopWhile
)

// RangeLoopStmt is `for i[, idx] in from..to` / `from..<to`.
type RangeLoopStmt struct {
	Base
	Var         string
	IndexVar    string // optional second binding
	From, To    Expr
	Inclusive   bool // "..=" rather than ".."/"..<"
	Body        []Statement
	VarGlobalID int
	IdxGlobalID int // only meaningful if IndexVar != ""
}

func (*RangeLoopStmt) node() {}
func (*RangeLoopStmt) stmt() {}

// IteratorLoopStmt is `for x[, idx] in array { ... }`.
type IteratorLoopStmt struct {
	Base
	Var         string
	IndexVar    string
	Collection  Expr
	Body        []Statement
	VarGlobalID int
	IdxGlobalID int
}

func (*IteratorLoopStmt) node() {}
func (*IteratorLoopStmt) stmt() {}

// WhileLoopStmt is `while cond { ... }`.
type WhileLoopStmt struct {
	Base
	Condition Expr
	Body      []Statement
}

func (*WhileLoopStmt) node() {}
func (*WhileLoopStmt) stmt() {}

// InfiniteLoopStmt is `loop { ... }`.
type InfiniteLoopStmt struct {
	Base
	Body []Statement
}

func (*InfiniteLoopStmt) node() {}
func (*InfiniteLoopStmt) stmt() {}

// BreakStmt is `break`.
type BreakStmt struct{ Base }

func (*BreakStmt) node() {}
func (*BreakStmt) stmt() {}

// ContinueStmt is `continue`.
type ContinueStmt struct{ Base }

func (*ContinueStmt) node() {}
func (*ContinueStmt) stmt() {}

// Param is a function parameter: name and declared type (Generic for
// an untyped/generic parameter).
type Param struct {
	Name string
	Type types.Type
}

// FuncDeclStmt is `fun name(params) [: Type] { body }`. Body holds the
// declaration's statement list; monomorphization clones and
// re-typechecks it per concrete argument-type tuple.
type FuncDeclStmt struct {
	Base
	Name       string
	Params     []Param
	ReturnType *types.Type // nil if inferred
	Body       []Statement
	Public     bool
	ID         int // unique function id, filled by checker
}

func (*FuncDeclStmt) node() {}
func (*FuncDeclStmt) stmt() {}

// ReturnStmt is `return [expr]`.
type ReturnStmt struct {
	Base
	Value Expr // nil for bare return
}

func (*ReturnStmt) node() {}
func (*ReturnStmt) stmt() {}

// FailStmt is `fail [expr]`, the structured-failure-handling exit.
type FailStmt struct {
	Base
	Value Expr // nil for bare fail
}

func (*FailStmt) node() {}
func (*FailStmt) stmt() {}

// ImportItem is one `name [as alias]` selector in `import { ... }`.
type ImportItem struct {
	Name  string
	Alias string // "" if not renamed
}

// ImportStmt is `[pub] import "path" [as *|{ items }]`.
type ImportStmt struct {
	Base
	Path    string
	Star    bool // import *
	Items   []ImportItem
	Public  bool
}

func (*ImportStmt) node() {}
func (*ImportStmt) stmt() {}

// MainStmt is `main[(args)] { body }`, the program entry point.
type MainStmt struct {
	Base
	ArgsParam      string // "" if main takes no args
	Body           []Statement
	ArgsGlobalID   int // filled by checker when ArgsParam != ""
}

func (*MainStmt) node() {}
func (*MainStmt) stmt() {}

// TestStmt is `test "name" { body }`.
type TestStmt struct {
	Base
	Name string
	Body []Statement
}

func (*TestStmt) node() {}
func (*TestStmt) stmt() {}

// Builtin enumerates the fixed builtin set.
type Builtin int

const (
	BuiltinCd Builtin = iota
	BuiltinCp
	BuiltinMv
	BuiltinRm
	BuiltinLs
	BuiltinTouch
	BuiltinEcho
	BuiltinSleep
	BuiltinWait
	BuiltinPid
	BuiltinPwd
	BuiltinClear
	BuiltinDisown
	BuiltinExit
)

// FailureHandlerKind enumerates the ways a fallible builtin/raw command
// invocation may be paired with failure handling.
type FailureHandlerKind int

const (
	HandlerNone FailureHandlerKind = iota
	HandlerPropagate                  // `?`
	HandlerFailed                     // `failed { ... }`
	HandlerSucceeded                  // `succeeded { ... }`
	HandlerExited                     // `exited { ... }`
)

// FailureHandler attaches to a fallible builtin/raw-command statement.
type FailureHandler struct {
	Kind FailureHandlerKind
	Body []Statement // empty for HandlerPropagate/HandlerNone
}

// Modifiers are the command modifier flags: sudo, silent, suppress,
// trust.
type Modifiers struct {
	Sudo     bool
	Silent   bool
	Suppress bool
	Trust    bool
}

// BuiltinCallStmt is a fallible filesystem/process builtin invocation
// used as a statement, e.g. `rm("/tmp/x")?`.
type BuiltinCallStmt struct {
	Base
	Builtin   Builtin
	Args      []Expr
	Modifiers Modifiers
	Handler   FailureHandler
	NoParens  bool // deprecated call form `pwd` instead of `pwd()`
}

func (*BuiltinCallStmt) node() {}
func (*BuiltinCallStmt) stmt() {}

// RawCommandStmt is a bare shell command invocation, e.g. `` `ls -l` ``
// used as a statement.
type RawCommandStmt struct {
	Base
	Command   Expr // interpolable text
	Modifiers Modifiers
	Handler   FailureHandler
}

func (*RawCommandStmt) node() {}
func (*RawCommandStmt) stmt() {}

// ExprStmt is a standalone expression statement (its value is
// discarded at runtime; translate still emits any deferred setup).
type ExprStmt struct {
	Base
	Expression Expr
}

func (*ExprStmt) node() {}
func (*ExprStmt) stmt() {}

// CommentStmt is a `// ...` line comment standing alone as a statement.
type CommentStmt struct {
	Base
	Text string
}

func (*CommentStmt) node() {}
func (*CommentStmt) stmt() {}

// DocCommentStmt is a `/// ...` doc comment attached to the following
// declaration.
type DocCommentStmt struct {
	Base
	Text string
}

func (*DocCommentStmt) node() {}
func (*DocCommentStmt) stmt() {}

// ---- Expressions ------------------------------------------------------

// BoolLit is a boolean literal.
type BoolLit struct {
	ExprBase
	Value bool
}

func (*BoolLit) node() {}
func (*BoolLit) expr() {}

// IntLit is an integer literal.
type IntLit struct {
	ExprBase
	Value string
}

func (*IntLit) node() {}
func (*IntLit) expr() {}

// NumLit is a floating-point literal.
type NumLit struct {
	ExprBase
	Value string
}

func (*NumLit) node() {}
func (*NumLit) expr() {}

// TextChunk is either a literal string segment or an interpolated
// expression within a TextLit.
type TextChunk struct {
	Literal string
	Interp  Expr // nil if this chunk is a literal segment
}

// TextLit is a text (string) literal, possibly interpolated:
// `"hello {name}"` lexes to chunks ["hello ", Interp(name)].
type TextLit struct {
	ExprBase
	Chunks []TextChunk
}

func (*TextLit) node() {}
func (*TextLit) expr() {}

// NullLit is the `null` literal.
type NullLit struct{ ExprBase }

func (*NullLit) node() {}
func (*NullLit) expr() {}

// StatusLit is the `status` builtin expression reading the last
// command's exit status.
type StatusLit struct{ ExprBase }

func (*StatusLit) node() {}
func (*StatusLit) expr() {}

// ArrayLit is `[elem, ...]`.
type ArrayLit struct {
	ExprBase
	Elements []Expr
}

func (*ArrayLit) node() {}
func (*ArrayLit) expr() {}

// VarGetExpr is a variable reference.
type VarGetExpr struct {
	ExprBase
	Name     string
	GlobalID int
}

func (*VarGetExpr) node() {}
func (*VarGetExpr) expr() {}

// ParenExpr is `(expr)`.
type ParenExpr struct {
	ExprBase
	Inner Expr
}

func (*ParenExpr) node() {}
func (*ParenExpr) expr() {}

// ArithOp enumerates add/sub/mul/div/mod/range.
type ArithOp int

const (
	ArithAdd ArithOp = iota
	ArithSub
	ArithMul
	ArithDiv
	ArithMod
	ArithRange
)

// ArithBinExpr is a binary arithmetic expression. Inclusive only applies
// when Op is ArithRange, and is set for `..=`; `..` and `..<` are both
// exclusive.
type ArithBinExpr struct {
	ExprBase
	Op          ArithOp
	Left, Right Expr
	Inclusive   bool
}

func (*ArithBinExpr) node() {}
func (*ArithBinExpr) expr() {}

// LogicOp enumerates and/or.
type LogicOp int

const (
	LogicAnd LogicOp = iota
	LogicOr
)

// LogicBinExpr is a logical and/or expression.
type LogicBinExpr struct {
	ExprBase
	Op          LogicOp
	Left, Right Expr
}

func (*LogicBinExpr) node() {}
func (*LogicBinExpr) expr() {}

// NotExpr is logical negation: `not expr`.
type NotExpr struct {
	ExprBase
	Operand Expr
}

func (*NotExpr) node() {}
func (*NotExpr) expr() {}

// NegExpr is arithmetic negation: `-expr`.
type NegExpr struct {
	ExprBase
	Operand Expr
}

func (*NegExpr) node() {}
func (*NegExpr) expr() {}

// CompareOp enumerates eq/neq/lt/le/gt/ge.
type CompareOp int

const (
	CmpEq CompareOp = iota
	CmpNeq
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

// CompareExpr is a comparison expression.
type CompareExpr struct {
	ExprBase
	Op          CompareOp
	Left, Right Expr
}

func (*CompareExpr) node() {}
func (*CompareExpr) expr() {}

// CastExpr is `expr as Type`.
type CastExpr struct {
	ExprBase
	Operand Expr
	Target  types.Type
}

func (*CastExpr) node() {}
func (*CastExpr) expr() {}

// IsTestExpr is `expr is Type`, the narrowing-producing test.
type IsTestExpr struct {
	ExprBase
	Operand Expr
	Target  types.Type
}

func (*IsTestExpr) node() {}
func (*IsTestExpr) expr() {}

// TernaryExpr is `cond then thenExpr else elseExpr`.
type TernaryExpr struct {
	ExprBase
	Condition        Expr
	ThenExpr, ElseExpr Expr
}

func (*TernaryExpr) node() {}
func (*TernaryExpr) expr() {}

// FuncInvokeExpr is a call to a user-defined or builtin-expression
// function, e.g. `foo(a, b)`. VariantID is filled by monomorphization.
type FuncInvokeExpr struct {
	ExprBase
	Name      string
	Args      []Expr
	FuncID    int
	VariantID int
}

func (*FuncInvokeExpr) node() {}
func (*FuncInvokeExpr) expr() {}

// CommandInvokeExpr is a raw shell command used as an expression
// (captured via subprocess substitution), e.g. `` `echo hi` ``.
type CommandInvokeExpr struct {
	ExprBase
	Command   Expr // interpolable text
	Modifiers Modifiers
}

func (*CommandInvokeExpr) node() {}
func (*CommandInvokeExpr) expr() {}

// LengthExpr is `len(expr)`.
type LengthExpr struct {
	ExprBase
	Operand Expr
}

func (*LengthExpr) node() {}
func (*LengthExpr) expr() {}

// NameOfExpr is `nameof(expr)`. ResolvedFunc is filled by the checker
// when the operand names a function rather than a variable: the
// monomorphized emission name of the function's declared-signature
// variant.
type NameOfExpr struct {
	ExprBase
	Operand      Expr
	ResolvedFunc string
}

func (*NameOfExpr) node() {}
func (*NameOfExpr) expr() {}

// AccessExpr is `obj[index]` or `obj[from..to]` (indexing/slicing).
type AccessExpr struct {
	ExprBase
	Object Expr
	Index  Expr // set for a single index
	// Slice range, set instead of Index for `obj[from..to]`.
	SliceFrom, SliceTo Expr
	SliceInclusive     bool
	IsSlice            bool
}

func (*AccessExpr) node() {}
func (*AccessExpr) expr() {}

// BuiltinCallExpr is a fallible builtin used in expression position
// where its return value is consumed (e.g. `ls()` bound to a variable).
type BuiltinCallExpr struct {
	ExprBase
	Builtin   Builtin
	Args      []Expr
	Modifiers Modifiers
	Handler   FailureHandler
	NoParens  bool // deprecated call form `pwd` instead of `pwd()`
}

func (*BuiltinCallExpr) node() {}
func (*BuiltinCallExpr) expr() {}
