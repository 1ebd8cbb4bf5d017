package meta

import "github.com/amberc/amberc/diag"

// Context carries the current compile context: the file being
// compiled, whether a function variant body is being checked (set
// during monomorphization), and the names this file exports as pub.
// The import trace lives in ImportCache.
type Context struct {
	File     string
	InFunc   bool
	PubVars  map[string]bool // names exported pub from this file
	PubFuncs map[string]bool
}

// Metadata is everything the typechecker threads through a single
// compile.
type Metadata struct {
	Scopes   *Stack
	Narrow   *NarrowStack
	Funcs    *FuncCache
	Imports  *ImportCache
	Diags    *diag.Bag
	Flags    diag.Flags
	Ctx      Context
	TestNames map[string]bool

	globalID int
}

// New returns a fresh Metadata for compiling file with the given flags.
func New(file string, flags diag.Flags) *Metadata {
	return &Metadata{
		Scopes:    NewStack(),
		Narrow:    NewNarrowStack(),
		Funcs:     NewFuncCache(),
		Imports:   NewImportCache(),
		Diags:     &diag.Bag{Flags: flags},
		Flags:     flags,
		Ctx:       Context{File: file, PubVars: map[string]bool{}, PubFuncs: map[string]bool{}},
		TestNames: map[string]bool{},
	}
}

// NextGlobalID issues the next process-unique variable/iterator id.
func (m *Metadata) NextGlobalID() int {
	m.globalID++
	return m.globalID
}
