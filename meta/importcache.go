package meta

import "fmt"

// ImportedFile caches the result of compiling one imported file once:
// its path and its exported pub functions and variables (each Export
// records whether it arrived through a `pub import`).
type ImportedFile struct {
	Path    string
	Exports map[string]*Export
}

// Export is one exported name: its kind (func or var) and whether the
// import that brought it in was itself `pub` (for transitive
// re-export through `pub import *`).
type Export struct {
	Name       string
	IsFunc     bool
	FuncSig    *FuncSig
	VarType    VarDecl // reused for var exports (Type/Const/Public fields)
	ReExported bool    // true if this export arrived via a `pub import`
}

// ImportCache memoizes compiled imports by path and guards against
// circular import edges.
type ImportCache struct {
	files map[string]*ImportedFile
	stack []string // current import trace, for cycle detection
}

// NewImportCache returns an empty import cache.
func NewImportCache() *ImportCache {
	return &ImportCache{files: make(map[string]*ImportedFile)}
}

// Get returns the cached compilation of path, if any.
func (c *ImportCache) Get(path string) (*ImportedFile, bool) {
	f, ok := c.files[path]
	return f, ok
}

// Put records a newly compiled import.
func (c *ImportCache) Put(f *ImportedFile) {
	c.files[f.Path] = f
}

// Enter pushes path onto the import trace, failing loudly if doing so
// would close a cycle. Callers must call Exit on every
// return path, including error returns.
func (c *ImportCache) Enter(path string) error {
	for _, p := range c.stack {
		if p == path {
			return fmt.Errorf("circular import: %s", cycleDescription(c.stack, path))
		}
	}
	c.stack = append(c.stack, path)
	return nil
}

// Exit pops the most recently entered path.
func (c *ImportCache) Exit() {
	c.stack = c.stack[:len(c.stack)-1]
}

// All returns every import compiled so far, for resolving a function
// or variable export that was transitively re-exported through more
// than one file.
func (c *ImportCache) All() []*ImportedFile {
	out := make([]*ImportedFile, 0, len(c.files))
	for _, f := range c.files {
		out = append(out, f)
	}
	return out
}

func cycleDescription(stack []string, closing string) string {
	s := ""
	for _, p := range stack {
		s += p + " -> "
	}
	return s + closing
}
