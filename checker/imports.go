package checker

import (
	"fmt"

	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/diag"
	"github.com/amberc/amberc/meta"
)

// checkImport implements import handling: global-scope-only, a
// circular-import guard, compile-once caching, Star/Items selection
// with aliasing, and transitive `pub import` re-export propagation.
func (c *Checker) checkImport(s *ast.ImportStmt) error {
	base := c.fileBaseDepth
	if base == 0 {
		base = 1
	}
	if c.Meta.Scopes.Depth() != base {
		return diag.NewLoud(s.Pos(), "`import` is only allowed at global scope", "")
	}
	if c.Resolver == nil {
		return diag.NewLoud(s.Pos(), "imports are not supported in this compile context", "")
	}
	if err := c.Meta.Imports.Enter(s.Path); err != nil {
		return diag.NewLoud(s.Pos(), err.Error(), "")
	}
	defer c.Meta.Imports.Exit()

	cached, ok := c.Meta.Imports.Get(s.Path)
	if !ok {
		var err error
		cached, err = c.compileImport(s.Path)
		if err != nil {
			return diag.NewLoud(s.Pos(), fmt.Sprintf("cannot import %q: %v", s.Path, err), "")
		}
		c.Meta.Imports.Put(cached)
	}

	if !s.Star && len(s.Items) == 0 {
		c.Meta.Diags.Warn(false, s.Pos(), "empty import of %q", s.Path)
		return nil
	}

	// brought maps each newly-bound local name to the Export it came
	// from, so a `pub import` can re-classify var vs func below.
	brought := map[string]*meta.Export{}
	if s.Star {
		for name, exp := range cached.Exports {
			if err := c.bringIn(name, exp, s.Pos()); err != nil {
				return err
			}
			brought[name] = exp
		}
	} else {
		for _, item := range s.Items {
			exp, ok := cached.Exports[item.Name]
			if !ok {
				return diag.NewLoud(s.Pos(), fmt.Sprintf("%q is not exported by %q", item.Name, s.Path), "")
			}
			target := item.Name
			if item.Alias != "" {
				target = item.Alias
			}
			if err := c.bringIn(target, exp, s.Pos()); err != nil {
				return err
			}
			brought[target] = exp
		}
	}

	if s.Public {
		for name, exp := range brought {
			if exp.IsFunc {
				c.Meta.Ctx.PubFuncs[name] = true
			} else {
				c.Meta.Ctx.PubVars[name] = true
			}
		}
	}
	return nil
}

func (c *Checker) bringIn(name string, exp *meta.Export, pos diag.Position) error {
	if exp.IsFunc {
		sig := *exp.FuncSig
		sig.Name = name
		if err := c.Meta.Scopes.AddFunc(&sig); err != nil {
			return diag.NewLoud(pos, err.Error(), "")
		}
		if c.importedDecls != nil {
			if decl, ok := c.importedDecls[exp.FuncSig.ID]; ok {
				if c.funcDecls == nil {
					c.funcDecls = map[int]*ast.FuncDeclStmt{}
				}
				c.funcDecls[sig.ID] = decl
			}
		}
		return nil
	}
	vd := exp.VarType
	vd.Name = name
	vd.GlobalID = c.Meta.NextGlobalID()
	vd.Used = false
	vd.Modified = false
	if err := c.Meta.Scopes.AddVar(&vd); err != nil {
		return diag.NewLoud(pos, err.Error(), "")
	}
	return nil
}

// compileImport parses path via the injected Resolver and typechecks it
// in a fresh scope layer of the *same* shared Checker/Metadata, so cross-file function ids and monomorph instances
// resolve uniformly. Afterward it collects the file's pub vars/funcs —
// which, because PubVars/PubFuncs are reset to a fresh map per file and
// populated by the very same checkImport logic recursively, already
// includes anything that file itself re-exported via `pub import *`.
func (c *Checker) compileImport(path string) (*meta.ImportedFile, error) {
	prog, err := c.Resolver.Resolve(path)
	if err != nil {
		return nil, err
	}

	c.Meta.Scopes.Push()
	savedPubVars, savedPubFuncs := c.Meta.Ctx.PubVars, c.Meta.Ctx.PubFuncs
	savedFile := c.Meta.Ctx.File
	savedBase := c.fileBaseDepth
	c.Meta.Ctx.PubVars = map[string]bool{}
	c.Meta.Ctx.PubFuncs = map[string]bool{}
	// the resolved filename, so the imported file's own relative
	// imports resolve against its directory.
	c.Meta.Ctx.File = prog.SourceFile
	if c.Meta.Ctx.File == "" {
		c.Meta.Ctx.File = path
	}
	c.fileBaseDepth = c.Meta.Scopes.Depth()

	checkErr := c.checkStmts(prog.Statements)
	pubVars, pubFuncs := c.Meta.Ctx.PubVars, c.Meta.Ctx.PubFuncs
	vars, funcs := c.Meta.Scopes.TopDecls()

	c.Meta.Scopes.Pop()
	c.Meta.Ctx.PubVars, c.Meta.Ctx.PubFuncs = savedPubVars, savedPubFuncs
	c.Meta.Ctx.File = savedFile
	c.fileBaseDepth = savedBase

	if checkErr != nil {
		return nil, checkErr
	}

	localVar := map[string]*meta.VarDecl{}
	for _, v := range vars {
		localVar[v.Name] = v
	}
	localFunc := map[string]*meta.FuncSig{}
	for _, f := range funcs {
		localFunc[f.Name] = f
		if decl, ok := c.funcDecls[f.ID]; ok {
			if c.importedDecls == nil {
				c.importedDecls = map[int]*ast.FuncDeclStmt{}
			}
			c.importedDecls[f.ID] = decl
		}
	}

	out := &meta.ImportedFile{Path: path, Exports: map[string]*meta.Export{}}
	for name := range pubVars {
		if vd, ok := localVar[name]; ok {
			out.Exports[name] = &meta.Export{Name: name, VarType: *vd}
			continue
		}
		// transitively re-exported: the var isn't declared in this
		// file, so it must have arrived via this file's own import
		// and been forwarded with `pub import`.
		if exp := findExportAnywhere(c, name, false); exp != nil {
			out.Exports[name] = &meta.Export{Name: name, VarType: exp.VarType, ReExported: true}
		}
	}
	for name := range pubFuncs {
		if sig, ok := localFunc[name]; ok {
			out.Exports[name] = &meta.Export{Name: name, IsFunc: true, FuncSig: sig}
			continue
		}
		if exp := findExportAnywhere(c, name, true); exp != nil {
			out.Exports[name] = &meta.Export{Name: name, IsFunc: true, FuncSig: exp.FuncSig, ReExported: true}
		}
	}
	return out, nil
}

// findExportAnywhere looks across every previously compiled import for
// a name exported as a func (or var), supporting transitive re-export
// chains longer than one hop.
func findExportAnywhere(c *Checker, name string, wantFunc bool) *meta.Export {
	for _, f := range c.Meta.Imports.All() {
		if exp, ok := f.Exports[name]; ok && exp.IsFunc == wantFunc {
			return exp
		}
	}
	return nil
}
