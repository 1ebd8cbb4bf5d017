// Package optimize implements the two fragment-tree passes that clean
// the emitted script: dead-store elimination for zero-reference
// VarStmts, and single-use ephemeral inlining. Both are single,
// fixed-point-free walks — they do not re-run after rewriting.
package optimize

import "github.com/amberc/amberc/fragment"

// Optimize runs both passes in order and returns the (possibly
// rewritten) root fragment.
func Optimize(root fragment.Fragment) fragment.Fragment {
	DeadStoreElimination(root)
	return EphemeralInlining(root)
}

func children(f fragment.Fragment) []fragment.Fragment {
	switch v := f.(type) {
	case *fragment.Interpolable:
		return v.Interps
	case *fragment.VarExpr:
		var cs []fragment.Fragment
		if v.Index != nil {
			cs = append(cs, v.Index)
		}
		if v.Slice != nil {
			cs = append(cs, v.Slice.From, v.Slice.To)
		}
		if v.Default != nil {
			cs = append(cs, v.Default)
		}
		return cs
	case *fragment.VarStmt:
		return []fragment.Fragment{v.Value}
	case *fragment.Arithmetic:
		return []fragment.Fragment{v.Left, v.Right}
	case *fragment.Subprocess:
		return []fragment.Fragment{v.Body}
	case *fragment.Block:
		return v.Stmts
	case *fragment.List:
		return v.Items
	case *fragment.Log:
		return []fragment.Fragment{v.Value}
	default:
		return nil
	}
}

func walk(f fragment.Fragment, visit func(fragment.Fragment)) {
	if f == nil {
		return
	}
	visit(f)
	for _, c := range children(f) {
		walk(c, visit)
	}
}

func allBlocks(root fragment.Fragment) []*fragment.Block {
	var out []*fragment.Block
	walk(root, func(f fragment.Fragment) {
		if b, ok := f.(*fragment.Block); ok {
			out = append(out, b)
		}
	})
	return out
}

// CountRefs counts VarExpr occurrences in root, keyed by GlobalID
// (0 is never counted — it marks an unrenamed, non-tracked read).
func CountRefs(root fragment.Fragment) map[int]int {
	counts := map[int]int{}
	walk(root, func(f fragment.Fragment) {
		if v, ok := f.(*fragment.VarExpr); ok && v.GlobalID != 0 {
			counts[v.GlobalID]++
		}
	})
	return counts
}

// DeadStoreElimination replaces any VarStmt whose global id has zero
// references and is not marked OptimizeWhenUnused=false with Empty.
// Mutates root's Block nodes in place.
func DeadStoreElimination(root fragment.Fragment) {
	counts := CountRefs(root)
	for _, b := range allBlocks(root) {
		for i, s := range b.Stmts {
			if v, ok := s.(*fragment.VarStmt); ok && v.OptimizeWhenUnused && counts[v.GlobalID] == 0 {
				b.Stmts[i] = &fragment.Empty{}
			}
		}
	}
}

func findRef(root fragment.Fragment, gid int) *fragment.VarExpr {
	var found *fragment.VarExpr
	walk(root, func(f fragment.Fragment) {
		if v, ok := f.(*fragment.VarExpr); ok && v.GlobalID == gid {
			found = v
		}
	})
	return found
}

type ephemeralCandidate struct {
	gid   int
	value fragment.Fragment
}

// EphemeralInlining rewrites every ephemeral VarStmt used exactly once
// as a plain read (no index, no default, not a nameof) into that use
// site, then blanks the original declaration. Candidates are collected
// from the tree's original state in one pass; rewriting does not
// re-discover new candidates created by earlier inlining.
func EphemeralInlining(root fragment.Fragment) fragment.Fragment {
	counts := CountRefs(root)
	var candidates []ephemeralCandidate
	for _, b := range allBlocks(root) {
		for _, s := range b.Stmts {
			v, ok := s.(*fragment.VarStmt)
			if !ok || !v.Ephemeral {
				continue
			}
			if counts[v.GlobalID] != 1 {
				continue
			}
			ref := findRef(root, v.GlobalID)
			if ref == nil {
				continue
			}
			if ref.Index != nil || ref.Slice != nil || ref.Default != nil || ref.Render == fragment.NameOf {
				continue
			}
			candidates = append(candidates, ephemeralCandidate{v.GlobalID, v.Value})
		}
	}
	for _, c := range candidates {
		root = inlineVar(root, c.gid, c.value)
		blankEphemeral(root, c.gid)
	}
	return root
}

func blankEphemeral(root fragment.Fragment, gid int) {
	for _, b := range allBlocks(root) {
		for i, s := range b.Stmts {
			if v, ok := s.(*fragment.VarStmt); ok && v.GlobalID == gid {
				b.Stmts[i] = &fragment.Empty{}
			}
		}
	}
}

// inlineVar returns a rewritten copy of f with every plain-read VarExpr
// referencing gid replaced by value.
func inlineVar(f fragment.Fragment, gid int, value fragment.Fragment) fragment.Fragment {
	if f == nil {
		return f
	}
	switch v := f.(type) {
	case *fragment.VarExpr:
		if v.GlobalID == gid && v.Index == nil && v.Slice == nil && v.Default == nil && v.Render != fragment.NameOf {
			return value
		}
		nv := *v
		nv.Index = inlineVar(v.Index, gid, value)
		if v.Slice != nil {
			ns := *v.Slice
			ns.From = inlineVar(v.Slice.From, gid, value)
			ns.To = inlineVar(v.Slice.To, gid, value)
			nv.Slice = &ns
		}
		nv.Default = inlineVar(v.Default, gid, value)
		return &nv
	case *fragment.VarStmt:
		nv := *v
		nv.Value = inlineVar(v.Value, gid, value)
		return &nv
	case *fragment.Interpolable:
		nv := *v
		nv.Interps = make([]fragment.Fragment, len(v.Interps))
		for i, it := range v.Interps {
			nv.Interps[i] = inlineVar(it, gid, value)
		}
		return &nv
	case *fragment.Arithmetic:
		nv := *v
		nv.Left = inlineVar(v.Left, gid, value)
		nv.Right = inlineVar(v.Right, gid, value)
		return &nv
	case *fragment.Subprocess:
		nv := *v
		nv.Body = inlineVar(v.Body, gid, value)
		return &nv
	case *fragment.Block:
		nv := *v
		nv.Stmts = make([]fragment.Fragment, len(v.Stmts))
		for i, s := range v.Stmts {
			nv.Stmts[i] = inlineVar(s, gid, value)
		}
		return &nv
	case *fragment.List:
		nv := *v
		nv.Items = make([]fragment.Fragment, len(v.Items))
		for i, it := range v.Items {
			nv.Items[i] = inlineVar(it, gid, value)
		}
		return &nv
	case *fragment.Log:
		nv := *v
		nv.Value = inlineVar(v.Value, gid, value)
		return &nv
	default:
		return f
	}
}
