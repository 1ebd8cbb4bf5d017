package optimize_test

import (
	"testing"

	"github.com/amberc/amberc/fragment"
	"github.com/amberc/amberc/optimize"
	"github.com/amberc/amberc/types"
	"github.com/stretchr/testify/require"
)

// TestDeadStoreEliminationDropsUnreferenced: a
// VarStmt with zero VarExpr references anywhere in the tree is
// replaced with Empty; one that is referenced survives.
func TestDeadStoreEliminationDropsUnreferenced(t *testing.T) {
	dead := &fragment.VarStmt{Name: "dead", Type: types.Int(), GlobalID: 1, OptimizeWhenUnused: true,
		Value: &fragment.Raw{Text: "1"}}
	live := &fragment.VarStmt{Name: "live", Type: types.Int(), GlobalID: 2, OptimizeWhenUnused: true,
		Value: &fragment.Raw{Text: "2"}}
	use := &fragment.Log{Value: &fragment.VarExpr{Name: "live", GlobalID: 2, Render: fragment.ReadQuoted}}
	root := &fragment.Block{Stmts: []fragment.Fragment{dead, live, use}}

	optimize.DeadStoreElimination(root)

	_, stillThere := root.Stmts[0].(*fragment.Empty)
	require.True(t, stillThere, "unreferenced VarStmt should be blanked")
	_, blanked := root.Stmts[1].(*fragment.Empty)
	require.False(t, blanked, "referenced VarStmt must survive")
}

// TestDeadStoreEliminationRespectsOptimizeWhenUnusedFalse covers the
// destructure-scratch-array exception: OptimizeWhenUnused=false keeps
// a VarStmt even with zero references.
func TestDeadStoreEliminationRespectsOptimizeWhenUnusedFalse(t *testing.T) {
	kept := &fragment.VarStmt{Name: "scratch", Type: types.Array(types.Text()), GlobalID: 1, OptimizeWhenUnused: false,
		Value: &fragment.Raw{Text: "()"}}
	root := &fragment.Block{Stmts: []fragment.Fragment{kept}}

	optimize.DeadStoreElimination(root)

	_, blanked := root.Stmts[0].(*fragment.Empty)
	require.False(t, blanked)
}

// TestEphemeralInliningSingleUse: an ephemeral
// VarStmt used exactly once as a plain read is rewritten into the use
// site and its own declaration is blanked.
func TestEphemeralInliningSingleUse(t *testing.T) {
	temp := &fragment.VarStmt{Name: "tmp", Type: types.Int(), GlobalID: 1, Ephemeral: true, OptimizeWhenUnused: true,
		Value: &fragment.Raw{Text: "$((1 + 2))"}}
	use := &fragment.Log{Value: &fragment.VarExpr{Name: "tmp", GlobalID: 1, Render: fragment.ReadQuoted}}
	root := &fragment.Block{Stmts: []fragment.Fragment{temp, use}}

	out := optimize.EphemeralInlining(root).(*fragment.Block)

	_, blanked := out.Stmts[0].(*fragment.Empty)
	require.True(t, blanked)
	log := out.Stmts[1].(*fragment.Log)
	raw, ok := log.Value.(*fragment.Raw)
	require.True(t, ok, "the Log's value should now be the inlined Raw fragment")
	require.Equal(t, "$((1 + 2))", raw.Text)
}

// TestEphemeralInliningSkipsMultiUse covers the "otherwise leave as-is"
// branch: a variable referenced more than once is not inlined.
func TestEphemeralInliningSkipsMultiUse(t *testing.T) {
	temp := &fragment.VarStmt{Name: "tmp", Type: types.Int(), GlobalID: 1, Ephemeral: true, OptimizeWhenUnused: true,
		Value: &fragment.Raw{Text: "$((1 + 2))"}}
	use1 := &fragment.Log{Value: &fragment.VarExpr{Name: "tmp", GlobalID: 1, Render: fragment.ReadQuoted}}
	use2 := &fragment.Log{Value: &fragment.VarExpr{Name: "tmp", GlobalID: 1, Render: fragment.ReadQuoted}}
	root := &fragment.Block{Stmts: []fragment.Fragment{temp, use1, use2}}

	out := optimize.EphemeralInlining(root).(*fragment.Block)

	_, blanked := out.Stmts[0].(*fragment.Empty)
	require.False(t, blanked, "multi-use ephemeral must not be inlined away")
}

// TestEphemeralInliningSkipsIndexedRead covers the "no index, no
// default, not a nameof" condition: an indexed read is not inlined
// even at single use.
func TestEphemeralInliningSkipsIndexedRead(t *testing.T) {
	temp := &fragment.VarStmt{Name: "tmp", Type: types.Array(types.Int()), GlobalID: 1, Ephemeral: true, OptimizeWhenUnused: true,
		Value: &fragment.Raw{Text: "(1 2 3)"}}
	use := &fragment.Log{Value: &fragment.VarExpr{
		Name: "tmp", GlobalID: 1, Render: fragment.ReadQuoted,
		Index: &fragment.Raw{Text: "0"},
	}}
	root := &fragment.Block{Stmts: []fragment.Fragment{temp, use}}

	out := optimize.EphemeralInlining(root).(*fragment.Block)

	_, blanked := out.Stmts[0].(*fragment.Empty)
	require.False(t, blanked)
}
