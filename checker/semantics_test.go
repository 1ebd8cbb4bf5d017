package checker_test

import (
	"testing"

	"github.com/amberc/amberc/diag"
	"github.com/stretchr/testify/require"
)

// TestFallibleBuiltinRequiresHandler: rm
// without `?`, a handler block, or `trust` is rejected with a message
// pointing at the call.
func TestFallibleBuiltinRequiresHandler(t *testing.T) {
	prog, err := parseOnly(t, `
main {
	rm("/tmp/doesnotexist")
}
`)
	require.NoError(t, err)
	err = checkErr(t, prog)
	require.Error(t, err)
	require.Contains(t, err.Error(), "can fail")
}

func TestFallibleBuiltinTrustAccepted(t *testing.T) {
	check(t, `
main {
	trust rm("/tmp/doesnotexist")
}
`)
}

func TestFallibleBuiltinPropagateAccepted(t *testing.T) {
	check(t, `
fun cleanup(path: Text) {
	rm(path)?
}
`)
}

// TestDestructureGenericArrayRejected: an
// empty array literal has no concrete element type to bind.
func TestDestructureGenericArrayRejected(t *testing.T) {
	prog, err := parseOnly(t, `
main {
	let [a, b] = []
}
`)
	require.NoError(t, err)
	err = checkErr(t, prog)
	require.Error(t, err)
	require.Contains(t, err.Error(), "concrete type is unknown")
}

func TestDuplicateMainRejected(t *testing.T) {
	prog, err := parseOnly(t, `
main {
	echo("one")
}
main {
	echo("two")
}
`)
	require.NoError(t, err)
	require.Error(t, checkErr(t, prog))
}

// TestConstantConditionWarnsDeadCode: the
// always-true condition typechecks both arms but flags the unreachable
// else.
func TestConstantConditionWarnsDeadCode(t *testing.T) {
	m := check(t, `
main {
	if true {
		echo("yes")
	} else {
		echo("no")
	}
}
`)
	found := false
	for _, msg := range m.Diags.Messages {
		if msg.Kind == diag.KindWarning {
			found = true
		}
	}
	require.True(t, found, "an unreachable-else warning should be collected")
}

func TestMixedGenericConcreteParamsRejected(t *testing.T) {
	prog, err := parseOnly(t, `
fun bad(a: Int, b) {
	return a
}
`)
	require.NoError(t, err)
	err = checkErr(t, prog)
	require.Error(t, err)
	require.Contains(t, err.Error(), "all generic or all concrete")
}

func TestPublicMutableRejectedWithoutFlag(t *testing.T) {
	prog, err := parseOnly(t, `
pub let counter = 0
`)
	require.NoError(t, err)
	err = checkErr(t, prog)
	require.Error(t, err)
	require.Contains(t, err.Error(), "allow-public-mutable")
}

// TestTernaryArmTypeMismatchRejected: a dynamically-conditioned
// ternary must evaluate to one type across both arms.
func TestTernaryArmTypeMismatchRejected(t *testing.T) {
	prog, err := parseOnly(t, `
main {
	let flag = 1 == 1
	let x = flag then 1 else "one"
}
`)
	require.NoError(t, err)
	err = checkErr(t, prog)
	require.Error(t, err)
	require.Contains(t, err.Error(), "one type")
}

// TestTernaryConstantConditionChecksLiveArmOnly: a statically true
// condition adopts the then-arm's type and never faults on the dead
// arm's mismatch.
func TestTernaryConstantConditionChecksLiveArmOnly(t *testing.T) {
	check(t, `
main {
	let x = true then 1 else "one"
	echo(x + 1)
}
`)
}

// TestNameOf covers both operand shapes: a variable resolves through
// normal lookup, and a concrete-signature function resolves to its
// declared variant; a generic function has no single variant to name.
func TestNameOf(t *testing.T) {
	check(t, `
fun double(n: Int): Int {
	return n + n
}
main {
	let x = 1
	echo(nameof(x))
	echo(nameof(double))
}
`)
	prog, err := parseOnly(t, `
fun identity(x) {
	return x
}
main {
	echo(nameof(identity))
}
`)
	require.NoError(t, err)
	err = checkErr(t, prog)
	require.Error(t, err)
	require.Contains(t, err.Error(), "generic")
}

func TestBreakOutsideLoopRejected(t *testing.T) {
	prog, err := parseOnly(t, `
main {
	break
}
`)
	require.NoError(t, err)
	require.Error(t, checkErr(t, prog))
}
