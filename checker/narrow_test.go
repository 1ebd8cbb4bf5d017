package checker_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNarrowingByIsTest: inside the `is
// Int` arm, `x` is narrowed to Int so `x + 1` typechecks; inside the
// else arm it keeps its declared union type, so interpolating it into
// text still works without narrowing.
func TestNarrowingByIsTest(t *testing.T) {
	src := `
fun classify(x: Text | Int) {
	if x is Int {
		echo(x + 1)
	} else {
		echo("text: {x}")
	}
}
`
	check(t, src)
}

// TestNarrowingAndComposition: under
// `a and b`, the then-branch sees the intersection of both positive
// facts, so a variable narrowed to Int by both conjuncts may be used
// arithmetically.
func TestNarrowingAndComposition(t *testing.T) {
	src := `
fun classify(x: Text | Int | Bool) {
	if x is Int and x is Int {
		echo("{x + 1}")
	}
}
`
	check(t, src)
}

// TestNarrowingWithoutIsFails is the negative control: without an
// `is`-test, x keeps its declared union type and arithmetic on it is
// rejected, proving the positive tests above are exercising narrowing
// and not some laxer default behavior.
func TestNarrowingWithoutIsFails(t *testing.T) {
	src := `
fun classify(x: Text | Int) {
	echo(x + 1)
}
`
	prog, err := parseOnly(t, src)
	require.NoError(t, err)
	require.Error(t, checkErr(t, prog))
}
