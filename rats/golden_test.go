// Package rats_test holds the golden end-to-end fixtures: one `.ab`
// source file paired with one `.out` expected-stdout file. Each
// fixture is run through the full lexer -> parser -> checker ->
// translate -> optimize -> render pipeline and the resulting script is
// executed under bash to prove round-trip behavior.
package rats_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amberc/amberc/checker"
	"github.com/amberc/amberc/diag"
	"github.com/amberc/amberc/fragment"
	"github.com/amberc/amberc/meta"
	"github.com/amberc/amberc/optimize"
	"github.com/amberc/amberc/parser"
	"github.com/amberc/amberc/translate"
	"github.com/stretchr/testify/require"
)

// compileToBash runs a fixture through the same pipeline main.go's
// emitFile does, without depending on package main (which cannot be
// imported).
func compileToBash(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	prog, err := parser.Parse(path, string(data))
	require.NoError(t, err)

	m := meta.New(path, diag.Flags{})
	c := checker.New(m, nil)
	require.NoError(t, c.CheckProgram(prog))
	require.False(t, m.Diags.HasErrors())

	tr := translate.New(m)
	root := tr.Program(prog)
	root = optimize.Optimize(root)
	return fragment.Render(root)
}

func runBash(t *testing.T, script string) string {
	t.Helper()
	tmp, err := os.CreateTemp(t.TempDir(), "rats-*.sh")
	require.NoError(t, err)
	_, err = tmp.WriteString(script)
	require.NoError(t, err)
	require.NoError(t, tmp.Close())

	out, err := exec.Command("bash", tmp.Name()).Output()
	require.NoError(t, err)
	return string(out)
}

// TestMainWithArgs feeds the script to bash on stdin with
// `bash -s one two three`, which makes positional-0 "bash"; main's
// args iteration prints it first.
func TestMainWithArgs(t *testing.T) {
	script := compileToBash(t, "mainargs.ab")
	cmd := exec.Command("bash", "-s", "one", "two", "three")
	cmd.Stdin = strings.NewReader(script)
	out, err := cmd.Output()
	require.NoError(t, err)
	require.Equal(t, "bash\none\ntwo\nthree\n", string(out))
}

func TestGoldenFixtures(t *testing.T) {
	fixtures := []string{"arithmetic", "narrow", "loop", "range", "constbranch", "monomorph", "failure"}
	for _, name := range fixtures {
		t.Run(name, func(t *testing.T) {
			script := compileToBash(t, filepath.Join(".", name+".ab"))
			want, err := os.ReadFile(filepath.Join(".", name+".out"))
			require.NoError(t, err)
			got := runBash(t, script)
			require.Equal(t, string(want), got)
		})
	}
}
