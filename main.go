// Command amberc is the CLI entry point for the source-to-source
// compiler: build/emit/run/check/doc/test subcommands over
// lexer -> parser -> checker -> translate -> optimize -> render.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/checker"
	"github.com/amberc/amberc/diag"
	"github.com/amberc/amberc/doc"
	"github.com/amberc/amberc/fragment"
	"github.com/amberc/amberc/meta"
	"github.com/amberc/amberc/optimize"
	"github.com/amberc/amberc/parser"
	"github.com/amberc/amberc/stdlib"
	"github.com/amberc/amberc/translate"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

var version = "v0.1.0"

func main() {
	cmd := &cli.Command{
		Name:                   "amberc",
		Usage:                  "A statically typed scripting language that compiles to Bash",
		Version:                version,
		UseShortOptionHandling: true,
		Flags:                  optionFlags(),
		// Allow `amberc script.ab` as shorthand for `amberc run script.ab`.
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() > 0 {
				arg := cmd.Args().First()
				if strings.HasSuffix(arg, ".ab") || isAmberScript(arg) {
					return runFile(arg, cmd.Args().Tail(), flagsFromCmd(cmd))
				}
			}
			return cli.DefaultShowRootCommandHelp(cmd)
		},
		Commands: []*cli.Command{
			{
				Name:            "run",
				Usage:           "Compile and run a .ab file under bash",
				ArgsUsage:       "<file.ab> [args...]",
				Flags:           optionFlags(),
				SkipFlagParsing: true,
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.NArg() < 1 {
						return fmt.Errorf("usage: amberc run <file.ab> [args...]")
					}
					return runFile(cmd.Args().First(), cmd.Args().Tail(), flagsFromCmd(cmd))
				},
			},
			{
				Name:      "build",
				Usage:     "Compile a .ab file to a standalone Bash script",
				ArgsUsage: "<file.ab>",
				Flags: append(optionFlags(), &cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "Output script path",
				}),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.NArg() < 1 {
						return fmt.Errorf("usage: amberc build [-o out.sh] <file.ab>")
					}
					return buildFile(cmd.Args().First(), cmd.String("output"), flagsFromCmd(cmd))
				},
			},
			{
				Name:      "emit",
				Usage:     "Print the generated Bash to stdout",
				ArgsUsage: "<file.ab>",
				Flags:     optionFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.NArg() < 1 {
						return fmt.Errorf("usage: amberc emit <file.ab>")
					}
					src, err := emitFile(cmd.Args().First(), flagsFromCmd(cmd))
					if err != nil {
						return err
					}
					fmt.Print(src)
					return nil
				},
			},
			{
				Name:      "check",
				Usage:     "Typecheck a .ab file and print diagnostics",
				ArgsUsage: "<file.ab>",
				Flags:     optionFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.NArg() < 1 {
						return fmt.Errorf("usage: amberc check <file.ab>")
					}
					return checkFile(cmd.Args().First(), flagsFromCmd(cmd))
				},
			},
			{
				Name:      "doc",
				Usage:     "Extract documentation comments from a .ab file",
				ArgsUsage: "<file.ab>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.NArg() < 1 {
						return fmt.Errorf("usage: amberc doc <file.ab>")
					}
					file := cmd.Args().First()
					data, err := os.ReadFile(file)
					if err != nil {
						return fmt.Errorf("reading %s: %w", file, err)
					}
					prog, err := parser.Parse(file, string(data))
					if err != nil {
						return diag.FirstParseError(err)
					}
					fmt.Print(doc.Format(doc.Extract(prog)))
					return nil
				},
			},
			{
				Name:      "test",
				Usage:     "Run .at test files",
				ArgsUsage: "[file.at | directory]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "filter",
						Aliases: []string{"f"},
						Usage:   "Run only tests matching this substring",
					},
					&cli.IntFlag{
						Name:    "jobs",
						Aliases: []string{"j"},
						Usage:   "Parallel test files",
						Value:   1,
					},
					&cli.BoolFlag{
						Name:    "no-color",
						Aliases: []string{"C"},
						Usage:   "Disable ANSI color output",
					},
				},
				Action: testAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// optionFlags maps CompilerOptions to CLI flags, shared by
// every subcommand that drives a compile.
func optionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "no-proc", Usage: "suppress specific safety rewrites"},
		&cli.BoolFlag{Name: "test-mode", Usage: "emit `printf \"Succeeded\\n\"` on clean completion"},
		&cli.StringFlag{Name: "test-name", Usage: "filter which test bodies are emitted"},
		&cli.BoolFlag{Name: "minify", Usage: "strip comments and collapse blank lines"},
		&cli.BoolFlag{Name: "allow-dead-code", Usage: "suppress unused/unreachable-code warnings"},
		&cli.BoolFlag{Name: "allow-nested-if-else", Usage: "suppress nested if/else-vs-if-chain warnings"},
		&cli.BoolFlag{Name: "allow-public-mutable", Usage: "allow `pub` on a mutable variable"},
		&cli.BoolFlag{Name: "allow-absurd-cast", Usage: "suppress disjoint-type cast warnings"},
		&cli.BoolFlag{Name: "allow-generic-return", Usage: "suppress generic-return warnings"},
		&cli.BoolFlag{Name: "warn-shadow", Usage: "warn when a declaration shadows an outer scope"},
	}
}

func flagsFromCmd(cmd *cli.Command) diag.Flags {
	return diag.Flags{
		AllowDeadCode:      cmd.Bool("allow-dead-code"),
		AllowNestedIfElse:  cmd.Bool("allow-nested-if-else"),
		AllowPublicMutable: cmd.Bool("allow-public-mutable"),
		AllowAbsurdCast:    cmd.Bool("allow-absurd-cast"),
		AllowGenericReturn: cmd.Bool("allow-generic-return"),
		WarnShadow:         cmd.Bool("warn-shadow"),
		NoProc:             cmd.Bool("no-proc"),
		TestMode:           cmd.Bool("test-mode"),
		TestName:           cmd.String("test-name"),
		Minify:             cmd.Bool("minify"),
	}
}

// importResolver implements checker.Resolver against the filesystem
// and the embedded std/ manifest. It reads the importing file from
// m.Ctx at the moment Resolve is called, which checkImport guarantees
// is still the *importer*'s path (the switch to the imported path
// happens only after Resolve returns), so relative imports resolve
// against the right directory.
type importResolver struct {
	m *meta.Metadata
}

func (r *importResolver) Resolve(path string) (*ast.Program, error) {
	var src, filename string
	if strings.HasPrefix(path, "std/") {
		s, ok := stdlib.Lookup(path)
		if !ok {
			return nil, fmt.Errorf("unknown standard library module %q (available: %s)",
				path, strings.Join(stdlib.Names(), ", "))
		}
		src, filename = s, path
	} else {
		filename = filepath.Join(filepath.Dir(r.m.Ctx.File), path)
		if filepath.Ext(filename) == "" {
			filename += ".ab"
		}
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		src = string(data)
	}
	return parser.Parse(filename, src)
}

// compileProgram runs lexer -> parser -> checker for file and returns
// the fully typed AST plus the Metadata the translator needs, or the
// first error encountered. Diagnostics accumulated along the way are
// always available on the returned Metadata even on error: a loud
// failure does not suppress already-collected warnings.
func compileProgram(file string, flags diag.Flags) (*checkedProgram, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}

	prog, err := parser.Parse(file, string(data))
	if err != nil {
		return nil, diag.FirstParseError(err)
	}

	m := meta.New(file, flags)
	c := checker.New(m, &importResolver{m: m})

	if err := c.CheckProgram(prog); err != nil {
		return &checkedProgram{Prog: prog, Meta: m}, err
	}
	return &checkedProgram{Prog: prog, Meta: m}, nil
}

type checkedProgram struct {
	Prog *ast.Program
	Meta *meta.Metadata
}

func checkFile(file string, flags diag.Flags) error {
	cp, err := compileProgram(file, flags)
	if cp != nil {
		cp.Meta.Diags.Print(os.Stderr)
	}
	if err != nil {
		if loud, ok := err.(*diag.Loud); ok {
			return fmt.Errorf("%s", loud.Error())
		}
		return err
	}
	if cp.Meta.Diags.HasErrors() {
		os.Exit(1)
	}
	return nil
}

// emitFile compiles file all the way through render and returns the
// generated Bash text.
func emitFile(file string, flags diag.Flags) (string, error) {
	cp, err := compileProgram(file, flags)
	if cp != nil {
		cp.Meta.Diags.Print(os.Stderr)
	}
	if err != nil {
		return "", asCLIError(err)
	}
	if cp.Meta.Diags.HasErrors() {
		os.Exit(1)
	}

	tr := translate.New(cp.Meta)
	root := tr.Program(cp.Prog)
	root = optimize.Optimize(root)
	out := fragment.Render(root)
	if flags.Minify {
		out = minify(out)
	}
	return out, nil
}

// buildFile compiles file and writes the generated Bash to output
// (defaulting to file with its extension replaced by .sh), chmod'd
// executable.
func buildFile(file, output string, flags diag.Flags) error {
	src, err := emitFile(file, flags)
	if err != nil {
		return err
	}
	if output == "" {
		output = strings.TrimSuffix(file, filepath.Ext(file)) + ".sh"
	}
	if err := os.WriteFile(output, []byte(src), 0o755); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	return nil
}

// runFile compiles file to a temp script and execs it under bash with
// args forwarded as positional parameters: they become $1, $2, ...
// inside the emitted script, where main(args) picks them up.
func runFile(file string, args []string, flags diag.Flags) error {
	src, err := emitFile(file, flags)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp("", "amberc-*.sh")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(src); err != nil {
		tmp.Close()
		return err
	}
	tmp.Close()

	cmdArgs := append([]string{tmp.Name()}, args...)
	c := exec.Command("bash", cmdArgs...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

// minify implements CompilerOptions.minify: strips `#`
// comment lines and collapses runs of blank lines, a text-level pass
// over the already-rendered script rather than a fragment-tree one
// (the fragment renderer has no minify-aware mode).
func minify(src string) string {
	lines := strings.Split(src, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		if trimmed == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// isAmberScript reports whether a file with no recognized extension
// is still runnable: it opens with a shebang line.
func isAmberScript(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	buf := make([]byte, 64)
	n, _ := f.Read(buf)
	line := string(buf[:n])
	return strings.HasPrefix(line, "#!")
}

func asCLIError(err error) error {
	if loud, ok := err.(*diag.Loud); ok {
		return fmt.Errorf("%s", loud.Error())
	}
	return err
}

func testAction(ctx context.Context, cmd *cli.Command) error {
	target := "."
	if cmd.NArg() > 0 {
		target = cmd.Args().First()
	}

	// Set NO_COLOR if --no-color flag, non-interactive, or NO_COLOR
	// already set. AMBERC_FORCE_COLOR is set by the parent process when
	// it knows the terminal supports color (child subprocesses have
	// piped stderr so can't detect TTY themselves).
	if cmd.Bool("no-color") || os.Getenv("NO_COLOR") != "" {
		os.Setenv("NO_COLOR", "1")
	} else if !term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("AMBERC_FORCE_COLOR") == "" {
		os.Setenv("NO_COLOR", "1")
	} else {
		os.Setenv("AMBERC_FORCE_COLOR", "1")
	}

	var files []string
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", target, err)
	}
	if info.IsDir() {
		entries, err := os.ReadDir(target)
		if err != nil {
			return fmt.Errorf("reading directory %s: %w", target, err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".at") {
				files = append(files, filepath.Join(target, e.Name()))
			}
		}
	} else {
		files = []string{target}
	}

	if len(files) == 0 {
		return fmt.Errorf("no .at test files found in %s", target)
	}

	filter := cmd.String("filter")
	flags := diag.Flags{TestMode: true, TestName: filter}

	// Single file: run directly (no subprocess overhead).
	if len(files) == 1 {
		fmt.Fprintf(os.Stderr, "=== %s ===\n", files[0])
		if err := runFile(files[0], nil, flags); err != nil {
			os.Exit(1)
		}
		return nil
	}

	jobs := cmd.Int("jobs")
	if jobs < 1 {
		jobs = 1
	}

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("cannot find amberc binary: %w", err)
	}

	type fileResult struct {
		output bytes.Buffer
		failed bool
		done   chan struct{}
	}

	results := make([]fileResult, len(files))
	for i := range results {
		results[i].done = make(chan struct{})
	}

	sem := make(chan struct{}, jobs)

	for i, f := range files {
		go func(i int, f string) {
			sem <- struct{}{}
			defer func() { <-sem }()
			defer close(results[i].done)
			args := []string{"test", f}
			if filter != "" {
				args = append(args, "--filter", filter)
			}
			c := exec.Command(self, args...)
			c.Stdout = &results[i].output
			c.Stderr = &results[i].output
			if err := c.Run(); err != nil {
				results[i].failed = true
			}
		}(i, f)
	}

	anyFailed := false
	passed, failed := 0, 0
	for i := range results {
		<-results[i].done
		os.Stdout.Write(results[i].output.Bytes())
		if results[i].failed {
			anyFailed = true
			failed++
		} else {
			passed++
		}
	}

	noColor := os.Getenv("NO_COLOR") != ""
	colorOK, colorFail, colorReset := "\033[32m", "\033[31m", "\033[0m"
	if noColor {
		colorOK, colorFail, colorReset = "", "", ""
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "\n%d files, %d passed, %s%d failed%s\n",
			len(files), passed, colorFail, failed, colorReset)
	} else {
		fmt.Fprintf(os.Stderr, "\n%d files, %s%d passed%s, %d failed\n",
			len(files), colorOK, passed, colorReset, failed)
	}

	if anyFailed {
		os.Exit(1)
	}
	return nil
}
