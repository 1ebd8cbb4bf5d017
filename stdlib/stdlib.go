// Package stdlib resolves `std/<path>` import strings against an
// embedded standard-library manifest. The library modules are plain
// source files embedded into the binary; an import compiles them like
// any other file.
package stdlib

import (
	"embed"
	"sort"
)

//go:embed *.ab
var files embed.FS

// manifest maps "std/<name>" to the embedded source for name.ab,
// built once at package init from whatever .ab files are embedded.
var manifest = map[string]string{}

func init() {
	entries, err := files.ReadDir(".")
	if err != nil {
		panic(err)
	}
	for _, e := range entries {
		name := e.Name()
		if len(name) < 4 || name[len(name)-3:] != ".ab" {
			continue
		}
		data, err := files.ReadFile(name)
		if err != nil {
			panic(err)
		}
		key := "std/" + name[:len(name)-3]
		manifest[key] = string(data)
	}
}

// Lookup returns the embedded source for a "std/<name>" import path.
func Lookup(path string) (string, bool) {
	src, ok := manifest[path]
	return src, ok
}

// Names returns every resolvable std/ import path, sorted, for
// `amberc` help/introspection output.
func Names() []string {
	out := make([]string, 0, len(manifest))
	for k := range manifest {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
