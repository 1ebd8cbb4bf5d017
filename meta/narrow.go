package meta

import "github.com/amberc/amberc/types"

// narrowLayer is one pushed overlay: name -> refined type.
type narrowLayer map[string]types.Type

// NarrowStack is the flow-fact overlay: a mapping from variable name
// to refined type, pushed before typechecking a branch and popped on
// exit, restoring prior types. Reads consult the
// topmost layer that mentions a name; writes to a declaration always
// go through Stack (the scope), never through this overlay.
type NarrowStack struct {
	layers []narrowLayer
}

// NewNarrowStack returns an empty overlay stack.
func NewNarrowStack() *NarrowStack { return &NarrowStack{} }

// Push installs a new narrowing layer. facts maps variable name to its
// narrowed type; each entry is intersected with the variable's current
// declared type by the caller before pushing (meta doesn't know
// declared types — the checker does the intersection, see
// checker.withNarrowedScope).
func (n *NarrowStack) Push(facts map[string]types.Type) {
	n.layers = append(n.layers, narrowLayer(facts))
}

// Pop removes the most recently pushed layer, restoring prior types.
// Must run on every exit path including errors.
func (n *NarrowStack) Pop() {
	n.layers = n.layers[:len(n.layers)-1]
}

// Lookup returns the narrowed type for name from the innermost layer
// that mentions it, or (Type{}, false) if no layer narrows it.
func (n *NarrowStack) Lookup(name string) (types.Type, bool) {
	for i := len(n.layers) - 1; i >= 0; i-- {
		if t, ok := n.layers[i][name]; ok {
			return t, true
		}
	}
	return types.Type{}, false
}

// WithNarrowedScope pushes facts, runs fn, and pops on every exit path
// including panics and errors.
func (n *NarrowStack) WithNarrowedScope(facts map[string]types.Type, fn func() error) error {
	n.Push(facts)
	defer n.Pop()
	return fn()
}
