package meta

import (
	"fmt"

	"github.com/amberc/amberc/types"
)

// FuncInstance is a monomorph: a concrete instantiation of a generic
// function for one argument-type tuple.
type FuncInstance struct {
	VariantID    int
	ArgTypes     []types.Type
	ArgGlobalIDs []int
	ReturnType   types.Type
	// TypedBody is filled by the checker once the variant has been
	// typechecked; stored as `any` here to avoid an ast<->meta import
	// cycle (checker stores []ast.Statement).
	TypedBody any
}

// FuncCache is keyed by declaration id; instances within a declaration
// are keyed by exact argument-type tuple.
// Duplicate instance requests short-circuit to the existing variant id.
type FuncCache struct {
	nextID      int
	nextVariant int
	instances   map[int][]*FuncInstance
}

// NewFuncCache returns an empty function cache.
func NewFuncCache() *FuncCache {
	return &FuncCache{instances: make(map[int][]*FuncInstance)}
}

// NextFuncID issues the next unique function-declaration id.
func (c *FuncCache) NextFuncID() int {
	c.nextID++
	return c.nextID
}

// FindInstance returns an existing instance of funcID whose argument
// vector exactly matches argTypes, or nil.
func (c *FuncCache) FindInstance(funcID int, argTypes []types.Type) *FuncInstance {
	for _, inst := range c.instances[funcID] {
		if sameTypes(inst.ArgTypes, argTypes) {
			return inst
		}
	}
	return nil
}

// NewInstance registers a new monomorph for funcID with the given
// argument types, allocating the next variant id. The caller fills
// ArgGlobalIDs/ReturnType/TypedBody once typechecking of the variant
// completes (or eagerly records ReturnType before recursing, to let
// recursive self-calls terminate against the declared type).
func (c *FuncCache) NewInstance(funcID int, argTypes []types.Type) *FuncInstance {
	c.nextVariant++
	inst := &FuncInstance{VariantID: c.nextVariant, ArgTypes: append([]types.Type(nil), argTypes...)}
	c.instances[funcID] = append(c.instances[funcID], inst)
	return inst
}

// Instances returns all monomorphs registered for funcID, in
// registration order.
func (c *FuncCache) Instances(funcID int) []*FuncInstance {
	return c.instances[funcID]
}

func sameTypes(a, b []types.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// MonomorphName renders the emitted function name for a variant:
// "<prefix><name>__<id>_v<variant>".
func MonomorphName(prefix, name string, id, variant int) string {
	return fmt.Sprintf("%s%s__%d_v%d", prefix, name, id, variant)
}
