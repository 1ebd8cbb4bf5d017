// Package types implements the source language's type lattice: the
// tagged-union Type value, its subtyping rules, and the narrowing
// operations (exclude, can-intersect) the typechecker drives branch
// narrowing with.
package types

import "strings"

// Kind tags the variant of a Type.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindBool
	KindNum
	KindInt
	KindArray
	KindUnion
	KindGeneric
)

// Type is a tagged union over the eight kinds. Array carries a single
// Elem; Union carries a flattened, deduplicated Variants slice. Arrays
// are not nestable: constructing Array(Array(...)) is a parse-time
// error, never a value produced here.
type Type struct {
	Kind     Kind
	Elem     *Type  // set iff Kind == KindArray
	Variants []Type // set iff Kind == KindUnion, always len >= 2, flattened
}

func Null() Type    { return Type{Kind: KindNull} }
func Text() Type    { return Type{Kind: KindText} }
func Bool() Type    { return Type{Kind: KindBool} }
func Num() Type     { return Type{Kind: KindNum} }
func Int() Type     { return Type{Kind: KindInt} }
func Generic() Type { return Type{Kind: KindGeneric} }

// Array constructs Array(elem). Panics if elem is itself an array — the
// parser is responsible for rejecting nested array syntax before this
// is ever called; this is a programmer-error guard, not a diagnostic.
func Array(elem Type) Type {
	if elem.Kind == KindArray {
		panic("types: arrays are not nestable")
	}
	e := elem
	return Type{Kind: KindArray, Elem: &e}
}

// Union constructs a flattened union of the given member types. Nested
// unions are spliced in; duplicate members (by Equal) are dropped. A
// single resulting member collapses to that member directly.
func Union(members ...Type) Type {
	var flat []Type
	var add func(Type)
	add = func(t Type) {
		if t.Kind == KindUnion {
			for _, m := range t.Variants {
				add(m)
			}
			return
		}
		for _, existing := range flat {
			if existing.Equal(t) {
				return
			}
		}
		flat = append(flat, t)
	}
	for _, m := range members {
		add(m)
	}
	if len(flat) == 0 {
		return Null()
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return Type{Kind: KindUnion, Variants: flat}
}

// Equal reports structural equality (not subtyping).
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindArray:
		return t.Elem.Equal(*o.Elem)
	case KindUnion:
		if len(t.Variants) != len(o.Variants) {
			return false
		}
		for _, a := range t.Variants {
			found := false
			for _, b := range o.Variants {
				if a.Equal(b) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// IsSubsetOf implements "A is a strict subset of B":
//
//	Int ⊂ Num
//	any concrete type ⊂ Generic (but not Generic ⊂ Generic)
//	Array(T) ⊂ Array(U) iff T ⊂ U or (T != Generic and U == Generic)
//	Union(Ts) ⊂ B iff each T in Ts is allowed in B
//	A ⊂ Union(Bs) iff some B in Bs admits A
func (t Type) IsSubsetOf(o Type) bool {
	if t.Kind == KindUnion {
		for _, m := range t.Variants {
			if !m.IsAllowedIn(o) {
				return false
			}
		}
		return true
	}
	if o.Kind == KindUnion {
		for _, m := range o.Variants {
			if t.IsAllowedIn(m) {
				return true
			}
		}
		return false
	}
	if t.Equal(o) {
		return false // strict subset: equal types are not a subset of each other
	}
	if t.Kind == KindInt && o.Kind == KindNum {
		return true
	}
	if o.Kind == KindGeneric && t.Kind != KindGeneric {
		return true
	}
	if t.Kind == KindArray && o.Kind == KindArray {
		if t.Elem.IsSubsetOf(*o.Elem) {
			return true
		}
		return t.Elem.Kind != KindGeneric && o.Elem.Kind == KindGeneric
	}
	return false
}

// IsAllowedIn is the reflexive closure of IsSubsetOf plus the
// array-to-generic-array concession: a typed array may flow into a
// generic array slot and vice versa.
func (t Type) IsAllowedIn(o Type) bool {
	if t.Equal(o) {
		return true
	}
	if t.IsSubsetOf(o) {
		return true
	}
	if t.Kind == KindArray && o.Kind == KindArray {
		if t.Elem.Kind == KindGeneric || o.Elem.Kind == KindGeneric {
			return true
		}
	}
	return false
}

// IsStrictlyTyped is false for Generic, any union, or arrays of
// non-strict elements; true otherwise. Required for nameof of a
// function variant and for monomorphization key formation.
func (t Type) IsStrictlyTyped() bool {
	switch t.Kind {
	case KindGeneric, KindUnion:
		return false
	case KindArray:
		return t.Elem.IsStrictlyTyped()
	default:
		return true
	}
}

// Exclude implements the "subtract" operation used in else-branch
// narrowing: U \ T. For a union, members equal to or subsumed by T are
// dropped; if the result is a single type it collapses, if empty it
// returns (Type{}, false) meaning "no narrowing available". For
// non-union self, it returns (Type{}, false) unless self equals other
// (then (Type{}, false) too — nothing remains) or self and other are
// disjoint (then self, unchanged).
func (t Type) Exclude(o Type) (Type, bool) {
	if t.Kind == KindUnion {
		var kept []Type
		for _, m := range t.Variants {
			if m.Equal(o) || m.IsSubsetOf(o) {
				continue
			}
			kept = append(kept, m)
		}
		if len(kept) == 0 {
			return Type{}, false
		}
		return Union(kept...), true
	}
	if t.Equal(o) {
		return Type{}, false
	}
	if !t.CanIntersect(o) {
		return t, true
	}
	return Type{}, false
}

// CanIntersect answers whether two types share any inhabitant: true if
// either is a superset of the other, either is Generic, or the two
// unions share a member.
func (t Type) CanIntersect(o Type) bool {
	if t.Kind == KindGeneric || o.Kind == KindGeneric {
		return true
	}
	if t.IsAllowedIn(o) || o.IsAllowedIn(t) {
		return true
	}
	tMembers := t.members()
	oMembers := o.members()
	for _, a := range tMembers {
		for _, b := range oMembers {
			if a.Equal(b) || a.IsAllowedIn(b) || b.IsAllowedIn(a) {
				return true
			}
		}
	}
	return false
}

func (t Type) members() []Type {
	if t.Kind == KindUnion {
		return t.Variants
	}
	return []Type{t}
}

// String renders the display form: Text|Bool|Num|Int|Null|Generic,
// arrays as [] or [T], unions joined by " | ".
func (t Type) String() string {
	switch t.Kind {
	case KindNull:
		return "Null"
	case KindText:
		return "Text"
	case KindBool:
		return "Bool"
	case KindNum:
		return "Num"
	case KindInt:
		return "Int"
	case KindGeneric:
		return "Generic"
	case KindArray:
		if t.Elem.Kind == KindGeneric {
			return "[]"
		}
		return "[" + t.Elem.String() + "]"
	case KindUnion:
		parts := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			parts[i] = v.String()
		}
		return strings.Join(parts, " | ")
	default:
		return "?"
	}
}
