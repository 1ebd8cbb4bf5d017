package types

import "fmt"

// typoSuggestions maps common misspellings (often carried over from
// other languages) to a "did you mean" suggestion.
var typoSuggestions = map[string]string{
	"String":  "Text",
	"Str":     "Text",
	"Boolean": "Bool",
	"Float":   "Num",
	"Double":  "Num",
	"Integer": "Int",
	"Array":   "[T]",
	"List":    "[T]",
}

// tparser parses the grammar:
//
//	T ::= Primitive | '[' ']' | '[' T ']' | T '|' T
//
// over a pre-tokenized list of type-grammar tokens. It is driven by the
// language parser, which supplies tokens already split on '[', ']',
// '|', and identifiers.
type tparser struct {
	toks []string
	pos  int
}

// Parse parses a type string built from the tokens the language lexer
// produced for a `: Type` annotation. toks is the sequence of raw
// lexemes: identifiers, "[", "]", "|", in source order.
func Parse(toks []string) (Type, error) {
	p := &tparser{toks: toks}
	t, err := p.parseUnion()
	if err != nil {
		return Type{}, err
	}
	if p.pos != len(p.toks) {
		return Type{}, fmt.Errorf("unexpected trailing tokens in type: %v", p.toks[p.pos:])
	}
	return t, nil
}

func (p *tparser) peek() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos]
}

func (p *tparser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *tparser) parseUnion() (Type, error) {
	first, err := p.parseAtom()
	if err != nil {
		return Type{}, err
	}
	members := []Type{first}
	for p.peek() == "|" {
		p.next()
		m, err := p.parseAtom()
		if err != nil {
			return Type{}, err
		}
		members = append(members, m)
	}
	if len(members) == 1 {
		return members[0], nil
	}
	return Union(members...), nil
}

func (p *tparser) parseAtom() (Type, error) {
	tok := p.next()
	switch tok {
	case "[":
		if p.peek() == "]" {
			p.next()
			return Array(Generic()), nil
		}
		inner, err := p.parseUnion()
		if err != nil {
			return Type{}, err
		}
		if inner.Kind == KindArray {
			return Type{}, fmt.Errorf("arrays cannot be nested: use [T], not [[T]]")
		}
		if p.next() != "]" {
			return Type{}, fmt.Errorf("expected ']' to close array type")
		}
		return Array(inner), nil
	case "Null":
		return Null(), nil
	case "Text":
		return Text(), nil
	case "Bool":
		return Bool(), nil
	case "Num":
		return Num(), nil
	case "Int":
		return Int(), nil
	case "Generic", "":
		if tok == "" {
			return Type{}, fmt.Errorf("expected a type, found end of input")
		}
		return Generic(), nil
	default:
		if suggestion, ok := typoSuggestions[tok]; ok {
			return Type{}, fmt.Errorf("unknown type %q — did you mean %q?", tok, suggestion)
		}
		return Type{}, fmt.Errorf("unknown type %q", tok)
	}
}
