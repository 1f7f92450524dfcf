package syntax

import (
	"strings"

	"semgraph/internal/source"
)

// NamePart is one identifier of a dotted name, optionally carrying a type
// argument list.
type NamePart struct {
	Ident    string
	TypeArgs []*Name
	// Generic is set when an argument list was written, even an empty one.
	Generic bool
	Span    source.Span
}

// Arity is the number of type arguments attached to the part.
func (p NamePart) Arity() int { return len(p.TypeArgs) }

func (p NamePart) String() string {
	if !p.Generic {
		return p.Ident
	}
	args := make([]string, len(p.TypeArgs))
	for i, a := range p.TypeArgs {
		args[i] = a.String()
	}
	return p.Ident + "<" + strings.Join(args, ", ") + ">"
}

// Name is a possibly qualified namespace-or-type name such as
// global::System.Collections.List<int>.
type Name struct {
	Global bool
	Parts  []NamePart
	Span   source.Span
	// Keyword records the predefined keyword the name was spelled as ("int").
	Keyword string
}

// Simple builds an unqualified, non-generic name. Mostly useful in tests.
func Simple(ident string) *Name {
	return &Name{Parts: []NamePart{{Ident: ident}}}
}

// Dotted builds a qualified, non-generic name from identifiers.
func Dotted(idents ...string) *Name {
	parts := make([]NamePart, len(idents))
	for i, id := range idents {
		parts[i] = NamePart{Ident: id}
	}
	return &Name{Parts: parts}
}

// IsSimple reports whether the name has exactly one part and no global
// qualifier.
func (n *Name) IsSimple() bool {
	return n != nil && !n.Global && len(n.Parts) == 1
}

// Last returns the rightmost part.
func (n *Name) Last() NamePart {
	return n.Parts[len(n.Parts)-1]
}

// Qualifier returns the name without its last part, or nil for a single part.
func (n *Name) Qualifier() *Name {
	if n == nil || len(n.Parts) < 2 {
		return nil
	}
	q := &Name{Global: n.Global, Parts: n.Parts[:len(n.Parts)-1], Span: n.Span}
	q.Span.End = q.Parts[len(q.Parts)-1].Span.End
	if q.Span.End < q.Span.Start {
		q.Span.End = q.Span.Start
	}
	return q
}

// HasTypeArgs reports whether any part carries a type argument list.
func (n *Name) HasTypeArgs() bool {
	if n == nil {
		return false
	}
	for _, p := range n.Parts {
		if p.Generic {
			return true
		}
	}
	return false
}

func (n *Name) String() string {
	if n == nil {
		return ""
	}
	if n.Keyword != "" {
		return n.Keyword
	}
	var sb strings.Builder
	if n.Global {
		sb.WriteString("global::")
	}
	for i, p := range n.Parts {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(p.String())
	}
	return sb.String()
}
