package specialize

import (
	"slices"

	"semgraph/internal/graph"
)

// Substituter rewrites types and references through a TypeParamMap.
type Substituter struct {
	g *graph.Graph
	m *TypeParamMap
}

// NewSubstituter binds m to g.
func NewSubstituter(g *graph.Graph, m *TypeParamMap) *Substituter {
	return &Substituter{g: g, m: m}
}

// Type substitutes the type id. Type parameters bound in the map become
// their arguments; constructed and nested types are re-instantiated when any
// of their arguments or enclosing types change. Anything else is returned
// as is.
func (s *Substituter) Type(id graph.EntityID) graph.EntityID {
	e := s.g.Entity(id)
	if e == nil || s.m == nil {
		return id
	}
	switch {
	case e.Kind == graph.EntityTypeParameter:
		if arg, ok := s.m.Lookup(id); ok {
			return arg
		}
		return id
	case !e.Kind.IsTypeDecl():
		return id
	}

	def := id
	args := e.TypeParams
	if e.Flags&graph.FlagSpecialized != 0 {
		def = e.Origin
		if len(e.TypeArgs) > 0 {
			args = e.TypeArgs
		}
	}
	newArgs := make([]graph.EntityID, len(args))
	for i, a := range args {
		newArgs[i] = s.Type(a)
	}
	parent := e.Parent
	if p := s.g.Entity(parent); p != nil && p.Kind.IsTypeDecl() {
		parent = s.Type(parent)
	}
	if parent == e.Parent && slices.Equal(newArgs, args) {
		return id
	}
	return Instantiate(s.g, def, parent, newArgs)
}

// Reference returns a new reference for ref. Resolved references become
// DirectReferences to the substituted target; unresolved and failed
// references are returned unchanged, substitution never resolves.
func (s *Substituter) Reference(ref graph.Reference) graph.Reference {
	target, ok := graph.PeekTarget(ref)
	if !ok {
		return ref
	}
	return graph.Direct(s.Type(target), ref.Span())
}

// References maps Reference over refs into a fresh slice.
func (s *Substituter) References(refs []graph.Reference) []graph.Reference {
	if refs == nil {
		return nil
	}
	out := make([]graph.Reference, len(refs))
	for i, r := range refs {
		out[i] = s.Reference(r)
	}
	return out
}

// Bases substitutes m into the base references of generic.
func Bases(g *graph.Graph, generic graph.EntityID, m *TypeParamMap) []graph.Reference {
	e := g.Entity(generic)
	if e == nil {
		return nil
	}
	return NewSubstituter(g, m).References(e.Bases)
}
