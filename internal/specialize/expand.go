package specialize

import (
	"fmt"

	"semgraph/internal/graph"
)

// Expand materializes the members and bases of the specialized type id,
// once. Members are new entities owned by id whose references are
// substituted copies of the definition's. The definition is never touched.
// Callers wanting substituted member types resolve the definition's
// references before the first Expand.
func Expand(g *graph.Graph, id graph.EntityID) {
	e := g.Entity(id)
	if e == nil || e.Flags&graph.FlagSpecialized == 0 {
		return
	}
	e.Expand(func() {
		def := g.Entity(e.Origin)
		s := NewSubstituter(g, MapOf(g, id))
		e.Bases = s.References(def.Bases)
		for _, mid := range def.Space.Members() {
			m := g.Entity(mid)
			var member graph.EntityID
			switch {
			case m.Kind.IsTypeDecl():
				member = Instantiate(g, mid, id, nil)
			case m.Kind == graph.EntityMethod:
				member = expandMethod(g, s, id, m)
			default:
				member = g.NewEntity(clone(m, id, s))
			}
			if _, err := e.Space.Add(member); err != nil {
				panic(fmt.Sprintf("specialize: expanding %s: %v", g.QualifiedName(id), err))
			}
		}
		e.Space.Freeze()
	})
}

// Specialized reports whether id was created by Instantiate.
func Specialized(g *graph.Graph, id graph.EntityID) bool {
	e := g.Entity(id)
	return e != nil && e.Flags&graph.FlagSpecialized != 0
}

func clone(m *graph.Entity, owner graph.EntityID, s *Substituter) *graph.Entity {
	return &graph.Entity{
		Kind:       m.Kind,
		Name:       m.Name,
		Parent:     owner,
		Access:     m.Access,
		Flags:      m.Flags | graph.FlagSpecialized,
		Span:       m.Span,
		Assembly:   m.Assembly,
		Usings:     m.Usings,
		Origin:     m.ID,
		TypeParams: m.TypeParams,
		Type:       s.Reference(m.Type),
	}
}

func expandMethod(g *graph.Graph, s *Substituter, owner graph.EntityID, m *graph.Entity) graph.EntityID {
	id := g.NewEntity(clone(m, owner, s))
	method := g.Entity(id)
	for _, pid := range m.Params {
		pid := g.NewEntity(clone(g.Entity(pid), id, s))
		method.Params = append(method.Params, pid)
		if _, err := method.Space.Add(pid); err != nil {
			panic(fmt.Sprintf("specialize: parameter of %s: %v", g.QualifiedName(m.ID), err))
		}
	}
	method.Space.Freeze()
	return id
}
