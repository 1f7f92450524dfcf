// Package specialize materializes closed generic types: it maps type
// parameters to arguments and rewrites the references of a generic
// definition's declaration subgraph into independent DirectReferences.
package specialize

import (
	"semgraph/internal/graph"
)

// TypeParamMap maps type parameters, by position, to type arguments. Outer
// holds the map of the enclosing specialized type for nested types.
type TypeParamMap struct {
	Params []graph.EntityID
	Args   []graph.EntityID
	Outer  *TypeParamMap
}

// NewMap pairs params with args. Extra entries on either side are ignored.
func NewMap(params, args []graph.EntityID, outer *TypeParamMap) *TypeParamMap {
	n := min(len(params), len(args))
	return &TypeParamMap{Params: params[:n], Args: args[:n], Outer: outer}
}

// Lookup returns the argument bound to param in this map or an outer one.
func (m *TypeParamMap) Lookup(param graph.EntityID) (graph.EntityID, bool) {
	for cur := m; cur != nil; cur = cur.Outer {
		for i, p := range cur.Params {
			if p == param {
				return cur.Args[i], true
			}
		}
	}
	return graph.NoEntityID, false
}

// Len counts the bindings across all nesting levels.
func (m *TypeParamMap) Len() int {
	n := 0
	for cur := m; cur != nil; cur = cur.Outer {
		n += len(cur.Params)
	}
	return n
}

// MapOf builds the map a specialized entity was created with. Unspecialized
// entities yield nil.
func MapOf(g *graph.Graph, id graph.EntityID) *TypeParamMap {
	e := g.Entity(id)
	if e == nil || e.Flags&graph.FlagSpecialized == 0 {
		return nil
	}
	outer := MapOf(g, e.Parent)
	def := g.Entity(e.Origin)
	if def == nil || len(e.TypeArgs) == 0 {
		if outer == nil {
			return nil
		}
		return &TypeParamMap{Outer: outer}
	}
	return NewMap(def.TypeParams, e.TypeArgs, outer)
}
