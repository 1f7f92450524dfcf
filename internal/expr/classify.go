package expr

import (
	"semgraph/internal/graph"
)

// Classify maps the entity id to the result variant that represents it.
// It performs no lookup: declared types are read with Peek, so a variable
// whose type is not resolved yet gets NoEntityID as its type. instance is
// attached to method groups and property accesses; other variants ignore
// it. The second result is false for entities that have no expression
// classification.
func Classify(g *graph.Graph, id graph.EntityID, instance Result) (Result, bool) {
	e := g.Entity(id)
	if e == nil {
		return nil, false
	}
	switch {
	case e.Kind == graph.EntityNamespace:
		return Namespace{Entity: id}, true
	case e.Kind.IsType():
		return Type{Entity: id}, true
	case e.Kind.IsVariable():
		typ, _ := graph.PeekTarget(e.Type)
		return Variable{Entity: id, Type: typ}, true
	case e.Kind == graph.EntityProperty:
		typ, _ := graph.PeekTarget(e.Type)
		return PropertyAccess{Property: id, Type: typ, Instance: instance}, true
	case e.Kind == graph.EntityMethod:
		return MethodGroup{Methods: NewMethodSet(id), Instance: instance}, true
	default:
		return nil, false
	}
}

// ClassifyMethods builds a method group over ids.
func ClassifyMethods(ids []graph.EntityID, instance Result) MethodGroup {
	return MethodGroup{Methods: NewMethodSet(ids...), Instance: instance}
}
