// Package expr classifies evaluated expressions into expression results and
// evaluates member-access expressions inside method bodies.
package expr

import (
	"fmt"

	"semgraph/internal/graph"
)

// Result is the classification of an evaluated expression. The variant set
// is closed: Namespace, Type, Value, Variable, MethodGroup, PropertyAccess
// and Null.
type Result interface {
	Kind() Kind
	result()
}

// Kind tags a Result variant.
type Kind uint8

const (
	KindNamespace Kind = iota + 1
	KindType
	KindValue
	KindVariable
	KindMethodGroup
	KindPropertyAccess
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindType:
		return "type"
	case KindValue:
		return "value"
	case KindVariable:
		return "variable"
	case KindMethodGroup:
		return "method group"
	case KindPropertyAccess:
		return "property access"
	case KindNull:
		return "null"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Typed results have an associated type.
type Typed interface {
	Result
	AssociatedType() graph.EntityID
}

// Instanced results may carry the instance expression they were reached
// through. A nil instance means static access.
type Instanced interface {
	Result
	InstanceExpr() Result
}

type Namespace struct{ Entity graph.EntityID }

type Type struct{ Entity graph.EntityID }

// Value is a typed, non-addressable result.
type Value struct{ Type graph.EntityID }

// Variable is an addressable storage location: field, parameter or local.
type Variable struct {
	Entity graph.EntityID
	Type   graph.EntityID
}

type MethodGroup struct {
	Methods  MethodSet
	Instance Result
}

type PropertyAccess struct {
	Property graph.EntityID
	Type     graph.EntityID
	Instance Result
}

// Null converts implicitly to any reference or nullable type.
type Null struct{}

func (Namespace) Kind() Kind      { return KindNamespace }
func (Type) Kind() Kind           { return KindType }
func (Value) Kind() Kind          { return KindValue }
func (Variable) Kind() Kind       { return KindVariable }
func (MethodGroup) Kind() Kind    { return KindMethodGroup }
func (PropertyAccess) Kind() Kind { return KindPropertyAccess }
func (Null) Kind() Kind           { return KindNull }

func (Namespace) result()      {}
func (Type) result()           {}
func (Value) result()          {}
func (Variable) result()       {}
func (MethodGroup) result()    {}
func (PropertyAccess) result() {}
func (Null) result()           {}

func (t Type) AssociatedType() graph.EntityID           { return t.Entity }
func (v Value) AssociatedType() graph.EntityID          { return v.Type }
func (v Variable) AssociatedType() graph.EntityID       { return v.Type }
func (p PropertyAccess) AssociatedType() graph.EntityID { return p.Type }

func (m MethodGroup) InstanceExpr() Result    { return m.Instance }
func (p PropertyAccess) InstanceExpr() Result { return p.Instance }

// IsValue reports whether r can be used where a value is required.
func IsValue(r Result) bool {
	switch r.(type) {
	case Value, Variable, PropertyAccess, Null:
		return true
	default:
		return false
	}
}

// Describe renders r for diagnostics and the CLI.
func Describe(g *graph.Graph, r Result) string {
	switch r := r.(type) {
	case Namespace:
		return "namespace " + g.QualifiedName(r.Entity)
	case Type:
		return "type " + g.QualifiedName(r.Entity)
	case Value:
		return "value of type " + g.QualifiedName(r.Type)
	case Variable:
		return fmt.Sprintf("%s %s of type %s", g.Entity(r.Entity).Kind, g.QualifiedName(r.Entity), g.QualifiedName(r.Type))
	case MethodGroup:
		s := fmt.Sprintf("method group %s (%d candidates)", g.QualifiedName(r.Methods.First()), r.Methods.Len())
		if r.Instance != nil {
			s += " on " + Describe(g, r.Instance)
		}
		return s
	case PropertyAccess:
		s := fmt.Sprintf("property %s of type %s", g.QualifiedName(r.Property), g.QualifiedName(r.Type))
		if r.Instance != nil {
			s += " on " + Describe(g, r.Instance)
		}
		return s
	case Null:
		return "null"
	case nil:
		return "no value"
	default:
		panic(fmt.Sprintf("expr: unknown result %T", r))
	}
}
