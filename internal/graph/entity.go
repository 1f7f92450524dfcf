package graph

import (
	"sync"

	"semgraph/internal/source"
	"semgraph/internal/syntax"
)

// Entity is a node of the semantic graph. Entities are owned by the graph
// arena and referenced everywhere else by EntityID.
type Entity struct {
	ID       EntityID
	Kind     EntityKind
	Name     source.StringID
	Parent   EntityID
	Access   Access
	Flags    Flags
	Span     source.Span
	Assembly source.StringID

	// Space holds the names the entity declares: namespace and type members,
	// method parameters. Nil for entities that introduce no bindings.
	Space *DeclSpace
	// Usings is the using environment of the entity's declaration site.
	Usings *UsingScope
	// Decls lists every declaration site of a merged partial type.
	Decls []source.Span

	TypeParams  []EntityID  // generic types and methods
	Position    int         // type parameters: index in the owner's list
	Bases       []Reference // types
	Constraints []Reference // type parameters
	Type        Reference   // field, property, parameter, local; method return type
	Params      []EntityID  // methods
	Body        []*syntax.Stmt
	Init        *syntax.Expr // field initializer

	Origin   EntityID   // specialized entities: the generic definition
	TypeArgs []EntityID // specialized types: arguments in parameter order

	expandOnce sync.Once
}

// IsStatic reports whether the entity carries the static modifier.
func (e *Entity) IsStatic() bool { return e.Flags&FlagStatic != 0 }

// Arity is the number of type parameters the entity declares.
func (e *Entity) Arity() int { return len(e.TypeParams) }

// Scope returns the resolution context anchored at the entity.
func (e *Entity) Scope() Scope {
	return Scope{Entity: e.ID, Usings: e.Usings}
}

// Expand runs fn once for the entity. Specialized types use it to
// materialize their members on first use.
func (e *Entity) Expand(fn func()) {
	e.expandOnce.Do(fn)
}
