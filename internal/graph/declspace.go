package graph

import (
	"fmt"
	"sync/atomic"

	"semgraph/internal/diag"
	"semgraph/internal/source"
)

// DeclSpace is the name table owned by one entity. It is mutable while the
// import stages populate it and frozen before resolution starts; reads after
// Freeze need no synchronization.
type DeclSpace struct {
	Owner  EntityID
	g      *Graph
	names  map[source.StringID][]EntityID
	order  []EntityID
	frozen atomic.Bool
}

func newDeclSpace(g *Graph, owner EntityID) *DeclSpace {
	return &DeclSpace{
		Owner: owner,
		g:     g,
		names: make(map[source.StringID][]EntityID),
	}
}

// ConflictError is a declaration-time violation of the space's invariants.
type ConflictError struct {
	Code     diag.Code
	Name     string
	Span     source.Span
	Existing []source.Span
}

func (e *ConflictError) Error() string {
	switch e.Code {
	case diag.SemaTypeNameMemberNameConflict:
		return fmt.Sprintf("type name '%s' conflicts with a member of the same name", e.Name)
	case diag.SemaAliasNameConflict:
		return fmt.Sprintf("alias '%s' conflicts with a declaration in the enclosing namespace", e.Name)
	default:
		return fmt.Sprintf("the declaration space already contains a definition for '%s'", e.Name)
	}
}

// Diagnostic converts the conflict into a reportable diagnostic.
func (e *ConflictError) Diagnostic() diag.Diagnostic {
	d := diag.NewError(e.Code, e.Span, e.Error())
	for _, sp := range e.Existing {
		d = d.WithNote(sp, "previous declaration here")
	}
	return d
}

// Add binds the entity id under its name. Namespaces with the same name and
// partial types with the same kind and arity merge: Add then returns the
// already present entity and no error, and the caller continues with it.
// Any other clash is reported as a *ConflictError and leaves the space
// unchanged.
func (s *DeclSpace) Add(id EntityID) (EntityID, error) {
	if s.frozen.Load() {
		panic(fmt.Sprintf("graph: declaration space of entity %d is frozen", s.Owner))
	}
	e := s.g.Entity(id)
	if e == nil {
		panic("graph: DeclSpace.Add of unknown entity")
	}
	for _, otherID := range s.names[e.Name] {
		other := s.g.Entity(otherID)
		if code, merge, ok := compatible(other, e); !ok {
			return NoEntityID, &ConflictError{
				Code:     code,
				Name:     s.g.Strings.MustLookup(e.Name),
				Span:     e.Span,
				Existing: []source.Span{other.Span},
			}
		} else if merge {
			if other.Kind != EntityNamespace {
				other.Decls = append(other.Decls, e.Span)
			}
			return otherID, nil
		}
	}
	s.names[e.Name] = append(s.names[e.Name], id)
	s.order = append(s.order, id)
	return id, nil
}

// compatible decides whether next may join a space already holding existing
// under the same name.
func compatible(existing, next *Entity) (code diag.Code, merge, ok bool) {
	switch {
	case existing.Kind == EntityNamespace && next.Kind == EntityNamespace:
		return 0, true, true
	case existing.Kind.IsTypeDecl() && next.Kind.IsTypeDecl():
		if existing.Arity() != next.Arity() {
			return 0, false, true
		}
		if existing.Kind == next.Kind && existing.Flags&next.Flags&FlagPartial != 0 {
			return 0, true, true
		}
		return diag.SemaAmbiguousDeclarations, false, false
	case existing.Kind.IsTypeDecl() && next.Kind.IsMember(),
		existing.Kind.IsMember() && next.Kind.IsTypeDecl():
		return diag.SemaTypeNameMemberNameConflict, false, false
	case existing.Kind == EntityMethod && next.Kind == EntityMethod:
		return 0, false, true
	default:
		return diag.SemaAmbiguousDeclarations, false, false
	}
}

// Lookup returns every entity bound to name, in declaration order.
func (s *DeclSpace) Lookup(name source.StringID) []EntityID {
	if s == nil {
		return nil
	}
	return s.names[name]
}

// Members returns all bound entities in declaration order.
func (s *DeclSpace) Members() []EntityID {
	if s == nil {
		return nil
	}
	return s.order
}

// Len reports the number of bound entities.
func (s *DeclSpace) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Freeze forbids further mutation.
func (s *DeclSpace) Freeze() {
	if s != nil {
		s.frozen.Store(true)
	}
}

// Frozen reports whether Freeze was called.
func (s *DeclSpace) Frozen() bool {
	return s != nil && s.frozen.Load()
}
