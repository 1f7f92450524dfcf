package graph

import (
	"slices"
	"strings"
	"sync"

	"semgraph/internal/source"
)

// Hints provide optional capacity suggestions for the arenas.
type Hints struct{ Entities uint32 }

// Graph is the semantic graph: the entity arena, the global namespace, the
// using environments and the generic instantiation cache.
type Graph struct {
	Strings  *source.Interner
	Files    *source.FileSet
	Global   EntityID
	Assembly source.StringID // the assembly under compilation

	entities *Entities

	mu        sync.RWMutex
	state     BuildState
	usings    []*UsingScope
	instances map[string]EntityID
}

// New builds an empty graph holding only the global namespace.
func New(h Hints, strings *source.Interner, files *source.FileSet) *Graph {
	if strings == nil {
		strings = source.NewInterner()
	}
	if files == nil {
		files = source.NewFileSet()
	}
	g := &Graph{
		Strings:   strings,
		Files:     files,
		entities:  NewEntities(h.Entities),
		instances: make(map[string]EntityID),
	}
	global := &Entity{Kind: EntityNamespace, Access: AccessPublic}
	g.Global = g.entities.New(global)
	global.Space = newDeclSpace(g, g.Global)
	return g
}

// Entity returns the entity for id or nil.
func (g *Graph) Entity(id EntityID) *Entity {
	return g.entities.Get(id)
}

// Len reports the number of allocated entities.
func (g *Graph) Len() int { return g.entities.Len() }

// Entities returns a snapshot of every entity, in allocation order.
func (g *Graph) Entities() []*Entity { return g.entities.Snapshot() }

// NewEntity allocates e without binding it in any declaration space. Kinds
// that introduce bindings get an empty space.
func (g *Graph) NewEntity(e *Entity) EntityID {
	id := g.entities.New(e)
	switch {
	case e.Kind == EntityNamespace, e.Kind.IsTypeDecl(), e.Kind == EntityMethod:
		e.Space = newDeclSpace(g, id)
	}
	return id
}

// NewSpace creates an unfrozen declaration space owned by owner. The
// expression stage uses it for block scopes.
func (g *Graph) NewSpace(owner EntityID) *DeclSpace {
	return newDeclSpace(g, owner)
}

// Declare allocates e as a child of parent and binds it in the parent's
// declaration space. When the space merges it into an existing namespace or
// partial type, the existing ID is returned and e is discarded.
func (g *Graph) Declare(parent EntityID, e *Entity) (EntityID, error) {
	p := g.Entity(parent)
	if p == nil || p.Space == nil {
		panic("graph.Declare: parent has no declaration space")
	}
	e.Parent = parent
	if e.Assembly == source.NoStringID && p.Kind != EntityNamespace {
		e.Assembly = p.Assembly
	}
	if e.Access == AccessDefault {
		e.Access = DefaultAccess(e.Kind, p.Kind)
	}
	id := g.NewEntity(e)
	bound, err := p.Space.Add(id)
	if err != nil {
		return NoEntityID, err
	}
	return bound, nil
}

// Name returns the entity's simple name.
func (g *Graph) Name(id EntityID) string {
	e := g.Entity(id)
	if e == nil {
		return "<none>"
	}
	s, _ := g.Strings.Lookup(e.Name)
	return s
}

// QualifiedName renders the entity's dotted name including type arguments of
// specialized types.
func (g *Graph) QualifiedName(id EntityID) string {
	e := g.Entity(id)
	if e == nil {
		return "<none>"
	}
	if id == g.Global {
		return "global"
	}
	var parts []string
	for cur := e; cur != nil && cur.ID != g.Global; cur = g.Entity(cur.Parent) {
		parts = append(parts, g.displayName(cur))
		if cur.Kind == EntityTypeParameter || cur.Kind == EntityLocal || cur.Kind == EntityParameter {
			break
		}
	}
	slices.Reverse(parts)
	return strings.Join(parts, ".")
}

func (g *Graph) displayName(e *Entity) string {
	name := g.Strings.MustLookup(e.Name)
	switch {
	case len(e.TypeArgs) > 0:
		args := make([]string, len(e.TypeArgs))
		for i, a := range e.TypeArgs {
			args[i] = g.QualifiedName(a)
		}
		return name + "<" + strings.Join(args, ", ") + ">"
	case len(e.TypeParams) > 0:
		params := make([]string, len(e.TypeParams))
		for i, p := range e.TypeParams {
			params[i] = g.Name(p)
		}
		return name + "<" + strings.Join(params, ", ") + ">"
	}
	return name
}

// EnclosingTypes returns the declared types enclosing id, innermost first,
// including id itself when it is a type.
func (g *Graph) EnclosingTypes(id EntityID) []EntityID {
	var out []EntityID
	for cur := id; cur.IsValid(); {
		e := g.Entity(cur)
		if e == nil {
			break
		}
		if e.Kind.IsTypeDecl() {
			out = append(out, cur)
		}
		cur = e.Parent
	}
	return out
}

// EnclosingType returns the innermost declared type around id.
func (g *Graph) EnclosingType(id EntityID) EntityID {
	if types := g.EnclosingTypes(id); len(types) > 0 {
		return types[0]
	}
	return NoEntityID
}

// EnclosingNamespace returns the innermost namespace around id.
func (g *Graph) EnclosingNamespace(id EntityID) EntityID {
	for cur := id; cur.IsValid(); {
		e := g.Entity(cur)
		if e == nil {
			break
		}
		if e.Kind == EntityNamespace {
			return cur
		}
		cur = e.Parent
	}
	return g.Global
}

// Freeze freezes every declaration space in the graph.
func (g *Graph) Freeze() {
	for _, e := range g.Entities() {
		e.Space.Freeze()
	}
}

// InstanceOf returns the memoized entity registered under key, creating it
// with create on first request. create must not call InstanceOf.
func (g *Graph) InstanceOf(key string, create func() EntityID) EntityID {
	g.mu.RLock()
	id, ok := g.instances[key]
	g.mu.RUnlock()
	if ok {
		return id
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if id, ok := g.instances[key]; ok {
		return id
	}
	id = create()
	g.instances[key] = id
	return id
}

// Instances returns the IDs of every memoized instantiation.
func (g *Graph) Instances() []EntityID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]EntityID, 0, len(g.instances))
	for _, id := range g.instances {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
