package graph

import (
	"semgraph/internal/diag"
	"semgraph/internal/source"
	"semgraph/internal/syntax"
)

// UsingScope is the using environment of one namespace declaration block in
// one file: its aliases and using-namespace imports, chained to the block
// that encloses it.
type UsingScope struct {
	Parent    *UsingScope
	Namespace EntityID
	File      source.FileID
	Aliases   []*Alias
	Imports   []*Import

	aliasIndex map[source.StringID]*Alias
}

// Alias is a `using Name = Target;` directive.
type Alias struct {
	Name   source.StringID
	Span   source.Span
	Target *SyntaxReference
}

// Import is a `using Namespace;` directive.
type Import struct {
	Span   source.Span
	Target *SyntaxReference
}

// NewUsingScope opens a using environment for namespace ns nested in parent.
func (g *Graph) NewUsingScope(parent *UsingScope, ns EntityID, file source.FileID) *UsingScope {
	u := &UsingScope{
		Parent:     parent,
		Namespace:  ns,
		File:       file,
		aliasIndex: make(map[source.StringID]*Alias),
	}
	g.mu.Lock()
	g.usings = append(g.usings, u)
	g.mu.Unlock()
	return u
}

// AddAlias declares an alias. Alias targets resolve in the enclosing using
// environment, never in the block that declares them. A second alias with
// the same name in one block is a conflict.
func (g *Graph) AddAlias(u *UsingScope, name string, span source.Span, target *syntax.Name) (*Alias, error) {
	id := g.Strings.Intern(name)
	if prev, ok := u.aliasIndex[id]; ok {
		return nil, &ConflictError{
			Code:     diag.SemaAmbiguousDeclarations,
			Name:     name,
			Span:     span,
			Existing: []source.Span{prev.Span},
		}
	}
	a := &Alias{
		Name:   id,
		Span:   span,
		Target: FromSyntax(target, Scope{Entity: u.Namespace, Usings: u.Parent}, CategoryNamespaceOrType),
	}
	u.Aliases = append(u.Aliases, a)
	u.aliasIndex[id] = a
	return a, nil
}

// AddImport declares a using-namespace directive. The target resolves as a
// namespace name in the enclosing using environment.
func (g *Graph) AddImport(u *UsingScope, span source.Span, target *syntax.Name) *Import {
	imp := &Import{
		Span:   span,
		Target: FromSyntax(target, Scope{Entity: u.Namespace, Usings: u.Parent}, CategoryNamespace),
	}
	u.Imports = append(u.Imports, imp)
	return imp
}

// Alias returns the alias named name declared directly in u.
func (u *UsingScope) Alias(name source.StringID) (*Alias, bool) {
	if u == nil {
		return nil, false
	}
	a, ok := u.aliasIndex[name]
	return a, ok
}

// UsingScopes returns every using environment created so far.
func (g *Graph) UsingScopes() []*UsingScope {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*UsingScope, len(g.usings))
	copy(out, g.usings)
	return out
}

// AliasConflicts returns one conflict per alias whose name is also declared
// in the namespace owning the alias directive.
func (g *Graph) AliasConflicts() []*ConflictError {
	var out []*ConflictError
	for _, u := range g.UsingScopes() {
		ns := g.Entity(u.Namespace)
		if ns == nil {
			continue
		}
		for _, a := range u.Aliases {
			clash := ns.Space.Lookup(a.Name)
			if len(clash) == 0 {
				continue
			}
			spans := make([]source.Span, 0, len(clash))
			for _, id := range clash {
				spans = append(spans, g.Entity(id).Span)
			}
			out = append(out, &ConflictError{
				Code:     diag.SemaAliasNameConflict,
				Name:     g.Strings.MustLookup(a.Name),
				Span:     a.Span,
				Existing: spans,
			})
		}
	}
	return out
}
