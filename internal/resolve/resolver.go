// Package resolve binds namespace-or-type names to graph entities and
// performs member lookup over type base chains.
//
// Unqualified names search outward from the context entity: method type
// parameters, then for each enclosing type its type parameters and its own
// members, then for each enclosing namespace the aliases declared at that
// level, the namespace members and the types of all namespaces imported at
// that level. The first level with a match wins. Qualified names resolve
// the qualifier first and look the last part up strictly inside it.
package resolve

import (
	"fmt"

	"semgraph/internal/diag"
	"semgraph/internal/graph"
	"semgraph/internal/lazy"
	"semgraph/internal/source"
	"semgraph/internal/specialize"
	"semgraph/internal/syntax"
)

// Resolver implements graph.Binder over one graph. It is safe for
// concurrent use once the graph's declaration spaces are frozen.
type Resolver struct {
	g   *graph.Graph
	rep diag.Reporter

	// pending holds the references the current call chain is binding. It
	// is nil on the shared resolver; Resolve binds through a per-chain copy.
	pending map[graph.Reference]struct{}
}

var _ graph.Binder = (*Resolver)(nil)

// New creates a resolver. rep receives the failures of references the
// resolver forces along the way, such as alias and import targets.
func New(g *graph.Graph, rep diag.Reporter) *Resolver {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &Resolver{g: g, rep: rep}
}

// Graph returns the graph the resolver binds into.
func (r *Resolver) Graph() *graph.Graph { return r.g }

// BindName implements graph.Binder.
func (r *Resolver) BindName(node *syntax.Name, scope graph.Scope, expect graph.Category) (graph.EntityID, error) {
	return r.ResolveName(node, scope, expect)
}

// Resolve resolves ref, reporting a failure once through the resolver's
// reporter. A reference asked for again while its own binding is still
// running on the same call chain yields false without touching its cell;
// expanding a generic type from inside one of its member signatures does
// that.
func (r *Resolver) Resolve(ref graph.Reference) (graph.EntityID, bool) {
	if ref == nil {
		return graph.NoEntityID, false
	}
	if _, state := ref.Peek(); state != lazy.Unresolved {
		return ref.Resolve(r, r.rep)
	}
	c := r
	if c.pending == nil {
		c = &Resolver{g: r.g, rep: r.rep, pending: make(map[graph.Reference]struct{})}
	}
	if _, busy := c.pending[ref]; busy {
		return graph.NoEntityID, false
	}
	c.pending[ref] = struct{}{}
	defer delete(c.pending, ref)
	return ref.Resolve(c, c.rep)
}

// ResolveName binds a namespace-or-type name written in scope. The result
// is checked against the category the position expects.
func (r *Resolver) ResolveName(n *syntax.Name, scope graph.Scope, expect graph.Category) (graph.EntityID, error) {
	if n == nil || len(n.Parts) == 0 {
		return graph.NoEntityID, r.fail(diag.SemaNamespaceOrTypeUnresolved, source.Span{}, "empty name")
	}
	if expect == graph.CategoryNamespace && n.HasTypeArgs() {
		return graph.NoEntityID, r.fail(diag.SemaTypeArgumentInNamespace, n.Span,
			fmt.Sprintf("namespace name '%s' cannot have type arguments", n))
	}

	var (
		id  graph.EntityID
		err error
	)
	switch {
	case n.Global:
		id, err = r.qualified(graph.NoEntityID, n, 0, scope, expect)
	case len(n.Parts) == 1:
		id, err = r.simple(n.Parts[0], scope, true)
	default:
		var head graph.EntityID
		head, err = r.simple(n.Parts[0], scope, false)
		if err == nil {
			id, err = r.qualified(head, n, 1, scope, expect)
		}
	}
	if err != nil {
		return graph.NoEntityID, err
	}
	return r.expectCategory(id, n, expect)
}

func (r *Resolver) expectCategory(id graph.EntityID, n *syntax.Name, expect graph.Category) (graph.EntityID, error) {
	e := r.g.Entity(id)
	switch expect {
	case graph.CategoryNamespace:
		if e.Kind != graph.EntityNamespace {
			return graph.NoEntityID, r.fail(diag.SemaNamespaceExpectedTypeFound, n.Span,
				fmt.Sprintf("'%s' is a %s but a namespace was expected", r.g.QualifiedName(id), e.Kind))
		}
	case graph.CategoryType:
		if !e.Kind.IsType() {
			return graph.NoEntityID, r.fail(diag.SemaTypeNameExpected, n.Span,
				fmt.Sprintf("'%s' is a %s but is used like a type", r.g.QualifiedName(id), e.Kind))
		}
	}
	return id, nil
}

// qualified walks parts[from:] starting at head. A zero head means the
// global namespace.
func (r *Resolver) qualified(head graph.EntityID, n *syntax.Name, from int, scope graph.Scope, expect graph.Category) (graph.EntityID, error) {
	cur := head
	if !cur.IsValid() {
		cur = r.g.Global
	}
	for i := from; i < len(n.Parts); i++ {
		part := n.Parts[i]
		q := r.g.Entity(cur)
		if q.Kind != graph.EntityNamespace && expect == graph.CategoryNamespace {
			return graph.NoEntityID, r.fail(diag.SemaQualifierRefersToType, n.Parts[i-1].Span,
				fmt.Sprintf("qualifier '%s' refers to a type, a namespace was expected", r.g.QualifiedName(cur)))
		}
		next, err := r.member(cur, part, scope)
		if err != nil {
			return graph.NoEntityID, err
		}
		cur = next
	}
	return cur, nil
}

// member looks part up strictly inside the namespace or type q.
func (r *Resolver) member(q graph.EntityID, part syntax.NamePart, scope graph.Scope) (graph.EntityID, error) {
	name, ok := r.g.Strings.Find(part.Ident)
	var found, others []graph.EntityID
	if ok {
		found, others = r.filter(r.Space(q).Lookup(name), part.Arity())
	}
	qe := r.g.Entity(q)
	if len(found) == 0 {
		if qe.Kind != graph.EntityNamespace && len(others) > 0 && !part.Generic {
			return graph.NoEntityID, r.notAType(others[0], part.Span)
		}
		if err := r.arityMismatch(others, part); err != nil {
			return graph.NoEntityID, err
		}
		where := "namespace"
		if qe.Kind != graph.EntityNamespace {
			where = "type"
		}
		return graph.NoEntityID, r.fail(diag.SemaNamespaceOrTypeUnresolved, part.Span,
			fmt.Sprintf("the type or namespace name '%s' does not exist in the %s '%s'", part, where, r.g.QualifiedName(q)))
	}
	if len(found) > 1 {
		return graph.NoEntityID, r.ambiguous(part.Span, part.String(), found)
	}
	return r.finish(found[0], part, scope)
}

// simple resolves a single unqualified part by outward search. whole
// reports whether the part is the entire name, which selects the failure
// code when nothing is found.
func (r *Resolver) simple(part syntax.NamePart, scope graph.Scope, whole bool) (graph.EntityID, error) {
	name, known := r.g.Strings.Find(part.Ident)
	var lastOthers []graph.EntityID
	if known {
		for cur := scope.Entity; cur.IsValid(); {
			e := r.g.Entity(cur)
			if e == nil {
				break
			}
			switch {
			case e.Kind == graph.EntityMethod || e.Kind.IsTypeDecl():
				if !part.Generic {
					if tp, ok := r.typeParam(e, name); ok {
						return tp, nil
					}
				}
				if !e.Kind.IsTypeDecl() {
					break
				}
				found, others := r.filter(r.Space(cur).Lookup(name), part.Arity())
				if len(found) == 1 {
					return r.finish(found[0], part, scope)
				}
				if len(found) > 1 {
					return graph.NoEntityID, r.ambiguous(part.Span, part.String(), found)
				}
				if len(others) > 0 && !part.Generic && r.g.Entity(others[0]).Kind.IsMember() {
					return graph.NoEntityID, r.notAType(others[0], part.Span)
				}
				lastOthers = append(lastOthers, others...)
			case e.Kind == graph.EntityNamespace:
				id, done, others, err := r.namespaceLevel(cur, name, part, scope)
				if done {
					return id, err
				}
				lastOthers = append(lastOthers, others...)
			}
			cur = e.Parent
		}
	}
	if err := r.arityMismatch(lastOthers, part); err != nil {
		return graph.NoEntityID, err
	}
	if whole {
		return graph.NoEntityID, r.fail(diag.SemaSimpleNameUndefined, part.Span,
			fmt.Sprintf("the name '%s' does not exist in the current context", part))
	}
	return graph.NoEntityID, r.fail(diag.SemaNamespaceOrTypeUnresolved, part.Span,
		fmt.Sprintf("the type or namespace name '%s' could not be found", part))
}

// namespaceLevel searches one namespace level: aliases declared in the
// using block for ns, then ns itself, then the namespaces imported there.
func (r *Resolver) namespaceLevel(ns graph.EntityID, name source.StringID, part syntax.NamePart, scope graph.Scope) (graph.EntityID, bool, []graph.EntityID, error) {
	u := usingsFor(scope.Usings, ns)
	if u != nil && !part.Generic {
		if a, ok := u.Alias(name); ok {
			target, ok := r.Resolve(a.Target)
			if !ok {
				return graph.NoEntityID, true, nil, fmt.Errorf("alias '%s': %w", part.Ident, graph.ErrDependency)
			}
			return target, true, nil, nil
		}
	}

	found, others := r.filter(r.Space(ns).Lookup(name), part.Arity())
	switch len(found) {
	case 0:
	case 1:
		id, err := r.finish(found[0], part, scope)
		return id, true, nil, err
	default:
		return graph.NoEntityID, true, nil, r.ambiguous(part.Span, part.String(), found)
	}
	if u == nil {
		return graph.NoEntityID, false, others, nil
	}

	var imported []graph.EntityID
	for _, imp := range u.Imports {
		target, ok := r.Resolve(imp.Target)
		if !ok {
			continue
		}
		cands, more := r.filter(r.Space(target).Lookup(name), part.Arity())
		others = append(others, more...)
		for _, c := range cands {
			if r.g.Entity(c).Kind.IsTypeDecl() && !contains(imported, c) {
				imported = append(imported, c)
			}
		}
	}
	switch len(imported) {
	case 0:
		return graph.NoEntityID, false, others, nil
	case 1:
		id, err := r.finish(imported[0], part, scope)
		return id, true, nil, err
	default:
		return graph.NoEntityID, true, nil, r.ambiguous(part.Span, part.String(), imported)
	}
}

// filter splits ids into namespace-or-type candidates of the requested
// arity and everything else. Namespaces match any arity so that type
// arguments on them fail with a precise error.
func (r *Resolver) filter(ids []graph.EntityID, arity int) (found, others []graph.EntityID) {
	for _, id := range ids {
		e := r.g.Entity(id)
		switch {
		case e.Kind == graph.EntityNamespace:
			found = append(found, id)
		case e.Kind.IsTypeDecl() && e.Arity() == arity:
			found = append(found, id)
		default:
			others = append(others, id)
		}
	}
	return found, others
}

func (r *Resolver) typeParam(e *graph.Entity, name source.StringID) (graph.EntityID, bool) {
	for _, tp := range e.TypeParams {
		if p := r.g.Entity(tp); p != nil && p.Name == name {
			return tp, true
		}
	}
	return graph.NoEntityID, false
}

// finish checks accessibility of the candidate and applies type arguments.
func (r *Resolver) finish(id graph.EntityID, part syntax.NamePart, scope graph.Scope) (graph.EntityID, error) {
	e := r.g.Entity(id)
	if !r.g.IsAccessible(id, scope.Entity) {
		return graph.NoEntityID, r.fail(diag.SemaEntityInaccessible, part.Span,
			fmt.Sprintf("'%s' is inaccessible due to its protection level (%s)", r.g.QualifiedName(id), e.Access))
	}
	if !part.Generic {
		return id, nil
	}
	if e.Kind == graph.EntityNamespace {
		return graph.NoEntityID, r.fail(diag.SemaTypeArgumentInNamespace, part.Span,
			fmt.Sprintf("namespace '%s' cannot be used with type arguments", r.g.QualifiedName(id)))
	}
	args := make([]graph.EntityID, len(part.TypeArgs))
	for i, a := range part.TypeArgs {
		arg, err := r.ResolveName(a, scope, graph.CategoryType)
		if err != nil {
			return graph.NoEntityID, err
		}
		args[i] = arg
	}
	def := id
	if e.Flags&graph.FlagSpecialized != 0 {
		def = e.Origin
	}
	return specialize.Instantiate(r.g, def, e.Parent, args), nil
}

func (r *Resolver) notAType(id graph.EntityID, span source.Span) error {
	e := r.g.Entity(id)
	return r.fail(diag.SemaTypeNameExpected, span,
		fmt.Sprintf("'%s' is a %s but is used like a type", r.g.QualifiedName(id), e.Kind))
}

// arityMismatch reports a generic type named with the wrong number of type
// arguments when no type of the requested arity exists.
func (r *Resolver) arityMismatch(others []graph.EntityID, part syntax.NamePart) error {
	for _, id := range others {
		e := r.g.Entity(id)
		if e.Kind.IsTypeDecl() && e.Arity() != part.Arity() {
			return r.fail(diag.SemaTypeArgumentCount, part.Span,
				fmt.Sprintf("using the type '%s' requires %d type arguments", r.g.QualifiedName(id), e.Arity()))
		}
	}
	return nil
}

// Space returns the declaration space of id, expanding specialized types
// first. The definition's member signatures are resolved beforehand so the
// expansion substitutes bound references.
func (r *Resolver) Space(id graph.EntityID) *graph.DeclSpace {
	e := r.g.Entity(id)
	if e == nil {
		return nil
	}
	if e.Flags&graph.FlagSpecialized != 0 && e.Kind.IsTypeDecl() {
		r.prepare(e.Origin)
		specialize.Expand(r.g, id)
	}
	return e.Space
}

func (r *Resolver) prepare(def graph.EntityID) {
	d := r.g.Entity(def)
	if d == nil {
		return
	}
	for _, b := range d.Bases {
		r.prepareRef(b)
	}
	for _, mid := range d.Space.Members() {
		m := r.g.Entity(mid)
		r.prepareRef(m.Type)
		for _, p := range m.Params {
			r.prepareRef(r.g.Entity(p).Type)
		}
	}
}

func (r *Resolver) prepareRef(ref graph.Reference) {
	if ref == nil {
		return
	}
	if _, state := ref.Peek(); state == lazy.Unresolved {
		r.Resolve(ref)
	}
}

func usingsFor(u *graph.UsingScope, ns graph.EntityID) *graph.UsingScope {
	for cur := u; cur != nil; cur = cur.Parent {
		if cur.Namespace == ns {
			return cur
		}
	}
	return nil
}

func contains(ids []graph.EntityID, id graph.EntityID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// LookupQualified looks part up strictly inside the namespace or type q, as
// the last step of a qualified name.
func (r *Resolver) LookupQualified(q graph.EntityID, part syntax.NamePart, scope graph.Scope) (graph.EntityID, error) {
	return r.member(q, part, scope)
}
