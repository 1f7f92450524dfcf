package resolve

import (
	"semgraph/internal/graph"
)

// Bases resolves the direct bases of typ. Type parameters yield their
// constraints. Failed references are skipped; their failure is reported
// once by the reference itself.
func (r *Resolver) Bases(typ graph.EntityID) []graph.EntityID {
	e := r.g.Entity(typ)
	if e == nil {
		return nil
	}
	refs := e.Bases
	switch {
	case e.Kind == graph.EntityTypeParameter:
		refs = e.Constraints
	case e.Flags&graph.FlagSpecialized != 0:
		r.Space(typ)
	}
	out := make([]graph.EntityID, 0, len(refs))
	for _, ref := range refs {
		if id, ok := r.Resolve(ref); ok {
			out = append(out, id)
		}
	}
	return out
}

// LookupMember returns the members named name declared in typ or inherited
// from its bases. A non-method member hides everything with its name further
// up the chain; methods accumulate across levels until such a member is
// met. With arity > 0 only generic members of that arity match.
func (r *Resolver) LookupMember(typ graph.EntityID, name string, arity int) []graph.EntityID {
	id, ok := r.g.Strings.Find(name)
	if !ok {
		return nil
	}
	var (
		out  []graph.EntityID
		seen = make(map[graph.EntityID]bool)
		work = []graph.EntityID{typ}
	)
	for len(work) > 0 {
		cur := work[0]
		work = work[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true

		var level []graph.EntityID
		for _, m := range r.Space(cur).Lookup(id) {
			if arity > 0 && r.g.Entity(m).Arity() != arity {
				continue
			}
			level = append(level, m)
		}
		if len(level) > 0 {
			methods := true
			for _, m := range level {
				if r.g.Entity(m).Kind != graph.EntityMethod {
					methods = false
				}
			}
			if !methods {
				if len(out) == 0 {
					return level
				}
				return out
			}
			out = append(out, level...)
		}
		work = append(work, r.Bases(cur)...)
	}
	return out
}

// EnclosingMember looks name up as a member of the types enclosing ctx,
// innermost first, and returns the first non-empty result with the type it
// was found in. arity filters as in LookupMember.
func (r *Resolver) EnclosingMember(ctx graph.EntityID, name string, arity int) ([]graph.EntityID, graph.EntityID) {
	for _, t := range r.g.EnclosingTypes(ctx) {
		if found := r.LookupMember(t, name, arity); len(found) > 0 {
			return found, t
		}
	}
	return nil, graph.NoEntityID
}
