package expr

import (
	"slices"

	"semgraph/internal/graph"
)

// MethodSet is an immutable set of candidate methods. Duplicates collapse;
// members are kept sorted by ID so equal sets compare equal.
type MethodSet struct {
	ids []graph.EntityID
}

// NewMethodSet builds a set from ids.
func NewMethodSet(ids ...graph.EntityID) MethodSet {
	out := slices.Clone(ids)
	slices.Sort(out)
	return MethodSet{ids: slices.Compact(out)}
}

// Len reports the number of distinct methods.
func (s MethodSet) Len() int { return len(s.ids) }

// Contains reports membership.
func (s MethodSet) Contains(id graph.EntityID) bool {
	_, ok := slices.BinarySearch(s.ids, id)
	return ok
}

// Methods returns a copy of the members in ID order.
func (s MethodSet) Methods() []graph.EntityID { return slices.Clone(s.ids) }

// First returns the lowest member or NoEntityID for the empty set.
func (s MethodSet) First() graph.EntityID {
	if len(s.ids) == 0 {
		return graph.NoEntityID
	}
	return s.ids[0]
}

// Equal reports whether both sets hold the same methods.
func (s MethodSet) Equal(other MethodSet) bool { return slices.Equal(s.ids, other.ids) }

// Filter returns the subset satisfying keep.
func (s MethodSet) Filter(keep func(graph.EntityID) bool) MethodSet {
	var out []graph.EntityID
	for _, id := range s.ids {
		if keep(id) {
			out = append(out, id)
		}
	}
	return MethodSet{ids: out}
}
