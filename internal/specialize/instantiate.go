package specialize

import (
	"slices"
	"strconv"
	"strings"

	"semgraph/internal/graph"
)

// Instantiate returns the specialization of the generic definition def
// nested in parent with type arguments args. Equal requests share one
// entity. A request that names def's own parent and type parameters is the
// definition itself.
//
// The new entity is a shell: its members and bases appear on Expand.
func Instantiate(g *graph.Graph, def, parent graph.EntityID, args []graph.EntityID) graph.EntityID {
	d := g.Entity(def)
	if d == nil {
		return graph.NoEntityID
	}
	if d.Flags&graph.FlagSpecialized != 0 {
		def, d = d.Origin, g.Entity(d.Origin)
	}
	if parent == d.Parent && (len(args) == 0 || slices.Equal(args, d.TypeParams)) {
		return def
	}
	return g.InstanceOf(argsKey(def, parent, args), func() graph.EntityID {
		e := &graph.Entity{
			Kind:     d.Kind,
			Name:     d.Name,
			Parent:   parent,
			Access:   d.Access,
			Flags:    d.Flags | graph.FlagSpecialized,
			Span:     d.Span,
			Assembly: d.Assembly,
			Usings:   d.Usings,
			Origin:   def,
			TypeArgs: slices.Clone(args),
		}
		if len(args) == 0 {
			e.TypeParams = d.TypeParams
		}
		return g.NewEntity(e)
	})
}

func argsKey(def, parent graph.EntityID, args []graph.EntityID) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(uint64(def), 10))
	sb.WriteByte('@')
	sb.WriteString(strconv.FormatUint(uint64(parent), 10))
	sb.WriteByte('<')
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(a), 10))
	}
	sb.WriteByte('>')
	return sb.String()
}
