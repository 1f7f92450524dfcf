// Package corelib imports the base library: the System namespace with the
// types predefined keywords name, and the handful of members programs use
// on them.
package corelib

import (
	"fmt"

	"semgraph/internal/graph"
	"semgraph/internal/source"
)

// Assembly is the name of the base library assembly.
const Assembly = "corlib"

// Entry describes one base library type.
type Entry struct {
	Name    string
	Kind    graph.EntityKind
	Base    string // base type name in System, "" for none
	Members []Member
}

// Member describes a member of a base library type. Type names refer to
// System types.
type Member struct {
	Name   string
	Kind   graph.EntityKind
	Type   string
	Static bool
	Params []string
}

// builtinEntries returns the default base library.
func builtinEntries() []Entry {
	objectMembers := []Member{
		{Name: "ToString", Kind: graph.EntityMethod, Type: "String"},
		{Name: "GetHashCode", Kind: graph.EntityMethod, Type: "Int32"},
		{Name: "Equals", Kind: graph.EntityMethod, Type: "Boolean", Params: []string{"Object"}},
		{Name: "ReferenceEquals", Kind: graph.EntityMethod, Type: "Boolean", Static: true, Params: []string{"Object", "Object"}},
	}
	numeric := func(name string) Entry {
		return Entry{Name: name, Kind: graph.EntityStruct, Base: "ValueType", Members: []Member{
			{Name: "MaxValue", Kind: graph.EntityField, Type: name, Static: true},
			{Name: "MinValue", Kind: graph.EntityField, Type: name, Static: true},
			{Name: "Parse", Kind: graph.EntityMethod, Type: name, Static: true, Params: []string{"String"}},
		}}
	}
	return []Entry{
		{Name: "Object", Kind: graph.EntityClass, Members: objectMembers},
		{Name: "ValueType", Kind: graph.EntityClass, Base: "Object"},
		{Name: "Void", Kind: graph.EntityStruct, Base: "ValueType"},
		{Name: "Boolean", Kind: graph.EntityStruct, Base: "ValueType"},
		{Name: "Char", Kind: graph.EntityStruct, Base: "ValueType"},
		{Name: "String", Kind: graph.EntityClass, Base: "Object", Members: []Member{
			{Name: "Length", Kind: graph.EntityProperty, Type: "Int32"},
			{Name: "Empty", Kind: graph.EntityField, Type: "String", Static: true},
			{Name: "Concat", Kind: graph.EntityMethod, Type: "String", Static: true, Params: []string{"String", "String"}},
			{Name: "Substring", Kind: graph.EntityMethod, Type: "String", Params: []string{"Int32"}},
			{Name: "Substring", Kind: graph.EntityMethod, Type: "String", Params: []string{"Int32", "Int32"}},
		}},
		numeric("SByte"), numeric("Byte"),
		numeric("Int16"), numeric("UInt16"),
		numeric("Int32"), numeric("UInt32"),
		numeric("Int64"), numeric("UInt64"),
		numeric("Single"), numeric("Double"), numeric("Decimal"),
	}
}

// Import declares the base library into g and advances it to
// BaseLibraryImported.
func Import(g *graph.Graph) (graph.EntityID, error) {
	g.Require(graph.StateCreated)
	asm := g.Strings.Intern(Assembly)
	sys, err := g.Declare(g.Global, &graph.Entity{
		Kind: graph.EntityNamespace, Name: g.Strings.Intern("System"), Flags: graph.FlagBuiltin,
	})
	if err != nil {
		return graph.NoEntityID, err
	}

	entries := builtinEntries()
	types := make(map[string]graph.EntityID, len(entries))
	for _, en := range entries {
		id, err := g.Declare(sys, &graph.Entity{
			Kind:     en.Kind,
			Name:     g.Strings.Intern(en.Name),
			Access:   graph.AccessPublic,
			Flags:    graph.FlagBuiltin | graph.FlagImported,
			Assembly: asm,
		})
		if err != nil {
			return graph.NoEntityID, fmt.Errorf("corelib: %s: %w", en.Name, err)
		}
		types[en.Name] = id
	}
	ref := func(name string) graph.Reference {
		return graph.Direct(types[name], source.Span{})
	}
	for _, en := range entries {
		owner := types[en.Name]
		if en.Base != "" {
			g.Entity(owner).Bases = []graph.Reference{ref(en.Base)}
		}
		for _, m := range en.Members {
			if err := declareMember(g, owner, m, ref); err != nil {
				return graph.NoEntityID, fmt.Errorf("corelib: %s.%s: %w", en.Name, m.Name, err)
			}
		}
	}
	g.Advance(graph.StateCreated, graph.StateBaseLibraryImported)
	return sys, nil
}

func declareMember(g *graph.Graph, owner graph.EntityID, m Member, ref func(string) graph.Reference) error {
	flags := graph.FlagBuiltin | graph.FlagImported
	if m.Static {
		flags |= graph.FlagStatic
	}
	id, err := g.Declare(owner, &graph.Entity{
		Kind:   m.Kind,
		Name:   g.Strings.Intern(m.Name),
		Access: graph.AccessPublic,
		Flags:  flags,
		Type:   ref(m.Type),
	})
	if err != nil {
		return err
	}
	method := g.Entity(id)
	for i, p := range m.Params {
		pid, err := g.Declare(id, &graph.Entity{
			Kind:  graph.EntityParameter,
			Name:  g.Strings.Intern(fmt.Sprintf("arg%d", i)),
			Flags: graph.FlagBuiltin,
			Type:  ref(p),
		})
		if err != nil {
			return err
		}
		method.Params = append(method.Params, pid)
	}
	return nil
}
