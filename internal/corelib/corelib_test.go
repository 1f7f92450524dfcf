package corelib

import (
	"testing"

	"semgraph/internal/graph"
	"semgraph/internal/syntax"
)

func TestImportDeclaresPredefinedTypes(t *testing.T) {
	g := graph.New(graph.Hints{}, nil, nil)
	sys, err := Import(g)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if g.State() != graph.StateBaseLibraryImported {
		t.Fatalf("state = %s", g.State())
	}
	space := g.Entity(sys).Space
	for keyword, name := range syntax.Predefined {
		found := space.Lookup(g.Strings.Intern(name))
		if len(found) != 1 {
			t.Fatalf("%s: System.%s not declared", keyword, name)
		}
		if g.Entity(found[0]).Flags&graph.FlagBuiltin == 0 {
			t.Fatalf("%s should be builtin", name)
		}
	}

	str := space.Lookup(g.Strings.Intern("String"))[0]
	subs := g.Entity(str).Space.Lookup(g.Strings.Intern("Substring"))
	if len(subs) != 2 {
		t.Fatalf("Substring overloads = %d, want 2", len(subs))
	}
	if got := len(g.Entity(subs[1]).Params); got != 2 {
		t.Fatalf("second overload has %d params", got)
	}
}

func TestImportRequiresFreshGraph(t *testing.T) {
	g := graph.New(graph.Hints{}, nil, nil)
	if _, err := Import(g); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("second import must panic")
		}
	}()
	_, _ = Import(g)
}
