package specialize_test

import (
	"testing"

	"semgraph/internal/diag"
	"semgraph/internal/graph"
	"semgraph/internal/resolve"
	"semgraph/internal/source"
	"semgraph/internal/specialize"
	"semgraph/internal/syntax"
)

type generics struct {
	g        *graph.Graph
	r        *resolve.Resolver
	int32    graph.EntityID
	base     graph.EntityID
	list     graph.EntityID
	t        graph.EntityID
	item     graph.EntityID
	baseRef  *graph.SyntaxReference
	pending  *graph.SyntaxReference
	enumer   graph.EntityID
	enumCurr graph.EntityID
}

func newGenerics(t *testing.T) *generics {
	t.Helper()
	g := graph.New(graph.Hints{}, nil, nil)
	x := &generics{g: g}
	intern := g.Strings.Intern
	mustDeclare := func(parent graph.EntityID, e *graph.Entity) graph.EntityID {
		t.Helper()
		e.Access = graph.AccessPublic
		id, err := g.Declare(parent, e)
		if err != nil {
			t.Fatal(err)
		}
		for _, tp := range e.TypeParams {
			g.Entity(tp).Parent = id
		}
		return id
	}
	typeParam := func(name string) graph.EntityID {
		return g.NewEntity(&graph.Entity{Kind: graph.EntityTypeParameter, Name: intern(name)})
	}
	name := func(text string) *syntax.Name {
		n, err := syntax.ParseName(text, source.Span{})
		if err != nil {
			t.Fatal(err)
		}
		return n
	}

	sys := mustDeclare(g.Global, &graph.Entity{Kind: graph.EntityNamespace, Name: intern("System")})
	x.int32 = mustDeclare(sys, &graph.Entity{Kind: graph.EntityStruct, Name: intern("Int32")})
	x.base = mustDeclare(sys, &graph.Entity{Kind: graph.EntityClass, Name: intern("Base"), TypeParams: []graph.EntityID{typeParam("U")}})
	x.t = typeParam("T")
	x.list = mustDeclare(sys, &graph.Entity{Kind: graph.EntityClass, Name: intern("List"), TypeParams: []graph.EntityID{x.t}})

	list := g.Entity(x.list)
	x.baseRef = graph.FromSyntax(name("Base<T>"), list.Scope(), graph.CategoryType)
	x.pending = graph.FromSyntax(name("Int32"), list.Scope(), graph.CategoryType)
	list.Bases = []graph.Reference{x.baseRef, x.pending}

	x.item = mustDeclare(x.list, &graph.Entity{Kind: graph.EntityField, Name: intern("Item")})
	g.Entity(x.item).Type = graph.FromSyntax(name("T"), graph.Scope{Entity: x.item}, graph.CategoryType)

	x.enumer = mustDeclare(x.list, &graph.Entity{Kind: graph.EntityClass, Name: intern("Enumerator")})
	x.enumCurr = mustDeclare(x.enumer, &graph.Entity{Kind: graph.EntityProperty, Name: intern("Current")})
	g.Entity(x.enumCurr).Type = graph.FromSyntax(name("T"), graph.Scope{Entity: x.enumCurr}, graph.CategoryType)

	m := mustDeclare(x.list, &graph.Entity{Kind: graph.EntityMethod, Name: intern("Add")})
	p := mustDeclare(m, &graph.Entity{Kind: graph.EntityParameter, Name: intern("value")})
	g.Entity(m).Params = []graph.EntityID{p}
	g.Entity(p).Type = graph.FromSyntax(name("T"), graph.Scope{Entity: m}, graph.CategoryType)

	g.Freeze()
	x.r = resolve.New(g, diag.NopReporter{})
	return x
}

func TestBasesSubstitutionIsIndependent(t *testing.T) {
	x := newGenerics(t)
	if _, ok := x.r.Resolve(x.baseRef); !ok {
		t.Fatalf("Base<T> did not resolve: %v", x.baseRef.Err())
	}
	m := specialize.NewMap([]graph.EntityID{x.t}, []graph.EntityID{x.int32}, nil)

	first := specialize.Bases(x.g, x.list, m)
	second := specialize.Bases(x.g, x.list, m)
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("unexpected base counts %d, %d", len(first), len(second))
	}
	d1, ok1 := first[0].(*graph.DirectReference)
	d2, ok2 := second[0].(*graph.DirectReference)
	if !ok1 || !ok2 {
		t.Fatalf("resolved bases must become direct references: %T %T", first[0], second[0])
	}
	if d1 == d2 {
		t.Fatalf("substitutions must not share references")
	}
	if d1.Target != d2.Target {
		t.Fatalf("substitutions differ: %d vs %d", d1.Target, d2.Target)
	}
	closed := x.g.Entity(d1.Target)
	if closed.Origin != x.base || len(closed.TypeArgs) != 1 || closed.TypeArgs[0] != x.int32 {
		t.Fatalf("base should be Base<Int32>, got %s", x.g.QualifiedName(d1.Target))
	}

	// The unresolved base passes through untouched.
	if first[1] != graph.Reference(x.pending) {
		t.Fatalf("unresolved reference must be passed through unchanged")
	}
	if x.pending.Runs() != 0 {
		t.Fatalf("substitution must not trigger resolution")
	}

	// The definition still holds its own syntax reference.
	if x.g.Entity(x.list).Bases[0] != graph.Reference(x.baseRef) {
		t.Fatalf("generic definition was mutated")
	}
	if target, _ := graph.PeekTarget(x.baseRef); x.g.Entity(target).TypeArgs[0] != x.t {
		t.Fatalf("definition's base must still mention T")
	}
}

func TestInstantiateAndExpand(t *testing.T) {
	x := newGenerics(t)
	args := []graph.EntityID{x.int32}
	sys := x.g.Entity(x.list).Parent
	closed := specialize.Instantiate(x.g, x.list, sys, args)
	if again := specialize.Instantiate(x.g, x.list, sys, args); again != closed {
		t.Fatalf("instantiation not memoized")
	}
	if open := specialize.Instantiate(x.g, x.list, sys, []graph.EntityID{x.t}); open != x.list {
		t.Fatalf("instantiating with the own parameters must yield the definition")
	}
	if got := x.g.QualifiedName(closed); got != "System.List<System.Int32>" {
		t.Fatalf("QualifiedName = %q", got)
	}

	space := x.r.Space(closed)
	item := space.Lookup(x.g.Strings.Intern("Item"))
	if len(item) != 1 || item[0] == x.item {
		t.Fatalf("expanded member must be a new entity: %v", item)
	}
	if target, ok := graph.PeekTarget(x.g.Entity(item[0]).Type); !ok || target != x.int32 {
		t.Fatalf("Item should have type Int32")
	}
	if target, _ := graph.PeekTarget(x.g.Entity(x.item).Type); target != x.t {
		t.Fatalf("definition member type changed")
	}

	add := space.Lookup(x.g.Strings.Intern("Add"))
	param := x.g.Entity(x.g.Entity(add[0]).Params[0])
	if target, _ := graph.PeekTarget(param.Type); target != x.int32 {
		t.Fatalf("parameter type should be substituted")
	}

	enums := space.Lookup(x.g.Strings.Intern("Enumerator"))
	if len(enums) != 1 {
		t.Fatalf("nested type missing from expansion")
	}
	x.r.Resolve(x.g.Entity(x.enumCurr).Type)
	current := x.r.Space(enums[0]).Lookup(x.g.Strings.Intern("Current"))
	if target, _ := graph.PeekTarget(x.g.Entity(current[0]).Type); target != x.int32 {
		t.Fatalf("nested member should see the outer argument")
	}
	if m := specialize.MapOf(x.g, enums[0]); m == nil || m.Len() != 1 {
		t.Fatalf("nested map should inherit the outer binding")
	}

	before := x.g.Len()
	x.r.Space(closed)
	if x.g.Len() != before {
		t.Fatalf("expansion ran twice")
	}
}

func TestSubstituteNestedOpenType(t *testing.T) {
	x := newGenerics(t)
	m := specialize.NewMap([]graph.EntityID{x.t}, []graph.EntityID{x.int32}, nil)
	s := specialize.NewSubstituter(x.g, m)

	got := s.Type(x.enumer)
	e := x.g.Entity(got)
	if e.Origin != x.enumer {
		t.Fatalf("Enumerator inside List<T> should specialize, got %s", x.g.QualifiedName(got))
	}
	if parent := x.g.Entity(e.Parent); parent.Origin != x.list || parent.TypeArgs[0] != x.int32 {
		t.Fatalf("parent should be List<Int32>")
	}
	if s.Type(x.int32) != x.int32 {
		t.Fatalf("closed types are unaffected")
	}
}
