package resolve

import (
	"errors"
	"testing"

	"semgraph/internal/diag"
	"semgraph/internal/graph"
	"semgraph/internal/source"
	"semgraph/internal/syntax"
)

type fixture struct {
	t   *testing.T
	g   *graph.Graph
	bag *diag.Bag
	r   *Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	g := graph.New(graph.Hints{}, nil, nil)
	bag := diag.NewBag(0)
	return &fixture{t: t, g: g, bag: bag, r: New(g, diag.BagReporter{Bag: bag})}
}

func (f *fixture) declare(parent graph.EntityID, e *graph.Entity) graph.EntityID {
	f.t.Helper()
	id, err := f.g.Declare(parent, e)
	if err != nil {
		f.t.Fatalf("declare: %v", err)
	}
	return id
}

func (f *fixture) ns(parent graph.EntityID, name string) graph.EntityID {
	return f.declare(parent, &graph.Entity{Kind: graph.EntityNamespace, Name: f.g.Strings.Intern(name)})
}

func (f *fixture) class(parent graph.EntityID, name string, typeParams ...string) graph.EntityID {
	f.t.Helper()
	e := &graph.Entity{Kind: graph.EntityClass, Name: f.g.Strings.Intern(name), Access: graph.AccessPublic}
	for i, tp := range typeParams {
		e.TypeParams = append(e.TypeParams, f.g.NewEntity(&graph.Entity{
			Kind: graph.EntityTypeParameter, Name: f.g.Strings.Intern(tp), Position: i,
		}))
	}
	id := f.declare(parent, e)
	for _, tp := range e.TypeParams {
		f.g.Entity(tp).Parent = id
	}
	return id
}

func (f *fixture) member(parent graph.EntityID, kind graph.EntityKind, name string, access graph.Access) graph.EntityID {
	return f.declare(parent, &graph.Entity{Kind: kind, Name: f.g.Strings.Intern(name), Access: access})
}

func (f *fixture) name(text string) *syntax.Name {
	f.t.Helper()
	n, err := syntax.ParseName(text, source.Span{})
	if err != nil {
		f.t.Fatalf("parse %q: %v", text, err)
	}
	return n
}

func (f *fixture) resolve(text string, scope graph.Scope, expect graph.Category) (graph.EntityID, error) {
	f.t.Helper()
	return f.r.ResolveName(f.name(text), scope, expect)
}

func (f *fixture) want(text string, scope graph.Scope, expect graph.Category, want graph.EntityID) {
	f.t.Helper()
	got, err := f.resolve(text, scope, expect)
	if err != nil {
		f.t.Fatalf("resolve %q: %v", text, err)
	}
	if got != want {
		f.t.Fatalf("resolve %q = %s, want %s", text, f.g.QualifiedName(got), f.g.QualifiedName(want))
	}
}

func (f *fixture) wantCode(text string, scope graph.Scope, expect graph.Category, code diag.Code) *Error {
	f.t.Helper()
	_, err := f.resolve(text, scope, expect)
	var rerr *Error
	if !errors.As(err, &rerr) {
		f.t.Fatalf("resolve %q: expected *Error, got %v", text, err)
	}
	if rerr.Code != code {
		f.t.Fatalf("resolve %q: code = %s, want %s (%s)", text, rerr.Code.ID(), code.ID(), rerr.Message)
	}
	return rerr
}

func TestSimpleNameOutwardSearch(t *testing.T) {
	f := newFixture(t)
	n := f.ns(f.g.Global, "N")
	c1 := f.class(n, "C1")
	c2 := f.class(n, "C2")
	f.g.Freeze()

	f.want("C2", graph.Scope{Entity: c1}, graph.CategoryType, c2)
	f.want("N", graph.Scope{Entity: c1}, graph.CategoryNamespace, n)
	f.want("N.C2", graph.Scope{Entity: f.g.Global}, graph.CategoryNamespaceOrType, c2)
	f.want("global::N.C2", graph.Scope{Entity: c1}, graph.CategoryType, c2)
	f.wantCode("Missing", graph.Scope{Entity: c1}, graph.CategoryType, diag.SemaSimpleNameUndefined)
	f.wantCode("Missing.X", graph.Scope{Entity: c1}, graph.CategoryType, diag.SemaNamespaceOrTypeUnresolved)
}

func TestInnermostScopeWins(t *testing.T) {
	f := newFixture(t)
	n := f.ns(f.g.Global, "N")
	outerX := f.class(n, "X")
	c := f.class(n, "C")
	nestedX := f.class(c, "X")
	method := f.member(c, graph.EntityMethod, "M", graph.AccessPublic)
	f.g.Freeze()

	f.want("X", graph.Scope{Entity: method}, graph.CategoryType, nestedX)
	f.want("X", graph.Scope{Entity: n}, graph.CategoryType, outerX)
}

func TestAmbiguousImports(t *testing.T) {
	f := newFixture(t)
	a := f.ns(f.g.Global, "A")
	b := f.ns(f.g.Global, "B")
	app := f.ns(f.g.Global, "App")
	xa := f.class(a, "X")
	xb := f.class(b, "X")
	only := f.class(b, "OnlyB")
	f.ns(a, "Sub")

	file := f.g.NewUsingScope(nil, f.g.Global, 1)
	f.g.AddImport(file, source.Span{}, f.name("A"))
	f.g.AddImport(file, source.Span{}, f.name("B"))
	inner := f.g.NewUsingScope(file, app, 1)
	f.g.Freeze()

	scope := graph.Scope{Entity: app, Usings: inner}
	err := f.wantCode("X", scope, graph.CategoryType, diag.SemaAmbiguousDeclarations)
	if len(err.Candidates) != 2 || !contains(err.Candidates, xa) || !contains(err.Candidates, xb) {
		t.Fatalf("candidates = %v, want both X", err.Candidates)
	}
	if d := err.Diagnostic(); len(d.Notes) != 2 {
		t.Fatalf("expected a note per candidate, got %d", len(d.Notes))
	}
	f.want("OnlyB", scope, graph.CategoryType, only)
	// Imports bring types into scope, not nested namespaces.
	f.wantCode("Sub", scope, graph.CategoryNamespace, diag.SemaSimpleNameUndefined)
}

func TestQualifierRefersToType(t *testing.T) {
	f := newFixture(t)
	n := f.ns(f.g.Global, "N")
	outer := f.class(n, "Outer")
	inner := f.class(outer, "Inner")
	f.g.Freeze()

	f.wantCode("Outer.Inner", graph.Scope{Entity: n}, graph.CategoryNamespace, diag.SemaQualifierRefersToType)
	f.want("Outer.Inner", graph.Scope{Entity: n}, graph.CategoryType, inner)
	f.wantCode("N.Outer", graph.Scope{Entity: n}, graph.CategoryNamespace, diag.SemaNamespaceExpectedTypeFound)
	f.wantCode("N", graph.Scope{Entity: n}, graph.CategoryType, diag.SemaTypeNameExpected)
}

func TestQualifiedLookupNeverFallsBack(t *testing.T) {
	f := newFixture(t)
	a := f.ns(f.g.Global, "A")
	b := f.ns(a, "B")
	c := f.class(f.g.Global, "C")
	ctx := f.class(b, "Ctx")
	f.g.Freeze()

	f.want("C", graph.Scope{Entity: ctx}, graph.CategoryType, c)
	f.want("A.B.Ctx", graph.Scope{Entity: c}, graph.CategoryType, ctx)
	err := f.wantCode("A.B.C", graph.Scope{Entity: ctx}, graph.CategoryType, diag.SemaNamespaceOrTypeUnresolved)
	if err.Span != f.name("A.B.C").Parts[2].Span {
		t.Fatalf("failure should point at the last part, got %v", err.Span)
	}
}

func TestAliases(t *testing.T) {
	f := newFixture(t)
	sys := f.ns(f.g.Global, "System")
	coll := f.ns(sys, "Collections")
	list := f.class(coll, "List")
	app := f.ns(f.g.Global, "App")

	file := f.g.NewUsingScope(nil, f.g.Global, 1)
	if _, err := f.g.AddAlias(file, "SC", source.Span{}, f.name("System.Collections")); err != nil {
		t.Fatal(err)
	}
	if _, err := f.g.AddAlias(file, "L", source.Span{}, f.name("System.Collections.List")); err != nil {
		t.Fatal(err)
	}
	if _, err := f.g.AddAlias(file, "Broken", source.Span{}, f.name("Nope")); err != nil {
		t.Fatal(err)
	}
	block := f.g.NewUsingScope(file, app, 1)
	f.g.Freeze()
	scope := graph.Scope{Entity: app, Usings: block}

	f.want("SC.List", scope, graph.CategoryType, list)
	f.want("L", scope, graph.CategoryType, list)
	f.want("SC", scope, graph.CategoryNamespace, coll)
	f.wantCode("L", scope, graph.CategoryNamespace, diag.SemaNamespaceExpectedTypeFound)

	ref := graph.FromSyntax(f.name("Broken"), scope, graph.CategoryType)
	if _, ok := f.r.Resolve(ref); ok {
		t.Fatalf("reference through a broken alias must fail")
	}
	if !errors.Is(ref.Err(), graph.ErrDependency) {
		t.Fatalf("err = %v, want dependency failure", ref.Err())
	}
	if got := f.bag.Count(diag.SemaSimpleNameUndefined); got != 1 {
		t.Fatalf("alias target failure reported %d times, want 1", got)
	}
	if f.bag.Len() != 1 {
		t.Fatalf("dependent failure must not be reported again: %v", f.bag.Items())
	}
}

func TestSyntaxReferenceMemoized(t *testing.T) {
	f := newFixture(t)
	n := f.ns(f.g.Global, "N")
	c := f.class(n, "C")
	f.g.Freeze()

	ref := graph.FromSyntax(f.name("C"), graph.Scope{Entity: n}, graph.CategoryType)
	first, ok1 := f.r.Resolve(ref)
	second, ok2 := ref.Resolve(New(f.g, nil), nil)
	if !ok1 || !ok2 || first != c || second != first {
		t.Fatalf("got %d/%v and %d/%v, want %d twice", first, ok1, second, ok2, c)
	}
	if ref.Runs() != 1 {
		t.Fatalf("hook ran %d times", ref.Runs())
	}

	bad := graph.FromSyntax(f.name("Nope"), graph.Scope{Entity: n}, graph.CategoryType)
	for range 3 {
		if _, ok := f.r.Resolve(bad); ok {
			t.Fatalf("unexpected success")
		}
	}
	if bad.Runs() != 1 || f.bag.Count(diag.SemaSimpleNameUndefined) != 1 {
		t.Fatalf("runs=%d reports=%d, want 1 and 1", bad.Runs(), f.bag.Count(diag.SemaSimpleNameUndefined))
	}
}

func TestAccessibilityDuringLookup(t *testing.T) {
	f := newFixture(t)
	n := f.ns(f.g.Global, "N")
	host := f.class(n, "Host")
	secret := f.declare(host, &graph.Entity{Kind: graph.EntityClass, Name: f.g.Strings.Intern("Secret"), Access: graph.AccessPrivate})
	other := f.class(n, "Other")
	f.g.Freeze()

	f.want("Host.Secret", graph.Scope{Entity: host}, graph.CategoryType, secret)
	f.wantCode("Host.Secret", graph.Scope{Entity: other}, graph.CategoryType, diag.SemaEntityInaccessible)
}

func TestTypeNameExpectedForMember(t *testing.T) {
	f := newFixture(t)
	n := f.ns(f.g.Global, "N")
	c := f.class(n, "C")
	f.member(c, graph.EntityField, "Length", graph.AccessPublic)
	f.g.Freeze()

	f.wantCode("Length", graph.Scope{Entity: c}, graph.CategoryType, diag.SemaTypeNameExpected)
	f.wantCode("C.Length", graph.Scope{Entity: n}, graph.CategoryType, diag.SemaTypeNameExpected)
}

func TestGenericNames(t *testing.T) {
	f := newFixture(t)
	sys := f.ns(f.g.Global, "System")
	intType := f.class(sys, "Int32")
	list := f.class(sys, "List", "T")
	plain := f.class(sys, "List")
	method := f.declare(list, &graph.Entity{Kind: graph.EntityMethod, Name: f.g.Strings.Intern("Add"), Access: graph.AccessPublic})
	f.g.Freeze()
	scope := graph.Scope{Entity: sys}

	f.want("List", scope, graph.CategoryType, plain)
	closed, err := f.resolve("List<Int32>", scope, graph.CategoryType)
	if err != nil {
		t.Fatal(err)
	}
	e := f.g.Entity(closed)
	if e.Origin != list || len(e.TypeArgs) != 1 || e.TypeArgs[0] != intType {
		t.Fatalf("List<Int32> = %+v", e)
	}
	again, _ := f.resolve("System.List<Int32>", scope, graph.CategoryType)
	if again != closed {
		t.Fatalf("instantiation not shared: %d vs %d", again, closed)
	}
	f.want("T", graph.Scope{Entity: method}, graph.CategoryType, f.g.Entity(list).TypeParams[0])
	f.want("List<T>", graph.Scope{Entity: method}, graph.CategoryType, list)
	f.wantCode("List<Int32, Int32>", scope, graph.CategoryType, diag.SemaTypeArgumentCount)
	f.wantCode("System<Int32>.List", scope, graph.CategoryType, diag.SemaTypeArgumentInNamespace)
	f.wantCode("System.List<Int32>", scope, graph.CategoryNamespace, diag.SemaTypeArgumentInNamespace)
}

func TestMemberTypeNamingOwnInstantiation(t *testing.T) {
	f := newFixture(t)
	sys := f.ns(f.g.Global, "System")
	f.class(sys, "Int32")
	node := f.class(f.g.Global, "Node", "T")
	x := f.class(node, "X")
	field := f.member(node, graph.EntityField, "f", graph.AccessPublic)
	ref := graph.FromSyntax(f.name("Node<System.Int32>.X"), graph.Scope{Entity: node}, graph.CategoryType)
	f.g.Entity(field).Type = ref
	f.g.Freeze()

	got, ok := f.r.Resolve(ref)
	if !ok {
		t.Fatalf("resolve failed: %v", ref.Err())
	}
	e := f.g.Entity(got)
	if e.Origin != x || !specializedUnder(f.g, got, node) {
		t.Fatalf("resolved to %s, want X inside Node<Int32>", f.g.QualifiedName(got))
	}
	if ref.Runs() != 1 {
		t.Fatalf("hook ran %d times, want 1", ref.Runs())
	}
	if f.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", f.bag.Len())
	}
}

func specializedUnder(g *graph.Graph, id, def graph.EntityID) bool {
	p := g.Entity(g.Entity(id).Parent)
	return p != nil && p.Flags&graph.FlagSpecialized != 0 && p.Origin == def
}
