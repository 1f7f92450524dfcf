package skeleton

import (
	"errors"
	"fmt"
	"strings"

	"semgraph/internal/diag"
	"semgraph/internal/graph"
	"semgraph/internal/source"
	"semgraph/internal/syntax"
)

// Importer declares units into a graph. Declaration conflicts and
// malformed names are reported as they are found; the offending
// declaration is skipped and the import continues.
type Importer struct {
	g   *graph.Graph
	rep diag.Reporter

	unit *Unit
	file *source.File
	asm  source.StringID
	// referenced units contribute declarations only.
	referenced bool
}

// NewImporter binds an importer to g.
func NewImporter(g *graph.Graph, rep diag.Reporter) *Importer {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &Importer{g: g, rep: rep}
}

// Import declares units into the graph. Units whose assembly differs from
// root are referenced units and are imported first; the rest are the
// syntax trees under compilation. The graph advances through
// ReferencedUnitsImported to SyntaxTreesImported.
func (im *Importer) Import(root string, units []*Unit) {
	im.g.Require(graph.StateBaseLibraryImported)
	im.g.Assembly = im.g.Strings.Intern(root)

	var own []*Unit
	for _, u := range units {
		if u.Assembly != "" && u.Assembly != root {
			im.importUnit(u, true)
			continue
		}
		own = append(own, u)
	}
	im.g.Advance(graph.StateBaseLibraryImported, graph.StateReferencedUnitsImported)

	for _, u := range own {
		im.importUnit(u, false)
	}
	im.g.Advance(graph.StateReferencedUnitsImported, graph.StateSyntaxTreesImported)
}

func (im *Importer) importUnit(u *Unit, referenced bool) {
	im.unit, im.file, im.referenced = u, im.g.Files.Get(u.File), referenced
	asm := u.Assembly
	if asm == "" {
		asm = im.g.Strings.MustLookup(im.g.Assembly)
	}
	im.asm = im.g.Strings.Intern(asm)

	scope := im.g.NewUsingScope(nil, im.g.Global, u.File)
	im.usings(scope, u.Usings, u.Aliases)
	for i := range u.Namespaces {
		im.namespace(im.g.Global, scope, &u.Namespaces[i])
	}
	for i := range u.Types {
		im.typeDecl(im.g.Global, scope, &u.Types[i])
	}
}

func (im *Importer) usings(scope *graph.UsingScope, usings []Text, aliases []AliasDecl) {
	seen := make(map[string]bool, len(usings))
	for _, t := range usings {
		n, ok := im.name(t)
		if !ok {
			continue
		}
		if key := n.String(); seen[key] {
			im.rep.Report(diag.SemaDuplicateUsing, diag.SevWarning, im.span(t),
				fmt.Sprintf("the using directive for '%s' appeared previously in this scope", key), nil)
			continue
		}
		seen[n.String()] = true
		im.g.AddImport(scope, im.span(t), n)
	}
	for _, a := range aliases {
		n, ok := im.name(a.Target)
		if !ok {
			continue
		}
		if _, err := im.g.AddAlias(scope, a.Name.Value, im.span(a.Name), n); err != nil {
			im.conflict(err)
		}
	}
}

func (im *Importer) namespace(parent graph.EntityID, outer *graph.UsingScope, d *NamespaceDecl) {
	n, ok := im.name(d.Name)
	if !ok {
		return
	}
	if n.Global || n.HasTypeArgs() {
		im.report(diag.SynBadName, im.span(d.Name), "invalid namespace name '%s'", d.Name.Value)
		return
	}
	ns := parent
	for _, part := range n.Parts {
		id, err := im.g.Declare(ns, &graph.Entity{
			Kind: graph.EntityNamespace,
			Name: im.g.Strings.Intern(part.Ident),
			Span: part.Span,
		})
		if err != nil {
			im.conflict(err)
			return
		}
		ns = id
	}
	scope := im.g.NewUsingScope(outer, ns, im.unit.File)
	im.usings(scope, d.Usings, d.Aliases)
	for i := range d.Namespaces {
		im.namespace(ns, scope, &d.Namespaces[i])
	}
	for i := range d.Types {
		im.typeDecl(ns, scope, &d.Types[i])
	}
}

func (im *Importer) typeDecl(parent graph.EntityID, u *graph.UsingScope, d *TypeDecl) {
	kind, ok := graph.ParseKind(d.Kind.Value)
	if !ok {
		im.report(diag.SynUnknownKind, im.span(d.Kind), "unknown type kind '%s'", d.Kind.Value)
		return
	}
	access, ok := im.access(d.Access)
	if !ok || !im.ident(d.Name) {
		return
	}
	var flags graph.Flags
	if d.Static {
		flags |= graph.FlagStatic
	}
	if d.Partial {
		flags |= graph.FlagPartial
	}
	if d.Abstract {
		flags |= graph.FlagAbstract
	}
	if im.referenced {
		flags |= graph.FlagImported
	}

	e := &graph.Entity{
		Kind:       kind,
		Name:       im.g.Strings.Intern(d.Name.Value),
		Access:     access,
		Flags:      flags,
		Span:       im.span(d.Name),
		Assembly:   im.asm,
		Usings:     u,
		TypeParams: im.typeParams(d.TypeParams),
	}
	id, err := im.g.Declare(parent, e)
	if err != nil {
		im.conflict(err)
		return
	}
	merged := im.g.Entity(id)
	if merged != e {
		merged.Flags |= flags &^ graph.FlagPartial
	} else {
		for _, tp := range e.TypeParams {
			im.g.Entity(tp).Parent = id
		}
	}
	scope := graph.Scope{Entity: id, Usings: u}

	for _, b := range d.Bases {
		if n, ok := im.name(b); ok {
			merged.Bases = append(merged.Bases, graph.FromSyntax(n, scope, graph.CategoryType))
		}
	}
	for _, c := range d.Constraints {
		im.constraint(merged, scope, c)
	}
	for i := range d.Types {
		im.typeDecl(id, u, &d.Types[i])
	}
	for i := range d.Fields {
		im.field(id, u, graph.EntityField, &d.Fields[i])
	}
	for i := range d.Properties {
		im.field(id, u, graph.EntityProperty, &d.Properties[i])
	}
	for i := range d.Methods {
		im.method(id, u, &d.Methods[i])
	}
}

// typeParams allocates type parameter entities. Their parent is set once
// the owner is declared.
func (im *Importer) typeParams(params []Text) []graph.EntityID {
	var out []graph.EntityID
	seen := make(map[string]bool, len(params))
	for i, t := range params {
		if !im.ident(t) {
			continue
		}
		if seen[t.Value] {
			im.report(diag.SynDuplicateTypeArg, im.span(t), "duplicate type parameter '%s'", t.Value)
			continue
		}
		seen[t.Value] = true
		out = append(out, im.g.NewEntity(&graph.Entity{
			Kind:     graph.EntityTypeParameter,
			Name:     im.g.Strings.Intern(t.Value),
			Span:     im.span(t),
			Position: i,
			Assembly: im.asm,
		}))
	}
	return out
}

func (im *Importer) constraint(owner *graph.Entity, scope graph.Scope, c ConstraintDecl) {
	name := im.g.Strings.Intern(c.Param.Value)
	for _, tp := range owner.TypeParams {
		p := im.g.Entity(tp)
		if p.Name != name {
			continue
		}
		for _, t := range c.Types {
			if n, ok := im.name(t); ok {
				p.Constraints = append(p.Constraints, graph.FromSyntax(n, scope, graph.CategoryType))
			}
		}
		return
	}
	im.report(diag.SynBadName, im.span(c.Param), "'%s' is not a type parameter of '%s'",
		c.Param.Value, im.g.QualifiedName(owner.ID))
}

func (im *Importer) field(owner graph.EntityID, u *graph.UsingScope, kind graph.EntityKind, d *FieldDecl) {
	access, ok := im.access(d.Access)
	if !ok || !im.ident(d.Name) {
		return
	}
	var flags graph.Flags
	if d.Static {
		flags |= graph.FlagStatic
	}
	if d.ReadOnly {
		flags |= graph.FlagReadOnly
	}
	if im.referenced {
		flags |= graph.FlagImported
	}
	id, err := im.g.Declare(owner, &graph.Entity{
		Kind:   kind,
		Name:   im.g.Strings.Intern(d.Name.Value),
		Access: access,
		Flags:  flags,
		Span:   im.span(d.Name),
		Usings: u,
	})
	if err != nil {
		im.conflict(err)
		return
	}
	f := im.g.Entity(id)
	if n, ok := im.name(d.Type); ok {
		f.Type = graph.FromSyntax(n, f.Scope(), graph.CategoryType)
	}
	if d.Init.Set() && !im.referenced {
		f.Init, _ = im.expr(d.Init)
	}
}

func (im *Importer) method(owner graph.EntityID, u *graph.UsingScope, d *MethodDecl) {
	access, ok := im.access(d.Access)
	if !ok || !im.ident(d.Name) {
		return
	}
	var flags graph.Flags
	if d.Static {
		flags |= graph.FlagStatic
	}
	if d.Abstract {
		flags |= graph.FlagAbstract
	}
	if im.referenced {
		flags |= graph.FlagImported
	}
	e := &graph.Entity{
		Kind:       graph.EntityMethod,
		Name:       im.g.Strings.Intern(d.Name.Value),
		Access:     access,
		Flags:      flags,
		Span:       im.span(d.Name),
		Usings:     u,
		TypeParams: im.typeParams(d.TypeParams),
	}
	id, err := im.g.Declare(owner, e)
	if err != nil {
		im.conflict(err)
		return
	}
	for _, tp := range e.TypeParams {
		im.g.Entity(tp).Parent = id
	}
	scope := e.Scope()

	returns := d.Returns
	if !returns.Set() {
		returns = Text{Value: "void", Line: d.Name.Line, Column: d.Name.Column}
	}
	if n, ok := im.name(returns); ok {
		e.Type = graph.FromSyntax(n, scope, graph.CategoryType)
	}

	for _, p := range d.Params {
		if !im.ident(p.Name) {
			continue
		}
		pid, err := im.g.Declare(id, &graph.Entity{
			Kind:   graph.EntityParameter,
			Name:   im.g.Strings.Intern(p.Name.Value),
			Span:   im.span(p.Name),
			Usings: u,
		})
		if err != nil {
			im.conflict(err)
			continue
		}
		e.Params = append(e.Params, pid)
		if n, ok := im.name(p.Type); ok {
			im.g.Entity(pid).Type = graph.FromSyntax(n, scope, graph.CategoryType)
		}
	}

	if im.referenced {
		return
	}
	for _, st := range d.Body {
		if s, ok := im.stmt(st); ok {
			e.Body = append(e.Body, s)
		}
	}
}

func (im *Importer) stmt(d StmtDecl) (*syntax.Stmt, bool) {
	switch {
	case d.Local.Set():
		if !im.ident(d.Local) {
			return nil, false
		}
		st := &syntax.Stmt{Kind: syntax.StmtLocal, Name: d.Local.Value, Span: im.span(d.Local)}
		if d.Type.Set() && d.Type.Value != "var" {
			n, ok := im.name(d.Type)
			if !ok {
				return nil, false
			}
			st.Type = n
		}
		if d.Value.Set() {
			v, ok := im.expr(d.Value)
			if !ok {
				return nil, false
			}
			st.Value = v
		}
		return st, true
	case d.Expr.Set():
		v, ok := im.expr(d.Expr)
		if !ok {
			return nil, false
		}
		return &syntax.Stmt{Kind: syntax.StmtExpr, Value: v, Span: v.Span}, true
	case d.Return != nil:
		st := &syntax.Stmt{Kind: syntax.StmtReturn, Span: im.span(*d.Return)}
		if d.Return.Value != "" {
			v, ok := im.expr(*d.Return)
			if !ok {
				return nil, false
			}
			st.Value = v
		}
		return st, true
	default:
		im.report(diag.SynBadStatement, source.Span{File: im.unit.File}, "empty statement in %s", im.unit.Path)
		return nil, false
	}
}

func (im *Importer) access(t Text) (graph.Access, bool) {
	a, ok := graph.ParseAccess(strings.Join(strings.Fields(t.Value), " "))
	if !ok {
		im.report(diag.SynUnknownAccess, im.span(t), "unknown accessibility '%s'", t.Value)
	}
	return a, ok
}

func (im *Importer) ident(t Text) bool {
	n, err := syntax.ParseName(t.Value, im.span(t))
	if err != nil || !n.IsSimple() || n.HasTypeArgs() || n.Keyword != "" {
		im.report(diag.SynBadName, im.span(t), "invalid identifier '%s'", t.Value)
		return false
	}
	return true
}

func (im *Importer) name(t Text) (*syntax.Name, bool) {
	n, err := syntax.ParseName(t.Value, im.span(t))
	if err != nil {
		im.parseError(err, t, diag.SynBadName)
		return nil, false
	}
	return n, true
}

func (im *Importer) expr(t Text) (*syntax.Expr, bool) {
	e, err := syntax.ParseExpr(t.Value, im.span(t))
	if err != nil {
		im.parseError(err, t, diag.SynBadExpression)
		return nil, false
	}
	return e, true
}

func (im *Importer) parseError(err error, t Text, code diag.Code) {
	span := im.span(t)
	var pe *syntax.ParseError
	if errors.As(err, &pe) {
		span = pe.Span
	}
	im.report(code, span, "'%s': %v", t.Value, err)
}

// span locates t inside the unit file.
func (im *Importer) span(t Text) source.Span {
	if !t.Set() {
		return source.Span{File: im.unit.File}
	}
	start := im.file.Offset(t.Line, t.Column)
	if t.Quoted {
		start++
	}
	return source.Span{File: im.unit.File, Start: start, End: start + source.Off(len(t.Value))}
}

func (im *Importer) conflict(err error) {
	var f graph.Failure
	if errors.As(err, &f) {
		d := f.Diagnostic()
		im.rep.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
		return
	}
	im.report(diag.SynBadUnit, source.Span{File: im.unit.File}, "%v", err)
}

func (im *Importer) report(code diag.Code, span source.Span, format string, args ...any) {
	im.rep.Report(code, diag.SevError, span, fmt.Sprintf(format, args...), nil)
}
