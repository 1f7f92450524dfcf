package expr

import (
	"errors"

	"semgraph/internal/diag"
	"semgraph/internal/graph"
	"semgraph/internal/syntax"
)

// Observer receives every statement-level result. Results are not kept
// anywhere else.
type Observer func(owner graph.EntityID, e *syntax.Expr, res Result)

// Body evaluates the statements of method. Locals enter a block space
// created for the body; redeclaring a local or shadowing a parameter is
// reported as an ambiguous declaration.
func (ev *Evaluator) Body(method graph.EntityID, observe Observer) {
	m := ev.g.Entity(method)
	if m == nil {
		return
	}
	ctx := &Context{
		Owner:  method,
		Scope:  m.Scope(),
		Static: m.IsStatic(),
		Locals: ev.g.NewSpace(method),
	}
	for _, st := range m.Body {
		ev.statement(ctx, st, observe)
	}
}

func (ev *Evaluator) statement(ctx *Context, st *syntax.Stmt, observe Observer) {
	var (
		res Result
		ok  bool
	)
	switch st.Kind {
	case syntax.StmtLocal:
		ev.local(ctx, st, observe)
		return
	case syntax.StmtExpr:
		res, ok = ev.Eval(ctx, st.Value)
	case syntax.StmtReturn:
		if st.Value == nil {
			return
		}
		res, ok = ev.Value(ctx, st.Value)
	default:
		ev.fail(diag.SynBadStatement, st.Span, "unsupported statement")
		return
	}
	if ok && observe != nil {
		observe(ctx.Owner, st.Value, res)
	}
}

func (ev *Evaluator) local(ctx *Context, st *syntax.Stmt, observe Observer) {
	var value Result
	if st.Value != nil {
		res, ok := ev.Value(ctx, st.Value)
		if ok && observe != nil {
			observe(ctx.Owner, st.Value, res)
		}
		value = res
	}

	local := &graph.Entity{
		Kind:     graph.EntityLocal,
		Name:     ev.g.Strings.Intern(st.Name),
		Parent:   ctx.Owner,
		Span:     st.Span,
		Usings:   ctx.Scope.Usings,
		Assembly: ev.g.Entity(ctx.Owner).Assembly,
	}
	switch {
	case st.Type != nil:
		ref := graph.FromSyntax(st.Type, ctx.Scope, graph.CategoryType)
		ev.r.Resolve(ref)
		local.Type = ref
	case value != nil:
		if typed, ok := value.(Typed); ok {
			local.Type = graph.Direct(typed.AssociatedType(), st.Span)
		}
	}

	if owner := ev.g.Entity(ctx.Owner); owner.Kind == graph.EntityMethod {
		if params := owner.Space.Lookup(local.Name); len(params) > 0 {
			ev.fail(diag.SemaAmbiguousDeclarations, st.Span,
				"a local named '%s' cannot be declared in this scope because it would shadow a parameter", st.Name)
			return
		}
	}
	id := ev.g.NewEntity(local)
	if _, err := ctx.Locals.Add(id); err != nil {
		var conflict *graph.ConflictError
		if errors.As(err, &conflict) {
			d := conflict.Diagnostic()
			ev.rep.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
		}
	}
}

// Initializer evaluates the initializer of a field.
func (ev *Evaluator) Initializer(field graph.EntityID, observe Observer) {
	f := ev.g.Entity(field)
	if f == nil || f.Init == nil {
		return
	}
	ctx := &Context{
		Owner:  field,
		Scope:  f.Scope(),
		Static: f.IsStatic(),
	}
	res, ok := ev.Value(ctx, f.Init)
	if ok && observe != nil {
		observe(field, f.Init, res)
	}
}
