package expr

import (
	"fmt"

	"semgraph/internal/diag"
	"semgraph/internal/graph"
	"semgraph/internal/resolve"
	"semgraph/internal/source"
	"semgraph/internal/syntax"
)

// Context is the position an expression is evaluated in.
type Context struct {
	// Owner is the method, field or property whose body or initializer is
	// evaluated.
	Owner graph.EntityID
	Scope graph.Scope
	// Static is set inside static members, where no implicit this exists.
	Static bool
	// Locals holds the locals declared so far; nil outside method bodies.
	Locals *graph.DeclSpace
}

// Evaluator evaluates expressions into results. Failures are reported to
// the reporter and yield ok == false; a failed sub-expression does not
// produce further diagnostics for the expressions built on it.
type Evaluator struct {
	g   *graph.Graph
	r   *resolve.Resolver
	rep diag.Reporter

	predefined map[string]graph.EntityID
}

// NewEvaluator creates an evaluator. Not safe for concurrent use; stage
// workers create one each.
func NewEvaluator(r *resolve.Resolver, rep diag.Reporter) *Evaluator {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &Evaluator{
		g:          r.Graph(),
		r:          r,
		rep:        rep,
		predefined: make(map[string]graph.EntityID),
	}
}

func (ev *Evaluator) fail(code diag.Code, span source.Span, format string, args ...any) (Result, bool) {
	ev.rep.Report(code, diag.SevError, span, fmt.Sprintf(format, args...), nil)
	return nil, false
}

// Eval evaluates e in ctx. A successful evaluation may still yield a nil
// Result for invocations that produce no value.
func (ev *Evaluator) Eval(ctx *Context, e *syntax.Expr) (Result, bool) {
	if e == nil {
		return nil, false
	}
	switch e.Kind {
	case syntax.ExprName:
		return ev.simpleName(ctx, e)
	case syntax.ExprQualified:
		id, err := ev.r.ResolveName(e.QName, ctx.Scope, graph.CategoryNamespaceOrType)
		if err != nil {
			graph.ReportFailure(ev.rep, err, e.Span)
			return nil, false
		}
		return Classify(ev.g, id, nil)
	case syntax.ExprMember:
		target, ok := ev.Eval(ctx, e.Target)
		if !ok || target == nil {
			return nil, false
		}
		return ev.member(ctx, target, e)
	case syntax.ExprThis:
		if ctx.Static {
			return ev.fail(diag.SemaStaticMemberExpected, e.Span, "keyword 'this' is not valid in a static context")
		}
		return Value{Type: ev.thisType(ctx)}, true
	case syntax.ExprNull:
		return Null{}, true
	case syntax.ExprLiteral:
		typ, ok := ev.predefinedType(e.Literal.Keyword())
		if !ok {
			return ev.fail(diag.SemaNamespaceOrTypeUnresolved, e.Span, "predefined type '%s' is not defined", e.Literal.Keyword())
		}
		return Value{Type: typ}, true
	case syntax.ExprParen:
		inner, ok := ev.Eval(ctx, e.Target)
		if !ok {
			return nil, false
		}
		if inner != nil && !IsValue(inner) {
			return ev.fail(diag.SemaValueExpected, e.Target.Span, "%s is not valid in this context", Describe(ev.g, inner))
		}
		return inner, true
	case syntax.ExprCall:
		return ev.call(ctx, e)
	default:
		return ev.fail(diag.SynBadExpression, e.Span, "unsupported expression %s", e.Kind)
	}
}

// simpleName binds an unqualified name: locals, then parameters, then
// members of the enclosing types and their bases, then namespace-or-type
// lookup. A name with type arguments only matches generic methods of that
// arity among the members; generic types go through namespace-or-type
// lookup so they are instantiated.
func (ev *Evaluator) simpleName(ctx *Context, e *syntax.Expr) (Result, bool) {
	part := e.Member
	if !part.Generic {
		if id, ok := ev.g.Strings.Find(part.Ident); ok {
			if found := ctx.Locals.Lookup(id); len(found) > 0 {
				return Classify(ev.g, found[0], nil)
			}
			if owner := ev.g.Entity(ctx.Owner); owner != nil && owner.Kind == graph.EntityMethod {
				if found := owner.Space.Lookup(id); len(found) > 0 {
					return ev.classify(found[0], nil, e.Span)
				}
			}
		}
	}
	if found, in := ev.r.EnclosingMember(ctx.Owner, part.Ident, part.Arity()); len(found) > 0 {
		if !part.Generic || ev.g.Entity(found[0]).Kind == graph.EntityMethod {
			return ev.enclosingMember(ctx, e, found, in)
		}
	}
	name := &syntax.Name{Parts: []syntax.NamePart{part}, Span: e.Span}
	id, err := ev.r.ResolveName(name, ctx.Scope, graph.CategoryNamespaceOrType)
	if err != nil {
		graph.ReportFailure(ev.rep, err, e.Span)
		return nil, false
	}
	return Classify(ev.g, id, nil)
}

func (ev *Evaluator) enclosingMember(ctx *Context, e *syntax.Expr, found []graph.EntityID, in graph.EntityID) (Result, bool) {
	found, ok := ev.accessible(ctx, found, e.Span)
	if !ok {
		return nil, false
	}
	first := ev.g.Entity(found[0])
	if first.Kind.IsType() {
		return Type{Entity: found[0]}, true
	}
	var instance Result
	if !ctx.Static {
		instance = Value{Type: in}
	}
	if first.Kind == graph.EntityMethod {
		group := ClassifyMethods(found, instance)
		if ctx.Static {
			static := group.Methods.Filter(ev.isStatic)
			if static.Len() == 0 {
				return ev.fail(diag.SemaStaticMemberExpected, e.Span,
					"an object reference is required for the non-static method '%s' in a static context", ev.g.QualifiedName(first.ID))
			}
			group.Methods = static
		}
		return group, true
	}
	if ctx.Static && !first.IsStatic() {
		return ev.fail(diag.SemaStaticMemberExpected, e.Span,
			"an object reference is required for the non-static %s '%s' in a static context", first.Kind, ev.g.QualifiedName(first.ID))
	}
	if first.IsStatic() {
		instance = nil
	}
	return ev.classify(found[0], instance, e.Span)
}

// member evaluates target.Member.
func (ev *Evaluator) member(ctx *Context, target Result, e *syntax.Expr) (Result, bool) {
	part := e.Member
	switch t := target.(type) {
	case Namespace:
		id, err := ev.r.LookupQualified(t.Entity, part, ctx.Scope)
		if err != nil {
			graph.ReportFailure(ev.rep, err, part.Span)
			return nil, false
		}
		return Classify(ev.g, id, nil)
	case Type:
		found, ok := ev.lookup(ctx, t.Entity, part, e.Span)
		if !ok {
			return nil, false
		}
		first := ev.g.Entity(found[0])
		switch {
		case first.Kind.IsType():
			if part.Generic {
				id, err := ev.r.LookupQualified(t.Entity, part, ctx.Scope)
				if err != nil {
					graph.ReportFailure(ev.rep, err, part.Span)
					return nil, false
				}
				return Type{Entity: id}, true
			}
			return Type{Entity: found[0]}, true
		case first.Kind == graph.EntityMethod:
			group := ClassifyMethods(found, nil)
			static := group.Methods.Filter(ev.isStatic)
			if static.Len() == 0 {
				return ev.fail(diag.SemaObjectReferenceRequired, e.Span,
					"an object reference is required for the non-static method '%s'", ev.g.QualifiedName(first.ID))
			}
			group.Methods = static
			return group, true
		case !first.IsStatic():
			return ev.fail(diag.SemaObjectReferenceRequired, e.Span,
				"an object reference is required for the non-static %s '%s'", first.Kind, ev.g.QualifiedName(first.ID))
		default:
			return ev.classify(found[0], nil, e.Span)
		}
	case Value, Variable, PropertyAccess:
		typ := t.(Typed).AssociatedType()
		if !typ.IsValid() {
			// The declared type failed to resolve and was reported there.
			return nil, false
		}
		found, ok := ev.lookup(ctx, typ, part, e.Span)
		if !ok {
			return nil, false
		}
		first := ev.g.Entity(found[0])
		switch {
		case first.Kind.IsType():
			return ev.fail(diag.SemaInvalidMemberReference, e.Span,
				"cannot reference nested type '%s' through an expression", ev.g.QualifiedName(first.ID))
		case first.Kind == graph.EntityMethod:
			return ClassifyMethods(found, target), true
		case first.IsStatic():
			return ev.fail(diag.SemaInvalidMemberReference, e.Span,
				"static member '%s' cannot be accessed with an instance reference", ev.g.QualifiedName(first.ID))
		default:
			return ev.classify(found[0], target, e.Span)
		}
	case MethodGroup:
		return ev.fail(diag.SemaInvalidMemberReference, e.Span,
			"cannot access member '%s' of method group '%s'", part, ev.g.Name(t.Methods.First()))
	case Null:
		return ev.fail(diag.SemaInvalidMemberReference, e.Span, "cannot access member '%s' of null", part)
	default:
		panic(fmt.Sprintf("expr: unknown result %T", target))
	}
}

// lookup finds the accessible members named part in typ. Type arguments
// on part restrict the match to members of that arity.
func (ev *Evaluator) lookup(ctx *Context, typ graph.EntityID, part syntax.NamePart, span source.Span) ([]graph.EntityID, bool) {
	found := ev.r.LookupMember(typ, part.Ident, part.Arity())
	if len(found) == 0 {
		ev.fail(diag.SemaSimpleNameUndefined, part.Span,
			"'%s' does not contain a definition for '%s'", ev.g.QualifiedName(typ), part)
		return nil, false
	}
	return ev.accessible(ctx, found, span)
}

func (ev *Evaluator) accessible(ctx *Context, found []graph.EntityID, span source.Span) ([]graph.EntityID, bool) {
	out := make([]graph.EntityID, 0, len(found))
	for _, id := range found {
		if ev.g.IsAccessible(id, ctx.Owner) {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		e := ev.g.Entity(found[0])
		ev.fail(diag.SemaEntityInaccessible, span,
			"'%s' is inaccessible due to its protection level (%s)", ev.g.QualifiedName(found[0]), e.Access)
		return nil, false
	}
	return out, true
}

// classify resolves the declared type of a variable or property before
// classifying it, so the result carries its type.
func (ev *Evaluator) classify(id graph.EntityID, instance Result, span source.Span) (Result, bool) {
	if e := ev.g.Entity(id); e != nil && e.Type != nil {
		ev.r.Resolve(e.Type)
	}
	res, ok := Classify(ev.g, id, instance)
	if !ok {
		return ev.fail(diag.SemaInvalidMemberReference, span, "'%s' cannot be used in an expression", ev.g.QualifiedName(id))
	}
	return res, true
}

func (ev *Evaluator) isStatic(id graph.EntityID) bool {
	return ev.g.Entity(id).IsStatic()
}

func (ev *Evaluator) thisType(ctx *Context) graph.EntityID {
	return ev.g.EnclosingType(ctx.Owner)
}

// predefinedType resolves a predefined type keyword to its System type,
// caching the result per evaluator.
func (ev *Evaluator) predefinedType(keyword string) (graph.EntityID, bool) {
	if id, ok := ev.predefined[keyword]; ok {
		return id, true
	}
	name, ok := syntax.PredefinedName(keyword)
	if !ok {
		return graph.NoEntityID, false
	}
	id, err := ev.r.ResolveName(name, graph.Scope{Entity: ev.g.Global}, graph.CategoryType)
	if err != nil {
		return graph.NoEntityID, false
	}
	ev.predefined[keyword] = id
	return id, true
}

// call evaluates an invocation. The target must be a method group. When
// every candidate returns the same non-void type the call is a value of
// that type; otherwise choosing a candidate is left to overload resolution
// and the call yields no result.
func (ev *Evaluator) call(ctx *Context, e *syntax.Expr) (Result, bool) {
	target, ok := ev.Eval(ctx, e.Target)
	if !ok {
		return nil, false
	}
	for _, arg := range e.Args {
		ev.Value(ctx, arg)
	}
	group, isGroup := target.(MethodGroup)
	if !isGroup {
		return ev.fail(diag.SemaInvalidMemberReference, e.Target.Span,
			"%s cannot be invoked", Describe(ev.g, target))
	}
	var ret graph.EntityID
	for i, m := range group.Methods.Methods() {
		typ, ok := ev.r.Resolve(ev.g.Entity(m).Type)
		if !ok || (i > 0 && typ != ret) {
			return nil, true
		}
		ret = typ
	}
	if ev.isVoid(ret) {
		return nil, true
	}
	return Value{Type: ret}, true
}

func (ev *Evaluator) isVoid(id graph.EntityID) bool {
	void, ok := ev.predefinedType("void")
	return ok && id == void
}

// Value evaluates e where a value is required.
func (ev *Evaluator) Value(ctx *Context, e *syntax.Expr) (Result, bool) {
	res, ok := ev.Eval(ctx, e)
	if !ok || res == nil {
		return res, ok
	}
	if !IsValue(res) {
		return ev.fail(diag.SemaValueExpected, e.Span, "%s is not valid in this context, a value was expected", Describe(ev.g, res))
	}
	return res, true
}
