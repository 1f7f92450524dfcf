package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"semgraph/internal/diag"
	"semgraph/internal/expr"
	"semgraph/internal/graph"
	"semgraph/internal/source"
	"semgraph/internal/syntax"
)

// planMerge freezes every declaration space; partial types were merged as
// they were declared. Alias names clashing with a member of the namespace
// that owns the directive are reported here, before any lookup.
func planMerge(r *runner) []task {
	return []task{{
		unit:  "<graph>",
		label: "freeze",
		do: func(context.Context) {
			r.g.Freeze()
			for _, c := range r.g.AliasConflicts() {
				d := c.Diagnostic()
				r.rep.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
			}
		},
	}}
}

// sources returns the entities declared by imported units, in arena order.
// Builtins hold only direct references and specialized entities are
// materialized on demand, so neither needs a stage pass.
func (r *runner) sources(keep func(*graph.Entity) bool) []*graph.Entity {
	var out []*graph.Entity
	for _, e := range r.g.Entities() {
		if e.Flags&(graph.FlagBuiltin|graph.FlagSpecialized) != 0 {
			continue
		}
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (r *runner) entityTask(e *graph.Entity, do func()) task {
	return task{
		unit:  r.unitOf(e),
		label: "entity:" + r.g.QualifiedName(e.ID),
		do:    func(context.Context) { do() },
	}
}

func (r *runner) resolveAll(refs []graph.Reference) {
	for _, ref := range refs {
		if ref != nil {
			r.res.Resolve(ref)
		}
	}
}

// planDeclarations resolves using directives, base types and type
// parameter constraints.
func planDeclarations(r *runner) []task {
	var tasks []task
	for _, u := range r.g.UsingScopes() {
		if len(u.Aliases) == 0 && len(u.Imports) == 0 {
			continue
		}
		unit := "<usings>"
		if f := r.g.Files.Get(u.File); f != nil {
			unit = f.Path
		}
		tasks = append(tasks, task{
			unit:  unit,
			label: "usings:" + unit,
			do: func(context.Context) {
				for _, a := range u.Aliases {
					r.res.Resolve(a.Target)
				}
				for _, imp := range u.Imports {
					r.res.Resolve(imp.Target)
				}
			},
		})
	}

	generic := func(e *graph.Entity) bool {
		return e.Kind.IsTypeDecl() || (e.Kind == graph.EntityMethod && e.Arity() > 0)
	}
	for _, e := range r.sources(generic) {
		tasks = append(tasks, r.entityTask(e, func() {
			r.resolveAll(e.Bases)
			for _, tp := range e.TypeParams {
				r.resolveAll(r.g.Entity(tp).Constraints)
			}
		}))
	}
	return tasks
}

// planBodies resolves the declared types of fields, properties, method
// returns and parameters.
func planBodies(r *runner) []task {
	typed := func(e *graph.Entity) bool {
		return e.Type != nil && (e.Kind.IsMember() || e.Kind == graph.EntityParameter)
	}
	var tasks []task
	for _, e := range r.sources(typed) {
		tasks = append(tasks, r.entityTask(e, func() { r.res.Resolve(e.Type) }))
	}
	return tasks
}

// planExpressions evaluates method bodies and field initializers. Each task
// owns its evaluator; the resolver and the graph are shared.
func planExpressions(r *runner) []task {
	evaluated := func(e *graph.Entity) bool {
		return (e.Kind == graph.EntityMethod && len(e.Body) > 0) ||
			(e.Kind == graph.EntityField && e.Init != nil)
	}
	var observe expr.Observer
	if r.opts.Observer != nil {
		observe = func(owner graph.EntityID, e *syntax.Expr, res expr.Result) {
			r.opts.Observer(owner, e, res)
		}
	}
	var tasks []task
	for _, e := range r.sources(evaluated) {
		tasks = append(tasks, r.entityTask(e, func() {
			ev := expr.NewEvaluator(r.res, r.rep)
			if e.Kind == graph.EntityMethod {
				ev.Body(e.ID, observe)
				return
			}
			ev.Initializer(e.ID, observe)
		}))
	}
	return tasks
}

// checkCircularBases reports every type that takes part in a cycle of base
// types, once. Bases bound to a constructed type count as edges to its
// generic definition.
func checkCircularBases(r *runner) {
	types := r.sources(func(e *graph.Entity) bool { return e.Kind.IsTypeDecl() })
	edges := make(map[graph.EntityID][]graph.EntityID, len(types))
	for _, e := range types {
		for _, ref := range e.Bases {
			target, ok := graph.PeekTarget(ref)
			if !ok {
				continue
			}
			if t := r.g.Entity(target); t.Flags&graph.FlagSpecialized != 0 {
				target = t.Origin
			}
			edges[e.ID] = append(edges[e.ID], target)
		}
	}

	for _, scc := range stronglyConnected(types, edges) {
		if len(scc) == 1 && !slices.Contains(edges[scc[0]], scc[0]) {
			continue
		}
		slices.Sort(scc)
		names := make([]string, len(scc))
		for i, id := range scc {
			names[i] = "'" + r.g.QualifiedName(id) + "'"
		}
		for _, id := range scc {
			e := r.g.Entity(id)
			r.rep.Report(diag.SemaCircularBaseDependency, diag.SevError, baseSpan(e, scc),
				fmt.Sprintf("circular base type dependency involving %s", strings.Join(names, ", ")), nil)
		}
	}
}

// baseSpan points at the first base reference that stays inside the cycle.
func baseSpan(e *graph.Entity, cycle []graph.EntityID) source.Span {
	for _, ref := range e.Bases {
		if target, ok := graph.PeekTarget(ref); ok && slices.Contains(cycle, target) {
			return ref.Span()
		}
	}
	return e.Span
}

// stronglyConnected is Tarjan's algorithm over the base graph.
func stronglyConnected(nodes []*graph.Entity, edges map[graph.EntityID][]graph.EntityID) [][]graph.EntityID {
	var (
		index   = make(map[graph.EntityID]int)
		low     = make(map[graph.EntityID]int)
		onStack = make(map[graph.EntityID]bool)
		stack   []graph.EntityID
		next    int
		out     [][]graph.EntityID
	)
	var visit func(v graph.EntityID)
	visit = func(v graph.EntityID) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range edges[v] {
			if _, seen := index[w]; !seen {
				visit(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] == index[v] {
			var scc []graph.EntityID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			out = append(out, scc)
		}
	}
	for _, n := range nodes {
		if _, seen := index[n.ID]; !seen {
			visit(n.ID)
		}
	}
	return out
}
