package graph

import (
	"errors"

	"semgraph/internal/diag"
	"semgraph/internal/lazy"
	"semgraph/internal/source"
	"semgraph/internal/syntax"
)

// Category is the kind of entity a name position requires.
type Category uint8

const (
	CategoryNamespaceOrType Category = iota
	CategoryNamespace
	CategoryType
)

func (c Category) String() string {
	switch c {
	case CategoryNamespace:
		return "namespace"
	case CategoryType:
		return "type"
	default:
		return "namespace or type"
	}
}

// Scope is the resolution context: the innermost enclosing entity plus the
// using environment the reference was written in.
type Scope struct {
	Entity EntityID
	Usings *UsingScope
}

// Binder resolves namespace-or-type names. Implemented by resolve.Resolver.
type Binder interface {
	BindName(node *syntax.Name, scope Scope, expect Category) (EntityID, error)
}

// ErrDependency marks a failure caused by another reference whose own
// failure was already reported. Such failures are cached but not reported.
var ErrDependency = errors.New("depends on an unresolved reference")

// Failure is an error that knows how to present itself as a diagnostic.
type Failure interface {
	error
	Diagnostic() diag.Diagnostic
}

// Reference is a handle to a target entity. The variant set is closed:
// *DirectReference and *SyntaxReference.
type Reference interface {
	// Resolve returns the target, resolving on first use. Failures are
	// reported to rep once per reference.
	Resolve(b Binder, rep diag.Reporter) (EntityID, bool)
	// Peek returns the target without triggering resolution.
	Peek() (EntityID, lazy.State)
	Span() source.Span
	sealed()
}

// DirectReference is constructed already resolved, e.g. by specialization.
type DirectReference struct {
	Target EntityID
	At     source.Span
}

// Direct builds a DirectReference.
func Direct(target EntityID, at source.Span) *DirectReference {
	return &DirectReference{Target: target, At: at}
}

func (r *DirectReference) Resolve(Binder, diag.Reporter) (EntityID, bool) {
	return r.Target, r.Target.IsValid()
}

func (r *DirectReference) Peek() (EntityID, lazy.State) {
	if !r.Target.IsValid() {
		return NoEntityID, lazy.Failed
	}
	return r.Target, lazy.Resolved
}

func (r *DirectReference) Span() source.Span { return r.At }
func (*DirectReference) sealed()             {}

// SyntaxReference defers to a syntax name resolved in Scope on first use.
type SyntaxReference struct {
	Node   *syntax.Name
	Scope  Scope
	Expect Category
	cell   *lazy.Resolver[Binder, EntityID]
}

// FromSyntax builds an unresolved reference to node.
func FromSyntax(node *syntax.Name, scope Scope, expect Category) *SyntaxReference {
	r := &SyntaxReference{Node: node, Scope: scope, Expect: expect}
	r.cell = lazy.New(func(b Binder) (EntityID, error) {
		return b.BindName(r.Node, r.Scope, r.Expect)
	})
	return r
}

func (r *SyntaxReference) Resolve(b Binder, rep diag.Reporter) (EntityID, bool) {
	return r.cell.Get(b, func(err error) { reportFailure(rep, err, r.Node.Span) })
}

func (r *SyntaxReference) Peek() (EntityID, lazy.State) {
	return r.cell.Peek()
}

// Err returns the cached failure, if any.
func (r *SyntaxReference) Err() error { return r.cell.Err() }

// Runs reports how often the binder hook completed for this reference.
func (r *SyntaxReference) Runs() int { return r.cell.Runs() }

func (r *SyntaxReference) Span() source.Span { return r.Node.Span }
func (*SyntaxReference) sealed()             {}

// PeekTarget returns the target of a resolved reference.
func PeekTarget(ref Reference) (EntityID, bool) {
	if ref == nil {
		return NoEntityID, false
	}
	id, state := ref.Peek()
	return id, state == lazy.Resolved
}

func reportFailure(rep diag.Reporter, err error, span source.Span) {
	if rep == nil || errors.Is(err, ErrDependency) {
		return
	}
	var f Failure
	if errors.As(err, &f) {
		d := f.Diagnostic()
		rep.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
		return
	}
	rep.Report(diag.SemaNamespaceOrTypeUnresolved, diag.SevError, span, err.Error(), nil)
}

// ReportFailure forwards err to rep as a diagnostic, falling back to span
// when err carries none.
func ReportFailure(rep diag.Reporter, err error, span source.Span) {
	reportFailure(rep, err, span)
}
