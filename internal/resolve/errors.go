package resolve

import (
	"semgraph/internal/diag"
	"semgraph/internal/graph"
	"semgraph/internal/source"
)

// Error is a resolution failure. It carries the diagnostic code for its
// kind and, for ambiguities, every colliding candidate.
type Error struct {
	Code       diag.Code
	Span       source.Span
	Message    string
	Candidates []graph.EntityID

	notes []diag.Note
}

func (e *Error) Error() string { return e.Message }

// Diagnostic converts the failure into an error diagnostic.
func (e *Error) Diagnostic() diag.Diagnostic {
	d := diag.NewError(e.Code, e.Span, e.Message)
	d.Notes = append(d.Notes, e.notes...)
	return d
}

func (r *Resolver) fail(code diag.Code, span source.Span, msg string) *Error {
	return &Error{Code: code, Span: span, Message: msg}
}

func (r *Resolver) ambiguous(span source.Span, name string, candidates []graph.EntityID) *Error {
	err := &Error{
		Code:       diag.SemaAmbiguousDeclarations,
		Span:       span,
		Message:    "'" + name + "' is ambiguous between " + r.listNames(candidates),
		Candidates: candidates,
	}
	for _, c := range candidates {
		e := r.g.Entity(c)
		if e == nil {
			continue
		}
		err.notes = append(err.notes, diag.Note{Span: e.Span, Msg: "candidate " + r.g.QualifiedName(c)})
	}
	return err
}

func (r *Resolver) listNames(ids []graph.EntityID) string {
	out := ""
	for i, id := range ids {
		switch {
		case i == 0:
		case i == len(ids)-1:
			out += " and "
		default:
			out += ", "
		}
		out += "'" + r.g.QualifiedName(id) + "'"
	}
	return out
}
