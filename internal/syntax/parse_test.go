package syntax

import (
	"errors"
	"testing"

	"semgraph/internal/source"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		parts int
		args  int // type arguments of the last part
	}{
		{"C2", "C2", 1, 0},
		{"N.C1", "N.C1", 2, 0},
		{"System.Collections.List<int>", "System.Collections.List<int>", 3, 1},
		{"Dictionary<string, List<T>>", "Dictionary<string, List<T>>", 1, 2},
		{"global::N.C", "global::N.C", 2, 0},
		{"int", "int", 2, 0},
	}
	for _, tt := range tests {
		n, err := ParseName(tt.in, source.Span{})
		if err != nil {
			t.Fatalf("ParseName(%q): %v", tt.in, err)
		}
		if got := n.String(); got != tt.want {
			t.Fatalf("ParseName(%q).String() = %q", tt.in, got)
		}
		if len(n.Parts) != tt.parts {
			t.Fatalf("ParseName(%q) parts = %d, want %d", tt.in, len(n.Parts), tt.parts)
		}
		if got := n.Last().Arity(); got != tt.args {
			t.Fatalf("ParseName(%q) arity = %d, want %d", tt.in, got, tt.args)
		}
	}
}

func TestParseNameKeywordExpands(t *testing.T) {
	n, err := ParseName("string", source.Span{})
	if err != nil {
		t.Fatalf("ParseName: %v", err)
	}
	if !n.Global || n.Parts[0].Ident != "System" || n.Parts[1].Ident != "String" {
		t.Fatalf("keyword did not expand to global::System.String: %+v", n)
	}
}

func TestParseNameSpansAreOffsetByBase(t *testing.T) {
	n, err := ParseName("A.B", source.Span{File: 3, Start: 100, End: 103})
	if err != nil {
		t.Fatalf("ParseName: %v", err)
	}
	if n.Span != (source.Span{File: 3, Start: 100, End: 103}) {
		t.Fatalf("span = %v", n.Span)
	}
	if q := n.Qualifier(); q.String() != "A" || q.Span.End != 101 {
		t.Fatalf("qualifier = %q %v", q.String(), q.Span)
	}
}

func TestParseNameErrors(t *testing.T) {
	for _, in := range []string{"", "A.", "A<", "A<B", "1A", "A..B", "N.int", "A$"} {
		_, err := ParseName(in, source.Span{})
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("ParseName(%q) error = %v, want *ParseError", in, err)
		}
	}
}

func TestParseExpr(t *testing.T) {
	tests := []struct {
		in   string
		kind ExprKind
		want string
	}{
		{"obj.Length", ExprMember, "obj.Length"},
		{"MyType.Length", ExprMember, "MyType.Length"},
		{"null", ExprNull, "null"},
		{"this.x", ExprMember, "this.x"},
		{"42", ExprLiteral, "42"},
		{"3.5", ExprLiteral, "3.5"},
		{`"hi"`, ExprLiteral, `"hi"`},
		{"(a)", ExprParen, "(a)"},
		{"a.M(1, b)", ExprCall, "a.M(1, b)"},
		{"int.MaxValue", ExprMember, "int.MaxValue"},
		{"global::N.C", ExprMember, "global::N.C"},
		{"List<int>.Empty", ExprMember, "List<int>.Empty"},
	}
	for _, tt := range tests {
		e, err := ParseExpr(tt.in, source.Span{})
		if err != nil {
			t.Fatalf("ParseExpr(%q): %v", tt.in, err)
		}
		if e.Kind != tt.kind {
			t.Fatalf("ParseExpr(%q) kind = %s, want %s", tt.in, e.Kind, tt.kind)
		}
		if got := e.String(); got != tt.want {
			t.Fatalf("ParseExpr(%q).String() = %q", tt.in, got)
		}
	}
}

func TestParseExprLiteralKinds(t *testing.T) {
	tests := map[string]LiteralKind{
		"1":     LitInt,
		"1.25":  LitDouble,
		`"s"`:   LitString,
		"'c'":   LitChar,
		"true":  LitBool,
		"false": LitBool,
	}
	for in, want := range tests {
		e, err := ParseExpr(in, source.Span{})
		if err != nil {
			t.Fatalf("ParseExpr(%q): %v", in, err)
		}
		if e.Literal != want {
			t.Fatalf("ParseExpr(%q) literal = %d, want %d", in, e.Literal, want)
		}
	}
}
