package syntax

import (
	"strings"

	"semgraph/internal/source"
)

// ExprKind enumerates the expression forms the evaluator classifies.
type ExprKind uint8

const (
	ExprInvalid   ExprKind = iota
	ExprName               // simple name, possibly generic
	ExprQualified          // global:: name or predefined type keyword
	ExprMember             // Target.Member
	ExprThis
	ExprNull
	ExprLiteral
	ExprParen
	ExprCall
)

func (k ExprKind) String() string {
	switch k {
	case ExprName:
		return "name"
	case ExprQualified:
		return "qualified"
	case ExprMember:
		return "member"
	case ExprThis:
		return "this"
	case ExprNull:
		return "null"
	case ExprLiteral:
		return "literal"
	case ExprParen:
		return "paren"
	case ExprCall:
		return "call"
	default:
		return "invalid"
	}
}

// LiteralKind distinguishes literal value types.
type LiteralKind uint8

const (
	LitNone LiteralKind = iota
	LitInt
	LitDouble
	LitString
	LitChar
	LitBool
)

// Keyword returns the predefined type keyword of the literal's type.
func (k LiteralKind) Keyword() string {
	switch k {
	case LitInt:
		return "int"
	case LitDouble:
		return "double"
	case LitString:
		return "string"
	case LitChar:
		return "char"
	case LitBool:
		return "bool"
	default:
		return ""
	}
}

// Expr is an expression node.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Member  NamePart // ExprName, ExprMember
	QName   *Name    // ExprQualified
	Target  *Expr    // ExprMember, ExprParen, ExprCall
	Args    []*Expr  // ExprCall
	Literal LiteralKind
	Text    string
}

func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case ExprName:
		return e.Member.String()
	case ExprQualified:
		return e.QName.String()
	case ExprMember:
		return e.Target.String() + "." + e.Member.String()
	case ExprThis:
		return "this"
	case ExprNull:
		return "null"
	case ExprLiteral:
		return e.Text
	case ExprParen:
		return "(" + e.Target.String() + ")"
	case ExprCall:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = a.String()
		}
		return e.Target.String() + "(" + strings.Join(args, ", ") + ")"
	default:
		return "<invalid>"
	}
}

// StmtKind enumerates body statements.
type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	StmtLocal
	StmtExpr
	StmtReturn
)

// Stmt is one statement of a method body.
type Stmt struct {
	Kind  StmtKind
	Span  source.Span
	Name  string // StmtLocal
	Type  *Name  // StmtLocal; nil means the declared type is inferred (var)
	Value *Expr
}
