package syntax

import (
	"fmt"

	"semgraph/internal/source"
)

type parser struct {
	toks []token
	pos  int
	file source.FileID
}

// ParseName parses a namespace-or-type name. base locates text inside its
// file so node spans point at the original document.
func ParseName(text string, base source.Span) (*Name, error) {
	p, err := newParser(text, base)
	if err != nil {
		return nil, err
	}
	n, err := p.name()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokEOF); err != nil {
		return nil, err
	}
	return n, nil
}

// ParseExpr parses a member-access expression.
func ParseExpr(text string, base source.Span) (*Expr, error) {
	p, err := newParser(text, base)
	if err != nil {
		return nil, err
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokEOF); err != nil {
		return nil, err
	}
	return e, nil
}

func newParser(text string, base source.Span) (*parser, error) {
	toks, err := scan(text, base)
	if err != nil {
		return nil, err
	}
	return &parser{toks: toks, file: base.File}, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) span(start, end uint32) source.Span {
	return source.Span{File: p.file, Start: start, End: end}
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &ParseError{Span: p.span(t.start, t.end), Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(kind tokKind) error {
	if t := p.peek(); t.kind != kind {
		return p.errorf(t, "expected %s, found %s", kind, t.kind)
	}
	p.next()
	return nil
}

func (p *parser) name() (*Name, error) {
	first := p.peek()
	if first.kind != tokIdent {
		return nil, p.errorf(first, "expected identifier, found %s", first.kind)
	}
	if n, ok := PredefinedName(first.text); ok {
		p.next()
		n.Span = p.span(first.start, first.end)
		for i := range n.Parts {
			n.Parts[i].Span = n.Span
		}
		return n, nil
	}
	n := &Name{}
	if first.text == "global" && p.toks[p.pos+1].kind == tokColonColon {
		p.next()
		p.next()
		n.Global = true
	}
	for {
		part, err := p.namePart()
		if err != nil {
			return nil, err
		}
		n.Parts = append(n.Parts, part)
		if p.peek().kind != tokDot {
			break
		}
		p.next()
	}
	n.Span = p.span(first.start, n.Last().Span.End)
	return n, nil
}

func (p *parser) namePart() (NamePart, error) {
	t := p.peek()
	if t.kind != tokIdent {
		return NamePart{}, p.errorf(t, "expected identifier, found %s", t.kind)
	}
	if _, ok := Predefined[t.text]; ok {
		return NamePart{}, p.errorf(t, "keyword %q cannot be used as a name part", t.text)
	}
	p.next()
	part := NamePart{Ident: t.text, Span: p.span(t.start, t.end)}
	if p.peek().kind == tokLAngle {
		args, end, err := p.typeArgs()
		if err != nil {
			return NamePart{}, err
		}
		part.Generic = true
		part.TypeArgs = args
		part.Span.End = end
	}
	return part, nil
}

func (p *parser) typeArgs() ([]*Name, uint32, error) {
	p.next() // '<'
	var args []*Name
	for {
		arg, err := p.name()
		if err != nil {
			return nil, 0, err
		}
		args = append(args, arg)
		if p.peek().kind != tokComma {
			break
		}
		p.next()
	}
	closing := p.peek()
	if err := p.expect(tokRAngle); err != nil {
		return nil, 0, err
	}
	return args, closing.end, nil
}

func (p *parser) expr() (*Expr, error) {
	e, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokDot:
			p.next()
			part, err := p.namePart()
			if err != nil {
				return nil, err
			}
			e = &Expr{Kind: ExprMember, Target: e, Member: part, Span: p.span(e.Span.Start, part.Span.End)}
		case tokLParen:
			p.next()
			var args []*Expr
			for p.peek().kind != tokRParen {
				arg, err := p.expr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.peek().kind != tokComma {
					break
				}
				p.next()
			}
			closing := p.peek()
			if err := p.expect(tokRParen); err != nil {
				return nil, err
			}
			e = &Expr{Kind: ExprCall, Target: e, Args: args, Span: p.span(e.Span.Start, closing.end)}
		default:
			return e, nil
		}
	}
}

func (p *parser) primary() (*Expr, error) {
	t := p.peek()
	switch t.kind {
	case tokIdent:
		switch t.text {
		case "this":
			p.next()
			return &Expr{Kind: ExprThis, Span: p.span(t.start, t.end)}, nil
		case "null":
			p.next()
			return &Expr{Kind: ExprNull, Span: p.span(t.start, t.end), Text: "null"}, nil
		case "true", "false":
			p.next()
			return &Expr{Kind: ExprLiteral, Literal: LitBool, Text: t.text, Span: p.span(t.start, t.end)}, nil
		}
		if _, ok := Predefined[t.text]; ok || t.text == "global" && p.toks[p.pos+1].kind == tokColonColon {
			return p.qualified()
		}
		part, err := p.namePart()
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprName, Member: part, Span: part.Span}, nil
	case tokInt, tokDouble, tokString, tokChar:
		p.next()
		lit := map[tokKind]LiteralKind{tokInt: LitInt, tokDouble: LitDouble, tokString: LitString, tokChar: LitChar}[t.kind]
		return &Expr{Kind: ExprLiteral, Literal: lit, Text: t.text, Span: p.span(t.start, t.end)}, nil
	case tokLParen:
		p.next()
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		closing := p.peek()
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprParen, Target: inner, Span: p.span(t.start, closing.end)}, nil
	default:
		return nil, p.errorf(t, "expected expression, found %s", t.kind)
	}
}

// qualified parses a predefined keyword or a global:: name used as the head
// of an expression. Only the first identifier after global:: belongs to the
// name; the rest is member access.
func (p *parser) qualified() (*Expr, error) {
	t := p.peek()
	if n, ok := PredefinedName(t.text); ok {
		p.next()
		n.Span = p.span(t.start, t.end)
		return &Expr{Kind: ExprQualified, QName: n, Span: n.Span}, nil
	}
	p.next()
	p.next()
	part, err := p.namePart()
	if err != nil {
		return nil, err
	}
	n := &Name{Global: true, Parts: []NamePart{part}, Span: p.span(t.start, part.Span.End)}
	return &Expr{Kind: ExprQualified, QName: n, Span: n.Span}, nil
}
