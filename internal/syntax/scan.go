package syntax

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"semgraph/internal/source"
)

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokIdent
	tokInt
	tokDouble
	tokString
	tokChar
	tokDot
	tokComma
	tokLAngle
	tokRAngle
	tokLParen
	tokRParen
	tokColonColon
)

func (k tokKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokInt, tokDouble:
		return "number"
	case tokString:
		return "string"
	case tokChar:
		return "char"
	case tokDot:
		return "'.'"
	case tokComma:
		return "','"
	case tokLAngle:
		return "'<'"
	case tokRAngle:
		return "'>'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokColonColon:
		return "'::'"
	default:
		return "token"
	}
}

type token struct {
	kind  tokKind
	text  string
	start uint32
	end   uint32
}

// ParseError describes malformed name or expression text.
type ParseError struct {
	Span source.Span
	Msg  string
}

func (e *ParseError) Error() string { return e.Msg }

func scan(text string, base source.Span) ([]token, error) {
	var toks []token
	off := func(i int) uint32 { return base.Start + source.Off(i) }
	errAt := func(i int, format string, args ...any) error {
		sp := source.Span{File: base.File, Start: off(i), End: off(i + 1)}
		return &ParseError{Span: sp, Msg: fmt.Sprintf(format, args...)}
	}
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '_' || unicode.IsLetter(r):
			j := i + size
			for j < len(text) {
				r2, s2 := utf8.DecodeRuneInString(text[j:])
				if r2 != '_' && !unicode.IsLetter(r2) && !unicode.IsDigit(r2) {
					break
				}
				j += s2
			}
			toks = append(toks, token{kind: tokIdent, text: text[i:j], start: off(i), end: off(j)})
			i = j
		case unicode.IsDigit(r):
			j, kind := i, tokInt
			for j < len(text) && (text[j] >= '0' && text[j] <= '9' || text[j] == '.' && kind == tokInt && j+1 < len(text) && text[j+1] >= '0' && text[j+1] <= '9') {
				if text[j] == '.' {
					kind = tokDouble
				}
				j++
			}
			toks = append(toks, token{kind: kind, text: text[i:j], start: off(i), end: off(j)})
			i = j
		case r == '"' || r == '\'':
			j := i + 1
			for j < len(text) && text[j] != byte(r) {
				if text[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(text) {
				return nil, errAt(i, "unterminated literal")
			}
			kind := tokString
			if r == '\'' {
				kind = tokChar
			}
			toks = append(toks, token{kind: kind, text: text[i : j+1], start: off(i), end: off(j + 1)})
			i = j + 1
		case r == ':' && i+1 < len(text) && text[i+1] == ':':
			toks = append(toks, token{kind: tokColonColon, text: "::", start: off(i), end: off(i + 2)})
			i += 2
		default:
			kind, ok := punct[r]
			if !ok {
				return nil, errAt(i, "unexpected character %q", r)
			}
			toks = append(toks, token{kind: kind, text: string(r), start: off(i), end: off(i + 1)})
			i += size
		}
	}
	end := off(len(text))
	toks = append(toks, token{kind: tokEOF, start: end, end: end})
	return toks, nil
}

var punct = map[rune]tokKind{
	'.': tokDot,
	',': tokComma,
	'<': tokLAngle,
	'>': tokRAngle,
	'(': tokLParen,
	')': tokRParen,
}
