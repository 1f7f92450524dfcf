// Package skeleton imports compilation units into a semantic graph
// skeleton: namespaces, types and members as entity shells whose type
// references are still unresolved syntax references.
//
// Units are YAML documents. Names and expressions are plain strings parsed
// by the syntax package; spans point back into the YAML text.
package skeleton

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"semgraph/internal/source"
)

// Unit is one compilation unit file.
type Unit struct {
	File source.FileID `yaml:"-"`
	Path string        `yaml:"-"`

	Assembly   string          `yaml:"assembly"`
	Usings     []Text          `yaml:"usings"`
	Aliases    []AliasDecl     `yaml:"aliases"`
	Namespaces []NamespaceDecl `yaml:"namespaces"`
	Types      []TypeDecl      `yaml:"types"`
}

// Text is a scalar with its position in the unit file.
type Text struct {
	Value  string
	Line   int
	Column int
	Quoted bool
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Text) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar, found %s", n.Line, kindName(n.Kind))
	}
	*t = Text{
		Value:  n.Value,
		Line:   n.Line,
		Column: n.Column,
		Quoted: n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0,
	}
	return nil
}

// Set reports whether the scalar was present in the document.
func (t Text) Set() bool { return t.Line > 0 }

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "a mapping"
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "a document"
	}
}

type AliasDecl struct {
	Name   Text `yaml:"name"`
	Target Text `yaml:"target"`
}

type NamespaceDecl struct {
	Name       Text            `yaml:"name"`
	Usings     []Text          `yaml:"usings"`
	Aliases    []AliasDecl     `yaml:"aliases"`
	Namespaces []NamespaceDecl `yaml:"namespaces"`
	Types      []TypeDecl      `yaml:"types"`
}

type TypeDecl struct {
	Kind        Text             `yaml:"kind"`
	Name        Text             `yaml:"name"`
	Access      Text             `yaml:"access"`
	Static      bool             `yaml:"static"`
	Partial     bool             `yaml:"partial"`
	Abstract    bool             `yaml:"abstract"`
	TypeParams  []Text           `yaml:"typeParams"`
	Constraints []ConstraintDecl `yaml:"constraints"`
	Bases       []Text           `yaml:"bases"`
	Types       []TypeDecl       `yaml:"types"`
	Fields      []FieldDecl      `yaml:"fields"`
	Properties  []FieldDecl      `yaml:"properties"`
	Methods     []MethodDecl     `yaml:"methods"`
}

// ConstraintDecl constrains one type parameter.
type ConstraintDecl struct {
	Param Text   `yaml:"param"`
	Types []Text `yaml:"types"`
}

// FieldDecl declares a field or a property.
type FieldDecl struct {
	Name     Text `yaml:"name"`
	Type     Text `yaml:"type"`
	Static   bool `yaml:"static"`
	ReadOnly bool `yaml:"readonly"`
	Access   Text `yaml:"access"`
	Init     Text `yaml:"init"`
}

type MethodDecl struct {
	Name       Text        `yaml:"name"`
	Returns    Text        `yaml:"returns"`
	Static     bool        `yaml:"static"`
	Abstract   bool        `yaml:"abstract"`
	Access     Text        `yaml:"access"`
	TypeParams []Text      `yaml:"typeParams"`
	Params     []ParamDecl `yaml:"params"`
	Body       []StmtDecl  `yaml:"body"`
}

type ParamDecl struct {
	Name Text `yaml:"name"`
	Type Text `yaml:"type"`
}

// StmtDecl is one body statement: exactly one of Local, Expr or Return.
// A local takes an optional Type (omitted means inferred) and Value.
type StmtDecl struct {
	Local  Text  `yaml:"local"`
	Type   Text  `yaml:"type"`
	Value  Text  `yaml:"value"`
	Expr   Text  `yaml:"expr"`
	Return *Text `yaml:"return"`
}
