// Package syntax holds the syntax nodes the semantic graph refers to:
// namespace-or-type names, expressions and body statements. Nodes are
// produced by the import layer from compilation-unit documents and are
// immutable afterwards; the resolution stages only read them.
package syntax
