package graph

import "fmt"

// BuildState records which pipeline stages have completed for a graph.
type BuildState uint8

const (
	StateCreated BuildState = iota
	StateBaseLibraryImported
	StateReferencedUnitsImported
	StateSyntaxTreesImported
	StatePartialTypesMerged
	StateTypeDeclarationsResolved
	StateTypeBodiesResolved
	StateExpressionsEvaluated
)

func (s BuildState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateBaseLibraryImported:
		return "base-library-imported"
	case StateReferencedUnitsImported:
		return "referenced-units-imported"
	case StateSyntaxTreesImported:
		return "syntax-trees-imported"
	case StatePartialTypesMerged:
		return "partial-types-merged"
	case StateTypeDeclarationsResolved:
		return "type-declarations-resolved"
	case StateTypeBodiesResolved:
		return "type-bodies-resolved"
	case StateExpressionsEvaluated:
		return "expressions-evaluated"
	default:
		return fmt.Sprintf("BuildState(%d)", s)
	}
}

// State returns the current build state.
func (g *Graph) State() BuildState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Require panics unless the graph is in state want. Running a stage out of
// order is a programming error, not a diagnostic.
func (g *Graph) Require(want BuildState) {
	if got := g.State(); got != want {
		panic(fmt.Sprintf("graph: stage requires state %s, graph is %s", want, got))
	}
}

// Advance moves the graph from one state to its direct successor.
func (g *Graph) Advance(from, to BuildState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != from || to != from+1 {
		panic(fmt.Sprintf("graph: illegal transition %s -> %s (current %s)", from, to, g.state))
	}
	g.state = to
}
