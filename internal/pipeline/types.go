package pipeline

import (
	"time"

	"semgraph/internal/diag"
	"semgraph/internal/expr"
	"semgraph/internal/graph"
	"semgraph/internal/observ"
	"semgraph/internal/syntax"
)

// Stage names one step of Run.
type Stage string

const (
	StageMergePartialTypes       Stage = "merge-partial-types"
	StageResolveTypeDeclarations Stage = "resolve-type-declarations"
	StageResolveTypeBodies       Stage = "resolve-type-bodies"
	StageEvaluateExpressions     Stage = "evaluate-expressions"
)

// Stages lists every stage in execution order.
var Stages = []Stage{
	StageMergePartialTypes,
	StageResolveTypeDeclarations,
	StageResolveTypeBodies,
	StageEvaluateExpressions,
}

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a unit, or for the whole stage when Unit is
// empty.
type Event struct {
	Unit    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Stage workers call OnEvent
// concurrently.
type ProgressSink interface {
	OnEvent(Event)
}

// ResultObserver receives the classification of every evaluated statement
// expression and field initializer. It is called from stage workers
// concurrently; results are not stored by the pipeline.
type ResultObserver func(owner graph.EntityID, e *syntax.Expr, res expr.Result)

// Options configures Run.
type Options struct {
	Jobs           int // worker limit per stage; <= 0 means GOMAXPROCS
	MaxDiagnostics int // capacity of the bag Run creates when Bag is nil
	Bag            *diag.Bag
	Progress       ProgressSink
	Observer       ResultObserver
	Timer          *observ.Timer
}

// Result is what Run leaves behind besides the advanced graph.
type Result struct {
	RunID   string
	Bag     *diag.Bag
	Timings Timings
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages, or across
// all of them when none are given.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if len(stages) == 0 {
		stages = Stages
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
