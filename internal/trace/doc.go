// Package trace records where a semgraph check spends its time.
//
// A tracer is attached to the context passed to pipeline.Run:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeStage, "resolve-type-bodies")
//	defer span.End("")
//
// Runs and stages are emitted at LevelPhase; per-entity spans only at
// LevelDebug. StreamTracer writes text or NDJSON as
// events arrive, RingTracer keeps the most recent events for a dump after
// a failure, MultiTracer combines both.
package trace
