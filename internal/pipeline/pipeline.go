// Package pipeline drives a semantic graph from imported syntax trees to
// evaluated expressions.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"semgraph/internal/diag"
	"semgraph/internal/graph"
	"semgraph/internal/observ"
	"semgraph/internal/resolve"
	"semgraph/internal/trace"
)

// task is one unit of stage work, usually one entity.
type task struct {
	unit  string
	label string
	do    func(ctx context.Context)
}

type stage struct {
	name  Stage
	from  graph.BuildState
	to    graph.BuildState
	plan  func(r *runner) []task
	after func(r *runner)
}

var stages = []stage{
	{StageMergePartialTypes, graph.StateSyntaxTreesImported, graph.StatePartialTypesMerged, planMerge, nil},
	{StageResolveTypeDeclarations, graph.StatePartialTypesMerged, graph.StateTypeDeclarationsResolved, planDeclarations, checkCircularBases},
	{StageResolveTypeBodies, graph.StateTypeDeclarationsResolved, graph.StateTypeBodiesResolved, planBodies, nil},
	{StageEvaluateExpressions, graph.StateTypeBodiesResolved, graph.StateExpressionsEvaluated, planExpressions, nil},
}

type runner struct {
	g       *graph.Graph
	opts    Options
	rep     *diag.SyncReporter
	res     *resolve.Resolver
	timer   *observ.Timer
	timings Timings
}

// Run executes the stages in order. The graph must be in
// StateSyntaxTreesImported; any other state panics. Cancelling ctx stops
// Run before the next stage, or aborts the current one, and leaves the
// graph at the last completed stage. The returned bag is sorted even when
// Run stops early.
func Run(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	g.Require(graph.StateSyntaxTreesImported)

	bag := opts.Bag
	if bag == nil {
		bag = diag.NewBag(opts.MaxDiagnostics)
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	timer := opts.Timer
	if timer == nil {
		timer = observ.NewTimer()
	}
	rep := diag.NewSyncReporter(diag.NewDedupReporter(diag.BagReporter{Bag: bag}))
	r := &runner{
		g:     g,
		opts:  opts,
		rep:   rep,
		res:   resolve.New(g, rep),
		timer: timer,
	}

	runID := uuid.NewString()
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "check")
	span.WithExtra("run", runID).WithExtra("jobs", strconv.Itoa(opts.Jobs))
	heartbeat := trace.StartHeartbeat(trace.FromContext(ctx), heartbeatInterval(ctx))

	err := r.stages(ctx)

	heartbeat.Stop()
	bag.Sort()
	if err != nil {
		span.End("cancelled")
	} else {
		span.End(fmt.Sprintf("%d diagnostics", bag.Len()))
	}
	return &Result{RunID: runID, Bag: bag, Timings: r.timings}, err
}

func (r *runner) stages(ctx context.Context) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			r.emit(Event{Stage: st.name, Status: StatusError, Err: err})
			return fmt.Errorf("%s: %w", st.name, err)
		}
		if err := r.stage(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) stage(ctx context.Context, st stage) error {
	r.g.Require(st.from)

	ctx, span := trace.Start(ctx, trace.ScopeStage, string(st.name))
	idx := r.timer.Begin(string(st.name))
	start := time.Now()

	tasks := st.plan(r)
	r.emit(Event{Stage: st.name, Status: StatusWorking})
	err := r.work(ctx, st.name, tasks)
	if err == nil && st.after != nil {
		st.after(r)
	}

	elapsed := r.timer.End(idx, len(tasks), "")
	r.timings.Set(st.name, elapsed)
	span.WithExtra("tasks", strconv.Itoa(len(tasks)))
	if err != nil {
		span.End("cancelled")
		r.emit(Event{Stage: st.name, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		return fmt.Errorf("%s: %w", st.name, err)
	}
	span.End("")

	r.g.Advance(st.from, st.to)
	r.emit(Event{Stage: st.name, Status: StatusDone, Elapsed: elapsed})
	return nil
}

// work runs tasks on an errgroup limited to opts.Jobs and reports each unit
// done once its last task finishes.
func (r *runner) work(ctx context.Context, name Stage, tasks []task) error {
	pending := make(map[string]int)
	for _, t := range tasks {
		if pending[t.unit] == 0 {
			r.emit(Event{Unit: t.unit, Stage: name, Status: StatusQueued})
		}
		pending[t.unit]++
	}
	var mu sync.Mutex
	finished := func(unit string) {
		mu.Lock()
		pending[unit]--
		left := pending[unit]
		mu.Unlock()
		if left == 0 {
			r.emit(Event{Unit: unit, Stage: name, Status: StatusDone})
		}
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.opts.Jobs)
	for _, t := range tasks {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ectx, span := trace.Start(gctx, trace.ScopeEntity, t.label)
			t.do(ectx)
			span.End("")
			finished(t.unit)
			return nil
		})
	}
	return eg.Wait()
}

func (r *runner) emit(ev Event) {
	if r.opts.Progress != nil {
		r.opts.Progress.OnEvent(ev)
	}
}

// unitOf names the compilation unit an entity was declared in. Builtin
// entities have no source file and belong to their assembly.
func (r *runner) unitOf(e *graph.Entity) string {
	if e.Flags&graph.FlagBuiltin == 0 {
		if f := r.g.Files.Get(e.Span.File); f != nil {
			return f.Path
		}
	}
	if name, ok := r.g.Strings.Lookup(e.Assembly); ok && name != "" {
		return "<" + name + ">"
	}
	return "<builtin>"
}

func heartbeatInterval(ctx context.Context) time.Duration {
	if trace.FromContext(ctx).Level() >= trace.LevelDebug {
		return time.Second
	}
	return 0
}
