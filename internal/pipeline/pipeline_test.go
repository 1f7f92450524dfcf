package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"semgraph/internal/corelib"
	"semgraph/internal/diag"
	"semgraph/internal/expr"
	"semgraph/internal/graph"
	"semgraph/internal/observ"
	"semgraph/internal/skeleton"
	"semgraph/internal/source"
	"semgraph/internal/syntax"
)

const programUnit = `
assembly: App
usings: [System]
namespaces:
  - name: App
    types:
      - kind: class
        name: Program
        access: public
        fields:
          - {name: count, type: int, init: "42"}
          - {name: label, type: string, init: "Program"}
          - {name: lost, type: Missing}
        methods:
          - name: Main
            static: true
            body:
              - {local: s, type: string, value: '"hi"'}
              - {expr: "s.Length"}
              - {expr: "count"}
      - {kind: class, name: A, bases: [B]}
      - {kind: class, name: B, bases: [C]}
      - {kind: class, name: C, bases: [A]}
      - {kind: class, name: D, bases: [A]}
`

func imported(t *testing.T, units ...string) *graph.Graph {
	t.Helper()
	fs := source.NewFileSet()
	g := graph.New(graph.Hints{}, nil, fs)
	if _, err := corelib.Import(g); err != nil {
		t.Fatal(err)
	}
	var parsed []*skeleton.Unit
	for i, text := range units {
		u, err := skeleton.Parse(fs, fs.AddVirtual("unit"+string(rune('a'+i))+".sgu.yaml", []byte(text)))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		parsed = append(parsed, u)
	}
	bag := diag.NewBag(0)
	skeleton.NewImporter(g, diag.BagReporter{Bag: bag}).Import("App", parsed)
	if bag.Len() != 0 {
		t.Fatalf("import diagnostics: %v", bag.Items())
	}
	return g
}

func TestRunAdvancesThroughEveryStage(t *testing.T) {
	g := imported(t, programUnit)

	var (
		mu       sync.Mutex
		observed []expr.Result
	)
	sink := &RecordingSink{}
	timer := observ.NewTimer()
	res, err := Run(context.Background(), g, Options{
		Jobs:     4,
		Progress: sink,
		Timer:    timer,
		Observer: func(_ graph.EntityID, _ *syntax.Expr, r expr.Result) {
			mu.Lock()
			observed = append(observed, r)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if g.State() != graph.StateExpressionsEvaluated {
		t.Fatalf("state = %s", g.State())
	}
	if res.RunID == "" {
		t.Fatalf("run ID missing")
	}

	tests := []struct {
		code diag.Code
		want int
	}{
		{diag.SemaCircularBaseDependency, 3},
		{diag.SemaSimpleNameUndefined, 1},
		{diag.SemaValueExpected, 1},
		{diag.SemaStaticMemberExpected, 1},
	}
	for _, tt := range tests {
		if got := res.Bag.Count(tt.code); got != tt.want {
			t.Fatalf("%s: got %d, want %d; all: %v", tt.code.ID(), got, tt.want, res.Bag.Items())
		}
	}
	if res.Bag.Len() != 6 {
		t.Fatalf("unexpected diagnostics: %v", res.Bag.Items())
	}

	items := res.Bag.Items()
	for i := 1; i < len(items); i++ {
		if items[i].Primary.Less(items[i-1].Primary) {
			t.Fatalf("bag not sorted at %d: %v", i, items)
		}
	}

	var property bool
	for _, r := range observed {
		if r != nil && r.Kind() == expr.KindPropertyAccess {
			property = true
		}
	}
	if !property {
		t.Fatalf("s.Length should be observed as a property access: %v", observed)
	}

	for _, stage := range Stages {
		if !res.Timings.Has(stage) {
			t.Fatalf("no timing for %s", stage)
		}
	}
	if len(timer.Report().Phases) != len(Stages) {
		t.Fatalf("timer phases = %d", len(timer.Report().Phases))
	}

	var done int
	for _, ev := range sink.Events() {
		if ev.Unit == "" && ev.Status == StatusDone {
			done++
		}
	}
	if done != len(Stages) {
		t.Fatalf("stage done events = %d", done)
	}
}

func TestRunResolvesReferencesOnce(t *testing.T) {
	g := imported(t, programUnit)
	if _, err := Run(context.Background(), g, Options{Jobs: 8}); err != nil {
		t.Fatal(err)
	}
	for _, e := range g.Entities() {
		for _, ref := range e.Bases {
			if sref, ok := ref.(*graph.SyntaxReference); ok && sref.Runs() != 1 {
				t.Fatalf("base of %s resolved %d times", g.QualifiedName(e.ID), sref.Runs())
			}
		}
	}
}

func TestRunRequiresImportedGraph(t *testing.T) {
	g := graph.New(graph.Hints{}, nil, nil)
	defer func() {
		if recover() == nil {
			t.Fatalf("Run on a fresh graph must panic")
		}
	}()
	_, _ = Run(context.Background(), g, Options{})
}

func TestRunStopsOnCancel(t *testing.T) {
	g := imported(t, programUnit)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, g, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if g.State() != graph.StateSyntaxTreesImported {
		t.Fatalf("cancelled run advanced to %s", g.State())
	}
	if res.Bag == nil || res.Bag.Len() != 0 {
		t.Fatalf("cancelled run should leave an empty bag")
	}
}

func TestCancelBetweenStages(t *testing.T) {
	g := imported(t, programUnit)
	ctx, cancel := context.WithCancel(context.Background())
	sink := sinkFunc(func(ev Event) {
		if ev.Unit == "" && ev.Stage == StageResolveTypeDeclarations && ev.Status == StatusDone {
			cancel()
		}
	})
	if _, err := Run(ctx, g, Options{Progress: sink}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if g.State() != graph.StateTypeDeclarationsResolved {
		t.Fatalf("state = %s, want last completed stage", g.State())
	}
}

type sinkFunc func(Event)

func (f sinkFunc) OnEvent(ev Event) { f(ev) }
