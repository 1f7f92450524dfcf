package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/spf13/cobra"

	"semgraph/internal/config"
	"semgraph/internal/corelib"
	"semgraph/internal/diag"
	"semgraph/internal/graph"
	"semgraph/internal/observ"
	"semgraph/internal/pipeline"
	"semgraph/internal/skeleton"
	"semgraph/internal/source"
	"semgraph/internal/trace"
)

// workspace is the set of unit files a command works on.
type workspace struct {
	Root     string
	Assembly string
	Paths    []string
	Config   config.Config
	Manifest *config.Manifest // nil when running without semgraph.toml

	relist func() ([]string, error) // nil for explicit file lists
}

// refresh re-reads the unit list, picking up added and removed files.
func (ws *workspace) refresh() error {
	if ws.relist == nil {
		return nil
	}
	paths, err := ws.relist()
	if err != nil {
		return err
	}
	ws.Paths = paths
	return nil
}

// addWorkspaceFlags registers the flags openWorkspace reads.
func addWorkspaceFlags(cmd *cobra.Command) {
	cmd.Flags().String("assembly", "", "name of the assembly under compilation (overrides the manifest)")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=manifest or auto)")
	cmd.Flags().Int("max-diagnostics", 0, "maximum number of diagnostics kept (0=manifest default)")
}

// openWorkspace resolves the command arguments. With no arguments the
// manifest governing the working directory is used; a directory argument
// uses its manifest when present and otherwise every unit below it; file
// arguments are checked as given.
func openWorkspace(cmd *cobra.Command, args []string) (*workspace, error) {
	ws, err := locate(args)
	if err != nil {
		return nil, err
	}
	assembly, err := cmd.Flags().GetString("assembly")
	if err != nil {
		return nil, fmt.Errorf("failed to get assembly flag: %w", err)
	}
	if assembly != "" {
		ws.Assembly = assembly
	}
	if ws.Assembly == "" {
		ws.Assembly = defaultAssembly(ws.Root)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs > 0 {
		ws.Config.Check.Jobs = jobs
	}
	maxDiags, err := cmd.Flags().GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if maxDiags > 0 {
		ws.Config.Check.MaxDiagnostics = maxDiags
	}
	if len(ws.Paths) == 0 {
		return nil, fmt.Errorf("no compilation units found under %s", ws.Root)
	}
	return ws, nil
}

func locate(args []string) (*workspace, error) {
	if len(args) == 0 {
		m, ok, err := config.Discover(".")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New("no " + config.FileName + " found; pass a directory or run `semgraph init`")
		}
		return fromManifest(m)
	}

	if len(args) == 1 {
		info, err := os.Stat(args[0])
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			if _, err := os.Stat(filepath.Join(args[0], config.FileName)); err == nil {
				m, err := config.Load(filepath.Join(args[0], config.FileName))
				if err != nil {
					return nil, err
				}
				return fromManifest(m)
			}
			dir := args[0]
			relist := func() ([]string, error) { return skeleton.ListUnits(dir) }
			paths, err := relist()
			if err != nil {
				return nil, err
			}
			root, _ := filepath.Abs(dir)
			return &workspace{Root: root, Paths: paths, Config: config.Default(""), relist: relist}, nil
		}
	}

	for _, p := range args {
		if !skeleton.IsUnitFile(p) {
			return nil, fmt.Errorf("%s: not a compilation unit (expected %v)", p, skeleton.Extensions)
		}
	}
	root, _ := filepath.Abs(filepath.Dir(args[0]))
	return &workspace{Root: root, Paths: args, Config: config.Default("")}, nil
}

func fromManifest(m *config.Manifest) (*workspace, error) {
	relist := func() ([]string, error) { return m.Sources(skeleton.IsUnitFile) }
	paths, err := relist()
	if err != nil {
		return nil, err
	}
	return &workspace{
		Root:     m.Root,
		Assembly: m.Config.Project.Assembly,
		Paths:    paths,
		Config:   m.Config,
		Manifest: m,
		relist:   relist,
	}, nil
}

func defaultAssembly(root string) string {
	name := filepath.Base(root)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "App"
	}
	return name
}

// session is one load of a workspace into a fresh graph.
type session struct {
	WS    *workspace
	Files *source.FileSet
	Units []*skeleton.Unit
	Graph *graph.Graph
	Bag   *diag.Bag
	Rep   *diag.SyncReporter
	Timer *observ.Timer
}

// load reads and decodes every unit. Load failures go to the bag.
func load(ctx context.Context, ws *workspace) (*session, error) {
	ctx, span := trace.Start(ctx, trace.ScopeStage, "load")
	defer span.End("")

	s := &session{
		WS:    ws,
		Files: source.NewFileSet(),
		Bag:   diag.NewBag(math.MaxInt),
		Timer: observ.NewTimer(),
	}
	s.Rep = diag.NewSyncReporter(diag.BagReporter{Bag: s.Bag})

	idx := s.Timer.Begin("load")
	units, err := skeleton.LoadFiles(ctx, s.Files, ws.Paths, ws.Config.Check.Jobs, s.Rep)
	s.Timer.End(idx, len(units), "")
	if err != nil {
		return nil, err
	}
	s.Units = units
	return s, nil
}

// limit trims the sorted bag to the configured diagnostic limit. The bag
// itself is unbounded so cached results never depend on the limit.
func (s *session) limit() {
	s.Bag.Sort()
	s.Bag.Truncate(s.WS.Config.Check.MaxDiagnostics)
}

// files returns the loaded unit files.
func (s *session) files() []*source.File {
	out := make([]*source.File, 0, len(s.Units))
	for _, u := range s.Units {
		out = append(out, s.Files.Get(u.File))
	}
	return out
}

// unitPaths lists unit paths the way pipeline events name them.
func (s *session) unitPaths() []string {
	out := make([]string, 0, len(s.Units))
	for _, f := range s.files() {
		out = append(out, f.Path)
	}
	return out
}

// importGraph declares the base library and every unit into a fresh graph,
// leaving it at StateSyntaxTreesImported.
func (s *session) importGraph() error {
	hint, err := safecast.Conv[uint32](len(s.Units) * 64)
	if err != nil {
		hint = 0
	}
	s.Graph = graph.New(graph.Hints{Entities: hint}, nil, s.Files)

	idx := s.Timer.Begin("import")
	if _, err := corelib.Import(s.Graph); err != nil {
		return fmt.Errorf("base library: %w", err)
	}
	skeleton.NewImporter(s.Graph, s.Rep).Import(s.WS.Assembly, s.Units)
	s.Timer.End(idx, s.Graph.Len(), "")
	return nil
}

// run executes the pipeline over the imported graph.
func (s *session) run(ctx context.Context, progress pipeline.ProgressSink, observer pipeline.ResultObserver) (*pipeline.Result, error) {
	return pipeline.Run(ctx, s.Graph, pipeline.Options{
		Jobs:     s.WS.Config.Check.Jobs,
		Bag:      s.Bag,
		Progress: progress,
		Observer: observer,
		Timer:    s.Timer,
	})
}
