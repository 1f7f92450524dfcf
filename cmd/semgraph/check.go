package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"semgraph/internal/cache"
	"semgraph/internal/diag"
	"semgraph/internal/diagfmt"
	"semgraph/internal/pipeline"
	"semgraph/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [dir | unit.sgu.yaml...]",
	Short: "Build the semantic graph and report semantic errors",
	Long: `check loads every compilation unit of the project, runs all analysis
stages and prints the diagnostics. It exits with status 1 when any error is
reported.`,
	RunE: runCheck,
}

func init() {
	addWorkspaceFlags(checkCmd)
	checkCmd.Flags().String("format", "", "output format (pretty|short|json|sarif; default from manifest)")
	checkCmd.Flags().String("path-mode", "auto", "how file paths are shown (auto|absolute|relative|basename)")
	checkCmd.Flags().Int("context", 1, "source lines shown before each diagnostic")
	checkCmd.Flags().Bool("with-notes", true, "include diagnostic notes")
	checkCmd.Flags().String("min-severity", "info", "hide diagnostics below this severity (info|warning|error)")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Bool("timings", false, "print phase timings to stderr")
	checkCmd.Flags().Bool("cache", true, "reuse diagnostics of an unchanged project")
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	checkCmd.Flags().Bool("watch", false, "re-check whenever a unit file changes")
}

// exitStatus reports a failed check without printing an error message.
type exitStatus struct{ code int }

func (e exitStatus) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func isExitStatus(err error) bool {
	var es exitStatus
	return errors.As(err, &es)
}

type checkOptions struct {
	format   diagfmt.Format
	minSev   diag.Severity
	strict   bool
	pretty   diagfmt.PrettyOpts
	timings  bool
	useCache bool
	ui       uiMode
	watch    bool
	quiet    bool
}

func readCheckOptions(cmd *cobra.Command, ws *workspace) (checkOptions, error) {
	var opts checkOptions
	flags := cmd.Flags()

	formatStr, err := flags.GetString("format")
	if err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	if formatStr == "" {
		formatStr = ws.Config.Check.Format
	}
	if opts.format, err = diagfmt.ParseFormat(formatStr); err != nil {
		return opts, err
	}
	pathMode, err := flags.GetString("path-mode")
	if err != nil {
		return opts, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	if opts.pretty.PathMode, err = diagfmt.ParsePathMode(pathMode); err != nil {
		return opts, err
	}
	if opts.pretty.Context, err = flags.GetInt("context"); err != nil {
		return opts, fmt.Errorf("failed to get context flag: %w", err)
	}
	if opts.pretty.ShowNotes, err = flags.GetBool("with-notes"); err != nil {
		return opts, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	minSev, err := flags.GetString("min-severity")
	if err != nil {
		return opts, fmt.Errorf("failed to get min-severity flag: %w", err)
	}
	if opts.minSev, err = diag.ParseSeverity(minSev); err != nil {
		return opts, err
	}
	if opts.strict, err = flags.GetBool("warnings-as-errors"); err != nil {
		return opts, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if opts.timings, err = flags.GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	opts.useCache = ws.Config.Check.Cache
	if flags.Changed("cache") {
		if opts.useCache, err = flags.GetBool("cache"); err != nil {
			return opts, fmt.Errorf("failed to get cache flag: %w", err)
		}
	}
	uiStr, err := flags.GetString("ui")
	if err != nil {
		return opts, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if opts.ui, err = readUIMode(uiStr); err != nil {
		return opts, err
	}
	if opts.watch, err = flags.GetBool("watch"); err != nil {
		return opts, fmt.Errorf("failed to get watch flag: %w", err)
	}
	opts.quiet = quiet(cmd)
	opts.pretty.Color = !noColor()
	if wd, err := os.Getwd(); err == nil {
		opts.pretty.BaseDir = wd
	}
	return opts, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	ws, err := openWorkspace(cmd, args)
	if err != nil {
		return err
	}
	opts, err := readCheckOptions(cmd, ws)
	if err != nil {
		return err
	}

	if opts.watch {
		// The TUI would fight with the repeated reports.
		opts.ui = uiModeOff
		return watchWorkspace(cmd.Context(), cmd.ErrOrStderr(), ws, func(ctx context.Context) error {
			_, err := checkOnce(ctx, cmd, ws, opts)
			return err
		})
	}

	failed, err := checkOnce(cmd.Context(), cmd, ws, opts)
	if err != nil {
		return err
	}
	if failed {
		return exitStatus{code: 1}
	}
	return nil
}

// checkOnce runs one full check and prints its diagnostics. It reports
// whether any error was found.
func checkOnce(ctx context.Context, cmd *cobra.Command, ws *workspace, opts checkOptions) (bool, error) {
	s, err := load(ctx, ws)
	if err != nil {
		return false, err
	}
	stderr := cmd.ErrOrStderr()

	var (
		dc      *cache.DiskCache
		key     cache.Digest
		hit     bool
		timings pipeline.Timings
	)
	if opts.useCache && !s.Bag.HasErrors() {
		dc, key, hit = lookupCache(stderr, s)
	}

	if !hit {
		if err := s.importGraph(); err != nil {
			return false, err
		}
		var res *pipeline.Result
		if useTUI(opts.ui, os.Stdout) && opts.format == diagfmt.FormatPretty && !opts.quiet {
			res, err = runWithUI(ctx, "semgraph check "+ws.Assembly, s)
		} else {
			res, err = s.run(ctx, nil, nil)
		}
		if err != nil {
			return false, err
		}
		timings = res.Timings
		if dc != nil {
			storeCache(stderr, dc, key, s, res.RunID)
		}
	}

	if opts.strict {
		s.Bag.Promote(diag.SevWarning, diag.SevError)
	}
	s.Bag.Retain(opts.minSev)
	failed := s.Bag.HasErrors()
	s.limit()
	machine := opts.format == diagfmt.FormatJSON || opts.format == diagfmt.FormatSARIF
	if opts.timings && machine {
		appendTimingDiagnostic(s.Bag, s.Timer.Report(), hit)
	}
	meta := diagfmt.SarifRunMeta{ToolName: "semgraph", ToolVersion: version.Version, InvocationArgs: os.Args[1:]}
	if err := diagfmt.Write(cmd.OutOrStdout(), opts.format, s.Bag, s.Files, opts.pretty, meta); err != nil {
		return false, err
	}
	if !opts.quiet && opts.format == diagfmt.FormatPretty {
		printSummary(cmd.OutOrStdout(), s, hit)
	}
	if opts.timings && !machine {
		printStageTimings(stderr, timings)
		fmt.Fprint(stderr, s.Timer.Report().Summary())
	}
	return failed, nil
}

func lookupCache(stderr io.Writer, s *session) (*cache.DiskCache, cache.Digest, bool) {
	dc, err := cache.Open("semgraph")
	if err != nil {
		fmt.Fprintf(stderr, "cache disabled: %v\n", err)
		return nil, cache.Digest{}, false
	}
	key := cache.Key(version.Key(), s.WS.Assembly, s.files())
	payload, ok, err := dc.Get(key)
	if err != nil {
		fmt.Fprintf(stderr, "cache: %v\n", err)
		return dc, key, false
	}
	if !ok {
		return dc, key, false
	}
	cache.Restore(s.Bag, s.Files, payload.Diagnostics)
	return dc, key, true
}

func storeCache(stderr io.Writer, dc *cache.DiskCache, key cache.Digest, s *session, runID string) {
	payload := &cache.Payload{
		Schema:      cache.SchemaVersion,
		RunID:       runID,
		Files:       s.unitPaths(),
		Diagnostics: cache.Capture(s.Bag, s.Files),
		Timings:     s.Timer.Report(),
	}
	if err := dc.Put(key, payload); err != nil {
		fmt.Fprintf(stderr, "cache: %v\n", err)
	}
}
