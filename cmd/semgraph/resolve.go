package main

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"semgraph/internal/diagfmt"
	"semgraph/internal/expr"
	"semgraph/internal/graph"
	"semgraph/internal/syntax"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [dir | unit.sgu.yaml...]",
	Short: "Print how every expression was classified",
	Long: `resolve runs the full check and prints, for every statement expression
and field initializer, what the expression denotes: a namespace, a type, a
value, a variable, a method group or a property access.`,
	RunE: runResolve,
}

func init() {
	addWorkspaceFlags(resolveCmd)
	resolveCmd.Flags().String("format", "text", "output format (text|json)")
	resolveCmd.Flags().String("owner", "", "only show expressions inside members whose qualified name has this prefix")
}

type resolvedExpr struct {
	Owner  string `json:"owner"`
	Path   string `json:"path"`
	Line   uint32 `json:"line"`
	Col    uint32 `json:"col"`
	Expr   string `json:"expr"`
	Result string `json:"result"`

	offset uint32
}

func runResolve(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be text or json)", format)
	}
	owner, err := cmd.Flags().GetString("owner")
	if err != nil {
		return fmt.Errorf("failed to get owner flag: %w", err)
	}
	ws, err := openWorkspace(cmd, args)
	if err != nil {
		return err
	}

	s, err := load(cmd.Context(), ws)
	if err != nil {
		return err
	}
	if err := s.importGraph(); err != nil {
		return err
	}

	var (
		mu  sync.Mutex
		out []resolvedExpr
	)
	observe := func(id graph.EntityID, e *syntax.Expr, res expr.Result) {
		name := s.Graph.QualifiedName(id)
		if owner != "" && !strings.HasPrefix(name, owner) {
			return
		}
		start, _ := s.Files.Resolve(e.Span)
		path := ""
		if f := s.Files.Get(e.Span.File); f != nil {
			path = f.Path
		}
		r := resolvedExpr{
			Owner:  name,
			Path:   path,
			Line:   start.Line,
			Col:    start.Col,
			Expr:   e.String(),
			Result: expr.Describe(s.Graph, res),
			offset: e.Span.Start,
		}
		mu.Lock()
		out = append(out, r)
		mu.Unlock()
	}
	if _, err := s.run(cmd.Context(), nil, observe); err != nil {
		return err
	}

	slices.SortFunc(out, func(a, b resolvedExpr) int {
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.offset, b.offset))
	})
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		printResolved(cmd.OutOrStdout(), out)
	}

	failed := s.Bag.HasErrors()
	if s.Bag.Len() > 0 && !quiet(cmd) {
		s.limit()
		fmt.Fprintf(cmd.ErrOrStderr(), "%d diagnostic(s):\n", s.Bag.Len())
		if err := diagfmt.Short(cmd.ErrOrStderr(), s.Bag, s.Files, diagfmt.PathModeAuto, ""); err != nil {
			return err
		}
	}
	if failed {
		return exitStatus{code: 1}
	}
	return nil
}

func printResolved(w io.Writer, rows []resolvedExpr) {
	width := 0
	for _, r := range rows {
		width = max(width, len(r.Expr))
	}
	owner := ""
	for _, r := range rows {
		if r.Owner != owner {
			owner = r.Owner
			fmt.Fprintln(w, color.New(color.Bold).Sprint(owner))
		}
		pos := fmt.Sprintf("%s:%d:%d", r.Path, r.Line, r.Col)
		fmt.Fprintf(w, "  %-*s  %s  %s\n", width, r.Expr, color.CyanString("=>"), r.Result)
		fmt.Fprintf(w, "  %s\n", color.HiBlackString(pos))
	}
}
