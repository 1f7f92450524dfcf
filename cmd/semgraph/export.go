package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"semgraph/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export --db graph.sqlite [dir | unit.sgu.yaml...]",
	Short: "Check the project and write the semantic graph to SQLite",
	RunE:  runExport,
}

func init() {
	addWorkspaceFlags(exportCmd)
	exportCmd.Flags().String("db", "", "SQLite database to create")
	exportCmd.Flags().Bool("force", false, "replace an existing database")
	_ = exportCmd.MarkFlagRequired("db")
}

func runExport(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	db, err := cmd.Flags().GetString("db")
	if err != nil {
		return fmt.Errorf("failed to get db flag: %w", err)
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("failed to get force flag: %w", err)
	}
	if force {
		if err := os.Remove(db); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
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
	if _, err := s.run(cmd.Context(), nil, nil); err != nil {
		return err
	}

	stats, err := export.Write(cmd.Context(), db, s.Graph, s.Bag)
	if err != nil {
		return err
	}
	if !quiet(cmd) {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d entities, %d references, %d diagnostics\n",
			db, stats.Entities, stats.References, stats.Diagnostics)
	}
	return nil
}
