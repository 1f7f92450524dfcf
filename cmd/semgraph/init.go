package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"semgraph/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a semgraph.toml manifest",
	Long: `init writes a semgraph.toml manifest with default settings into dir, or the
current directory. The assembly name defaults to the directory name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("assembly", "", "assembly name (default: directory name)")
}

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	assembly, err := cmd.Flags().GetString("assembly")
	if err != nil {
		return fmt.Errorf("failed to get assembly flag: %w", err)
	}
	if assembly == "" {
		assembly = defaultAssembly(target)
	}

	path := filepath.Join(target, config.FileName)
	if err := config.Write(path, config.Default(assembly)); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("project already initialized: %s exists", path)
		}
		return err
	}
	if !quiet(cmd) {
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized semgraph project %s in %s\n", assembly, target)
	}
	return nil
}
