package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jward/stylescope/internal/config"
)

// errHandled marks errors already written by outputError so main doesn't
// print them twice.
var errHandled = errors.New("error already reported")

func main() {
	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errHandled) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

// app holds the state shared by every command of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	cfg        *config.Config
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "stylescope",
		Short:         "Find styled-components imports and tag constructors",
		Long:          "stylescope parses JavaScript and TypeScript sources with tree-sitter, resolves how the styled-components library is bound in each file, and records every tag constructor in a SQLite database for queries.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, args)
		},
		// No Run: prints help by default.
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().String("db", "", "database path (default: .stylescope.db relative to repo root)")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: search for stylescope.yaml upward)")
	root.PersistentFlags().String("format", config.DefaultFormat, "output format: json|text")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(a.newScanCmd())
	root.AddCommand(a.newQueryCmd())
	return root
}

// setup loads configuration and attaches the logger to the command context.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	searchDir := "."
	if cmd.Name() == "scan" && len(args) > 0 {
		searchDir = args[0]
	}
	cfg, err := config.Load(a.configPath, searchDir, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	logger := newLogger(a.stderr, level)
	if cfg.File != "" {
		logger.Debug("loaded config", "file", cfg.File)
	}
	cmd.SetContext(withLogger(cmd.Context(), logger))
	return nil
}

// resolveTargetDir returns the absolute path of the directory to scan.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns dbPath made absolute against repoRoot.
func resolveDBPath(repoRoot, dbPath string) string {
	if dbPath == "" {
		dbPath = config.DefaultDBPath
	}
	if filepath.IsAbs(dbPath) {
		return dbPath
	}
	return filepath.Join(repoRoot, dbPath)
}
