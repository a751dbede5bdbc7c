package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/stylescope"
	"github.com/jward/stylescope/scripts/rules"
)

func (a *app) newScanCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a directory for styled-components usage",
		Long: `Scan parses every JavaScript and TypeScript file under path (default: the
current directory), records library bindings and tag constructors, and runs
the optional rule script against each file. Unchanged files are skipped
unless --force is given or the recognized import paths or script changed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScan(cmd, args, force)
		},
	}

	cmd.Flags().IntP("jobs", "j", 0, "parallel scan workers (default: one per CPU)")
	cmd.Flags().String("script", "", "Risor rule script run against every file, or builtin:<name> ("+strings.Join(rules.Names(), ", ")+")")
	cmd.Flags().StringSlice("import-path", nil, "extra module specifier treated as the styling library (repeatable)")
	cmd.Flags().BoolVar(&force, "force", false, "rescan files even if unchanged")
	return cmd
}

func (a *app) runScan(cmd *cobra.Command, args []string, force bool) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	format := a.cfg.Format

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return outputError(a.stdout, a.stderr, format, "scan", err)
	}
	dbPath := resolveDBPath(findRepoRoot(targetDir), a.cfg.DBPath)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return outputError(a.stdout, a.stderr, format, "scan", fmt.Errorf("creating database directory: %w", err))
	}

	logger.Debug("scanning", "root", targetDir, "db", dbPath, "jobs", a.cfg.Jobs, "script", a.cfg.Script)
	p := newProgress(logger)

	opts := []stylescope.Option{
		stylescope.WithConfig(a.cfg),
		stylescope.WithLogger(logger),
		stylescope.WithForce(force),
	}
	if name, ok := rules.Resolve(a.cfg.Script); ok {
		opts = append(opts, stylescope.WithScriptsFS(rules.FS), stylescope.WithScript(name))
	}
	engine, err := stylescope.New(dbPath, opts...)
	if err != nil {
		return outputError(a.stdout, a.stderr, format, "scan", err)
	}
	defer engine.Close()

	stats, scanErr := engine.ScanDirectory(ctx, targetDir)
	p.done(fmt.Sprintf("Scanned %d files", stats.Scanned))

	result := CLIScanResult{
		RunID:    stats.RunID,
		Root:     targetDir,
		Database: dbPath,
		Scanned:  stats.Scanned,
		Skipped:  stats.Skipped,
		Findings: stats.Findings,
		Errors:   stats.Errors,
	}
	if scanErr != nil {
		logger.Error("scan finished with errors", "errors", stats.Errors, "first", scanErr)
		if stats.RunID == "" {
			return outputError(a.stdout, a.stderr, format, "scan", scanErr)
		}
	}
	if err := outputResult(a.stdout, format, CLIResult{Command: "scan", Results: result}); err != nil {
		return err
	}
	if scanErr != nil {
		return fmt.Errorf("%w: %w", errHandled, scanErr)
	}
	return nil
}
