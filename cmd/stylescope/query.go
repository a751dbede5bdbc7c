package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/stylescope"
	"github.com/jward/stylescope/internal/store"
)

func (a *app) newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query scan results",
	}
	cmd.AddCommand(a.newBindingsCmd())
	cmd.AddCommand(a.newFindingsCmd())
	cmd.AddCommand(a.newFilesCmd())
	cmd.AddCommand(a.newSummaryCmd())
	return cmd
}

func (a *app) newBindingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bindings <file>",
		Short: "Library symbols bound in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withQuery("bindings", func(q *stylescope.QueryBuilder) (CLIResult, error) {
				path, err := resolveFilePath(args[0])
				if err != nil {
					return CLIResult{}, err
				}
				bindings, err := q.Bindings(path)
				if err != nil {
					return CLIResult{}, err
				}
				return CLIResult{Results: toCLIBindings(bindings)}, nil
			})
		},
	}
}

func (a *app) newFindingsCmd() *cobra.Command {
	var (
		kinds []string
		line  int
		col   int
	)
	cmd := &cobra.Command{
		Use:   "findings [file]",
		Short: "Tag constructors and rule reports, in source order",
		Long: `Findings lists detected tag constructors and rule script reports. With a
file, only that file's findings are listed; with --line and --col as well,
only the findings whose span contains that position, narrowest first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withQuery("findings", func(q *stylescope.QueryBuilder) (CLIResult, error) {
				file := ""
				if len(args) > 0 {
					path, err := resolveFilePath(args[0])
					if err != nil {
						return CLIResult{}, err
					}
					file = path
				}

				var results []stylescope.FindingResult
				var err error
				switch {
				case line > 0 || col > 0:
					if file == "" {
						return CLIResult{}, fmt.Errorf("--line and --col require a file")
					}
					if line <= 0 || col <= 0 {
						return CLIResult{}, fmt.Errorf("--line and --col must both be positive")
					}
					results, err = q.FindingsAt(file, line, col)
				default:
					results, err = q.Findings(file, kinds...)
				}
				if err != nil {
					return CLIResult{}, err
				}
				total := len(results)
				return CLIResult{Results: toCLIFindings(results), TotalCount: &total}, nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "restrict to these kinds (styled, css, keyframes, createGlobalStyle, injectGlobal, or a rule kind)")
	cmd.Flags().IntVar(&line, "line", 0, "1-based line of a position inside the finding")
	cmd.Flags().IntVar(&col, "col", 0, "1-based column of a position inside the finding")
	return cmd
}

func (a *app) newFilesCmd() *cobra.Command {
	var (
		prefix      string
		language    string
		libraryOnly bool
		limit       int
		offset      int
	)
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List scanned files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withQuery("files", func(q *stylescope.QueryBuilder) (CLIResult, error) {
				filter := stylescope.FileFilter{Language: language, LibraryOnly: libraryOnly}
				if prefix != "" {
					abs, err := filepath.Abs(prefix)
					if err != nil {
						return CLIResult{}, fmt.Errorf("resolving prefix %q: %w", prefix, err)
					}
					filter.PathPrefix = abs
				}
				page, err := q.Files(filter, stylescope.Pagination{Offset: offset, Limit: limit})
				if err != nil {
					return CLIResult{}, err
				}
				total := page.TotalCount
				return CLIResult{Results: toCLIFiles(page.Items), TotalCount: &total}, nil
			})
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "only files under this directory")
	cmd.Flags().StringVar(&language, "language", "", "only files of this language (javascript, typescript, tsx)")
	cmd.Flags().BoolVar(&libraryOnly, "library", false, "only files that bind the styling library")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (default 50, max 500)")
	cmd.Flags().IntVar(&offset, "offset", 0, "skip this many results")
	return cmd
}

func (a *app) newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Counts over all scan results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withQuery("summary", func(q *stylescope.QueryBuilder) (CLIResult, error) {
				s, err := q.Summary()
				if err != nil {
					return CLIResult{}, err
				}
				return CLIResult{Results: toCLISummary(s)}, nil
			})
		},
	}
}

// withQuery opens the store, runs fn and writes its result under command.
func (a *app) withQuery(command string, fn func(q *stylescope.QueryBuilder) (CLIResult, error)) error {
	format := a.cfg.Format
	s, err := a.openStore()
	if err != nil {
		return outputError(a.stdout, a.stderr, format, command, err)
	}
	defer s.Close()

	result, err := fn(stylescope.NewQueryBuilder(s))
	if err != nil {
		return outputError(a.stdout, a.stderr, format, command, err)
	}
	result.Command = command
	return outputResult(a.stdout, format, result)
}

// openStore opens an existing database. Queries never create one.
func (a *app) openStore() (*store.Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	dbPath := resolveDBPath(findRepoRoot(cwd), a.cfg.DBPath)
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("database not found at %s: run 'stylescope scan' first", dbPath)
	}
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return s, nil
}

// resolveFilePath makes a file argument absolute, matching stored paths.
func resolveFilePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", path, err)
	}
	return abs, nil
}
