package stylescope

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jward/stylescope/internal/config"
	"github.com/jward/stylescope/internal/detect"
	"github.com/jward/stylescope/internal/jsparse"
	stylert "github.com/jward/stylescope/internal/runtime"
	"github.com/jward/stylescope/internal/store"
)

// settingsHashKey is the metadata key holding the hash of the settings the
// stored results were produced with.
const settingsHashKey = "settings_hash"

// Engine orchestrates the stylescope pipeline: file discovery, change
// detection, parsing, detection, optional rule scripts, persistence and
// query access.
type Engine struct {
	store    *store.Store
	runtime  *stylert.Runtime
	run      *detect.Run
	registry *detect.Registry
	logger   *log.Logger

	importPaths []string
	scriptPath  string
	scriptsFS   fs.FS
	script      string // rule script source, empty when none

	jobs        int
	useParallel bool
	force       bool

	// scanned maps paths scanned during the current run to their content
	// hash. A path that comes back with different content forces a new run.
	scanned map[string]string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for scan progress. Rule scripts log through
// it as well.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithParallel controls parallel scanning. When true (default), ScanFiles
// parses and classifies on a worker pool, with a single goroutine
// committing results to SQLite. Set to false for serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithJobs caps the number of scan workers. Zero or less means one per CPU.
func WithJobs(n int) Option {
	return func(e *Engine) {
		e.jobs = n
	}
}

// WithImportPaths adds module specifiers recognized as the styling library
// on top of the built-in ones.
func WithImportPaths(paths ...string) Option {
	return func(e *Engine) {
		e.importPaths = append(e.importPaths, paths...)
	}
}

// WithScript runs the Risor rule script at path against every scanned
// file. Imports inside the script resolve relative to its directory.
func WithScript(path string) Option {
	return func(e *Engine) {
		e.scriptPath = path
	}
}

// WithScriptsFS loads the rule script and its imports from fsys instead of
// from disk. This enables embedding scripts via go:embed.
func WithScriptsFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.scriptsFS = fsys
	}
}

// WithForce rescans files even when their content hash is unchanged.
func WithForce(force bool) Option {
	return func(e *Engine) {
		e.force = force
	}
}

// WithConfig applies loaded configuration: import paths, jobs and script.
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) {
		if cfg == nil {
			return
		}
		e.importPaths = append(e.importPaths, cfg.TopLevelImportPaths()...)
		e.jobs = cfg.Jobs
		if cfg.Script != "" {
			e.scriptPath = cfg.Script
		}
	}
}

// New creates an Engine backed by a SQLite database at dbPath.
func New(dbPath string, opts ...Option) (*Engine, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("stylescope: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("stylescope: migrate: %w", err)
	}

	e := &Engine{
		store:       s,
		run:         detect.NewRun(),
		useParallel: true,
		scanned:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel})
	}
	if e.jobs <= 0 {
		e.jobs = goruntime.NumCPU()
	}
	e.registry = detect.NewRegistry(e.importPaths...)

	rtOpts := []stylert.RuntimeOption{stylert.WithLogger(e.logger)}
	scriptsDir := ""
	if e.scriptsFS != nil {
		rtOpts = append(rtOpts, stylert.WithRuntimeFS(e.scriptsFS))
	} else if e.scriptPath != "" {
		scriptsDir = filepath.Dir(e.scriptPath)
	}
	e.runtime = stylert.NewRuntime(scriptsDir, rtOpts...)

	if e.scriptPath != "" {
		path := e.scriptPath
		if e.scriptsFS == nil {
			path = filepath.Base(path)
		}
		src, err := e.runtime.LoadScript(path)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("stylescope: %w", err)
		}
		e.script = src
	}

	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// Run returns the detection state of the current run.
func (e *Engine) Run() *Run {
	return e.run
}

// ResetRun discards cached bindings and classifications and starts a new
// run with a fresh identifier.
func (e *Engine) ResetRun() {
	e.run.Reset()
	e.scanned = make(map[string]string)
}

// Registry returns the recognized import paths in effect.
func (e *Engine) Registry() []string {
	return e.registry.Paths()
}

// Query returns a new QueryBuilder wrapping the Store.
func (e *Engine) Query() *QueryBuilder {
	return &QueryBuilder{store: e.store}
}

// settingsHash hashes the recognized paths and the rule script.
func (e *Engine) settingsHash() string {
	return store.ComputeSettingsHash(e.registry.Paths(), e.script)
}

// SettingsChanged reports whether the import paths or rule script differ
// from what produced the stored results. Returns true if the DB has no
// stored hash (first run). When true, ScanFiles ignores content hashes.
func (e *Engine) SettingsChanged() bool {
	stored, err := e.store.GetMetadata(settingsHashKey)
	if err != nil || stored == "" {
		return true
	}
	return stored != e.settingsHash()
}

// storeSettingsHash persists the current settings hash to the database.
func (e *Engine) storeSettingsHash() error {
	return e.store.SetMetadata(settingsHashKey, e.settingsHash())
}

// ScanStats summarizes one ScanFiles call.
type ScanStats struct {
	RunID    string
	Scanned  int
	Skipped  int
	Findings int
	Errors   int
}

// ScanFiles scans the given file paths. When WithParallel is enabled, uses
// a worker pool for parsing and detection with a single serial committer.
//
// For each file:
//  1. Detect language from extension; skip unsupported files
//  2. Skip unchanged files (same content hash), unless forced or the
//     settings changed
//  3. Parse, detect the require-style binding and resolve every symbol
//  4. Record every tag constructor as a finding
//  5. Run the rule script, if any
//  6. Replace the file's stored results
//
// Errors on individual files are collected; processing continues and the
// first error is returned wrapped in an aggregate.
func (e *Engine) ScanFiles(ctx context.Context, paths []string) (ScanStats, error) {
	items, skipped, errs := e.prepareFiles(paths)
	if e.contentChangedInRun(items) {
		e.logger.Debug("file changed during run, starting a new run", "old_run", e.run.ID())
		e.ResetRun()
	}
	if err := e.beginRun(); err != nil {
		return ScanStats{}, err
	}

	stats := ScanStats{RunID: e.run.ID(), Skipped: skipped}
	if e.useParallel {
		errs = append(errs, e.scanParallel(ctx, items, &stats)...)
	} else {
		errs = append(errs, e.scanSerial(ctx, items, &stats)...)
	}
	stats.Errors = len(errs)

	if err := e.store.FinishRun(stats.RunID, stats.Scanned, stats.Skipped, stats.Findings); err != nil {
		return stats, fmt.Errorf("stylescope: %w", err)
	}
	if len(errs) > 0 {
		return stats, fmt.Errorf("scanning had %d error(s): %w", len(errs), errs[0])
	}
	if err := e.storeSettingsHash(); err != nil {
		return stats, fmt.Errorf("stylescope: store settings hash: %w", err)
	}

	e.logger.Info("scan complete",
		"run", stats.RunID, "scanned", stats.Scanned, "skipped", stats.Skipped, "findings", stats.Findings)
	return stats, nil
}

// contentChangedInRun reports whether any item was already scanned in the
// current run with different content. Run state is keyed by path, so such
// a file cannot share the run.
func (e *Engine) contentChangedInRun(items []workItem) bool {
	for _, item := range items {
		if prev, ok := e.scanned[item.path]; ok && prev != item.hash {
			return true
		}
	}
	return false
}

// beginRun records the current run in the store the first time it scans.
func (e *Engine) beginRun() error {
	existing, err := e.store.RunByID(e.run.ID())
	if err != nil {
		return fmt.Errorf("stylescope: %w", err)
	}
	if existing != nil {
		return nil
	}
	if err := e.store.StartRun(e.run.ID(), time.Now()); err != nil {
		return fmt.Errorf("stylescope: %w", err)
	}
	return nil
}

func (e *Engine) scanSerial(ctx context.Context, items []workItem, stats *ScanStats) []error {
	var errs []error
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return append(errs, err)
		}
		batch, err := e.scanFile(ctx, item)
		if err == nil {
			err = e.commit(item, batch)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("scan %s: %w", item.path, err))
			continue
		}
		stats.Scanned++
		stats.Findings += batch.FindingCount()
	}
	return errs
}

// ScanDirectory walks root and scans all files with supported extensions.
// If root is inside a git repository, uses git ls-files to respect
// .gitignore. Falls back to a filesystem walk (skipping hidden dirs,
// node_modules, vendor) if git is unavailable.
func (e *Engine) ScanDirectory(ctx context.Context, root string) (ScanStats, error) {
	paths, err := gitListFiles(root)
	if err != nil {
		e.logger.Debug("git ls-files unavailable, walking", "root", root, "err", err)
		paths, err = walkListFiles(root)
		if err != nil {
			return ScanStats{}, err
		}
	}
	return e.ScanFiles(ctx, paths)
}

// skipDirs are directories excluded from the fallback walk.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root, filtered to supported languages.
func gitListFiles(root string) ([]string, error) {
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		absPath := filepath.Join(root, line)
		if _, ok := jsparse.LanguageForFile(absPath); ok {
			paths = append(paths, absPath)
		}
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem.
func walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := jsparse.LanguageForFile(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}
