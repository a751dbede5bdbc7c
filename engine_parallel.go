package stylescope

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jward/stylescope/internal/detect"
	"github.com/jward/stylescope/internal/jsparse"
	stylert "github.com/jward/stylescope/internal/runtime"
	"github.com/jward/stylescope/internal/store"
)

// workItem holds everything a scan worker needs.
type workItem struct {
	path    string
	lang    string
	hash    string
	content []byte
}

type scanResult struct {
	item  workItem
	batch *store.BatchedStore
	err   error
}

// prepareFiles does the serial hash check for every path. It returns the
// files that need scanning, the number skipped as unchanged, and per-file
// read errors. Unsupported extensions are dropped without counting.
func (e *Engine) prepareFiles(paths []string) ([]workItem, int, []error) {
	rescanAll := e.force || e.SettingsChanged()

	var (
		items   []workItem
		skipped int
		errs    []error
	)
	for _, path := range paths {
		item, skip, err := e.prepareFile(path, rescanAll)
		if err != nil {
			errs = append(errs, fmt.Errorf("prepare %s: %w", path, err))
			continue
		}
		if skip {
			if item.lang != "" {
				skipped++
			}
			continue
		}
		items = append(items, item)
	}
	return items, skipped, errs
}

// prepareFile returns (item, skip, error). skip=true means the file is
// unsupported (item.lang empty) or unchanged.
func (e *Engine) prepareFile(path string, rescan bool) (workItem, bool, error) {
	lang, ok := jsparse.LanguageForFile(path)
	if !ok {
		return workItem{}, true, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return workItem{}, false, fmt.Errorf("read file: %w", err)
	}
	item := workItem{path: path, lang: lang, hash: store.ContentHash(content), content: content}
	if rescan {
		return item, false, nil
	}

	existing, err := e.store.FileByPath(path)
	if err != nil {
		return workItem{}, false, fmt.Errorf("lookup file: %w", err)
	}
	if existing != nil && existing.Hash == item.hash {
		return item, true, nil
	}
	return item, false, nil
}

// scanParallel scans items using a two-phase pipeline:
//
//	Phase B (parallel): parse, detect and run the rule script on a worker pool.
//	Phase C (serial):   commit each batch to SQLite as it arrives.
//
// Workers share the engine's Run; its tables are safe for concurrent use.
func (e *Engine) scanParallel(ctx context.Context, items []workItem, stats *ScanStats) []error {
	if len(items) == 0 {
		return nil
	}

	results := make(chan scanResult, len(items))

	// ---- Phase B: Parallel detection ----
	var g errgroup.Group
	g.SetLimit(min(e.jobs, len(items)))
	go func() {
		for _, item := range items {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					results <- scanResult{item: item, err: err}
					return nil
				}
				batch, err := e.scanFile(ctx, item)
				results <- scanResult{item: item, batch: batch, err: err}
				return nil
			})
		}
		g.Wait()
		close(results)
	}()

	// ---- Phase C: Serial commit ----
	var errs []error
	for res := range results {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("scan %s: %w", res.item.path, res.err))
			continue
		}
		if err := e.commit(res.item, res.batch); err != nil {
			errs = append(errs, fmt.Errorf("commit %s: %w", res.item.path, err))
			continue
		}
		stats.Scanned++
		stats.Findings += res.batch.FindingCount()
	}
	return errs
}

// scanFile parses one file and buffers its bindings and findings in a
// BatchedStore. Nothing is written to SQLite.
func (e *Engine) scanFile(ctx context.Context, item workItem) (*store.BatchedStore, error) {
	f, err := jsparse.ParseLanguage(ctx, item.path, item.lang, item.content)
	if err != nil {
		return nil, err
	}
	dctx := detect.NewContext(f, e.registry)

	batch := store.NewBatchedStore(store.File{
		Path:           item.path,
		Language:       item.lang,
		Hash:           item.hash,
		LastScanned:    time.Now(),
		RequireBinding: dctx.RequireBinding,
	})

	for _, symbol := range detect.Symbols {
		local, ok := e.run.ResolveLocalName(symbol, dctx, false)
		if !ok {
			continue
		}
		if _, err := batch.InsertBinding(&store.Binding{Symbol: symbol, LocalName: local}); err != nil {
			return nil, fmt.Errorf("binding %s: %w", symbol, err)
		}
	}

	for _, tag := range e.run.FindTags(f, dctx) {
		sp := tag.Node.Span()
		_, err := batch.InsertFinding(&store.Finding{
			Kind:      tag.Kind.String(),
			StartLine: sp.StartLine,
			StartCol:  sp.StartCol,
			EndLine:   sp.EndLine,
			EndCol:    sp.EndCol,
			Text:      f.Text(tag.Tag),
		})
		if err != nil {
			return nil, fmt.Errorf("finding: %w", err)
		}
	}

	if e.script != "" {
		env := stylert.NewFileEnv(f, dctx, e.run, batch)
		if err := e.runtime.RunFile(ctx, e.script, e.scriptPath, env); err != nil {
			return nil, fmt.Errorf("rule script: %w", err)
		}
	}
	return batch, nil
}

// commit writes a batch and records the file as scanned in this run.
func (e *Engine) commit(item workItem, batch *store.BatchedStore) error {
	if _, err := e.store.CommitBatch(batch); err != nil {
		return err
	}
	e.scanned[item.path] = item.hash
	e.logger.Debug("scanned", "path", item.path, "findings", batch.FindingCount())
	return nil
}
