package stylescope

import (
	"fmt"
	"strings"

	"github.com/jward/stylescope/internal/store"
)

// QueryBuilder provides a read-only query API over the Store.
type QueryBuilder struct {
	store *store.Store
}

// Location represents a source code position range.
type Location struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// FindingResult is a Finding together with the path of its file.
type FindingResult struct {
	store.Finding
	FilePath string
}

// Location returns the finding's position.
func (r FindingResult) Location() Location {
	return Location{
		File:      r.FilePath,
		StartLine: r.StartLine,
		StartCol:  r.StartCol,
		EndLine:   r.EndLine,
		EndCol:    r.EndCol,
	}
}

// Bindings returns the library symbols bound in file, ordered by symbol.
// A file that was never scanned has no bindings.
func (q *QueryBuilder) Bindings(file string) ([]*store.Binding, error) {
	f, err := q.store.FileByPath(file)
	if err != nil {
		return nil, fmt.Errorf("bindings: lookup file: %w", err)
	}
	if f == nil {
		return nil, nil
	}
	bindings, err := q.store.BindingsByFile(f.ID)
	if err != nil {
		return nil, fmt.Errorf("bindings: %w", err)
	}
	return bindings, nil
}

// Findings returns findings in file order then source order. An empty file
// matches every file; kinds, when given, restrict the result to those kinds.
func (q *QueryBuilder) Findings(file string, kinds ...string) ([]FindingResult, error) {
	var where []string
	var args []any

	if file != "" {
		where = append(where, "f.path = ?")
		args = append(args, file)
	}
	if len(kinds) > 0 {
		where = append(where, "x.kind IN ("+store.PlaceholderList(len(kinds))+")")
		args = append(args, store.StringsToArgs(kinds)...)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	rows, err := q.store.DB().Query(
		`SELECT `+prefixFindingCols("x")+`, f.path
		 FROM findings x JOIN files f ON x.file_id = f.id
		 `+whereClause+`
		 ORDER BY f.path, x.start_line, x.start_col, x.id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("findings: query: %w", err)
	}
	defer rows.Close()

	var out []FindingResult
	for rows.Next() {
		r, err := scanFindingResult(rows)
		if err != nil {
			return nil, fmt.Errorf("findings: scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("findings: rows: %w", err)
	}
	return out, nil
}

// FindingsAt returns the findings of file whose span contains (line, col),
// narrowest first.
func (q *QueryBuilder) FindingsAt(file string, line, col int) ([]FindingResult, error) {
	rows, err := q.store.DB().Query(
		`SELECT `+prefixFindingCols("x")+`, f.path
		 FROM findings x JOIN files f ON x.file_id = f.id
		 WHERE f.path = ? AND x.start_line <= ? AND x.end_line >= ?
		   AND (x.start_line < ? OR (x.start_line = ? AND x.start_col <= ?))
		   AND (x.end_line > ? OR (x.end_line = ? AND x.end_col >= ?))
		 ORDER BY (x.end_line - x.start_line), (x.end_col - x.start_col), x.id`,
		file, line, line,
		line, line, col,
		line, line, col,
	)
	if err != nil {
		return nil, fmt.Errorf("findings at: query: %w", err)
	}
	defer rows.Close()

	var out []FindingResult
	for rows.Next() {
		r, err := scanFindingResult(rows)
		if err != nil {
			return nil, fmt.Errorf("findings at: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FilesImportingLibrary returns the files that bind at least one library
// symbol, by import or require, ordered by path.
func (q *QueryBuilder) FilesImportingLibrary() ([]*store.File, error) {
	rows, err := q.store.DB().Query(
		`SELECT ` + store.FileCols + ` FROM files
		 WHERE require_binding != '' OR id IN (SELECT DISTINCT file_id FROM bindings)
		 ORDER BY path`,
	)
	if err != nil {
		return nil, fmt.Errorf("files importing library: %w", err)
	}
	defer rows.Close()

	var out []*store.File
	for rows.Next() {
		f, err := store.ScanFileRow(rows)
		if err != nil {
			return nil, fmt.Errorf("files importing library: scan: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// prefixFindingCols qualifies store.FindingCols with a table alias.
func prefixFindingCols(prefix string) string {
	cols := strings.Split(store.FindingCols, ",")
	for i, c := range cols {
		cols[i] = prefix + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

// scanFindingResult scans a row selected with prefixFindingCols plus the
// file path.
func scanFindingResult(row scanner) (FindingResult, error) {
	var r FindingResult
	var path string
	f, err := store.ScanFindingRow(scanFunc(func(dest ...any) error {
		return row.Scan(append(dest, &path)...)
	}))
	if err != nil {
		return r, err
	}
	r.Finding = *f
	r.FilePath = path
	return r, nil
}

// scanFunc adapts a function to the scanner interface.
type scanFunc func(dest ...any) error

func (f scanFunc) Scan(dest ...any) error { return f(dest...) }

// NewQueryBuilder creates a QueryBuilder over an existing Store.
func NewQueryBuilder(s *store.Store) *QueryBuilder {
	return &QueryBuilder{store: s}
}
