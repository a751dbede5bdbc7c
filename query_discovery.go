package stylescope

import (
	"fmt"
	"strings"

	"github.com/jward/stylescope/internal/store"
)

// --- Common Types ---

// Pagination controls offset+limit paging on list results.
type Pagination struct {
	Offset int // skip this many results (default 0)
	Limit  int // max results to return (default 50, max 500)
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

// normalize returns a Pagination with defaults applied and bounds enforced.
func (p Pagination) normalize() Pagination {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// PagedResult wraps a page of results with total count for pagination.
type PagedResult[T any] struct {
	Items      []T
	TotalCount int // total matching results (before pagination)
}

// FileFilter specifies which files to list. All fields are optional.
type FileFilter struct {
	PathPrefix  string // restrict to files under this directory
	Language    string // exact match
	LibraryOnly bool   // only files that bind the library
}

// normalizePathPrefix ensures a path prefix ends with "/" for correct LIKE
// matching: "src/ui" must not match "src/ui_kit/".
func normalizePathPrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	if !strings.HasSuffix(prefix, "/") {
		return prefix + "/"
	}
	return prefix
}

// escapeLike escapes SQL LIKE special characters (% and _) with backslash.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// --- Enumeration Endpoints ---

// Files lists scanned files ordered by path.
func (q *QueryBuilder) Files(filter FileFilter, page Pagination) (*PagedResult[store.File], error) {
	page = page.normalize()

	var where []string
	var args []any

	if filter.PathPrefix != "" {
		where = append(where, "path LIKE ? ESCAPE '\\'")
		args = append(args, escapeLike(normalizePathPrefix(filter.PathPrefix))+"%")
	}
	if filter.Language != "" {
		where = append(where, "language = ?")
		args = append(args, filter.Language)
	}
	if filter.LibraryOnly {
		where = append(where, "(require_binding != '' OR id IN (SELECT DISTINCT file_id FROM bindings))")
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var totalCount int
	if err := q.store.DB().QueryRow("SELECT COUNT(*) FROM files "+whereClause, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("files: count: %w", err)
	}

	dataSQL := fmt.Sprintf(`SELECT %s FROM files %s ORDER BY path LIMIT ? OFFSET ?`, store.FileCols, whereClause)
	dataArgs := append(append([]any{}, args...), page.Limit, page.Offset)

	rows, err := q.store.DB().Query(dataSQL, dataArgs...)
	if err != nil {
		return nil, fmt.Errorf("files: query: %w", err)
	}
	defer rows.Close()

	items := []store.File{}
	for rows.Next() {
		f, err := store.ScanFileRow(rows)
		if err != nil {
			return nil, fmt.Errorf("files: scan: %w", err)
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("files: rows: %w", err)
	}

	return &PagedResult[store.File]{Items: items, TotalCount: totalCount}, nil
}

// --- Digest Endpoints ---

// LanguageStats provides per-language breakdown for Summary.
type LanguageStats struct {
	Language     string
	FileCount    int
	FindingCount int
}

// Summary provides a high-level overview of the stored scan results.
type Summary struct {
	Files                 int
	FilesImportingLibrary int
	RequireStyleFiles     int
	Findings              int
	KindCounts            map[string]int
	Languages             []LanguageStats
	LatestRun             *store.Run
}

// Summary returns counts over every stored file and the latest run.
func (q *QueryBuilder) Summary() (*Summary, error) {
	db := q.store.DB()
	summary := &Summary{KindCounts: make(map[string]int), Languages: []LanguageStats{}}

	err := db.QueryRow(
		`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN require_binding != '' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN require_binding != '' OR id IN (SELECT file_id FROM bindings) THEN 1 ELSE 0 END), 0)
		 FROM files`,
	).Scan(&summary.Files, &summary.RequireStyleFiles, &summary.FilesImportingLibrary)
	if err != nil {
		return nil, fmt.Errorf("summary: files: %w", err)
	}

	kindRows, err := db.Query(`SELECT kind, COUNT(*) FROM findings GROUP BY kind ORDER BY kind`)
	if err != nil {
		return nil, fmt.Errorf("summary: kinds: %w", err)
	}
	defer kindRows.Close()
	for kindRows.Next() {
		var kind string
		var count int
		if err := kindRows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("summary: scan kind: %w", err)
		}
		summary.KindCounts[kind] = count
		summary.Findings += count
	}
	if err := kindRows.Err(); err != nil {
		return nil, fmt.Errorf("summary: kind rows: %w", err)
	}

	langRows, err := db.Query(
		`SELECT f.language, COUNT(DISTINCT f.id), COUNT(x.id)
		 FROM files f LEFT JOIN findings x ON x.file_id = f.id
		 GROUP BY f.language ORDER BY f.language`,
	)
	if err != nil {
		return nil, fmt.Errorf("summary: languages: %w", err)
	}
	defer langRows.Close()
	for langRows.Next() {
		var ls LanguageStats
		if err := langRows.Scan(&ls.Language, &ls.FileCount, &ls.FindingCount); err != nil {
			return nil, fmt.Errorf("summary: scan language: %w", err)
		}
		summary.Languages = append(summary.Languages, ls)
	}
	if err := langRows.Err(); err != nil {
		return nil, fmt.Errorf("summary: language rows: %w", err)
	}

	summary.LatestRun, err = q.store.LatestRun()
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	return summary, nil
}
