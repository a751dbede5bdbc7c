package store

import (
	"database/sql"
	"fmt"
	"time"
)

// --- File operations ---

func (s *Store) InsertFile(f *File) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO files (path, language, hash, last_scanned, require_binding) VALUES (?, ?, ?, ?, ?)",
		f.Path, f.Language, f.Hash, f.LastScanned, f.RequireBinding,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	f.ID = id
	return id, nil
}

// FileCols is the column list for file queries, exported for use by QueryBuilder.
const FileCols = `id, path, language, hash, last_scanned, require_binding`

// ScanFileRow scans a single row selected with FileCols.
func ScanFileRow(scanner interface{ Scan(...any) error }) (*File, error) {
	f := &File{}
	var hash sql.NullString
	var scanned sql.NullTime
	if err := scanner.Scan(&f.ID, &f.Path, &f.Language, &hash, &scanned, &f.RequireBinding); err != nil {
		return nil, err
	}
	f.Hash = hash.String
	if scanned.Valid {
		f.LastScanned = scanned.Time
	}
	return f, nil
}

// FileByPath returns the file record for path, or nil when it was never
// scanned.
func (s *Store) FileByPath(path string) (*File, error) {
	f, err := ScanFileRow(s.db.QueryRow("SELECT "+FileCols+" FROM files WHERE path = ?", path))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return f, nil
}

// Files returns every file record ordered by path.
func (s *Store) Files() ([]*File, error) {
	return s.queryFiles("SELECT " + FileCols + " FROM files ORDER BY path")
}

func (s *Store) queryFiles(query string, args ...any) ([]*File, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var files []*File
	for rows.Next() {
		f, err := ScanFileRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// --- Binding operations ---

func (s *Store) InsertBinding(b *Binding) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO bindings (file_id, symbol, local_name) VALUES (?, ?, ?)",
		b.FileID, b.Symbol, b.LocalName,
	)
	if err != nil {
		return 0, fmt.Errorf("insert binding: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	b.ID = id
	return id, nil
}

// BindingsByFile returns a file's bindings ordered by symbol.
func (s *Store) BindingsByFile(fileID int64) ([]*Binding, error) {
	rows, err := s.db.Query(
		"SELECT id, file_id, symbol, local_name FROM bindings WHERE file_id = ? ORDER BY symbol", fileID,
	)
	if err != nil {
		return nil, fmt.Errorf("bindings by file: %w", err)
	}
	defer rows.Close()
	var out []*Binding
	for rows.Next() {
		b := &Binding{}
		if err := rows.Scan(&b.ID, &b.FileID, &b.Symbol, &b.LocalName); err != nil {
			return nil, fmt.Errorf("scan binding: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// --- Finding operations ---

func (s *Store) InsertFinding(f *Finding) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO findings (file_id, kind, start_line, start_col, end_line, end_col, text, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.FileID, f.Kind, f.StartLine, f.StartCol, f.EndLine, f.EndCol, f.Text, f.Message,
	)
	if err != nil {
		return 0, fmt.Errorf("insert finding: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	f.ID = id
	return id, nil
}

// FindingCols is the column list for finding queries, exported for use by QueryBuilder.
const FindingCols = `id, file_id, kind, start_line, start_col, end_line, end_col, text, message`

// ScanFindingRow scans a single row selected with FindingCols.
func ScanFindingRow(scanner interface{ Scan(...any) error }) (*Finding, error) {
	f := &Finding{}
	var text sql.NullString
	err := scanner.Scan(&f.ID, &f.FileID, &f.Kind, &f.StartLine, &f.StartCol, &f.EndLine, &f.EndCol, &text, &f.Message)
	if err != nil {
		return nil, err
	}
	f.Text = text.String
	return f, nil
}

// FindingsByFile returns a file's findings in source order.
func (s *Store) FindingsByFile(fileID int64) ([]*Finding, error) {
	rows, err := s.db.Query(
		"SELECT "+FindingCols+" FROM findings WHERE file_id = ? ORDER BY start_line, start_col, id", fileID,
	)
	if err != nil {
		return nil, fmt.Errorf("findings by file: %w", err)
	}
	defer rows.Close()
	var out []*Finding
	for rows.Next() {
		f, err := ScanFindingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// --- Run operations ---

// StartRun records the start of a run.
func (s *Store) StartRun(id string, startedAt time.Time) error {
	_, err := s.db.Exec("INSERT INTO runs (id, started_at) VALUES (?, ?)", id, startedAt)
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	return nil
}

// FinishRun adds counts to a run and stamps its finish time. Counts
// accumulate across scans that share the run.
func (s *Store) FinishRun(id string, scanned, skipped, findings int) error {
	_, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?,
			files_scanned = files_scanned + ?,
			files_skipped = files_skipped + ?,
			findings = findings + ?
		 WHERE id = ?`,
		time.Now(), scanned, skipped, findings, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RunByID returns the run with id, or nil when unknown.
func (s *Store) RunByID(id string) (*Run, error) {
	return s.scanRun(s.db.QueryRow(
		"SELECT id, started_at, finished_at, files_scanned, files_skipped, findings FROM runs WHERE id = ?", id,
	))
}

// LatestRun returns the most recently started run, or nil when there is none.
func (s *Store) LatestRun() (*Run, error) {
	return s.scanRun(s.db.QueryRow(
		"SELECT id, started_at, finished_at, files_scanned, files_skipped, findings FROM runs ORDER BY started_at DESC LIMIT 1",
	))
}

func (s *Store) scanRun(row *sql.Row) (*Run, error) {
	r := &Run{}
	var finished sql.NullTime
	err := row.Scan(&r.ID, &r.StartedAt, &finished, &r.FilesScanned, &r.FilesSkipped, &r.Findings)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if finished.Valid {
		r.FinishedAt = &finished.Time
	}
	return r, nil
}
