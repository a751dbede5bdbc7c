package store

import (
	"database/sql"
	"fmt"
)

// CommitBatch writes a BatchedStore to SQLite within a single transaction.
// Any previous record for the batch's path is deleted first, together with
// its bindings and findings. The file's real ID replaces the FileID of
// every buffered row and is returned.
//
// Insert order:
//  1. File (replacing the old record)
//  2. Bindings
//  3. Findings
func (s *Store) CommitBatch(batch *BatchedStore) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	batch.mu.Lock()
	defer batch.mu.Unlock()

	// 1. File
	var oldID int64
	err = tx.QueryRow("SELECT id FROM files WHERE path = ?", batch.File.Path).Scan(&oldID)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return 0, fmt.Errorf("commit batch: lookup %s: %w", batch.File.Path, err)
	default:
		if err := deleteFileTx(tx, oldID); err != nil {
			return 0, fmt.Errorf("commit batch: %w", err)
		}
	}

	fileID, err := insertFileTx(tx, &batch.File)
	if err != nil {
		return 0, fmt.Errorf("commit batch: file %s: %w", batch.File.Path, err)
	}

	// 2. Bindings
	for i := range batch.Bindings {
		bd := &batch.Bindings[i]
		bd.FileID = fileID
		realID, err := insertBindingTx(tx, bd)
		if err != nil {
			return 0, fmt.Errorf("commit batch: binding %q: %w", bd.Symbol, err)
		}
		bd.ID = realID
	}

	// 3. Findings
	for i := range batch.Findings {
		f := &batch.Findings[i]
		f.FileID = fileID
		realID, err := insertFindingTx(tx, f)
		if err != nil {
			return 0, fmt.Errorf("commit batch: finding %q: %w", f.Kind, err)
		}
		f.ID = realID
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit batch: %w", err)
	}
	batch.File.ID = fileID
	return fileID, nil
}

// --- Transaction-scoped insert helpers ---
// These mirror the Store insert methods but accept *sql.Tx instead of using s.db.

func insertFileTx(tx *sql.Tx, f *File) (int64, error) {
	res, err := tx.Exec(
		"INSERT INTO files (path, language, hash, last_scanned, require_binding) VALUES (?, ?, ?, ?, ?)",
		f.Path, f.Language, f.Hash, f.LastScanned, f.RequireBinding,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertBindingTx(tx *sql.Tx, b *Binding) (int64, error) {
	res, err := tx.Exec(
		"INSERT INTO bindings (file_id, symbol, local_name) VALUES (?, ?, ?)",
		b.FileID, b.Symbol, b.LocalName,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertFindingTx(tx *sql.Tx, f *Finding) (int64, error) {
	res, err := tx.Exec(
		`INSERT INTO findings (file_id, kind, start_line, start_col, end_line, end_col, text, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.FileID, f.Kind, f.StartLine, f.StartCol, f.EndLine, f.EndCol, f.Text, f.Message,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
