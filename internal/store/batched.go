package store

import "sync"

// BatchedStore buffers one file's scan results in memory using fake
// (negative) IDs. It implements DataStore so the pipeline and rule scripts
// can write to it without knowing whether they're hitting SQLite or an
// in-memory buffer. Store.CommitBatch writes it out in one transaction.
//
// Thread safety: the mutex protects fake ID allocation and slice appends.
type BatchedStore struct {
	mu sync.Mutex

	// File is the record to write. Its ID is ignored.
	File File

	Bindings []Binding
	Findings []Finding

	nextFakeID int64 // starts at -1, decrements
}

// Compile-time check: *BatchedStore satisfies DataStore.
var _ DataStore = (*BatchedStore)(nil)

// NewBatchedStore creates a BatchedStore for the given file record.
func NewBatchedStore(f File) *BatchedStore {
	return &BatchedStore{
		File:       f,
		nextFakeID: -1,
	}
}

func (b *BatchedStore) allocFakeID() int64 {
	id := b.nextFakeID
	b.nextFakeID--
	return id
}

func (b *BatchedStore) InsertBinding(bd *Binding) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	bd.ID = fakeID
	b.Bindings = append(b.Bindings, *bd)
	return fakeID, nil
}

func (b *BatchedStore) InsertFinding(f *Finding) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	f.ID = fakeID
	b.Findings = append(b.Findings, *f)
	return fakeID, nil
}

// FindingCount returns the number of buffered findings.
func (b *BatchedStore) FindingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Findings)
}
