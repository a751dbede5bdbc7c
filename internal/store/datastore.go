package store

// DataStore is the write interface for per-file scan results. Both Store
// (direct SQLite) and BatchedStore (in-memory buffering for parallel
// scanning) implement it.
type DataStore interface {
	InsertBinding(b *Binding) (int64, error)
	InsertFinding(f *Finding) (int64, error)
}

// Compile-time check: *Store satisfies DataStore.
var _ DataStore = (*Store)(nil)
