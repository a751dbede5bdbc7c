package store

import "time"

type File struct {
	ID             int64
	Path           string
	Language       string
	Hash           string
	LastScanned    time.Time
	RequireBinding string
}

// Binding records the local name a library symbol is bound to in a file.
type Binding struct {
	ID        int64
	FileID    int64
	Symbol    string
	LocalName string
}

// Finding is a detected tag constructor, or a report from a rule script.
type Finding struct {
	ID        int64
	FileID    int64
	Kind      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
	Text      string
	Message   string
}

// Run is one invocation of the scan pipeline.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   *time.Time
	FilesScanned int
	FilesSkipped int
	Findings     int
}
