package stylescope

import (
	"github.com/jward/stylescope/internal/detect"
	"github.com/jward/stylescope/internal/store"
)

// Public type aliases for internal types used in the Engine and
// QueryBuilder API. External consumers use these names; no conversion is
// needed.

type Store = store.Store
type File = store.File
type Binding = store.Binding
type Finding = store.Finding
type RunRecord = store.Run

type Run = detect.Run
type RunStats = detect.Stats
type TagKind = detect.TagKind
