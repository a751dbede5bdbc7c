// Package detect finds where the styling library is imported in a file and
// which expressions are its tag constructors.
//
// All mutable detection state lives in a Run: the import binding table and
// the memo of confirmed main-tag nodes. A Run is scoped to one pipeline run
// and may be shared by workers processing different files; both tables are
// keyed by unit identity and use concurrency-safe maps. Recomputing a
// binding concurrently is harmless because resolution is deterministic for
// a given unit.
//
// Every query is total. Resolution reports absence with ok == false and
// classification reports false for shapes it does not recognize.
package detect

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/jward/stylescope/internal/ast"
)

type bindingKey struct {
	symbol string
	unit   string
}

type binding struct {
	name string
	ok   bool
}

type memoKey struct {
	unit string
	id   ast.NodeID
}

// Run owns the detection state of one pipeline run.
type Run struct {
	id string

	bindings sync.Map // bindingKey -> binding
	memo     sync.Map // memoKey -> struct{}

	lookups atomic.Int64
	scans   atomic.Int64
}

// NewRun returns an empty Run with a fresh identifier.
func NewRun() *Run {
	return &Run{id: uuid.NewString()}
}

// ID returns the run identifier.
func (r *Run) ID() string { return r.id }

// Reset discards all cached bindings and memoized classifications and
// assigns a new run identifier.
func (r *Run) Reset() {
	r.bindings.Clear()
	r.memo.Clear()
	r.lookups.Store(0)
	r.scans.Store(0)
	r.id = uuid.NewString()
}

// Stats is a snapshot of a Run's counters.
type Stats struct {
	// Lookups counts ResolveLocalName calls.
	Lookups int64
	// Scans counts import scans, i.e. lookups that missed the cache or
	// bypassed it.
	Scans int64
	// Bindings is the number of cached (symbol, unit) entries.
	Bindings int
	// Memoized is the number of nodes recorded as main tags.
	Memoized int
}

// Stats returns the current counters.
func (r *Run) Stats() Stats {
	s := Stats{Lookups: r.lookups.Load(), Scans: r.scans.Load()}
	r.bindings.Range(func(_, _ any) bool {
		s.Bindings++
		return true
	})
	r.memo.Range(func(_, _ any) bool {
		s.Memoized++
		return true
	})
	return s
}

// Memoized reports whether node was recorded as a main tag in ctx's unit.
// Nodes without an assigned id (zero) are never memoized.
func (r *Run) Memoized(node ast.Node, ctx *Context) bool {
	if node == nil || node.ID() == 0 {
		return false
	}
	_, ok := r.memo.Load(memoKey{unit: ctx.unitID(), id: node.ID()})
	return ok
}

func (r *Run) remember(node ast.Node, ctx *Context) {
	if node.ID() == 0 {
		return
	}
	r.memo.Store(memoKey{unit: ctx.unitID(), id: node.ID()}, struct{}{})
}
