package typeclass

import "sync/atomic"

// Stats is a snapshot of process-wide engine counters.
type Stats struct {
	// Allocated counts adapters created by construction, copy and
	// move-assignment.
	Allocated uint64
	// Released counts adapters destroyed.
	Released uint64
	// BinderHits counts bindings served from the memo.
	BinderHits uint64
	// BinderMisses counts bindings built; it equals the number of distinct
	// (contract, type) keys seen so far.
	BinderMisses uint64
}

// Live returns the number of adapters currently owned by containers.
func (s Stats) Live() int64 { return int64(s.Allocated) - int64(s.Released) }

var stats struct {
	allocated atomic.Uint64
	released  atomic.Uint64
	hits      atomic.Uint64
	misses    atomic.Uint64
}

// ReadStats returns the current counters. Individual fields are read
// atomically but not as one consistent snapshot.
func ReadStats() Stats {
	return Stats{
		Allocated:    stats.allocated.Load(),
		Released:     stats.released.Load(),
		BinderHits:   stats.hits.Load(),
		BinderMisses: stats.misses.Load(),
	}
}
