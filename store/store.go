package store

import "context"

// RemovalCause says why an entry left the store. The set is closed: the
// removal callback makes its keep-or-discard decision by switching on it.
type RemovalCause uint8

const (
	// CauseCapacity — evicted to satisfy the capacity limit, or nominated
	// by the eviction policy.
	CauseCapacity RemovalCause = iota
	// CauseReplaced — overwritten by a Set on an existing key; the
	// callback receives the previous value.
	CauseReplaced
	// CauseExplicit — removed by Remove or PurgeAll.
	CauseExplicit
)

func (c RemovalCause) String() string {
	switch c {
	case CauseCapacity:
		return "capacity"
	case CauseReplaced:
		return "replaced"
	case CauseExplicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// Stats is a point-in-time aggregate of the per-shard counters.
// Evictions counts capacity-cause removals only.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions uint64
	Entries   int
}

// Store is a sharded, capacity-bounded key/value store. All methods are
// safe for concurrent use.
type Store[K comparable, V any] interface {
	// Get returns the value for k and promotes the entry per the policy.
	Get(k K) (V, bool)

	// Peek returns the value for k without promoting it and without
	// touching the hit/miss counters.
	Peek(k K) (V, bool)

	// Contains reports residency with no side effects.
	Contains(k K) bool

	// Set inserts or overwrites k→v. Overwriting fires the removal
	// callback with CauseReplaced for the previous value; the insert may
	// evict other entries (CauseCapacity) before Set returns.
	Set(k K, v V)

	// GetOrCompute returns the value for k, running compute to produce it
	// on a miss. Concurrent callers for the same absent key are coalesced:
	// compute runs once and all of them receive the same resulting value.
	// A compute error is returned to every coalesced caller and nothing is
	// stored. ctx releases a waiting caller only; the computation itself
	// is not cancelled.
	GetOrCompute(ctx context.Context, k K, compute func() (V, error)) (V, error)

	// Remove deletes k if present (CauseExplicit) and reports whether it
	// was resident.
	Remove(k K) bool

	// PurgeAll removes every entry, firing the removal callback with
	// CauseExplicit for each.
	PurgeAll()

	// Len returns the number of resident entries across all shards.
	Len() int

	// Stats returns an aggregate counter snapshot.
	Stats() Stats
}
