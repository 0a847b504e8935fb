package store

import "github.com/graphmem/vertexcache/policy"

// Options configures a Store. Zero values are safe except Capacity, which
// must be positive; defaults are applied in New:
//   - nil Policy  => LRU
//   - nil Metrics => NoopMetrics
//   - Shards <= 0 => auto (power of two from CPU count)
//   - nil Hash    => FNV-1a over the key
type Options[K comparable, V any] struct {
	// Capacity is the maximum number of resident entries, split evenly
	// across shards (ceiling division, so the effective global bound is
	// Shards * ceil(Capacity/Shards)).
	Capacity int

	// Shards pins the shard count (rounded up to a power of two).
	// Zero picks an automatic value. Use 1 for a single global recency
	// order.
	Shards int

	// Policy orders entries for eviction. Nil means LRU.
	Policy policy.Policy[K, V]

	// Hash maps a key to 64 bits for shard selection.
	Hash func(K) uint64

	// OnRemoval is invoked for every entry that leaves the store, inline
	// and under the shard lock (see package docs). May be nil.
	OnRemoval func(k K, v V, cause RemovalCause)

	// Metrics receives Hit/Miss/Evict/Size signals. Nil means NoopMetrics.
	Metrics Metrics
}
