// Package store provides the bounded tier of the transaction vertex
// cache: a concurrent, capacity-limited map with a pluggable eviction
// policy and a synchronous removal callback.
//
// Design
//
//   - Concurrency: the store is split into shards, each guarded by an
//     RWMutex. The shard count defaults to a power-of-two heuristic from
//     CPU parallelism and can be pinned (tests pin it to 1 for
//     deterministic eviction order).
//
//   - Storage: each shard keeps a map[K]*node for lookups and an intrusive
//     MRU↔LRU doubly linked list for recency. Operations are O(1) expected.
//
//   - Policies: eviction ordering is pluggable via the policy package; LRU
//     is the default and 2Q is provided for traversal-heavy workloads.
//
//   - Removal callback: Options.OnRemoval(k, v, cause) fires for every
//     entry that leaves the store, with cause Capacity (evicted under
//     pressure), Replaced (overwritten by Set), or Explicit (Remove or
//     PurgeAll). The callback runs inline, under the shard lock, before
//     the triggering operation returns. Callers that react to removals
//     (the vertex cache rescuing dirty vertices) rely on that atomicity:
//     a deferred callback could observe flags that changed after the
//     removal it reacts to. Keep callbacks short and never call back into
//     the store from one.
//
//   - GetOrCompute coalesces concurrent first-population of a key through
//     singleflight: the compute function runs once and every concurrent
//     caller receives the same resulting value.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals;
//     NoopMetrics is the default. Stats() returns an aggregate snapshot of
//     the per-shard counters.
package store
