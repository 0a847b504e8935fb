// Package vertexcache provides a per-transaction, two-tier cache of graph
// vertex instances.
//
// Within a graph-database transaction, vertices are loaded lazily from
// durable storage and mutated in memory until commit. Re-loading a vertex
// the transaction already materialized is wasted I/O — worse, it would
// fabricate a second instance and discard uncommitted work. This package
// memoizes instances by vertex id with a hard memory bound for clean
// vertices and a zero-loss guarantee for dirty ones:
//
//   - the bounded tier (package store) keeps up to MaxSize entries under
//     a pluggable recency policy and evicts under pressure;
//   - the volatile tier grows as needed and holds every vertex carrying
//     uncommitted state (new, modified, removed, or with pending edge
//     insertions) until the transaction ends.
//
// A vertex that is evicted from the bounded tier while dirty is rescued
// into the volatile tier by the store's removal callback, which runs
// synchronously with the eviction itself. Vertices that arrive already
// dirty are protected at Add time.
//
// Guarantees, for one cache instance (one transaction):
//
//   - a dirty vertex returned by Get or Add is returned again, the same
//     instance, on every later Get for its id while the transaction is
//     open;
//   - concurrent first-time Gets for one id invoke the loader once and
//     converge on a single instance;
//   - clean vertices may be dropped at any time and cost only a re-load.
//
// Construct one Cache per transaction, share it freely across the
// transaction's goroutines, and Close it exactly once when the
// transaction finishes.
package vertexcache
