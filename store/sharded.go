package store

import (
	"context"

	"github.com/graphmem/vertexcache/internal/singleflight"
	"github.com/graphmem/vertexcache/internal/util"
	"github.com/graphmem/vertexcache/policy/lru"
)

// sharded is the Store implementation: a fixed set of independently
// locked shards plus a singleflight group for GetOrCompute.
type sharded[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint64
	sf     singleflight.Group[K, V]
}

// New constructs a Store. It panics if Capacity is not positive: a
// zero-capacity bounded tier is a programming error, not a runtime
// condition.
func New[K comparable, V any](opt Options[K, V]) Store[K, V] {
	if opt.Capacity <= 0 {
		panic("store: Capacity must be > 0")
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Policy == nil {
		opt.Policy = lru.New[K, V]()
	}
	if opt.Hash == nil {
		opt.Hash = util.Sum64[K]
	}

	n := opt.Shards
	if n <= 0 {
		n = util.DefaultShardCount()
	} else {
		n = int(util.NextPow2(uint64(n)))
	}

	perShard := (opt.Capacity + n - 1) / n
	shards := make([]*shard[K, V], n)
	for i := range shards {
		shards[i] = newShard(perShard, opt)
	}
	return &sharded[K, V]{shards: shards, hash: opt.Hash}
}

func (s *sharded[K, V]) shardFor(k K) *shard[K, V] {
	return s.shards[util.ShardIndex(s.hash(k), len(s.shards))]
}

func (s *sharded[K, V]) Get(k K) (V, bool)  { return s.shardFor(k).get(k) }
func (s *sharded[K, V]) Peek(k K) (V, bool) { return s.shardFor(k).peek(k) }
func (s *sharded[K, V]) Contains(k K) bool  { _, ok := s.shardFor(k).peek(k); return ok }
func (s *sharded[K, V]) Set(k K, v V)       { s.shardFor(k).set(k, v) }
func (s *sharded[K, V]) Remove(k K) bool    { return s.shardFor(k).remove(k) }

func (s *sharded[K, V]) GetOrCompute(ctx context.Context, k K, compute func() (V, error)) (V, error) {
	if v, ok := s.Get(k); ok {
		return v, nil
	}
	return s.sf.Do(ctx, k, func() (V, error) {
		// Re-check inside the flight: a previous leader may have stored
		// the value between our miss and becoming leader.
		if v, ok := s.Get(k); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			var zero V
			return zero, err
		}
		s.Set(k, v)
		return v, nil
	})
}

func (s *sharded[K, V]) PurgeAll() {
	for _, sh := range s.shards {
		sh.purge()
	}
}

func (s *sharded[K, V]) Len() int {
	total := 0
	for _, sh := range s.shards {
		total += sh.resident()
	}
	return total
}

func (s *sharded[K, V]) Stats() Stats {
	var st Stats
	for _, sh := range s.shards {
		st.Hits += sh.hits.Load()
		st.Misses += sh.misses.Load()
		st.Evictions += sh.evicts.Load()
		st.Entries += sh.resident()
	}
	return st
}
