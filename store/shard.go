package store

import (
	"sync"

	"github.com/graphmem/vertexcache/internal/util"
	"github.com/graphmem/vertexcache/policy"
)

// shard is one partition of the store: its own lock, map, and intrusive
// recency list (head=MRU, tail=LRU).
type shard[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu   sync.RWMutex
	m    map[K]*node[K, V]
	head *node[K, V]
	tail *node[K, V]
	len  int
	cap  int

	pol policy.ShardPolicy[K, V]
	opt Options[K, V]

	// ---- hot counters, one cache line each ----
	_      util.CacheLinePad
	hits   util.PaddedInt64
	misses util.PaddedInt64
	evicts util.PaddedUint64
}

func newShard[K comparable, V any](capacity int, opt Options[K, V]) *shard[K, V] {
	s := &shard[K, V]{
		m:   make(map[K]*node[K, V], capacity),
		cap: capacity,
		opt: opt,
	}
	s.pol = opt.Policy.ForShard(shardHooks[K, V]{s: s})
	return s
}

// get returns the value for k, promoting the entry per the policy.
func (s *shard[K, V]) get(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[k]
	if !ok {
		s.misses.Add(1)
		s.opt.Metrics.Miss()
		var zero V
		return zero, false
	}
	s.pol.Touch(n)
	s.hits.Add(1)
	s.opt.Metrics.Hit()
	return n.val, true
}

// peek reads without promotion and without counter updates.
func (s *shard[K, V]) peek(k K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.m[k]
	if !ok {
		var zero V
		return zero, false
	}
	return n.val, true
}

// set inserts or overwrites. The overwrite path releases the previous
// value through the removal callback (CauseReplaced) before the new value
// becomes visible outside the lock; the insert path may evict an entry to
// stay within capacity.
func (s *shard[K, V]) set(k K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.m[k]; ok {
		old := n.val
		n.val = v
		s.pol.Touch(n)
		s.opt.Metrics.Evict(CauseReplaced)
		if cb := s.opt.OnRemoval; cb != nil {
			cb(k, old, CauseReplaced)
		}
		return
	}

	n := &node[K, V]{key: k, val: v}
	s.m[k] = n
	if victim := s.pol.Admit(n); victim != nil {
		s.evict(victim.(*node[K, V]))
	}
	for s.len > s.cap {
		tail := s.tail
		if tail == nil {
			break
		}
		s.evict(tail)
	}
	s.opt.Metrics.Size(s.len)
}

// remove deletes k if present, reporting the departure as explicit.
func (s *shard[K, V]) remove(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[k]
	if !ok {
		return false
	}
	s.drop(n, CauseExplicit)
	s.opt.Metrics.Size(s.len)
	return true
}

// purge drops every resident entry with CauseExplicit.
func (s *shard[K, V]) purge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.head != nil {
		s.drop(s.head, CauseExplicit)
	}
	s.opt.Metrics.Size(s.len)
}

func (s *shard[K, V]) resident() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.len
}

// -------------------- internals (mu held) --------------------

// evict removes a capacity victim and counts it as an eviction.
func (s *shard[K, V]) evict(n *node[K, V]) {
	s.evicts.Add(1)
	s.drop(n, CauseCapacity)
}

// drop detaches n, deletes it from the map, and runs the removal
// notification inline. The callback sees the store state exactly as the
// removal left it; nothing else can interleave while mu is held.
func (s *shard[K, V]) drop(n *node[K, V], cause RemovalCause) {
	s.pol.Forget(n)
	s.unlink(n)
	delete(s.m, n.key)
	s.opt.Metrics.Evict(cause)
	if cb := s.opt.OnRemoval; cb != nil {
		cb(n.key, n.val, cause)
	}
}

func (s *shard[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
	s.len++
}

func (s *shard[K, V]) moveToFront(n *node[K, V]) {
	if n == s.head {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

func (s *shard[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.head == n {
		s.head = n.next
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
	s.len--
}

// -------------------- policy hooks --------------------

// shardHooks adapts the shard's list operations to policy.Hooks. The
// shard owns the map; hooks touch only the list.
type shardHooks[K comparable, V any] struct{ s *shard[K, V] }

func (h shardHooks[K, V]) PushFront(n policy.Node[K, V])   { h.s.pushFront(n.(*node[K, V])) }
func (h shardHooks[K, V]) MoveToFront(n policy.Node[K, V]) { h.s.moveToFront(n.(*node[K, V])) }
func (h shardHooks[K, V]) Unlink(n policy.Node[K, V])      { h.s.unlink(n.(*node[K, V])) }
func (h shardHooks[K, V]) Back() policy.Node[K, V] {
	if h.s.tail == nil {
		return nil
	}
	return h.s.tail
}
func (h shardHooks[K, V]) Len() int { return h.s.len }
