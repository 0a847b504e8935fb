// Package lru implements the default least-recently-used eviction policy.
package lru

import "github.com/graphmem/vertexcache/policy"

type factory[K comparable, V any] struct{}

// New returns a Policy that builds per-shard LRU instances.
func New[K comparable, V any]() policy.Policy[K, V] { return factory[K, V]{} }

func (factory[K, V]) ForShard(h policy.Hooks[K, V]) policy.ShardPolicy[K, V] {
	return &lru[K, V]{h: h}
}

// lru is plain move-to-front recency. It never nominates victims itself;
// the shard trims from the tail when over capacity.
type lru[K comparable, V any] struct {
	h policy.Hooks[K, V]
}

func (p *lru[K, V]) Admit(n policy.Node[K, V]) policy.Node[K, V] {
	p.h.PushFront(n)
	return nil
}

func (p *lru[K, V]) Touch(n policy.Node[K, V]) { p.h.MoveToFront(n) }

func (p *lru[K, V]) Forget(policy.Node[K, V]) {}
