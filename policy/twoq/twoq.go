// Package twoq implements the 2Q eviction policy.
//
// A long graph traversal touches a stream of vertices once and never
// again; under plain LRU that stream flushes the whole cache. 2Q admits
// first-time entries into a small probation queue (A1in) and only keeps a
// vertex long-term once it proves reuse. Keys recently dropped from
// probation are remembered in a ghost list (A1out, keys only) and get a
// second chance: re-admission bypasses probation.
package twoq

import (
	"container/list"

	"github.com/graphmem/vertexcache/policy"
)

type factory[K comparable, V any] struct {
	probation int
	ghosts    int
}

// New returns a 2Q policy. probation is the A1in capacity and ghosts the
// A1out capacity, both per shard. Common sizing: probation ≈ 25% of the
// shard capacity, ghosts ≈ 50–100%.
func New[K comparable, V any](probation, ghosts int) policy.Policy[K, V] {
	if probation < 1 {
		probation = 1
	}
	if ghosts < 1 {
		ghosts = 1
	}
	return factory[K, V]{probation: probation, ghosts: ghosts}
}

func (f factory[K, V]) ForShard(h policy.Hooks[K, V]) policy.ShardPolicy[K, V] {
	return &twoQ[K, V]{
		h:         h,
		probation: f.probation,
		ghosts:    f.ghosts,
		inList:    list.New(),
		inIdx:     make(map[policy.Node[K, V]]*list.Element),
		ghostList: list.New(),
		ghostIdx:  make(map[K]*list.Element),
	}
}

// twoQ state. All methods run under the shard lock.
//
// Resident nodes are either in probation (tracked by inList/inIdx) or
// mature (everything else; ordering lives in the shard's recency list).
type twoQ[K comparable, V any] struct {
	h policy.Hooks[K, V]

	probation int
	ghosts    int

	inList *list.List                          // probation, MRU at Front
	inIdx  map[policy.Node[K, V]]*list.Element // node -> probation element

	ghostList *list.List          // evicted probation keys, MRU at Front
	ghostIdx  map[K]*list.Element // key -> ghost element
}

func (q *twoQ[K, V]) Admit(n policy.Node[K, V]) policy.Node[K, V] {
	k := n.Key()
	if el, ok := q.ghostIdx[k]; ok {
		// Seen recently: skip probation, admit straight to mature.
		q.ghostList.Remove(el)
		delete(q.ghostIdx, k)
		q.h.PushFront(n)
		return nil
	}

	q.h.PushFront(n)
	q.inIdx[n] = q.inList.PushFront(n)

	if q.inList.Len() > q.probation {
		if tail := q.inList.Back(); tail != nil {
			return tail.Value.(policy.Node[K, V])
		}
	}
	return nil
}

// Touch on a probation node graduates it to mature; either way the node
// moves to MRU in the shard list.
func (q *twoQ[K, V]) Touch(n policy.Node[K, V]) {
	if el, ok := q.inIdx[n]; ok {
		q.inList.Remove(el)
		delete(q.inIdx, n)
	}
	q.h.MoveToFront(n)
}

// Forget records a probation departure as a ghost. Mature departures
// leave no trace.
func (q *twoQ[K, V]) Forget(n policy.Node[K, V]) {
	el, ok := q.inIdx[n]
	if !ok {
		return
	}
	q.inList.Remove(el)
	delete(q.inIdx, n)

	k := n.Key()
	if old := q.ghostIdx[k]; old != nil {
		q.ghostList.Remove(old)
	}
	q.ghostIdx[k] = q.ghostList.PushFront(k)

	for q.ghostList.Len() > q.ghosts {
		tail := q.ghostList.Back()
		if tail == nil {
			break
		}
		delete(q.ghostIdx, tail.Value.(K))
		q.ghostList.Remove(tail)
	}
}
