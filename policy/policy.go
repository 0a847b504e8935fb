// Package policy defines the pluggable eviction policy contract for the
// bounded vertex store. A policy orders resident entries and, on
// admission, may nominate a victim; the store owns the key→node map and
// performs the actual removal.
package policy

// Node is the minimal view of a resident entry a policy works with: the
// key and a pointer to the value for in-place reads under the shard lock.
type Node[K comparable, V any] interface {
	Key() K
	Value() *V
}

// Hooks are the O(1) list operations a shard exposes to its policy.
// Every hook call happens under the shard lock; hooks manipulate only the
// recency list, never the map.
type Hooks[K comparable, V any] interface {
	// PushFront inserts a newly admitted node at the MRU position.
	PushFront(Node[K, V])
	// MoveToFront promotes a node to MRU.
	MoveToFront(Node[K, V])
	// Unlink detaches a node from the recency list.
	Unlink(Node[K, V])
	// Back returns the current LRU node, or nil when the shard is empty.
	Back() Node[K, V]
	// Len returns the number of resident nodes.
	Len() int
}

// ShardPolicy is a per-shard policy instance bound to that shard's hooks.
// All methods run under the shard lock.
//
//   - Admit places a new node and may return a victim the store must evict
//     (for example the tail of a probation queue).
//   - Touch records a use: a read hit or an overwrite of the value.
//   - Forget tells the policy a node is leaving so it can drop any
//     bookkeeping (ghost lists and the like). The store does the deletion.
type ShardPolicy[K comparable, V any] interface {
	Admit(Node[K, V]) (victim Node[K, V])
	Touch(Node[K, V])
	Forget(Node[K, V])
}

// Policy builds shard-local instances bound to a particular shard's hooks.
type Policy[K comparable, V any] interface {
	ForShard(Hooks[K, V]) ShardPolicy[K, V]
}
