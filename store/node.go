package store

// node is an intrusive doubly linked list element owned by one shard.
type node[K comparable, V any] struct {
	key K
	val V

	// Recency links: head is MRU, tail is LRU.
	prev *node[K, V]
	next *node[K, V]
}

// Key implements policy.Node.
func (n *node[K, V]) Key() K { return n.key }

// Value implements policy.Node. Dereference only under the shard lock.
func (n *node[K, V]) Value() *V { return &n.val }
