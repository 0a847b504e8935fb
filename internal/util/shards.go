package util

import "runtime"

// DefaultShardCount picks a shard count from CPU parallelism:
// nextPow2(2*GOMAXPROCS) clamped to [1..256]. Enough to spread lock
// contention from parallel traversals without bloating per-shard maps.
func DefaultShardCount() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n := int(NextPow2(uint64(2 * p)))
	if n > 256 {
		n = 256
	}
	return n
}

// ShardIndex maps a 64-bit hash onto one of n shards. Power-of-two shard
// counts take the mask fast path; anything else falls back to modulo.
func ShardIndex(hash uint64, n int) int {
	if n <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(n)) {
		return int(hash & uint64(n-1))
	}
	return int(hash % uint64(n))
}
