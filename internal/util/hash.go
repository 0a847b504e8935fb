// Package util holds internal helpers for sharding: key hashing,
// power-of-two math, and cache-line padded counters.
package util

import "fmt"

// Sum64 hashes a key with 64-bit FNV-1a for shard selection.
// The store is keyed by 64-bit vertex identifiers in production and by
// strings in tests, so only integer-like keys, strings, byte slices and
// fmt.Stringer are supported. Anything else panics: silently degrading to
// a constant hash would funnel every key into one shard.
func Sum64[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case int64:
		return sum64Uint(uint64(v))
	case uint64:
		return sum64Uint(v)
	case int:
		return sum64Uint(uint64(v))
	case int32:
		return sum64Uint(uint64(uint32(v)))
	case uint32:
		return sum64Uint(uint64(v))
	case string:
		return sum64Bytes([]byte(v))
	case []byte:
		return sum64Bytes(v)
	case fmt.Stringer:
		return sum64Bytes([]byte(v.String()))
	default:
		panic(fmt.Sprintf("util.Sum64: unsupported key type %T", k))
	}
}

const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

func sum64Bytes(b []byte) uint64 {
	h := uint64(fnvOffset64)
	for _, c := range b {
		h ^= uint64(c)
		h *= fnvPrime64
	}
	return h
}

// sum64Uint hashes the eight little-endian bytes of u without allocating.
func sum64Uint(u uint64) uint64 {
	h := uint64(fnvOffset64)
	for i := 0; i < 8; i++ {
		h ^= u & 0xff
		h *= fnvPrime64
		u >>= 8
	}
	return h
}
