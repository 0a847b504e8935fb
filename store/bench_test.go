package store

import (
	"math/rand"
	"sync/atomic"
	"testing"
)

// benchmarkMix runs a read/write mix against a warm store with int64
// keys, the key shape the vertex cache uses in production.
func benchmarkMix(b *testing.B, readsPct int) {
	s := New(Options[int64, int64]{Capacity: 100_000})

	for i := int64(0); i < 50_000; i++ {
		s.Set(i, i)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	const keyMask = (1 << 16) - 1

	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := int64(0)
		for pb.Next() {
			k := i & keyMask
			if r.Intn(100) < readsPct {
				s.Get(k)
			} else {
				s.Set(k, k)
			}
			i++
		}
	})
}

func BenchmarkStore_90r10w(b *testing.B) { benchmarkMix(b, 90) }
func BenchmarkStore_50r50w(b *testing.B) { benchmarkMix(b, 50) }
