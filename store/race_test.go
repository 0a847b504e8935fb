package store

import (
	"context"
	"math/rand"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/graphmem/vertexcache/policy/twoq"
)

// A mixed concurrent workload of Set/Get/Peek/Remove/GetOrCompute over a
// shared keyspace. Should pass under -race with no detector reports.
func TestRace_MixedWorkload(t *testing.T) {
	s := New(Options[string, int]{
		Capacity: 4_096,
		Shards:   32,
		OnRemoval: func(string, int, RemovalCause) {
			// Exercise the callback path under contention too.
		},
	})

	workers := 4 * runtime.GOMAXPROCS(0)
	const keyspace = 20_000
	deadline := time.Now().Add(2 * time.Second)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)*7919))
			for time.Now().Before(deadline) {
				k := "k:" + strconv.Itoa(r.Intn(keyspace))
				switch r.Intn(100) {
				case 0, 1, 2, 3, 4:
					s.Remove(k)
				case 5, 6, 7, 8, 9:
					_, _ = s.GetOrCompute(context.Background(), k, func() (int, error) {
						return len(k), nil
					})
				case 10, 11, 12, 13, 14:
					s.Peek(k)
				case 15, 16, 17, 18, 19, 20, 21, 22, 23, 24:
					s.Set(k, len(k))
				default:
					s.Get(k)
				}
			}
		}(w)
	}
	wg.Wait()
}

// The same workload under the 2Q policy, which keeps extra per-shard
// state (probation and ghost lists) that must stay consistent under the
// shard lock.
func TestRace_TwoQPolicy(t *testing.T) {
	s := New(Options[string, int]{
		Capacity: 1_024,
		Shards:   8,
		Policy:   twoq.New[string, int](32, 64),
	})

	workers := 2 * runtime.GOMAXPROCS(0)
	const keyspace = 10_000
	deadline := time.Now().Add(1 * time.Second)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(id)*104729 + 17))
			for time.Now().Before(deadline) {
				k := "k:" + strconv.Itoa(r.Intn(keyspace))
				if r.Intn(100) < 30 {
					s.Set(k, 1)
				} else {
					s.Get(k)
				}
			}
		}(w)
	}
	wg.Wait()
}
