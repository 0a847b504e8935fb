// Command bench drives a synthetic transaction workload against the
// vertex cache and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/graphmem/vertexcache"
	"github.com/graphmem/vertexcache/metrics/prom"
	"github.com/graphmem/vertexcache/policy"
	"github.com/graphmem/vertexcache/policy/twoq"
)

// benchVertex is a synthetic vertex whose flags flip mid-flight, like a
// real vertex being mutated while cached.
type benchVertex struct {
	created   atomic.Bool
	modified  atomic.Bool
	removed   atomic.Bool
	addedRels atomic.Bool
	txOpen    atomic.Bool
}

func (v *benchVertex) IsNew() bool             { return v.created.Load() }
func (v *benchVertex) IsModified() bool        { return v.modified.Load() }
func (v *benchVertex) IsRemoved() bool         { return v.removed.Load() }
func (v *benchVertex) HasAddedRelations() bool { return v.addedRels.Load() }
func (v *benchVertex) IsTransactionOpen() bool { return v.txOpen.Load() }

func main() {
	var (
		maxSize  = flag.Int("cap", 100_000, "bounded tier capacity (entries)")
		shards   = flag.Int("shards", 0, "shard count (0=auto)")
		polName  = flag.String("policy", "lru", "eviction policy: lru | 2q")
		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")
		dirtyPct = flag.Int("dirty", 5, "percentage of writes that dirty the vertex")
		keys     = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS    = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV    = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (empty = disabled)")
		metricsAddr = flag.String("http", "", "serve Prometheus metrics at addr (empty = disabled)")
	)
	flag.Parse()

	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	opt := vertexcache.Options{
		MaxSize: *maxSize,
		Shards:  *shards,
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})),
	}

	if *metricsAddr != "" {
		opt.Metrics = prom.New(nil, "vertexcache", "bench", nil)
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Printf("metrics: serving at %s", *metricsAddr)
			log.Println(http.ListenAndServe(*metricsAddr, nil))
		}()
	}

	var pol policy.Policy[vertexcache.VertexID, vertexcache.Vertex]
	switch *polName {
	case "lru":
		// default, leave nil
	case "2q":
		shardCount := *shards
		if shardCount <= 0 {
			shardCount = 2 * runtime.GOMAXPROCS(0)
		}
		perShard := *maxSize / shardCount
		if perShard < 4 {
			perShard = 4
		}
		pol = twoq.New[vertexcache.VertexID, vertexcache.Vertex](perShard/4, perShard/2)
	default:
		log.Fatalf("unknown policy %q", *polName)
	}
	opt.Policy = pol

	cache := vertexcache.New(opt)

	load := func(_ context.Context, id vertexcache.VertexID) (vertexcache.Vertex, error) {
		v := &benchVertex{}
		v.txOpen.Store(true)
		return v, nil
	}

	var reads, writes, dirtied, total uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(*workers)
	for w := 0; w < *workers; w++ {
		go func(id int) {
			defer wg.Done()

			// Per-worker RNG and Zipf: rand.Rand is not goroutine-safe.
			r := rand.New(rand.NewSource(*seed + int64(id)*9973))
			zipf := rand.NewZipf(r, *zipfS, *zipfV, uint64(*keys-1))
			nextID := func() vertexcache.VertexID {
				return vertexcache.VertexID(zipf.Uint64() + 1)
			}

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddUint64(&total, 1)
				vid := nextID()
				if int(r.Int31n(100)) < *readPct {
					atomic.AddUint64(&reads, 1)
					v, err := cache.Get(context.Background(), vid, load)
					if err != nil {
						log.Fatal(err)
					}
					// Some reads mutate what they fetched.
					if int(r.Int31n(100)) < *dirtyPct {
						v.(*benchVertex).modified.Store(true)
						atomic.AddUint64(&dirtied, 1)
					}
				} else {
					atomic.AddUint64(&writes, 1)
					v := &benchVertex{}
					v.txOpen.Store(true)
					if int(r.Int31n(100)) < *dirtyPct {
						v.created.Store(true)
					}
					if err := cache.Add(v, vid); err != nil {
						log.Fatal(err)
					}
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	ops := atomic.LoadUint64(&total)
	fmt.Printf("policy=%s cap=%d shards=%d workers=%d keys=%d dur=%v seed=%d\n",
		*polName, *maxSize, *shards, *workers, *keys, elapsed, *seed)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d  dirtied=%d\n",
		ops, float64(ops)/elapsed.Seconds(),
		atomic.LoadUint64(&reads), atomic.LoadUint64(&writes), atomic.LoadUint64(&dirtied))
	fmt.Printf("pending-new=%d\n", len(cache.GetAllNew()))

	cache.Close() // statistics land on the debug logger
}
