package vertexcache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/graphmem/vertexcache/internal/util"
	"github.com/graphmem/vertexcache/policy"
	"github.com/graphmem/vertexcache/store"
)

// Options configures a transaction vertex cache.
type Options struct {
	// MaxSize is the bounded tier's capacity in entries. Must be > 0.
	MaxSize int

	// InitialVolatileSize pre-sizes the volatile tier's map. It is a
	// hint, not a bound.
	InitialVolatileSize int

	// Shards pins the bounded tier's shard count; 0 picks an automatic
	// power of two. Use 1 for a single global eviction order.
	Shards int

	// Policy orders the bounded tier for eviction. Nil means LRU; twoq
	// resists the scan pollution of long traversals.
	Policy policy.Policy[VertexID, Vertex]

	// Metrics receives the bounded tier's Hit/Miss/Evict/Size signals.
	Metrics store.Metrics

	// Logger receives the close-time statistics line (Debug) and
	// invariant-violation warnings (Error). Nil means slog.Default().
	Logger *slog.Logger
}

// Cache memoizes the vertex instances one transaction has materialized,
// keyed by vertex id. It is two tiers behind one surface: a bounded tier
// that holds read-mostly vertices and evicts under pressure, and an
// unbounded volatile tier that keeps every vertex carrying uncommitted
// state until the transaction ends.
//
// A vertex enters the volatile tier two ways: Add stores it there
// immediately when it arrives new or with added relations, and the
// bounded tier's removal callback rescues it at eviction time if it was
// cached clean and dirtied afterwards. The rescue runs synchronously with
// the eviction, so the decision and the removal are one atomic step.
//
// Each transaction owns exactly one Cache and is the only caller of
// Close. All other methods may be called concurrently.
type Cache struct {
	bounded  store.Store[VertexID, Vertex]
	volatile *overlay
	logger   *slog.Logger
	created  time.Time

	// Serializes Close defensively; the single-owner contract should
	// already prevent concurrent closes.
	closeMu sync.Mutex
}

// New constructs the cache for one transaction. It panics if MaxSize is
// not positive.
func New(opt Options) *Cache {
	if opt.MaxSize <= 0 {
		panic("vertexcache: MaxSize must be > 0")
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{
		volatile: newOverlay(opt.InitialVolatileSize),
		logger:   logger,
		created:  time.Now(),
	}
	c.bounded = store.New(store.Options[VertexID, Vertex]{
		Capacity:  opt.MaxSize,
		Shards:    opt.Shards,
		Policy:    opt.Policy,
		Metrics:   opt.Metrics,
		Hash:      func(id VertexID) uint64 { return util.Sum64(int64(id)) },
		OnRemoval: c.onRemoval,
	})
	return c
}

// onRemoval reacts to every departure from the bounded tier, inside the
// removing shard's lock.
func (c *Cache) onRemoval(id VertexID, v Vertex, cause store.RemovalCause) {
	if cause == store.CauseExplicit {
		// Entries leave explicitly only while Close purges the bounded
		// tier, and Close drains the volatile tier first. Anything still
		// in it means the owner closed the cache before flushing
		// uncommitted state; there is no way to recover the writes at
		// this point, so record it loudly and keep going.
		if n := c.volatile.size(); n != 0 {
			c.logger.Error("vertex cache purged while uncommitted vertices remain",
				slog.Int("remaining", n),
				slog.Int64("vertex_id", int64(id)))
		}
		return
	}
	if mustKeep(v) {
		c.volatile.putIfAbsent(id, v)
	}
}

// mustKeep decides rescue-or-discard for a vertex leaving the bounded
// tier under pressure or by overwrite. It is deliberately a pure function
// of the vertex's flags so the callback stays testable apart from the
// store.
//
// IsNew and HasAddedRelations are not consulted here: Add already placed
// such vertices in the volatile tier when they arrived. Eviction-time
// rescue exists for the vertex that was cached clean and dirtied later.
// A vertex whose IsNew flipped true only after a clean Add would slip
// through; the known predicates offer no such transition.
func mustKeep(v Vertex) bool {
	return v.IsTransactionOpen() && (v.IsModified() || v.IsRemoved())
}

// Contains reports whether id is resident in either tier. It has no side
// effects: no promotion, no counters, no loading.
func (c *Cache) Contains(id VertexID) bool {
	return c.bounded.Contains(id) || c.volatile.contains(id)
}

// Get returns the vertex for id, consulting the bounded tier, then the
// volatile tier, then load. The loaded (or volatile-tier) instance is
// planted in the bounded tier so later reads take the fast path.
//
// Concurrent first-time Gets for the same id coalesce: load runs once and
// every caller receives the same instance. A load error is propagated
// unwrapped and nothing is cached.
func (c *Cache) Get(ctx context.Context, id VertexID, load Loader) (Vertex, error) {
	if v, ok := c.bounded.Get(id); ok {
		return v, nil
	}
	return c.bounded.GetOrCompute(ctx, id, func() (Vertex, error) {
		if v, ok := c.volatile.get(id); ok {
			return v, nil
		}
		v, err := load(ctx, id)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, ErrNotFound
		}
		return v, nil
	})
}

// Add puts a fetched-or-created vertex into the cache, overwriting any
// previous instance for id. A vertex arriving new or with added relations
// is also stored in the volatile tier immediately; dirtiness acquired
// after Add is caught by the eviction-time rescue instead.
//
// The insert may evict another entry before Add returns, running the
// rescue for it synchronously.
func (c *Cache) Add(v Vertex, id VertexID) error {
	if v == nil {
		return ErrNilVertex
	}
	if id == 0 {
		return ErrInvalidID
	}
	c.bounded.Set(id, v)
	if v.IsNew() || v.HasAddedRelations() {
		c.volatile.put(id, v)
	}
	return nil
}

// GetAllNew returns a snapshot of the volatile-tier vertices whose IsNew
// predicate holds — the set requiring first-time persistence. Order is
// unspecified.
func (c *Cache) GetAllNew() []Vertex {
	all := c.volatile.values()
	vertices := make([]Vertex, 0, len(all))
	for _, v := range all {
		if v.IsNew() {
			vertices = append(vertices, v)
		}
	}
	return vertices
}

// Close releases both tiers. The volatile tier is cleared first so the
// explicit removals from the bounded tier observe it empty. Close is the
// terminal event for the cache; calling it twice, or racing it with other
// operations, is the owner's bug. Lookups on a closed cache merely return
// misses.
func (c *Cache) Close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.logger.Enabled(context.Background(), slog.LevelDebug) {
		st := c.bounded.Stats()
		c.logger.Debug("vertex cache closed",
			slog.Duration("lifespan", time.Since(c.created)),
			slog.Int64("hits", st.Hits),
			slog.Int64("misses", st.Misses),
			slog.Uint64("evictions", st.Evictions),
			slog.Int("entries", st.Entries))
	}
	c.volatile.clear()
	c.bounded.PurgeAll()
}
