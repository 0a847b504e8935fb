package vertexcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// fakeVertex is a Vertex whose flags can be flipped concurrently, the way
// a real transaction dirties a vertex from another goroutine.
type fakeVertex struct {
	fresh     atomic.Bool
	modified  atomic.Bool
	removed   atomic.Bool
	addedRels atomic.Bool
	txOpen    atomic.Bool
}

func (v *fakeVertex) IsNew() bool             { return v.fresh.Load() }
func (v *fakeVertex) IsModified() bool        { return v.modified.Load() }
func (v *fakeVertex) IsRemoved() bool         { return v.removed.Load() }
func (v *fakeVertex) HasAddedRelations() bool { return v.addedRels.Load() }
func (v *fakeVertex) IsTransactionOpen() bool { return v.txOpen.Load() }

// openVertex returns a clean vertex inside an open transaction.
func openVertex() *fakeVertex {
	v := &fakeVertex{}
	v.txOpen.Store(true)
	return v
}

// failingLoader fails the test if the cache falls back to storage.
func failingLoader(t *testing.T) Loader {
	return func(context.Context, VertexID) (Vertex, error) {
		t.Helper()
		t.Error("loader must not be invoked")
		return nil, errors.New("unexpected load")
	}
}

func TestGet_CoalescesConcurrentFirstLoads(t *testing.T) {
	t.Parallel()

	c := New(Options{MaxSize: 128})
	defer c.Close()

	var calls atomic.Int64
	load := func(_ context.Context, id VertexID) (Vertex, error) {
		calls.Add(1)
		time.Sleep(5 * time.Millisecond) // simulate storage I/O
		return openVertex(), nil
	}

	const n = 64
	results := make([]Vertex, n)
	gate := make(chan struct{})
	var eg errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			<-gate
			v, err := c.Get(context.Background(), 42, load)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	close(gate)
	require.NoError(t, eg.Wait())

	require.EqualValues(t, 1, calls.Load(), "loader must run exactly once")
	for i := 1; i < n; i++ {
		require.Same(t, results[0], results[i], "every caller must see one instance")
	}
}

func TestGet_DirtyVertexSurvivesEviction(t *testing.T) {
	t.Parallel()

	c := New(Options{MaxSize: 1, Shards: 1})
	defer c.Close()

	a := openVertex()
	a.modified.Store(true)
	require.NoError(t, c.Add(a, 1))

	// Inserting a second vertex pushes a out of the bounded tier; the
	// rescue must catch it because it is modified in an open transaction.
	require.NoError(t, c.Add(openVertex(), 2))

	got, err := c.Get(context.Background(), 1, failingLoader(t))
	require.NoError(t, err)
	require.Same(t, Vertex(a), got, "must return the evicted instance, not a reload")
}

func TestGet_CleanVertexIsReloadedAfterEviction(t *testing.T) {
	t.Parallel()

	c := New(Options{MaxSize: 1, Shards: 1})
	defer c.Close()

	clean := openVertex()
	require.NoError(t, c.Add(clean, 1))
	require.NoError(t, c.Add(openVertex(), 2)) // evicts id 1, no rescue

	require.False(t, c.Contains(1), "clean vertex must be gone from both tiers")

	reloaded := openVertex()
	var calls atomic.Int64
	got, err := c.Get(context.Background(), 1, func(context.Context, VertexID) (Vertex, error) {
		calls.Add(1)
		return reloaded, nil
	})
	require.NoError(t, err)
	require.Same(t, Vertex(reloaded), got)
	require.EqualValues(t, 1, calls.Load())
}

func TestGet_RescuedVertexReturnsToBoundedTier(t *testing.T) {
	t.Parallel()

	c := New(Options{MaxSize: 1, Shards: 1})
	defer c.Close()

	a := openVertex()
	a.removed.Store(true)
	require.NoError(t, c.Add(a, 1))
	require.NoError(t, c.Add(openVertex(), 2))

	// First Get serves id 1 from the volatile tier and replants it.
	got, err := c.Get(context.Background(), 1, failingLoader(t))
	require.NoError(t, err)
	require.Same(t, Vertex(a), got)

	// Second Get must hit the bounded fast path: same instance, no load.
	again, err := c.Get(context.Background(), 1, failingLoader(t))
	require.NoError(t, err)
	require.Same(t, Vertex(a), again)
}

func TestAdd_ProtectsNewAndAddedRelationsOnArrival(t *testing.T) {
	t.Parallel()

	c := New(Options{MaxSize: 1, Shards: 1})
	defer c.Close()

	// Pending edge insertions alone do not trip the eviction rescue
	// (that checks modified/removed); protection must come from Add.
	g := openVertex()
	g.addedRels.Store(true)
	require.NoError(t, c.Add(g, 1))
	require.NoError(t, c.Add(openVertex(), 2)) // evicts g

	got, err := c.Get(context.Background(), 1, failingLoader(t))
	require.NoError(t, err)
	require.Same(t, Vertex(g), got)
}

func TestGetAllNew(t *testing.T) {
	t.Parallel()

	c := New(Options{MaxSize: 16})
	defer c.Close()

	e := openVertex()
	e.fresh.Store(true)
	require.NoError(t, c.Add(e, 5))

	f := openVertex()
	f.modified.Store(true) // dirty but not new
	require.NoError(t, c.Add(f, 6))

	vertices := c.GetAllNew()
	require.Len(t, vertices, 1)
	require.Same(t, Vertex(e), vertices[0])
}

func TestAdd_InvalidArguments(t *testing.T) {
	t.Parallel()

	c := New(Options{MaxSize: 4})
	defer c.Close()

	require.ErrorIs(t, c.Add(nil, 7), ErrNilVertex)
	require.ErrorIs(t, c.Add(openVertex(), 0), ErrInvalidID)
	assert.False(t, c.Contains(0), "failed Add must not leave a partial entry")
}

func TestGet_LoaderErrorsPropagateUnwrapped(t *testing.T) {
	t.Parallel()

	c := New(Options{MaxSize: 4})
	defer c.Close()

	storageErr := errors.New("backend unavailable")
	_, err := c.Get(context.Background(), 9, func(context.Context, VertexID) (Vertex, error) {
		return nil, storageErr
	})
	require.ErrorIs(t, err, storageErr)
	assert.False(t, c.Contains(9), "a failed load must not populate the cache")

	_, err = c.Get(context.Background(), 10, func(context.Context, VertexID) (Vertex, error) {
		return nil, nil // loader breaking its non-nil contract
	})
	require.ErrorIs(t, err, ErrNotFound)
	assert.False(t, c.Contains(10))
}

func TestContains(t *testing.T) {
	t.Parallel()

	c := New(Options{MaxSize: 4})
	v := openVertex()
	require.NoError(t, c.Add(v, 3))
	assert.True(t, c.Contains(3))
	assert.False(t, c.Contains(4))

	c.Close()
	// Read-only lookups on a closed cache are misses, never panics.
	assert.False(t, c.Contains(3))
}

// recordingHandler captures slog output for assertions.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) byLevel(level slog.Level) []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []slog.Record
	for _, r := range h.records {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

func TestClose_DrainsWithoutViolation(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	c := New(Options{MaxSize: 2, Shards: 1, Logger: slog.New(h)})

	dirty := openVertex()
	dirty.modified.Store(true)
	require.NoError(t, c.Add(dirty, 1))
	require.NoError(t, c.Add(openVertex(), 2))
	require.NoError(t, c.Add(openVertex(), 3)) // force churn

	c.Close()

	require.Empty(t, h.byLevel(slog.LevelError),
		"Close drains the volatile tier first, so explicit removals must see it empty")
}

func TestClose_ReportsStatistics(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	c := New(Options{MaxSize: 8, Logger: slog.New(h)})

	require.NoError(t, c.Add(openVertex(), 1))
	_, err := c.Get(context.Background(), 1, failingLoader(t))
	require.NoError(t, err)

	c.Close()

	debug := h.byLevel(slog.LevelDebug)
	require.NotEmpty(t, debug, "close must emit a statistics line at debug level")

	var hits int64 = -1
	debug[len(debug)-1].Attrs(func(a slog.Attr) bool {
		if a.Key == "hits" {
			hits = a.Value.Int64()
		}
		return true
	})
	assert.EqualValues(t, 1, hits)
}

// Every vertex in this workload is modified inside an open transaction,
// so none may be lost no matter how hard the tiny bounded tier churns.
func TestRace_NoDirtyVertexLostUnderPressure(t *testing.T) {
	c := New(Options{MaxSize: 4, Shards: 1})
	defer c.Close()

	const ids = 64
	vertices := make([]*fakeVertex, ids+1)
	for id := 1; id <= ids; id++ {
		vertices[id] = openVertex()
		vertices[id].modified.Store(true)
		require.NoError(t, c.Add(vertices[id], VertexID(id)))
	}

	var eg errgroup.Group
	for w := 0; w < 8; w++ {
		w := w
		eg.Go(func() error {
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(w)))
			for i := 0; i < 2_000; i++ {
				id := VertexID(r.Intn(ids) + 1)
				if r.Intn(2) == 0 {
					if err := c.Add(vertices[id], id); err != nil {
						return err
					}
					continue
				}
				v, err := c.Get(context.Background(), id, func(context.Context, VertexID) (Vertex, error) {
					// Every id was added dirty up front, so reaching the
					// loader means an instance was lost.
					return nil, fmt.Errorf("id %d: dirty instance lost to eviction", id)
				})
				if err != nil {
					return err
				}
				if v != Vertex(vertices[id]) {
					return fmt.Errorf("id %d: got a different instance", id)
				}
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	// After the churn, every instance must still be reachable identically.
	for id := 1; id <= ids; id++ {
		v, err := c.Get(context.Background(), VertexID(id), failingLoader(t))
		require.NoError(t, err)
		require.Same(t, Vertex(vertices[id]), v, "id %d lost its dirty instance", id)
	}
}
