package vertexcache

import "sync"

// overlay is the unbounded tier: it holds exactly the vertices that must
// not be lost before the transaction ends, keyed by id. No eviction ever
// happens here; growth is bounded by the number of distinct dirty
// vertices in one transaction, which is assumed small next to the total
// touched.
type overlay struct {
	mu sync.RWMutex
	m  map[VertexID]Vertex
}

func newOverlay(sizeHint int) *overlay {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &overlay{m: make(map[VertexID]Vertex, sizeHint)}
}

func (o *overlay) get(id VertexID) (Vertex, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.m[id]
	return v, ok
}

func (o *overlay) put(id VertexID, v Vertex) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.m[id] = v
}

// putIfAbsent keeps the first instance stored for an id. The eviction
// rescue uses it so a vertex re-added concurrently with its own eviction
// is not clobbered by the stale evicted copy.
func (o *overlay) putIfAbsent(id VertexID, v Vertex) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.m[id]; !ok {
		o.m[id] = v
	}
}

func (o *overlay) contains(id VertexID) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.m[id]
	return ok
}

func (o *overlay) size() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.m)
}

// values returns a fresh snapshot; the map can keep changing underneath.
func (o *overlay) values() []Vertex {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]Vertex, 0, len(o.m))
	for _, v := range o.m {
		out = append(out, v)
	}
	return out
}

func (o *overlay) clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.m = make(map[VertexID]Vertex)
}
