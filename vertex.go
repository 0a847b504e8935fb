package vertexcache

import (
	"context"
	"errors"
)

// VertexID identifies a vertex within the owning transaction's storage
// namespace. Zero is reserved and never names a real vertex.
type VertexID int64

// Vertex is the in-memory handle for one graph vertex as seen by its
// owning transaction. The cache never mutates a vertex; it only reads
// these predicates to decide what must stay resident.
type Vertex interface {
	// IsNew reports that the vertex was created in this transaction and
	// has not been persisted yet.
	IsNew() bool
	// IsModified reports pending attribute or edge changes.
	IsModified() bool
	// IsRemoved reports that the vertex is marked for deletion.
	IsRemoved() bool
	// HasAddedRelations reports pending edge insertions.
	HasAddedRelations() bool
	// IsTransactionOpen reports that the owning transaction has not yet
	// committed, rolled back, or closed.
	IsTransactionOpen() bool
}

// Loader fetches a vertex's persisted state from durable storage. It may
// block on I/O; cancellation and timeouts are the loader's concern, via
// ctx. It must return a non-nil vertex or an error.
type Loader func(ctx context.Context, id VertexID) (Vertex, error)

var (
	// ErrNotFound is returned by Get when the loader reports no such
	// vertex by returning a nil vertex with a nil error. Loaders may also
	// return it directly; loader errors are propagated unwrapped.
	ErrNotFound = errors.New("vertexcache: vertex not found")

	// ErrNilVertex is returned by Add for a nil vertex.
	ErrNilVertex = errors.New("vertexcache: nil vertex")

	// ErrInvalidID is returned by Add for the reserved id 0.
	ErrInvalidID = errors.New("vertexcache: vertex id 0 is reserved")
)
