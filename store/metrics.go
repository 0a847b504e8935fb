package store

// Metrics receives store-level observability signals. Implementations
// must be safe for concurrent use; Evict and the removal callback run
// under a shard lock, so keep them cheap.
type Metrics interface {
	Hit()
	Miss()
	Evict(cause RemovalCause)
	Size(entries int)
}

// NoopMetrics is the default Metrics sink. It does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit()               {}
func (NoopMetrics) Miss()              {}
func (NoopMetrics) Evict(RemovalCause) {}
func (NoopMetrics) Size(int)           {}

var _ Metrics = NoopMetrics{}
