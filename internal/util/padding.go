package util

import (
	"sync/atomic"
	"unsafe"
)

// CacheLineSize is a practical default for current CPUs; the runtime's own
// constant is unexported.
const CacheLineSize = 64

// CacheLinePad separates groups of hot fields onto distinct cache lines to
// avoid false sharing between shards.
type CacheLinePad struct{ _ [CacheLineSize]byte }

// PaddedInt64 is an atomic int64 occupying exactly one cache line.
type PaddedInt64 struct {
	atomic.Int64
	_ [CacheLineSize - 8]byte
}

// PaddedUint64 is the uint64 counterpart.
type PaddedUint64 struct {
	atomic.Uint64
	_ [CacheLineSize - 8]byte
}

// Size checks: each padded counter must be exactly one cache line.
var (
	_ [CacheLineSize - int(unsafe.Sizeof(PaddedInt64{}))]byte
	_ [CacheLineSize - int(unsafe.Sizeof(PaddedUint64{}))]byte
)
