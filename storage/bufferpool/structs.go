package bufferpool

import (
	"sync"

	"github.com/dgraph-io/ristretto/v2"

	"minisgbd/storage/pager"
)

// Frame is the in-memory mirror of one on-disk page, plus the
// metadata the transaction manager and recovery need: whether it has
// been modified since the last flush, how many callers currently hold
// a pin on it, and whether the currently active transaction is the
// one that modified it.
type Frame struct {
	Data          []byte
	Dirty         bool
	PinCount      int
	Transactional bool
}

// Pool holds every frame fetched since the pager was opened. There is
// no eviction: a frame lives until Clear() discards the whole pool
// (process shutdown or a simulated crash). FIX/UNFIX calls must be
// balanced by every caller; a pinned frame (PinCount > 0) must never
// be overwritten from disk.
type Pool struct {
	mu     sync.Mutex
	frames map[int64]*Frame
	pager  *pager.Pager

	// hits is an approximate, non-authoritative frequency sketch of
	// page access for observability only (Stats().ApproxHitRatio). It
	// never influences which frames live in the pool or get evicted —
	// this pool never evicts.
	hits *ristretto.Cache[int64, struct{}]
}

// Stats summarizes buffer pool occupancy for introspection.
type Stats struct {
	FrameCount     int
	DirtyCount     int
	PinnedCount    int
	ApproxHitRatio float64
}
