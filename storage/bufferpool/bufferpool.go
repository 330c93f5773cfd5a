// Package bufferpool implements the pinning frame cache that sits
// between the transaction manager and the pager: FIX/UNFIX/USE/FORCE,
// no eviction. Grounded on DaemonDB's storage_engine/bufferpool, with
// its LRU eviction removed: a frame with a positive pin count must
// never be evicted or overwritten from disk, and this design never
// evicts at all.
package bufferpool

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"

	"minisgbd/storage/errs"
	"minisgbd/storage/pager"
)

// New creates an empty pool backed by p.
func New(p *pager.Pager) *Pool {
	cache, err := ristretto.NewCache(&ristretto.Config[int64, struct{}]{
		NumCounters: 1e4,
		MaxCost:     1 << 16,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		// A misconfigured NumCounters/MaxCost is a programming error,
		// not a runtime I/O failure; the pool still works without the
		// telemetry sketch.
		cache = nil
	}

	return &Pool{
		frames: make(map[int64]*Frame),
		pager:  p,
		hits:   cache,
	}
}

// FIX loads page pageIndex into the pool if absent and increments its
// pin count. The returned Frame is shared with every other holder of a
// pin on the same page; callers must not retain it across UNFIX.
func (pl *Pool) FIX(pageIndex int64) (*Frame, error) {
	if pageIndex < 0 {
		return nil, errs.InvalidArgf("negative page index %d", pageIndex)
	}

	pl.mu.Lock()
	defer pl.mu.Unlock()

	f, ok := pl.frames[pageIndex]
	if !ok {
		data, err := pl.pager.ReadPage(pageIndex)
		if err != nil {
			return nil, err
		}
		f = &Frame{Data: data}
		pl.frames[pageIndex] = f
		fmt.Printf("[bufferpool] MISS pageIndex=%d\n", pageIndex)
		if pl.hits != nil {
			pl.hits.Set(pageIndex, struct{}{}, 1)
		}
	} else if pl.hits != nil {
		pl.hits.Get(pageIndex)
	}

	f.PinCount++
	return f, nil
}

// UNFIX decrements the pin count for pageIndex. It is a no-op if the
// frame is not present or already unpinned.
func (pl *Pool) UNFIX(pageIndex int64) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if f, ok := pl.frames[pageIndex]; ok && f.PinCount > 0 {
		f.PinCount--
	}
}

// USE marks pageIndex's frame dirty. FIX does not imply mutation —
// callers must call USE explicitly after writing into the frame.
func (pl *Pool) USE(pageIndex int64) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if f, ok := pl.frames[pageIndex]; ok {
		f.Dirty = true
	}
}

// FORCE writes pageIndex's frame to disk if dirty and clears dirty.
func (pl *Pool) FORCE(pageIndex int64) error {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.forceLocked(pageIndex)
}

func (pl *Pool) forceLocked(pageIndex int64) error {
	f, ok := pl.frames[pageIndex]
	if !ok || !f.Dirty {
		return nil
	}
	if err := pl.pager.WritePage(pageIndex, f.Data); err != nil {
		return err
	}
	f.Dirty = false
	return nil
}

// Clear discards every frame in the pool, simulating loss of volatile
// memory (used by Store.Crash and at the end of Store.Recover).
func (pl *Pool) Clear() {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	pl.frames = make(map[int64]*Frame)
}

// PoolIter calls fn for every (pageIndex, frame) pair currently held,
// for checkpoint and commit sweeps. Iteration order is unspecified.
func (pl *Pool) PoolIter(fn func(pageIndex int64, f *Frame)) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	for idx, f := range pl.frames {
		fn(idx, f)
	}
}

// FlushDirty writes every dirty frame to disk and clears its dirty
// flag, used by checkpoint.
func (pl *Pool) FlushDirty() error {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	dirty := 0
	for idx := range pl.frames {
		if pl.frames[idx].Dirty {
			dirty++
		}
		if err := pl.forceLocked(idx); err != nil {
			return err
		}
	}
	fmt.Printf("[bufferpool] FLUSH frames=%d dirty=%d\n", len(pl.frames), dirty)
	return nil
}

// Stats reports current occupancy and the approximate telemetry hit
// ratio. Neither figure is consulted by any correctness-relevant path.
func (pl *Pool) Stats() Stats {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	var s Stats
	s.FrameCount = len(pl.frames)
	for _, f := range pl.frames {
		if f.Dirty {
			s.DirtyCount++
		}
		if f.PinCount > 0 {
			s.PinnedCount++
		}
	}
	if pl.hits != nil {
		s.ApproxHitRatio = pl.hits.Metrics.Ratio()
	}
	return s
}
