package bufferpool

import (
	"path/filepath"
	"testing"

	"minisgbd/storage/page"
	"minisgbd/storage/pager"
)

func openTest(t *testing.T) (*Pool, *pager.Pager) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.db")
	p, err := pager.Open(path)
	if err != nil {
		t.Fatalf("pager.Open: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return New(p), p
}

func TestFixLoadsFromPagerOnMiss(t *testing.T) {
	pool, disk := openTest(t)
	want := make([]byte, page.Size)
	copy(want, []byte("on disk"))
	if err := disk.WritePage(0, want); err != nil {
		t.Fatalf("WritePage: %v", err)
	}

	f, err := pool.FIX(0)
	if err != nil {
		t.Fatalf("FIX: %v", err)
	}
	defer pool.UNFIX(0)
	if string(f.Data[:7]) != "on disk" {
		t.Errorf("FIX loaded %q, want %q", f.Data[:7], "on disk")
	}
	if f.PinCount != 1 {
		t.Errorf("PinCount = %d, want 1", f.PinCount)
	}
}

func TestFixIsIdempotentWhileCached(t *testing.T) {
	pool, _ := openTest(t)
	f1, err := pool.FIX(0)
	if err != nil {
		t.Fatalf("FIX: %v", err)
	}
	f2, err := pool.FIX(0)
	if err != nil {
		t.Fatalf("FIX: %v", err)
	}
	if f1 != f2 {
		t.Error("two FIX calls on the same page should return the same frame")
	}
	if f1.PinCount != 2 {
		t.Errorf("PinCount = %d, want 2", f1.PinCount)
	}
	pool.UNFIX(0)
	pool.UNFIX(0)
	if f1.PinCount != 0 {
		t.Errorf("PinCount after two UNFIX = %d, want 0", f1.PinCount)
	}
}

func TestUnfixNeverGoesNegative(t *testing.T) {
	pool, _ := openTest(t)
	pool.UNFIX(5)
	f, err := pool.FIX(5)
	if err != nil {
		t.Fatalf("FIX: %v", err)
	}
	if f.PinCount != 1 {
		t.Errorf("PinCount = %d, want 1", f.PinCount)
	}
}

func TestUseAndForceWritesThroughToPager(t *testing.T) {
	pool, disk := openTest(t)
	f, err := pool.FIX(2)
	if err != nil {
		t.Fatalf("FIX: %v", err)
	}
	copy(f.Data, []byte("dirty write"))
	pool.USE(2)
	if !f.Dirty {
		t.Fatal("USE should mark the frame dirty")
	}
	if err := pool.FORCE(2); err != nil {
		t.Fatalf("FORCE: %v", err)
	}
	if f.Dirty {
		t.Error("FORCE should clear the dirty flag")
	}
	pool.UNFIX(2)

	onDisk, err := disk.ReadPage(2)
	if err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	if string(onDisk[:11]) != "dirty write" {
		t.Errorf("pager holds %q, want %q", onDisk[:11], "dirty write")
	}
}

func TestForceOnCleanFrameIsNoop(t *testing.T) {
	pool, _ := openTest(t)
	if _, err := pool.FIX(0); err != nil {
		t.Fatalf("FIX: %v", err)
	}
	if err := pool.FORCE(0); err != nil {
		t.Fatalf("FORCE on clean frame should not error: %v", err)
	}
	pool.UNFIX(0)
}

func TestClearDiscardsEveryFrame(t *testing.T) {
	pool, _ := openTest(t)
	f, err := pool.FIX(0)
	if err != nil {
		t.Fatalf("FIX: %v", err)
	}
	copy(f.Data, []byte("will be lost"))
	pool.USE(0)
	pool.UNFIX(0)

	pool.Clear()

	stats := pool.Stats()
	if stats.FrameCount != 0 {
		t.Errorf("FrameCount after Clear = %d, want 0", stats.FrameCount)
	}
}

func TestFlushDirtyWritesAllDirtyFrames(t *testing.T) {
	pool, disk := openTest(t)
	for i := int64(0); i < 3; i++ {
		f, err := pool.FIX(i)
		if err != nil {
			t.Fatalf("FIX(%d): %v", i, err)
		}
		copy(f.Data, []byte{byte(i + 1)})
		pool.USE(i)
		pool.UNFIX(i)
	}

	if err := pool.FlushDirty(); err != nil {
		t.Fatalf("FlushDirty: %v", err)
	}

	for i := int64(0); i < 3; i++ {
		data, err := disk.ReadPage(i)
		if err != nil {
			t.Fatalf("ReadPage(%d): %v", i, err)
		}
		if data[0] != byte(i+1) {
			t.Errorf("page %d byte 0 = %d, want %d", i, data[0], i+1)
		}
	}

	stats := pool.Stats()
	if stats.DirtyCount != 0 {
		t.Errorf("DirtyCount after FlushDirty = %d, want 0", stats.DirtyCount)
	}
}

func TestStatsReflectsPinnedAndDirty(t *testing.T) {
	pool, _ := openTest(t)
	if _, err := pool.FIX(0); err != nil {
		t.Fatalf("FIX: %v", err)
	}
	pool.USE(0)

	stats := pool.Stats()
	if stats.FrameCount != 1 || stats.DirtyCount != 1 || stats.PinnedCount != 1 {
		t.Errorf("Stats = %+v, want FrameCount=1 DirtyCount=1 PinnedCount=1", stats)
	}

	pool.UNFIX(0)
	stats = pool.Stats()
	if stats.PinnedCount != 0 {
		t.Errorf("PinnedCount after UNFIX = %d, want 0", stats.PinnedCount)
	}
}

func TestPoolIterVisitsEveryFrame(t *testing.T) {
	pool, _ := openTest(t)
	for i := int64(0); i < 3; i++ {
		if _, err := pool.FIX(i); err != nil {
			t.Fatalf("FIX(%d): %v", i, err)
		}
		pool.UNFIX(i)
	}

	seen := make(map[int64]bool)
	pool.PoolIter(func(idx int64, f *Frame) {
		seen[idx] = true
	})
	if len(seen) != 3 {
		t.Errorf("PoolIter visited %d frames, want 3", len(seen))
	}
}
