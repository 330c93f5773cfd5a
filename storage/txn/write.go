package txn

import (
	"minisgbd/storage/bufferpool"
	"minisgbd/storage/journal"
	"minisgbd/storage/page"
)

// writeTransactional FIXes pageIdx and applies a transactional write
// to slot, for callers that have not already pinned the page.
func (m *Manager) writeTransactional(pageIdx int64, slot int, value string, typ journal.Type) error {
	f, err := m.pool.FIX(pageIdx)
	if err != nil {
		return err
	}
	m.applyTransactionalWrite(f, pageIdx, slot, value, typ)
	m.pool.UNFIX(pageIdx)
	return nil
}

// applyTransactionalWrite is the first-touch snapshot protocol: on the
// first write to a (page, slot) pair within the active transaction,
// take a snapshot of the whole page if one has not already been taken
// for this page, then acquire the lock. It then logs the before/after
// images, overwrites the slot, marks the frame dirty and
// transactional, and advances the transaction's logical length if the
// write extended past it. The caller must hold a pin on f/pageIdx.
func (m *Manager) applyTransactionalWrite(f *bufferpool.Frame, pageIdx int64, slot int, value string, typ journal.Type) {
	t := m.txn
	key := lockKey{Page: pageIdx, Slot: slot}
	if !t.locks[key] {
		t.locks[key] = true
		if _, ok := t.before[pageIdx]; !ok {
			snapshot := make([]byte, page.Size)
			copy(snapshot, f.Data)
			t.before[pageIdx] = snapshot
		}
	}

	var before [page.RecordSize]byte
	copy(before[:], page.SlotBytes(f.Data, slot))
	after := page.Encode(value)

	m.log.Append(journal.Record{
		Txn: t.id, Type: typ, Page: pageIdx, Slot: slot,
		Before: before, After: after,
	})

	copy(page.SlotBytes(f.Data, slot), after[:])
	m.pool.USE(pageIdx)
	f.Transactional = true

	newEnd := pageIdx*page.Size + int64(slot+1)*page.RecordSize
	if newEnd > t.logicalLength {
		t.logicalLength = newEnd
	}
}
