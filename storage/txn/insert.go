package txn

import (
	"minisgbd/storage/bufferpool"
	"minisgbd/storage/journal"
	"minisgbd/storage/page"
)

// appendPosition computes the page and slot a record appended at
// logical length length would land in, and the logical length after
// the append. If the current page has no room left for another whole
// record, the position advances to the start of the next page.
func appendPosition(length int64) (pageIdx int64, slot int, newLength int64) {
	off := length % page.Size
	if off+page.RecordSize > page.Size {
		length += page.Size - off
		off = 0
	}
	pageIdx = length / page.Size
	slot = int(off / page.RecordSize)
	newLength = length + page.RecordSize
	return
}

// InsertRecord appends value at the current end of the record stream.
// Outside a transaction it writes through to disk immediately; inside
// one, it writes only to the buffer and defers persistence to commit.
func (m *Manager) InsertRecord(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.txn != nil {
		pageIdx, slot, _ := appendPosition(m.txn.logicalLength)
		return m.writeTransactional(pageIdx, slot, value, journal.Insert)
	}

	pageIdx, slot, newLength := appendPosition(m.length)

	f, err := m.pool.FIX(pageIdx)
	if err != nil {
		return err
	}
	fixed := page.Encode(value)
	copy(page.SlotBytes(f.Data, slot), fixed[:])
	m.pool.USE(pageIdx)
	if err := m.pool.FORCE(pageIdx); err != nil {
		m.pool.UNFIX(pageIdx)
		return err
	}
	m.pool.UNFIX(pageIdx)

	if err := m.pager.SetLength(newLength); err != nil {
		return err
	}
	m.length = newLength
	return nil
}

// InsertRecordSync scans from page 0 for the first empty slot and
// places value there, advancing page by page when a page is full. It
// participates in locking and before-image tracking inside a
// transaction, and forces the page to disk immediately outside one.
//
// Outside a transaction, it then truncates the data file to end
// exactly at the slot it just wrote. If the first empty slot the scan
// finds is an interior hole (for instance one an earlier update
// emptied with an all-zero value) rather than the trailing end, this
// discards every record past it — reproduced as-is rather than
// guarded with an "only if extending" check.
func (m *Manager) InsertRecordSync(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var pageIdx int64
	for {
		f, err := m.pool.FIX(pageIdx)
		if err != nil {
			return err
		}

		slot := firstEmptySlot(f)
		if slot == -1 {
			m.pool.UNFIX(pageIdx)
			pageIdx++
			continue
		}

		if m.txn != nil {
			m.applyTransactionalWrite(f, pageIdx, slot, value, journal.Insert)
			m.pool.UNFIX(pageIdx)
			return nil
		}

		fixed := page.Encode(value)
		copy(page.SlotBytes(f.Data, slot), fixed[:])
		m.pool.USE(pageIdx)
		if err := m.pool.FORCE(pageIdx); err != nil {
			m.pool.UNFIX(pageIdx)
			return err
		}
		m.pool.UNFIX(pageIdx)

		newEnd := pageIdx*page.Size + int64(slot+1)*page.RecordSize
		if err := m.pager.SetLength(newEnd); err != nil {
			return err
		}
		m.length = newEnd
		return nil
	}
}

func firstEmptySlot(f *bufferpool.Frame) int {
	for s := 0; s < page.RecordsPerPage; s++ {
		if page.SlotEmpty(page.SlotBytes(f.Data, s)) {
			return s
		}
	}
	return -1
}
