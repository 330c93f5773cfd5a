package txn

import (
	"minisgbd/storage/errs"
	"minisgbd/storage/page"
)

// ReadRecord returns the logical value of record id. Within an active
// transaction, a record the transaction has itself written is read
// from its before-image rather than from the live frame — the
// transaction never observes its own uncommitted writes.
func (m *Manager) ReadRecord(id int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id < 0 {
		return "", errs.InvalidArgf("negative record id %d", id)
	}

	visible := m.length
	if m.txn != nil && m.txn.logicalLength > visible {
		visible = m.txn.logicalLength
	}
	if page.Offset(id)+page.RecordSize > visible {
		return "", errs.OutOfBoundsf("record id %d past the end of the record stream", id)
	}

	pageIdx, slot := page.Locate(id)
	f, err := m.pool.FIX(pageIdx)
	if err != nil {
		return "", err
	}
	defer m.pool.UNFIX(pageIdx)

	source := f.Data
	if m.txn != nil && m.txn.locks[lockKey{Page: pageIdx, Slot: slot}] {
		if snapshot, ok := m.txn.before[pageIdx]; ok {
			source = snapshot
		}
	}

	window := make([]byte, page.RecordSize)
	copy(window, page.SlotBytes(source, slot))

	// A window that reads as all zeros is ambiguous: it might be a
	// genuinely empty slot, or it might be a stale in-memory frame that
	// predates data actually sitting on disk. If the slot falls within
	// the data file's current physical length, re-read it straight from
	// the pager rather than trust the frame.
	if page.SlotEmpty(window) {
		physical, err := m.pager.Length()
		if err != nil {
			return "", err
		}
		if page.Offset(id)+page.RecordSize <= physical {
			direct, err := m.pager.ReadPage(pageIdx)
			if err != nil {
				return "", err
			}
			copy(window, page.SlotBytes(direct, slot))
		}
	}

	return page.Decode(window), nil
}

// GetPage returns the logical values of the slots on page pageIdx, in
// slot order, up to the store's record count; an empty slot within
// that range is returned as "". It reads directly from the live frame, not
// from any transaction's before-image, matching how the page is
// actually laid out on disk right now.
func (m *Manager) GetPage(pageIdx int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pageIdx < 0 {
		return nil, errs.InvalidArgf("negative page index %d", pageIdx)
	}

	total, err := m.recordCountLocked()
	if err != nil {
		return nil, err
	}
	first := pageIdx * page.RecordsPerPage
	if first >= total {
		return []string{}, nil
	}
	count := page.RecordsPerPage
	if remaining := total - first; remaining < int64(count) {
		count = int(remaining)
	}

	f, err := m.pool.FIX(pageIdx)
	if err != nil {
		return nil, err
	}
	defer m.pool.UNFIX(pageIdx)

	out := make([]string, 0, count)
	for s := 0; s < count; s++ {
		out = append(out, page.Decode(page.SlotBytes(f.Data, s)))
	}
	return out, nil
}

// RecordCount returns the number of records implied by the store's
// logical length — every committed record, whether or not it has
// reached disk yet.
func (m *Manager) RecordCount() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recordCountLocked()
}

func (m *Manager) recordCountLocked() (int64, error) {
	fullPages := m.length / page.Size
	remainder := m.length % page.Size
	return fullPages*page.RecordsPerPage + remainder/page.RecordSize, nil
}

// PageCount returns the number of pages spanned by the store's
// logical length.
func (m *Manager) PageCount() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (m.length + page.Size - 1) / page.Size, nil
}
