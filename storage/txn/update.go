package txn

import (
	"minisgbd/storage/errs"
	"minisgbd/storage/journal"
	"minisgbd/storage/page"
)

// UpdateRecord overwrites the record at id with value. It requires an
// active transaction: an update outside one is meaningless, since
// there would be no before-image to roll back to and nothing to defer
// to commit.
func (m *Manager) UpdateRecord(id int64, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id < 0 {
		return errs.InvalidArgf("negative record id %d", id)
	}
	if m.txn == nil {
		return errs.InvalidArgf("update_record requires an active transaction")
	}

	pageIdx, slot := page.Locate(id)
	return m.writeTransactional(pageIdx, slot, value, journal.Update)
}
