package txn

import (
	"fmt"

	"minisgbd/storage/bufferpool"
	"minisgbd/storage/journal"
	"minisgbd/storage/page"
)

// Begin starts a new transaction. If one is already active it is
// committed first, implicitly, rather than treated as an error.
func (m *Manager) Begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.beginLocked()
}

func (m *Manager) beginLocked() error {
	if m.txn != nil {
		if err := m.commitLocked(); err != nil {
			return err
		}
	}

	id := m.nextID
	m.nextID++
	m.txn = &active{
		id:            id,
		logicalLength: m.length,
		before:        make(map[int64][]byte),
		locks:         make(map[lockKey]bool),
	}
	m.log.Append(journal.Record{Txn: id, Type: journal.Begin, Page: -1, Slot: -1})
	fmt.Printf("[txn] BEGIN id=%d logicalLength=%d\n", id, m.txn.logicalLength)
	return nil
}

// Commit durably records the transaction's effects in the journal and
// releases its before-image cache and lock set. It never calls the
// pager and never forces a frame: the modified pages remain dirty in
// the buffer pool, persisted later by a checkpoint or recovered by
// REDO after a crash.
//
// It does advance the manager's logical length to cover whatever the
// transaction appended, purely in memory — this is what lets
// record_count/page_count/get_page reflect a commit immediately
// without requiring a checkpoint. The data file's actual byte length
// is not touched by a transaction; it changes only through Checkpoint,
// Recover, and the non-transactional insert paths.
func (m *Manager) Commit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commitLocked()
}

func (m *Manager) commitLocked() error {
	if m.txn == nil {
		return nil
	}
	t := m.txn

	m.log.Append(journal.Record{Txn: t.id, Type: journal.Commit, Page: -1, Slot: -1})
	if err := m.log.Flush(); err != nil {
		return err
	}

	if t.logicalLength > m.length {
		m.length = t.logicalLength
	}

	m.pool.PoolIter(func(_ int64, f *bufferpool.Frame) {
		f.Transactional = false
	})
	fmt.Printf("[txn] COMMIT id=%d logicalLength=%d\n", t.id, m.length)
	m.txn = nil
	return nil
}

// Rollback restores every page the transaction touched to its
// before-image, discards the before-image cache and lock set, and
// logs a ROLLBACK record. Neither the data file's length nor the
// manager's logical length is touched: transactional writes advance
// only the transaction's own logical length, so both are already at
// their pre-transaction values.
func (m *Manager) Rollback() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.txn == nil {
		return nil
	}
	t := m.txn

	for pageIdx, snapshot := range t.before {
		f, err := m.pool.FIX(pageIdx)
		if err != nil {
			return err
		}
		copy(f.Data, snapshot)
		f.Dirty = false
		f.Transactional = false
		m.pool.UNFIX(pageIdx)
	}

	m.log.Append(journal.Record{Txn: t.id, Type: journal.Rollback, Page: -1, Slot: -1})
	if err := m.log.Flush(); err != nil {
		return err
	}
	fmt.Printf("[txn] ROLLBACK id=%d pagesRestored=%d\n", t.id, len(t.before))
	m.txn = nil
	return nil
}

// Checkpoint flushes every dirty frame to disk, trims the data file to
// the end of its last occupied slot, and appends a CHECKPOINT marker
// naming the currently active transaction (0 if none).
func (m *Manager) Checkpoint() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.pool.FlushDirty(); err != nil {
		return err
	}

	// Every committed write marked its frame dirty, so FlushDirty has
	// just written every page m.length promised through to disk,
	// extending the physical file as needed. The scan below now finds
	// the true physical end of data and becomes the new authoritative
	// length, replacing the in-memory bookkeeping commit relied on.
	length, err := m.pager.Length()
	if err != nil {
		return err
	}
	trimmed, err := m.trimmedLength(length)
	if err != nil {
		return err
	}
	if trimmed < length {
		if err := m.pager.SetLength(trimmed); err != nil {
			return err
		}
	}
	m.length = trimmed

	var txnID int64
	if m.txn != nil {
		txnID = m.txn.id
	}
	m.log.Append(journal.Record{Txn: txnID, Type: journal.Checkpoint, Page: -1, Slot: -1})
	fmt.Printf("[txn] CHECKPOINT length=%d activeTxn=%d\n", m.length, txnID)
	return m.log.Flush()
}

// trimmedLength scans backward from the last allocated page for the
// last non-empty slot and returns the byte length ending just past it.
// An entirely empty file trims to 0.
func (m *Manager) trimmedLength(length int64) (int64, error) {
	pageCount := (length + page.Size - 1) / page.Size
	for p := pageCount - 1; p >= 0; p-- {
		data, err := m.pager.ReadPage(p)
		if err != nil {
			return 0, err
		}
		for s := page.RecordsPerPage - 1; s >= 0; s-- {
			if !page.SlotEmpty(page.SlotBytes(data, s)) {
				return p*page.Size + int64(s+1)*page.RecordSize, nil
			}
		}
	}
	return 0, nil
}

// Crash simulates the volatile-memory loss of a process crash: every
// buffered frame is discarded and any active transaction is
// abandoned. Nothing already flushed to the journal or the data file
// is affected.
func (m *Manager) Crash() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pool.Clear()
	m.txn = nil
	fmt.Println("[txn] CRASH buffer pool discarded")
}

// Recover replays the journal from the last CHECKPOINT (or from the
// beginning, if none): REDO forward the after-images of every
// committed INSERT/UPDATE, then UNDO backward the before-images of
// every INSERT/UPDATE belonging to a transaction that began but never
// committed. Recovery always leaves the store Idle.
func (m *Manager) Recover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	records, err := m.log.ReadAll()
	if err != nil {
		return err
	}

	committed := journal.Committed(records)
	uncommitted := journal.ActiveAfterCrash(records)
	start := journal.LastCheckpointIndex(records) + 1

	for i := start; i < len(records); i++ {
		r := records[i]
		if !r.Slotted() || !committed[r.Txn] {
			continue
		}
		if err := m.applyImage(r.Page, r.Slot, r.After[:]); err != nil {
			return err
		}
	}

	for i := len(records) - 1; i >= start; i-- {
		r := records[i]
		if !r.Slotted() || !uncommitted[r.Txn] {
			continue
		}
		if err := m.applyImage(r.Page, r.Slot, r.Before[:]); err != nil {
			return err
		}
	}

	m.pool.Clear()
	m.txn = nil

	// REDO/UNDO above wrote every page the log named, extending the
	// physical file as needed (pager.WritePage zero-fills any gap). The
	// in-memory logical length the crash discarded is now recoverable
	// purely from that physical state, the same scan checkpoint uses.
	length, err := m.pager.Length()
	if err != nil {
		return err
	}
	trimmed, err := m.trimmedLength(length)
	if err != nil {
		return err
	}
	m.length = trimmed
	fmt.Printf("[txn] RECOVER redo+undo complete, length=%d\n", m.length)
	return nil
}

func (m *Manager) applyImage(pageIdx int64, slot int, image []byte) error {
	f, err := m.pool.FIX(pageIdx)
	if err != nil {
		return err
	}
	copy(page.SlotBytes(f.Data, slot), image)
	f.Dirty = true
	m.pool.UNFIX(pageIdx)
	return m.pool.FORCE(pageIdx)
}
