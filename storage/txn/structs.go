// Package txn implements the transaction manager: the single active
// transaction's before-image cache and record locks, and the public
// record operations (insert/update/read/get_page/record_count/
// page_count) that every caller — transactional or not — goes through.
// Grounded on DaemonDB's storage_engine/transaction_manager id-counter
// shape, generalized to a page-grained before-image cache; algorithmic
// content grounded directly on
// _examples/original_source/.../SGBDManager.java.
package txn

import (
	"sync"

	"minisgbd/storage/bufferpool"
	"minisgbd/storage/journal"
	"minisgbd/storage/pager"
)

type lockKey struct {
	Page int64
	Slot int
}

// active holds the state of the single currently-active transaction.
type active struct {
	id            int64
	logicalLength int64
	before        map[int64][]byte // page index -> page.Size-byte snapshot
	locks         map[lockKey]bool
}

// Manager mediates every record mutation, whether or not a
// transaction is active. Its mutex makes every public operation a
// process-wide critical section: at most one caller runs at a time,
// and at most one transaction is ever active.
//
// length is the store's logical record-stream length, authoritative
// for record_count/page_count/get_page and for seeding a new
// transaction's logical_length. It is distinct from pager.Length()
// (the data file's physical byte length): a commit advances length to
// cover whatever the transaction appended without writing a single
// byte to the data file, so that record_count() reflects a commit
// immediately while still honoring "commit never calls the pager."
// Checkpoint and Recover resync it to the (now-accurate) physical
// length once they have actually written the bytes length promised.
type Manager struct {
	mu     sync.Mutex
	pool   *bufferpool.Pool
	pager  *pager.Pager
	log    *journal.Journal
	nextID int64
	txn    *active
	length int64
}

// New creates a transaction manager over the given pool, pager, and
// journal. Transaction ids are assigned starting from 1. The logical
// length is seeded from the pager's current physical length.
func New(pool *bufferpool.Pool, p *pager.Pager, log *journal.Journal) (*Manager, error) {
	length, err := p.Length()
	if err != nil {
		return nil, err
	}
	return &Manager{
		pool:   pool,
		pager:  p,
		log:    log,
		nextID: 1,
		length: length,
	}, nil
}

// IsActive reports whether a transaction is currently active, and its
// id if so.
func (m *Manager) IsActive() (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.txn == nil {
		return 0, false
	}
	return m.txn.id, true
}

// DurableRecords returns the journal's parsed content as currently
// flushed to disk, for introspection.
func (m *Manager) DurableRecords() ([]journal.Record, error) {
	return m.log.ReadAll()
}
