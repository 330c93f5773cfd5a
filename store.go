// Package minisgbd is a small single-file record store: paged
// storage, a pinning buffer pool, a single-active-transaction manager
// with before-images and record-level locks, and an append-only
// journal with REDO/UNDO crash recovery.
package minisgbd

import (
	"minisgbd/storage/bufferpool"
	"minisgbd/storage/checkpoint"
	"minisgbd/storage/journal"
	"minisgbd/storage/pager"
	"minisgbd/storage/txn"
)

// Store is the single entry point into a minisgbd database: one data
// file, one journal file, one optional metadata side-file. All
// mutable state lives behind the transaction manager's process-wide
// lock; Store itself adds nothing but file lifecycle.
type Store struct {
	dataPath string

	pager *pager.Pager
	pool  *bufferpool.Pool
	log   *journal.Journal
	txn   *txn.Manager
}

// Open opens (creating if absent) the data file and journal at
// dataPath and dataPath+".log". It does not run recovery: callers
// that suspect an unclean prior shutdown should call Recover
// explicitly — recovery is an operator-driven step, not an implicit
// one Open takes for them.
func Open(dataPath string) (*Store, error) {
	p, err := pager.Open(dataPath)
	if err != nil {
		return nil, err
	}

	j, err := journal.Open(dataPath + ".log")
	if err != nil {
		p.Close()
		return nil, err
	}

	pool := bufferpool.New(p)
	mgr, err := txn.New(pool, p, j)
	if err != nil {
		j.Close()
		p.Close()
		return nil, err
	}

	return &Store{
		dataPath: dataPath,
		pager:    p,
		pool:     pool,
		log:      j,
		txn:      mgr,
	}, nil
}

// Close checkpoints the store — flushing every dirty frame and
// advancing the data file's physical length to match its logical
// length — then closes the data file and journal handles. Checkpoint
// on close is what lets a later Open resume purely from the data
// file's length, the same invariant Recover restores after a crash.
func (s *Store) Close() error {
	if err := s.txn.Checkpoint(); err != nil {
		return err
	}
	if err := s.log.Close(); err != nil {
		return err
	}
	return s.pager.Close()
}

// InsertRecord appends value at the current end of the record stream.
func (s *Store) InsertRecord(value string) error {
	return s.txn.InsertRecord(value)
}

// InsertRecordSync places value in the first empty slot found by a
// linear scan from page 0, rather than at the logical end.
func (s *Store) InsertRecordSync(value string) error {
	return s.txn.InsertRecordSync(value)
}

// UpdateRecord overwrites record id with value. Requires an active
// transaction.
func (s *Store) UpdateRecord(id int64, value string) error {
	return s.txn.UpdateRecord(id, value)
}

// ReadRecord returns the logical value stored at record id.
func (s *Store) ReadRecord(id int64) (string, error) {
	return s.txn.ReadRecord(id)
}

// GetPage returns the logical values of the slots on page pageIndex,
// up to the store's record count; empty slots in that range read as "".
func (s *Store) GetPage(pageIndex int64) ([]string, error) {
	return s.txn.GetPage(pageIndex)
}

// RecordCount returns the number of logical records the store holds.
func (s *Store) RecordCount() (int64, error) {
	return s.txn.RecordCount()
}

// PageCount returns the number of pages the store's logical length
// spans.
func (s *Store) PageCount() (int64, error) {
	return s.txn.PageCount()
}

// Begin starts a new transaction, implicitly committing one already
// active.
func (s *Store) Begin() error {
	return s.txn.Begin()
}

// Commit durably ends the active transaction.
func (s *Store) Commit() error {
	return s.txn.Commit()
}

// Rollback discards the active transaction's effects.
func (s *Store) Rollback() error {
	return s.txn.Rollback()
}

// Checkpoint flushes dirty pages, trims the data file, and marks the
// journal. It also refreshes the diagnostic metadata side-file; a
// failure to write that side-file does not fail the checkpoint.
func (s *Store) Checkpoint() error {
	if err := s.txn.Checkpoint(); err != nil {
		return err
	}
	s.saveMetadata()
	return nil
}

func (s *Store) saveMetadata() {
	records, err := s.RecordCount()
	if err != nil {
		return
	}
	pages, err := s.PageCount()
	if err != nil {
		return
	}
	meta := checkpoint.Metadata{
		SavedAtUnix:       checkpoint.Now(),
		LastRecordCount:   records,
		LastPageCount:     pages,
		ApproxHitRatioPct: int(s.pool.Stats().ApproxHitRatio * 100),
	}
	checkpoint.Save(checkpoint.Path(s.dataPath), meta)
}

// LoadMetadata reads the last saved diagnostic metadata side-file, for
// inspection only — never consulted by Recover.
func (s *Store) LoadMetadata() (checkpoint.Metadata, error) {
	return checkpoint.Load(checkpoint.Path(s.dataPath))
}

// Crash simulates the volatile-memory loss of a process crash:
// discards the buffer pool and any active transaction, leaving the
// journal and data file exactly as they were.
func (s *Store) Crash() {
	s.txn.Crash()
}

// Recover replays the journal and restores the store to a consistent
// Idle state: REDO every committed change since the last checkpoint,
// then UNDO every change from a transaction that began but never
// committed.
func (s *Store) Recover() error {
	return s.txn.Recover()
}

// Stats reports current buffer pool occupancy and the approximate
// telemetry hit ratio.
func (s *Store) Stats() bufferpool.Stats {
	return s.pool.Stats()
}

// Journal exposes read-only access to the durable log, for
// introspection and tests that want to assert on parsed log content.
func (s *Store) Journal() *JournalView {
	return &JournalView{mgr: s.txn}
}

// JournalView is a narrow, read-only accessor over the store's
// journal, kept separate from Store's mutating API.
type JournalView struct {
	mgr *txn.Manager
}

// Records returns every record currently durable in the journal file.
func (v *JournalView) Records() ([]journal.Record, error) {
	return v.mgr.DurableRecords()
}
