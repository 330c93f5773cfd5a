package journal

import "minisgbd/storage/page"

// Type is the tag of a journal record.
type Type string

const (
	Begin      Type = "BEGIN"
	Insert     Type = "INSERT"
	Update     Type = "UPDATE"
	Commit     Type = "COMMIT"
	Rollback   Type = "ROLLBACK"
	Checkpoint Type = "CHECKPOINT"
)

// Record is one tagged entry of the append-only journal. Page and Slot
// are -1 for BEGIN/COMMIT/ROLLBACK/CHECKPOINT. Before/After only carry
// meaningful data for INSERT/UPDATE.
type Record struct {
	Txn    int64
	Type   Type
	Page   int64
	Slot   int
	Before [page.RecordSize]byte
	After  [page.RecordSize]byte
}

// Slotted reports whether r carries a page/slot/before/after image,
// i.e. whether it is an INSERT or UPDATE record.
func (r Record) Slotted() bool {
	return r.Type == Insert || r.Type == Update
}
