package journal

import (
	"os"
	"sync"
)

// Journal is the single append-only log file. Records are accumulated
// in an in-memory buffer between begin and commit/rollback/checkpoint,
// then flushed to disk as a batch. The file is never truncated.
type Journal struct {
	mu     sync.Mutex
	file   *os.File
	buffer []Record
}
