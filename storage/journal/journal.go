// Package journal implements the append-only write-ahead log: BEGIN /
// INSERT / UPDATE / COMMIT / ROLLBACK / CHECKPOINT records, flushed as
// a batch at transaction termination, and the REDO/UNDO recovery scan.
// Grounded on DaemonDB's wal_manager lifecycle (Open/Append/Sync/Close)
// adapted to a single never-truncated text-line file.
package journal

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"minisgbd/storage/errs"
)

// Open opens (creating if absent) the log file at path in append-only
// mode.
func Open(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, errs.Iof(err, "open journal %s", path)
	}
	return &Journal{file: f}, nil
}

// Close closes the underlying file handle. It does not flush the
// in-memory buffer.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}

// Append adds r to the in-memory buffer. It is not durable until
// Flush is called.
func (j *Journal) Append(r Record) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.buffer = append(j.buffer, r)
}

// Flush writes the buffered records to the log file as a batch and
// clears the buffer. Called by commit, rollback, and checkpoint.
func (j *Journal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.buffer) == 0 {
		return nil
	}

	var sb strings.Builder
	for _, r := range j.buffer {
		sb.WriteString(encodeLine(r))
	}
	if _, err := j.file.WriteString(sb.String()); err != nil {
		return errs.Iof(err, "flush journal")
	}
	if err := j.file.Sync(); err != nil {
		return errs.Iof(err, "sync journal")
	}
	j.buffer = j.buffer[:0]
	return nil
}

// ReadAll reads the log file from the beginning and parses every
// record in order. On the first malformed line it stops: that line
// and everything after it is discarded, per the LogParse best-effort
// recovery policy.
func (j *Journal) ReadAll() ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.file.Seek(0, 0); err != nil {
		return nil, errs.Iof(err, "seek journal")
	}

	var records []Record
	scanner := bufio.NewScanner(j.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		r, err := decodeLine(line)
		if err != nil {
			fmt.Printf("[journal] PARSE stopped at malformed line, recovered=%d\n", len(records))
			break
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return records, errs.Iof(err, "read journal")
	}

	// Seek back to the end so subsequent Flush calls keep appending.
	if _, err := j.file.Seek(0, 2); err != nil {
		return records, errs.Iof(err, "seek journal to end")
	}
	return records, nil
}
