// Package pager owns the single random-access data file underlying a
// minisgbd store. It reads and writes whole pages at page-aligned
// offsets and reports the file's logical length.
package pager

import (
	"fmt"
	"io"
	"os"
	"sync"

	"minisgbd/storage/errs"
	"minisgbd/storage/page"
)

// Pager is the only component that mutates the data file's handle.
type Pager struct {
	mu   sync.RWMutex
	file *os.File
}

// Open opens path in read-write mode, creating it if absent.
func Open(path string) (*Pager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errs.Iof(err, "open data file %s", path)
	}
	return &Pager{file: f}, nil
}

// Close closes the underlying file handle.
func (p *Pager) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.file.Close()
}

// ReadPage reads page p into a freshly allocated page.Size-byte slice.
// A page entirely beyond the current file length reads back as all
// zero; a page that straddles the end of file is zero-padded.
func (p *Pager) ReadPage(pageIndex int64) ([]byte, error) {
	if pageIndex < 0 {
		return nil, errs.InvalidArgf("negative page index %d", pageIndex)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	buf := make([]byte, page.Size)
	_, err := p.file.ReadAt(buf, pageIndex*page.Size)
	if err != nil && err != io.EOF {
		return nil, errs.Iof(err, "read page %d", pageIndex)
	}
	// A short read at or past EOF (io.EOF) leaves the remainder of buf
	// zero-filled already, which is the desired representation of an
	// absent page; any other error was already returned above.
	return buf, nil
}

// WritePage writes exactly page.Size bytes at the page-aligned offset
// for pageIndex, extending the file as needed.
func (p *Pager) WritePage(pageIndex int64, data []byte) error {
	if pageIndex < 0 {
		return errs.InvalidArgf("negative page index %d", pageIndex)
	}
	if len(data) != page.Size {
		return errs.InvalidArgf("page data length %d, want %d", len(data), page.Size)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.file.WriteAt(data, pageIndex*page.Size); err != nil {
		return errs.Iof(err, "write page %d", pageIndex)
	}
	fmt.Printf("[pager] WRITE pageIndex=%d\n", pageIndex)
	return nil
}

// Length reports the current byte length of the data file.
func (p *Pager) Length() (int64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	fi, err := p.file.Stat()
	if err != nil {
		return 0, errs.Iof(err, "stat data file")
	}
	return fi.Size(), nil
}

// SetLength truncates or extends the data file to exactly n bytes.
// Extension zero-fills, matching os.File.Truncate's semantics on the
// platforms this design targets.
func (p *Pager) SetLength(n int64) error {
	if n < 0 {
		return errs.InvalidArgf("negative length %d", n)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.file.Truncate(n); err != nil {
		return errs.Iof(err, "set length %d", n)
	}
	fmt.Printf("[pager] SETLENGTH n=%d\n", n)
	return nil
}
