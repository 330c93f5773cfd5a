// Package checkpoint persists small, non-authoritative operational
// metadata about the store's last checkpoint — a diagnostic side-file
// read only on request (Store.LoadMetadata), never at Open and never
// by recovery.
// Grounded on DaemonDB's storage_engine/checkpoint_manager, which uses
// the identical write-temp/fsync/rename pattern to protect its own
// (authoritative, there) checkpoint LSN file.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"minisgbd/storage/errs"
)

// Metadata is the JSON-serialized content of the side-file.
type Metadata struct {
	SavedAtUnix       int64 `json:"saved_at_unix"`
	LastRecordCount   int64 `json:"last_record_count"`
	LastPageCount     int64 `json:"last_page_count"`
	ApproxHitRatioPct int   `json:"approx_hit_ratio_pct"`
}

// Path returns the conventional side-file path alongside the data
// file at dataPath.
func Path(dataPath string) string {
	return dataPath + ".checkpoint.json"
}

// Save atomically writes meta to path: write to a temp file in the
// same directory, fsync it, then rename over path. Rename is atomic
// on the platforms this design targets, so a reader never observes a
// partially written file.
func Save(path string, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return errs.Iof(err, "marshal checkpoint metadata")
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errs.Iof(err, "write temp checkpoint metadata %s", tmpPath)
	}

	f, err := os.OpenFile(tmpPath, os.O_RDWR, 0644)
	if err != nil {
		return errs.Iof(err, "reopen temp checkpoint metadata %s", tmpPath)
	}
	syncErr := f.Sync()
	closeErr := f.Close()
	if syncErr != nil {
		return errs.Iof(syncErr, "sync temp checkpoint metadata %s", tmpPath)
	}
	if closeErr != nil {
		return errs.Iof(closeErr, "close temp checkpoint metadata %s", tmpPath)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return errs.Iof(err, "rename checkpoint metadata into place")
	}

	if dir, err := os.Open(filepath.Dir(path)); err == nil {
		dir.Sync()
		dir.Close()
	}
	return nil
}

// Load reads the side-file at path. A missing file is not an error:
// it reports a zero Metadata, matching the convention that metadata
// is diagnostic only and absence just means no checkpoint has run
// yet.
func Load(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Metadata{}, nil
		}
		return Metadata{}, errs.Iof(err, "read checkpoint metadata %s", path)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		// A corrupted diagnostic side-file must never block Open; it is
		// never the source of truth for recovery.
		return Metadata{}, nil
	}
	return meta, nil
}

// Now stamps SavedAtUnix with the current wall-clock time, used by
// Store.Checkpoint right before writing the side-file.
func Now() int64 {
	return time.Now().Unix()
}

// String renders m for log lines.
func (m Metadata) String() string {
	return fmt.Sprintf("saved_at=%d records=%d pages=%d hit_ratio=%d%%",
		m.SavedAtUnix, m.LastRecordCount, m.LastPageCount, m.ApproxHitRatioPct)
}
