package journal

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"minisgbd/storage/errs"
	"minisgbd/storage/page"
)

// encodeLine renders r as one pipe-delimited text line, terminated by
// a newline: `txn|TYPE|page|slot`, extended with base64 before/after
// images so recovery never needs to consult the data file itself.
func encodeLine(r Record) string {
	before, after := "", ""
	if r.Slotted() {
		before = base64.StdEncoding.EncodeToString(r.Before[:])
		after = base64.StdEncoding.EncodeToString(r.After[:])
	}
	return fmt.Sprintf("%d|%s|%d|%d|%s|%s\n", r.Txn, r.Type, r.Page, r.Slot, before, after)
}

// decodeLine parses one journal line. It returns a *errs.LogParse on
// any malformed field; the caller is responsible for stopping
// recovery at the first such error and discarding everything after it.
func decodeLine(line string) (Record, error) {
	parts := strings.Split(line, "|")
	if len(parts) != 6 {
		return Record{}, &errs.LogParse{Line: line, Err: fmt.Errorf("expected 6 fields, got %d", len(parts))}
	}

	txn, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Record{}, &errs.LogParse{Line: line, Err: fmt.Errorf("bad txn id: %w", err)}
	}

	typ := Type(parts[1])
	switch typ {
	case Begin, Insert, Update, Commit, Rollback, Checkpoint:
	default:
		return Record{}, &errs.LogParse{Line: line, Err: fmt.Errorf("unknown record type %q", parts[1])}
	}

	pageIdx, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Record{}, &errs.LogParse{Line: line, Err: fmt.Errorf("bad page index: %w", err)}
	}

	slot, err := strconv.Atoi(parts[3])
	if err != nil {
		return Record{}, &errs.LogParse{Line: line, Err: fmt.Errorf("bad slot: %w", err)}
	}

	r := Record{Txn: txn, Type: typ, Page: pageIdx, Slot: slot}
	if r.Slotted() {
		before, err := base64.StdEncoding.DecodeString(parts[4])
		if err != nil || len(before) != page.RecordSize {
			return Record{}, &errs.LogParse{Line: line, Err: fmt.Errorf("bad before image")}
		}
		after, err := base64.StdEncoding.DecodeString(parts[5])
		if err != nil || len(after) != page.RecordSize {
			return Record{}, &errs.LogParse{Line: line, Err: fmt.Errorf("bad after image")}
		}
		copy(r.Before[:], before)
		copy(r.After[:], after)
	}

	return r, nil
}
