package minisgbd

import (
	"fmt"
	"path/filepath"
	"testing"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFillAndRead(t *testing.T) {
	s := openTest(t)
	for i := 1; i <= 105; i++ {
		if err := s.InsertRecord(fmt.Sprintf("Etudiant %d", i)); err != nil {
			t.Fatalf("InsertRecord(%d): %v", i, err)
		}
	}

	got, err := s.ReadRecord(41)
	if err != nil {
		t.Fatalf("ReadRecord(41): %v", err)
	}
	if got != "Etudiant 42" {
		t.Errorf("ReadRecord(41) = %q, want %q", got, "Etudiant 42")
	}

	page0, err := s.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage(0): %v", err)
	}
	if len(page0) != 40 || page0[0] != "Etudiant 1" || page0[39] != "Etudiant 40" {
		t.Errorf("GetPage(0) = %v (len %d), want 40 items from Etudiant 1 to Etudiant 40", page0, len(page0))
	}

	page2, err := s.GetPage(2)
	if err != nil {
		t.Fatalf("GetPage(2): %v", err)
	}
	if len(page2) != 25 {
		t.Fatalf("GetPage(2) = %d items, want 25", len(page2))
	}
	if page2[0] != "Etudiant 81" || page2[24] != "Etudiant 105" {
		t.Errorf("GetPage(2) = %v, want Etudiant 81..105", page2)
	}

	count, err := s.RecordCount()
	if err != nil {
		t.Fatalf("RecordCount: %v", err)
	}
	if count != 105 {
		t.Errorf("RecordCount = %d, want 105", count)
	}
}

func TestRollbackScenario(t *testing.T) {
	s := openTest(t)
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := s.InsertRecord("Etudiant 200"); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if err := s.InsertRecord("Etudiant 201"); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if err := s.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	count, err := s.RecordCount()
	if err != nil {
		t.Fatalf("RecordCount: %v", err)
	}
	if count != 0 {
		t.Errorf("RecordCount after rollback = %d, want 0", count)
	}
	page0, err := s.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage(0): %v", err)
	}
	if len(page0) != 0 {
		t.Errorf("GetPage(0) after rollback = %v, want []", page0)
	}
}

func TestCommitScenario(t *testing.T) {
	s := openTest(t)
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := s.InsertRecord("Etudiant 202"); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if err := s.InsertRecord("Etudiant 203"); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got0, err := s.ReadRecord(0)
	if err != nil {
		t.Fatalf("ReadRecord(0): %v", err)
	}
	if got0 != "Etudiant 202" {
		t.Errorf("ReadRecord(0) = %q, want %q", got0, "Etudiant 202")
	}
	got1, err := s.ReadRecord(1)
	if err != nil {
		t.Fatalf("ReadRecord(1): %v", err)
	}
	if got1 != "Etudiant 203" {
		t.Errorf("ReadRecord(1) = %q, want %q", got1, "Etudiant 203")
	}
}

func TestTransactionalReadIsolationScenario(t *testing.T) {
	s := openTest(t)
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := s.InsertRecord("A"); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := s.UpdateRecord(0, "A_MOD"); err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	got, err := s.ReadRecord(0)
	if err != nil {
		t.Fatalf("ReadRecord(0): %v", err)
	}
	if got != "A" {
		t.Errorf("ReadRecord(0) inside the writing transaction = %q, want %q", got, "A")
	}
	if err := s.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	got, err = s.ReadRecord(0)
	if err != nil {
		t.Fatalf("ReadRecord(0): %v", err)
	}
	if got != "A" {
		t.Errorf("ReadRecord(0) after rollback = %q, want %q", got, "A")
	}
}

func TestCrashAndRecoverScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := s.InsertRecord("Record_A"); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := s.InsertRecord("Record_B"); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := s.Checkpoint(); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}

	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := s.UpdateRecord(1, "Record_B_FINAL"); err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := s.InsertRecord("Record_C_FANTOME"); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}

	s.Crash()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if err := reopened.Recover(); err != nil {
		t.Fatalf("Recover: %v", err)
	}

	count, err := reopened.RecordCount()
	if err != nil {
		t.Fatalf("RecordCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("RecordCount after recovery = %d, want 3", count)
	}

	got2, err := reopened.ReadRecord(2)
	if err != nil {
		t.Fatalf("ReadRecord(2): %v", err)
	}
	if got2 == "Record_C_FANTOME" {
		t.Error("the uncommitted insert must not survive recovery")
	}

	got1, err := reopened.ReadRecord(1)
	if err != nil {
		t.Fatalf("ReadRecord(1): %v", err)
	}
	if got1 != "Record_B_FINAL" {
		t.Errorf("ReadRecord(1) = %q, want %q", got1, "Record_B_FINAL")
	}
}

func TestImplicitCommitOnDoubleBeginScenario(t *testing.T) {
	s := openTest(t)
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := s.InsertRecord("X"); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if err := s.Begin(); err != nil {
		t.Fatalf("second Begin: %v", err)
	}
	if err := s.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	got, err := s.ReadRecord(0)
	if err != nil {
		t.Fatalf("ReadRecord(0): %v", err)
	}
	if got != "X" {
		t.Errorf("ReadRecord(0) = %q, want %q (the first transaction was implicitly committed)", got, "X")
	}
}

func TestCheckpointMetadataSideFile(t *testing.T) {
	s := openTest(t)
	if err := s.InsertRecord("a"); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if err := s.Checkpoint(); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}

	meta, err := s.LoadMetadata()
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if meta.LastRecordCount != 1 {
		t.Errorf("LoadMetadata.LastRecordCount = %d, want 1", meta.LastRecordCount)
	}
}

func TestStatsReportsOccupancy(t *testing.T) {
	s := openTest(t)
	if err := s.InsertRecord("a"); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	stats := s.Stats()
	if stats.FrameCount == 0 {
		t.Error("Stats().FrameCount should be nonzero after an insert")
	}
}

func TestJournalRecordsAccessor(t *testing.T) {
	s := openTest(t)
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := s.InsertRecord("a"); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	records, err := s.Journal().Records()
	if err != nil {
		t.Fatalf("Journal().Records(): %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("journal holds %d records, want 3 (BEGIN, INSERT, COMMIT)", len(records))
	}
}
