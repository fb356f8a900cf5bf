package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFirstOperation_CreatesBackingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spool.db")
	s := New(path)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("backing file should not exist before first use")
	}

	mustInsert(t, s, `{"a":1}`)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("backing file was not created on first use")
	}
}

func TestReopen_PreservesEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spool.db")

	s1 := New(path)
	mustInsert(t, s1, `{"a":1}`)
	mustInsert(t, s1, `{"b":2}`)

	// A second Store over the same file sees the same contents; the file is
	// the store's only persistent identity.
	s2 := New(path)
	count, err := s2.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count after reopen = %d, want 2", count)
	}
}

func TestSchemaVersionMismatch_DropsTable(t *testing.T) {
	s := createTestStore(t)
	mustInsert(t, s, `{"a":1}`)

	// Simulate a file written by an older layout.
	db := rawDB(t, s)
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	db.Close()

	count, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count after version mismatch = %d, want 0 (table recreated)", count)
	}
}

func TestWipe_DestroysBackingFile(t *testing.T) {
	s := createTestStore(t)
	mustInsert(t, s, `{"a":1}`)

	if err := s.Wipe(); err != nil {
		t.Fatalf("Wipe() failed: %v", err)
	}

	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("backing file still exists after Wipe")
	}

	// Next operation recreates an empty store.
	batch, err := s.ExtractBatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("ExtractBatch() after Wipe failed: %v", err)
	}
	if batch != nil {
		t.Errorf("ExtractBatch() after Wipe = %+v, want nil", batch)
	}
}

func TestWipe_OnMissingFileIsNoop(t *testing.T) {
	s := createTestStore(t)
	if err := s.Wipe(); err != nil {
		t.Errorf("Wipe() on absent file failed: %v", err)
	}
}

func TestFileSize(t *testing.T) {
	s := createTestStore(t)

	size, err := s.FileSize()
	if err != nil {
		t.Fatalf("FileSize() failed: %v", err)
	}
	if size != 0 {
		t.Errorf("FileSize() before first use = %d, want 0", size)
	}

	mustInsert(t, s, `{"a":1}`)

	size, err = s.FileSize()
	if err != nil {
		t.Fatalf("FileSize() failed: %v", err)
	}
	if size == 0 {
		t.Error("FileSize() after insert = 0, want > 0")
	}
}
