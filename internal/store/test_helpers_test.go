package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

// createTestStore returns a store backed by a fresh file in a temp directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "spool.db"), opts...)
}

// stepClock is a settable time source for pinning created_at values.
type stepClock struct {
	ms int64
}

func (c *stepClock) now() time.Time {
	return time.UnixMilli(c.ms)
}

// mustInsert inserts a payload and fails the test on any error.
func mustInsert(t *testing.T, s *Store, payload string) int {
	t.Helper()
	count, err := s.Insert(context.Background(), []byte(payload))
	if err != nil {
		t.Fatalf("Insert(%q) failed: %v", payload, err)
	}
	return count
}

// rawDB opens the backing file directly for white-box assertions. The schema
// must already exist (any store operation creates it).
func rawDB(t *testing.T, s *Store) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", s.Path())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// rawInsert writes a row directly, bypassing Insert. Used to plant malformed
// payloads and controlled timestamps.
func rawInsert(t *testing.T, s *Store, data string, createdAt int64) {
	t.Helper()
	db := rawDB(t, s)
	if _, err := db.Exec(`INSERT INTO events (data, created_at) VALUES (?, ?)`, data, createdAt); err != nil {
		t.Fatalf("raw insert failed: %v", err)
	}
}

// queryIDs returns all event ids in id order.
func queryIDs(t *testing.T, s *Store) []int64 {
	t.Helper()
	db := rawDB(t, s)
	rows, err := db.Query(`SELECT id FROM events ORDER BY id ASC`)
	if err != nil {
		t.Fatalf("query ids: %v", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("scan id: %v", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterate ids: %v", err)
	}
	return ids
}
