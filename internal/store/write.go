package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
)

// Insert appends one serialized event payload with a server-assigned id and
// created_at timestamp, and returns the total number of spooled events after
// the insert. Callers use the count to decide whether a flush is due.
//
// Admission control runs first: if the backing file has outgrown the larger
// of the volume's free space and the configured floor, Insert returns
// ErrRejected and writes nothing. The check is inherently racy with other
// disk consumers and is best-effort only.
//
// On a storage fault the backing file is destroyed and *StorageFaultError is
// returned; the payload that triggered the fault is lost.
func (s *Store) Insert(ctx context.Context, payload []byte) (int, error) {
	// Racy by nature: the device can fill between this check and the write.
	if err := s.admit(); err != nil {
		return 0, err
	}

	var count int
	err := s.withDB("insert event", func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO events (data, created_at)
			VALUES (?, ?)
		`, string(payload), s.now().UnixMilli())
		if err != nil {
			return fmt.Errorf("insert row: %w", err)
		}

		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
			return fmt.Errorf("count rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// admit applies the space-pressure policy: refuse the write when the backing
// file is larger than max(free space, floor). A missing file or a failing
// probe always admits; the check guards growth, it does not gate creation.
func (s *Store) admit() error {
	fi, err := os.Stat(s.path)
	if err != nil {
		return nil
	}

	free, err := s.freeSpace(s.path)
	if err != nil {
		return nil
	}

	limit := int64(free)
	if limit < s.spaceFloor {
		limit = s.spaceFloor
	}
	if fi.Size() > limit {
		return ErrRejected
	}
	return nil
}
