package store

import (
	"context"
	"database/sql"
	"fmt"
)

// DeleteUpTo removes every event with id <= cursor and returns the number of
// events remaining. Paired with the cursor from ExtractBatch it removes
// exactly the scanned range, acknowledged and malformed rows alike.
func (s *Store) DeleteUpTo(ctx context.Context, cursor int64) (int, error) {
	return s.deleteWhere(ctx, "delete acknowledged events", `id <= ?`, cursor)
}

// DeleteOlderThan removes every event with created_at <= ts (milliseconds
// since epoch) and returns the number of events remaining.
func (s *Store) DeleteOlderThan(ctx context.Context, ts int64) (int, error) {
	return s.deleteWhere(ctx, "delete expired events", `created_at <= ?`, ts)
}

func (s *Store) deleteWhere(ctx context.Context, op, cond string, bound int64) (int, error) {
	var count int
	err := s.withDB(op, func(db *sql.DB) error {
		if _, err := db.ExecContext(ctx, `DELETE FROM events WHERE `+cond, bound); err != nil {
			return fmt.Errorf("delete rows: %w", err)
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
