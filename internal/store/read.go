package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Batch is one ordered slice of the spool, ready for delivery.
type Batch struct {
	// Cursor is the id of the last row scanned, parseable or not. Passing it
	// to DeleteUpTo removes exactly the scanned range, including rows that
	// were skipped for malformed payloads.
	Cursor int64

	// Records holds the parseable payloads in (created_at, id) order.
	Records []json.RawMessage

	// Skipped counts rows at or below Cursor whose payloads failed to parse
	// and were excluded from Records. They remain on disk and will be
	// rescanned until a cursor or age deletion covers them.
	Skipped int
}

// ExtractBatch reads up to limit events ordered by created_at ascending, ties
// broken by id ascending. Rows whose payload is not valid JSON are counted in
// Batch.Skipped rather than failing the batch.
//
// Returns (nil, nil) when the scan yields no parseable records; a batch of
// entirely malformed rows is indistinguishable from an empty table here,
// though the rows still exist on disk. On a storage fault the partial read is
// discarded, the store is destroyed, and *StorageFaultError is returned.
func (s *Store) ExtractBatch(ctx context.Context, limit int) (*Batch, error) {
	if limit <= 0 {
		return nil, nil
	}

	var batch *Batch
	err := s.withDB("extract batch", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT id, data
			FROM events
			ORDER BY created_at ASC, id ASC
			LIMIT ?
		`, limit)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		defer rows.Close()

		b := &Batch{}
		for rows.Next() {
			var (
				id   int64
				data string
			)
			if err := rows.Scan(&id, &data); err != nil {
				return fmt.Errorf("scan event: %w", err)
			}
			b.Cursor = id

			raw := json.RawMessage(data)
			if !json.Valid(raw) {
				b.Skipped++
				continue
			}
			b.Records = append(b.Records, raw)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate events: %w", err)
		}

		if len(b.Records) > 0 {
			batch = b
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// Count returns the number of spooled events.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.withDB("count events", func(db *sql.DB) error {
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
