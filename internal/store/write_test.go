package store

import (
	"context"
	"errors"
	"testing"
)

func TestInsert_ReturnsRunningCount(t *testing.T) {
	s := createTestStore(t)

	for i, payload := range []string{`{"a":1}`, `{"b":2}`, `{"c":3}`} {
		count := mustInsert(t, s, payload)
		if count != i+1 {
			t.Errorf("Insert #%d returned count %d, want %d", i+1, count, i+1)
		}
	}
}

func TestInsert_AssignsMonotonicIDs(t *testing.T) {
	s := createTestStore(t)
	mustInsert(t, s, `{"a":1}`)
	mustInsert(t, s, `{"b":2}`)
	mustInsert(t, s, `{"c":3}`)

	ids := queryIDs(t, s)
	if len(ids) != 3 {
		t.Fatalf("got %d ids, want 3", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Errorf("ids not strictly increasing: %v", ids)
		}
	}
}

func TestInsert_NeverReusesIDsAfterDeletion(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, `{"a":1}`)
	mustInsert(t, s, `{"b":2}`)
	if _, err := s.DeleteUpTo(ctx, 2); err != nil {
		t.Fatalf("DeleteUpTo() failed: %v", err)
	}
	mustInsert(t, s, `{"c":3}`)

	ids := queryIDs(t, s)
	if len(ids) != 1 || ids[0] != 3 {
		t.Errorf("ids after delete+insert = %v, want [3]", ids)
	}
}

func TestInsert_StampsCreatedAtFromTimeSource(t *testing.T) {
	clock := &stepClock{ms: 4242}
	s := createTestStore(t, WithTimeSource(clock.now))
	mustInsert(t, s, `{"a":1}`)

	db := rawDB(t, s)
	var createdAt int64
	if err := db.QueryRow(`SELECT created_at FROM events`).Scan(&createdAt); err != nil {
		t.Fatalf("query created_at: %v", err)
	}
	if createdAt != 4242 {
		t.Errorf("created_at = %d, want 4242", createdAt)
	}
}

func TestInsert_RejectedUnderSpacePressure(t *testing.T) {
	free := uint64(1)
	s := createTestStore(t,
		WithSpaceFloor(1),
		WithFreeSpace(func(string) (uint64, error) { return free, nil }),
	)
	ctx := context.Background()

	// First insert always passes: the file does not exist yet.
	mustInsert(t, s, `{"a":1}`)

	// The file now dwarfs max(free, floor); every insert is refused and
	// nothing more is persisted.
	for i := 0; i < 3; i++ {
		_, err := s.Insert(ctx, []byte(`{"b":2}`))
		if !errors.Is(err, ErrRejected) {
			t.Fatalf("Insert under pressure returned %v, want ErrRejected", err)
		}
	}
	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count after rejected inserts = %d, want 1", count)
	}

	// Space comes back; writes resume.
	free = 1 << 40
	mustInsert(t, s, `{"b":2}`)
}

func TestInsert_FloorAdmitsOnTinyVolumes(t *testing.T) {
	// Free space is reported as nearly nothing, but the file is far below
	// the floor, so the write is admitted.
	s := createTestStore(t,
		WithFreeSpace(func(string) (uint64, error) { return 1, nil }),
	)
	mustInsert(t, s, `{"a":1}`)
	mustInsert(t, s, `{"b":2}`)
}

func TestInsert_ProbeFailureAdmits(t *testing.T) {
	s := createTestStore(t,
		WithSpaceFloor(1),
		WithFreeSpace(func(string) (uint64, error) { return 0, errors.New("statfs unavailable") }),
	)
	mustInsert(t, s, `{"a":1}`)
	mustInsert(t, s, `{"b":2}`)
}

func TestInsert_StoresPayloadVerbatim(t *testing.T) {
	s := createTestStore(t)
	payload := `{"event":"login","props":{"user":"u-1","n":3}}`
	mustInsert(t, s, payload)

	batch, err := s.ExtractBatch(context.Background(), 1)
	if err != nil {
		t.Fatalf("ExtractBatch() failed: %v", err)
	}
	if batch == nil || len(batch.Records) != 1 {
		t.Fatalf("ExtractBatch() = %+v, want one record", batch)
	}
	if string(batch.Records[0]) != payload {
		t.Errorf("payload round-trip = %s, want %s", batch.Records[0], payload)
	}
}
