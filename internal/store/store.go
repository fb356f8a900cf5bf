package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - events table with created_at index
//
// A version mismatch drops and recreates the events table rather than
// migrating in place; the spool's contents are a cache of unsent events,
// not a system of record.
const currentSchemaVersion = 1

// defaultSpaceFloor is the minimum headroom the admission check compares
// against, so the check degrades gracefully on very small volumes instead of
// refusing every write.
const defaultSpaceFloor = 32 << 20 // 32 MiB

// Store is a durable spool of serialized event payloads backed by a single
// SQLite file.
//
// Thread-safety: all public operations serialize on an internal mutex, since
// SQLite does not support concurrent writers on one file. Each operation
// opens and closes its own handle; see the package documentation.
type Store struct {
	mu   sync.Mutex
	path string

	now        func() time.Time
	freeSpace  func(path string) (uint64, error)
	spaceFloor int64
}

// Option configures a Store.
type Option func(*Store)

// WithTimeSource overrides the clock used to stamp created_at.
// Used by tests to pin timestamps.
func WithTimeSource(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithFreeSpace overrides the free-space probe used by admission control.
// The default probe asks the OS for the space available on the volume
// holding the backing file.
func WithFreeSpace(probe func(path string) (uint64, error)) Option {
	return func(s *Store) {
		s.freeSpace = probe
	}
}

// WithSpaceFloor overrides the 32 MiB admission floor. Deployments on very
// constrained devices can lower it; tests use it to exercise rejection
// without multi-megabyte fixtures.
func WithSpaceFloor(bytes int64) Option {
	return func(s *Store) {
		s.spaceFloor = bytes
	}
}

// New creates a Store spooling to the SQLite file at path. The file is not
// touched until the first operation.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:       path,
		now:        time.Now,
		freeSpace:  freeSpace,
		spaceFloor: defaultSpaceFloor,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

// FileSize returns the current size of the backing file in bytes, or 0 if
// the file does not exist yet.
func (s *Store) FileSize() (int64, error) {
	fi, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("stat backing file: %w", err)
	}
	return fi.Size(), nil
}

// Wipe unconditionally destroys the backing file. The next operation
// recreates an empty schema. Used both as the corruption-recovery primitive
// and as an explicit caller-invoked reset.
func (s *Store) Wipe() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wipeLocked()
}

// wipeLocked removes the database file and its WAL sidecars. Callers must
// hold s.mu so no concurrent operation observes a half-deleted file.
func (s *Store) wipeLocked() error {
	var firstErr error
	for _, p := range []string{s.path, s.path + "-wal", s.path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return firstErr
}

// withDB runs fn against a freshly opened handle, closing the handle before
// returning on every path. Any error from open or fn other than context
// cancellation is treated as a storage fault: the backing file is destroyed
// under the held mutex and *StorageFaultError is returned, so the next
// operation starts from an empty store.
func (s *Store) withDB(op string, fn func(db *sql.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.open()
	if err != nil {
		return s.fault(op, err)
	}
	err = fn(db)
	db.Close()
	if err != nil {
		return s.fault(op, err)
	}
	return nil
}

// fault converts a storage-layer error into the uniform recovery path.
// Context cancellation is the caller's doing, not corruption, and does not
// cost the spool its contents.
func (s *Store) fault(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	_ = s.wipeLocked()
	return &StorageFaultError{Op: op, Err: err}
}

// open creates or opens the database and ensures the schema is current.
func (s *Store) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// Single writer avoids SQLITE_BUSY between our own connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates the events table if absent. On a schema-version
// mismatch the table is dropped and recreated. Idempotent.
func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version != 0 && version != currentSchemaVersion {
		if _, err := db.Exec("DROP TABLE IF EXISTS events"); err != nil {
			return fmt.Errorf("drop outdated events table: %w", err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
