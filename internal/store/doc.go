// Package store provides the SQLite-backed durable event spool.
//
// The store buffers serialized event payloads on disk until a remote
// collector has acknowledged them. It is a bounded append-only queue:
//   - Insert: admission-checked append with a server-assigned id and timestamp
//   - ExtractBatch: oldest-first read returning an acknowledgement cursor
//   - DeleteUpTo / DeleteOlderThan: cursor- and age-bounded cleanup
//   - Wipe: wholesale destruction of the backing file
//
// # Lifecycle
//
// No connection is held between calls. Every operation opens the database,
// creating the schema if the file is absent, does its work, and closes the
// handle before returning. The store's only persistent identity is the
// backing file, so the store is always in one of two states: usable, or
// absent and recreated on next use.
//
// # Admission control
//
// Insert refuses to write once the backing file has grown past the larger of
// the volume's free space and a 32 MiB floor. The check is advisory: disk
// consumption by other processes races with it, and the floor keeps very
// small volumes writable.
//
// # Corruption recovery
//
// Every operation's fault path is the same: the handle is closed, the backing
// file and its WAL sidecars are deleted, and the call returns
// *StorageFaultError. The next operation recreates an empty schema. No
// salvage is attempted; availability is preferred over the contents of a
// corrupted local buffer.
//
// # Database configuration
//
//   - WAL mode: readers do not block the writer
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
package store
