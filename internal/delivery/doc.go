// Package delivery drains the event spool to a remote collector.
//
// The Worker is a single-writer loop: producers hand payloads to Enqueue from
// any goroutine, and exactly one Run goroutine owns all store access. That
// keeps blocking storage I/O off producer paths and guarantees at most one
// in-flight store operation at a time.
//
// Flushing happens when the spooled count reaches the bulk size and on every
// interval tick: extract a batch, send it, and acknowledge its cursor only
// after the collector accepted it. A failed send leaves the batch spooled for
// the next tick. Transport policy beyond that single retry cadence lives in
// the Sender implementation, not here.
package delivery
