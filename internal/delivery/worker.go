package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/spool/internal/store"
)

// DefaultFlushInterval is how often the worker flushes absent bulk pressure.
const DefaultFlushInterval = 15 * time.Second

// DefaultBulkSize is the spooled-event count that triggers an early flush,
// and the batch size used for extraction.
const DefaultBulkSize = 100

// Worker persists enqueued payloads and drains the spool to a collector.
//
// Thread-safety model:
//   - Enqueue(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine; it performs every
//     store operation, so the store sees one caller only
type Worker struct {
	store    *store.Store
	sender   Sender
	tokens   BatchTokenGenerator
	logger   *slog.Logger
	interval time.Duration
	bulkSize int
	maxAge   time.Duration
	queue    *payloadQueue
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithFlushInterval sets the periodic flush cadence.
func WithFlushInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithBulkSize sets the count threshold and extraction batch size.
func WithBulkSize(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.bulkSize = n
		}
	}
}

// WithMaxAge enables age-based expiry: on every tick, events older than d are
// deleted before flushing. Zero disables expiry. This is also the only path
// that purges malformed rows no cursor ever covers.
func WithMaxAge(d time.Duration) WorkerOption {
	return func(w *Worker) {
		w.maxAge = d
	}
}

// WithTokenGenerator overrides the batch token source. Tests use
// FixedGenerator for deterministic tokens.
func WithTokenGenerator(g BatchTokenGenerator) WorkerOption {
	return func(w *Worker) {
		w.tokens = g
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = l
	}
}

// New creates a Worker draining st through sender.
func New(st *store.Store, sender Sender, opts ...WorkerOption) *Worker {
	w := &Worker{
		store:    st,
		sender:   sender,
		tokens:   UUIDv7Generator{},
		logger:   slog.Default(),
		interval: DefaultFlushInterval,
		bulkSize: DefaultBulkSize,
		queue:    newPayloadQueue(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Enqueue hands one serialized event to the worker. Safe from any goroutine;
// never blocks on storage. Returns false once Run has shut down.
func (w *Worker) Enqueue(payload []byte) bool {
	return w.queue.push(payload)
}

// Run is the single-writer loop. It persists queued payloads, flushes when
// the spooled count reaches the bulk size and on every tick, and returns
// ctx.Err() once ctx is done. Pending payloads are persisted and a final
// flush is attempted before returning.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		for {
			payload, ok := w.queue.pop()
			if !ok {
				break
			}
			w.persist(ctx, payload)
		}

		select {
		case <-ctx.Done():
			w.shutdown(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-ticker.C:
			w.expire(ctx)
			w.flush(ctx)
		case <-w.queue.wait():
		}
	}
}

// persist inserts one payload and flushes early once the spool is full
// enough. Rejections and faults are absorbed here: the producer already
// moved on, and the store heals itself.
func (w *Worker) persist(ctx context.Context, payload []byte) {
	count, err := w.store.Insert(ctx, payload)
	switch {
	case errors.Is(err, store.ErrRejected):
		w.logger.Warn("event dropped: spool over space threshold")
	case err != nil:
		w.logger.Error("event lost to storage fault", "err", err)
	case count >= w.bulkSize:
		w.flush(ctx)
	}
}

// flush drains full batches until the spool is empty or a send fails.
// Acknowledgement (DeleteUpTo) happens strictly after a successful send.
func (w *Worker) flush(ctx context.Context) {
	for {
		batch, err := w.store.ExtractBatch(ctx, w.bulkSize)
		if err != nil {
			w.logger.Error("batch extraction failed", "err", err)
			return
		}
		if batch == nil {
			return
		}

		token := w.tokens.Generate()
		if batch.Skipped > 0 {
			w.logger.Warn("malformed events excluded from batch",
				"batch", token, "skipped", batch.Skipped)
		}

		body, err := json.Marshal(batch.Records)
		if err != nil {
			w.logger.Error("batch encoding failed", "batch", token, "err", err)
			return
		}

		if err := w.sender.Send(ctx, token, body); err != nil {
			w.logger.Warn("send failed, batch retained for next tick",
				"batch", token, "events", len(batch.Records), "err", err)
			return
		}

		remaining, err := w.store.DeleteUpTo(ctx, batch.Cursor)
		if err != nil {
			w.logger.Error("acknowledgement cleanup failed", "batch", token, "err", err)
			return
		}
		w.logger.Debug("batch delivered",
			"batch", token, "events", len(batch.Records),
			"cursor", batch.Cursor, "remaining", remaining)
	}
}

// expire drops events older than the configured maximum age.
func (w *Worker) expire(ctx context.Context) {
	if w.maxAge <= 0 {
		return
	}
	threshold := time.Now().Add(-w.maxAge).UnixMilli()
	if _, err := w.store.DeleteOlderThan(ctx, threshold); err != nil {
		w.logger.Error("expiry failed", "err", err)
	}
}

// shutdown persists whatever is still queued and attempts one last flush.
// Runs on a context detached from the cancelled one.
func (w *Worker) shutdown(ctx context.Context) {
	w.queue.close()
	for {
		payload, ok := w.queue.pop()
		if !ok {
			break
		}
		w.persist(ctx, payload)
	}
	w.flush(ctx)
}
