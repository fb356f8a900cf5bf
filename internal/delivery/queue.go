package delivery

import "sync"

// payloadQueue is a thread-safe FIFO of pending event payloads.
//
// The queue is unbounded so producers never block; back-pressure against
// runaway growth is the store's admission check, not the queue. A buffered
// signal channel of size one coalesces wakeups so the worker can wait
// without polling.
type payloadQueue struct {
	mu     sync.Mutex
	items  [][]byte
	closed bool
	signal chan struct{}
}

func newPayloadQueue() *payloadQueue {
	return &payloadQueue{
		signal: make(chan struct{}, 1),
	}
}

// push appends a payload. Safe from any goroutine.
// Returns false once the queue is closed.
func (q *payloadQueue) push(p []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, p)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// pop removes and returns the front payload without blocking.
func (q *payloadQueue) pop() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	p := q.items[0]
	q.items = q.items[1:]
	return p, true
}

// wait returns a channel that receives after a push. Multiple pushes may
// coalesce into one receive, so callers must drain with pop until empty.
func (q *payloadQueue) wait() <-chan struct{} {
	return q.signal
}

// close rejects further pushes. Already-queued payloads remain poppable.
func (q *payloadQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

func (q *payloadQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
