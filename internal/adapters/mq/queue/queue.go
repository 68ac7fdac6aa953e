// Package queue buffers activity submissions between intake and the award workers.
package queue

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/okian/supportxp/internal/domain/model"
)

const defaultCapacity = 10000

// Submission is the payload type flowing through the queue.
type Submission = model.ActivitySubmission

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a submission. It fails with ErrFull instead of blocking.
	Enqueue(ctx context.Context, s Submission) error

	// Dequeue returns the channel workers receive from. It is closed by Close
	// once the remaining submissions have been drained.
	Dequeue() <-chan Submission

	Len() int
	Cap() int

	// Close stops intake. Queued submissions stay readable.
	Close() error
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	items    chan Submission
	capacity int
	onDepth  func(int)

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan Submission, q.capacity)
	q.report()
	return q
}

// Enqueue adds s to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s Submission) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "enqueue")
	}

	select {
	case q.items <- s:
		q.report()
		return nil
	default:
		return errors.Wrapf(ErrFull, "capacity %d", q.capacity)
	}
}

// Dequeue returns the receive side of the queue.
func (q *InMemoryQueue) Dequeue() <-chan Submission {
	return q.items
}

// Len returns the number of queued submissions.
func (q *InMemoryQueue) Len() int {
	n := len(q.items)
	if q.onDepth != nil {
		q.onDepth(n)
	}
	return n
}

// Cap returns the queue capacity.
func (q *InMemoryQueue) Cap() int {
	return q.capacity
}

// Close stops intake. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed reports whether Close has been called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) report() {
	if q.onDepth != nil {
		q.onDepth(len(q.items))
	}
}
