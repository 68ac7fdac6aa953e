package queue

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum number of queued submissions.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithDepthHook is called with the queue length after every change.
func WithDepthHook(fn func(depth int)) Option {
	return func(q *InMemoryQueue) {
		q.onDepth = fn
	}
}
