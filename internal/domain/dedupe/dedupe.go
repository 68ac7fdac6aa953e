// Package dedupe tracks submission ids so each activity is awarded at most once.
package dedupe

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultMaxSize = 50000

// Deduper records seen submission ids.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a submission rejected after SeenAndRecord
	// (for example on queue backpressure) can be retried.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// lruDeduper remembers at most maxSize ids, evicting the least recently
// seen first.
// With a ttl, ids are also forgotten once they are older than ttl.
type lruDeduper struct {
	mu      sync.Mutex
	seen    *expirable.LRU[string, struct{}]
	maxSize int
	ttl     time.Duration
	onSize  func(int)
}

// NewInMemoryDeduper creates a deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &lruDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	if d.maxSize < 0 {
		d.maxSize = 0
	}
	// size 0 is unbounded, ttl 0 never expires
	d.seen = expirable.NewLRU[string, struct{}](d.maxSize, nil, d.ttl)
	return d
}

func (d *lruDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen.Get(id); ok {
		return true
	}
	d.seen.Add(id, struct{}{})
	d.report()
	return false
}

func (d *lruDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.seen.Remove(id) {
		d.report()
	}
}

func (d *lruDeduper) Size() int64 {
	return int64(d.seen.Len())
}

// report must be called with mu held.
func (d *lruDeduper) report() {
	if d.onSize != nil {
		d.onSize(d.seen.Len())
	}
}
