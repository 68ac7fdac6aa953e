package dedupe

import "time"

// Option applies a configuration option to the deduper.
type Option func(*lruDeduper)

// WithMaxSize sets the maximum number of ids to remember.
// If maxSize > 0 the least recently seen ids are evicted first.
// If maxSize <= 0 the deduper is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *lruDeduper) {
		d.maxSize = maxSize
	}
}

// WithTTL forgets ids older than ttl. Zero keeps ids until evicted.
func WithTTL(ttl time.Duration) Option {
	return func(d *lruDeduper) {
		if ttl > 0 {
			d.ttl = ttl
		}
	}
}

// WithSizeHook is called with the entry count after every change.
func WithSizeHook(fn func(int)) Option {
	return func(d *lruDeduper) {
		d.onSize = fn
	}
}
