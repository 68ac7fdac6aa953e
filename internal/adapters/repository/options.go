// Package repository provides the in-memory weight configuration store and
// XP ledger.
package repository

import "github.com/okian/supportxp/internal/domain/model"

// Option applies a configuration option to the ConfigStore.
type Option func(*ConfigStore)

// WithSeed preloads configurations into the first snapshot.
func WithSeed(configs ...model.WeightConfiguration) Option {
	return func(s *ConfigStore) {
		s.seed = append(s.seed, configs...)
	}
}

// WithSnapshotHook registers a callback invoked after every published
// snapshot with the number of stored configurations.
func WithSnapshotHook(hook func(total, active int)) Option {
	return func(s *ConfigStore) {
		if hook != nil {
			s.onPublish = hook
		}
	}
}

// LedgerOption applies a configuration option to the XPLedger.
type LedgerOption func(*XPLedger)

// WithHistoryLimit caps the awards kept per user.
func WithHistoryLimit(n int) LedgerOption {
	return func(l *XPLedger) {
		if n > 0 {
			l.historyLimit = n
		}
	}
}

// WithAwardedLimit caps how many submission ids the ledger remembers for
// its at-most-once check; the least recently awarded are forgotten first.
func WithAwardedLimit(n int) LedgerOption {
	return func(l *XPLedger) {
		if n > 0 {
			l.awardedLimit = n
		}
	}
}

// WithRecordHook is called with the user count after every new award.
func WithRecordHook(hook func(users int)) LedgerOption {
	return func(l *XPLedger) {
		if hook != nil {
			l.onRecord = hook
		}
	}
}
