package service

import (
	"time"

	"github.com/okian/supportxp/internal/domain/analytics"
	"github.com/okian/supportxp/internal/domain/model"
	"github.com/okian/supportxp/internal/domain/optimizer"
	"github.com/okian/supportxp/internal/domain/scoring"
	"github.com/okian/supportxp/internal/domain/weights"
	"github.com/okian/supportxp/internal/domain/xp"
	"github.com/okian/supportxp/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDefaultWeights sets the weights used when no configuration applies.
func WithDefaultWeights(w model.PerformanceWeights) Option {
	return func(e *Engine) {
		e.defaultWeights = w
	}
}

// WithRepository backs the configuration store with repo instead of the
// in-memory copy-on-write store.
func WithRepository(repo weights.Repository) Option {
	return func(e *Engine) {
		if repo != nil {
			e.repo = repo
		}
	}
}

// WithClock overrides the time source used for validity windows and timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator overrides how configuration and rule ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// WithTiers replaces the default tier table.
func WithTiers(tiers ...model.Tier) Option {
	return func(e *Engine) {
		if len(tiers) > 0 {
			e.tiers = tiers
		}
	}
}

// WithRecommendationThreshold sets the dimension score below which guidance is emitted.
func WithRecommendationThreshold(threshold float64) Option {
	return func(e *Engine) {
		e.recommendationThreshold = threshold
	}
}

// WithAdjustmentOptions configures the contextual score adjustments.
func WithAdjustmentOptions(opts ...scoring.AdjustmentOption) Option {
	return func(e *Engine) {
		e.adjustmentOpts = append(e.adjustmentOpts, opts...)
	}
}

// WithBonusOptions configures the XP bonus thresholds.
func WithBonusOptions(opts ...xp.BonusOption) Option {
	return func(e *Engine) {
		e.bonusOpts = append(e.bonusOpts, opts...)
	}
}

// WithAnalyticsOptions configures batch analytics.
func WithAnalyticsOptions(opts ...analytics.Option) Option {
	return func(e *Engine) {
		e.analyticsOpts = append(e.analyticsOpts, opts...)
	}
}

// WithOptimizerOptions configures weight optimization.
func WithOptimizerOptions(opts ...optimizer.Option) Option {
	return func(e *Engine) {
		e.optimizerOpts = append(e.optimizerOpts, opts...)
	}
}

// WithSeedDefaultConfiguration controls whether Start installs the built-in configuration.
func WithSeedDefaultConfiguration(seed bool) Option {
	return func(e *Engine) {
		e.seedDefault = seed
	}
}

// WithSeedConfigurations adds configurations created by Start, in order.
func WithSeedConfigurations(inputs ...weights.CreateInput) Option {
	return func(e *Engine) {
		e.seeds = append(e.seeds, inputs...)
	}
}

// WithQueueSize sets the maximum number of submissions waiting for an award.
func WithQueueSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of award workers.
func WithWorkerCount(count int) Option {
	return func(e *Engine) {
		if count > 0 {
			e.workerCount = count
		}
	}
}

// WithDedupeSize sets how many submission ids are remembered. Zero or less
// remembers every id.
func WithDedupeSize(size int) Option {
	return func(e *Engine) {
		e.dedupeSize = size
	}
}

// WithDedupeTTL forgets submission ids older than ttl.
func WithDedupeTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.dedupeTTL = ttl
	}
}
