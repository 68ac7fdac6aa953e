// Package service composes the scoring components into the Engine used by
// surrounding services.
package service

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/okian/supportxp/internal/adapters/mq/queue"
	"github.com/okian/supportxp/internal/adapters/mq/worker"
	"github.com/okian/supportxp/internal/adapters/repository"
	"github.com/okian/supportxp/internal/domain/analytics"
	"github.com/okian/supportxp/internal/domain/dedupe"
	"github.com/okian/supportxp/internal/domain/model"
	"github.com/okian/supportxp/internal/domain/optimizer"
	"github.com/okian/supportxp/internal/domain/scoring"
	"github.com/okian/supportxp/internal/domain/validation"
	"github.com/okian/supportxp/internal/domain/weights"
	"github.com/okian/supportxp/internal/domain/xp"
	"github.com/okian/supportxp/pkg/logger"
	"github.com/okian/supportxp/pkg/metrics"
)

// Operation labels for calculation metrics.
const (
	opPerformanceScore = "performance_score"
	opXP               = "xp"
	opOptimize         = "optimize_weights"
	opAnalytics        = "analytics"
)

// Submission outcome labels.
const (
	submissionAccepted     = "accepted"
	submissionDuplicate    = "duplicate"
	submissionRejected     = "rejected"
	submissionBackpressure = "backpressure"
)

// ScoringRequest carries the per-call inputs of CalculatePerformanceScore.
type ScoringRequest = model.ScoringRequest

// Engine is the performance and XP scoring engine.
type Engine struct {
	mu      sync.Mutex
	started bool

	// Configuration
	defaultWeights          model.PerformanceWeights
	recommendationThreshold float64
	tiers                   []model.Tier
	adjustmentOpts          []scoring.AdjustmentOption
	bonusOpts               []xp.BonusOption
	analyticsOpts           []analytics.Option
	optimizerOpts           []optimizer.Option
	seedDefault             bool
	seeds                   []weights.CreateInput
	now                     func() time.Time
	newID                   func() string
	queueSize               int
	workerCount             int
	dedupeSize              int
	dedupeTTL               time.Duration

	// Components
	repo        weights.Repository
	validator   *validation.Validator
	store       *weights.Store
	resolver    *weights.Resolver
	calculator  *scoring.Calculator
	classifier  *scoring.TierClassifier
	adjustments *scoring.AdjustmentEngine
	recommender *scoring.RecommendationGenerator
	aggregator  *xp.Aggregator
	analyzer    *analytics.Engine
	optimizer   *optimizer.Optimizer

	// Intake
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	ledger  *repository.XPLedger

	logger logger.Logger
}

// New constructs an Engine. Configurations are seeded by Start.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		defaultWeights: model.PerformanceWeights{
			TechnicalAccuracy:    0.35,
			CommunicationQuality: 0.25,
			CustomerSatisfaction: 0.25,
			ProcessCompliance:    0.15,
		},
		recommendationThreshold: 70,
		tiers:                   scoring.DefaultTiers(),
		seedDefault:             true,
		now:                     time.Now,
		newID:                   uuid.NewString,
		queueSize:               10000,
		workerCount:             runtime.NumCPU(),
		dedupeSize:              50000,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logger.Get().Named("engine")
	}

	e.validator = validation.New()
	if res := e.validator.ValidateWeights(e.defaultWeights); !res.Valid {
		return nil, errors.Wrapf(weights.ErrInvalidWeightSum, "default weights: %v", res.Errors)
	}

	if e.repo == nil {
		repo, err := repository.NewConfigStore(repository.WithSnapshotHook(func(_, active int) {
			metrics.UpdateActiveConfigurations(active)
		}))
		if err != nil {
			return nil, errors.Wrap(err, "create configuration repository")
		}
		e.repo = repo
	}

	e.store = weights.NewStore(e.repo, e.validator, weights.WithClock(e.now), weights.WithIDGenerator(e.newID))
	e.resolver = weights.NewResolver(e.defaultWeights)
	e.calculator = scoring.NewCalculator()
	e.classifier = scoring.NewTierClassifier(e.tiers...)
	e.adjustments = scoring.NewAdjustmentEngine(e.adjustmentOpts...)
	e.recommender = scoring.NewRecommendationGenerator(e.recommendationThreshold)
	e.aggregator = xp.NewAggregator(xp.NewBonusEngine(e.bonusOpts...))
	e.analyzer = analytics.NewEngine(e.calculator, e.analyticsOpts...)
	e.optimizer = optimizer.New(e.calculator, e.optimizerOpts...)

	e.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(e.dedupeSize),
		dedupe.WithTTL(e.dedupeTTL),
		dedupe.WithSizeHook(metrics.UpdateDedupeEntries),
	)
	e.queue = queue.NewInMemoryQueue(
		queue.WithCapacity(e.queueSize),
		queue.WithDepthHook(metrics.UpdateQueueDepth),
	)
	metrics.UpdateQueueCapacity(e.queue.Cap())
	// the ledger guard remembers as many ids as the deduper in front of it
	e.ledger = repository.NewXPLedger(repository.WithAwardedLimit(e.dedupeSize))
	e.pool = worker.NewPool(e.queue, e, e.ledger,
		worker.WithSize(e.workerCount),
		worker.WithClock(e.now),
		worker.WithLogger(e.logger.Named("worker-pool")),
	)

	return e, nil
}

// Start seeds the built-in and configured weight configurations. Calling it
// again is a no-op.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return nil
	}

	seeds := e.seeds
	if e.seedDefault {
		seeds = append([]weights.CreateInput{DefaultConfiguration(e.defaultWeights)}, seeds...)
	}
	for _, in := range seeds {
		cfg, err := e.store.Create(ctx, in)
		if err != nil {
			return errors.Wrapf(err, "seed weight configuration %q", in.Name)
		}
		e.logger.Info(ctx, "seeded weight configuration",
			logger.String("id", cfg.ID),
			logger.String("name", cfg.Name),
			logger.Int("rules", len(cfg.ContextRules)),
		)
	}

	// workers outlive the start context and stop through Stop
	e.pool.Start(context.WithoutCancel(ctx))

	e.started = true
	e.logger.Info(ctx, "scoring engine started",
		logger.Int("configurations", len(seeds)),
		logger.Int("workers", e.pool.Size()),
		logger.Int("queueSize", e.queue.Cap()),
		logger.Int("dedupeSize", e.dedupeSize),
	)
	return nil
}

// Stop closes intake and waits for queued submissions to be awarded.
func (e *Engine) Stop(ctx context.Context) error {
	if err := e.pool.Shutdown(ctx); err != nil {
		return err
	}
	e.logger.Info(ctx, "scoring engine stopped", logger.Any("processed", e.pool.Processed()))
	return nil
}

// SubmitActivity validates s and queues it for an asynchronous XP award.
// It reports true when s.ID was already submitted; the duplicate is not
// queued again.
func (e *Engine) SubmitActivity(ctx context.Context, s model.ActivitySubmission) (bool, error) {
	if res := e.validator.ValidateSubmission(s); !res.Valid {
		metrics.RecordSubmission(submissionRejected)
		metrics.RecordValidationFailure("submission")
		return false, errors.Wrap(ErrInvalidSubmission, strings.Join(res.Errors, "; "))
	}
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = e.now()
	}

	if e.deduper.SeenAndRecord(ctx, s.ID) {
		metrics.RecordSubmission(submissionDuplicate)
		e.logger.Debug(ctx, "duplicate submission", logger.String("id", s.ID))
		return true, nil
	}

	if err := e.queue.Enqueue(ctx, s); err != nil {
		// allow the client to retry the same id
		e.deduper.Unrecord(ctx, s.ID)
		metrics.RecordSubmission(submissionBackpressure)
		e.logger.Warn(ctx, "submission not queued", logger.String("id", s.ID), logger.Error(err))
		if errors.Is(err, queue.ErrClosed) {
			return false, errors.Mark(err, ErrStopped)
		}
		return false, errors.Mark(err, ErrBackpressure)
	}

	metrics.RecordSubmission(submissionAccepted)
	return false, nil
}

// GetXPStanding returns the accumulated XP and rank of userID.
func (e *Engine) GetXPStanding(ctx context.Context, userID string) (model.XPStanding, error) {
	st, err := e.ledger.Standing(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return model.XPStanding{}, errors.Mark(err, ErrUserNotFound)
	}
	return st, err
}

// GetUserAwards returns the most recent awards of userID.
func (e *Engine) GetUserAwards(ctx context.Context, userID string) []model.Award {
	return e.ledger.Awards(ctx, userID)
}

// GetXPLeaderboard returns the n users with the most XP.
func (e *Engine) GetXPLeaderboard(ctx context.Context, n int) ([]model.XPStanding, error) {
	return e.ledger.TopN(ctx, n)
}

// GetIntakeStats describes the award pipeline.
func (e *Engine) GetIntakeStats(_ context.Context) model.IntakeStats {
	return model.IntakeStats{
		Workers:       e.pool.Size(),
		QueueCapacity: e.queue.Cap(),
		QueueLength:   e.queue.Len(),
		DedupeEntries: e.deduper.Size(),
		Processed:     e.pool.Processed(),
		Failed:        e.pool.Failed(),
		Users:         e.ledger.Users(),
	}
}

// CalculatePerformanceScore runs the full pipeline: weight resolution,
// weighted scoring, contextual adjustments, tier classification and
// recommendations. Out-of-range metrics are scored and clipped.
func (e *Engine) CalculatePerformanceScore(ctx context.Context, m model.PerformanceMetrics, req ScoringRequest) (model.PerformanceCalculationResult, error) {
	start := time.Now()

	if err := e.checkRequestWeights(req); err != nil {
		metrics.RecordValidationFailure("weights")
		return model.PerformanceCalculationResult{}, err
	}
	configs, err := e.store.Effective(ctx, e.now())
	if err != nil {
		return model.PerformanceCalculationResult{}, err
	}
	resolved := e.resolver.Resolve(req.BaseWeights, req.Context, configs, req.ContextRules)
	e.logger.Debug(ctx, "resolved weights",
		logger.String("configuration", resolved.ConfigurationID),
		logger.Int("matchedRules", len(resolved.MatchedRules)),
		logger.Any("context", req.Context),
	)

	breakdown := e.calculator.Compute(m, resolved.Weights)
	final, adjustments := e.adjustments.Apply(breakdown.OverallScore, m, req.Context, resolved.MatchedRules)
	tier := e.classifier.Classify(final)

	result := model.PerformanceCalculationResult{
		OverallScore:    final,
		WeightedScores:  breakdown.WeightedScores,
		AppliedWeights:  resolved.Weights,
		ConfigurationID: resolved.ConfigurationID,
		ContextRulesApplied: lo.Map(resolved.MatchedRules, func(r model.ContextRule, _ int) string {
			return r.Name
		}),
		Breakdown: model.PerformanceBreakdown{
			RawScore:    breakdown.OverallScore,
			Adjustments: adjustments,
			Tier:        tier,
		},
		Recommendations: e.recommender.Generate(breakdown.WeightedScores),
	}

	metrics.RecordCalculation(opPerformanceScore, sinceMs(start))
	metrics.RecordTierAssignment(tier.Name)
	return result, nil
}

// checkRequestWeights rejects caller supplied weights outside [0,1]. Stored
// configurations are checked on write, so only request inputs are seen here.
func (e *Engine) checkRequestWeights(req ScoringRequest) error {
	if req.BaseWeights != nil {
		if res := e.validator.ValidateWeightRange(*req.BaseWeights); !res.Valid {
			return invalidRequest("base weights: %s", strings.Join(res.Errors, "; "))
		}
	}
	for _, rule := range req.ContextRules {
		if rule.Weights == nil {
			continue
		}
		if res := e.validator.ValidateOverride(*rule.Weights); !res.Valid {
			return invalidRequest("context rule %q: %s", rule.Name, strings.Join(res.Errors, "; "))
		}
	}
	return nil
}

func invalidRequest(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), weights.ErrInvalidConfiguration)
}

// ValidatePerformanceMetrics reports out-of-range metric values.
func (e *Engine) ValidatePerformanceMetrics(_ context.Context, m model.PerformanceMetrics) model.ValidationResult {
	res := e.validator.ValidateMetrics(m)
	if !res.Valid {
		metrics.RecordValidationFailure("metrics")
	}
	return res
}

// ValidateRawMetrics decodes a loosely typed metrics record, for example a
// decoded JSON object, reporting missing, unknown and out-of-range fields.
func (e *Engine) ValidateRawMetrics(_ context.Context, raw map[string]any) model.ValidationResult {
	_, res := e.validator.DecodeMetrics(raw)
	if !res.Valid {
		metrics.RecordValidationFailure("metrics")
	}
	return res
}

// ValidateActivityData reports unknown enums and out-of-range metrics.
func (e *Engine) ValidateActivityData(_ context.Context, a model.ActivityData) model.ValidationResult {
	res := e.validator.ValidateActivityData(a)
	if !res.Valid {
		metrics.RecordValidationFailure("activity")
	}
	return res
}

// CalculateXP awards XP for a completed activity.
func (e *Engine) CalculateXP(ctx context.Context, a model.ActivityData) (model.XPCalculationResult, error) {
	start := time.Now()
	res, err := e.aggregator.Calculate(a)
	if err != nil {
		metrics.RecordValidationFailure("activity")
		return model.XPCalculationResult{}, err
	}

	metrics.RecordCalculation(opXP, sinceMs(start))
	metrics.RecordXPAwarded(res.TotalXP)
	for _, b := range res.Breakdown.Bonuses {
		metrics.RecordBonusAwarded(b.Type)
	}
	e.logger.Debug(ctx, "calculated xp",
		logger.String("type", string(a.Type)),
		logger.String("difficulty", string(a.ScenarioDifficulty)),
		logger.Int("total", res.TotalXP),
	)
	return res, nil
}

// GetXPRanges returns the XP envelope per activity type.
func (e *Engine) GetXPRanges(_ context.Context) map[model.ActivityType]model.XPRange {
	return e.aggregator.Ranges()
}

// CalculateMaxPossibleXP returns the largest award available for t at d.
func (e *Engine) CalculateMaxPossibleXP(_ context.Context, t model.ActivityType, d model.Difficulty) (int, error) {
	return e.aggregator.MaxPossibleXP(t, d)
}

// CreateWeightConfiguration validates and stores a new configuration.
func (e *Engine) CreateWeightConfiguration(ctx context.Context, in weights.CreateInput) (model.WeightConfiguration, error) {
	cfg, err := e.store.Create(ctx, in)
	if err != nil {
		metrics.RecordConfigurationMutation("create", "rejected")
		e.logger.Warn(ctx, "rejected weight configuration", logger.String("name", in.Name), logger.Error(err))
		return model.WeightConfiguration{}, err
	}
	metrics.RecordConfigurationMutation("create", "ok")
	e.logger.Info(ctx, "created weight configuration",
		logger.String("id", cfg.ID),
		logger.String("name", cfg.Name),
		logger.Int("priority", cfg.Priority),
	)
	return cfg, nil
}

// UpdateWeightConfiguration merges in into the configuration with id. It
// returns (nil, nil) when id is unknown.
func (e *Engine) UpdateWeightConfiguration(ctx context.Context, id string, in weights.UpdateInput) (*model.WeightConfiguration, error) {
	cfg, err := e.store.Update(ctx, id, in)
	switch {
	case err != nil:
		metrics.RecordConfigurationMutation("update", "rejected")
		e.logger.Warn(ctx, "rejected weight configuration update", logger.String("id", id), logger.Error(err))
		return nil, err
	case cfg == nil:
		metrics.RecordConfigurationMutation("update", "not_found")
		e.logger.Debug(ctx, "weight configuration not found", logger.String("id", id))
		return nil, nil
	}
	metrics.RecordConfigurationMutation("update", "ok")
	e.logger.Info(ctx, "updated weight configuration",
		logger.String("id", cfg.ID),
		logger.Bool("active", cfg.Active),
	)
	return cfg, nil
}

// GetWeightConfigurations returns the active configurations, highest priority first.
func (e *Engine) GetWeightConfigurations(ctx context.Context) ([]model.WeightConfiguration, error) {
	return e.store.List(ctx)
}

// GetWeightConfiguration returns the configuration with id, or nil.
func (e *Engine) GetWeightConfiguration(ctx context.Context, id string) (*model.WeightConfiguration, error) {
	return e.store.Get(ctx, id)
}

// OptimizeWeights suggests weights for sc learned from samples.
func (e *Engine) OptimizeWeights(ctx context.Context, sc model.ScoringContext, samples []model.PerformanceMetrics) (model.WeightOptimizationResult, error) {
	start := time.Now()
	current, err := e.currentWeights(ctx, sc)
	if err != nil {
		return model.WeightOptimizationResult{}, err
	}

	res := e.optimizer.Optimize(current, samples)

	metrics.RecordCalculation(opOptimize, sinceMs(start))
	metrics.UpdateOptimizerConfidence(res.ConfidenceScore)
	e.logger.Info(ctx, "optimized weights",
		logger.Int("samples", len(samples)),
		logger.Float64("expectedImprovement", res.ExpectedImprovement),
		logger.Float64("confidence", res.ConfidenceScore),
		logger.Duration("took", time.Since(start)),
	)
	return res, nil
}

// GetPerformanceAnalytics summarizes a batch of samples.
func (e *Engine) GetPerformanceAnalytics(ctx context.Context, samples []model.PerformanceMetrics) (model.PerformanceAnalytics, error) {
	start := time.Now()
	current, err := e.currentWeights(ctx, model.ScoringContext{})
	if err != nil {
		return model.PerformanceAnalytics{}, err
	}

	out := e.analyzer.Analyze(samples, current)

	metrics.RecordCalculation(opAnalytics, sinceMs(start))
	metrics.RecordAnalyticsBatch(len(samples))
	return out, nil
}

func (e *Engine) currentWeights(ctx context.Context, sc model.ScoringContext) (model.PerformanceWeights, error) {
	configs, err := e.store.Effective(ctx, e.now())
	if err != nil {
		return model.PerformanceWeights{}, err
	}
	return e.resolver.Resolve(nil, sc, configs, nil).Weights, nil
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
