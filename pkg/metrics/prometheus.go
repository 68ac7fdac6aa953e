// Package metrics provides Prometheus metrics for the support XP engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus series the engine exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	xpBuckets        []float64
	enabled          bool
	registry         prometheus.Registerer

	// Calculation metrics
	calculations        *prometheus.CounterVec
	calculationDuration *prometheus.HistogramVec
	validationFailures  *prometheus.CounterVec

	// Outcome metrics
	xpAwarded       prometheus.Histogram
	tierAssignments *prometheus.CounterVec
	bonusesAwarded  *prometheus.CounterVec

	// Configuration metrics
	activeConfigurations  prometheus.Gauge
	configurationMutation *prometheus.CounterVec

	// Learning metrics
	optimizerConfidence prometheus.Gauge
	analyticsBatchSize  prometheus.Histogram

	// Intake metrics
	submissions   *prometheus.CounterVec
	queueDepth    prometheus.Gauge
	queueCapacity prometheus.Gauge
	dedupeEntries prometheus.Gauge
	workerCount   prometheus.Gauge
	awards        *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "supportxp",
		subsystem:        "engine",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		xpBuckets:        []float64{1, 5, 10, 20, 30, 45, 60, 80, 100},
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// Enabled reports whether recording is active.
func (m *Manager) Enabled() bool { return m.enabled }

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per series
	auto := promauto.With(m.registry)

	m.calculations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calculations_total",
		Help:      "Total number of engine calculations by operation",
	}, []string{"operation"})

	m.calculationDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calculation_duration_milliseconds",
		Help:      "Engine calculation latency in milliseconds by operation",
		Buckets:   m.histogramBuckets,
	}, []string{"operation"})

	m.validationFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_failures_total",
		Help:      "Total number of rejected inputs by kind",
	}, []string{"kind"})

	m.xpAwarded = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "xp_awarded",
		Help:      "Distribution of total XP awarded per activity",
		Buckets:   m.xpBuckets,
	})

	m.tierAssignments = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tier_assignments_total",
		Help:      "Total number of performance scores by tier",
	}, []string{"tier"})

	m.bonusesAwarded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "bonuses_awarded_total",
		Help:      "Total number of XP bonuses granted by bonus type",
	}, []string{"bonus"})

	m.activeConfigurations = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "weight_configurations_active",
		Help:      "Number of active weight configurations",
	})

	m.configurationMutation = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "weight_configuration_mutations_total",
		Help:      "Weight configuration create and update attempts by outcome",
	}, []string{"operation", "outcome"})

	m.optimizerConfidence = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "optimizer_confidence",
		Help:      "Confidence of the most recent weight optimization",
	})

	m.analyticsBatchSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analytics_batch_size",
		Help:      "Number of samples per analytics request",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	m.submissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_total",
		Help:      "Activity submissions by intake outcome",
	}, []string{"outcome"})

	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_depth",
		Help:      "Submissions waiting for an XP award",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum number of queued submissions",
	})

	m.dedupeEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dedupe_entries",
		Help:      "Submission ids remembered for idempotency",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "workers",
		Help:      "Number of award workers",
	})

	m.awards = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "awards_total",
		Help:      "Processed submissions by award outcome",
	}, []string{"outcome"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request latency in milliseconds by endpoint and method",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})
}

// RecordCalculation counts one calculation and its latency.
func (m *Manager) RecordCalculation(operation string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.calculations.WithLabelValues(operation).Inc()
	m.calculationDuration.WithLabelValues(operation).Observe(latencyMs)
}

// RecordValidationFailure counts a rejected input.
func (m *Manager) RecordValidationFailure(kind string) {
	if !m.enabled {
		return
	}
	m.validationFailures.WithLabelValues(kind).Inc()
}

// RecordXPAwarded observes a total XP award.
func (m *Manager) RecordXPAwarded(total int) {
	if !m.enabled {
		return
	}
	m.xpAwarded.Observe(float64(total))
}

// RecordTierAssignment counts a tier classification.
func (m *Manager) RecordTierAssignment(tier string) {
	if !m.enabled {
		return
	}
	m.tierAssignments.WithLabelValues(tier).Inc()
}

// RecordBonusAwarded counts a granted bonus.
func (m *Manager) RecordBonusAwarded(bonus string) {
	if !m.enabled {
		return
	}
	m.bonusesAwarded.WithLabelValues(bonus).Inc()
}

// UpdateActiveConfigurations sets the active configuration gauge.
func (m *Manager) UpdateActiveConfigurations(count int) {
	if !m.enabled {
		return
	}
	m.activeConfigurations.Set(float64(count))
}

// RecordConfigurationMutation counts a create or update attempt.
func (m *Manager) RecordConfigurationMutation(operation, outcome string) {
	if !m.enabled {
		return
	}
	m.configurationMutation.WithLabelValues(operation, outcome).Inc()
}

// UpdateOptimizerConfidence sets the optimizer confidence gauge.
func (m *Manager) UpdateOptimizerConfidence(confidence float64) {
	if !m.enabled {
		return
	}
	m.optimizerConfidence.Set(confidence)
}

// RecordAnalyticsBatch observes an analytics batch size.
func (m *Manager) RecordAnalyticsBatch(size int) {
	if !m.enabled {
		return
	}
	m.analyticsBatchSize.Observe(float64(size))
}

// RecordSubmission counts an activity submission by intake outcome.
func (m *Manager) RecordSubmission(outcome string) {
	if !m.enabled {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

// UpdateQueueDepth sets the queued submission gauge.
func (m *Manager) UpdateQueueDepth(depth int) {
	if !m.enabled {
		return
	}
	m.queueDepth.Set(float64(depth))
}

// UpdateQueueCapacity sets the queue capacity gauge.
func (m *Manager) UpdateQueueCapacity(capacity int) {
	if !m.enabled {
		return
	}
	m.queueCapacity.Set(float64(capacity))
}

// UpdateDedupeEntries sets the remembered submission id gauge.
func (m *Manager) UpdateDedupeEntries(n int) {
	if !m.enabled {
		return
	}
	m.dedupeEntries.Set(float64(n))
}

// UpdateWorkerCount sets the award worker gauge.
func (m *Manager) UpdateWorkerCount(n int) {
	if !m.enabled {
		return
	}
	m.workerCount.Set(float64(n))
}

// RecordAward counts a processed submission by outcome.
func (m *Manager) RecordAward(outcome string) {
	if !m.enabled {
		return
	}
	m.awards.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest counts a request and observes its latency.
func (m *Manager) RecordHTTPRequest(endpoint, method, status string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method).Observe(latencyMs)
}

// Package-level helpers record on the global manager.

// RecordCalculation counts one calculation and its latency.
func RecordCalculation(operation string, latencyMs float64) {
	globalManager.RecordCalculation(operation, latencyMs)
}

// RecordValidationFailure counts a rejected input.
func RecordValidationFailure(kind string) {
	globalManager.RecordValidationFailure(kind)
}

// RecordXPAwarded observes a total XP award.
func RecordXPAwarded(total int) {
	globalManager.RecordXPAwarded(total)
}

// RecordTierAssignment counts a tier classification.
func RecordTierAssignment(tier string) {
	globalManager.RecordTierAssignment(tier)
}

// RecordBonusAwarded counts a granted bonus.
func RecordBonusAwarded(bonus string) {
	globalManager.RecordBonusAwarded(bonus)
}

// UpdateActiveConfigurations sets the active configuration gauge.
func UpdateActiveConfigurations(count int) {
	globalManager.UpdateActiveConfigurations(count)
}

// RecordConfigurationMutation counts a create or update attempt.
func RecordConfigurationMutation(operation, outcome string) {
	globalManager.RecordConfigurationMutation(operation, outcome)
}

// UpdateOptimizerConfidence sets the optimizer confidence gauge.
func UpdateOptimizerConfidence(confidence float64) {
	globalManager.UpdateOptimizerConfidence(confidence)
}

// RecordAnalyticsBatch observes an analytics batch size.
func RecordAnalyticsBatch(size int) {
	globalManager.RecordAnalyticsBatch(size)
}

// RecordSubmission counts an activity submission by intake outcome.
func RecordSubmission(outcome string) {
	globalManager.RecordSubmission(outcome)
}

// UpdateQueueDepth sets the queued submission gauge.
func UpdateQueueDepth(depth int) {
	globalManager.UpdateQueueDepth(depth)
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.UpdateQueueCapacity(capacity)
}

// UpdateDedupeEntries sets the remembered submission id gauge.
func UpdateDedupeEntries(n int) {
	globalManager.UpdateDedupeEntries(n)
}

// UpdateWorkerCount sets the award worker gauge.
func UpdateWorkerCount(n int) {
	globalManager.UpdateWorkerCount(n)
}

// RecordAward counts a processed submission by outcome.
func RecordAward(outcome string) {
	globalManager.RecordAward(outcome)
}

// RecordHTTPRequest counts a request and observes its latency.
func RecordHTTPRequest(endpoint, method, status string, latencyMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, status, latencyMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
