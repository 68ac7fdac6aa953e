// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - External errors are wrapped with this package's sentinel errors.
package config

import "time"

// WeightsConfig is a weight vector as written in configuration files.
type WeightsConfig struct {
	TechnicalAccuracy    float64 `koanf:"technical_accuracy"`
	CommunicationQuality float64 `koanf:"communication_quality"`
	CustomerSatisfaction float64 `koanf:"customer_satisfaction"`
	ProcessCompliance    float64 `koanf:"process_compliance"`
}

// Sum returns the total of all weights.
func (w WeightsConfig) Sum() float64 {
	return w.TechnicalAccuracy + w.CommunicationQuality + w.CustomerSatisfaction + w.ProcessCompliance
}

// AdjustmentConfig is a scalar score delta of a context rule.
type AdjustmentConfig struct {
	Value  float64 `koanf:"value"`
	Reason string  `koanf:"reason"`
}

// ContextRuleConfig describes a context rule. Weights uses dimension names
// (snake_case or camelCase) as keys.
type ContextRuleConfig struct {
	Name           string             `koanf:"name"`
	Priority       int                `koanf:"priority"`
	ActivityTypes  []string           `koanf:"activity_types"`
	Difficulties   []string           `koanf:"difficulties"`
	UserExperience []string           `koanf:"user_experience"`
	TimeOfDay      []string           `koanf:"time_of_day"`
	Weights        map[string]float64 `koanf:"weights"`
	Adjustment     *AdjustmentConfig  `koanf:"adjustment"`
}

// WeightConfigurationConfig seeds a weight configuration at startup.
type WeightConfigurationConfig struct {
	Name         string              `koanf:"name"`
	Description  string              `koanf:"description"`
	Priority     int                 `koanf:"priority"`
	Active       *bool               `koanf:"active"`
	CreatedBy    string              `koanf:"created_by"`
	Weights      WeightsConfig       `koanf:"weights"`
	ContextRules []ContextRuleConfig `koanf:"context_rules"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the submissions waiting for an XP award.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount is the number of award workers; 0 uses the CPU count.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize is how many submission ids are remembered; 0 is unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	// DedupeTTL forgets submission ids after this long; 0 keeps them until evicted.
	DedupeTTL time.Duration `koanf:"dedupe_ttl"`

	// IntakeRateLimit caps activity submissions per second; 0 disables the limit.
	IntakeRateLimit float64 `koanf:"intake_rate_limit"`

	// IntakeBurst is the number of submissions allowed above the rate at once.
	IntakeBurst int `koanf:"intake_burst"`

	// LeaderboardMaxLimit caps the limit parameter of the XP leaderboard.
	LeaderboardMaxLimit int `koanf:"leaderboard_max_limit"`

	// DefaultWeights is used when no weight configuration applies.
	DefaultWeights WeightsConfig `koanf:"default_weights"`

	// RecommendationThreshold is the dimension score below which guidance is emitted.
	RecommendationThreshold float64 `koanf:"recommendation_threshold"`

	// SpeedBonusMinutes is the resolution time ceiling for the speed bonus.
	SpeedBonusMinutes float64 `koanf:"speed_bonus_minutes"`

	// InnovationMinAverage is the metric average an innovative approach needs for its bonus.
	InnovationMinAverage float64 `koanf:"innovation_min_average"`

	// OutlierZScore is the |z| above which analytics report an outlier.
	OutlierZScore float64 `koanf:"outlier_z_score"`

	// TrendStableRate is the per-sample slope below which a trend is stable.
	TrendStableRate float64 `koanf:"trend_stable_rate"`

	// MinOptimizationSamples is the sample count needed before weights are optimized.
	MinOptimizationSamples int `koanf:"min_optimization_samples"`

	// SeedDefaultConfiguration installs the built-in configuration at startup.
	SeedDefaultConfiguration bool `koanf:"seed_default_configuration"`

	// WeightConfigurations are created at startup in order.
	WeightConfigurations []WeightConfigurationConfig `koanf:"weight_configurations"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		Addr:        ":9080",
		DefaultWeights: WeightsConfig{
			TechnicalAccuracy:    0.35,
			CommunicationQuality: 0.25,
			CustomerSatisfaction: 0.25,
			ProcessCompliance:    0.15,
		},
		RecommendationThreshold:  70,
		SpeedBonusMinutes:        30,
		InnovationMinAverage:     70,
		OutlierZScore:            2,
		TrendStableRate:          0.5,
		MinOptimizationSamples:   3,
		SeedDefaultConfiguration: true,
		QueueSize:                10000,
		DedupeSize:               50000,
		IntakeBurst:              50,
		LeaderboardMaxLimit:      100,
	}
}
