package config

import (
	"context"
	"math"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix     = "SUPPORTXP_"
	EnvConfigFile = EnvPrefix + "CONFIG"
)

const weightSumTolerance = 0.01

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SUPPORTXP_CONFIG is set
//  3. env (prefix SUPPORTXP_; "__" separates nested keys)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "read %s", path), ErrLoadConfig)
		}
	}

	// SUPPORTXP_DEFAULT_WEIGHTS__TECHNICAL_ACCURACY -> default_weights.technical_accuracy
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read environment"), ErrLoadConfig)
	}
	// The config file path is not a config key.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode config"), ErrLoadConfig)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values Load cannot type-check.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.Wrap(ErrInvalidConfig, "addr must not be empty")
	}
	if math.Abs(c.DefaultWeights.Sum()-1.0) > weightSumTolerance {
		return errors.Wrapf(ErrInvalidConfig, "default_weights must sum to 1.0, got %.3f", c.DefaultWeights.Sum())
	}
	for name, v := range map[string]float64{
		"recommendation_threshold": c.RecommendationThreshold,
		"innovation_min_average":   c.InnovationMinAverage,
	} {
		if v < 0 || v > 100 {
			return errors.Wrapf(ErrInvalidConfig, "%s must be within [0,100], got %g", name, v)
		}
	}
	if c.SpeedBonusMinutes <= 0 {
		return errors.Wrap(ErrInvalidConfig, "speed_bonus_minutes must be positive")
	}
	if c.OutlierZScore <= 0 {
		return errors.Wrap(ErrInvalidConfig, "outlier_z_score must be positive")
	}
	if c.QueueSize <= 0 {
		return errors.Wrap(ErrInvalidConfig, "queue_size must be positive")
	}
	if c.WorkerCount < 0 {
		return errors.Wrap(ErrInvalidConfig, "worker_count must not be negative")
	}
	if c.DedupeTTL < 0 {
		return errors.Wrap(ErrInvalidConfig, "dedupe_ttl must not be negative")
	}
	if c.IntakeRateLimit < 0 {
		return errors.Wrap(ErrInvalidConfig, "intake_rate_limit must not be negative")
	}
	if c.IntakeRateLimit > 0 && c.IntakeBurst < 1 {
		return errors.Wrap(ErrInvalidConfig, "intake_burst must be at least 1 when intake_rate_limit is set")
	}
	if c.LeaderboardMaxLimit < 1 {
		return errors.Wrap(ErrInvalidConfig, "leaderboard_max_limit must be positive")
	}
	for i, wc := range c.WeightConfigurations {
		if strings.TrimSpace(wc.Name) == "" {
			return errors.Wrapf(ErrInvalidConfig, "weight_configurations[%d].name must not be empty", i)
		}
	}
	return nil
}
