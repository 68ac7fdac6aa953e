package service

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/okian/supportxp/internal/config"
	"github.com/okian/supportxp/internal/domain/analytics"
	"github.com/okian/supportxp/internal/domain/model"
	"github.com/okian/supportxp/internal/domain/optimizer"
	"github.com/okian/supportxp/internal/domain/weights"
	"github.com/okian/supportxp/internal/domain/xp"
)

// DefaultConfigurationName names the built-in weight configuration.
const DefaultConfigurationName = "Default support weighting"

const systemAuthor = "system"

// DefaultConfiguration returns the built-in configuration over base. Its
// rules shift weight toward the dimensions each activity exercises most.
func DefaultConfiguration(base model.PerformanceWeights) weights.CreateInput {
	communication := model.WeightOverride{}
	communication.Set(model.CommunicationQuality, 0.4)
	communication.Set(model.CustomerSatisfaction, 0.3)

	technical := model.WeightOverride{}
	technical.Set(model.TechnicalAccuracy, 0.45)

	process := model.WeightOverride{}
	process.Set(model.ProcessCompliance, 0.3)

	return weights.CreateInput{
		Name:        DefaultConfigurationName,
		Description: "Built-in weighting for support scenarios",
		Weights:     base,
		CreatedBy:   systemAuthor,
		ContextRules: []model.ContextRule{
			{
				Name:      "Customer communication focus",
				Priority:  10,
				Condition: model.RuleCondition{ActivityTypes: []model.ActivityType{model.ActivityCustomerCommunication}},
				Weights:   &communication,
			},
			{
				Name:      "Documentation process focus",
				Priority:  10,
				Condition: model.RuleCondition{ActivityTypes: []model.ActivityType{model.ActivityDocumentation}},
				Weights:   &process,
			},
			{
				Name:      "Advanced technical focus",
				Priority:  20,
				Condition: model.RuleCondition{Difficulties: []model.Difficulty{model.DifficultyAdvanced}},
				Weights:   &technical,
			},
		},
	}
}

// FromConfig translates process configuration into engine options.
func FromConfig(cfg *config.Config) ([]Option, error) {
	seeds := make([]weights.CreateInput, 0, len(cfg.WeightConfigurations))
	for i, wc := range cfg.WeightConfigurations {
		in, err := seedFromConfig(wc)
		if err != nil {
			return nil, errors.Wrapf(err, "weight_configurations[%d]", i)
		}
		seeds = append(seeds, in)
	}

	return []Option{
		WithDefaultWeights(weightsFromConfig(cfg.DefaultWeights)),
		WithRecommendationThreshold(cfg.RecommendationThreshold),
		WithBonusOptions(
			xp.WithSpeedBonusMinutes(cfg.SpeedBonusMinutes),
			xp.WithInnovationMinAverage(cfg.InnovationMinAverage),
		),
		WithAnalyticsOptions(
			analytics.WithOutlierZScore(cfg.OutlierZScore),
			analytics.WithStableRate(cfg.TrendStableRate),
		),
		WithOptimizerOptions(optimizer.WithMinSamples(cfg.MinOptimizationSamples)),
		WithSeedDefaultConfiguration(cfg.SeedDefaultConfiguration),
		WithSeedConfigurations(seeds...),
		WithQueueSize(cfg.QueueSize),
		WithWorkerCount(cfg.WorkerCount),
		WithDedupeSize(cfg.DedupeSize),
		WithDedupeTTL(cfg.DedupeTTL),
	}, nil
}

func weightsFromConfig(w config.WeightsConfig) model.PerformanceWeights {
	return model.PerformanceWeights{
		TechnicalAccuracy:    w.TechnicalAccuracy,
		CommunicationQuality: w.CommunicationQuality,
		CustomerSatisfaction: w.CustomerSatisfaction,
		ProcessCompliance:    w.ProcessCompliance,
	}
}

func seedFromConfig(wc config.WeightConfigurationConfig) (weights.CreateInput, error) {
	in := weights.CreateInput{
		Name:        wc.Name,
		Description: wc.Description,
		Weights:     weightsFromConfig(wc.Weights),
		Active:      wc.Active,
		Priority:    wc.Priority,
		CreatedBy:   wc.CreatedBy,
	}
	if in.CreatedBy == "" {
		in.CreatedBy = systemAuthor
	}
	for _, rc := range wc.ContextRules {
		rule, err := ruleFromConfig(rc)
		if err != nil {
			return weights.CreateInput{}, errors.Wrapf(err, "context rule %q", rc.Name)
		}
		in.ContextRules = append(in.ContextRules, rule)
	}
	return in, nil
}

func ruleFromConfig(rc config.ContextRuleConfig) (model.ContextRule, error) {
	var (
		cond model.RuleCondition
		err  error
	)
	if cond.ActivityTypes, err = parseEnum("activity_types", rc.ActivityTypes, model.ActivityTypes); err != nil {
		return model.ContextRule{}, err
	}
	if cond.Difficulties, err = parseEnum("difficulties", rc.Difficulties, model.Difficulties); err != nil {
		return model.ContextRule{}, err
	}
	if cond.UserExperience, err = parseEnum("user_experience", rc.UserExperience, model.ExperienceLevels); err != nil {
		return model.ContextRule{}, err
	}
	if cond.TimeOfDay, err = parseEnum("time_of_day", rc.TimeOfDay, model.TimesOfDay); err != nil {
		return model.ContextRule{}, err
	}

	rule := model.ContextRule{Name: rc.Name, Priority: rc.Priority, Condition: cond}
	if len(rc.Weights) > 0 {
		override := model.WeightOverride{}
		for key, v := range rc.Weights {
			d, err := model.ParseDimension(key)
			if err != nil {
				return model.ContextRule{}, errors.Mark(err, ErrInvalidSeed)
			}
			override.Set(d, v)
		}
		rule.Weights = &override
	}
	if rc.Adjustment != nil {
		rule.Adjustment = &model.ScoreAdjustment{Value: rc.Adjustment.Value, Reason: rc.Adjustment.Reason}
	}
	return rule, nil
}

func parseEnum[T ~string](field string, values []string, allowed []T) ([]T, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]T, 0, len(values))
	for _, v := range values {
		t := T(strings.TrimSpace(v))
		if !slices.Contains(allowed, t) {
			return nil, errors.Wrapf(ErrInvalidSeed, "%s: unknown value %q", field, v)
		}
		out = append(out, t)
	}
	return out, nil
}
