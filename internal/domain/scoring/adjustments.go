package scoring

import (
	"fmt"

	"github.com/okian/supportxp/internal/domain/model"
)

// Adjustment record types.
const (
	AdjustmentDifficulty     = "difficulty_modifier"
	AdjustmentExperience     = "experience_bonus"
	AdjustmentTime           = "time_modifier"
	AdjustmentContextRule    = "context_rule"
	AdjustmentWeightOverride = "weight_override"
)

// Default adjustment values.
const (
	defaultAdvancedTechnicalThreshold = 85
	defaultAdvancedBonus              = 3
	defaultExpertBonus                = 2
	defaultBeginnerBonus              = 1
	defaultNightShiftBonus            = 1
)

// AdjustmentOption applies a configuration option to the AdjustmentEngine.
type AdjustmentOption func(*AdjustmentEngine)

// WithAdvancedTechnicalThreshold sets the technical accuracy an advanced
// scenario must reach to earn the difficulty modifier.
func WithAdvancedTechnicalThreshold(threshold float64) AdjustmentOption {
	return func(e *AdjustmentEngine) {
		if threshold >= minScoreValue && threshold <= maxScoreValue {
			e.advancedThreshold = threshold
		}
	}
}

// WithBonusValues overrides the built-in deltas.
func WithBonusValues(advanced, expert, beginner, night float64) AdjustmentOption {
	return func(e *AdjustmentEngine) {
		e.advancedBonus = advanced
		e.expertBonus = expert
		e.beginnerBonus = beginner
		e.nightBonus = night
	}
}

// AdjustmentEngine applies contextual deltas to an overall score and keeps
// an auditable record of each.
type AdjustmentEngine struct {
	advancedThreshold float64
	advancedBonus     float64
	expertBonus       float64
	beginnerBonus     float64
	nightBonus        float64
}

// NewAdjustmentEngine creates an AdjustmentEngine with default values.
func NewAdjustmentEngine(opts ...AdjustmentOption) *AdjustmentEngine {
	e := &AdjustmentEngine{
		advancedThreshold: defaultAdvancedTechnicalThreshold,
		advancedBonus:     defaultAdvancedBonus,
		expertBonus:       defaultExpertBonus,
		beginnerBonus:     defaultBeginnerBonus,
		nightBonus:        defaultNightShiftBonus,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply adds every applicable delta to raw and clips the result. Each rule
// that matches emits a record, including rules whose value is zero, so the
// breakdown explains every contextual decision.
func (e *AdjustmentEngine) Apply(raw float64, m model.PerformanceMetrics, sc model.ScoringContext, matched []model.ContextRule) (float64, []model.Adjustment) {
	records := []model.Adjustment{}

	if sc.Difficulty == model.DifficultyAdvanced {
		if m.TechnicalAccuracy >= e.advancedThreshold {
			records = append(records, model.Adjustment{
				Type:    AdjustmentDifficulty,
				Applied: true,
				Value:   e.advancedBonus,
				Reason:  fmt.Sprintf("Advanced scenario resolved with technical accuracy of at least %g", e.advancedThreshold),
			})
		} else {
			records = append(records, model.Adjustment{
				Type:   AdjustmentDifficulty,
				Reason: fmt.Sprintf("Advanced scenario but technical accuracy below %g", e.advancedThreshold),
			})
		}
	}

	switch sc.UserExperience {
	case model.ExperienceExpert:
		records = append(records, model.Adjustment{
			Type:    AdjustmentExperience,
			Applied: true,
			Value:   e.expertBonus,
			Reason:  "Expert-level handling",
		})
	case model.ExperienceBeginner:
		records = append(records, model.Adjustment{
			Type:    AdjustmentExperience,
			Applied: true,
			Value:   e.beginnerBonus,
			Reason:  "Encouragement for a beginner",
		})
	}

	if sc.TimeOfDay == model.TimeNight {
		records = append(records, model.Adjustment{
			Type:    AdjustmentTime,
			Applied: true,
			Value:   e.nightBonus,
			Reason:  "Off-hours support",
		})
	}

	for _, rule := range matched {
		if rule.Adjustment != nil {
			reason := rule.Adjustment.Reason
			if reason == "" {
				reason = fmt.Sprintf("Context rule %q", rule.Name)
			}
			records = append(records, model.Adjustment{
				Type:    AdjustmentContextRule,
				Applied: true,
				Value:   rule.Adjustment.Value,
				Reason:  reason,
			})
		}
		if rule.Weights != nil && !rule.Weights.IsEmpty() {
			records = append(records, model.Adjustment{
				Type:    AdjustmentWeightOverride,
				Applied: true,
				Reason:  fmt.Sprintf("Weights adjusted by context rule %q", rule.Name),
			})
		}
	}

	total := raw
	for _, r := range records {
		if r.Applied {
			total += r.Value
		}
	}
	return Clip(total), records
}
