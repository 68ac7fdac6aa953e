package model

import (
	"slices"
	"time"
)

// RuleCondition is the predicate of a context rule. Each non-empty list
// must contain the corresponding context value; empty lists match anything.
type RuleCondition struct {
	ActivityTypes  []ActivityType    `json:"activityTypes,omitempty"`
	Difficulties   []Difficulty      `json:"difficulties,omitempty"`
	UserExperience []ExperienceLevel `json:"userExperience,omitempty"`
	TimeOfDay      []TimeOfDay       `json:"timeOfDay,omitempty"`
}

// Matches evaluates the condition against ctx.
func (c RuleCondition) Matches(ctx ScoringContext) bool {
	if len(c.ActivityTypes) > 0 && !slices.Contains(c.ActivityTypes, ctx.ActivityType) {
		return false
	}
	if len(c.Difficulties) > 0 && !slices.Contains(c.Difficulties, ctx.Difficulty) {
		return false
	}
	if len(c.UserExperience) > 0 && !slices.Contains(c.UserExperience, ctx.UserExperience) {
		return false
	}
	if len(c.TimeOfDay) > 0 && !slices.Contains(c.TimeOfDay, ctx.TimeOfDay) {
		return false
	}
	return true
}

// ScoreAdjustment is an additive delta applied to the overall score.
type ScoreAdjustment struct {
	Value  float64 `json:"value"`
	Reason string  `json:"reason,omitempty"`
}

// ContextRule overrides weights or adjusts the score when its condition holds.
// Rules are applied in ascending Priority so higher priorities win.
type ContextRule struct {
	ID         string           `json:"id"`
	Name       string           `json:"name" validate:"required"`
	Priority   int              `json:"priority"`
	Condition  RuleCondition    `json:"condition"`
	Weights    *WeightOverride  `json:"weights,omitempty"`
	Adjustment *ScoreAdjustment `json:"adjustment,omitempty"`
}

// WeightConfiguration is a named, prioritized weight vector with context rules.
type WeightConfiguration struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description,omitempty"`
	Weights      PerformanceWeights `json:"weights"`
	ContextRules []ContextRule      `json:"contextRules,omitempty"`
	Active       bool               `json:"active"`
	Priority     int                `json:"priority"`
	ValidFrom    time.Time          `json:"validFrom"`
	ValidUntil   *time.Time         `json:"validUntil,omitempty"`
	CreatedBy    string             `json:"createdBy,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// IsEffective reports whether the configuration is active and inside its
// validity window at now.
func (c WeightConfiguration) IsEffective(now time.Time) bool {
	if !c.Active {
		return false
	}
	if !c.ValidFrom.IsZero() && now.Before(c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && !now.Before(*c.ValidUntil) {
		return false
	}
	return true
}

// ScoringRequest carries the per-call inputs of a performance score.
type ScoringRequest struct {
	Context ScoringContext `json:"context"`
	// BaseWeights replaces the selected configuration's weights when set.
	BaseWeights *PerformanceWeights `json:"baseWeights,omitempty"`
	// ContextRules are matched in addition to the configuration's rules.
	ContextRules []ContextRule `json:"contextRules,omitempty"`
}
