package xp

import (
	"github.com/samber/lo"

	"github.com/okian/supportxp/internal/domain/model"
)

// Bonus rule types.
const (
	BonusPerfectVerification = "perfect_verification"
	BonusCustomerService     = "outstanding_customer_service"
	BonusTechnicalExcellence = "technical_excellence"
	BonusFirstTryResolution  = "first_try_resolution"
	BonusKnowledgeSharing    = "knowledge_sharing"
	BonusSpeed               = "speed_bonus"
	BonusInnovation          = "innovation_bonus"
)

// Default bonus thresholds.
const (
	defaultSpeedBonusMinutes    = 30
	defaultInnovationMinAverage = 70
)

// BonusRule is an independent predicate over raw activity data.
type BonusRule struct {
	Type      string
	Name      string
	Points    int
	Condition func(a model.ActivityData) bool
}

// BonusOption applies a configuration option to the BonusEngine.
type BonusOption func(*bonusThresholds)

type bonusThresholds struct {
	speedMinutes     float64
	innovationAvgMin float64
}

// WithSpeedBonusMinutes sets the resolution time ceiling for the speed bonus.
func WithSpeedBonusMinutes(minutes float64) BonusOption {
	return func(t *bonusThresholds) {
		if minutes > 0 {
			t.speedMinutes = minutes
		}
	}
}

// WithInnovationMinAverage sets the numeric average an innovative approach
// needs before it earns the innovation bonus.
func WithInnovationMinAverage(avg float64) BonusOption {
	return func(t *bonusThresholds) {
		if avg >= 0 && avg <= 100 {
			t.innovationAvgMin = avg
		}
	}
}

// BonusEngine evaluates the bonus rule table. All matching rules fire.
type BonusEngine struct {
	rules []BonusRule
}

// NewBonusEngine creates a BonusEngine with the standard rule table.
func NewBonusEngine(opts ...BonusOption) *BonusEngine {
	t := bonusThresholds{
		speedMinutes:     defaultSpeedBonusMinutes,
		innovationAvgMin: defaultInnovationMinAverage,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return &BonusEngine{rules: standardRules(t)}
}

func standardRules(t bonusThresholds) []BonusRule {
	return []BonusRule{
		{
			Type: BonusPerfectVerification, Name: "Perfect Verification", Points: 10,
			Condition: func(a model.ActivityData) bool {
				return a.PerformanceMetrics.VerificationSuccess && a.PerformanceMetrics.TechnicalAccuracy >= 90
			},
		},
		{
			Type: BonusCustomerService, Name: "Outstanding Customer Service", Points: 15,
			Condition: func(a model.ActivityData) bool {
				return a.PerformanceMetrics.CustomerSatisfaction >= 90 && a.PerformanceMetrics.CommunicationQuality >= 85
			},
		},
		{
			Type: BonusTechnicalExcellence, Name: "Technical Excellence", Points: 12,
			Condition: func(a model.ActivityData) bool {
				return a.PerformanceMetrics.TechnicalAccuracy >= 90 && a.PerformanceMetrics.ProcessCompliance >= 85
			},
		},
		{
			Type: BonusFirstTryResolution, Name: "First-Try Resolution", Points: 8,
			Condition: func(a model.ActivityData) bool { return a.PerformanceMetrics.FirstTimeResolution },
		},
		{
			Type: BonusKnowledgeSharing, Name: "Knowledge Sharing", Points: 5,
			Condition: func(a model.ActivityData) bool { return a.PerformanceMetrics.KnowledgeSharing },
		},
		{
			Type: BonusSpeed, Name: "Speed Bonus", Points: 5,
			Condition: func(a model.ActivityData) bool {
				rt := a.PerformanceMetrics.ResolutionTime
				return rt >= 0 && rt <= t.speedMinutes
			},
		},
		{
			Type: BonusInnovation, Name: "Innovation Bonus", Points: 8,
			Condition: func(a model.ActivityData) bool {
				return a.Flag(model.FlagInnovativeApproach) && a.PerformanceMetrics.NumericAverage() >= t.innovationAvgMin
			},
		},
	}
}

// Evaluate returns the bonuses a earns, in rule-table order.
func (e *BonusEngine) Evaluate(a model.ActivityData) []model.Bonus {
	out := []model.Bonus{}
	for _, r := range e.rules {
		if r.Condition(a) {
			out = append(out, model.Bonus{Type: r.Type, Name: r.Name, Points: r.Points})
		}
	}
	return out
}

// MaxPoints is the sum of every rule's points.
func (e *BonusEngine) MaxPoints() int {
	return lo.SumBy(e.rules, func(r BonusRule) int { return r.Points })
}

// Rules returns a copy of the rule table.
func (e *BonusEngine) Rules() []BonusRule {
	return append([]BonusRule(nil), e.rules...)
}

// Total sums the points of bonuses.
func Total(bonuses []model.Bonus) int {
	return lo.SumBy(bonuses, func(b model.Bonus) int { return b.Points })
}
