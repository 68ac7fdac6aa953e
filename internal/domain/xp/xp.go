// Package xp awards experience points for completed support activities.
package xp

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/okian/supportxp/internal/domain/model"
)

// minimumAward is the smallest scaled XP an activity can earn before bonuses.
const minimumAward = 1

var baseXPByType = map[model.ActivityType]int{
	model.ActivityTicketCompletion:      20,
	model.ActivityVerification:          8,
	model.ActivityDocumentation:         5,
	model.ActivityCustomerCommunication: 3,
	model.ActivityLearningProgress:      10,
	model.ActivityKnowledgeSearch:       2,
}

var difficultyMultipliers = map[model.Difficulty]float64{
	model.DifficultyStarter:      1.0,
	model.DifficultyIntermediate: 1.5,
	model.DifficultyAdvanced:     2.0,
}

// PerformanceBand maps a numeric metric average to an XP multiplier.
type PerformanceBand struct {
	Name       string
	MinAverage float64
	Multiplier float64
}

// Performance bands, highest first. The lowest band catches everything else.
var performanceBands = []PerformanceBand{
	{Name: "excellent", MinAverage: 90, Multiplier: 1.5},
	{Name: "good", MinAverage: 75, Multiplier: 1.0},
	{Name: "acceptable", MinAverage: 60, Multiplier: 0.8},
	{Name: "poor", MinAverage: 0, Multiplier: 0.5},
}

// maxPerformanceMultiplier is the multiplier of the top band.
var maxPerformanceMultiplier = performanceBands[0].Multiplier

// BaseXP returns the static XP of an activity type.
func BaseXP(t model.ActivityType) (int, error) {
	v, ok := baseXPByType[t]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownActivityType, "%q", t)
	}
	return v, nil
}

// DifficultyMultiplier returns the XP multiplier of a scenario difficulty.
func DifficultyMultiplier(d model.Difficulty) (float64, error) {
	v, ok := difficultyMultipliers[d]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownDifficulty, "%q", d)
	}
	return v, nil
}

// BandFor returns the performance band of a numeric average.
func BandFor(average float64) PerformanceBand {
	for _, b := range performanceBands {
		if average >= b.MinAverage {
			return b
		}
	}
	return performanceBands[len(performanceBands)-1]
}

// Aggregator combines base XP, multipliers and bonuses into a total.
type Aggregator struct {
	bonuses *BonusEngine
}

// NewAggregator creates an Aggregator; a nil engine uses the standard rules.
func NewAggregator(bonuses *BonusEngine) *Aggregator {
	if bonuses == nil {
		bonuses = NewBonusEngine()
	}
	return &Aggregator{bonuses: bonuses}
}

// Calculate awards XP for a. The scaled award is rounded and floored at one
// point so every valid activity earns a positive total.
func (g *Aggregator) Calculate(a model.ActivityData) (model.XPCalculationResult, error) {
	base, err := BaseXP(a.Type)
	if err != nil {
		return model.XPCalculationResult{}, err
	}
	diff, err := DifficultyMultiplier(a.ScenarioDifficulty)
	if err != nil {
		return model.XPCalculationResult{}, err
	}

	average := a.PerformanceMetrics.NumericAverage()
	band := BandFor(average)
	bonuses := g.bonuses.Evaluate(a)
	bonusXP := Total(bonuses)

	afterDifficulty := float64(base) * diff
	afterPerformance := afterDifficulty * band.Multiplier
	scaled := int(math.Round(afterPerformance))
	floored := false
	if scaled < minimumAward {
		scaled = minimumAward
		floored = true
	}
	total := scaled + bonusXP

	explanations := []string{
		fmt.Sprintf("Awarded base XP of %d for %s", base, a.Type),
		fmt.Sprintf("Difficulty multiplier %gx for a %s scenario", diff, a.ScenarioDifficulty),
		fmt.Sprintf("Performance multiplier %gx for %s performance (average %.1f)", band.Multiplier, band.Name, average),
	}
	for _, b := range bonuses {
		explanations = append(explanations, fmt.Sprintf("Bonus %s: +%d XP", b.Name, b.Points))
	}
	if floored {
		explanations = append(explanations, fmt.Sprintf("Minimum award of %d XP applied", minimumAward))
	}
	explanations = append(explanations, fmt.Sprintf("Total XP: %d", total))

	return model.XPCalculationResult{
		BaseXP:                base,
		DifficultyMultiplier:  diff,
		PerformanceMultiplier: band.Multiplier,
		PerformanceBand:       band.Name,
		BonusXP:               bonusXP,
		TotalXP:               total,
		Breakdown: model.XPBreakdown{
			Activity:    base,
			Difficulty:  afterDifficulty,
			Performance: afterPerformance,
			Bonuses:     bonuses,
			Final:       total,
		},
		Explanations: explanations,
	}, nil
}

// MaxPossibleXP is the award for top-band performance with every bonus.
func (g *Aggregator) MaxPossibleXP(t model.ActivityType, d model.Difficulty) (int, error) {
	base, err := BaseXP(t)
	if err != nil {
		return 0, err
	}
	diff, err := DifficultyMultiplier(d)
	if err != nil {
		return 0, err
	}
	return int(math.Round(float64(base)*diff*maxPerformanceMultiplier)) + g.bonuses.MaxPoints(), nil
}

// Ranges returns the static XP envelope per activity type: the minimum is a
// starter scenario in the lowest band without bonuses, typical is an
// intermediate scenario in the "good" band, and the maximum is MaxPossibleXP
// on an advanced scenario.
func (g *Aggregator) Ranges() map[model.ActivityType]model.XPRange {
	lowest := performanceBands[len(performanceBands)-1].Multiplier
	typical := BandFor(75).Multiplier
	out := make(map[model.ActivityType]model.XPRange, len(baseXPByType))
	for _, t := range model.ActivityTypes {
		base := float64(baseXPByType[t])
		minXP := int(math.Round(base * difficultyMultipliers[model.DifficultyStarter] * lowest))
		if minXP < minimumAward {
			minXP = minimumAward
		}
		maxXP, _ := g.MaxPossibleXP(t, model.DifficultyAdvanced)
		out[t] = model.XPRange{
			Min:     minXP,
			Max:     maxXP,
			Typical: int(math.Round(base * difficultyMultipliers[model.DifficultyIntermediate] * typical)),
		}
	}
	return out
}
