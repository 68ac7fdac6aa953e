// Package scoring computes weighted performance scores and derives tiers,
// contextual adjustments and recommendations from them.
package scoring

import (
	"math"

	"github.com/okian/supportxp/internal/domain/model"
)

// Score bounds.
const (
	minScoreValue = 0
	maxScoreValue = 100
)

// Calculator computes the weighted overall score of a metric set.
type Calculator struct{}

// NewCalculator creates a Calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Compute returns Σ weight·metric over the four numeric dimensions clipped to
// [0,100], together with each dimension's contribution. Out-of-range metrics
// are not rejected here; they only move the unclipped sum.
func (c *Calculator) Compute(m model.PerformanceMetrics, w model.PerformanceWeights) model.ScoreBreakdown {
	out := model.ScoreBreakdown{
		WeightedScores: make([]model.DimensionScore, 0, len(model.Dimensions)),
	}
	var total float64
	for _, d := range model.Dimensions {
		v := m.Value(d)
		weight := w.Get(d)
		contribution := v * weight
		total += contribution
		out.WeightedScores = append(out.WeightedScores, model.DimensionScore{
			Dimension:    d,
			Score:        v,
			Weight:       weight,
			Contribution: contribution,
		})
	}
	out.OverallScore = Clip(total)
	return out
}

// Overall is a shorthand for Compute(m, w).OverallScore.
func (c *Calculator) Overall(m model.PerformanceMetrics, w model.PerformanceWeights) float64 {
	return c.Compute(m, w).OverallScore
}

// Clip bounds score to [0,100]. NaN becomes 0.
func Clip(score float64) float64 {
	if math.IsNaN(score) {
		return minScoreValue
	}
	return math.Max(minScoreValue, math.Min(maxScoreValue, score))
}
