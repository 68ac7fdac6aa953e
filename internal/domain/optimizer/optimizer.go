// Package optimizer proposes weight vectors from historical metric samples.
package optimizer

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/okian/supportxp/internal/domain/analytics"
	"github.com/okian/supportxp/internal/domain/model"
	"github.com/okian/supportxp/internal/domain/scoring"
)

// Default optimizer parameters.
const (
	defaultMinSamples    = 3
	defaultStepSize      = 0.5
	defaultMinWeight     = 0.05
	defaultMaxWeight     = 0.6
	defaultScenarioCount = 5
	// confidenceScale is the sample size at which confidence reaches ~63%.
	confidenceScale = 30.0
	maxConfidence   = 100.0
	changeEpsilon   = 0.005
	shrinkAttempts  = 4
)

// Option applies a configuration option to the Optimizer.
type Option func(*Optimizer)

// WithMinSamples sets how many samples are needed before weights move.
func WithMinSamples(n int) Option {
	return func(o *Optimizer) {
		if n > 1 {
			o.minSamples = n
		}
	}
}

// WithStepSize sets how far weights move toward the signal shares (0,1].
func WithStepSize(step float64) Option {
	return func(o *Optimizer) {
		if step > 0 && step <= 1 {
			o.step = step
		}
	}
}

// WithWeightBounds bounds every suggested weight before renormalization.
func WithWeightBounds(minWeight, maxWeight float64) Option {
	return func(o *Optimizer) {
		if minWeight >= 0 && maxWeight <= 1 && minWeight < maxWeight {
			o.minWeight = minWeight
			o.maxWeight = maxWeight
		}
	}
}

// WithScenarioCount sets how many samples are replayed as test scenarios.
func WithScenarioCount(n int) Option {
	return func(o *Optimizer) {
		if n > 0 {
			o.scenarios = n
		}
	}
}

// Optimizer redistributes weight toward dimensions that best predict
// successful resolutions.
type Optimizer struct {
	calc       *scoring.Calculator
	minSamples int
	step       float64
	minWeight  float64
	maxWeight  float64
	scenarios  int
}

// New creates an Optimizer scoring samples with calc.
func New(calc *scoring.Calculator, opts ...Option) *Optimizer {
	if calc == nil {
		calc = scoring.NewCalculator()
	}
	o := &Optimizer{
		calc:       calc,
		minSamples: defaultMinSamples,
		step:       defaultStepSize,
		minWeight:  defaultMinWeight,
		maxWeight:  defaultMaxWeight,
		scenarios:  defaultScenarioCount,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Confidence grows with sample size and is bounded to [0,100].
func Confidence(n int) float64 {
	if n <= 0 {
		return 0
	}
	c := maxConfidence * (1 - math.Exp(-float64(n)/confidenceScale))
	return math.Round(math.Min(maxConfidence, math.Max(0, c))*10) / 10
}

// Optimize suggests weights for samples starting from current. The
// suggestion never lowers the mean overall score of the sample or of the
// replayed scenarios; when every candidate would, current is returned.
func (o *Optimizer) Optimize(current model.PerformanceWeights, samples []model.PerformanceMetrics) model.WeightOptimizationResult {
	if !current.IsNormalized() {
		current = current.Normalize()
	}
	res := model.WeightOptimizationResult{
		CurrentWeights:   current,
		SuggestedWeights: current,
		Reasoning:        []string{},
		ConfidenceScore:  Confidence(len(samples)),
		TestScenarios:    []model.TestScenario{},
	}

	if len(samples) < o.minSamples {
		res.Reasoning = append(res.Reasoning, fmt.Sprintf(
			"Only %d historical samples available; at least %d are needed, keeping current weights", len(samples), o.minSamples))
		res.TestScenarios = o.replay(samples, current, current)
		return res
	}

	signals, source := o.signals(samples)
	shares, ok := shares(signals)
	if !ok {
		res.Reasoning = append(res.Reasoning, "Historical samples show no variation to learn from; keeping current weights")
		res.TestScenarios = o.replay(samples, current, current)
		return res
	}

	step := o.step
	for attempt := 0; attempt <= shrinkAttempts; attempt++ {
		candidate := o.blend(current, shares, step)
		meanGain := o.meanGain(samples, current, candidate)
		scenarios := o.replay(samples, current, candidate)
		if meanGain >= 0 && scenarioGain(scenarios) >= 0 {
			res.SuggestedWeights = candidate
			res.ExpectedImprovement = math.Max(0, math.Round(meanGain*100)/100)
			res.TestScenarios = scenarios
			res.Reasoning = reasoning(current, candidate, signals, source)
			return res
		}
		step /= 2
	}

	res.Reasoning = append(res.Reasoning, "Every redistribution toward the historical signal would lower the mean score; keeping current weights")
	res.TestScenarios = o.replay(samples, current, current)
	return res
}

// signals returns a non-negative predictive strength per dimension. The
// primary signal is |Pearson r| against the resolution outcome; when the
// outcome never varies, each dimension's share of total spread is used.
func (o *Optimizer) signals(samples []model.PerformanceMetrics) (map[model.Dimension]float64, string) {
	outcome := make(stats.Float64Data, len(samples))
	for i, s := range samples {
		outcome[i] = resolutionOutcome(s)
	}
	cols := make(map[model.Dimension]stats.Float64Data, len(model.Dimensions))
	for _, d := range model.Dimensions {
		col := make(stats.Float64Data, len(samples))
		for i, s := range samples {
			col[i] = s.Value(d)
		}
		cols[d] = col
	}

	out := make(map[model.Dimension]float64, len(model.Dimensions))
	if sd, _ := stats.StandardDeviationPopulation(outcome); sd > 0 {
		for _, d := range model.Dimensions {
			out[d] = math.Abs(analytics.Pearson(cols[d], outcome))
		}
		return out, "correlation with resolution outcomes"
	}
	for _, d := range model.Dimensions {
		sd, err := stats.StandardDeviationPopulation(cols[d])
		if err != nil || math.IsNaN(sd) {
			sd = 0
		}
		out[d] = sd
	}
	return out, "share of score variance"
}

// resolutionOutcome scores a sample's outcome from its boolean results.
func resolutionOutcome(m model.PerformanceMetrics) float64 {
	var v float64
	if m.VerificationSuccess {
		v += 50
	}
	if m.FirstTimeResolution {
		v += 50
	}
	return v
}

func shares(signals map[model.Dimension]float64) (map[model.Dimension]float64, bool) {
	var sum float64
	for _, d := range model.Dimensions {
		sum += signals[d]
	}
	if sum == 0 || math.IsNaN(sum) {
		return nil, false
	}
	out := make(map[model.Dimension]float64, len(model.Dimensions))
	for _, d := range model.Dimensions {
		out[d] = signals[d] / sum
	}
	return out, true
}

func (o *Optimizer) blend(current model.PerformanceWeights, shares map[model.Dimension]float64, step float64) model.PerformanceWeights {
	out := current
	for _, d := range model.Dimensions {
		v := (1-step)*current.Get(d) + step*shares[d]
		out = out.With(d, math.Min(o.maxWeight, math.Max(o.minWeight, v)))
	}
	out = out.Normalize()
	for _, d := range model.Dimensions {
		out = out.With(d, math.Round(out.Get(d)*1000)/1000)
	}
	return out
}

func (o *Optimizer) meanGain(samples []model.PerformanceMetrics, current, candidate model.PerformanceWeights) float64 {
	var gain float64
	for _, s := range samples {
		gain += o.calc.Overall(s, candidate) - o.calc.Overall(s, current)
	}
	return gain / float64(len(samples))
}

func (o *Optimizer) replay(samples []model.PerformanceMetrics, current, candidate model.PerformanceWeights) []model.TestScenario {
	n := min(len(samples), o.scenarios)
	out := make([]model.TestScenario, 0, n)
	for i := 0; i < n; i++ {
		s := samples[i]
		cur := round2(o.calc.Overall(s, current))
		opt := round2(o.calc.Overall(s, candidate))
		out = append(out, model.TestScenario{
			Description:    describe(i, s),
			CurrentScore:   cur,
			OptimizedScore: opt,
			Improvement:    round2(opt - cur),
		})
	}
	return out
}

func scenarioGain(scenarios []model.TestScenario) float64 {
	if len(scenarios) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scenarios {
		sum += s.OptimizedScore - s.CurrentScore
	}
	return sum / float64(len(scenarios))
}

func reasoning(current, suggested model.PerformanceWeights, signals map[model.Dimension]float64, source string) []string {
	out := []string{}
	for _, d := range model.Dimensions {
		before, after := current.Get(d), suggested.Get(d)
		if math.Abs(after-before) < changeEpsilon {
			continue
		}
		verb := "Increased"
		if after < before {
			verb = "Decreased"
		}
		out = append(out, fmt.Sprintf("%s %s weight from %.3f to %.3f (%s: %.2f)", verb, d, before, after, source, signals[d]))
	}
	if len(out) == 0 {
		out = append(out, "Current weights already match the historical signal")
	}
	return out
}

func describe(i int, s model.PerformanceMetrics) string {
	parts := make([]string, 0, len(model.Dimensions))
	for _, d := range model.Dimensions {
		parts = append(parts, fmt.Sprintf("%s %g", d, s.Value(d)))
	}
	return fmt.Sprintf("Historical sample %d (%s)", i+1, strings.Join(parts, ", "))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
