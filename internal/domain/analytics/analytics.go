// Package analytics computes aggregate statistics over batches of
// performance metric samples.
package analytics

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/okian/supportxp/internal/domain/model"
	"github.com/okian/supportxp/internal/domain/scoring"
)

// Default analysis parameters.
const (
	defaultOutlierZScore = 2.0
	defaultStableRate    = 0.5
)

// Bucket is one band of the overall score distribution; Min is inclusive.
type Bucket struct {
	Label string
	Min   float64
}

// DefaultBuckets mirrors the tier boundaries, highest first.
func DefaultBuckets() []Bucket {
	return []Bucket{
		{Label: "90-100", Min: 90},
		{Label: "80-89", Min: 80},
		{Label: "70-79", Min: 70},
		{Label: "60-69", Min: 60},
		{Label: "0-59", Min: math.Inf(-1)},
	}
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithOutlierZScore sets the |z| above which a value is an outlier.
func WithOutlierZScore(z float64) Option {
	return func(e *Engine) {
		if z > 0 {
			e.outlierZ = z
		}
	}
}

// WithStableRate sets the per-sample slope below which a trend is stable.
func WithStableRate(rate float64) Option {
	return func(e *Engine) {
		if rate >= 0 {
			e.stableRate = rate
		}
	}
}

// WithBuckets replaces the distribution buckets; order them highest first.
func WithBuckets(buckets ...Bucket) Option {
	return func(e *Engine) {
		if len(buckets) > 0 {
			e.buckets = buckets
		}
	}
}

// Engine computes PerformanceAnalytics.
type Engine struct {
	calc       *scoring.Calculator
	outlierZ   float64
	stableRate float64
	buckets    []Bucket
}

// NewEngine creates an Engine scoring samples with calc.
func NewEngine(calc *scoring.Calculator, opts ...Option) *Engine {
	if calc == nil {
		calc = scoring.NewCalculator()
	}
	e := &Engine{
		calc:       calc,
		outlierZ:   defaultOutlierZScore,
		stableRate: defaultStableRate,
		buckets:    DefaultBuckets(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze summarizes samples, using weights for the overall score
// distribution. An empty batch yields empty, non-nil fields.
func (e *Engine) Analyze(samples []model.PerformanceMetrics, weights model.PerformanceWeights) model.PerformanceAnalytics {
	out := model.PerformanceAnalytics{
		AverageScores:     map[model.Dimension]float64{},
		ScoreDistribution: map[string]int{},
		CorrelationMatrix: map[model.Dimension]map[model.Dimension]float64{},
		Trends:            []model.Trend{},
		Outliers:          []model.Outlier{},
	}
	if len(samples) == 0 {
		return out
	}

	series := columns(samples)
	for _, d := range model.Dimensions {
		mean, _ := stats.Mean(series[d])
		out.AverageScores[d] = mean
	}

	for _, b := range e.buckets {
		out.ScoreDistribution[b.Label] = 0
	}
	for _, s := range samples {
		out.ScoreDistribution[e.bucketFor(e.calc.Overall(s, weights))]++
	}

	out.CorrelationMatrix = correlationMatrix(series)

	for _, d := range model.Dimensions {
		out.Trends = append(out.Trends, e.trend(d, series[d]))
	}

	out.Outliers = e.outliers(series, len(samples))
	return out
}

func (e *Engine) bucketFor(score float64) string {
	for _, b := range e.buckets {
		if score >= b.Min {
			return b.Label
		}
	}
	return e.buckets[len(e.buckets)-1].Label
}

// columns splits samples into one series per dimension, in sample order.
func columns(samples []model.PerformanceMetrics) map[model.Dimension]stats.Float64Data {
	out := make(map[model.Dimension]stats.Float64Data, len(model.Dimensions))
	for _, d := range model.Dimensions {
		col := make(stats.Float64Data, len(samples))
		for i, s := range samples {
			col[i] = s.Value(d)
		}
		out[d] = col
	}
	return out
}

// correlationMatrix returns the symmetric Pearson matrix. A dimension with
// no variance correlates 0 with every other dimension.
func correlationMatrix(series map[model.Dimension]stats.Float64Data) map[model.Dimension]map[model.Dimension]float64 {
	out := make(map[model.Dimension]map[model.Dimension]float64, len(model.Dimensions))
	for _, d := range model.Dimensions {
		out[d] = make(map[model.Dimension]float64, len(model.Dimensions))
		out[d][d] = 1
	}
	for i, a := range model.Dimensions {
		for _, b := range model.Dimensions[i+1:] {
			r := Pearson(series[a], series[b])
			out[a][b] = r
			out[b][a] = r
		}
	}
	return out
}

// Pearson returns the correlation of x and y, or 0 when undefined.
func Pearson(x, y stats.Float64Data) float64 {
	r, err := stats.Correlation(x, y)
	if err != nil || math.IsNaN(r) {
		return 0
	}
	return r
}

func (e *Engine) trend(d model.Dimension, values stats.Float64Data) model.Trend {
	t := model.Trend{Dimension: d, Direction: model.TrendStable}
	slope := Slope(values)
	t.Rate = math.Round(slope*1000) / 1000
	switch {
	case math.Abs(slope) < e.stableRate:
	case slope > 0:
		t.Direction = model.TrendImproving
	default:
		t.Direction = model.TrendDeclining
	}
	return t
}

// Slope is the least-squares slope of values against their index.
func Slope(values stats.Float64Data) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	pts := make(stats.Series, n)
	for i, v := range values {
		pts[i] = stats.Coordinate{X: float64(i), Y: v}
	}
	fit, err := stats.LinearRegression(pts)
	if err != nil || len(fit) != n {
		return 0
	}
	slope := (fit[n-1].Y - fit[0].Y) / float64(n-1)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0
	}
	return slope
}

func (e *Engine) outliers(series map[model.Dimension]stats.Float64Data, n int) []model.Outlier {
	type moments struct{ mean, sd float64 }
	m := make(map[model.Dimension]moments, len(model.Dimensions))
	for _, d := range model.Dimensions {
		mean, _ := stats.Mean(series[d])
		sd, _ := stats.StandardDeviationPopulation(series[d])
		m[d] = moments{mean: mean, sd: sd}
	}

	out := []model.Outlier{}
	for i := 0; i < n; i++ {
		for _, d := range model.Dimensions {
			mo := m[d]
			if mo.sd == 0 || math.IsNaN(mo.sd) {
				continue
			}
			v := series[d][i]
			z := (v - mo.mean) / mo.sd
			if math.Abs(z) > e.outlierZ {
				out = append(out, model.Outlier{Index: i, Dimension: d, Value: v, ZScore: math.Round(z*1000) / 1000})
			}
		}
	}
	return out
}
