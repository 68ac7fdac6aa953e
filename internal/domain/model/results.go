package model

// ValidationResult reports recoverable input problems.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// DimensionScore is one dimension's contribution to the overall score.
type DimensionScore struct {
	Dimension    Dimension `json:"dimension"`
	Score        float64   `json:"score"`
	Weight       float64   `json:"weight"`
	Contribution float64   `json:"contribution"`
}

// ScoreBreakdown is the raw weighted score before adjustments.
type ScoreBreakdown struct {
	OverallScore   float64          `json:"overallScore"`
	WeightedScores []DimensionScore `json:"weightedScores"`
}

// Adjustment is an auditable contextual score delta.
type Adjustment struct {
	Type    string  `json:"type"`
	Applied bool    `json:"applied"`
	Value   float64 `json:"value"`
	Reason  string  `json:"reason"`
}

// Tier is a named performance band.
type Tier struct {
	Name       string  `json:"name"`
	MinScore   float64 `json:"minScore"`
	Multiplier float64 `json:"multiplier"`
	Color      string  `json:"color"`
	Badge      string  `json:"badge"`
}

// PerformanceBreakdown explains how the overall score was reached.
type PerformanceBreakdown struct {
	RawScore    float64      `json:"rawScore"`
	Adjustments []Adjustment `json:"adjustments"`
	Tier        Tier         `json:"tier"`
}

// PerformanceCalculationResult is the output of the performance pipeline.
type PerformanceCalculationResult struct {
	OverallScore        float64              `json:"overallScore"`
	WeightedScores      []DimensionScore     `json:"weightedScores"`
	AppliedWeights      PerformanceWeights   `json:"appliedWeights"`
	ConfigurationID     string               `json:"configurationId,omitempty"`
	ContextRulesApplied []string             `json:"contextRulesApplied"`
	Breakdown           PerformanceBreakdown `json:"breakdown"`
	Recommendations     []string             `json:"recommendations"`
}

// Bonus is a discrete XP award from a bonus rule.
type Bonus struct {
	Type   string `json:"type"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// XPBreakdown shows the XP value after each stage of the calculation.
type XPBreakdown struct {
	Activity    int     `json:"activity"`
	Difficulty  float64 `json:"difficulty"`
	Performance float64 `json:"performance"`
	Bonuses     []Bonus `json:"bonuses"`
	Final       int     `json:"final"`
}

// XPCalculationResult is the XP awarded for one activity.
type XPCalculationResult struct {
	BaseXP                int         `json:"baseXP"`
	DifficultyMultiplier  float64     `json:"difficultyMultiplier"`
	PerformanceMultiplier float64     `json:"performanceMultiplier"`
	PerformanceBand       string      `json:"performanceBand"`
	BonusXP               int         `json:"bonusXP"`
	TotalXP               int         `json:"totalXP"`
	Breakdown             XPBreakdown `json:"breakdown"`
	Explanations          []string    `json:"explanations"`
}

// XPRange is the static XP envelope of an activity type.
type XPRange struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Typical int `json:"typical"`
}

// TestScenario replays one historical sample under both weight vectors.
type TestScenario struct {
	Description    string  `json:"description"`
	CurrentScore   float64 `json:"currentScore"`
	OptimizedScore float64 `json:"optimizedScore"`
	Improvement    float64 `json:"improvement"`
}

// WeightOptimizationResult is a weight suggestion derived from history.
type WeightOptimizationResult struct {
	CurrentWeights      PerformanceWeights `json:"currentWeights"`
	SuggestedWeights    PerformanceWeights `json:"suggestedWeights"`
	Reasoning           []string           `json:"reasoning"`
	ExpectedImprovement float64            `json:"expectedImprovement"`
	ConfidenceScore     float64            `json:"confidenceScore"`
	TestScenarios       []TestScenario     `json:"testScenarios"`
}

// Trend direction labels.
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// Trend is the linear direction of one dimension over sample order.
type Trend struct {
	Dimension Dimension `json:"dimension"`
	Direction string    `json:"direction"`
	Rate      float64   `json:"rate"`
}

// Outlier is a sample whose z-score on a dimension exceeds the cutoff.
type Outlier struct {
	Index     int       `json:"index"`
	Dimension Dimension `json:"dimension"`
	Value     float64   `json:"value"`
	ZScore    float64   `json:"zScore"`
}

// PerformanceAnalytics aggregates a batch of metric samples.
type PerformanceAnalytics struct {
	AverageScores     map[Dimension]float64               `json:"averageScores"`
	ScoreDistribution map[string]int                      `json:"scoreDistribution"`
	CorrelationMatrix map[Dimension]map[Dimension]float64 `json:"correlationMatrix"`
	Trends            []Trend                             `json:"trends"`
	Outliers          []Outlier                           `json:"outliers"`
}
