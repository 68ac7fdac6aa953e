package model

import "math"

// WeightSumTolerance is the allowed deviation of a weight vector's sum from 1.0.
const WeightSumTolerance = 0.01

// PerformanceMetrics is the raw outcome of one support activity. The four
// numeric dimensions are expected in [0,100]; ResolutionTime is in minutes.
type PerformanceMetrics struct {
	TechnicalAccuracy    float64 `json:"technicalAccuracy" validate:"min=0,max=100"`
	CommunicationQuality float64 `json:"communicationQuality" validate:"min=0,max=100"`
	CustomerSatisfaction float64 `json:"customerSatisfaction" validate:"min=0,max=100"`
	ProcessCompliance    float64 `json:"processCompliance" validate:"min=0,max=100"`
	VerificationSuccess  bool    `json:"verificationSuccess"`
	FirstTimeResolution  bool    `json:"firstTimeResolution"`
	KnowledgeSharing     bool    `json:"knowledgeSharing"`
	ResolutionTime       float64 `json:"resolutionTime" validate:"min=0"`
}

// Value returns the metric for a weighted dimension.
func (m PerformanceMetrics) Value(d Dimension) float64 {
	switch d {
	case TechnicalAccuracy:
		return m.TechnicalAccuracy
	case CommunicationQuality:
		return m.CommunicationQuality
	case CustomerSatisfaction:
		return m.CustomerSatisfaction
	case ProcessCompliance:
		return m.ProcessCompliance
	}
	return 0
}

// NumericAverage is the unweighted mean of the four numeric dimensions.
func (m PerformanceMetrics) NumericAverage() float64 {
	return (m.TechnicalAccuracy + m.CommunicationQuality + m.CustomerSatisfaction + m.ProcessCompliance) / float64(len(Dimensions))
}

// PerformanceWeights assigns a weight to each numeric dimension. A valid
// vector sums to 1.0 within WeightSumTolerance.
type PerformanceWeights struct {
	TechnicalAccuracy    float64 `json:"technicalAccuracy" validate:"min=0,max=1"`
	CommunicationQuality float64 `json:"communicationQuality" validate:"min=0,max=1"`
	CustomerSatisfaction float64 `json:"customerSatisfaction" validate:"min=0,max=1"`
	ProcessCompliance    float64 `json:"processCompliance" validate:"min=0,max=1"`
}

// EqualWeights spreads weight evenly across all dimensions.
func EqualWeights() PerformanceWeights {
	w := 1 / float64(len(Dimensions))
	return PerformanceWeights{
		TechnicalAccuracy:    w,
		CommunicationQuality: w,
		CustomerSatisfaction: w,
		ProcessCompliance:    w,
	}
}

// Get returns the weight of d.
func (w PerformanceWeights) Get(d Dimension) float64 {
	switch d {
	case TechnicalAccuracy:
		return w.TechnicalAccuracy
	case CommunicationQuality:
		return w.CommunicationQuality
	case CustomerSatisfaction:
		return w.CustomerSatisfaction
	case ProcessCompliance:
		return w.ProcessCompliance
	}
	return 0
}

// With returns a copy of w with d set to v.
func (w PerformanceWeights) With(d Dimension, v float64) PerformanceWeights {
	switch d {
	case TechnicalAccuracy:
		w.TechnicalAccuracy = v
	case CommunicationQuality:
		w.CommunicationQuality = v
	case CustomerSatisfaction:
		w.CustomerSatisfaction = v
	case ProcessCompliance:
		w.ProcessCompliance = v
	}
	return w
}

// Sum returns the total of all weights.
func (w PerformanceWeights) Sum() float64 {
	return w.TechnicalAccuracy + w.CommunicationQuality + w.CustomerSatisfaction + w.ProcessCompliance
}

// IsNormalized reports whether the weights sum to 1.0 within tolerance.
func (w PerformanceWeights) IsNormalized() bool {
	return math.Abs(w.Sum()-1.0) <= WeightSumTolerance
}

// Normalize scales every weight proportionally so the vector sums to 1.0.
// Negative weights are treated as zero; an all-zero vector becomes EqualWeights.
func (w PerformanceWeights) Normalize() PerformanceWeights {
	out := w
	var sum float64
	for _, d := range Dimensions {
		v := math.Max(0, out.Get(d))
		out = out.With(d, v)
		sum += v
	}
	if sum == 0 {
		return EqualWeights()
	}
	for _, d := range Dimensions {
		out = out.With(d, out.Get(d)/sum)
	}
	return out
}

// WeightOverride is a partial weight vector; nil fields are left untouched.
type WeightOverride struct {
	TechnicalAccuracy    *float64 `json:"technicalAccuracy,omitempty" validate:"omitempty,min=0,max=1"`
	CommunicationQuality *float64 `json:"communicationQuality,omitempty" validate:"omitempty,min=0,max=1"`
	CustomerSatisfaction *float64 `json:"customerSatisfaction,omitempty" validate:"omitempty,min=0,max=1"`
	ProcessCompliance    *float64 `json:"processCompliance,omitempty" validate:"omitempty,min=0,max=1"`
}

// Lookup returns the override for d, if any.
func (o WeightOverride) Lookup(d Dimension) (float64, bool) {
	var p *float64
	switch d {
	case TechnicalAccuracy:
		p = o.TechnicalAccuracy
	case CommunicationQuality:
		p = o.CommunicationQuality
	case CustomerSatisfaction:
		p = o.CustomerSatisfaction
	case ProcessCompliance:
		p = o.ProcessCompliance
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Set stores v as the override for d.
func (o *WeightOverride) Set(d Dimension, v float64) {
	switch d {
	case TechnicalAccuracy:
		o.TechnicalAccuracy = &v
	case CommunicationQuality:
		o.CommunicationQuality = &v
	case CustomerSatisfaction:
		o.CustomerSatisfaction = &v
	case ProcessCompliance:
		o.ProcessCompliance = &v
	}
}

// Apply replaces the overridden dimensions of w. The result is not renormalized.
func (o WeightOverride) Apply(w PerformanceWeights) PerformanceWeights {
	for _, d := range Dimensions {
		if v, ok := o.Lookup(d); ok {
			w = w.With(d, v)
		}
	}
	return w
}

// IsEmpty reports whether no dimension is overridden.
func (o WeightOverride) IsEmpty() bool {
	for _, d := range Dimensions {
		if _, ok := o.Lookup(d); ok {
			return false
		}
	}
	return true
}
