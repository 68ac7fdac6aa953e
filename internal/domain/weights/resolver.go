// Package weights resolves the effective weight vector for a scoring
// context and manages the weight configurations it is resolved from.
package weights

import (
	"sort"

	"github.com/okian/supportxp/internal/domain/model"
)

// Resolution is the outcome of weight resolution.
type Resolution struct {
	// Weights sums to 1.0 within model.WeightSumTolerance.
	Weights model.PerformanceWeights
	// ConfigurationID is empty when no configuration was selected.
	ConfigurationID string
	// MatchedRules holds the matching context rules in application order.
	MatchedRules []model.ContextRule
}

// Resolver merges a base weight vector with matching context rules.
type Resolver struct {
	fallback model.PerformanceWeights
}

// NewResolver creates a Resolver that uses fallback when neither explicit
// base weights nor a configuration are available.
func NewResolver(fallback model.PerformanceWeights) *Resolver {
	if !fallback.IsNormalized() {
		fallback = fallback.Normalize()
	}
	return &Resolver{fallback: fallback}
}

// Fallback returns the weights used when nothing else applies.
func (r *Resolver) Fallback() model.PerformanceWeights {
	return r.fallback
}

// Resolve computes the applied weights for sc.
//
// configs must already be filtered to effective configurations; the one with
// the highest priority is selected. The starting vector is base when given,
// otherwise the selected configuration's weights, otherwise the fallback.
// Context rules of the selected configuration followed by extra are matched
// against sc and applied in ascending priority, each replacing only the
// dimensions it names. The result is renormalized only when a rule changed
// the weights.
func (r *Resolver) Resolve(base *model.PerformanceWeights, sc model.ScoringContext, configs []model.WeightConfiguration, extra []model.ContextRule) Resolution {
	res := Resolution{Weights: r.fallback}

	var rules []model.ContextRule
	if selected, ok := selectConfiguration(configs); ok {
		res.Weights = selected.Weights
		res.ConfigurationID = selected.ID
		rules = append(rules, selected.ContextRules...)
	}
	if base != nil {
		res.Weights = *base
	}
	rules = append(rules, extra...)

	for _, rule := range rules {
		if rule.Condition.Matches(sc) {
			res.MatchedRules = append(res.MatchedRules, rule)
		}
	}
	sort.SliceStable(res.MatchedRules, func(i, j int) bool {
		return res.MatchedRules[i].Priority < res.MatchedRules[j].Priority
	})

	overridden := false
	for _, rule := range res.MatchedRules {
		if rule.Weights == nil || rule.Weights.IsEmpty() {
			continue
		}
		res.Weights = rule.Weights.Apply(res.Weights)
		overridden = true
	}
	if overridden || !res.Weights.IsNormalized() {
		res.Weights = res.Weights.Normalize()
	}
	return res
}

// selectConfiguration picks the highest-priority configuration; ties go to
// the earliest created, then the smallest id.
func selectConfiguration(configs []model.WeightConfiguration) (model.WeightConfiguration, bool) {
	if len(configs) == 0 {
		return model.WeightConfiguration{}, false
	}
	best := configs[0]
	for _, c := range configs[1:] {
		if rankedBefore(c, best) {
			best = c
		}
	}
	return best, true
}

func rankedBefore(a, b model.WeightConfiguration) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// SortByPriority orders configurations the way the resolver ranks them.
func SortByPriority(configs []model.WeightConfiguration) {
	sort.SliceStable(configs, func(i, j int) bool {
		return rankedBefore(configs[i], configs[j])
	})
}
