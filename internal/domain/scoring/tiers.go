package scoring

import (
	"sort"

	"github.com/okian/supportxp/internal/domain/model"
)

// Tier names.
const (
	TierOutstanding      = "Outstanding"
	TierExcellent        = "Excellent"
	TierGood             = "Good"
	TierNeedsImprovement = "Needs Improvement"
	TierUnsatisfactory   = "Unsatisfactory"
)

// DefaultTiers partitions [0,100] into five bands, highest first.
func DefaultTiers() []model.Tier {
	return []model.Tier{
		{Name: TierOutstanding, MinScore: 90, Multiplier: 1.5, Color: "#10b981", Badge: "★"},
		{Name: TierExcellent, MinScore: 80, Multiplier: 1.25, Color: "#3b82f6", Badge: "◆"},
		{Name: TierGood, MinScore: 70, Multiplier: 1.0, Color: "#6366f1", Badge: "●"},
		{Name: TierNeedsImprovement, MinScore: 60, Multiplier: 0.75, Color: "#f59e0b", Badge: "▲"},
		{Name: TierUnsatisfactory, MinScore: 0, Multiplier: 0.5, Color: "#ef4444", Badge: "▼"},
	}
}

// TierClassifier maps an overall score to its tier.
type TierClassifier struct {
	tiers []model.Tier // sorted by MinScore desc
}

// NewTierClassifier creates a classifier over tiers, or DefaultTiers when
// tiers is empty. The lowest tier catches every score below its bound.
func NewTierClassifier(tiers ...model.Tier) *TierClassifier {
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}
	sorted := append([]model.Tier(nil), tiers...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinScore > sorted[j].MinScore })
	return &TierClassifier{tiers: sorted}
}

// Classify returns the first tier whose inclusive lower bound is <= score.
func (t *TierClassifier) Classify(score float64) model.Tier {
	for _, tier := range t.tiers {
		if score >= tier.MinScore {
			return tier
		}
	}
	return t.tiers[len(t.tiers)-1]
}

// Tiers returns the tiers highest first.
func (t *TierClassifier) Tiers() []model.Tier {
	return append([]model.Tier(nil), t.tiers...)
}
