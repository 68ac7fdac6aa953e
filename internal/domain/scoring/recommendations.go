package scoring

import (
	"fmt"
	"sort"

	"github.com/okian/supportxp/internal/domain/model"
)

const defaultRecommendationThreshold = 70

var guidance = map[model.Dimension]string{
	model.TechnicalAccuracy:    "Strengthen technical accuracy: confirm the root cause and test the fix before closing the ticket",
	model.CommunicationQuality: "Improve communication quality: explain each step in plain language and confirm the customer understood",
	model.CustomerSatisfaction: "Raise customer satisfaction: set expectations early and follow up once the issue is resolved",
	model.ProcessCompliance:    "Follow the support process more closely: log every action and use the escalation checklist",
}

// RecommendationGenerator turns weak dimensions into guidance.
type RecommendationGenerator struct {
	threshold float64
}

// NewRecommendationGenerator creates a generator flagging dimensions scored
// below threshold. Zero means unset; zero or a threshold outside (0,100]
// falls back to 70.
func NewRecommendationGenerator(threshold float64) *RecommendationGenerator {
	if threshold <= minScoreValue || threshold > maxScoreValue {
		threshold = defaultRecommendationThreshold
	}
	return &RecommendationGenerator{threshold: threshold}
}

// Generate emits one recommendation per dimension below the threshold,
// weakest first.
func (g *RecommendationGenerator) Generate(scores []model.DimensionScore) []string {
	weak := make([]model.DimensionScore, 0, len(scores))
	for _, s := range scores {
		if s.Score < g.threshold {
			weak = append(weak, s)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].Score < weak[j].Score })

	out := make([]string, 0, len(weak))
	for _, s := range weak {
		text, ok := guidance[s.Dimension]
		if !ok {
			text = fmt.Sprintf("Work on %s", s.Dimension.Label())
		}
		out = append(out, fmt.Sprintf("%s (scored %g, target %g)", text, s.Score, g.threshold))
	}
	return out
}
