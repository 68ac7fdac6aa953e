package loadgen

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/supportxp/internal/domain/model"
	"github.com/okian/supportxp/internal/domain/xp"
)

// profile is the metric range a user tends to score in.
type profile struct {
	name   string
	min    float64
	spread float64
}

// Most users are average; elite and struggling users are rare.
var profiles = []profile{
	{"average", 60, 20},
	{"average", 60, 20},
	{"high", 78, 14},
	{"low", 30, 25},
	{"elite", 90, 10},
	{"struggling", 5, 30},
	{"mid-high", 70, 15},
	{"wide", 0, 100},
}

const (
	innovationChance = 0.1
	minResolution    = 5.0
	resolutionSpread = 115.0
)

// Generator produces a reproducible stream of submissions for a seed.
type Generator struct {
	src   *rand.ChaCha8
	rng   *rand.Rand
	users []string
	kinds []profile
	epoch time.Time
}

// NewGenerator creates a Generator for users distinct users.
func NewGenerator(seed uint64, users int) *Generator {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	src := rand.NewChaCha8(key)
	g := &Generator{
		src:   src,
		rng:   rand.New(src),
		users: make([]string, users),
		kinds: make([]profile, users),
		epoch: time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC),
	}
	for i := range g.users {
		g.users[i] = fmt.Sprintf("agent-%04d", i)
		g.kinds[i] = profiles[g.rng.IntN(len(profiles))]
	}
	return g
}

// Generate returns n submissions. With probability duplicateRate a
// submission resends an earlier one unchanged, id included.
func (g *Generator) Generate(n int, duplicateRate float64) ([]model.ActivitySubmission, error) {
	out := make([]model.ActivitySubmission, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 && g.rng.Float64() < duplicateRate {
			out = append(out, out[g.rng.IntN(len(out))])
			continue
		}
		id, err := uuid.NewRandomFromReader(g.src)
		if err != nil {
			return nil, err
		}
		u := g.rng.IntN(len(g.users))
		out = append(out, model.ActivitySubmission{
			ID:          id.String(),
			UserID:      g.users[u],
			Activity:    g.activity(g.kinds[u]),
			SubmittedAt: g.epoch.Add(time.Duration(i) * time.Second),
		})
	}
	return out, nil
}

func (g *Generator) activity(p profile) model.ActivityData {
	metric := func() float64 {
		v := p.min + g.rng.Float64()*p.spread
		return math.Round(math.Min(100, math.Max(0, v))*10) / 10
	}
	m := model.PerformanceMetrics{
		TechnicalAccuracy:    metric(),
		CommunicationQuality: metric(),
		CustomerSatisfaction: metric(),
		ProcessCompliance:    metric(),
		ResolutionTime:       math.Round(minResolution + g.rng.Float64()*resolutionSpread),
	}
	// strong performers resolve and verify more often
	chance := (p.min + p.spread/2) / 100
	m.VerificationSuccess = g.rng.Float64() < chance
	m.FirstTimeResolution = g.rng.Float64() < chance
	m.KnowledgeSharing = g.rng.Float64() < chance/2

	a := model.ActivityData{
		Type:               model.ActivityTypes[g.rng.IntN(len(model.ActivityTypes))],
		ScenarioDifficulty: model.Difficulties[g.rng.IntN(len(model.Difficulties))],
		PerformanceMetrics: m,
	}
	if g.rng.Float64() < innovationChance {
		a.AdditionalContext = map[string]bool{model.FlagInnovativeApproach: true}
	}
	return a
}

// ExpectedTotals computes the XP each user should hold once every
// submission is awarded exactly once. It assumes the engine runs the
// default bonus thresholds.
func ExpectedTotals(subs []model.ActivitySubmission) (map[string]int, error) {
	agg := xp.NewAggregator(xp.NewBonusEngine())
	seen := make(map[string]struct{}, len(subs))
	totals := make(map[string]int)
	for _, s := range subs {
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		res, err := agg.Calculate(s.Activity)
		if err != nil {
			return nil, err
		}
		totals[s.UserID] += res.TotalXP
	}
	return totals, nil
}
