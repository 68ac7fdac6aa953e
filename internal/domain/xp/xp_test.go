package xp_test

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/supportxp/internal/domain/model"
	"github.com/okian/supportxp/internal/domain/xp"
)

func ticket(d model.Difficulty) model.ActivityData {
	return model.ActivityData{
		Type:               model.ActivityTicketCompletion,
		ScenarioDifficulty: d,
		PerformanceMetrics: model.PerformanceMetrics{
			TechnicalAccuracy:    80,
			CommunicationQuality: 75,
			CustomerSatisfaction: 85,
			ProcessCompliance:    70,
			VerificationSuccess:  true,
			FirstTimeResolution:  true,
			ResolutionTime:       25,
		},
	}
}

func bonusTypes(bonuses []model.Bonus) []string {
	out := make([]string, 0, len(bonuses))
	for _, b := range bonuses {
		out = append(out, b.Type)
	}
	return out
}

func TestBonusEngine_Evaluate(t *testing.T) {
	engine := xp.NewBonusEngine()

	Convey("Given the intermediate ticket scenario", t, func() {
		bonuses := engine.Evaluate(ticket(model.DifficultyIntermediate))

		Convey("Then first-try and speed bonuses fire", func() {
			So(bonusTypes(bonuses), ShouldResemble, []string{xp.BonusFirstTryResolution, xp.BonusSpeed})
			So(xp.Total(bonuses), ShouldEqual, 13)
		})
	})

	Convey("Given a flawless activity with an innovative approach", t, func() {
		a := model.ActivityData{
			Type:               model.ActivityTicketCompletion,
			ScenarioDifficulty: model.DifficultyAdvanced,
			PerformanceMetrics: model.PerformanceMetrics{
				TechnicalAccuracy:    100,
				CommunicationQuality: 100,
				CustomerSatisfaction: 100,
				ProcessCompliance:    100,
				VerificationSuccess:  true,
				FirstTimeResolution:  true,
				KnowledgeSharing:     true,
				ResolutionTime:       5,
			},
			AdditionalContext: map[string]bool{model.FlagInnovativeApproach: true},
		}
		bonuses := engine.Evaluate(a)

		Convey("Then every rule fires simultaneously", func() {
			So(bonuses, ShouldHaveLength, 7)
			So(xp.Total(bonuses), ShouldEqual, engine.MaxPoints())
			So(engine.MaxPoints(), ShouldEqual, 10+15+12+8+5+5+8)
		})
	})

	Convey("Given the rule thresholds", t, func() {
		base := model.ActivityData{Type: model.ActivityVerification, ScenarioDifficulty: model.DifficultyStarter}
		base.PerformanceMetrics.ResolutionTime = 120

		Convey("Then verification needs technical accuracy of 90", func() {
			a := base
			a.PerformanceMetrics.VerificationSuccess = true
			a.PerformanceMetrics.TechnicalAccuracy = 89
			So(engine.Evaluate(a), ShouldBeEmpty)
			a.PerformanceMetrics.TechnicalAccuracy = 90
			So(bonusTypes(engine.Evaluate(a)), ShouldResemble, []string{xp.BonusPerfectVerification})
		})

		Convey("And customer service needs both satisfaction and communication", func() {
			a := base
			a.PerformanceMetrics.CustomerSatisfaction = 90
			a.PerformanceMetrics.CommunicationQuality = 84
			So(engine.Evaluate(a), ShouldBeEmpty)
			a.PerformanceMetrics.CommunicationQuality = 85
			So(bonusTypes(engine.Evaluate(a)), ShouldResemble, []string{xp.BonusCustomerService})
		})

		Convey("And speed is inclusive at 30 minutes", func() {
			a := base
			a.PerformanceMetrics.ResolutionTime = 30
			So(bonusTypes(engine.Evaluate(a)), ShouldResemble, []string{xp.BonusSpeed})
			a.PerformanceMetrics.ResolutionTime = 30.5
			So(engine.Evaluate(a), ShouldBeEmpty)
		})

		Convey("And innovation requires adequate performance", func() {
			a := base
			a.AdditionalContext = map[string]bool{model.FlagInnovativeApproach: true}
			So(engine.Evaluate(a), ShouldBeEmpty)
			a.PerformanceMetrics.TechnicalAccuracy = 70
			a.PerformanceMetrics.CommunicationQuality = 70
			a.PerformanceMetrics.CustomerSatisfaction = 70
			a.PerformanceMetrics.ProcessCompliance = 70
			So(bonusTypes(engine.Evaluate(a)), ShouldResemble, []string{xp.BonusInnovation})
		})
	})

	Convey("Given custom thresholds", t, func() {
		custom := xp.NewBonusEngine(xp.WithSpeedBonusMinutes(10), xp.WithInnovationMinAverage(0))
		a := model.ActivityData{AdditionalContext: map[string]bool{model.FlagInnovativeApproach: true}}
		a.PerformanceMetrics.ResolutionTime = 15
		So(bonusTypes(custom.Evaluate(a)), ShouldResemble, []string{xp.BonusInnovation})
	})
}

func TestAggregator_Calculate(t *testing.T) {
	agg := xp.NewAggregator(nil)

	Convey("Given the intermediate ticket scenario", t, func() {
		res, err := agg.Calculate(ticket(model.DifficultyIntermediate))
		So(err, ShouldBeNil)

		Convey("Then the tables drive every factor", func() {
			So(res.BaseXP, ShouldEqual, 20)
			So(res.DifficultyMultiplier, ShouldEqual, 1.5)
			// average 77.5 lands in the "good" band
			So(res.PerformanceMultiplier, ShouldEqual, 1.0)
			So(res.PerformanceBand, ShouldEqual, "good")
			So(res.BonusXP, ShouldEqual, 13)
			So(res.TotalXP, ShouldEqual, 30+13)
			So(res.TotalXP, ShouldBeGreaterThanOrEqualTo, 20*1.5*0.8+13)
		})

		Convey("And the breakdown follows each stage", func() {
			So(res.Breakdown.Activity, ShouldEqual, 20)
			So(res.Breakdown.Difficulty, ShouldEqual, 30)
			So(res.Breakdown.Performance, ShouldEqual, 30)
			So(res.Breakdown.Bonuses, ShouldHaveLength, 2)
			So(res.Breakdown.Final, ShouldEqual, res.TotalXP)
		})

		Convey("And the first explanation references base XP", func() {
			So(res.Explanations, ShouldNotBeEmpty)
			So(res.Explanations[0], ShouldContainSubstring, "base XP")
		})
	})

	Convey("Given increasing difficulty", t, func() {
		var totals []int
		for _, d := range model.Difficulties {
			res, err := agg.Calculate(ticket(d))
			So(err, ShouldBeNil)
			totals = append(totals, res.TotalXP)
		}

		Convey("Then total XP strictly increases", func() {
			So(totals[0], ShouldBeLessThan, totals[1])
			So(totals[1], ShouldBeLessThan, totals[2])
		})
	})

	Convey("Given poor performance with no bonuses", t, func() {
		poorTotals := func(at model.ActivityType) []int {
			var totals []int
			for _, d := range model.Difficulties {
				res, err := agg.Calculate(model.ActivityData{
					Type:               at,
					ScenarioDifficulty: d,
					PerformanceMetrics: model.PerformanceMetrics{ResolutionTime: 600},
				})
				So(err, ShouldBeNil)
				So(res.BonusXP, ShouldEqual, 0)
				totals = append(totals, res.TotalXP)
			}
			return totals
		}

		Convey("Then rounding ties adjacent difficulties for the smallest bases", func() {
			So(poorTotals(model.ActivityCustomerCommunication), ShouldResemble, []int{2, 2, 3})
			So(poorTotals(model.ActivityKnowledgeSearch), ShouldResemble, []int{1, 2, 2})
		})

		Convey("And every other activity still strictly increases", func() {
			for _, at := range []model.ActivityType{
				model.ActivityTicketCompletion,
				model.ActivityVerification,
				model.ActivityDocumentation,
				model.ActivityLearningProgress,
			} {
				totals := poorTotals(at)
				So(totals[0], ShouldBeLessThan, totals[1])
				So(totals[1], ShouldBeLessThan, totals[2])
			}
		})
	})

	Convey("Given all-zero metrics for the smallest activity", t, func() {
		res, err := agg.Calculate(model.ActivityData{
			Type:               model.ActivityKnowledgeSearch,
			ScenarioDifficulty: model.DifficultyStarter,
			PerformanceMetrics: model.PerformanceMetrics{ResolutionTime: 600},
		})

		Convey("Then the award is still a positive integer", func() {
			So(err, ShouldBeNil)
			So(res.PerformanceMultiplier, ShouldEqual, 0.5)
			So(res.TotalXP, ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given the performance bands", t, func() {
		So(xp.BandFor(95).Multiplier, ShouldEqual, 1.5)
		So(xp.BandFor(90).Name, ShouldEqual, "excellent")
		So(xp.BandFor(89.9).Name, ShouldEqual, "good")
		So(xp.BandFor(60).Name, ShouldEqual, "acceptable")
		So(xp.BandFor(59.9).Multiplier, ShouldEqual, 0.5)
		So(xp.BandFor(-10).Name, ShouldEqual, "poor")
	})

	Convey("Given unknown enums", t, func() {
		_, errType := agg.Calculate(model.ActivityData{Type: "juggling", ScenarioDifficulty: model.DifficultyStarter})
		_, errDiff := agg.Calculate(model.ActivityData{Type: model.ActivityDocumentation, ScenarioDifficulty: "legendary"})

		Convey("Then sentinel errors are returned", func() {
			So(errors.Is(errType, xp.ErrUnknownActivityType), ShouldBeTrue)
			So(errors.Is(errDiff, xp.ErrUnknownDifficulty), ShouldBeTrue)
		})
	})
}

func TestAggregator_Limits(t *testing.T) {
	agg := xp.NewAggregator(xp.NewBonusEngine())

	Convey("Given the max possible XP per type and difficulty", t, func() {
		Convey("Then it matches base x difficulty x 1.5 plus every bonus", func() {
			maxXP, err := agg.MaxPossibleXP(model.ActivityTicketCompletion, model.DifficultyAdvanced)
			So(err, ShouldBeNil)
			So(maxXP, ShouldEqual, 60+63)
		})

		Convey("And no activity can exceed it", func() {
			for _, typ := range model.ActivityTypes {
				for _, d := range model.Difficulties {
					maxXP, err := agg.MaxPossibleXP(typ, d)
					So(err, ShouldBeNil)
					for _, v := range []float64{0, 59, 60, 75, 90, 100} {
						a := model.ActivityData{
							Type:               typ,
							ScenarioDifficulty: d,
							PerformanceMetrics: model.PerformanceMetrics{
								TechnicalAccuracy:    v,
								CommunicationQuality: v,
								CustomerSatisfaction: v,
								ProcessCompliance:    v,
								VerificationSuccess:  true,
								FirstTimeResolution:  true,
								KnowledgeSharing:     true,
							},
							AdditionalContext: map[string]bool{model.FlagInnovativeApproach: true},
						}
						res, err := agg.Calculate(a)
						So(err, ShouldBeNil)
						So(res.TotalXP, ShouldBeLessThanOrEqualTo, maxXP)
					}
				}
			}
		})

		Convey("And unknown inputs fail", func() {
			_, err := agg.MaxPossibleXP("juggling", model.DifficultyStarter)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given the XP ranges", t, func() {
		ranges := agg.Ranges()

		Convey("Then every activity type has an ordered envelope", func() {
			So(ranges, ShouldHaveLength, len(model.ActivityTypes))
			for typ, r := range ranges {
				So(strings.TrimSpace(string(typ)), ShouldNotBeEmpty)
				So(r.Min, ShouldBeGreaterThan, 0)
				So(r.Min, ShouldBeLessThanOrEqualTo, r.Typical)
				So(r.Typical, ShouldBeLessThanOrEqualTo, r.Max)
			}
			So(ranges[model.ActivityTicketCompletion], ShouldResemble, model.XPRange{Min: 10, Max: 123, Typical: 30})
		})
	})
}
