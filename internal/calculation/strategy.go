package calculation

import (
	"math"
	"strconv"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
)

// ResolvedComponent is an assessment with every optional value filled in
type ResolvedComponent struct {
	domain.ComponentSnapshot
	ProjectID       string
	Condition       float64
	RepairCost      decimal.Decimal
	ReplacementCost decimal.Decimal
	UsefulLife      int
	ActionYear      int
	Criticality     float64
	Defaults        []domain.DataDefault
}

// ResolveComponent applies the documented defaults to a snapshot and derives its replacement cost
func ResolveComponent(projectID string, c domain.ComponentSnapshot, currentYear int, h *domain.Heuristics) ResolvedComponent {
	rc := ResolvedComponent{
		ComponentSnapshot: c,
		ProjectID:         projectID,
		Condition:         c.ConditionScore(),
	}
	note := func(field, value string) {
		rc.Defaults = append(rc.Defaults, domain.DataDefault{
			ProjectID:     projectID,
			ComponentCode: c.ComponentCode,
			Field:         field,
			Value:         value,
		})
	}

	if c.EstimatedRepairCost != nil {
		rc.RepairCost = *c.EstimatedRepairCost
	} else {
		rc.RepairCost = h.DefaultRepairCost
		note("estimated_repair_cost", h.DefaultRepairCost.String())
	}
	if c.ExpectedUsefulLife != nil && *c.ExpectedUsefulLife > 0 {
		rc.UsefulLife = *c.ExpectedUsefulLife
	} else {
		rc.UsefulLife = h.DefaultUsefulLife
		note("expected_useful_life", strconv.Itoa(h.DefaultUsefulLife))
	}
	if c.ActionYear != nil {
		rc.ActionYear = *c.ActionYear
	} else {
		rc.ActionYear = currentYear + 1
		note("action_year", strconv.Itoa(rc.ActionYear))
	}
	if c.Criticality != nil {
		rc.Criticality = *c.Criticality
	} else {
		rc.Criticality = h.DefaultCriticality
	}

	if c.ReplacementValue != nil && c.ReplacementValue.IsPositive() {
		rc.ReplacementCost = *c.ReplacementValue
	} else {
		rc.ReplacementCost = rc.RepairCost.Mul(decimal.NewFromFloat(h.ReplacementCostFactor(rc.Condition)))
	}
	return rc
}

// BuildStrategyOptions computes the four treatment options for a resolved component,
// in the order replace, rehabilitate, defer, do_nothing.
func BuildStrategyOptions(rc ResolvedComponent, cfg domain.OptimizationConfig, currentYear int, h *domain.Heuristics) []domain.StrategyOption {
	cond := rc.Condition
	replacementCost := rc.ReplacementCost
	rehabCost := replacementCost.Mul(decimal.NewFromFloat(h.RehabCostShare(cond)))

	baseRisk := (100 - cond) * rc.Criticality
	failureCost := replacementCost.
		Mul(decimal.NewFromFloat(h.FailureCostMultiplier)).
		Mul(decimal.NewFromFloat(h.FailureProbability(cond)))
	horizonMaintenance := replacementCost.Mul(decimal.NewFromFloat(h.MaintenanceRate)).Mul(decimal.NewFromInt(int64(cfg.TimeHorizon)))

	yearsOut := rc.ActionYear - currentYear
	if yearsOut < 0 {
		yearsOut = 0
	}

	rehabImprovement := math.Max(0, math.Min(h.RehabMaxImprovement, h.RehabTargetCondition-cond))

	specs := []struct {
		strategy    domain.StrategyType
		cost        decimal.Decimal
		improvement float64
		life        int
		deferral    int
	}{
		{domain.StrategyReplace, replacementCost, 100 - cond, rc.UsefulLife, 0},
		{domain.StrategyRehabilitate, rehabCost, rehabImprovement, int(math.Round(float64(rc.UsefulLife) * h.RehabLifeExtensionShare)), 0},
		{domain.StrategyDefer, replacementCost.Mul(decimal.NewFromFloat(h.DeferCostShare)), 0, h.DeferralYears, h.DeferralYears},
		{domain.StrategyDoNothing, decimal.Zero, 0, 0, 0},
	}

	options := make([]domain.StrategyOption, 0, len(specs))
	for _, s := range specs {
		opt := domain.StrategyOption{
			ComponentCode:        rc.ComponentCode,
			Strategy:             s.strategy,
			ActionYear:           rc.ActionYear,
			DeferralYears:        s.deferral,
			StrategyCost:         s.cost.Round(2),
			LifeExtension:        s.life,
			ConditionImprovement: s.improvement,
			RiskReduction:        baseRisk * h.RiskMultipliers[s.strategy],
			FailureCostAvoided:   decimal.Zero,
			MaintenanceSavings:   horizonMaintenance.Mul(decimal.NewFromFloat(h.MaintenanceSavingsShare[s.strategy])).Round(2),
		}
		if s.strategy != domain.StrategyDoNothing {
			opt.FailureCostAvoided = failureCost.Round(2)
		}
		opt.PresentValueCost = PresentValue(opt.StrategyCost, yearsOut+s.deferral, cfg.DiscountRate).Round(2)

		switch s.strategy {
		case domain.StrategyDefer:
			opt.CostEffectiveness = h.DeferCostEffectiveness
		case domain.StrategyDoNothing:
			opt.CostEffectiveness = h.DoNothingCostEffectiveness
		default:
			if opt.StrategyCost.IsPositive() {
				benefit := opt.TotalBenefit().Add(decimal.NewFromFloat(opt.ConditionImprovement * h.ConditionPointValue))
				opt.CostEffectiveness = benefit.Div(opt.StrategyCost).InexactFloat64()
			}
		}
		options = append(options, opt)
	}
	return options
}
