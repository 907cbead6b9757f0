package calculation

import (
	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
)

// ProjectCashFlows builds the year-by-year projection of a plan, covering the start year
// and every year of the horizon. Capital is spent in each selection's effective year;
// benefits accrue evenly from the first year after the start.
func (ce *CalculationEngine) ProjectCashFlows(plan []plannedComponent, cfg domain.OptimizationConfig, startYear int) []domain.CashFlowProjection {
	h := &ce.Heuristics
	horizon := decimal.NewFromInt(int64(cfg.TimeHorizon))

	baseMaintenance := decimal.Zero
	baseOperating := decimal.Zero
	annualAvoidance := decimal.Zero
	annualEfficiency := decimal.Zero
	totalReplacement := decimal.Zero
	for _, pc := range plan {
		rc := pc.resolved
		baseMaintenance = baseMaintenance.Add(rc.ReplacementCost.Mul(decimal.NewFromFloat(h.MaintenanceRate)))
		baseOperating = baseOperating.Add(rc.ReplacementCost.Mul(decimal.NewFromFloat(h.OperatingCostRate)))
		annualAvoidance = annualAvoidance.Add(pc.selected.FailureCostAvoided)
		annualEfficiency = annualEfficiency.Add(pc.selected.MaintenanceSavings)
		totalReplacement = totalReplacement.Add(rc.ReplacementCost)
	}
	annualAvoidance = annualAvoidance.Div(horizon)
	annualEfficiency = annualEfficiency.Div(horizon)

	rows := make([]domain.CashFlowProjection, 0, cfg.TimeHorizon+1)
	cumulative := decimal.Zero
	for i := 0; i <= cfg.TimeHorizon; i++ {
		year := startYear + i

		capex := decimal.Zero
		condition := 0.0
		residual := decimal.Zero
		for _, pc := range plan {
			effective := pc.selected.EffectiveYear()
			if effective < startYear {
				effective = startYear
			}
			if effective == year {
				capex = capex.Add(pc.selected.StrategyCost)
			}
			improvement := 0.0
			if effective <= year {
				improvement = pc.selected.ConditionImprovement
			}
			condition += pc.resolved.Condition + improvement
			residual = residual.Add(residualRepairCost(pc.resolved, improvement))
		}

		row := domain.CashFlowProjection{
			Year:               year,
			CapitalExpenditure: capex.Round(2),
			MaintenanceCost:    baseMaintenance.Round(2),
			OperatingCost:      baseOperating.Round(2),
			CostAvoidance:      decimal.Zero,
			EfficiencyGains:    decimal.Zero,
		}
		if i > 0 {
			row.CostAvoidance = annualAvoidance.Round(2)
			row.EfficiencyGains = annualEfficiency.Round(2)
		}
		row.TotalCost = row.CapitalExpenditure.Add(row.MaintenanceCost).Add(row.OperatingCost)
		row.TotalBenefit = row.CostAvoidance.Add(row.EfficiencyGains)
		row.NetCashFlow = row.TotalBenefit.Sub(row.TotalCost)
		cumulative = cumulative.Add(row.NetCashFlow)
		row.CumulativeCashFlow = cumulative

		if len(plan) > 0 {
			row.ProjectedCI = condition / float64(len(plan))
		}
		if totalReplacement.IsPositive() {
			row.ProjectedFCI = residual.Div(totalReplacement).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		rows = append(rows, row)
	}
	return rows
}
