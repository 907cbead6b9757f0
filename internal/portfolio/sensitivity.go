package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// BudgetLevels returns the equally spaced budgets swept around base, from
// base*(1-r) to base*(1+r) where r is rangePercent/100
func BudgetLevels(base decimal.Decimal, rangePercent float64, count int) []decimal.Decimal {
	r := decimal.NewFromFloat(rangePercent).Div(hundred)
	one := decimal.NewFromInt(1)
	low := base.Mul(one.Sub(r))
	high := base.Mul(one.Add(r))
	step := high.Sub(low).Div(decimal.NewFromInt(int64(count - 1)))

	levels := make([]decimal.Decimal, count)
	for i := range levels {
		levels[i] = low.Add(step.Mul(decimal.NewFromInt(int64(i)))).Round(2)
	}
	return levels
}

// AnalyzeSensitivity sweeps the portfolio budget around baseBudget
func (o *Optimizer) AnalyzeSensitivity(ctx context.Context, baseBudget decimal.Decimal, rangePercent float64) (*domain.SensitivityAnalysis, error) {
	return o.AnalyzeSensitivityWithConstraints(ctx, domain.OptimizationConstraints{MaxBudget: baseBudget}, rangePercent)
}

// AnalyzeSensitivityWithConstraints sweeps MaxBudget of base while keeping its other constraints
func (o *Optimizer) AnalyzeSensitivityWithConstraints(ctx context.Context, base domain.OptimizationConstraints, rangePercent float64) (*domain.SensitivityAnalysis, error) {
	if !base.MaxBudget.IsPositive() {
		return nil, &domain.ValidationError{Operation: "analyze_sensitivity", Message: "base budget must be positive"}
	}
	if rangePercent < 0 || rangePercent > 100 {
		return nil, &domain.ValidationError{Operation: "analyze_sensitivity", Message: fmt.Sprintf("range percent must be between 0 and 100, got %g", rangePercent)}
	}

	projects, err := o.LoadProjects(ctx)
	if err != nil {
		return nil, err
	}

	levels := BudgetLevels(base.MaxBudget, rangePercent, o.Heuristics.SensitivityLevels)
	outcomes := make([]*domain.PortfolioResult, len(levels))

	g, gctx := errgroup.WithContext(ctx)
	if o.Parallelism > 1 {
		g.SetLimit(o.Parallelism)
	} else {
		g.SetLimit(1)
	}
	for i, budget := range levels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := base
			c.MaxBudget = budget
			result, err := o.Optimize(gctx, projects, c)
			if errors.Is(err, domain.ErrInfeasible) {
				o.Logger.Debugf("sensitivity: budget %s infeasible, skipped", budget.StringFixed(2))
				return nil
			}
			if err != nil {
				return fmt.Errorf("budget %s: %w", budget.StringFixed(2), err)
			}
			outcomes[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	analysis := &domain.SensitivityAnalysis{
		BaseBudget:      base.MaxBudget,
		RangePercent:    rangePercent,
		RequestedLevels: levels,
	}
	for i, result := range outcomes {
		if result == nil {
			continue
		}
		level := domain.SensitivityLevel{
			Budget:         levels[i],
			ProjectCount:   len(result.SelectedProjects),
			TotalCost:      result.TotalCost,
			CIImprovement:  result.TotalCIImprovement,
			FCIImprovement: result.TotalFCIImprovement,
		}
		if levels[i].IsPositive() {
			level.ROI = result.TotalCIImprovement / levels[i].InexactFloat64() * 100
		}
		analysis.BudgetLevels = append(analysis.BudgetLevels, level)
	}
	if len(analysis.BudgetLevels) == 0 {
		return nil, &domain.InfeasibleError{
			Operation: "analyze_sensitivity",
			Message: fmt.Sprintf("no feasible plan in the budget range %s to %s",
				levels[0].StringFixed(2), levels[len(levels)-1].StringFixed(2)),
		}
	}

	sort.SliceStable(analysis.BudgetLevels, func(a, b int) bool {
		return analysis.BudgetLevels[a].Budget.LessThan(analysis.BudgetLevels[b].Budget)
	})
	deriveSensitivityMetrics(analysis, o.Heuristics.InflectionRatio)
	return analysis, nil
}

// deriveSensitivityMetrics fills marginal benefit, the best-ROI budget and the inflection point.
// BudgetLevels must be sorted by ascending budget.
func deriveSensitivityMetrics(a *domain.SensitivityAnalysis, ratio float64) {
	levels := a.BudgetLevels
	for i := range levels {
		if i > 0 {
			levels[i].MarginalBenefit = levels[i].CIImprovement - levels[i-1].CIImprovement
		}
	}

	best := 0
	for i := range levels {
		if levels[i].ROI > levels[best].ROI {
			best = i
		}
	}
	a.OptimalBudget = levels[best].Budget

	a.InflectionPoint = a.BaseBudget
	for i := 1; i < len(levels); i++ {
		if levels[i].MarginalBenefit < ratio*levels[i-1].MarginalBenefit {
			a.InflectionPoint = levels[i].Budget
			break
		}
	}
}
