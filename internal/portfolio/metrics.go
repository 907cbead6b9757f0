package portfolio

import (
	"context"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metrics summarizes every project in the portfolio, eligible or not.
// CI and FCI are weighted by replacement value.
func Metrics(projects []domain.ProjectData) domain.PortfolioMetrics {
	m := domain.PortfolioMetrics{
		TotalProjects:            len(projects),
		TotalReplacementValue:    decimal.Zero,
		TotalDeferredMaintenance: decimal.Zero,
	}
	if len(projects) == 0 {
		return m
	}

	weights := make([]float64, len(projects))
	ci := make([]float64, len(projects))
	fci := make([]float64, len(projects))
	priority := make([]float64, len(projects))
	for i, p := range projects {
		m.TotalReplacementValue = m.TotalReplacementValue.Add(p.ReplacementValue)
		m.TotalDeferredMaintenance = m.TotalDeferredMaintenance.Add(p.DeferredMaintenanceCost)
		if p.ReplacementValue.IsPositive() {
			weights[i] = p.ReplacementValue.InexactFloat64()
		}
		ci[i] = p.CurrentCI
		fci[i] = p.CurrentFCI
		priority[i] = p.PriorityScore
	}

	if floats.Sum(weights) > 0 {
		m.WeightedCI = stat.Mean(ci, weights)
		m.WeightedFCI = stat.Mean(fci, weights)
	}
	m.AveragePriorityScore = stat.Mean(priority, nil)
	return m
}

// GetPortfolioMetrics loads the portfolio and summarizes it
func (o *Optimizer) GetPortfolioMetrics(ctx context.Context) (domain.PortfolioMetrics, error) {
	projects, err := o.LoadProjects(ctx)
	if err != nil {
		return domain.PortfolioMetrics{}, err
	}
	return Metrics(projects), nil
}
