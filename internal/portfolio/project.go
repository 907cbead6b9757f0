// Package portfolio selects which facility projects to fund across a portfolio and derives
// the budget sensitivity, Pareto and ranking views from the same project metrics.
package portfolio

import (
	"context"
	"math"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
)

// ProjectSource supplies the current facility metrics for every project
type ProjectSource interface {
	Projects(ctx context.Context) ([]domain.ProjectSnapshot, error)
}

// DeriveProjectData computes the optimization metrics of one project
func DeriveProjectData(s domain.ProjectSnapshot, h *domain.Heuristics) domain.ProjectData {
	p := domain.ProjectData{
		ProjectID:               s.ProjectID,
		Name:                    s.Name,
		CurrentCI:               s.CurrentCI,
		CurrentFCI:              s.CurrentFCI,
		ReplacementValue:        s.ReplacementValue,
		DeferredMaintenanceCost: s.DeferredMaintenanceCost,
		PriorityScore:           s.PriorityScore,
		EstimatedCost:           s.DeferredMaintenanceCost,
		ExpectedCIImprovement:   math.Max(0, h.TargetCI-s.CurrentCI),
		RiskScore:               h.ProjectRiskScore(s.CurrentCI),
	}
	if s.ReplacementValue.IsPositive() {
		residual := s.DeferredMaintenanceCost.
			Mul(decimal.NewFromFloat(h.ResidualFCIShare)).
			Div(s.ReplacementValue).
			Mul(decimal.NewFromInt(100)).
			InexactFloat64()
		p.ExpectedFCIImprovement = math.Max(0, s.CurrentFCI-residual)
	}
	return p
}

// Eligible reports whether a project can be considered for funding
func Eligible(p domain.ProjectData) bool {
	return p.ReplacementValue.IsPositive() && p.DeferredMaintenanceCost.IsPositive()
}

// EligibleProjects filters projects down to those that can be funded, keeping order
func EligibleProjects(projects []domain.ProjectData) []domain.ProjectData {
	out := make([]domain.ProjectData, 0, len(projects))
	for _, p := range projects {
		if Eligible(p) {
			out = append(out, p)
		}
	}
	return out
}

// ValueWeight is the objective weight of a project in the cross-project program
func ValueWeight(p domain.ProjectData, h *domain.Heuristics) float64 {
	return p.ExpectedCIImprovement * p.ReplacementValue.InexactFloat64() / h.ValueWeightDivisor
}
