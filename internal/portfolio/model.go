package portfolio

import (
	"fmt"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/mip"
	"github.com/shopspring/decimal"
)

// Row names used in the cross-project model
const (
	RowBudget           = "budget"
	RowMinProjects      = "min_projects"
	RowMaxProjects      = "max_projects"
	RowMinCIImprovement = "min_ci_improvement"
	RowMaxRisk          = "max_risk_tolerance"
)

var hundred = decimal.NewFromInt(100)

// costCents rounds a cost up to whole cents
func costCents(d decimal.Decimal) float64 {
	return d.Mul(hundred).Ceil().InexactFloat64()
}

// budgetCents rounds a budget down to whole cents
func budgetCents(d decimal.Decimal) float64 {
	return d.Mul(hundred).Floor().InexactFloat64()
}

// ValidateConstraints rejects constraint sets that cannot be meaningfully solved
func ValidateConstraints(c domain.OptimizationConstraints) error {
	op := "validate_constraints"
	if c.MaxBudget.IsNegative() {
		return &domain.ValidationError{Operation: op, Message: "max budget cannot be negative"}
	}
	if c.MinProjects != nil && *c.MinProjects < 0 {
		return &domain.ValidationError{Operation: op, Message: "min projects cannot be negative"}
	}
	if c.MaxProjects != nil && *c.MaxProjects < 0 {
		return &domain.ValidationError{Operation: op, Message: "max projects cannot be negative"}
	}
	if c.MinProjects != nil && c.MaxProjects != nil && *c.MinProjects > *c.MaxProjects {
		return &domain.ValidationError{Operation: op, Message: fmt.Sprintf("min projects %d exceeds max projects %d", *c.MinProjects, *c.MaxProjects)}
	}
	excluded := make(map[string]bool, len(c.ExcludedProjectIDs))
	for _, id := range c.ExcludedProjectIDs {
		excluded[id] = true
	}
	for _, id := range c.RequiredProjectIDs {
		if excluded[id] {
			return &domain.ValidationError{Operation: op, Message: fmt.Sprintf("project %s is both required and excluded", id)}
		}
	}
	return nil
}

// BuildModel formulates the 0/1 program over eligible projects. Variable i corresponds to
// projects[i]. Money rows are expressed in whole cents so sums are exact.
func BuildModel(projects []domain.ProjectData, c domain.OptimizationConstraints, h *domain.Heuristics) (*mip.Model, error) {
	if err := ValidateConstraints(c); err != nil {
		return nil, err
	}

	n := len(projects)
	m := &mip.Model{TieBreak: make([]float64, n)}
	costs := make([]float64, n)
	ones := make([]float64, n)
	index := make(map[string]int, n)
	for i, p := range projects {
		m.AddVariable(p.ProjectID, ValueWeight(p, h))
		costs[i] = costCents(p.EstimatedCost)
		m.TieBreak[i] = costs[i]
		ones[i] = 1
		index[p.ProjectID] = i
	}

	m.AddConstraint(RowBudget, costs, mip.LessEqual, budgetCents(c.MaxBudget))
	if c.MinProjects != nil {
		m.AddConstraint(RowMinProjects, append([]float64(nil), ones...), mip.GreaterEqual, float64(*c.MinProjects))
	}
	if c.MaxProjects != nil {
		m.AddConstraint(RowMaxProjects, append([]float64(nil), ones...), mip.LessEqual, float64(*c.MaxProjects))
	}
	if c.MinCIImprovement != nil {
		row := make([]float64, n)
		for i, p := range projects {
			row[i] = p.ExpectedCIImprovement
		}
		m.AddConstraint(RowMinCIImprovement, row, mip.GreaterEqual, *c.MinCIImprovement)
	}
	if c.MaxRiskTolerance != nil {
		// Average risk of the funded set must not exceed the tolerance
		row := make([]float64, n)
		for i, p := range projects {
			row[i] = p.RiskScore - *c.MaxRiskTolerance
		}
		m.AddConstraint(RowMaxRisk, row, mip.LessEqual, 0)
	}

	for _, id := range c.RequiredProjectIDs {
		i, ok := index[id]
		if !ok {
			return nil, &domain.ValidationError{
				Operation: "build_model",
				Message:   fmt.Sprintf("required project %s is not eligible for funding", id),
			}
		}
		m.Fix(i, 1)
	}
	for _, id := range c.ExcludedProjectIDs {
		if i, ok := index[id]; ok {
			m.Fix(i, 0)
		}
	}
	return m, nil
}
