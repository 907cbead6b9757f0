package breakeven

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/portfolio"
)

// FindBudgetCurve runs the break-even search for each target and reports the budget
// needed to reach each one. Unreachable targets are listed rather than failing the run.
func (s *Solver) FindBudgetCurve(ctx context.Context, base Request, targets []float64) (*CurveResult, error) {
	if len(targets) == 0 {
		return nil, &BreakEvenError{
			Operation: "find_budget_curve",
			Message:   "at least one target is required",
			Cause:     domain.ErrValidation,
		}
	}

	sorted := append([]float64(nil), targets...)
	sort.Float64s(sorted)

	// Validate once with the first target so bad input fails before any solving
	first := base
	first.Target = sorted[0]
	if err := first.Validate(); err != nil {
		return nil, err
	}
	if err := portfolio.ValidateConstraints(base.Constraints); err != nil {
		return nil, err
	}

	projects, err := s.Optimizer.LoadProjects(ctx)
	if err != nil {
		return nil, err
	}
	if base.MaxIterations == 0 {
		base.MaxIterations = s.Options.MaxIterations
	}
	if base.Tolerance.IsZero() {
		base.Tolerance = s.Options.Tolerance
	}

	curve := &CurveResult{Goal: base.Goal, Results: []Result{}}
	for _, target := range sorted {
		req := base
		req.Target = target

		result, err := s.search(ctx, req, projects)
		if errors.Is(err, domain.ErrInfeasible) {
			curve.Unreachable = append(curve.Unreachable, target)
			continue
		}
		if err != nil {
			return nil, err
		}
		curve.Results = append(curve.Results, *result)
	}

	if len(curve.Results) == 0 {
		return nil, &BreakEvenError{
			Operation: "find_budget_curve",
			Message:   fmt.Sprintf("no target is reachable within %s", base.MaxBudget.StringFixed(2)),
			Cause:     domain.ErrInfeasible,
		}
	}

	curve.Recommendations = s.generateCurveRecommendations(curve)
	return curve, nil
}

// generateCurveRecommendations describes the step cost between successive targets
func (s *Solver) generateCurveRecommendations(curve *CurveResult) []string {
	var recommendations []string

	for i, r := range curve.Results {
		rec := fmt.Sprintf("Reaching %s %g needs $%s (%d projects)",
			curve.Goal, r.Request.Target, r.Budget.StringFixed(0), len(r.Portfolio.SelectedProjects))
		if i > 0 {
			step := r.Budget.Sub(curve.Results[i-1].Budget)
			if step.IsZero() {
				rec += ", no more than the previous target"
			} else {
				rec += fmt.Sprintf(", $%s more than the previous target", step.StringFixed(0))
			}
		}
		recommendations = append(recommendations, rec)
	}

	for _, target := range curve.Unreachable {
		recommendations = append(recommendations,
			fmt.Sprintf("%s %g is out of reach; raise the budget ceiling or relax constraints", curve.Goal, target))
	}
	return recommendations
}
