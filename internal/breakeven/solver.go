// Package breakeven finds the smallest portfolio budget that reaches a condition target.
package breakeven

import (
	"context"
	"errors"
	"fmt"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/portfolio"
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// Solver bisects the budget over the cross-project optimizer. The weighted CI of the
// optimal selection never decreases as the budget grows, which makes bisection sound.
type Solver struct {
	Optimizer *portfolio.Optimizer
	Options   SolverOptions
}

// NewSolver creates a new break-even solver
func NewSolver(optimizer *portfolio.Optimizer, options SolverOptions) *Solver {
	return &Solver{
		Optimizer: optimizer,
		Options:   options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(optimizer *portfolio.Optimizer) *Solver {
	return NewSolver(optimizer, DefaultSolverOptions())
}

// probe is the optimizer outcome at one budget
type probe struct {
	budget   decimal.Decimal
	result   *domain.PortfolioResult
	achieved float64
	reached  bool
}

// FindBudget searches [MinBudget, MaxBudget] for the smallest budget whose optimal
// portfolio reaches the request target
func (s *Solver) FindBudget(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := portfolio.ValidateConstraints(req.Constraints); err != nil {
		return nil, err
	}
	if req.MaxIterations == 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	if req.Tolerance.IsZero() {
		req.Tolerance = s.Options.Tolerance
	}

	projects, err := s.Optimizer.LoadProjects(ctx)
	if err != nil {
		return nil, err
	}
	return s.search(ctx, req, projects)
}

func (s *Solver) search(ctx context.Context, req Request, projects []domain.ProjectData) (*Result, error) {
	iterations := 0
	evaluate := func(budget decimal.Decimal) (*probe, error) {
		iterations++
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		return s.evaluate(ctx, req, projects, budget)
	}

	high, err := evaluate(req.MaxBudget)
	if err != nil {
		return nil, err
	}
	if !high.reached {
		msg := fmt.Sprintf("%s of %g is not reachable within %s", req.Goal, req.Target, req.MaxBudget.StringFixed(2))
		if high.result != nil {
			msg += fmt.Sprintf(" (best %.2f)", high.achieved)
		}
		return nil, &BreakEvenError{
			Operation: "find_budget",
			Message:   msg,
			Cause:     domain.ErrInfeasible,
		}
	}

	low, err := evaluate(req.MinBudget)
	if err != nil {
		return nil, err
	}
	if low.reached {
		return s.finish(req, low, iterations, true, "target already reached at the minimum budget"), nil
	}

	for iterations < req.MaxIterations {
		if high.budget.Sub(low.budget).LessThanOrEqual(req.Tolerance) {
			return s.finish(req, high, iterations, true,
				fmt.Sprintf("Bisection converged within $%s", req.Tolerance.StringFixed(0))), nil
		}

		mid, err := evaluate(low.budget.Add(high.budget).Div(two).Round(2))
		if err != nil {
			return nil, err
		}
		if mid.reached {
			high = mid
		} else {
			low = mid
		}
	}

	converged := high.budget.Sub(low.budget).LessThanOrEqual(req.Tolerance)
	info := fmt.Sprintf("Max iterations (%d) reached", req.MaxIterations)
	if converged {
		info = fmt.Sprintf("Bisection converged within $%s", req.Tolerance.StringFixed(0))
	}
	return s.finish(req, high, iterations, converged, info), nil
}

// evaluate optimizes at one budget. An infeasible budget counts as not reaching the target.
func (s *Solver) evaluate(ctx context.Context, req Request, projects []domain.ProjectData, budget decimal.Decimal) (*probe, error) {
	c := req.Constraints
	c.MaxBudget = budget

	result, err := s.Optimizer.Optimize(ctx, projects, c)
	if errors.Is(err, domain.ErrInfeasible) {
		s.Optimizer.Logger.Debugf("break-even: budget %s infeasible", budget.StringFixed(2))
		return &probe{budget: budget}, nil
	}
	if err != nil {
		return nil, &BreakEvenError{
			Operation: "find_budget",
			Message:   fmt.Sprintf("failed to optimize at budget %s", budget.StringFixed(2)),
			Cause:     err,
		}
	}

	p := &probe{budget: budget, result: result, achieved: Achieved(req.Goal, result)}
	p.reached = p.achieved >= req.Target
	s.Optimizer.Logger.Debugf("break-even: budget %s achieves %s %.4f", budget.StringFixed(2), req.Goal, p.achieved)
	return p, nil
}

func (s *Solver) finish(req Request, p *probe, iterations int, success bool, info string) *Result {
	return &Result{
		Request:         req,
		Success:         success,
		Iterations:      iterations,
		ConvergenceInfo: info,
		Budget:          p.result.TotalCost,
		SearchBound:     p.budget,
		Achieved:        p.achieved,
		Portfolio:       p.result,
	}
}

// Achieved measures a portfolio result against a goal
func Achieved(goal Goal, r *domain.PortfolioResult) float64 {
	switch goal {
	case GoalTargetCI:
		return r.AfterCI
	default:
		return r.AfterCI - r.BeforeCI
	}
}
