package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/rgehrsitz/facplan/internal/calculation"
	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/mip"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// Optimizer runs the cross-project program and the analyses built on it
type Optimizer struct {
	Source      ProjectSource
	Heuristics  domain.Heuristics
	Solver      mip.Options
	Logger      calculation.Logger
	Parallelism int // Concurrent solves during sensitivity sweeps, 1 for sequential
}

// NewOptimizer creates an optimizer with the default heuristics and solver options
func NewOptimizer(source ProjectSource) *Optimizer {
	return &Optimizer{
		Source:      source,
		Heuristics:  domain.DefaultHeuristics(),
		Solver:      mip.DefaultOptions(),
		Logger:      calculation.NopLogger{},
		Parallelism: 1,
	}
}

// SetLogger replaces the optimizer logger. A nil logger disables logging.
func (o *Optimizer) SetLogger(l calculation.Logger) {
	if l == nil {
		o.Logger = calculation.NopLogger{}
		return
	}
	o.Logger = l
}

// LoadProjects fetches every project and derives its optimization metrics
func (o *Optimizer) LoadProjects(ctx context.Context) ([]domain.ProjectData, error) {
	snapshots, err := o.Source.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	projects := make([]domain.ProjectData, 0, len(snapshots))
	for _, s := range snapshots {
		projects = append(projects, DeriveProjectData(s, &o.Heuristics))
	}
	return projects, nil
}

// OptimizeAcrossProjects selects the set of projects that maximizes value-weighted
// condition improvement within the constraints
func (o *Optimizer) OptimizeAcrossProjects(ctx context.Context, c domain.OptimizationConstraints) (*domain.PortfolioResult, error) {
	if err := ValidateConstraints(c); err != nil {
		return nil, err
	}
	projects, err := o.LoadProjects(ctx)
	if err != nil {
		return nil, err
	}
	return o.Optimize(ctx, projects, c)
}

// Optimize solves the cross-project program over already loaded projects
func (o *Optimizer) Optimize(ctx context.Context, projects []domain.ProjectData, c domain.OptimizationConstraints) (*domain.PortfolioResult, error) {
	eligible := EligibleProjects(projects)
	if len(eligible) == 0 {
		return nil, &domain.InfeasibleError{
			Operation: "optimize_across_projects",
			Message:   "no eligible projects; projects need a replacement value and deferred maintenance",
		}
	}

	model, err := BuildModel(eligible, c, &o.Heuristics)
	if err != nil {
		return nil, err
	}

	sol, err := mip.Solve(ctx, model, o.Solver)
	switch {
	case errors.Is(err, mip.ErrInfeasible):
		return nil, &domain.InfeasibleError{
			Operation: "optimize_across_projects",
			Message:   "no project selection satisfies the constraints; relax constraints or raise the budget",
			Cause:     err,
		}
	case errors.Is(err, mip.ErrNodeLimit):
		return nil, &domain.InfeasibleError{
			Operation: "optimize_across_projects",
			Message:   fmt.Sprintf("no feasible selection found within %d search nodes", o.Solver.MaxNodes),
			Cause:     err,
		}
	case err != nil:
		return nil, fmt.Errorf("failed to solve portfolio model: %w", err)
	}
	if sol.Status != mip.StatusOptimal {
		o.Logger.Warnf("portfolio search stopped at node limit after %d nodes; returning best selection found", sol.Nodes)
	}

	result := o.summarize(eligible, sol, c)
	result.Solver = domain.SolverStats{
		Variables:      len(model.Variables),
		Constraints:    len(model.Constraints),
		Nodes:          sol.Nodes,
		ProvenOptimal:  sol.Status == mip.StatusOptimal,
		ObjectiveValue: sol.Objective,
	}
	if result.TotalCost.GreaterThan(c.MaxBudget) {
		return nil, &domain.NumericalError{
			Operation: "optimize_across_projects",
			Message:   fmt.Sprintf("selection cost %s exceeds budget %s", result.TotalCost, c.MaxBudget),
		}
	}
	o.Logger.Debugf("portfolio: %d of %d eligible projects selected, cost %s, %d nodes",
		len(result.SelectedProjects), len(eligible), result.TotalCost.StringFixed(2), sol.Nodes)
	return result, nil
}

func (o *Optimizer) summarize(eligible []domain.ProjectData, sol *mip.Solution, c domain.OptimizationConstraints) *domain.PortfolioResult {
	weights := make([]float64, len(eligible))
	ciBefore := make([]float64, len(eligible))
	ciAfter := make([]float64, len(eligible))
	fciBefore := make([]float64, len(eligible))
	fciAfter := make([]float64, len(eligible))

	result := &domain.PortfolioResult{
		SelectedProjects: []domain.SelectedProject{},
		TotalCost:        decimal.Zero,
	}
	for i, p := range eligible {
		weights[i] = p.ReplacementValue.InexactFloat64()
		ciBefore[i], ciAfter[i] = p.CurrentCI, p.CurrentCI
		fciBefore[i], fciAfter[i] = p.CurrentFCI, p.CurrentFCI
		if sol.Values[i] != 1 {
			continue
		}

		ciAfter[i] += p.ExpectedCIImprovement
		fciAfter[i] -= p.ExpectedFCIImprovement
		result.SelectedProjects = append(result.SelectedProjects, domain.SelectedProject{
			ProjectID:      p.ProjectID,
			Name:           p.Name,
			Cost:           p.EstimatedCost,
			CIImprovement:  p.ExpectedCIImprovement,
			FCIImprovement: p.ExpectedFCIImprovement,
			PriorityScore:  p.PriorityScore,
			CIPerMillion:   p.ExpectedCIImprovement / (p.EstimatedCost.InexactFloat64() / o.Heuristics.ValueWeightDivisor),
		})
		result.TotalCost = result.TotalCost.Add(p.EstimatedCost)
		result.TotalCIImprovement += p.ExpectedCIImprovement
		result.TotalFCIImprovement += p.ExpectedFCIImprovement
	}

	result.BeforeCI = stat.Mean(ciBefore, weights)
	result.AfterCI = stat.Mean(ciAfter, weights)
	result.BeforeFCI = stat.Mean(fciBefore, weights)
	result.AfterFCI = stat.Mean(fciAfter, weights)

	if c.MaxBudget.IsPositive() {
		result.BudgetUtilization = result.TotalCost.Div(c.MaxBudget).Mul(hundred).InexactFloat64()
	}
	if result.TotalCIImprovement > 0 {
		result.AverageCostEffectiveness = result.TotalCost.InexactFloat64() / result.TotalCIImprovement
	}
	return result
}
