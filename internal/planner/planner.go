// Package planner is the single entry point to the capital planning engines. It wires the
// single-project engine, the portfolio optimizer, the break-even solver and the scenario store
// over one data source.
package planner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rgehrsitz/facplan/internal/breakeven"
	"github.com/rgehrsitz/facplan/internal/calculation"
	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/portfolio"
	"github.com/rgehrsitz/facplan/internal/store"
	"github.com/shopspring/decimal"
)

// DataSource supplies component assessments and project metrics
type DataSource interface {
	calculation.ComponentSource
	portfolio.ProjectSource
}

// Planner exposes every planning operation
type Planner struct {
	Engine    *calculation.CalculationEngine
	Optimizer *portfolio.Optimizer
	BreakEven *breakeven.Solver
	Scenarios store.ScenarioStore
	Logger    calculation.Logger

	NewID func() string
	Now   func() time.Time
}

// New creates a planner over source with the given heuristics. A nil scenario store keeps
// scenarios in memory.
func New(source DataSource, scenarios store.ScenarioStore, h domain.Heuristics) *Planner {
	if scenarios == nil {
		scenarios = store.NewMemoryStore()
	}

	optimizer := portfolio.NewOptimizer(source)
	optimizer.Heuristics = h

	p := &Planner{
		Engine:    calculation.NewCalculationEngineWithHeuristics(source, h),
		Optimizer: optimizer,
		BreakEven: breakeven.NewDefaultSolver(optimizer),
		Scenarios: scenarios,
		Logger:    calculation.NopLogger{},
		NewID:     uuid.NewString,
		Now:       time.Now,
	}
	p.Engine.Now = func() time.Time { return p.Now() }
	return p
}

// SetLogger routes the logs of every engine to l. A nil logger disables logging.
func (p *Planner) SetLogger(l calculation.Logger) {
	if l == nil {
		l = calculation.NopLogger{}
	}
	p.Logger = l
	p.Engine.SetLogger(l)
	p.Optimizer.SetLogger(l)
}

// SetParallelism bounds the concurrent solves of sensitivity sweeps
func (p *Planner) SetParallelism(n int) {
	if n < 1 {
		n = 1
	}
	p.Optimizer.Parallelism = n
}

// GenerateStrategyOptions returns the four strategy options for one component
func (p *Planner) GenerateStrategyOptions(ctx context.Context, projectID, componentCode string, cfg domain.OptimizationConfig) ([]domain.StrategyOption, error) {
	return p.Engine.GenerateStrategyOptions(ctx, projectID, componentCode, cfg)
}

// CompareStrategies returns the options for one component and the one the goal selects
func (p *Planner) CompareStrategies(ctx context.Context, projectID, componentCode string, cfg domain.OptimizationConfig) (*domain.StrategyComparison, error) {
	return p.Engine.CompareStrategies(ctx, projectID, componentCode, cfg)
}

// OptimizeSingleProject picks a strategy for every assessed component of a project
func (p *Planner) OptimizeSingleProject(ctx context.Context, projectID string, cfg domain.OptimizationConfig) (*domain.OptimizationResult, error) {
	return p.Engine.OptimizeSingleProject(ctx, projectID, cfg)
}

// OptimizeAcrossProjects selects the portfolio of projects to fund
func (p *Planner) OptimizeAcrossProjects(ctx context.Context, c domain.OptimizationConstraints) (*domain.PortfolioResult, error) {
	return p.Optimizer.OptimizeAcrossProjects(ctx, c)
}

// AnalyzeSensitivity sweeps the portfolio budget around baseBudget
func (p *Planner) AnalyzeSensitivity(ctx context.Context, baseBudget decimal.Decimal, rangePercent float64) (*domain.SensitivityAnalysis, error) {
	return p.Optimizer.AnalyzeSensitivity(ctx, baseBudget, rangePercent)
}

// AnalyzeSensitivityWithConstraints sweeps the budget of c while keeping its other constraints
func (p *Planner) AnalyzeSensitivityWithConstraints(ctx context.Context, c domain.OptimizationConstraints, rangePercent float64) (*domain.SensitivityAnalysis, error) {
	return p.Optimizer.AnalyzeSensitivityWithConstraints(ctx, c, rangePercent)
}

// CalculateParetoFrontier returns the cumulative cost and improvement curve
func (p *Planner) CalculateParetoFrontier(ctx context.Context) ([]domain.ParetoPoint, error) {
	return p.Optimizer.CalculateParetoFrontier(ctx)
}

// GetCostEffectivenessRanking ranks eligible projects by cost per CI point
func (p *Planner) GetCostEffectivenessRanking(ctx context.Context) ([]domain.RankedProject, error) {
	return p.Optimizer.GetCostEffectivenessRanking(ctx)
}

// GetPortfolioMetrics summarizes the whole portfolio
func (p *Planner) GetPortfolioMetrics(ctx context.Context) (domain.PortfolioMetrics, error) {
	return p.Optimizer.GetPortfolioMetrics(ctx)
}

// FindBreakEvenBudget finds the smallest budget in [minBudget, maxBudget] whose optimal
// portfolio raises the weighted CI by at least target points
func (p *Planner) FindBreakEvenBudget(ctx context.Context, target float64, minBudget, maxBudget decimal.Decimal) (*breakeven.Result, error) {
	return p.BreakEven.FindBudget(ctx, breakeven.Request{
		Goal:      breakeven.GoalCIGain,
		Target:    target,
		MinBudget: minBudget,
		MaxBudget: maxBudget,
	})
}

// FindBreakEven runs a break-even search with full control over goal and constraints
func (p *Planner) FindBreakEven(ctx context.Context, req breakeven.Request) (*breakeven.Result, error) {
	return p.BreakEven.FindBudget(ctx, req)
}

// FindBreakEvenCurve runs the break-even search for several targets
func (p *Planner) FindBreakEvenCurve(ctx context.Context, req breakeven.Request, targets []float64) (*breakeven.CurveResult, error) {
	return p.BreakEven.FindBudgetCurve(ctx, req, targets)
}
