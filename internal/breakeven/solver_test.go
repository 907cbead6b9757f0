package breakeven

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/portfolio"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	projects []domain.ProjectSnapshot
	err      error
}

func (s *staticSource) Projects(context.Context) ([]domain.ProjectSnapshot, error) {
	return s.projects, s.err
}

func millions(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(1_000_000))
}

func project(id string, ci, fci, rv, dmc float64) domain.ProjectSnapshot {
	return domain.ProjectSnapshot{
		ProjectID:               id,
		Name:                    "Facility " + id,
		CurrentCI:               ci,
		CurrentFCI:              fci,
		ReplacementValue:        millions(rv),
		DeferredMaintenanceCost: millions(dmc),
	}
}

// Weighted CI gains over the 27M eligible replacement value: A 500/27, B 150/27, C 120/27, D 0
func newTestSolver() *Solver {
	return NewDefaultSolver(portfolio.NewOptimizer(&staticSource{projects: []domain.ProjectSnapshot{
		project("A", 40, 20, 10, 2),
		project("B", 60, 12, 5, 1),
		project("C", 75, 6, 8, 1.5),
		project("D", 90, 2, 4, 0.5),
		project("E", 50, 30, 0, 1),
	}}))
}

func gainRequest(target float64) Request {
	return Request{Goal: GoalCIGain, Target: target, MinBudget: decimal.Zero, MaxBudget: millions(10)}
}

func TestNewSolver(t *testing.T) {
	optimizer := portfolio.NewOptimizer(&staticSource{})
	options := DefaultSolverOptions()

	solver := NewSolver(optimizer, options)
	require.NotNil(t, solver)
	assert.Same(t, optimizer, solver.Optimizer)
	assert.Equal(t, options, solver.Options)

	solver = NewDefaultSolver(optimizer)
	assert.Equal(t, 50, solver.Options.MaxIterations)
	assert.True(t, decimal.NewFromInt(1000).Equal(solver.Options.Tolerance))
}

func TestFindBudget_CIGain(t *testing.T) {
	s := newTestSolver()

	result, err := s.FindBudget(context.Background(), gainRequest(20))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.True(t, millions(3).Equal(result.Budget), "budget %s", result.Budget)
	assert.True(t, result.SearchBound.GreaterThanOrEqual(millions(3)))
	assert.True(t, result.SearchBound.LessThanOrEqual(millions(3).Add(decimal.NewFromInt(1000))))
	assert.InDelta(t, 650.0/27, result.Achieved, 1e-9)
	assert.Equal(t, []string{"A", "B"}, result.Portfolio.SelectedIDs())
	assert.LessOrEqual(t, result.Iterations, 50)
	assert.Contains(t, result.ConvergenceInfo, "converged")
}

func TestFindBudget_TargetCI(t *testing.T) {
	s := newTestSolver()

	result, err := s.FindBudget(context.Background(), Request{
		Goal: GoalTargetCI, Target: 79, MaxBudget: millions(10),
	})
	require.NoError(t, err)
	assert.True(t, millions(2).Equal(result.Budget), "budget %s", result.Budget)
	assert.Equal(t, []string{"A"}, result.Portfolio.SelectedIDs())
	assert.GreaterOrEqual(t, result.Achieved, 79.0)
}

func TestFindBudget_ReachedAtMinimum(t *testing.T) {
	s := newTestSolver()

	// The portfolio already sits at a weighted CI of 1660/27
	result, err := s.FindBudget(context.Background(), Request{
		Goal: GoalTargetCI, Target: 60, MaxBudget: millions(10),
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Budget.IsZero())
	assert.Equal(t, 2, result.Iterations)
	assert.Empty(t, result.Portfolio.SelectedProjects)
}

func TestFindBudget_WithConstraints(t *testing.T) {
	s := newTestSolver()
	minProjects := 3

	req := gainRequest(20)
	req.Constraints = domain.OptimizationConstraints{MinProjects: &minProjects}

	result, err := s.FindBudget(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, millions(3.5).Equal(result.Budget), "budget %s", result.Budget)
	assert.Equal(t, []string{"A", "B", "D"}, result.Portfolio.SelectedIDs())
}

func TestFindBudget_Unreachable(t *testing.T) {
	s := newTestSolver()

	_, err := s.FindBudget(context.Background(), gainRequest(30))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInfeasible))

	var beErr *BreakEvenError
	require.ErrorAs(t, err, &beErr)
	assert.Contains(t, beErr.Message, "not reachable")
}

func TestFindBudget_MaxIterations(t *testing.T) {
	s := newTestSolver()

	req := gainRequest(20)
	req.MaxIterations = 3
	result, err := s.FindBudget(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Iterations)
	assert.Contains(t, result.ConvergenceInfo, "Max iterations")
	assert.True(t, millions(5).Equal(result.SearchBound))
	assert.True(t, millions(4.5).Equal(result.Budget), "budget %s", result.Budget)
}

func TestFindBudget_Validation(t *testing.T) {
	s := newTestSolver()
	ctx := context.Background()

	tests := []struct {
		name string
		req  Request
	}{
		{"unknown goal", Request{Goal: "maximize_fun", Target: 1, MaxBudget: millions(1)}},
		{"zero target", Request{Goal: GoalCIGain, MaxBudget: millions(1)}},
		{"negative min budget", Request{Goal: GoalCIGain, Target: 1, MinBudget: decimal.NewFromInt(-1), MaxBudget: millions(1)}},
		{"empty range", Request{Goal: GoalCIGain, Target: 1, MinBudget: millions(1), MaxBudget: millions(1)}},
		{"negative tolerance", Request{Goal: GoalCIGain, Target: 1, MaxBudget: millions(1), Tolerance: decimal.NewFromInt(-5)}},
		{"bad constraints", Request{Goal: GoalCIGain, Target: 1, MaxBudget: millions(1), Constraints: domain.OptimizationConstraints{
			RequiredProjectIDs: []string{"A"}, ExcludedProjectIDs: []string{"A"},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.FindBudget(ctx, tt.req)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
		})
	}
}

func TestFindBudget_SourceError(t *testing.T) {
	boom := errors.New("boom")
	s := NewDefaultSolver(portfolio.NewOptimizer(&staticSource{err: boom}))

	_, err := s.FindBudget(context.Background(), gainRequest(10))
	assert.ErrorIs(t, err, boom)
}

func TestFindBudget_CancelledContext(t *testing.T) {
	s := newTestSolver()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.FindBudget(ctx, gainRequest(10))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindBudgetCurve(t *testing.T) {
	s := newTestSolver()

	curve, err := s.FindBudgetCurve(context.Background(), gainRequest(0), []float64{20, 10, 30})
	require.NoError(t, err)

	require.Len(t, curve.Results, 2)
	assert.Equal(t, 10.0, curve.Results[0].Request.Target)
	assert.True(t, millions(2).Equal(curve.Results[0].Budget))
	assert.Equal(t, 20.0, curve.Results[1].Request.Target)
	assert.True(t, millions(3).Equal(curve.Results[1].Budget))
	assert.Equal(t, []float64{30}, curve.Unreachable)

	require.Len(t, curve.Recommendations, 3)
	assert.Contains(t, curve.Recommendations[1], "$1000000 more than the previous target")
	assert.Contains(t, curve.Recommendations[2], "out of reach")
}

func TestFindBudgetCurve_Errors(t *testing.T) {
	s := newTestSolver()
	ctx := context.Background()

	_, err := s.FindBudgetCurve(ctx, gainRequest(0), nil)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = s.FindBudgetCurve(ctx, gainRequest(0), []float64{-1, 10})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = s.FindBudgetCurve(ctx, gainRequest(0), []float64{29, 40})
	assert.True(t, errors.Is(err, domain.ErrInfeasible))
}

func TestFormatters(t *testing.T) {
	s := newTestSolver()
	result, err := s.FindBudget(context.Background(), gainRequest(20))
	require.NoError(t, err)

	table := (&TableFormatter{}).Format(result)
	assert.Contains(t, table, "BREAK-EVEN BUDGET")
	assert.Contains(t, table, "Break-Even Budget: $3000000.00")
	assert.Contains(t, table, "Projects Funded:   A, B")
	assert.Contains(t, table, "✓ Converged")

	out, err := (&JSONFormatter{Pretty: true}).Format(result)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "\n  "), "pretty output is indented")
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, true, decoded["success"])
	assert.Contains(t, decoded, "portfolio")

	curve, err := s.FindBudgetCurve(context.Background(), gainRequest(0), []float64{10, 20, 30})
	require.NoError(t, err)
	text := (&TableFormatter{}).FormatCurve(curve)
	assert.Contains(t, text, "BREAK-EVEN CURVE")
	assert.Contains(t, text, "$2.00M")
	assert.Contains(t, text, "unreachable")
	assert.Contains(t, text, "RECOMMENDATIONS")

	compact, err := (&JSONFormatter{}).FormatCurve(curve)
	require.NoError(t, err)
	assert.NotContains(t, compact, "\n")
	assert.Contains(t, compact, `"goal":"ci_gain"`)
}
