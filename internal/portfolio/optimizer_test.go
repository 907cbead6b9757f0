package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/mip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveProjectData(t *testing.T) {
	h := domain.DefaultHeuristics()

	a := DeriveProjectData(snapshot("A", 40, 20, 10, 2, 8), &h)
	assert.Equal(t, 50.0, a.ExpectedCIImprovement)
	assert.InDelta(t, 16.0, a.ExpectedFCIImprovement, 1e-9)
	assert.True(t, millions(2).Equal(a.EstimatedCost))
	assert.Equal(t, 10.0, a.RiskScore)
	assert.InDelta(t, 500.0, ValueWeight(a, &h), 1e-9)

	b := DeriveProjectData(snapshot("B", 60, 12, 5, 1, 6), &h)
	assert.Equal(t, 7.0, b.RiskScore)

	d := DeriveProjectData(snapshot("D", 90, 2, 4, 0.5, 2), &h)
	assert.Equal(t, 0.0, d.ExpectedCIImprovement, "facility at target gains nothing")
	assert.Equal(t, 0.0, d.ExpectedFCIImprovement, "FCI improvement is floored at zero")
	assert.Equal(t, 5.0, d.RiskScore)
	assert.Equal(t, 0.0, ValueWeight(d, &h))

	assert.True(t, Eligible(a))
	assert.False(t, Eligible(DeriveProjectData(snapshot("E", 50, 30, 0, 1, 5), &h)))
	assert.False(t, Eligible(DeriveProjectData(snapshot("F", 85, 0, 3, 0, 1), &h)))
}

func TestBuildModel(t *testing.T) {
	o := newTestOptimizer()
	projects, err := o.LoadProjects(context.Background())
	require.NoError(t, err)
	eligible := EligibleProjects(projects)
	require.Len(t, eligible, 4)

	c := domain.OptimizationConstraints{
		MaxBudget:          millions(3),
		MinProjects:        intPtr(1),
		MaxProjects:        intPtr(3),
		RequiredProjectIDs: []string{"D"},
		ExcludedProjectIDs: []string{"C", "E"},
		MinCIImprovement:   floatPtr(10),
		MaxRiskTolerance:   floatPtr(7),
	}
	m, err := BuildModel(eligible, c, &o.Heuristics)
	require.NoError(t, err)

	require.Len(t, m.Variables, 4)
	assert.Equal(t, "A", m.Variables[0].Name)
	assert.InDelta(t, 500.0, m.Variables[0].Objective, 1e-9)
	assert.InDelta(t, 150.0, m.Variables[1].Objective, 1e-9)
	assert.InDelta(t, 120.0, m.Variables[2].Objective, 1e-9)
	assert.Equal(t, 0.0, m.Variables[3].Objective)

	budget, ok := m.Constraint(RowBudget)
	require.True(t, ok)
	assert.Equal(t, []float64{2e8, 1e8, 1.5e8, 5e7}, budget.Coefficients)
	assert.Equal(t, 3e8, budget.RHS)
	assert.Equal(t, mip.LessEqual, budget.Sense)

	minRow, ok := m.Constraint(RowMinProjects)
	require.True(t, ok)
	assert.Equal(t, mip.GreaterEqual, minRow.Sense)
	assert.Equal(t, 1.0, minRow.RHS)

	maxRow, ok := m.Constraint(RowMaxProjects)
	require.True(t, ok)
	assert.Equal(t, 3.0, maxRow.RHS)

	ciRow, ok := m.Constraint(RowMinCIImprovement)
	require.True(t, ok)
	assert.Equal(t, []float64{50, 30, 15, 0}, ciRow.Coefficients)

	riskRow, ok := m.Constraint(RowMaxRisk)
	require.True(t, ok)
	assert.Equal(t, []float64{3, 0, -2, -2}, riskRow.Coefficients)
	assert.Equal(t, 0.0, riskRow.RHS)

	assert.True(t, m.Variables[3].Fixed())
	assert.Equal(t, 1, m.Variables[3].Lower, "required project fixed in")
	assert.True(t, m.Variables[2].Fixed())
	assert.Equal(t, 0, m.Variables[2].Upper, "excluded project fixed out")
	assert.False(t, m.Variables[0].Fixed())
}

func TestBuildModel_CentRounding(t *testing.T) {
	h := domain.DefaultHeuristics()
	p := DeriveProjectData(domain.ProjectSnapshot{
		ProjectID:               "X",
		CurrentCI:               50,
		ReplacementValue:        decimal.NewFromInt(1000),
		DeferredMaintenanceCost: decimal.RequireFromString("100.004"),
	}, &h)

	m, err := BuildModel([]domain.ProjectData{p}, domain.OptimizationConstraints{MaxBudget: decimal.RequireFromString("100.009")}, &h)
	require.NoError(t, err)
	budget, _ := m.Constraint(RowBudget)
	assert.Equal(t, 10001.0, budget.Coefficients[0], "cost rounds up")
	assert.Equal(t, 10000.0, budget.RHS, "budget rounds down")
}

func TestBuildModel_Validation(t *testing.T) {
	h := domain.DefaultHeuristics()
	projects := EligibleProjects([]domain.ProjectData{DeriveProjectData(snapshot("A", 40, 20, 10, 2, 8), &h)})

	tests := []struct {
		name string
		c    domain.OptimizationConstraints
	}{
		{"negative budget", domain.OptimizationConstraints{MaxBudget: decimal.NewFromInt(-1)}},
		{"min above max", domain.OptimizationConstraints{MaxBudget: millions(1), MinProjects: intPtr(3), MaxProjects: intPtr(2)}},
		{"negative count", domain.OptimizationConstraints{MaxBudget: millions(1), MaxProjects: intPtr(-1)}},
		{"required and excluded", domain.OptimizationConstraints{MaxBudget: millions(1), RequiredProjectIDs: []string{"A"}, ExcludedProjectIDs: []string{"A"}}},
		{"required not eligible", domain.OptimizationConstraints{MaxBudget: millions(1), RequiredProjectIDs: []string{"Z"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildModel(projects, tt.c, &h)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))
		})
	}
}

func TestOptimizeAcrossProjects(t *testing.T) {
	o := newTestOptimizer()

	result, err := o.OptimizeAcrossProjects(context.Background(), domain.OptimizationConstraints{MaxBudget: millions(3)})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, result.SelectedIDs())
	assert.True(t, millions(3).Equal(result.TotalCost), "total cost %s", result.TotalCost)
	assert.Equal(t, 80.0, result.TotalCIImprovement)
	assert.InDelta(t, 24.0, result.TotalFCIImprovement, 1e-9)
	assert.InDelta(t, 100.0, result.BudgetUtilization, 1e-9)
	assert.InDelta(t, 37500.0, result.AverageCostEffectiveness, 1e-9)

	assert.InDelta(t, 1660.0/27, result.BeforeCI, 1e-9)
	assert.InDelta(t, 2310.0/27, result.AfterCI, 1e-9)
	assert.Less(t, result.AfterFCI, result.BeforeFCI)

	assert.InDelta(t, 25.0, result.SelectedProjects[0].CIPerMillion, 1e-9)
	assert.True(t, result.Solver.ProvenOptimal)
	assert.Equal(t, 4, result.Solver.Variables)
	assert.InDelta(t, 650.0, result.Solver.ObjectiveValue, 1e-9)
}

func TestOptimizeAcrossProjects_ZeroImprovementNeverPreferred(t *testing.T) {
	o := newTestOptimizer()

	result, err := o.OptimizeAcrossProjects(context.Background(), domain.OptimizationConstraints{MaxBudget: millions(5)})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, result.SelectedIDs(), "D adds cost without value")
	assert.True(t, millions(4.5).Equal(result.TotalCost))

	result, err = o.OptimizeAcrossProjects(context.Background(), domain.OptimizationConstraints{MaxBudget: millions(2.5)})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, result.SelectedIDs())
}

func TestOptimizeAcrossProjects_Constraints(t *testing.T) {
	o := newTestOptimizer()
	ctx := context.Background()

	tests := []struct {
		name     string
		c        domain.OptimizationConstraints
		expected []string
	}{
		{"required project", domain.OptimizationConstraints{MaxBudget: millions(3), RequiredProjectIDs: []string{"D"}}, []string{"A", "D"}},
		{"excluded project", domain.OptimizationConstraints{MaxBudget: millions(3), ExcludedProjectIDs: []string{"A"}}, []string{"B", "C"}},
		{"max projects", domain.OptimizationConstraints{MaxBudget: millions(5), MaxProjects: intPtr(1)}, []string{"A"}},
		{"min projects", domain.OptimizationConstraints{MaxBudget: millions(3), MinProjects: intPtr(3)}, []string{"B", "C", "D"}},
		{"risk tolerance", domain.OptimizationConstraints{MaxBudget: millions(5), MaxRiskTolerance: floatPtr(7)}, []string{"A", "B", "C", "D"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := o.OptimizeAcrossProjects(ctx, tt.c)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.SelectedIDs())
			assert.True(t, result.TotalCost.LessThanOrEqual(tt.c.MaxBudget))
			if tt.c.MinProjects != nil {
				assert.GreaterOrEqual(t, len(result.SelectedProjects), *tt.c.MinProjects)
			}
			if tt.c.MaxProjects != nil {
				assert.LessOrEqual(t, len(result.SelectedProjects), *tt.c.MaxProjects)
			}
		})
	}
}

func TestOptimizeAcrossProjects_ZeroBudget(t *testing.T) {
	o := newTestOptimizer()
	ctx := context.Background()

	result, err := o.OptimizeAcrossProjects(ctx, domain.OptimizationConstraints{MaxBudget: decimal.Zero})
	require.NoError(t, err, "zero budget is an empty feasible plan")
	assert.Empty(t, result.SelectedProjects)
	assert.True(t, result.TotalCost.IsZero())
	assert.Equal(t, 0.0, result.BudgetUtilization)
	assert.Equal(t, 0.0, result.AverageCostEffectiveness)
	assert.Equal(t, result.BeforeCI, result.AfterCI)

	_, err = o.OptimizeAcrossProjects(ctx, domain.OptimizationConstraints{MaxBudget: decimal.Zero, MinProjects: intPtr(1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInfeasible))
}

func TestOptimizeAcrossProjects_Infeasible(t *testing.T) {
	o := newTestOptimizer()

	_, err := o.OptimizeAcrossProjects(context.Background(), domain.OptimizationConstraints{
		MaxBudget:        millions(3),
		MinCIImprovement: floatPtr(100),
	})
	require.Error(t, err)
	var infeasible *domain.InfeasibleError
	require.True(t, errors.As(err, &infeasible))
	assert.Contains(t, infeasible.Message, "raise the budget")
	assert.True(t, errors.Is(err, mip.ErrInfeasible))
}

func TestOptimizeAcrossProjects_NoEligibleProjects(t *testing.T) {
	o := NewOptimizer(&staticSource{projects: []domain.ProjectSnapshot{snapshot("E", 50, 30, 0, 1, 5)}})

	_, err := o.OptimizeAcrossProjects(context.Background(), domain.OptimizationConstraints{MaxBudget: millions(3)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInfeasible))
}

func TestOptimizeAcrossProjects_SourceError(t *testing.T) {
	o := NewOptimizer(&staticSource{err: errors.New("connection refused")})

	_, err := o.OptimizeAcrossProjects(context.Background(), domain.OptimizationConstraints{MaxBudget: millions(3)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestOptimizeAcrossProjects_BudgetNeverExceeded(t *testing.T) {
	o := newTestOptimizer()
	for _, b := range []float64{0.4, 0.5, 1, 1.75, 2.25, 3.1, 4, 4.75, 6} {
		result, err := o.OptimizeAcrossProjects(context.Background(), domain.OptimizationConstraints{MaxBudget: millions(b)})
		require.NoError(t, err)
		assert.True(t, result.TotalCost.LessThanOrEqual(millions(b)), "budget %v", b)
	}
}

func randomSnapshots(rng *rand.Rand, n int) []domain.ProjectSnapshot {
	round := func(v float64) float64 { return math.Round(v*100) / 100 }
	snapshots := make([]domain.ProjectSnapshot, n)
	for i := range snapshots {
		snapshots[i] = snapshot(fmt.Sprintf("P-%03d", i),
			round(20+65*rng.Float64()),
			round(2+38*rng.Float64()),
			round(1+19*rng.Float64()),
			round(0.05+2.95*rng.Float64()),
			float64(1+rng.Intn(10)))
	}
	return snapshots
}

func TestOptimize_HundredProjects(t *testing.T) {
	h := domain.DefaultHeuristics()
	projects := derive(randomSnapshots(rand.New(rand.NewSource(11)), 100))
	total := decimal.Zero
	for _, p := range projects {
		total = total.Add(p.EstimatedCost)
	}
	budget := total.Div(decimal.NewFromInt(3)).Round(0)

	o := NewOptimizer(&staticSource{})
	start := time.Now()
	result, err := o.Optimize(context.Background(), projects, domain.OptimizationConstraints{MaxBudget: budget})
	elapsed := time.Since(start)
	require.NoError(t, err)

	assert.True(t, result.Solver.ProvenOptimal, "stopped after %d nodes", result.Solver.Nodes)
	assert.Less(t, elapsed, 10*time.Second, "solved in %s over %d nodes", elapsed, result.Solver.Nodes)
	assert.True(t, result.TotalCost.LessThanOrEqual(budget))
	assert.NotEmpty(t, result.SelectedProjects)

	// Never worse than funding projects greedily by value per dollar
	greedy, remaining := 0.0, budget
	for _, p := range byValuePerDollar(projects, &h) {
		if p.EstimatedCost.LessThanOrEqual(remaining) {
			greedy += ValueWeight(p, &h)
			remaining = remaining.Sub(p.EstimatedCost)
		}
	}
	assert.GreaterOrEqual(t, result.Solver.ObjectiveValue, greedy-1e-6)
}

func byValuePerDollar(projects []domain.ProjectData, h *domain.Heuristics) []domain.ProjectData {
	out := append([]domain.ProjectData(nil), projects...)
	ratio := func(p domain.ProjectData) float64 { return ValueWeight(p, h) / p.EstimatedCost.InexactFloat64() }
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && ratio(out[j]) > ratio(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func TestOptimize_CancelledContext(t *testing.T) {
	o := newTestOptimizer()
	projects, err := o.LoadProjects(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = o.Optimize(ctx, projects, domain.OptimizationConstraints{MaxBudget: millions(3)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, domain.ErrInfeasible))

	_, err = o.AnalyzeSensitivity(ctx, millions(3), 50)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPortfolioResult_CostEffectivenessUnits(t *testing.T) {
	o := newTestOptimizer()
	result, err := o.OptimizeAcrossProjects(context.Background(), domain.OptimizationConstraints{MaxBudget: millions(3)})
	require.NoError(t, err)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	var decoded struct {
		SelectedProjects []map[string]interface{} `json:"selected_projects"`
		Average          float64                  `json:"average_cost_effectiveness"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotEmpty(t, decoded.SelectedProjects)

	first := decoded.SelectedProjects[0]
	assert.Contains(t, first, "ci_per_million")
	assert.NotContains(t, first, "cost_effectiveness")
	// A: 50 points for $2M is 25 points per $1M; the portfolio spends $37,500 per point
	assert.InDelta(t, 25.0, first["ci_per_million"], 1e-9)
	assert.InDelta(t, 37500.0, decoded.Average, 1e-9)
}
