package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateParetoFrontier(t *testing.T) {
	o := newTestOptimizer()

	points, err := o.CalculateParetoFrontier(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 4)

	expectedCost := []float64{1, 3, 4.5, 5}
	expectedCI := []float64{30, 80, 95, 95}
	for i, p := range points {
		assert.True(t, millions(expectedCost[i]).Equal(p.Cost), "point %d cost %s", i, p.Cost)
		assert.Equal(t, expectedCI[i], p.CIImprovement, "point %d", i)
		assert.Equal(t, i+1, p.ProjectCount)
	}
	assert.Equal(t, []string{"B", "A", "C", "D"}, points[3].Projects)
	assert.Equal(t, []string{"B"}, points[0].Projects, "earlier points keep their own project list")
	assert.InDelta(t, 26.25, points[3].FCIImprovement, 1e-9)
}

func TestParetoFrontier_Empty(t *testing.T) {
	points := ParetoFrontier(nil)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestGetCostEffectivenessRanking(t *testing.T) {
	o := newTestOptimizer()

	ranked, err := o.GetCostEffectivenessRanking(context.Background())
	require.NoError(t, err)
	require.Len(t, ranked, 4)

	ids := make([]string, 0, len(ranked))
	for i, r := range ranked {
		assert.Equal(t, i+1, r.Rank)
		ids = append(ids, r.ProjectID)
	}
	assert.Equal(t, []string{"B", "A", "C", "D"}, ids)
	assert.InDelta(t, 1_000_000.0/30, ranked[0].CostPerCIPoint, 1e-6)
	assert.InDelta(t, 40000, ranked[1].CostPerCIPoint, 1e-6)
	assert.InDelta(t, 100000, ranked[2].CostPerCIPoint, 1e-6)
	assert.True(t, math.IsInf(ranked[3].CostPerCIPoint, 1))
}

func TestRankedProject_MarshalJSON(t *testing.T) {
	ranked := CostEffectivenessRanking(derive(testSnapshots()))
	require.Len(t, ranked, 4)

	data, err := json.Marshal(ranked[3])
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "D", decoded["project_id"])
	assert.Nil(t, decoded["cost_per_ci_point"])

	data, err = json.Marshal(ranked[1])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.InDelta(t, 40000, decoded["cost_per_ci_point"], 1e-6)
}

func TestRanking_TiesBrokenByID(t *testing.T) {
	projects := derive([]domain.ProjectSnapshot{
		snapshot("Z", 60, 10, 5, 1, 1),
		snapshot("M", 60, 10, 5, 1, 1),
	})

	ranked := CostEffectivenessRanking(projects)
	require.Len(t, ranked, 2)
	assert.Equal(t, "M", ranked[0].ProjectID)
	assert.Equal(t, "Z", ranked[1].ProjectID)
}

func TestGetPortfolioMetrics(t *testing.T) {
	o := newTestOptimizer()

	m, err := o.GetPortfolioMetrics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, m.TotalProjects)
	assert.True(t, millions(30).Equal(m.TotalReplacementValue))
	assert.True(t, millions(6).Equal(m.TotalDeferredMaintenance))
	assert.InDelta(t, 1915.0/30, m.WeightedCI, 1e-9)
	assert.InDelta(t, 316.0/30, m.WeightedFCI, 1e-9)
	assert.InDelta(t, 26.0/6, m.AveragePriorityScore, 1e-9)
}

func TestMetrics_NoReplacementValue(t *testing.T) {
	m := Metrics(derive([]domain.ProjectSnapshot{snapshot("X", 50, 10, 0, 1, 3)}))
	assert.Equal(t, 1, m.TotalProjects)
	assert.Equal(t, 0.0, m.WeightedCI)
	assert.Equal(t, 0.0, m.WeightedFCI)
	assert.Equal(t, 3.0, m.AveragePriorityScore)
}

func TestMetrics_Empty(t *testing.T) {
	m := Metrics(nil)
	assert.Equal(t, 0, m.TotalProjects)
	assert.True(t, m.TotalReplacementValue.IsZero())
}

func TestPortfolioQueries_SourceError(t *testing.T) {
	boom := errors.New("boom")
	o := NewOptimizer(&staticSource{err: boom})
	ctx := context.Background()

	_, err := o.CalculateParetoFrontier(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = o.GetCostEffectivenessRanking(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = o.GetPortfolioMetrics(ctx)
	assert.ErrorIs(t, err, boom)
}
