package portfolio

import (
	"context"
	"math"
	"sort"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
)

// costPerPoint is the cost of one CI point, +Inf when the project improves nothing
func costPerPoint(p domain.ProjectData) float64 {
	if p.ExpectedCIImprovement <= 0 {
		return math.Inf(1)
	}
	return p.EstimatedCost.InexactFloat64() / p.ExpectedCIImprovement
}

// byCostEffectiveness orders projects by ascending cost per CI point, ties by id
func byCostEffectiveness(projects []domain.ProjectData) []domain.ProjectData {
	sorted := append([]domain.ProjectData(nil), projects...)
	sort.SliceStable(sorted, func(a, b int) bool {
		ca, cb := costPerPoint(sorted[a]), costPerPoint(sorted[b])
		if ca != cb {
			return ca < cb
		}
		return sorted[a].ProjectID < sorted[b].ProjectID
	})
	return sorted
}

// ParetoFrontier accumulates eligible projects in cost-effectiveness order, one point per project
func ParetoFrontier(projects []domain.ProjectData) []domain.ParetoPoint {
	ordered := byCostEffectiveness(EligibleProjects(projects))
	points := make([]domain.ParetoPoint, 0, len(ordered))

	cost := decimal.Zero
	ci, fci := 0.0, 0.0
	ids := make([]string, 0, len(ordered))
	for _, p := range ordered {
		cost = cost.Add(p.EstimatedCost)
		ci += p.ExpectedCIImprovement
		fci += p.ExpectedFCIImprovement
		ids = append(ids, p.ProjectID)
		points = append(points, domain.ParetoPoint{
			Cost:           cost,
			CIImprovement:  ci,
			FCIImprovement: fci,
			ProjectCount:   len(ids),
			Projects:       append([]string(nil), ids...),
		})
	}
	return points
}

// CostEffectivenessRanking assigns ranks 1..N by ascending cost per CI point
func CostEffectivenessRanking(projects []domain.ProjectData) []domain.RankedProject {
	ordered := byCostEffectiveness(EligibleProjects(projects))
	ranked := make([]domain.RankedProject, 0, len(ordered))
	for i, p := range ordered {
		ranked = append(ranked, domain.RankedProject{
			Rank:           i + 1,
			ProjectID:      p.ProjectID,
			Name:           p.Name,
			Cost:           p.EstimatedCost,
			CIImprovement:  p.ExpectedCIImprovement,
			CostPerCIPoint: costPerPoint(p),
		})
	}
	return ranked
}

// CalculateParetoFrontier loads the portfolio and returns its cumulative frontier
func (o *Optimizer) CalculateParetoFrontier(ctx context.Context) ([]domain.ParetoPoint, error) {
	projects, err := o.LoadProjects(ctx)
	if err != nil {
		return nil, err
	}
	return ParetoFrontier(projects), nil
}

// GetCostEffectivenessRanking loads the portfolio and ranks its eligible projects
func (o *Optimizer) GetCostEffectivenessRanking(ctx context.Context) ([]domain.RankedProject, error) {
	projects, err := o.LoadProjects(ctx)
	if err != nil {
		return nil, err
	}
	return CostEffectivenessRanking(projects), nil
}
