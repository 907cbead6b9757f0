package portfolio

import (
	"context"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
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

func snapshot(id string, ci, fci, rv, dmc, priority float64) domain.ProjectSnapshot {
	return domain.ProjectSnapshot{
		ProjectID:               id,
		Name:                    "Facility " + id,
		CurrentCI:               ci,
		CurrentFCI:              fci,
		ReplacementValue:        millions(rv),
		DeferredMaintenanceCost: millions(dmc),
		PriorityScore:           priority,
	}
}

// testSnapshots: four eligible facilities (D already at the CI target) and two ineligible ones
func testSnapshots() []domain.ProjectSnapshot {
	return []domain.ProjectSnapshot{
		snapshot("A", 40, 20, 10, 2, 8),
		snapshot("B", 60, 12, 5, 1, 6),
		snapshot("C", 75, 6, 8, 1.5, 4),
		snapshot("D", 90, 2, 4, 0.5, 2),
		snapshot("E", 50, 30, 0, 1, 5),
		snapshot("F", 85, 0, 3, 0, 1),
	}
}

func newTestOptimizer() *Optimizer {
	return NewOptimizer(&staticSource{projects: testSnapshots()})
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func derive(snapshots []domain.ProjectSnapshot) []domain.ProjectData {
	h := domain.DefaultHeuristics()
	projects := make([]domain.ProjectData, 0, len(snapshots))
	for _, s := range snapshots {
		projects = append(projects, DeriveProjectData(s, &h))
	}
	return projects
}
