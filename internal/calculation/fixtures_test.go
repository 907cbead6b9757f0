package calculation

import (
	"context"
	"fmt"
	"time"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
)

// memorySource serves fixed component snapshots keyed by project
type memorySource struct {
	components map[string][]domain.ComponentSnapshot
	failOn     string
}

func (m *memorySource) Component(_ context.Context, projectID, code string) (domain.ComponentSnapshot, error) {
	for _, c := range m.components[projectID] {
		if c.ComponentCode == code {
			return c, nil
		}
	}
	return domain.ComponentSnapshot{}, domain.NotFound("component", fmt.Sprintf("component %s not assessed in project %s", code, projectID))
}

func (m *memorySource) AssessedComponents(_ context.Context, projectID string) ([]domain.ComponentSnapshot, error) {
	if projectID == m.failOn {
		return nil, fmt.Errorf("assessment store unavailable")
	}
	return m.components[projectID], nil
}

func money(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func intPtr(v int) *int { return &v }

func fixedClock() time.Time {
	return time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
}

func newTestEngine(src ComponentSource) *CalculationEngine {
	engine := NewCalculationEngine(src)
	engine.Now = fixedClock
	return engine
}

// poorRoof is the worked example: poor condition with an explicit replacement value
func poorRoof() domain.ComponentSnapshot {
	return domain.ComponentSnapshot{
		ComponentCode:       "B3010",
		Name:                "Roof Coverings",
		Condition:           domain.ConditionPoor,
		EstimatedRepairCost: money(50000),
		ReplacementValue:    money(100000),
		ExpectedUsefulLife:  intPtr(20),
		ActionYear:          intPtr(2027),
	}
}

func testPortfolio() *memorySource {
	return &memorySource{components: map[string][]domain.ComponentSnapshot{
		"P-100": {
			poorRoof(),
			{
				ComponentCode:       "D3020",
				Name:                "Heat Generating Systems",
				Condition:           domain.ConditionFair,
				EstimatedRepairCost: money(40000),
				ReplacementValue:    money(200000),
				ExpectedUsefulLife:  intPtr(25),
				ActionYear:          intPtr(2026),
			},
			{
				ComponentCode:       "C3010",
				Name:                "Wall Finishes",
				Condition:           domain.ConditionGood,
				EstimatedRepairCost: money(5000),
				ReplacementValue:    money(60000),
				ExpectedUsefulLife:  intPtr(15),
				ActionYear:          intPtr(2028),
			},
		},
		"P-200": {
			{ComponentCode: "D5010", Name: "Electrical Service", Condition: domain.ConditionNotAssessed},
		},
		"P-EMPTY": {},
	}}
}
