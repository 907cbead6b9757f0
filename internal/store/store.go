package store

import (
	"context"
	"time"

	"github.com/rgehrsitz/facplan/internal/domain"
)

// ScenarioStore persists scenarios together with their strategy and cash-flow rows
type ScenarioStore interface {
	// CreateScenario inserts a new scenario header. The ID must be unique.
	CreateScenario(ctx context.Context, s *domain.Scenario) error
	// GetScenario returns the scenario with its strategy and cash-flow rows
	GetScenario(ctx context.Context, id string) (*domain.Scenario, error)
	// ListScenarios returns scenario headers ordered by creation time, optionally for one project
	ListScenarios(ctx context.Context, projectID string) ([]domain.Scenario, error)
	// SaveOptimization replaces the summary metrics and child rows of a scenario atomically
	SaveOptimization(ctx context.Context, s *domain.Scenario) error
	// UpdateStatus changes the status of a scenario
	UpdateStatus(ctx context.Context, id string, status domain.ScenarioStatus, at time.Time) error
	// DeleteScenario removes a scenario and all of its rows
	DeleteScenario(ctx context.Context, id string) error
}

func scenarioNotFound(op, id string) error {
	return domain.NotFound(op, "scenario "+id+" not found")
}
