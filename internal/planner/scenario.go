package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/rgehrsitz/facplan/internal/domain"
)

// CreateScenario stores a new draft scenario for a project
func (p *Planner) CreateScenario(ctx context.Context, projectID, name, description string, cfg domain.OptimizationConfig) (*domain.Scenario, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Operation: "create_scenario", Message: "scenario name is required"}
	}
	if cfg.ProjectID != "" && cfg.ProjectID != projectID {
		return nil, &domain.ValidationError{
			Operation: "create_scenario",
			Message:   fmt.Sprintf("config is for project %s, not %s", cfg.ProjectID, projectID),
		}
	}
	cfg.ProjectID = projectID
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := p.Engine.Source.AssessedComponents(ctx, projectID); err != nil {
		return nil, err
	}

	now := p.Now()
	sc := &domain.Scenario{
		ID:          p.NewID(),
		ProjectID:   projectID,
		Name:        name,
		Description: description,
		Config:      cfg,
		Status:      domain.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Scenarios.CreateScenario(ctx, sc); err != nil {
		return nil, err
	}
	p.Logger.Infof("scenario %s created for project %s", sc.ID, projectID)
	return sc, nil
}

// GetScenario returns a scenario with its strategy and cash-flow rows
func (p *Planner) GetScenario(ctx context.Context, id string) (*domain.Scenario, error) {
	return p.Scenarios.GetScenario(ctx, id)
}

// ListScenarios returns scenario headers, optionally for one project
func (p *Planner) ListScenarios(ctx context.Context, projectID string) ([]domain.Scenario, error) {
	return p.Scenarios.ListScenarios(ctx, projectID)
}

// RunScenario optimizes a draft or optimized scenario and persists the outcome
func (p *Planner) RunScenario(ctx context.Context, id string) (*domain.Scenario, *domain.OptimizationResult, error) {
	sc, err := p.Scenarios.GetScenario(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !sc.Status.CanTransitionTo(domain.StatusOptimized) {
		return nil, nil, domain.TransitionError(id, sc.Status, domain.StatusOptimized)
	}

	result, err := p.Engine.OptimizeSingleProject(ctx, sc.ProjectID, sc.Config)
	if err != nil {
		return nil, nil, err
	}

	sc.ApplyResult(result, p.Now())
	if err := p.Scenarios.SaveOptimization(ctx, sc); err != nil {
		return nil, nil, fmt.Errorf("failed to save optimization for scenario %s: %w", id, err)
	}
	p.Logger.Infof("scenario %s optimized: cost %s, CI %.1f -> %.1f",
		id, result.TotalCost.StringFixed(2), result.CurrentCI, result.ProjectedCI)
	return sc, result, nil
}

// ApproveScenario moves an optimized scenario to approved
func (p *Planner) ApproveScenario(ctx context.Context, id string) (*domain.Scenario, error) {
	return p.transition(ctx, id, domain.StatusApproved)
}

// ImplementScenario moves an approved scenario to implemented
func (p *Planner) ImplementScenario(ctx context.Context, id string) (*domain.Scenario, error) {
	return p.transition(ctx, id, domain.StatusImplemented)
}

// DeleteScenario removes a scenario and its rows
func (p *Planner) DeleteScenario(ctx context.Context, id string) error {
	if err := p.Scenarios.DeleteScenario(ctx, id); err != nil {
		return err
	}
	p.Logger.Infof("scenario %s deleted", id)
	return nil
}

func (p *Planner) transition(ctx context.Context, id string, next domain.ScenarioStatus) (*domain.Scenario, error) {
	sc, err := p.Scenarios.GetScenario(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sc.Status.CanTransitionTo(next) {
		return nil, domain.TransitionError(id, sc.Status, next)
	}

	now := p.Now()
	if err := p.Scenarios.UpdateStatus(ctx, id, next, now); err != nil {
		return nil, err
	}
	sc.Status = next
	sc.UpdatedAt = now
	p.Logger.Infof("scenario %s moved to %s", id, next)
	return sc, nil
}
