package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rgehrsitz/facplan/internal/domain"
)

// MemoryStore keeps scenarios in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	scenarios map[string]*domain.Scenario
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scenarios: make(map[string]*domain.Scenario)}
}

func (m *MemoryStore) CreateScenario(ctx context.Context, s *domain.Scenario) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.scenarios[s.ID]; exists {
		return &domain.ValidationError{Operation: "create_scenario", Message: fmt.Sprintf("scenario %s already exists", s.ID)}
	}
	m.scenarios[s.ID] = cloneScenario(s)
	return nil
}

func (m *MemoryStore) GetScenario(ctx context.Context, id string) (*domain.Scenario, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.scenarios[id]
	if !ok {
		return nil, scenarioNotFound("get_scenario", id)
	}
	return cloneScenario(s), nil
}

func (m *MemoryStore) ListScenarios(ctx context.Context, projectID string) ([]domain.Scenario, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Scenario, 0, len(m.scenarios))
	for _, s := range m.scenarios {
		if projectID != "" && s.ProjectID != projectID {
			continue
		}
		header := *s
		header.Strategies = nil
		header.CashFlows = nil
		out = append(out, header)
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.Before(out[b].CreatedAt)
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}

func (m *MemoryStore) SaveOptimization(ctx context.Context, s *domain.Scenario) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.scenarios[s.ID]; !ok {
		return scenarioNotFound("save_optimization", s.ID)
	}
	m.scenarios[s.ID] = cloneScenario(s)
	return nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id string, status domain.ScenarioStatus, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.scenarios[id]
	if !ok {
		return scenarioNotFound("update_status", id)
	}
	s.Status = status
	s.UpdatedAt = at
	return nil
}

func (m *MemoryStore) DeleteScenario(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.scenarios[id]; !ok {
		return scenarioNotFound("delete_scenario", id)
	}
	delete(m.scenarios, id)
	return nil
}

// cloneScenario copies a scenario so callers never share slices with the store
func cloneScenario(s *domain.Scenario) *domain.Scenario {
	c := *s
	c.Strategies = append([]domain.StrategyOption(nil), s.Strategies...)
	c.CashFlows = append([]domain.CashFlowProjection(nil), s.CashFlows...)
	if s.OptimizedAt != nil {
		at := *s.OptimizedAt
		c.OptimizedAt = &at
	}
	if s.Config.BudgetConstraint != nil {
		b := *s.Config.BudgetConstraint
		c.Config.BudgetConstraint = &b
	}
	return &c
}
