package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ScenarioStatus tracks a persisted scenario through review
type ScenarioStatus string

const (
	StatusDraft       ScenarioStatus = "draft"
	StatusOptimized   ScenarioStatus = "optimized"
	StatusApproved    ScenarioStatus = "approved"
	StatusImplemented ScenarioStatus = "implemented"
)

var statusOrder = map[ScenarioStatus]int{
	StatusDraft:       0,
	StatusOptimized:   1,
	StatusApproved:    2,
	StatusImplemented: 3,
}

// Valid reports whether s is a known status
func (s ScenarioStatus) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// CanTransitionTo reports whether a scenario may move from s to next.
// Statuses only move forward one step; re-running an optimized scenario is allowed.
func (s ScenarioStatus) CanTransitionTo(next ScenarioStatus) bool {
	from, ok := statusOrder[s]
	if !ok {
		return false
	}
	to, ok := statusOrder[next]
	if !ok {
		return false
	}
	if s == StatusOptimized && next == StatusOptimized {
		return true
	}
	return to == from+1
}

// Scenario is a named, persisted single-project optimization
type Scenario struct {
	ID          string             `json:"id"`
	ProjectID   string             `json:"project_id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Config      OptimizationConfig `json:"config"`
	Status      ScenarioStatus     `json:"status"`

	TotalCost          decimal.Decimal `json:"total_cost"`
	TotalBenefit       decimal.Decimal `json:"total_benefit"`
	NetPresentValue    decimal.Decimal `json:"net_present_value"`
	ReturnOnInvestment float64         `json:"return_on_investment"`
	PaybackPeriod      float64         `json:"payback_period"`
	ProjectedCI        float64         `json:"projected_ci"`
	ProjectedFCI       float64         `json:"projected_fci"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	OptimizedAt *time.Time `json:"optimized_at,omitempty"`

	Strategies []StrategyOption     `json:"strategies,omitempty"`
	CashFlows  []CashFlowProjection `json:"cash_flows,omitempty"`
}

// ApplyResult copies the summary metrics and child rows of an optimization run
func (s *Scenario) ApplyResult(result *OptimizationResult, at time.Time) {
	s.TotalCost = result.TotalCost
	s.TotalBenefit = result.TotalBenefit
	s.NetPresentValue = result.NetPresentValue
	s.ReturnOnInvestment = result.ReturnOnInvestment
	s.PaybackPeriod = result.PaybackPeriod
	s.ProjectedCI = result.ProjectedCI
	s.ProjectedFCI = result.ProjectedFCI
	s.Strategies = append([]StrategyOption(nil), result.SelectedStrategies...)
	s.CashFlows = append([]CashFlowProjection(nil), result.CashFlows...)
	s.Status = StatusOptimized
	s.UpdatedAt = at
	s.OptimizedAt = &at
}

// TransitionError builds the validation error for a rejected status change
func TransitionError(id string, from, to ScenarioStatus) error {
	return &ValidationError{
		Operation: "scenario_status",
		Message:   fmt.Sprintf("scenario %s cannot move from %s to %s", id, from, to),
		Cause:     ErrInvalidTransition,
	}
}

// CashFlowProjection is one year of a scenario's projected cash flows
type CashFlowProjection struct {
	Year               int             `json:"year"`
	CapitalExpenditure decimal.Decimal `json:"capital_expenditure"`
	MaintenanceCost    decimal.Decimal `json:"maintenance_cost"`
	OperatingCost      decimal.Decimal `json:"operating_cost"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	CostAvoidance      decimal.Decimal `json:"cost_avoidance"`
	EfficiencyGains    decimal.Decimal `json:"efficiency_gains"`
	TotalBenefit       decimal.Decimal `json:"total_benefit"`
	NetCashFlow        decimal.Decimal `json:"net_cash_flow"`
	CumulativeCashFlow decimal.Decimal `json:"cumulative_cash_flow"`
	ProjectedCI        float64         `json:"projected_ci"`
	ProjectedFCI       float64         `json:"projected_fci"`
}
