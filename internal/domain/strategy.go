package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StrategyType identifies one of the four mutually exclusive treatments for a component
type StrategyType string

const (
	StrategyReplace      StrategyType = "replace"
	StrategyRehabilitate StrategyType = "rehabilitate"
	StrategyDefer        StrategyType = "defer"
	StrategyDoNothing    StrategyType = "do_nothing"
)

// StrategyTypes lists the treatments in the order they are generated
var StrategyTypes = []StrategyType{StrategyReplace, StrategyRehabilitate, StrategyDefer, StrategyDoNothing}

// BudgetType controls whether a single-project budget is enforced
type BudgetType string

const (
	BudgetHard BudgetType = "hard"
	BudgetSoft BudgetType = "soft"
)

// OptimizationGoal selects the rule used to recommend a strategy
type OptimizationGoal string

const (
	GoalMinimizeCost OptimizationGoal = "minimize_cost"
	GoalMaximizeCI   OptimizationGoal = "maximize_ci"
	GoalMaximizeROI  OptimizationGoal = "maximize_roi"
	GoalMinimizeRisk OptimizationGoal = "minimize_risk"
)

// Valid reports whether g is a known goal
func (g OptimizationGoal) Valid() bool {
	switch g {
	case GoalMinimizeCost, GoalMaximizeCI, GoalMaximizeROI, GoalMinimizeRisk:
		return true
	}
	return false
}

// StrategyOption is one fully computed treatment option for a component
type StrategyOption struct {
	ComponentCode        string          `json:"component_code"`
	Strategy             StrategyType    `json:"strategy"`
	ActionYear           int             `json:"action_year"`
	DeferralYears        int             `json:"deferral_years,omitempty"`
	StrategyCost         decimal.Decimal `json:"strategy_cost"`
	PresentValueCost     decimal.Decimal `json:"present_value_cost"`
	LifeExtension        int             `json:"life_extension"`
	ConditionImprovement float64         `json:"condition_improvement"`
	RiskReduction        float64         `json:"risk_reduction"`
	FailureCostAvoided   decimal.Decimal `json:"failure_cost_avoided"`
	MaintenanceSavings   decimal.Decimal `json:"maintenance_savings"`
	CostEffectiveness    float64         `json:"cost_effectiveness"`
}

// TotalBenefit is the monetary benefit of the option
func (s StrategyOption) TotalBenefit() decimal.Decimal {
	return s.FailureCostAvoided.Add(s.MaintenanceSavings)
}

// EffectiveYear is the year the option's cost is incurred
func (s StrategyOption) EffectiveYear() int {
	return s.ActionYear + s.DeferralYears
}

// OptimizationConfig parameterizes strategy generation and single-project optimization
type OptimizationConfig struct {
	ProjectID        string           `yaml:"project_id" json:"project_id"`
	BudgetConstraint *decimal.Decimal `yaml:"budget_constraint,omitempty" json:"budget_constraint,omitempty"`
	BudgetType       BudgetType       `yaml:"budget_type" json:"budget_type"`
	TimeHorizon      int              `yaml:"time_horizon" json:"time_horizon"`
	DiscountRate     decimal.Decimal  `yaml:"discount_rate" json:"discount_rate"`
	OptimizationGoal OptimizationGoal `yaml:"optimization_goal" json:"optimization_goal"`
}

// DefaultOptimizationConfig returns a ten year, 3% discount, soft budget configuration
func DefaultOptimizationConfig(projectID string) OptimizationConfig {
	return OptimizationConfig{
		ProjectID:        projectID,
		BudgetType:       BudgetSoft,
		TimeHorizon:      10,
		DiscountRate:     decimal.NewFromFloat(0.03),
		OptimizationGoal: GoalMaximizeROI,
	}
}

// Validate checks the configuration for values the engine cannot work with
func (c *OptimizationConfig) Validate() error {
	if c.TimeHorizon < 1 {
		return &ValidationError{Operation: "validate_config", Message: fmt.Sprintf("time horizon must be at least 1 year, got %d", c.TimeHorizon)}
	}
	if c.DiscountRate.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return &ValidationError{Operation: "validate_config", Message: "discount rate must be greater than -100%"}
	}
	if !c.OptimizationGoal.Valid() {
		return &ValidationError{Operation: "validate_config", Message: fmt.Sprintf("unknown optimization goal %q", c.OptimizationGoal)}
	}
	switch c.BudgetType {
	case BudgetHard, BudgetSoft:
	case "":
		c.BudgetType = BudgetSoft
	default:
		return &ValidationError{Operation: "validate_config", Message: fmt.Sprintf("unknown budget type %q", c.BudgetType)}
	}
	if c.BudgetConstraint != nil && c.BudgetConstraint.IsNegative() {
		return &ValidationError{Operation: "validate_config", Message: "budget constraint cannot be negative"}
	}
	return nil
}

// HardBudget returns the enforced budget, if any
func (c OptimizationConfig) HardBudget() (decimal.Decimal, bool) {
	if c.BudgetType != BudgetHard || c.BudgetConstraint == nil {
		return decimal.Zero, false
	}
	return *c.BudgetConstraint, true
}

// StrategyComparison is the set of options for a component together with the recommendation
type StrategyComparison struct {
	Component   ComponentSnapshot `json:"component"`
	Strategies  []StrategyOption  `json:"strategies"`
	Recommended StrategyOption    `json:"recommended"`
	Defaults    []DataDefault     `json:"defaults,omitempty"`
}

// OptimizationResult summarizes a single-project optimization run
type OptimizationResult struct {
	ProjectID            string               `json:"project_id"`
	Config               OptimizationConfig   `json:"config"`
	TotalCost            decimal.Decimal      `json:"total_cost"`
	TotalBenefit         decimal.Decimal      `json:"total_benefit"`
	NetPresentValue      decimal.Decimal      `json:"net_present_value"`
	ReturnOnInvestment   float64              `json:"return_on_investment"`
	PaybackPeriod        float64              `json:"payback_period"`
	InternalRateOfReturn *float64             `json:"internal_rate_of_return,omitempty"`
	CurrentCI            float64              `json:"current_ci"`
	ProjectedCI          float64              `json:"projected_ci"`
	CIImprovement        float64              `json:"ci_improvement"`
	CurrentFCI           float64              `json:"current_fci"`
	ProjectedFCI         float64              `json:"projected_fci"`
	FCIImprovement       float64              `json:"fci_improvement"`
	CurrentRiskScore     float64              `json:"current_risk_score"`
	ProjectedRiskScore   float64              `json:"projected_risk_score"`
	RiskReduction        float64              `json:"risk_reduction"`
	SelectedStrategies   []StrategyOption     `json:"selected_strategies"`
	DeferredComponents   []string             `json:"deferred_components"`
	Defaults             []DataDefault        `json:"defaults,omitempty"`
	CashFlows            []CashFlowProjection `json:"cash_flows"`
}
