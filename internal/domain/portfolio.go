package domain

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
)

// ProjectData holds the derived metrics of one project for portfolio optimization
type ProjectData struct {
	ProjectID               string          `json:"project_id"`
	Name                    string          `json:"name"`
	CurrentCI               float64         `json:"current_ci"`
	CurrentFCI              float64         `json:"current_fci"`
	ReplacementValue        decimal.Decimal `json:"replacement_value"`
	DeferredMaintenanceCost decimal.Decimal `json:"deferred_maintenance_cost"`
	PriorityScore           float64         `json:"priority_score"`
	EstimatedCost           decimal.Decimal `json:"estimated_cost"`
	ExpectedCIImprovement   float64         `json:"expected_ci_improvement"`
	ExpectedFCIImprovement  float64         `json:"expected_fci_improvement"`
	RiskScore               float64         `json:"risk_score"`
}

// OptimizationConstraints bound the cross-project selection
type OptimizationConstraints struct {
	MaxBudget          decimal.Decimal `yaml:"max_budget" json:"max_budget"`
	MinProjects        *int            `yaml:"min_projects,omitempty" json:"min_projects,omitempty"`
	MaxProjects        *int            `yaml:"max_projects,omitempty" json:"max_projects,omitempty"`
	RequiredProjectIDs []string        `yaml:"required_project_ids,omitempty" json:"required_project_ids,omitempty"`
	ExcludedProjectIDs []string        `yaml:"excluded_project_ids,omitempty" json:"excluded_project_ids,omitempty"`
	MinCIImprovement   *float64        `yaml:"min_ci_improvement,omitempty" json:"min_ci_improvement,omitempty"`
	MaxRiskTolerance   *float64        `yaml:"max_risk_tolerance,omitempty" json:"max_risk_tolerance,omitempty"`
}

// SelectedProject is one funded project in a portfolio result
type SelectedProject struct {
	ProjectID      string          `json:"project_id"`
	Name           string          `json:"name,omitempty"`
	Cost           decimal.Decimal `json:"cost"`
	CIImprovement  float64         `json:"ci_improvement"`
	FCIImprovement float64         `json:"fci_improvement"`
	PriorityScore  float64         `json:"priority_score"`
	// CIPerMillion is CI points gained per $1M spent, higher is better
	CIPerMillion   float64         `json:"ci_per_million"`
}

// SolverStats describes the branch-and-bound run behind a portfolio result
type SolverStats struct {
	Variables      int     `json:"variables"`
	Constraints    int     `json:"constraints"`
	Nodes          int     `json:"nodes"`
	ProvenOptimal  bool    `json:"proven_optimal"`
	ObjectiveValue float64 `json:"objective_value"`
}

// PortfolioResult is the outcome of the cross-project optimizer.
// AverageCostEffectiveness is dollars spent per CI point gained, lower is better.
type PortfolioResult struct {
	SelectedProjects         []SelectedProject `json:"selected_projects"`
	TotalCost                decimal.Decimal   `json:"total_cost"`
	TotalCIImprovement       float64           `json:"total_ci_improvement"`
	TotalFCIImprovement      float64           `json:"total_fci_improvement"`
	BeforeCI                 float64           `json:"before_ci"`
	AfterCI                  float64           `json:"after_ci"`
	BeforeFCI                float64           `json:"before_fci"`
	AfterFCI                 float64           `json:"after_fci"`
	BudgetUtilization        float64           `json:"budget_utilization"`
	AverageCostEffectiveness float64           `json:"average_cost_effectiveness"`
	Solver                   SolverStats       `json:"solver"`
}

// SelectedIDs returns the ids of the funded projects in result order
func (r *PortfolioResult) SelectedIDs() []string {
	ids := make([]string, 0, len(r.SelectedProjects))
	for _, p := range r.SelectedProjects {
		ids = append(ids, p.ProjectID)
	}
	return ids
}

// SensitivityLevel is the optimizer outcome at one swept budget
type SensitivityLevel struct {
	Budget          decimal.Decimal `json:"budget"`
	ProjectCount    int             `json:"project_count"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	CIImprovement   float64         `json:"ci_improvement"`
	FCIImprovement  float64         `json:"fci_improvement"`
	MarginalBenefit float64         `json:"marginal_benefit"`
	ROI             float64         `json:"roi"`
}

// SensitivityAnalysis holds the budget sweep. Infeasible budgets are omitted from BudgetLevels.
type SensitivityAnalysis struct {
	BaseBudget      decimal.Decimal    `json:"base_budget"`
	RangePercent    float64            `json:"range_percent"`
	RequestedLevels []decimal.Decimal  `json:"requested_levels"`
	BudgetLevels    []SensitivityLevel `json:"budget_levels"`
	OptimalBudget   decimal.Decimal    `json:"optimal_budget"`
	InflectionPoint decimal.Decimal    `json:"inflection_point"`
}

// ParetoPoint is one point on the cumulative cost/improvement curve
type ParetoPoint struct {
	Cost           decimal.Decimal `json:"cost"`
	CIImprovement  float64         `json:"ci_improvement"`
	FCIImprovement float64         `json:"fci_improvement"`
	ProjectCount   int             `json:"project_count"`
	Projects       []string        `json:"projects"`
}

// RankedProject is a project ordered by cost per CI point
type RankedProject struct {
	Rank           int             `json:"rank"`
	ProjectID      string          `json:"project_id"`
	Name           string          `json:"name,omitempty"`
	Cost           decimal.Decimal `json:"cost"`
	CIImprovement  float64         `json:"ci_improvement"`
	CostPerCIPoint float64         `json:"cost_per_ci_point"`
}

// MarshalJSON encodes an unbounded cost per point as null
func (r RankedProject) MarshalJSON() ([]byte, error) {
	type alias RankedProject
	out := struct {
		alias
		CostPerCIPoint *float64 `json:"cost_per_ci_point"`
	}{alias: alias(r)}
	if !math.IsInf(r.CostPerCIPoint, 0) && !math.IsNaN(r.CostPerCIPoint) {
		v := r.CostPerCIPoint
		out.CostPerCIPoint = &v
	}
	return json.Marshal(out)
}

// PortfolioMetrics summarizes the whole portfolio
type PortfolioMetrics struct {
	TotalProjects            int             `json:"total_projects"`
	TotalReplacementValue    decimal.Decimal `json:"total_replacement_value"`
	TotalDeferredMaintenance decimal.Decimal `json:"total_deferred_maintenance"`
	WeightedCI               float64         `json:"weighted_ci"`
	WeightedFCI              float64         `json:"weighted_fci"`
	AveragePriorityScore     float64         `json:"average_priority_score"`
}
