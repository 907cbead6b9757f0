package breakeven

import (
	"fmt"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
)

// Goal defines which portfolio outcome the budget must reach
type Goal string

const (
	GoalCIGain   Goal = "ci_gain"   // Replacement-value weighted CI gain over the eligible portfolio
	GoalTargetCI Goal = "target_ci" // Replacement-value weighted CI after funding
)

// Valid reports whether g is a known goal
func (g Goal) Valid() bool {
	return g == GoalCIGain || g == GoalTargetCI
}

// Request defines the parameters of a break-even search
type Request struct {
	Goal   Goal    `json:"goal"`
	Target float64 `json:"target"`

	// Search range for the budget
	MinBudget decimal.Decimal `json:"min_budget"`
	MaxBudget decimal.Decimal `json:"max_budget"`

	// Constraints other than MaxBudget apply at every probed budget
	Constraints domain.OptimizationConstraints `json:"constraints"`

	MaxIterations int             `json:"max_iterations,omitempty"`
	Tolerance     decimal.Decimal `json:"tolerance,omitempty"` // Convergence tolerance in dollars
}

// Result is the outcome of a break-even search
type Result struct {
	Request         Request `json:"request"`
	Success         bool    `json:"success"`
	Iterations      int     `json:"iterations"`
	ConvergenceInfo string  `json:"convergence_info"`

	// Budget is the cost of the cheapest plan found that reaches the target.
	// SearchBound is the smallest probed budget at which the optimizer reached it.
	Budget      decimal.Decimal `json:"budget"`
	SearchBound decimal.Decimal `json:"search_bound"`
	Achieved    float64         `json:"achieved"`

	Portfolio *domain.PortfolioResult `json:"portfolio"`
}

// CurveResult holds break-even budgets for several targets of the same goal
type CurveResult struct {
	Goal            Goal      `json:"goal"`
	Results         []Result  `json:"results"`
	Unreachable     []float64 `json:"unreachable,omitempty"`
	Recommendations []string  `json:"recommendations,omitempty"`
}

// SolverOptions configures the bisection
type SolverOptions struct {
	Tolerance     decimal.Decimal // Convergence tolerance
	MaxIterations int             // Maximum budget probes
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Tolerance:     decimal.NewFromInt(1000), // $1000 tolerance
		MaxIterations: 50,
	}
}

// Validate checks that the request is internally consistent
func (r *Request) Validate() error {
	if !r.Goal.Valid() {
		return &BreakEvenError{
			Operation: "validate_request",
			Message:   fmt.Sprintf("unsupported goal: %s", r.Goal),
			Cause:     domain.ErrValidation,
		}
	}
	if r.Target <= 0 {
		return &BreakEvenError{
			Operation: "validate_request",
			Message:   "target must be positive",
			Cause:     domain.ErrValidation,
		}
	}
	if r.MinBudget.IsNegative() {
		return &BreakEvenError{
			Operation: "validate_request",
			Message:   "min_budget cannot be negative",
			Cause:     domain.ErrValidation,
		}
	}
	if !r.MaxBudget.GreaterThan(r.MinBudget) {
		return &BreakEvenError{
			Operation: "validate_request",
			Message:   "max_budget must be greater than min_budget",
			Cause:     domain.ErrValidation,
		}
	}
	if r.Tolerance.IsNegative() {
		return &BreakEvenError{
			Operation: "validate_request",
			Message:   "tolerance cannot be negative",
			Cause:     domain.ErrValidation,
		}
	}
	return nil
}

// BreakEvenError represents errors from the break-even solver
type BreakEvenError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *BreakEvenError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *BreakEvenError) Unwrap() error {
	return e.Cause
}
