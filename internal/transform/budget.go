package transform

import (
	"fmt"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
)

// SetBudget replaces the budget constraint and its enforcement
type SetBudget struct {
	Amount decimal.Decimal
	Type   domain.BudgetType
}

func (t *SetBudget) Apply(base domain.OptimizationConfig) (domain.OptimizationConfig, error) {
	out := Clone(base)
	amount := t.Amount
	out.BudgetConstraint = &amount
	out.BudgetType = t.budgetType()
	return out, nil
}

func (t *SetBudget) Name() string { return "set_budget" }

func (t *SetBudget) Description() string {
	return fmt.Sprintf("Set a %s budget of $%s", t.budgetType(), t.Amount.StringFixed(0))
}

func (t *SetBudget) Validate(domain.OptimizationConfig) error {
	if t.Amount.IsNegative() {
		return &TransformError{TransformName: t.Name(), Operation: "validate", Reason: "budget cannot be negative"}
	}
	switch t.budgetType() {
	case domain.BudgetHard, domain.BudgetSoft:
		return nil
	}
	return &TransformError{TransformName: t.Name(), Operation: "validate", Reason: fmt.Sprintf("unknown budget type %q", t.Type)}
}

func (t *SetBudget) budgetType() domain.BudgetType {
	if t.Type == "" {
		return domain.BudgetHard
	}
	return t.Type
}

// ScaleBudget multiplies an existing budget constraint by Percent/100
type ScaleBudget struct {
	Percent float64
}

func (t *ScaleBudget) Apply(base domain.OptimizationConfig) (domain.OptimizationConfig, error) {
	if err := t.Validate(base); err != nil {
		return domain.OptimizationConfig{}, err
	}
	out := Clone(base)
	scaled := base.BudgetConstraint.Mul(decimal.NewFromFloat(t.Percent / 100)).Round(2)
	out.BudgetConstraint = &scaled
	return out, nil
}

func (t *ScaleBudget) Name() string { return "scale_budget" }

func (t *ScaleBudget) Description() string {
	return fmt.Sprintf("Scale the budget to %.0f%%", t.Percent)
}

func (t *ScaleBudget) Validate(base domain.OptimizationConfig) error {
	if base.BudgetConstraint == nil {
		return &TransformError{TransformName: t.Name(), Operation: "validate", Reason: "base configuration has no budget to scale"}
	}
	if t.Percent < 0 {
		return &TransformError{TransformName: t.Name(), Operation: "validate", Reason: "percent cannot be negative"}
	}
	return nil
}

// RemoveBudget drops the budget constraint
type RemoveBudget struct{}

func (t *RemoveBudget) Apply(base domain.OptimizationConfig) (domain.OptimizationConfig, error) {
	out := Clone(base)
	out.BudgetConstraint = nil
	out.BudgetType = domain.BudgetSoft
	return out, nil
}

func (t *RemoveBudget) Name() string        { return "remove_budget" }
func (t *RemoveBudget) Description() string { return "Remove the budget constraint" }

func (t *RemoveBudget) Validate(domain.OptimizationConfig) error { return nil }
