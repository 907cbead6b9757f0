package transform

import (
	"fmt"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
)

// SetHorizon changes the analysis horizon in years
type SetHorizon struct {
	Years int
}

func (t *SetHorizon) Apply(base domain.OptimizationConfig) (domain.OptimizationConfig, error) {
	out := Clone(base)
	out.TimeHorizon = t.Years
	return out, nil
}

func (t *SetHorizon) Name() string { return "set_horizon" }

func (t *SetHorizon) Description() string {
	return fmt.Sprintf("Analyze over %d years", t.Years)
}

func (t *SetHorizon) Validate(domain.OptimizationConfig) error {
	if t.Years < 1 {
		return &TransformError{TransformName: t.Name(), Operation: "validate", Reason: fmt.Sprintf("horizon must be at least 1 year, got %d", t.Years)}
	}
	return nil
}

// SetDiscountRate changes the annual discount rate
type SetDiscountRate struct {
	Rate decimal.Decimal
}

func (t *SetDiscountRate) Apply(base domain.OptimizationConfig) (domain.OptimizationConfig, error) {
	out := Clone(base)
	out.DiscountRate = t.Rate
	return out, nil
}

func (t *SetDiscountRate) Name() string { return "set_discount_rate" }

func (t *SetDiscountRate) Description() string {
	return fmt.Sprintf("Discount at %s%%", t.Rate.Mul(decimal.NewFromInt(100)).StringFixed(1))
}

func (t *SetDiscountRate) Validate(domain.OptimizationConfig) error {
	if t.Rate.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return &TransformError{TransformName: t.Name(), Operation: "validate", Reason: "discount rate must be greater than -100%"}
	}
	return nil
}

// SetGoal changes the optimization goal
type SetGoal struct {
	Goal domain.OptimizationGoal
}

func (t *SetGoal) Apply(base domain.OptimizationConfig) (domain.OptimizationConfig, error) {
	out := Clone(base)
	out.OptimizationGoal = t.Goal
	return out, nil
}

func (t *SetGoal) Name() string { return "set_goal" }

func (t *SetGoal) Description() string {
	return fmt.Sprintf("Optimize for %s", t.Goal)
}

func (t *SetGoal) Validate(domain.OptimizationConfig) error {
	if !t.Goal.Valid() {
		return &TransformError{TransformName: t.Name(), Operation: "validate", Reason: fmt.Sprintf("unknown optimization goal %q", t.Goal)}
	}
	return nil
}
