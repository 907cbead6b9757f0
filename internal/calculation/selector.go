package calculation

import (
	"fmt"

	"github.com/rgehrsitz/facplan/internal/domain"
)

// SelectStrategy picks the recommended option for a goal. Ties keep the earliest option.
func SelectStrategy(options []domain.StrategyOption, goal domain.OptimizationGoal) (domain.StrategyOption, error) {
	if len(options) == 0 {
		return domain.StrategyOption{}, &domain.ValidationError{Operation: "select_strategy", Message: "no strategy options to compare"}
	}

	var better func(candidate, best domain.StrategyOption) bool
	switch goal {
	case domain.GoalMinimizeCost:
		better = func(c, b domain.StrategyOption) bool { return c.PresentValueCost.LessThan(b.PresentValueCost) }
	case domain.GoalMaximizeCI:
		better = func(c, b domain.StrategyOption) bool { return c.ConditionImprovement > b.ConditionImprovement }
	case domain.GoalMaximizeROI:
		better = func(c, b domain.StrategyOption) bool { return c.CostEffectiveness > b.CostEffectiveness }
	case domain.GoalMinimizeRisk:
		better = func(c, b domain.StrategyOption) bool { return c.RiskReduction > b.RiskReduction }
	default:
		return domain.StrategyOption{}, &domain.ValidationError{
			Operation: "select_strategy",
			Message:   fmt.Sprintf("unknown optimization goal %q", goal),
		}
	}

	best := options[0]
	for _, opt := range options[1:] {
		if better(opt, best) {
			best = opt
		}
	}
	return best, nil
}

// OptionFor returns the option of the given strategy type
func OptionFor(options []domain.StrategyOption, strategy domain.StrategyType) (domain.StrategyOption, bool) {
	for _, opt := range options {
		if opt.Strategy == strategy {
			return opt, true
		}
	}
	return domain.StrategyOption{}, false
}
