package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Heuristics collects every tunable constant used by the strategy generator and the
// portfolio optimizer. DefaultHeuristics documents the stock values; any field can be
// overridden from a YAML file.
type Heuristics struct {
	// Missing assessment data
	DefaultRepairCost  decimal.Decimal `yaml:"default_repair_cost" json:"default_repair_cost"`
	DefaultUsefulLife  int             `yaml:"default_useful_life" json:"default_useful_life"`
	DefaultCriticality float64         `yaml:"default_criticality" json:"default_criticality"`

	// Replacement cost estimated from repair cost when no replacement value is known
	PoorConditionThreshold   float64 `yaml:"poor_condition_threshold" json:"poor_condition_threshold"`
	ReplacementFactorPoor    float64 `yaml:"replacement_factor_poor" json:"replacement_factor_poor"`
	ReplacementFactorDefault float64 `yaml:"replacement_factor_default" json:"replacement_factor_default"`

	// Rehabilitation cost as a share of replacement cost, tiered by condition
	RehabHighConditionThreshold float64 `yaml:"rehab_high_condition_threshold" json:"rehab_high_condition_threshold"`
	RehabMidConditionThreshold  float64 `yaml:"rehab_mid_condition_threshold" json:"rehab_mid_condition_threshold"`
	RehabCostHigh               float64 `yaml:"rehab_cost_high" json:"rehab_cost_high"`
	RehabCostMid                float64 `yaml:"rehab_cost_mid" json:"rehab_cost_mid"`
	RehabCostLow                float64 `yaml:"rehab_cost_low" json:"rehab_cost_low"`
	RehabTargetCondition        float64 `yaml:"rehab_target_condition" json:"rehab_target_condition"`
	RehabMaxImprovement         float64 `yaml:"rehab_max_improvement" json:"rehab_max_improvement"`
	RehabLifeExtensionShare     float64 `yaml:"rehab_life_extension_share" json:"rehab_life_extension_share"`

	// Risk reduction multipliers applied to (100 - condition) x criticality
	RiskMultipliers map[StrategyType]float64 `yaml:"risk_multipliers" json:"risk_multipliers"`

	// Failure probability tiers and the cost of a failure relative to replacement
	CriticalConditionThreshold float64 `yaml:"critical_condition_threshold" json:"critical_condition_threshold"`
	FailureProbabilityCritical float64 `yaml:"failure_probability_critical" json:"failure_probability_critical"`
	FailureProbabilityPoor     float64 `yaml:"failure_probability_poor" json:"failure_probability_poor"`
	FailureProbabilityDefault  float64 `yaml:"failure_probability_default" json:"failure_probability_default"`
	FailureCostMultiplier      float64 `yaml:"failure_cost_multiplier" json:"failure_cost_multiplier"`

	// Annual maintenance as a share of replacement cost and the share each treatment saves
	MaintenanceRate            float64                  `yaml:"maintenance_rate" json:"maintenance_rate"`
	MaintenanceSavingsShare    map[StrategyType]float64 `yaml:"maintenance_savings_share" json:"maintenance_savings_share"`
	OperatingCostRate          float64                  `yaml:"operating_cost_rate" json:"operating_cost_rate"`
	DeferCostShare             float64                  `yaml:"defer_cost_share" json:"defer_cost_share"`
	DeferralYears              int                      `yaml:"deferral_years" json:"deferral_years"`
	ConditionPointValue        float64                  `yaml:"condition_point_value" json:"condition_point_value"`
	DeferCostEffectiveness     float64                  `yaml:"defer_cost_effectiveness" json:"defer_cost_effectiveness"`
	DoNothingCostEffectiveness float64                  `yaml:"do_nothing_cost_effectiveness" json:"do_nothing_cost_effectiveness"`

	// Portfolio formulation
	TargetCI           float64 `yaml:"target_ci" json:"target_ci"`
	ResidualFCIShare   float64 `yaml:"residual_fci_share" json:"residual_fci_share"`
	ValueWeightDivisor float64 `yaml:"value_weight_divisor" json:"value_weight_divisor"`
	RiskCriticalCI     float64 `yaml:"risk_critical_ci" json:"risk_critical_ci"`
	RiskElevatedCI     float64 `yaml:"risk_elevated_ci" json:"risk_elevated_ci"`
	RiskScoreCritical  float64 `yaml:"risk_score_critical" json:"risk_score_critical"`
	RiskScoreElevated  float64 `yaml:"risk_score_elevated" json:"risk_score_elevated"`
	RiskScoreBaseline  float64 `yaml:"risk_score_baseline" json:"risk_score_baseline"`
	SensitivityLevels  int     `yaml:"sensitivity_levels" json:"sensitivity_levels"`
	InflectionRatio    float64 `yaml:"inflection_ratio" json:"inflection_ratio"`
	PaybackNeverYears  float64 `yaml:"payback_never_years" json:"payback_never_years"`
}

// DefaultHeuristics returns the documented default values
func DefaultHeuristics() Heuristics {
	return Heuristics{
		DefaultRepairCost:  decimal.NewFromInt(10000),
		DefaultUsefulLife:  25,
		DefaultCriticality: 1.0,

		PoorConditionThreshold:   50,
		ReplacementFactorPoor:    2.0,
		ReplacementFactorDefault: 1.5,

		RehabHighConditionThreshold: 60,
		RehabMidConditionThreshold:  40,
		RehabCostHigh:               0.4,
		RehabCostMid:                0.5,
		RehabCostLow:                0.6,
		RehabTargetCondition:        85,
		RehabMaxImprovement:         40,
		RehabLifeExtensionShare:     0.4,

		RiskMultipliers: map[StrategyType]float64{
			StrategyReplace:      0.95,
			StrategyRehabilitate: 0.70,
			StrategyDefer:        0.10,
			StrategyDoNothing:    0,
		},

		CriticalConditionThreshold: 30,
		FailureProbabilityCritical: 0.8,
		FailureProbabilityPoor:     0.4,
		FailureProbabilityDefault:  0.1,
		FailureCostMultiplier:      1.5,

		MaintenanceRate: 0.02,
		MaintenanceSavingsShare: map[StrategyType]float64{
			StrategyReplace:      0.5,
			StrategyRehabilitate: 0.3,
		},
		OperatingCostRate:          0.01,
		DeferCostShare:             0.10,
		DeferralYears:              3,
		ConditionPointValue:        100,
		DeferCostEffectiveness:     0.1,
		DoNothingCostEffectiveness: 0,

		TargetCI:           90,
		ResidualFCIShare:   0.2,
		ValueWeightDivisor: 1_000_000,
		RiskCriticalCI:     50,
		RiskElevatedCI:     70,
		RiskScoreCritical:  10,
		RiskScoreElevated:  7,
		RiskScoreBaseline:  5,
		SensitivityLevels:  11,
		InflectionRatio:    0.5,
		PaybackNeverYears:  999,
	}
}

// Validate rejects values that would break the formulas
func (h *Heuristics) Validate() error {
	if h.DefaultRepairCost.IsNegative() {
		return fmt.Errorf("default_repair_cost cannot be negative")
	}
	if h.DefaultUsefulLife <= 0 {
		return fmt.Errorf("default_useful_life must be positive")
	}
	if h.ValueWeightDivisor <= 0 {
		return fmt.Errorf("value_weight_divisor must be positive")
	}
	if h.SensitivityLevels < 2 {
		return fmt.Errorf("sensitivity_levels must be at least 2")
	}
	if h.DeferralYears < 0 {
		return fmt.Errorf("deferral_years cannot be negative")
	}
	for _, s := range StrategyTypes {
		if _, ok := h.RiskMultipliers[s]; !ok {
			return fmt.Errorf("risk_multipliers missing %s", s)
		}
	}
	return nil
}

// ReplacementCostFactor returns the multiplier applied to repair cost for a condition
func (h *Heuristics) ReplacementCostFactor(condition float64) float64 {
	if condition < h.PoorConditionThreshold {
		return h.ReplacementFactorPoor
	}
	return h.ReplacementFactorDefault
}

// RehabCostShare returns the share of replacement cost a rehabilitation costs
func (h *Heuristics) RehabCostShare(condition float64) float64 {
	switch {
	case condition > h.RehabHighConditionThreshold:
		return h.RehabCostHigh
	case condition > h.RehabMidConditionThreshold:
		return h.RehabCostMid
	default:
		return h.RehabCostLow
	}
}

// FailureProbability returns the likelihood of failure over the horizon for a condition
func (h *Heuristics) FailureProbability(condition float64) float64 {
	switch {
	case condition < h.CriticalConditionThreshold:
		return h.FailureProbabilityCritical
	case condition < h.PoorConditionThreshold:
		return h.FailureProbabilityPoor
	default:
		return h.FailureProbabilityDefault
	}
}

// ProjectRiskScore tiers a facility's risk by its condition index
func (h *Heuristics) ProjectRiskScore(ci float64) float64 {
	switch {
	case ci < h.RiskCriticalCI:
		return h.RiskScoreCritical
	case ci < h.RiskElevatedCI:
		return h.RiskScoreElevated
	default:
		return h.RiskScoreBaseline
	}
}
