package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ConditionRating is the categorical outcome of a component condition assessment
type ConditionRating string

const (
	ConditionGood        ConditionRating = "good"
	ConditionFair        ConditionRating = "fair"
	ConditionPoor        ConditionRating = "poor"
	ConditionNotAssessed ConditionRating = "not_assessed"
)

// Score maps a rating onto the 0-100 condition scale
func (c ConditionRating) Score() float64 {
	switch c {
	case ConditionGood:
		return 90
	case ConditionFair:
		return 65
	case ConditionPoor:
		return 30
	default:
		return 50
	}
}

// ParseConditionRating normalizes a rating string. An empty value is treated as not assessed.
func ParseConditionRating(s string) (ConditionRating, error) {
	switch r := ConditionRating(strings.ToLower(strings.TrimSpace(s))); r {
	case ConditionGood, ConditionFair, ConditionPoor, ConditionNotAssessed:
		return r, nil
	case "":
		return ConditionNotAssessed, nil
	default:
		return "", fmt.Errorf("unknown condition rating %q", s)
	}
}

// ComponentSnapshot is the latest assessment of a single building component.
// Optional values are nil when the assessment did not record them.
type ComponentSnapshot struct {
	ComponentCode       string           `yaml:"component_code" json:"component_code"`
	Name                string           `yaml:"name" json:"name"`
	Condition           ConditionRating  `yaml:"condition" json:"condition"`
	EstimatedRepairCost *decimal.Decimal `yaml:"estimated_repair_cost,omitempty" json:"estimated_repair_cost,omitempty"`
	ReplacementValue    *decimal.Decimal `yaml:"replacement_value,omitempty" json:"replacement_value,omitempty"`
	ExpectedUsefulLife  *int             `yaml:"expected_useful_life,omitempty" json:"expected_useful_life,omitempty"`
	ActionYear          *int             `yaml:"action_year,omitempty" json:"action_year,omitempty"`
	Criticality         *float64         `yaml:"criticality,omitempty" json:"criticality,omitempty"`
}

// ConditionScore returns the numeric condition of the component
func (c ComponentSnapshot) ConditionScore() float64 {
	return c.Condition.Score()
}

// ProjectSnapshot carries the aggregated facility metrics used for portfolio decisions
type ProjectSnapshot struct {
	ProjectID               string          `yaml:"project_id" json:"project_id"`
	Name                    string          `yaml:"name" json:"name"`
	CurrentCI               float64         `yaml:"current_ci" json:"current_ci"`
	CurrentFCI              float64         `yaml:"current_fci" json:"current_fci"`
	ReplacementValue        decimal.Decimal `yaml:"replacement_value" json:"replacement_value"`
	DeferredMaintenanceCost decimal.Decimal `yaml:"deferred_maintenance_cost" json:"deferred_maintenance_cost"`
	PriorityScore           float64         `yaml:"priority_score" json:"priority_score"`
}

// DataDefault records an input that was missing and filled with a documented default
type DataDefault struct {
	ProjectID     string `json:"project_id"`
	ComponentCode string `json:"component_code"`
	Field         string `json:"field"`
	Value         string `json:"value"`
}

func (d DataDefault) String() string {
	return fmt.Sprintf("%s/%s: %s defaulted to %s", d.ProjectID, d.ComponentCode, d.Field, d.Value)
}
