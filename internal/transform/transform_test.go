package transform

import (
	"errors"
	"strings"
	"testing"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
)

func baseConfig() domain.OptimizationConfig {
	cfg := domain.DefaultOptimizationConfig("P-100")
	budget := decimal.NewFromInt(100000)
	cfg.BudgetConstraint = &budget
	cfg.BudgetType = domain.BudgetHard
	return cfg
}

func TestApplyTransforms_NoTransforms(t *testing.T) {
	base := baseConfig()

	out, err := ApplyTransforms(base, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.BudgetConstraint == base.BudgetConstraint {
		t.Error("Expected the budget pointer to be copied")
	}
	if !out.BudgetConstraint.Equal(*base.BudgetConstraint) {
		t.Errorf("Expected budget %s, got %s", base.BudgetConstraint, out.BudgetConstraint)
	}
}

func TestApplyTransforms_Sequence(t *testing.T) {
	base := baseConfig()

	out, err := ApplyTransforms(base, []ConfigTransform{
		&ScaleBudget{Percent: 50},
		&SetHorizon{Years: 20},
		&SetGoal{Goal: domain.GoalMaximizeCI},
		&SetDiscountRate{Rate: decimal.NewFromFloat(0.05)},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !out.BudgetConstraint.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("Expected budget 50000, got %s", out.BudgetConstraint)
	}
	if out.TimeHorizon != 20 {
		t.Errorf("Expected horizon 20, got %d", out.TimeHorizon)
	}
	if out.OptimizationGoal != domain.GoalMaximizeCI {
		t.Errorf("Expected goal maximize_ci, got %s", out.OptimizationGoal)
	}
	if !out.DiscountRate.Equal(decimal.NewFromFloat(0.05)) {
		t.Errorf("Expected rate 0.05, got %s", out.DiscountRate)
	}

	// Base must be untouched
	if !base.BudgetConstraint.Equal(decimal.NewFromInt(100000)) || base.TimeHorizon != 10 {
		t.Error("Expected base configuration to be unchanged")
	}
}

func TestApplyTransforms_Errors(t *testing.T) {
	base := baseConfig()

	tests := []struct {
		name       string
		base       domain.OptimizationConfig
		transforms []ConfigTransform
		want       string
	}{
		{"nil transform", base, []ConfigTransform{nil}, "index 0 is nil"},
		{"negative budget", base, []ConfigTransform{&SetBudget{Amount: decimal.NewFromInt(-1)}}, "budget cannot be negative"},
		{"unknown budget type", base, []ConfigTransform{&SetBudget{Amount: decimal.NewFromInt(1), Type: "flexible"}}, "unknown budget type"},
		{"scale without budget", domain.DefaultOptimizationConfig("P-100"), []ConfigTransform{&ScaleBudget{Percent: 50}}, "no budget to scale"},
		{"zero horizon", base, []ConfigTransform{&SetHorizon{Years: 0}}, "at least 1 year"},
		{"bad discount", base, []ConfigTransform{&SetDiscountRate{Rate: decimal.NewFromInt(-1)}}, "greater than -100%"},
		{"bad goal", base, []ConfigTransform{&SetGoal{Goal: "maximize_fun"}}, "unknown optimization goal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyTransforms(tt.base, tt.transforms)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestTransformError_IsValidation(t *testing.T) {
	_, err := ApplyTransforms(baseConfig(), []ConfigTransform{&SetHorizon{Years: -2}})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestSetBudget_DefaultsToHard(t *testing.T) {
	out, err := ApplyTransforms(domain.DefaultOptimizationConfig("P-100"), []ConfigTransform{
		&SetBudget{Amount: decimal.NewFromInt(75000)},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.BudgetType != domain.BudgetHard {
		t.Errorf("Expected hard budget, got %s", out.BudgetType)
	}
}

func TestRemoveBudget(t *testing.T) {
	out, err := ApplyTransforms(baseConfig(), []ConfigTransform{&RemoveBudget{}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.BudgetConstraint != nil || out.BudgetType != domain.BudgetSoft {
		t.Errorf("Expected no budget, got %v (%s)", out.BudgetConstraint, out.BudgetType)
	}
}

func TestTransformRegistry_ParseTransformSpec(t *testing.T) {
	registry := NewTransformRegistry()

	tests := []struct {
		spec    string
		name    string
		wantErr bool
	}{
		{"set_budget:amount=150000,type=soft", "set_budget", false},
		{"scale_budget:percent=80", "scale_budget", false},
		{"remove_budget:", "remove_budget", false},
		{"remove_budget", "remove_budget", false},
		{"set_horizon:years=15", "set_horizon", false},
		{"set_discount_rate:rate=0.04", "set_discount_rate", false},
		{"set_goal:goal=minimize_risk", "set_goal", false},
		{"set_budget:type=hard", "", true},
		{"set_budget:amount=lots", "", true},
		{"set_horizon:years", "", true},
		{"unknown:x=1", "", true},
		{":x=1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			tr, err := registry.ParseTransformSpec(tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q", tt.spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tr.Name() != tt.name {
				t.Errorf("Expected %s, got %s", tt.name, tr.Name())
			}
		})
	}
}

func TestTransformRegistry_List(t *testing.T) {
	names := NewTransformRegistry().List()
	if len(names) != 6 {
		t.Fatalf("Expected 6 transforms, got %d", len(names))
	}
	if names[0] != "remove_budget" {
		t.Errorf("Expected sorted names, got %v", names)
	}
}

func TestTemplateRegistry(t *testing.T) {
	registry := CreateBuiltInTemplates()

	tmpl, ok := registry.Get("BUDGET_50")
	if !ok {
		t.Fatal("Expected case-insensitive lookup to work")
	}
	out, err := ApplyTemplate(baseConfig(), tmpl)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !out.BudgetConstraint.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("Expected budget 50000, got %s", out.BudgetConstraint)
	}

	if _, ok := registry.Get("nonexistent"); ok {
		t.Error("Expected not to find nonexistent template")
	}

	for _, name := range registry.List() {
		tmpl, _ := registry.Get(name)
		if tmpl.Description == "" || len(tmpl.Transforms) == 0 {
			t.Errorf("Template %s is incomplete", name)
		}
		if _, err := ApplyTemplate(baseConfig(), tmpl); err != nil {
			t.Errorf("Template %s failed on a budgeted config: %v", name, err)
		}
	}
}
