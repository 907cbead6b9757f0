package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
)

// TemplateRegistry manages built-in configuration templates
type TemplateRegistry struct {
	templates map[string]Template
}

// Template represents a named collection of transforms
type Template struct {
	Name        string
	Description string
	Transforms  []ConfigTransform
}

// NewTemplateRegistry creates an empty template registry
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]Template),
	}
}

// Register adds a template to the registry
func (tr *TemplateRegistry) Register(t Template) {
	tr.templates[strings.ToLower(t.Name)] = t
}

// Get retrieves a template by name (case-insensitive)
func (tr *TemplateRegistry) Get(name string) (Template, bool) {
	t, ok := tr.templates[strings.ToLower(name)]
	return t, ok
}

// List returns all registered template names in sorted order
func (tr *TemplateRegistry) List() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateBuiltInTemplates creates a registry with the common planning alternatives
func CreateBuiltInTemplates() *TemplateRegistry {
	registry := NewTemplateRegistry()

	for _, pct := range []float64{50, 75, 125} {
		registry.Register(Template{
			Name:        fmt.Sprintf("budget_%.0f", pct),
			Description: fmt.Sprintf("Scale the budget to %.0f%% of the base", pct),
			Transforms:  []ConfigTransform{&ScaleBudget{Percent: pct}},
		})
	}
	registry.Register(Template{
		Name:        "unconstrained",
		Description: "Remove the budget constraint",
		Transforms:  []ConfigTransform{&RemoveBudget{}},
	})

	registry.Register(Template{
		Name:        "horizon_5yr",
		Description: "Shorten the analysis horizon to 5 years",
		Transforms:  []ConfigTransform{&SetHorizon{Years: 5}},
	})
	registry.Register(Template{
		Name:        "horizon_20yr",
		Description: "Extend the analysis horizon to 20 years",
		Transforms:  []ConfigTransform{&SetHorizon{Years: 20}},
	})

	registry.Register(Template{
		Name:        "discount_5pct",
		Description: "Discount future costs at 5%",
		Transforms:  []ConfigTransform{&SetDiscountRate{Rate: decimal.NewFromFloat(0.05)}},
	})

	for _, goal := range []domain.OptimizationGoal{domain.GoalMinimizeCost, domain.GoalMaximizeCI, domain.GoalMaximizeROI, domain.GoalMinimizeRisk} {
		registry.Register(Template{
			Name:        string(goal),
			Description: fmt.Sprintf("Optimize for %s", strings.ReplaceAll(string(goal), "_", " ")),
			Transforms:  []ConfigTransform{&SetGoal{Goal: goal}},
		})
	}

	return registry
}

// ApplyTemplate applies all transforms of a template to base
func ApplyTemplate(base domain.OptimizationConfig, template Template) (domain.OptimizationConfig, error) {
	return ApplyTransforms(base, template.Transforms)
}
