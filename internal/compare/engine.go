package compare

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/facplan/internal/calculation"
	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/transform"
)

// CompareEngine orchestrates scenario comparison
type CompareEngine struct {
	CalcEngine        *calculation.CalculationEngine
	MetricsCalculator *MetricsCalculator
	TemplateRegistry  *transform.TemplateRegistry
}

// NewCompareEngine creates a new comparison engine with the built-in templates
func NewCompareEngine(calcEngine *calculation.CalculationEngine) *CompareEngine {
	return &CompareEngine{
		CalcEngine:        calcEngine,
		MetricsCalculator: NewMetricsCalculator(),
		TemplateRegistry:  transform.CreateBuiltInTemplates(),
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	BaseScenarioName string   // Display name of the base configuration
	Templates        []string // List of template names to apply
}

// NamedConfig is a configuration to optimize under a display name
type NamedConfig struct {
	Name        string
	Description string
	Config      domain.OptimizationConfig
}

// Compare optimizes the base configuration and one alternative per template
func (ce *CompareEngine) Compare(
	ctx context.Context,
	projectID string,
	base domain.OptimizationConfig,
	options CompareOptions,
) (*ComparisonSet, error) {
	baseName := options.BaseScenarioName
	if baseName == "" {
		baseName = "base"
	}

	alternatives := make([]NamedConfig, 0, len(options.Templates))
	for _, templateName := range options.Templates {
		template, ok := ce.TemplateRegistry.Get(templateName)
		if !ok {
			return nil, &domain.ValidationError{Operation: "compare", Message: fmt.Sprintf("template %s not found", templateName)}
		}

		modified, err := transform.ApplyTemplate(base, template)
		if err != nil {
			return nil, fmt.Errorf("failed to apply template %s: %w", templateName, err)
		}
		alternatives = append(alternatives, NamedConfig{
			Name:        baseName + "_" + template.Name,
			Description: template.Description,
			Config:      modified,
		})
	}

	return ce.CompareScenarios(ctx, projectID, NamedConfig{Name: baseName, Config: base}, alternatives)
}

// CompareScenarios optimizes explicit configurations against a base
func (ce *CompareEngine) CompareScenarios(
	ctx context.Context,
	projectID string,
	base NamedConfig,
	alternatives []NamedConfig,
) (*ComparisonSet, error) {
	baseSummary, err := ce.CalcEngine.OptimizeSingleProject(ctx, projectID, base.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate base scenario: %w", err)
	}
	baseResult := ce.MetricsCalculator.CalculateMetrics(base.Name, baseSummary)
	baseResult.Description = base.Description

	results := make([]ComparisonResult, 0, len(alternatives))
	for _, alt := range alternatives {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		altSummary, err := ce.CalcEngine.OptimizeSingleProject(ctx, projectID, alt.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate scenario %s: %w", alt.Name, err)
		}

		altResult := ce.MetricsCalculator.CalculateMetrics(alt.Name, altSummary)
		altResult.Description = alt.Description
		results = append(results, ce.MetricsCalculator.CalculateComparison(altResult, baseResult))
	}

	compSet := &ComparisonSet{
		ProjectID:          projectID,
		BaseScenarioName:   base.Name,
		BaseResult:         &baseResult,
		AlternativeResults: results,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)
	return compSet, nil
}
