package config

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/store"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a facility dataset from a YAML or JSON file
func (ip *InputParser) LoadFromFile(filename string) (*store.Dataset, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a dataset document
func (ip *InputParser) Parse(data []byte) (*store.Dataset, error) {
	var dataset store.Dataset
	if err := yaml.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateDataset(&dataset); err != nil {
		return nil, fmt.Errorf("dataset validation failed: %w", err)
	}

	return &dataset, nil
}

// ValidateDataset validates a loaded dataset and normalizes condition ratings
func (ip *InputParser) ValidateDataset(dataset *store.Dataset) error {
	if len(dataset.Projects) == 0 {
		return fmt.Errorf("no projects provided")
	}

	seen := make(map[string]bool, len(dataset.Projects))
	for i := range dataset.Projects {
		p := &dataset.Projects[i]
		if p.ProjectID == "" {
			return fmt.Errorf("project %d: project_id is required", i)
		}
		if seen[p.ProjectID] {
			return fmt.Errorf("duplicate project_id %s", p.ProjectID)
		}
		seen[p.ProjectID] = true

		if err := ip.validateProject(p); err != nil {
			return fmt.Errorf("project %s validation failed: %w", p.ProjectID, err)
		}
	}
	return nil
}

// validateProject validates the explicit metrics and the components of one project
func (ip *InputParser) validateProject(p *store.ProjectRecord) error {
	if p.CurrentCI != nil && (*p.CurrentCI < 0 || *p.CurrentCI > 100) {
		return fmt.Errorf("current_ci must be between 0 and 100")
	}
	if p.CurrentFCI != nil && *p.CurrentFCI < 0 {
		return fmt.Errorf("current_fci cannot be negative")
	}
	if p.ReplacementValue != nil && p.ReplacementValue.IsNegative() {
		return fmt.Errorf("replacement_value cannot be negative")
	}
	if p.DeferredMaintenanceCost != nil && p.DeferredMaintenanceCost.IsNegative() {
		return fmt.Errorf("deferred_maintenance_cost cannot be negative")
	}

	codes := make(map[string]bool, len(p.Components))
	for i := range p.Components {
		c := &p.Components[i]
		if c.ComponentCode == "" {
			return fmt.Errorf("component %d: component_code is required", i)
		}
		if codes[c.ComponentCode] {
			return fmt.Errorf("duplicate component_code %s", c.ComponentCode)
		}
		codes[c.ComponentCode] = true

		if err := ip.validateComponent(c); err != nil {
			return fmt.Errorf("component %s validation failed: %w", c.ComponentCode, err)
		}
	}
	return nil
}

// validateComponent validates a single component assessment
func (ip *InputParser) validateComponent(c *domain.ComponentSnapshot) error {
	rating, err := domain.ParseConditionRating(string(c.Condition))
	if err != nil {
		return err
	}
	c.Condition = rating

	if c.EstimatedRepairCost != nil && c.EstimatedRepairCost.IsNegative() {
		return fmt.Errorf("estimated_repair_cost cannot be negative")
	}
	if c.ReplacementValue != nil && c.ReplacementValue.IsNegative() {
		return fmt.Errorf("replacement_value cannot be negative")
	}
	if c.ExpectedUsefulLife != nil && *c.ExpectedUsefulLife <= 0 {
		return fmt.Errorf("expected_useful_life must be positive")
	}
	if c.Criticality != nil && *c.Criticality <= 0 {
		return fmt.Errorf("criticality must be positive")
	}
	return nil
}

// LoadConstraints loads portfolio optimization constraints from a YAML or JSON file
func (ip *InputParser) LoadConstraints(filename string) (domain.OptimizationConstraints, error) {
	var c domain.OptimizationConstraints
	data, err := os.ReadFile(filename)
	if err != nil {
		return c, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return c, nil
}

// LoadHeuristics overlays the values in a YAML file onto the default heuristics.
// An empty filename returns the defaults.
func LoadHeuristics(filename string) (domain.Heuristics, error) {
	h := domain.DefaultHeuristics()
	if filename == "" {
		return h, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return h, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := h.Validate(); err != nil {
		return h, fmt.Errorf("heuristics validation failed: %w", err)
	}
	return h, nil
}
