// Package store holds the read-side facility dataset and the persistence of optimization scenarios.
package store

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// ProjectRecord is one facility in a dataset file. Metrics left out are aggregated
// from the project's components.
type ProjectRecord struct {
	ProjectID               string                     `yaml:"project_id" json:"project_id"`
	Name                    string                     `yaml:"name" json:"name"`
	CurrentCI               *float64                   `yaml:"current_ci,omitempty" json:"current_ci,omitempty"`
	CurrentFCI              *float64                   `yaml:"current_fci,omitempty" json:"current_fci,omitempty"`
	ReplacementValue        *decimal.Decimal           `yaml:"replacement_value,omitempty" json:"replacement_value,omitempty"`
	DeferredMaintenanceCost *decimal.Decimal           `yaml:"deferred_maintenance_cost,omitempty" json:"deferred_maintenance_cost,omitempty"`
	PriorityScore           float64                    `yaml:"priority_score" json:"priority_score"`
	Components              []domain.ComponentSnapshot `yaml:"components" json:"components"`
}

// Snapshot returns the project metrics, aggregating missing ones from components:
// CI is the mean component condition, replacement value and deferred maintenance are
// sums of recorded component values, and FCI is deferred maintenance over replacement value.
func (p ProjectRecord) Snapshot() domain.ProjectSnapshot {
	s := domain.ProjectSnapshot{
		ProjectID:               p.ProjectID,
		Name:                    p.Name,
		PriorityScore:           p.PriorityScore,
		ReplacementValue:        decimal.Zero,
		DeferredMaintenanceCost: decimal.Zero,
	}

	if p.ReplacementValue != nil {
		s.ReplacementValue = *p.ReplacementValue
	} else {
		for _, c := range p.Components {
			if c.ReplacementValue != nil {
				s.ReplacementValue = s.ReplacementValue.Add(*c.ReplacementValue)
			}
		}
	}

	if p.DeferredMaintenanceCost != nil {
		s.DeferredMaintenanceCost = *p.DeferredMaintenanceCost
	} else {
		for _, c := range p.Components {
			if c.EstimatedRepairCost != nil {
				s.DeferredMaintenanceCost = s.DeferredMaintenanceCost.Add(*c.EstimatedRepairCost)
			}
		}
	}

	switch {
	case p.CurrentCI != nil:
		s.CurrentCI = *p.CurrentCI
	case len(p.Components) > 0:
		scores := make([]float64, len(p.Components))
		for i, c := range p.Components {
			scores[i] = c.ConditionScore()
		}
		s.CurrentCI = stat.Mean(scores, nil)
	}

	switch {
	case p.CurrentFCI != nil:
		s.CurrentFCI = *p.CurrentFCI
	case s.ReplacementValue.IsPositive():
		s.CurrentFCI = s.DeferredMaintenanceCost.Div(s.ReplacementValue).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	return s
}

// Dataset is an in-memory facility portfolio. It serves the component and project
// reads of the planning engines.
type Dataset struct {
	Name     string          `yaml:"name" json:"name"`
	Projects []ProjectRecord `yaml:"projects" json:"projects"`
}

func (d *Dataset) project(id string) (*ProjectRecord, bool) {
	for i := range d.Projects {
		if d.Projects[i].ProjectID == id {
			return &d.Projects[i], true
		}
	}
	return nil, false
}

// Component returns one component snapshot of a project
func (d *Dataset) Component(ctx context.Context, projectID, componentCode string) (domain.ComponentSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.ComponentSnapshot{}, err
	}
	p, ok := d.project(projectID)
	if !ok {
		return domain.ComponentSnapshot{}, domain.NotFound("get_component", fmt.Sprintf("project %s not found", projectID))
	}
	for _, c := range p.Components {
		if c.ComponentCode == componentCode {
			return c, nil
		}
	}
	return domain.ComponentSnapshot{}, domain.NotFound("get_component",
		fmt.Sprintf("component %s not found in project %s", componentCode, projectID))
}

// AssessedComponents returns every component with an assessment record in the project
func (d *Dataset) AssessedComponents(ctx context.Context, projectID string) ([]domain.ComponentSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := d.project(projectID)
	if !ok {
		return nil, domain.NotFound("assessed_components", fmt.Sprintf("project %s not found", projectID))
	}
	return append([]domain.ComponentSnapshot(nil), p.Components...), nil
}

// Projects returns the metrics of every project in file order
func (d *Dataset) Projects(ctx context.Context) ([]domain.ProjectSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.ProjectSnapshot, 0, len(d.Projects))
	for _, p := range d.Projects {
		out = append(out, p.Snapshot())
	}
	return out, nil
}

// HasProject reports whether the dataset contains a project
func (d *Dataset) HasProject(id string) bool {
	_, ok := d.project(id)
	return ok
}
