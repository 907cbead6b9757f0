// Package transform derives alternative optimization configurations from a base one.
// Transforms are small composable edits (budget, horizon, discount rate, goal) used by
// scenario comparison and the command line.
package transform

import (
	"fmt"

	"github.com/rgehrsitz/facplan/internal/domain"
)

// ConfigTransform defines the interface for all configuration transformations.
type ConfigTransform interface {
	// Apply returns a modified copy of base. The base configuration is never changed.
	Apply(base domain.OptimizationConfig) (domain.OptimizationConfig, error)

	// Name returns a short identifier for this transform (e.g., "set_budget").
	Name() string

	// Description returns a human-readable description of what this transform does.
	Description() string

	// Validate checks the transform parameters against base without applying it.
	Validate(base domain.OptimizationConfig) error
}

// ApplyTransforms applies transforms in order, each receiving the output of the previous one.
// The result is validated as a whole before it is returned.
func ApplyTransforms(base domain.OptimizationConfig, transforms []ConfigTransform) (domain.OptimizationConfig, error) {
	current := Clone(base)

	for i, t := range transforms {
		if t == nil {
			return domain.OptimizationConfig{}, fmt.Errorf("transform at index %d is nil", i)
		}
		if err := t.Validate(current); err != nil {
			return domain.OptimizationConfig{}, fmt.Errorf("transform %s validation failed: %w", t.Name(), err)
		}
		next, err := t.Apply(current)
		if err != nil {
			return domain.OptimizationConfig{}, fmt.Errorf("transform %s failed: %w", t.Name(), err)
		}
		current = next
	}

	if err := current.Validate(); err != nil {
		return domain.OptimizationConfig{}, err
	}
	return current, nil
}

// Clone copies a configuration, including its budget pointer
func Clone(c domain.OptimizationConfig) domain.OptimizationConfig {
	out := c
	if c.BudgetConstraint != nil {
		b := *c.BudgetConstraint
		out.BudgetConstraint = &b
	}
	return out
}

// TransformError represents an error that occurred during transformation.
type TransformError struct {
	TransformName string
	Operation     string
	Reason        string
	Err           error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transform %s (%s): %s: %v", e.TransformName, e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("transform %s (%s): %s", e.TransformName, e.Operation, e.Reason)
}

func (e *TransformError) Unwrap() error { return e.Err }

// Is lets callers match transform failures as validation errors
func (e *TransformError) Is(target error) bool { return target == domain.ErrValidation }
