// Package tuimsg holds the messages scenes send to the root model, kept apart
// to avoid an import cycle between tui and scenes.
package tuimsg

import (
	"github.com/shopspring/decimal"
)

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}

// ProjectSelectedMsg asks for a single-project optimization with the default configuration
type ProjectSelectedMsg struct {
	ProjectID string
}

// PortfolioOptimizeRequestedMsg asks for a cross-project selection under a budget
type PortfolioOptimizeRequestedMsg struct {
	Budget decimal.Decimal
}

// SensitivityRequestedMsg asks for a budget sweep around a base budget
type SensitivityRequestedMsg struct {
	BaseBudget   decimal.Decimal
	RangePercent float64
}

// ScenarioAction names a lifecycle step on a saved scenario
type ScenarioAction string

const (
	ScenarioRun       ScenarioAction = "run"
	ScenarioApprove   ScenarioAction = "approve"
	ScenarioImplement ScenarioAction = "implement"
	ScenarioDelete    ScenarioAction = "delete"
)

// ScenarioActionMsg asks for a lifecycle step on one scenario
type ScenarioActionMsg struct {
	ID     string
	Action ScenarioAction
}

// ScenarioCreateRequestedMsg asks for a draft scenario with the default configuration
type ScenarioCreateRequestedMsg struct {
	ProjectID string
}
