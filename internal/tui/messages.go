package tui

import (
	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/tui/tuimsg"
)

// Scene represents different screens in the TUI
type Scene int

const (
	SceneHome Scene = iota
	SceneProjects
	SceneResults
	SceneOptimize
	SceneFrontier
	SceneScenarios
	SceneHelp
)

// Message types for the Bubble Tea update cycle

// NavigateMsg switches to a different scene
type NavigateMsg struct {
	Scene Scene
}

// ErrorMsg displays an error to the user
type ErrorMsg = tuimsg.ErrorMsg

// PortfolioLoadedMsg carries everything the dashboard and frontier scenes show
type PortfolioLoadedMsg struct {
	Metrics  domain.PortfolioMetrics
	Projects []domain.ProjectData
	Frontier []domain.ParetoPoint
	Ranking  []domain.RankedProject
	Err      error
}

// ProjectOptimizedMsg signals a single-project optimization has finished
type ProjectOptimizedMsg struct {
	Result *domain.OptimizationResult
	Err    error
}

// PortfolioOptimizedMsg signals a cross-project optimization has finished
type PortfolioOptimizedMsg struct {
	Result *domain.PortfolioResult
	Err    error
}

// SensitivityCompleteMsg signals a budget sweep has finished
type SensitivityCompleteMsg struct {
	Analysis *domain.SensitivityAnalysis
	Err      error
}

// ScenariosLoadedMsg carries the saved scenario list
type ScenariosLoadedMsg struct {
	Scenarios []domain.Scenario
	Err       error
}

// ScenarioChangedMsg signals a scenario was created or moved through its lifecycle
type ScenarioChangedMsg struct {
	Action string
	ID     string
	Err    error
}
