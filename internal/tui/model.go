// Package tui is an interactive terminal front end for the planner built on Bubble Tea.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/planner"
	"github.com/rgehrsitz/facplan/internal/portfolio"
	"github.com/rgehrsitz/facplan/internal/tui/scenes"
	"github.com/rgehrsitz/facplan/internal/tui/tuimsg"
)

// Model represents the entire application state
type Model struct {
	currentScene  Scene
	previousScene Scene

	width  int
	height int

	ctx     context.Context
	planner *planner.Planner
	source  string

	homeModel      *scenes.HomeModel
	projectsModel  *scenes.ProjectsModel
	resultsModel   *scenes.ResultsModel
	optimizeModel  *scenes.OptimizeModel
	frontierModel  *scenes.FrontierModel
	scenariosModel *scenes.ScenariosModel

	spinner        spinner.Model
	loading        bool
	loadingMessage string
	status         string

	err error
}

// NewModel creates the application model over p. source names the loaded dataset in the status bar.
func NewModel(ctx context.Context, p *planner.Planner, source string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		currentScene:   SceneHome,
		ctx:            ctx,
		planner:        p,
		source:         source,
		homeModel:      scenes.NewHomeModel(),
		projectsModel:  scenes.NewProjectsModel(),
		resultsModel:   scenes.NewResultsModel(),
		optimizeModel:  scenes.NewOptimizeModel(),
		frontierModel:  scenes.NewFrontierModel(),
		scenariosModel: scenes.NewScenariosModel(),
		spinner:        sp,
		loading:        true,
		loadingMessage: "Loading portfolio...",
		width:          80,
		height:         24,
	}
}

// Init loads the portfolio and the saved scenarios
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadPortfolioCmd(), m.loadScenariosCmd())
}

func (m Model) loadPortfolioCmd() tea.Cmd {
	p, ctx := m.planner, m.ctx
	return func() tea.Msg {
		projects, err := p.Optimizer.LoadProjects(ctx)
		if err != nil {
			return PortfolioLoadedMsg{Err: err}
		}
		return PortfolioLoadedMsg{
			Metrics:  portfolio.Metrics(projects),
			Projects: projects,
			Frontier: portfolio.ParetoFrontier(projects),
			Ranking:  portfolio.CostEffectivenessRanking(projects),
		}
	}
}

func (m Model) loadScenariosCmd() tea.Cmd {
	p, ctx := m.planner, m.ctx
	return func() tea.Msg {
		list, err := p.ListScenarios(ctx, "")
		return ScenariosLoadedMsg{Scenarios: list, Err: err}
	}
}

func (m Model) optimizeProjectCmd(projectID string) tea.Cmd {
	p, ctx := m.planner, m.ctx
	return func() tea.Msg {
		result, err := p.OptimizeSingleProject(ctx, projectID, domain.DefaultOptimizationConfig(projectID))
		return ProjectOptimizedMsg{Result: result, Err: err}
	}
}

func (m Model) optimizePortfolioCmd(budget decimal.Decimal) tea.Cmd {
	p, ctx := m.planner, m.ctx
	return func() tea.Msg {
		result, err := p.OptimizeAcrossProjects(ctx, domain.OptimizationConstraints{MaxBudget: budget})
		return PortfolioOptimizedMsg{Result: result, Err: err}
	}
}

func (m Model) sensitivityCmd(budget decimal.Decimal, rangePercent float64) tea.Cmd {
	p, ctx := m.planner, m.ctx
	return func() tea.Msg {
		analysis, err := p.AnalyzeSensitivity(ctx, budget, rangePercent)
		return SensitivityCompleteMsg{Analysis: analysis, Err: err}
	}
}

func (m Model) createScenarioCmd(projectID string) tea.Cmd {
	p, ctx := m.planner, m.ctx
	return func() tea.Msg {
		name := fmt.Sprintf("%s draft", projectID)
		sc, err := p.CreateScenario(ctx, projectID, name, "", domain.DefaultOptimizationConfig(projectID))
		if err != nil {
			return ScenarioChangedMsg{Action: "create", Err: err}
		}
		return ScenarioChangedMsg{Action: "create", ID: sc.ID}
	}
}

func (m Model) scenarioActionCmd(msg tuimsg.ScenarioActionMsg) tea.Cmd {
	p, ctx := m.planner, m.ctx
	return func() tea.Msg {
		var err error
		switch msg.Action {
		case tuimsg.ScenarioRun:
			_, _, err = p.RunScenario(ctx, msg.ID)
		case tuimsg.ScenarioApprove:
			_, err = p.ApproveScenario(ctx, msg.ID)
		case tuimsg.ScenarioImplement:
			_, err = p.ImplementScenario(ctx, msg.ID)
		case tuimsg.ScenarioDelete:
			err = p.DeleteScenario(ctx, msg.ID)
		default:
			err = fmt.Errorf("unknown scenario action %q", msg.Action)
		}
		return ScenarioChangedMsg{Action: string(msg.Action), ID: msg.ID, Err: err}
	}
}

// String returns a human-readable name for a scene
func (s Scene) String() string {
	switch s {
	case SceneHome:
		return "Home"
	case SceneProjects:
		return "Projects"
	case SceneResults:
		return "Results"
	case SceneOptimize:
		return "Optimize"
	case SceneFrontier:
		return "Frontier"
	case SceneScenarios:
		return "Scenarios"
	case SceneHelp:
		return "Help"
	default:
		return "Unknown"
	}
}
