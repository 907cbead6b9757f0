package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/facplan/internal/tui/tuimsg"
)

// navKeys maps global shortcuts to scenes
var navKeys = map[string]Scene{
	"h": SceneHome,
	"p": SceneProjects,
	"r": SceneResults,
	"o": SceneOptimize,
	"f": SceneFrontier,
	"s": SceneScenarios,
	"?": SceneHelp,
}

// sceneOwnedKeys are shortcuts a scene handles itself, shadowing global navigation
var sceneOwnedKeys = map[Scene]map[string]bool{
	SceneScenarios: {"r": true, "a": true, "i": true, "x": true},
}

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeScenes()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case NavigateMsg:
		m.previousScene = m.currentScene
		m.currentScene = msg.Scene
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case PortfolioLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.homeModel.SetMetrics(msg.Metrics, len(msg.Ranking), m.planner.Optimizer.Heuristics.TargetCI)
		m.projectsModel.SetProjects(msg.Projects)
		m.frontierModel.SetFrontier(msg.Frontier, msg.Ranking)
		return m, nil

	case ScenariosLoadedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.scenariosModel.SetScenarios(msg.Scenarios)
		return m, nil

	case tuimsg.ProjectSelectedMsg:
		m.loading = true
		m.loadingMessage = "Optimizing " + msg.ProjectID + "..."
		return m, tea.Batch(m.spinner.Tick, m.optimizeProjectCmd(msg.ProjectID))

	case ProjectOptimizedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.resultsModel.SetResult(msg.Result)
		m.previousScene = m.currentScene
		m.currentScene = SceneResults
		return m, nil

	case tuimsg.PortfolioOptimizeRequestedMsg:
		return m, m.optimizePortfolioCmd(msg.Budget)

	case PortfolioOptimizedMsg:
		if msg.Err != nil {
			m.optimizeModel.Fail()
			m.err = msg.Err
			return m, nil
		}
		m.optimizeModel.SetPortfolioResult(msg.Result)
		return m, nil

	case tuimsg.SensitivityRequestedMsg:
		return m, m.sensitivityCmd(msg.BaseBudget, msg.RangePercent)

	case SensitivityCompleteMsg:
		if msg.Err != nil {
			m.optimizeModel.Fail()
			m.err = msg.Err
			return m, nil
		}
		m.optimizeModel.SetSensitivity(msg.Analysis)
		return m, nil

	case tuimsg.ScenarioCreateRequestedMsg:
		return m, m.createScenarioCmd(msg.ProjectID)

	case tuimsg.ScenarioActionMsg:
		m.status = string(msg.Action) + " " + msg.ID + "..."
		return m, m.scenarioActionCmd(msg)

	case ScenarioChangedMsg:
		if msg.Err != nil {
			m.status = ""
			m.err = msg.Err
			return m, nil
		}
		m.status = msg.Action + " " + msg.ID + " done"
		return m, m.loadScenariosCmd()
	}

	return m.updateCurrentScene(msg)
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	if k == "ctrl+c" {
		return m, tea.Quit
	}
	if m.err != nil {
		m.err = nil
		return m, nil
	}
	if k == "q" {
		return m, tea.Quit
	}

	if k == "esc" && m.currentScene != SceneHome {
		back := SceneHome
		if m.previousScene != m.currentScene {
			back = m.previousScene
		}
		return m, func() tea.Msg { return NavigateMsg{Scene: back} }
	}

	if scene, ok := navKeys[k]; ok && !sceneOwnedKeys[m.currentScene][k] && scene != m.currentScene {
		return m, func() tea.Msg { return NavigateMsg{Scene: scene} }
	}

	return m.updateCurrentScene(msg)
}

// updateCurrentScene delegates to the current scene's model
func (m Model) updateCurrentScene(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentScene {
	case SceneHome:
		m.homeModel, cmd = m.homeModel.Update(msg)
	case SceneProjects:
		m.projectsModel, cmd = m.projectsModel.Update(msg)
	case SceneResults:
		m.resultsModel, cmd = m.resultsModel.Update(msg)
	case SceneOptimize:
		m.optimizeModel, cmd = m.optimizeModel.Update(msg)
	case SceneFrontier:
		m.frontierModel, cmd = m.frontierModel.Update(msg)
	case SceneScenarios:
		m.scenariosModel, cmd = m.scenariosModel.Update(msg)
	}
	return m, cmd
}

func (m *Model) resizeScenes() {
	h := m.height - 4
	m.homeModel.SetSize(m.width, h)
	m.projectsModel.SetSize(m.width, h)
	m.resultsModel.SetSize(m.width, h)
	m.optimizeModel.SetSize(m.width, h)
	m.frontierModel.SetSize(m.width, h)
	m.scenariosModel.SetSize(m.width, h)
}
