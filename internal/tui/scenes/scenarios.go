package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/tui/components"
	"github.com/rgehrsitz/facplan/internal/tui/tuimsg"
	"github.com/rgehrsitz/facplan/internal/tui/tuistyles"
)

var scenarioKeys = map[tuimsg.ScenarioAction]key.Binding{
	tuimsg.ScenarioRun:       key.NewBinding(key.WithKeys("r")),
	tuimsg.ScenarioApprove:   key.NewBinding(key.WithKeys("a")),
	tuimsg.ScenarioImplement: key.NewBinding(key.WithKeys("i")),
	tuimsg.ScenarioDelete:    key.NewBinding(key.WithKeys("x")),
}

var scenarioActionOrder = []tuimsg.ScenarioAction{
	tuimsg.ScenarioRun, tuimsg.ScenarioApprove, tuimsg.ScenarioImplement, tuimsg.ScenarioDelete,
}

// ScenariosModel browses saved scenarios and drives their lifecycle
type ScenariosModel struct {
	scenarios     []domain.Scenario
	selectedIndex int
	cards         []*components.ScenarioCard
	width         int
	height        int
}

// NewScenariosModel creates a new scenarios scene model
func NewScenariosModel() *ScenariosModel {
	return &ScenariosModel{}
}

// SetScenarios replaces the list, keeping the selection on the same id when it survives
func (m *ScenariosModel) SetScenarios(scenarios []domain.Scenario) {
	current := m.SelectedScenario()
	m.scenarios = scenarios
	m.cards = make([]*components.ScenarioCard, len(scenarios))
	m.selectedIndex = 0
	for i, sc := range scenarios {
		m.cards[i] = components.NewScenarioCard(sc)
		if sc.ID == current {
			m.selectedIndex = i
		}
	}
}

// SetSize updates the scene dimensions
func (m *ScenariosModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SelectedScenario returns the id of the highlighted scenario
func (m *ScenariosModel) SelectedScenario() string {
	if m.selectedIndex >= 0 && m.selectedIndex < len(m.scenarios) {
		return m.scenarios[m.selectedIndex].ID
	}
	return ""
}

// Update handles navigation and lifecycle keys
func (m *ScenariosModel) Update(msg tea.Msg) (*ScenariosModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, keyUp):
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
		return m, nil
	case key.Matches(keyMsg, keyDown):
		if m.selectedIndex < len(m.scenarios)-1 {
			m.selectedIndex++
		}
		return m, nil
	}

	id := m.SelectedScenario()
	if id == "" {
		return m, nil
	}
	for _, action := range scenarioActionOrder {
		if key.Matches(keyMsg, scenarioKeys[action]) {
			action := action
			return m, func() tea.Msg { return tuimsg.ScenarioActionMsg{ID: id, Action: action} }
		}
	}
	return m, nil
}

// View renders the list with the selected scenario's card beside it
func (m *ScenariosModel) View() string {
	if len(m.scenarios) == 0 {
		return tuistyles.BorderStyle.Render("No scenarios saved.\n\nPress n on a project (p) to create a draft.")
	}
	for i, card := range m.cards {
		card.SetSelected(i == m.selectedIndex)
	}

	list := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tuistyles.ColorBorder).
		Padding(0, 1).
		Width(44).
		Render(components.ScenarioListCompact(m.cards, m.selectedIndex))

	content := lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", m.cards[m.selectedIndex].Render())
	return content + "\n\n" + renderScenariosHelp()
}

func renderScenariosHelp() string {
	parts := make([]string, 0, len(scenarioActionOrder)+1)
	parts = append(parts, "↑/↓ select")
	for _, action := range scenarioActionOrder {
		parts = append(parts, fmt.Sprintf("%s %s", scenarioKeys[action].Keys()[0], action))
	}
	return tuistyles.HelpDescStyle.Render(strings.Join(parts, " • "))
}
