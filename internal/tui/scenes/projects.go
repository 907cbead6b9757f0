package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/portfolio"
	"github.com/rgehrsitz/facplan/internal/tui/tuimsg"
	"github.com/rgehrsitz/facplan/internal/tui/tuistyles"
)

var (
	keyUp     = key.NewBinding(key.WithKeys("up", "k"))
	keyDown   = key.NewBinding(key.WithKeys("down", "j"))
	keyTop    = key.NewBinding(key.WithKeys("g"))
	keyBottom = key.NewBinding(key.WithKeys("G"))
	keyEnter  = key.NewBinding(key.WithKeys("enter"))
	keyNew    = key.NewBinding(key.WithKeys("n"))
)

// ProjectsModel lists every project and starts a single-project optimization on enter
type ProjectsModel struct {
	projects      []domain.ProjectData
	selectedIndex int
	width         int
	height        int
}

// NewProjectsModel creates a new projects scene model
func NewProjectsModel() *ProjectsModel {
	return &ProjectsModel{}
}

// SetProjects updates the project list
func (m *ProjectsModel) SetProjects(projects []domain.ProjectData) {
	m.projects = projects
	if m.selectedIndex >= len(projects) {
		m.selectedIndex = 0
	}
}

// SetSize updates the model dimensions
func (m *ProjectsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SelectedProject returns the highlighted project id
func (m *ProjectsModel) SelectedProject() string {
	if m.selectedIndex >= 0 && m.selectedIndex < len(m.projects) {
		return m.projects[m.selectedIndex].ProjectID
	}
	return ""
}

// Update handles list navigation
func (m *ProjectsModel) Update(msg tea.Msg) (*ProjectsModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, keyUp):
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
	case key.Matches(keyMsg, keyDown):
		if m.selectedIndex < len(m.projects)-1 {
			m.selectedIndex++
		}
	case key.Matches(keyMsg, keyTop):
		m.selectedIndex = 0
	case key.Matches(keyMsg, keyBottom):
		m.selectedIndex = max(0, len(m.projects)-1)
	case key.Matches(keyMsg, keyEnter):
		id := m.SelectedProject()
		if id == "" {
			return m, nil
		}
		return m, func() tea.Msg { return tuimsg.ProjectSelectedMsg{ProjectID: id} }
	case key.Matches(keyMsg, keyNew):
		id := m.SelectedProject()
		if id == "" {
			return m, nil
		}
		return m, func() tea.Msg { return tuimsg.ScenarioCreateRequestedMsg{ProjectID: id} }
	}
	return m, nil
}

// View renders the project table
func (m *ProjectsModel) View() string {
	var b strings.Builder
	b.WriteString(tuistyles.TitleStyle.Render("Projects"))
	b.WriteString("\n")
	b.WriteString(tuistyles.SubtitleStyle.Render("↑/↓ select • enter optimize components • n save as draft scenario"))
	b.WriteString("\n\n")

	if len(m.projects) == 0 {
		b.WriteString(tuistyles.InfoStyle.Render("No projects loaded"))
		return tuistyles.BorderStyle.Render(b.String())
	}

	b.WriteString(tuistyles.TableHeaderStyle.Render(fmt.Sprintf("  %-10s %-24s %6s %7s %10s %9s",
		"ID", "Name", "CI", "FCI", "Est. Cost", "Priority")))
	b.WriteString("\n")
	for i, p := range m.projects {
		marker := " "
		if !portfolio.Eligible(p) {
			marker = "·"
		}
		row := fmt.Sprintf("%s %-10s %-24s %6.1f %6.1f%% %10s %9.1f", marker, p.ProjectID, truncate(p.Name, 24),
			p.CurrentCI, p.CurrentFCI, tuistyles.FormatCurrency(p.EstimatedCost.InexactFloat64()), p.PriorityScore)
		if i == m.selectedIndex {
			b.WriteString(tuistyles.SelectedItemStyle.Render("▸" + row))
		} else {
			b.WriteString(tuistyles.UnselectedItemStyle.Render(" " + row))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(tuistyles.HelpDescStyle.Render("· not eligible for portfolio funding"))
	return tuistyles.BorderStyle.Render(b.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
