package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current state of the application
func (m Model) View() string {
	if m.err != nil {
		return m.renderApp(ErrorStyle.Render(fmt.Sprintf("Error: %s\n\nPress any key to continue...", m.err)))
	}
	if m.loading {
		return m.renderApp(BorderStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.loadingMessage)))
	}

	var content string
	switch m.currentScene {
	case SceneHome:
		content = m.homeModel.View()
	case SceneProjects:
		content = m.projectsModel.View()
	case SceneResults:
		content = m.resultsModel.View()
	case SceneOptimize:
		content = m.optimizeModel.View()
	case SceneFrontier:
		content = m.frontierModel.View()
	case SceneScenarios:
		content = m.scenariosModel.View()
	case SceneHelp:
		content = renderHelp()
	default:
		content = "Unknown scene"
	}
	return m.renderApp(content)
}

// renderApp wraps content with the title and status bars
func (m Model) renderApp(content string) string {
	body := lipgloss.NewStyle().Height(max(0, m.height-4)).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTitleBar(), body, m.renderStatusBar())
}

func (m Model) renderTitleBar() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render("FACPLAN - Facility Capital Planning"),
		SubtitleStyle.Render(m.currentScene.String()),
	)
}

// renderStatusBar shows the shortcuts with the data source or last action on the right
func (m Model) renderStatusBar() string {
	shortcuts := []string{
		formatShortcut("h", "home"),
		formatShortcut("p", "projects"),
		formatShortcut("r", "results"),
		formatShortcut("o", "optimize"),
		formatShortcut("f", "frontier"),
		formatShortcut("s", "scenarios"),
		formatShortcut("?", "help"),
		formatShortcut("q", "quit"),
	}
	text := strings.Join(shortcuts, " • ")

	right := m.status
	if right == "" {
		right = m.source
	}
	if right != "" {
		gap := m.width - lipgloss.Width(text) - lipgloss.Width(right) - 4
		text += strings.Repeat(" ", max(1, gap)) + right
	}
	return StatusBarStyle.Width(m.width).Render(text)
}

func formatShortcut(key, desc string) string {
	return StatusKeyStyle.Render(key) + " " + desc
}

func renderHelp() string {
	keys := [][2]string{
		{"h", "portfolio dashboard"},
		{"p", "projects; enter optimizes, n saves a draft scenario"},
		{"r", "last single-project result"},
		{"o", "portfolio optimization and budget sensitivity; tab switches"},
		{"f", "Pareto frontier and cost-effectiveness ranking"},
		{"s", "scenarios; r run, a approve, i implement, x delete"},
		{"esc", "back"},
		{"q", "quit"},
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, k := range keys {
		b.WriteString(HelpKeyStyle.Render(fmt.Sprintf("  %-5s", k[0])))
		b.WriteString(HelpDescStyle.Render(k[1]))
		b.WriteString("\n")
	}
	return BorderStyle.Render(b.String())
}
