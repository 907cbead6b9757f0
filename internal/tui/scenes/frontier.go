package scenes

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/tui/components"
	"github.com/rgehrsitz/facplan/internal/tui/tuistyles"
)

// FrontierModel shows the Pareto frontier next to the cost-effectiveness ranking
type FrontierModel struct {
	points  []domain.ParetoPoint
	ranking []domain.RankedProject
	width   int
	height  int
}

// NewFrontierModel creates a new frontier scene model
func NewFrontierModel() *FrontierModel {
	return &FrontierModel{}
}

// SetFrontier updates the frontier and ranking
func (m *FrontierModel) SetFrontier(points []domain.ParetoPoint, ranking []domain.RankedProject) {
	m.points = points
	m.ranking = ranking
}

// SetSize updates the model dimensions
func (m *FrontierModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages for the frontier scene, which is read-only
func (m *FrontierModel) Update(msg tea.Msg) (*FrontierModel, tea.Cmd) {
	return m, nil
}

// View renders the chart and ranking table
func (m *FrontierModel) View() string {
	if len(m.points) == 0 {
		return tuistyles.BorderStyle.Render("No eligible projects to rank.")
	}

	ci := make([]float64, len(m.points))
	labels := make([]string, len(m.points))
	for i, p := range m.points {
		ci[i] = p.CIImprovement
		labels[i] = tuistyles.FormatCurrency(p.Cost.InexactFloat64())
	}
	chart := components.NewASCIIChart("Pareto Frontier: cumulative CI gain by cost").
		AddSeries("CI gain", ci, tuistyles.ColorChartLine1).
		WithLabels(labels).
		WithSize(64, 10).
		Render()

	return lipgloss.JoinVertical(lipgloss.Left, chart, "", m.renderRanking())
}

func (m *FrontierModel) renderRanking() string {
	var b strings.Builder
	b.WriteString(tuistyles.TableHeaderStyle.Render(fmt.Sprintf("%4s  %-10s %-20s %12s %8s %12s",
		"Rank", "Project", "Name", "Cost", "ΔCI", "$/CI pt")))
	b.WriteString("\n")
	for _, r := range m.ranking {
		b.WriteString(fmt.Sprintf("%4d  %-10s %-20s %12s %8.1f %12s\n", r.Rank, r.ProjectID, truncate(r.Name, 20),
			tuistyles.FormatCurrency(r.Cost.InexactFloat64()), r.CIImprovement, tuistyles.FormatCostPerPoint(r.CostPerCIPoint)))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tuistyles.ColorBorder).
		Padding(0, 1).
		Render(strings.TrimRight(b.String(), "\n"))
}
