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

// HomeModel is the portfolio dashboard
type HomeModel struct {
	metrics  *domain.PortfolioMetrics
	targetCI float64
	eligible int
	width    int
	height   int
}

// NewHomeModel creates a new home scene model
func NewHomeModel() *HomeModel {
	return &HomeModel{}
}

// SetMetrics updates the dashboard. eligible is the number of projects the optimizer may fund.
func (m *HomeModel) SetMetrics(metrics domain.PortfolioMetrics, eligible int, targetCI float64) {
	m.metrics = &metrics
	m.eligible = eligible
	m.targetCI = targetCI
}

// SetSize updates the model dimensions
func (m *HomeModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages for the home scene; navigation is handled by the parent
func (m *HomeModel) Update(msg tea.Msg) (*HomeModel, tea.Cmd) {
	return m, nil
}

// View renders the dashboard
func (m *HomeModel) View() string {
	var b strings.Builder
	b.WriteString(tuistyles.TitleStyle.Render("Portfolio Overview"))
	b.WriteString("\n\n")

	if m.metrics == nil {
		b.WriteString(tuistyles.SubtitleStyle.Render("Loading portfolio..."))
		return tuistyles.BorderStyle.Render(b.String())
	}

	mt := m.metrics
	cards := []*components.MetricCard{
		components.NewMetricCard("Projects", fmt.Sprintf("%d", mt.TotalProjects)).
			WithDescription(fmt.Sprintf("%d eligible for funding", m.eligible)),
		components.NewMetricCard("Replacement Value", tuistyles.FormatCurrency(mt.TotalReplacementValue.InexactFloat64())),
		components.NewMetricCard("Deferred Maintenance", tuistyles.FormatCurrency(mt.TotalDeferredMaintenance.InexactFloat64())),
		components.NewMetricCard("Weighted CI", fmt.Sprintf("%.1f", mt.WeightedCI)),
		components.NewMetricCard("Weighted FCI", fmt.Sprintf("%.1f%%", mt.WeightedFCI)),
		components.NewMetricCard("Avg Priority", fmt.Sprintf("%.1f", mt.AveragePriorityScore)),
	}
	b.WriteString(components.MetricGrid(cards, 3))
	b.WriteString("\n\n")

	if m.targetCI > 0 {
		b.WriteString(components.NewGauge("Condition against target", mt.WeightedCI, m.targetCI).
			WithWidth(40).
			WithCaption(fmt.Sprintf("%.1f / %.0f", mt.WeightedCI, m.targetCI)).
			Render())
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.NewStyle().Foreground(tuistyles.ColorMuted).Render(
		"p projects • o optimize & sensitivity • f frontier • s scenarios • ? help"))
	return tuistyles.BorderStyle.Render(b.String())
}
