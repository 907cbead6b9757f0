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

// ResultsModel shows a single-project optimization
type ResultsModel struct {
	result *domain.OptimizationResult
	width  int
	height int
}

// NewResultsModel creates a new results scene model
func NewResultsModel() *ResultsModel {
	return &ResultsModel{}
}

// SetResult updates the result to display
func (m *ResultsModel) SetResult(result *domain.OptimizationResult) {
	m.result = result
}

// Result returns the displayed result, nil before the first optimization
func (m *ResultsModel) Result() *domain.OptimizationResult {
	return m.result
}

// SetSize updates the scene dimensions
func (m *ResultsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages for the results scene, which is read-only
func (m *ResultsModel) Update(msg tea.Msg) (*ResultsModel, tea.Cmd) {
	return m, nil
}

// View renders the results scene
func (m *ResultsModel) View() string {
	if m.result == nil {
		return tuistyles.BorderStyle.Render("No results to display.\n\nSelect a project on the Projects screen (p) and press enter.")
	}
	r := m.result

	header := lipgloss.JoinVertical(lipgloss.Left,
		tuistyles.TitleStyle.Render("Capital Plan for Project "+r.ProjectID),
		tuistyles.SubtitleStyle.Render(fmt.Sprintf("%d-year horizon • %s • %s budget",
			r.Config.TimeHorizon, r.Config.OptimizationGoal, r.Config.BudgetType)),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		header, "",
		renderKeyMetrics(r), "",
		renderStrategies(r), "",
		renderCashFlowChart(r),
	)
}

func renderKeyMetrics(r *domain.OptimizationResult) string {
	payback := "never"
	if r.PaybackPeriod < 999 {
		payback = fmt.Sprintf("%.1f yrs", r.PaybackPeriod)
	}
	cards := []*components.MetricCard{
		components.NewMetricCard("Total Cost", tuistyles.FormatCurrency(r.TotalCost.InexactFloat64())),
		components.NewMetricCard("Net Present Value", tuistyles.FormatCurrency(r.NetPresentValue.InexactFloat64())),
		components.NewMetricCard("ROI", fmt.Sprintf("%.1f%%", r.ReturnOnInvestment)).WithDescription("payback " + payback),
		components.NewMetricCard("Projected CI", fmt.Sprintf("%.1f", r.ProjectedCI)).WithIndexChange(r.CIImprovement, false),
		components.NewMetricCard("Projected FCI", fmt.Sprintf("%.1f%%", r.ProjectedFCI)).WithIndexChange(r.ProjectedFCI-r.CurrentFCI, true),
		components.NewMetricCard("Risk Score", fmt.Sprintf("%.1f", r.ProjectedRiskScore)).WithIndexChange(-r.RiskReduction, true),
	}
	return components.MetricGrid(cards, 3)
}

func renderStrategies(r *domain.OptimizationResult) string {
	var b strings.Builder
	b.WriteString(tuistyles.TableHeaderStyle.Render(fmt.Sprintf("%-10s %-12s %6s %12s %8s %8s",
		"Component", "Strategy", "Year", "Cost", "ΔCond", "Life+")))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 61))
	b.WriteString("\n")
	for _, s := range r.SelectedStrategies {
		b.WriteString(fmt.Sprintf("%-10s %-12s %6d %12s %8.1f %8d\n", s.ComponentCode, s.Strategy, s.ActionYear,
			tuistyles.FormatCurrency(s.StrategyCost.InexactFloat64()), s.ConditionImprovement, s.LifeExtension))
	}
	if len(r.DeferredComponents) > 0 {
		b.WriteString("\n")
		b.WriteString(tuistyles.MetricNegativeStyle.Render("Deferred by budget: " + strings.Join(r.DeferredComponents, ", ")))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tuistyles.ColorBorder).
		Padding(0, 1).
		Render(strings.TrimRight(b.String(), "\n"))
}

func renderCashFlowChart(r *domain.OptimizationResult) string {
	if len(r.CashFlows) == 0 {
		return ""
	}
	cumulative := make([]float64, len(r.CashFlows))
	labels := make([]string, len(r.CashFlows))
	for i, cf := range r.CashFlows {
		cumulative[i] = cf.CumulativeCashFlow.InexactFloat64()
		labels[i] = fmt.Sprintf("%d", cf.Year)
	}
	return components.NewASCIIChart("Cumulative Cash Flow").
		AddSeries("cumulative", cumulative, tuistyles.ColorChartLine1).
		WithLabels(labels).
		WithSize(64, 8).
		WithValueFormat(tuistyles.FormatCurrency).
		Render()
}
