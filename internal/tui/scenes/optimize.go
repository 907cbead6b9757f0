package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/tui/components"
	"github.com/rgehrsitz/facplan/internal/tui/tuimsg"
	"github.com/rgehrsitz/facplan/internal/tui/tuistyles"
)

// OptimizeMode selects what the optimize scene runs against the entered budget
type OptimizeMode int

const (
	ModePortfolio OptimizeMode = iota
	ModeSensitivity
)

func (m OptimizeMode) String() string {
	if m == ModeSensitivity {
		return "Budget Sensitivity (±50%)"
	}
	return "Portfolio Optimization"
}

const sensitivityRange = 50.0

var keyToggle = key.NewBinding(key.WithKeys("tab"))

// OptimizeModel runs cross-project optimization or a budget sweep for a budget typed by the user
type OptimizeModel struct {
	mode        OptimizeMode
	budgetInput textinput.Model
	running     bool
	inputErr    string

	portfolio   *domain.PortfolioResult
	sensitivity *domain.SensitivityAnalysis

	width  int
	height int
}

// NewOptimizeModel creates a new optimize scene model
func NewOptimizeModel() *OptimizeModel {
	ti := textinput.New()
	ti.Placeholder = "e.g. 3000000"
	ti.CharLimit = 16
	ti.Width = 20
	ti.Focus()

	return &OptimizeModel{budgetInput: ti}
}

// SetSize updates the model dimensions
func (m *OptimizeModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Mode returns the current mode
func (m *OptimizeModel) Mode() OptimizeMode {
	return m.mode
}

// Running reports whether a request is in flight
func (m *OptimizeModel) Running() bool {
	return m.running
}

// SetPortfolioResult shows a finished optimization
func (m *OptimizeModel) SetPortfolioResult(r *domain.PortfolioResult) {
	m.running = false
	m.portfolio = r
}

// SetSensitivity shows a finished budget sweep
func (m *OptimizeModel) SetSensitivity(a *domain.SensitivityAnalysis) {
	m.running = false
	m.sensitivity = a
}

// Fail stops the running indicator after an error
func (m *OptimizeModel) Fail() {
	m.running = false
}

// ParseBudget reads a dollar amount, tolerating "$" and thousands separators
func ParseBudget(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("$", "", ",", "", "_", "", " ", "").Replace(s)
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("budget %q is not a number", s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("budget must be positive")
	}
	return d, nil
}

// Update handles budget entry and mode switching
func (m *OptimizeModel) Update(msg tea.Msg) (*OptimizeModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keyToggle):
			m.mode = (m.mode + 1) % 2
			return m, nil
		case key.Matches(keyMsg, keyEnter):
			if m.running {
				return m, nil
			}
			budget, err := ParseBudget(m.budgetInput.Value())
			if err != nil {
				m.inputErr = err.Error()
				return m, nil
			}
			m.inputErr = ""
			m.running = true
			return m, m.requestCmd(budget)
		}
	}

	var cmd tea.Cmd
	m.budgetInput, cmd = m.budgetInput.Update(msg)
	return m, cmd
}

func (m *OptimizeModel) requestCmd(budget decimal.Decimal) tea.Cmd {
	mode := m.mode
	return func() tea.Msg {
		if mode == ModeSensitivity {
			return tuimsg.SensitivityRequestedMsg{BaseBudget: budget, RangePercent: sensitivityRange}
		}
		return tuimsg.PortfolioOptimizeRequestedMsg{Budget: budget}
	}
}

// View renders the input and the latest result of the current mode
func (m *OptimizeModel) View() string {
	var b strings.Builder
	b.WriteString(tuistyles.TitleStyle.Render(m.mode.String()))
	b.WriteString("\n")
	b.WriteString(tuistyles.SubtitleStyle.Render("type a budget • enter run • tab switch mode"))
	b.WriteString("\n\n")
	b.WriteString(tuistyles.MetricLabelStyle.Render("Budget: "))
	b.WriteString(m.budgetInput.View())
	if m.inputErr != "" {
		b.WriteString("\n")
		b.WriteString(tuistyles.ErrorStyle.Render(m.inputErr))
	}
	b.WriteString("\n\n")

	switch {
	case m.running:
		b.WriteString(tuistyles.InfoStyle.Render("Solving..."))
	case m.mode == ModePortfolio && m.portfolio != nil:
		b.WriteString(renderPortfolioResult(m.portfolio))
	case m.mode == ModeSensitivity && m.sensitivity != nil:
		b.WriteString(renderSensitivity(m.sensitivity))
	}
	return tuistyles.BorderStyle.Render(b.String())
}

func renderPortfolioResult(r *domain.PortfolioResult) string {
	var b strings.Builder
	b.WriteString(components.MetricGrid([]*components.MetricCard{
		components.NewMetricCard("Total Cost", tuistyles.FormatCurrency(r.TotalCost.InexactFloat64())),
		components.NewMetricCard("Portfolio CI", fmt.Sprintf("%.1f", r.AfterCI)).WithIndexChange(r.AfterCI-r.BeforeCI, false),
		components.NewMetricCard("Portfolio FCI", fmt.Sprintf("%.1f%%", r.AfterFCI)).WithIndexChange(r.AfterFCI-r.BeforeFCI, true),
	}, 3))
	b.WriteString("\n")
	b.WriteString(components.NewGauge("Budget utilization", r.BudgetUtilization, 100).WithWidth(40).Render())
	b.WriteString("\n\n")

	b.WriteString(tuistyles.TableHeaderStyle.Render(fmt.Sprintf("%-10s %12s %8s %8s %10s", "Project", "Cost", "ΔCI", "ΔFCI", "CI/$1M")))
	b.WriteString("\n")
	for _, p := range r.SelectedProjects {
		b.WriteString(fmt.Sprintf("%-10s %12s %8.1f %8.1f %10.2f\n", p.ProjectID,
			tuistyles.FormatCurrency(p.Cost.InexactFloat64()), p.CIImprovement, p.FCIImprovement, p.CIPerMillion))
	}
	if len(r.SelectedProjects) == 0 {
		b.WriteString(tuistyles.InfoStyle.Render("No project fits the budget"))
	}
	if !r.Solver.ProvenOptimal {
		b.WriteString("\n")
		b.WriteString(tuistyles.MetricNegativeStyle.Render("search stopped at the node limit; best selection shown"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSensitivity(a *domain.SensitivityAnalysis) string {
	ci := make([]float64, len(a.BudgetLevels))
	labels := make([]string, len(a.BudgetLevels))
	for i, l := range a.BudgetLevels {
		ci[i] = l.CIImprovement
		labels[i] = tuistyles.FormatCurrency(l.Budget.InexactFloat64())
	}

	chart := components.NewASCIIChart("CI improvement by budget").
		AddSeries("CI improvement", ci, tuistyles.ColorChartLine2).
		WithLabels(labels).
		WithSize(64, 10).
		Render()

	summary := lipgloss.JoinHorizontal(lipgloss.Top,
		components.NewMetricCard("Best ROI Budget", tuistyles.FormatCurrency(a.OptimalBudget.InexactFloat64())).Render(),
		components.NewMetricCard("Inflection Point", tuistyles.FormatCurrency(a.InflectionPoint.InexactFloat64())).
			WithDescription("diminishing returns").Render(),
	)

	var skipped string
	if n := len(a.RequestedLevels) - len(a.BudgetLevels); n > 0 {
		skipped = "\n" + tuistyles.HelpDescStyle.Render(fmt.Sprintf("%d infeasible budget levels skipped", n))
	}
	return chart + "\n" + summary + skipped
}
