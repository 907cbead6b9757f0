package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/facplan/internal/tui/tuistyles"
)

// MetricCard displays a single metric with label, value and optional trend
type MetricCard struct {
	Label       string
	Value       string
	Trend       *Trend
	Description string
	Width       int
}

// Trend is a change shown under the value, colored by whether it is an improvement
type Trend struct {
	Up       bool
	Improved bool
	Change   string
}

// NewMetricCard creates a new metric card
func NewMetricCard(label, value string) *MetricCard {
	return &MetricCard{Label: label, Value: value, Width: 26}
}

// WithTrend adds a trend indicator
func (m *MetricCard) WithTrend(up, improved bool, change string) *MetricCard {
	m.Trend = &Trend{Up: up, Improved: improved, Change: change}
	return m
}

// WithIndexChange adds a trend for a condition index delta. Higher CI is better,
// higher FCI is worse, so lowerIsBetter flips the coloring.
func (m *MetricCard) WithIndexChange(delta float64, lowerIsBetter bool) *MetricCard {
	if delta == 0 {
		return m
	}
	improved := delta > 0
	if lowerIsBetter {
		improved = !improved
	}
	return m.WithTrend(delta > 0, improved, fmt.Sprintf("%+.1f", delta))
}

// WithDescription adds a subtitle
func (m *MetricCard) WithDescription(desc string) *MetricCard {
	m.Description = desc
	return m
}

// WithWidth sets the card width
func (m *MetricCard) WithWidth(width int) *MetricCard {
	m.Width = width
	return m
}

func (m *MetricCard) trend() string {
	if m.Trend == nil {
		return ""
	}
	return tuistyles.MetricTrendStyle(m.Trend.Improved).
		Render(fmt.Sprintf("%s %s", tuistyles.TrendIndicator(m.Trend.Up), m.Trend.Change))
}

// Render returns the bordered card
func (m *MetricCard) Render() string {
	content := tuistyles.MetricLabelStyle.Render(m.Label) + "\n" + tuistyles.MetricValueStyle.Render(m.Value)
	if t := m.trend(); t != "" {
		content += "\n" + t
	}
	if m.Description != "" {
		content += "\n" + tuistyles.SubtitleStyle.Render(m.Description)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tuistyles.ColorBorder).
		Padding(0, 1).
		Width(m.Width).
		Render(content)
}

// RenderCompact returns an inline "label: value" rendering without border
func (m *MetricCard) RenderCompact() string {
	out := tuistyles.MetricLabelStyle.Render(m.Label+":") + " " + tuistyles.MetricValueStyle.Render(m.Value)
	if t := m.trend(); t != "" {
		out += " " + t
	}
	return out
}

// MetricGrid lays cards out in rows of the given number of columns
func MetricGrid(cards []*MetricCard, columns int) string {
	if len(cards) == 0 {
		return ""
	}
	if columns < 1 {
		columns = 1
	}

	var rows, row []string
	for i, card := range cards {
		row = append(row, card.Render())
		if (i+1)%columns == 0 || i == len(cards)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
