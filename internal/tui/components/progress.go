package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/facplan/internal/tui/tuistyles"
)

// Gauge draws a filled bar for a value against a maximum, such as budget
// utilization or current CI against the target
type Gauge struct {
	Label   string
	Value   float64
	Max     float64
	Width   int
	Caption string
}

// NewGauge creates a gauge of value out of max
func NewGauge(label string, value, max float64) *Gauge {
	return &Gauge{Label: label, Value: value, Max: max, Width: 30}
}

// WithWidth sets the bar width
func (g *Gauge) WithWidth(width int) *Gauge {
	g.Width = width
	return g
}

// WithCaption replaces the default percentage caption
func (g *Gauge) WithCaption(caption string) *Gauge {
	g.Caption = caption
	return g
}

// Ratio is value over max, clamped to [0, 1]
func (g *Gauge) Ratio() float64 {
	if g.Max <= 0 {
		return 0
	}
	r := g.Value / g.Max
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	default:
		return r
	}
}

// Render returns the labeled bar
func (g *Gauge) Render() string {
	filled := int(float64(g.Width)*g.Ratio() + 0.5)
	if filled > g.Width {
		filled = g.Width
	}

	fill := tuistyles.ColorSuccess
	if g.Ratio() < 0.5 {
		fill = tuistyles.ColorAccent
	}

	var b strings.Builder
	if g.Label != "" {
		b.WriteString(tuistyles.MetricLabelStyle.Render(g.Label))
		b.WriteString("\n")
	}
	b.WriteString("[")
	b.WriteString(lipgloss.NewStyle().Foreground(fill).Render(strings.Repeat("█", filled)))
	b.WriteString(lipgloss.NewStyle().Foreground(tuistyles.ColorBorder).Render(strings.Repeat("░", g.Width-filled)))
	b.WriteString("] ")

	caption := g.Caption
	if caption == "" {
		caption = fmt.Sprintf("%.1f%%", g.Ratio()*100)
	}
	b.WriteString(tuistyles.MetricValueStyle.Render(caption))
	return b.String()
}
