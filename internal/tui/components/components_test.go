package components

import (
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/tui/tuistyles"
)

func TestGaugeRatio(t *testing.T) {
	tests := []struct {
		value, max, want float64
	}{
		{50, 100, 0.5},
		{150, 100, 1},
		{-5, 100, 0},
		{10, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewGauge("", tt.value, tt.max).Ratio())
	}

	out := NewGauge("Budget", 25, 100).WithWidth(8).Render()
	assert.Contains(t, out, "Budget")
	assert.Contains(t, out, "██░░░░░░")
	assert.Contains(t, out, "25.0%")
	assert.Contains(t, NewGauge("", 1, 2).WithCaption("1 / 2").Render(), "1 / 2")
}

func TestMetricCardIndexChange(t *testing.T) {
	ci := NewMetricCard("CI", "80").WithIndexChange(5, false)
	assert.True(t, ci.Trend.Up)
	assert.True(t, ci.Trend.Improved)
	assert.Equal(t, "+5.0", ci.Trend.Change)

	fci := NewMetricCard("FCI", "4%").WithIndexChange(-2, true)
	assert.False(t, fci.Trend.Up)
	assert.True(t, fci.Trend.Improved, "a falling FCI is an improvement")

	assert.Nil(t, NewMetricCard("x", "y").WithIndexChange(0, false).Trend)
	assert.Contains(t, ci.RenderCompact(), "CI: 80")
	assert.Equal(t, "", MetricGrid(nil, 3))
}

func TestASCIIChart(t *testing.T) {
	assert.Contains(t, NewASCIIChart("empty").Render(), "No data")

	flat := NewASCIIChart("flat").AddSeries("a", []float64{5, 5, 5}, tuistyles.ColorChartLine1).Render()
	assert.Contains(t, flat, "●")

	single := NewASCIIChart("").AddSeries("a", []float64{3}, tuistyles.ColorChartLine1).WithSize(20, 4).Render()
	assert.Contains(t, single, "●")

	chart := NewASCIIChart("two").
		AddSeries("a", []float64{0, 10, 20}, tuistyles.ColorChartLine1).
		AddSeries("b", []float64{20, 10, 0}, tuistyles.ColorChartLine2).
		WithLabels([]string{"2025", "2026", "2027"}).
		WithXAxisLabel("year").
		WithValueFormat(tuistyles.FormatCurrency).
		Render()
	assert.Contains(t, chart, "Legend:")
	assert.Contains(t, chart, "2025")
	assert.Contains(t, chart, "year")
	assert.Contains(t, chart, "$")
	assert.Equal(t, 12, strings.Count(chart, "│"), "one axis mark per row")
}

func TestScenarioCard(t *testing.T) {
	draft := NewScenarioCard(domain.Scenario{ID: "1", ProjectID: "P-100", Name: "Roof", Status: domain.StatusDraft})
	assert.Equal(t, []string{"not optimized yet"}, draft.Highlights())
	assert.Contains(t, draft.Render(), "DRAFT")

	opt := NewScenarioCard(domain.Scenario{
		ID: "2", ProjectID: "P-100", Name: "Full", Status: domain.StatusOptimized,
		TotalCost: decimal.NewFromInt(164000), ProjectedCI: 81.7,
	})
	assert.Contains(t, opt.Highlights()[0], "$164.0K")
	assert.Contains(t, opt.Highlights()[1], "81.7")

	list := ScenarioListCompact([]*ScenarioCard{draft, opt}, 1)
	assert.Contains(t, list, "▸ Full")
	assert.Contains(t, ScenarioListCompact(nil, 0), "No scenarios")
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "12.5 pts", FormatPoints(12.5))
	assert.Equal(t, "$2.50M", tuistyles.FormatCurrency(2_500_000))
	assert.Equal(t, "-$1.5K", tuistyles.FormatCurrency(-1500))
	assert.Equal(t, "$999", tuistyles.FormatCurrency(999))
	assert.Equal(t, "n/a", tuistyles.FormatCostPerPoint(math.Inf(1)))
}
