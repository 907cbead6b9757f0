package output

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var generated = time.Date(2025, time.March, 1, 14, 5, 9, 0, time.UTC)

func testOptimization() *domain.OptimizationResult {
	budget := decimal.NewFromInt(100000)
	cfg := domain.DefaultOptimizationConfig("P-100")
	cfg.BudgetConstraint = &budget
	cfg.BudgetType = domain.BudgetHard
	irr := 0.0412
	return &domain.OptimizationResult{
		ProjectID:            "P-100",
		Config:               cfg,
		TotalCost:            decimal.NewFromInt(86000),
		TotalBenefit:         decimal.NewFromInt(90000),
		NetPresentValue:      decimal.NewFromInt(-1200),
		ReturnOnInvestment:   4.65,
		PaybackPeriod:        9.6,
		InternalRateOfReturn: &irr,
		CurrentCI:            61.7,
		ProjectedCI:          75,
		CIImprovement:        13.3,
		CurrentFCI:           26.4,
		ProjectedFCI:         20,
		FCIImprovement:       6.4,
		SelectedStrategies: []domain.StrategyOption{
			{ComponentCode: "B3010", Strategy: domain.StrategyRehabilitate, ActionYear: 2027, StrategyCost: decimal.NewFromInt(60000), PresentValueCost: decimal.NewFromInt(56000), ConditionImprovement: 40},
			{ComponentCode: "D3020", Strategy: domain.StrategyDefer, ActionYear: 2029, StrategyCost: decimal.NewFromInt(20000), PresentValueCost: decimal.NewFromInt(17000)},
		},
		DeferredComponents: []string{"D3020"},
		CashFlows: []domain.CashFlowProjection{
			{Year: 2025, TotalCost: decimal.NewFromInt(1000), TotalBenefit: decimal.Zero, NetCashFlow: decimal.NewFromInt(-1000), CumulativeCashFlow: decimal.NewFromInt(-1000), ProjectedCI: 61.7},
		},
		Defaults: []domain.DataDefault{{ProjectID: "P-100", ComponentCode: "D3020", Field: "criticality", Value: "1"}},
	}
}

func testReports() []*Report {
	return []*Report{
		NewOptimizationReport(testOptimization(), generated),
		NewPortfolioReport(&domain.PortfolioResult{
			SelectedProjects: []domain.SelectedProject{{ProjectID: "A", Name: "Science Hall", Cost: decimal.NewFromInt(2000000), CIImprovement: 50, FCIImprovement: 18}},
			TotalCost:        decimal.NewFromInt(2000000),
			BeforeCI:         60, AfterCI: 80,
			BudgetUtilization: 66.7,
		}, generated),
		NewSensitivityReport(&domain.SensitivityAnalysis{
			BaseBudget:      decimal.NewFromInt(3000000),
			RangePercent:    50,
			RequestedLevels: []decimal.Decimal{decimal.NewFromInt(1500000), decimal.NewFromInt(3000000)},
			BudgetLevels: []domain.SensitivityLevel{
				{Budget: decimal.NewFromInt(3000000), ProjectCount: 2, TotalCost: decimal.NewFromInt(3000000), CIImprovement: 80},
			},
			OptimalBudget:   decimal.NewFromInt(3000000),
			InflectionPoint: decimal.NewFromInt(3000000),
		}, generated),
		NewParetoReport([]domain.ParetoPoint{
			{Cost: decimal.NewFromInt(1000000), CIImprovement: 30, ProjectCount: 1, Projects: []string{"B"}},
			{Cost: decimal.NewFromInt(3000000), CIImprovement: 80, ProjectCount: 2, Projects: []string{"B", "A"}},
		}, generated),
		NewRankingReport([]domain.RankedProject{
			{Rank: 1, ProjectID: "B", Cost: decimal.NewFromInt(1000000), CIImprovement: 30, CostPerCIPoint: 33333.33},
			{Rank: 2, ProjectID: "D", Cost: decimal.NewFromInt(500000), CostPerCIPoint: math.Inf(1)},
		}, generated),
		NewMetricsReport(domain.PortfolioMetrics{TotalProjects: 6, TotalReplacementValue: decimal.NewFromInt(30000000), WeightedCI: 63.83}, generated),
	}
}

func TestReport_Validate(t *testing.T) {
	for _, r := range testReports() {
		assert.NoError(t, r.Validate(), r.Kind)
	}

	assert.Error(t, (&Report{Kind: KindPortfolio}).Validate())
	assert.Error(t, (&Report{Kind: "forecast"}).Validate())
}

func TestGetFormatter(t *testing.T) {
	for _, name := range FormatNames() {
		f, err := GetFormatter(name)
		require.NoError(t, err)
		assert.Equal(t, name, f.Name())
	}
	assert.Equal(t, []string{"console", "csv", "html", "json", "yaml"}, FormatNames())

	_, err := GetFormatter("pdf")
	assert.ErrorContains(t, err, "unsupported format: pdf")
}

func TestAllFormatters_AllKinds(t *testing.T) {
	for _, name := range FormatNames() {
		f, _ := GetFormatter(name)
		for _, r := range testReports() {
			var buf bytes.Buffer
			require.NoError(t, WriteFormatted(&buf, f, r), "%s/%s", name, r.Kind)
			assert.NotEmpty(t, buf.String(), "%s/%s", name, r.Kind)
		}
	}
}

func TestConsoleFormatter_Optimization(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(testReports()[0])
	require.NoError(t, err)
	text := string(out)

	for _, want := range []string{
		"CAPITAL PLAN FOR PROJECT P-100",
		"Budget: $100000.00 (hard)",
		"B3010      rehabilitate",
		"Deferred to fit budget: D3020",
		"Net Present Value:   $-1200.00",
		"Internal Rate of Return: 4.1%",
		"CI:   61.7 -> 75.0 (+13.3)",
		"DATA DEFAULTS",
	} {
		assert.Contains(t, text, want)
	}
}

func TestConsoleFormatter_Views(t *testing.T) {
	reports := testReports()

	sens, err := ConsoleFormatter{}.Format(reports[2])
	require.NoError(t, err)
	assert.Contains(t, string(sens), "← BASE")
	assert.Contains(t, string(sens), "(1 infeasible budget levels omitted)")

	ranking, err := ConsoleFormatter{}.Format(reports[4])
	require.NoError(t, err)
	assert.Contains(t, string(ranking), "$33333.33")
	assert.Contains(t, string(ranking), "n/a")

	pareto, err := ConsoleFormatter{}.Format(reports[3])
	require.NoError(t, err)
	assert.Contains(t, string(pareto), "B, A")
}

func TestCSVFormatter(t *testing.T) {
	out, err := CSVFormatter{}.Format(testReports()[0])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "B3010,rehabilitate,2027,60000.00,56000.00,40.0000,0.0000,0.0000,false", lines[1])
	assert.True(t, strings.HasSuffix(lines[2], ",true"))

	out, err = CSVFormatter{}.Format(testReports()[4])
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, "2,D,,500000.00,0.0000,", lines[2], "unbounded cost per point is left empty")
}

func TestJSONFormatter_NullForUnboundedRanking(t *testing.T) {
	out, err := JSONFormatter{}.Format(testReports()[4])
	require.NoError(t, err)

	var decoded struct {
		Kind    Kind                     `json:"kind"`
		Ranking []map[string]interface{} `json:"ranking"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, KindRanking, decoded.Kind)
	require.Len(t, decoded.Ranking, 2)
	assert.Nil(t, decoded.Ranking[1]["cost_per_ci_point"])
	assert.NotContains(t, string(out), "optimization")
}

func TestYAMLFormatter(t *testing.T) {
	out, err := YAMLFormatter{}.Format(testReports()[5])
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, "metrics", decoded["kind"])
	assert.Contains(t, string(out), "30000000")
}

func TestHTMLFormatter_EscapesNames(t *testing.T) {
	r := testReports()[1]
	r.Portfolio.SelectedProjects[0].Name = "<script>Hall</script>"

	out, err := HTMLFormatter{}.Format(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), "&lt;script&gt;Hall&lt;/script&gt;")
	assert.Contains(t, string(out), "<h2>Selected Projects</h2>")
	assert.NotContains(t, string(out), "<h2>Metrics</h2>")
}

func TestFormatterFunc(t *testing.T) {
	called := false
	f := FormatterFunc{ID: "custom", F: func(r *Report) ([]byte, error) {
		called = true
		return []byte(r.Title), nil
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteFormatted(&buf, f, testReports()[5]))
	assert.True(t, called)
	assert.Equal(t, "custom", f.Name())
	assert.Equal(t, "Portfolio Metrics", buf.String())

	assert.Error(t, WriteFormatted(&buf, f, &Report{Kind: KindPareto}), "reports are validated before formatting")
}

func TestSaveReport(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveReport(dir, JSONFormatter{Pretty: true}, testReports()[3])
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "facplan_pareto_20250301_140509.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind": "pareto"`)

	_, err = SaveReport(filepath.Join(dir, "missing"), JSONFormatter{}, testReports()[3])
	assert.Error(t, err)
}
