package compare

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
)

func sampleSet() *ComparisonSet {
	return &ComparisonSet{
		ProjectID:        "P-100",
		BaseScenarioName: "capped",
		DataPath:         "facilities.yaml",
		BaseResult: &ComparisonResult{
			ScenarioName:    "capped",
			TotalCost:       decimal.NewFromInt(86000),
			NetPresentValue: decimal.NewFromInt(-12000),
			ProjectedCI:     70,
			ProjectedFCI:    20,
		},
		AlternativeResults: []ComparisonResult{
			{
				ScenarioName:     "capped_unconstrained",
				Description:      "Remove the budget constraint",
				TotalCost:        decimal.NewFromInt(164000),
				NetPresentValue:  decimal.NewFromInt(-40000),
				ProjectedCI:      81.7,
				ProjectedFCI:     8,
				CostDiffFromBase: decimal.NewFromInt(78000),
				NPVDiffFromBase:  decimal.NewFromInt(-28000),
				CIDiffFromBase:   11.7,
				FCIDiffFromBase:  -12,
			},
		},
		Recommendations: []string{"Best Condition: capped_unconstrained raises projected CI by 11.7 points"},
	}
}

func TestTableFormatter_Format(t *testing.T) {
	result := (&TableFormatter{}).Format(sampleSet())

	for _, want := range []string{
		"CAPITAL PLAN SCENARIO COMPARISON",
		"Project: P-100",
		"Base Scenario: capped",
		"Data: facilities.yaml",
		"capped (base)",
		"$86.0K",
		"$164.0K",
		"COMPARISON TO BASE",
		"Capital Cost:     +$78.0K",
		"Net Present Value: $-28.0K",
		"Projected CI:     +11.7 points",
		"Projected FCI:    -12.0 points",
		"RECOMMENDATIONS",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in output:\n%s", want, result)
		}
	}
}

func TestTableFormatter_FormatDecimal(t *testing.T) {
	tf := &TableFormatter{}

	tests := []struct {
		in   decimal.Decimal
		want string
	}{
		{decimal.NewFromInt(500), "500"},
		{decimal.NewFromInt(1500), "1.5K"},
		{decimal.NewFromInt(2500000), "2.50M"},
		{decimal.NewFromInt(-28000), "-28.0K"},
	}
	for _, tt := range tests {
		if got := tf.formatDecimal(tt.in); got != tt.want {
			t.Errorf("formatDecimal(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestTableFormatter_FormatCompact(t *testing.T) {
	result := (&TableFormatter{}).FormatCompact(sampleSet())
	want := "Base: capped | capped_unconstrained: NPV $-28.0K"
	if result != want {
		t.Errorf("Expected %q, got %q", want, result)
	}
}

func TestCSVFormatter_Format(t *testing.T) {
	result, err := (&CSVFormatter{}).Format(sampleSet())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(result), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines (header + 2 rows), got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Scenario,Type,Total Cost") {
		t.Errorf("Unexpected header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "capped,base,86000.00,-12000.00") {
		t.Errorf("Unexpected base row: %s", lines[1])
	}
	if !strings.HasSuffix(lines[2], "78000.00,-28000.00,11.70,-12.00") {
		t.Errorf("Unexpected alternative row: %s", lines[2])
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		result, err := (&JSONFormatter{Pretty: pretty}).Format(sampleSet())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if pretty != strings.Contains(result, "\n  ") {
			t.Errorf("Pretty=%v produced unexpected indentation", pretty)
		}

		var decoded ComparisonSet
		if err := json.Unmarshal([]byte(result), &decoded); err != nil {
			t.Fatalf("Output is not valid JSON: %v", err)
		}
		if decoded.BaseScenarioName != "capped" || len(decoded.AlternativeResults) != 1 {
			t.Errorf("Unexpected decoded set: %+v", decoded)
		}
	}
}

func sampleStrategies() *domain.StrategyComparison {
	opt := func(s domain.StrategyType, cost int64, cond float64) domain.StrategyOption {
		return domain.StrategyOption{
			ComponentCode:        "B3010",
			Strategy:             s,
			ActionYear:           2027,
			StrategyCost:         decimal.NewFromInt(cost),
			PresentValueCost:     decimal.NewFromInt(cost),
			ConditionImprovement: cond,
		}
	}
	return &domain.StrategyComparison{
		Component: domain.ComponentSnapshot{ComponentCode: "B3010", Name: "Roof Coverings", Condition: domain.ConditionPoor},
		Strategies: []domain.StrategyOption{
			opt(domain.StrategyReplace, 200000, 70),
			opt(domain.StrategyRehabilitate, 60000, 40),
			opt(domain.StrategyDefer, 5000, 0),
			opt(domain.StrategyDoNothing, 0, 0),
		},
		Recommended: opt(domain.StrategyRehabilitate, 60000, 40),
		Defaults:    []domain.DataDefault{{ProjectID: "P-100", ComponentCode: "B3010", Field: "criticality", Value: "1"}},
	}
}

func TestFormatStrategies(t *testing.T) {
	table := (&TableFormatter{}).FormatStrategies(sampleStrategies())
	for _, want := range []string{"COMPONENT STRATEGY COMPARISON", "B3010 Roof Coverings (poor)", "→  rehabilitate", "Recommended: rehabilitate in 2027", "DATA DEFAULTS"} {
		if !strings.Contains(table, want) {
			t.Errorf("Expected %q in output:\n%s", want, table)
		}
	}

	csvOut, err := (&CSVFormatter{}).FormatStrategies(sampleStrategies())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(csvOut), "\n")
	if len(lines) != 5 {
		t.Fatalf("Expected 5 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[2], "B3010,rehabilitate,true,2027,60000.00") {
		t.Errorf("Unexpected rehabilitate row: %s", lines[2])
	}

	jsonOut, err := (&JSONFormatter{}).FormatStrategies(sampleStrategies())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(jsonOut, `"recommended"`) {
		t.Errorf("Expected recommended field in %s", jsonOut)
	}
}
