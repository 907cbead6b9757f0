package compare

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing scenarios
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString("CAPITAL PLAN SCENARIO COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Project: %s\n", compSet.ProjectID))
	sb.WriteString(fmt.Sprintf("Base Scenario: %s\n", compSet.BaseScenarioName))
	if compSet.DataPath != "" {
		sb.WriteString(fmt.Sprintf("Data: %s\n", compSet.DataPath))
	}
	sb.WriteString("\n")

	nameWidth := 28
	numWidth := 12

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Scenario",
		numWidth, "Cost",
		numWidth, "NPV",
		numWidth, "Proj. CI",
		numWidth, "Proj. FCI"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	sb.WriteString(tf.formatRow(compSet.BaseResult, nameWidth, numWidth, true))

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for i := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&compSet.AlternativeResults[i], nameWidth, numWidth, false))
		}
	}

	sb.WriteString(strings.Repeat("=", 80) + "\n")

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")

		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.ScenarioName))
			if alt.Description != "" {
				sb.WriteString(fmt.Sprintf("  %s\n", alt.Description))
			}
			sb.WriteString(fmt.Sprintf("  Capital Cost:     %s$%s\n",
				tf.deltaSymbol(alt.CostDiffFromBase), tf.formatDecimal(alt.CostDiffFromBase)))
			sb.WriteString(fmt.Sprintf("  Net Present Value: %s$%s\n",
				tf.deltaSymbol(alt.NPVDiffFromBase), tf.formatDecimal(alt.NPVDiffFromBase)))
			if alt.CIDiffFromBase != 0 {
				sb.WriteString(fmt.Sprintf("  Projected CI:     %+.1f points\n", alt.CIDiffFromBase))
			}
			if alt.FCIDiffFromBase != 0 {
				sb.WriteString(fmt.Sprintf("  Projected FCI:    %+.1f points\n", alt.FCIDiffFromBase))
			}
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.ScenarioName
	if isBase {
		name += " (base)"
	}

	return fmt.Sprintf("%-*s %*s %*s %*.1f %*.1f\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, "$"+tf.formatDecimal(result.TotalCost),
		numWidth, "$"+tf.formatDecimal(result.NetPresentValue),
		numWidth, result.ProjectedCI,
		numWidth, result.ProjectedFCI)
}

// formatDecimal formats a decimal for display in thousands or millions
func (tf *TableFormatter) formatDecimal(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	if d.GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		return sign + d.Div(decimal.NewFromInt(1000000)).StringFixed(2) + "M"
	} else if d.GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		return sign + d.Div(decimal.NewFromInt(1000)).StringFixed(1) + "K"
	}
	return sign + d.StringFixed(0)
}

// deltaSymbol returns a + for positive deltas; negative values carry their own sign
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a compact single-line summary for each scenario
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base: %s | ", compSet.BaseScenarioName))

	for i, alt := range compSet.AlternativeResults {
		if i > 0 {
			sb.WriteString(" | ")
		}
		npvChange := "="
		if !alt.NPVDiffFromBase.IsZero() {
			npvChange = fmt.Sprintf("%s$%s", tf.deltaSymbol(alt.NPVDiffFromBase), tf.formatDecimal(alt.NPVDiffFromBase))
		}
		sb.WriteString(fmt.Sprintf("%s: NPV %s", alt.ScenarioName, npvChange))
	}

	return sb.String()
}
