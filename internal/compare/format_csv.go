package compare

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Scenario",
		"Type",
		"Total Cost",
		"NPV",
		"ROI %",
		"Payback (Years)",
		"Projected CI",
		"Projected FCI",
		"Deferred",
		"Cost Diff from Base",
		"NPV Diff from Base",
		"CI Diff from Base",
		"FCI Diff from Base",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
		return "", err
	}
	for i := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&compSet.AlternativeResults[i], "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (cf *CSVFormatter) formatRow(result *ComparisonResult, scenarioType string) []string {
	return []string{
		result.ScenarioName,
		scenarioType,
		result.TotalCost.StringFixed(2),
		result.NetPresentValue.StringFixed(2),
		formatFloat(result.ReturnOnInvestment),
		formatFloat(result.PaybackPeriod),
		formatFloat(result.ProjectedCI),
		formatFloat(result.ProjectedFCI),
		fmt.Sprintf("%d", result.DeferredCount),
		result.CostDiffFromBase.StringFixed(2),
		result.NPVDiffFromBase.StringFixed(2),
		formatFloat(result.CIDiffFromBase),
		formatFloat(result.FCIDiffFromBase),
	}
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
