package compare

import (
	"fmt"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
)

// ComparisonResult is one optimized configuration with the metrics used to compare it
type ComparisonResult struct {
	ScenarioName string                     `json:"scenarioName"`
	Description  string                     `json:"description,omitempty"`
	Config       domain.OptimizationConfig  `json:"config"`
	Result       *domain.OptimizationResult `json:"-"`

	// Key Metrics
	TotalCost          decimal.Decimal `json:"totalCost"`
	NetPresentValue    decimal.Decimal `json:"netPresentValue"`
	ReturnOnInvestment float64         `json:"returnOnInvestment"`
	PaybackPeriod      float64         `json:"paybackPeriod"`
	ProjectedCI        float64         `json:"projectedCI"`
	ProjectedFCI       float64         `json:"projectedFCI"`
	RiskReduction      float64         `json:"riskReduction"`
	DeferredCount      int             `json:"deferredCount"`

	// Comparison to Base
	CostDiffFromBase decimal.Decimal `json:"costDiffFromBase"`
	NPVDiffFromBase  decimal.Decimal `json:"npvDiffFromBase"`
	CIDiffFromBase   float64         `json:"ciDiffFromBase"`
	FCIDiffFromBase  float64         `json:"fciDiffFromBase"`
}

// ComparisonSet represents a collection of scenario comparisons for one project
type ComparisonSet struct {
	ProjectID          string             `json:"projectId"`
	BaseScenarioName   string             `json:"baseScenarioName"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
	DataPath           string             `json:"dataPath,omitempty"`
}

// MetricsCalculator extracts key metrics from optimization results
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics computes the comparison metrics of one optimization result
func (mc *MetricsCalculator) CalculateMetrics(name string, result *domain.OptimizationResult) ComparisonResult {
	return ComparisonResult{
		ScenarioName:       name,
		Config:             result.Config,
		Result:             result,
		TotalCost:          result.TotalCost,
		NetPresentValue:    result.NetPresentValue,
		ReturnOnInvestment: result.ReturnOnInvestment,
		PaybackPeriod:      result.PaybackPeriod,
		ProjectedCI:        result.ProjectedCI,
		ProjectedFCI:       result.ProjectedFCI,
		RiskReduction:      result.RiskReduction,
		DeferredCount:      len(result.DeferredComponents),
	}
}

// CalculateComparison computes the differences between a scenario and a base
func (mc *MetricsCalculator) CalculateComparison(scenario, base ComparisonResult) ComparisonResult {
	scenario.CostDiffFromBase = scenario.TotalCost.Sub(base.TotalCost)
	scenario.NPVDiffFromBase = scenario.NetPresentValue.Sub(base.NetPresentValue)
	scenario.CIDiffFromBase = scenario.ProjectedCI - base.ProjectedCI
	scenario.FCIDiffFromBase = scenario.ProjectedFCI - base.ProjectedFCI
	return scenario
}

// GenerateRecommendations names the alternatives that beat the base on value, condition and cost
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}

	if compSet.BaseResult == nil || len(compSet.AlternativeResults) == 0 {
		return recommendations
	}
	base := compSet.BaseResult

	bestNPV := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.NetPresentValue.GreaterThan(bestNPV.NetPresentValue) {
			bestNPV = alt
		}
	}
	if bestNPV != base {
		recommendations = append(recommendations,
			"Best Value: "+bestNPV.ScenarioName+" improves net present value by $"+
				bestNPV.NetPresentValue.Sub(base.NetPresentValue).StringFixed(0))
	}

	bestCI := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.ProjectedCI > bestCI.ProjectedCI {
			bestCI = alt
		}
	}
	if bestCI != base {
		recommendations = append(recommendations,
			"Best Condition: "+bestCI.ScenarioName+" raises projected CI by "+
				fmt.Sprintf("%.1f points", bestCI.ProjectedCI-base.ProjectedCI))
	}

	lowestCost := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.TotalCost.LessThan(lowestCost.TotalCost) {
			lowestCost = alt
		}
	}
	if lowestCost != base {
		recommendations = append(recommendations,
			"Lowest Cost: "+lowestCost.ScenarioName+" saves $"+
				base.TotalCost.Sub(lowestCost.TotalCost).StringFixed(0)+" in capital spending")
	}

	return recommendations
}
