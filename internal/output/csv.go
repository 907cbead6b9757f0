package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CSVFormatter renders the main table of a report as CSV, one row per item
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(r *Report) ([]byte, error) {
	var header []string
	var rows [][]string

	switch r.Kind {
	case KindOptimization:
		header = []string{"ComponentCode", "Strategy", "ActionYear", "StrategyCost", "PresentValueCost", "ConditionImprovement", "RiskReduction", "CostEffectiveness", "Deferred"}
		deferred := make(map[string]bool, len(r.Optimization.DeferredComponents))
		for _, code := range r.Optimization.DeferredComponents {
			deferred[code] = true
		}
		for _, s := range r.Optimization.SelectedStrategies {
			rows = append(rows, []string{
				s.ComponentCode, string(s.Strategy), strconv.Itoa(s.ActionYear),
				s.StrategyCost.StringFixed(2), s.PresentValueCost.StringFixed(2),
				floatString(s.ConditionImprovement), floatString(s.RiskReduction), floatString(s.CostEffectiveness),
				strconv.FormatBool(deferred[s.ComponentCode]),
			})
		}
	case KindPortfolio:
		header = []string{"ProjectID", "Name", "Cost", "CIImprovement", "FCIImprovement", "PriorityScore", "CIPerMillion"}
		for _, p := range r.Portfolio.SelectedProjects {
			rows = append(rows, []string{
				p.ProjectID, p.Name, p.Cost.StringFixed(2),
				floatString(p.CIImprovement), floatString(p.FCIImprovement), floatString(p.PriorityScore), floatString(p.CIPerMillion),
			})
		}
	case KindSensitivity:
		header = []string{"Budget", "ProjectCount", "TotalCost", "CIImprovement", "FCIImprovement", "MarginalBenefit", "ROI"}
		for _, l := range r.Sensitivity.BudgetLevels {
			rows = append(rows, []string{
				l.Budget.StringFixed(2), strconv.Itoa(l.ProjectCount), l.TotalCost.StringFixed(2),
				floatString(l.CIImprovement), floatString(l.FCIImprovement), floatString(l.MarginalBenefit), floatString(l.ROI),
			})
		}
	case KindPareto:
		header = []string{"Cost", "CIImprovement", "FCIImprovement", "ProjectCount", "Projects"}
		for _, p := range r.Pareto {
			rows = append(rows, []string{
				p.Cost.StringFixed(2), floatString(p.CIImprovement), floatString(p.FCIImprovement),
				strconv.Itoa(p.ProjectCount), strings.Join(p.Projects, ";"),
			})
		}
	case KindRanking:
		header = []string{"Rank", "ProjectID", "Name", "Cost", "CIImprovement", "CostPerCIPoint"}
		for _, p := range r.Ranking {
			perPoint := ""
			if !math.IsInf(p.CostPerCIPoint, 0) {
				perPoint = floatString(p.CostPerCIPoint)
			}
			rows = append(rows, []string{
				strconv.Itoa(p.Rank), p.ProjectID, p.Name, p.Cost.StringFixed(2), floatString(p.CIImprovement), perPoint,
			})
		}
	case KindMetrics:
		m := r.Metrics
		header = []string{"TotalProjects", "TotalReplacementValue", "TotalDeferredMaintenance", "WeightedCI", "WeightedFCI", "AveragePriorityScore"}
		rows = append(rows, []string{
			strconv.Itoa(m.TotalProjects), m.TotalReplacementValue.StringFixed(2), m.TotalDeferredMaintenance.StringFixed(2),
			floatString(m.WeightedCI), floatString(m.WeightedFCI), floatString(m.AveragePriorityScore),
		})
	default:
		return nil, fmt.Errorf("unknown report kind %q", r.Kind)
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func floatString(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
