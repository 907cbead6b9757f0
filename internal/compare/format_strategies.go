package compare

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/rgehrsitz/facplan/internal/domain"
)

// FormatStrategies renders the four options of a component side by side, marking the recommendation
func (tf *TableFormatter) FormatStrategies(sc *domain.StrategyComparison) string {
	var sb strings.Builder

	sb.WriteString("COMPONENT STRATEGY COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Component: %s %s (%s)\n", sc.Component.ComponentCode, sc.Component.Name, sc.Component.Condition))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("%-2s %-13s %6s %10s %10s %7s %7s %8s\n",
		"", "Strategy", "Year", "Cost", "PV Cost", "+Cond", "-Risk", "Eff."))
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	for _, s := range sc.Strategies {
		marker := ""
		if s.Strategy == sc.Recommended.Strategy {
			marker = "→"
		}
		sb.WriteString(fmt.Sprintf("%-2s %-13s %6d %10s %10s %7.1f %7.1f %8.3f\n",
			marker,
			s.Strategy,
			s.ActionYear,
			"$"+tf.formatDecimal(s.StrategyCost),
			"$"+tf.formatDecimal(s.PresentValueCost),
			s.ConditionImprovement,
			s.RiskReduction,
			s.CostEffectiveness))
	}
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Recommended: %s in %d\n", sc.Recommended.Strategy, sc.Recommended.ActionYear))

	if len(sc.Defaults) > 0 {
		sb.WriteString("\nDATA DEFAULTS\n")
		for _, d := range sc.Defaults {
			sb.WriteString(fmt.Sprintf("• %s\n", d))
		}
	}
	return sb.String()
}

// FormatStrategies generates CSV output for a component strategy comparison
func (cf *CSVFormatter) FormatStrategies(sc *domain.StrategyComparison) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Component", "Strategy", "Recommended", "Action Year", "Cost", "PV Cost",
		"Life Extension", "Condition Improvement", "Risk Reduction",
		"Failure Cost Avoided", "Maintenance Savings", "Cost Effectiveness",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}
	for _, s := range sc.Strategies {
		row := []string{
			s.ComponentCode,
			string(s.Strategy),
			fmt.Sprintf("%t", s.Strategy == sc.Recommended.Strategy),
			fmt.Sprintf("%d", s.ActionYear),
			s.StrategyCost.StringFixed(2),
			s.PresentValueCost.StringFixed(2),
			fmt.Sprintf("%d", s.LifeExtension),
			formatFloat(s.ConditionImprovement),
			formatFloat(s.RiskReduction),
			s.FailureCostAvoided.StringFixed(2),
			s.MaintenanceSavings.StringFixed(2),
			fmt.Sprintf("%.4f", s.CostEffectiveness),
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
