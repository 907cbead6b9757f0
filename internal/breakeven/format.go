package breakeven

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats break-even results as a console table
type TableFormatter struct{}

// Format generates a formatted table for one break-even search
func (tf *TableFormatter) Format(result *Result) string {
	var sb strings.Builder

	sb.WriteString("BREAK-EVEN BUDGET\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	sb.WriteString(fmt.Sprintf("Goal:          %s\n", result.Request.Goal))
	sb.WriteString(fmt.Sprintf("Target:        %.2f\n", result.Request.Target))
	sb.WriteString(fmt.Sprintf("Search Range:  $%s - $%s\n",
		tf.formatCurrency(result.Request.MinBudget), tf.formatCurrency(result.Request.MaxBudget)))
	sb.WriteString(fmt.Sprintf("Status:        %s\n", tf.formatStatus(result.Success)))
	sb.WriteString(fmt.Sprintf("Iterations:    %d\n", result.Iterations))
	if result.ConvergenceInfo != "" {
		sb.WriteString(fmt.Sprintf("Convergence:   %s\n", result.ConvergenceInfo))
	}
	sb.WriteString("\n")

	sb.WriteString("RESULT\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Break-Even Budget: $%s\n", tf.formatCurrency(result.Budget)))
	sb.WriteString(fmt.Sprintf("Search Bound:      $%s\n", tf.formatCurrency(result.SearchBound)))
	sb.WriteString(fmt.Sprintf("Achieved:          %.2f\n", result.Achieved))
	if p := result.Portfolio; p != nil {
		sb.WriteString(fmt.Sprintf("Portfolio CI:      %.2f -> %.2f\n", p.BeforeCI, p.AfterCI))
		sb.WriteString(fmt.Sprintf("Portfolio FCI:     %.2f -> %.2f\n", p.BeforeFCI, p.AfterFCI))
		sb.WriteString(fmt.Sprintf("Projects Funded:   %s\n", tf.formatIDs(p.SelectedIDs())))
	}
	sb.WriteString("\n")

	return sb.String()
}

// FormatCurve formats break-even budgets for several targets
func (tf *TableFormatter) FormatCurve(curve *CurveResult) string {
	var sb strings.Builder

	sb.WriteString("BREAK-EVEN CURVE\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n\n")

	sb.WriteString(fmt.Sprintf("%-12s %15s %12s %10s  %s\n", "Target", "Budget", "Achieved", "Projects", "Funded"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	for _, r := range curve.Results {
		ids := ""
		count := 0
		if r.Portfolio != nil {
			ids = tf.formatIDs(r.Portfolio.SelectedIDs())
			count = len(r.Portfolio.SelectedProjects)
		}
		sb.WriteString(fmt.Sprintf("%-12.2f %15s %12.2f %10d  %s\n",
			r.Request.Target,
			"$"+tf.formatShort(r.Budget),
			r.Achieved,
			count,
			tf.truncate(ids, 36)))
	}
	for _, target := range curve.Unreachable {
		sb.WriteString(fmt.Sprintf("%-12.2f %15s\n", target, "unreachable"))
	}
	sb.WriteString("\n")

	if len(curve.Recommendations) > 0 {
		sb.WriteString("RECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range curve.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format generates JSON output
func (jf *JSONFormatter) Format(result *Result) (string, error) {
	return jf.marshal(result)
}

// FormatCurve formats a break-even curve as JSON
func (jf *JSONFormatter) FormatCurve(curve *CurveResult) (string, error) {
	return jf.marshal(curve)
}

func (jf *JSONFormatter) marshal(v any) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Helper methods

func (tf *TableFormatter) formatStatus(success bool) string {
	if success {
		return "✓ Converged"
	}
	return "⚠ Did not converge"
}

func (tf *TableFormatter) formatCurrency(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func (tf *TableFormatter) formatShort(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		millions := d.Div(decimal.NewFromInt(1000000))
		return millions.StringFixed(2) + "M"
	} else if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		thousands := d.Div(decimal.NewFromInt(1000))
		return thousands.StringFixed(1) + "K"
	}
	return d.StringFixed(0)
}

func (tf *TableFormatter) formatIDs(ids []string) string {
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, ", ")
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
