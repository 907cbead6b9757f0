package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rgehrsitz/facplan/internal/domain"
)

// ConsoleFormatter renders a report as plain text tables
type ConsoleFormatter struct{}

func (ConsoleFormatter) Name() string { return "console" }

func (cf ConsoleFormatter) Format(r *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", 80))
	fmt.Fprintln(&buf, strings.ToUpper(r.Title))
	fmt.Fprintln(&buf, strings.Repeat("=", 80))
	fmt.Fprintln(&buf)

	switch r.Kind {
	case KindOptimization:
		cf.optimization(&buf, r.Optimization)
	case KindPortfolio:
		cf.portfolio(&buf, r.Portfolio)
	case KindSensitivity:
		cf.sensitivity(&buf, r.Sensitivity)
	case KindPareto:
		cf.pareto(&buf, r.Pareto)
	case KindRanking:
		cf.ranking(&buf, r.Ranking)
	case KindMetrics:
		cf.metrics(&buf, r.Metrics)
	default:
		return nil, fmt.Errorf("unknown report kind %q", r.Kind)
	}
	return buf.Bytes(), nil
}

func (cf ConsoleFormatter) optimization(buf *bytes.Buffer, res *domain.OptimizationResult) {
	fmt.Fprintf(buf, "Goal: %s   Horizon: %d years   Budget: %s\n",
		res.Config.OptimizationGoal, res.Config.TimeHorizon, describeBudget(res.Config))
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "SELECTED STRATEGIES")
	fmt.Fprintln(buf, strings.Repeat("-", 80))
	fmt.Fprintf(buf, "%-10s %-13s %6s %14s %14s %8s\n", "Component", "Strategy", "Year", "Cost", "PV Cost", "+Cond")
	for _, s := range res.SelectedStrategies {
		fmt.Fprintf(buf, "%-10s %-13s %6d %14s %14s %8.1f\n",
			s.ComponentCode, s.Strategy, s.ActionYear,
			FormatCurrency(s.StrategyCost), FormatCurrency(s.PresentValueCost), s.ConditionImprovement)
	}
	if len(res.DeferredComponents) > 0 {
		fmt.Fprintf(buf, "Deferred to fit budget: %s\n", strings.Join(res.DeferredComponents, ", "))
	}
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "FINANCIAL SUMMARY")
	fmt.Fprintln(buf, strings.Repeat("-", 80))
	fmt.Fprintf(buf, "Total Cost:          %s\n", FormatCurrency(res.TotalCost))
	fmt.Fprintf(buf, "Total Benefit:       %s\n", FormatCurrency(res.TotalBenefit))
	fmt.Fprintf(buf, "Net Present Value:   %s\n", FormatCurrency(res.NetPresentValue))
	fmt.Fprintf(buf, "Return on Investment: %s\n", FormatPercentage(res.ReturnOnInvestment))
	fmt.Fprintf(buf, "Payback Period:      %.1f years\n", res.PaybackPeriod)
	if res.InternalRateOfReturn != nil {
		fmt.Fprintf(buf, "Internal Rate of Return: %s\n", FormatPercentage(*res.InternalRateOfReturn*100))
	}
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "CONDITION")
	fmt.Fprintln(buf, strings.Repeat("-", 80))
	fmt.Fprintf(buf, "CI:   %.1f -> %.1f (%+.1f)\n", res.CurrentCI, res.ProjectedCI, res.CIImprovement)
	fmt.Fprintf(buf, "FCI:  %.1f -> %.1f (%+.1f)\n", res.CurrentFCI, res.ProjectedFCI, -res.FCIImprovement)
	fmt.Fprintf(buf, "Risk: %.1f -> %.1f\n", res.CurrentRiskScore, res.ProjectedRiskScore)
	fmt.Fprintln(buf)

	if len(res.CashFlows) > 0 {
		fmt.Fprintln(buf, "CASH FLOWS")
		fmt.Fprintln(buf, strings.Repeat("-", 80))
		fmt.Fprintf(buf, "%-6s %14s %14s %14s %16s %6s\n", "Year", "Cost", "Benefit", "Net", "Cumulative", "CI")
		for _, cf := range res.CashFlows {
			fmt.Fprintf(buf, "%-6d %14s %14s %14s %16s %6.1f\n",
				cf.Year, FormatCurrency(cf.TotalCost), FormatCurrency(cf.TotalBenefit),
				FormatCurrency(cf.NetCashFlow), FormatCurrency(cf.CumulativeCashFlow), cf.ProjectedCI)
		}
		fmt.Fprintln(buf)
	}

	if len(res.Defaults) > 0 {
		fmt.Fprintln(buf, "DATA DEFAULTS")
		fmt.Fprintln(buf, strings.Repeat("-", 80))
		for _, d := range res.Defaults {
			fmt.Fprintf(buf, "• %s\n", d)
		}
	}
}

func (cf ConsoleFormatter) portfolio(buf *bytes.Buffer, res *domain.PortfolioResult) {
	fmt.Fprintf(buf, "%-10s %-24s %14s %8s %8s %8s\n", "Project", "Name", "Cost", "+CI", "-FCI", "Pts/$M")
	fmt.Fprintln(buf, strings.Repeat("-", 80))
	for _, p := range res.SelectedProjects {
		fmt.Fprintf(buf, "%-10s %-24s %14s %8.1f %8.1f %8.2f\n",
			p.ProjectID, truncate(p.Name, 24), FormatCurrency(p.Cost), p.CIImprovement, p.FCIImprovement, p.CIPerMillion)
	}
	if len(res.SelectedProjects) == 0 {
		fmt.Fprintln(buf, "(no projects selected)")
	}
	fmt.Fprintln(buf)
	fmt.Fprintf(buf, "Total Cost:          %s (%s of budget)\n", FormatCurrency(res.TotalCost), FormatPercentage(res.BudgetUtilization))
	fmt.Fprintf(buf, "Portfolio CI:        %.2f -> %.2f\n", res.BeforeCI, res.AfterCI)
	fmt.Fprintf(buf, "Portfolio FCI:       %.2f -> %.2f\n", res.BeforeFCI, res.AfterFCI)
	fmt.Fprintf(buf, "Solver:              %d nodes, optimal=%t\n", res.Solver.Nodes, res.Solver.ProvenOptimal)
}

func (cf ConsoleFormatter) sensitivity(buf *bytes.Buffer, a *domain.SensitivityAnalysis) {
	fmt.Fprintf(buf, "Base Budget: %s   Range: ±%.0f%%\n", FormatCurrency(a.BaseBudget), a.RangePercent)
	fmt.Fprintln(buf)
	fmt.Fprintf(buf, "%-16s %9s %16s %8s %10s %10s\n", "Budget", "Projects", "Cost", "+CI", "Marginal", "ROI")
	fmt.Fprintln(buf, strings.Repeat("-", 80))
	for _, l := range a.BudgetLevels {
		marker := ""
		if l.Budget.Equal(a.BaseBudget) {
			marker = " ← BASE"
		}
		fmt.Fprintf(buf, "%-16s %9d %16s %8.1f %10.1f %10.6f%s\n",
			FormatCurrency(l.Budget), l.ProjectCount, FormatCurrency(l.TotalCost), l.CIImprovement, l.MarginalBenefit, l.ROI, marker)
	}
	if skipped := len(a.RequestedLevels) - len(a.BudgetLevels); skipped > 0 {
		fmt.Fprintf(buf, "(%d infeasible budget levels omitted)\n", skipped)
	}
	fmt.Fprintln(buf)
	fmt.Fprintf(buf, "Optimal Budget (best ROI): %s\n", FormatCurrency(a.OptimalBudget))
	fmt.Fprintf(buf, "Inflection Point:          %s\n", FormatCurrency(a.InflectionPoint))
}

func (cf ConsoleFormatter) pareto(buf *bytes.Buffer, points []domain.ParetoPoint) {
	fmt.Fprintf(buf, "%-4s %16s %8s %8s  %s\n", "#", "Cumulative Cost", "+CI", "-FCI", "Projects")
	fmt.Fprintln(buf, strings.Repeat("-", 80))
	for i, p := range points {
		fmt.Fprintf(buf, "%-4d %16s %8.1f %8.1f  %s\n",
			i+1, FormatCurrency(p.Cost), p.CIImprovement, p.FCIImprovement, strings.Join(p.Projects, ", "))
	}
}

func (cf ConsoleFormatter) ranking(buf *bytes.Buffer, ranked []domain.RankedProject) {
	fmt.Fprintf(buf, "%-5s %-10s %-24s %14s %8s %14s\n", "Rank", "Project", "Name", "Cost", "+CI", "$/CI point")
	fmt.Fprintln(buf, strings.Repeat("-", 80))
	for _, p := range ranked {
		fmt.Fprintf(buf, "%-5d %-10s %-24s %14s %8.1f %14s\n",
			p.Rank, p.ProjectID, truncate(p.Name, 24), FormatCurrency(p.Cost), p.CIImprovement, formatCostPerPoint(p.CostPerCIPoint))
	}
}

func (cf ConsoleFormatter) metrics(buf *bytes.Buffer, m *domain.PortfolioMetrics) {
	fmt.Fprintf(buf, "Projects:                    %d\n", m.TotalProjects)
	fmt.Fprintf(buf, "Total Replacement Value:     %s\n", FormatCurrency(m.TotalReplacementValue))
	fmt.Fprintf(buf, "Total Deferred Maintenance:  %s\n", FormatCurrency(m.TotalDeferredMaintenance))
	fmt.Fprintf(buf, "Weighted CI:                 %.2f\n", m.WeightedCI)
	fmt.Fprintf(buf, "Weighted FCI:                %.2f\n", m.WeightedFCI)
	fmt.Fprintf(buf, "Average Priority Score:      %.2f\n", m.AveragePriorityScore)
}

func describeBudget(c domain.OptimizationConfig) string {
	if c.BudgetConstraint == nil {
		return "none"
	}
	return fmt.Sprintf("%s (%s)", FormatCurrency(*c.BudgetConstraint), c.BudgetType)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
