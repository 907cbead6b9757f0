package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rgehrsitz/facplan/internal/breakeven"
	"github.com/rgehrsitz/facplan/internal/config"
	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/output"
	"github.com/spf13/cobra"
)

// addConstraintFlags registers the cross-project constraints on cmd
func addConstraintFlags(cmd *cobra.Command) {
	cmd.Flags().String("constraints", "", "YAML or JSON constraints file; flags override its values")
	cmd.Flags().String("budget", "", "Maximum total budget in dollars")
	cmd.Flags().Int("min-projects", 0, "Minimum number of projects to fund")
	cmd.Flags().Int("max-projects", 0, "Maximum number of projects to fund")
	cmd.Flags().StringSlice("require", nil, "Project ids that must be funded")
	cmd.Flags().StringSlice("exclude", nil, "Project ids that must not be funded")
	cmd.Flags().Float64("min-ci", 0, "Minimum CI improvement a funded project must deliver")
	cmd.Flags().Float64("max-risk", 0, "Maximum risk score a funded project may carry")
}

// constraintsFromFlags loads the constraints file, if any, and overlays the flags that were set
func constraintsFromFlags(cmd *cobra.Command) (domain.OptimizationConstraints, error) {
	var c domain.OptimizationConstraints
	if file, _ := cmd.Flags().GetString("constraints"); file != "" {
		loaded, err := config.NewInputParser().LoadConstraints(file)
		if err != nil {
			return c, err
		}
		c = loaded
	}

	flags := cmd.Flags()
	if s, _ := flags.GetString("budget"); s != "" {
		budget, err := parseMoney(s)
		if err != nil {
			return c, err
		}
		c.MaxBudget = budget
	}
	if flags.Changed("min-projects") {
		v, _ := flags.GetInt("min-projects")
		c.MinProjects = &v
	}
	if flags.Changed("max-projects") {
		v, _ := flags.GetInt("max-projects")
		c.MaxProjects = &v
	}
	if flags.Changed("require") {
		c.RequiredProjectIDs, _ = flags.GetStringSlice("require")
	}
	if flags.Changed("exclude") {
		c.ExcludedProjectIDs, _ = flags.GetStringSlice("exclude")
	}
	if flags.Changed("min-ci") {
		v, _ := flags.GetFloat64("min-ci")
		c.MinCIImprovement = &v
	}
	if flags.Changed("max-risk") {
		v, _ := flags.GetFloat64("max-risk")
		c.MaxRiskTolerance = &v
	}

	if !c.MaxBudget.IsPositive() {
		return c, &domain.ValidationError{Operation: "portfolio", Message: "a positive --budget or constraints max_budget is required"}
	}
	return c, nil
}

func metricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Summarize the condition of the whole portfolio",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			m, err := a.planner.GetPortfolioMetrics(cmd.Context())
			if err != nil {
				return err
			}
			return writeReport(cmd, output.NewMetricsReport(m, time.Now()))
		}),
	}
	addReportFlags(cmd)
	return cmd
}

func portfolioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Select the projects to fund under a budget",
		Long: `Select the subset of eligible projects that maximizes the replacement-value weighted
CI gain within the budget and the other constraints.

Examples:
  facplan portfolio --budget 3000000
  facplan portfolio --constraints constraints.yaml --max-projects 2`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			c, err := constraintsFromFlags(cmd)
			if err != nil {
				return err
			}
			result, err := a.planner.OptimizeAcrossProjects(cmd.Context(), c)
			if err != nil {
				return err
			}
			a.log.Info().
				Int("selected", len(result.SelectedProjects)).
				Str("total_cost", result.TotalCost.StringFixed(2)).
				Int("nodes", result.Solver.Nodes).
				Msg("portfolio optimized")
			return writeReport(cmd, output.NewPortfolioReport(result, time.Now()))
		}),
	}
	addConstraintFlags(cmd)
	addReportFlags(cmd)
	return cmd
}

func sensitivityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "Sweep the portfolio budget around a base value",
		Long: `Re-solve the portfolio at eleven budgets spread evenly over base ± range% and report
the CI improvement, marginal benefit and ROI at each.

Examples:
  facplan sensitivity --budget 3000000
  facplan sensitivity --budget 3000000 --range 20 --workers 4`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			c, err := constraintsFromFlags(cmd)
			if err != nil {
				return err
			}
			rangePct, _ := cmd.Flags().GetFloat64("range")
			analysis, err := a.planner.AnalyzeSensitivityWithConstraints(cmd.Context(), c, rangePct)
			if err != nil {
				return err
			}
			return writeReport(cmd, output.NewSensitivityReport(analysis, time.Now()))
		}),
	}
	addConstraintFlags(cmd)
	cmd.Flags().Float64("range", 50, "Sweep range as a percentage of the base budget (0-100)")
	addReportFlags(cmd)
	return cmd
}

func paretoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pareto",
		Short: "Show the cumulative cost / CI improvement frontier",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			points, err := a.planner.CalculateParetoFrontier(cmd.Context())
			if err != nil {
				return err
			}
			return writeReport(cmd, output.NewParetoReport(points, time.Now()))
		}),
	}
	addReportFlags(cmd)
	return cmd
}

func rankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank eligible projects by cost per CI point",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ranked, err := a.planner.GetCostEffectivenessRanking(cmd.Context())
			if err != nil {
				return err
			}
			return writeReport(cmd, output.NewRankingReport(ranked, time.Now()))
		}),
	}
	addReportFlags(cmd)
	return cmd
}

func breakEvenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "break-even",
		Short: "Find the smallest budget that reaches a portfolio target",
		Long: `Search for the cheapest portfolio budget that reaches a CI target.

Goals:
  ci_gain    replacement-value weighted CI gain over the eligible portfolio
  target_ci  replacement-value weighted CI after funding

Examples:
  facplan break-even --target 5
  facplan break-even --goal target_ci --target 60 --max 5000000
  facplan break-even --targets 2,4,6,8 --format json`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			req, targets, err := breakEvenRequestFromFlags(cmd)
			if err != nil {
				return err
			}
			if req.MaxBudget.IsZero() {
				points, err := a.planner.CalculateParetoFrontier(cmd.Context())
				if err != nil {
					return err
				}
				if len(points) == 0 {
					return &domain.ValidationError{Operation: "break_even", Message: "no eligible projects to fund"}
				}
				req.MaxBudget = points[len(points)-1].Cost
			}

			format, _ := cmd.Flags().GetString("format")
			if format != "table" && format != "json" {
				return fmt.Errorf("unknown output format: %s (valid: table, json)", format)
			}
			out := cmd.OutOrStdout()

			if len(targets) > 0 {
				curve, err := a.planner.FindBreakEvenCurve(cmd.Context(), req, targets)
				if err != nil {
					return err
				}
				if format == "json" {
					jf := &breakeven.JSONFormatter{Pretty: true}
					s, err := jf.FormatCurve(curve)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, s)
					return nil
				}
				tf := &breakeven.TableFormatter{}
				fmt.Fprint(out, tf.FormatCurve(curve))
				return nil
			}

			result, err := a.planner.FindBreakEven(cmd.Context(), req)
			if err != nil {
				return err
			}
			if format == "json" {
				jf := &breakeven.JSONFormatter{Pretty: true}
				s, err := jf.Format(result)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
				return nil
			}
			tf := &breakeven.TableFormatter{}
			fmt.Fprint(out, tf.Format(result))
			return nil
		}),
	}
	cmd.Flags().String("goal", string(breakeven.GoalCIGain), "Target kind: ci_gain or target_ci")
	cmd.Flags().Float64("target", 0, "Target value for the goal")
	cmd.Flags().String("targets", "", "Comma-separated targets for a break-even curve")
	cmd.Flags().String("min", "0", "Lower end of the budget search range")
	cmd.Flags().String("max", "", "Upper end of the budget search range (default: cost of every eligible project)")
	cmd.Flags().Int("max-iterations", 0, "Maximum budget probes (default 50)")
	cmd.Flags().String("constraints", "", "Constraints file whose non-budget limits apply at every probe")
	cmd.Flags().StringP("format", "f", "table", "Output format (table, json)")
	return cmd
}

func breakEvenRequestFromFlags(cmd *cobra.Command) (breakeven.Request, []float64, error) {
	flags := cmd.Flags()
	goal, _ := flags.GetString("goal")
	target, _ := flags.GetFloat64("target")
	req := breakeven.Request{Goal: breakeven.Goal(goal), Target: target}
	req.MaxIterations, _ = flags.GetInt("max-iterations")

	if file, _ := flags.GetString("constraints"); file != "" {
		c, err := config.NewInputParser().LoadConstraints(file)
		if err != nil {
			return req, nil, err
		}
		req.Constraints = c
	}

	minStr, _ := flags.GetString("min")
	minBudget, err := parseMoney(minStr)
	if err != nil {
		return req, nil, err
	}
	req.MinBudget = minBudget
	if maxStr, _ := flags.GetString("max"); maxStr != "" {
		maxBudget, err := parseMoney(maxStr)
		if err != nil {
			return req, nil, err
		}
		req.MaxBudget = maxBudget
	}

	var targets []float64
	if s, _ := flags.GetString("targets"); s != "" {
		for _, part := range strings.Split(s, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return req, nil, fmt.Errorf("invalid target %q", part)
			}
			targets = append(targets, v)
		}
	} else if !flags.Changed("target") {
		return req, nil, fmt.Errorf("--target or --targets is required")
	}
	return req, targets, nil
}
