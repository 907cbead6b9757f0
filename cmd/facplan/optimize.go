package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rgehrsitz/facplan/internal/compare"
	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/output"
	"github.com/rgehrsitz/facplan/internal/transform"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// addConfigFlags registers the single-project optimization settings on cmd
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("budget", "", "Budget constraint in dollars (default: unconstrained)")
	cmd.Flags().String("budget-type", string(domain.BudgetSoft), "Budget type: hard or soft")
	cmd.Flags().Int("horizon", 10, "Analysis horizon in years")
	cmd.Flags().Float64("discount-rate", 0.03, "Annual discount rate, e.g. 0.03")
	cmd.Flags().String("goal", string(domain.GoalMaximizeROI), "Goal: minimize_cost, maximize_ci, maximize_roi, minimize_risk")
	cmd.Flags().StringSlice("transform", nil, "Config transforms applied in order, e.g. scale_budget:percent=80")
}

// configFromFlags builds an optimization config from the defaults, the flags and any transforms
func configFromFlags(cmd *cobra.Command, projectID string) (domain.OptimizationConfig, error) {
	cfg := domain.DefaultOptimizationConfig(projectID)

	if s, _ := cmd.Flags().GetString("budget"); s != "" {
		budget, err := parseMoney(s)
		if err != nil {
			return cfg, err
		}
		cfg.BudgetConstraint = &budget
	}
	budgetType, _ := cmd.Flags().GetString("budget-type")
	cfg.BudgetType = domain.BudgetType(budgetType)
	cfg.TimeHorizon, _ = cmd.Flags().GetInt("horizon")
	rate, _ := cmd.Flags().GetFloat64("discount-rate")
	cfg.DiscountRate = decimal.NewFromFloat(rate)
	goal, _ := cmd.Flags().GetString("goal")
	cfg.OptimizationGoal = domain.OptimizationGoal(goal)

	specs, _ := cmd.Flags().GetStringSlice("transform")
	if len(specs) > 0 {
		registry := transform.NewTransformRegistry()
		transforms := make([]transform.ConfigTransform, 0, len(specs))
		for _, spec := range specs {
			t, err := registry.ParseTransformSpec(spec)
			if err != nil {
				return cfg, err
			}
			transforms = append(transforms, t)
		}
		modified, err := transform.ApplyTransforms(cfg, transforms)
		if err != nil {
			return cfg, err
		}
		cfg = modified
	}

	return cfg, cfg.Validate()
}

// writeReport renders r in the format named by the --format flag and optionally saves it
func writeReport(cmd *cobra.Command, r *output.Report) error {
	format, _ := cmd.Flags().GetString("format")
	f, err := output.GetFormatter(format)
	if err != nil {
		return err
	}
	if err := output.WriteFormatted(cmd.OutOrStdout(), f, r); err != nil {
		return err
	}

	dir, _ := cmd.Flags().GetString("save-dir")
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	path, err := output.SaveReport(dir, f, r)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to %s\n", path)
	return nil
}

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "console", "Output format ("+strings.Join(output.FormatNames(), ", ")+")")
	cmd.Flags().String("save-dir", "", "Also save the report into this directory")
}

func strategiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategies [project-id] [component-code]",
		Short: "Compare repair, replace, defer and do-nothing for one component",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			cfg, err := configFromFlags(cmd, args[0])
			if err != nil {
				return err
			}
			sc, err := a.planner.CompareStrategies(cmd.Context(), args[0], args[1], cfg)
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			switch format {
			case "table":
				tf := &compare.TableFormatter{}
				fmt.Fprint(cmd.OutOrStdout(), tf.FormatStrategies(sc))
			case "csv":
				cf := &compare.CSVFormatter{}
				out, err := cf.FormatStrategies(sc)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
			case "json":
				jf := &compare.JSONFormatter{Pretty: true}
				out, err := jf.FormatStrategies(sc)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			default:
				return fmt.Errorf("unknown output format: %s (valid: table, csv, json)", format)
			}
			return nil
		}),
	}
	addConfigFlags(cmd)
	cmd.Flags().StringP("format", "f", "table", "Output format (table, csv, json)")
	return cmd
}

func optimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize [project-id]",
		Short: "Choose a strategy for every assessed component of a project",
		Long: `Optimize one project: pick a strategy per assessed component, apply the budget and
project cash flows over the horizon.

Examples:
  facplan optimize P-100
  facplan optimize P-100 --budget 75000 --budget-type hard --goal maximize_ci
  facplan optimize P-100 --transform scale_budget:percent=80 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			cfg, err := configFromFlags(cmd, args[0])
			if err != nil {
				return err
			}
			result, err := a.planner.OptimizeSingleProject(cmd.Context(), args[0], cfg)
			if err != nil {
				return err
			}
			a.log.Info().
				Str("project_id", result.ProjectID).
				Str("total_cost", result.TotalCost.StringFixed(2)).
				Float64("ci_improvement", result.CIImprovement).
				Msg("project optimized")
			return writeReport(cmd, output.NewOptimizationReport(result, time.Now()))
		}),
	}
	addConfigFlags(cmd)
	addReportFlags(cmd)
	return cmd
}

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [project-id]",
		Short: "Compare a project plan against alternative configurations",
		Long: `Optimize a project under a base configuration and under built-in templates.

Examples:
  facplan compare P-100 --with unconstrained,horizon_20yr
  facplan compare P-100 --budget 80000 --budget-type hard --with budget_50,budget_125 --format csv
  facplan compare --list-templates`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := transform.CreateBuiltInTemplates()
			if list, _ := cmd.Flags().GetBool("list-templates"); list {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Available templates:")
				for _, name := range registry.List() {
					t, _ := registry.Get(name)
					fmt.Fprintf(out, "  %-16s %s\n", name, t.Description)
				}
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("project id required for comparison (use --list-templates to see available templates)")
			}
			return withApp(runCompare)(cmd, args)
		},
	}
	addConfigFlags(cmd)
	cmd.Flags().String("base", "base", "Display name of the base configuration")
	cmd.Flags().String("with", "", "Comma-separated list of templates to compare")
	cmd.Flags().StringP("format", "f", "table", "Output format (table, compact, csv, json)")
	cmd.Flags().Bool("list-templates", false, "List all available templates")
	return cmd
}

func runCompare(cmd *cobra.Command, args []string, a *app) error {
	templatesStr, _ := cmd.Flags().GetString("with")
	if templatesStr == "" {
		return fmt.Errorf("--with is required (use --list-templates to see available templates)")
	}
	var templates []string
	for _, name := range strings.Split(templatesStr, ",") {
		if name = strings.TrimSpace(name); name != "" {
			templates = append(templates, name)
		}
	}

	cfg, err := configFromFlags(cmd, args[0])
	if err != nil {
		return err
	}
	baseName, _ := cmd.Flags().GetString("base")

	engine := compare.NewCompareEngine(a.planner.Engine)
	set, err := engine.Compare(cmd.Context(), args[0], cfg, compare.CompareOptions{
		BaseScenarioName: baseName,
		Templates:        templates,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "table":
		tf := &compare.TableFormatter{}
		fmt.Fprint(out, tf.Format(set))
	case "compact":
		tf := &compare.TableFormatter{}
		fmt.Fprint(out, tf.FormatCompact(set))
	case "csv":
		cf := &compare.CSVFormatter{}
		s, err := cf.Format(set)
		if err != nil {
			return err
		}
		fmt.Fprint(out, s)
	case "json":
		jf := &compare.JSONFormatter{Pretty: true}
		s, err := jf.Format(set)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, s)
	default:
		return fmt.Errorf("unknown output format: %s (valid: table, compact, csv, json)", format)
	}
	return nil
}
