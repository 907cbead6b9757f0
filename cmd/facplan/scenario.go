package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/output"
	"github.com/spf13/cobra"
)

func scenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Manage saved planning scenarios",
		Long: `Scenarios store an optimization configuration for a project and move through
draft -> optimized -> approved -> implemented. Use --db or FACPLAN_DB to keep them
between runs.`,
	}

	create := &cobra.Command{
		Use:   "create [project-id] [name]",
		Short: "Save a draft scenario",
		Args:  cobra.ExactArgs(2),
		RunE: withScenarioApp(func(cmd *cobra.Command, args []string, a *app) error {
			cfg, err := configFromFlags(cmd, args[0])
			if err != nil {
				return err
			}
			description, _ := cmd.Flags().GetString("description")
			sc, err := a.planner.CreateScenario(cmd.Context(), args[0], args[1], description, cfg)
			if err != nil {
				return err
			}
			return printScenario(cmd, sc)
		}),
	}
	addConfigFlags(create)
	create.Flags().String("description", "", "Scenario description")
	create.Flags().StringP("format", "f", "text", "Output format (text, json)")

	run := &cobra.Command{
		Use:   "run [scenario-id]",
		Short: "Optimize a scenario and store the result",
		Args:  cobra.ExactArgs(1),
		RunE: withScenarioApp(func(cmd *cobra.Command, args []string, a *app) error {
			_, result, err := a.planner.RunScenario(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeReport(cmd, output.NewOptimizationReport(result, time.Now()))
		}),
	}
	addReportFlags(run)

	approve := &cobra.Command{
		Use:   "approve [scenario-id]",
		Short: "Approve an optimized scenario",
		Args:  cobra.ExactArgs(1),
		RunE: withScenarioApp(func(cmd *cobra.Command, args []string, a *app) error {
			sc, err := a.planner.ApproveScenario(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printScenario(cmd, sc)
		}),
	}
	approve.Flags().StringP("format", "f", "text", "Output format (text, json)")

	implement := &cobra.Command{
		Use:   "implement [scenario-id]",
		Short: "Mark an approved scenario as implemented",
		Args:  cobra.ExactArgs(1),
		RunE: withScenarioApp(func(cmd *cobra.Command, args []string, a *app) error {
			sc, err := a.planner.ImplementScenario(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printScenario(cmd, sc)
		}),
	}
	implement.Flags().StringP("format", "f", "text", "Output format (text, json)")

	show := &cobra.Command{
		Use:   "show [scenario-id]",
		Short: "Show a scenario with its strategies and cash flows",
		Args:  cobra.ExactArgs(1),
		RunE: withScenarioApp(func(cmd *cobra.Command, args []string, a *app) error {
			sc, err := a.planner.GetScenario(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printScenario(cmd, sc)
		}),
	}
	show.Flags().StringP("format", "f", "text", "Output format (text, json)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List scenarios, optionally for one project",
		Args:  cobra.NoArgs,
		RunE: withScenarioApp(func(cmd *cobra.Command, args []string, a *app) error {
			projectID, _ := cmd.Flags().GetString("project")
			scenarios, err := a.planner.ListScenarios(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			if format, _ := cmd.Flags().GetString("format"); format == "json" {
				return writeJSON(cmd.OutOrStdout(), scenarios)
			}
			writeScenarioList(cmd.OutOrStdout(), scenarios)
			return nil
		}),
	}
	list.Flags().String("project", "", "Only list scenarios of this project")
	list.Flags().StringP("format", "f", "text", "Output format (text, json)")

	del := &cobra.Command{
		Use:   "delete [scenario-id]",
		Short: "Delete a scenario and its stored results",
		Args:  cobra.ExactArgs(1),
		RunE: withScenarioApp(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.planner.DeleteScenario(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted scenario %s\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(create, run, approve, implement, show, list, del)
	return cmd
}

// withScenarioApp is withApp with a warning when scenarios will not outlive the process
func withScenarioApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if a.db == nil {
			a.log.Warn().Msg("no scenario database configured; scenarios are kept in memory and lost on exit")
		}
		return fn(cmd, args, a)
	})
}

func printScenario(cmd *cobra.Command, sc *domain.Scenario) error {
	out := cmd.OutOrStdout()
	if format, _ := cmd.Flags().GetString("format"); format == "json" {
		return writeJSON(out, sc)
	}

	fmt.Fprintf(out, "Scenario:  %s\n", sc.ID)
	fmt.Fprintf(out, "Name:      %s\n", sc.Name)
	fmt.Fprintf(out, "Project:   %s\n", sc.ProjectID)
	fmt.Fprintf(out, "Status:    %s\n", sc.Status)
	if sc.Description != "" {
		fmt.Fprintf(out, "Notes:     %s\n", sc.Description)
	}
	fmt.Fprintf(out, "Config:    goal %s, %d years, discount %s, budget %s\n",
		sc.Config.OptimizationGoal, sc.Config.TimeHorizon, sc.Config.DiscountRate.String(), budgetLabel(sc.Config))
	if sc.OptimizedAt == nil {
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Total Cost:    %s\n", output.FormatCurrency(sc.TotalCost))
	fmt.Fprintf(out, "Total Benefit: %s\n", output.FormatCurrency(sc.TotalBenefit))
	fmt.Fprintf(out, "NPV:           %s\n", output.FormatCurrency(sc.NetPresentValue))
	fmt.Fprintf(out, "ROI:           %s\n", output.FormatPercentage(sc.ReturnOnInvestment))
	fmt.Fprintf(out, "Payback:       %.1f years\n", sc.PaybackPeriod)
	fmt.Fprintf(out, "Projected CI:  %.1f   FCI: %.1f\n", sc.ProjectedCI, sc.ProjectedFCI)

	if len(sc.Strategies) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%-10s %-13s %6s %14s\n", "Component", "Strategy", "Year", "Cost")
		fmt.Fprintln(out, strings.Repeat("-", 46))
		for _, s := range sc.Strategies {
			fmt.Fprintf(out, "%-10s %-13s %6d %14s\n", s.ComponentCode, s.Strategy, s.ActionYear, output.FormatCurrency(s.StrategyCost))
		}
	}
	if len(sc.CashFlows) > 0 {
		fmt.Fprintf(out, "\nCash flows: %d years (%d to %d)\n",
			len(sc.CashFlows), sc.CashFlows[0].Year, sc.CashFlows[len(sc.CashFlows)-1].Year)
	}
	return nil
}

func writeScenarioList(w io.Writer, scenarios []domain.Scenario) {
	if len(scenarios) == 0 {
		fmt.Fprintln(w, "No scenarios saved")
		return
	}
	fmt.Fprintf(w, "%-36s %-10s %-24s %-12s %14s\n", "ID", "Project", "Name", "Status", "Total Cost")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, sc := range scenarios {
		cost := "-"
		if sc.OptimizedAt != nil {
			cost = output.FormatCurrency(sc.TotalCost)
		}
		fmt.Fprintf(w, "%-36s %-10s %-24s %-12s %14s\n", sc.ID, sc.ProjectID, sc.Name, sc.Status, cost)
	}
}

func budgetLabel(c domain.OptimizationConfig) string {
	if c.BudgetConstraint == nil {
		return "unconstrained"
	}
	return fmt.Sprintf("%s (%s)", output.FormatCurrency(*c.BudgetConstraint), c.BudgetType)
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
