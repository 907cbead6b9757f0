package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rgehrsitz/facplan/internal/config"
	"github.com/rgehrsitz/facplan/internal/logging"
	"github.com/rgehrsitz/facplan/internal/planner"
	"github.com/rgehrsitz/facplan/internal/portfolio"
	"github.com/rgehrsitz/facplan/internal/store"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app bundles what every planning command needs
type app struct {
	settings config.Settings
	log      zerolog.Logger
	dataset  *store.Dataset
	planner  *planner.Planner
	db       *store.SQLStore
}

// Close releases the scenario database, if one was opened
func (a *app) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// newApp resolves settings from the environment and the persistent flags, loads the dataset
// and builds a planner over it
func newApp(cmd *cobra.Command) (*app, error) {
	settings := config.LoadSettings()
	overrideSetting(cmd, "data", &settings.DataFile)
	overrideSetting(cmd, "db", &settings.DBPath)
	overrideSetting(cmd, "heuristics", &settings.HeuristicsFile)
	overrideSetting(cmd, "log-level", &settings.LogLevel)

	pretty, _ := cmd.Flags().GetBool("pretty-log")
	l := logging.New(logging.Config{Level: settings.LogLevel, Pretty: pretty, Out: cmd.ErrOrStderr()})

	if !fileExists(settings.DataFile) {
		return nil, fmt.Errorf("data file not found: %s", settings.DataFile)
	}
	dataset, err := config.NewInputParser().LoadFromFile(settings.DataFile)
	if err != nil {
		return nil, err
	}

	heuristics, err := config.LoadHeuristics(settings.HeuristicsFile)
	if err != nil {
		return nil, err
	}

	a := &app{settings: settings, log: l, dataset: dataset}
	var scenarios store.ScenarioStore
	if settings.DBPath != "" {
		db, err := store.OpenSQLStore(settings.DBPath, l)
		if err != nil {
			return nil, err
		}
		a.db = db
		scenarios = db
	}

	a.planner = planner.New(dataset, scenarios, heuristics)
	a.planner.SetLogger(logging.NewAdapter(l, "planner"))
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		a.planner.SetParallelism(workers)
	}

	l.Debug().
		Str("data", settings.DataFile).
		Int("projects", len(dataset.Projects)).
		Bool("persistent_scenarios", a.db != nil).
		Msg("planner ready")
	return a, nil
}

// withApp wraps a command body with app setup and teardown
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}

func overrideSetting(cmd *cobra.Command, flag string, target *string) {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		*target = v
	}
}

// fileExists checks if a file exists
func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// parseMoney reads a dollar amount, accepting $ and thousands separators
func parseMoney(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("$", "", ",", "", "_", "", " ", "").Replace(s)
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "facplan %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the facility dataset",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			out := cmd.OutOrStdout()
			projects, err := a.planner.Optimizer.LoadProjects(cmd.Context())
			if err != nil {
				return err
			}
			eligible := len(portfolio.EligibleProjects(projects))
			components := 0
			for _, p := range a.dataset.Projects {
				components += len(p.Components)
			}

			fmt.Fprintf(out, "✅ %s is valid\n", a.settings.DataFile)
			if a.dataset.Name != "" {
				fmt.Fprintf(out, "Dataset:    %s\n", a.dataset.Name)
			}
			fmt.Fprintf(out, "Projects:   %d (%d eligible for funding)\n", len(projects), eligible)
			fmt.Fprintf(out, "Components: %d\n", components)
			return nil
		}),
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "facplan",
		Short: "Facility capital planning optimizer",
		Long: `Optimize repair, replacement and deferral decisions for building components and
select which facility projects to fund under a capital budget.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("data", "", "Facility dataset file (default $FACPLAN_DATA or facilities.yaml)")
	root.PersistentFlags().String("db", "", "SQLite scenario database (default $FACPLAN_DB, empty keeps scenarios in memory)")
	root.PersistentFlags().String("heuristics", "", "Heuristics override file (default $FACPLAN_HEURISTICS)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default $FACPLAN_LOG_LEVEL or info)")
	root.PersistentFlags().Bool("pretty-log", false, "Human readable log output")
	root.PersistentFlags().Int("workers", 0, "Concurrent solves for budget sweeps (default 1, sequential)")

	root.AddCommand(validateCmd())
	root.AddCommand(metricsCmd())
	root.AddCommand(strategiesCmd())
	root.AddCommand(optimizeCmd())
	root.AddCommand(compareCmd())
	root.AddCommand(portfolioCmd())
	root.AddCommand(sensitivityCmd())
	root.AddCommand(paretoCmd())
	root.AddCommand(rankCmd())
	root.AddCommand(breakEvenCmd())
	root.AddCommand(scenarioCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	return root
}

var rootCmd = newRootCmd()

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
