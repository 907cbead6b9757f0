package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// MemoryDSN opens a private in-memory database
const MemoryDSN = ":memory:"

// timeLayout is fixed width so text ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS scenarios (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	config TEXT NOT NULL,
	status TEXT NOT NULL,
	total_cost TEXT NOT NULL DEFAULT '0',
	total_benefit TEXT NOT NULL DEFAULT '0',
	net_present_value TEXT NOT NULL DEFAULT '0',
	return_on_investment REAL NOT NULL DEFAULT 0,
	payback_period REAL NOT NULL DEFAULT 0,
	projected_ci REAL NOT NULL DEFAULT 0,
	projected_fci REAL NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	optimized_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_scenarios_project ON scenarios(project_id);

CREATE TABLE IF NOT EXISTS scenario_strategies (
	scenario_id TEXT NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	component_code TEXT NOT NULL,
	strategy TEXT NOT NULL,
	action_year INTEGER NOT NULL,
	deferral_years INTEGER NOT NULL DEFAULT 0,
	strategy_cost TEXT NOT NULL,
	present_value_cost TEXT NOT NULL,
	life_extension INTEGER NOT NULL DEFAULT 0,
	condition_improvement REAL NOT NULL DEFAULT 0,
	risk_reduction REAL NOT NULL DEFAULT 0,
	failure_cost_avoided TEXT NOT NULL,
	maintenance_savings TEXT NOT NULL,
	cost_effectiveness REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (scenario_id, position)
);

CREATE TABLE IF NOT EXISTS scenario_cash_flows (
	scenario_id TEXT NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
	year INTEGER NOT NULL,
	capital_expenditure TEXT NOT NULL,
	maintenance_cost TEXT NOT NULL,
	operating_cost TEXT NOT NULL,
	total_cost TEXT NOT NULL,
	cost_avoidance TEXT NOT NULL,
	efficiency_gains TEXT NOT NULL,
	total_benefit TEXT NOT NULL,
	net_cash_flow TEXT NOT NULL,
	cumulative_cash_flow TEXT NOT NULL,
	projected_ci REAL NOT NULL DEFAULT 0,
	projected_fci REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (scenario_id, year)
);
`

// scenarioColumns is the header column list, in scan order
var scenarioColumns = []string{
	"id", "project_id", "name", "description", "config", "status",
	"total_cost", "total_benefit", "net_present_value", "return_on_investment", "payback_period",
	"projected_ci", "projected_fci", "created_at", "updated_at", "optimized_at",
}

var strategyColumns = []string{
	"scenario_id", "position", "component_code", "strategy", "action_year", "deferral_years",
	"strategy_cost", "present_value_cost", "life_extension", "condition_improvement", "risk_reduction",
	"failure_cost_avoided", "maintenance_savings", "cost_effectiveness",
}

var cashFlowColumns = []string{
	"scenario_id", "year", "capital_expenditure", "maintenance_cost", "operating_cost", "total_cost",
	"cost_avoidance", "efficiency_gains", "total_benefit", "net_cash_flow", "cumulative_cash_flow",
	"projected_ci", "projected_fci",
}

// SQLStore persists scenarios in SQLite
type SQLStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// OpenSQLStore opens (creating if needed) the SQLite database at path and migrates it.
// Pass MemoryDSN for a throwaway database.
func OpenSQLStore(path string, log zerolog.Logger) (*SQLStore, error) {
	dsn := MemoryDSN + "?_pragma=foreign_keys(1)"
	if path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		// Use WAL mode for better concurrency
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == MemoryDSN {
		// Every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	s, err := NewSQLStore(db, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open database and migrates the scenario schema
func NewSQLStore(db *sql.DB, log zerolog.Logger) (*SQLStore, error) {
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := &SQLStore{db: db, log: log.With().Str("repo", "scenario").Logger()}
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Migrate creates the scenario tables if they do not exist
func (s *SQLStore) Migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate scenario schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying connection
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) CreateScenario(ctx context.Context, sc *domain.Scenario) error {
	config, err := json.Marshal(sc.Config)
	if err != nil {
		return fmt.Errorf("failed to encode scenario config: %w", err)
	}

	query, args, err := sq.Insert("scenarios").
		Columns(scenarioColumns...).
		Values(
			sc.ID, sc.ProjectID, sc.Name, sc.Description, string(config), string(sc.Status),
			sc.TotalCost, sc.TotalBenefit, sc.NetPresentValue, sc.ReturnOnInvestment, sc.PaybackPeriod,
			sc.ProjectedCI, sc.ProjectedFCI, formatTime(sc.CreatedAt), formatTime(sc.UpdatedAt), formatTimePtr(sc.OptimizedAt),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM scenarios WHERE id = ?", sc.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check scenario id: %w", err)
	}
	if exists > 0 {
		return &domain.ValidationError{Operation: "create_scenario", Message: fmt.Sprintf("scenario %s already exists", sc.ID)}
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert scenario: %w", err)
	}
	if err := insertChildren(ctx, tx, sc); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scenario: %w", err)
	}

	s.log.Debug().Str("scenario", sc.ID).Str("project", sc.ProjectID).Msg("scenario created")
	return nil
}

func (s *SQLStore) GetScenario(ctx context.Context, id string) (*domain.Scenario, error) {
	query, args, err := sq.Select(scenarioColumns...).
		From("scenarios").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenario: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query scenario: %w", err)
		}
		return nil, scenarioNotFound("get_scenario", id)
	}
	sc, err := scanScenario(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenario: %w", err)
	}
	rows.Close()

	if sc.Strategies, err = s.loadStrategies(ctx, id); err != nil {
		return nil, err
	}
	if sc.CashFlows, err = s.loadCashFlows(ctx, id); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *SQLStore) ListScenarios(ctx context.Context, projectID string) ([]domain.Scenario, error) {
	builder := sq.Select(scenarioColumns...).
		From("scenarios").
		OrderBy("created_at", "id")
	if projectID != "" {
		builder = builder.Where(sq.Eq{"project_id": projectID})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenarios: %w", err)
	}
	defer rows.Close()

	scenarios := []domain.Scenario{}
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		scenarios = append(scenarios, *sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scenarios: %w", err)
	}
	return scenarios, nil
}

func (s *SQLStore) SaveOptimization(ctx context.Context, sc *domain.Scenario) error {
	query, args, err := sq.Update("scenarios").
		Set("status", string(sc.Status)).
		Set("total_cost", sc.TotalCost).
		Set("total_benefit", sc.TotalBenefit).
		Set("net_present_value", sc.NetPresentValue).
		Set("return_on_investment", sc.ReturnOnInvestment).
		Set("payback_period", sc.PaybackPeriod).
		Set("projected_ci", sc.ProjectedCI).
		Set("projected_fci", sc.ProjectedFCI).
		Set("updated_at", formatTime(sc.UpdatedAt)).
		Set("optimized_at", formatTimePtr(sc.OptimizedAt)).
		Where(sq.Eq{"id": sc.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update scenario: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return scenarioNotFound("save_optimization", sc.ID)
	}

	if err := deleteChildren(ctx, tx, sc.ID); err != nil {
		return err
	}
	if err := insertChildren(ctx, tx, sc); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit optimization: %w", err)
	}

	s.log.Debug().
		Str("scenario", sc.ID).
		Int("strategies", len(sc.Strategies)).
		Int("cash_flows", len(sc.CashFlows)).
		Msg("optimization saved")
	return nil
}

func (s *SQLStore) UpdateStatus(ctx context.Context, id string, status domain.ScenarioStatus, at time.Time) error {
	query, args, err := sq.Update("scenarios").
		Set("status", string(status)).
		Set("updated_at", formatTime(at)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update scenario status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return scenarioNotFound("update_status", id)
	}
	s.log.Debug().Str("scenario", id).Str("status", string(status)).Msg("scenario status updated")
	return nil
}

func (s *SQLStore) DeleteScenario(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Children go first so the delete does not depend on the foreign_keys pragma
	if err := deleteChildren(ctx, tx, id); err != nil {
		return err
	}

	query, args, err := sq.Delete("scenarios").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return scenarioNotFound("delete_scenario", id)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	s.log.Debug().Str("scenario", id).Msg("scenario deleted")
	return nil
}

// CountChildRows reports how many strategy and cash-flow rows reference a scenario
func (s *SQLStore) CountChildRows(ctx context.Context, id string) (strategies, cashFlows int, err error) {
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM scenario_strategies WHERE scenario_id = ?", id).Scan(&strategies)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count strategies: %w", err)
	}
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM scenario_cash_flows WHERE scenario_id = ?", id).Scan(&cashFlows)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count cash flows: %w", err)
	}
	return strategies, cashFlows, nil
}

func (s *SQLStore) loadStrategies(ctx context.Context, id string) ([]domain.StrategyOption, error) {
	query, args, err := sq.Select(strategyColumns[2:]...).
		From("scenario_strategies").
		Where(sq.Eq{"scenario_id": id}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategies: %w", err)
	}
	defer rows.Close()

	var out []domain.StrategyOption
	for rows.Next() {
		var o domain.StrategyOption
		var strategy string
		if err := rows.Scan(
			&o.ComponentCode, &strategy, &o.ActionYear, &o.DeferralYears,
			&o.StrategyCost, &o.PresentValueCost, &o.LifeExtension, &o.ConditionImprovement, &o.RiskReduction,
			&o.FailureCostAvoided, &o.MaintenanceSavings, &o.CostEffectiveness,
		); err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}
		o.Strategy = domain.StrategyType(strategy)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating strategies: %w", err)
	}
	return out, nil
}

func (s *SQLStore) loadCashFlows(ctx context.Context, id string) ([]domain.CashFlowProjection, error) {
	query, args, err := sq.Select(cashFlowColumns[1:]...).
		From("scenario_cash_flows").
		Where(sq.Eq{"scenario_id": id}).
		OrderBy("year").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash flows: %w", err)
	}
	defer rows.Close()

	var out []domain.CashFlowProjection
	for rows.Next() {
		var cf domain.CashFlowProjection
		if err := rows.Scan(
			&cf.Year, &cf.CapitalExpenditure, &cf.MaintenanceCost, &cf.OperatingCost, &cf.TotalCost,
			&cf.CostAvoidance, &cf.EfficiencyGains, &cf.TotalBenefit, &cf.NetCashFlow, &cf.CumulativeCashFlow,
			&cf.ProjectedCI, &cf.ProjectedFCI,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cash flow: %w", err)
		}
		out = append(out, cf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cash flows: %w", err)
	}
	return out, nil
}

func insertChildren(ctx context.Context, tx *sql.Tx, sc *domain.Scenario) error {
	if len(sc.Strategies) > 0 {
		builder := sq.Insert("scenario_strategies").Columns(strategyColumns...)
		for i, o := range sc.Strategies {
			builder = builder.Values(
				sc.ID, i, o.ComponentCode, string(o.Strategy), o.ActionYear, o.DeferralYears,
				o.StrategyCost, o.PresentValueCost, o.LifeExtension, o.ConditionImprovement, o.RiskReduction,
				o.FailureCostAvoided, o.MaintenanceSavings, o.CostEffectiveness,
			)
		}
		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build strategy insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert strategies: %w", err)
		}
	}

	if len(sc.CashFlows) > 0 {
		builder := sq.Insert("scenario_cash_flows").Columns(cashFlowColumns...)
		for _, cf := range sc.CashFlows {
			builder = builder.Values(
				sc.ID, cf.Year, cf.CapitalExpenditure, cf.MaintenanceCost, cf.OperatingCost, cf.TotalCost,
				cf.CostAvoidance, cf.EfficiencyGains, cf.TotalBenefit, cf.NetCashFlow, cf.CumulativeCashFlow,
				cf.ProjectedCI, cf.ProjectedFCI,
			)
		}
		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build cash flow insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert cash flows: %w", err)
		}
	}
	return nil
}

func deleteChildren(ctx context.Context, tx *sql.Tx, id string) error {
	for _, table := range []string{"scenario_strategies", "scenario_cash_flows"} {
		query, args, err := sq.Delete(table).Where(sq.Eq{"scenario_id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete rows from %s: %w", table, err)
		}
	}
	return nil
}

func scanScenario(rows *sql.Rows) (*domain.Scenario, error) {
	var sc domain.Scenario
	var config, status, createdAt, updatedAt string
	var optimizedAt sql.NullString

	if err := rows.Scan(
		&sc.ID, &sc.ProjectID, &sc.Name, &sc.Description, &config, &status,
		&sc.TotalCost, &sc.TotalBenefit, &sc.NetPresentValue, &sc.ReturnOnInvestment, &sc.PaybackPeriod,
		&sc.ProjectedCI, &sc.ProjectedFCI, &createdAt, &updatedAt, &optimizedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(config), &sc.Config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	sc.Status = domain.ScenarioStatus(status)

	var err error
	if sc.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if sc.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if optimizedAt.Valid {
		t, err := parseTime(optimizedAt.String)
		if err != nil {
			return nil, err
		}
		sc.OptimizedAt = &t
	}
	return &sc, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse time %q: %w", s, err)
	}
	return t, nil
}
