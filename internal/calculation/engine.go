package calculation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
)

// ComponentSource supplies component assessments for a project
type ComponentSource interface {
	Component(ctx context.Context, projectID, componentCode string) (domain.ComponentSnapshot, error)
	AssessedComponents(ctx context.Context, projectID string) ([]domain.ComponentSnapshot, error)
}

// CalculationEngine generates component strategies and optimizes single projects
type CalculationEngine struct {
	Source     ComponentSource
	Heuristics domain.Heuristics
	Logger     Logger
	Debug      bool             // Enable debug output for detailed calculations
	Now        func() time.Time // Clock used for the current planning year
}

// NewCalculationEngine creates an engine with the default heuristics
func NewCalculationEngine(source ComponentSource) *CalculationEngine {
	return NewCalculationEngineWithHeuristics(source, domain.DefaultHeuristics())
}

// NewCalculationEngineWithHeuristics creates an engine with custom heuristics
func NewCalculationEngineWithHeuristics(source ComponentSource, h domain.Heuristics) *CalculationEngine {
	return &CalculationEngine{
		Source:     source,
		Heuristics: h,
		Logger:     NopLogger{},
		Now:        time.Now,
	}
}

// SetLogger replaces the engine logger. A nil logger disables logging.
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

// CurrentYear returns the planning year according to the engine clock
func (ce *CalculationEngine) CurrentYear() int {
	if ce.Now == nil {
		return time.Now().Year()
	}
	return ce.Now().Year()
}

// plannedComponent tracks one component through single-project optimization
type plannedComponent struct {
	resolved ResolvedComponent
	options  []domain.StrategyOption
	selected domain.StrategyOption
}

func (ce *CalculationEngine) resolve(projectID string, snap domain.ComponentSnapshot) ResolvedComponent {
	rc := ResolveComponent(projectID, snap, ce.CurrentYear(), &ce.Heuristics)
	for _, d := range rc.Defaults {
		ce.Logger.Warnf("data defaulted: %s", d)
	}
	return rc
}

func (ce *CalculationEngine) generate(ctx context.Context, projectID, componentCode string, cfg domain.OptimizationConfig) (ResolvedComponent, []domain.StrategyOption, error) {
	if err := cfg.Validate(); err != nil {
		return ResolvedComponent{}, nil, err
	}
	snap, err := ce.Source.Component(ctx, projectID, componentCode)
	if err != nil {
		return ResolvedComponent{}, nil, fmt.Errorf("failed to load component %s in project %s: %w", componentCode, projectID, err)
	}
	rc := ce.resolve(projectID, snap)
	return rc, BuildStrategyOptions(rc, cfg, ce.CurrentYear(), &ce.Heuristics), nil
}

// GenerateStrategyOptions returns the four treatment options for a component
func (ce *CalculationEngine) GenerateStrategyOptions(ctx context.Context, projectID, componentCode string, cfg domain.OptimizationConfig) ([]domain.StrategyOption, error) {
	_, options, err := ce.generate(ctx, projectID, componentCode, cfg)
	if err != nil {
		return nil, err
	}
	return options, nil
}

// CompareStrategies returns the options for a component together with the goal's recommendation
func (ce *CalculationEngine) CompareStrategies(ctx context.Context, projectID, componentCode string, cfg domain.OptimizationConfig) (*domain.StrategyComparison, error) {
	rc, options, err := ce.generate(ctx, projectID, componentCode, cfg)
	if err != nil {
		return nil, err
	}
	recommended, err := SelectStrategy(options, cfg.OptimizationGoal)
	if err != nil {
		return nil, err
	}
	return &domain.StrategyComparison{
		Component:   rc.ComponentSnapshot,
		Strategies:  options,
		Recommended: recommended,
		Defaults:    rc.Defaults,
	}, nil
}

// OptimizeSingleProject selects one strategy per assessed component and, under a hard
// budget, trims the selection in cost-effectiveness order until it fits.
func (ce *CalculationEngine) OptimizeSingleProject(ctx context.Context, projectID string, cfg domain.OptimizationConfig) (*domain.OptimizationResult, error) {
	if cfg.ProjectID == "" {
		cfg.ProjectID = projectID
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	snapshots, err := ce.Source.AssessedComponents(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assessed components for project %s: %w", projectID, err)
	}
	if len(snapshots) == 0 {
		return nil, &domain.ValidationError{
			Operation: "optimize_single_project",
			Message:   fmt.Sprintf("project %s has no assessed components", projectID),
		}
	}

	year := ce.CurrentYear()
	plan := make([]plannedComponent, 0, len(snapshots))
	for _, snap := range snapshots {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rc := ce.resolve(projectID, snap)
		options := BuildStrategyOptions(rc, cfg, year, &ce.Heuristics)
		selected, err := SelectStrategy(options, cfg.OptimizationGoal)
		if err != nil {
			return nil, err
		}
		plan = append(plan, plannedComponent{resolved: rc, options: options, selected: selected})
	}

	deferred := []string{}
	if budget, ok := cfg.HardBudget(); ok {
		deferred = ce.trimToBudget(plan, budget)
	}

	result := ce.summarize(plan, cfg)
	result.ProjectID = projectID
	result.DeferredComponents = deferred
	result.CashFlows = ce.ProjectCashFlows(plan, cfg, year)

	if ce.Debug {
		ce.Logger.Debugf("project %s: %d components, cost %s, CI %.1f -> %.1f, %d deferred",
			projectID, len(plan), result.TotalCost.StringFixed(2), result.CurrentCI, result.ProjectedCI, len(deferred))
	}
	return result, nil
}

// trimToBudget accepts selections in descending cost-effectiveness while they fit. A rejected
// component falls back to its defer option, or to do_nothing when even deferral does not fit.
func (ce *CalculationEngine) trimToBudget(plan []plannedComponent, budget decimal.Decimal) []string {
	order := make([]int, len(plan))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return plan[order[a]].selected.CostEffectiveness > plan[order[b]].selected.CostEffectiveness
	})

	var deferred []string
	spent := decimal.Zero
	for _, idx := range order {
		pc := &plan[idx]
		if spent.Add(pc.selected.StrategyCost).LessThanOrEqual(budget) {
			spent = spent.Add(pc.selected.StrategyCost)
			continue
		}
		fallback, _ := OptionFor(pc.options, domain.StrategyDefer)
		if !spent.Add(fallback.StrategyCost).LessThanOrEqual(budget) {
			fallback, _ = OptionFor(pc.options, domain.StrategyDoNothing)
		}
		ce.Logger.Infof("component %s: %s does not fit remaining budget, using %s",
			pc.resolved.ComponentCode, pc.selected.Strategy, fallback.Strategy)
		pc.selected = fallback
		spent = spent.Add(fallback.StrategyCost)
		deferred = append(deferred, pc.resolved.ComponentCode)
	}

	sort.Strings(deferred)
	if deferred == nil {
		deferred = []string{}
	}
	return deferred
}

func (ce *CalculationEngine) summarize(plan []plannedComponent, cfg domain.OptimizationConfig) *domain.OptimizationResult {
	h := &ce.Heuristics
	n := float64(len(plan))

	var conditionBefore, conditionAfter, riskBefore, riskReduced float64
	totalRepair, residualRepair, totalReplacement := decimal.Zero, decimal.Zero, decimal.Zero
	totalCost, pvCost, totalBenefit := decimal.Zero, decimal.Zero, decimal.Zero
	selections := make([]domain.StrategyOption, 0, len(plan))
	var defaults []domain.DataDefault

	for _, pc := range plan {
		rc := pc.resolved
		sel := pc.selected

		conditionBefore += rc.Condition
		conditionAfter += rc.Condition + sel.ConditionImprovement
		riskBefore += 100 - rc.Condition
		riskReduced += sel.RiskReduction

		totalRepair = totalRepair.Add(rc.RepairCost)
		residualRepair = residualRepair.Add(residualRepairCost(rc, sel.ConditionImprovement))
		totalReplacement = totalReplacement.Add(rc.ReplacementCost)

		totalCost = totalCost.Add(sel.StrategyCost)
		pvCost = pvCost.Add(sel.PresentValueCost)
		totalBenefit = totalBenefit.Add(sel.TotalBenefit())

		selections = append(selections, sel)
		defaults = append(defaults, rc.Defaults...)
	}

	result := &domain.OptimizationResult{
		Config:             cfg,
		TotalCost:          totalCost,
		TotalBenefit:       totalBenefit,
		CurrentCI:          conditionBefore / n,
		ProjectedCI:        conditionAfter / n,
		CurrentRiskScore:   riskBefore,
		SelectedStrategies: selections,
		Defaults:           defaults,
	}
	result.CIImprovement = result.ProjectedCI - result.CurrentCI

	if totalReplacement.IsPositive() {
		hundred := decimal.NewFromInt(100)
		result.CurrentFCI = totalRepair.Div(totalReplacement).Mul(hundred).InexactFloat64()
		result.ProjectedFCI = residualRepair.Div(totalReplacement).Mul(hundred).InexactFloat64()
	}
	result.FCIImprovement = result.CurrentFCI - result.ProjectedFCI

	result.ProjectedRiskScore = riskBefore - riskReduced
	if result.ProjectedRiskScore < 0 {
		result.ProjectedRiskScore = 0
	}
	result.RiskReduction = result.CurrentRiskScore - result.ProjectedRiskScore

	horizon := decimal.NewFromInt(int64(cfg.TimeHorizon))
	annualBenefit := totalBenefit.Div(horizon)
	benefits := make([]decimal.Decimal, cfg.TimeHorizon+1)
	benefits[0] = decimal.Zero
	for y := 1; y <= cfg.TimeHorizon; y++ {
		benefits[y] = annualBenefit
	}
	result.NetPresentValue = NPV(benefits, []decimal.Decimal{pvCost}, cfg.DiscountRate).Round(2)
	result.ReturnOnInvestment = ROI(totalBenefit, totalCost)
	result.PaybackPeriod = PaybackPeriod(totalCost, annualBenefit, h.PaybackNeverYears)

	if totalCost.IsPositive() && totalBenefit.IsPositive() {
		flows := append([]decimal.Decimal{totalCost.Neg()}, benefits[1:]...)
		if irr, err := IRR(flows); err != nil {
			ce.Logger.Warnf("internal rate of return unavailable: %v", err)
		} else {
			result.InternalRateOfReturn = &irr
		}
	}
	return result
}

// residualRepairCost scales repair cost by the share of the condition gap left after treatment
func residualRepairCost(rc ResolvedComponent, improvement float64) decimal.Decimal {
	gap := 100 - rc.Condition
	if gap <= 0 || improvement <= 0 {
		return rc.RepairCost
	}
	if improvement >= gap {
		return decimal.Zero
	}
	return rc.RepairCost.Mul(decimal.NewFromFloat(1 - improvement/gap))
}
