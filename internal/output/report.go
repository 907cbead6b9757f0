// Package output renders planning results for people and for other programs.
package output

import (
	"fmt"
	"math"
	"time"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
)

// Kind identifies which result a report carries
type Kind string

const (
	KindOptimization Kind = "optimization"
	KindPortfolio    Kind = "portfolio"
	KindSensitivity  Kind = "sensitivity"
	KindPareto       Kind = "pareto"
	KindRanking      Kind = "ranking"
	KindMetrics      Kind = "metrics"
)

// Report wraps exactly one planning result together with display metadata
type Report struct {
	Kind        Kind      `json:"kind" yaml:"kind"`
	Title       string    `json:"title" yaml:"title"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	Optimization *domain.OptimizationResult  `json:"optimization,omitempty" yaml:"optimization,omitempty"`
	Portfolio    *domain.PortfolioResult     `json:"portfolio,omitempty" yaml:"portfolio,omitempty"`
	Sensitivity  *domain.SensitivityAnalysis `json:"sensitivity,omitempty" yaml:"sensitivity,omitempty"`
	Pareto       []domain.ParetoPoint        `json:"pareto,omitempty" yaml:"pareto,omitempty"`
	Ranking      []domain.RankedProject      `json:"ranking,omitempty" yaml:"ranking,omitempty"`
	Metrics      *domain.PortfolioMetrics    `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// NewOptimizationReport wraps a single-project optimization
func NewOptimizationReport(r *domain.OptimizationResult, at time.Time) *Report {
	return &Report{Kind: KindOptimization, Title: "Capital Plan for Project " + r.ProjectID, GeneratedAt: at, Optimization: r}
}

// NewPortfolioReport wraps a cross-project selection
func NewPortfolioReport(r *domain.PortfolioResult, at time.Time) *Report {
	return &Report{Kind: KindPortfolio, Title: "Portfolio Selection", GeneratedAt: at, Portfolio: r}
}

// NewSensitivityReport wraps a budget sweep
func NewSensitivityReport(a *domain.SensitivityAnalysis, at time.Time) *Report {
	return &Report{Kind: KindSensitivity, Title: "Budget Sensitivity", GeneratedAt: at, Sensitivity: a}
}

// NewParetoReport wraps a Pareto frontier
func NewParetoReport(points []domain.ParetoPoint, at time.Time) *Report {
	return &Report{Kind: KindPareto, Title: "Cost / Improvement Frontier", GeneratedAt: at, Pareto: points}
}

// NewRankingReport wraps a cost-effectiveness ranking
func NewRankingReport(ranked []domain.RankedProject, at time.Time) *Report {
	return &Report{Kind: KindRanking, Title: "Cost-Effectiveness Ranking", GeneratedAt: at, Ranking: ranked}
}

// NewMetricsReport wraps portfolio metrics
func NewMetricsReport(m domain.PortfolioMetrics, at time.Time) *Report {
	return &Report{Kind: KindMetrics, Title: "Portfolio Metrics", GeneratedAt: at, Metrics: &m}
}

// Validate checks that the report carries the result its kind names
func (r *Report) Validate() error {
	ok := false
	switch r.Kind {
	case KindOptimization:
		ok = r.Optimization != nil
	case KindPortfolio:
		ok = r.Portfolio != nil
	case KindSensitivity:
		ok = r.Sensitivity != nil
	case KindPareto:
		ok = r.Pareto != nil
	case KindRanking:
		ok = r.Ranking != nil
	case KindMetrics:
		ok = r.Metrics != nil
	default:
		return fmt.Errorf("unknown report kind %q", r.Kind)
	}
	if !ok {
		return fmt.Errorf("%s report has no result", r.Kind)
	}
	return nil
}

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a float as a percentage with one decimal
func FormatPercentage(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// formatCostPerPoint shows an unbounded cost per point as n/a
func formatCostPerPoint(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("$%.2f", v)
}
