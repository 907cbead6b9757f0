package calculation

import (
	"fmt"
	"math"

	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	irrLowerBound    = -0.99
	irrUpperBound    = 10.0
	irrMaxIterations = 200
	irrTolerance     = 1e-7
)

// PresentValue discounts amount received years from now at rate
func PresentValue(amount decimal.Decimal, years int, rate decimal.Decimal) decimal.Decimal {
	if years <= 0 || rate.IsZero() {
		return amount
	}
	factor := decimal.NewFromInt(1).Add(rate).Pow(decimal.NewFromInt(int64(years)))
	return amount.Div(factor)
}

// NPV discounts year-indexed benefit and cost series (index 0 is today) and returns their difference
func NPV(benefits, costs []decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for year, b := range benefits {
		total = total.Add(PresentValue(b, year, rate))
	}
	for year, c := range costs {
		total = total.Sub(PresentValue(c, year, rate))
	}
	return total
}

// NPVOfCashFlows discounts a net cash flow series where index 0 is today
func NPVOfCashFlows(flows []decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	return NPV(flows, nil, rate)
}

// ROI returns (benefit-cost)/cost as a percentage, zero when cost is zero
func ROI(benefit, cost decimal.Decimal) float64 {
	if cost.IsZero() {
		return 0
	}
	return benefit.Sub(cost).Div(cost).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// PaybackPeriod returns years to recover cost. never is returned when there is no annual benefit.
func PaybackPeriod(cost, annualBenefit decimal.Decimal, never float64) float64 {
	if annualBenefit.LessThanOrEqual(decimal.Zero) {
		return never
	}
	return cost.Div(annualBenefit).InexactFloat64()
}

// IRR finds the rate at which the cash flow series has zero NPV by bisection
func IRR(flows []decimal.Decimal) (float64, error) {
	values := make([]float64, len(flows))
	for i, f := range flows {
		values[i] = f.InexactFloat64()
	}
	npv := func(rate float64) float64 {
		total := 0.0
		for year, v := range values {
			total += v / math.Pow(1+rate, float64(year))
		}
		return total
	}

	lo, hi := irrLowerBound, irrUpperBound
	fLo, fHi := npv(lo), npv(hi)
	if math.IsNaN(fLo) || math.IsNaN(fHi) || fLo*fHi > 0 {
		return 0, &domain.NumericalError{
			Operation: "irr",
			Message:   fmt.Sprintf("no sign change between %.0f%% and %.0f%%", lo*100, hi*100),
		}
	}

	for i := 0; i < irrMaxIterations; i++ {
		mid := (lo + hi) / 2
		fMid := npv(mid)
		if math.Abs(fMid) < irrTolerance || (hi-lo)/2 < irrTolerance {
			return mid, nil
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo, fLo = mid, fMid
		}
	}
	return 0, &domain.NumericalError{
		Operation: "irr",
		Message:   fmt.Sprintf("did not converge within %d iterations", irrMaxIterations),
	}
}
