package settlement

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/generic"
)

var (
	two  = decimal.NewFromInt(2)
	five = decimal.NewFromInt(5)
	ten  = decimal.NewFromInt(10)

	reductionNone        = decimal.Zero
	reductionOneThird    = decimal.RequireFromString("33.33")
	reductionTwoThirds   = decimal.RequireFromString("66.67")
	reductionFullForfeit = generic.Hundred
)

// CalculateEndOfService applies the tiered end-of-service formula.
//
// Tenure counts as years + months/12; leftover days are ignored. Each of the
// first five years earns half a month's basic salary, each later year a full
// month. Resignation reduces the result: below 2 years to nothing, below 5
// years to a third, below 10 years to two thirds. From 10 years on the full
// amount is paid either way. The amount is rounded to two places.
func CalculateEndOfService(hireDate, lastWorkingDate time.Time, basic decimal.Decimal, resigned bool) EndOfServiceCalculation {
	period := generic.ServicePeriodBetween(hireDate, lastWorkingDate)
	years := decimal.NewFromInt(int64(period.Years)).
		Add(decimal.NewFromInt(int64(period.Months)).Div(generic.Twelve))

	half := basic.Div(two)
	details := EndOfServiceDetails{
		YearsForCalculation: years,
		FullBenefitYears:    decimal.Zero,
		HalfBenefitYears:    years,
		ReductionPercentage: reductionNone,
	}

	var amount decimal.Decimal
	switch {
	case years.GreaterThanOrEqual(ten):
		details.HalfBenefitYears = five
		details.FullBenefitYears = years.Sub(five)
		amount = half.Mul(five).Add(basic.Mul(details.FullBenefitYears))

	case years.GreaterThanOrEqual(five):
		details.HalfBenefitYears = five
		details.FullBenefitYears = years.Sub(five)
		amount = half.Mul(five).Add(basic.Mul(details.FullBenefitYears))
		if resigned {
			amount = amount.Mul(two).Div(decimal.NewFromInt(3))
			details.ReductionPercentage = reductionOneThird
		}

	case years.GreaterThanOrEqual(two):
		amount = half.Mul(years)
		if resigned {
			amount = amount.Div(decimal.NewFromInt(3))
			details.ReductionPercentage = reductionTwoThirds
		}

	default:
		amount = half.Mul(years)
		if resigned {
			amount = decimal.Zero
			details.ReductionPercentage = reductionFullForfeit
		}
	}

	method := MethodTerminated
	if resigned {
		method = MethodResigned
	}

	return EndOfServiceCalculation{
		Service:       period,
		BenefitAmount: generic.RoundMoney(amount),
		Method:        method,
		Details:       details,
	}
}

// vacationEndOfService is the zero benefit carried by vacation settlements.
func vacationEndOfService(period generic.ServicePeriod) EndOfServiceCalculation {
	return EndOfServiceCalculation{
		Service:       period,
		BenefitAmount: decimal.Zero,
		Method:        MethodVacation,
		Details: EndOfServiceDetails{
			YearsForCalculation: decimal.Zero,
			FullBenefitYears:    decimal.Zero,
			HalfBenefitYears:    decimal.Zero,
			ReductionPercentage: reductionNone,
		},
	}
}
