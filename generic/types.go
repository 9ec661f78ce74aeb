/*
Package generic provides the domain-agnostic primitives of the settlement engine.

PURPOSE:
  Calendar arithmetic and money handling shared by every calculator. Nothing
  in this package knows about employees, payroll or settlements.

KEY CONCEPTS:
  - Money: decimal.Decimal values, rounded once at final assembly
  - Date / Period: UTC calendar dates and inclusive day windows (time.go, period.go)
  - ServicePeriod: calendar-accurate (years, months, days) tenure (time.go)

DESIGN PRINCIPLES:
  1. Precision: money uses decimal.Decimal to avoid floating-point drift
  2. UTC only: dates are UTC midnight so no local-timezone day shifts
  3. Late rounding: intermediate results keep full precision

USAGE:
  salary := generic.Money(3000)
  daily := salary.Div(decimal.NewFromInt(30))
  fmt.Println(generic.RoundMoney(daily)) // 100

SEE ALSO:
  - time.go: dates, month deltas, service period
  - period.go: inclusive calendar windows
  - errors.go: sentinel errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places money is rounded to.
const MoneyPlaces = 2

var (
	Hundred = decimal.NewFromInt(100)
	Twelve  = decimal.NewFromInt(12)
)

// EntityID identifies the subject of a calculation (an employee).
type EntityID string

// Money builds a decimal amount from a float input.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// MoneyFromInt builds a decimal amount from an integer input.
func MoneyFromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// RoundMoney rounds half away from zero to two places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// MustParseDecimal parses s, returning zero on malformed input.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// PositiveOr returns override when it is strictly positive, else fallback.
// Manual overrides replace computed values outright; they never add.
func PositiveOr(override *decimal.Decimal, fallback decimal.Decimal) (decimal.Decimal, bool) {
	if override != nil && override.IsPositive() {
		return *override, true
	}
	return fallback, false
}

// NonNegative floors n at zero.
func NonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
