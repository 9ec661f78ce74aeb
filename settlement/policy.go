package settlement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Policy holds the constants the calculators apply. DefaultPolicy matches
// Saudi labor practice; factory.ParsePolicy can override it from JSON.
type Policy struct {
	// DaysPerMonth divides monthly salary into a daily rate, regardless of
	// the actual month length.
	DaysPerMonth int

	// HoursPerDay divides the daily rate into an hourly rate for overtime.
	HoursPerDay int

	DefaultOvertimeMultiplier decimal.Decimal

	Currency string

	// WeekendDay is only counted absent when both neighbors are absent too.
	WeekendDay time.Weekday
}

func DefaultPolicy() Policy {
	return Policy{
		DaysPerMonth:              30,
		HoursPerDay:               8,
		DefaultOvertimeMultiplier: decimal.NewFromFloat(1.5),
		Currency:                  "SAR",
		WeekendDay:                time.Friday,
	}
}

// DailyRate is basic salary / DaysPerMonth.
func (p Policy) DailyRate(basic decimal.Decimal) decimal.Decimal {
	return basic.Div(decimal.NewFromInt(int64(p.DaysPerMonth)))
}

// HourlyRate is the daily rate / HoursPerDay.
func (p Policy) HourlyRate(basic decimal.Decimal) decimal.Decimal {
	return p.DailyRate(basic).Div(decimal.NewFromInt(int64(p.HoursPerDay)))
}

// OvertimeMultiplier picks the employee's multiplier, or the default.
func (p Policy) OvertimeMultiplier(e *Employee) decimal.Decimal {
	if e != nil && e.OvertimeMultiplier.IsPositive() {
		return e.OvertimeMultiplier
	}
	return p.DefaultOvertimeMultiplier
}
