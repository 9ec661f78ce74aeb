package generic

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date wire format used everywhere (ISO 8601 date).
const DateLayout = "2006-01-02"

// =============================================================================
// CALENDAR DATES - All dates are UTC midnight
// =============================================================================

// Date returns the UTC midnight for the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf strips the clock from t, keeping t's own calendar components.
func DateOf(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// UTCDateOf converts t to UTC first, then strips the clock.
func UTCDateOf(t time.Time) time.Time {
	u := t.UTC()
	return Date(u.Year(), u.Month(), u.Day())
}

// ParseDate parses an ISO date as a UTC calendar date. Parsing never goes
// through local time, so "2024-03-01" is always March 1st.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q (use YYYY-MM-DD): %v", ErrInvalidInput, s, err)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func StartOfMonth(year int, month time.Month) time.Time { return Date(year, month, 1) }

func EndOfMonth(year int, month time.Month) time.Time {
	return Date(year, month+1, 1).AddDate(0, 0, -1)
}

// DaysIn returns the number of days in the month. Out-of-range months are
// normalized, so DaysIn(2024, 0) is December 2023.
func DaysIn(year int, month time.Month) int {
	return EndOfMonth(year, month).Day()
}

// FirstOfNextMonth returns the first day of the month after year/month.
func FirstOfNextMonth(year int, month time.Month) time.Time {
	return Date(year, month+1, 1)
}

// DaysBetween counts whole days from `from` to `to`, ignoring clocks.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// MonthsBetween is the calendar-month delta between two dates, ignoring the
// day of month: (to.year - from.year) * 12 + (to.month - from.month).
func MonthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// =============================================================================
// SERVICE PERIOD - Calendar-accurate (years, months, days) decomposition
// =============================================================================

// ServicePeriod is elapsed time split into whole years, remaining months
// (0-11) and remaining days.
type ServicePeriod struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// ServicePeriodBetween decomposes the span from start to end.
//
// Components are subtracted field by field. A negative day difference borrows
// a month and adds the length of the month preceding end (repeated when start's
// day exceeds that month's length); a negative month difference borrows a year.
// An end before start yields the zero period.
func ServicePeriodBetween(start, end time.Time) ServicePeriod {
	start, end = DateOf(start), DateOf(end)
	if end.Before(start) {
		return ServicePeriod{}
	}

	years := end.Year() - start.Year()
	months := int(end.Month()) - int(start.Month())
	days := end.Day() - start.Day()

	borrowFrom := end.Month() - 1
	for days < 0 {
		months--
		days += DaysIn(end.Year(), borrowFrom)
		borrowFrom--
	}
	for months < 0 {
		years--
		months += 12
	}

	return ServicePeriod{Years: years, Months: months, Days: days}
}

// AddTo applies the period to start. For any end >= start,
// ServicePeriodBetween(start, end).AddTo(start) == end.
func (p ServicePeriod) AddTo(start time.Time) time.Time {
	return DateOf(start).AddDate(p.Years, p.Months, p.Days)
}

// IsZero reports whether no time elapsed.
func (p ServicePeriod) IsZero() bool { return p.Years == 0 && p.Months == 0 && p.Days == 0 }

func (p ServicePeriod) String() string {
	return fmt.Sprintf("%dy %dm %dd", p.Years, p.Months, p.Days)
}
