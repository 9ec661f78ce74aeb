package generic

import "time"

// =============================================================================
// PERIOD - An inclusive calendar-day window
// =============================================================================

// Period is the inclusive window [Start, End] of UTC calendar dates.
// A period whose End is before its Start is empty.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod builds a period from two dates, stripping clocks.
func NewPeriod(start, end time.Time) Period {
	return Period{Start: DateOf(start), End: DateOf(end)}
}

// MonthPeriod covers the whole calendar month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// PreviousMonth is the calendar month immediately before the month containing t.
func PreviousMonth(t time.Time) Period {
	first := StartOfMonth(t.Year(), t.Month()).AddDate(0, -1, 0)
	return MonthPeriod(first.Year(), first.Month())
}

// IsEmpty reports whether the period contains no days.
func (p Period) IsEmpty() bool { return p.End.Before(p.Start) }

// Contains returns true if t falls within [Start, End].
func (p Period) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Len is the number of calendar days in the period (0 when empty).
func (p Period) Len() int {
	if p.IsEmpty() {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// Days returns every day in the period, in order.
func (p Period) Days() []time.Time {
	days := make([]time.Time, 0, p.Len())
	for current := p.Start; !current.After(p.End); current = current.AddDate(0, 0, 1) {
		days = append(days, current)
	}
	return days
}

// Widen extends the period by n days on both sides.
func (p Period) Widen(n int) Period {
	return Period{Start: p.Start.AddDate(0, 0, -n), End: p.End.AddDate(0, 0, n)}
}

func (p Period) String() string {
	return "[" + FormatDate(p.Start) + ", " + FormatDate(p.End) + "]"
}
