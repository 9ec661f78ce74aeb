package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/generic"
)

// AbsenceInput selects the employee, window and salary for an absence calculation.
type AbsenceInput struct {
	EmployeeID generic.EntityID
	Period     CalculationPeriod

	// Start and End are read only for PeriodCustom; both are required there.
	Start *time.Time
	End   *time.Time

	// BasicSalary overrides the current salary lookup when set.
	BasicSalary *decimal.Decimal
}

// CalculateAbsence counts absent days in the selected window and converts them
// into a deduction at basic salary / DaysPerMonth per day.
//
// Timesheets are read one day past each edge of the window. A weekend day on
// the first or last day of the window is therefore judged by a neighbor that
// lies outside it; only days inside the window are ever counted.
func (s *Service) CalculateAbsence(ctx context.Context, in AbsenceInput) (AbsentCalculation, error) {
	emp, err := s.employee(ctx, in.EmployeeID)
	if err != nil {
		return AbsentCalculation{}, err
	}

	var basic decimal.Decimal
	if in.BasicSalary != nil {
		basic = *in.BasicSalary
	} else if basic, _, err = s.currentSalary(ctx, emp); err != nil {
		return AbsentCalculation{}, err
	}

	mode, window, err := s.absenceWindow(ctx, in)
	if err != nil {
		return AbsentCalculation{}, err
	}

	s.logger().DebugContext(ctx, "absence window resolved",
		"employee_id", in.EmployeeID, "period", mode, "window", window.String())

	var sheets []TimesheetRecord
	if !window.IsEmpty() {
		// One extra day each side so weekend neighbors at the edges are real data.
		fetch := window.Widen(1)
		sheets, err = s.Store.Timesheets(ctx, in.EmployeeID, fetch.Start, fetch.End)
		if err != nil {
			return AbsentCalculation{}, fmt.Errorf("load timesheets for %s: %w", in.EmployeeID, err)
		}
	}

	absent := DetectAbsences(window, sheets, s.Policy.WeekendDay)
	dates := make([]string, len(absent))
	for i, d := range absent {
		dates[i] = generic.FormatDate(d)
	}

	daily := s.Policy.DailyRate(basic)
	total := window.Len()

	return AbsentCalculation{
		AbsentDays:        len(absent),
		DeductionAmount:   daily.Mul(decimal.NewFromInt(int64(len(absent)))),
		CalculationPeriod: mode,
		StartDate:         window.Start,
		EndDate:           window.End,
		DailyRate:         daily,
		Details: AbsentDetails{
			TotalDaysInPeriod: total,
			WorkingDays:       total - len(absent),
			AbsentDates:       dates,
		},
	}, nil
}

// absenceWindow resolves the calculation mode into a concrete window. Unknown
// modes, and custom without both dates, fall back to the previous month.
func (s *Service) absenceWindow(ctx context.Context, in AbsenceInput) (CalculationPeriod, generic.Period, error) {
	today := s.today()

	switch in.Period {
	case PeriodCustom:
		if in.Start != nil && in.End != nil {
			return PeriodCustom, generic.NewPeriod(generic.UTCDateOf(*in.Start), generic.UTCDateOf(*in.End)), nil
		}

	case PeriodUnpaid:
		info, err := s.UnpaidSalary(ctx, in.EmployeeID)
		if err != nil {
			return "", generic.Period{}, err
		}
		// The window follows the month the last salary was actually paid in.
		// Without a paid-at date the reference is today itself, so the window
		// starts next month and comes out empty.
		ref := today
		if info.LastPaidDate != nil {
			ref = generic.UTCDateOf(*info.LastPaidDate)
		}
		return PeriodUnpaid, generic.NewPeriod(generic.FirstOfNextMonth(ref.Year(), ref.Month()), today), nil
	}

	return PeriodLastMonth, generic.PreviousMonth(today), nil
}

// DetectAbsences returns the absent days of window, in order.
//
// A day is present when its timesheet shows regular or overtime hours. Any
// other day is absent, except the weekend day: it is absent only when the
// days on both sides of it are absent as well. Sheets outside the window are
// consulted only as weekend neighbors.
func DetectAbsences(window generic.Period, sheets []TimesheetRecord, weekend time.Weekday) []time.Time {
	worked := make(map[string]bool, len(sheets))
	for _, ts := range sheets {
		key := generic.FormatDate(ts.Date)
		worked[key] = worked[key] || ts.HasHours()
	}
	hasHours := func(d time.Time) bool { return worked[generic.FormatDate(d)] }

	var absent []time.Time
	for _, day := range window.Days() {
		if hasHours(day) {
			continue
		}
		if day.Weekday() == weekend {
			before, after := day.AddDate(0, 0, -1), day.AddDate(0, 0, 1)
			if hasHours(before) || hasHours(after) {
				continue
			}
		}
		absent = append(absent, day)
	}
	return absent
}
