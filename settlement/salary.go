package settlement

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/generic"
)

// UnpaidSalary determines how many whole calendar months of salary are owed.
//
// The unpaid window starts on the first day of the month after the last paid
// payroll period, or on the hire date when nothing was ever paid, and runs to
// today. When a paid period exists the month count excludes it. The count
// never goes below zero.
func (s *Service) UnpaidSalary(ctx context.Context, id generic.EntityID) (UnpaidSalaryInfo, error) {
	emp, err := s.employee(ctx, id)
	if err != nil {
		return UnpaidSalaryInfo{}, err
	}

	basic, allowances, err := s.currentSalary(ctx, emp)
	if err != nil {
		return UnpaidSalaryInfo{}, err
	}

	paid, err := s.Store.PaidPayrolls(ctx, id)
	if err != nil {
		return UnpaidSalaryInfo{}, fmt.Errorf("load paid payrolls for %s: %w", id, err)
	}

	info := UnpaidSalaryInfo{
		EmployeeID:  id,
		BasicSalary: basic,
		Allowances:  allowances,
	}

	windowStart := emp.HireDate
	if len(paid) > 0 {
		last := paid[0]
		info.LastPaidMonth = last.Month
		info.LastPaidYear = last.Year
		info.LastPaidDate = last.PaidAt
		windowStart = generic.FirstOfNextMonth(last.Year, last.Month)
	}

	months := generic.MonthsBetween(windowStart, s.today())
	info.TotalUnpaidMonths = generic.NonNegative(months)
	if info.HasLastPaid() {
		months--
	}
	info.UnpaidMonths = generic.NonNegative(months)
	info.UnpaidAmount = info.MonthlySalary().Mul(decimal.NewFromInt(int64(info.UnpaidMonths)))

	return info, nil
}
