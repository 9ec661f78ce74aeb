package settlement_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/settlement"
)

// exitFixture: hired 2016-03-01 at 3000, last paid June 2024 (one month
// owed), August fully worked, today 2024-09-15.
func exitFixture(t *testing.T) *fixture {
	f := newFixture(t, day(2024, time.September, 15))
	f.employee("emp-1", day(2016, time.March, 1), "3000")
	f.payroll("emp-1", 2024, time.June, settlement.PayrollPaid)
	f.worked("emp-1", day(2024, time.July, 31), day(2024, time.September, 1), true)
	return f
}

func assertBalanced(t *testing.T, final settlement.FinalCalculation) {
	t.Helper()
	assert.True(t, final.NetAmount.Equal(final.GrossAmount.Sub(final.TotalDeductions)),
		"net %s != gross %s - deductions %s", final.NetAmount, final.GrossAmount, final.TotalDeductions)
	for _, v := range []string{final.GrossAmount.String(), final.TotalDeductions.String(), final.NetAmount.String()} {
		assert.Equal(t, v, generic.MustParseDecimal(v).Round(2).String())
	}
}

func TestCalculateExitSettlement_Resignation(t *testing.T) {
	// GIVEN: 8 years of service, resigning on 2024-03-01 terms
	f := exitFixture(t)

	// WHEN
	data, err := f.svc.CalculateExitSettlement(f.ctx, settlement.ExitInput{
		EmployeeID:      "emp-1",
		LastWorkingDate: day(2024, time.March, 1),
		IsResignation:   true,
	})
	require.NoError(t, err)

	// THEN: 11000 end-of-service plus one unpaid month
	assert.Equal(t, settlement.TypeExit, data.Type)
	assert.Nil(t, data.Vacation)
	assert.True(t, data.IsResignation)
	assert.Equal(t, settlement.MethodResigned, data.EndOfService.Method)
	assert.Equal(t, generic.ServicePeriod{Years: 8}, data.Service.Period)

	b := data.Final.Breakdown
	assert.Equal(t, "11000.00", b.EndOfServiceBenefit.StringFixed(2))
	assert.Equal(t, "3000.00", b.UnpaidSalaries.StringFixed(2))
	assert.Equal(t, "14000.00", data.Final.GrossAmount.StringFixed(2))
	assert.True(t, data.Final.TotalDeductions.IsZero())
	assertBalanced(t, data.Final)
}

func TestCalculateExitSettlement_AllLineItems(t *testing.T) {
	// GIVEN: every additional line item set
	f := exitFixture(t)
	absent := 2
	extra := settlement.AdditionalData{
		OvertimeHours:       decPtr("10"),
		AccruedVacationDays: dec("15"),
		OtherBenefits:       dec("250.50"),
		PendingAdvances:     dec("1000"),
		EquipmentDeductions: dec("300"),
		OtherDeductions:     dec("99.99"),
		ManualAbsentDays:    &absent,
	}

	// WHEN
	data, err := f.svc.CalculateExitSettlement(f.ctx, settlement.ExitInput{
		EmployeeID:      "emp-1",
		LastWorkingDate: day(2024, time.September, 1),
		Extra:           extra,
	})
	require.NoError(t, err)

	// THEN
	b := data.Final.Breakdown
	// hourly 3000/30/8 = 12.5, x1.5 x10h
	assert.Equal(t, "187.50", b.OvertimeAmount.StringFixed(2))
	// daily 100 x 15 days
	assert.Equal(t, "1500.00", b.AccruedVacationAmount.StringFixed(2))
	assert.Equal(t, 2, b.AbsentDays)
	assert.Equal(t, "200.00", b.AbsenceDeduction.StringFixed(2))
	// 8y6m terminated: 7500 + 3000 x 3.5
	assert.Equal(t, "18000.00", b.EndOfServiceBenefit.StringFixed(2))

	// 3000 + 18000 + 1500 + 187.50 + 250.50
	assert.Equal(t, "22938.00", data.Final.GrossAmount.StringFixed(2))
	// 1000 + 300 + 99.99 + 200
	assert.Equal(t, "1599.99", data.Final.TotalDeductions.StringFixed(2))
	assert.Equal(t, "21338.01", data.Final.NetAmount.StringFixed(2))
	assertBalanced(t, data.Final)
}

func TestCalculateExitSettlement_ManualOverrides(t *testing.T) {
	f := exitFixture(t)
	emp, err := f.store.GetEmployee(f.ctx, "emp-1")
	require.NoError(t, err)
	emp.OvertimeMultiplier = dec("2")
	require.NoError(t, f.store.SaveEmployee(f.ctx, *emp))

	data, err := f.svc.CalculateExitSettlement(f.ctx, settlement.ExitInput{
		EmployeeID:      "emp-1",
		LastWorkingDate: day(2024, time.September, 1),
		Extra: settlement.AdditionalData{
			ManualUnpaidSalary: decPtr("4500"),
			OvertimeHours:      decPtr("4"),
		},
	})
	require.NoError(t, err)

	// Manual unpaid salary replaces the computed amount; months are derived.
	assert.Equal(t, "4500.00", data.Final.Breakdown.UnpaidSalaries.StringFixed(2))
	assert.Equal(t, "1.5", data.Salary.UnpaidMonths.String())
	// Employee multiplier 2: 12.5 x 2 x 4h
	assert.Equal(t, "100.00", data.Final.Breakdown.OvertimeAmount.StringFixed(2))

	// A manual overtime amount wins over hours.
	data, err = f.svc.CalculateExitSettlement(f.ctx, settlement.ExitInput{
		EmployeeID:      "emp-1",
		LastWorkingDate: day(2024, time.September, 1),
		Extra: settlement.AdditionalData{
			OvertimeHours:        decPtr("4"),
			ManualOvertimeAmount: decPtr("333.33"),
			ManualUnpaidSalary:   decPtr("0"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "333.33", data.Final.Breakdown.OvertimeAmount.StringFixed(2))
	assert.Equal(t, "3000.00", data.Final.Breakdown.UnpaidSalaries.StringFixed(2), "zero override is ignored")
}

func TestCalculateVacationSettlement(t *testing.T) {
	// GIVEN: salary with allowances, vacation 2024-10-01 to 2024-10-30
	f := exitFixture(t)
	f.salary("emp-1", day(2024, time.January, 1), "4000", "1000")

	// WHEN
	data, err := f.svc.CalculateVacationSettlement(f.ctx, settlement.VacationInput{
		EmployeeID: "emp-1",
		StartDate:  day(2024, time.October, 1),
		EndDate:    day(2024, time.October, 30),
		ReturnDate: day(2024, time.October, 31),
	})
	require.NoError(t, err)

	// THEN: no end-of-service, allowance defaults to basic salary
	assert.Equal(t, settlement.TypeVacation, data.Type)
	require.NotNil(t, data.Vacation)
	assert.Equal(t, 30, data.Vacation.VacationDays)
	assert.Equal(t, settlement.MethodVacation, data.EndOfService.Method)
	assert.True(t, data.EndOfService.BenefitAmount.IsZero())
	assert.Equal(t, generic.ServicePeriod{Years: 8, Months: 7}, data.Service.Period)
	assert.Equal(t, day(2024, time.October, 1), data.Service.LastWorkingDate)

	b := data.Final.Breakdown
	assert.Equal(t, "4000.00", b.VacationAllowance.StringFixed(2))
	// one unpaid month at basic + allowances
	assert.Equal(t, "5000.00", b.UnpaidSalaries.StringFixed(2))
	assert.True(t, b.EndOfServiceBenefit.IsZero())
	assert.Equal(t, "9000.00", data.Final.GrossAmount.StringFixed(2))
	assertBalanced(t, data.Final)
}

func TestCalculateVacationSettlement_MonthsAndAllowanceOverride(t *testing.T) {
	f := exitFixture(t)

	data, err := f.svc.CalculateVacationSettlement(f.ctx, settlement.VacationInput{
		EmployeeID: "emp-1",
		StartDate:  day(2024, time.October, 1),
		EndDate:    day(2024, time.October, 10),
		ReturnDate: day(2024, time.October, 11),
		Extra: settlement.AdditionalData{
			VacationMonths:          decPtr("1.5"),
			ManualVacationAllowance: decPtr("4500"),
			PendingAdvances:         dec("500"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 45, data.Vacation.VacationDays)
	assert.Equal(t, "4500.00", data.Vacation.VacationAllowance.StringFixed(2))
	assert.Equal(t, "4500.00", data.Final.Breakdown.VacationAllowance.StringFixed(2))
	assert.Equal(t, "500.00", data.Final.TotalDeductions.StringFixed(2))
	assertBalanced(t, data.Final)
}

func TestCalculateVacationSettlement_EndBeforeStart(t *testing.T) {
	f := exitFixture(t)

	data, err := f.svc.CalculateVacationSettlement(f.ctx, settlement.VacationInput{
		EmployeeID: "emp-1",
		StartDate:  day(2024, time.October, 10),
		EndDate:    day(2024, time.October, 1),
		ReturnDate: day(2024, time.October, 11),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, data.Vacation.VacationDays)
}

func TestCalculateSettlement_UnknownEmployee(t *testing.T) {
	f := newFixture(t, day(2024, time.September, 15))

	_, err := f.svc.CalculateExitSettlement(f.ctx, settlement.ExitInput{EmployeeID: "ghost", LastWorkingDate: day(2024, time.September, 1)})
	assert.True(t, generic.IsNotFound(err))

	_, err = f.svc.CalculateVacationSettlement(f.ctx, settlement.VacationInput{EmployeeID: "ghost"})
	assert.True(t, generic.IsNotFound(err))
}
