package settlement_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/settlement"
)

func TestUnpaidSalary_NeverPaid(t *testing.T) {
	// GIVEN: hired 2024-06-01 at 2000, no payroll, today 2024-09-01
	f := newFixture(t, day(2024, time.September, 1))
	f.employee("emp-1", day(2024, time.June, 1), "2000")

	// WHEN: computing unpaid salary
	info, err := f.svc.UnpaidSalary(f.ctx, "emp-1")
	require.NoError(t, err)

	// THEN: three whole months are owed
	assert.Equal(t, 3, info.UnpaidMonths)
	assert.Equal(t, 3, info.TotalUnpaidMonths)
	assert.Equal(t, "6000.00", info.UnpaidAmount.StringFixed(2))
	assert.False(t, info.HasLastPaid())
	assert.Nil(t, info.LastPaidDate)
}

func TestUnpaidSalary_HiredThisMonth(t *testing.T) {
	f := newFixture(t, day(2024, time.September, 20))
	f.employee("emp-1", day(2024, time.September, 2), "2000")

	info, err := f.svc.UnpaidSalary(f.ctx, "emp-1")
	require.NoError(t, err)

	assert.Equal(t, 0, info.UnpaidMonths)
	assert.True(t, info.UnpaidAmount.IsZero())
}

func TestUnpaidSalary_ExcludesLastPaidMonth(t *testing.T) {
	// GIVEN: paid through June 2024 (July pending), today 2024-09-15
	f := newFixture(t, day(2024, time.September, 15))
	f.employee("emp-1", day(2020, time.January, 1), "3000")
	f.payroll("emp-1", 2024, time.May, settlement.PayrollPaid)
	f.payroll("emp-1", 2024, time.June, settlement.PayrollPaid)
	f.payroll("emp-1", 2024, time.July, settlement.PayrollPending)

	// WHEN
	info, err := f.svc.UnpaidSalary(f.ctx, "emp-1")
	require.NoError(t, err)

	// THEN: window starts July 1; span of 2 months minus the excluded month
	assert.Equal(t, time.June, info.LastPaidMonth)
	assert.Equal(t, 2024, info.LastPaidYear)
	require.NotNil(t, info.LastPaidDate)
	assert.Equal(t, day(2024, time.July, 1), *info.LastPaidDate)
	assert.Equal(t, 2, info.TotalUnpaidMonths)
	assert.Equal(t, 1, info.UnpaidMonths)
	assert.Equal(t, "3000.00", info.UnpaidAmount.StringFixed(2))
}

func TestUnpaidSalary_PaidThroughLastMonth(t *testing.T) {
	f := newFixture(t, day(2024, time.September, 15))
	f.employee("emp-1", day(2020, time.January, 1), "3000")
	f.payroll("emp-1", 2024, time.August, settlement.PayrollPaid)

	info, err := f.svc.UnpaidSalary(f.ctx, "emp-1")
	require.NoError(t, err)

	assert.Equal(t, 0, info.UnpaidMonths, "never negative")
	assert.True(t, info.UnpaidAmount.IsZero())
}

func TestUnpaidSalary_UsesLatestSalaryRecord(t *testing.T) {
	// GIVEN: a raise effective before today and one scheduled after it
	f := newFixture(t, day(2024, time.September, 1))
	f.employee("emp-1", day(2024, time.June, 1), "2000")
	f.salary("emp-1", day(2024, time.June, 1), "2000", "0")
	f.salary("emp-1", day(2024, time.August, 1), "2500", "500")
	f.salary("emp-1", day(2024, time.October, 1), "9000", "0")

	info, err := f.svc.UnpaidSalary(f.ctx, "emp-1")
	require.NoError(t, err)

	assert.True(t, dec("2500").Equal(info.BasicSalary))
	assert.True(t, dec("500").Equal(info.Allowances))
	assert.Equal(t, "9000.00", info.UnpaidAmount.StringFixed(2))
}

func TestUnpaidSalary_UnknownEmployee(t *testing.T) {
	f := newFixture(t, day(2024, time.September, 1))

	_, err := f.svc.UnpaidSalary(f.ctx, "ghost")

	require.Error(t, err)
	assert.True(t, generic.IsNotFound(err))
}
