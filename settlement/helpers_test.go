package settlement_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/settlement"
	"github.com/warp/settlement-engine/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func day(y int, m time.Month, d int) time.Time { return generic.Date(y, m, d) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

// fixture is a service over a memory store with a frozen clock.
type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	svc   *settlement.Service
}

func newFixture(t *testing.T, today time.Time) *fixture {
	t.Helper()
	store := memory.New()
	svc := settlement.NewService(store, settlement.DefaultPolicy())
	svc.Now = func() time.Time { return today.Add(10 * time.Hour) }
	return &fixture{t: t, ctx: context.Background(), store: store, svc: svc}
}

func (f *fixture) employee(id string, hired time.Time, basic string) settlement.Employee {
	f.t.Helper()
	emp := settlement.Employee{
		ID:          generic.EntityID(id),
		Name:        "Employee " + id,
		HireDate:    hired,
		BasicSalary: dec(basic),
	}
	require.NoError(f.t, f.store.SaveEmployee(f.ctx, emp))
	return emp
}

func (f *fixture) salary(id string, effective time.Time, basic, allowances string) {
	f.t.Helper()
	require.NoError(f.t, f.store.SaveSalaryRecord(f.ctx, settlement.SalaryRecord{
		ID:            fmt.Sprintf("sal-%s-%s", id, generic.FormatDate(effective)),
		EmployeeID:    generic.EntityID(id),
		BasicSalary:   dec(basic),
		Allowances:    dec(allowances),
		EffectiveDate: effective,
	}))
}

// payroll records a payroll paid on the first of the following month.
func (f *fixture) payroll(id string, year int, month time.Month, status settlement.PayrollStatus) {
	f.t.Helper()
	f.payrollPaidOn(id, year, month, status, generic.FirstOfNextMonth(year, month))
}

func (f *fixture) payrollPaidOn(id string, year int, month time.Month, status settlement.PayrollStatus, paidAt time.Time) {
	f.t.Helper()
	require.NoError(f.t, f.store.SavePayrollRecord(f.ctx, settlement.PayrollRecord{
		ID:          fmt.Sprintf("pay-%s-%d-%d", id, year, month),
		EmployeeID:  generic.EntityID(id),
		Month:       month,
		Year:        year,
		FinalAmount: dec("1000"),
		Status:      status,
		PaidAt:      &paidAt,
	}))
}

// worked logs hours on every day of [from, to] except the listed skip days
// and, when skipWeekend is set, Fridays.
func (f *fixture) worked(id string, from, to time.Time, skipWeekend bool, skip ...time.Time) {
	f.t.Helper()
	skipped := map[time.Time]bool{}
	for _, s := range skip {
		skipped[s] = true
	}
	for _, dt := range generic.NewPeriod(from, to).Days() {
		if skipped[dt] || (skipWeekend && dt.Weekday() == time.Friday) {
			continue
		}
		require.NoError(f.t, f.store.SaveTimesheet(f.ctx, settlement.TimesheetRecord{
			ID:          fmt.Sprintf("ts-%s-%s", id, generic.FormatDate(dt)),
			EmployeeID:  generic.EntityID(id),
			Date:        dt,
			HoursWorked: dec("8"),
		}))
	}
}
