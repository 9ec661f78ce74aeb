package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/settlement"
)

// These tests need a disposable database; set TEST_DATABASE_URL to run them.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	store, err := New(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, store.Reset(ctx))
	t.Cleanup(func() {
		store.Reset(context.Background())
		store.Close()
	})
	return store
}

func TestPostgres_SourceRecords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// GIVEN: An employee with salary, payroll and timesheets
	require.NoError(t, store.SaveEmployee(ctx, settlement.Employee{
		ID:          "emp-1",
		Name:        "Test User",
		HireDate:    generic.Date(2016, time.March, 1),
		BasicSalary: decimal.RequireFromString("3000.50"),
	}))
	require.NoError(t, store.SaveSalaryRecord(ctx, settlement.SalaryRecord{
		ID: "sal-1", EmployeeID: "emp-1",
		BasicSalary: decimal.NewFromInt(3200), Allowances: decimal.NewFromInt(400),
		EffectiveDate: generic.Date(2024, time.January, 1),
	}))
	for _, m := range []time.Month{time.May, time.July, time.June} {
		require.NoError(t, store.SavePayrollRecord(ctx, settlement.PayrollRecord{
			ID: "pay-" + m.String(), EmployeeID: "emp-1", Year: 2024, Month: m,
			FinalAmount: decimal.NewFromInt(3200), Status: settlement.PayrollPaid,
		}))
	}
	require.NoError(t, store.SaveTimesheet(ctx, settlement.TimesheetRecord{
		ID: "ts-1", EmployeeID: "emp-1", Date: generic.Date(2024, time.August, 8),
		HoursWorked: decimal.NewFromInt(8), OvertimeHours: decimal.Zero,
	}))

	// THEN: Reads match what was written
	emp, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, emp)
	assert.True(t, decimal.RequireFromString("3000.50").Equal(emp.BasicSalary))
	assert.Equal(t, generic.Date(2016, time.March, 1), emp.HireDate)

	sal, err := store.LatestSalaryRecord(ctx, "emp-1", generic.Date(2024, time.September, 1))
	require.NoError(t, err)
	require.NotNil(t, sal)
	assert.True(t, decimal.NewFromInt(400).Equal(sal.Allowances))

	paid, err := store.PaidPayrolls(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, paid, 3)
	assert.Equal(t, time.July, paid[0].Month)

	sheets, err := store.Timesheets(ctx, "emp-1", generic.Date(2024, time.August, 1), generic.Date(2024, time.August, 31))
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.True(t, sheets[0].HasHours())

	missing, err := store.GetEmployee(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostgres_SettlementLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveEmployee(ctx, settlement.Employee{
		ID: "emp-1", Name: "Test User", HireDate: generic.Date(2016, time.March, 1),
		BasicSalary: decimal.NewFromInt(3000),
	}))

	svc := settlement.NewService(store, settlement.DefaultPolicy())
	svc.Now = func() time.Time { return time.Date(2024, 9, 15, 10, 0, 0, 0, time.UTC) }
	data, err := svc.CalculateExitSettlement(ctx, settlement.ExitInput{
		EmployeeID:      "emp-1",
		LastWorkingDate: generic.Date(2024, time.September, 1),
		IsResignation:   true,
	})
	require.NoError(t, err)

	created, err := svc.CreateSettlement(ctx, data, "hr", "notes")
	require.NoError(t, err)
	assert.Equal(t, "FS-2024-0001", created.SettlementNumber)

	got, err := svc.GetSettlement(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, created.NetAmount.Equal(got.NetAmount))
	assert.True(t, created.Breakdown.EndOfServiceBenefit.Equal(got.Breakdown.EndOfServiceBenefit))
	assert.True(t, created.Details.EndOfService.ReductionPercentage.Equal(got.Details.EndOfService.ReductionPercentage))
	assert.True(t, created.Details.AbsentDailyRate.Equal(got.Details.AbsentDailyRate))
	assert.Equal(t, "notes", got.Notes)

	dup := created
	dup.ID = "other"
	_, err = store.InsertSettlement(ctx, dup)
	assert.ErrorIs(t, err, settlement.ErrDuplicateSettlementNumber)
}
