package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/settlement"
)

func TestInsertSettlement_RejectsDuplicateNumber(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, err := store.InsertSettlement(ctx, settlement.FinalSettlement{ID: "a", SettlementNumber: "VS-2024-0001"})
	require.NoError(t, err)

	_, err = store.InsertSettlement(ctx, settlement.FinalSettlement{ID: "b", SettlementNumber: "VS-2024-0001"})

	assert.ErrorIs(t, err, settlement.ErrDuplicateSettlementNumber)
	got, err := store.GetSettlement(ctx, "b")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSettlementNumbers_PrefixAndOrder(t *testing.T) {
	store := New()
	ctx := context.Background()
	for i, num := range []string{"VS-2024-0001", "VS-2024-0003", "VS-2025-0001", "FS-2024-0002"} {
		_, err := store.InsertSettlement(ctx, settlement.FinalSettlement{ID: string(rune('a' + i)), SettlementNumber: num})
		require.NoError(t, err)
	}

	got, err := store.SettlementNumbers(ctx, "VS-2024")
	require.NoError(t, err)

	assert.Equal(t, []string{"VS-2024-0003", "VS-2024-0001"}, got)
}

func TestTimesheets_NormalizesDates(t *testing.T) {
	store := New()
	ctx := context.Background()
	require.NoError(t, store.SaveTimesheet(ctx, settlement.TimesheetRecord{
		ID:         "ts",
		EmployeeID: "emp-1",
		Date:       time.Date(2024, 8, 9, 17, 30, 0, 0, time.UTC),
	}))

	got, err := store.Timesheets(ctx, "emp-1", generic.Date(2024, time.August, 9), generic.Date(2024, time.August, 9))
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, generic.Date(2024, time.August, 9), got[0].Date)
}
