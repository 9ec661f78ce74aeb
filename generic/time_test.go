package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/settlement-engine/generic"
)

func d(y int, m time.Month, day int) time.Time { return generic.Date(y, m, day) }

func TestServicePeriodBetween(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  generic.ServicePeriod
	}{
		{"same day", d(2020, 5, 10), d(2020, 5, 10), generic.ServicePeriod{}},
		{"whole years", d(2016, 3, 1), d(2024, 3, 1), generic.ServicePeriod{Years: 8}},
		{"years months days", d(2016, 3, 1), d(2024, 9, 15), generic.ServicePeriod{Years: 8, Months: 6, Days: 14}},
		{"day borrow", d(2023, 1, 20), d(2023, 3, 10), generic.ServicePeriod{Months: 1, Days: 18}},
		{"double day borrow", d(2024, 1, 31), d(2024, 3, 1), generic.ServicePeriod{Days: 30}},
		{"year borrow", d(2022, 11, 15), d(2023, 2, 10), generic.ServicePeriod{Months: 2, Days: 26}},
		{"end before start", d(2024, 5, 1), d(2024, 4, 30), generic.ServicePeriod{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generic.ServicePeriodBetween(tt.start, tt.end))
		})
	}
}

func TestServicePeriodBetween_Recombines(t *testing.T) {
	// GIVEN: every start in a leap year paired with ends spread over three years
	starts := generic.NewPeriod(d(2023, 12, 25), d(2024, 3, 5)).Days()

	for _, start := range starts {
		for offset := 0; offset <= 1100; offset += 7 {
			end := start.AddDate(0, 0, offset)

			// WHEN: decomposing and re-applying
			p := generic.ServicePeriodBetween(start, end)

			// THEN: the components are in range and land exactly on end
			require.GreaterOrEqual(t, p.Months, 0)
			require.Less(t, p.Months, 12)
			require.GreaterOrEqual(t, p.Days, 0)
			require.True(t, p.AddTo(start).Equal(end),
				"start=%s end=%s period=%s", generic.FormatDate(start), generic.FormatDate(end), p)
		}
	}
}

func TestMonthsBetween(t *testing.T) {
	assert.Equal(t, 3, generic.MonthsBetween(d(2024, 6, 1), d(2024, 9, 1)))
	assert.Equal(t, 3, generic.MonthsBetween(d(2024, 6, 30), d(2024, 9, 1)))
	assert.Equal(t, 14, generic.MonthsBetween(d(2023, 11, 1), d(2025, 1, 31)))
	assert.Equal(t, 0, generic.MonthsBetween(d(2024, 9, 1), d(2024, 9, 30)))
	assert.Equal(t, -1, generic.MonthsBetween(d(2024, 10, 1), d(2024, 9, 30)))
}

func TestMonthHelpers(t *testing.T) {
	assert.Equal(t, 29, generic.DaysIn(2024, time.February))
	assert.Equal(t, 28, generic.DaysIn(2023, time.February))
	assert.Equal(t, 31, generic.DaysIn(2024, 0), "month 0 normalizes to December of the prior year")
	assert.Equal(t, d(2025, 1, 1), generic.FirstOfNextMonth(2024, time.December))
	assert.Equal(t, d(2024, 4, 30), generic.EndOfMonth(2024, time.April))
	assert.Equal(t, 30, generic.DaysBetween(d(2024, 1, 31), d(2024, 3, 1)))
}

func TestParseDate(t *testing.T) {
	got, err := generic.ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, d(2024, 3, 1), got)
	assert.Equal(t, "2024-03-01", generic.FormatDate(got))

	_, err = generic.ParseDate("01/03/2024")
	require.Error(t, err)
	assert.True(t, generic.IsClientError(err))
}

func TestUTCDateOf(t *testing.T) {
	riyadh := time.FixedZone("AST", 3*60*60)
	local := time.Date(2024, 3, 1, 1, 30, 0, 0, riyadh)

	assert.Equal(t, d(2024, 2, 29), generic.UTCDateOf(local))
	assert.Equal(t, d(2024, 3, 1), generic.DateOf(local))
}
