package factory

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/settlement"
)

func TestParsePolicy_Overrides(t *testing.T) {
	// GIVEN: a policy with every field set
	f := NewPolicyFactory()
	jsonStr := `{
		"days_per_month": 26,
		"hours_per_day": 9,
		"default_overtime_multiplier": 2,
		"currency": "aed",
		"weekend_day": "Sunday"
	}`

	// WHEN: parsing
	policy, err := f.ParsePolicy(jsonStr)
	require.NoError(t, err)

	// THEN: every field is taken from JSON
	assert.Equal(t, 26, policy.DaysPerMonth)
	assert.Equal(t, 9, policy.HoursPerDay)
	assert.True(t, decimal.NewFromInt(2).Equal(policy.DefaultOvertimeMultiplier))
	assert.Equal(t, "AED", policy.Currency)
	assert.Equal(t, time.Sunday, policy.WeekendDay)
}

func TestParsePolicy_EmptyKeepsDefaults(t *testing.T) {
	policy, err := NewPolicyFactory().ParsePolicy(`{}`)
	require.NoError(t, err)

	def := settlement.DefaultPolicy()
	assert.Equal(t, def.DaysPerMonth, policy.DaysPerMonth)
	assert.Equal(t, def.HoursPerDay, policy.HoursPerDay)
	assert.True(t, def.DefaultOvertimeMultiplier.Equal(policy.DefaultOvertimeMultiplier))
	assert.Equal(t, "SAR", policy.Currency)
	assert.Equal(t, time.Friday, policy.WeekendDay)
}

func TestParsePolicy_Invalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"days per month too large", `{"days_per_month": 40}`},
		{"negative hours", `{"hours_per_day": -1}`},
		{"zero multiplier", `{"default_overtime_multiplier": 0}`},
		{"unknown weekday", `{"weekend_day": "funday"}`},
	}
	f := NewPolicyFactory()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParsePolicy(tt.json)
			require.Error(t, err)
			assert.True(t, generic.IsClientError(err))
		})
	}

	_, err := f.ParsePolicy(`{not json`)
	assert.Error(t, err)
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := NewPolicyFactory()
	pj := f.ToJSON(settlement.DefaultPolicy())

	assert.Equal(t, "friday", pj.WeekendDay)
	require.NotNil(t, pj.DefaultOvertimeMultiplier)
	assert.Equal(t, 1.5, *pj.DefaultOvertimeMultiplier)

	policy, err := f.FromJSON(pj)
	require.NoError(t, err)
	assert.Equal(t, settlement.DefaultPolicy().WeekendDay, policy.WeekendDay)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"days_per_month": 28}`), 0o600))

	policy, err := NewPolicyFactory().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 28, policy.DaysPerMonth)

	_, err = NewPolicyFactory().LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
