/*
Package factory provides JSON to Go settlement policy conversion.

PURPOSE:
  Converts a JSON policy definition into a settlement.Policy so payroll
  constants can change without a rebuild. Missing fields keep the
  defaults from settlement.DefaultPolicy.

JSON SCHEMA:
  {
    "days_per_month": 30,
    "hours_per_day": 8,
    "default_overtime_multiplier": 1.5,
    "currency": "SAR",
    "weekend_day": "friday"
  }

USAGE:
  factory := NewPolicyFactory()

  policy, err := factory.ParsePolicy(jsonString)
  policy, err := factory.LoadFile("policy.json")

SEE ALSO:
  - settlement/policy.go: Policy type definition
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/settlement"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PolicyJSON is the JSON representation of a settlement policy.
type PolicyJSON struct {
	DaysPerMonth              int      `json:"days_per_month,omitempty"`
	HoursPerDay               int      `json:"hours_per_day,omitempty"`
	DefaultOvertimeMultiplier *float64 `json:"default_overtime_multiplier,omitempty"`
	Currency                  string   `json:"currency,omitempty"`
	WeekendDay                string   `json:"weekend_day,omitempty"`
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts JSON policies to Go structs.
type PolicyFactory struct{}

// NewPolicyFactory creates a new policy factory.
func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParsePolicy parses a JSON string into a Policy.
func (f *PolicyFactory) ParsePolicy(jsonStr string) (settlement.Policy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return settlement.Policy{}, fmt.Errorf("failed to parse policy JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// LoadFile reads and parses a policy file.
func (f *PolicyFactory) LoadFile(path string) (settlement.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return settlement.Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}
	return f.ParsePolicy(string(data))
}

// FromJSON converts PolicyJSON to a settlement.Policy.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (settlement.Policy, error) {
	policy := settlement.DefaultPolicy()

	if pj.DaysPerMonth != 0 {
		if pj.DaysPerMonth < 1 || pj.DaysPerMonth > 31 {
			return settlement.Policy{}, fmt.Errorf("%w: days_per_month must be 1-31, got %d", generic.ErrInvalidInput, pj.DaysPerMonth)
		}
		policy.DaysPerMonth = pj.DaysPerMonth
	}

	if pj.HoursPerDay != 0 {
		if pj.HoursPerDay < 1 || pj.HoursPerDay > 24 {
			return settlement.Policy{}, fmt.Errorf("%w: hours_per_day must be 1-24, got %d", generic.ErrInvalidInput, pj.HoursPerDay)
		}
		policy.HoursPerDay = pj.HoursPerDay
	}

	if pj.DefaultOvertimeMultiplier != nil {
		m := decimal.NewFromFloat(*pj.DefaultOvertimeMultiplier)
		if !m.IsPositive() {
			return settlement.Policy{}, fmt.Errorf("%w: default_overtime_multiplier must be positive", generic.ErrInvalidInput)
		}
		policy.DefaultOvertimeMultiplier = m
	}

	if pj.Currency != "" {
		policy.Currency = strings.ToUpper(pj.Currency)
	}

	if pj.WeekendDay != "" {
		day, err := parseWeekday(pj.WeekendDay)
		if err != nil {
			return settlement.Policy{}, err
		}
		policy.WeekendDay = day
	}

	return policy, nil
}

// ToJSON converts a Policy to PolicyJSON.
func (f *PolicyFactory) ToJSON(policy settlement.Policy) PolicyJSON {
	multiplier := policy.DefaultOvertimeMultiplier.InexactFloat64()
	return PolicyJSON{
		DaysPerMonth:              policy.DaysPerMonth,
		HoursPerDay:               policy.HoursPerDay,
		DefaultOvertimeMultiplier: &multiplier,
		Currency:                  policy.Currency,
		WeekendDay:                strings.ToLower(policy.WeekendDay.String()),
	}
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("%w: unknown weekend_day %q", generic.ErrInvalidInput, s)
}
