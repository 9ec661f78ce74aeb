// Package memory provides an in-memory settlement.DataStore (for testing/dev).
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/settlement"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Store struct {
	mu          sync.RWMutex
	employees   map[generic.EntityID]settlement.Employee
	salaries    map[generic.EntityID][]settlement.SalaryRecord
	payrolls    map[generic.EntityID][]settlement.PayrollRecord
	timesheets  map[generic.EntityID][]settlement.TimesheetRecord
	settlements map[string]settlement.FinalSettlement
	numbers     map[string]string // settlement number -> id
}

var _ settlement.DataStore = (*Store)(nil)

func New() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.employees = make(map[generic.EntityID]settlement.Employee)
	s.salaries = make(map[generic.EntityID][]settlement.SalaryRecord)
	s.payrolls = make(map[generic.EntityID][]settlement.PayrollRecord)
	s.timesheets = make(map[generic.EntityID][]settlement.TimesheetRecord)
	s.settlements = make(map[string]settlement.FinalSettlement)
	s.numbers = make(map[string]string)
}

// Reset removes all data.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

// =============================================================================
// SOURCE RECORDS
// =============================================================================

func (s *Store) SaveEmployee(_ context.Context, e settlement.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
	return nil
}

func (s *Store) SaveSalaryRecord(_ context.Context, r settlement.SalaryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.salaries[r.EmployeeID] = append(s.salaries[r.EmployeeID], r)
	return nil
}

func (s *Store) SavePayrollRecord(_ context.Context, r settlement.PayrollRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payrolls[r.EmployeeID] = append(s.payrolls[r.EmployeeID], r)
	return nil
}

func (s *Store) SaveTimesheet(_ context.Context, r settlement.TimesheetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Date = generic.DateOf(r.Date)
	s.timesheets[r.EmployeeID] = append(s.timesheets[r.EmployeeID], r)
	return nil
}

// =============================================================================
// READS
// =============================================================================

func (s *Store) GetEmployee(_ context.Context, id generic.EntityID) (*settlement.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *Store) LatestSalaryRecord(_ context.Context, id generic.EntityID, asOf time.Time) (*settlement.SalaryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *settlement.SalaryRecord
	for _, r := range s.salaries[id] {
		if r.EffectiveDate.After(asOf) {
			continue
		}
		if latest == nil || r.EffectiveDate.After(latest.EffectiveDate) {
			r := r
			latest = &r
		}
	}
	return latest, nil
}

func (s *Store) PaidPayrolls(_ context.Context, id generic.EntityID) ([]settlement.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var paid []settlement.PayrollRecord
	for _, r := range s.payrolls[id] {
		if r.Status == settlement.PayrollPaid {
			paid = append(paid, r)
		}
	}
	sort.SliceStable(paid, func(i, j int) bool {
		if paid[i].Year != paid[j].Year {
			return paid[i].Year > paid[j].Year
		}
		return paid[i].Month > paid[j].Month
	})
	return paid, nil
}

func (s *Store) Timesheets(_ context.Context, id generic.EntityID, from, to time.Time) ([]settlement.TimesheetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	window := generic.NewPeriod(from, to)
	var result []settlement.TimesheetRecord
	for _, r := range s.timesheets[id] {
		if window.Contains(r.Date) {
			result = append(result, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// =============================================================================
// SETTLEMENTS
// =============================================================================

func (s *Store) SettlementNumbers(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []string
	for num := range s.numbers {
		if strings.HasPrefix(num, prefix) {
			result = append(result, num)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(result)))
	return result, nil
}

func (s *Store) InsertSettlement(_ context.Context, fs settlement.FinalSettlement) (settlement.FinalSettlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.numbers[fs.SettlementNumber]; taken {
		return settlement.FinalSettlement{}, settlement.ErrDuplicateSettlementNumber
	}
	fs.Details.AbsentDates = slices.Clone(fs.Details.AbsentDates)
	s.settlements[fs.ID] = fs
	s.numbers[fs.SettlementNumber] = fs.ID
	return fs, nil
}

func (s *Store) GetSettlement(_ context.Context, id string) (*settlement.FinalSettlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fs, ok := s.settlements[id]
	if !ok {
		return nil, nil
	}
	fs.Details.AbsentDates = slices.Clone(fs.Details.AbsentDates)
	return &fs, nil
}
