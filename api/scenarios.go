/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	employee, salary, payroll and timesheet data. Each scenario sets up one
	employee whose settlement demonstrates a specific rule.

AVAILABLE SCENARIOS:

	long-service-resignation: 8 years of service, resigning (two-thirds benefit)
	short-service-termination: 18 months, terminated, payroll stopped early
	vacation-with-allowances: salary history with allowances, leave next month
	weekend-absences:         Thu/Fri/Sat gap in last month's timesheets
	new-hire:                 hired this month, nothing owed yet

HOW SCENARIOS WORK:
 1. Reset store (clear all data)
 2. Create employee
 3. Add salary history
 4. Add paid payroll months
 5. Add timesheets for the previous month

All dates are relative to the service clock so scenarios stay meaningful.

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "long-service-resignation"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: settlement handlers to run against the loaded data
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/settlement"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "long-service-resignation",
		Name:        "Long Service Resignation",
		Description: "8 years of service, resigning: end-of-service reduced to two thirds",
		Category:    "exit",
	},
	{
		ID:          "short-service-termination",
		Name:        "Short Service Termination",
		Description: "18 months of service, terminated, payroll stopped three months ago",
		Category:    "exit",
	},
	{
		ID:          "vacation-with-allowances",
		Name:        "Vacation With Allowances",
		Description: "Salary history with housing allowance, vacation starting next month",
		Category:    "vacation",
	},
	{
		ID:          "weekend-absences",
		Name:        "Weekend Absences",
		Description: "A Thursday-Friday-Saturday gap counts three absent days; lone Fridays do not",
		Category:    "exit",
	},
	{
		ID:          "new-hire",
		Name:        "New Hire",
		Description: "Hired this month: no unpaid salary, no end-of-service",
		Category:    "exit",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	loader, ok := h.scenarioLoaders()[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.Service.ResetNumbering()
	h.currentScenario = ""

	employeeID, err := loader(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.currentScenario = req.ScenarioID

	h.Logger.InfoContext(ctx, "scenario loaded", "scenario", req.ScenarioID, "employee_id", employeeID)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "loaded",
		"scenario":    req.ScenarioID,
		"employee_id": employeeID,
	})
}

type scenarioLoader func(ctx context.Context) (string, error)

func (h *Handler) scenarioLoaders() map[string]scenarioLoader {
	return map[string]scenarioLoader{
		"long-service-resignation":  h.loadLongServiceResignation,
		"short-service-termination": h.loadShortServiceTermination,
		"vacation-with-allowances":  h.loadVacationWithAllowances,
		"weekend-absences":          h.loadWeekendAbsences,
		"new-hire":                  h.loadNewHire,
	}
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadLongServiceResignation(ctx context.Context) (string, error) {
	today := h.today()
	emp := settlement.Employee{
		ID:          "emp-001",
		Name:        "Khalid Al-Harbi",
		HireDate:    today.AddDate(-8, 0, 0),
		Nationality: "Saudi",
		BasicSalary: decimal.NewFromInt(3000),
		FileNumber:  "F-1001",
		Department:  "Operations",
		Designation: "Supervisor",
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return "", err
	}
	if err := h.payThrough(ctx, emp, 12, today); err != nil {
		return "", err
	}
	return string(emp.ID), h.fullMonthTimesheets(ctx, emp.ID, today, nil)
}

func (h *Handler) loadShortServiceTermination(ctx context.Context) (string, error) {
	today := h.today()
	emp := settlement.Employee{
		ID:          "emp-002",
		Name:        "Maria Santos",
		HireDate:    today.AddDate(-1, -6, 0),
		Nationality: "Philippine",
		BasicSalary: decimal.NewFromInt(4500),
		IqamaNumber: "2345678901",
		Department:  "Finance",
		Designation: "Accountant",
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return "", err
	}
	// Last paid period is three months back.
	if err := h.payThrough(ctx, emp, 6, today.AddDate(0, -2, 0)); err != nil {
		return "", err
	}
	return string(emp.ID), h.fullMonthTimesheets(ctx, emp.ID, today, nil)
}

func (h *Handler) loadVacationWithAllowances(ctx context.Context) (string, error) {
	today := h.today()
	emp := settlement.Employee{
		ID:          "emp-003",
		Name:        "Ahmed Rahman",
		HireDate:    today.AddDate(-4, -3, 0),
		Nationality: "Egyptian",
		BasicSalary: decimal.NewFromInt(5000),
		IqamaNumber: "2456789012",
		Department:  "Engineering",
		Designation: "Site Engineer",
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return "", err
	}

	history := []settlement.SalaryRecord{
		{ID: "sal-003-1", EmployeeID: emp.ID, BasicSalary: decimal.NewFromInt(5000), Allowances: decimal.NewFromInt(1000), EffectiveDate: emp.HireDate},
		{ID: "sal-003-2", EmployeeID: emp.ID, BasicSalary: decimal.NewFromInt(6000), Allowances: decimal.NewFromInt(1500), EffectiveDate: today.AddDate(-1, 0, 0)},
	}
	for _, rec := range history {
		if err := h.Store.SaveSalaryRecord(ctx, rec); err != nil {
			return "", err
		}
	}
	if err := h.payThrough(ctx, emp, 3, today); err != nil {
		return "", err
	}
	return string(emp.ID), h.fullMonthTimesheets(ctx, emp.ID, today, nil)
}

func (h *Handler) loadWeekendAbsences(ctx context.Context) (string, error) {
	today := h.today()
	emp := settlement.Employee{
		ID:          "emp-004",
		Name:        "Omar Farouk",
		HireDate:    today.AddDate(-3, 0, 0),
		Nationality: "Jordanian",
		BasicSalary: decimal.NewFromInt(3000),
		Department:  "Warehouse",
		Designation: "Storekeeper",
	}
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return "", err
	}
	if err := h.payThrough(ctx, emp, 3, today); err != nil {
		return "", err
	}

	// Skip the first full Thursday-Friday-Saturday of last month.
	last := generic.PreviousMonth(today)
	skip := map[string]bool{}
	for d := last.Start; !d.After(last.End.AddDate(0, 0, -2)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Thursday {
			for i := 0; i < 3; i++ {
				skip[generic.FormatDate(d.AddDate(0, 0, i))] = true
			}
			break
		}
	}
	return string(emp.ID), h.fullMonthTimesheets(ctx, emp.ID, today, skip)
}

func (h *Handler) loadNewHire(ctx context.Context) (string, error) {
	today := h.today()
	emp := settlement.Employee{
		ID:          "emp-005",
		Name:        "Sara Al-Qahtani",
		HireDate:    generic.StartOfMonth(today.Year(), today.Month()),
		Nationality: "Saudi",
		BasicSalary: decimal.NewFromInt(7000),
		Department:  "HR",
		Designation: "Recruiter",
	}
	return string(emp.ID), h.Store.SaveEmployee(ctx, emp)
}

// =============================================================================
// SEEDING HELPERS
// =============================================================================

func (h *Handler) today() time.Time {
	if h.Service != nil && h.Service.Now != nil {
		return generic.UTCDateOf(h.Service.Now())
	}
	return generic.UTCDateOf(time.Now())
}

// payThrough records months paid payroll periods ending with the month
// before upTo.
func (h *Handler) payThrough(ctx context.Context, emp settlement.Employee, months int, upTo time.Time) error {
	first := generic.StartOfMonth(upTo.Year(), upTo.Month())
	for i := months; i >= 1; i-- {
		period := first.AddDate(0, -i, 0)
		paidAt := generic.FirstOfNextMonth(period.Year(), period.Month()).AddDate(0, 0, 1)
		rec := settlement.PayrollRecord{
			ID:          fmt.Sprintf("pay-%s-%04d%02d", emp.ID, period.Year(), period.Month()),
			EmployeeID:  emp.ID,
			Month:       period.Month(),
			Year:        period.Year(),
			FinalAmount: emp.BasicSalary,
			Status:      settlement.PayrollPaid,
			PaidAt:      &paidAt,
		}
		if err := h.Store.SavePayrollRecord(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// fullMonthTimesheets logs 8 hours on every day of last month except the
// weekend day and the dates in skip. The day after the month is also logged
// so the last weekend day has a real neighbor.
func (h *Handler) fullMonthTimesheets(ctx context.Context, id generic.EntityID, today time.Time, skip map[string]bool) error {
	weekend := h.Service.Policy.WeekendDay
	window := generic.PreviousMonth(today).Widen(1)
	for _, day := range window.Days() {
		key := generic.FormatDate(day)
		if day.Weekday() == weekend || skip[key] {
			continue
		}
		rec := settlement.TimesheetRecord{
			ID:          fmt.Sprintf("ts-%s-%s", id, key),
			EmployeeID:  id,
			Date:        day,
			HoursWorked: decimal.NewFromInt(8),
			Status:      "present",
		}
		if err := h.Store.SaveTimesheet(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
