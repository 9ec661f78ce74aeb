// Package settlement implements final and vacation settlement calculations.
// It uses the generic primitives for calendar math and money, and reads
// employee, salary, payroll and timesheet data through the Store interfaces.
package settlement

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/generic"
)

// =============================================================================
// ENUMS
// =============================================================================

// SettlementType distinguishes a vacation settlement from an exit (final) one.
type SettlementType string

const (
	TypeVacation SettlementType = "vacation"
	TypeExit     SettlementType = "exit"
)

// Prefix is the settlement-number prefix for the type.
func (t SettlementType) Prefix() string {
	if t == TypeVacation {
		return "VS"
	}
	return "FS"
}

func (t SettlementType) Valid() bool { return t == TypeVacation || t == TypeExit }

// CalculationMethod tags how the end-of-service benefit was derived.
type CalculationMethod string

const (
	MethodResigned   CalculationMethod = "resigned"
	MethodTerminated CalculationMethod = "terminated"
	MethodVacation   CalculationMethod = "vacation"
)

// CalculationPeriod selects the absence window.
type CalculationPeriod string

const (
	PeriodLastMonth CalculationPeriod = "last_month"
	PeriodUnpaid    CalculationPeriod = "unpaid_period"
	PeriodCustom    CalculationPeriod = "custom"
)

type SettlementStatus string

const StatusDraft SettlementStatus = "draft"

type PayrollStatus string

const (
	PayrollPending PayrollStatus = "pending"
	PayrollPaid    PayrollStatus = "paid"
)

// =============================================================================
// INPUT RECORDS (read-only)
// =============================================================================

type Employee struct {
	ID          generic.EntityID
	Name        string
	HireDate    time.Time
	Nationality string
	BasicSalary decimal.Decimal

	// OvertimeMultiplier overrides the policy default when positive.
	OvertimeMultiplier decimal.Decimal

	FileNumber  string
	IqamaNumber string
	Department  string
	Designation string
}

// SalaryRecord is one version of an employee's pay, effective from EffectiveDate.
type SalaryRecord struct {
	ID            string
	EmployeeID    generic.EntityID
	BasicSalary   decimal.Decimal
	Allowances    decimal.Decimal
	EffectiveDate time.Time
}

type PayrollRecord struct {
	ID          string
	EmployeeID  generic.EntityID
	Month       time.Month
	Year        int
	FinalAmount decimal.Decimal
	Status      PayrollStatus
	PaidAt      *time.Time
}

type TimesheetRecord struct {
	ID            string
	EmployeeID    generic.EntityID
	Date          time.Time
	HoursWorked   decimal.Decimal
	OvertimeHours decimal.Decimal
	Status        string
}

// HasHours reports whether any regular or overtime hours were logged.
func (t TimesheetRecord) HasHours() bool {
	return t.HoursWorked.IsPositive() || t.OvertimeHours.IsPositive()
}

// =============================================================================
// DERIVED RESULTS
// =============================================================================

// UnpaidSalaryInfo describes salary owed since the last paid payroll month.
type UnpaidSalaryInfo struct {
	EmployeeID   generic.EntityID
	UnpaidMonths int
	UnpaidAmount decimal.Decimal

	// TotalUnpaidMonths is the raw month span of the unpaid window before the
	// last paid month is excluded.
	TotalUnpaidMonths int

	// Zero when no payroll has ever been paid.
	LastPaidMonth time.Month
	LastPaidYear  int
	LastPaidDate  *time.Time

	BasicSalary decimal.Decimal
	Allowances  decimal.Decimal
}

// HasLastPaid reports whether a paid payroll period exists.
func (u UnpaidSalaryInfo) HasLastPaid() bool { return u.LastPaidYear != 0 }

// MonthlySalary is basic salary plus allowances.
func (u UnpaidSalaryInfo) MonthlySalary() decimal.Decimal { return u.BasicSalary.Add(u.Allowances) }

type EndOfServiceDetails struct {
	YearsForCalculation decimal.Decimal `json:"years_for_calculation"`
	FullBenefitYears    decimal.Decimal `json:"full_benefit_years"`
	HalfBenefitYears    decimal.Decimal `json:"half_benefit_years"`
	ReductionPercentage decimal.Decimal `json:"reduction_percentage"`
}

type EndOfServiceCalculation struct {
	Service       generic.ServicePeriod
	BenefitAmount decimal.Decimal
	Method        CalculationMethod
	Details       EndOfServiceDetails
}

type AbsentDetails struct {
	TotalDaysInPeriod int
	WorkingDays       int
	AbsentDates       []string
}

type AbsentCalculation struct {
	AbsentDays        int
	DeductionAmount   decimal.Decimal
	CalculationPeriod CalculationPeriod
	StartDate         time.Time
	EndDate           time.Time
	DailyRate         decimal.Decimal
	Details           AbsentDetails
}

// =============================================================================
// AGGREGATE RESULT
// =============================================================================

// EmployeeSnapshot is the employee as seen at calculation time.
type EmployeeSnapshot struct {
	ID          generic.EntityID
	Name        string
	Nationality string
	HireDate    time.Time
	FileNumber  string
	IqamaNumber string
	Department  string
	Designation string
}

type ServiceDetails struct {
	HireDate        time.Time
	LastWorkingDate time.Time
	Period          generic.ServicePeriod
}

type VacationDetails struct {
	StartDate         time.Time
	EndDate           time.Time
	ReturnDate        time.Time
	VacationDays      int
	VacationAllowance decimal.Decimal
}

type SalaryInfo struct {
	BasicSalary   decimal.Decimal
	Allowances    decimal.Decimal
	MonthlySalary decimal.Decimal

	// UnpaidMonths has one decimal place when back-derived from a manual amount.
	UnpaidMonths decimal.Decimal
	UnpaidAmount decimal.Decimal

	LastPaidMonth time.Month
	LastPaidYear  int
	LastPaidDate  *time.Time
}

// Breakdown lists every line item contributing to the final amounts.
type Breakdown struct {
	UnpaidSalaries        decimal.Decimal `json:"unpaid_salaries"`
	EndOfServiceBenefit   decimal.Decimal `json:"end_of_service_benefit"`
	VacationAllowance     decimal.Decimal `json:"vacation_allowance"`
	AccruedVacationDays   decimal.Decimal `json:"accrued_vacation_days"`
	AccruedVacationAmount decimal.Decimal `json:"accrued_vacation_amount"`
	OvertimeHours         decimal.Decimal `json:"overtime_hours"`
	OvertimeAmount        decimal.Decimal `json:"overtime_amount"`
	OtherBenefits         decimal.Decimal `json:"other_benefits"`
	PendingAdvances       decimal.Decimal `json:"pending_advances"`
	EquipmentDeductions   decimal.Decimal `json:"equipment_deductions"`
	OtherDeductions       decimal.Decimal `json:"other_deductions"`
	AbsentDays            int             `json:"absent_days"`
	AbsenceDeduction      decimal.Decimal `json:"absence_deduction"`
}

type FinalCalculation struct {
	GrossAmount     decimal.Decimal
	TotalDeductions decimal.Decimal
	NetAmount       decimal.Decimal
	Breakdown       Breakdown
}

// FinalSettlementData is the full, unpersisted result of a settlement calculation.
type FinalSettlementData struct {
	Type          SettlementType
	Employee      EmployeeSnapshot
	Service       ServiceDetails
	Vacation      *VacationDetails // vacation settlements only
	IsResignation bool
	Salary        SalaryInfo
	EndOfService  EndOfServiceCalculation
	Absence       AbsentCalculation
	Final         FinalCalculation
	CalculatedAt  time.Time
}

// =============================================================================
// PERSISTED RECORD
// =============================================================================

// CalculationDetails are the intermediate figures behind a stored settlement,
// kept so it can be audited without recalculating.
type CalculationDetails struct {
	EndOfService      EndOfServiceDetails `json:"end_of_service"`
	AbsentDailyRate   decimal.Decimal     `json:"absent_daily_rate"`
	AbsentTotalDays   int                 `json:"absent_total_days"`
	AbsentWorkingDays int                 `json:"absent_working_days"`
	AbsentDates       []string            `json:"absent_dates"`
}

// FinalSettlement is the stored settlement. Employee and number never change
// after creation.
type FinalSettlement struct {
	ID               string
	SettlementNumber string
	Type             SettlementType
	Status           SettlementStatus
	Currency         string

	EmployeeID   generic.EntityID
	EmployeeName string
	HireDate     time.Time

	LastWorkingDate    *time.Time
	VacationStartDate  *time.Time
	VacationEndDate    *time.Time
	ExpectedReturnDate *time.Time
	VacationDays       int

	ServiceYears  int
	ServiceMonths int
	ServiceDays   int

	BasicSalary       decimal.Decimal
	Allowances        decimal.Decimal
	UnpaidMonths      decimal.Decimal
	CalculationMethod CalculationMethod
	IsResignation     bool

	AbsentCalculationPeriod CalculationPeriod
	AbsentStartDate         time.Time
	AbsentEndDate           time.Time

	Breakdown       Breakdown
	Details         CalculationDetails
	GrossAmount     decimal.Decimal
	TotalDeductions decimal.Decimal
	NetAmount       decimal.Decimal

	PreparedBy string
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
