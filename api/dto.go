/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the settlement domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts cross the wire as JSON numbers rounded to two places. Inside the
  service they are decimal.Decimal end to end.

VALIDATION:
  Request types carry go-playground/validator tags; handlers call
  Handler.validate before touching the service. Rules that span fields
  (vacation dates only for vacation settlements) are checked in handlers.

SEE ALSO:
  - handlers.go: Uses these types
  - settlement/types.go: Domain types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/settlement"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// AdditionalDataRequest holds manual overrides and extra line items.
// Overrides only apply when strictly positive.
type AdditionalDataRequest struct {
	VacationMonths          *float64 `json:"vacation_months,omitempty" validate:"omitempty,gte=0"`
	ManualUnpaidSalary      *float64 `json:"manual_unpaid_salary,omitempty" validate:"omitempty,gte=0"`
	ManualVacationAllowance *float64 `json:"manual_vacation_allowance,omitempty" validate:"omitempty,gte=0"`
	ManualAbsentDays        *int     `json:"manual_absent_days,omitempty" validate:"omitempty,gte=0"`
	OvertimeHours           *float64 `json:"overtime_hours,omitempty" validate:"omitempty,gte=0"`
	ManualOvertimeAmount    *float64 `json:"manual_overtime_amount,omitempty" validate:"omitempty,gte=0"`

	AccruedVacationDays float64 `json:"accrued_vacation_days,omitempty" validate:"gte=0"`
	OtherBenefits       float64 `json:"other_benefits,omitempty" validate:"gte=0"`
	PendingAdvances     float64 `json:"pending_advances,omitempty" validate:"gte=0"`
	EquipmentDeductions float64 `json:"equipment_deductions,omitempty" validate:"gte=0"`
	OtherDeductions     float64 `json:"other_deductions,omitempty" validate:"gte=0"`

	AbsentCalculationPeriod string `json:"absent_calculation_period,omitempty" validate:"omitempty,oneof=last_month unpaid_period custom"`
	AbsentStartDate         string `json:"absent_start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	AbsentEndDate           string `json:"absent_end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// VacationPreviewRequest asks for a vacation settlement calculation.
type VacationPreviewRequest struct {
	EmployeeID         string                `json:"employee_id" validate:"required"`
	VacationStartDate  string                `json:"vacation_start_date" validate:"required,datetime=2006-01-02"`
	VacationEndDate    string                `json:"vacation_end_date" validate:"required,datetime=2006-01-02"`
	ExpectedReturnDate string                `json:"expected_return_date" validate:"required,datetime=2006-01-02"`
	AdditionalData     AdditionalDataRequest `json:"additional_data"`
}

// ExitPreviewRequest asks for an exit settlement calculation.
type ExitPreviewRequest struct {
	EmployeeID      string                `json:"employee_id" validate:"required"`
	LastWorkingDate string                `json:"last_working_date" validate:"required,datetime=2006-01-02"`
	IsResignation   bool                  `json:"is_resignation"`
	AdditionalData  AdditionalDataRequest `json:"additional_data"`
}

// CreateSettlementRequest calculates and stores a settlement in one call.
// The vacation dates are required for vacation settlements and the last
// working date for exit settlements.
type CreateSettlementRequest struct {
	SettlementType     string                `json:"settlement_type" validate:"required,oneof=vacation exit"`
	EmployeeID         string                `json:"employee_id" validate:"required"`
	VacationStartDate  string                `json:"vacation_start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	VacationEndDate    string                `json:"vacation_end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ExpectedReturnDate string                `json:"expected_return_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	LastWorkingDate    string                `json:"last_working_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsResignation      bool                  `json:"is_resignation"`
	AdditionalData     AdditionalDataRequest `json:"additional_data"`
	PreparedBy         string                `json:"prepared_by,omitempty" validate:"max=120"`
	Notes              string                `json:"notes,omitempty" validate:"max=2000"`
}

// LoadScenarioRequest selects a demo scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// UnpaidSalaryDTO reports salary owed since the last paid payroll month.
type UnpaidSalaryDTO struct {
	EmployeeID        string  `json:"employee_id"`
	UnpaidMonths      int     `json:"unpaid_months"`
	UnpaidAmount      float64 `json:"unpaid_amount"`
	TotalUnpaidMonths int     `json:"total_unpaid_months"`
	LastPaidMonth     int     `json:"last_paid_month,omitempty"`
	LastPaidYear      int     `json:"last_paid_year,omitempty"`
	LastPaidDate      *string `json:"last_paid_date,omitempty"`
	BasicSalary       float64 `json:"basic_salary"`
	Allowances        float64 `json:"allowances"`
}

// AbsenceDTO reports an absence calculation.
type AbsenceDTO struct {
	AbsentDays        int      `json:"absent_days"`
	DeductionAmount   float64  `json:"deduction_amount"`
	CalculationPeriod string   `json:"calculation_period"`
	StartDate         string   `json:"start_date"`
	EndDate           string   `json:"end_date"`
	DailyRate         float64  `json:"daily_rate"`
	TotalDaysInPeriod int      `json:"total_days_in_period"`
	WorkingDays       int      `json:"working_days"`
	AbsentDates       []string `json:"absent_dates"`
}

// ServicePeriodDTO is tenure in calendar units.
type ServicePeriodDTO struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// EndOfServiceDTO reports the end-of-service benefit.
type EndOfServiceDTO struct {
	Service             ServicePeriodDTO `json:"service"`
	BenefitAmount       float64          `json:"benefit_amount"`
	CalculationMethod   string           `json:"calculation_method"`
	YearsForCalculation float64          `json:"years_for_calculation"`
	FullBenefitYears    float64          `json:"full_benefit_years"`
	HalfBenefitYears    float64          `json:"half_benefit_years"`
	ReductionPercentage float64          `json:"reduction_percentage"`
}

// EmployeeDTO is the employee snapshot at calculation time.
type EmployeeDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Nationality string `json:"nationality,omitempty"`
	HireDate    string `json:"hire_date"`
	FileNumber  string `json:"file_number,omitempty"`
	IqamaNumber string `json:"iqama_number,omitempty"`
	Department  string `json:"department,omitempty"`
	Designation string `json:"designation,omitempty"`
}

// SalaryDTO is the salary picture used by a settlement.
type SalaryDTO struct {
	BasicSalary   float64 `json:"basic_salary"`
	Allowances    float64 `json:"allowances"`
	MonthlySalary float64 `json:"monthly_salary"`
	UnpaidMonths  float64 `json:"unpaid_months"`
	UnpaidAmount  float64 `json:"unpaid_amount"`
	LastPaidMonth int     `json:"last_paid_month,omitempty"`
	LastPaidYear  int     `json:"last_paid_year,omitempty"`
}

// VacationDTO holds vacation dates and allowance.
type VacationDTO struct {
	StartDate         string  `json:"vacation_start_date"`
	EndDate           string  `json:"vacation_end_date"`
	ReturnDate        string  `json:"expected_return_date"`
	VacationDays      int     `json:"vacation_days"`
	VacationAllowance float64 `json:"vacation_allowance"`
}

// BreakdownDTO lists every line item.
type BreakdownDTO struct {
	UnpaidSalaries        float64 `json:"unpaid_salaries"`
	EndOfServiceBenefit   float64 `json:"end_of_service_benefit"`
	VacationAllowance     float64 `json:"vacation_allowance"`
	AccruedVacationDays   float64 `json:"accrued_vacation_days"`
	AccruedVacationAmount float64 `json:"accrued_vacation_amount"`
	OvertimeHours         float64 `json:"overtime_hours"`
	OvertimeAmount        float64 `json:"overtime_amount"`
	OtherBenefits         float64 `json:"other_benefits"`
	PendingAdvances       float64 `json:"pending_advances"`
	EquipmentDeductions   float64 `json:"equipment_deductions"`
	OtherDeductions       float64 `json:"other_deductions"`
	AbsentDays            int     `json:"absent_days"`
	AbsenceDeduction      float64 `json:"absence_deduction"`
}

// SettlementPreviewDTO is a calculated, unsaved settlement.
type SettlementPreviewDTO struct {
	SettlementType  string           `json:"settlement_type"`
	Employee        EmployeeDTO      `json:"employee"`
	HireDate        string           `json:"hire_date"`
	LastWorkingDate string           `json:"last_working_date"`
	Service         ServicePeriodDTO `json:"service_period"`
	Vacation        *VacationDTO     `json:"vacation,omitempty"`
	IsResignation   bool             `json:"is_resignation"`
	Salary          SalaryDTO        `json:"salary"`
	EndOfService    EndOfServiceDTO  `json:"end_of_service"`
	Absence         AbsenceDTO       `json:"absence"`
	Breakdown       BreakdownDTO     `json:"breakdown"`
	GrossAmount     float64          `json:"gross_amount"`
	TotalDeductions float64          `json:"total_deductions"`
	NetAmount       float64          `json:"net_amount"`
	CalculatedAt    string           `json:"calculated_at"`
}

// SettlementDTO is a stored settlement.
type SettlementDTO struct {
	ID                      string           `json:"id"`
	SettlementNumber        string           `json:"settlement_number"`
	SettlementType          string           `json:"settlement_type"`
	Status                  string           `json:"status"`
	Currency                string           `json:"currency"`
	EmployeeID              string           `json:"employee_id"`
	EmployeeName            string           `json:"employee_name"`
	HireDate                string           `json:"hire_date"`
	LastWorkingDate         *string          `json:"last_working_date,omitempty"`
	VacationStartDate       *string          `json:"vacation_start_date,omitempty"`
	VacationEndDate         *string          `json:"vacation_end_date,omitempty"`
	ExpectedReturnDate      *string          `json:"expected_return_date,omitempty"`
	VacationDays            int              `json:"vacation_days,omitempty"`
	Service                 ServicePeriodDTO `json:"service_period"`
	BasicSalary             float64          `json:"basic_salary"`
	Allowances              float64          `json:"allowances"`
	UnpaidMonths            float64          `json:"unpaid_months"`
	CalculationMethod       string           `json:"calculation_method"`
	IsResignation           bool             `json:"is_resignation"`
	AbsentCalculationPeriod string           `json:"absent_calculation_period"`
	AbsentStartDate         string           `json:"absent_start_date"`
	AbsentEndDate           string           `json:"absent_end_date"`
	Breakdown               BreakdownDTO     `json:"breakdown"`
	Details                 DetailsDTO       `json:"calculation_details"`
	GrossAmount             float64          `json:"gross_amount"`
	TotalDeductions         float64          `json:"total_deductions"`
	NetAmount               float64          `json:"net_amount"`
	PreparedBy              string           `json:"prepared_by,omitempty"`
	Notes                   string           `json:"notes,omitempty"`
	CreatedAt               string           `json:"created_at"`
	UpdatedAt               string           `json:"updated_at"`
}

// DetailsDTO carries the intermediate figures stored with a settlement.
type DetailsDTO struct {
	YearsForCalculation float64  `json:"years_for_calculation"`
	FullBenefitYears    float64  `json:"full_benefit_years"`
	HalfBenefitYears    float64  `json:"half_benefit_years"`
	ReductionPercentage float64  `json:"reduction_percentage"`
	AbsentDailyRate     float64  `json:"absent_daily_rate"`
	AbsentTotalDays     int      `json:"absent_total_days"`
	AbsentWorkingDays   int      `json:"absent_working_days"`
	AbsentDates         []string `json:"absent_dates"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"` // "vacation" or "exit"
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func money(d decimal.Decimal) float64 {
	return generic.RoundMoney(d).InexactFloat64()
}

func optionalDecimal(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}

func optionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := generic.FormatDate(*t)
	return &s
}

func toServicePeriodDTO(p generic.ServicePeriod) ServicePeriodDTO {
	return ServicePeriodDTO{Years: p.Years, Months: p.Months, Days: p.Days}
}

func toUnpaidSalaryDTO(u settlement.UnpaidSalaryInfo) UnpaidSalaryDTO {
	return UnpaidSalaryDTO{
		EmployeeID:        string(u.EmployeeID),
		UnpaidMonths:      u.UnpaidMonths,
		UnpaidAmount:      money(u.UnpaidAmount),
		TotalUnpaidMonths: u.TotalUnpaidMonths,
		LastPaidMonth:     int(u.LastPaidMonth),
		LastPaidYear:      u.LastPaidYear,
		LastPaidDate:      optionalDate(u.LastPaidDate),
		BasicSalary:       money(u.BasicSalary),
		Allowances:        money(u.Allowances),
	}
}

func toAbsenceDTO(a settlement.AbsentCalculation) AbsenceDTO {
	dates := a.Details.AbsentDates
	if dates == nil {
		dates = []string{}
	}
	return AbsenceDTO{
		AbsentDays:        a.AbsentDays,
		DeductionAmount:   money(a.DeductionAmount),
		CalculationPeriod: string(a.CalculationPeriod),
		StartDate:         generic.FormatDate(a.StartDate),
		EndDate:           generic.FormatDate(a.EndDate),
		DailyRate:         money(a.DailyRate),
		TotalDaysInPeriod: a.Details.TotalDaysInPeriod,
		WorkingDays:       a.Details.WorkingDays,
		AbsentDates:       dates,
	}
}

func toBreakdownDTO(b settlement.Breakdown) BreakdownDTO {
	return BreakdownDTO{
		UnpaidSalaries:        money(b.UnpaidSalaries),
		EndOfServiceBenefit:   money(b.EndOfServiceBenefit),
		VacationAllowance:     money(b.VacationAllowance),
		AccruedVacationDays:   b.AccruedVacationDays.InexactFloat64(),
		AccruedVacationAmount: money(b.AccruedVacationAmount),
		OvertimeHours:         b.OvertimeHours.InexactFloat64(),
		OvertimeAmount:        money(b.OvertimeAmount),
		OtherBenefits:         money(b.OtherBenefits),
		PendingAdvances:       money(b.PendingAdvances),
		EquipmentDeductions:   money(b.EquipmentDeductions),
		OtherDeductions:       money(b.OtherDeductions),
		AbsentDays:            b.AbsentDays,
		AbsenceDeduction:      money(b.AbsenceDeduction),
	}
}

func toSettlementPreviewDTO(d *settlement.FinalSettlementData) SettlementPreviewDTO {
	e := d.Employee
	eos := d.EndOfService
	dto := SettlementPreviewDTO{
		SettlementType: string(d.Type),
		Employee: EmployeeDTO{
			ID:          string(e.ID),
			Name:        e.Name,
			Nationality: e.Nationality,
			HireDate:    generic.FormatDate(e.HireDate),
			FileNumber:  e.FileNumber,
			IqamaNumber: e.IqamaNumber,
			Department:  e.Department,
			Designation: e.Designation,
		},
		HireDate:        generic.FormatDate(d.Service.HireDate),
		LastWorkingDate: generic.FormatDate(d.Service.LastWorkingDate),
		Service:         toServicePeriodDTO(d.Service.Period),
		IsResignation:   d.IsResignation,
		Salary: SalaryDTO{
			BasicSalary:   money(d.Salary.BasicSalary),
			Allowances:    money(d.Salary.Allowances),
			MonthlySalary: money(d.Salary.MonthlySalary),
			UnpaidMonths:  d.Salary.UnpaidMonths.InexactFloat64(),
			UnpaidAmount:  money(d.Salary.UnpaidAmount),
			LastPaidMonth: int(d.Salary.LastPaidMonth),
			LastPaidYear:  d.Salary.LastPaidYear,
		},
		EndOfService: EndOfServiceDTO{
			Service:             toServicePeriodDTO(eos.Service),
			BenefitAmount:       money(eos.BenefitAmount),
			CalculationMethod:   string(eos.Method),
			YearsForCalculation: eos.Details.YearsForCalculation.Round(4).InexactFloat64(),
			FullBenefitYears:    eos.Details.FullBenefitYears.Round(4).InexactFloat64(),
			HalfBenefitYears:    eos.Details.HalfBenefitYears.Round(4).InexactFloat64(),
			ReductionPercentage: eos.Details.ReductionPercentage.InexactFloat64(),
		},
		Absence:         toAbsenceDTO(d.Absence),
		Breakdown:       toBreakdownDTO(d.Final.Breakdown),
		GrossAmount:     money(d.Final.GrossAmount),
		TotalDeductions: money(d.Final.TotalDeductions),
		NetAmount:       money(d.Final.NetAmount),
		CalculatedAt:    d.CalculatedAt.Format(time.RFC3339),
	}
	if v := d.Vacation; v != nil {
		dto.Vacation = &VacationDTO{
			StartDate:         generic.FormatDate(v.StartDate),
			EndDate:           generic.FormatDate(v.EndDate),
			ReturnDate:        generic.FormatDate(v.ReturnDate),
			VacationDays:      v.VacationDays,
			VacationAllowance: money(v.VacationAllowance),
		}
	}
	return dto
}

func toSettlementDTO(fs settlement.FinalSettlement) SettlementDTO {
	return SettlementDTO{
		ID:                      fs.ID,
		SettlementNumber:        fs.SettlementNumber,
		SettlementType:          string(fs.Type),
		Status:                  string(fs.Status),
		Currency:                fs.Currency,
		EmployeeID:              string(fs.EmployeeID),
		EmployeeName:            fs.EmployeeName,
		HireDate:                generic.FormatDate(fs.HireDate),
		LastWorkingDate:         optionalDate(fs.LastWorkingDate),
		VacationStartDate:       optionalDate(fs.VacationStartDate),
		VacationEndDate:         optionalDate(fs.VacationEndDate),
		ExpectedReturnDate:      optionalDate(fs.ExpectedReturnDate),
		VacationDays:            fs.VacationDays,
		Service:                 ServicePeriodDTO{Years: fs.ServiceYears, Months: fs.ServiceMonths, Days: fs.ServiceDays},
		BasicSalary:             money(fs.BasicSalary),
		Allowances:              money(fs.Allowances),
		UnpaidMonths:            fs.UnpaidMonths.InexactFloat64(),
		CalculationMethod:       string(fs.CalculationMethod),
		IsResignation:           fs.IsResignation,
		AbsentCalculationPeriod: string(fs.AbsentCalculationPeriod),
		AbsentStartDate:         generic.FormatDate(fs.AbsentStartDate),
		AbsentEndDate:           generic.FormatDate(fs.AbsentEndDate),
		Breakdown:               toBreakdownDTO(fs.Breakdown),
		Details:                 toDetailsDTO(fs.Details),
		GrossAmount:             money(fs.GrossAmount),
		TotalDeductions:         money(fs.TotalDeductions),
		NetAmount:               money(fs.NetAmount),
		PreparedBy:              fs.PreparedBy,
		Notes:                   fs.Notes,
		CreatedAt:               fs.CreatedAt.Format(time.RFC3339),
		UpdatedAt:               fs.UpdatedAt.Format(time.RFC3339),
	}
}

func toDetailsDTO(d settlement.CalculationDetails) DetailsDTO {
	dates := d.AbsentDates
	if dates == nil {
		dates = []string{}
	}
	eos := d.EndOfService
	return DetailsDTO{
		YearsForCalculation: eos.YearsForCalculation.Round(4).InexactFloat64(),
		FullBenefitYears:    eos.FullBenefitYears.Round(4).InexactFloat64(),
		HalfBenefitYears:    eos.HalfBenefitYears.Round(4).InexactFloat64(),
		ReductionPercentage: eos.ReductionPercentage.InexactFloat64(),
		AbsentDailyRate:     money(d.AbsentDailyRate),
		AbsentTotalDays:     d.AbsentTotalDays,
		AbsentWorkingDays:   d.AbsentWorkingDays,
		AbsentDates:         dates,
	}
}
