package settlement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/generic"
)

// =============================================================================
// INPUTS
// =============================================================================

// AdditionalData carries manual overrides and extra line items. Pointer
// overrides replace the computed value only when strictly positive.
type AdditionalData struct {
	// VacationMonths, when positive, sets vacation days to months * DaysPerMonth.
	VacationMonths *decimal.Decimal

	ManualUnpaidSalary      *decimal.Decimal
	ManualVacationAllowance *decimal.Decimal
	ManualAbsentDays        *int

	OvertimeHours        *decimal.Decimal
	ManualOvertimeAmount *decimal.Decimal

	// AccruedVacationDays is paid out at the daily rate on exit.
	AccruedVacationDays decimal.Decimal

	OtherBenefits       decimal.Decimal
	PendingAdvances     decimal.Decimal
	EquipmentDeductions decimal.Decimal
	OtherDeductions     decimal.Decimal

	AbsencePeriod CalculationPeriod
	AbsenceStart  *time.Time
	AbsenceEnd    *time.Time
}

type VacationInput struct {
	EmployeeID generic.EntityID
	StartDate  time.Time
	EndDate    time.Time
	ReturnDate time.Time
	Extra      AdditionalData
}

type ExitInput struct {
	EmployeeID      generic.EntityID
	LastWorkingDate time.Time
	IsResignation   bool
	Extra           AdditionalData
}

// =============================================================================
// ENTRY POINTS
// =============================================================================

// CalculateVacationSettlement computes a vacation settlement. It never pays an
// end-of-service benefit; the vacation allowance defaults to one month's basic
// salary.
func (s *Service) CalculateVacationSettlement(ctx context.Context, in VacationInput) (*FinalSettlementData, error) {
	base, err := s.gather(ctx, in.EmployeeID, in.Extra)
	if err != nil {
		return nil, err
	}

	start, end := generic.DateOf(in.StartDate), generic.DateOf(in.EndDate)
	period := generic.ServicePeriodBetween(base.employee.HireDate, start)

	allowance, _ := generic.PositiveOr(in.Extra.ManualVacationAllowance, base.basic)

	data := base.snapshot(TypeVacation)
	data.Service = ServiceDetails{HireDate: base.employee.HireDate, LastWorkingDate: start, Period: period}
	data.Vacation = &VacationDetails{
		StartDate:         start,
		EndDate:           end,
		ReturnDate:        generic.DateOf(in.ReturnDate),
		VacationDays:      s.vacationDays(start, end, in.Extra.VacationMonths),
		VacationAllowance: allowance,
	}
	data.EndOfService = vacationEndOfService(period)

	data.Final = s.assemble(base, in.Extra, lineItems{
		vacationAllowance: allowance,
	})
	return data, nil
}

// CalculateExitSettlement computes a final settlement for an employee leaving
// on lastWorkingDate, including the end-of-service benefit.
func (s *Service) CalculateExitSettlement(ctx context.Context, in ExitInput) (*FinalSettlementData, error) {
	base, err := s.gather(ctx, in.EmployeeID, in.Extra)
	if err != nil {
		return nil, err
	}

	last := generic.DateOf(in.LastWorkingDate)
	eos := CalculateEndOfService(base.employee.HireDate, last, base.basic, in.IsResignation)

	data := base.snapshot(TypeExit)
	data.IsResignation = in.IsResignation
	data.Service = ServiceDetails{HireDate: base.employee.HireDate, LastWorkingDate: last, Period: eos.Service}
	data.EndOfService = eos

	accrued := s.Policy.DailyRate(base.basic).Mul(in.Extra.AccruedVacationDays)
	data.Final = s.assemble(base, in.Extra, lineItems{
		endOfService:          eos.BenefitAmount,
		accruedVacationAmount: accrued,
	})
	return data, nil
}

// =============================================================================
// SHARED STEPS
// =============================================================================

// gathered holds everything both settlement types read from the store.
type gathered struct {
	employee   *Employee
	basic      decimal.Decimal
	salary     SalaryInfo
	absence    AbsentCalculation
	overtime   decimal.Decimal
	calculated time.Time
}

func (s *Service) gather(ctx context.Context, id generic.EntityID, extra AdditionalData) (*gathered, error) {
	emp, err := s.employee(ctx, id)
	if err != nil {
		return nil, err
	}

	unpaid, err := s.UnpaidSalary(ctx, id)
	if err != nil {
		return nil, err
	}
	basic, allowances := unpaid.BasicSalary, unpaid.Allowances
	monthly := unpaid.MonthlySalary()

	salary := SalaryInfo{
		BasicSalary:   basic,
		Allowances:    allowances,
		MonthlySalary: monthly,
		UnpaidMonths:  decimal.NewFromInt(int64(unpaid.UnpaidMonths)),
		UnpaidAmount:  unpaid.UnpaidAmount,
		LastPaidMonth: unpaid.LastPaidMonth,
		LastPaidYear:  unpaid.LastPaidYear,
		LastPaidDate:  unpaid.LastPaidDate,
	}
	if amount, ok := generic.PositiveOr(extra.ManualUnpaidSalary, unpaid.UnpaidAmount); ok {
		salary.UnpaidAmount = amount
		salary.UnpaidMonths = decimal.Zero
		if monthly.IsPositive() {
			salary.UnpaidMonths = amount.Div(monthly).Round(1)
		}
	}

	absence, err := s.CalculateAbsence(ctx, AbsenceInput{
		EmployeeID:  id,
		Period:      extra.AbsencePeriod,
		Start:       extra.AbsenceStart,
		End:         extra.AbsenceEnd,
		BasicSalary: &basic,
	})
	if err != nil {
		return nil, err
	}
	if extra.ManualAbsentDays != nil && *extra.ManualAbsentDays > 0 {
		absence.AbsentDays = *extra.ManualAbsentDays
		absence.DeductionAmount = absence.DailyRate.Mul(decimal.NewFromInt(int64(absence.AbsentDays)))
	}

	return &gathered{
		employee:   emp,
		basic:      basic,
		salary:     salary,
		absence:    absence,
		overtime:   s.overtimeAmount(emp, basic, extra),
		calculated: s.now(),
	}, nil
}

func (g *gathered) snapshot(t SettlementType) *FinalSettlementData {
	e := g.employee
	return &FinalSettlementData{
		Type: t,
		Employee: EmployeeSnapshot{
			ID:          e.ID,
			Name:        e.Name,
			Nationality: e.Nationality,
			HireDate:    e.HireDate,
			FileNumber:  e.FileNumber,
			IqamaNumber: e.IqamaNumber,
			Department:  e.Department,
			Designation: e.Designation,
		},
		Salary:       g.salary,
		Absence:      g.absence,
		CalculatedAt: g.calculated,
	}
}

// overtimeAmount uses a positive manual amount verbatim, otherwise prices
// positive overtime hours at the hourly rate times the overtime multiplier.
func (s *Service) overtimeAmount(emp *Employee, basic decimal.Decimal, extra AdditionalData) decimal.Decimal {
	if amount, ok := generic.PositiveOr(extra.ManualOvertimeAmount, decimal.Zero); ok {
		return amount
	}
	if extra.OvertimeHours != nil && extra.OvertimeHours.IsPositive() {
		rate := s.Policy.HourlyRate(basic).Mul(s.Policy.OvertimeMultiplier(emp))
		return rate.Mul(*extra.OvertimeHours)
	}
	return decimal.Zero
}

// vacationDays is months * DaysPerMonth (rounded) when months is positive,
// otherwise the inclusive day count of [start, end].
func (s *Service) vacationDays(start, end time.Time, months *decimal.Decimal) int {
	if months != nil && months.IsPositive() {
		return int(months.Mul(decimal.NewFromInt(int64(s.Policy.DaysPerMonth))).Round(0).IntPart())
	}
	return generic.NonNegative(generic.DaysBetween(start, end) + 1)
}

type lineItems struct {
	endOfService          decimal.Decimal
	vacationAllowance     decimal.Decimal
	accruedVacationAmount decimal.Decimal
}

// assemble rounds every line item once and derives gross, deductions and net
// from the rounded values, so net == gross - deductions exactly.
func (s *Service) assemble(g *gathered, extra AdditionalData, items lineItems) FinalCalculation {
	r := generic.RoundMoney
	overtimeHours := decimal.Zero
	if extra.OvertimeHours != nil {
		overtimeHours = *extra.OvertimeHours
	}

	b := Breakdown{
		UnpaidSalaries:        r(g.salary.UnpaidAmount),
		EndOfServiceBenefit:   r(items.endOfService),
		VacationAllowance:     r(items.vacationAllowance),
		AccruedVacationDays:   extra.AccruedVacationDays,
		AccruedVacationAmount: r(items.accruedVacationAmount),
		OvertimeHours:         overtimeHours,
		OvertimeAmount:        r(g.overtime),
		OtherBenefits:         r(extra.OtherBenefits),
		PendingAdvances:       r(extra.PendingAdvances),
		EquipmentDeductions:   r(extra.EquipmentDeductions),
		OtherDeductions:       r(extra.OtherDeductions),
		AbsentDays:            g.absence.AbsentDays,
		AbsenceDeduction:      r(g.absence.DeductionAmount),
	}

	gross := b.UnpaidSalaries.
		Add(b.EndOfServiceBenefit).
		Add(b.VacationAllowance).
		Add(b.AccruedVacationAmount).
		Add(b.OvertimeAmount).
		Add(b.OtherBenefits)
	deductions := b.PendingAdvances.
		Add(b.EquipmentDeductions).
		Add(b.OtherDeductions).
		Add(b.AbsenceDeduction)

	return FinalCalculation{
		GrossAmount:     gross,
		TotalDeductions: deductions,
		NetAmount:       gross.Sub(deductions),
		Breakdown:       b,
	}
}
