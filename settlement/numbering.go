package settlement

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SETTLEMENT NUMBERS - {PREFIX}-{year}-{sequence:04d}
// =============================================================================

// Numberer hands out settlement numbers. It takes the highest stored sequence
// for the prefix and year and adds one. It also remembers what it issued,
// so two calls in one process never repeat a number even before the first
// one is persisted. Across processes the store's unique constraint decides.
type Numberer struct {
	mu     sync.Mutex
	issued map[string]int
}

func NewNumberer() *Numberer {
	return &Numberer{issued: make(map[string]int)}
}

// Next returns the next settlement number for the type and year.
func (n *Numberer) Next(ctx context.Context, store SettlementStore, t SettlementType, year int) (string, error) {
	if !t.Valid() {
		return "", ErrInvalidSettlementType
	}
	base := fmt.Sprintf("%s-%d", t.Prefix(), year)

	n.mu.Lock()
	defer n.mu.Unlock()

	existing, err := store.SettlementNumbers(ctx, base)
	if err != nil {
		return "", fmt.Errorf("load settlement numbers for %s: %w", base, err)
	}

	seq := max(highestSequence(base, existing), n.issued[base]) + 1
	n.issued[base] = seq
	return FormatSettlementNumber(base, seq), nil
}

// Reset forgets every issued sequence, so numbering restarts from what the
// store holds. Call it after the store itself has been cleared.
func (n *Numberer) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	clear(n.issued)
}

// FormatSettlementNumber joins the prefix-year base and a zero-padded sequence.
func FormatSettlementNumber(base string, seq int) string {
	return fmt.Sprintf("%s-%04d", base, seq)
}

// highestSequence finds the largest numeric suffix among numbers that start
// with base; anything unparsable is ignored.
func highestSequence(base string, numbers []string) int {
	highest := 0
	for _, num := range numbers {
		suffix, ok := strings.CutPrefix(num, base+"-")
		if !ok {
			continue
		}
		seq, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		highest = max(highest, seq)
	}
	return highest
}

// GenerateSettlementNumber numbers a settlement of type t in the current year.
func (s *Service) GenerateSettlementNumber(ctx context.Context, t SettlementType) (string, error) {
	return s.numberer.Next(ctx, s.Store, t, s.today().Year())
}

// ResetNumbering drops the numbers remembered by this service.
func (s *Service) ResetNumbering() {
	s.numberer.Reset()
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// CreateSettlement numbers the calculated settlement and stores it as a draft.
func (s *Service) CreateSettlement(ctx context.Context, data *FinalSettlementData, preparedBy, notes string) (FinalSettlement, error) {
	if data == nil {
		return FinalSettlement{}, ErrMissingData
	}

	number, err := s.GenerateSettlementNumber(ctx, data.Type)
	if err != nil {
		return FinalSettlement{}, err
	}

	record := NewFinalSettlement(data, number, s.Policy.Currency, preparedBy, notes, s.now())
	stored, err := s.Store.InsertSettlement(ctx, record)
	if err != nil {
		return FinalSettlement{}, fmt.Errorf("insert settlement %s: %w", number, err)
	}

	s.logger().InfoContext(ctx, "settlement created",
		"settlement_number", stored.SettlementNumber,
		"employee_id", stored.EmployeeID,
		"type", stored.Type,
		"net_amount", stored.NetAmount.StringFixed(2),
	)
	return stored, nil
}

// GetSettlement loads a stored settlement by id.
func (s *Service) GetSettlement(ctx context.Context, id string) (*FinalSettlement, error) {
	stored, err := s.Store.GetSettlement(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load settlement %s: %w", id, err)
	}
	if stored == nil {
		return nil, settlementNotFound(id)
	}
	return stored, nil
}

// NewFinalSettlement flattens a calculation into a draft record.
func NewFinalSettlement(data *FinalSettlementData, number, currency, preparedBy, notes string, now time.Time) FinalSettlement {
	details := CalculationDetails{
		EndOfService:      data.EndOfService.Details,
		AbsentDailyRate:   data.Absence.DailyRate,
		AbsentTotalDays:   data.Absence.Details.TotalDaysInPeriod,
		AbsentWorkingDays: data.Absence.Details.WorkingDays,
		AbsentDates:       slices.Clone(data.Absence.Details.AbsentDates),
	}
	fs := FinalSettlement{
		ID:               uuid.New().String(),
		SettlementNumber: number,
		Type:             data.Type,
		Status:           StatusDraft,
		Currency:         currency,

		EmployeeID:   data.Employee.ID,
		EmployeeName: data.Employee.Name,
		HireDate:     data.Employee.HireDate,

		ServiceYears:  data.Service.Period.Years,
		ServiceMonths: data.Service.Period.Months,
		ServiceDays:   data.Service.Period.Days,

		BasicSalary:       data.Salary.BasicSalary,
		Allowances:        data.Salary.Allowances,
		UnpaidMonths:      data.Salary.UnpaidMonths,
		CalculationMethod: data.EndOfService.Method,
		IsResignation:     data.IsResignation,

		AbsentCalculationPeriod: data.Absence.CalculationPeriod,
		AbsentStartDate:         data.Absence.StartDate,
		AbsentEndDate:           data.Absence.EndDate,

		Breakdown:       data.Final.Breakdown,
		Details:         details,
		GrossAmount:     data.Final.GrossAmount,
		TotalDeductions: data.Final.TotalDeductions,
		NetAmount:       data.Final.NetAmount,

		PreparedBy: preparedBy,
		Notes:      notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if v := data.Vacation; v != nil {
		fs.VacationStartDate = timePtr(v.StartDate)
		fs.VacationEndDate = timePtr(v.EndDate)
		fs.ExpectedReturnDate = timePtr(v.ReturnDate)
		fs.VacationDays = v.VacationDays
	} else {
		fs.LastWorkingDate = timePtr(data.Service.LastWorkingDate)
	}
	return fs
}

func timePtr(t time.Time) *time.Time { return &t }
