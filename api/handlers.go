/*
handlers.go - HTTP API handlers for the settlement engine

PURPOSE:
  Exposes the settlement calculators via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to settlement.Service.

ENDPOINTS:
  Employees:
    GET    /api/employees/{id}/unpaid-salary     Unpaid salary since last payroll
    GET    /api/employees/{id}/absences          Absence deduction (?period=&start=&end=)

  Settlements:
    POST   /api/settlements/vacation/preview     Calculate a vacation settlement
    POST   /api/settlements/exit/preview         Calculate an exit settlement
    POST   /api/settlements                      Calculate, number and store as draft
    GET    /api/settlements/{id}                 Stored settlement

  Scenarios:
    GET    /api/scenarios                        List demo scenarios
    POST   /api/scenarios/load                   Load a demo scenario

REQUEST FLOW:
  1. Decode JSON body
  2. Validate with go-playground/validator
  3. Call settlement.Service
  4. Serialize DTO

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Employee or settlement not found
  - 409: Settlement number collision
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/settlement"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *settlement.Service
	Store   settlement.DataStore
	Logger  *slog.Logger

	validator *validator.Validate

	// Track currently loaded scenario
	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler around the service and its store.
func NewHandler(svc *settlement.Service, store settlement.DataStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Service:   svc,
		Store:     store,
		Logger:    logger,
		validator: validator.New(),
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// GetUnpaidSalary returns salary owed since the last paid payroll month.
// GET /api/employees/{id}/unpaid-salary
func (h *Handler) GetUnpaidSalary(w http.ResponseWriter, r *http.Request) {
	id := generic.EntityID(chi.URLParam(r, "id"))

	info, err := h.Service.UnpaidSalary(r.Context(), id)
	if err != nil {
		h.handleError(w, r, "Failed to calculate unpaid salary", err)
		return
	}

	writeJSON(w, http.StatusOK, toUnpaidSalaryDTO(info))
}

// GetAbsences returns the absence deduction for a window.
// GET /api/employees/{id}/absences?period=last_month|unpaid_period|custom&start=&end=
func (h *Handler) GetAbsences(w http.ResponseWriter, r *http.Request) {
	id := generic.EntityID(chi.URLParam(r, "id"))
	q := r.URL.Query()

	in := settlement.AbsenceInput{
		EmployeeID: id,
		Period:     settlement.CalculationPeriod(q.Get("period")),
	}
	var err error
	if in.Start, err = parseOptionalDate(q.Get("start")); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", err)
		return
	}
	if in.End, err = parseOptionalDate(q.Get("end")); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", err)
		return
	}

	result, err := h.Service.CalculateAbsence(r.Context(), in)
	if err != nil {
		h.handleError(w, r, "Failed to calculate absences", err)
		return
	}

	writeJSON(w, http.StatusOK, toAbsenceDTO(result))
}

// =============================================================================
// SETTLEMENT HANDLERS
// =============================================================================

// PreviewVacationSettlement calculates a vacation settlement without saving it.
// POST /api/settlements/vacation/preview
func (h *Handler) PreviewVacationSettlement(w http.ResponseWriter, r *http.Request) {
	var req VacationPreviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	in, err := vacationInput(req.EmployeeID, req.VacationStartDate, req.VacationEndDate, req.ExpectedReturnDate, req.AdditionalData)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid vacation request", err)
		return
	}

	data, err := h.Service.CalculateVacationSettlement(r.Context(), in)
	if err != nil {
		h.handleError(w, r, "Failed to calculate vacation settlement", err)
		return
	}

	writeJSON(w, http.StatusOK, toSettlementPreviewDTO(data))
}

// PreviewExitSettlement calculates an exit settlement without saving it.
// POST /api/settlements/exit/preview
func (h *Handler) PreviewExitSettlement(w http.ResponseWriter, r *http.Request) {
	var req ExitPreviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	in, err := exitInput(req.EmployeeID, req.LastWorkingDate, req.IsResignation, req.AdditionalData)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid exit request", err)
		return
	}

	data, err := h.Service.CalculateExitSettlement(r.Context(), in)
	if err != nil {
		h.handleError(w, r, "Failed to calculate exit settlement", err)
		return
	}

	writeJSON(w, http.StatusOK, toSettlementPreviewDTO(data))
}

// CreateSettlement calculates a settlement, numbers it and stores it as a draft.
// POST /api/settlements
func (h *Handler) CreateSettlement(w http.ResponseWriter, r *http.Request) {
	var req CreateSettlementRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	var (
		data *settlement.FinalSettlementData
		err  error
	)
	switch settlement.SettlementType(req.SettlementType) {
	case settlement.TypeVacation:
		if req.VacationStartDate == "" || req.VacationEndDate == "" || req.ExpectedReturnDate == "" {
			writeError(w, http.StatusBadRequest, "Vacation settlements require vacation_start_date, vacation_end_date and expected_return_date", nil)
			return
		}
		in, inErr := vacationInput(req.EmployeeID, req.VacationStartDate, req.VacationEndDate, req.ExpectedReturnDate, req.AdditionalData)
		if inErr != nil {
			writeError(w, http.StatusBadRequest, "Invalid vacation request", inErr)
			return
		}
		data, err = h.Service.CalculateVacationSettlement(ctx, in)
	default:
		if req.LastWorkingDate == "" {
			writeError(w, http.StatusBadRequest, "Exit settlements require last_working_date", nil)
			return
		}
		in, inErr := exitInput(req.EmployeeID, req.LastWorkingDate, req.IsResignation, req.AdditionalData)
		if inErr != nil {
			writeError(w, http.StatusBadRequest, "Invalid exit request", inErr)
			return
		}
		data, err = h.Service.CalculateExitSettlement(ctx, in)
	}
	if err != nil {
		h.handleError(w, r, "Failed to calculate settlement", err)
		return
	}

	stored, err := h.Service.CreateSettlement(ctx, data, req.PreparedBy, req.Notes)
	if err != nil {
		h.handleError(w, r, "Failed to create settlement", err)
		return
	}

	writeJSON(w, http.StatusCreated, toSettlementDTO(stored))
}

// GetSettlement returns a stored settlement.
// GET /api/settlements/{id}
func (h *Handler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	stored, err := h.Service.GetSettlement(r.Context(), id)
	if err != nil {
		h.handleError(w, r, "Failed to get settlement", err)
		return
	}

	writeJSON(w, http.StatusOK, toSettlementDTO(*stored))
}

// =============================================================================
// REQUEST CONVERSION
// =============================================================================

func vacationInput(employeeID, start, end, ret string, extra AdditionalDataRequest) (settlement.VacationInput, error) {
	startDate, err := generic.ParseDate(start)
	if err != nil {
		return settlement.VacationInput{}, err
	}
	endDate, err := generic.ParseDate(end)
	if err != nil {
		return settlement.VacationInput{}, err
	}
	returnDate, err := generic.ParseDate(ret)
	if err != nil {
		return settlement.VacationInput{}, err
	}
	if endDate.Before(startDate) {
		return settlement.VacationInput{}, fmt.Errorf("%w: vacation_end_date before vacation_start_date", generic.ErrInvalidPeriod)
	}
	additional, err := toAdditionalData(extra)
	if err != nil {
		return settlement.VacationInput{}, err
	}
	return settlement.VacationInput{
		EmployeeID: generic.EntityID(employeeID),
		StartDate:  startDate,
		EndDate:    endDate,
		ReturnDate: returnDate,
		Extra:      additional,
	}, nil
}

func exitInput(employeeID, lastWorking string, resigned bool, extra AdditionalDataRequest) (settlement.ExitInput, error) {
	lastDate, err := generic.ParseDate(lastWorking)
	if err != nil {
		return settlement.ExitInput{}, err
	}
	additional, err := toAdditionalData(extra)
	if err != nil {
		return settlement.ExitInput{}, err
	}
	return settlement.ExitInput{
		EmployeeID:      generic.EntityID(employeeID),
		LastWorkingDate: lastDate,
		IsResignation:   resigned,
		Extra:           additional,
	}, nil
}

func toAdditionalData(req AdditionalDataRequest) (settlement.AdditionalData, error) {
	start, err := parseOptionalDate(req.AbsentStartDate)
	if err != nil {
		return settlement.AdditionalData{}, err
	}
	end, err := parseOptionalDate(req.AbsentEndDate)
	if err != nil {
		return settlement.AdditionalData{}, err
	}
	return settlement.AdditionalData{
		VacationMonths:          optionalDecimal(req.VacationMonths),
		ManualUnpaidSalary:      optionalDecimal(req.ManualUnpaidSalary),
		ManualVacationAllowance: optionalDecimal(req.ManualVacationAllowance),
		ManualAbsentDays:        req.ManualAbsentDays,
		OvertimeHours:           optionalDecimal(req.OvertimeHours),
		ManualOvertimeAmount:    optionalDecimal(req.ManualOvertimeAmount),
		AccruedVacationDays:     decimal.NewFromFloat(req.AccruedVacationDays),
		OtherBenefits:           decimal.NewFromFloat(req.OtherBenefits),
		PendingAdvances:         decimal.NewFromFloat(req.PendingAdvances),
		EquipmentDeductions:     decimal.NewFromFloat(req.EquipmentDeductions),
		OtherDeductions:         decimal.NewFromFloat(req.OtherDeductions),
		AbsencePeriod:           settlement.CalculationPeriod(req.AbsentCalculationPeriod),
		AbsenceStart:            start,
		AbsenceEnd:              end,
	}, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := generic.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// decode reads and validates a JSON body, writing a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", validationDetails(err))
		return false
	}
	return true
}

// validationDetails flattens validator errors into "field: rule" messages.
func validationDetails(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Errorf("%s: failed %s", fe.Namespace(), fe.Tag()))
	}
	return errors.Join(msgs...)
}

// handleError maps service errors to HTTP status codes.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		h.Logger.ErrorContext(r.Context(), message, slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
