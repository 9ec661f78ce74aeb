/*
Package sqlite provides a SQLite-backed implementation of settlement.DataStore.

PURPOSE:
  Persists the source records the calculators read (employees, salary
  history, payroll, timesheets) and the final settlements they produce.
  The same schema is mirrored for PostgreSQL in store/postgres.

KEY TABLES:
  employees:         Employee master data
  salary_records:    Time-versioned basic salary + allowances
  payroll_records:   Monthly payroll runs with payment status
  timesheets:        Daily hours per employee
  final_settlements: Stored settlements (one row per settlement event)

INDEXES:
  - idx_salary_records_employee_effective: current-salary lookup (hot path)
  - idx_payroll_records_employee_period: last paid period lookup
  - idx_timesheets_employee_date: absence window scan
  - final_settlements.settlement_number UNIQUE: closes the numbering race

STORAGE FORMATS:
  Dates are TEXT "YYYY-MM-DD" so lexical order is date order. Money is TEXT
  holding the decimal string, never REAL. Timestamps are RFC3339 UTC.

CONCURRENCY:
  Uses sync.RWMutex plus a single open connection, which also keeps a
  ":memory:" database alive for the life of the Store.

USAGE:
  store, err := sqlite.New("./data/settlement.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := settlement.NewService(store, settlement.DefaultPolicy())

MIGRATION:
  Schema is auto-migrated on New().
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/settlement"
)

// Store implements settlement.DataStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ settlement.DataStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		hire_date TEXT NOT NULL,
		nationality TEXT,
		basic_salary TEXT NOT NULL DEFAULT '0',
		overtime_multiplier TEXT NOT NULL DEFAULT '0',
		file_number TEXT,
		iqama_number TEXT,
		department TEXT,
		designation TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS salary_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		basic_salary TEXT NOT NULL,
		allowances TEXT NOT NULL DEFAULT '0',
		effective_date TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_salary_records_employee_effective
		ON salary_records(employee_id, effective_date DESC);

	CREATE TABLE IF NOT EXISTS payroll_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		month INTEGER NOT NULL,
		year INTEGER NOT NULL,
		final_amount TEXT NOT NULL DEFAULT '0',
		payment_status TEXT NOT NULL DEFAULT 'pending',
		paid_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_payroll_records_employee_period
		ON payroll_records(employee_id, payment_status, year DESC, month DESC);

	CREATE TABLE IF NOT EXISTS timesheets (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		date TEXT NOT NULL,
		hours_worked TEXT NOT NULL DEFAULT '0',
		overtime_hours TEXT NOT NULL DEFAULT '0',
		status TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_timesheets_employee_date
		ON timesheets(employee_id, date);

	CREATE TABLE IF NOT EXISTS final_settlements (
		id TEXT PRIMARY KEY,
		settlement_number TEXT NOT NULL UNIQUE,
		settlement_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		currency TEXT NOT NULL DEFAULT 'SAR',
		employee_id TEXT NOT NULL REFERENCES employees(id),
		employee_name TEXT NOT NULL,
		hire_date TEXT NOT NULL,
		last_working_date TEXT,
		vacation_start_date TEXT,
		vacation_end_date TEXT,
		expected_return_date TEXT,
		vacation_days INTEGER NOT NULL DEFAULT 0,
		service_years INTEGER NOT NULL,
		service_months INTEGER NOT NULL,
		service_days INTEGER NOT NULL,
		basic_salary TEXT NOT NULL,
		allowances TEXT NOT NULL,
		unpaid_months TEXT NOT NULL,
		unpaid_amount TEXT NOT NULL,
		end_of_service_amount TEXT NOT NULL,
		calculation_method TEXT NOT NULL,
		is_resignation BOOLEAN NOT NULL DEFAULT FALSE,
		vacation_allowance TEXT NOT NULL,
		overtime_amount TEXT NOT NULL,
		absent_days INTEGER NOT NULL DEFAULT 0,
		absent_deduction TEXT NOT NULL,
		absent_calculation_period TEXT NOT NULL,
		absent_start_date TEXT NOT NULL,
		absent_end_date TEXT NOT NULL,
		gross_amount TEXT NOT NULL,
		total_deductions TEXT NOT NULL,
		net_amount TEXT NOT NULL,
		breakdown_json TEXT NOT NULL,
		details_json TEXT NOT NULL DEFAULT '{}',
		prepared_by TEXT,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_final_settlements_employee
		ON final_settlements(employee_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Reset removes all data. Development only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"final_settlements", "timesheets", "payroll_records", "salary_records", "employees"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee upserts an employee.
func (s *Store) SaveEmployee(ctx context.Context, e settlement.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, hire_date, nationality, basic_salary, overtime_multiplier,
			file_number, iqama_number, department, designation, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			hire_date = excluded.hire_date,
			nationality = excluded.nationality,
			basic_salary = excluded.basic_salary,
			overtime_multiplier = excluded.overtime_multiplier,
			file_number = excluded.file_number,
			iqama_number = excluded.iqama_number,
			department = excluded.department,
			designation = excluded.designation
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.Name, formatDate(e.HireDate), e.Nationality,
		e.BasicSalary.String(), e.OvertimeMultiplier.String(),
		e.FileNumber, e.IqamaNumber, e.Department, e.Designation,
		nowString(),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id generic.EntityID) (*settlement.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		e                              settlement.Employee
		hireDate, basic, multiplier    string
		nationality, fileNumber, iqama sql.NullString
		department, designation        sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, hire_date, nationality, basic_salary, overtime_multiplier,
		       file_number, iqama_number, department, designation
		FROM employees WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Name, &hireDate, &nationality, &basic, &multiplier,
		&fileNumber, &iqama, &department, &designation)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	e.HireDate = parseDate(hireDate)
	e.BasicSalary = generic.MustParseDecimal(basic)
	e.OvertimeMultiplier = generic.MustParseDecimal(multiplier)
	e.Nationality = nationality.String
	e.FileNumber = fileNumber.String
	e.IqamaNumber = iqama.String
	e.Department = department.String
	e.Designation = designation.String
	return &e, nil
}

// =============================================================================
// SALARY RECORDS
// =============================================================================

func (s *Store) SaveSalaryRecord(ctx context.Context, r settlement.SalaryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO salary_records (id, employee_id, basic_salary, allowances, effective_date)
		VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.EmployeeID, r.BasicSalary.String(), r.Allowances.String(), formatDate(r.EffectiveDate),
	)
	if err != nil {
		return fmt.Errorf("failed to save salary record: %w", err)
	}
	return nil
}

// LatestSalaryRecord returns the newest record effective on or before asOf.
func (s *Store) LatestSalaryRecord(ctx context.Context, id generic.EntityID, asOf time.Time) (*settlement.SalaryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		r                       settlement.SalaryRecord
		basic, allowances, date string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, basic_salary, allowances, effective_date
		FROM salary_records
		WHERE employee_id = ? AND effective_date <= ?
		ORDER BY effective_date DESC
		LIMIT 1`,
		id, formatDate(asOf),
	).Scan(&r.ID, &r.EmployeeID, &basic, &allowances, &date)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get salary record: %w", err)
	}

	r.BasicSalary = generic.MustParseDecimal(basic)
	r.Allowances = generic.MustParseDecimal(allowances)
	r.EffectiveDate = parseDate(date)
	return &r, nil
}

// =============================================================================
// PAYROLL
// =============================================================================

func (s *Store) SavePayrollRecord(ctx context.Context, r settlement.PayrollRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var paidAt any
	if r.PaidAt != nil {
		paidAt = formatDate(*r.PaidAt)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payroll_records (id, employee_id, month, year, final_amount, payment_status, paid_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.EmployeeID, int(r.Month), r.Year, r.FinalAmount.String(), r.Status, paidAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save payroll record: %w", err)
	}
	return nil
}

// PaidPayrolls returns paid payroll rows, newest period first.
func (s *Store) PaidPayrolls(ctx context.Context, id generic.EntityID) ([]settlement.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, month, year, final_amount, payment_status, paid_at
		FROM payroll_records
		WHERE employee_id = ? AND payment_status = ?
		ORDER BY year DESC, month DESC`,
		id, settlement.PayrollPaid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query payroll records: %w", err)
	}
	defer rows.Close()

	var records []settlement.PayrollRecord
	for rows.Next() {
		var (
			r      settlement.PayrollRecord
			month  int
			amount string
			paidAt sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.EmployeeID, &month, &r.Year, &amount, &r.Status, &paidAt); err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		r.Month = time.Month(month)
		r.FinalAmount = generic.MustParseDecimal(amount)
		if paidAt.Valid {
			t := parseDate(paidAt.String)
			r.PaidAt = &t
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// TIMESHEETS
// =============================================================================

func (s *Store) SaveTimesheet(ctx context.Context, r settlement.TimesheetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO timesheets (id, employee_id, date, hours_worked, overtime_hours, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.EmployeeID, formatDate(r.Date), r.HoursWorked.String(), r.OvertimeHours.String(), r.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to save timesheet: %w", err)
	}
	return nil
}

// Timesheets returns rows dated within [from, to], ordered by date.
func (s *Store) Timesheets(ctx context.Context, id generic.EntityID, from, to time.Time) ([]settlement.TimesheetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, date, hours_worked, overtime_hours, status
		FROM timesheets
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`,
		id, formatDate(from), formatDate(to),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query timesheets: %w", err)
	}
	defer rows.Close()

	var records []settlement.TimesheetRecord
	for rows.Next() {
		var (
			r                     settlement.TimesheetRecord
			date, hours, overtime string
			status                sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.EmployeeID, &date, &hours, &overtime, &status); err != nil {
			return nil, fmt.Errorf("failed to scan timesheet: %w", err)
		}
		r.Date = parseDate(date)
		r.HoursWorked = generic.MustParseDecimal(hours)
		r.OvertimeHours = generic.MustParseDecimal(overtime)
		r.Status = status.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// FINAL SETTLEMENTS
// =============================================================================

// SettlementNumbers returns numbers starting with prefix, newest first.
func (s *Store) SettlementNumbers(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT settlement_number FROM final_settlements
		WHERE settlement_number LIKE ? || '%'
		ORDER BY settlement_number DESC`,
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlement numbers: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan settlement number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

// InsertSettlement writes one settlement row.
func (s *Store) InsertSettlement(ctx context.Context, fs settlement.FinalSettlement) (settlement.FinalSettlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	breakdownJSON, err := json.Marshal(fs.Breakdown)
	if err != nil {
		return settlement.FinalSettlement{}, fmt.Errorf("failed to encode breakdown: %w", err)
	}
	detailsJSON, err := json.Marshal(fs.Details)
	if err != nil {
		return settlement.FinalSettlement{}, fmt.Errorf("failed to encode calculation details: %w", err)
	}

	b := fs.Breakdown
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO final_settlements (
			id, settlement_number, settlement_type, status, currency,
			employee_id, employee_name, hire_date,
			last_working_date, vacation_start_date, vacation_end_date, expected_return_date, vacation_days,
			service_years, service_months, service_days,
			basic_salary, allowances, unpaid_months, unpaid_amount,
			end_of_service_amount, calculation_method, is_resignation,
			vacation_allowance, overtime_amount,
			absent_days, absent_deduction, absent_calculation_period, absent_start_date, absent_end_date,
			gross_amount, total_deductions, net_amount, breakdown_json, details_json,
			prepared_by, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fs.ID, fs.SettlementNumber, fs.Type, fs.Status, fs.Currency,
		fs.EmployeeID, fs.EmployeeName, formatDate(fs.HireDate),
		nullDate(fs.LastWorkingDate), nullDate(fs.VacationStartDate), nullDate(fs.VacationEndDate),
		nullDate(fs.ExpectedReturnDate), fs.VacationDays,
		fs.ServiceYears, fs.ServiceMonths, fs.ServiceDays,
		fs.BasicSalary.String(), fs.Allowances.String(), fs.UnpaidMonths.String(), b.UnpaidSalaries.String(),
		b.EndOfServiceBenefit.String(), fs.CalculationMethod, fs.IsResignation,
		b.VacationAllowance.String(), b.OvertimeAmount.String(),
		b.AbsentDays, b.AbsenceDeduction.String(), fs.AbsentCalculationPeriod,
		formatDate(fs.AbsentStartDate), formatDate(fs.AbsentEndDate),
		fs.GrossAmount.String(), fs.TotalDeductions.String(), fs.NetAmount.String(), string(breakdownJSON), string(detailsJSON),
		fs.PreparedBy, fs.Notes, formatTime(fs.CreatedAt), formatTime(fs.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return settlement.FinalSettlement{}, settlement.ErrDuplicateSettlementNumber
		}
		return settlement.FinalSettlement{}, fmt.Errorf("failed to insert settlement: %w", err)
	}

	return fs, nil
}

// GetSettlement retrieves a settlement by ID.
func (s *Store) GetSettlement(ctx context.Context, id string) (*settlement.FinalSettlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		fs                                        settlement.FinalSettlement
		hireDate, absentStart, absentEnd          string
		lastWorking, vacStart, vacEnd, returnDate sql.NullString
		basic, allowances, unpaidMonths           string
		gross, deductions, net, breakdownJSON     string
		detailsJSON                               string
		preparedBy, notes                         sql.NullString
		createdAt, updatedAt                      string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, settlement_number, settlement_type, status, currency,
		       employee_id, employee_name, hire_date,
		       last_working_date, vacation_start_date, vacation_end_date, expected_return_date, vacation_days,
		       service_years, service_months, service_days,
		       basic_salary, allowances, unpaid_months, calculation_method, is_resignation,
		       absent_calculation_period, absent_start_date, absent_end_date,
		       gross_amount, total_deductions, net_amount, breakdown_json, details_json,
		       prepared_by, notes, created_at, updated_at
		FROM final_settlements WHERE id = ?`,
		id,
	).Scan(&fs.ID, &fs.SettlementNumber, &fs.Type, &fs.Status, &fs.Currency,
		&fs.EmployeeID, &fs.EmployeeName, &hireDate,
		&lastWorking, &vacStart, &vacEnd, &returnDate, &fs.VacationDays,
		&fs.ServiceYears, &fs.ServiceMonths, &fs.ServiceDays,
		&basic, &allowances, &unpaidMonths, &fs.CalculationMethod, &fs.IsResignation,
		&fs.AbsentCalculationPeriod, &absentStart, &absentEnd,
		&gross, &deductions, &net, &breakdownJSON, &detailsJSON,
		&preparedBy, &notes, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	if err := json.Unmarshal([]byte(breakdownJSON), &fs.Breakdown); err != nil {
		return nil, fmt.Errorf("failed to decode breakdown: %w", err)
	}
	if err := json.Unmarshal([]byte(detailsJSON), &fs.Details); err != nil {
		return nil, fmt.Errorf("failed to decode calculation details: %w", err)
	}

	fs.HireDate = parseDate(hireDate)
	fs.LastWorkingDate = parseNullDate(lastWorking)
	fs.VacationStartDate = parseNullDate(vacStart)
	fs.VacationEndDate = parseNullDate(vacEnd)
	fs.ExpectedReturnDate = parseNullDate(returnDate)
	fs.AbsentStartDate = parseDate(absentStart)
	fs.AbsentEndDate = parseDate(absentEnd)
	fs.BasicSalary = generic.MustParseDecimal(basic)
	fs.Allowances = generic.MustParseDecimal(allowances)
	fs.UnpaidMonths = generic.MustParseDecimal(unpaidMonths)
	fs.GrossAmount = generic.MustParseDecimal(gross)
	fs.TotalDeductions = generic.MustParseDecimal(deductions)
	fs.NetAmount = generic.MustParseDecimal(net)
	fs.PreparedBy = preparedBy.String
	fs.Notes = notes.String
	fs.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	fs.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &fs, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func formatDate(t time.Time) string { return generic.FormatDate(t) }

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func nowString() string { return formatTime(time.Now()) }

func parseDate(s string) time.Time {
	t, _ := generic.ParseDate(s)
	return t
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatDate(*t)
}

func parseNullDate(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := parseDate(ns.String)
	return &t
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
