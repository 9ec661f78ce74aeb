// Package postgres provides a PostgreSQL-backed settlement.DataStore using a
// pgx connection pool. The schema mirrors store/sqlite with native DATE and
// NUMERIC columns.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/warp/settlement-engine/generic"
	"github.com/warp/settlement-engine/settlement"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Store implements settlement.DataStore over a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ settlement.DataStore = (*Store)(nil)

// New connects to dsn, pings, and migrates the schema.
func New(ctx context.Context, dsn string) (*Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 25
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		hire_date DATE NOT NULL,
		nationality TEXT NOT NULL DEFAULT '',
		basic_salary NUMERIC(14,2) NOT NULL DEFAULT 0,
		overtime_multiplier NUMERIC(6,3) NOT NULL DEFAULT 0,
		file_number TEXT NOT NULL DEFAULT '',
		iqama_number TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		designation TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS salary_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		basic_salary NUMERIC(14,2) NOT NULL,
		allowances NUMERIC(14,2) NOT NULL DEFAULT 0,
		effective_date DATE NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_salary_records_employee_effective
		ON salary_records(employee_id, effective_date DESC);

	CREATE TABLE IF NOT EXISTS payroll_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		month INTEGER NOT NULL,
		year INTEGER NOT NULL,
		final_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		payment_status TEXT NOT NULL DEFAULT 'pending',
		paid_at DATE
	);
	CREATE INDEX IF NOT EXISTS idx_payroll_records_employee_period
		ON payroll_records(employee_id, payment_status, year DESC, month DESC);

	CREATE TABLE IF NOT EXISTS timesheets (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		date DATE NOT NULL,
		hours_worked NUMERIC(6,2) NOT NULL DEFAULT 0,
		overtime_hours NUMERIC(6,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT ''
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
		hire_date DATE NOT NULL,
		last_working_date DATE,
		vacation_start_date DATE,
		vacation_end_date DATE,
		expected_return_date DATE,
		vacation_days INTEGER NOT NULL DEFAULT 0,
		service_years INTEGER NOT NULL,
		service_months INTEGER NOT NULL,
		service_days INTEGER NOT NULL,
		basic_salary NUMERIC(14,2) NOT NULL,
		allowances NUMERIC(14,2) NOT NULL,
		unpaid_months NUMERIC(6,1) NOT NULL,
		unpaid_amount NUMERIC(14,2) NOT NULL,
		end_of_service_amount NUMERIC(14,2) NOT NULL,
		calculation_method TEXT NOT NULL,
		is_resignation BOOLEAN NOT NULL DEFAULT FALSE,
		vacation_allowance NUMERIC(14,2) NOT NULL,
		overtime_amount NUMERIC(14,2) NOT NULL,
		absent_days INTEGER NOT NULL DEFAULT 0,
		absent_deduction NUMERIC(14,2) NOT NULL,
		absent_calculation_period TEXT NOT NULL,
		absent_start_date DATE NOT NULL,
		absent_end_date DATE NOT NULL,
		gross_amount NUMERIC(14,2) NOT NULL,
		total_deductions NUMERIC(14,2) NOT NULL,
		net_amount NUMERIC(14,2) NOT NULL,
		breakdown JSONB NOT NULL,
		details JSONB NOT NULL DEFAULT '{}',
		prepared_by TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_final_settlements_employee
		ON final_settlements(employee_id);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Reset removes all data. Development only.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		"TRUNCATE final_settlements, timesheets, payroll_records, salary_records, employees")
	if err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}

// =============================================================================
// SOURCE RECORDS
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, e settlement.Employee) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO employees (id, name, hire_date, nationality, basic_salary, overtime_multiplier,
			file_number, iqama_number, department, designation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			hire_date = EXCLUDED.hire_date,
			nationality = EXCLUDED.nationality,
			basic_salary = EXCLUDED.basic_salary,
			overtime_multiplier = EXCLUDED.overtime_multiplier,
			file_number = EXCLUDED.file_number,
			iqama_number = EXCLUDED.iqama_number,
			department = EXCLUDED.department,
			designation = EXCLUDED.designation`,
		string(e.ID), e.Name, e.HireDate, e.Nationality, e.BasicSalary, e.OvertimeMultiplier,
		e.FileNumber, e.IqamaNumber, e.Department, e.Designation,
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func (s *Store) SaveSalaryRecord(ctx context.Context, r settlement.SalaryRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO salary_records (id, employee_id, basic_salary, allowances, effective_date)
		VALUES ($1, $2, $3, $4, $5)`,
		r.ID, string(r.EmployeeID), r.BasicSalary, r.Allowances, r.EffectiveDate,
	)
	if err != nil {
		return fmt.Errorf("failed to save salary record: %w", err)
	}
	return nil
}

func (s *Store) SavePayrollRecord(ctx context.Context, r settlement.PayrollRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO payroll_records (id, employee_id, month, year, final_amount, payment_status, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, string(r.EmployeeID), int(r.Month), r.Year, r.FinalAmount, string(r.Status), r.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save payroll record: %w", err)
	}
	return nil
}

func (s *Store) SaveTimesheet(ctx context.Context, r settlement.TimesheetRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO timesheets (id, employee_id, date, hours_worked, overtime_hours, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, string(r.EmployeeID), generic.DateOf(r.Date), r.HoursWorked, r.OvertimeHours, r.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to save timesheet: %w", err)
	}
	return nil
}

// =============================================================================
// READS
// =============================================================================

func (s *Store) GetEmployee(ctx context.Context, id generic.EntityID) (*settlement.Employee, error) {
	var (
		e     settlement.Employee
		empID string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, hire_date, nationality, basic_salary, overtime_multiplier,
		       file_number, iqama_number, department, designation
		FROM employees WHERE id = $1`,
		string(id),
	).Scan(&empID, &e.Name, &e.HireDate, &e.Nationality, &e.BasicSalary, &e.OvertimeMultiplier,
		&e.FileNumber, &e.IqamaNumber, &e.Department, &e.Designation)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	e.ID = generic.EntityID(empID)
	return &e, nil
}

func (s *Store) LatestSalaryRecord(ctx context.Context, id generic.EntityID, asOf time.Time) (*settlement.SalaryRecord, error) {
	var r settlement.SalaryRecord
	err := s.pool.QueryRow(ctx, `
		SELECT id, basic_salary, allowances, effective_date
		FROM salary_records
		WHERE employee_id = $1 AND effective_date <= $2
		ORDER BY effective_date DESC
		LIMIT 1`,
		string(id), generic.DateOf(asOf),
	).Scan(&r.ID, &r.BasicSalary, &r.Allowances, &r.EffectiveDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get salary record: %w", err)
	}
	r.EmployeeID = id
	return &r, nil
}

func (s *Store) PaidPayrolls(ctx context.Context, id generic.EntityID) ([]settlement.PayrollRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, month, year, final_amount, payment_status, paid_at
		FROM payroll_records
		WHERE employee_id = $1 AND payment_status = $2
		ORDER BY year DESC, month DESC`,
		string(id), string(settlement.PayrollPaid),
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
			status string
		)
		if err := rows.Scan(&r.ID, &month, &r.Year, &r.FinalAmount, &status, &r.PaidAt); err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		r.EmployeeID = id
		r.Month = time.Month(month)
		r.Status = settlement.PayrollStatus(status)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) Timesheets(ctx context.Context, id generic.EntityID, from, to time.Time) ([]settlement.TimesheetRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, date, hours_worked, overtime_hours, status
		FROM timesheets
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC`,
		string(id), generic.DateOf(from), generic.DateOf(to),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query timesheets: %w", err)
	}
	defer rows.Close()

	var records []settlement.TimesheetRecord
	for rows.Next() {
		var r settlement.TimesheetRecord
		if err := rows.Scan(&r.ID, &r.Date, &r.HoursWorked, &r.OvertimeHours, &r.Status); err != nil {
			return nil, fmt.Errorf("failed to scan timesheet: %w", err)
		}
		r.EmployeeID = id
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// SETTLEMENTS
// =============================================================================

func (s *Store) SettlementNumbers(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT settlement_number FROM final_settlements
		WHERE settlement_number LIKE $1 || '%'
		ORDER BY settlement_number DESC`,
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlement numbers: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *Store) InsertSettlement(ctx context.Context, fs settlement.FinalSettlement) (settlement.FinalSettlement, error) {
	breakdown, err := json.Marshal(fs.Breakdown)
	if err != nil {
		return settlement.FinalSettlement{}, fmt.Errorf("failed to encode breakdown: %w", err)
	}
	details, err := json.Marshal(fs.Details)
	if err != nil {
		return settlement.FinalSettlement{}, fmt.Errorf("failed to encode calculation details: %w", err)
	}

	b := fs.Breakdown
	_, err = s.pool.Exec(ctx, `
		INSERT INTO final_settlements (
			id, settlement_number, settlement_type, status, currency,
			employee_id, employee_name, hire_date,
			last_working_date, vacation_start_date, vacation_end_date, expected_return_date, vacation_days,
			service_years, service_months, service_days,
			basic_salary, allowances, unpaid_months, unpaid_amount,
			end_of_service_amount, calculation_method, is_resignation,
			vacation_allowance, overtime_amount,
			absent_days, absent_deduction, absent_calculation_period, absent_start_date, absent_end_date,
			gross_amount, total_deductions, net_amount, breakdown, details,
			prepared_by, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36, $37, $38, $39)`,
		fs.ID, fs.SettlementNumber, string(fs.Type), string(fs.Status), fs.Currency,
		string(fs.EmployeeID), fs.EmployeeName, fs.HireDate,
		fs.LastWorkingDate, fs.VacationStartDate, fs.VacationEndDate, fs.ExpectedReturnDate, fs.VacationDays,
		fs.ServiceYears, fs.ServiceMonths, fs.ServiceDays,
		fs.BasicSalary, fs.Allowances, fs.UnpaidMonths, b.UnpaidSalaries,
		b.EndOfServiceBenefit, string(fs.CalculationMethod), fs.IsResignation,
		b.VacationAllowance, b.OvertimeAmount,
		b.AbsentDays, b.AbsenceDeduction, string(fs.AbsentCalculationPeriod), fs.AbsentStartDate, fs.AbsentEndDate,
		fs.GrossAmount, fs.TotalDeductions, fs.NetAmount, breakdown, details,
		fs.PreparedBy, fs.Notes, fs.CreatedAt, fs.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return settlement.FinalSettlement{}, settlement.ErrDuplicateSettlementNumber
		}
		return settlement.FinalSettlement{}, fmt.Errorf("failed to insert settlement: %w", err)
	}
	return fs, nil
}

func (s *Store) GetSettlement(ctx context.Context, id string) (*settlement.FinalSettlement, error) {
	var (
		fs                                          settlement.FinalSettlement
		typ, status, employeeID, method, absentMode string
		breakdown, details                          []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, settlement_number, settlement_type, status, currency,
		       employee_id, employee_name, hire_date,
		       last_working_date, vacation_start_date, vacation_end_date, expected_return_date, vacation_days,
		       service_years, service_months, service_days,
		       basic_salary, allowances, unpaid_months, calculation_method, is_resignation,
		       absent_calculation_period, absent_start_date, absent_end_date,
		       gross_amount, total_deductions, net_amount, breakdown, details,
		       prepared_by, notes, created_at, updated_at
		FROM final_settlements WHERE id = $1`,
		id,
	).Scan(&fs.ID, &fs.SettlementNumber, &typ, &status, &fs.Currency,
		&employeeID, &fs.EmployeeName, &fs.HireDate,
		&fs.LastWorkingDate, &fs.VacationStartDate, &fs.VacationEndDate, &fs.ExpectedReturnDate, &fs.VacationDays,
		&fs.ServiceYears, &fs.ServiceMonths, &fs.ServiceDays,
		&fs.BasicSalary, &fs.Allowances, &fs.UnpaidMonths, &method, &fs.IsResignation,
		&absentMode, &fs.AbsentStartDate, &fs.AbsentEndDate,
		&fs.GrossAmount, &fs.TotalDeductions, &fs.NetAmount, &breakdown, &details,
		&fs.PreparedBy, &fs.Notes, &fs.CreatedAt, &fs.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	if err := json.Unmarshal(breakdown, &fs.Breakdown); err != nil {
		return nil, fmt.Errorf("failed to decode breakdown: %w", err)
	}
	if err := json.Unmarshal(details, &fs.Details); err != nil {
		return nil, fmt.Errorf("failed to decode calculation details: %w", err)
	}
	fs.Type = settlement.SettlementType(typ)
	fs.Status = settlement.SettlementStatus(status)
	fs.EmployeeID = generic.EntityID(employeeID)
	fs.CalculationMethod = settlement.CalculationMethod(method)
	fs.AbsentCalculationPeriod = settlement.CalculationPeriod(absentMode)
	return &fs, nil
}
