/*
store.go - Persistence interfaces consumed by the settlement service

PURPOSE:
  Defines the boundary between the calculators and the relational store.
  The calculators only need field-level reads and one insert; everything
  else about the schema belongs to the implementations.

KEY INTERFACES:
  EmployeeReader:   Employee by id, most recent salary record
  PayrollReader:    Paid payroll rows, newest period first
  TimesheetReader:  Timesheet rows for a date range
  SettlementStore:  Settlement-number lookup, insert, fetch
  RecordWriter:     Seeding of source records (scenarios, tests)

MISSING RECORDS:
  Point lookups return (nil, nil) when nothing matches. The service turns a
  missing employee into a *generic.NotFoundError.

UNIQUENESS:
  InsertSettlement must reject a settlement number that already exists with
  ErrDuplicateSettlementNumber. This is what closes the race between two
  processes numbering settlements concurrently.

IMPLEMENTATIONS:
  - store/memory: in-memory, for tests and dev
  - store/sqlite: database/sql + go-sqlite3
  - store/postgres: pgx/v5 pool
*/
package settlement

import (
	"context"
	"time"

	"github.com/warp/settlement-engine/generic"
)

type EmployeeReader interface {
	// GetEmployee returns nil when the employee does not exist.
	GetEmployee(ctx context.Context, id generic.EntityID) (*Employee, error)

	// LatestSalaryRecord returns the record with the greatest effective date
	// on or before asOf, or nil when there is none.
	LatestSalaryRecord(ctx context.Context, id generic.EntityID, asOf time.Time) (*SalaryRecord, error)
}

type PayrollReader interface {
	// PaidPayrolls returns payroll rows with status "paid", ordered by
	// year desc, month desc.
	PaidPayrolls(ctx context.Context, id generic.EntityID) ([]PayrollRecord, error)
}

type TimesheetReader interface {
	// Timesheets returns rows dated within [from, to], inclusive.
	Timesheets(ctx context.Context, id generic.EntityID, from, to time.Time) ([]TimesheetRecord, error)
}

type SettlementStore interface {
	// SettlementNumbers returns stored numbers starting with prefix,
	// ordered descending.
	SettlementNumbers(ctx context.Context, prefix string) ([]string, error)

	// InsertSettlement persists a new settlement and returns the stored row.
	InsertSettlement(ctx context.Context, s FinalSettlement) (FinalSettlement, error)

	// GetSettlement returns nil when the settlement does not exist.
	GetSettlement(ctx context.Context, id string) (*FinalSettlement, error)
}

// Store is everything the service reads and writes.
type Store interface {
	EmployeeReader
	PayrollReader
	TimesheetReader
	SettlementStore
}

// RecordWriter seeds the source records the calculators read.
type RecordWriter interface {
	SaveEmployee(ctx context.Context, e Employee) error
	SaveSalaryRecord(ctx context.Context, r SalaryRecord) error
	SavePayrollRecord(ctx context.Context, r PayrollRecord) error
	SaveTimesheet(ctx context.Context, r TimesheetRecord) error

	// Reset removes all data. Development and demo use only.
	Reset(ctx context.Context) error
}

// DataStore is a full read/write store.
type DataStore interface {
	Store
	RecordWriter
}
