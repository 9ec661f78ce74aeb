/*
service.go - The settlement service

PURPOSE:
  Entry point for every settlement calculation. The Service is stateless
  apart from its collaborators: each call re-reads employee, salary, payroll
  and timesheet data so results always reflect the latest committed state.

COMPONENTS (leaf first):
  generic.ServicePeriodBetween  tenure in (years, months, days)
  UnpaidSalary                  salary owed since last paid payroll (salary.go)
  CalculateAbsence              weekend-aware absence deduction (absence.go)
  CalculateEndOfService         tiered statutory benefit (eos.go)
  Calculate*Settlement          gross / deductions / net (aggregate.go)
  CreateSettlement              numbering + single insert (numbering.go)

CONCURRENCY:
  Calls for different employees are independent. The only shared state is
  the Numberer, which is mutex-guarded.

ERRORS:
  A missing employee aborts with *generic.NotFoundError before anything is
  computed. Store errors bubble up wrapped, never retried.
*/
package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/generic"
)

// Service computes and persists settlements.
type Service struct {
	Store  Store
	Policy Policy

	// Now is the clock; tests replace it.
	Now func() time.Time

	Logger *slog.Logger

	numberer *Numberer
}

// NewService creates a service using the default clock and logger.
func NewService(store Store, policy Policy) *Service {
	return &Service{
		Store:    store,
		Policy:   policy,
		Now:      time.Now,
		numberer: NewNumberer(),
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// today is the current UTC calendar date.
func (s *Service) today() time.Time {
	return generic.UTCDateOf(s.now())
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Service) employee(ctx context.Context, id generic.EntityID) (*Employee, error) {
	emp, err := s.Store.GetEmployee(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load employee %s: %w", id, err)
	}
	if emp == nil {
		return nil, employeeNotFound(id)
	}
	return emp, nil
}

// currentSalary returns the latest effective salary record's basic salary and
// allowances, falling back to the employee's stored basic salary with no
// allowances when no history exists.
func (s *Service) currentSalary(ctx context.Context, emp *Employee) (basic, allowances decimal.Decimal, err error) {
	rec, err := s.Store.LatestSalaryRecord(ctx, emp.ID, s.today())
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("load salary record for %s: %w", emp.ID, err)
	}
	if rec == nil {
		return emp.BasicSalary, decimal.Zero, nil
	}
	return rec.BasicSalary, rec.Allowances, nil
}
