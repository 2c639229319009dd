package violations

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/shiftwatch/shiftwatch/pkg/apperror"
)

// Repository provides access to violations, exceptions and company
// rules.
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// Create inserts a violation.
func (r *Repository) Create(ctx context.Context, v *Violation) error {
	_, err := r.db.NewInsert().Model(v).Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// ListByEmployee returns an employee's violations within the period,
// newest first. Zero times widen the range to everything.
func (r *Repository) ListByEmployee(ctx context.Context, employeeID uuid.UUID, start, end time.Time) ([]Violation, error) {
	var out []Violation
	q := r.db.NewSelect().
		Model(&out).
		Where("v.employee_id = ?", employeeID)
	if !start.IsZero() {
		q = q.Where("v.occurred_at >= ?", start)
	}
	if !end.IsZero() {
		q = q.Where("v.occurred_at < ?", end)
	}

	err := q.Order("v.occurred_at DESC").Scan(ctx)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return out, nil
}

// SumPenalties returns the total penalty percent an employee collected
// in the period.
func (r *Repository) SumPenalties(ctx context.Context, employeeID uuid.UUID, start, end time.Time) (int, error) {
	var total int
	err := r.db.NewSelect().
		Model((*Violation)(nil)).
		ColumnExpr("COALESCE(SUM(v.penalty), 0)").
		Where("v.employee_id = ?", employeeID).
		Where("v.occurred_at >= ?", start).
		Where("v.occurred_at < ?", end).
		Scan(ctx, &total)
	if err != nil {
		return 0, apperror.ErrDatabase.WithInternal(err)
	}
	return total, nil
}

// CreateException inserts an unresolved exception for a detected
// violation.
func (r *Repository) CreateException(ctx context.Context, x *Exception) error {
	_, err := r.db.NewInsert().Model(x).Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// HasUnresolvedException reports whether an open exception exists for
// the employee, shift date and violation type. Detection skips the
// shift while one exists, which keeps repeated sweeps idempotent.
func (r *Repository) HasUnresolvedException(ctx context.Context, employeeID uuid.UUID, shiftDate time.Time, violationType string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*Exception)(nil)).
		Where("x.employee_id = ?", employeeID).
		Where("x.shift_date = ?", shiftDate.Format("2006-01-02")).
		Where("x.type = ?", violationType).
		Where("x.resolved = FALSE").
		Exists(ctx)
	if err != nil {
		return false, apperror.ErrDatabase.WithInternal(err)
	}
	return exists, nil
}

// ListExceptionsByCompany returns a company's exceptions, unresolved
// first, newest first within each group.
func (r *Repository) ListExceptionsByCompany(ctx context.Context, companyID uuid.UUID) ([]Exception, error) {
	var out []Exception
	err := r.db.NewSelect().
		Model(&out).
		Where("x.company_id = ?", companyID).
		Order("x.resolved ASC", "x.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return out, nil
}

// ResolveException marks an exception resolved. Resolving releases the
// idempotency guard so the violation type can be detected again for
// that employee and date.
func (r *Repository) ResolveException(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewUpdate().
		Model((*Exception)(nil)).
		Set("resolved = TRUE").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.ErrNotFound.WithMessage("exception not found")
	}
	return nil
}

// ActiveRule returns the company's rule for a violation code, or nil
// when the rule is missing or inactive.
func (r *Repository) ActiveRule(ctx context.Context, companyID uuid.UUID, code string) (*CompanyRule, error) {
	rule := &CompanyRule{}
	err := r.db.NewSelect().
		Model(rule).
		Where("cr.company_id = ?", companyID).
		Where("cr.code = ?", code).
		Where("cr.is_active = TRUE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return rule, nil
}
