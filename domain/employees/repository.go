package employees

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/shiftwatch/shiftwatch/pkg/apperror"
)

// Repository provides access to employees.
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// Get returns the employee by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Employee, error) {
	employee := &Employee{}
	err := r.db.NewSelect().
		Model(employee).
		Where("e.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrEmployeeNotFound.WithDetails(map[string]any{"employeeId": id.String()})
		}
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return employee, nil
}

// ListByCompany returns all employees of a company.
func (r *Repository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]Employee, error) {
	var out []Employee
	err := r.db.NewSelect().
		Model(&out).
		Where("e.company_id = ?", companyID).
		Order("e.full_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return out, nil
}

// CompanyIDs returns the distinct companies that have employees. Used
// by the monitoring sweeps to iterate companies.
func (r *Repository) CompanyIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.NewSelect().
		Model((*Employee)(nil)).
		ColumnExpr("DISTINCT e.company_id").
		Scan(ctx, &ids)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return ids, nil
}

// UpdateStatus changes the employee status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.NewUpdate().
		Model((*Employee)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.ErrEmployeeNotFound.WithDetails(map[string]any{"employeeId": id.String()})
	}
	return nil
}
