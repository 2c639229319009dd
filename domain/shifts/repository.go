package shifts

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/shiftwatch/shiftwatch/pkg/apperror"
)

// Repository provides access to shifts and their intervals.
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// Get returns the shift by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Shift, error) {
	shift := &Shift{}
	err := r.db.NewSelect().
		Model(shift).
		Where("s.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrNotFound.WithMessage("shift not found").
				WithDetails(map[string]any{"shiftId": id.String()})
		}
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return shift, nil
}

// TodayShifts returns a company's shifts for the given date.
func (r *Repository) TodayShifts(ctx context.Context, companyID uuid.UUID, day time.Time) ([]Shift, error) {
	var out []Shift
	err := r.db.NewSelect().
		Model(&out).
		Where("s.company_id = ?", companyID).
		Where("s.shift_date = ?", day.Format("2006-01-02")).
		Order("s.planned_start ASC").
		Scan(ctx)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return out, nil
}

// ActiveByCompany returns shifts currently in progress for a company.
func (r *Repository) ActiveByCompany(ctx context.Context, companyID uuid.UUID) ([]Shift, error) {
	var out []Shift
	err := r.db.NewSelect().
		Model(&out).
		Where("s.company_id = ?", companyID).
		Where("s.status = ?", StatusActive).
		Order("s.planned_start ASC").
		Scan(ctx)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return out, nil
}

// WorkIntervals returns all work intervals of a shift, oldest first.
func (r *Repository) WorkIntervals(ctx context.Context, shiftID uuid.UUID) ([]WorkInterval, error) {
	var out []WorkInterval
	err := r.db.NewSelect().
		Model(&out).
		Where("wi.shift_id = ?", shiftID).
		Order("wi.started_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return out, nil
}

// BreakIntervals returns all break intervals of a shift, oldest first.
func (r *Repository) BreakIntervals(ctx context.Context, shiftID uuid.UUID) ([]BreakInterval, error) {
	var out []BreakInterval
	err := r.db.NewSelect().
		Model(&out).
		Where("bi.shift_id = ?", shiftID).
		Order("bi.started_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return out, nil
}

// MarkMissed transitions a planned shift to completed without any work
// recorded.
func (r *Repository) MarkMissed(ctx context.Context, shiftID uuid.UUID) error {
	_, err := r.db.NewUpdate().
		Model((*Shift)(nil)).
		Set("status = ?", StatusCompleted).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", shiftID).
		Where("status = ?", StatusPlanned).
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}
