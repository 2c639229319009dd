package rating

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/shiftwatch/shiftwatch/domain/violations"
	"github.com/shiftwatch/shiftwatch/pkg/apperror"
	"github.com/shiftwatch/shiftwatch/pkg/logger"
)

// TerminationPolicy decides what happens when an employee's rating
// falls to the termination threshold. The default policy flags the
// employee record; deployments can substitute their own.
type TerminationPolicy interface {
	OnTerminated(ctx context.Context, companyID, employeeID uuid.UUID, rating int) error
}

// Service computes employee ratings from recorded violations.
type Service struct {
	db         bun.IDB
	violations *violations.Repository
	policy     TerminationPolicy
	log        *slog.Logger
}

func NewService(db bun.IDB, violationsRepo *violations.Repository, policy TerminationPolicy, log *slog.Logger) *Service {
	return &Service{
		db:         db,
		violations: violationsRepo,
		policy:     policy,
		log:        log.With(logger.Scope("rating")),
	}
}

// CalculateForPeriod is a pure read: it sums the employee's penalties
// in the period and returns the clamped rating. Nothing is written.
func (s *Service) CalculateForPeriod(ctx context.Context, employeeID uuid.UUID, start, end time.Time) (int, error) {
	total, err := s.violations.SumPenalties(ctx, employeeID, start, end)
	if err != nil {
		return 0, err
	}
	return Calculate(total), nil
}

// Get returns the employee's rating row for the period. A missing row
// means a clean record and is returned as rating 100.
func (s *Service) Get(ctx context.Context, companyID, employeeID uuid.UUID, start, end time.Time) (*EmployeeRating, error) {
	row := &EmployeeRating{}
	err := s.db.NewSelect().
		Model(row).
		Where("er.employee_id = ?", employeeID).
		Where("er.period_start = ?", start.Format("2006-01-02")).
		Scan(ctx)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return &EmployeeRating{
		CompanyID:   companyID,
		EmployeeID:  employeeID,
		PeriodStart: start,
		PeriodEnd:   end,
		Rating:      100,
		Status:      StatusActive,
	}, nil
}

// UpdateFromViolations recomputes the rating for the period, upserts
// the rating row and applies the termination policy when the rating
// crosses the threshold. Returns the updated row.
func (s *Service) UpdateFromViolations(ctx context.Context, companyID, employeeID uuid.UUID, start, end time.Time) (*EmployeeRating, error) {
	total, err := s.violations.SumPenalties(ctx, employeeID, start, end)
	if err != nil {
		return nil, err
	}

	value := Calculate(total)
	status := StatusFor(value)

	row := &EmployeeRating{
		ID:          uuid.New(),
		CompanyID:   companyID,
		EmployeeID:  employeeID,
		PeriodStart: start,
		PeriodEnd:   end,
		Rating:      value,
		Status:      status,
		UpdatedAt:   time.Now(),
	}

	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (employee_id, period_start) DO UPDATE").
		Set("rating = EXCLUDED.rating").
		Set("status = EXCLUDED.status").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	s.log.Info("rating updated",
		slog.String("employee_id", employeeID.String()),
		slog.Int("penalty_total", total),
		slog.Int("rating", value),
		slog.String("status", status),
	)

	if status == StatusTerminated {
		if err := s.policy.OnTerminated(ctx, companyID, employeeID, value); err != nil {
			s.log.Error("termination policy failed",
				slog.String("employee_id", employeeID.String()),
				logger.Error(err),
			)
		}
	}

	return row, nil
}
