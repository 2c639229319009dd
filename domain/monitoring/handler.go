package monitoring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shiftwatch/shiftwatch/domain/rating"
	"github.com/shiftwatch/shiftwatch/domain/shifts"
	"github.com/shiftwatch/shiftwatch/domain/violations"
	"github.com/shiftwatch/shiftwatch/internal/jobs"
	"github.com/shiftwatch/shiftwatch/pkg/apperror"
	"github.com/shiftwatch/shiftwatch/pkg/events"
	"github.com/shiftwatch/shiftwatch/pkg/logger"
)

const sweepTimeout = 2 * time.Minute

// ShiftReader is the shift store surface the sweeps need.
type ShiftReader interface {
	Get(ctx context.Context, id uuid.UUID) (*shifts.Shift, error)
	TodayShifts(ctx context.Context, companyID uuid.UUID, day time.Time) ([]shifts.Shift, error)
	ActiveByCompany(ctx context.Context, companyID uuid.UUID) ([]shifts.Shift, error)
	BreakIntervals(ctx context.Context, shiftID uuid.UUID) ([]shifts.BreakInterval, error)
	MarkMissed(ctx context.Context, shiftID uuid.UUID) error
}

// ViolationStore persists detections and answers the idempotency and
// rule checks.
type ViolationStore interface {
	Create(ctx context.Context, v *violations.Violation) error
	CreateException(ctx context.Context, x *violations.Exception) error
	HasUnresolvedException(ctx context.Context, employeeID uuid.UUID, shiftDate time.Time, violationType string) (bool, error)
	ActiveRule(ctx context.Context, companyID uuid.UUID, code string) (*violations.CompanyRule, error)
}

// RatingUpdater recomputes an employee's rating after a new violation.
type RatingUpdater interface {
	UpdateFromViolations(ctx context.Context, companyID, employeeID uuid.UUID, start, end time.Time) (*rating.EmployeeRating, error)
}

// CompanySource enumerates the companies a sweep covers.
type CompanySource interface {
	CompanyIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Enqueuer places follow-up jobs, such as violation notifications.
type Enqueuer interface {
	Enqueue(queue string, jobType jobs.JobType, payload map[string]any, opts jobs.EnqueueOptions) (*jobs.Job, error)
}

// Handler runs the monitoring sweeps. One instance handles all
// monitoring job types.
type Handler struct {
	shifts    ShiftReader
	store     ViolationStore
	ratings   RatingUpdater
	companies CompanySource
	enqueuer  Enqueuer
	bus       *events.Bus
	log       *slog.Logger

	now func() time.Time
}

func NewHandler(
	shiftReader ShiftReader,
	store ViolationStore,
	ratings RatingUpdater,
	companies CompanySource,
	enqueuer Enqueuer,
	bus *events.Bus,
	log *slog.Logger,
) *Handler {
	return &Handler{
		shifts:    shiftReader,
		store:     store,
		ratings:   ratings,
		companies: companies,
		enqueuer:  enqueuer,
		bus:       bus,
		log:       log.With(logger.Scope("monitoring")),
		now:       time.Now,
	}
}

// Handle dispatches on the job type. Sweep failures per company are
// logged and the sweep continues; partial progress beats an
// all-or-nothing pass.
func (h *Handler) Handle(job *jobs.Job) jobs.Result {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	switch job.Type {
	case jobs.TypeMonitorLateStarts:
		return h.sweep(ctx, job, h.checkLateStarts)
	case jobs.TypeMonitorEarlyEnds:
		return h.sweep(ctx, job, h.checkEarlyEnds)
	case jobs.TypeMonitorMissedShifts:
		return h.sweep(ctx, job, h.checkMissedShifts)
	case jobs.TypeMonitorActiveShifts:
		return h.sweep(ctx, job, h.checkActiveShifts)
	case jobs.TypeCheckSpecificShift:
		return h.checkSpecificShift(ctx, job)
	default:
		return jobs.Result{Success: false, Error: fmt.Sprintf("unsupported job type %s", job.Type)}
	}
}

// sweep resolves the company scope from the payload (all companies when
// absent) and applies check to each.
func (h *Handler) sweep(ctx context.Context, job *jobs.Job, check func(ctx context.Context, companyID uuid.UUID) error) jobs.Result {
	companyIDs, err := h.scope(ctx, job)
	if err != nil {
		return jobs.Result{Success: false, Error: err.Error()}
	}

	for _, companyID := range companyIDs {
		if err := check(ctx, companyID); err != nil {
			h.log.Error("company sweep failed",
				slog.String("type", string(job.Type)),
				slog.String("company_id", companyID.String()),
				logger.Error(err),
			)
		}
	}
	return jobs.Result{Success: true}
}

func (h *Handler) scope(ctx context.Context, job *jobs.Job) ([]uuid.UUID, error) {
	if raw, ok := job.Payload["companyId"].(string); ok && raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("bad companyId %q: %w", raw, err)
		}
		return []uuid.UUID{id}, nil
	}
	return h.companies.CompanyIDs(ctx)
}

func (h *Handler) checkLateStarts(ctx context.Context, companyID uuid.UUID) error {
	today, err := h.shifts.TodayShifts(ctx, companyID, h.now())
	if err != nil {
		return err
	}

	for i := range today {
		shift := &today[i]
		if shift.ActualStart == nil {
			continue
		}
		if shift.Status != shifts.StatusActive && shift.Status != shifts.StatusCompleted {
			continue
		}
		if d := DetectLateStart(shift.PlannedStart, *shift.ActualStart); d != nil {
			if err := h.report(ctx, shift, d); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Handler) checkEarlyEnds(ctx context.Context, companyID uuid.UUID) error {
	today, err := h.shifts.TodayShifts(ctx, companyID, h.now())
	if err != nil {
		return err
	}

	for i := range today {
		shift := &today[i]
		if shift.Status != shifts.StatusCompleted || shift.ActualEnd == nil {
			continue
		}
		if d := DetectEarlyEnd(shift.PlannedEnd, *shift.ActualEnd); d != nil {
			if err := h.report(ctx, shift, d); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Handler) checkMissedShifts(ctx context.Context, companyID uuid.UUID) error {
	today, err := h.shifts.TodayShifts(ctx, companyID, h.now())
	if err != nil {
		return err
	}

	for i := range today {
		shift := &today[i]
		if shift.Status != shifts.StatusPlanned || shift.ActualStart != nil {
			continue
		}
		d := DetectMissedShift(shift.PlannedStart, h.now())
		if d == nil {
			continue
		}
		if err := h.report(ctx, shift, d); err != nil {
			return err
		}
		if err := h.shifts.MarkMissed(ctx, shift.ID); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) checkActiveShifts(ctx context.Context, companyID uuid.UUID) error {
	active, err := h.shifts.ActiveByCompany(ctx, companyID)
	if err != nil {
		return err
	}

	for i := range active {
		shift := &active[i]
		if err := h.checkBreakDiscipline(ctx, shift); err != nil {
			return err
		}
	}
	return nil
}

// checkBreakDiscipline evaluates one active shift: an open break that
// ran past the allowed time, or an unbroken work stretch past the
// 4-hour band.
func (h *Handler) checkBreakDiscipline(ctx context.Context, shift *shifts.Shift) error {
	if shift.ActualStart == nil {
		return nil
	}

	breaks, err := h.shifts.BreakIntervals(ctx, shift.ID)
	if err != nil {
		return err
	}

	now := h.now()
	stretchStart := *shift.ActualStart
	for i := range breaks {
		b := &breaks[i]
		if b.EndedAt == nil {
			// On an open break, continuous work is not accumulating.
			if d := DetectOpenBreak(b.StartedAt, now); d != nil {
				return h.report(ctx, shift, d)
			}
			return nil
		}
		if b.EndedAt.After(stretchStart) {
			stretchStart = *b.EndedAt
		}
	}

	if d := DetectContinuousWork(now.Sub(stretchStart)); d != nil {
		return h.report(ctx, shift, d)
	}
	return nil
}

// checkSpecificShift re-evaluates one shift on demand. The shiftId
// payload entry is required.
func (h *Handler) checkSpecificShift(ctx context.Context, job *jobs.Job) jobs.Result {
	raw, ok := job.Payload["shiftId"].(string)
	if !ok || raw == "" {
		return jobs.Result{Success: false, Error: apperror.ErrInvalidPayload.WithMessage("shiftId is required").Error()}
	}
	shiftID, err := uuid.Parse(raw)
	if err != nil {
		return jobs.Result{Success: false, Error: apperror.ErrInvalidPayload.WithMessage(fmt.Sprintf("bad shiftId %q", raw)).Error()}
	}

	shift, err := h.shifts.Get(ctx, shiftID)
	if err != nil {
		return jobs.Result{Success: false, Error: err.Error()}
	}

	if err := h.evaluate(ctx, shift); err != nil {
		return jobs.Result{Success: false, Error: err.Error()}
	}
	return jobs.Result{Success: true}
}

// evaluate runs every rule that applies to the shift's current state.
func (h *Handler) evaluate(ctx context.Context, shift *shifts.Shift) error {
	switch shift.Status {
	case shifts.StatusPlanned:
		if shift.ActualStart == nil {
			if d := DetectMissedShift(shift.PlannedStart, h.now()); d != nil {
				return h.report(ctx, shift, d)
			}
		}
	case shifts.StatusActive:
		if shift.ActualStart != nil {
			if d := DetectLateStart(shift.PlannedStart, *shift.ActualStart); d != nil {
				if err := h.report(ctx, shift, d); err != nil {
					return err
				}
			}
		}
		return h.checkBreakDiscipline(ctx, shift)
	case shifts.StatusCompleted:
		if shift.ActualStart != nil {
			if d := DetectLateStart(shift.PlannedStart, *shift.ActualStart); d != nil {
				if err := h.report(ctx, shift, d); err != nil {
					return err
				}
			}
		}
		if shift.ActualEnd != nil {
			if d := DetectEarlyEnd(shift.PlannedEnd, *shift.ActualEnd); d != nil {
				return h.report(ctx, shift, d)
			}
		}
	}
	return nil
}

// report materializes one detection: publish the domain event, then
// persist a Violation and Exception unless an unresolved Exception
// already covers the same employee, date and type, then recompute the
// rating and queue a notification. A missing or inactive company rule
// stops everything after the event.
func (h *Handler) report(ctx context.Context, shift *shifts.Shift, d *Detection) error {
	now := h.now()

	h.bus.Publish(events.Event{
		Topic:      events.Topic(d.Type),
		EmployeeID: shift.EmployeeID.String(),
		CompanyID:  shift.CompanyID.String(),
		ShiftID:    shift.ID.String(),
		ShiftDate:  shift.Date,
		Severity:   d.Severity,
		Minutes:    d.Minutes,
		OccurredAt: now,
		Data: map[string]any{
			"plannedStart": shift.PlannedStart,
			"plannedEnd":   shift.PlannedEnd,
		},
	})

	exists, err := h.store.HasUnresolvedException(ctx, shift.EmployeeID, shift.Date, d.Type)
	if err != nil {
		return err
	}
	if exists {
		h.log.Debug("violation already recorded",
			slog.String("shift_id", shift.ID.String()),
			slog.String("type", d.Type),
		)
		return nil
	}

	rule, err := h.store.ActiveRule(ctx, shift.CompanyID, d.Type)
	if err != nil {
		return err
	}
	if rule == nil {
		h.log.Info("no active rule, violation not recorded",
			slog.String("company_id", shift.CompanyID.String()),
			slog.String("type", d.Type),
		)
		return nil
	}

	shiftID := shift.ID
	violation := &violations.Violation{
		ID:         uuid.New(),
		CompanyID:  shift.CompanyID,
		EmployeeID: shift.EmployeeID,
		ShiftID:    &shiftID,
		ShiftDate:  shift.Date,
		Type:       d.Type,
		Severity:   d.Severity,
		Minutes:    d.Minutes,
		Penalty:    rule.PenaltyPercent,
		Source:     violations.SourceAuto,
		OccurredAt: now,
	}
	if err := h.store.Create(ctx, violation); err != nil {
		return err
	}

	exception := &violations.Exception{
		ID:         uuid.New(),
		CompanyID:  shift.CompanyID,
		EmployeeID: shift.EmployeeID,
		ShiftID:    &shiftID,
		ShiftDate:  shift.Date,
		Type:       d.Type,
		Reason:     fmt.Sprintf("%s: %d minutes, severity %d", d.Type, d.Minutes, d.Severity),
	}
	if err := h.store.CreateException(ctx, exception); err != nil {
		return err
	}

	start, end := rating.PeriodFor(now)
	if _, err := h.ratings.UpdateFromViolations(ctx, shift.CompanyID, shift.EmployeeID, start, end); err != nil {
		return err
	}

	_, err = h.enqueuer.Enqueue(jobs.NotificationsQueue, jobs.TypeSendViolationNotification, map[string]any{
		"employeeId":    shift.EmployeeID.String(),
		"violationType": d.Type,
		"severity":      d.Severity,
		"minutes":       d.Minutes,
	}, jobs.EnqueueOptions{})
	if err != nil {
		h.log.Error("notification enqueue failed",
			slog.String("employee_id", shift.EmployeeID.String()),
			logger.Error(err),
		)
	}

	h.log.Info("violation recorded",
		slog.String("employee_id", shift.EmployeeID.String()),
		slog.String("shift_id", shift.ID.String()),
		slog.String("type", d.Type),
		slog.Int("severity", d.Severity),
		slog.Int("minutes", d.Minutes),
		slog.Int("penalty", rule.PenaltyPercent),
	)
	return nil
}
