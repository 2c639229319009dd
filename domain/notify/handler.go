package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shiftwatch/shiftwatch/domain/employees"
	"github.com/shiftwatch/shiftwatch/domain/rating"
	"github.com/shiftwatch/shiftwatch/domain/violations"
	"github.com/shiftwatch/shiftwatch/internal/jobs"
	"github.com/shiftwatch/shiftwatch/pkg/apperror"
	"github.com/shiftwatch/shiftwatch/pkg/logger"
)

const sendTimeout = time.Minute

// EmployeeDirectory looks up notification recipients.
type EmployeeDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*employees.Employee, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]employees.Employee, error)
	CompanyIDs(ctx context.Context) ([]uuid.UUID, error)
}

// RatingReader supplies the numbers for the weekly report.
type RatingReader interface {
	Get(ctx context.Context, companyID, employeeID uuid.UUID, start, end time.Time) (*rating.EmployeeRating, error)
}

// ViolationLister counts an employee's violations for the report
// period.
type ViolationLister interface {
	ListByEmployee(ctx context.Context, employeeID uuid.UUID, start, end time.Time) ([]violations.Violation, error)
}

// Handler formats and sends outbound notifications. Failures return
// success:false in the job result; queued background work must never
// panic the dispatcher.
type Handler struct {
	directory  EmployeeDirectory
	ratings    RatingReader
	violations ViolationLister
	transport  Transport
	enabled    bool
	log        *slog.Logger

	now func() time.Time
}

func NewHandler(
	directory EmployeeDirectory,
	ratings RatingReader,
	violationLister ViolationLister,
	transport Transport,
	enabled bool,
	log *slog.Logger,
) *Handler {
	return &Handler{
		directory:  directory,
		ratings:    ratings,
		violations: violationLister,
		transport:  transport,
		enabled:    enabled,
		log:        log.With(logger.Scope("notify")),
		now:        time.Now,
	}
}

func (h *Handler) Handle(job *jobs.Job) jobs.Result {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	switch job.Type {
	case jobs.TypeSendViolationNotification:
		return h.sendViolation(ctx, job)
	case jobs.TypeSendShiftReminder:
		return h.sendReminder(ctx, job)
	case jobs.TypeSendEmployeeWelcome:
		return h.sendWelcome(ctx, job)
	case jobs.TypeSendWeeklyReport:
		return h.sendWeeklyReport(ctx, job)
	default:
		return jobs.Result{Success: false, Error: fmt.Sprintf("unknown notification type %s", job.Type)}
	}
}

func (h *Handler) sendViolation(ctx context.Context, job *jobs.Job) jobs.Result {
	employee, result := h.recipient(ctx, job)
	if employee == nil {
		return result
	}

	violationType, _ := job.Payload["violationType"].(string)
	severity := intFromPayload(job.Payload, "severity")
	minutes := intFromPayload(job.Payload, "minutes")

	text, err := ViolationMessage(employee.FullName, violationType, severity, minutes)
	if err != nil {
		return jobs.Result{Success: false, Error: err.Error()}
	}
	return h.send(ctx, employee, text)
}

func (h *Handler) sendReminder(ctx context.Context, job *jobs.Job) jobs.Result {
	employee, result := h.recipient(ctx, job)
	if employee == nil {
		return result
	}

	phase, _ := job.Payload["phase"].(string)
	if phase == "" {
		phase = PhaseShiftStart
	}

	text, err := ReminderMessage(employee.FullName, phase)
	if err != nil {
		return jobs.Result{Success: false, Error: err.Error()}
	}
	return h.send(ctx, employee, text)
}

func (h *Handler) sendWelcome(ctx context.Context, job *jobs.Job) jobs.Result {
	employee, result := h.recipient(ctx, job)
	if employee == nil {
		return result
	}

	text, err := WelcomeMessage(employee.FullName)
	if err != nil {
		return jobs.Result{Success: false, Error: err.Error()}
	}
	return h.send(ctx, employee, text)
}

// sendWeeklyReport fans out over every employee of every company.
// Per-employee failures are logged and the report run continues.
func (h *Handler) sendWeeklyReport(ctx context.Context, _ *jobs.Job) jobs.Result {
	companyIDs, err := h.directory.CompanyIDs(ctx)
	if err != nil {
		return jobs.Result{Success: false, Error: err.Error()}
	}

	// The report covers the week that ended before this run.
	start, end := rating.PeriodFor(h.now().AddDate(0, 0, -1))

	for _, companyID := range companyIDs {
		staff, err := h.directory.ListByCompany(ctx, companyID)
		if err != nil {
			h.log.Error("weekly report: listing employees failed",
				slog.String("company_id", companyID.String()),
				logger.Error(err),
			)
			continue
		}

		for i := range staff {
			if err := h.reportFor(ctx, &staff[i], start, end); err != nil {
				h.log.Error("weekly report: employee report failed",
					slog.String("employee_id", staff[i].ID.String()),
					logger.Error(err),
				)
			}
		}
	}
	return jobs.Result{Success: true}
}

func (h *Handler) reportFor(ctx context.Context, employee *employees.Employee, start, end time.Time) error {
	row, err := h.ratings.Get(ctx, employee.CompanyID, employee.ID, start, end)
	if err != nil {
		return err
	}
	recorded, err := h.violations.ListByEmployee(ctx, employee.ID, start, end)
	if err != nil {
		return err
	}

	text, err := WeeklyReportMessage(employee.FullName, row.Rating, len(recorded), row.Status)
	if err != nil {
		return err
	}

	if result := h.send(ctx, employee, text); !result.Success {
		return fmt.Errorf("send failed: %s", result.Error)
	}
	return nil
}

// recipient resolves the employeeId payload entry. A nil employee means
// the returned result should be handed back as-is.
func (h *Handler) recipient(ctx context.Context, job *jobs.Job) (*employees.Employee, jobs.Result) {
	raw, ok := job.Payload["employeeId"].(string)
	if !ok || raw == "" {
		return nil, jobs.Result{Success: false, Error: apperror.ErrInvalidPayload.WithMessage("employeeId is required").Error()}
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, jobs.Result{Success: false, Error: apperror.ErrInvalidPayload.WithMessage(fmt.Sprintf("bad employeeId %q", raw)).Error()}
	}

	employee, err := h.directory.Get(ctx, id)
	if err != nil {
		return nil, jobs.Result{Success: false, Error: fmt.Sprintf("employee lookup failed: %v", err)}
	}
	return employee, jobs.Result{}
}

func (h *Handler) send(ctx context.Context, employee *employees.Employee, text string) jobs.Result {
	if !h.enabled {
		h.log.Debug("notifications disabled, message dropped",
			slog.String("employee_id", employee.ID.String()),
		)
		return jobs.Result{Success: true}
	}
	if employee.ChatID == "" {
		return jobs.Result{Success: false, Error: "employee has no chat id"}
	}

	if err := h.transport.Send(ctx, employee.ChatID, text); err != nil {
		return jobs.Result{Success: false, Retry: true, Error: err.Error()}
	}
	return jobs.Result{Success: true}
}

func intFromPayload(payload map[string]any, key string) int {
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
