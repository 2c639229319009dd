package notify

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/shiftwatch/shiftwatch/domain/employees"
	"github.com/shiftwatch/shiftwatch/domain/rating"
	"github.com/shiftwatch/shiftwatch/domain/violations"
	"github.com/shiftwatch/shiftwatch/internal/config"
	"github.com/shiftwatch/shiftwatch/internal/jobs"
)

var Module = fx.Module("notify",
	fx.Provide(
		fx.Annotate(
			NewLogTransport,
			fx.As(new(Transport)),
		),
	),
	fx.Invoke(Register),
)

// Register creates the notifications queue and binds the handler to the
// notification job types.
func Register(
	registry *jobs.Registry,
	employeeRepo *employees.Repository,
	ratingService *rating.Service,
	violationRepo *violations.Repository,
	transport Transport,
	cfg *config.Config,
	log *slog.Logger,
) error {
	handler := NewHandler(employeeRepo, ratingService, violationRepo, transport, cfg.Notify.Enabled, log)

	queue, err := registry.CreateQueue(jobs.NotificationsQueue)
	if err != nil {
		return err
	}

	for _, jobType := range []jobs.JobType{
		jobs.TypeSendViolationNotification,
		jobs.TypeSendShiftReminder,
		jobs.TypeSendWeeklyReport,
		jobs.TypeSendEmployeeWelcome,
	} {
		queue.RegisterHandler(jobType, handler)
	}
	return nil
}
