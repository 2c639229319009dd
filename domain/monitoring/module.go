package monitoring

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/shiftwatch/shiftwatch/domain/employees"
	"github.com/shiftwatch/shiftwatch/domain/rating"
	"github.com/shiftwatch/shiftwatch/domain/shifts"
	"github.com/shiftwatch/shiftwatch/domain/violations"
	"github.com/shiftwatch/shiftwatch/internal/jobs"
	"github.com/shiftwatch/shiftwatch/pkg/events"
)

var Module = fx.Module("monitoring",
	fx.Invoke(Register),
)

// Register creates the monitoring queue and binds the handler to every
// monitoring job type.
func Register(
	registry *jobs.Registry,
	shiftRepo *shifts.Repository,
	violationRepo *violations.Repository,
	ratingService *rating.Service,
	employeeRepo *employees.Repository,
	bus *events.Bus,
	log *slog.Logger,
) error {
	handler := NewHandler(shiftRepo, violationRepo, ratingService, employeeRepo, registry, bus, log)

	queue, err := registry.CreateQueue(jobs.MonitoringQueue)
	if err != nil {
		return err
	}

	for _, jobType := range []jobs.JobType{
		jobs.TypeMonitorLateStarts,
		jobs.TypeMonitorEarlyEnds,
		jobs.TypeMonitorMissedShifts,
		jobs.TypeMonitorActiveShifts,
		jobs.TypeCheckSpecificShift,
	} {
		queue.RegisterHandler(jobType, handler)
	}
	return nil
}
