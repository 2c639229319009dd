package scheduler

import (
	"fmt"

	"github.com/shiftwatch/shiftwatch/internal/jobs"
)

// RegisterDefaultTasks installs the recurring monitoring sweeps and the
// weekly report. All start enabled. The target queues themselves are
// created by the monitoring and notify modules.
func RegisterDefaultTasks(s *Scheduler, cfg Config) error {
	specs := []TaskSpec{
		{
			Name:     "monitor-late-starts",
			Queue:    jobs.MonitoringQueue,
			JobType:  jobs.TypeMonitorLateStarts,
			Schedule: cfg.LateStartsSchedule,
			Enabled:  true,
		},
		{
			Name:     "monitor-early-ends",
			Queue:    jobs.MonitoringQueue,
			JobType:  jobs.TypeMonitorEarlyEnds,
			Schedule: cfg.EarlyEndsSchedule,
			Enabled:  true,
		},
		{
			Name:     "monitor-missed-shifts",
			Queue:    jobs.MonitoringQueue,
			JobType:  jobs.TypeMonitorMissedShifts,
			Schedule: cfg.MissedShiftsSchedule,
			Enabled:  true,
		},
		{
			Name:     "monitor-active-shifts",
			Queue:    jobs.MonitoringQueue,
			JobType:  jobs.TypeMonitorActiveShifts,
			Schedule: cfg.ActiveShiftsSchedule,
			Enabled:  true,
		},
		{
			Name:     "weekly-report",
			Queue:    jobs.NotificationsQueue,
			JobType:  jobs.TypeSendWeeklyReport,
			Schedule: cfg.WeeklyReportSchedule,
			Enabled:  true,
		},
	}

	for _, spec := range specs {
		if err := s.AddTask(spec); err != nil {
			return fmt.Errorf("register task %s: %w", spec.Name, err)
		}
	}
	return nil
}
