package scheduler

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwatch/shiftwatch/internal/jobs"
	"github.com/shiftwatch/shiftwatch/pkg/apperror"
)

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		expr    string
		every   time.Duration
		wantErr bool
	}{
		{expr: "*/5 * * * *", every: 5 * time.Minute},
		{expr: "*/1 * * * *", every: time.Minute},
		{expr: "*/59 * * * *", every: 59 * time.Minute},
		{expr: "0 */2 * * *", every: 2 * time.Hour},
		{expr: "0 */23 * * *", every: 23 * time.Hour},
		{expr: "0 0 * * *"},
		{expr: "30 9 * * *"},
		{expr: "0 9 * * 1"},
		{expr: "15 18 * * 6"},

		{expr: "", wantErr: true},
		{expr: "*/5 * * *", wantErr: true},
		{expr: "*/0 * * * *", wantErr: true},
		{expr: "*/60 * * * *", wantErr: true},
		{expr: "5 */2 * * *", wantErr: true},
		{expr: "0 */24 * * *", wantErr: true},
		{expr: "60 0 * * *", wantErr: true},
		{expr: "0 24 * * *", wantErr: true},
		{expr: "0 9 * * 7", wantErr: true},
		{expr: "0 9 1 * *", wantErr: true},
		{expr: "0 9 * 6 *", wantErr: true},
		{expr: "not a schedule", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			s, err := ParseSchedule(tt.expr)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperror.ErrInvalidSchedule))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.every, s.Every)
		})
	}
}

func TestSchedule_CronSpec(t *testing.T) {
	s, err := ParseSchedule("*/5 * * * *")
	require.NoError(t, err)
	assert.Equal(t, "@every 5m0s", s.CronSpec())

	s, err = ParseSchedule("0 9 * * 1")
	require.NoError(t, err)
	assert.Equal(t, "0 9 * * 1", s.CronSpec())
}

func testScheduler(t *testing.T) (*Scheduler, *jobs.Registry) {
	t.Helper()
	registry := jobs.NewRegistry(slog.Default())
	t.Cleanup(registry.StopAll)

	s := NewScheduler(registry, slog.Default())
	return s, registry
}

func TestScheduler_AddTask(t *testing.T) {
	s, _ := testScheduler(t)

	err := s.AddTask(TaskSpec{
		Name:     "sweep",
		Queue:    jobs.MonitoringQueue,
		JobType:  jobs.TypeMonitorLateStarts,
		Schedule: "*/5 * * * *",
		Enabled:  true,
	})
	require.NoError(t, err)

	err = s.AddTask(TaskSpec{
		Name:     "sweep",
		Queue:    jobs.MonitoringQueue,
		JobType:  jobs.TypeMonitorLateStarts,
		Schedule: "*/5 * * * *",
	})
	assert.True(t, errors.Is(err, apperror.ErrTaskExists))

	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "sweep", tasks[0].Name)
	assert.True(t, tasks[0].Enabled)
}

func TestScheduler_AddTask_InvalidSchedule(t *testing.T) {
	s, _ := testScheduler(t)

	err := s.AddTask(TaskSpec{
		Name:     "broken",
		Queue:    jobs.MonitoringQueue,
		JobType:  jobs.TypeMonitorLateStarts,
		Schedule: "every five minutes",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrInvalidSchedule))
	assert.Empty(t, s.Tasks())
}

func TestScheduler_EnableDisable(t *testing.T) {
	s, _ := testScheduler(t)

	require.NoError(t, s.AddTask(TaskSpec{
		Name:     "sweep",
		Queue:    jobs.MonitoringQueue,
		JobType:  jobs.TypeMonitorLateStarts,
		Schedule: "*/5 * * * *",
		Enabled:  true,
	}))

	require.NoError(t, s.DisableTask("sweep"))
	assert.False(t, s.Tasks()[0].Enabled)

	// Disabling again is a no-op.
	require.NoError(t, s.DisableTask("sweep"))

	require.NoError(t, s.EnableTask("sweep"))
	assert.True(t, s.Tasks()[0].Enabled)

	assert.True(t, errors.Is(s.EnableTask("missing"), apperror.ErrTaskNotFound))
	assert.True(t, errors.Is(s.DisableTask("missing"), apperror.ErrTaskNotFound))
}

func TestScheduler_RemoveTask(t *testing.T) {
	s, _ := testScheduler(t)

	require.NoError(t, s.AddTask(TaskSpec{
		Name:     "sweep",
		Queue:    jobs.MonitoringQueue,
		JobType:  jobs.TypeMonitorLateStarts,
		Schedule: "*/5 * * * *",
		Enabled:  true,
	}))

	require.NoError(t, s.RemoveTask("sweep"))
	assert.Empty(t, s.Tasks())
	assert.True(t, errors.Is(s.RemoveTask("sweep"), apperror.ErrTaskNotFound))
}

func TestScheduler_RunTask(t *testing.T) {
	s, registry := testScheduler(t)

	q, err := registry.CreateQueue(jobs.MonitoringQueue)
	require.NoError(t, err)
	q.Pause()

	require.NoError(t, s.AddTask(TaskSpec{
		Name:     "sweep",
		Queue:    jobs.MonitoringQueue,
		JobType:  jobs.TypeMonitorLateStarts,
		Schedule: "*/5 * * * *",
	}))

	// Manual trigger works even for a disabled task.
	job, err := s.RunTask("sweep")
	require.NoError(t, err)
	assert.Equal(t, jobs.TypeMonitorLateStarts, job.Type)
	assert.Equal(t, 1, q.Stats().Waiting)

	tasks := s.Tasks()
	require.NotNil(t, tasks[0].LastRun)

	_, err = s.RunTask("missing")
	assert.True(t, errors.Is(err, apperror.ErrTaskNotFound))
}

func TestRegisterDefaultTasks(t *testing.T) {
	s, _ := testScheduler(t)

	require.NoError(t, RegisterDefaultTasks(s, NewConfig()))

	tasks := s.Tasks()
	require.Len(t, tasks, 5)

	names := make([]string, 0, len(tasks))
	for _, task := range tasks {
		names = append(names, task.Name)
		assert.True(t, task.Enabled, task.Name)
	}
	assert.Equal(t, []string{
		"monitor-active-shifts",
		"monitor-early-ends",
		"monitor-late-starts",
		"monitor-missed-shifts",
		"weekly-report",
	}, names)
}
