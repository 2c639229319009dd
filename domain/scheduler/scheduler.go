package scheduler

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shiftwatch/shiftwatch/internal/jobs"
	"github.com/shiftwatch/shiftwatch/pkg/apperror"
	"github.com/shiftwatch/shiftwatch/pkg/logger"
)

// TaskSpec describes a recurring task to register with the scheduler.
type TaskSpec struct {
	Name     string
	Queue    string
	JobType  jobs.JobType
	Payload  map[string]any
	Schedule string
	Enabled  bool
}

// Task is a registered recurring task.
type Task struct {
	Name     string         `json:"name"`
	Queue    string         `json:"queue"`
	JobType  jobs.JobType   `json:"jobType"`
	Payload  map[string]any `json:"payload,omitempty"`
	Schedule string         `json:"schedule"`
	Enabled  bool           `json:"enabled"`
	LastRun  *time.Time     `json:"lastRun,omitempty"`
	NextRun  *time.Time     `json:"nextRun,omitempty"`

	schedule Schedule
	entryID  cron.EntryID
}

// Scheduler registers recurring tasks with a cron runner and enqueues
// jobs when they fire. Tasks can be enabled, disabled and triggered
// manually at runtime.
type Scheduler struct {
	log      *slog.Logger
	cron     *cron.Cron
	registry *jobs.Registry

	mu    sync.Mutex
	tasks map[string]*Task
}

// NewScheduler creates a scheduler. Cron entries do not fire until
// Start is called.
func NewScheduler(registry *jobs.Registry, log *slog.Logger) *Scheduler {
	return &Scheduler{
		log:      log.With(logger.Scope("scheduler")),
		cron:     cron.New(),
		registry: registry,
		tasks:    make(map[string]*Task),
	}
}

// Start begins firing cron entries.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", slog.Int("tasks", len(s.tasks)))
}

// Stop stops the cron runner and waits for in-flight task callbacks.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

// AddTask registers a task. The schedule is validated before anything
// is touched, so a bad expression never leaves a half-registered task.
func (s *Scheduler) AddTask(spec TaskSpec) error {
	schedule, err := ParseSchedule(spec.Schedule)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[spec.Name]; ok {
		return apperror.ErrTaskExists.WithDetails(map[string]any{"task": spec.Name})
	}

	task := &Task{
		Name:     spec.Name,
		Queue:    spec.Queue,
		JobType:  spec.JobType,
		Payload:  spec.Payload,
		Schedule: spec.Schedule,
		schedule: schedule,
	}
	s.tasks[spec.Name] = task

	if spec.Enabled {
		if err := s.enable(task); err != nil {
			delete(s.tasks, spec.Name)
			return err
		}
	}

	s.log.Info("task registered",
		slog.String("task", task.Name),
		slog.String("schedule", task.Schedule),
		slog.Bool("enabled", task.Enabled),
	)
	return nil
}

// RemoveTask unregisters a task and drops its cron entry.
func (s *Scheduler) RemoveTask(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[name]
	if !ok {
		return apperror.ErrTaskNotFound.WithDetails(map[string]any{"task": name})
	}

	if task.Enabled {
		s.cron.Remove(task.entryID)
	}
	delete(s.tasks, name)

	s.log.Info("task removed", slog.String("task", name))
	return nil
}

// EnableTask turns a disabled task back on. Enabling an enabled task is
// a no-op.
func (s *Scheduler) EnableTask(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[name]
	if !ok {
		return apperror.ErrTaskNotFound.WithDetails(map[string]any{"task": name})
	}
	if task.Enabled {
		return nil
	}
	return s.enable(task)
}

// DisableTask stops a task from firing. Its definition stays registered.
func (s *Scheduler) DisableTask(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[name]
	if !ok {
		return apperror.ErrTaskNotFound.WithDetails(map[string]any{"task": name})
	}
	if !task.Enabled {
		return nil
	}

	s.cron.Remove(task.entryID)
	task.Enabled = false
	task.NextRun = nil

	s.log.Info("task disabled", slog.String("task", name))
	return nil
}

// RunTask fires a task immediately, regardless of its schedule or
// enabled state.
func (s *Scheduler) RunTask(name string) (*jobs.Job, error) {
	s.mu.Lock()
	task, ok := s.tasks[name]
	s.mu.Unlock()

	if !ok {
		return nil, apperror.ErrTaskNotFound.WithDetails(map[string]any{"task": name})
	}
	return s.fire(task)
}

// Tasks returns a snapshot of all registered tasks sorted by name.
func (s *Scheduler) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		t := *task
		if task.Enabled {
			entry := s.cron.Entry(task.entryID)
			if !entry.Next.IsZero() {
				next := entry.Next
				t.NextRun = &next
			}
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// enable registers the cron entry. Caller holds s.mu.
func (s *Scheduler) enable(task *Task) error {
	entryID, err := s.cron.AddFunc(task.schedule.CronSpec(), func() {
		if _, err := s.fire(task); err != nil {
			s.log.Error("scheduled enqueue failed",
				slog.String("task", task.Name),
				logger.Error(err),
			)
		}
	})
	if err != nil {
		return apperror.ErrInvalidSchedule.WithInternal(err)
	}

	task.entryID = entryID
	task.Enabled = true

	s.log.Info("task enabled", slog.String("task", task.Name))
	return nil
}

func (s *Scheduler) fire(task *Task) (*jobs.Job, error) {
	job, err := s.registry.Enqueue(task.Queue, task.JobType, task.Payload, jobs.EnqueueOptions{})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	now := time.Now()
	task.LastRun = &now
	s.mu.Unlock()

	s.log.Debug("task fired",
		slog.String("task", task.Name),
		slog.String("job_id", job.ID.String()),
	)
	return job, nil
}
