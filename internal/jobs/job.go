package jobs

import (
	"time"

	"github.com/google/uuid"
)

// Queue names used by the built-in handlers and scheduled tasks.
const (
	MonitoringQueue    = "monitoring"
	NotificationsQueue = "notifications"
)

// JobType identifies what a job does. Handlers are registered per type.
type JobType string

const (
	// Monitoring sweeps
	TypeMonitorLateStarts   JobType = "MONITOR_LATE_STARTS"
	TypeMonitorEarlyEnds    JobType = "MONITOR_EARLY_ENDS"
	TypeMonitorMissedShifts JobType = "MONITOR_MISSED_SHIFTS"
	TypeMonitorActiveShifts JobType = "MONITOR_ACTIVE_SHIFTS"
	TypeCheckSpecificShift  JobType = "CHECK_SPECIFIC_SHIFT"

	// Notifications
	TypeSendShiftReminder         JobType = "SEND_SHIFT_REMINDER"
	TypeSendViolationNotification JobType = "SEND_VIOLATION_NOTIFICATION"
	TypeSendWeeklyReport          JobType = "SEND_WEEKLY_REPORT"
	TypeSendEmployeeWelcome       JobType = "SEND_EMPLOYEE_WELCOME"
)

var knownTypes = map[JobType]struct{}{
	TypeMonitorLateStarts:         {},
	TypeMonitorEarlyEnds:          {},
	TypeMonitorMissedShifts:       {},
	TypeMonitorActiveShifts:       {},
	TypeCheckSpecificShift:        {},
	TypeSendShiftReminder:         {},
	TypeSendViolationNotification: {},
	TypeSendWeeklyReport:          {},
	TypeSendEmployeeWelcome:       {},
}

// Valid reports whether t is one of the known job types.
func (t JobType) Valid() bool {
	_, ok := knownTypes[t]
	return ok
}

// JobStatus is the lifecycle state of a job on a queue.
type JobStatus string

const (
	StatusWaiting   JobStatus = "waiting"
	StatusActive    JobStatus = "active"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job is a unit of work placed on a queue.
type Job struct {
	ID           uuid.UUID      `json:"id"`
	Type         JobType        `json:"type"`
	Payload      map[string]any `json:"payload,omitempty"`
	Priority     int            `json:"priority"`
	AttemptsLeft int            `json:"attemptsLeft"`
	Status       JobStatus      `json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
	FinishedAt   *time.Time     `json:"finishedAt,omitempty"`
	Result       *Result        `json:"result,omitempty"`
}

// clone returns a detached copy of the job. The queue hands out clones
// so callers never share memory with the dispatch goroutine. The
// payload map is shared; neither side writes to it after enqueue.
func (j *Job) clone() *Job {
	c := *j
	if j.FinishedAt != nil {
		finished := *j.FinishedAt
		c.FinishedAt = &finished
	}
	if j.Result != nil {
		result := *j.Result
		c.Result = &result
	}
	return &c
}

// Result is the outcome of a single handler invocation.
type Result struct {
	Success bool   `json:"success"`
	Retry   bool   `json:"retry,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler processes jobs of one or more types.
type Handler interface {
	Handle(job *Job) Result
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(job *Job) Result

func (f HandlerFunc) Handle(job *Job) Result { return f(job) }

// EnqueueOptions tune how a job is placed on a queue.
type EnqueueOptions struct {
	// Priority orders waiting jobs, higher first. Default 0.
	Priority int
	// Attempts is how many times the job may run. Default 1.
	Attempts int
}

// NewJob constructs a waiting job with a fresh ID.
func NewJob(jobType JobType, payload map[string]any, opts EnqueueOptions) *Job {
	attempts := opts.Attempts
	if attempts < 1 {
		attempts = 1
	}
	return &Job{
		ID:           uuid.New(),
		Type:         jobType,
		Payload:      payload,
		Priority:     opts.Priority,
		AttemptsLeft: attempts,
		Status:       StatusWaiting,
		CreatedAt:    time.Now(),
	}
}
