package jobs

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shiftwatch/shiftwatch/pkg/apperror"
	"github.com/shiftwatch/shiftwatch/pkg/logger"
)

// Queue is a named in-process job queue with a single dispatch goroutine.
// Jobs are processed in priority order, FIFO within the same priority.
type Queue struct {
	name string
	log  *slog.Logger

	mu       sync.Mutex
	waiting  []*Job
	jobs     map[uuid.UUID]*Job
	handlers map[JobType]Handler
	paused   bool
	active   *Job

	completed int
	failed    int

	running   bool
	wake      chan struct{}
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// QueueStats is a point-in-time snapshot of queue state.
type QueueStats struct {
	Name      string `json:"name"`
	Paused    bool   `json:"paused"`
	Waiting   int    `json:"waiting"`
	Active    int    `json:"active"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
}

// NewQueue creates a queue. It does not process jobs until Start is called.
func NewQueue(name string, log *slog.Logger) *Queue {
	return &Queue{
		name:     name,
		log:      log.With(logger.Scope("queue"), slog.String("queue", name)),
		jobs:     make(map[uuid.UUID]*Job),
		handlers: make(map[JobType]Handler),
		wake:     make(chan struct{}, 1),
	}
}

// Name returns the queue name.
func (q *Queue) Name() string { return q.name }

// Start launches the dispatch goroutine. Calling Start on a running
// queue is a no-op.
func (q *Queue) Start() {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.stopCh = make(chan struct{})
	q.stoppedCh = make(chan struct{})
	q.mu.Unlock()

	go q.dispatch()
	q.log.Info("queue started")
}

// Stop signals the dispatch goroutine and waits for it to exit.
// The job in flight, if any, finishes first.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.stopCh)
	stopped := q.stoppedCh
	q.mu.Unlock()

	<-stopped
	q.log.Info("queue stopped")
}

// RegisterHandler binds a handler to a job type. Registering a second
// handler for the same type replaces the first.
func (q *Queue) RegisterHandler(jobType JobType, h Handler) {
	q.mu.Lock()
	_, replaced := q.handlers[jobType]
	q.handlers[jobType] = h
	q.mu.Unlock()

	if replaced {
		q.log.Warn("handler replaced", slog.String("type", string(jobType)))
	}
}

// Enqueue places a job on the queue. The job stays waiting while the
// queue is paused and is dispatched once it resumes. The returned job
// is a snapshot; look the job up by ID to observe progress.
func (q *Queue) Enqueue(jobType JobType, payload map[string]any, opts EnqueueOptions) (*Job, error) {
	if !jobType.Valid() {
		return nil, apperror.ErrUnknownJobType.WithDetails(map[string]any{"type": string(jobType)})
	}

	job := NewJob(jobType, payload, opts)

	q.mu.Lock()
	q.jobs[job.ID] = job
	q.waiting = append(q.waiting, job)
	// Stable sort keeps FIFO order within a priority level.
	sort.SliceStable(q.waiting, func(i, j int) bool {
		return q.waiting[i].Priority > q.waiting[j].Priority
	})
	out := job.clone()
	q.mu.Unlock()

	q.log.Debug("job enqueued",
		slog.String("job_id", job.ID.String()),
		slog.String("type", string(jobType)),
	)

	q.notify()
	return out, nil
}

// Pause stops dispatching. Enqueued jobs accumulate as waiting.
func (q *Queue) Pause() {
	q.mu.Lock()
	q.paused = true
	q.mu.Unlock()
	q.log.Info("queue paused")
}

// Resume restarts dispatching of waiting jobs.
func (q *Queue) Resume() {
	q.mu.Lock()
	q.paused = false
	q.mu.Unlock()
	q.log.Info("queue resumed")
	q.notify()
}

// Clear drops all waiting jobs and forgets finished ones. The job in
// flight, if any, is not touched.
func (q *Queue) Clear() int {
	q.mu.Lock()
	n := len(q.waiting)
	for _, job := range q.waiting {
		delete(q.jobs, job.ID)
	}
	q.waiting = nil
	for id, job := range q.jobs {
		if job.Status == StatusCompleted || job.Status == StatusFailed {
			delete(q.jobs, id)
		}
	}
	q.mu.Unlock()

	q.log.Info("queue cleared", slog.Int("dropped", n))
	return n
}

// Job returns a snapshot of the job with the given ID, or false if
// unknown. The live object stays behind the queue's lock.
func (q *Queue) Job(id uuid.UUID) (*Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[id]
	if !ok {
		return nil, false
	}
	return job.clone(), true
}

// Remove deletes a waiting or finished job. An active job cannot be
// removed.
func (q *Queue) Remove(id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.jobs[id]
	if !ok {
		return apperror.ErrNotFound.WithMessage("job not found")
	}
	if job.Status == StatusActive {
		return apperror.ErrConflict.WithMessage("job is active")
	}

	delete(q.jobs, id)
	for i, w := range q.waiting {
		if w.ID == id {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			break
		}
	}
	return nil
}

// Stats returns a snapshot of queue counters.
func (q *Queue) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()

	active := 0
	if q.active != nil {
		active = 1
	}
	return QueueStats{
		Name:      q.name,
		Paused:    q.paused,
		Waiting:   len(q.waiting),
		Active:    active,
		Completed: q.completed,
		Failed:    q.failed,
	}
}

func (q *Queue) notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) dispatch() {
	defer close(q.stoppedCh)

	for {
		select {
		case <-q.stopCh:
			return
		case <-q.wake:
		}

		for {
			select {
			case <-q.stopCh:
				return
			default:
			}

			job := q.next()
			if job == nil {
				break
			}
			q.process(job)
		}
	}
}

// next pops the highest-priority waiting job, or nil when the queue is
// paused or empty.
func (q *Queue) next() *Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.paused || len(q.waiting) == 0 {
		return nil
	}

	job := q.waiting[0]
	q.waiting = q.waiting[1:]
	job.Status = StatusActive
	job.AttemptsLeft--
	q.active = job
	return job
}

func (q *Queue) process(job *Job) {
	q.mu.Lock()
	handler, ok := q.handlers[job.Type]
	q.mu.Unlock()

	var result Result
	if !ok {
		result = Result{Success: false, Error: fmt.Sprintf("no handler for type %s", job.Type)}
	} else {
		result = q.run(handler, job)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.active = nil
	job.Result = &result

	if !result.Success && result.Retry && job.AttemptsLeft > 0 {
		job.Status = StatusWaiting
		q.waiting = append(q.waiting, job)
		sort.SliceStable(q.waiting, func(i, j int) bool {
			return q.waiting[i].Priority > q.waiting[j].Priority
		})
		q.log.Debug("job requeued",
			slog.String("job_id", job.ID.String()),
			slog.Int("attempts_left", job.AttemptsLeft),
		)
		q.notify()
		return
	}

	now := time.Now()
	job.FinishedAt = &now

	if result.Success {
		job.Status = StatusCompleted
		q.completed++
		observeJob(q.name, job.Type, "completed")
	} else {
		job.Status = StatusFailed
		q.failed++
		observeJob(q.name, job.Type, "failed")
		q.log.Warn("job failed",
			slog.String("job_id", job.ID.String()),
			slog.String("type", string(job.Type)),
			slog.String("error", result.Error),
		)
	}
}

// run invokes the handler and converts a panic into a failed result so
// one bad job cannot kill the dispatch goroutine.
func (q *Queue) run(handler Handler, job *Job) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("handler panic",
				slog.String("job_id", job.ID.String()),
				slog.String("type", string(job.Type)),
				slog.Any("panic", r),
			)
			result = Result{Success: false, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()
	return handler.Handle(job)
}
