package jobs

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/shiftwatch/shiftwatch/pkg/apperror"
	"github.com/shiftwatch/shiftwatch/pkg/logger"
)

// Registry owns all named queues in the process.
type Registry struct {
	log *slog.Logger

	mu     sync.RWMutex
	queues map[string]*Queue
}

// NewRegistry creates an empty registry.
func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:    log.With(logger.Scope("jobs")),
		queues: make(map[string]*Queue),
	}
}

// CreateQueue creates and starts a new queue. Returns ErrQueueExists if
// the name is taken.
func (r *Registry) CreateQueue(name string) (*Queue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.queues[name]; ok {
		return nil, apperror.ErrQueueExists.WithDetails(map[string]any{"queue": name})
	}

	q := NewQueue(name, r.log)
	r.queues[name] = q
	q.Start()
	return q, nil
}

// Queue returns the named queue.
func (r *Registry) Queue(name string) (*Queue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.queues[name]
	if !ok {
		return nil, apperror.ErrQueueNotFound.WithDetails(map[string]any{"queue": name})
	}
	return q, nil
}

// Enqueue places a job on the named queue.
func (r *Registry) Enqueue(queue string, jobType JobType, payload map[string]any, opts EnqueueOptions) (*Job, error) {
	q, err := r.Queue(queue)
	if err != nil {
		return nil, err
	}
	return q.Enqueue(jobType, payload, opts)
}

// RegisterHandler binds a handler for a job type on the named queue.
func (r *Registry) RegisterHandler(queue string, jobType JobType, h Handler) error {
	q, err := r.Queue(queue)
	if err != nil {
		return err
	}
	q.RegisterHandler(jobType, h)
	return nil
}

// Pause pauses the named queue.
func (r *Registry) Pause(queue string) error {
	q, err := r.Queue(queue)
	if err != nil {
		return err
	}
	q.Pause()
	return nil
}

// Resume resumes the named queue.
func (r *Registry) Resume(queue string) error {
	q, err := r.Queue(queue)
	if err != nil {
		return err
	}
	q.Resume()
	return nil
}

// Clear drops waiting and finished jobs. With an empty queue name, all
// queues are cleared.
func (r *Registry) Clear(queue string) (int, error) {
	if queue == "" {
		r.mu.RLock()
		defer r.mu.RUnlock()
		total := 0
		for _, q := range r.queues {
			total += q.Clear()
		}
		return total, nil
	}

	q, err := r.Queue(queue)
	if err != nil {
		return 0, err
	}
	return q.Clear(), nil
}

// Job looks up a job by ID across all queues. The returned job is a
// snapshot, like Queue.Job.
func (r *Registry) Job(id uuid.UUID) (*Job, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, q := range r.queues {
		if job, ok := q.Job(id); ok {
			return job, name, nil
		}
	}
	return nil, "", apperror.ErrNotFound.WithMessage("job not found")
}

// Remove deletes a job by ID from whichever queue holds it.
func (r *Registry) Remove(id uuid.UUID) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, q := range r.queues {
		if _, ok := q.Job(id); ok {
			return q.Remove(id)
		}
	}
	return apperror.ErrNotFound.WithMessage("job not found")
}

// Stats returns stats for every queue, keyed by name.
func (r *Registry) Stats() map[string]QueueStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]QueueStats, len(r.queues))
	for name, q := range r.queues {
		out[name] = q.Stats()
	}
	return out
}

// StopAll stops every queue. Used on shutdown.
func (r *Registry) StopAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, q := range r.queues {
		q.Stop()
	}
}
