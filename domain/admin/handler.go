package admin

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/shiftwatch/shiftwatch/domain/scheduler"
	"github.com/shiftwatch/shiftwatch/internal/jobs"
	"github.com/shiftwatch/shiftwatch/pkg/apperror"
)

// Handler exposes queue and scheduler administration over HTTP.
type Handler struct {
	registry  *jobs.Registry
	scheduler *scheduler.Scheduler
}

func NewHandler(registry *jobs.Registry, sched *scheduler.Scheduler) *Handler {
	return &Handler{registry: registry, scheduler: sched}
}

// QueueStats returns counters for every queue.
func (h *Handler) QueueStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.registry.Stats())
}

// PauseQueue pauses dispatching on one queue.
func (h *Handler) PauseQueue(c echo.Context) error {
	if err := h.registry.Pause(c.Param("name")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ResumeQueue resumes dispatching on one queue.
func (h *Handler) ResumeQueue(c echo.Context) error {
	if err := h.registry.Resume(c.Param("name")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearQueue drops waiting and finished jobs from one queue, or from
// all queues when no name is given.
func (h *Handler) ClearQueue(c echo.Context) error {
	dropped, err := h.registry.Clear(c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"dropped": dropped})
}

// ClearAllQueues drops waiting and finished jobs everywhere.
func (h *Handler) ClearAllQueues(c echo.Context) error {
	dropped, err := h.registry.Clear("")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"dropped": dropped})
}

type enqueueRequest struct {
	Type     string         `json:"type"`
	Payload  map[string]any `json:"payload"`
	Priority int            `json:"priority"`
	Attempts int            `json:"attempts"`
}

// EnqueueJob places a job on the named queue.
func (h *Handler) EnqueueJob(c echo.Context) error {
	var req enqueueRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrInvalidPayload.WithInternal(err)
	}

	job, err := h.registry.Enqueue(c.Param("name"), jobs.JobType(req.Type), req.Payload, jobs.EnqueueOptions{
		Priority: req.Priority,
		Attempts: req.Attempts,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, job)
}

// GetJob looks a job up by ID across all queues.
func (h *Handler) GetJob(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperror.NewBadRequest("bad job id")
	}

	job, queueName, err := h.registry.Job(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"queue": queueName, "job": job})
}

// RemoveJob deletes a waiting or finished job.
func (h *Handler) RemoveJob(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperror.NewBadRequest("bad job id")
	}

	if err := h.registry.Remove(id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTasks returns the scheduler's registered tasks.
func (h *Handler) ListTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scheduler.Tasks())
}

// EnableTask turns a task's schedule on.
func (h *Handler) EnableTask(c echo.Context) error {
	if err := h.scheduler.EnableTask(c.Param("name")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DisableTask turns a task's schedule off.
func (h *Handler) DisableTask(c echo.Context) error {
	if err := h.scheduler.DisableTask(c.Param("name")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RunTask triggers a task immediately.
func (h *Handler) RunTask(c echo.Context) error {
	job, err := h.scheduler.RunTask(c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, job)
}
