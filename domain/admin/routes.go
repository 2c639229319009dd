package admin

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the admin API under /admin.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/admin")

	g.GET("/queues", h.QueueStats)
	g.POST("/queues/clear", h.ClearAllQueues)
	g.POST("/queues/:name/pause", h.PauseQueue)
	g.POST("/queues/:name/resume", h.ResumeQueue)
	g.POST("/queues/:name/clear", h.ClearQueue)
	g.POST("/queues/:name/jobs", h.EnqueueJob)

	g.GET("/jobs/:id", h.GetJob)
	g.DELETE("/jobs/:id", h.RemoveJob)

	g.GET("/tasks", h.ListTasks)
	g.POST("/tasks/:name/enable", h.EnableTask)
	g.POST("/tasks/:name/disable", h.DisableTask)
	g.POST("/tasks/:name/run", h.RunTask)
}
