package health

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/shiftwatch/shiftwatch/internal/jobs"
	"github.com/shiftwatch/shiftwatch/internal/version"
)

var Module = fx.Module("health",
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)

// Handler serves liveness, readiness and metrics endpoints.
type Handler struct {
	pool     *pgxpool.Pool
	registry *jobs.Registry
}

func NewHandler(pool *pgxpool.Pool, registry *jobs.Registry) *Handler {
	return &Handler{pool: pool, registry: registry}
}

// RegisterRoutes mounts the health endpoints at the root.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/health", h.Health)
	e.GET("/healthz", h.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Health is the liveness probe. It always succeeds while the process
// is serving.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Version,
	})
}

// Ready is the readiness probe. It fails while the database is
// unreachable.
func (h *Handler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"error":  "database unreachable",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"queues": h.registry.Stats(),
	})
}
