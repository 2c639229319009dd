package shifts

import "github.com/labstack/echo/v4"

func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/shifts/:id", h.Get)
	e.GET("/companies/:companyId/shifts/today", h.Today)
}
