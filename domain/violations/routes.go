package violations

import "github.com/labstack/echo/v4"

func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/companies/:companyId/exceptions", h.ListExceptions)
	e.POST("/exceptions/:id/resolve", h.ResolveException)
}
