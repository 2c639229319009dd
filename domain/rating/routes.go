package rating

import "github.com/labstack/echo/v4"

func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/companies/:companyId/employees/:employeeId/rating", h.Get)
	e.GET("/employees/:employeeId/rating/preview", h.Preview)
}
