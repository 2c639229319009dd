package rating

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/shiftwatch/shiftwatch/pkg/apperror"
)

// Handler serves employee rating lookups.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get returns the stored rating row for the period containing the
// given date (query param "date", default today). A clean period comes
// back as rating 100.
func (h *Handler) Get(c echo.Context) error {
	companyID, err := uuid.Parse(c.Param("companyId"))
	if err != nil {
		return apperror.ErrBadRequest.WithMessage("bad company id")
	}
	employeeID, err := uuid.Parse(c.Param("employeeId"))
	if err != nil {
		return apperror.ErrBadRequest.WithMessage("bad employee id")
	}

	at := time.Now()
	if raw := c.QueryParam("date"); raw != "" {
		at, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return apperror.ErrBadRequest.WithMessage("bad date, want YYYY-MM-DD")
		}
	}
	start, end := PeriodFor(at)

	row, err := h.service.Get(c.Request().Context(), companyID, employeeID, start, end)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, row)
}

// Preview recomputes the current-period rating from recorded
// violations without touching the stored row. Useful for checking what
// a rule change would do before the next sweep writes it.
func (h *Handler) Preview(c echo.Context) error {
	employeeID, err := uuid.Parse(c.Param("employeeId"))
	if err != nil {
		return apperror.ErrBadRequest.WithMessage("bad employee id")
	}

	start, end := PeriodFor(time.Now())
	value, err := h.service.CalculateForPeriod(c.Request().Context(), employeeID, start, end)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"rating":      value,
		"status":      StatusFor(value),
		"periodStart": start.Format("2006-01-02"),
		"periodEnd":   end.Format("2006-01-02"),
	})
}
