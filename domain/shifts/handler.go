package shifts

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/shiftwatch/shiftwatch/pkg/apperror"
)

// Handler serves the shift read surface used by operators and by the
// company dashboard.
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Get returns one shift together with its work and break intervals.
func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperror.ErrBadRequest.WithMessage("bad shift id")
	}

	ctx := c.Request().Context()
	shift, err := h.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	work, err := h.repo.WorkIntervals(ctx, id)
	if err != nil {
		return err
	}
	breaks, err := h.repo.BreakIntervals(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"shift":          shift,
		"workIntervals":  work,
		"breakIntervals": breaks,
	})
}

// Today lists a company's shifts for the current date.
func (h *Handler) Today(c echo.Context) error {
	companyID, err := uuid.Parse(c.Param("companyId"))
	if err != nil {
		return apperror.ErrBadRequest.WithMessage("bad company id")
	}

	list, err := h.repo.TodayShifts(c.Request().Context(), companyID, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}
