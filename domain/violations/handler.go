package violations

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/shiftwatch/shiftwatch/pkg/apperror"
)

// Handler serves the exception review surface. Resolving an exception
// releases the detection guard for that employee, date and type.
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// ListExceptions returns a company's exceptions, unresolved first.
func (h *Handler) ListExceptions(c echo.Context) error {
	companyID, err := uuid.Parse(c.Param("companyId"))
	if err != nil {
		return apperror.ErrBadRequest.WithMessage("bad company id")
	}

	list, err := h.repo.ListExceptionsByCompany(c.Request().Context(), companyID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// ResolveException marks one exception resolved.
func (h *Handler) ResolveException(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperror.ErrBadRequest.WithMessage("bad exception id")
	}

	if err := h.repo.ResolveException(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
