package rating

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shiftwatch/shiftwatch/domain/employees"
	"github.com/shiftwatch/shiftwatch/pkg/logger"
)

// StatusPolicy marks the employee record terminated. It does not fire
// the employee; offboarding stays a human decision.
type StatusPolicy struct {
	employees *employees.Repository
	log       *slog.Logger
}

func NewStatusPolicy(employeesRepo *employees.Repository, log *slog.Logger) *StatusPolicy {
	return &StatusPolicy{
		employees: employeesRepo,
		log:       log.With(logger.Scope("rating")),
	}
}

func (p *StatusPolicy) OnTerminated(ctx context.Context, companyID, employeeID uuid.UUID, rating int) error {
	p.log.Warn("employee crossed termination threshold",
		slog.String("company_id", companyID.String()),
		slog.String("employee_id", employeeID.String()),
		slog.Int("rating", rating),
	)
	return p.employees.UpdateStatus(ctx, employeeID, employees.StatusTerminated)
}
