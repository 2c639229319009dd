package rating

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// EmployeeRating is the rating row for one employee and one period.
// Upserted on every recalculation within the period.
type EmployeeRating struct {
	bun.BaseModel `bun:"table:employee_ratings,alias:er"`

	ID          uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	CompanyID   uuid.UUID `bun:"company_id,notnull,type:uuid" json:"companyId"`
	EmployeeID  uuid.UUID `bun:"employee_id,notnull,type:uuid" json:"employeeId"`
	PeriodStart time.Time `bun:"period_start,notnull" json:"periodStart"`
	PeriodEnd   time.Time `bun:"period_end,notnull" json:"periodEnd"`
	Rating      int       `bun:"rating,notnull,default:100" json:"rating"`
	Status      string    `bun:"status,notnull,default:'active'" json:"status"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:now()" json:"updatedAt"`
}

// PeriodFor returns the rating period covering t. Periods are calendar
// weeks starting Monday, matching the weekly report cadence.
func PeriodFor(t time.Time) (start, end time.Time) {
	// Midnight in t's own location; Truncate would snap to UTC days.
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started the previous Monday
	}
	start = t.AddDate(0, 0, -(weekday - 1))
	end = start.AddDate(0, 0, 7)
	return start, end
}
