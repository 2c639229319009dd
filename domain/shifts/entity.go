package shifts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Shift lifecycle states.
const (
	StatusPlanned   = "planned"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Shift is a planned work period for one employee on one date.
type Shift struct {
	bun.BaseModel `bun:"table:shifts,alias:s"`

	ID           uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	CompanyID    uuid.UUID  `bun:"company_id,notnull,type:uuid" json:"companyId"`
	EmployeeID   uuid.UUID  `bun:"employee_id,notnull,type:uuid" json:"employeeId"`
	Date         time.Time  `bun:"shift_date,notnull" json:"date"`
	PlannedStart time.Time  `bun:"planned_start,notnull" json:"plannedStart"`
	PlannedEnd   time.Time  `bun:"planned_end,notnull" json:"plannedEnd"`
	ActualStart  *time.Time `bun:"actual_start" json:"actualStart,omitempty"`
	ActualEnd    *time.Time `bun:"actual_end" json:"actualEnd,omitempty"`
	Status       string     `bun:"status,notnull,default:'planned'" json:"status"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:now()" json:"createdAt"`
	UpdatedAt    time.Time  `bun:"updated_at,nullzero,notnull,default:now()" json:"updatedAt"`
}

// WorkInterval is a continuous stretch of work within a shift, bounded
// by breaks.
type WorkInterval struct {
	bun.BaseModel `bun:"table:work_intervals,alias:wi"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	ShiftID   uuid.UUID  `bun:"shift_id,notnull,type:uuid" json:"shiftId"`
	StartedAt time.Time  `bun:"started_at,notnull" json:"startedAt"`
	EndedAt   *time.Time `bun:"ended_at" json:"endedAt,omitempty"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:now()" json:"createdAt"`
}

// BreakInterval is a pause within a shift. An open break has no EndedAt.
type BreakInterval struct {
	bun.BaseModel `bun:"table:break_intervals,alias:bi"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	ShiftID   uuid.UUID  `bun:"shift_id,notnull,type:uuid" json:"shiftId"`
	StartedAt time.Time  `bun:"started_at,notnull" json:"startedAt"`
	EndedAt   *time.Time `bun:"ended_at" json:"endedAt,omitempty"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:now()" json:"createdAt"`
}
