package violations

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Violation types detected by the monitoring sweeps. The same codes key
// the per-company penalty rules.
const (
	TypeLateStart   = "late_start"
	TypeEarlyEnd    = "early_end"
	TypeMissedShift = "missed_shift"
	TypeLongBreak   = "long_break"
	TypeNoBreakEnd  = "no_break_end"
)

// Violation sources.
const (
	SourceAuto   = "auto"
	SourceManual = "manual"
)

// Violation is a recorded compliance breach for one employee, usually
// tied to a shift.
type Violation struct {
	bun.BaseModel `bun:"table:violations,alias:v"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	CompanyID  uuid.UUID  `bun:"company_id,notnull,type:uuid" json:"companyId"`
	EmployeeID uuid.UUID  `bun:"employee_id,notnull,type:uuid" json:"employeeId"`
	ShiftID    *uuid.UUID `bun:"shift_id,type:uuid" json:"shiftId,omitempty"`
	ShiftDate  time.Time  `bun:"shift_date,notnull" json:"shiftDate"`
	Type       string     `bun:"type,notnull" json:"type"`
	Severity   int        `bun:"severity,notnull,default:1" json:"severity"`
	Minutes    int        `bun:"minutes,notnull,default:0" json:"minutes"`
	Penalty    int        `bun:"penalty,notnull,default:0" json:"penalty"`
	Source     string     `bun:"source,notnull,default:'auto'" json:"source"`
	OccurredAt time.Time  `bun:"occurred_at,notnull" json:"occurredAt"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,notnull,default:now()" json:"createdAt"`
}

// Exception excuses an employee from a violation type on a shift. An
// unresolved exception suppresses detection for that shift and type.
type Exception struct {
	bun.BaseModel `bun:"table:exceptions,alias:x"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	CompanyID  uuid.UUID  `bun:"company_id,notnull,type:uuid" json:"companyId"`
	EmployeeID uuid.UUID  `bun:"employee_id,notnull,type:uuid" json:"employeeId"`
	ShiftID    *uuid.UUID `bun:"shift_id,type:uuid" json:"shiftId,omitempty"`
	ShiftDate  time.Time  `bun:"shift_date,notnull" json:"shiftDate"`
	Type       string     `bun:"type,notnull" json:"type"`
	Reason     string     `bun:"reason" json:"reason,omitempty"`
	Resolved   bool       `bun:"resolved,notnull,default:false" json:"resolved"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,notnull,default:now()" json:"createdAt"`
	UpdatedAt  time.Time  `bun:"updated_at,nullzero,notnull,default:now()" json:"updatedAt"`
}

// CompanyRule switches a violation type on or off for a company and
// sets its rating penalty.
type CompanyRule struct {
	bun.BaseModel `bun:"table:company_rules,alias:cr"`

	ID             uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	CompanyID      uuid.UUID `bun:"company_id,notnull,type:uuid" json:"companyId"`
	Code           string    `bun:"code,notnull" json:"code"`
	PenaltyPercent int       `bun:"penalty_percent,notnull,default:0" json:"penaltyPercent"`
	IsActive       bool      `bun:"is_active,notnull,default:true" json:"isActive"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:now()" json:"createdAt"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:now()" json:"updatedAt"`
}
