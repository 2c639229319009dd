package employees

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Status of an employee within a company.
const (
	StatusActive     = "active"
	StatusWarning    = "warning"
	StatusTerminated = "terminated"
)

// Employee is a worker whose shifts are monitored.
type Employee struct {
	bun.BaseModel `bun:"table:employees,alias:e"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	CompanyID uuid.UUID `bun:"company_id,notnull,type:uuid" json:"companyId"`
	FullName  string    `bun:"full_name,notnull" json:"fullName"`
	ChatID    string    `bun:"chat_id" json:"chatId,omitempty"`
	Status    string    `bun:"status,notnull,default:'active'" json:"status"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:now()" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:now()" json:"updatedAt"`
}
