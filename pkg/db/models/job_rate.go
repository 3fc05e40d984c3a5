package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JobRate is a per-employee override of a job's default billing rate,
// unique per (company, job, employee).
type JobRate struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID  uuid.UUID       `gorm:"column:company_id;type:uuid;not null;uniqueIndex:uq_job_rates_scope"`
	JobID      uuid.UUID       `gorm:"column:job_id;type:uuid;not null;uniqueIndex:uq_job_rates_scope"`
	EmployeeID uuid.UUID       `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_job_rates_scope"`
	Rate       decimal.Decimal `gorm:"column:rate;type:numeric(12,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
