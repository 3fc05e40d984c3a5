package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Job is a billable unit of work, unique by name per company.
type Job struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID   uuid.UUID       `gorm:"column:company_id;type:uuid;not null;uniqueIndex:uq_jobs_company_name"`
	Name        string          `gorm:"column:name;type:text;not null;uniqueIndex:uq_jobs_company_name"`
	ClientName  *string         `gorm:"column:client_name;type:text"`
	DefaultRate decimal.Decimal `gorm:"column:default_rate;type:numeric(12,2);not null;default:0"`
	Active      bool            `gorm:"column:active;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
