package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fieldhr/fieldhr-backend/pkg/enums"
)

// JobAssignment links an employee to a job, unique per (company, job,
// employee), with its own lifecycle state driven by timeclock transitions.
type JobAssignment struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID      uuid.UUID             `gorm:"column:company_id;type:uuid;not null;uniqueIndex:uq_job_assignments_scope"`
	JobID          uuid.UUID             `gorm:"column:job_id;type:uuid;not null;uniqueIndex:uq_job_assignments_scope"`
	EmployeeID     uuid.UUID             `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_job_assignments_scope"`
	State          enums.AssignmentState `gorm:"column:state;type:text;not null;default:'assigned'"`
	StateChangedAt time.Time             `gorm:"column:state_changed_at;not null"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
