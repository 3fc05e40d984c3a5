package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fieldhr/fieldhr-backend/pkg/enums"
)

// AssignmentActivity is an append-only audit event for a (job, employee)
// assignment. Rows are never updated or deleted. ActorUserID is nil for
// system-synthesized backfill events.
type AssignmentActivity struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID   uuid.UUID            `gorm:"column:company_id;type:uuid;not null;index:ix_assignment_activity_scope"`
	EmployeeID  uuid.UUID            `gorm:"column:employee_id;type:uuid;not null;index:ix_assignment_activity_scope"`
	JobID       uuid.UUID            `gorm:"column:job_id;type:uuid;not null"`
	JobName     *string              `gorm:"column:job_name;type:text"`
	Action      enums.ActivityAction `gorm:"column:action;type:text;not null"`
	ActorUserID *uuid.UUID           `gorm:"column:actor_user_id;type:uuid"`
	Note        *string              `gorm:"column:note;type:text"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}
