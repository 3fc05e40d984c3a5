package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldhr/fieldhr-backend/pkg/db/models"
)

// scopeMinutes is one (job, employee) aggregation row. Open entries carry a
// NULL duration and therefore sum as zero.
type scopeMinutes struct {
	JobID      uuid.UUID
	EmployeeID uuid.UUID
	Minutes    int64
}

// Repository exposes the billing aggregation query.
type Repository interface {
	SumMinutes(ctx context.Context, companyID uuid.UUID, from, to time.Time, jobID *uuid.UUID) ([]scopeMinutes, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a billing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// SumMinutes groups worked minutes by (job, employee) over the half-open
// window [from, to) on the entry date.
func (r *repositoryImpl) SumMinutes(ctx context.Context, companyID uuid.UUID, from, to time.Time, jobID *uuid.UUID) ([]scopeMinutes, error) {
	query := r.db.WithContext(ctx).
		Model(&models.TimeEntry{}).
		Select("job_id, employee_id, SUM(COALESCE(duration_minutes, 0)) AS minutes").
		Where("company_id = ? AND date >= ? AND date < ?", companyID, from, to)
	if jobID != nil {
		query = query.Where("job_id = ?", *jobID)
	}

	var rows []scopeMinutes
	err := query.
		Group("job_id, employee_id").
		Order("job_id, employee_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
