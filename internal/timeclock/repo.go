package timeclock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldhr/fieldhr-backend/pkg/db/models"
	"github.com/fieldhr/fieldhr-backend/pkg/pagination"
)

// activeEntryConstraint names the partial unique index that allows at most
// one active entry per (company, employee).
const activeEntryConstraint = "uq_time_entries_active"

// Repository exposes persistence helpers for time entries. Find methods
// return (nil, nil) when no row matches.
type Repository interface {
	Insert(ctx context.Context, entry *models.TimeEntry) error
	Save(ctx context.Context, entry *models.TimeEntry) error
	FindActive(ctx context.Context, companyID, employeeID uuid.UUID) (*models.TimeEntry, error)
	FindOwned(ctx context.Context, companyID, employeeID, entryID uuid.UUID) (*models.TimeEntry, error)
	Delete(ctx context.Context, companyID, employeeID, entryID uuid.UUID) (bool, error)
	List(ctx context.Context, params listEntriesParams) ([]models.TimeEntry, int64, error)
	ListForScope(ctx context.Context, companyID, jobID, employeeID uuid.UUID) ([]models.TimeEntry, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a time entry repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listEntriesParams struct {
	CompanyID  uuid.UUID
	EmployeeID uuid.UUID
	JobID      *uuid.UUID
	From       *time.Time
	To         *time.Time
	Pagination pagination.Params
}

func (r *repositoryImpl) Insert(ctx context.Context, entry *models.TimeEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repositoryImpl) Save(ctx context.Context, entry *models.TimeEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *repositoryImpl) FindActive(ctx context.Context, companyID, employeeID uuid.UUID) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND employee_id = ? AND is_active", companyID, employeeID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repositoryImpl) FindOwned(ctx context.Context, companyID, employeeID, entryID uuid.UUID) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ? AND employee_id = ?", entryID, companyID, employeeID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, companyID, employeeID, entryID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ? AND employee_id = ?", entryID, companyID, employeeID).
		Delete(&models.TimeEntry{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listEntriesParams) ([]models.TimeEntry, int64, error) {
	page := params.Pagination.Normalize()
	query := r.db.WithContext(ctx).
		Model(&models.TimeEntry{}).
		Where("company_id = ? AND employee_id = ?", params.CompanyID, params.EmployeeID)
	if params.JobID != nil {
		query = query.Where("job_id = ?", *params.JobID)
	}
	if params.From != nil {
		query = query.Where("date >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("date <= ?", *params.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.TimeEntry
	err := query.
		Order("date DESC, start_ts DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repositoryImpl) ListForScope(ctx context.Context, companyID, jobID, employeeID uuid.UUID) ([]models.TimeEntry, error) {
	var rows []models.TimeEntry
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND job_id = ? AND employee_id = ?", companyID, jobID, employeeID).
		Order("start_ts ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
