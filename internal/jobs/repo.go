package jobs

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fieldhr/fieldhr-backend/pkg/db/models"
)

// Repository exposes persistence helpers for jobs and job rates.
type Repository interface {
	Create(ctx context.Context, job *models.Job) error
	Update(ctx context.Context, companyID, jobID uuid.UUID, fields map[string]any) (bool, error)
	FindByID(ctx context.Context, companyID, jobID uuid.UUID) (*models.Job, error)
	FindByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]models.Job, error)
	List(ctx context.Context, params listJobsParams) ([]models.Job, error)
	NameTaken(ctx context.Context, companyID uuid.UUID, name string, excludeID uuid.UUID) (bool, error)

	UpsertRate(ctx context.Context, rate *models.JobRate) error
	FindRate(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (*models.JobRate, error)
	ListRates(ctx context.Context, companyID, jobID uuid.UUID) ([]models.JobRate, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a jobs repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listJobsParams struct {
	CompanyID uuid.UUID
	Active    *bool
	IDs       []uuid.UUID
}

func (r *repositoryImpl) Create(ctx context.Context, job *models.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *repositoryImpl) Update(ctx context.Context, companyID, jobID uuid.UUID, fields map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("id = ? AND company_id = ?", jobID, companyID).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, companyID, jobID uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", jobID, companyID).
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *repositoryImpl) FindByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]models.Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var jobs []models.Job
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id IN ?", companyID, ids).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listJobsParams) ([]models.Job, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("company_id = ?", params.CompanyID)
	if params.Active != nil {
		query = query.Where("active = ?", *params.Active)
	}
	if params.IDs != nil {
		if len(params.IDs) == 0 {
			return nil, nil
		}
		query = query.Where("id IN ?", params.IDs)
	}

	var jobs []models.Job
	if err := query.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repositoryImpl) NameTaken(ctx context.Context, companyID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("company_id = ? AND name = ?", companyID, name)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) UpsertRate(ctx context.Context, rate *models.JobRate) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "job_id"}, {Name: "employee_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
		}).
		Create(rate).Error
}

func (r *repositoryImpl) FindRate(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (*models.JobRate, error) {
	var rate models.JobRate
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND job_id = ? AND employee_id = ?", companyID, jobID, employeeID).
		First(&rate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *repositoryImpl) ListRates(ctx context.Context, companyID, jobID uuid.UUID) ([]models.JobRate, error) {
	var rates []models.JobRate
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND job_id = ?", companyID, jobID).
		Order("updated_at DESC").
		Find(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}
