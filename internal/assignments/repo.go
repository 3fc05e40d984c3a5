package assignments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fieldhr/fieldhr-backend/pkg/db/models"
	"github.com/fieldhr/fieldhr-backend/pkg/enums"
	"github.com/fieldhr/fieldhr-backend/pkg/pagination"
)

// Repository exposes persistence helpers for job assignments and the
// append-only activity log.
type Repository interface {
	Upsert(ctx context.Context, assignment *models.JobAssignment) (bool, error)
	FindByScope(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (*models.JobAssignment, error)
	MarkCanceled(ctx context.Context, companyID, jobID, employeeID uuid.UUID, now time.Time) error
	Delete(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (bool, error)
	SyncState(ctx context.Context, companyID, jobID, employeeID uuid.UUID, state enums.AssignmentState, now time.Time) error
	ListByJob(ctx context.Context, companyID, jobID uuid.UUID) ([]models.JobAssignment, error)
	ListByEmployee(ctx context.Context, companyID, employeeID uuid.UUID) ([]models.JobAssignment, error)
	ListCompany(ctx context.Context, params listCompanyParams) ([]models.JobAssignment, int64, error)
	JobIDsForEmployee(ctx context.Context, companyID, employeeID uuid.UUID) ([]uuid.UUID, error)
	CountForJob(ctx context.Context, companyID, jobID uuid.UUID) (int64, error)
	ExistsForScope(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (bool, error)

	AppendActivity(ctx context.Context, activity *models.AssignmentActivity) error
	HasAssignedActivity(ctx context.Context, companyID, employeeID, jobID uuid.UUID) (bool, error)
	ListActivityByEmployee(ctx context.Context, companyID, employeeID uuid.UUID, page pagination.Params) ([]models.AssignmentActivity, int64, error)
	ListActivityForScope(ctx context.Context, companyID, jobID, employeeID uuid.UUID) ([]models.AssignmentActivity, error)
	LatestActivity(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (*models.AssignmentActivity, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an assignments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listCompanyParams struct {
	CompanyID  uuid.UUID
	State      *enums.AssignmentState
	Pagination pagination.Params
}

// Upsert inserts the assignment if the (company, job, employee) scope is new
// and reports whether a row was created. The unique index makes the insert
// race-safe; a lost race falls through to the updated_at touch.
func (r *repositoryImpl) Upsert(ctx context.Context, assignment *models.JobAssignment) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "job_id"}, {Name: "employee_id"}},
			DoNothing: true,
		}).
		Create(assignment)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.JobAssignment{}).
		Where("company_id = ? AND job_id = ? AND employee_id = ?", assignment.CompanyID, assignment.JobID, assignment.EmployeeID).
		UpdateColumn("updated_at", time.Now().UTC()).Error
	return false, err
}

func (r *repositoryImpl) FindByScope(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (*models.JobAssignment, error) {
	var assignment models.JobAssignment
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND job_id = ? AND employee_id = ?", companyID, jobID, employeeID).
		First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *repositoryImpl) MarkCanceled(ctx context.Context, companyID, jobID, employeeID uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.JobAssignment{}).
		Where("company_id = ? AND job_id = ? AND employee_id = ?", companyID, jobID, employeeID).
		UpdateColumns(map[string]any{
			"state":            enums.AssignmentStateCanceled,
			"state_changed_at": now,
		}).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("company_id = ? AND job_id = ? AND employee_id = ?", companyID, jobID, employeeID).
		Delete(&models.JobAssignment{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) SyncState(ctx context.Context, companyID, jobID, employeeID uuid.UUID, state enums.AssignmentState, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.JobAssignment{}).
		Where("company_id = ? AND job_id = ? AND employee_id = ?", companyID, jobID, employeeID).
		UpdateColumns(map[string]any{
			"state":            state,
			"state_changed_at": now,
			"updated_at":       now,
		}).Error
}

func (r *repositoryImpl) ListByJob(ctx context.Context, companyID, jobID uuid.UUID) ([]models.JobAssignment, error) {
	var rows []models.JobAssignment
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND job_id = ?", companyID, jobID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) ListByEmployee(ctx context.Context, companyID, employeeID uuid.UUID) ([]models.JobAssignment, error) {
	var rows []models.JobAssignment
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND employee_id = ?", companyID, employeeID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) ListCompany(ctx context.Context, params listCompanyParams) ([]models.JobAssignment, int64, error) {
	page := params.Pagination.Normalize()
	query := r.db.WithContext(ctx).
		Model(&models.JobAssignment{}).
		Where("company_id = ?", params.CompanyID)
	if params.State != nil {
		query = query.Where("state = ?", *params.State)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.JobAssignment
	err := query.
		Order("state_changed_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repositoryImpl) JobIDsForEmployee(ctx context.Context, companyID, employeeID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.JobAssignment{}).
		Where("company_id = ? AND employee_id = ?", companyID, employeeID).
		Pluck("job_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repositoryImpl) CountForJob(ctx context.Context, companyID, jobID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.JobAssignment{}).
		Where("company_id = ? AND job_id = ?", companyID, jobID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) ExistsForScope(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.JobAssignment{}).
		Where("company_id = ? AND job_id = ? AND employee_id = ?", companyID, jobID, employeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) AppendActivity(ctx context.Context, activity *models.AssignmentActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *repositoryImpl) HasAssignedActivity(ctx context.Context, companyID, employeeID, jobID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AssignmentActivity{}).
		Where("company_id = ? AND employee_id = ? AND job_id = ? AND action = ?",
			companyID, employeeID, jobID, enums.ActivityActionAssigned).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) ListActivityByEmployee(ctx context.Context, companyID, employeeID uuid.UUID, page pagination.Params) ([]models.AssignmentActivity, int64, error) {
	normalized := page.Normalize()
	query := r.db.WithContext(ctx).
		Model(&models.AssignmentActivity{}).
		Where("company_id = ? AND employee_id = ?", companyID, employeeID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.AssignmentActivity
	err := query.
		Order("created_at DESC").
		Offset(normalized.Offset()).
		Limit(normalized.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repositoryImpl) ListActivityForScope(ctx context.Context, companyID, jobID, employeeID uuid.UUID) ([]models.AssignmentActivity, error) {
	var rows []models.AssignmentActivity
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND job_id = ? AND employee_id = ?", companyID, jobID, employeeID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) LatestActivity(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (*models.AssignmentActivity, error) {
	var activity models.AssignmentActivity
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND job_id = ? AND employee_id = ?", companyID, jobID, employeeID).
		Order("created_at DESC").
		First(&activity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &activity, nil
}
