package employees

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldhr/fieldhr-backend/pkg/db/models"
)

// Repository exposes employee directory lookups. All methods return
// (nil, nil) when no row matches.
type Repository interface {
	FindByUser(ctx context.Context, companyID, userID uuid.UUID) (*models.Employee, error)
	FindByID(ctx context.Context, companyID, employeeID uuid.UUID) (*models.Employee, error)
	FindByEmail(ctx context.Context, companyID uuid.UUID, email string) (*models.Employee, error)
	ListByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]models.Employee, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an employee repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) FindByUser(ctx context.Context, companyID, userID uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND user_id = ?", companyID, userID).
		First(&employee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, companyID, employeeID uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, employeeID).
		First(&employee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *repositoryImpl) FindByEmail(ctx context.Context, companyID uuid.UUID, email string) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND lower(email) = ?", companyID, strings.ToLower(strings.TrimSpace(email))).
		First(&employee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *repositoryImpl) ListByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]models.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Employee
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id IN ?", companyID, ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
