package employees

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/fieldhr/fieldhr-backend/pkg/db/models"
	pkgerrors "github.com/fieldhr/fieldhr-backend/pkg/errors"
)

type fakeRepository struct {
	findByUserFn func(ctx context.Context, companyID, userID uuid.UUID) (*models.Employee, error)
}

func (f *fakeRepository) FindByUser(ctx context.Context, companyID, userID uuid.UUID) (*models.Employee, error) {
	if f.findByUserFn != nil {
		return f.findByUserFn(ctx, companyID, userID)
	}
	return nil, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, companyID, employeeID uuid.UUID) (*models.Employee, error) {
	return nil, nil
}

func (f *fakeRepository) FindByEmail(ctx context.Context, companyID uuid.UUID, email string) (*models.Employee, error) {
	return nil, nil
}

func (f *fakeRepository) ListByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]models.Employee, error) {
	return nil, nil
}

func TestDirectoryResolvesLinkedEmployee(t *testing.T) {
	employeeID := uuid.New()
	dir, err := NewDirectory(&fakeRepository{
		findByUserFn: func(ctx context.Context, companyID, userID uuid.UUID) (*models.Employee, error) {
			return &models.Employee{ID: employeeID}, nil
		},
	})
	if err != nil {
		t.Fatalf("new directory: %v", err)
	}

	got, err := dir.EmployeeIDForUser(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != employeeID {
		t.Fatalf("expected %s got %s", employeeID, got)
	}
}

func TestDirectoryUnlinkedUserIsNotFound(t *testing.T) {
	dir, _ := NewDirectory(&fakeRepository{})
	_, err := dir.EmployeeIDForUser(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestDirectoryWrapsRepositoryError(t *testing.T) {
	dir, _ := NewDirectory(&fakeRepository{
		findByUserFn: func(ctx context.Context, companyID, userID uuid.UUID) (*models.Employee, error) {
			return nil, errors.New("db down")
		},
	})
	_, err := dir.EmployeeIDForUser(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
}
