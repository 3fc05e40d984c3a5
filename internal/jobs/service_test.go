package jobs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldhr/fieldhr-backend/pkg/db/models"
	"github.com/fieldhr/fieldhr-backend/pkg/enums"
	pkgerrors "github.com/fieldhr/fieldhr-backend/pkg/errors"
)

type fakeRepository struct {
	createFn    func(ctx context.Context, job *models.Job) error
	findByIDFn  func(ctx context.Context, companyID, jobID uuid.UUID) (*models.Job, error)
	listFn      func(ctx context.Context, params listJobsParams) ([]models.Job, error)
	nameTakenFn func(ctx context.Context, companyID uuid.UUID, name string, excludeID uuid.UUID) (bool, error)
	findRateFn  func(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (*models.JobRate, error)
}

func (f *fakeRepository) Create(ctx context.Context, job *models.Job) error {
	if f.createFn != nil {
		return f.createFn(ctx, job)
	}
	job.ID = uuid.New()
	return nil
}

func (f *fakeRepository) Update(ctx context.Context, companyID, jobID uuid.UUID, fields map[string]any) (bool, error) {
	return true, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, companyID, jobID uuid.UUID) (*models.Job, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, companyID, jobID)
	}
	return nil, nil
}

func (f *fakeRepository) FindByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]models.Job, error) {
	return nil, nil
}

func (f *fakeRepository) List(ctx context.Context, params listJobsParams) ([]models.Job, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil
}

func (f *fakeRepository) NameTaken(ctx context.Context, companyID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	if f.nameTakenFn != nil {
		return f.nameTakenFn(ctx, companyID, name, excludeID)
	}
	return false, nil
}

func (f *fakeRepository) UpsertRate(ctx context.Context, rate *models.JobRate) error { return nil }

func (f *fakeRepository) FindRate(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (*models.JobRate, error) {
	if f.findRateFn != nil {
		return f.findRateFn(ctx, companyID, jobID, employeeID)
	}
	return nil, nil
}

func (f *fakeRepository) ListRates(ctx context.Context, companyID, jobID uuid.UUID) ([]models.JobRate, error) {
	return nil, nil
}

type fakeDirectory struct {
	employeeID uuid.UUID
}

func (f *fakeDirectory) EmployeeIDForUser(ctx context.Context, companyID, userID uuid.UUID) (uuid.UUID, error) {
	return f.employeeID, nil
}

type fakeAssignedSource struct {
	ids []uuid.UUID
}

func (f *fakeAssignedSource) JobIDsForEmployee(ctx context.Context, companyID, employeeID uuid.UUID) ([]uuid.UUID, error) {
	return f.ids, nil
}

func newTestService(repo Repository, assigned AssignedJobsSource) Service {
	svc, _ := NewService(ServiceParams{Repo: repo, Assigned: assigned, Directory: &fakeDirectory{employeeID: uuid.New()}})
	return svc
}

func TestCreateJobRejectsDuplicateName(t *testing.T) {
	repo := &fakeRepository{
		nameTakenFn: func(ctx context.Context, companyID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
			return true, nil
		},
	}
	svc := newTestService(repo, nil)

	_, err := svc.Create(context.Background(), uuid.New(), CreateJobInput{Name: "Demolition", Active: true})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestCreateJobRejectsNegativeRate(t *testing.T) {
	svc := newTestService(&fakeRepository{}, nil)
	_, err := svc.Create(context.Background(), uuid.New(), CreateJobInput{
		Name:        "Demolition",
		DefaultRate: decimal.NewFromInt(-5),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestListAssignedToMeWithNoAssignmentsIsEmpty(t *testing.T) {
	svc := newTestService(&fakeRepository{
		listFn: func(ctx context.Context, params listJobsParams) ([]models.Job, error) {
			t.Fatal("repo list should not be called when no jobs are assigned")
			return nil, nil
		},
	}, &fakeAssignedSource{})

	views, err := svc.List(context.Background(), ListJobsInput{
		CompanyID:    uuid.New(),
		UserID:       uuid.New(),
		Role:         enums.MemberRoleEmployee,
		AssignedToMe: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected empty result, got %d", len(views))
	}
}

func TestResolvePrefersOverrideRate(t *testing.T) {
	override := decimal.NewFromFloat(12.5)
	repo := &fakeRepository{
		findRateFn: func(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (*models.JobRate, error) {
			return &models.JobRate{Rate: override}, nil
		},
		findByIDFn: func(ctx context.Context, companyID, jobID uuid.UUID) (*models.Job, error) {
			t.Fatal("job lookup should be skipped when an override exists")
			return nil, nil
		},
	}
	svc := newTestService(repo, nil)

	rate, err := svc.Resolve(context.Background(), uuid.New(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !rate.Equal(override) {
		t.Fatalf("expected %s got %s", override, rate)
	}
}

func TestResolveFallsBackToDefaultRate(t *testing.T) {
	fallback := decimal.NewFromInt(10)
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, companyID, jobID uuid.UUID) (*models.Job, error) {
			return &models.Job{DefaultRate: fallback}, nil
		},
	}
	svc := newTestService(repo, nil)

	rate, err := svc.Resolve(context.Background(), uuid.New(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !rate.Equal(fallback) {
		t.Fatalf("expected %s got %s", fallback, rate)
	}
}

func TestResolveMissingJobDegradesToZero(t *testing.T) {
	svc := newTestService(&fakeRepository{}, nil)
	rate, err := svc.Resolve(context.Background(), uuid.New(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !rate.IsZero() {
		t.Fatalf("expected zero rate, got %s", rate)
	}
}
