package jobs

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldhr/fieldhr-backend/internal/employees"
	"github.com/fieldhr/fieldhr-backend/pkg/db/models"
	"github.com/fieldhr/fieldhr-backend/pkg/enums"
	pkgerrors "github.com/fieldhr/fieldhr-backend/pkg/errors"
)

// AssignedJobsSource lists the job ids an employee is assigned to. Implemented
// by the assignments repository.
type AssignedJobsSource interface {
	JobIDsForEmployee(ctx context.Context, companyID, employeeID uuid.UUID) ([]uuid.UUID, error)
}

// Service owns job and rate management plus effective-rate resolution.
type Service interface {
	Create(ctx context.Context, companyID uuid.UUID, input CreateJobInput) (*JobView, error)
	Update(ctx context.Context, companyID, jobID uuid.UUID, input UpdateJobInput) (*JobView, error)
	List(ctx context.Context, input ListJobsInput) ([]JobView, error)
	SetRate(ctx context.Context, companyID, jobID, employeeID uuid.UUID, rate decimal.Decimal) (*RateView, error)
	ListRates(ctx context.Context, companyID, jobID uuid.UUID) ([]RateView, error)
	Resolve(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (decimal.Decimal, error)
}

// CreateJobInput carries a new job definition.
type CreateJobInput struct {
	Name        string
	ClientName  *string
	DefaultRate decimal.Decimal
	Active      bool
}

// UpdateJobInput carries a partial job update; nil fields are untouched.
type UpdateJobInput struct {
	Name        *string
	ClientName  *string
	DefaultRate *decimal.Decimal
	Active      *bool
}

// ListJobsInput configures the job listing for the calling actor.
type ListJobsInput struct {
	CompanyID    uuid.UUID
	UserID       uuid.UUID
	Role         enums.MemberRole
	Active       *bool
	AssignedToMe bool
}

// JobView is the externally visible job shape.
type JobView struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	ClientName  *string         `json:"client_name,omitempty"`
	DefaultRate decimal.Decimal `json:"default_rate"`
	Active      bool            `json:"active"`
}

// RateView is the externally visible job rate shape.
type RateView struct {
	ID         uuid.UUID       `json:"id"`
	JobID      uuid.UUID       `json:"job_id"`
	EmployeeID uuid.UUID       `json:"employee_id"`
	Rate       decimal.Decimal `json:"rate"`
}

type service struct {
	repo      Repository
	assigned  AssignedJobsSource
	directory employees.Directory
}

// ServiceParams wires job service dependencies.
type ServiceParams struct {
	Repo      Repository
	Assigned  AssignedJobsSource
	Directory employees.Directory
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "jobs repository required")
	}
	if params.Directory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "employee directory required")
	}
	return &service{repo: params.Repo, assigned: params.Assigned, directory: params.Directory}, nil
}

func (s *service) Create(ctx context.Context, companyID uuid.UUID, input CreateJobInput) (*JobView, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "job name is required")
	}
	if input.DefaultRate.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "default_rate must not be negative")
	}

	taken, err := s.repo.NameTaken(ctx, companyID, name, uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check job name")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "job with this name already exists")
	}

	job := &models.Job{
		CompanyID:   companyID,
		Name:        name,
		ClientName:  input.ClientName,
		DefaultRate: input.DefaultRate,
		Active:      input.Active,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create job")
	}
	view := jobView(job)
	return &view, nil
}

func (s *service) Update(ctx context.Context, companyID, jobID uuid.UUID, input UpdateJobInput) (*JobView, error) {
	fields := map[string]any{"updated_at": time.Now().UTC()}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "job name is required")
		}
		taken, err := s.repo.NameTaken(ctx, companyID, name, jobID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check job name")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "job with this name already exists")
		}
		fields["name"] = name
	}
	if input.ClientName != nil {
		fields["client_name"] = *input.ClientName
	}
	if input.DefaultRate != nil {
		if input.DefaultRate.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "default_rate must not be negative")
		}
		fields["default_rate"] = *input.DefaultRate
	}
	if input.Active != nil {
		fields["active"] = *input.Active
	}

	matched, err := s.repo.Update(ctx, companyID, jobID, fields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update job")
	}
	if !matched {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "job not found")
	}

	job, err := s.repo.FindByID(ctx, companyID, jobID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload job")
	}
	if job == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "job not found")
	}
	view := jobView(job)
	return &view, nil
}

func (s *service) List(ctx context.Context, input ListJobsInput) ([]JobView, error) {
	params := listJobsParams{CompanyID: input.CompanyID, Active: input.Active}

	if input.AssignedToMe && !input.Role.IsAdminLike() {
		if s.assigned == nil {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "assignment source not configured")
		}
		employeeID, err := s.directory.EmployeeIDForUser(ctx, input.CompanyID, input.UserID)
		if err != nil {
			return nil, err
		}
		ids, err := s.assigned.JobIDsForEmployee(ctx, input.CompanyID, employeeID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assigned jobs")
		}
		if len(ids) == 0 {
			return []JobView{}, nil
		}
		params.IDs = ids
	}

	jobs, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list jobs")
	}
	views := make([]JobView, 0, len(jobs))
	for i := range jobs {
		views = append(views, jobView(&jobs[i]))
	}
	return views, nil
}

func (s *service) SetRate(ctx context.Context, companyID, jobID, employeeID uuid.UUID, rate decimal.Decimal) (*RateView, error) {
	if employeeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee_id is required")
	}
	if rate.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate must not be negative")
	}

	job, err := s.repo.FindByID(ctx, companyID, jobID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup job")
	}
	if job == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "job not found")
	}

	row := &models.JobRate{
		CompanyID:  companyID,
		JobID:      jobID,
		EmployeeID: employeeID,
		Rate:       rate,
	}
	if err := s.repo.UpsertRate(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert job rate")
	}

	stored, err := s.repo.FindRate(ctx, companyID, jobID, employeeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload job rate")
	}
	if stored == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "job rate missing after upsert")
	}
	return &RateView{ID: stored.ID, JobID: jobID, EmployeeID: employeeID, Rate: stored.Rate}, nil
}

func (s *service) ListRates(ctx context.Context, companyID, jobID uuid.UUID) ([]RateView, error) {
	rates, err := s.repo.ListRates(ctx, companyID, jobID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list job rates")
	}
	views := make([]RateView, 0, len(rates))
	for _, r := range rates {
		views = append(views, RateView{ID: r.ID, JobID: r.JobID, EmployeeID: r.EmployeeID, Rate: r.Rate})
	}
	return views, nil
}

// Resolve returns the effective billing rate for (job, employee): the
// per-employee override when present, else the job's default rate, else
// zero. A missing job degrades to zero rather than failing the caller.
func (s *service) Resolve(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (decimal.Decimal, error) {
	override, err := s.repo.FindRate(ctx, companyID, jobID, employeeID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup job rate")
	}
	if override != nil {
		return override.Rate, nil
	}

	job, err := s.repo.FindByID(ctx, companyID, jobID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup job")
	}
	if job == nil {
		return decimal.Zero, nil
	}
	return job.DefaultRate, nil
}

func jobView(job *models.Job) JobView {
	return JobView{
		ID:          job.ID,
		Name:        job.Name,
		ClientName:  job.ClientName,
		DefaultRate: job.DefaultRate,
		Active:      job.Active,
	}
}
