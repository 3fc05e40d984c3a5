package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldhr/fieldhr-backend/internal/employees"
	"github.com/fieldhr/fieldhr-backend/pkg/db/models"
	pkgerrors "github.com/fieldhr/fieldhr-backend/pkg/errors"
	"github.com/fieldhr/fieldhr-backend/pkg/money"
)

// JobSource batch-loads jobs for report headers. Implemented by the jobs
// repository.
type JobSource interface {
	FindByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]models.Job, error)
}

// RateSource resolves the effective hourly rate for an employee on a job.
// Implemented by the jobs service.
type RateSource interface {
	Resolve(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (decimal.Decimal, error)
}

// EmployeeLine is one employee's share of a job in the monthly report.
// Amount is rounded per line; job totals sum the rounded lines.
type EmployeeLine struct {
	EmployeeID   uuid.UUID       `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	Minutes      int             `json:"minutes"`
	Rate         decimal.Decimal `json:"rate"`
	Amount       decimal.Decimal `json:"amount"`
}

// JobReport aggregates all employee lines of one job.
type JobReport struct {
	JobID      uuid.UUID       `json:"job_id"`
	JobName    string          `json:"job_name"`
	ClientName *string         `json:"client_name,omitempty"`
	Minutes    int             `json:"minutes"`
	Hours      decimal.Decimal `json:"hours"`
	Amount     decimal.Decimal `json:"amount"`
	ByEmployee []EmployeeLine  `json:"by_employee"`
}

// ReportTotals rolls the whole month up.
type ReportTotals struct {
	Minutes int             `json:"minutes"`
	Hours   decimal.Decimal `json:"hours"`
	Amount  decimal.Decimal `json:"amount"`
}

// Report is the monthly billing report.
type Report struct {
	Month  string       `json:"month"`
	Jobs   []JobReport  `json:"jobs"`
	Totals ReportTotals `json:"totals"`
}

// Service produces monthly billing reports.
type Service interface {
	Report(ctx context.Context, companyID uuid.UUID, month string, jobID *uuid.UUID) (*Report, error)
}

type service struct {
	repo      Repository
	jobs      JobSource
	employees employees.Repository
	rates     RateSource
}

// ServiceParams wires billing service dependencies.
type ServiceParams struct {
	Repo      Repository
	Jobs      JobSource
	Employees employees.Repository
	Rates     RateSource
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "billing repository required")
	}
	if params.Jobs == nil || params.Employees == nil || params.Rates == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "job, employee and rate sources required")
	}
	return &service{
		repo:      params.Repo,
		jobs:      params.Jobs,
		employees: params.Employees,
		rates:     params.Rates,
	}, nil
}

func (s *service) Report(ctx context.Context, companyID uuid.UUID, month string, jobID *uuid.UUID) (*Report, error) {
	from, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid month format, expected YYYY-MM")
	}
	from = from.UTC()
	to := from.AddDate(0, 1, 0)

	rows, err := s.repo.SumMinutes(ctx, companyID, from, to, jobID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate minutes")
	}

	report := &Report{
		Month:  month,
		Jobs:   []JobReport{},
		Totals: ReportTotals{Amount: decimal.Zero, Hours: decimal.Zero},
	}
	if len(rows) == 0 {
		return report, nil
	}

	jobsByID, employeesByID, err := s.loadHeaders(ctx, companyID, rows)
	if err != nil {
		return nil, err
	}

	index := map[uuid.UUID]int{}
	for _, row := range rows {
		rate, err := s.rates.Resolve(ctx, companyID, row.JobID, row.EmployeeID)
		if err != nil {
			return nil, err
		}
		minutes := int(row.Minutes)
		line := EmployeeLine{
			EmployeeID: row.EmployeeID,
			Minutes:    minutes,
			Rate:       rate,
			Amount:     money.AmountFor(minutes, rate),
		}
		if employee, ok := employeesByID[row.EmployeeID]; ok {
			line.EmployeeName = employee.FullName()
		}

		pos, ok := index[row.JobID]
		if !ok {
			jobReport := JobReport{
				JobID:      row.JobID,
				Amount:     decimal.Zero,
				ByEmployee: []EmployeeLine{},
			}
			if job, found := jobsByID[row.JobID]; found {
				jobReport.JobName = job.Name
				jobReport.ClientName = job.ClientName
			}
			report.Jobs = append(report.Jobs, jobReport)
			pos = len(report.Jobs) - 1
			index[row.JobID] = pos
		}

		jobReport := &report.Jobs[pos]
		jobReport.ByEmployee = append(jobReport.ByEmployee, line)
		jobReport.Minutes += minutes
		jobReport.Amount = jobReport.Amount.Add(line.Amount)

		report.Totals.Minutes += minutes
		report.Totals.Amount = report.Totals.Amount.Add(line.Amount)
	}

	for i := range report.Jobs {
		report.Jobs[i].Hours = money.HoursFor(report.Jobs[i].Minutes)
	}
	report.Totals.Hours = money.HoursFor(report.Totals.Minutes)

	return report, nil
}

func (s *service) loadHeaders(ctx context.Context, companyID uuid.UUID, rows []scopeMinutes) (map[uuid.UUID]models.Job, map[uuid.UUID]models.Employee, error) {
	jobIDs := make([]uuid.UUID, 0, len(rows))
	employeeIDs := make([]uuid.UUID, 0, len(rows))
	seenJobs := map[uuid.UUID]bool{}
	seenEmployees := map[uuid.UUID]bool{}
	for _, row := range rows {
		if !seenJobs[row.JobID] {
			seenJobs[row.JobID] = true
			jobIDs = append(jobIDs, row.JobID)
		}
		if !seenEmployees[row.EmployeeID] {
			seenEmployees[row.EmployeeID] = true
			employeeIDs = append(employeeIDs, row.EmployeeID)
		}
	}

	jobs, err := s.jobs.FindByIDs(ctx, companyID, jobIDs)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list jobs")
	}
	jobsByID := make(map[uuid.UUID]models.Job, len(jobs))
	for _, job := range jobs {
		jobsByID[job.ID] = job
	}

	list, err := s.employees.ListByIDs(ctx, companyID, employeeIDs)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list employees")
	}
	employeesByID := make(map[uuid.UUID]models.Employee, len(list))
	for _, employee := range list {
		employeesByID[employee.ID] = employee
	}

	return jobsByID, employeesByID, nil
}
