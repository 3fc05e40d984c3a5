package assignments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldhr/fieldhr-backend/internal/employees"
	"github.com/fieldhr/fieldhr-backend/internal/notifications"
	"github.com/fieldhr/fieldhr-backend/internal/users"
	"github.com/fieldhr/fieldhr-backend/pkg/db/models"
	"github.com/fieldhr/fieldhr-backend/pkg/enums"
	pkgerrors "github.com/fieldhr/fieldhr-backend/pkg/errors"
	"github.com/fieldhr/fieldhr-backend/pkg/logger"
	"github.com/fieldhr/fieldhr-backend/pkg/money"
	"github.com/fieldhr/fieldhr-backend/pkg/pagination"
)

// JobSource exposes the job lookups assignments need. Implemented by the
// jobs repository.
type JobSource interface {
	FindByID(ctx context.Context, companyID, jobID uuid.UUID) (*models.Job, error)
	FindByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]models.Job, error)
}

// EntrySource lists the time entries recorded against an assignment scope.
// Implemented by the timeclock repository.
type EntrySource interface {
	ListForScope(ctx context.Context, companyID, jobID, employeeID uuid.UUID) ([]models.TimeEntry, error)
}

// RateSource resolves the effective hourly rate for an employee on a job.
// Implemented by the jobs service.
type RateSource interface {
	Resolve(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (decimal.Decimal, error)
}

// Service owns assignment lifecycle, the activity timeline and the
// per-assignment detail rollup.
type Service interface {
	Assign(ctx context.Context, input AssignInput) (*AssignResult, error)
	Unassign(ctx context.Context, input UnassignInput) (*UnassignResult, error)
	ListForJob(ctx context.Context, companyID, jobID uuid.UUID) ([]AssignmentView, error)
	MyAssignments(ctx context.Context, companyID, userID uuid.UUID) ([]MyAssignmentView, error)
	CompanyAssignments(ctx context.Context, input CompanyListInput) (*pagination.Page[CompanyAssignmentView], error)
	ActivityTimeline(ctx context.Context, input TimelineInput) (*pagination.Page[ActivityView], error)
	Details(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (*DetailsView, error)
	Backfill(ctx context.Context, companyID, employeeID uuid.UUID) (int, error)
	RecordTransition(ctx context.Context, record TransitionRecord) error
}

// AssignInput identifies the employee either by id or by email.
type AssignInput struct {
	CompanyID     uuid.UUID
	JobID         uuid.UUID
	ActorUserID   uuid.UUID
	EmployeeID    *uuid.UUID
	EmployeeEmail *string
}

// AssignResult reports the assignment and whether this call created it.
type AssignResult struct {
	Assignment AssignmentView `json:"assignment"`
	Created    bool           `json:"created"`
}

// UnassignInput identifies the assignment scope to remove.
type UnassignInput struct {
	CompanyID   uuid.UUID
	JobID       uuid.UUID
	EmployeeID  uuid.UUID
	ActorUserID uuid.UUID
}

// UnassignResult reports whether an assignment row was actually removed.
type UnassignResult struct {
	Deleted bool `json:"deleted"`
}

// AssignmentView is the externally visible assignment shape.
type AssignmentView struct {
	ID             uuid.UUID             `json:"id"`
	JobID          uuid.UUID             `json:"job_id"`
	EmployeeID     uuid.UUID             `json:"employee_id"`
	State          enums.AssignmentState `json:"state"`
	StateChangedAt time.Time             `json:"state_changed_at"`
}

// MyAssignmentView enriches an assignment with its job for the calling
// employee's own listing.
type MyAssignmentView struct {
	JobID          uuid.UUID             `json:"job_id"`
	JobName        string                `json:"job_name"`
	ClientName     *string               `json:"client_name,omitempty"`
	State          enums.AssignmentState `json:"state"`
	StateChangedAt time.Time             `json:"state_changed_at"`
}

// CompanyAssignmentView is one row of the company-wide assignment board.
type CompanyAssignmentView struct {
	ID             uuid.UUID             `json:"id"`
	JobID          uuid.UUID             `json:"job_id"`
	JobName        string                `json:"job_name"`
	EmployeeID     uuid.UUID             `json:"employee_id"`
	EmployeeName   string                `json:"employee_name"`
	State          enums.AssignmentState `json:"state"`
	StateChangedAt time.Time             `json:"state_changed_at"`
	LastActivity   *string               `json:"last_activity,omitempty"`
	LastActivityAt *time.Time            `json:"last_activity_at,omitempty"`
}

// CompanyListInput configures the company-wide assignment listing.
type CompanyListInput struct {
	CompanyID  uuid.UUID
	State      *enums.AssignmentState
	Pagination pagination.Params
}

// TimelineInput configures the activity timeline for the calling actor.
// EmployeeID may stay nil for "my own timeline"; only admin-like roles may
// name another employee.
type TimelineInput struct {
	CompanyID  uuid.UUID
	UserID     uuid.UUID
	Role       enums.MemberRole
	EmployeeID *uuid.UUID
	Pagination pagination.Params
}

// ActivityView is one audit event in a timeline response.
type ActivityView struct {
	ID        uuid.UUID            `json:"id"`
	JobID     uuid.UUID            `json:"job_id"`
	JobName   *string              `json:"job_name,omitempty"`
	Action    enums.ActivityAction `json:"action"`
	Note      *string              `json:"note,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// TimelineEvent is an audit event in the details view, with the acting
// user's display name resolved.
type TimelineEvent struct {
	ID        uuid.UUID            `json:"id"`
	Action    enums.ActivityAction `json:"action"`
	ActorName string               `json:"actor_name"`
	Note      *string              `json:"note,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// DetailsEntry is one time entry line in the details view.
type DetailsEntry struct {
	ID              uuid.UUID             `json:"id"`
	Date            time.Time             `json:"date"`
	StartTS         time.Time             `json:"start_ts"`
	EndTS           *time.Time            `json:"end_ts,omitempty"`
	State           enums.TimeEntryState  `json:"state"`
	Source          enums.TimeEntrySource `json:"source"`
	DurationMinutes int                   `json:"duration_minutes"`
	Amount          decimal.Decimal       `json:"amount"`
}

// DetailsTotals aggregates the entry lines of a details view.
type DetailsTotals struct {
	Minutes int             `json:"minutes"`
	Hours   decimal.Decimal `json:"hours"`
	Rate    decimal.Decimal `json:"rate"`
	Amount  decimal.Decimal `json:"amount"`
}

// DetailsJob is the job header of a details view.
type DetailsJob struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ClientName *string   `json:"client_name,omitempty"`
	Active     bool      `json:"active"`
}

// DetailsEmployee is the employee header of a details view.
type DetailsEmployee struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// DetailsView is the full drill-down for one (job, employee) scope.
type DetailsView struct {
	Job        DetailsJob      `json:"job"`
	Employee   DetailsEmployee `json:"employee"`
	Assignment *AssignmentView `json:"assignment,omitempty"`
	Timeline   []TimelineEvent `json:"timeline"`
	Entries    []DetailsEntry  `json:"entries"`
	Totals     DetailsTotals   `json:"totals"`
}

// TransitionRecord describes a timeclock transition to mirror into the
// assignment state and activity log.
type TransitionRecord struct {
	CompanyID   uuid.UUID
	JobID       uuid.UUID
	EmployeeID  uuid.UUID
	ActorUserID uuid.UUID
	State       enums.AssignmentState
	Action      enums.ActivityAction
	Note        *string
	At          time.Time
}

// systemActorName labels synthesized events with no acting user.
const systemActorName = "system"

type service struct {
	repo      Repository
	jobs      JobSource
	employees employees.Repository
	directory employees.Directory
	users     users.Repository
	notifier  notifications.Service
	entries   EntrySource
	rates     RateSource
	logg      *logger.Logger
}

// ServiceParams wires assignment service dependencies.
type ServiceParams struct {
	Repo      Repository
	Jobs      JobSource
	Employees employees.Repository
	Directory employees.Directory
	Users     users.Repository
	Notifier  notifications.Service
	Entries   EntrySource
	Rates     RateSource
	Logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "assignments repository required")
	}
	if params.Jobs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "job source required")
	}
	if params.Employees == nil || params.Directory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "employee repository and directory required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user repository required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification service required")
	}
	if params.Entries == nil || params.Rates == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "entry and rate sources required")
	}
	if params.Logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:      params.Repo,
		jobs:      params.Jobs,
		employees: params.Employees,
		directory: params.Directory,
		users:     params.Users,
		notifier:  params.Notifier,
		entries:   params.Entries,
		rates:     params.Rates,
		logg:      params.Logg,
	}, nil
}

func (s *service) Assign(ctx context.Context, input AssignInput) (*AssignResult, error) {
	job, err := s.jobs.FindByID(ctx, input.CompanyID, input.JobID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup job")
	}
	if job == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "job not found")
	}

	employee, err := s.resolveEmployee(ctx, input)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	assignment := &models.JobAssignment{
		CompanyID:      input.CompanyID,
		JobID:          input.JobID,
		EmployeeID:     employee.ID,
		State:          enums.AssignmentStateAssigned,
		StateChangedAt: now,
	}
	created, err := s.repo.Upsert(ctx, assignment)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert assignment")
	}
	if !created {
		existing, err := s.repo.FindByScope(ctx, input.CompanyID, input.JobID, employee.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload assignment")
		}
		if existing != nil {
			assignment = existing
		}
	}

	if created {
		s.emitAssignmentEvent(ctx, assignmentEvent{
			companyID:  input.CompanyID,
			jobID:      input.JobID,
			jobName:    job.Name,
			employee:   employee,
			action:     enums.ActivityActionAssigned,
			notifyWith: "assigned",
			actor:      input.ActorUserID,
		})
	}

	view := newAssignmentView(*assignment)
	return &AssignResult{Assignment: view, Created: created}, nil
}

func (s *service) resolveEmployee(ctx context.Context, input AssignInput) (*models.Employee, error) {
	switch {
	case input.EmployeeID != nil && *input.EmployeeID != uuid.Nil:
		employee, err := s.employees.FindByID(ctx, input.CompanyID, *input.EmployeeID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup employee")
		}
		if employee == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
		}
		return employee, nil
	case input.EmployeeEmail != nil && *input.EmployeeEmail != "":
		employee, err := s.employees.FindByEmail(ctx, input.CompanyID, *input.EmployeeEmail)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup employee by email")
		}
		if employee == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee with this email not found")
		}
		return employee, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee_id or employee_email is required")
	}
}

func (s *service) Unassign(ctx context.Context, input UnassignInput) (*UnassignResult, error) {
	employee, err := s.employees.FindByID(ctx, input.CompanyID, input.EmployeeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup employee")
	}
	if employee == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
	}

	now := time.Now().UTC()
	if err := s.repo.MarkCanceled(ctx, input.CompanyID, input.JobID, input.EmployeeID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel assignment")
	}
	deleted, err := s.repo.Delete(ctx, input.CompanyID, input.JobID, input.EmployeeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete assignment")
	}

	if deleted {
		jobName := ""
		if job, err := s.jobs.FindByID(ctx, input.CompanyID, input.JobID); err == nil && job != nil {
			jobName = job.Name
		}
		s.emitAssignmentEvent(ctx, assignmentEvent{
			companyID:  input.CompanyID,
			jobID:      input.JobID,
			jobName:    jobName,
			employee:   employee,
			action:     enums.ActivityActionCanceled,
			notifyWith: "unassigned",
			actor:      input.ActorUserID,
		})
	}

	return &UnassignResult{Deleted: deleted}, nil
}

// assignmentEvent carries the best-effort side effects of an assignment
// change: one activity row plus an in-app notification when the employee has
// a linked user account. Failures are logged and never fail the caller.
type assignmentEvent struct {
	companyID  uuid.UUID
	jobID      uuid.UUID
	jobName    string
	employee   *models.Employee
	action     enums.ActivityAction
	notifyWith string
	actor      uuid.UUID
}

func (s *service) emitAssignmentEvent(ctx context.Context, event assignmentEvent) {
	activity := &models.AssignmentActivity{
		CompanyID:  event.companyID,
		EmployeeID: event.employee.ID,
		JobID:      event.jobID,
		Action:     event.action,
	}
	if event.jobName != "" {
		activity.JobName = &event.jobName
	}
	if event.actor != uuid.Nil {
		actor := event.actor
		activity.ActorUserID = &actor
	}
	if err := s.repo.AppendActivity(ctx, activity); err != nil {
		s.warn(ctx, "assignment activity append failed", err)
	}

	if event.employee.UserID == nil {
		return
	}
	payload := map[string]any{
		"action":   event.notifyWith,
		"job_id":   event.jobID.String(),
		"job_name": event.jobName,
	}
	if err := s.notifier.Notify(ctx, *event.employee.UserID, enums.NotificationTypeJobAssignment, payload); err != nil {
		s.warn(ctx, "assignment notification failed", err)
	}
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}

func (s *service) ListForJob(ctx context.Context, companyID, jobID uuid.UUID) ([]AssignmentView, error) {
	rows, err := s.repo.ListByJob(ctx, companyID, jobID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}
	views := make([]AssignmentView, 0, len(rows))
	for _, row := range rows {
		views = append(views, newAssignmentView(row))
	}
	return views, nil
}

func (s *service) MyAssignments(ctx context.Context, companyID, userID uuid.UUID) ([]MyAssignmentView, error) {
	employeeID, err := s.directory.EmployeeIDForUser(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByEmployee(ctx, companyID, employeeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}

	jobsByID, err := s.jobsByID(ctx, companyID, assignmentJobIDs(rows))
	if err != nil {
		return nil, err
	}

	views := make([]MyAssignmentView, 0, len(rows))
	for _, row := range rows {
		view := MyAssignmentView{
			JobID:          row.JobID,
			State:          row.State,
			StateChangedAt: row.StateChangedAt,
		}
		if job, ok := jobsByID[row.JobID]; ok {
			view.JobName = job.Name
			view.ClientName = job.ClientName
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *service) CompanyAssignments(ctx context.Context, input CompanyListInput) (*pagination.Page[CompanyAssignmentView], error) {
	if input.State != nil && !input.State.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid assignment state")
	}

	rows, total, err := s.repo.ListCompany(ctx, listCompanyParams{
		CompanyID:  input.CompanyID,
		State:      input.State,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list company assignments")
	}

	jobsByID, err := s.jobsByID(ctx, input.CompanyID, assignmentJobIDs(rows))
	if err != nil {
		return nil, err
	}
	employeesByID, err := s.employeesByID(ctx, input.CompanyID, rows)
	if err != nil {
		return nil, err
	}

	views := make([]CompanyAssignmentView, 0, len(rows))
	for _, row := range rows {
		view := CompanyAssignmentView{
			ID:             row.ID,
			JobID:          row.JobID,
			EmployeeID:     row.EmployeeID,
			State:          row.State,
			StateChangedAt: row.StateChangedAt,
		}
		if job, ok := jobsByID[row.JobID]; ok {
			view.JobName = job.Name
		}
		if employee, ok := employeesByID[row.EmployeeID]; ok {
			view.EmployeeName = employee.FullName()
		}
		latest, err := s.repo.LatestActivity(ctx, input.CompanyID, row.JobID, row.EmployeeID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "latest activity")
		}
		if latest != nil {
			action := latest.Action.String()
			at := latest.CreatedAt
			view.LastActivity = &action
			view.LastActivityAt = &at
		}
		views = append(views, view)
	}

	page := pagination.NewPage(views, total, input.Pagination)
	return &page, nil
}

func (s *service) ActivityTimeline(ctx context.Context, input TimelineInput) (*pagination.Page[ActivityView], error) {
	targetID, err := s.timelineTarget(ctx, input)
	if err != nil {
		return nil, err
	}

	// The backfill is repair work; a failure must not hide the timeline.
	if _, err := s.Backfill(ctx, input.CompanyID, targetID); err != nil {
		s.warn(ctx, "activity backfill failed", err)
	}

	rows, total, err := s.repo.ListActivityByEmployee(ctx, input.CompanyID, targetID, input.Pagination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activity")
	}

	missing := make([]uuid.UUID, 0)
	for _, row := range rows {
		if row.JobName == nil {
			missing = append(missing, row.JobID)
		}
	}
	jobsByID, err := s.jobsByID(ctx, input.CompanyID, missing)
	if err != nil {
		return nil, err
	}

	views := make([]ActivityView, 0, len(rows))
	for _, row := range rows {
		view := ActivityView{
			ID:        row.ID,
			JobID:     row.JobID,
			JobName:   row.JobName,
			Action:    row.Action,
			Note:      row.Note,
			CreatedAt: row.CreatedAt,
		}
		if view.JobName == nil {
			if job, ok := jobsByID[row.JobID]; ok {
				name := job.Name
				view.JobName = &name
			}
		}
		views = append(views, view)
	}

	page := pagination.NewPage(views, total, input.Pagination)
	return &page, nil
}

func (s *service) timelineTarget(ctx context.Context, input TimelineInput) (uuid.UUID, error) {
	if input.EmployeeID == nil || *input.EmployeeID == uuid.Nil {
		return s.directory.EmployeeIDForUser(ctx, input.CompanyID, input.UserID)
	}
	if input.Role.IsAdminLike() {
		return *input.EmployeeID, nil
	}
	own, err := s.directory.EmployeeIDForUser(ctx, input.CompanyID, input.UserID)
	if err != nil {
		return uuid.Nil, err
	}
	if own != *input.EmployeeID {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another employee's activity")
	}
	return own, nil
}

func (s *service) Details(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (*DetailsView, error) {
	job, err := s.jobs.FindByID(ctx, companyID, jobID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup job")
	}
	if job == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "job not found")
	}
	employee, err := s.employees.FindByID(ctx, companyID, employeeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup employee")
	}
	if employee == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
	}

	view := &DetailsView{
		Job: DetailsJob{
			ID:         job.ID,
			Name:       job.Name,
			ClientName: job.ClientName,
			Active:     job.Active,
		},
		Employee: DetailsEmployee{
			ID:    employee.ID,
			Name:  employee.FullName(),
			Email: employee.Email,
		},
		Timeline: []TimelineEvent{},
		Entries:  []DetailsEntry{},
	}

	assignment, err := s.repo.FindByScope(ctx, companyID, jobID, employeeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup assignment")
	}
	if assignment != nil {
		assignmentView := newAssignmentView(*assignment)
		view.Assignment = &assignmentView
	}

	timeline, err := s.scopeTimeline(ctx, companyID, jobID, employeeID)
	if err != nil {
		return nil, err
	}
	view.Timeline = timeline

	rate, err := s.rates.Resolve(ctx, companyID, jobID, employeeID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.ListForScope(ctx, companyID, jobID, employeeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list time entries")
	}

	now := time.Now().UTC()
	totalMinutes := 0
	totalAmount := decimal.Zero
	for _, entry := range entries {
		minutes := entry.DurationAt(now)
		amount := money.AmountFor(minutes, rate)
		view.Entries = append(view.Entries, DetailsEntry{
			ID:              entry.ID,
			Date:            entry.Date,
			StartTS:         entry.StartTS,
			EndTS:           entry.EndTS,
			State:           entry.State(),
			Source:          entry.Source,
			DurationMinutes: minutes,
			Amount:          amount,
		})
		totalMinutes += minutes
		totalAmount = totalAmount.Add(amount)
	}
	view.Totals = DetailsTotals{
		Minutes: totalMinutes,
		Hours:   money.HoursFor(totalMinutes),
		Rate:    rate,
		Amount:  totalAmount,
	}

	return view, nil
}

func (s *service) scopeTimeline(ctx context.Context, companyID, jobID, employeeID uuid.UUID) ([]TimelineEvent, error) {
	rows, err := s.repo.ListActivityForScope(ctx, companyID, jobID, employeeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activity")
	}

	actorIDs := make([]uuid.UUID, 0, len(rows))
	seen := map[uuid.UUID]bool{}
	for _, row := range rows {
		if row.ActorUserID != nil && !seen[*row.ActorUserID] {
			seen[*row.ActorUserID] = true
			actorIDs = append(actorIDs, *row.ActorUserID)
		}
	}
	actorNames := map[uuid.UUID]string{}
	if len(actorIDs) > 0 {
		actors, err := s.users.ListByIDs(ctx, actorIDs)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list actors")
		}
		for _, actor := range actors {
			actorNames[actor.ID] = actor.FullName()
		}
	}

	events := make([]TimelineEvent, 0, len(rows))
	for _, row := range rows {
		event := TimelineEvent{
			ID:        row.ID,
			Action:    row.Action,
			ActorName: systemActorName,
			Note:      row.Note,
			CreatedAt: row.CreatedAt,
		}
		if row.ActorUserID != nil {
			if name, ok := actorNames[*row.ActorUserID]; ok {
				event.ActorName = name
			}
		}
		events = append(events, event)
	}
	return events, nil
}

// Backfill synthesizes a missing "assigned" audit event for every assignment
// the employee holds. It is idempotent; synthesized events carry no actor and
// are dated at the assignment's creation.
func (s *service) Backfill(ctx context.Context, companyID, employeeID uuid.UUID) (int, error) {
	rows, err := s.repo.ListByEmployee(ctx, companyID, employeeID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	jobsByID, err := s.jobsByID(ctx, companyID, assignmentJobIDs(rows))
	if err != nil {
		return 0, err
	}

	created := 0
	for _, row := range rows {
		has, err := s.repo.HasAssignedActivity(ctx, companyID, employeeID, row.JobID)
		if err != nil {
			return created, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check activity")
		}
		if has {
			continue
		}
		activity := &models.AssignmentActivity{
			CompanyID:  companyID,
			EmployeeID: employeeID,
			JobID:      row.JobID,
			Action:     enums.ActivityActionAssigned,
			CreatedAt:  row.CreatedAt,
		}
		if job, ok := jobsByID[row.JobID]; ok {
			name := job.Name
			activity.JobName = &name
		}
		if err := s.repo.AppendActivity(ctx, activity); err != nil {
			return created, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append activity")
		}
		created++
	}
	return created, nil
}

func (s *service) RecordTransition(ctx context.Context, record TransitionRecord) error {
	exists, err := s.repo.ExistsForScope(ctx, record.CompanyID, record.JobID, record.EmployeeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check assignment")
	}
	if exists {
		if err := s.repo.SyncState(ctx, record.CompanyID, record.JobID, record.EmployeeID, record.State, record.At); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync assignment state")
		}
	}

	activity := &models.AssignmentActivity{
		CompanyID:  record.CompanyID,
		EmployeeID: record.EmployeeID,
		JobID:      record.JobID,
		Action:     record.Action,
		Note:       record.Note,
		CreatedAt:  record.At,
	}
	if record.ActorUserID != uuid.Nil {
		actor := record.ActorUserID
		activity.ActorUserID = &actor
	}
	if job, err := s.jobs.FindByID(ctx, record.CompanyID, record.JobID); err == nil && job != nil {
		name := job.Name
		activity.JobName = &name
	}
	if err := s.repo.AppendActivity(ctx, activity); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append activity")
	}
	return nil
}

func newAssignmentView(row models.JobAssignment) AssignmentView {
	return AssignmentView{
		ID:             row.ID,
		JobID:          row.JobID,
		EmployeeID:     row.EmployeeID,
		State:          row.State,
		StateChangedAt: row.StateChangedAt,
	}
}

func assignmentJobIDs(rows []models.JobAssignment) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(rows))
	seen := map[uuid.UUID]bool{}
	for _, row := range rows {
		if !seen[row.JobID] {
			seen[row.JobID] = true
			ids = append(ids, row.JobID)
		}
	}
	return ids
}

func (s *service) jobsByID(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Job, error) {
	out := map[uuid.UUID]models.Job{}
	if len(ids) == 0 {
		return out, nil
	}
	jobs, err := s.jobs.FindByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list jobs")
	}
	for _, job := range jobs {
		out[job.ID] = job
	}
	return out, nil
}

func (s *service) employeesByID(ctx context.Context, companyID uuid.UUID, rows []models.JobAssignment) (map[uuid.UUID]models.Employee, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	seen := map[uuid.UUID]bool{}
	for _, row := range rows {
		if !seen[row.EmployeeID] {
			seen[row.EmployeeID] = true
			ids = append(ids, row.EmployeeID)
		}
	}
	if len(ids) == 0 {
		return map[uuid.UUID]models.Employee{}, nil
	}
	list, err := s.employees.ListByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list employees")
	}
	out := make(map[uuid.UUID]models.Employee, len(list))
	for _, employee := range list {
		out[employee.ID] = employee
	}
	return out, nil
}
