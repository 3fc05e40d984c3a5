package timeclock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldhr/fieldhr-backend/internal/assignments"
	"github.com/fieldhr/fieldhr-backend/internal/employees"
	"github.com/fieldhr/fieldhr-backend/pkg/db"
	"github.com/fieldhr/fieldhr-backend/pkg/db/models"
	"github.com/fieldhr/fieldhr-backend/pkg/enums"
	pkgerrors "github.com/fieldhr/fieldhr-backend/pkg/errors"
	"github.com/fieldhr/fieldhr-backend/pkg/logger"
	"github.com/fieldhr/fieldhr-backend/pkg/metrics"
	"github.com/fieldhr/fieldhr-backend/pkg/money"
	"github.com/fieldhr/fieldhr-backend/pkg/pagination"
)

// JobSource exposes the job lookups the state machine needs. Implemented by
// the jobs repository.
type JobSource interface {
	FindByID(ctx context.Context, companyID, jobID uuid.UUID) (*models.Job, error)
}

// RateSource resolves the effective hourly rate for an employee on a job.
// Implemented by the jobs service.
type RateSource interface {
	Resolve(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (decimal.Decimal, error)
}

// AssignmentSource answers the clock-in assignment gate. Implemented by the
// assignments repository.
type AssignmentSource interface {
	CountForJob(ctx context.Context, companyID, jobID uuid.UUID) (int64, error)
	ExistsForScope(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (bool, error)
}

// TransitionRecorder mirrors timeclock transitions into the assignment state
// and activity log. Implemented by the assignments service.
type TransitionRecorder interface {
	RecordTransition(ctx context.Context, record assignments.TransitionRecord) error
}

// Actor identifies the authenticated caller of a timeclock operation.
type Actor struct {
	CompanyID uuid.UUID
	UserID    uuid.UUID
	Role      enums.MemberRole
}

// ClockInInput starts a clock session on a job.
type ClockInInput struct {
	JobID uuid.UUID
	Note  *string
}

// PauseInput pauses the active session, optionally with a reason and a
// planned resume time.
type PauseInput struct {
	Reason          *string
	PlannedResumeAt *time.Time
}

// ClockOutInput closes the active session.
type ClockOutInput struct {
	Note *string
}

// AbandonInput closes the active session without completing it.
type AbandonInput struct {
	Reason *string
}

// ManualEntryInput creates a closed entry for past work.
type ManualEntryInput struct {
	JobID        uuid.UUID
	StartTS      time.Time
	EndTS        time.Time
	BreakMinutes int
	Note         *string
}

// UpdateManualInput patches a manual entry; nil fields are untouched.
type UpdateManualInput struct {
	StartTS      *time.Time
	EndTS        *time.Time
	BreakMinutes *int
	Note         *string
}

// ListMineInput configures the caller's own entry listing.
type ListMineInput struct {
	JobID      *uuid.UUID
	From       *time.Time
	To         *time.Time
	Pagination pagination.Params
}

// EntryView is the externally visible time entry shape. Durations on open
// entries are computed as of the request.
type EntryView struct {
	ID              uuid.UUID             `json:"id"`
	JobID           uuid.UUID             `json:"job_id"`
	EmployeeID      uuid.UUID             `json:"employee_id"`
	Date            time.Time             `json:"date"`
	StartTS         time.Time             `json:"start_ts"`
	EndTS           *time.Time            `json:"end_ts,omitempty"`
	BreakMinutes    int                   `json:"break_minutes"`
	PausedMinutes   int                   `json:"paused_minutes"`
	IsActive        bool                  `json:"is_active"`
	OnBreak         bool                  `json:"on_break"`
	OnPause         bool                  `json:"on_pause"`
	State           enums.TimeEntryState  `json:"state"`
	Source          enums.TimeEntrySource `json:"source"`
	DurationMinutes int                   `json:"duration_minutes"`
	Note            *string               `json:"note,omitempty"`
	PauseReason     *string               `json:"pause_reason,omitempty"`
	PlannedResumeAt *time.Time            `json:"planned_resume_at,omitempty"`
	AbandonedReason *string               `json:"abandoned_reason,omitempty"`
	Rate            decimal.Decimal       `json:"rate"`
	Amount          decimal.Decimal       `json:"amount"`
}

// Service is the time entry state machine.
type Service interface {
	ClockIn(ctx context.Context, actor Actor, input ClockInInput) (*EntryView, error)
	BreakStart(ctx context.Context, actor Actor) (*EntryView, error)
	BreakEnd(ctx context.Context, actor Actor) (*EntryView, error)
	Pause(ctx context.Context, actor Actor, input PauseInput) (*EntryView, error)
	Resume(ctx context.Context, actor Actor) (*EntryView, error)
	ClockOut(ctx context.Context, actor Actor, input ClockOutInput) (*EntryView, error)
	Abandon(ctx context.Context, actor Actor, input AbandonInput) (*EntryView, error)
	CreateManual(ctx context.Context, actor Actor, input ManualEntryInput) (*EntryView, error)
	UpdateManual(ctx context.Context, actor Actor, entryID uuid.UUID, input UpdateManualInput) (*EntryView, error)
	Delete(ctx context.Context, actor Actor, entryID uuid.UUID) error
	ListMine(ctx context.Context, actor Actor, input ListMineInput) (*pagination.Page[EntryView], error)
}

type service struct {
	repo        Repository
	directory   employees.Directory
	jobs        JobSource
	rates       RateSource
	assignments AssignmentSource
	recorder    TransitionRecorder
	metrics     *metrics.TimeclockMetrics
	logg        *logger.Logger
	now         func() time.Time
}

// ServiceParams wires timeclock service dependencies. Now is optional and
// exists for deterministic clocks in tests.
type ServiceParams struct {
	Repo        Repository
	Directory   employees.Directory
	Jobs        JobSource
	Rates       RateSource
	Assignments AssignmentSource
	Recorder    TransitionRecorder
	Metrics     *metrics.TimeclockMetrics
	Logg        *logger.Logger
	Now         func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "time entry repository required")
	}
	if params.Directory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "employee directory required")
	}
	if params.Jobs == nil || params.Rates == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "job and rate sources required")
	}
	if params.Assignments == nil || params.Recorder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "assignment source and recorder required")
	}
	if params.Logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:        params.Repo,
		directory:   params.Directory,
		jobs:        params.Jobs,
		rates:       params.Rates,
		assignments: params.Assignments,
		recorder:    params.Recorder,
		metrics:     params.Metrics,
		logg:        params.Logg,
		now:         now,
	}, nil
}

func (s *service) ClockIn(ctx context.Context, actor Actor, input ClockInInput) (*EntryView, error) {
	view, err := s.clockIn(ctx, actor, input)
	s.observe("clock_in", err)
	return view, err
}

func (s *service) clockIn(ctx context.Context, actor Actor, input ClockInInput) (*EntryView, error) {
	employeeID, err := s.directory.EmployeeIDForUser(ctx, actor.CompanyID, actor.UserID)
	if err != nil {
		return nil, err
	}

	job, err := s.jobs.FindByID(ctx, actor.CompanyID, input.JobID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup job")
	}
	if job == nil || !job.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid or inactive job")
	}

	if err := s.checkAssignmentGate(ctx, actor, job.ID, employeeID); err != nil {
		return nil, err
	}

	if active, err := s.repo.FindActive(ctx, actor.CompanyID, employeeID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup active entry")
	} else if active != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "you already have an active time entry")
	}

	now := s.now()
	entry := &models.TimeEntry{
		CompanyID:  actor.CompanyID,
		EmployeeID: employeeID,
		JobID:      job.ID,
		Date:       startOfDay(now),
		StartTS:    now,
		IsActive:   true,
		Source:     enums.TimeEntrySourceClock,
		Note:       input.Note,
	}
	// The partial unique index is the real exclusivity check; the pre-check
	// above only gives the common case a friendlier error.
	if err := s.repo.Insert(ctx, entry); err != nil {
		if db.IsUniqueViolation(err, activeEntryConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an active time entry already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert time entry")
	}

	s.record(ctx, actor, entry, enums.AssignmentStateInProgress, enums.ActivityActionStarted, nil, now)
	return s.view(ctx, actor, entry), nil
}

func (s *service) checkAssignmentGate(ctx context.Context, actor Actor, jobID, employeeID uuid.UUID) error {
	if actor.Role.IsAdminLike() {
		return nil
	}
	count, err := s.assignments.CountForJob(ctx, actor.CompanyID, jobID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count assignments")
	}
	if count == 0 {
		// Jobs with no assignments at all are open to everyone.
		return nil
	}
	mine, err := s.assignments.ExistsForScope(ctx, actor.CompanyID, jobID, employeeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check assignment")
	}
	if !mine {
		return pkgerrors.New(pkgerrors.CodeForbidden, "you are not assigned to this job")
	}
	return nil
}

func (s *service) BreakStart(ctx context.Context, actor Actor) (*EntryView, error) {
	view, err := s.breakStart(ctx, actor)
	s.observe("break_start", err)
	return view, err
}

func (s *service) breakStart(ctx context.Context, actor Actor) (*EntryView, error) {
	entry, err := s.activeEntry(ctx, actor, "no active time entry to start a break")
	if err != nil {
		return nil, err
	}
	if entry.OnPause() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot start a break while job is paused")
	}
	if entry.OnBreak() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "already on a break")
	}

	now := s.now()
	entry.BreakStartedAt = &now
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save time entry")
	}
	return s.view(ctx, actor, entry), nil
}

func (s *service) BreakEnd(ctx context.Context, actor Actor) (*EntryView, error) {
	view, err := s.breakEnd(ctx, actor)
	s.observe("break_end", err)
	return view, err
}

func (s *service) breakEnd(ctx context.Context, actor Actor) (*EntryView, error) {
	entry, err := s.activeEntry(ctx, actor, "no active time entry")
	if err != nil {
		return nil, err
	}
	if !entry.OnBreak() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "not currently on a break")
	}

	now := s.now()
	entry.BreakMinutes += models.MinutesBetween(*entry.BreakStartedAt, now)
	entry.BreakStartedAt = nil
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save time entry")
	}
	return s.view(ctx, actor, entry), nil
}

func (s *service) Pause(ctx context.Context, actor Actor, input PauseInput) (*EntryView, error) {
	view, err := s.pause(ctx, actor, input)
	s.observe("pause", err)
	return view, err
}

func (s *service) pause(ctx context.Context, actor Actor, input PauseInput) (*EntryView, error) {
	entry, err := s.activeEntry(ctx, actor, "no active time entry to pause")
	if err != nil {
		return nil, err
	}
	if entry.OnPause() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "job is already paused")
	}

	now := s.now()
	// Pausing mid-break closes the break; break and pause spans never overlap.
	if entry.OnBreak() {
		entry.BreakMinutes += models.MinutesBetween(*entry.BreakStartedAt, now)
		entry.BreakStartedAt = nil
	}
	entry.PausedStartedAt = &now
	entry.PauseLastReason = input.Reason
	entry.PlannedResumeAt = input.PlannedResumeAt
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save time entry")
	}

	s.record(ctx, actor, entry, enums.AssignmentStatePaused, enums.ActivityActionPaused, input.Reason, now)
	return s.view(ctx, actor, entry), nil
}

func (s *service) Resume(ctx context.Context, actor Actor) (*EntryView, error) {
	view, err := s.resume(ctx, actor)
	s.observe("resume", err)
	return view, err
}

func (s *service) resume(ctx context.Context, actor Actor) (*EntryView, error) {
	entry, err := s.activeEntry(ctx, actor, "no paused time entry to resume")
	if err != nil {
		return nil, err
	}
	if !entry.OnPause() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no paused time entry to resume")
	}

	now := s.now()
	entry.PausedMinutes += models.MinutesBetween(*entry.PausedStartedAt, now)
	entry.PausedStartedAt = nil
	entry.PlannedResumeAt = nil
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save time entry")
	}

	s.record(ctx, actor, entry, enums.AssignmentStateInProgress, enums.ActivityActionResumed, nil, now)
	return s.view(ctx, actor, entry), nil
}

func (s *service) ClockOut(ctx context.Context, actor Actor, input ClockOutInput) (*EntryView, error) {
	view, err := s.clockOut(ctx, actor, input)
	s.observe("clock_out", err)
	return view, err
}

func (s *service) clockOut(ctx context.Context, actor Actor, input ClockOutInput) (*EntryView, error) {
	entry, err := s.activeEntry(ctx, actor, "no active time entry to clock out")
	if err != nil {
		return nil, err
	}

	now := s.now()
	s.closeEntry(entry, now)
	if input.Note != nil {
		entry.Note = input.Note
	}
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save time entry")
	}

	s.record(ctx, actor, entry, enums.AssignmentStateDone, enums.ActivityActionDone, nil, now)
	return s.view(ctx, actor, entry), nil
}

func (s *service) Abandon(ctx context.Context, actor Actor, input AbandonInput) (*EntryView, error) {
	view, err := s.abandon(ctx, actor, input)
	s.observe("abandon", err)
	return view, err
}

func (s *service) abandon(ctx context.Context, actor Actor, input AbandonInput) (*EntryView, error) {
	entry, err := s.activeEntry(ctx, actor, "no active time entry to abandon")
	if err != nil {
		return nil, err
	}

	now := s.now()
	s.closeEntry(entry, now)
	reason := "abandoned"
	if input.Reason != nil && *input.Reason != "" {
		reason = *input.Reason
	}
	entry.AbandonedReason = &reason
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save time entry")
	}

	s.record(ctx, actor, entry, enums.AssignmentStateCanceled, enums.ActivityActionAbandoned, &reason, now)
	return s.view(ctx, actor, entry), nil
}

// closeEntry commits any open break and pause span, freezes the duration and
// deactivates the entry.
func (s *service) closeEntry(entry *models.TimeEntry, now time.Time) {
	if entry.BreakStartedAt != nil {
		entry.BreakMinutes += models.MinutesBetween(*entry.BreakStartedAt, now)
		entry.BreakStartedAt = nil
	}
	if entry.PausedStartedAt != nil {
		entry.PausedMinutes += models.MinutesBetween(*entry.PausedStartedAt, now)
		entry.PausedStartedAt = nil
	}
	end := now
	entry.EndTS = &end
	duration := models.MinutesBetween(entry.StartTS, end) - entry.BreakMinutes - entry.PausedMinutes
	if duration < 0 {
		duration = 0
	}
	entry.DurationMinutes = &duration
	entry.IsActive = false
}

func (s *service) CreateManual(ctx context.Context, actor Actor, input ManualEntryInput) (*EntryView, error) {
	view, err := s.createManual(ctx, actor, input)
	s.observe("manual_create", err)
	return view, err
}

func (s *service) createManual(ctx context.Context, actor Actor, input ManualEntryInput) (*EntryView, error) {
	employeeID, err := s.directory.EmployeeIDForUser(ctx, actor.CompanyID, actor.UserID)
	if err != nil {
		return nil, err
	}
	job, err := s.jobs.FindByID(ctx, actor.CompanyID, input.JobID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup job")
	}
	if job == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid job")
	}
	if input.BreakMinutes < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "break_minutes must not be negative")
	}

	entry := &models.TimeEntry{
		CompanyID:    actor.CompanyID,
		EmployeeID:   employeeID,
		JobID:        job.ID,
		StartTS:      input.StartTS,
		BreakMinutes: input.BreakMinutes,
		Source:       enums.TimeEntrySourceManual,
		Note:         input.Note,
	}
	end := input.EndTS
	entry.EndTS = &end
	if err := recomputeManual(entry); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert time entry")
	}
	return s.view(ctx, actor, entry), nil
}

func (s *service) UpdateManual(ctx context.Context, actor Actor, entryID uuid.UUID, input UpdateManualInput) (*EntryView, error) {
	view, err := s.updateManual(ctx, actor, entryID, input)
	s.observe("manual_update", err)
	return view, err
}

func (s *service) updateManual(ctx context.Context, actor Actor, entryID uuid.UUID, input UpdateManualInput) (*EntryView, error) {
	employeeID, err := s.directory.EmployeeIDForUser(ctx, actor.CompanyID, actor.UserID)
	if err != nil {
		return nil, err
	}
	entry, err := s.repo.FindOwned(ctx, actor.CompanyID, employeeID, entryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup time entry")
	}
	if entry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "time entry not found")
	}
	if entry.Source != enums.TimeEntrySourceManual {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only manual entries can be edited")
	}

	if input.StartTS != nil {
		entry.StartTS = *input.StartTS
	}
	if input.EndTS != nil {
		end := *input.EndTS
		entry.EndTS = &end
	}
	if input.BreakMinutes != nil {
		if *input.BreakMinutes < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "break_minutes must not be negative")
		}
		entry.BreakMinutes = *input.BreakMinutes
	}
	if input.Note != nil {
		entry.Note = input.Note
	}
	if err := recomputeManual(entry); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save time entry")
	}
	return s.view(ctx, actor, entry), nil
}

// recomputeManual revalidates the window and refreshes the derived duration
// and date of a manual entry. Manual entries are always closed; pauses do not
// apply to them.
func recomputeManual(entry *models.TimeEntry) error {
	if entry.EndTS == nil || !entry.EndTS.After(entry.StartTS) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end_ts must be after start_ts")
	}
	duration := models.MinutesBetween(entry.StartTS, *entry.EndTS) - entry.BreakMinutes
	if duration < 0 {
		duration = 0
	}
	entry.DurationMinutes = &duration
	entry.Date = startOfDay(entry.StartTS)
	entry.IsActive = false
	return nil
}

func (s *service) Delete(ctx context.Context, actor Actor, entryID uuid.UUID) error {
	err := s.deleteEntry(ctx, actor, entryID)
	s.observe("delete", err)
	return err
}

func (s *service) deleteEntry(ctx context.Context, actor Actor, entryID uuid.UUID) error {
	employeeID, err := s.directory.EmployeeIDForUser(ctx, actor.CompanyID, actor.UserID)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, actor.CompanyID, employeeID, entryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete time entry")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "time entry not found")
	}
	return nil
}

func (s *service) ListMine(ctx context.Context, actor Actor, input ListMineInput) (*pagination.Page[EntryView], error) {
	employeeID, err := s.directory.EmployeeIDForUser(ctx, actor.CompanyID, actor.UserID)
	if err != nil {
		return nil, err
	}

	rows, total, err := s.repo.List(ctx, listEntriesParams{
		CompanyID:  actor.CompanyID,
		EmployeeID: employeeID,
		JobID:      input.JobID,
		From:       input.From,
		To:         input.To,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list time entries")
	}

	now := s.now()
	rateByJob := map[uuid.UUID]decimal.Decimal{}
	views := make([]EntryView, 0, len(rows))
	for i := range rows {
		entry := &rows[i]
		rate, ok := rateByJob[entry.JobID]
		if !ok {
			rate, err = s.rates.Resolve(ctx, actor.CompanyID, entry.JobID, employeeID)
			if err != nil {
				return nil, err
			}
			rateByJob[entry.JobID] = rate
		}
		views = append(views, newEntryView(entry, rate, now))
	}

	page := pagination.NewPage(views, total, input.Pagination)
	return &page, nil
}

func (s *service) activeEntry(ctx context.Context, actor Actor, missingMsg string) (*models.TimeEntry, error) {
	employeeID, err := s.directory.EmployeeIDForUser(ctx, actor.CompanyID, actor.UserID)
	if err != nil {
		return nil, err
	}
	entry, err := s.repo.FindActive(ctx, actor.CompanyID, employeeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup active entry")
	}
	if entry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, missingMsg)
	}
	return entry, nil
}

// record mirrors a transition into the assignment tracker. Failures are
// logged and counted, never surfaced to the caller.
func (s *service) record(ctx context.Context, actor Actor, entry *models.TimeEntry, state enums.AssignmentState, action enums.ActivityAction, note *string, at time.Time) {
	err := s.recorder.RecordTransition(ctx, assignments.TransitionRecord{
		CompanyID:   entry.CompanyID,
		JobID:       entry.JobID,
		EmployeeID:  entry.EmployeeID,
		ActorUserID: actor.UserID,
		State:       state,
		Action:      action,
		Note:        note,
		At:          at,
	})
	if err != nil {
		s.metrics.IncSideEffectFailure("assignment_sync")
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "assignment sync failed")
	}
}

func (s *service) observe(action string, err error) {
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
		if typed := pkgerrors.As(err); typed != nil {
			switch typed.Code() {
			case pkgerrors.CodeValidation, pkgerrors.CodeForbidden, pkgerrors.CodeNotFound,
				pkgerrors.CodeConflict, pkgerrors.CodeStateConflict:
				outcome = metrics.OutcomeRejected
			}
		}
	}
	s.metrics.ObserveTransition(action, outcome)
}

// view resolves the effective rate and shapes the response. Rate resolution
// is read-only; a failure degrades to zero rather than failing a transition
// that already committed.
func (s *service) view(ctx context.Context, actor Actor, entry *models.TimeEntry) *EntryView {
	rate, err := s.rates.Resolve(ctx, entry.CompanyID, entry.JobID, entry.EmployeeID)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "rate resolution failed")
		rate = decimal.Zero
	}
	view := newEntryView(entry, rate, s.now())
	return &view
}

func newEntryView(entry *models.TimeEntry, rate decimal.Decimal, now time.Time) EntryView {
	minutes := entry.DurationAt(now)
	return EntryView{
		ID:              entry.ID,
		JobID:           entry.JobID,
		EmployeeID:      entry.EmployeeID,
		Date:            entry.Date,
		StartTS:         entry.StartTS,
		EndTS:           entry.EndTS,
		BreakMinutes:    entry.BreakMinutes,
		PausedMinutes:   entry.PausedMinutes,
		IsActive:        entry.IsActive,
		OnBreak:         entry.OnBreak(),
		OnPause:         entry.OnPause(),
		State:           entry.State(),
		Source:          entry.Source,
		DurationMinutes: minutes,
		Note:            entry.Note,
		PauseReason:     entry.PauseLastReason,
		PlannedResumeAt: entry.PlannedResumeAt,
		AbandonedReason: entry.AbandonedReason,
		Rate:            rate,
		Amount:          money.AmountFor(minutes, rate),
	}
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
