package timeclock

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldhr/fieldhr-backend/internal/assignments"
	"github.com/fieldhr/fieldhr-backend/pkg/db/models"
	"github.com/fieldhr/fieldhr-backend/pkg/enums"
	pkgerrors "github.com/fieldhr/fieldhr-backend/pkg/errors"
	"github.com/fieldhr/fieldhr-backend/pkg/logger"
	"github.com/fieldhr/fieldhr-backend/pkg/pagination"
)

// fakeEntryRepo keeps entries in memory and simulates the partial unique
// index on active entries.
type fakeEntryRepo struct {
	entries   map[uuid.UUID]*models.TimeEntry
	insertErr error
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: map[uuid.UUID]*models.TimeEntry{}}
}

func (f *fakeEntryRepo) Insert(ctx context.Context, entry *models.TimeEntry) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if entry.IsActive {
		for _, existing := range f.entries {
			if existing.IsActive && existing.CompanyID == entry.CompanyID && existing.EmployeeID == entry.EmployeeID {
				return errors.New(`duplicate key value violates unique constraint "uq_time_entries_active"`)
			}
		}
	}
	entry.ID = uuid.New()
	copied := *entry
	f.entries[entry.ID] = &copied
	return nil
}

func (f *fakeEntryRepo) Save(ctx context.Context, entry *models.TimeEntry) error {
	copied := *entry
	f.entries[entry.ID] = &copied
	return nil
}

func (f *fakeEntryRepo) FindActive(ctx context.Context, companyID, employeeID uuid.UUID) (*models.TimeEntry, error) {
	for _, entry := range f.entries {
		if entry.IsActive && entry.CompanyID == companyID && entry.EmployeeID == employeeID {
			copied := *entry
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeEntryRepo) FindOwned(ctx context.Context, companyID, employeeID, entryID uuid.UUID) (*models.TimeEntry, error) {
	entry, ok := f.entries[entryID]
	if !ok || entry.CompanyID != companyID || entry.EmployeeID != employeeID {
		return nil, nil
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeEntryRepo) Delete(ctx context.Context, companyID, employeeID, entryID uuid.UUID) (bool, error) {
	entry, ok := f.entries[entryID]
	if !ok || entry.CompanyID != companyID || entry.EmployeeID != employeeID {
		return false, nil
	}
	delete(f.entries, entryID)
	return true, nil
}

func (f *fakeEntryRepo) List(ctx context.Context, params listEntriesParams) ([]models.TimeEntry, int64, error) {
	var rows []models.TimeEntry
	for _, entry := range f.entries {
		if entry.CompanyID != params.CompanyID || entry.EmployeeID != params.EmployeeID {
			continue
		}
		if params.JobID != nil && entry.JobID != *params.JobID {
			continue
		}
		rows = append(rows, *entry)
	}
	return rows, int64(len(rows)), nil
}

func (f *fakeEntryRepo) ListForScope(ctx context.Context, companyID, jobID, employeeID uuid.UUID) ([]models.TimeEntry, error) {
	var rows []models.TimeEntry
	for _, entry := range f.entries {
		if entry.CompanyID == companyID && entry.JobID == jobID && entry.EmployeeID == employeeID {
			rows = append(rows, *entry)
		}
	}
	return rows, nil
}

type fixedDirectory struct {
	employeeID uuid.UUID
}

func (f *fixedDirectory) EmployeeIDForUser(ctx context.Context, companyID, userID uuid.UUID) (uuid.UUID, error) {
	return f.employeeID, nil
}

type fakeJobLookup struct {
	jobs map[uuid.UUID]*models.Job
}

func (f *fakeJobLookup) FindByID(ctx context.Context, companyID, jobID uuid.UUID) (*models.Job, error) {
	return f.jobs[jobID], nil
}

type fixedRate struct {
	rate decimal.Decimal
}

func (f *fixedRate) Resolve(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (decimal.Decimal, error) {
	return f.rate, nil
}

type fakeAssignSource struct {
	count  int64
	exists bool
}

func (f *fakeAssignSource) CountForJob(ctx context.Context, companyID, jobID uuid.UUID) (int64, error) {
	return f.count, nil
}

func (f *fakeAssignSource) ExistsForScope(ctx context.Context, companyID, jobID, employeeID uuid.UUID) (bool, error) {
	return f.exists, nil
}

type captureRecorder struct {
	records []assignments.TransitionRecord
	err     error
}

func (c *captureRecorder) RecordTransition(ctx context.Context, record assignments.TransitionRecord) error {
	c.records = append(c.records, record)
	return c.err
}

type harness struct {
	svc      Service
	repo     *fakeEntryRepo
	recorder *captureRecorder
	assign   *fakeAssignSource
	actor    Actor
	jobID    uuid.UUID
	now      *time.Time
}

func newHarness(t *testing.T, rate decimal.Decimal) *harness {
	t.Helper()
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	current := start

	companyID := uuid.New()
	jobID := uuid.New()
	repo := newFakeEntryRepo()
	recorder := &captureRecorder{}
	assign := &fakeAssignSource{}

	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Directory: &fixedDirectory{employeeID: uuid.New()},
		Jobs: &fakeJobLookup{jobs: map[uuid.UUID]*models.Job{
			jobID: {ID: jobID, CompanyID: companyID, Name: "North Site", Active: true},
		}},
		Rates:       &fixedRate{rate: rate},
		Assignments: assign,
		Recorder:    recorder,
		Logg:        logger.New(logger.Options{Output: io.Discard}),
		Now:         func() time.Time { return current },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	return &harness{
		svc:      svc,
		repo:     repo,
		recorder: recorder,
		assign:   assign,
		actor:    Actor{CompanyID: companyID, UserID: uuid.New(), Role: enums.MemberRoleEmployee},
		jobID:    jobID,
		now:      &current,
	}
}

func (h *harness) advance(d time.Duration) {
	*h.now = h.now.Add(d)
}

func code(t *testing.T, err error) pkgerrors.Code {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	return typed.Code()
}

func TestClockSessionWithBreakComputesDurationAndAmount(t *testing.T) {
	h := newHarness(t, decimal.NewFromInt(10))
	ctx := context.Background()

	if _, err := h.svc.ClockIn(ctx, h.actor, ClockInInput{JobID: h.jobID}); err != nil {
		t.Fatalf("clock in: %v", err)
	}
	h.advance(30 * time.Minute)
	if _, err := h.svc.BreakStart(ctx, h.actor); err != nil {
		t.Fatalf("break start: %v", err)
	}
	h.advance(10 * time.Minute)
	if _, err := h.svc.BreakEnd(ctx, h.actor); err != nil {
		t.Fatalf("break end: %v", err)
	}
	h.advance(85 * time.Minute)

	view, err := h.svc.ClockOut(ctx, h.actor, ClockOutInput{})
	if err != nil {
		t.Fatalf("clock out: %v", err)
	}
	if view.DurationMinutes != 115 {
		t.Fatalf("expected 115 minutes, got %d", view.DurationMinutes)
	}
	if !view.Amount.Equal(decimal.RequireFromString("19.17")) {
		t.Fatalf("expected amount 19.17, got %s", view.Amount)
	}
	if view.State != enums.TimeEntryStateCompleted || view.IsActive {
		t.Fatalf("expected completed inactive entry, got %+v", view)
	}
	if len(h.recorder.records) != 2 {
		t.Fatalf("expected started+done transitions, got %d", len(h.recorder.records))
	}
	if h.recorder.records[1].State != enums.AssignmentStateDone || h.recorder.records[1].Action != enums.ActivityActionDone {
		t.Fatalf("unexpected final transition %+v", h.recorder.records[1])
	}
}

func TestClockOutWithinSameMinuteYieldsZeroAmount(t *testing.T) {
	h := newHarness(t, decimal.NewFromInt(20))
	ctx := context.Background()

	if _, err := h.svc.ClockIn(ctx, h.actor, ClockInInput{JobID: h.jobID}); err != nil {
		t.Fatalf("clock in: %v", err)
	}
	h.advance(30 * time.Second)
	view, err := h.svc.ClockOut(ctx, h.actor, ClockOutInput{})
	if err != nil {
		t.Fatalf("clock out: %v", err)
	}
	if view.DurationMinutes != 0 {
		t.Fatalf("expected zero minutes, got %d", view.DurationMinutes)
	}
	if !view.Amount.IsZero() {
		t.Fatalf("expected zero amount, got %s", view.Amount)
	}
}

func TestClockInRejectsInactiveJob(t *testing.T) {
	h := newHarness(t, decimal.Zero)
	inactive := uuid.New()

	_, err := h.svc.ClockIn(context.Background(), h.actor, ClockInInput{JobID: inactive})
	if code(t, err) != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestClockInAssignmentGate(t *testing.T) {
	h := newHarness(t, decimal.Zero)
	h.assign.count = 3
	h.assign.exists = false

	_, err := h.svc.ClockIn(context.Background(), h.actor, ClockInInput{JobID: h.jobID})
	if code(t, err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}

	// Admin-like roles bypass the gate.
	admin := h.actor
	admin.Role = enums.MemberRoleManager
	if _, err := h.svc.ClockIn(context.Background(), admin, ClockInInput{JobID: h.jobID}); err != nil {
		t.Fatalf("manager clock in: %v", err)
	}
}

func TestSecondClockInRejected(t *testing.T) {
	h := newHarness(t, decimal.Zero)
	ctx := context.Background()

	if _, err := h.svc.ClockIn(ctx, h.actor, ClockInInput{JobID: h.jobID}); err != nil {
		t.Fatalf("clock in: %v", err)
	}
	_, err := h.svc.ClockIn(ctx, h.actor, ClockInInput{JobID: h.jobID})
	if code(t, err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestRacingClockInMapsUniqueViolationToConflict(t *testing.T) {
	h := newHarness(t, decimal.Zero)
	// The pre-check saw no active entry, but the insert trips the index.
	h.repo.insertErr = errors.New(`duplicate key value violates unique constraint "uq_time_entries_active"`)

	_, err := h.svc.ClockIn(context.Background(), h.actor, ClockInInput{JobID: h.jobID})
	if code(t, err) != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestPauseClosesOpenBreak(t *testing.T) {
	h := newHarness(t, decimal.Zero)
	ctx := context.Background()

	if _, err := h.svc.ClockIn(ctx, h.actor, ClockInInput{JobID: h.jobID}); err != nil {
		t.Fatalf("clock in: %v", err)
	}
	h.advance(10 * time.Minute)
	if _, err := h.svc.BreakStart(ctx, h.actor); err != nil {
		t.Fatalf("break start: %v", err)
	}
	h.advance(15 * time.Minute)

	reason := "material delivery"
	view, err := h.svc.Pause(ctx, h.actor, PauseInput{Reason: &reason})
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if view.OnBreak {
		t.Fatal("pause must close the open break")
	}
	if view.BreakMinutes != 15 {
		t.Fatalf("expected 15 committed break minutes, got %d", view.BreakMinutes)
	}
	if !view.OnPause || view.State != enums.TimeEntryStatePaused {
		t.Fatalf("expected paused entry, got %+v", view)
	}

	h.advance(30 * time.Minute)
	view, err = h.svc.Resume(ctx, h.actor)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if view.PausedMinutes != 30 || view.OnPause {
		t.Fatalf("expected 30 committed paused minutes, got %+v", view)
	}

	h.advance(65 * time.Minute)
	view, err = h.svc.ClockOut(ctx, h.actor, ClockOutInput{})
	if err != nil {
		t.Fatalf("clock out: %v", err)
	}
	// 120 elapsed - 15 break - 30 paused.
	if view.DurationMinutes != 75 {
		t.Fatalf("expected 75 minutes, got %d", view.DurationMinutes)
	}
}

func TestBreakStartWhilePausedRejected(t *testing.T) {
	h := newHarness(t, decimal.Zero)
	ctx := context.Background()

	if _, err := h.svc.ClockIn(ctx, h.actor, ClockInInput{JobID: h.jobID}); err != nil {
		t.Fatalf("clock in: %v", err)
	}
	if _, err := h.svc.Pause(ctx, h.actor, PauseInput{}); err != nil {
		t.Fatalf("pause: %v", err)
	}
	_, err := h.svc.BreakStart(ctx, h.actor)
	if code(t, err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestResumeWithoutPauseRejected(t *testing.T) {
	h := newHarness(t, decimal.Zero)
	ctx := context.Background()

	if _, err := h.svc.ClockIn(ctx, h.actor, ClockInInput{JobID: h.jobID}); err != nil {
		t.Fatalf("clock in: %v", err)
	}
	_, err := h.svc.Resume(ctx, h.actor)
	if code(t, err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestAbandonRecordsReasonAndCancelsAssignment(t *testing.T) {
	h := newHarness(t, decimal.Zero)
	ctx := context.Background()

	if _, err := h.svc.ClockIn(ctx, h.actor, ClockInInput{JobID: h.jobID}); err != nil {
		t.Fatalf("clock in: %v", err)
	}
	h.advance(20 * time.Minute)

	reason := "rained out"
	view, err := h.svc.Abandon(ctx, h.actor, AbandonInput{Reason: &reason})
	if err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if view.State != enums.TimeEntryStateAbandoned {
		t.Fatalf("expected abandoned state, got %s", view.State)
	}
	if view.AbandonedReason == nil || *view.AbandonedReason != reason {
		t.Fatalf("expected reason stored, got %+v", view.AbandonedReason)
	}
	if view.DurationMinutes != 20 {
		t.Fatalf("expected 20 minutes, got %d", view.DurationMinutes)
	}

	last := h.recorder.records[len(h.recorder.records)-1]
	if last.State != enums.AssignmentStateCanceled || last.Action != enums.ActivityActionAbandoned {
		t.Fatalf("unexpected transition %+v", last)
	}
}

func TestRecorderFailureDoesNotFailTransition(t *testing.T) {
	h := newHarness(t, decimal.Zero)
	h.recorder.err = errors.New("activity table unavailable")

	if _, err := h.svc.ClockIn(context.Background(), h.actor, ClockInInput{JobID: h.jobID}); err != nil {
		t.Fatalf("clock in must not fail on side effects: %v", err)
	}
}

func TestManualEntryLifecycle(t *testing.T) {
	h := newHarness(t, decimal.NewFromInt(15))
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	view, err := h.svc.CreateManual(ctx, h.actor, ManualEntryInput{
		JobID:   h.jobID,
		StartTS: start,
		EndTS:   start.Add(90 * time.Minute),
	})
	if err != nil {
		t.Fatalf("create manual: %v", err)
	}
	if view.Source != enums.TimeEntrySourceManual || view.IsActive {
		t.Fatalf("expected closed manual entry, got %+v", view)
	}
	if view.DurationMinutes != 90 {
		t.Fatalf("expected 90 minutes, got %d", view.DurationMinutes)
	}
	if !view.Amount.Equal(decimal.RequireFromString("22.5")) {
		t.Fatalf("expected amount 22.5, got %s", view.Amount)
	}
	if !view.Date.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected date from start, got %s", view.Date)
	}

	breakMinutes := 30
	updated, err := h.svc.UpdateManual(ctx, h.actor, view.ID, UpdateManualInput{BreakMinutes: &breakMinutes})
	if err != nil {
		t.Fatalf("update manual: %v", err)
	}
	if updated.DurationMinutes != 60 {
		t.Fatalf("expected recomputed 60 minutes, got %d", updated.DurationMinutes)
	}

	if err := h.svc.Delete(ctx, h.actor, view.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := h.svc.Delete(ctx, h.actor, view.ID); code(t, err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND on second delete, got %v", err)
	}
}

func TestManualEntryRejectsInvertedWindow(t *testing.T) {
	h := newHarness(t, decimal.Zero)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err := h.svc.CreateManual(context.Background(), h.actor, ManualEntryInput{
		JobID:   h.jobID,
		StartTS: start,
		EndTS:   start.Add(-time.Minute),
	})
	if code(t, err) != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestClockEntriesCannotBeEdited(t *testing.T) {
	h := newHarness(t, decimal.Zero)
	ctx := context.Background()

	view, err := h.svc.ClockIn(ctx, h.actor, ClockInInput{JobID: h.jobID})
	if err != nil {
		t.Fatalf("clock in: %v", err)
	}
	note := "forgot lunch"
	_, err = h.svc.UpdateManual(ctx, h.actor, view.ID, UpdateManualInput{Note: &note})
	if code(t, err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestListMineComputesLiveDurations(t *testing.T) {
	h := newHarness(t, decimal.NewFromInt(10))
	ctx := context.Background()

	if _, err := h.svc.ClockIn(ctx, h.actor, ClockInInput{JobID: h.jobID}); err != nil {
		t.Fatalf("clock in: %v", err)
	}
	h.advance(65 * time.Minute)
	if _, err := h.svc.BreakStart(ctx, h.actor); err != nil {
		t.Fatalf("break start: %v", err)
	}
	h.advance(5 * time.Minute)

	page, err := h.svc.ListMine(ctx, h.actor, ListMineInput{Pagination: pagination.Params{}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("expected one entry, got %+v", page)
	}
	item := page.Items[0]
	if !item.IsActive || !item.OnBreak {
		t.Fatalf("expected active on-break entry, got %+v", item)
	}
	// 70 elapsed minus the 5-minute in-flight break span.
	if item.DurationMinutes != 65 {
		t.Fatalf("expected live duration 65, got %d", item.DurationMinutes)
	}
	if !item.Amount.Equal(decimal.RequireFromString("10.83")) {
		t.Fatalf("expected amount 10.83, got %s", item.Amount)
	}
}
