package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fieldhr/fieldhr-backend/api/middleware"
	"github.com/fieldhr/fieldhr-backend/internal/timeclock"
	"github.com/fieldhr/fieldhr-backend/pkg/enums"
	pkgerrors "github.com/fieldhr/fieldhr-backend/pkg/errors"
	"github.com/fieldhr/fieldhr-backend/pkg/logger"
	"github.com/fieldhr/fieldhr-backend/pkg/pagination"
)

type testTimeclockService struct {
	clockInFn  func(ctx context.Context, actor timeclock.Actor, input timeclock.ClockInInput) (*timeclock.EntryView, error)
	clockOutFn func(ctx context.Context, actor timeclock.Actor, input timeclock.ClockOutInput) (*timeclock.EntryView, error)
	listMineFn func(ctx context.Context, actor timeclock.Actor, input timeclock.ListMineInput) (*pagination.Page[timeclock.EntryView], error)
}

func (s *testTimeclockService) ClockIn(ctx context.Context, actor timeclock.Actor, input timeclock.ClockInInput) (*timeclock.EntryView, error) {
	if s.clockInFn != nil {
		return s.clockInFn(ctx, actor, input)
	}
	return &timeclock.EntryView{}, nil
}

func (s *testTimeclockService) BreakStart(ctx context.Context, actor timeclock.Actor) (*timeclock.EntryView, error) {
	return &timeclock.EntryView{}, nil
}

func (s *testTimeclockService) BreakEnd(ctx context.Context, actor timeclock.Actor) (*timeclock.EntryView, error) {
	return &timeclock.EntryView{}, nil
}

func (s *testTimeclockService) Pause(ctx context.Context, actor timeclock.Actor, input timeclock.PauseInput) (*timeclock.EntryView, error) {
	return &timeclock.EntryView{}, nil
}

func (s *testTimeclockService) Resume(ctx context.Context, actor timeclock.Actor) (*timeclock.EntryView, error) {
	return &timeclock.EntryView{}, nil
}

func (s *testTimeclockService) ClockOut(ctx context.Context, actor timeclock.Actor, input timeclock.ClockOutInput) (*timeclock.EntryView, error) {
	if s.clockOutFn != nil {
		return s.clockOutFn(ctx, actor, input)
	}
	return &timeclock.EntryView{}, nil
}

func (s *testTimeclockService) Abandon(ctx context.Context, actor timeclock.Actor, input timeclock.AbandonInput) (*timeclock.EntryView, error) {
	return &timeclock.EntryView{}, nil
}

func (s *testTimeclockService) CreateManual(ctx context.Context, actor timeclock.Actor, input timeclock.ManualEntryInput) (*timeclock.EntryView, error) {
	return &timeclock.EntryView{}, nil
}

func (s *testTimeclockService) UpdateManual(ctx context.Context, actor timeclock.Actor, entryID uuid.UUID, input timeclock.UpdateManualInput) (*timeclock.EntryView, error) {
	return &timeclock.EntryView{}, nil
}

func (s *testTimeclockService) Delete(ctx context.Context, actor timeclock.Actor, entryID uuid.UUID) error {
	return nil
}

func (s *testTimeclockService) ListMine(ctx context.Context, actor timeclock.Actor, input timeclock.ListMineInput) (*pagination.Page[timeclock.EntryView], error) {
	if s.listMineFn != nil {
		return s.listMineFn(ctx, actor, input)
	}
	return &pagination.Page[timeclock.EntryView]{}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func authedRequest(method, target string, body io.Reader, companyID, userID uuid.UUID, role enums.MemberRole) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithCompanyID(ctx, companyID.String())
	ctx = middleware.WithRole(ctx, role)
	return req.WithContext(ctx)
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestClockInSuccess(t *testing.T) {
	companyID := uuid.New()
	userID := uuid.New()
	jobID := uuid.New()
	called := false
	svc := &testTimeclockService{
		clockInFn: func(ctx context.Context, actor timeclock.Actor, input timeclock.ClockInInput) (*timeclock.EntryView, error) {
			called = true
			if actor.CompanyID != companyID || actor.UserID != userID {
				t.Fatalf("unexpected actor %+v", actor)
			}
			if input.JobID != jobID {
				t.Fatalf("unexpected job %s", input.JobID)
			}
			return &timeclock.EntryView{ID: uuid.New(), JobID: jobID, IsActive: true}, nil
		},
	}

	body := strings.NewReader(`{"job_id":"` + jobID.String() + `"}`)
	req := authedRequest(http.MethodPost, "/api/v1/time/entries/clock-in", body, companyID, userID, enums.MemberRoleEmployee)
	resp := httptest.NewRecorder()
	ClockIn(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestClockInRejectsBadJobID(t *testing.T) {
	req := authedRequest(http.MethodPost, "/api/v1/time/entries/clock-in",
		strings.NewReader(`{"job_id":"not-a-uuid"}`), uuid.New(), uuid.New(), enums.MemberRoleEmployee)
	resp := httptest.NewRecorder()
	ClockIn(&testTimeclockService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestClockInRequiresAuthContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/time/entries/clock-in", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	ClockIn(&testTimeclockService{}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestClockOutPropagatesStateConflict(t *testing.T) {
	svc := &testTimeclockService{
		clockOutFn: func(ctx context.Context, actor timeclock.Actor, input timeclock.ClockOutInput) (*timeclock.EntryView, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no active time entry")
		},
	}
	req := authedRequest(http.MethodPost, "/api/v1/time/entries/clock-out",
		strings.NewReader(`{}`), uuid.New(), uuid.New(), enums.MemberRoleEmployee)
	resp := httptest.NewRecorder()
	ClockOut(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
	if envelope.Error.Message != "no active time entry" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
}

func TestListMyEntriesParsesFilters(t *testing.T) {
	jobID := uuid.New()
	svc := &testTimeclockService{
		listMineFn: func(ctx context.Context, actor timeclock.Actor, input timeclock.ListMineInput) (*pagination.Page[timeclock.EntryView], error) {
			if input.JobID == nil || *input.JobID != jobID {
				t.Fatalf("expected job filter %s, got %v", jobID, input.JobID)
			}
			if input.From == nil || input.From.Format("2006-01-02") != "2026-03-01" {
				t.Fatalf("expected from filter, got %v", input.From)
			}
			if input.Pagination.Page != 2 || input.Pagination.Limit != 5 {
				t.Fatalf("unexpected pagination %+v", input.Pagination)
			}
			return &pagination.Page[timeclock.EntryView]{}, nil
		},
	}

	target := "/api/v1/time/entries/me?job_id=" + jobID.String() + "&from=2026-03-01&page=2&limit=5"
	req := authedRequest(http.MethodGet, target, nil, uuid.New(), uuid.New(), enums.MemberRoleEmployee)
	resp := httptest.NewRecorder()
	ListMyEntries(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestListMyEntriesRejectsBadDate(t *testing.T) {
	req := authedRequest(http.MethodGet, "/api/v1/time/entries/me?from=03-01-2026", nil,
		uuid.New(), uuid.New(), enums.MemberRoleEmployee)
	resp := httptest.NewRecorder()
	ListMyEntries(&testTimeclockService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateManualEntryParsesPath(t *testing.T) {
	entryID := uuid.New()
	req := authedRequest(http.MethodPatch, "/api/v1/time/entries/"+entryID.String(),
		strings.NewReader(`{"break_minutes":30}`), uuid.New(), uuid.New(), enums.MemberRoleEmployee)
	req = addRouteParam(req, "entryID", entryID.String())
	resp := httptest.NewRecorder()
	UpdateManualEntry(&testTimeclockService{}, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}
