package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/fieldhr/fieldhr-backend/internal/billing"
	"github.com/fieldhr/fieldhr-backend/pkg/enums"
)

type testBillingService struct {
	reportFn func(ctx context.Context, companyID uuid.UUID, month string, jobID *uuid.UUID) (*billing.Report, error)
}

func (s *testBillingService) Report(ctx context.Context, companyID uuid.UUID, month string, jobID *uuid.UUID) (*billing.Report, error) {
	if s.reportFn != nil {
		return s.reportFn(ctx, companyID, month, jobID)
	}
	return &billing.Report{Month: month}, nil
}

func TestBillingReportPassesFilters(t *testing.T) {
	companyID := uuid.New()
	jobID := uuid.New()
	called := false
	svc := &testBillingService{
		reportFn: func(ctx context.Context, cid uuid.UUID, month string, jid *uuid.UUID) (*billing.Report, error) {
			called = true
			if cid != companyID {
				t.Fatalf("unexpected company %s", cid)
			}
			if month != "2026-07" {
				t.Fatalf("unexpected month %q", month)
			}
			if jid == nil || *jid != jobID {
				t.Fatalf("expected job filter %s, got %v", jobID, jid)
			}
			return &billing.Report{Month: month}, nil
		},
	}

	target := "/api/v1/time/reports/billing?month=2026-07&job_id=" + jobID.String()
	req := authedRequest(http.MethodGet, target, nil, companyID, uuid.New(), enums.MemberRoleAdmin)
	resp := httptest.NewRecorder()
	BillingReport(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestBillingReportRequiresMonth(t *testing.T) {
	req := authedRequest(http.MethodGet, "/api/v1/time/reports/billing", nil,
		uuid.New(), uuid.New(), enums.MemberRoleAdmin)
	resp := httptest.NewRecorder()
	BillingReport(&testBillingService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestBillingReportRejectsSloppyMonth(t *testing.T) {
	req := authedRequest(http.MethodGet, "/api/v1/time/reports/billing?month=2026-7", nil,
		uuid.New(), uuid.New(), enums.MemberRoleAdmin)
	resp := httptest.NewRecorder()
	BillingReport(&testBillingService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
