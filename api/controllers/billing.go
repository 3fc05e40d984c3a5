package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/fieldhr/fieldhr-backend/api/responses"
	"github.com/fieldhr/fieldhr-backend/api/validators"
	"github.com/fieldhr/fieldhr-backend/internal/billing"
	"github.com/fieldhr/fieldhr-backend/pkg/logger"
)

// BillingReport handles GET /api/v1/time/reports/billing?month=YYYY-MM with
// an optional job_id filter.
func BillingReport(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		month, err := validators.ParseQueryMonth(r, "month")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var jobID *uuid.UUID
		id, err := validators.ParseQueryUUID(r, "job_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if id != uuid.Nil {
			jobID = &id
		}

		report, err := svc.Report(r.Context(), actor.CompanyID, month, jobID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
