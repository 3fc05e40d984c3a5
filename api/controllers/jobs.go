package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldhr/fieldhr-backend/api/responses"
	"github.com/fieldhr/fieldhr-backend/api/validators"
	"github.com/fieldhr/fieldhr-backend/internal/jobs"
	pkgerrors "github.com/fieldhr/fieldhr-backend/pkg/errors"
	"github.com/fieldhr/fieldhr-backend/pkg/logger"
)

type createJobRequest struct {
	Name        string           `json:"name" validate:"required"`
	ClientName  *string          `json:"client_name"`
	DefaultRate *decimal.Decimal `json:"default_rate"`
	Active      *bool            `json:"active"`
}

type updateJobRequest struct {
	Name        *string          `json:"name"`
	ClientName  *string          `json:"client_name"`
	DefaultRate *decimal.Decimal `json:"default_rate"`
	Active      *bool            `json:"active"`
}

type setJobRateRequest struct {
	EmployeeID string          `json:"employee_id" validate:"required,uuid"`
	Rate       decimal.Decimal `json:"rate"`
}

// CreateJob handles POST /api/v1/time/jobs.
func CreateJob(svc jobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createJobRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := jobs.CreateJobInput{
			Name:       body.Name,
			ClientName: body.ClientName,
			Active:     true,
		}
		if body.DefaultRate != nil {
			input.DefaultRate = *body.DefaultRate
		}
		if body.Active != nil {
			input.Active = *body.Active
		}

		view, err := svc.Create(r.Context(), actor.CompanyID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// UpdateJob handles PATCH /api/v1/time/jobs/{jobID}.
func UpdateJob(svc jobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		jobID, err := validators.PathUUID(r, "jobID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateJobRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Update(r.Context(), actor.CompanyID, jobID, jobs.UpdateJobInput{
			Name:        body.Name,
			ClientName:  body.ClientName,
			DefaultRate: body.DefaultRate,
			Active:      body.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ListJobs handles GET /api/v1/time/jobs with `active` and `assigned_to_me`
// filters.
func ListJobs(svc jobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := jobs.ListJobsInput{
			CompanyID: actor.CompanyID,
			UserID:    actor.UserID,
			Role:      actor.Role,
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("active")); raw != "" {
			value, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid active value"))
				return
			}
			input.Active = &value
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("assigned_to_me")); raw != "" {
			value, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid assigned_to_me value"))
				return
			}
			input.AssignedToMe = value
		}

		views, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// SetJobRate handles POST /api/v1/time/jobs/{jobID}/rates.
func SetJobRate(svc jobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		jobID, err := validators.PathUUID(r, "jobID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setJobRateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		employeeID, err := uuid.Parse(body.EmployeeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "employee_id must be a valid UUID"))
			return
		}

		view, err := svc.SetRate(r.Context(), actor.CompanyID, jobID, employeeID, body.Rate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// ListJobRates handles GET /api/v1/time/jobs/{jobID}/rates.
func ListJobRates(svc jobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		jobID, err := validators.PathUUID(r, "jobID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views, err := svc.ListRates(r.Context(), actor.CompanyID, jobID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}
