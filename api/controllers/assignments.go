package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fieldhr/fieldhr-backend/api/responses"
	"github.com/fieldhr/fieldhr-backend/api/validators"
	"github.com/fieldhr/fieldhr-backend/internal/assignments"
	pkgerrors "github.com/fieldhr/fieldhr-backend/pkg/errors"
	"github.com/fieldhr/fieldhr-backend/pkg/enums"
	"github.com/fieldhr/fieldhr-backend/pkg/logger"
)

type assignEmployeeRequest struct {
	EmployeeID    *string `json:"employee_id"`
	EmployeeEmail *string `json:"employee_email"`
}

// ListJobAssignments handles GET /api/v1/time/jobs/{jobID}/assignments.
func ListJobAssignments(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
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

		views, err := svc.ListForJob(r.Context(), actor.CompanyID, jobID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// AssignEmployee handles POST /api/v1/time/jobs/{jobID}/assign. The employee
// can be referenced by id or by email; a repeat call is a no-op and answers
// 200 instead of 201.
func AssignEmployee(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body assignEmployeeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := assignments.AssignInput{
			CompanyID:     actor.CompanyID,
			JobID:         jobID,
			ActorUserID:   actor.UserID,
			EmployeeEmail: body.EmployeeEmail,
		}
		if body.EmployeeID != nil {
			employeeID, err := uuid.Parse(*body.EmployeeID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "employee_id must be a valid UUID"))
				return
			}
			input.EmployeeID = &employeeID
		}

		result, err := svc.Assign(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if result.Created {
			responses.WriteSuccessStatus(w, http.StatusCreated, result)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// UnassignEmployee handles DELETE /api/v1/time/jobs/{jobID}/assign/{employeeID}.
func UnassignEmployee(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
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
		employeeID, err := validators.PathUUID(r, "employeeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Unassign(r.Context(), assignments.UnassignInput{
			CompanyID:   actor.CompanyID,
			JobID:       jobID,
			EmployeeID:  employeeID,
			ActorUserID: actor.UserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// MyAssignments handles GET /api/v1/time/my/assignments.
func MyAssignments(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views, err := svc.MyAssignments(r.Context(), actor.CompanyID, actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// CompanyAssignments handles GET /api/v1/time/assignments with an optional
// state filter.
func CompanyAssignments(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := paginationFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := assignments.CompanyListInput{
			CompanyID:  actor.CompanyID,
			Pagination: params,
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("state")); raw != "" {
			state, err := enums.ParseAssignmentState(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid assignment state"))
				return
			}
			input.State = &state
		}

		page, err := svc.CompanyAssignments(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// AssignmentActivity handles GET /api/v1/time/assignments/activity. Without
// an employee_id filter the caller sees their own timeline; admin-like roles
// may pass any employee.
func AssignmentActivity(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := paginationFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := assignments.TimelineInput{
			CompanyID:  actor.CompanyID,
			UserID:     actor.UserID,
			Role:       actor.Role,
			Pagination: params,
		}
		employeeID, err := validators.ParseQueryUUID(r, "employee_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if employeeID != uuid.Nil {
			input.EmployeeID = &employeeID
		}

		page, err := svc.ActivityTimeline(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// AssignmentDetails handles GET /api/v1/time/assignments/details.
func AssignmentDetails(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		jobID, err := validators.ParseQueryUUID(r, "job_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		employeeID, err := validators.ParseQueryUUID(r, "employee_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if jobID == uuid.Nil || employeeID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "job_id and employee_id are required"))
			return
		}

		view, err := svc.Details(r.Context(), actor.CompanyID, jobID, employeeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
