package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldhr/fieldhr-backend/api/responses"
	"github.com/fieldhr/fieldhr-backend/api/validators"
	"github.com/fieldhr/fieldhr-backend/internal/timeclock"
	pkgerrors "github.com/fieldhr/fieldhr-backend/pkg/errors"
	"github.com/fieldhr/fieldhr-backend/pkg/logger"
)

type clockInRequest struct {
	JobID string  `json:"job_id" validate:"required,uuid"`
	Note  *string `json:"note"`
}

type pauseRequest struct {
	Reason          *string    `json:"reason"`
	PlannedResumeAt *time.Time `json:"planned_resume_at"`
}

type clockOutRequest struct {
	Note *string `json:"note"`
}

type abandonRequest struct {
	Reason *string `json:"reason"`
}

type manualEntryRequest struct {
	JobID        string    `json:"job_id" validate:"required,uuid"`
	StartTS      time.Time `json:"start_ts" validate:"required"`
	EndTS        time.Time `json:"end_ts" validate:"required"`
	BreakMinutes int       `json:"break_minutes" validate:"gte=0"`
	Note         *string   `json:"note"`
}

type updateManualRequest struct {
	StartTS      *time.Time `json:"start_ts"`
	EndTS        *time.Time `json:"end_ts"`
	BreakMinutes *int       `json:"break_minutes"`
	Note         *string    `json:"note"`
}

func timeclockActor(r *http.Request) (timeclock.Actor, error) {
	actor, err := actorFrom(r)
	if err != nil {
		return timeclock.Actor{}, err
	}
	return timeclock.Actor{
		CompanyID: actor.CompanyID,
		UserID:    actor.UserID,
		Role:      actor.Role,
	}, nil
}

// ClockIn handles POST /api/v1/time/entries/clock-in.
func ClockIn(svc timeclock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "timeclock service unavailable"))
			return
		}
		actor, err := timeclockActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body clockInRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		jobID, err := uuid.Parse(body.JobID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "job_id must be a valid UUID"))
			return
		}

		view, err := svc.ClockIn(r.Context(), actor, timeclock.ClockInInput{JobID: jobID, Note: body.Note})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// BreakStart handles POST /api/v1/time/entries/break/start.
func BreakStart(svc timeclock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := timeclockActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.BreakStart(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// BreakEnd handles POST /api/v1/time/entries/break/end.
func BreakEnd(svc timeclock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := timeclockActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.BreakEnd(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// Pause handles POST /api/v1/time/entries/pause.
func Pause(svc timeclock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := timeclockActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body pauseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Pause(r.Context(), actor, timeclock.PauseInput{
			Reason:          body.Reason,
			PlannedResumeAt: body.PlannedResumeAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// Resume handles POST /api/v1/time/entries/resume.
func Resume(svc timeclock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := timeclockActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Resume(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ClockOut handles POST /api/v1/time/entries/clock-out.
func ClockOut(svc timeclock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := timeclockActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body clockOutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.ClockOut(r.Context(), actor, timeclock.ClockOutInput{Note: body.Note})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// Abandon handles POST /api/v1/time/entries/abandon.
func Abandon(svc timeclock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := timeclockActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body abandonRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Abandon(r.Context(), actor, timeclock.AbandonInput{Reason: body.Reason})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CreateManualEntry handles POST /api/v1/time/entries.
func CreateManualEntry(svc timeclock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := timeclockActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body manualEntryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		jobID, err := uuid.Parse(body.JobID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "job_id must be a valid UUID"))
			return
		}

		view, err := svc.CreateManual(r.Context(), actor, timeclock.ManualEntryInput{
			JobID:        jobID,
			StartTS:      body.StartTS,
			EndTS:        body.EndTS,
			BreakMinutes: body.BreakMinutes,
			Note:         body.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// UpdateManualEntry handles PATCH /api/v1/time/entries/{entryID}.
func UpdateManualEntry(svc timeclock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := timeclockActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entryID, err := validators.PathUUID(r, "entryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateManualRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.UpdateManual(r.Context(), actor, entryID, timeclock.UpdateManualInput{
			StartTS:      body.StartTS,
			EndTS:        body.EndTS,
			BreakMinutes: body.BreakMinutes,
			Note:         body.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// DeleteEntry handles DELETE /api/v1/time/entries/{entryID}.
func DeleteEntry(svc timeclock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := timeclockActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entryID, err := validators.PathUUID(r, "entryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, entryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// ListMyEntries handles GET /api/v1/time/entries/me with job_id and
// from/to date filters (YYYY-MM-DD).
func ListMyEntries(svc timeclock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := timeclockActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := paginationFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := timeclock.ListMineInput{Pagination: params}
		jobID, err := validators.ParseQueryUUID(r, "job_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if jobID != uuid.Nil {
			input.JobID = &jobID
		}
		if input.From, err = queryDate(r, "from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.To, err = queryDate(r, "to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListMine(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func queryDate(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, key+" must be a date in YYYY-MM-DD format")
	}
	return &value, nil
}
