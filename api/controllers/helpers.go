package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/fieldhr/fieldhr-backend/api/middleware"
	"github.com/fieldhr/fieldhr-backend/api/validators"
	"github.com/fieldhr/fieldhr-backend/pkg/enums"
	pkgerrors "github.com/fieldhr/fieldhr-backend/pkg/errors"
	"github.com/fieldhr/fieldhr-backend/pkg/pagination"
)

// requestActor pulls the authenticated identity out of the request context.
type requestActor struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Role      enums.MemberRole
}

func actorFrom(r *http.Request) (requestActor, error) {
	userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return requestActor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	companyID, err := uuid.Parse(middleware.CompanyIDFromContext(r.Context()))
	if err != nil {
		return requestActor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return requestActor{
		UserID:    userID,
		CompanyID: companyID,
		Role:      middleware.RoleFromContext(r.Context()),
	}, nil
}

func paginationFrom(r *http.Request) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
	if err != nil {
		return pagination.Params{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, Limit: limit}, nil
}
