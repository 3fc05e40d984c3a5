package middleware

import (
	"net/http"

	"github.com/fieldhr/fieldhr-backend/api/responses"
	pkgerrors "github.com/fieldhr/fieldhr-backend/pkg/errors"
	"github.com/fieldhr/fieldhr-backend/pkg/logger"
)

// RequireAdminLike rejects requests whose actor is not an admin, hr, or
// manager member.
func RequireAdminLike(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !RoleFromContext(r.Context()).IsAdminLike() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "elevated role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
