package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/fieldhr/fieldhr-backend/api/responses"
	"github.com/fieldhr/fieldhr-backend/pkg/config"
	pkgerrors "github.com/fieldhr/fieldhr-backend/pkg/errors"
	"github.com/fieldhr/fieldhr-backend/pkg/logger"
)

// Pinger is anything with a health probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FieldHR-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when the database and redis respond.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FieldHR-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"db": "ok", "redis": "ok"}
		healthy := true
		if dbP == nil || dbP.Ping(ctx) != nil {
			checks["db"] = "unavailable"
			healthy = false
		}
		if redisP == nil || redisP.Ping(ctx) != nil {
			checks["redis"] = "unavailable"
			healthy = false
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
