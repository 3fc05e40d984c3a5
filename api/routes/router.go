package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fieldhr/fieldhr-backend/api/controllers"
	"github.com/fieldhr/fieldhr-backend/api/middleware"
	"github.com/fieldhr/fieldhr-backend/internal/assignments"
	"github.com/fieldhr/fieldhr-backend/internal/auth"
	"github.com/fieldhr/fieldhr-backend/internal/billing"
	"github.com/fieldhr/fieldhr-backend/internal/jobs"
	"github.com/fieldhr/fieldhr-backend/internal/notifications"
	"github.com/fieldhr/fieldhr-backend/internal/timeclock"
	"github.com/fieldhr/fieldhr-backend/pkg/config"
	"github.com/fieldhr/fieldhr-backend/pkg/logger"
	pkgredis "github.com/fieldhr/fieldhr-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	store pkgredis.IdempotencyStore,
	authService auth.Service,
	jobsService jobs.Service,
	assignmentsService assignments.Service,
	timeclockService timeclock.Service,
	billingService billing.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(authService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(store, logg))

		r.Route("/v1/time", func(r chi.Router) {
			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", controllers.ListJobs(jobsService, logg))
				r.With(middleware.RequireAdminLike(logg)).Post("/", controllers.CreateJob(jobsService, logg))

				r.Route("/{jobID}", func(r chi.Router) {
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireAdminLike(logg))
						r.Patch("/", controllers.UpdateJob(jobsService, logg))
						r.Get("/rates", controllers.ListJobRates(jobsService, logg))
						r.Post("/rates", controllers.SetJobRate(jobsService, logg))
						r.Get("/assignments", controllers.ListJobAssignments(assignmentsService, logg))
						r.Post("/assign", controllers.AssignEmployee(assignmentsService, logg))
						r.Delete("/assign/{employeeID}", controllers.UnassignEmployee(assignmentsService, logg))
					})
				})
			})

			r.Get("/my/assignments", controllers.MyAssignments(assignmentsService, logg))
			r.Route("/assignments", func(r chi.Router) {
				r.With(middleware.RequireAdminLike(logg)).Get("/", controllers.CompanyAssignments(assignmentsService, logg))
				r.Get("/activity", controllers.AssignmentActivity(assignmentsService, logg))
				r.With(middleware.RequireAdminLike(logg)).Get("/details", controllers.AssignmentDetails(assignmentsService, logg))
			})

			r.Route("/entries", func(r chi.Router) {
				r.Post("/clock-in", controllers.ClockIn(timeclockService, logg))
				r.Post("/break/start", controllers.BreakStart(timeclockService, logg))
				r.Post("/break/end", controllers.BreakEnd(timeclockService, logg))
				r.Post("/pause", controllers.Pause(timeclockService, logg))
				r.Post("/resume", controllers.Resume(timeclockService, logg))
				r.Post("/clock-out", controllers.ClockOut(timeclockService, logg))
				r.Post("/abandon", controllers.Abandon(timeclockService, logg))

				r.Post("/", controllers.CreateManualEntry(timeclockService, logg))
				r.Patch("/{entryID}", controllers.UpdateManualEntry(timeclockService, logg))
				r.Delete("/{entryID}", controllers.DeleteEntry(timeclockService, logg))
				r.Get("/me", controllers.ListMyEntries(timeclockService, logg))
			})

			r.With(middleware.RequireAdminLike(logg)).Get("/reports/billing", controllers.BillingReport(billingService, logg))
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	return r
}
