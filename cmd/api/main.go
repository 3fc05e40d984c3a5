package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fieldhr/fieldhr-backend/api/routes"
	"github.com/fieldhr/fieldhr-backend/internal/assignments"
	"github.com/fieldhr/fieldhr-backend/internal/auth"
	"github.com/fieldhr/fieldhr-backend/internal/billing"
	"github.com/fieldhr/fieldhr-backend/internal/employees"
	"github.com/fieldhr/fieldhr-backend/internal/jobs"
	"github.com/fieldhr/fieldhr-backend/internal/notifications"
	"github.com/fieldhr/fieldhr-backend/internal/timeclock"
	"github.com/fieldhr/fieldhr-backend/internal/users"
	"github.com/fieldhr/fieldhr-backend/pkg/config"
	"github.com/fieldhr/fieldhr-backend/pkg/db"
	"github.com/fieldhr/fieldhr-backend/pkg/logger"
	"github.com/fieldhr/fieldhr-backend/pkg/metrics"
	"github.com/fieldhr/fieldhr-backend/pkg/migrate"
	"github.com/fieldhr/fieldhr-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	userRepo := users.NewRepository(dbClient.DB())
	employeeRepo := employees.NewRepository(dbClient.DB())
	jobRepo := jobs.NewRepository(dbClient.DB())
	assignmentRepo := assignments.NewRepository(dbClient.DB())
	entryRepo := timeclock.NewRepository(dbClient.DB())
	billingRepo := billing.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())

	directory, err := employees.NewDirectory(employeeRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create employee directory", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo: userRepo,
		Password: cfg.Password,
		JWT:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	jobsService, err := jobs.NewService(jobs.ServiceParams{
		Repo:      jobRepo,
		Assigned:  assignmentRepo,
		Directory: directory,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create jobs service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	assignmentsService, err := assignments.NewService(assignments.ServiceParams{
		Repo:      assignmentRepo,
		Jobs:      jobRepo,
		Employees: employeeRepo,
		Directory: directory,
		Users:     userRepo,
		Notifier:  notificationsService,
		Entries:   entryRepo,
		Rates:     jobsService,
		Logg:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create assignments service", err)
		os.Exit(1)
	}

	timeclockService, err := timeclock.NewService(timeclock.ServiceParams{
		Repo:        entryRepo,
		Directory:   directory,
		Jobs:        jobRepo,
		Rates:       jobsService,
		Assignments: assignmentRepo,
		Recorder:    assignmentsService,
		Metrics:     metrics.NewTimeclockMetrics(prometheus.DefaultRegisterer),
		Logg:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create timeclock service", err)
		os.Exit(1)
	}

	billingService, err := billing.NewService(billing.ServiceParams{
		Repo:      billingRepo,
		Jobs:      jobRepo,
		Employees: employeeRepo,
		Rates:     jobsService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			redisClient,
			authService,
			jobsService,
			assignmentsService,
			timeclockService,
			billingService,
			notificationsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
