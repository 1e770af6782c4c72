package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/clinicdesk-backend/api/routes"
	"github.com/angelmondragon/clinicdesk-backend/internal/appointments"
	"github.com/angelmondragon/clinicdesk-backend/internal/auth"
	"github.com/angelmondragon/clinicdesk-backend/internal/billing"
	"github.com/angelmondragon/clinicdesk-backend/internal/cron"
	"github.com/angelmondragon/clinicdesk-backend/internal/dashboard"
	"github.com/angelmondragon/clinicdesk-backend/internal/inventory"
	"github.com/angelmondragon/clinicdesk-backend/internal/patients"
	"github.com/angelmondragon/clinicdesk-backend/internal/settings"
	"github.com/angelmondragon/clinicdesk-backend/internal/users"
	"github.com/angelmondragon/clinicdesk-backend/pkg/config"
	"github.com/angelmondragon/clinicdesk-backend/pkg/db"
	"github.com/angelmondragon/clinicdesk-backend/pkg/logger"
	"github.com/angelmondragon/clinicdesk-backend/pkg/metrics"
	"github.com/angelmondragon/clinicdesk-backend/pkg/migrate"
	"github.com/angelmondragon/clinicdesk-backend/pkg/redis"
)

const cronLockKey = "cd:cron:leader"

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

	fatal := func(msg string, err error) {
		logg.Error(context.Background(), msg, err)
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		fatal("failed to bootstrap database", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		fatal("failed to run dev migrations", err)
	}

	// Redis is optional. Without it the auth rate limiter is disabled and the
	// cron loop runs on a noop lock, which is fine for single-instance setups.
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "redis unavailable, continuing without it", err)
			redisClient = nil
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logg.Error(context.Background(), "error closing redis", err)
				}
			}()
		}
	}

	promRegistry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(promRegistry)
	cronMetrics := metrics.NewCronJobMetrics(promRegistry)
	metricsHandler := promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})

	gormDB := dbClient.DB()
	patientsRepo := patients.NewRepository(gormDB)
	usersRepo := users.NewRepository(gormDB)
	billingRepo := billing.NewRepository(gormDB)

	authService, err := auth.NewService(auth.NewRepository(gormDB), cfg.JWT)
	if err != nil {
		fatal("failed to create auth service", err)
	}
	registerService, err := auth.NewRegisterService(auth.NewRepository(gormDB), dbClient, cfg.JWT)
	if err != nil {
		fatal("failed to create register service", err)
	}
	patientsService, err := patients.NewService(patientsRepo)
	if err != nil {
		fatal("failed to create patients service", err)
	}
	usersService, err := users.NewService(usersRepo)
	if err != nil {
		fatal("failed to create staff service", err)
	}
	appointmentsService, err := appointments.NewService(appointments.NewRepository(gormDB), patientsRepo, usersRepo)
	if err != nil {
		fatal("failed to create appointments service", err)
	}
	billingService, err := billing.NewService(billingRepo, dbClient)
	if err != nil {
		fatal("failed to create billing service", err)
	}
	inventoryService, err := inventory.NewService(inventory.NewRepository(gormDB), dbClient)
	if err != nil {
		fatal("failed to create inventory service", err)
	}
	settingsService, err := settings.NewService(settings.NewRepository(gormDB))
	if err != nil {
		fatal("failed to create settings service", err)
	}
	dashboardService, err := dashboard.NewService(dashboard.NewRepository(gormDB))
	if err != nil {
		fatal("failed to create dashboard service", err)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		if err := startCron(rootCtx, cfg, logg, cronMetrics, redisClient, billingRepo); err != nil {
			fatal("failed to start cron service", err)
		}
	}

	router := routes.NewRouter(cfg, logg, dbClient, redisClient, httpMetrics, metricsHandler, routes.Services{
		Auth:         authService,
		Register:     registerService,
		Patients:     patientsService,
		Appointments: appointmentsService,
		Billing:      billingService,
		Inventory:    inventoryService,
		Users:        usersService,
		Settings:     settingsService,
		Dashboard:    dashboardService,
	})

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
		Addr:    addr,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-rootCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Cron.ShutdownTimeout)
		defer cancel()

		var errs error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = multierr.Append(errs, err)
		}
		if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = multierr.Append(errs, err)
		}
		if errs != nil {
			logg.Error(ctx, "shutdown finished with errors", errs)
			os.Exit(1)
		}
		logg.Info(ctx, "api server stopped")
	}
}

func startCron(
	ctx context.Context,
	cfg *config.Config,
	logg *logger.Logger,
	cronMetrics *metrics.CronJobMetrics,
	redisClient *redis.Client,
	billingRepo *billing.Repository,
) error {
	overdueJob, err := cron.NewInvoiceOverdueJob(cron.InvoiceOverdueJobParams{
		Logger:   logg,
		Invoices: billingRepo,
	})
	if err != nil {
		return err
	}

	registry := cron.NewRegistry()
	registry.Register(overdueJob)

	var lock cron.Lock = cron.NoopLock{}
	if redisClient != nil {
		redisLock, err := cron.NewRedisLock(redisClient, cronLockKey, 0)
		if err != nil {
			return err
		}
		lock = redisLock
	}

	cronService, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  cronMetrics,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		return err
	}

	go func() {
		if err := cronService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "cron service stopped unexpectedly", err)
		}
	}()
	return nil
}
