package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/clinicdesk-backend/api/controllers"
	"github.com/angelmondragon/clinicdesk-backend/api/middleware"
	"github.com/angelmondragon/clinicdesk-backend/internal/appointments"
	"github.com/angelmondragon/clinicdesk-backend/internal/auth"
	"github.com/angelmondragon/clinicdesk-backend/internal/billing"
	"github.com/angelmondragon/clinicdesk-backend/internal/dashboard"
	"github.com/angelmondragon/clinicdesk-backend/internal/inventory"
	"github.com/angelmondragon/clinicdesk-backend/internal/patients"
	"github.com/angelmondragon/clinicdesk-backend/internal/settings"
	"github.com/angelmondragon/clinicdesk-backend/internal/users"
	"github.com/angelmondragon/clinicdesk-backend/pkg/config"
	"github.com/angelmondragon/clinicdesk-backend/pkg/db"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	"github.com/angelmondragon/clinicdesk-backend/pkg/logger"
	"github.com/angelmondragon/clinicdesk-backend/pkg/metrics"
	"github.com/angelmondragon/clinicdesk-backend/pkg/redis"
	"github.com/google/uuid"
)

// Services bundles everything the router needs to wire handlers.
type Services struct {
	Auth         auth.Service
	Register     auth.RegisterService
	Patients     patients.Service
	Appointments appointments.Service
	Billing      billing.Service
	Inventory    inventory.Service
	Users        users.Service
	Settings     settings.Service
	Dashboard    dashboard.Service
}

// principalLoader adapts the staff service to the auth middleware without
// importing internal packages from the middleware layer.
type principalLoader struct {
	svc users.Service
}

func (p principalLoader) LoadPrincipal(ctx context.Context, clinicID, userID uuid.UUID) (*middleware.Principal, error) {
	dto, err := p.svc.ActivePrincipal(ctx, clinicID, userID)
	if err != nil {
		return nil, err
	}
	return &middleware.Principal{
		ID:       dto.ID,
		ClinicID: dto.ClinicID,
		Email:    dto.Email,
		Role:     dto.Role,
	}, nil
}

// NewRouter assembles the HTTP surface.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	loginLimiter := middleware.AuthRateLimit(loginPolicy, nil, logg)
	registerLimiter := middleware.AuthRateLimit(registerPolicy, nil, logg)
	if redisClient != nil {
		loginLimiter = middleware.AuthRateLimit(loginPolicy, redisClient, logg)
		registerLimiter = middleware.AuthRateLimit(registerPolicy, redisClient, logg)
	}

	var cachePinger controllers.Pinger
	if redisClient != nil {
		cachePinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbClient, cachePinger, logg))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(registerLimiter).Post("/register", controllers.Register(svcs.Register, logg))
		r.With(loginLimiter).Post("/login", controllers.Login(svcs.Auth, logg))
	})

	admin := string(enums.StaffRoleAdmin)
	doctor := string(enums.StaffRoleDoctor)
	reception := string(enums.StaffRoleReception)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, principalLoader{svc: svcs.Users}, logg))
		r.Use(middleware.RequireTenant(logg))

		r.Get("/auth/me", controllers.Me(svcs.Auth, logg))

		r.Route("/patients", func(r chi.Router) {
			r.With(middleware.RequireRole(logg, admin, doctor, reception)).Get("/", controllers.PatientList(svcs.Patients, logg))
			r.With(middleware.RequireRole(logg, admin, doctor, reception)).Get("/{id}", controllers.PatientGet(svcs.Patients, logg))
			r.With(middleware.RequireRole(logg, admin, reception)).Post("/", controllers.PatientCreate(svcs.Patients, logg))
			r.With(middleware.RequireRole(logg, admin, reception)).Put("/{id}", controllers.PatientUpdate(svcs.Patients, logg))
			r.With(middleware.RequireRole(logg, admin)).Delete("/{id}", controllers.PatientDelete(svcs.Patients, logg))
		})

		r.Route("/appointments", func(r chi.Router) {
			r.With(middleware.RequireRole(logg, admin, doctor, reception)).Get("/", controllers.AppointmentList(svcs.Appointments, logg))
			r.With(middleware.RequireRole(logg, admin, doctor, reception)).Get("/{id}", controllers.AppointmentGet(svcs.Appointments, logg))
			r.With(middleware.RequireRole(logg, admin, reception)).Post("/", controllers.AppointmentCreate(svcs.Appointments, logg))
			r.With(middleware.RequireRole(logg, admin, reception)).Put("/{id}", controllers.AppointmentUpdate(svcs.Appointments, logg))
			r.With(middleware.RequireRole(logg, admin, reception)).Delete("/{id}", controllers.AppointmentDelete(svcs.Appointments, logg))
		})

		r.Route("/billing", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, admin, reception))
			r.Get("/", controllers.InvoiceList(svcs.Billing, logg))
			r.Get("/{id}", controllers.InvoiceGet(svcs.Billing, logg))
			r.Get("/{id}/pdf", controllers.InvoicePDF(svcs.Billing, logg))
			r.Post("/", controllers.InvoiceCreate(svcs.Billing, logg))
			r.Put("/{id}", controllers.InvoiceUpdate(svcs.Billing, logg))
			r.Delete("/{id}", controllers.InvoiceDelete(svcs.Billing, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, admin, reception))
			r.Get("/", controllers.InventoryList(svcs.Inventory, logg))
			r.Get("/{id}", controllers.InventoryGet(svcs.Inventory, logg))
			r.Post("/", controllers.InventoryCreate(svcs.Inventory, logg))
			r.Put("/{id}", controllers.InventoryUpdate(svcs.Inventory, logg))
			r.Delete("/{id}", controllers.InventoryDelete(svcs.Inventory, logg))
			r.Post("/{id}/adjust", controllers.InventoryAdjustStock(svcs.Inventory, logg))
		})

		r.Route("/staff", func(r chi.Router) {
			r.With(middleware.RequireRole(logg, admin, doctor, reception)).Get("/", controllers.StaffList(svcs.Users, logg))
			r.With(middleware.RequireRole(logg, admin)).Get("/{id}", controllers.StaffGet(svcs.Users, logg))
			r.With(middleware.RequireRole(logg, admin)).Post("/", controllers.StaffCreate(svcs.Users, logg))
			r.With(middleware.RequireRole(logg, admin)).Put("/{id}", controllers.StaffUpdate(svcs.Users, logg))
			r.With(middleware.RequireRole(logg, admin)).Delete("/{id}", controllers.StaffDelete(svcs.Users, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.With(middleware.RequireRole(logg, admin, reception)).Get("/", controllers.SettingsGet(svcs.Settings, logg))
			r.With(middleware.RequireRole(logg, admin)).Put("/", controllers.SettingsUpdate(svcs.Settings, logg))
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, admin, doctor, reception))
			r.Get("/", controllers.DashboardOverview(svcs.Dashboard, logg))
			r.Get("/summary", controllers.DashboardSummary(svcs.Dashboard, logg))
			r.Get("/series", controllers.DashboardSeries(svcs.Dashboard, logg))
		})
	})

	return r
}
